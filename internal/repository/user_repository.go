package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/atifjaved999/mini-coaching/internal/domain"
	"github.com/atifjaved999/mini-coaching/internal/observability"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
	ErrRoleNotFound = errors.New("role not found")
)

type UserRepository interface {
	Create(user *domain.User) error
	FindByID(id uint) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	FindByIDs(ids []uint) ([]domain.User, error)
	List() ([]domain.User, error)
	AddRole(userID, roleID uint) error
	FindRoleByName(name string) (*domain.Role, error)
	UpdatePassword(userID uint, passwordHash string) error
	UpdateAvatarKey(userID uint, avatarKey string) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(user *domain.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(context.Background(), "user", "create", "conflict")
			return ErrEmailTaken
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "create", "success")
	return nil
}

func (r *GormUserRepository) FindByID(id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.Preload("Roles").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "find_by_id", "success")
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := r.db.Preload("Roles").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", "find_by_email", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "find_by_email", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "find_by_email", "success")
	return &user, nil
}

// FindByIDs returns only the users that exist; unknown ids are silently
// dropped so callers can treat the result as the set of valid references.
func (r *GormUserRepository) FindByIDs(ids []uint) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []domain.User
	if err := r.db.Preload("Roles").Where("id IN ?", ids).Find(&users).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "find_by_ids", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "find_by_ids", "success")
	return users, nil
}

func (r *GormUserRepository) List() ([]domain.User, error) {
	var users []domain.User
	if err := r.db.Preload("Roles").Order("created_at desc").Find(&users).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "list", "success")
	return users, nil
}

func (r *GormUserRepository) AddRole(userID, roleID uint) error {
	err := r.db.Create(&domain.UserRole{UserID: userID, RoleID: roleID}).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		observability.RecordRepositoryOperation(context.Background(), "user", "add_role", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "add_role", "success")
	return nil
}

func (r *GormUserRepository) FindRoleByName(name string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.Where("name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (r *GormUserRepository) UpdatePassword(userID uint, passwordHash string) error {
	res := r.db.Model(&domain.User{}).Where("id = ?", userID).Update("password_hash", passwordHash)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "update_password", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "user", "update_password", "not_found")
		return ErrUserNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "update_password", "success")
	return nil
}

func (r *GormUserRepository) UpdateAvatarKey(userID uint, avatarKey string) error {
	res := r.db.Model(&domain.User{}).Where("id = ?", userID).Update("avatar_key", avatarKey)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
