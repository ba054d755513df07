package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/atifjaved999/mini-coaching/internal/domain"
	"github.com/atifjaved999/mini-coaching/internal/repository"
)

type UserServiceInterface interface {
	GetByID(ctx context.Context, id uint) (*UserView, error)
	List(ctx context.Context) ([]UserView, error)
	UpdateAvatar(ctx context.Context, user *domain.User, file io.Reader, fileSize int64, contentType string) (string, error)
	AvatarURL(ctx context.Context, user *domain.User) (string, error)
}

type UserService struct {
	users   repository.UserRepository
	storage StorageService
	logger  *slog.Logger
}

func NewUserService(users repository.UserRepository, storage StorageService, logger *slog.Logger) *UserService {
	return &UserService{users: users, storage: storage, logger: logger}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*UserView, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	view := newUserView(user)
	return &view, nil
}

func (s *UserService) List(ctx context.Context) ([]UserView, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, err
	}
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	return views, nil
}

// UpdateAvatar replaces the user's profile photo and returns a presigned URL
// for the new object. The previous object, if any, is deleted best-effort.
func (s *UserService) UpdateAvatar(ctx context.Context, user *domain.User, file io.Reader, fileSize int64, contentType string) (string, error) {
	objectKey, err := s.storage.UploadAvatar(ctx, user.ID, file, fileSize, contentType)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateAvatarKey(user.ID, objectKey); err != nil {
		if delErr := s.storage.DeleteAvatar(ctx, objectKey); delErr != nil {
			s.logger.Warn("orphaned avatar object left in storage", "object_key", objectKey, "error", delErr)
		}
		return "", err
	}
	if user.AvatarKey != "" && user.AvatarKey != objectKey {
		if err := s.storage.DeleteAvatar(ctx, user.AvatarKey); err != nil {
			s.logger.Warn("failed to delete previous avatar", "object_key", user.AvatarKey, "error", err)
		}
	}
	user.AvatarKey = objectKey
	return s.storage.GenerateAvatarURL(ctx, objectKey)
}

// AvatarURL returns a presigned download URL for the user's current avatar.
func (s *UserService) AvatarURL(ctx context.Context, user *domain.User) (string, error) {
	if user.AvatarKey == "" {
		return "", ErrAvatarNotSet
	}
	return s.storage.GenerateAvatarURL(ctx, user.AvatarKey)
}
