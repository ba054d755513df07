package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/atifjaved999/mini-coaching/internal/domain"
)

// stubSessionRepository is a struct-of-funcs test double; unset funcs fail
// the test when called.
type stubSessionRepository struct {
	t *testing.T

	createFn            func(session *domain.Session, participantIDs []uint) error
	updateFn            func(session *domain.Session) error
	deleteFn            func(id uint) error
	findByIDFn          func(id uint) (*domain.Session, error)
	listAllFn           func() ([]domain.Session, error)
	listForUserFn       func(userID uint, roleName string) ([]domain.Session, error)
	listAvailableFn     func(excludeUserID uint) ([]domain.Session, error)
	findConflictsFn     func(scheduledOn string, startMinute, endMinute int, excludeID uint) ([]domain.Session, error)
	addParticipantFn    func(sessionID, userID uint) error
	removeParticipantFn func(sessionID, userID uint) error
	isParticipantFn     func(sessionID, userID uint) (bool, error)
	rosterFn            func(sessionID uint) ([]domain.User, error)
}

func (s *stubSessionRepository) Create(session *domain.Session, participantIDs []uint) error {
	if s.createFn == nil {
		s.t.Fatal("unexpected Create call")
	}
	return s.createFn(session, participantIDs)
}

func (s *stubSessionRepository) Update(session *domain.Session) error {
	if s.updateFn == nil {
		s.t.Fatal("unexpected Update call")
	}
	return s.updateFn(session)
}

func (s *stubSessionRepository) Delete(id uint) error {
	if s.deleteFn == nil {
		s.t.Fatal("unexpected Delete call")
	}
	return s.deleteFn(id)
}

func (s *stubSessionRepository) FindByID(id uint) (*domain.Session, error) {
	if s.findByIDFn == nil {
		s.t.Fatal("unexpected FindByID call")
	}
	return s.findByIDFn(id)
}

func (s *stubSessionRepository) ListAll() ([]domain.Session, error) {
	if s.listAllFn == nil {
		s.t.Fatal("unexpected ListAll call")
	}
	return s.listAllFn()
}

func (s *stubSessionRepository) ListForUser(userID uint, roleName string) ([]domain.Session, error) {
	if s.listForUserFn == nil {
		s.t.Fatal("unexpected ListForUser call")
	}
	return s.listForUserFn(userID, roleName)
}

func (s *stubSessionRepository) ListAvailable(excludeUserID uint) ([]domain.Session, error) {
	if s.listAvailableFn == nil {
		s.t.Fatal("unexpected ListAvailable call")
	}
	return s.listAvailableFn(excludeUserID)
}

func (s *stubSessionRepository) FindConflicts(scheduledOn string, startMinute, endMinute int, excludeID uint) ([]domain.Session, error) {
	if s.findConflictsFn == nil {
		s.t.Fatal("unexpected FindConflicts call")
	}
	return s.findConflictsFn(scheduledOn, startMinute, endMinute, excludeID)
}

func (s *stubSessionRepository) AddParticipant(sessionID, userID uint) error {
	if s.addParticipantFn == nil {
		s.t.Fatal("unexpected AddParticipant call")
	}
	return s.addParticipantFn(sessionID, userID)
}

func (s *stubSessionRepository) RemoveParticipant(sessionID, userID uint) error {
	if s.removeParticipantFn == nil {
		s.t.Fatal("unexpected RemoveParticipant call")
	}
	return s.removeParticipantFn(sessionID, userID)
}

func (s *stubSessionRepository) IsParticipant(sessionID, userID uint) (bool, error) {
	if s.isParticipantFn == nil {
		s.t.Fatal("unexpected IsParticipant call")
	}
	return s.isParticipantFn(sessionID, userID)
}

func (s *stubSessionRepository) Roster(sessionID uint) ([]domain.User, error) {
	if s.rosterFn == nil {
		return nil, nil
	}
	return s.rosterFn(sessionID)
}

type stubUserRepository struct {
	t *testing.T

	createFn          func(user *domain.User) error
	findByIDFn        func(id uint) (*domain.User, error)
	findByEmailFn     func(email string) (*domain.User, error)
	findByIDsFn       func(ids []uint) ([]domain.User, error)
	listFn            func() ([]domain.User, error)
	addRoleFn         func(userID, roleID uint) error
	findRoleByNameFn  func(name string) (*domain.Role, error)
	updatePasswordFn  func(userID uint, passwordHash string) error
	updateAvatarKeyFn func(userID uint, avatarKey string) error
}

func (s *stubUserRepository) Create(user *domain.User) error {
	if s.createFn == nil {
		s.t.Fatal("unexpected Create call")
	}
	return s.createFn(user)
}

func (s *stubUserRepository) FindByID(id uint) (*domain.User, error) {
	if s.findByIDFn == nil {
		s.t.Fatal("unexpected FindByID call")
	}
	return s.findByIDFn(id)
}

func (s *stubUserRepository) FindByEmail(email string) (*domain.User, error) {
	if s.findByEmailFn == nil {
		s.t.Fatal("unexpected FindByEmail call")
	}
	return s.findByEmailFn(email)
}

func (s *stubUserRepository) FindByIDs(ids []uint) ([]domain.User, error) {
	if s.findByIDsFn == nil {
		s.t.Fatal("unexpected FindByIDs call")
	}
	return s.findByIDsFn(ids)
}

func (s *stubUserRepository) List() ([]domain.User, error) {
	if s.listFn == nil {
		s.t.Fatal("unexpected List call")
	}
	return s.listFn()
}

func (s *stubUserRepository) AddRole(userID, roleID uint) error {
	if s.addRoleFn == nil {
		s.t.Fatal("unexpected AddRole call")
	}
	return s.addRoleFn(userID, roleID)
}

func (s *stubUserRepository) FindRoleByName(name string) (*domain.Role, error) {
	if s.findRoleByNameFn == nil {
		s.t.Fatal("unexpected FindRoleByName call")
	}
	return s.findRoleByNameFn(name)
}

func (s *stubUserRepository) UpdatePassword(userID uint, passwordHash string) error {
	if s.updatePasswordFn == nil {
		s.t.Fatal("unexpected UpdatePassword call")
	}
	return s.updatePasswordFn(userID, passwordHash)
}

func (s *stubUserRepository) UpdateAvatarKey(userID uint, avatarKey string) error {
	if s.updateAvatarKeyFn == nil {
		s.t.Fatal("unexpected UpdateAvatarKey call")
	}
	return s.updateAvatarKeyFn(userID, avatarKey)
}

type stubResetTokenRepository struct {
	t *testing.T

	createFn func(token *domain.PasswordResetToken) error
	redeemFn func(tokenHash string, now time.Time) (*domain.PasswordResetToken, error)
}

func (s *stubResetTokenRepository) Create(token *domain.PasswordResetToken) error {
	if s.createFn == nil {
		s.t.Fatal("unexpected Create call")
	}
	return s.createFn(token)
}

func (s *stubResetTokenRepository) Redeem(tokenHash string, now time.Time) (*domain.PasswordResetToken, error) {
	if s.redeemFn == nil {
		s.t.Fatal("unexpected Redeem call")
	}
	return s.redeemFn(tokenHash, now)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func coachUser(id uint) *domain.User {
	return &domain.User{ID: id, Name: "Coach", Email: "coach@example.com", Roles: []domain.Role{{ID: 1, Name: domain.RoleCoach}}}
}

func clientUser(id uint) *domain.User {
	return &domain.User{ID: id, Name: "Client", Email: "client@example.com", Roles: []domain.Role{{ID: 2, Name: domain.RoleClient}}}
}
