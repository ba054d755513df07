package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atifjaved999/mini-coaching/internal/domain"
	"github.com/atifjaved999/mini-coaching/internal/observability"
	"github.com/atifjaved999/mini-coaching/internal/repository"
	"github.com/atifjaved999/mini-coaching/internal/security"
)

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AuthResult struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type AuthServiceInterface interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, userID uint) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type AuthService struct {
	users       repository.UserRepository
	resetTokens repository.PasswordResetTokenRepository
	tokens      *security.TokenManager
	notifier    PasswordResetNotifier
	tokenTTL    time.Duration
	resetTTL    time.Duration
	resetPepper string
	logger      *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	resetTokens repository.PasswordResetTokenRepository,
	tokens *security.TokenManager,
	notifier PasswordResetNotifier,
	tokenTTL time.Duration,
	resetTTL time.Duration,
	resetPepper string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		resetTokens: resetTokens,
		tokens:      tokens,
		notifier:    notifier,
		tokenTTL:    tokenTTL,
		resetTTL:    resetTTL,
		resetPepper: resetPepper,
		logger:      logger,
	}
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	role := strings.ToLower(strings.TrimSpace(input.Role))

	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: name and a valid email are required", ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if role != domain.RoleCoach && role != domain.RoleClient {
		return nil, fmt.Errorf("%w: role must be %q or %q", ErrValidation, domain.RoleCoach, domain.RoleClient)
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			observability.RecordAuthEvent(ctx, "signup", "email_taken")
			return nil, fmt.Errorf("%w: email already registered", ErrValidation)
		}
		observability.RecordAuthEvent(ctx, "signup", "error")
		return nil, err
	}

	dbRole, err := s.users.FindRoleByName(role)
	if err != nil {
		return nil, err
	}
	if err := s.users.AddRole(user.ID, dbRole.ID); err != nil {
		return nil, err
	}
	user.Roles = append(user.Roles, *dbRole)

	token, err := s.tokens.Sign(user.ID, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthEvent(ctx, "signup", "success")
	return &AuthResult{Token: token, User: newUserView(user)}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthEvent(ctx, "login", "failure")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		observability.RecordAuthEvent(ctx, "login", "failure")
		return nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Sign(user.ID, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	observability.RecordAuthEvent(ctx, "login", "success")
	return &AuthResult{Token: token, User: newUserView(user)}, nil
}

// Logout is advisory: tokens are stateless and verification recomputes
// validity from signature plus expiry, so there is nothing to revoke
// server-side. Clients discard the token; it ages out at its TTL.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	observability.RecordAuthEvent(ctx, "logout", "success")
	s.logger.InfoContext(ctx, "user logged out", "user_id", userID)
	return nil
}

// ForgotPassword is intentionally silent about unknown emails.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthEvent(ctx, "forgot_password", "unknown_email")
			return nil
		}
		return err
	}

	raw := uuid.NewString()
	expiresAt := time.Now().UTC().Add(s.resetTTL)
	record := &domain.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: security.HashResetToken(raw, s.resetPepper),
		ExpiresAt: expiresAt,
	}
	if err := s.resetTokens.Create(record); err != nil {
		observability.RecordAuthEvent(ctx, "forgot_password", "error")
		return err
	}
	if err := s.notifier.SendPasswordReset(ctx, user.ID, user.Email, raw, expiresAt); err != nil {
		// The token row exists; delivery is best-effort like every other
		// notification.
		s.logger.WarnContext(ctx, "password reset delivery failed", "user_id", user.ID, "error", err)
	}
	observability.RecordAuthEvent(ctx, "forgot_password", "success")
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	record, err := s.resetTokens.Redeem(security.HashResetToken(token, s.resetPepper), time.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			observability.RecordAuthEvent(ctx, "reset_password", "invalid_token")
			return fmt.Errorf("%w: reset token is invalid or expired", ErrValidation)
		}
		return err
	}
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(record.UserID, hash); err != nil {
		observability.RecordAuthEvent(ctx, "reset_password", "error")
		return err
	}
	observability.RecordAuthEvent(ctx, "reset_password", "success")
	return nil
}
