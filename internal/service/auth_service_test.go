package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atifjaved999/mini-coaching/internal/domain"
	"github.com/atifjaved999/mini-coaching/internal/repository"
	"github.com/atifjaved999/mini-coaching/internal/security"
)

type captureResetNotifier struct {
	mu        sync.Mutex
	userID    uint
	email     string
	token     string
	expiresAt time.Time
	calls     int
}

func (n *captureResetNotifier) SendPasswordReset(_ context.Context, userID uint, email, token string, expiresAt time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.userID = userID
	n.email = email
	n.token = token
	n.expiresAt = expiresAt
	n.calls++
	return nil
}

func testTokenManager() *security.TokenManager {
	return security.NewTokenManager("mini-coaching", "mini-coaching-api", "unit-test-secret")
}

func newAuthServiceForTest(users *stubUserRepository, resetTokens *stubResetTokenRepository, notifier PasswordResetNotifier) *AuthService {
	if notifier == nil {
		notifier = NewDevNotifier(discardLogger())
	}
	return NewAuthService(users, resetTokens, testTokenManager(), notifier, time.Hour, 15*time.Minute, "test-pepper", discardLogger())
}

func TestSignupValidation(t *testing.T) {
	svc := newAuthServiceForTest(&stubUserRepository{t: t}, &stubResetTokenRepository{t: t}, nil)

	cases := []struct {
		name  string
		input SignupInput
	}{
		{"empty name", SignupInput{Email: "a@b.com", Password: "secret-password", Role: "coach"}},
		{"bad email", SignupInput{Name: "A", Email: "not-an-email", Password: "secret-password", Role: "coach"}},
		{"short password", SignupInput{Name: "A", Email: "a@b.com", Password: "short", Role: "coach"}},
		{"unknown role", SignupInput{Name: "A", Email: "a@b.com", Password: "secret-password", Role: "admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Signup(context.Background(), tc.input); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestSignupIssuesParseableToken(t *testing.T) {
	users := &stubUserRepository{
		t: t,
		createFn: func(u *domain.User) error {
			if u.Email != "coach@example.com" {
				return errors.New("email not normalized")
			}
			if u.PasswordHash == "secret-password" {
				return errors.New("password stored in the clear")
			}
			u.ID = 21
			return nil
		},
		findRoleByNameFn: func(name string) (*domain.Role, error) {
			return &domain.Role{ID: 1, Name: name}, nil
		},
		addRoleFn: func(uint, uint) error { return nil },
	}
	svc := newAuthServiceForTest(users, &stubResetTokenRepository{t: t}, nil)

	result, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Coach",
		Email:    "  Coach@Example.com ",
		Password: "secret-password",
		Role:     "Coach",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	claims, err := testTokenManager().Parse(result.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	userID, err := claims.UserID()
	if err != nil {
		t.Fatalf("token subject: %v", err)
	}
	if userID != 21 {
		t.Fatalf("token subject %d, want 21", userID)
	}
	if len(result.User.Roles) != 1 || result.User.Roles[0] != "coach" {
		t.Fatalf("roles = %v", result.User.Roles)
	}
}

func TestSignupDuplicateEmailBecomesValidation(t *testing.T) {
	users := &stubUserRepository{
		t:        t,
		createFn: func(*domain.User) error { return repository.ErrEmailTaken },
	}
	svc := newAuthServiceForTest(users, &stubResetTokenRepository{t: t}, nil)

	_, err := svc.Signup(context.Background(), SignupInput{Name: "A", Email: "a@b.com", Password: "secret-password", Role: "client"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	hash, err := security.HashPassword("secret-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := &stubUserRepository{
		t: t,
		findByEmailFn: func(email string) (*domain.User, error) {
			if email != "a@b.com" {
				return nil, repository.ErrUserNotFound
			}
			return &domain.User{ID: 21, Email: email, PasswordHash: hash}, nil
		},
	}
	svc := newAuthServiceForTest(users, &stubResetTokenRepository{t: t}, nil)

	if _, err := svc.Login(context.Background(), "missing@b.com", "secret-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "a@b.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "A@B.com", "secret-password"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestForgotPasswordSilentOnUnknownEmail(t *testing.T) {
	users := &stubUserRepository{
		t:             t,
		findByEmailFn: func(string) (*domain.User, error) { return nil, repository.ErrUserNotFound },
	}
	notifier := &captureResetNotifier{}
	svc := newAuthServiceForTest(users, &stubResetTokenRepository{t: t}, notifier)

	if err := svc.ForgotPassword(context.Background(), "ghost@b.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if notifier.calls != 0 {
		t.Fatal("notifier called for unknown email")
	}
}

func TestForgotPasswordStoresHashNotToken(t *testing.T) {
	var stored *domain.PasswordResetToken
	users := &stubUserRepository{
		t: t,
		findByEmailFn: func(email string) (*domain.User, error) {
			return &domain.User{ID: 21, Email: email}, nil
		},
	}
	resetTokens := &stubResetTokenRepository{
		t:        t,
		createFn: func(tok *domain.PasswordResetToken) error { stored = tok; return nil },
	}
	notifier := &captureResetNotifier{}
	svc := newAuthServiceForTest(users, resetTokens, notifier)

	if err := svc.ForgotPassword(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if notifier.token == "" {
		t.Fatal("raw token not delivered")
	}
	if stored.TokenHash == notifier.token || strings.Contains(stored.TokenHash, notifier.token) {
		t.Fatal("raw token leaked into storage")
	}
	if stored.TokenHash != security.HashResetToken(notifier.token, "test-pepper") {
		t.Fatal("stored hash does not match the delivered token")
	}
	if !stored.ExpiresAt.After(time.Now()) {
		t.Fatalf("expiry in the past: %v", stored.ExpiresAt)
	}
}

func TestResetPasswordInvalidToken(t *testing.T) {
	resetTokens := &stubResetTokenRepository{
		t: t,
		redeemFn: func(string, time.Time) (*domain.PasswordResetToken, error) {
			return nil, repository.ErrResetTokenNotFound
		},
	}
	svc := newAuthServiceForTest(&stubUserRepository{t: t}, resetTokens, nil)

	if err := svc.ResetPassword(context.Background(), "bogus", "new-secret-password"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := svc.ResetPassword(context.Background(), "bogus", "short"); !errors.Is(err, ErrValidation) {
		t.Fatalf("short password: expected ErrValidation, got %v", err)
	}
}

func TestResetPasswordUpdatesHash(t *testing.T) {
	var newHash string
	users := &stubUserRepository{
		t: t,
		updatePasswordFn: func(userID uint, hash string) error {
			if userID != 21 {
				return errors.New("wrong user")
			}
			newHash = hash
			return nil
		},
	}
	resetTokens := &stubResetTokenRepository{
		t: t,
		redeemFn: func(hash string, _ time.Time) (*domain.PasswordResetToken, error) {
			if hash != security.HashResetToken("raw-token", "test-pepper") {
				return nil, repository.ErrResetTokenNotFound
			}
			return &domain.PasswordResetToken{UserID: 21, TokenHash: hash}, nil
		},
	}
	svc := newAuthServiceForTest(users, resetTokens, nil)

	if err := svc.ResetPassword(context.Background(), "raw-token", "new-secret-password"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if !security.CheckPassword(newHash, "new-secret-password") {
		t.Fatal("stored hash does not verify against the new password")
	}
}
