package service

import (
	"context"
	"log/slog"
	"time"
)

// SessionNotifier enqueues a best-effort notification job for a session's
// participants. Delivery guarantees are the queue's concern; callers fire it
// after commit and must swallow failures.
type SessionNotifier interface {
	NotifySessionParticipants(ctx context.Context, sessionID uint) error
}

// PasswordResetNotifier delivers a password-reset token out of band.
type PasswordResetNotifier interface {
	SendPasswordReset(ctx context.Context, userID uint, email, token string, expiresAt time.Time) error
}

// DevNotifier logs instead of delivering. Used outside production and as a
// fallback when the queue is not configured.
type DevNotifier struct {
	logger *slog.Logger
}

func NewDevNotifier(logger *slog.Logger) *DevNotifier {
	return &DevNotifier{logger: logger}
}

func (n *DevNotifier) NotifySessionParticipants(ctx context.Context, sessionID uint) error {
	n.logger.InfoContext(ctx, "session notification enqueued", "session_id", sessionID)
	return nil
}

func (n *DevNotifier) SendPasswordReset(ctx context.Context, userID uint, email, token string, expiresAt time.Time) error {
	n.logger.InfoContext(ctx, "password reset token issued",
		"user_id", userID,
		"email", email,
		"token", token,
		"expires_at", expiresAt,
	)
	return nil
}
