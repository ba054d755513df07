package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/atifjaved999/mini-coaching/internal/domain"
	"github.com/atifjaved999/mini-coaching/internal/observability"
)

var ErrResetTokenNotFound = errors.New("reset token not found")

type PasswordResetTokenRepository interface {
	Create(token *domain.PasswordResetToken) error
	// Redeem marks the unexpired, unconsumed token with the given hash as
	// consumed and returns it. Single-use is enforced by the guarded update:
	// of two concurrent redeemers exactly one wins.
	Redeem(tokenHash string, now time.Time) (*domain.PasswordResetToken, error)
}

type GormPasswordResetTokenRepository struct{ db *gorm.DB }

func NewPasswordResetTokenRepository(db *gorm.DB) PasswordResetTokenRepository {
	return &GormPasswordResetTokenRepository{db: db}
}

func (r *GormPasswordResetTokenRepository) Create(token *domain.PasswordResetToken) error {
	if err := r.db.Create(token).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "password_reset_token", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "password_reset_token", "create", "success")
	return nil
}

func (r *GormPasswordResetTokenRepository) Redeem(tokenHash string, now time.Time) (*domain.PasswordResetToken, error) {
	var token domain.PasswordResetToken
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.PasswordResetToken{}).
			Where("token_hash = ? AND consumed_at IS NULL AND expires_at > ?", tokenHash, now).
			Update("consumed_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrResetTokenNotFound
		}
		return tx.Where("token_hash = ?", tokenHash).First(&token).Error
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrResetTokenNotFound) {
			outcome = "not_found"
		}
		observability.RecordRepositoryOperation(context.Background(), "password_reset_token", "redeem", outcome)
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "password_reset_token", "redeem", "success")
	return &token, nil
}
