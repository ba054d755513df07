package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/atifjaved999/mini-coaching/internal/domain"
	"github.com/atifjaved999/mini-coaching/internal/observability"
)

var (
	ErrSessionNotFound        = errors.New("session not found")
	ErrSessionConflict        = errors.New("session overlaps an existing session")
	ErrDuplicateParticipation = errors.New("user already on session roster")
	ErrParticipationNotFound  = errors.New("participation not found")
)

// pgExclusionViolation is SQLSTATE 23P01, raised by the sessions_no_overlap
// exclusion constraint when two transactions race past the application-level
// conflict scan.
const pgExclusionViolation = "23P01"

type SessionRepository interface {
	// Create persists the session and one participation per participant id,
	// atomically with a conflict re-check. participantIDs must reference
	// existing users.
	Create(session *domain.Session, participantIDs []uint) error
	Update(session *domain.Session) error
	Delete(id uint) error
	FindByID(id uint) (*domain.Session, error)
	ListAll() ([]domain.Session, error)
	ListForUser(userID uint, roleName string) ([]domain.Session, error)
	ListAvailable(excludeUserID uint) ([]domain.Session, error)

	// FindConflicts is the pure conflict scan: every session on scheduledOn
	// whose half-open [start,end) interval strictly overlaps the candidate,
	// excluding excludeID. Read-only and safe to call concurrently.
	FindConflicts(scheduledOn string, startMinute, endMinute int, excludeID uint) ([]domain.Session, error)

	AddParticipant(sessionID, userID uint) error
	RemoveParticipant(sessionID, userID uint) error
	IsParticipant(sessionID, userID uint) (bool, error)
	Roster(sessionID uint) ([]domain.User, error)
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

func translateScheduleError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
		return ErrSessionConflict
	}
	return err
}

func findConflictsTx(tx *gorm.DB, scheduledOn string, startMinute, endMinute int, excludeID uint) ([]domain.Session, error) {
	var conflicts []domain.Session
	q := tx.Where("scheduled_on = ? AND start_minute < ? AND end_minute > ?", scheduledOn, endMinute, startMinute)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Order("start_minute asc").Find(&conflicts).Error; err != nil {
		return nil, err
	}
	return conflicts, nil
}

func (r *GormSessionRepository) FindConflicts(scheduledOn string, startMinute, endMinute int, excludeID uint) ([]domain.Session, error) {
	return findConflictsTx(r.db, scheduledOn, startMinute, endMinute, excludeID)
}

func (r *GormSessionRepository) Create(session *domain.Session, participantIDs []uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		conflicts, err := findConflictsTx(tx, session.ScheduledOn, session.StartMinute, session.EndMinute, 0)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return ErrSessionConflict
		}
		if err := tx.Create(session).Error; err != nil {
			return translateScheduleError(err)
		}
		for _, userID := range participantIDs {
			p := domain.Participation{SessionID: session.ID, UserID: userID}
			if err := tx.Create(&p).Error; err != nil {
				// The same id may appear twice in the initial list; one
				// roster row is the invariant, not an error.
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					continue
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrSessionConflict) {
			outcome = "conflict"
		}
		observability.RecordRepositoryOperation(context.Background(), "session", "create", outcome)
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "create", "success")
	return nil
}

func (r *GormSessionRepository) Update(session *domain.Session) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing domain.Session
		if err := tx.First(&existing, session.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		conflicts, err := findConflictsTx(tx, session.ScheduledOn, session.StartMinute, session.EndMinute, session.ID)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return ErrSessionConflict
		}
		res := tx.Model(&domain.Session{}).Where("id = ?", session.ID).Updates(map[string]any{
			"title":        session.Title,
			"description":  session.Description,
			"scheduled_on": session.ScheduledOn,
			"start_minute": session.StartMinute,
			"end_minute":   session.EndMinute,
		})
		if res.Error != nil {
			return translateScheduleError(res.Error)
		}
		return nil
	})
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, ErrSessionConflict):
			outcome = "conflict"
		case errors.Is(err, ErrSessionNotFound):
			outcome = "not_found"
		}
		observability.RecordRepositoryOperation(context.Background(), "session", "update", outcome)
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "update", "success")
	return nil
}

func (r *GormSessionRepository) Delete(id uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&domain.Session{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSessionNotFound
		}
		return tx.Where("session_id = ?", id).Delete(&domain.Participation{}).Error
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrSessionNotFound) {
			outcome = "not_found"
		}
		observability.RecordRepositoryOperation(context.Background(), "session", "delete", outcome)
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "delete", "success")
	return nil
}

func (r *GormSessionRepository) FindByID(id uint) (*domain.Session, error) {
	var session domain.Session
	if err := r.db.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "session", "find_by_id", "not_found")
			return nil, ErrSessionNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "session", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "find_by_id", "success")
	return &session, nil
}

func (r *GormSessionRepository) ListAll() ([]domain.Session, error) {
	var sessions []domain.Session
	err := r.db.Order("scheduled_on asc").Order("start_minute asc").Find(&sessions).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "list", "success")
	return sessions, nil
}

// ListForUser returns the sessions the user participates in, filtered to
// users holding roleName — the "my sessions as client" / "as coach" views.
func (r *GormSessionRepository) ListForUser(userID uint, roleName string) ([]domain.Session, error) {
	var sessions []domain.Session
	err := r.db.
		Joins("JOIN participations ON participations.session_id = sessions.id").
		Joins("JOIN user_roles ON user_roles.user_id = participations.user_id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("participations.user_id = ? AND roles.name = ?", userID, roleName).
		Distinct("sessions.*").
		Order("sessions.scheduled_on asc").Order("sessions.start_minute asc").
		Find(&sessions).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "list_for_user", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "list_for_user", "success")
	return sessions, nil
}

// ListAvailable returns sessions the given user has not joined yet.
func (r *GormSessionRepository) ListAvailable(excludeUserID uint) ([]domain.Session, error) {
	var sessions []domain.Session
	err := r.db.
		Where("id NOT IN (?)", r.db.Model(&domain.Participation{}).Select("session_id").Where("user_id = ?", excludeUserID)).
		Order("scheduled_on asc").Order("start_minute asc").
		Find(&sessions).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "session", "list_available", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "session", "list_available", "success")
	return sessions, nil
}

// AddParticipant inserts one roster row. The uq_session_user unique index is
// the race backstop: a concurrent duplicate insert loses with
// ErrDuplicateParticipation instead of producing a second row.
func (r *GormSessionRepository) AddParticipant(sessionID, userID uint) error {
	p := domain.Participation{SessionID: sessionID, UserID: userID}
	if err := r.db.Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(context.Background(), "participation", "create", "duplicate")
			return ErrDuplicateParticipation
		}
		observability.RecordRepositoryOperation(context.Background(), "participation", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "participation", "create", "success")
	return nil
}

func (r *GormSessionRepository) RemoveParticipant(sessionID, userID uint) error {
	res := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).Delete(&domain.Participation{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "participation", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "participation", "delete", "not_found")
		return ErrParticipationNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "participation", "delete", "success")
	return nil
}

func (r *GormSessionRepository) IsParticipant(sessionID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Participation{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormSessionRepository) Roster(sessionID uint) ([]domain.User, error) {
	var users []domain.User
	err := r.db.Preload("Roles").
		Where("id IN (?)", r.db.Model(&domain.Participation{}).Select("user_id").Where("session_id = ?", sessionID)).
		Order("id asc").
		Find(&users).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "participation", "roster", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "participation", "roster", "success")
	return users, nil
}
