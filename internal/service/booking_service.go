package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/atifjaved999/mini-coaching/internal/domain"
	"github.com/atifjaved999/mini-coaching/internal/observability"
	"github.com/atifjaved999/mini-coaching/internal/repository"
)

type BookingServiceInterface interface {
	Book(ctx context.Context, actor *domain.User, sessionID uint) (*SessionView, error)
}

// BookingService adds a client to a session's roster. Booking performs no
// interval-conflict check: a client may hold overlapping bookings under the
// current business rules.
type BookingService struct {
	sessions repository.SessionRepository
	cache    SessionCacheStore
	notifier SessionNotifier
	logger   *slog.Logger
}

func NewBookingService(
	sessions repository.SessionRepository,
	cache SessionCacheStore,
	notifier SessionNotifier,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{sessions: sessions, cache: cache, notifier: notifier, logger: logger}
}

func (s *BookingService) Book(ctx context.Context, actor *domain.User, sessionID uint) (*SessionView, error) {
	if err := requireRole(actor, domain.RoleClient); err != nil {
		observability.RecordSchedulingEvent(ctx, "book", "forbidden")
		return nil, err
	}
	session, err := s.sessions.FindByID(sessionID)
	if err != nil {
		observability.RecordSchedulingEvent(ctx, "book", "not_found")
		return nil, err
	}

	// Fast path for the common repeat submission; the unique roster index
	// remains the authority when two bookings race past this check.
	booked, err := s.sessions.IsParticipant(sessionID, actor.ID)
	if err != nil {
		observability.RecordSchedulingEvent(ctx, "book", "error")
		return nil, err
	}
	if booked {
		observability.RecordSchedulingEvent(ctx, "book", "already_booked")
		return nil, ErrAlreadyBooked
	}

	if err := s.sessions.AddParticipant(sessionID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrDuplicateParticipation) {
			observability.RecordSchedulingEvent(ctx, "book", "already_booked")
			return nil, ErrAlreadyBooked
		}
		observability.RecordSchedulingEvent(ctx, "book", "error")
		return nil, err
	}
	observability.RecordSchedulingEvent(ctx, "book", "success")

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "session cache invalidation failed", "session_id", sessionID, "operation", "book", "error", err)
	}
	if err := s.notifier.NotifySessionParticipants(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "session notification enqueue failed", "session_id", sessionID, "operation", "book", "error", err)
	}

	roster, err := s.sessions.Roster(sessionID)
	if err != nil {
		return nil, err
	}
	view := newSessionView(session, roster, time.Now().UTC())
	return &view, nil
}
