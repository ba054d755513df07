package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/atifjaved999/mini-coaching/internal/domain"
	"github.com/atifjaved999/mini-coaching/internal/observability"
	"github.com/atifjaved999/mini-coaching/internal/repository"
)

const (
	cacheKeyAllSessions = "all"
)

// SessionInput carries the mutable attributes of a session. Times are wire
// format: date as 2006-01-02, clocks as zero-padded HH:MM.
type SessionInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ScheduledOn string `json:"scheduled_on"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

type SessionServiceInterface interface {
	Create(ctx context.Context, actor *domain.User, input SessionInput, participantIDs []uint) (*SessionView, error)
	Update(ctx context.Context, actor *domain.User, sessionID uint, input SessionInput) (*SessionView, error)
	Destroy(ctx context.Context, actor *domain.User, sessionID uint) error
	Get(ctx context.Context, sessionID uint) (*SessionView, error)
	ListAll(ctx context.Context) ([]SessionView, error)
	ListForUser(ctx context.Context, userID uint, roleName string) ([]SessionView, error)
	ListAvailable(ctx context.Context, actor *domain.User) ([]SessionView, error)
	Roster(ctx context.Context, sessionID uint) ([]ParticipantView, error)
	AddParticipant(ctx context.Context, actor *domain.User, sessionID, userID uint) (*SessionView, error)
	RemoveParticipant(ctx context.Context, actor *domain.User, sessionID, userID uint) error
}

type SessionService struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	cache    SessionCacheStore
	notifier SessionNotifier
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewSessionService(
	sessions repository.SessionRepository,
	users repository.UserRepository,
	cache SessionCacheStore,
	notifier SessionNotifier,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		sessions: sessions,
		users:    users,
		cache:    cache,
		notifier: notifier,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func requireRole(user *domain.User, role string) error {
	if user == nil || !user.HasRole(role) {
		return ErrForbidden
	}
	return nil
}

// requireOwnership restricts session mutation to the coach who created it.
func requireOwnership(session *domain.Session, actor *domain.User) error {
	if actor == nil || session.CreatedByID != actor.ID {
		return ErrForbidden
	}
	return nil
}

// fireHooks runs the post-commit side effects: cache invalidation and the
// participant notification job. Both are best-effort; a failing hook is
// logged and never turns a committed mutation into an error.
func (s *SessionService) fireHooks(ctx context.Context, sessionID uint, operation string) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "session cache invalidation failed",
			"session_id", sessionID, "operation", operation, "error", err)
	}
	if err := s.notifier.NotifySessionParticipants(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "session notification enqueue failed",
			"session_id", sessionID, "operation", operation, "error", err)
	}
}

func (s *SessionService) Create(ctx context.Context, actor *domain.User, input SessionInput, participantIDs []uint) (*SessionView, error) {
	if err := requireRole(actor, domain.RoleCoach); err != nil {
		observability.RecordSchedulingEvent(ctx, "create", "forbidden")
		return nil, err
	}
	scheduledOn, start, end, err := parseInterval(input.ScheduledOn, input.StartTime, input.EndTime)
	if err != nil {
		observability.RecordSchedulingEvent(ctx, "create", "invalid_interval")
		return nil, err
	}

	// Unknown participant ids are dropped rather than rejected; the creating
	// coach is always on the roster.
	ids := []uint{actor.ID}
	if len(participantIDs) > 0 {
		known, err := s.users.FindByIDs(participantIDs)
		if err != nil {
			return nil, err
		}
		for _, u := range known {
			if u.ID != actor.ID {
				ids = append(ids, u.ID)
			}
		}
	}

	session := &domain.Session{
		Title:       input.Title,
		Description: input.Description,
		ScheduledOn: scheduledOn,
		StartMinute: start,
		EndMinute:   end,
		CreatedByID: actor.ID,
	}
	if err := s.sessions.Create(session, ids); err != nil {
		if errors.Is(err, repository.ErrSessionConflict) {
			observability.RecordSchedulingEvent(ctx, "create", "conflict")
		} else {
			observability.RecordSchedulingEvent(ctx, "create", "error")
		}
		return nil, err
	}
	observability.RecordSchedulingEvent(ctx, "create", "success")
	s.fireHooks(ctx, session.ID, "create")
	return s.buildView(session)
}

func (s *SessionService) Update(ctx context.Context, actor *domain.User, sessionID uint, input SessionInput) (*SessionView, error) {
	if err := requireRole(actor, domain.RoleCoach); err != nil {
		observability.RecordSchedulingEvent(ctx, "update", "forbidden")
		return nil, err
	}
	existing, err := s.sessions.FindByID(sessionID)
	if err != nil {
		observability.RecordSchedulingEvent(ctx, "update", "not_found")
		return nil, err
	}
	if err := requireOwnership(existing, actor); err != nil {
		observability.RecordSchedulingEvent(ctx, "update", "forbidden")
		return nil, err
	}
	scheduledOn, start, end, err := parseInterval(input.ScheduledOn, input.StartTime, input.EndTime)
	if err != nil {
		observability.RecordSchedulingEvent(ctx, "update", "invalid_interval")
		return nil, err
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.ScheduledOn = scheduledOn
	existing.StartMinute = start
	existing.EndMinute = end
	if err := s.sessions.Update(existing); err != nil {
		if errors.Is(err, repository.ErrSessionConflict) {
			observability.RecordSchedulingEvent(ctx, "update", "conflict")
		} else {
			observability.RecordSchedulingEvent(ctx, "update", "error")
		}
		return nil, err
	}
	observability.RecordSchedulingEvent(ctx, "update", "success")
	s.fireHooks(ctx, existing.ID, "update")
	return s.buildView(existing)
}

func (s *SessionService) Destroy(ctx context.Context, actor *domain.User, sessionID uint) error {
	if err := requireRole(actor, domain.RoleCoach); err != nil {
		observability.RecordSchedulingEvent(ctx, "destroy", "forbidden")
		return err
	}
	existing, err := s.sessions.FindByID(sessionID)
	if err != nil {
		observability.RecordSchedulingEvent(ctx, "destroy", "not_found")
		return err
	}
	if err := requireOwnership(existing, actor); err != nil {
		observability.RecordSchedulingEvent(ctx, "destroy", "forbidden")
		return err
	}
	if err := s.sessions.Delete(sessionID); err != nil {
		observability.RecordSchedulingEvent(ctx, "destroy", "error")
		return err
	}
	observability.RecordSchedulingEvent(ctx, "destroy", "success")
	s.fireHooks(ctx, sessionID, "destroy")
	return nil
}

func (s *SessionService) Get(ctx context.Context, sessionID uint) (*SessionView, error) {
	session, err := s.sessions.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildView(session)
}

func (s *SessionService) ListAll(ctx context.Context) ([]SessionView, error) {
	if cached, ok := s.cacheGet(ctx, cacheKeyAllSessions); ok {
		return cached, nil
	}
	sessions, err := s.sessions.ListAll()
	if err != nil {
		return nil, err
	}
	views := s.listViews(sessions)
	s.cacheSet(ctx, cacheKeyAllSessions, views)
	return views, nil
}

func (s *SessionService) ListForUser(ctx context.Context, userID uint, roleName string) ([]SessionView, error) {
	if roleName != domain.RoleCoach && roleName != domain.RoleClient {
		return nil, ErrValidation
	}
	sessions, err := s.sessions.ListForUser(userID, roleName)
	if err != nil {
		return nil, err
	}
	return s.listViews(sessions), nil
}

func (s *SessionService) ListAvailable(ctx context.Context, actor *domain.User) ([]SessionView, error) {
	if err := requireRole(actor, domain.RoleClient); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListAvailable(actor.ID)
	if err != nil {
		return nil, err
	}
	return s.listViews(sessions), nil
}

func (s *SessionService) Roster(ctx context.Context, sessionID uint) ([]ParticipantView, error) {
	if _, err := s.sessions.FindByID(sessionID); err != nil {
		return nil, err
	}
	roster, err := s.sessions.Roster(sessionID)
	if err != nil {
		return nil, err
	}
	return newParticipantViews(roster), nil
}

func (s *SessionService) AddParticipant(ctx context.Context, actor *domain.User, sessionID, userID uint) (*SessionView, error) {
	if err := requireRole(actor, domain.RoleCoach); err != nil {
		return nil, err
	}
	session, err := s.sessions.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnership(session, actor); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(userID); err != nil {
		return nil, err
	}
	if err := s.sessions.AddParticipant(sessionID, userID); err != nil {
		if errors.Is(err, repository.ErrDuplicateParticipation) {
			return nil, ErrAlreadyBooked
		}
		return nil, err
	}
	s.fireHooks(ctx, sessionID, "add_participant")
	return s.buildView(session)
}

func (s *SessionService) RemoveParticipant(ctx context.Context, actor *domain.User, sessionID, userID uint) error {
	if err := requireRole(actor, domain.RoleCoach); err != nil {
		return err
	}
	session, err := s.sessions.FindByID(sessionID)
	if err != nil {
		return err
	}
	if err := requireOwnership(session, actor); err != nil {
		return err
	}
	if err := s.sessions.RemoveParticipant(sessionID, userID); err != nil {
		return err
	}
	s.fireHooks(ctx, sessionID, "remove_participant")
	return nil
}

func (s *SessionService) buildView(session *domain.Session) (*SessionView, error) {
	roster, err := s.sessions.Roster(session.ID)
	if err != nil {
		return nil, err
	}
	view := newSessionView(session, roster, time.Now().UTC())
	return &view, nil
}

// listViews renders listings without rosters; participants are loaded on the
// detail view only.
func (s *SessionService) listViews(sessions []domain.Session) []SessionView {
	now := time.Now().UTC()
	views := make([]SessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, newSessionView(&sessions[i], nil, now))
	}
	return views
}

func (s *SessionService) cacheGet(ctx context.Context, key string) ([]SessionView, bool) {
	payload, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "session cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var views []SessionView
	if err := json.Unmarshal(payload, &views); err != nil {
		s.logger.WarnContext(ctx, "session cache payload corrupt", "key", key, "error", err)
		return nil, false
	}
	return views, true
}

func (s *SessionService) cacheSet(ctx context.Context, key string, views []SessionView) {
	payload, err := json.Marshal(views)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "session cache write failed", "key", key, "error", err)
	}
}
