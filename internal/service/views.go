package service

import (
	"fmt"
	"time"

	"github.com/atifjaved999/mini-coaching/internal/domain"
)

const (
	dateLayout    = "2006-01-02"
	minutesPerDay = 24 * 60
)

type ParticipantView struct {
	ID    uint     `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type SessionView struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	ScheduledOn  string            `json:"scheduled_on"`
	StartTime    string            `json:"start_time"`
	EndTime      string            `json:"end_time"`
	Status       string            `json:"status"`
	CreatedByID  uint              `json:"created_by_id"`
	Participants []ParticipantView `json:"participants,omitempty"`
}

type UserView struct {
	ID    uint     `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// parseClock converts zero-padded "HH:MM" to minutes since midnight.
func parseClock(value string) (int, error) {
	// time.Parse would accept an unpadded hour; the wire format does not.
	if len(value) != 5 {
		return 0, fmt.Errorf("%w: bad clock value %q", ErrInvalidInterval, value)
	}
	clock, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("%w: bad clock value %q", ErrInvalidInterval, value)
	}
	return clock.Hour()*60 + clock.Minute(), nil
}

func formatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// parseInterval validates a candidate {date, start, end} and returns the
// storage representation. Start must be strictly before end; intervals are
// half-open so start == end is empty and rejected.
func parseInterval(scheduledOn, startTime, endTime string) (string, int, int, error) {
	day, err := time.Parse(dateLayout, scheduledOn)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: bad date %q", ErrInvalidInterval, scheduledOn)
	}
	start, err := parseClock(startTime)
	if err != nil {
		return "", 0, 0, err
	}
	end, err := parseClock(endTime)
	if err != nil {
		return "", 0, 0, err
	}
	if start >= end || end > minutesPerDay {
		return "", 0, 0, fmt.Errorf("%w: start %q must be before end %q", ErrInvalidInterval, startTime, endTime)
	}
	return day.Format(dateLayout), start, end, nil
}

func roleNames(user *domain.User) []string {
	names := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		names = append(names, r.Name)
	}
	return names
}

func newUserView(user *domain.User) UserView {
	return UserView{ID: user.ID, Name: user.Name, Email: user.Email, Roles: roleNames(user)}
}

func newParticipantViews(users []domain.User) []ParticipantView {
	views := make([]ParticipantView, 0, len(users))
	for i := range users {
		u := &users[i]
		views = append(views, ParticipantView{ID: u.ID, Name: u.Name, Email: u.Email, Roles: roleNames(u)})
	}
	return views
}

// sessionStatus derives the presented status from the clock; nothing is
// persisted. A deleted session simply stops existing.
func sessionStatus(session *domain.Session, now time.Time) string {
	day, err := time.Parse(dateLayout, session.ScheduledOn)
	if err != nil {
		return "upcoming"
	}
	end := day.Add(time.Duration(session.EndMinute) * time.Minute)
	if now.After(end) {
		return "completed"
	}
	return "upcoming"
}

func newSessionView(session *domain.Session, roster []domain.User, now time.Time) SessionView {
	return SessionView{
		ID:           session.ID,
		Title:        session.Title,
		Description:  session.Description,
		ScheduledOn:  session.ScheduledOn,
		StartTime:    formatClock(session.StartMinute),
		EndTime:      formatClock(session.EndMinute),
		Status:       sessionStatus(session, now),
		CreatedByID:  session.CreatedByID,
		Participants: newParticipantViews(roster),
	}
}
