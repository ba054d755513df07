package domain

import "time"

// Session is a bookable time slot on the shared schedule. Times are stored
// as minutes since midnight so interval comparisons stay integer-valued on
// every supported database; ScheduledOn is the calendar date in 2006-01-02
// form. Intervals are half-open: [StartMinute, EndMinute).
type Session struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"size:2048" json:"description"`
	ScheduledOn string    `gorm:"size:10;index;not null" json:"scheduled_on"`
	StartMinute int       `gorm:"not null" json:"start_minute"`
	EndMinute   int       `gorm:"not null" json:"end_minute"`
	CreatedByID uint      `gorm:"index;not null" json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Populated by the service layer from the participations table.
	Participants []User `gorm:"-" json:"participants,omitempty"`
}

// Participation links one user to one session. The composite unique index is
// the storage-level guarantee that a user appears at most once per roster;
// concurrent duplicate bookings collapse onto it.
type Participation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"uniqueIndex:uq_session_user;not null" json:"session_id"`
	UserID    uint      `gorm:"uniqueIndex:uq_session_user;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
