package contacts

import "time"

// Contact is the identity anchor for a phone number.
//
// Invariants:
// - phone_number is globally unique (enforced by the store).
// - A contact owns its tags and aggregate counters.
// Contacts are never hard-deleted by this service.
type Contact struct {
	ID          string  `json:"id" db:"id"`
	PhoneNumber string  `json:"phone_number" db:"phone_number"`
	Name        *string `json:"name" db:"name"`
	Email       *string `json:"email" db:"email"`
	Company     *string `json:"company" db:"company"`
	Notes       *string `json:"notes" db:"notes"`

	Tags      []string `json:"tags" db:"tags"`
	AIEnabled bool     `json:"ai_enabled" db:"ai_enabled"`
	Favorited bool     `json:"favorited" db:"favorited"`

	MessageCount int        `json:"message_count" db:"message_count"`
	CallCount    int        `json:"call_count" db:"call_count"`
	LastContact  *time.Time `json:"last_contact" db:"last_contact"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ActivityKind selects which aggregate counter a new event bumps.
type ActivityKind string

const (
	ActivityMessage ActivityKind = "message"
	ActivityCall    ActivityKind = "call"
)
