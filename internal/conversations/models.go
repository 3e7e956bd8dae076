package conversations

import "time"

// Conversation is a channel-scoped thread between the system and one contact.
//
// Invariant: at most one conversation exists per (phone_number, channel) pair,
// enforced by the store. last_message/last_message_at, unread_count and
// message_count are denormalized caches refreshed on every new message.
type Conversation struct {
	ID          string `json:"id" db:"id"`
	ContactID   string `json:"contact_id" db:"contact_id"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`
	Channel     string `json:"channel" db:"channel"`

	AIEnabled bool `json:"ai_enabled" db:"ai_enabled"`
	Muted     bool `json:"muted" db:"muted"`

	LastMessage   *string    `json:"last_message" db:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at" db:"last_message_at"`
	UnreadCount   int        `json:"unread_count" db:"unread_count"`
	MessageCount  int        `json:"message_count" db:"message_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
