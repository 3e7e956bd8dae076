package messages

import "time"

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusReceived  Status = "received"
)

// Message is one inbound or outbound communication unit.
//
// Invariant: ContactID must equal the owning conversation's contact_id.
// MediaURLs and MediaTypes are parallel arrays; the same index refers to one
// attachment. Rows are immutable after creation except for status transitions
// (sent -> delivered/failed) driven by delivery callbacks, which arrive via a
// separate provider integration and update by external_id.
type Message struct {
	ID             string `json:"id" db:"id"`
	ConversationID string `json:"conversation_id" db:"conversation_id"`
	ContactID      string `json:"contact_id" db:"contact_id"`

	// ExternalID is the provider-assigned identifier (Twilio MessageSid or
	// the OpenClaw send id) used to correlate status callbacks.
	ExternalID *string `json:"external_id" db:"external_id"`

	Body      *string   `json:"body" db:"body"`
	Direction Direction `json:"direction" db:"direction"`
	Status    Status    `json:"status" db:"status"`

	MediaURLs  []string `json:"media_urls" db:"media_urls"`
	MediaTypes []string `json:"media_types" db:"media_types"`

	ErrorMessage *string    `json:"error_message" db:"error_message"`
	SentAt       *time.Time `json:"sent_at" db:"sent_at"`
	DeliveredAt  *time.Time `json:"delivered_at" db:"delivered_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
