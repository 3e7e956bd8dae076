package calls

import "time"

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Status is a one-way progression: ringing may move through in-progress and
// ends in completed, failed, no-answer or busy. Transitions after creation are
// driven by provider callbacks that update the row by external_id; nothing in
// this service mutates a call past a terminal state.
type Status string

const (
	StatusRinging    Status = "ringing"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusNoAnswer   Status = "no-answer"
	StatusBusy       Status = "busy"
)

// ValidStatus reports whether s names a known call status. Used to reject
// junk status filters before they reach the store.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusRinging, StatusInProgress, StatusCompleted, StatusFailed, StatusNoAnswer, StatusBusy:
		return true
	default:
		return false
	}
}

// Terminal reports whether s is an end state.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusNoAnswer, StatusBusy:
		return true
	default:
		return false
	}
}

// Call is one inbound or outbound voice session. ContactID is nullable:
// calls attach directly to a contact when one is known, and never route
// through a conversation.
type Call struct {
	ID          string  `json:"id" db:"id"`
	ContactID   *string `json:"contact_id" db:"contact_id"`
	PhoneNumber string  `json:"phone_number" db:"phone_number"`

	// ExternalID is the provider call identifier (OpenClaw callId or Twilio
	// CallSid) used to correlate status callbacks.
	ExternalID *string `json:"external_id" db:"external_id"`

	Direction Direction `json:"direction" db:"direction"`
	Status    Status    `json:"status" db:"status"`

	DurationSeconds          *int    `json:"duration_seconds" db:"duration_seconds"`
	RecordingURL             *string `json:"recording_url" db:"recording_url"`
	RecordingDurationSeconds *int    `json:"recording_duration_seconds" db:"recording_duration_seconds"`
	TranscriptText           *string `json:"transcript_text" db:"transcript_text"`
	TranscriptJSON           *string `json:"transcript_json" db:"transcript_json"`
	Summary                  *string `json:"summary" db:"summary"`

	StartedAt  *time.Time `json:"started_at" db:"started_at"`
	AnsweredAt *time.Time `json:"answered_at" db:"answered_at"`
	EndedAt    *time.Time `json:"ended_at" db:"ended_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
