package messages

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository is the persistence boundary for messages.
type Repository interface {
	Insert(ctx context.Context, m Message) error
	List(ctx context.Context, f ListFilter) ([]Message, int, error)
}

type ListFilter struct {
	// Exactly one of ConversationID or ContactID is used; ConversationID wins
	// when both are set.
	ConversationID string
	ContactID      string
	Limit          int
	Offset         int
}

// NOTE: This repository assumes the following table exists:
//
//   messages (
//     id uuid PRIMARY KEY,
//     conversation_id uuid NOT NULL REFERENCES conversations(id),
//     contact_id uuid NOT NULL REFERENCES contacts(id),
//     external_id text,
//     body text,
//     direction text NOT NULL,
//     status text NOT NULL,
//     media_urls text[] NOT NULL DEFAULT '{}',
//     media_types text[] NOT NULL DEFAULT '{}',
//     error_message text,
//     sent_at timestamptz,
//     delivered_at timestamptz,
//     created_at timestamptz NOT NULL,
//     updated_at timestamptz NOT NULL
//   )
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const messageColumns = `id, conversation_id, contact_id, external_id, body, direction, status, media_urls, media_types, error_message, sent_at, delivered_at, created_at, updated_at`

func scanMessage(row interface{ Scan(...any) error }) (Message, error) {
	var m Message
	err := row.Scan(
		&m.ID,
		&m.ConversationID,
		&m.ContactID,
		&m.ExternalID,
		&m.Body,
		&m.Direction,
		&m.Status,
		pq.Array(&m.MediaURLs),
		pq.Array(&m.MediaTypes),
		&m.ErrorMessage,
		&m.SentAt,
		&m.DeliveredAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func (r *SQLRepository) Insert(ctx context.Context, m Message) error {
	const q = `
INSERT INTO messages (
  id, conversation_id, contact_id, external_id, body, direction, status,
  media_urls, media_types, error_message, sent_at, delivered_at, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
)
`
	_, err := r.db.ExecContext(ctx, q,
		m.ID,
		m.ConversationID,
		m.ContactID,
		m.ExternalID,
		m.Body,
		m.Direction,
		m.Status,
		pq.Array(m.MediaURLs),
		pq.Array(m.MediaTypes),
		m.ErrorMessage,
		m.SentAt,
		m.DeliveredAt,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context, f ListFilter) ([]Message, int, error) {
	where := ``
	args := []any{}
	switch {
	case f.ConversationID != "":
		args = append(args, f.ConversationID)
		where = ` WHERE conversation_id = $1`
	case f.ContactID != "":
		args = append(args, f.ContactID)
		where = ` WHERE contact_id = $1`
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM messages`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	q := `SELECT ` + messageColumns + ` FROM messages` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}
