package conversations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"summers-phone/pkg/utils"
)

// Repository is the persistence boundary for conversations.
// Implementations must map a unique violation on (phone_number, channel) to
// ErrDuplicate so the get-or-create resolver can re-read after losing a race.
type Repository interface {
	GetByPhoneAndChannel(ctx context.Context, phoneNumber, channel string) (Conversation, error)
	GetByID(ctx context.Context, id string) (Conversation, error)
	Insert(ctx context.Context, c Conversation) error
	List(ctx context.Context, f ListFilter) ([]Conversation, int, error)
	TouchMessage(ctx context.Context, id, body string, at time.Time, inbound bool) error
}

type ListFilter struct {
	Channel string
	Limit   int
	Offset  int
}

// NOTE: This repository assumes the following table exists:
//
//   conversations (
//     id uuid PRIMARY KEY,
//     contact_id uuid NOT NULL REFERENCES contacts(id),
//     phone_number text NOT NULL,
//     channel text NOT NULL,
//     ai_enabled boolean NOT NULL DEFAULT true,
//     muted boolean NOT NULL DEFAULT false,
//     last_message text,
//     last_message_at timestamptz,
//     unread_count integer NOT NULL DEFAULT 0,
//     message_count integer NOT NULL DEFAULT 0,
//     created_at timestamptz NOT NULL,
//     updated_at timestamptz NOT NULL,
//     UNIQUE (phone_number, channel)
//   )
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const conversationColumns = `id, contact_id, phone_number, channel, ai_enabled, muted, last_message, last_message_at, unread_count, message_count, created_at, updated_at`

func scanConversation(row interface{ Scan(...any) error }) (Conversation, error) {
	var c Conversation
	err := row.Scan(
		&c.ID,
		&c.ContactID,
		&c.PhoneNumber,
		&c.Channel,
		&c.AIEnabled,
		&c.Muted,
		&c.LastMessage,
		&c.LastMessageAt,
		&c.UnreadCount,
		&c.MessageCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *SQLRepository) GetByPhoneAndChannel(ctx context.Context, phoneNumber, channel string) (Conversation, error) {
	q := `SELECT ` + conversationColumns + ` FROM conversations WHERE phone_number = $1 AND channel = $2`
	c, err := scanConversation(r.db.QueryRowContext(ctx, q, phoneNumber, channel))
	if errors.Is(err, sql.ErrNoRows) {
		return Conversation{}, ErrNotFound
	}
	return c, err
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (Conversation, error) {
	q := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = $1`
	c, err := scanConversation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Conversation{}, ErrNotFound
	}
	return c, err
}

func (r *SQLRepository) Insert(ctx context.Context, c Conversation) error {
	const q = `
INSERT INTO conversations (
  id, contact_id, phone_number, channel, ai_enabled, muted,
  last_message, last_message_at, unread_count, message_count, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.ContactID,
		c.PhoneNumber,
		c.Channel,
		c.AIEnabled,
		c.Muted,
		c.LastMessage,
		c.LastMessageAt,
		c.UnreadCount,
		c.MessageCount,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if utils.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context, f ListFilter) ([]Conversation, int, error) {
	where := ` WHERE true`
	args := []any{}
	if f.Channel != "" {
		args = append(args, f.Channel)
		where += fmt.Sprintf(" AND channel = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM conversations`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	q := `SELECT ` + conversationColumns + ` FROM conversations` + where +
		fmt.Sprintf(` ORDER BY last_message_at DESC NULLS LAST LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	out := make([]Conversation, 0)
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *SQLRepository) TouchMessage(ctx context.Context, id, body string, at time.Time, inbound bool) error {
	unread := 0
	if inbound {
		unread = 1
	}
	const q = `
UPDATE conversations
SET last_message = $2,
    last_message_at = $3,
    message_count = message_count + 1,
    unread_count = unread_count + $4,
    updated_at = $3
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, id, body, at, unread)
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
