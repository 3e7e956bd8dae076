package calls

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository is the persistence boundary for calls.
type Repository interface {
	Insert(ctx context.Context, c Call) error
	List(ctx context.Context, f ListFilter) ([]Call, int, error)
}

type ListFilter struct {
	ContactID   string
	PhoneNumber string
	Status      string
	Limit       int
	Offset      int
}

// NOTE: This repository assumes the following table exists:
//
//   calls (
//     id uuid PRIMARY KEY,
//     contact_id uuid REFERENCES contacts(id),
//     phone_number text NOT NULL,
//     external_id text,
//     direction text NOT NULL,
//     status text NOT NULL,
//     duration_seconds integer,
//     recording_url text,
//     recording_duration_seconds integer,
//     transcript_text text,
//     transcript_json jsonb,
//     summary text,
//     started_at timestamptz,
//     answered_at timestamptz,
//     ended_at timestamptz,
//     created_at timestamptz NOT NULL,
//     updated_at timestamptz NOT NULL
//   )
//
// Recording/transcript columns are filled by provider callbacks after the
// call ends, keyed by external_id.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const callColumns = `id, contact_id, phone_number, external_id, direction, status, duration_seconds, recording_url, recording_duration_seconds, transcript_text, transcript_json, summary, started_at, answered_at, ended_at, created_at, updated_at`

func scanCall(row interface{ Scan(...any) error }) (Call, error) {
	var c Call
	err := row.Scan(
		&c.ID,
		&c.ContactID,
		&c.PhoneNumber,
		&c.ExternalID,
		&c.Direction,
		&c.Status,
		&c.DurationSeconds,
		&c.RecordingURL,
		&c.RecordingDurationSeconds,
		&c.TranscriptText,
		&c.TranscriptJSON,
		&c.Summary,
		&c.StartedAt,
		&c.AnsweredAt,
		&c.EndedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *SQLRepository) Insert(ctx context.Context, c Call) error {
	const q = `
INSERT INTO calls (
  id, contact_id, phone_number, external_id, direction, status,
  duration_seconds, recording_url, recording_duration_seconds,
  transcript_text, transcript_json, summary,
  started_at, answered_at, ended_at, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.ContactID,
		c.PhoneNumber,
		c.ExternalID,
		c.Direction,
		c.Status,
		c.DurationSeconds,
		c.RecordingURL,
		c.RecordingDurationSeconds,
		c.TranscriptText,
		c.TranscriptJSON,
		c.Summary,
		c.StartedAt,
		c.AnsweredAt,
		c.EndedAt,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert call: %w", err)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context, f ListFilter) ([]Call, int, error) {
	where := ` WHERE true`
	args := []any{}
	if f.ContactID != "" {
		args = append(args, f.ContactID)
		where += fmt.Sprintf(" AND contact_id = $%d", len(args))
	}
	if f.PhoneNumber != "" {
		args = append(args, f.PhoneNumber)
		where += fmt.Sprintf(" AND phone_number = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM calls`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count calls: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	q := `SELECT ` + callColumns + ` FROM calls` + where +
		fmt.Sprintf(` ORDER BY started_at DESC NULLS LAST LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	out := make([]Call, 0)
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}
