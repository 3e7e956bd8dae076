package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"summers-phone/pkg/utils"

	"github.com/lib/pq"
)

// Repository is the persistence boundary for contacts.
// Implementations must map a store-level unique violation on phone_number to
// ErrDuplicate so callers can resolve get-or-create races by re-reading.
type Repository interface {
	GetByPhone(ctx context.Context, phoneNumber string) (Contact, error)
	GetByID(ctx context.Context, id string) (Contact, error)
	Insert(ctx context.Context, c Contact) error
	List(ctx context.Context, f ListFilter) ([]Contact, int, error)
	RecordActivity(ctx context.Context, id string, kind ActivityKind, at time.Time) error
}

type ListFilter struct {
	// Search matches case-insensitively against name, phone_number and email.
	Search string
	// Tag filters to contacts carrying the tag.
	Tag    string
	Limit  int
	Offset int
}

// NOTE: This repository assumes the following table exists:
//
//   contacts (
//     id uuid PRIMARY KEY,
//     phone_number text NOT NULL UNIQUE,
//     name text, email text, company text, notes text,
//     tags text[] NOT NULL DEFAULT '{}',
//     ai_enabled boolean NOT NULL DEFAULT true,
//     favorited boolean NOT NULL DEFAULT false,
//     message_count integer NOT NULL DEFAULT 0,
//     call_count integer NOT NULL DEFAULT 0,
//     last_contact timestamptz,
//     created_at timestamptz NOT NULL,
//     updated_at timestamptz NOT NULL
//   )
//
// The UNIQUE on phone_number is load-bearing: the get-or-create resolver has
// no transactional guard and relies on it entirely.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const contactColumns = `id, phone_number, name, email, company, notes, tags, ai_enabled, favorited, message_count, call_count, last_contact, created_at, updated_at`

func scanContact(row interface{ Scan(...any) error }) (Contact, error) {
	var c Contact
	err := row.Scan(
		&c.ID,
		&c.PhoneNumber,
		&c.Name,
		&c.Email,
		&c.Company,
		&c.Notes,
		pq.Array(&c.Tags),
		&c.AIEnabled,
		&c.Favorited,
		&c.MessageCount,
		&c.CallCount,
		&c.LastContact,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (r *SQLRepository) GetByPhone(ctx context.Context, phoneNumber string) (Contact, error) {
	q := `SELECT ` + contactColumns + ` FROM contacts WHERE phone_number = $1`
	c, err := scanContact(r.db.QueryRowContext(ctx, q, phoneNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	return c, err
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (Contact, error) {
	q := `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`
	c, err := scanContact(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	return c, err
}

func (r *SQLRepository) Insert(ctx context.Context, c Contact) error {
	const q = `
INSERT INTO contacts (
  id, phone_number, name, email, company, notes, tags, ai_enabled, favorited,
  message_count, call_count, last_contact, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.PhoneNumber,
		c.Name,
		c.Email,
		c.Company,
		c.Notes,
		pq.Array(c.Tags),
		c.AIEnabled,
		c.Favorited,
		c.MessageCount,
		c.CallCount,
		c.LastContact,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if utils.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context, f ListFilter) ([]Contact, int, error) {
	where := ` WHERE true`
	args := []any{}
	if f.Search != "" {
		pat := "%" + f.Search + "%"
		args = append(args, pat)
		n := len(args)
		where += fmt.Sprintf(" AND (name ILIKE $%d OR phone_number ILIKE $%d OR email ILIKE $%d)", n, n, n)
	}
	if f.Tag != "" {
		args = append(args, pq.Array([]string{f.Tag}))
		where += fmt.Sprintf(" AND tags @> $%d", len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM contacts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	q := `SELECT ` + contactColumns + ` FROM contacts` + where +
		fmt.Sprintf(` ORDER BY last_contact DESC NULLS LAST LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	out := make([]Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *SQLRepository) RecordActivity(ctx context.Context, id string, kind ActivityKind, at time.Time) error {
	col := "message_count"
	if kind == ActivityCall {
		col = "call_count"
	}
	q := fmt.Sprintf(`
UPDATE contacts
SET %s = %s + 1, last_contact = $2, updated_at = $2
WHERE id = $1
`, col, col)
	res, err := r.db.ExecContext(ctx, q, id, at)
	if err != nil {
		return fmt.Errorf("record contact activity: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
