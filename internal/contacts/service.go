package contacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("contact not found")
	ErrDuplicate       = errors.New("contact already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)

const defaultListLimit = 50

// Service provides contact operations, including the get-or-create resolver
// used by inbound ingestion and outbound dispatch.
type Service struct {
	repo Repository
	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Resolve finds the contact owning phoneNumber, creating a bare row on first
// sight. Lookup-then-insert with no transaction: two concurrent first-time
// calls race, and the loser's insert hits the unique constraint. That loser
// re-reads and returns the winner's row, so the operation is idempotent as
// long as the store enforces uniqueness on phone_number.
func (s *Service) Resolve(ctx context.Context, phoneNumber string) (Contact, error) {
	if phoneNumber == "" {
		return Contact{}, fmt.Errorf("%w: phone_number required", ErrInvalidArgument)
	}

	existing, err := s.repo.GetByPhone(ctx, phoneNumber)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Contact{}, err
	}

	now := s.clock().UTC()
	c := Contact{
		ID:          uuid.NewString(),
		PhoneNumber: phoneNumber,
		Tags:        []string{},
		AIEnabled:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicate) {
			// Lost the race; the row exists now.
			return s.repo.GetByPhone(ctx, phoneNumber)
		}
		return Contact{}, err
	}
	return c, nil
}

type CreateInput struct {
	PhoneNumber string   `json:"phone_number"`
	Name        *string  `json:"name"`
	Email       *string  `json:"email"`
	Company     *string  `json:"company"`
	Notes       *string  `json:"notes"`
	Tags        []string `json:"tags"`
	AIEnabled   *bool    `json:"ai_enabled"`
	Favorited   *bool    `json:"favorited"`
}

// Create inserts an explicitly authored contact. ai_enabled defaults to true
// and favorited to false when omitted.
func (s *Service) Create(ctx context.Context, in CreateInput) (Contact, error) {
	if in.PhoneNumber == "" {
		return Contact{}, fmt.Errorf("%w: phone_number required", ErrInvalidArgument)
	}

	now := s.clock().UTC()
	c := Contact{
		ID:          uuid.NewString(),
		PhoneNumber: in.PhoneNumber,
		Name:        in.Name,
		Email:       in.Email,
		Company:     in.Company,
		Notes:       in.Notes,
		Tags:        in.Tags,
		AIEnabled:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if in.AIEnabled != nil {
		c.AIEnabled = *in.AIEnabled
	}
	if in.Favorited != nil {
		c.Favorited = *in.Favorited
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		return Contact{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (Contact, error) {
	if id == "" {
		return Contact{}, fmt.Errorf("%w: id required", ErrInvalidArgument)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Contact, int, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

// RecordMessageActivity bumps message_count and last_contact after a message
// lands for the contact.
func (s *Service) RecordMessageActivity(ctx context.Context, id string, at time.Time) error {
	return s.repo.RecordActivity(ctx, id, ActivityMessage, at.UTC())
}

// RecordCallActivity bumps call_count and last_contact after a call is
// recorded for the contact.
func (s *Service) RecordCallActivity(ctx context.Context, id string, at time.Time) error {
	return s.repo.RecordActivity(ctx, id, ActivityCall, at.UTC())
}
