package conversations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("conversation not found")
	ErrDuplicate       = errors.New("conversation already exists")
	ErrInvalidArgument = errors.New("invalid argument")
)

const defaultListLimit = 50

// Service provides conversation operations. The resolver mirrors the contact
// resolver: no in-process locking, uniqueness lives in the store.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Resolve finds the conversation for (phoneNumber, channel), creating one
// owned by contactID on first sight. A concurrent creator wins the unique
// constraint; the loser re-reads and returns the winner's row.
func (s *Service) Resolve(ctx context.Context, contactID, phoneNumber, channel string) (Conversation, error) {
	if contactID == "" || phoneNumber == "" || channel == "" {
		return Conversation{}, fmt.Errorf("%w: contact_id, phone_number and channel required", ErrInvalidArgument)
	}

	existing, err := s.repo.GetByPhoneAndChannel(ctx, phoneNumber, channel)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Conversation{}, err
	}

	now := s.clock().UTC()
	c := Conversation{
		ID:          uuid.NewString(),
		ContactID:   contactID,
		PhoneNumber: phoneNumber,
		Channel:     channel,
		AIEnabled:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return s.repo.GetByPhoneAndChannel(ctx, phoneNumber, channel)
		}
		return Conversation{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (Conversation, error) {
	if id == "" {
		return Conversation{}, fmt.Errorf("%w: id required", ErrInvalidArgument)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Conversation, int, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}

// TouchMessage refreshes the cache fields after a message lands on the
// conversation. Inbound messages also bump unread_count.
func (s *Service) TouchMessage(ctx context.Context, id, body string, at time.Time, inbound bool) error {
	if id == "" {
		return fmt.Errorf("%w: id required", ErrInvalidArgument)
	}
	return s.repo.TouchMessage(ctx, id, body, at.UTC(), inbound)
}
