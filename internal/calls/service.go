package calls

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("call not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

const defaultListLimit = 50

// Service records voice calls and serves the call read API.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// RecordOutbound persists an outbound call that the gateway has just placed.
// New calls always start ringing; the provider moves them forward.
func (s *Service) RecordOutbound(ctx context.Context, contactID, phoneNumber, externalID string) (Call, error) {
	if phoneNumber == "" {
		return Call{}, fmt.Errorf("%w: phone_number required", ErrInvalidArgument)
	}

	now := s.clock().UTC()
	c := Call{
		ID:          uuid.NewString(),
		PhoneNumber: phoneNumber,
		Direction:   DirectionOutbound,
		Status:      StatusRinging,
		StartedAt:   &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if contactID != "" {
		c.ContactID = &contactID
	}
	if externalID != "" {
		c.ExternalID = &externalID
	}

	if err := s.repo.Insert(ctx, c); err != nil {
		return Call{}, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Call, int, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, fmt.Errorf("%w: invalid status filter %q", ErrInvalidArgument, f.Status)
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.List(ctx, f)
}
