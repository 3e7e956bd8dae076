package messages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"summers-phone/internal/contacts"
	"summers-phone/internal/conversations"
	"summers-phone/internal/telephony"
	"summers-phone/pkg/logger"

	"github.com/google/uuid"
)

var ErrInvalidArgument = errors.New("invalid argument")

const defaultListLimit = 100

// Service persists messages against resolved Contact/Conversation identities
// and serves the message read API.
type Service struct {
	repo          Repository
	contacts      *contacts.Service
	conversations *conversations.Service
	clock         func() time.Time
}

func NewService(repo Repository, contactSvc *contacts.Service, conversationSvc *conversations.Service) *Service {
	return &Service{
		repo:          repo,
		contacts:      contactSvc,
		conversations: conversationSvc,
		clock:         time.Now,
	}
}

// IngestInbound records an inbound SMS delivered by the carrier: resolve the
// contact by the sender number, resolve the twilio-sms conversation, insert
// the message in terminal state "received", then refresh the denormalized
// caches. Cache refreshes are best-effort; the message row is the source of
// truth and a stale counter is tolerable.
func (s *Service) IngestInbound(ctx context.Context, in telephony.InboundSMS) error {
	if in.From == "" {
		return fmt.Errorf("%w: from number required", ErrInvalidArgument)
	}

	contact, err := s.contacts.Resolve(ctx, in.From)
	if err != nil {
		return fmt.Errorf("resolve contact: %w", err)
	}
	conversation, err := s.conversations.Resolve(ctx, contact.ID, in.From, telephony.SMSChannel)
	if err != nil {
		return fmt.Errorf("resolve conversation: %w", err)
	}

	now := s.clock().UTC()
	m := Message{
		ID:             uuid.NewString(),
		ConversationID: conversation.ID,
		ContactID:      contact.ID,
		Body:           &in.Body,
		Direction:      DirectionInbound,
		Status:         StatusReceived,
		MediaURLs:      in.MediaURLs,
		MediaTypes:     in.MediaTypes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.MessageSid != "" {
		m.ExternalID = &in.MessageSid
	}
	if m.MediaURLs == nil {
		m.MediaURLs = []string{}
	}
	if m.MediaTypes == nil {
		m.MediaTypes = []string{}
	}

	if err := s.repo.Insert(ctx, m); err != nil {
		return err
	}
	s.refreshCaches(ctx, conversation.ID, contact.ID, in.Body, now, true)
	return nil
}

// RecordOutbound persists an already-dispatched outbound message (the gateway
// call has succeeded; externalID is the gateway's id for it).
func (s *Service) RecordOutbound(ctx context.Context, conversationID, contactID, body, externalID string, mediaURLs []string) (Message, error) {
	if conversationID == "" || contactID == "" {
		return Message{}, fmt.Errorf("%w: conversation_id and contact_id required", ErrInvalidArgument)
	}

	now := s.clock().UTC()
	m := Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		ContactID:      contactID,
		Body:           &body,
		Direction:      DirectionOutbound,
		Status:         StatusSent,
		MediaURLs:      mediaURLs,
		MediaTypes:     []string{},
		SentAt:         &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if externalID != "" {
		m.ExternalID = &externalID
	}
	if m.MediaURLs == nil {
		m.MediaURLs = []string{}
	}

	if err := s.repo.Insert(ctx, m); err != nil {
		return Message{}, err
	}
	s.refreshCaches(ctx, conversationID, contactID, body, now, false)
	return m, nil
}

// List returns messages for a conversation or contact in chronological order.
// The newest page is selected first (created_at DESC + offset), then reversed,
// so offset 0 is always the most recent window.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Message, int, error) {
	if f.ConversationID == "" && f.ContactID == "" {
		return nil, 0, fmt.Errorf("%w: conversation_id or contact_id required", ErrInvalidArgument)
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, total, nil
}

func (s *Service) refreshCaches(ctx context.Context, conversationID, contactID, body string, at time.Time, inbound bool) {
	log := logger.From(ctx)
	if err := s.conversations.TouchMessage(ctx, conversationID, body, at, inbound); err != nil {
		log.Warn("conversation cache refresh failed", "conversation_id", conversationID, "err", err)
	}
	if err := s.contacts.RecordMessageActivity(ctx, contactID, at); err != nil {
		log.Warn("contact activity update failed", "contact_id", contactID, "err", err)
	}
}
