// Package dispatch forwards user-initiated sends and calls to the OpenClaw
// gateway and records the result against resolved identities. The gateway
// performs the real action; the local rows exist so the dashboard can show
// what happened. Order matters: gateway first, store second, so a gateway
// failure leaves no local trace. The inverse gap (gateway success, store
// failure) is surfaced to the caller and accepted as-is; reconciliation by
// external_id would close it but is not implemented here.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"summers-phone/internal/calls"
	"summers-phone/internal/contacts"
	"summers-phone/internal/conversations"
	"summers-phone/internal/messages"
	"summers-phone/internal/openclaw"
	"summers-phone/internal/telephony"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrRateLimited     = errors.New("send rate limit reached")
)

const defaultCallMode = "conversation"

// Gateway is the OpenClaw surface the dispatcher needs.
type Gateway interface {
	SendMessage(ctx context.Context, req openclaw.SendMessageRequest) (openclaw.SendMessageResult, error)
	InitiateCall(ctx context.Context, req openclaw.InitiateCallRequest) (openclaw.InitiateCallResult, error)
}

// RateLimiter reports whether another dispatch to key is allowed right now.
// A nil limiter means no cap.
type RateLimiter func(ctx context.Context, key string) (bool, error)

type Service struct {
	gateway       Gateway
	contacts      *contacts.Service
	conversations *conversations.Service
	messages      *messages.Service
	calls         *calls.Service
	allow         RateLimiter
}

func NewService(
	gateway Gateway,
	contactSvc *contacts.Service,
	conversationSvc *conversations.Service,
	messageSvc *messages.Service,
	callSvc *calls.Service,
) *Service {
	return &Service{
		gateway:       gateway,
		contacts:      contactSvc,
		conversations: conversationSvc,
		messages:      messageSvc,
		calls:         callSvc,
	}
}

// WithRateLimiter caps dispatches per destination number.
func (s *Service) WithRateLimiter(allow RateLimiter) *Service {
	s.allow = allow
	return s
}

type SendMessageInput struct {
	To        string   `json:"to"`
	Body      string   `json:"body"`
	MediaURLs []string `json:"media_urls"`
	Channel   string   `json:"channel"`
}

// SendMessage dispatches an outbound message through the gateway, then
// records it. The destination is stored exactly as given; identity lookups
// use the same string, matching how rows were written historically.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (messages.Message, openclaw.SendMessageResult, error) {
	if in.To == "" {
		return messages.Message{}, openclaw.SendMessageResult{}, fmt.Errorf("%w: to required", ErrInvalidArgument)
	}
	if in.Body == "" && len(in.MediaURLs) == 0 {
		return messages.Message{}, openclaw.SendMessageResult{}, fmt.Errorf("%w: body or media_urls required", ErrInvalidArgument)
	}
	channel := in.Channel
	if channel == "" {
		channel = telephony.SMSChannel
	}

	if err := s.checkRate(ctx, in.To); err != nil {
		return messages.Message{}, openclaw.SendMessageResult{}, err
	}

	res, err := s.gateway.SendMessage(ctx, openclaw.SendMessageRequest{
		Channel:   channel,
		To:        in.To,
		Message:   in.Body,
		MediaURLs: in.MediaURLs,
	})
	if err != nil {
		return messages.Message{}, openclaw.SendMessageResult{}, err
	}

	contact, err := s.contacts.Resolve(ctx, in.To)
	if err != nil {
		return messages.Message{}, res, err
	}
	conversation, err := s.conversations.Resolve(ctx, contact.ID, in.To, channel)
	if err != nil {
		return messages.Message{}, res, err
	}
	m, err := s.messages.RecordOutbound(ctx, conversation.ID, contact.ID, in.Body, res.ID, in.MediaURLs)
	if err != nil {
		return messages.Message{}, res, err
	}
	return m, res, nil
}

type InitiateCallInput struct {
	To           string `json:"to"`
	IntroMessage string `json:"intro_message"`
	Mode         string `json:"mode"`
}

// InitiateCall places an outbound call through the gateway's voice-call
// plugin, then records it in ringing state. Calls attach to a contact only;
// there is no conversation in the voice path.
func (s *Service) InitiateCall(ctx context.Context, in InitiateCallInput) (calls.Call, openclaw.InitiateCallResult, error) {
	if in.To == "" {
		return calls.Call{}, openclaw.InitiateCallResult{}, fmt.Errorf("%w: to required", ErrInvalidArgument)
	}
	mode := in.Mode
	if mode == "" {
		mode = defaultCallMode
	}

	if err := s.checkRate(ctx, in.To); err != nil {
		return calls.Call{}, openclaw.InitiateCallResult{}, err
	}

	res, err := s.gateway.InitiateCall(ctx, openclaw.InitiateCallRequest{
		To:      in.To,
		Message: in.IntroMessage,
		Mode:    mode,
	})
	if err != nil {
		return calls.Call{}, openclaw.InitiateCallResult{}, err
	}

	contact, err := s.contacts.Resolve(ctx, in.To)
	if err != nil {
		return calls.Call{}, res, err
	}
	c, err := s.calls.RecordOutbound(ctx, contact.ID, in.To, res.ExternalID())
	if err != nil {
		return calls.Call{}, res, err
	}
	if err := s.contacts.RecordCallActivity(ctx, contact.ID, *c.StartedAt); err != nil {
		// Counter drift only; the call row is already durable.
		return c, res, nil
	}
	return c, res, nil
}

func (s *Service) checkRate(ctx context.Context, to string) error {
	if s.allow == nil {
		return nil
	}
	ok, err := s.allow(ctx, to)
	if err != nil {
		// The cap is advisory; a limiter outage must not block dispatch.
		return nil
	}
	if !ok {
		return ErrRateLimited
	}
	return nil
}
