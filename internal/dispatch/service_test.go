package dispatch

import (
	"context"
	"errors"
	"testing"

	"summers-phone/internal/calls"
	"summers-phone/internal/contacts"
	"summers-phone/internal/conversations"
	"summers-phone/internal/messages"
	"summers-phone/internal/openclaw"
)

type fakeGateway struct {
	sendResult openclaw.SendMessageResult
	sendErr    error
	sendCalls  int

	callResult openclaw.InitiateCallResult
	callErr    error
	callCalls  int

	lastSend openclaw.SendMessageRequest
	lastCall openclaw.InitiateCallRequest
}

func (g *fakeGateway) SendMessage(_ context.Context, req openclaw.SendMessageRequest) (openclaw.SendMessageResult, error) {
	g.sendCalls++
	g.lastSend = req
	return g.sendResult, g.sendErr
}

func (g *fakeGateway) InitiateCall(_ context.Context, req openclaw.InitiateCallRequest) (openclaw.InitiateCallResult, error) {
	g.callCalls++
	g.lastCall = req
	return g.callResult, g.callErr
}

type fixture struct {
	svc      *Service
	gateway  *fakeGateway
	contacts *contacts.Service
	msgRepo  *messages.MemoryRepo
	callRepo *calls.MemoryRepo
}

func newFixture() fixture {
	gateway := &fakeGateway{}
	contactSvc := contacts.NewService(contacts.NewMemoryRepo())
	conversationSvc := conversations.NewService(conversations.NewMemoryRepo())
	msgRepo := messages.NewMemoryRepo()
	callRepo := calls.NewMemoryRepo()
	svc := NewService(
		gateway,
		contactSvc,
		conversationSvc,
		messages.NewService(msgRepo, contactSvc, conversationSvc),
		calls.NewService(callRepo),
	)
	return fixture{svc: svc, gateway: gateway, contacts: contactSvc, msgRepo: msgRepo, callRepo: callRepo}
}

func TestSendMessage_RecordsOnGatewaySuccess(t *testing.T) {
	f := newFixture()
	f.gateway.sendResult = openclaw.SendMessageResult{ID: "X1"}

	m, res, err := f.svc.SendMessage(context.Background(), SendMessageInput{To: "+14155550100", Body: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.ID != "X1" {
		t.Fatalf("unexpected gateway id %q", res.ID)
	}
	if m.Direction != messages.DirectionOutbound || m.Status != messages.StatusSent {
		t.Fatalf("unexpected message: %+v", m)
	}
	if m.ExternalID == nil || *m.ExternalID != "X1" {
		t.Fatalf("unexpected external_id: %v", m.ExternalID)
	}
	if f.gateway.lastSend.Channel != "twilio-sms" {
		t.Fatalf("expected default channel, got %q", f.gateway.lastSend.Channel)
	}

	contact, err := f.contacts.Resolve(context.Background(), "+14155550100")
	if err != nil {
		t.Fatalf("contact: %v", err)
	}
	if m.ContactID != contact.ID {
		t.Fatalf("message not attached to resolved contact")
	}
}

func TestSendMessage_GatewayFailureWritesNothing(t *testing.T) {
	f := newFixture()
	f.gateway.sendErr = &openclaw.GatewayError{Op: "send", StatusCode: 500, Body: "boom"}

	_, _, err := f.svc.SendMessage(context.Background(), SendMessageInput{To: "+14155550100", Body: "hi"})
	if err == nil {
		t.Fatalf("expected error")
	}
	var ge *openclaw.GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GatewayError, got %T", err)
	}
	if len(f.msgRepo.All()) != 0 {
		t.Fatalf("gateway failure must not write locally")
	}
	if _, err := f.contacts.Get(context.Background(), "any"); !errors.Is(err, contacts.ErrNotFound) {
		t.Fatalf("no contact should exist")
	}
}

func TestSendMessage_Validation(t *testing.T) {
	f := newFixture()
	if _, _, err := f.svc.SendMessage(context.Background(), SendMessageInput{Body: "hi"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for missing to, got %v", err)
	}
	if _, _, err := f.svc.SendMessage(context.Background(), SendMessageInput{To: "+1"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty payload, got %v", err)
	}
	if f.gateway.sendCalls != 0 {
		t.Fatalf("validation failures must not reach the gateway")
	}
}

func TestSendMessage_RateLimited(t *testing.T) {
	f := newFixture()
	f.svc.WithRateLimiter(func(_ context.Context, key string) (bool, error) {
		return false, nil
	})

	_, _, err := f.svc.SendMessage(context.Background(), SendMessageInput{To: "+14155550100", Body: "hi"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if f.gateway.sendCalls != 0 {
		t.Fatalf("rate-limited sends must not reach the gateway")
	}
}

func TestSendMessage_LimiterOutageDoesNotBlock(t *testing.T) {
	f := newFixture()
	f.gateway.sendResult = openclaw.SendMessageResult{ID: "X1"}
	f.svc.WithRateLimiter(func(_ context.Context, _ string) (bool, error) {
		return false, errors.New("redis down")
	})

	if _, _, err := f.svc.SendMessage(context.Background(), SendMessageInput{To: "+14155550100", Body: "hi"}); err != nil {
		t.Fatalf("limiter outage should not block dispatch: %v", err)
	}
}

func TestInitiateCall_RecordsRinging(t *testing.T) {
	f := newFixture()
	f.gateway.callResult = openclaw.InitiateCallResult{CallID: "oc-7"}

	c, res, err := f.svc.InitiateCall(context.Background(), InitiateCallInput{To: "+14155550100", IntroMessage: "hello"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if res.ExternalID() != "oc-7" {
		t.Fatalf("unexpected external id %q", res.ExternalID())
	}
	if c.Status != calls.StatusRinging || c.Direction != calls.DirectionOutbound {
		t.Fatalf("unexpected call: %+v", c)
	}
	if c.ExternalID == nil || *c.ExternalID != "oc-7" {
		t.Fatalf("unexpected external_id: %v", c.ExternalID)
	}
	if f.gateway.lastCall.Mode != "conversation" {
		t.Fatalf("expected default mode, got %q", f.gateway.lastCall.Mode)
	}

	contact, _ := f.contacts.Resolve(context.Background(), "+14155550100")
	if contact.CallCount != 1 {
		t.Fatalf("expected call_count 1, got %d", contact.CallCount)
	}
}

func TestInitiateCall_GatewayFailureWritesNothing(t *testing.T) {
	f := newFixture()
	f.gateway.callErr = &openclaw.GatewayError{Op: "call", StatusCode: 502, Body: "no trunk"}

	_, _, err := f.svc.InitiateCall(context.Background(), InitiateCallInput{To: "+14155550100"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(f.callRepo.All()) != 0 {
		t.Fatalf("gateway failure must not write locally")
	}
}
