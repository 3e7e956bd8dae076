package openclaw

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendMessage(t *testing.T) {
	var got SendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/message/send" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer token-1" {
			t.Fatalf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"X1"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "token-1")
	res, err := c.SendMessage(context.Background(), SendMessageRequest{
		Channel: "twilio-sms",
		To:      "+14155550100",
		Message: "hi",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if res.ID != "X1" {
		t.Fatalf("unexpected id %q", res.ID)
	}
	if got.To != "+14155550100" || got.Channel != "twilio-sms" || got.Message != "hi" {
		t.Fatalf("unexpected request body: %+v", got)
	}
}

func TestSendMessage_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream carrier down"))
	}))
	defer srv.Close()

	c := New(srv.URL, "token-1")
	_, err := c.SendMessage(context.Background(), SendMessageRequest{To: "+1", Message: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	var ge *GatewayError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GatewayError, got %T", err)
	}
	if ge.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected status %d", ge.StatusCode)
	}
	if ge.Error() != "OpenClaw send failed: upstream carrier down" {
		t.Fatalf("unexpected error text %q", ge.Error())
	}
}

func TestInitiateCall_ExternalIDFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/voice-call/initiate" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sid":"CA999"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "token-1")
	res, err := c.InitiateCall(context.Background(), InitiateCallRequest{To: "+14155550100", Mode: "conversation"})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if res.ExternalID() != "CA999" {
		t.Fatalf("expected sid fallback, got %q", res.ExternalID())
	}

	withCallID := InitiateCallResult{CallID: "oc-1", SID: "CA999"}
	if withCallID.ExternalID() != "oc-1" {
		t.Fatalf("callId should win over sid")
	}
}
