// Package openclaw talks to the OpenClaw gateway, the upstream service that
// actually sends SMS and places AI voice calls. This service only proxies:
// a gateway failure aborts the flow before anything is written locally.
package openclaw

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	sendMessagePath  = "/api/message/send"
	initiateCallPath = "/api/voice-call/initiate"

	defaultTimeout = 30 * time.Second
)

// GatewayError is a non-2xx response from the gateway. The body text is kept
// verbatim so the caller can surface the gateway's own error message.
type GatewayError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("OpenClaw %s failed: %s", e.Op, strings.TrimSpace(e.Body))
}

type Client struct {
	http *resty.Client
}

func New(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json")
	return &Client{http: c}
}

type SendMessageRequest struct {
	Channel   string   `json:"channel"`
	To        string   `json:"to"`
	Message   string   `json:"message"`
	MediaURLs []string `json:"mediaUrls,omitempty"`
}

type SendMessageResult struct {
	ID string `json:"id"`
}

// SendMessage asks the gateway to deliver an outbound message and returns the
// gateway-assigned id for it.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (SendMessageResult, error) {
	var out SendMessageResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(sendMessagePath)
	if err != nil {
		return SendMessageResult{}, fmt.Errorf("openclaw send: %w", err)
	}
	if !resp.IsSuccess() {
		return SendMessageResult{}, &GatewayError{Op: "send", StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return out, nil
}

type InitiateCallRequest struct {
	To      string `json:"to"`
	Message string `json:"message,omitempty"`
	Mode    string `json:"mode"`
}

type InitiateCallResult struct {
	CallID string `json:"callId"`
	SID    string `json:"sid"`
}

// ExternalID returns the identifier to correlate provider callbacks with:
// callId when the gateway assigned one, otherwise the raw Twilio sid.
func (r InitiateCallResult) ExternalID() string {
	if r.CallID != "" {
		return r.CallID
	}
	return r.SID
}

// InitiateCall asks the gateway's voice-call plugin to place an outbound call.
func (c *Client) InitiateCall(ctx context.Context, req InitiateCallRequest) (InitiateCallResult, error) {
	var out InitiateCallResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(initiateCallPath)
	if err != nil {
		return InitiateCallResult{}, fmt.Errorf("openclaw call: %w", err)
	}
	if !resp.IsSuccess() {
		return InitiateCallResult{}, &GatewayError{Op: "call", StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return out, nil
}
