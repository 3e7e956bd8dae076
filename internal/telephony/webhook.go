package telephony

import (
	"context"
	"net/http"
	"strconv"

	"summers-phone/internal/phone"
	"summers-phone/pkg/logger"

	"github.com/gin-gonic/gin"
)

const signatureHeader = "X-Twilio-Signature"

// SMSChannel identifies the Twilio SMS integration on Conversation rows.
const SMSChannel = "twilio-sms"

// InboundSMS is an inbound message event after normalization, ready for
// persistence. MediaURLs and MediaTypes are index-aligned attachment pairs.
type InboundSMS struct {
	From       string
	To         string
	Body       string
	MessageSid string
	MediaURLs  []string
	MediaTypes []string
}

// SMSIngestor persists an inbound SMS against its Contact/Conversation.
type SMSIngestor interface {
	IngestInbound(ctx context.Context, in InboundSMS) error
}

// Deduper reports whether messageSid is seen for the first time.
// Implementations are best-effort; an error never blocks ingestion.
type Deduper func(ctx context.Context, messageSid string) (bool, error)

// SMSWebhookHandler receives Twilio's inbound SMS webhook, validates its
// signature, and records the message. OpenClaw owns the actual routing and
// AI reply; this endpoint is a secondary persistence layer only, so Twilio
// always gets a 200 with empty TwiML once the signature checks out. A store
// failure is logged and absorbed: the carrier delivery already happened and a
// retry from Twilio would not help.
type SMSWebhookHandler struct {
	// AuthToken is the Twilio account auth token used for signature checks.
	AuthToken string

	// PublicURL is the externally visible base URL (scheme + host) Twilio
	// signed against. When empty the URL is reconstructed from the request.
	PublicURL string

	Ingestor SMSIngestor

	// Dedup is optional; when set, repeated deliveries of the same MessageSid
	// are acknowledged without a second insert.
	Dedup Deduper
}

func (h SMSWebhookHandler) HandleInboundSMS(c *gin.Context) {
	log := logger.FromGin(c)

	if err := c.Request.ParseForm(); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}
	params := make(map[string]string, len(c.Request.PostForm))
	for k, vs := range c.Request.PostForm {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}

	sig := c.GetHeader(signatureHeader)
	url := h.requestURL(c.Request)
	if !ValidateSignature(h.AuthToken, url, params, sig) {
		log.Warn("invalid twilio signature", "url", url)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid signature"})
		return
	}

	in := InboundSMS{
		From:       phone.Normalize(params["From"]),
		To:         phone.Normalize(params["To"]),
		Body:       params["Body"],
		MessageSid: params["MessageSid"],
	}
	numMedia, _ := strconv.Atoi(params["NumMedia"])
	for i := 0; i < numMedia; i++ {
		u := params["MediaUrl"+strconv.Itoa(i)]
		if u == "" {
			continue
		}
		in.MediaURLs = append(in.MediaURLs, u)
		if t := params["MediaContentType"+strconv.Itoa(i)]; t != "" {
			in.MediaTypes = append(in.MediaTypes, t)
		}
	}

	fresh := true
	if h.Dedup != nil && in.MessageSid != "" {
		first, err := h.Dedup(c.Request.Context(), in.MessageSid)
		if err != nil {
			log.Warn("webhook dedup check failed", "message_sid", in.MessageSid, "err", err)
		} else {
			fresh = first
		}
	}

	if fresh {
		if err := h.Ingestor.IngestInbound(c.Request.Context(), in); err != nil {
			// Absorbed on purpose: Twilio must not retry this webhook.
			log.Error("inbound sms persistence failed", "message_sid", in.MessageSid, "err", err)
		}
	} else {
		log.Debug("duplicate webhook delivery skipped", "message_sid", in.MessageSid)
	}

	c.Header("Content-Type", "text/xml")
	c.String(http.StatusOK, EmptyTwiML)
}

// requestURL rebuilds the URL Twilio signed. Behind a proxy the scheme/host of
// the inbound request differ from the public ones, so a configured PublicURL
// wins over reconstruction.
func (h SMSWebhookHandler) requestURL(r *http.Request) string {
	if h.PublicURL != "" {
		return h.PublicURL + r.URL.RequestURI()
	}
	scheme := "https"
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	} else if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
