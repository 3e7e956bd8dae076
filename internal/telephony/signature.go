package telephony

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"sort"
	"strings"
)

// ComputeSignature builds the Twilio request signature: the full request URL
// with each form field name and value appended in lexicographic field order,
// HMAC-SHA1 keyed by the account auth token, base64-encoded.
// Ref: https://www.twilio.com/docs/usage/security#validating-requests
func ComputeSignature(authToken, url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignature recomputes the expected signature and compares it against
// the value Twilio sent in the X-Twilio-Signature header. A mismatch means the
// request did not come from Twilio and must not be processed.
func ValidateSignature(authToken, url string, params map[string]string, signature string) bool {
	if signature == "" {
		return false
	}
	expected := ComputeSignature(authToken, url, params)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
