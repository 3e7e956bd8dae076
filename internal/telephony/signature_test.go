package telephony

import "testing"

func TestValidateSignature_MatchesRecomputed(t *testing.T) {
	const token = "12345"
	url := "https://example.com/api/webhooks/twilio/sms"
	params := map[string]string{
		"From":       "+14155550100",
		"To":         "+18449023577",
		"Body":       "hello",
		"MessageSid": "SM123",
	}

	sig := ComputeSignature(token, url, params)
	if !ValidateSignature(token, url, params, sig) {
		t.Fatalf("expected signature to validate")
	}
}

func TestValidateSignature_RejectsMutations(t *testing.T) {
	const token = "12345"
	url := "https://example.com/api/webhooks/twilio/sms"
	params := map[string]string{
		"From": "+14155550100",
		"Body": "hello",
	}
	sig := ComputeSignature(token, url, params)

	mutated := map[string]string{
		"From": "+14155550100",
		"Body": "hellp",
	}
	if ValidateSignature(token, url, mutated, sig) {
		t.Fatalf("expected mutated params to fail validation")
	}
	if ValidateSignature(token, url+"x", params, sig) {
		t.Fatalf("expected mutated url to fail validation")
	}
	if ValidateSignature("54321", url, params, sig) {
		t.Fatalf("expected wrong token to fail validation")
	}
	if ValidateSignature(token, url, params, "") {
		t.Fatalf("expected empty signature to fail validation")
	}
}

func TestComputeSignature_KnownVector(t *testing.T) {
	// Worked example from Twilio's request-validation docs.
	url := "https://mycompany.com/myapp.php?foo=1&bar=2"
	params := map[string]string{
		"CallSid": "CA1234567890ABCDE",
		"Caller":  "+14158675309",
		"Digits":  "1234",
		"From":    "+14158675309",
		"To":      "+18005551212",
	}
	got := ComputeSignature("12345", url, params)
	want := "RSOYDt4T1cUTdK1PDd93/VVr8B8="
	if got != want {
		t.Fatalf("ComputeSignature = %q, want %q", got, want)
	}
}
