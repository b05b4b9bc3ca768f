package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"event-booking/pkg/apperr"
)

// Webhook event types the reconciliation path cares about. Anything else is
// logged and ignored by the consumer.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// DefaultTolerance bounds how old a signed webhook timestamp may be before
// it is rejected as a possible replay.
const DefaultTolerance = 5 * time.Minute

// WebhookEvent is the envelope delivered by the provider. The intent is
// nested under data.object.
type WebhookEvent struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Intent Intent
}

type webhookEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object Intent `json:"object"`
	} `json:"data"`
}

// ParseWebhookEvent decodes the raw webhook payload. It does NOT verify the
// signature; callers must do that first.
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode webhook payload: %w", err)
	}

	return &WebhookEvent{
		ID:     env.ID,
		Type:   env.Type,
		Intent: env.Data.Object,
	}, nil
}

// VerifySignature validates a signature header of the form
// "t=<unix>,v1=<hex hmac>" where the HMAC-SHA256 is computed over
// "<unix>.<payload>" with the webhook secret. Multiple v1 entries are
// accepted (secret rotation); the timestamp must fall within tolerance of
// now.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if header == "" {
		return apperr.Forbidden("missing webhook signature")
	}

	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return apperr.Forbidden("malformed webhook signature timestamp")
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, v)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return apperr.Forbidden("malformed webhook signature header")
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > tolerance || age < -tolerance {
		return apperr.Forbidden("webhook signature timestamp outside tolerance")
	}

	expected := ComputeSignature(payload, secret, timestamp)
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}

	return apperr.Forbidden("webhook signature verification failed")
}

// ComputeSignature returns the raw HMAC-SHA256 of "<timestamp>.<payload>".
// Exposed for tests and for signing outbound test events.
func ComputeSignature(payload []byte, secret string, timestamp int64) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return mac.Sum(nil)
}

// SignatureHeader builds a valid signature header for the payload, used by
// tests and local tooling.
func SignatureHeader(payload []byte, secret string, timestamp int64) string {
	sig := ComputeSignature(payload, secret, timestamp)
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(sig))
}
