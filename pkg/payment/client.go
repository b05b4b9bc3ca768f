// Package payment talks to the external payment provider over HTTP: creating
// and retrieving payment intents, and verifying webhook signatures. Amounts
// cross this boundary in the provider's minor units (cents).
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"event-booking/pkg/apperr"
	"event-booking/pkg/utils"
)

// Intent statuses reported by the provider.
const (
	IntentStatusSucceeded      = "succeeded"
	IntentStatusRequiresAction = "requires_action"
	IntentStatusProcessing     = "processing"
)

// Intent is the provider-side payment intent.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	LatestCharge string            `json:"latest_charge"`
	Metadata     map[string]string `json:"metadata"`
}

type providerError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	http          *http.Client
	log           *zap.Logger
}

func NewClient(cfg utils.PaymentConfig, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		http:          &http.Client{Timeout: timeout},
		log:           log.With(zap.String("component", "payment_client")),
	}
}

// CreateIntent creates a payment intent for the given minor-unit amount,
// tagging it with metadata so webhook events can be correlated back to the
// booking.
func (c *Client) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build create intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

// RetrieveIntent fetches the current state of a payment intent.
func (c *Client) RetrieveIntent(ctx context.Context, intentID string) (*Intent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/payment_intents/"+url.PathEscape(intentID), nil)
	if err != nil {
		return nil, fmt.Errorf("build retrieve intent request: %w", err)
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Intent, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("Payment provider request failed",
			zap.Error(err),
			zap.String("url", req.URL.Path),
		)
		return nil, apperr.External(err, "payment provider unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperr.External(err, "read payment provider response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var perr providerError
		msg := "payment provider error"
		if json.Unmarshal(body, &perr) == nil && perr.Error.Message != "" {
			msg = perr.Error.Message
		}
		c.log.Error("Payment provider returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return nil, apperr.External(
			fmt.Errorf("provider status %d", resp.StatusCode), "%s", msg)
	}

	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, apperr.External(err, "decode payment provider response")
	}

	return &intent, nil
}

// VerifyWebhookSignature checks the provider's signature header against the
// raw payload using the shared webhook secret.
func (c *Client) VerifyWebhookSignature(payload []byte, header string) error {
	return VerifySignature(payload, header, c.webhookSecret, DefaultTolerance, time.Now())
}
