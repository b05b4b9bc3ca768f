package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"event-booking/pkg/apperr"
	"event-booking/pkg/utils"
)

func newTestClient(baseURL string) *Client {
	return NewClient(utils.PaymentConfig{
		BaseURL:       baseURL,
		APIKey:        "sk_test_key",
		WebhookSecret: testSecret,
		Currency:      "usd",
		Timeout:       2 * time.Second,
	}, zap.NewNop())
}

func TestCreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.Equal(t, "Bearer sk_test_key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "2000", r.PostForm.Get("amount"))
		assert.Equal(t, "usd", r.PostForm.Get("currency"))
		assert.Equal(t, "b-1", r.PostForm.Get("metadata[booking_id]"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "pi_123",
			"client_secret": "pi_123_secret_abc",
			"status": "requires_payment_method",
			"amount": 2000,
			"currency": "usd"
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	intent, err := c.CreateIntent(context.Background(), 2000, "usd", map[string]string{"booking_id": "b-1"})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, int64(2000), intent.Amount)
}

func TestRetrieveIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/payment_intents/pi_123", r.URL.Path)

		w.Write([]byte(`{"id":"pi_123","status":"succeeded","latest_charge":"ch_1"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	intent, err := c.RetrieveIntent(context.Background(), "pi_123")
	require.NoError(t, err)
	assert.Equal(t, IntentStatusSucceeded, intent.Status)
	assert.Equal(t, "ch_1", intent.LatestCharge)
}

func TestProviderErrorSurfacedAsExternal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","message":"Your card was declined"}}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.RetrieveIntent(context.Background(), "pi_bad")
	require.Error(t, err)
	assert.Equal(t, apperr.KindExternal, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Your card was declined")
}

func TestProviderUnreachable(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	_, err := c.CreateIntent(context.Background(), 100, "usd", nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindExternal, apperr.KindOf(err))
}

func TestClientVerifyWebhookSignature(t *testing.T) {
	c := newTestClient("http://example.invalid")
	payload := []byte(`{"id":"evt_1"}`)
	header := SignatureHeader(payload, testSecret, time.Now().Unix())

	assert.NoError(t, c.VerifyWebhookSignature(payload, header))
	assert.Error(t, c.VerifyWebhookSignature(payload, "t=1,v1=00"))
}
