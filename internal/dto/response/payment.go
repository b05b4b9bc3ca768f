package response

type PaymentIntentResponse struct {
	ClientSecret string  `json:"client_secret"`
	IntentID     string  `json:"intent_id"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}
