package request

type CreateIntentRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid4"`
}

type ConfirmPaymentRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid4"`
	IntentID  string `json:"intent_id" validate:"required"`
}
