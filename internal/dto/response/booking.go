package response

import (
	"time"

	"event-booking/internal/data/entity"
)

type BookingResponse struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	EventID       string               `json:"event_id"`
	Status        entity.BookingStatus `json:"status"`
	PaymentStatus entity.PaymentStatus `json:"payment_status"`
	ExpiresAt     time.Time            `json:"expires_at"`
	PaymentAmount float64              `json:"payment_amount"`
	TransactionID *string              `json:"transaction_id,omitempty"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	Event         *EventSummary        `json:"event,omitempty"`
	Message       string               `json:"message,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func BookingToResponse(b *entity.Booking, event *entity.Event) BookingResponse {
	return BookingResponse{
		ID:            b.ID.String(),
		UserID:        b.UserID.String(),
		EventID:       b.EventID.String(),
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		ExpiresAt:     b.ExpiresAt,
		PaymentAmount: b.PaymentAmount,
		TransactionID: b.TransactionID,
		PaidAt:        b.PaidAt,
		Event:         EventToSummary(event),
		CreatedAt:     b.CreatedAt,
	}
}
