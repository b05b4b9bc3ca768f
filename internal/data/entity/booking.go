package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

const (
	// PaymentHoldWindow is how long an unpaid booking on a paid event holds
	// its capacity slot before the sweep reclaims it.
	PaymentHoldWindow = 30 * time.Minute

	// FreeBookingHorizon is the expiry stamped on free bookings, far enough
	// out that the sweep never touches them.
	FreeBookingHorizon = 365 * 24 * time.Hour
)

type Booking struct {
	Base
	UserID          uuid.UUID     `db:"user_id"`
	EventID         uuid.UUID     `db:"event_id"`
	Status          BookingStatus `db:"status"`
	PaymentStatus   PaymentStatus `db:"payment_status"`
	ExpiresAt       time.Time     `db:"expires_at"`
	PaymentIntentID *string       `db:"payment_intent_id"`
	TransactionID   *string       `db:"transaction_id"`
	PaymentAmount   float64       `db:"payment_amount"`
	PaidAt          *time.Time    `db:"paid_at"`
}

func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusActive
}

// IsConfirmed reports whether payment has been verified. Completed payment
// status is the single idempotency gate for both confirmation paths.
func (b *Booking) IsConfirmed() bool {
	return b.PaymentStatus == PaymentStatusCompleted
}

func (b *Booking) IsExpired(now time.Time) bool {
	return now.After(b.ExpiresAt)
}
