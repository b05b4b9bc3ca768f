package usecase

import (
	"context"

	"event-booking/internal/data/repository"
	"event-booking/internal/notify"
	"event-booking/pkg/payment"
	"event-booking/pkg/utils"

	"go.uber.org/zap"
)

// Capability roles supplied by the identity collaborator.
const (
	RoleAttendee = "attendee"
	RoleHost     = "host"
	RoleAdmin    = "admin"
)

// PaymentProvider is the port the payment service talks to the external
// provider through. pkg/payment.Client is the production implementation.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*payment.Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*payment.Intent, error)
	VerifyWebhookSignature(payload []byte, header string) error
}

type Service struct {
	Event   EventService
	Booking BookingService
	Payment PaymentService
}

func NewService(
	repo *repository.Repository,
	provider PaymentProvider,
	publisher notify.Publisher,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	booking := NewBookingService(repo, publisher, config.Booking, log)
	return &Service{
		Event:   NewEventService(repo, log),
		Booking: booking,
		Payment: NewPaymentService(repo, provider, publisher, config.Payment, log),
	}
}
