package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"
	"event-booking/internal/dto/request"
	"event-booking/internal/dto/response"
	"event-booking/internal/notify"
	"event-booking/pkg/apperr"
	"event-booking/pkg/metrics"
	"event-booking/pkg/payment"
	"event-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PaymentService interface {
	// CreateIntent registers a payment intent with the provider for an
	// unpaid booking. Calling it again replaces the previous intent.
	CreateIntent(ctx context.Context, userID uuid.UUID, req *request.CreateIntentRequest) (*response.PaymentIntentResponse, error)

	// ConfirmPayment verifies the intent with the provider and marks the
	// booking paid. Safe to retry; only the first call changes anything.
	ConfirmPayment(ctx context.Context, userID uuid.UUID, req *request.ConfirmPaymentRequest) (*response.BookingResponse, error)

	// HandleWebhook processes a signed provider callback. Events for
	// unknown bookings and already-settled bookings are acknowledged
	// without effect so the provider stops retrying.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	repo      *repository.Repository
	provider  PaymentProvider
	publisher notify.Publisher
	currency  string
	log       *zap.Logger
	now       func() time.Time
}

func NewPaymentService(repo *repository.Repository, provider PaymentProvider, publisher notify.Publisher, cfg utils.PaymentConfig, log *zap.Logger) PaymentService {
	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}

	return &paymentService{
		repo:      repo,
		provider:  provider,
		publisher: publisher,
		currency:  currency,
		log:       log.With(zap.String("service", "payment")),
		now:       time.Now,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, userID uuid.UUID, req *request.CreateIntentRequest) (*response.PaymentIntentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", req.BookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, apperr.NotFound("booking %s not found", req.BookingID)
	}
	if booking.UserID != userID {
		return nil, apperr.Forbidden("booking belongs to another user")
	}
	if booking.IsConfirmed() {
		return nil, apperr.Conflict("payment already confirmed")
	}
	if !booking.IsActive() {
		return nil, apperr.InvalidState("booking is cancelled")
	}
	if booking.IsExpired(s.now()) {
		return nil, apperr.InvalidState("booking hold has expired")
	}
	if booking.PaymentAmount <= 0 {
		return nil, apperr.InvalidState("booking does not require payment")
	}

	amount := int64(math.Round(booking.PaymentAmount * 100))
	intent, err := s.provider.CreateIntent(ctx, amount, s.currency, map[string]string{
		"booking_id": booking.ID.String(),
		"user_id":    booking.UserID.String(),
		"event_id":   booking.EventID.String(),
	})
	if err != nil {
		s.log.Error("Failed to create payment intent",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return nil, err
	}

	if err := s.repo.Booking.SetPaymentIntent(ctx, booking.ID, intent.ID, booking.PaymentAmount); err != nil {
		return nil, fmt.Errorf("store payment intent: %w", err)
	}

	s.log.Info("Payment intent created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("intent_id", intent.ID),
		zap.Int64("amount", amount),
	)

	return &response.PaymentIntentResponse{
		ClientSecret: intent.ClientSecret,
		IntentID:     intent.ID,
		Amount:       booking.PaymentAmount,
		Currency:     s.currency,
	}, nil
}

func (s *paymentService) ConfirmPayment(ctx context.Context, userID uuid.UUID, req *request.ConfirmPaymentRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", req.BookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, apperr.NotFound("booking %s not found", req.BookingID)
	}
	if booking.UserID != userID {
		return nil, apperr.Forbidden("booking belongs to another user")
	}
	if booking.IsConfirmed() {
		return nil, apperr.Conflict("payment already confirmed")
	}
	if !booking.IsActive() {
		return nil, apperr.InvalidState("booking is cancelled")
	}
	if booking.PaymentIntentID == nil || *booking.PaymentIntentID != req.IntentID {
		return nil, apperr.Conflict("intent does not belong to this booking")
	}

	intent, err := s.provider.RetrieveIntent(ctx, req.IntentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != payment.IntentStatusSucceeded {
		return nil, apperr.InvalidState("payment intent is %s, not succeeded", intent.Status)
	}

	if err := s.settle(ctx, booking, intent, metrics.SourceDirect); err != nil {
		return nil, err
	}

	confirmed, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil || confirmed == nil {
		return nil, fmt.Errorf("reload confirmed booking: %w", err)
	}
	event, err := s.repo.Event.FindByID(ctx, confirmed.EventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}

	resp := response.BookingToResponse(confirmed, event)
	resp.Message = "payment confirmed"
	return &resp, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if err := s.provider.VerifyWebhookSignature(payload, signature); err != nil {
		s.log.Warn("Webhook signature rejected", zap.Error(err))
		return err
	}

	event, err := payment.ParseWebhookEvent(payload)
	if err != nil {
		return apperr.InvalidState("malformed webhook payload")
	}

	switch event.Type {
	case payment.EventPaymentSucceeded:
		return s.webhookSucceeded(ctx, event)
	case payment.EventPaymentFailed:
		return s.webhookFailed(ctx, event)
	default:
		s.log.Debug("Ignoring webhook event", zap.String("type", event.Type))
		return nil
	}
}

func (s *paymentService) webhookSucceeded(ctx context.Context, event *payment.WebhookEvent) error {
	booking, err := s.bookingForIntent(ctx, event.Intent)
	if err != nil || booking == nil {
		return err
	}
	if booking.IsConfirmed() {
		s.log.Debug("Webhook for already confirmed booking",
			zap.String("booking_id", booking.ID.String()),
		)
		return nil
	}
	if !booking.IsActive() {
		s.log.Warn("Payment succeeded for cancelled booking",
			zap.String("booking_id", booking.ID.String()),
			zap.String("intent_id", event.Intent.ID),
		)
		return nil
	}

	if err := s.settle(ctx, booking, &event.Intent, metrics.SourceWebhook); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			// A direct confirmation raced the webhook and won.
			return nil
		}
		return err
	}
	return nil
}

func (s *paymentService) webhookFailed(ctx context.Context, event *payment.WebhookEvent) error {
	booking, err := s.bookingForIntent(ctx, event.Intent)
	if err != nil || booking == nil {
		return err
	}

	if err := s.repo.Booking.MarkPaymentFailed(ctx, booking.ID); err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}

	s.log.Info("Payment failed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("intent_id", event.Intent.ID),
	)
	return nil
}

// bookingForIntent resolves the booking a webhook intent refers to.
// A nil booking with a nil error means the event should be acknowledged
// and dropped.
func (s *paymentService) bookingForIntent(ctx context.Context, intent payment.Intent) (*entity.Booking, error) {
	raw, ok := intent.Metadata["booking_id"]
	if !ok {
		s.log.Warn("Webhook intent has no booking metadata", zap.String("intent_id", intent.ID))
		return nil, nil
	}

	bookingID, err := uuid.Parse(raw)
	if err != nil {
		s.log.Warn("Webhook intent has malformed booking metadata",
			zap.String("intent_id", intent.ID),
			zap.String("booking_id", raw),
		)
		return nil, nil
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		s.log.Warn("Webhook intent refers to unknown booking",
			zap.String("intent_id", intent.ID),
			zap.String("booking_id", raw),
		)
		return nil, nil
	}
	return booking, nil
}

func (s *paymentService) settle(ctx context.Context, booking *entity.Booking, intent *payment.Intent, source string) error {
	transactionID := intent.LatestCharge
	if transactionID == "" {
		transactionID = intent.ID
	}

	if err := s.repo.Booking.ConfirmPayment(ctx, booking.ID, transactionID, s.now()); err != nil {
		return err
	}

	metrics.PaymentConfirmations.WithLabelValues(source).Inc()

	s.log.Info("Payment confirmed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("intent_id", intent.ID),
		zap.String("source", source),
	)

	if s.publisher != nil {
		err := s.publisher.Publish(ctx, notify.Message{
			Type:       notify.TypeBookingConfirmed,
			BookingID:  booking.ID.String(),
			UserID:     booking.UserID.String(),
			EventID:    booking.EventID.String(),
			OccurredAt: s.now(),
		})
		if err != nil {
			s.log.Warn("Failed to publish confirmation notification",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
			)
		}
	}
	return nil
}
