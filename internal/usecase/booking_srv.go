package usecase

import (
	"context"
	"fmt"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"
	"event-booking/internal/dto/request"
	"event-booking/internal/dto/response"
	"event-booking/internal/notify"
	"event-booking/pkg/apperr"
	"event-booking/pkg/metrics"
	"event-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// CreateBooking reserves a capacity slot on the event for the user.
	// Free events are confirmed immediately; paid events are held unpaid
	// until the payment hold window runs out.
	CreateBooking(ctx context.Context, userID uuid.UUID, role string, req *request.CreateBookingRequest) (*response.BookingResponse, error)

	// CancelBooking releases an active booking. A non-nil requester is an
	// owner-checked self-service cancel; nil means a system or admin
	// initiated call that skips the ownership check.
	CancelBooking(ctx context.Context, bookingID uuid.UUID, requester *uuid.UUID) error

	GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// ProcessExpiredBookings reclaims capacity from stale unpaid holds and
	// returns how many bookings it cancelled. This is the only automatic
	// path by which an unpaid hold is released.
	ProcessExpiredBookings(ctx context.Context) (int, error)
}

type bookingService struct {
	repo      *repository.Repository
	publisher notify.Publisher
	log       *zap.Logger

	holdWindow     time.Duration
	sweepBatchSize int
	now            func() time.Time
}

func NewBookingService(repo *repository.Repository, publisher notify.Publisher, cfg utils.BookingConfig, log *zap.Logger) BookingService {
	holdWindow := cfg.HoldWindow
	if holdWindow <= 0 {
		holdWindow = entity.PaymentHoldWindow
	}
	batch := cfg.SweepBatchSize
	if batch <= 0 {
		batch = 100
	}

	return &bookingService{
		repo:           repo,
		publisher:      publisher,
		log:            log.With(zap.String("service", "booking")),
		holdWindow:     holdWindow,
		sweepBatchSize: batch,
		now:            time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID uuid.UUID, role string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if role != RoleAttendee {
		return nil, apperr.Forbidden("only attendees can book events")
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID format %s: %w", req.EventID, err)
	}

	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, apperr.NotFound("event %s not found", req.EventID)
	}
	if err := event.AcceptsBookings(); err != nil {
		return nil, err
	}

	// Advisory pre-check; the partial unique index is the real guard.
	existing, err := s.repo.Booking.FindActiveByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, fmt.Errorf("check existing booking: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("you have already booked this event")
	}

	now := s.now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:  userID,
		EventID: eventID,
		Status:  entity.BookingStatusActive,
	}

	message := ""
	if event.IsFree() {
		booking.PaymentStatus = entity.PaymentStatusCompleted
		booking.ExpiresAt = now.Add(entity.FreeBookingHorizon)
		paidAt := now
		booking.PaidAt = &paidAt
		message = "booking confirmed"
	} else {
		booking.PaymentStatus = entity.PaymentStatusPending
		booking.ExpiresAt = now.Add(s.holdWindow)
		booking.PaymentAmount = event.JoiningFee
		message = fmt.Sprintf("booking held; complete payment within %d minutes", int(s.holdWindow.Minutes()))
	}

	updatedEvent, err := s.repo.Booking.Book(ctx, booking)
	if err != nil {
		s.log.Warn("Booking attempt rejected",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("event_id", eventID.String()),
		)
		return nil, err
	}

	metrics.BookingsCreated.WithLabelValues(string(event.FeeStatus)).Inc()

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("event_id", eventID.String()),
		zap.String("fee_status", string(event.FeeStatus)),
		zap.Int("current_participants", updatedEvent.CurrentParticipants),
		zap.String("event_status", string(updatedEvent.Status)),
	)

	s.publish(ctx, notify.TypeBookingCreated, booking)

	resp := response.BookingToResponse(booking, updatedEvent)
	resp.Message = message
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, requester *uuid.UUID) error {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return apperr.NotFound("booking %s not found", bookingID.String())
	}

	if requester != nil && booking.UserID != *requester {
		return apperr.Forbidden("booking belongs to another user")
	}
	if !booking.IsActive() {
		return apperr.InvalidState("booking is already cancelled")
	}

	// Release re-checks the state under a row lock; the pre-checks above
	// only produce friendlier errors.
	if err := s.repo.Booking.Release(ctx, bookingID, false); err != nil {
		return err
	}

	reason := metrics.ReasonAdmin
	if requester != nil {
		reason = metrics.ReasonUser
	}
	metrics.BookingsCancelled.WithLabelValues(reason).Inc()

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.String("event_id", booking.EventID.String()),
		zap.Bool("self_service", requester != nil),
	)

	s.publish(ctx, notify.TypeBookingCancelled, booking)

	return nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		event, _ := s.repo.Event.FindByID(ctx, booking.EventID)
		bookingResponses[i] = response.BookingToResponse(booking, event)
	}

	return response.NewPaginatedResponse(bookingResponses, req.Page, req.Limit(), total), nil
}

func (s *bookingService) ProcessExpiredBookings(ctx context.Context) (int, error) {
	start := s.now()
	expired, err := s.repo.Booking.FindExpired(ctx, start, s.sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("find expired bookings: %w", err)
	}

	cancelled := 0
	for _, booking := range expired {
		// unpaidOnly: a confirmation that lands between the scan and this
		// release wins, the hold is simply kept.
		if err := s.repo.Booking.Release(ctx, booking.ID, true); err != nil {
			if apperr.IsKind(err, apperr.KindConflict) || apperr.IsKind(err, apperr.KindInvalidState) {
				s.log.Info("Skipping expired booking that changed state",
					zap.String("booking_id", booking.ID.String()),
					zap.String("reason", err.Error()),
				)
			} else {
				s.log.Error("Failed to release expired booking",
					zap.Error(err),
					zap.String("booking_id", booking.ID.String()),
				)
			}
			continue
		}

		cancelled++
		metrics.BookingsCancelled.WithLabelValues(metrics.ReasonExpired).Inc()
		s.publish(ctx, notify.TypeBookingExpired, booking)
	}

	metrics.ExpirySweeps.Inc()
	metrics.ExpirySweepDuration.Observe(time.Since(start).Seconds())

	if len(expired) > 0 {
		s.log.Info("Expiry sweep finished",
			zap.Int("expired", len(expired)),
			zap.Int("cancelled", cancelled),
		)
	}

	return cancelled, nil
}

func (s *bookingService) publish(ctx context.Context, msgType string, booking *entity.Booking) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, notify.Message{
		Type:       msgType,
		BookingID:  booking.ID.String(),
		UserID:     booking.UserID.String(),
		EventID:    booking.EventID.String(),
		OccurredAt: s.now(),
	})
	if err != nil {
		// Notifications are best effort; the booking state is already
		// committed.
		s.log.Warn("Failed to publish booking notification",
			zap.Error(err),
			zap.String("type", msgType),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}
