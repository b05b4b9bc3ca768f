package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/pkg/apperr"
	"event-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// uniqueViolation is the postgres error code raised by the partial unique
// index on active (user_id, event_id) bookings.
const uniqueViolation = "23505"

type BookingRepository interface {
	// Book atomically inserts the booking and claims one capacity slot on
	// its event: the event row is locked, approval/status/capacity are
	// re-checked under the lock, and the participant counter is incremented
	// (flipping open to full at the limit) in the same transaction. Returns
	// the event as it looks after the claim.
	Book(ctx context.Context, booking *entity.Booking) (*entity.Event, error)

	// Release cancels an active booking and returns its capacity slot:
	// decrement floored at zero, full flipped back to open, terminal event
	// statuses untouched. With unpaidOnly set, a booking whose payment has
	// completed is left alone (confirmation wins over expiry).
	Release(ctx context.Context, id uuid.UUID, unpaidOnly bool) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindActiveByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// FindExpired returns active, unconfirmed bookings whose expiry has
	// passed, oldest first.
	FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Booking, error)

	SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string, amount float64) error

	// ConfirmPayment marks the booking paid. The conditional update is the
	// idempotency gate shared by the direct and webhook confirmation paths:
	// a booking that is no longer active or already completed is not
	// touched and the call fails with a conflict.
	ConfirmPayment(ctx context.Context, id uuid.UUID, transactionID string, paidAt time.Time) error

	// MarkPaymentFailed records a failed charge. No-op once payment has
	// completed.
	MarkPaymentFailed(ctx context.Context, id uuid.UUID) error
}

const bookingColumns = `id, user_id, event_id, status, payment_status, expires_at,
	payment_intent_id, transaction_id, payment_amount, paid_at, created_at, updated_at`

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.EventID,
		&b.Status,
		&b.PaymentStatus,
		&b.ExpiresAt,
		&b.PaymentIntentID,
		&b.TransactionID,
		&b.PaymentAmount,
		&b.PaidAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Book(ctx context.Context, booking *entity.Booking) (*entity.Event, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock the event row so concurrent bookings on the same event are
	// serialized through the capacity check below.
	event, err := scanEvent(tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`,
		booking.EventID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		err = apperr.NotFound("event %s not found", booking.EventID.String())
		return nil, err
	}
	if err != nil {
		r.log.Error("Failed to lock event row",
			zap.Error(err),
			zap.String("event_id", booking.EventID.String()),
		)
		err = fmt.Errorf("lock event %s: %w", booking.EventID.String(), err)
		return nil, err
	}

	if err = event.AcceptsBookings(); err != nil {
		return nil, err
	}
	if !event.HasCapacity() {
		err = apperr.Conflict("maximum participants reached")
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, user_id, event_id, status, payment_status, expires_at,
			payment_amount, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		booking.ID,
		booking.UserID,
		booking.EventID,
		booking.Status,
		booking.PaymentStatus,
		booking.ExpiresAt,
		booking.PaymentAmount,
		booking.PaidAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// The partial unique index on active (user_id, event_id) is the
			// authoritative duplicate guard; the service pre-check only
			// narrows the window.
			err = apperr.Conflict("you have already booked this event")
			return nil, err
		}
		r.log.Error("Failed to insert booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("user_id", booking.UserID.String()),
		)
		err = fmt.Errorf("insert booking %s: %w", booking.ID.String(), err)
		return nil, err
	}

	event.CurrentParticipants++
	if event.CurrentParticipants >= event.MaxParticipants {
		event.Status = entity.EventStatusFull
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET current_participants = $2, status = $3, updated_at = NOW() WHERE id = $1`,
		event.ID, event.CurrentParticipants, event.Status,
	)
	if err != nil {
		err = fmt.Errorf("claim capacity on event %s: %w", event.ID.String(), err)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("commit booking transaction: %w", err)
		return nil, err
	}

	return event, nil
}

func (r *bookingRepository) Release(ctx context.Context, id uuid.UUID, unpaidOnly bool) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin release transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var eventID uuid.UUID
	var status entity.BookingStatus
	var paymentStatus entity.PaymentStatus

	// Re-check the booking state under a row lock: the sweep and a
	// user-driven cancel or confirmation may race on the same booking.
	err = tx.QueryRow(ctx,
		`SELECT event_id, status, payment_status FROM bookings WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&eventID, &status, &paymentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		err = apperr.NotFound("booking %s not found", id.String())
		return err
	}
	if err != nil {
		r.log.Error("Failed to lock booking row",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		err = fmt.Errorf("lock booking %s: %w", id.String(), err)
		return err
	}

	if status != entity.BookingStatusActive {
		err = apperr.InvalidState("booking is already cancelled")
		return err
	}
	if unpaidOnly && paymentStatus == entity.PaymentStatusCompleted {
		err = apperr.Conflict("payment already confirmed")
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE bookings SET status = 'cancelled', updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		err = fmt.Errorf("cancel booking %s: %w", id.String(), err)
		return err
	}

	// Return the slot. The floor guards against double decrement; only a
	// full event is reopened, terminal statuses stay as they are.
	_, err = tx.Exec(ctx, `
		UPDATE events
		SET current_participants = GREATEST(current_participants - 1, 0),
		    status = CASE WHEN status = 'full' THEN 'open' ELSE status END,
		    updated_at = NOW()
		WHERE id = $1
	`, eventID)
	if err != nil {
		err = fmt.Errorf("release capacity on event %s: %w", eventID.String(), err)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		err = fmt.Errorf("commit release transaction: %w", err)
		return err
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindActiveByUserAndEvent(ctx context.Context, userID, eventID uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND event_id = $2 AND status = 'active'
	`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, userID, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active booking",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("find active booking for user %s: %w", userID.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'active' AND payment_status <> 'completed' AND expires_at <= $1
		ORDER BY expires_at
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		r.log.Error("Failed to find expired bookings", zap.Error(err))
		return nil, fmt.Errorf("find expired bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

func (r *bookingRepository) SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string, amount float64) error {
	query := `
		UPDATE bookings
		SET payment_intent_id = $2, payment_amount = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, intentID, amount)
	if err != nil {
		r.log.Error("Failed to set payment intent",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("intent_id", intentID),
		)
		return fmt.Errorf("set payment intent on booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("booking %s not found", id.String())
	}

	return nil
}

func (r *bookingRepository) ConfirmPayment(ctx context.Context, id uuid.UUID, transactionID string, paidAt time.Time) error {
	query := `
		UPDATE bookings
		SET payment_status = 'completed', transaction_id = $2, paid_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'active' AND payment_status <> 'completed'
	`

	result, err := r.db.Exec(ctx, query, id, transactionID, paidAt)
	if err != nil {
		r.log.Error("Failed to confirm payment",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("confirm payment on booking %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperr.Conflict("payment already confirmed")
	}

	return nil
}

func (r *bookingRepository) MarkPaymentFailed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE bookings
		SET payment_status = 'failed', updated_at = NOW()
		WHERE id = $1 AND payment_status <> 'completed'
	`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to mark payment failed",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("mark payment failed on booking %s: %w", id.String(), err)
	}

	return nil
}
