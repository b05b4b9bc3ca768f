package repository

import (
	"context"
	"fmt"

	"event-booking/internal/data/entity"
	"event-booking/pkg/apperr"
	"event-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	FindOpen(ctx context.Context, limit, offset int) ([]*entity.Event, error)
	CountOpen(ctx context.Context) (int64, error)
	Update(ctx context.Context, event *entity.Event) error
	SetApproved(ctx context.Context, id uuid.UUID) error

	// CloseOut moves an open or full event into a terminal status. Other
	// statuses are left alone and reported as an invalid-state error.
	CloseOut(ctx context.Context, id uuid.UUID, status entity.EventStatus) error
}

const eventColumns = `id, host_id, title, description, location, starts_at,
	min_participants, max_participants, current_participants,
	fee_status, joining_fee, status, approved, created_at, updated_at`

type eventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewEventRepository(db database.PgxIface, log *zap.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log.With(zap.String("repository", "event")),
	}
}

func scanEvent(row pgx.Row) (*entity.Event, error) {
	var e entity.Event
	err := row.Scan(
		&e.ID,
		&e.HostID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.StartsAt,
		&e.MinParticipants,
		&e.MaxParticipants,
		&e.CurrentParticipants,
		&e.FeeStatus,
		&e.JoiningFee,
		&e.Status,
		&e.Approved,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (id, host_id, title, description, location, starts_at,
			min_participants, max_participants, current_participants,
			fee_status, joining_fee, status, approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.HostID,
		event.Title,
		event.Description,
		event.Location,
		event.StartsAt,
		event.MinParticipants,
		event.MaxParticipants,
		event.CurrentParticipants,
		event.FeeStatus,
		event.JoiningFee,
		event.Status,
		event.Approved,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
			zap.String("host_id", event.HostID.String()),
		)
		return fmt.Errorf("create event %s: %w", event.ID.String(), err)
	}

	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event by ID",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return nil, fmt.Errorf("find event by ID %s: %w", id.String(), err)
	}

	return event, nil
}

func (r *eventRepository) FindOpen(ctx context.Context, limit, offset int) ([]*entity.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE status = 'open' AND approved = true
		ORDER BY starts_at
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list open events", zap.Error(err))
		return nil, fmt.Errorf("list open events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			r.log.Error("Failed to scan event row", zap.Error(err))
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, event)
	}

	return events, nil
}

func (r *eventRepository) CountOpen(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM events WHERE status = 'open' AND approved = true`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count open events", zap.Error(err))
		return 0, fmt.Errorf("count open events: %w", err)
	}

	return count, nil
}

func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, location = $4, starts_at = $5,
		    min_participants = $6, max_participants = $7,
		    fee_status = $8, joining_fee = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Location,
		event.StartsAt,
		event.MinParticipants,
		event.MaxParticipants,
		event.FeeStatus,
		event.JoiningFee,
		event.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update event",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
		)
		return fmt.Errorf("update event %s: %w", event.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("event %s not found", event.ID.String())
	}

	return nil
}

func (r *eventRepository) SetApproved(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE events SET approved = true, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to approve event",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("approve event %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("event %s not found", id.String())
	}

	return nil
}

func (r *eventRepository) CloseOut(ctx context.Context, id uuid.UUID, status entity.EventStatus) error {
	if status != entity.EventStatusCancelled && status != entity.EventStatusCompleted {
		return apperr.InvalidState("status %s is not a terminal event status", status)
	}

	query := `
		UPDATE events
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status IN ('open', 'full')
	`

	result, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		r.log.Error("Failed to close out event",
			zap.Error(err),
			zap.String("event_id", id.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("close out event %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		// Either missing or already terminal; disambiguate for the caller.
		event, ferr := r.FindByID(ctx, id)
		if ferr != nil {
			return ferr
		}
		if event == nil {
			return apperr.NotFound("event %s not found", id.String())
		}
		return apperr.InvalidState("event is already %s", event.Status)
	}

	return nil
}
