package usecase

import (
	"context"
	"fmt"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"
	"event-booking/internal/dto/request"
	"event-booking/internal/dto/response"
	"event-booking/pkg/apperr"
	"event-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventService interface {
	CreateEvent(ctx context.Context, hostID uuid.UUID, role string, req *request.CreateEventRequest) (*response.EventResponse, error)

	// ApproveEvent makes a host-submitted event bookable. Admin only.
	ApproveEvent(ctx context.Context, role string, eventID uuid.UUID) error

	// CloseEvent moves an event into cancelled or completed. Only the
	// owning host or an admin may do this.
	CloseEvent(ctx context.Context, requesterID uuid.UUID, role string, eventID uuid.UUID, req *request.UpdateEventStatusRequest) error

	GetEvent(ctx context.Context, eventID uuid.UUID) (*response.EventResponse, error)
	ListOpenEvents(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.EventResponse], error)
}

type eventService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewEventService(repo *repository.Repository, log *zap.Logger) EventService {
	return &eventService{
		repo: repo,
		log:  log.With(zap.String("service", "event")),
		now:  time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, hostID uuid.UUID, role string, req *request.CreateEventRequest) (*response.EventResponse, error) {
	if role != RoleHost && role != RoleAdmin {
		return nil, apperr.Forbidden("only hosts can create events")
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create event validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if req.MinParticipants > req.MaxParticipants {
		return nil, apperr.InvalidState("minimum participants cannot exceed maximum participants")
	}

	feeStatus := entity.FeeStatus(req.FeeStatus)
	switch feeStatus {
	case entity.FeeStatusPaid:
		if req.JoiningFee <= 0 {
			return nil, apperr.InvalidState("paid events require a positive joining fee")
		}
	case entity.FeeStatusFree:
		if req.JoiningFee != 0 {
			return nil, apperr.InvalidState("free events cannot carry a joining fee")
		}
	}

	now := s.now()
	if !req.StartsAt.After(now) {
		return nil, apperr.InvalidState("event start time must be in the future")
	}

	event := &entity.Event{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HostID:          hostID,
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		StartsAt:        req.StartsAt,
		MinParticipants: req.MinParticipants,
		MaxParticipants: req.MaxParticipants,
		FeeStatus:       feeStatus,
		JoiningFee:      req.JoiningFee,
		Status:          entity.EventStatusOpen,
		Approved:        false,
	}

	if err := s.repo.Event.Create(ctx, event); err != nil {
		s.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("host_id", hostID.String()),
		)
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("host_id", hostID.String()),
		zap.String("title", event.Title),
	)

	resp := response.EventToResponse(event)
	return &resp, nil
}

func (s *eventService) ApproveEvent(ctx context.Context, role string, eventID uuid.UUID) error {
	if role != RoleAdmin {
		return apperr.Forbidden("only admins can approve events")
	}

	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return apperr.NotFound("event %s not found", eventID.String())
	}
	if event.Approved {
		return nil
	}
	if event.Status != entity.EventStatusOpen {
		return apperr.InvalidState("cannot approve a %s event", event.Status)
	}

	if err := s.repo.Event.SetApproved(ctx, eventID); err != nil {
		return fmt.Errorf("approve event: %w", err)
	}

	s.log.Info("Event approved", zap.String("event_id", eventID.String()))
	return nil
}

func (s *eventService) CloseEvent(ctx context.Context, requesterID uuid.UUID, role string, eventID uuid.UUID, req *request.UpdateEventStatusRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return apperr.NotFound("event %s not found", eventID.String())
	}
	if role != RoleAdmin && event.HostID != requesterID {
		return apperr.Forbidden("event belongs to another host")
	}

	target := entity.EventStatus(req.Status)
	if err := s.repo.Event.CloseOut(ctx, eventID, target); err != nil {
		return err
	}

	s.log.Info("Event closed",
		zap.String("event_id", eventID.String()),
		zap.String("status", string(target)),
	)
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID uuid.UUID) (*response.EventResponse, error) {
	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, apperr.NotFound("event %s not found", eventID.String())
	}

	resp := response.EventToResponse(event)
	return &resp, nil
}

func (s *eventService) ListOpenEvents(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.EventResponse], error) {
	events, err := s.repo.Event.FindOpen(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list open events", zap.Error(err))
		return nil, fmt.Errorf("list open events: %w", err)
	}

	total, err := s.repo.Event.CountOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("count open events: %w", err)
	}

	eventResponses := make([]response.EventResponse, len(events))
	for i, event := range events {
		eventResponses[i] = response.EventToResponse(event)
	}

	return response.NewPaginatedResponse(eventResponses, req.Page, req.Limit(), total), nil
}
