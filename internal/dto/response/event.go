package response

import (
	"time"

	"event-booking/internal/data/entity"
)

type EventResponse struct {
	ID                  string             `json:"id"`
	HostID              string             `json:"host_id"`
	Title               string             `json:"title"`
	Description         string             `json:"description,omitempty"`
	Location            string             `json:"location,omitempty"`
	StartsAt            time.Time          `json:"starts_at"`
	MinParticipants     int                `json:"min_participants"`
	MaxParticipants     int                `json:"max_participants"`
	CurrentParticipants int                `json:"current_participants"`
	FeeStatus           entity.FeeStatus   `json:"fee_status"`
	JoiningFee          float64            `json:"joining_fee"`
	Status              entity.EventStatus `json:"status"`
	Approved            bool               `json:"approved"`
	CreatedAt           time.Time          `json:"created_at"`
}

// EventSummary is the slimmed event embedded in booking responses.
type EventSummary struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Location   string             `json:"location,omitempty"`
	StartsAt   time.Time          `json:"starts_at"`
	FeeStatus  entity.FeeStatus   `json:"fee_status"`
	JoiningFee float64            `json:"joining_fee"`
	Status     entity.EventStatus `json:"status"`
}

func EventToResponse(e *entity.Event) EventResponse {
	return EventResponse{
		ID:                  e.ID.String(),
		HostID:              e.HostID.String(),
		Title:               e.Title,
		Description:         e.Description,
		Location:            e.Location,
		StartsAt:            e.StartsAt,
		MinParticipants:     e.MinParticipants,
		MaxParticipants:     e.MaxParticipants,
		CurrentParticipants: e.CurrentParticipants,
		FeeStatus:           e.FeeStatus,
		JoiningFee:          e.JoiningFee,
		Status:              e.Status,
		Approved:            e.Approved,
		CreatedAt:           e.CreatedAt,
	}
}

func EventToSummary(e *entity.Event) *EventSummary {
	if e == nil {
		return nil
	}
	return &EventSummary{
		ID:         e.ID.String(),
		Title:      e.Title,
		Location:   e.Location,
		StartsAt:   e.StartsAt,
		FeeStatus:  e.FeeStatus,
		JoiningFee: e.JoiningFee,
		Status:     e.Status,
	}
}
