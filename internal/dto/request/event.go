package request

import "time"

type CreateEventRequest struct {
	Title           string    `json:"title" validate:"required,min=3,max=200"`
	Description     string    `json:"description" validate:"max=5000"`
	Location        string    `json:"location" validate:"max=500"`
	StartsAt        time.Time `json:"starts_at" validate:"required"`
	MinParticipants int       `json:"min_participants" validate:"required,min=1"`
	MaxParticipants int       `json:"max_participants" validate:"required,min=1"`
	FeeStatus       string    `json:"fee_status" validate:"required,oneof=free paid"`
	JoiningFee      float64   `json:"joining_fee" validate:"min=0"`
}

type UpdateEventStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=cancelled completed"`
}
