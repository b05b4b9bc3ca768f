package entity

import (
	"time"

	"github.com/google/uuid"

	"event-booking/pkg/apperr"
)

type EventStatus string

const (
	EventStatusOpen      EventStatus = "open"
	EventStatusFull      EventStatus = "full"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

type FeeStatus string

const (
	FeeStatusFree FeeStatus = "free"
	FeeStatusPaid FeeStatus = "paid"
)

type Event struct {
	Base
	HostID              uuid.UUID   `db:"host_id"`
	Title               string      `db:"title"`
	Description         string      `db:"description"`
	Location            string      `db:"location"`
	StartsAt            time.Time   `db:"starts_at"`
	MinParticipants     int         `db:"min_participants"`
	MaxParticipants     int         `db:"max_participants"`
	CurrentParticipants int         `db:"current_participants"`
	FeeStatus           FeeStatus   `db:"fee_status"`
	JoiningFee          float64     `db:"joining_fee"`
	Status              EventStatus `db:"status"`
	Approved            bool        `db:"approved"`
}

func (e *Event) IsFree() bool {
	return e.FeeStatus == FeeStatusFree
}

func (e *Event) HasCapacity() bool {
	return e.CurrentParticipants < e.MaxParticipants
}

// AcceptsBookings checks the gates a new booking must pass: the event has to
// be admin-approved and in the open state. A full event reports the capacity
// conflict directly; terminal states report why the event no longer takes
// bookings.
func (e *Event) AcceptsBookings() error {
	if !e.Approved {
		return apperr.InvalidState("event is not approved for bookings")
	}

	switch e.Status {
	case EventStatusOpen:
		return nil
	case EventStatusFull:
		return apperr.Conflict("maximum participants reached")
	case EventStatusCancelled:
		return apperr.InvalidState("event is cancelled")
	case EventStatusCompleted:
		return apperr.InvalidState("event is completed")
	default:
		return apperr.InvalidState("event is not open for bookings")
	}
}
