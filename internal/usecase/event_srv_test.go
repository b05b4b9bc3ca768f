package usecase

import (
	"context"
	"testing"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/internal/dto/request"
	"event-booking/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEventService(t *testing.T) (*eventService, *memStore) {
	t.Helper()
	repo, store := newFakeRepo()
	return NewEventService(repo, testLogger()).(*eventService), store
}

func validEventRequest() *request.CreateEventRequest {
	return &request.CreateEventRequest{
		Title:           "Evening Run Club",
		Location:        "Riverside Park",
		StartsAt:        time.Now().Add(48 * time.Hour),
		MinParticipants: 2,
		MaxParticipants: 20,
		FeeStatus:       "free",
	}
}

func TestCreateEventStartsUnapproved(t *testing.T) {
	svc, store := newEventService(t)
	hostID := uuid.New()

	resp, err := svc.CreateEvent(context.Background(), hostID, RoleHost, validEventRequest())
	require.NoError(t, err)

	assert.Equal(t, entity.EventStatusOpen, resp.Status)
	assert.False(t, resp.Approved)
	assert.Equal(t, 0, resp.CurrentParticipants)

	stored := store.events[uuid.MustParse(resp.ID)]
	require.NotNil(t, stored)
	assert.Equal(t, hostID, stored.HostID)
}

func TestCreateEventRejectsAttendee(t *testing.T) {
	svc, _ := newEventService(t)
	_, err := svc.CreateEvent(context.Background(), uuid.New(), RoleAttendee, validEventRequest())
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestCreateEventValidatesParticipantBounds(t *testing.T) {
	svc, _ := newEventService(t)
	req := validEventRequest()
	req.MinParticipants = 30
	req.MaxParticipants = 20

	_, err := svc.CreateEvent(context.Background(), uuid.New(), RoleHost, req)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestCreateEventValidatesFee(t *testing.T) {
	svc, _ := newEventService(t)

	paid := validEventRequest()
	paid.FeeStatus = "paid"
	paid.JoiningFee = 0
	_, err := svc.CreateEvent(context.Background(), uuid.New(), RoleHost, paid)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	free := validEventRequest()
	free.JoiningFee = 10
	_, err = svc.CreateEvent(context.Background(), uuid.New(), RoleHost, free)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestCreateEventRejectsPastStart(t *testing.T) {
	svc, _ := newEventService(t)
	req := validEventRequest()
	req.StartsAt = time.Now().Add(-time.Hour)

	_, err := svc.CreateEvent(context.Background(), uuid.New(), RoleHost, req)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestApproveEventAdminOnly(t *testing.T) {
	svc, store := newEventService(t)
	event := openEvent(uuid.New(), 10, 0)
	event.Approved = false
	store.addEvent(event)

	err := svc.ApproveEvent(context.Background(), RoleHost, event.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	require.NoError(t, svc.ApproveEvent(context.Background(), RoleAdmin, event.ID))
	assert.True(t, store.events[event.ID].Approved)

	// approving twice is a no-op
	assert.NoError(t, svc.ApproveEvent(context.Background(), RoleAdmin, event.ID))
}

func TestCloseEventOwnershipAndTerminalStates(t *testing.T) {
	svc, store := newEventService(t)
	hostID := uuid.New()
	event := openEvent(hostID, 10, 0)
	store.addEvent(event)
	req := &request.UpdateEventStatusRequest{Status: "completed"}

	err := svc.CloseEvent(context.Background(), uuid.New(), RoleHost, event.ID, req)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	require.NoError(t, svc.CloseEvent(context.Background(), hostID, RoleHost, event.ID, req))
	assert.Equal(t, entity.EventStatusCompleted, store.events[event.ID].Status)

	err = svc.CloseEvent(context.Background(), hostID, RoleHost, event.ID,
		&request.UpdateEventStatusRequest{Status: "cancelled"})
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestListOpenEventsOnlyApprovedOpen(t *testing.T) {
	svc, store := newEventService(t)

	approved := openEvent(uuid.New(), 10, 0)
	store.addEvent(approved)

	hidden := openEvent(uuid.New(), 10, 0)
	hidden.Approved = false
	store.addEvent(hidden)

	closed := openEvent(uuid.New(), 10, 0)
	closed.Status = entity.EventStatusCancelled
	store.addEvent(closed)

	page, err := svc.ListOpenEvents(context.Background(), &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, approved.ID.String(), page.Data[0].ID)
	assert.Equal(t, int64(1), page.Pagination.Total)
}

func TestGetEventNotFound(t *testing.T) {
	svc, _ := newEventService(t)
	_, err := svc.GetEvent(context.Background(), uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
