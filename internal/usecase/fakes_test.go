package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"
	"event-booking/internal/notify"
	"event-booking/pkg/apperr"
	"event-booking/pkg/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// In-memory repositories backing the service tests. fakeBookingRepo.Book
// mirrors the locking semantics of the real implementation: the capacity
// check and the insert happen under one mutex, so concurrent callers
// contend exactly like transactions on a locked event row.

type memStore struct {
	mu       sync.Mutex
	events   map[uuid.UUID]*entity.Event
	bookings map[uuid.UUID]*entity.Booking
}

func newMemStore() *memStore {
	return &memStore{
		events:   make(map[uuid.UUID]*entity.Event),
		bookings: make(map[uuid.UUID]*entity.Booking),
	}
}

func (m *memStore) addEvent(e *entity.Event) {
	cp := *e
	m.events[e.ID] = &cp
}

func (m *memStore) addBooking(b *entity.Booking) {
	cp := *b
	m.bookings[b.ID] = &cp
}

func copyEvent(e *entity.Event) *entity.Event {
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}

func copyBooking(b *entity.Booking) *entity.Booking {
	if b == nil {
		return nil
	}
	cp := *b
	return &cp
}

type fakeEventRepo struct {
	store *memStore
}

func (f *fakeEventRepo) Create(_ context.Context, event *entity.Event) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.addEvent(event)
	return nil
}

func (f *fakeEventRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Event, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return copyEvent(f.store.events[id]), nil
}

func (f *fakeEventRepo) FindOpen(_ context.Context, limit, offset int) ([]*entity.Event, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var open []*entity.Event
	for _, e := range f.store.events {
		if e.Status == entity.EventStatusOpen && e.Approved {
			open = append(open, copyEvent(e))
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].StartsAt.Before(open[j].StartsAt) })

	if offset >= len(open) {
		return nil, nil
	}
	open = open[offset:]
	if limit < len(open) {
		open = open[:limit]
	}
	return open, nil
}

func (f *fakeEventRepo) CountOpen(_ context.Context) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var n int64
	for _, e := range f.store.events {
		if e.Status == entity.EventStatusOpen && e.Approved {
			n++
		}
	}
	return n, nil
}

func (f *fakeEventRepo) Update(_ context.Context, event *entity.Event) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.events[event.ID]; !ok {
		return apperr.NotFound("event %s not found", event.ID.String())
	}
	f.store.addEvent(event)
	return nil
}

func (f *fakeEventRepo) SetApproved(_ context.Context, id uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	e, ok := f.store.events[id]
	if !ok {
		return apperr.NotFound("event %s not found", id.String())
	}
	e.Approved = true
	return nil
}

func (f *fakeEventRepo) CloseOut(_ context.Context, id uuid.UUID, status entity.EventStatus) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	e, ok := f.store.events[id]
	if !ok {
		return apperr.NotFound("event %s not found", id.String())
	}
	if e.Status != entity.EventStatusOpen && e.Status != entity.EventStatusFull {
		return apperr.InvalidState("event is already %s", e.Status)
	}
	e.Status = status
	return nil
}

type fakeBookingRepo struct {
	store *memStore
}

func (f *fakeBookingRepo) Book(_ context.Context, booking *entity.Booking) (*entity.Event, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	event, ok := f.store.events[booking.EventID]
	if !ok {
		return nil, apperr.NotFound("event %s not found", booking.EventID.String())
	}
	if err := event.AcceptsBookings(); err != nil {
		return nil, err
	}
	if !event.HasCapacity() {
		return nil, apperr.Conflict("maximum participants reached")
	}
	for _, b := range f.store.bookings {
		if b.UserID == booking.UserID && b.EventID == booking.EventID && b.Status == entity.BookingStatusActive {
			return nil, apperr.Conflict("you have already booked this event")
		}
	}

	f.store.addBooking(booking)
	event.CurrentParticipants++
	if event.CurrentParticipants >= event.MaxParticipants {
		event.Status = entity.EventStatusFull
	}
	return copyEvent(event), nil
}

func (f *fakeBookingRepo) Release(_ context.Context, id uuid.UUID, unpaidOnly bool) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	b, ok := f.store.bookings[id]
	if !ok {
		return apperr.NotFound("booking %s not found", id.String())
	}
	if b.Status != entity.BookingStatusActive {
		return apperr.InvalidState("booking is already cancelled")
	}
	if unpaidOnly && b.PaymentStatus == entity.PaymentStatusCompleted {
		return apperr.Conflict("payment already confirmed")
	}

	b.Status = entity.BookingStatusCancelled
	if e, ok := f.store.events[b.EventID]; ok {
		if e.CurrentParticipants > 0 {
			e.CurrentParticipants--
		}
		if e.Status == entity.EventStatusFull {
			e.Status = entity.EventStatusOpen
		}
	}
	return nil
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	return copyBooking(f.store.bookings[id]), nil
}

func (f *fakeBookingRepo) FindActiveByUserAndEvent(_ context.Context, userID, eventID uuid.UUID) (*entity.Booking, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, b := range f.store.bookings {
		if b.UserID == userID && b.EventID == eventID && b.Status == entity.BookingStatusActive {
			return copyBooking(b), nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var out []*entity.Booking
	for _, b := range f.store.bookings {
		if b.UserID == userID {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBookingRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var n int64
	for _, b := range f.store.bookings {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookingRepo) FindExpired(_ context.Context, now time.Time, limit int) ([]*entity.Booking, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()

	var out []*entity.Booking
	for _, b := range f.store.bookings {
		if b.Status == entity.BookingStatusActive &&
			b.PaymentStatus != entity.PaymentStatusCompleted &&
			!b.ExpiresAt.After(now) {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBookingRepo) SetPaymentIntent(_ context.Context, id uuid.UUID, intentID string, amount float64) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	b, ok := f.store.bookings[id]
	if !ok {
		return apperr.NotFound("booking %s not found", id.String())
	}
	b.PaymentIntentID = &intentID
	b.PaymentAmount = amount
	return nil
}

func (f *fakeBookingRepo) ConfirmPayment(_ context.Context, id uuid.UUID, transactionID string, paidAt time.Time) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	b, ok := f.store.bookings[id]
	if !ok {
		return apperr.NotFound("booking %s not found", id.String())
	}
	if b.Status != entity.BookingStatusActive || b.PaymentStatus == entity.PaymentStatusCompleted {
		return apperr.Conflict("payment already confirmed")
	}
	b.PaymentStatus = entity.PaymentStatusCompleted
	b.TransactionID = &transactionID
	b.PaidAt = &paidAt
	return nil
}

func (f *fakeBookingRepo) MarkPaymentFailed(_ context.Context, id uuid.UUID) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	b, ok := f.store.bookings[id]
	if !ok {
		return apperr.NotFound("booking %s not found", id.String())
	}
	if b.PaymentStatus == entity.PaymentStatusCompleted {
		return nil
	}
	b.PaymentStatus = entity.PaymentStatusFailed
	return nil
}

func newFakeRepo() (*repository.Repository, *memStore) {
	store := newMemStore()
	return &repository.Repository{
		Event:   &fakeEventRepo{store: store},
		Booking: &fakeBookingRepo{store: store},
	}, store
}

// fakePublisher records published notifications.
type fakePublisher struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (f *fakePublisher) Publish(_ context.Context, msg notify.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakePublisher) Close() {}

func (f *fakePublisher) byType(msgType string) []notify.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notify.Message
	for _, m := range f.messages {
		if m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

// fakeProvider is a scripted payment provider.
type fakeProvider struct {
	mu            sync.Mutex
	intents       map[string]*payment.Intent
	createErr     error
	retrieveErr   error
	created       int
	webhookSecret string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		intents:       make(map[string]*payment.Intent),
		webhookSecret: "whsec_test",
	}
}

func (f *fakeProvider) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}

	f.created++
	intent := &payment.Intent{
		ID:           uuid.NewString(),
		ClientSecret: "cs_test",
		Status:       "requires_payment_method",
		Amount:       amount,
		Currency:     currency,
		Metadata:     metadata,
	}
	f.intents[intent.ID] = intent
	return intent, nil
}

func (f *fakeProvider) RetrieveIntent(_ context.Context, intentID string) (*payment.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	intent, ok := f.intents[intentID]
	if !ok {
		return nil, apperr.NotFound("payment intent %s not found", intentID)
	}
	cp := *intent
	return &cp, nil
}

func (f *fakeProvider) VerifyWebhookSignature(payload []byte, header string) error {
	return payment.VerifySignature(payload, header, f.webhookSecret, payment.DefaultTolerance, time.Now())
}

func (f *fakeProvider) succeed(intentID string, charge string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if intent, ok := f.intents[intentID]; ok {
		intent.Status = payment.IntentStatusSucceeded
		intent.LatestCharge = charge
	}
}

func testLogger() *zap.Logger { return zap.NewNop() }

func openEvent(hostID uuid.UUID, max int, fee float64) *entity.Event {
	status := entity.FeeStatusFree
	if fee > 0 {
		status = entity.FeeStatusPaid
	}
	now := time.Now()
	return &entity.Event{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HostID:          hostID,
		Title:           "Go Meetup",
		Location:        "Community Hall",
		StartsAt:        now.Add(72 * time.Hour),
		MinParticipants: 1,
		MaxParticipants: max,
		FeeStatus:       status,
		JoiningFee:      fee,
		Status:          entity.EventStatusOpen,
		Approved:        true,
	}
}
