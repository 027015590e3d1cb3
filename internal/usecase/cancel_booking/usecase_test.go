package cancel_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
)

type memoryBookings struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
	phones   map[string]string
}

func newMemoryBookings(bookings ...*domain.Booking) *memoryBookings {
	m := &memoryBookings{bookings: map[string]*domain.Booking{}, phones: map[string]string{}}
	for _, b := range bookings {
		m.bookings[b.ID] = b
	}
	return m
}

func (m *memoryBookings) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memoryBookings) GetContactPhone(_ context.Context, bookingID string) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	phone, ok := m.phones[bookingID]
	if !ok {
		return nil, nil
	}
	return &phone, nil
}

func (m *memoryBookings) Cancel(_ context.Context, id string, reason *string, cancelledBy string, at time.Time) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	if b.IsCancelled() {
		return nil, bookingRepo.ErrAlreadyCancelled
	}
	b.Status = domain.StatusCancelled
	b.CancellationReason = reason
	b.CancelledBy = &cancelledBy
	b.CancelledAt = &at
	cp := *b
	return &cp, nil
}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

var now = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func confirmedBooking(id string, startsIn time.Duration) *domain.Booking {
	start := now.Add(startsIn)
	return &domain.Booking{
		ID:        id,
		CourtID:   1,
		UserID:    ptr.Ptr("u-1"),
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    domain.StatusConfirmed,
	}
}

func newUseCase(repo *memoryBookings, policy Policy) (*UseCase, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewUseCase(repo, passthroughTx{}, pub, fixedClock{now: now}, policy, logger.NewNop()), pub
}

func TestExecute_GraceWindow(t *testing.T) {
	ctx := context.Background()

	repo := newMemoryBookings(confirmedBooking("b-1", 30*time.Minute))
	uc, _ := newUseCase(repo, DefaultPolicy())

	_, err := uc.Execute(ctx, &Request{BookingID: "b-1", Actor: "user:u-1"})
	require.ErrorIs(t, err, ErrTooLateToCancel)
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	stored, _ := repo.GetByID(ctx, "b-1")
	assert.Equal(t, domain.StatusConfirmed, stored.Status)

	policy := DefaultPolicy()
	policy.AllowInsideGrace = true
	uc, pub := newUseCase(repo, policy)

	resp, err := uc.Execute(ctx, &Request{BookingID: "b-1", Actor: "user:u-1", Reason: ptr.Ptr("rain")})
	require.NoError(t, err)
	assert.False(t, resp.AlreadyCancelled)
	assert.Equal(t, domain.StatusCancelled, resp.Booking.Status)
	assert.Equal(t, "user:u-1", *resp.Booking.CancelledBy)
	assert.Equal(t, "rain", *resp.Booking.CancellationReason)
	assert.Equal(t, []string{events.KeyBookingCancelled}, pub.keys)
}

func TestExecute_AdminIgnoresGraceAndOwnership(t *testing.T) {
	repo := newMemoryBookings(confirmedBooking("b-1", 10*time.Minute))
	uc, _ := newUseCase(repo, DefaultPolicy())

	resp, err := uc.Execute(context.Background(), &Request{BookingID: "b-1", Actor: "admin:root"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, resp.Booking.Status)
	assert.Equal(t, "admin:root", *resp.Booking.CancelledBy)
}

func TestExecute_AlreadyCancelled(t *testing.T) {
	ctx := context.Background()
	cancelledAt := now.Add(-time.Hour)

	b := confirmedBooking("b-1", 5*time.Hour)
	b.Status = domain.StatusCancelled
	b.CancelledAt = &cancelledAt
	b.CancelledBy = ptr.Ptr("admin:root")

	t.Run("idempotent", func(t *testing.T) {
		uc, pub := newUseCase(newMemoryBookings(b), DefaultPolicy())

		resp, err := uc.Execute(ctx, &Request{BookingID: "b-1", Actor: "user:u-1"})
		require.NoError(t, err)
		assert.True(t, resp.AlreadyCancelled)
		assert.Equal(t, cancelledAt, *resp.Booking.CancelledAt)
		assert.Equal(t, "admin:root", *resp.Booking.CancelledBy)
		assert.Empty(t, pub.keys)
	})

	t.Run("strict", func(t *testing.T) {
		policy := DefaultPolicy()
		policy.Idempotent = false
		uc, _ := newUseCase(newMemoryBookings(b), policy)

		_, err := uc.Execute(ctx, &Request{BookingID: "b-1", Actor: "user:u-1"})
		require.ErrorIs(t, err, ErrAlreadyCancelled)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("stranger still denied", func(t *testing.T) {
		uc, _ := newUseCase(newMemoryBookings(b), DefaultPolicy())

		_, err := uc.Execute(ctx, &Request{BookingID: "b-1", Actor: "user:u-2"})
		assert.ErrorIs(t, err, ErrAccessDenied)
	})
}

func TestExecute_WhatsAppActorMatchesContactPhone(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBookings(confirmedBooking("b-1", 4*time.Hour), confirmedBooking("b-2", 4*time.Hour))
	repo.phones["b-1"] = "+56 9 1234 5678"
	repo.phones["b-2"] = "+56911112222"
	uc, _ := newUseCase(repo, DefaultPolicy())

	resp, err := uc.Execute(ctx, &Request{BookingID: "b-1", Actor: "wa:+56912345678"})
	require.NoError(t, err)
	assert.Equal(t, "wa:+56912345678", *resp.Booking.CancelledBy)

	_, err = uc.Execute(ctx, &Request{BookingID: "b-2", Actor: "wa:+56912345678"})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_Errors(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryBookings(confirmedBooking("b-1", 5*time.Hour))
	uc, _ := newUseCase(repo, DefaultPolicy())

	tests := []struct {
		name string
		req  *Request
		want error
	}{
		{"missing id", &Request{Actor: "admin:1"}, ErrInvalidInput},
		{"not found", &Request{BookingID: "nope", Actor: "admin:1"}, ErrBookingNotFound},
		{"malformed actor", &Request{BookingID: "b-1", Actor: "root"}, ErrAccessDenied},
		{"empty actor", &Request{BookingID: "b-1", Actor: ""}, ErrAccessDenied},
		{"other user", &Request{BookingID: "b-1", Actor: "user:u-9"}, ErrAccessDenied},
		{"wa without contact", &Request{BookingID: "b-1", Actor: "wa:+56912345678"}, ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	stored, _ := repo.GetByID(ctx, "b-1")
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
}

func TestAuthorize(t *testing.T) {
	b := confirmedBooking("b-1", 90*time.Minute)
	cancelled := confirmedBooking("b-3", 90*time.Minute)
	cancelled.Status = domain.StatusCancelled
	strict := DefaultPolicy()
	strict.Idempotent = false

	tests := []struct {
		name         string
		actor        domain.Actor
		booking      *domain.Booking
		contactPhone *string
		policy       Policy
		wantDecision Decision
		wantErr      error
	}{
		{"admin ignores grace", domain.AdminActor{ID: "1"}, b, nil, DefaultPolicy(), DecisionCancel, nil},
		{"owner inside grace", domain.UserActor{ID: "u-1"}, b, nil, DefaultPolicy(), DecisionCancel, ErrTooLateToCancel},
		{"stranger", domain.UserActor{ID: "u-2"}, b, nil, DefaultPolicy(), DecisionCancel, ErrAccessDenied},
		{"owner outside shorter grace", domain.UserActor{ID: "u-1"}, b, nil, Policy{GraceWindow: time.Hour}, DecisionCancel, nil},
		{"already started", domain.UserActor{ID: "u-1"}, confirmedBooking("b-2", -10*time.Minute), nil, Policy{GraceWindow: time.Hour}, DecisionCancel, ErrTooLateToCancel},
		{"wa actor matches contact", domain.WhatsAppActor{Phone: "+56912345678"}, confirmedBooking("b-4", 5*time.Hour), ptr.Ptr("+56 9 1234 5678"), DefaultPolicy(), DecisionCancel, nil},
		{"already cancelled idempotent", domain.UserActor{ID: "u-1"}, cancelled, nil, DefaultPolicy(), DecisionAlreadyCancelled, nil},
		{"already cancelled skips grace", domain.AdminActor{ID: "1"}, cancelled, nil, DefaultPolicy(), DecisionAlreadyCancelled, nil},
		{"already cancelled strict", domain.UserActor{ID: "u-1"}, cancelled, nil, strict, DecisionCancel, ErrAlreadyCancelled},
		{"already cancelled stranger", domain.UserActor{ID: "u-2"}, cancelled, nil, DefaultPolicy(), DecisionCancel, ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := Authorize(tt.actor, tt.booking, tt.contactPhone, now, tt.policy)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDecision, decision)
		})
	}
}

// Отмена, выполненная конкурентно между чтением и записью, решается той же политикой
type racingBookings struct {
	*memoryBookings
}

func (r racingBookings) Cancel(ctx context.Context, id string, reason *string, cancelledBy string, at time.Time) (*domain.Booking, error) {
	if _, err := r.memoryBookings.Cancel(ctx, id, ptr.Ptr("other tab"), "admin:root", at); err != nil {
		return nil, err
	}
	return nil, bookingRepo.ErrAlreadyCancelled
}

func TestExecute_ConcurrentCancelGoesThroughPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		repo := racingBookings{newMemoryBookings(confirmedBooking("b-1", 5*time.Hour))}
		pub := &recordingPublisher{}
		uc := NewUseCase(repo, passthroughTx{}, pub, fixedClock{now: now}, DefaultPolicy(), logger.NewNop())

		resp, err := uc.Execute(ctx, &Request{BookingID: "b-1", Actor: "user:u-1"})
		require.NoError(t, err)
		assert.True(t, resp.AlreadyCancelled)
		assert.Equal(t, "admin:root", *resp.Booking.CancelledBy)
		assert.Empty(t, pub.keys)
	})

	t.Run("strict", func(t *testing.T) {
		repo := racingBookings{newMemoryBookings(confirmedBooking("b-1", 5*time.Hour))}
		policy := DefaultPolicy()
		policy.Idempotent = false
		uc := NewUseCase(repo, passthroughTx{}, &recordingPublisher{}, fixedClock{now: now}, policy, logger.NewNop())

		_, err := uc.Execute(ctx, &Request{BookingID: "b-1", Actor: "user:u-1"})
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
	})
}
