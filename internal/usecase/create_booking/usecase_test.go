package create_booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing"
	"github.com/m04kA/SMC-CourtBookingService/pkg/keylock"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tzclock"
)

// memoryBookings хранилище бронирований в памяти.
// enforceConstraint имитирует exclusion constraint БД на вставке.
type memoryBookings struct {
	mu                sync.Mutex
	bookings          map[string]*domain.Booking
	enforceConstraint bool
	skipOverlapCheck  bool
	createDelay       time.Duration
}

func newMemoryBookings() *memoryBookings {
	return &memoryBookings{bookings: make(map[string]*domain.Booking)}
}

func (m *memoryBookings) LockCourt(context.Context, int64) error { return nil }

func (m *memoryBookings) FindActiveOverlap(_ context.Context, courtID int64, start, end time.Time) (*domain.Booking, error) {
	if m.skipOverlapCheck {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlapLocked(courtID, domain.Interval{Start: start, End: end}), nil
}

func (m *memoryBookings) overlapLocked(courtID int64, iv domain.Interval) *domain.Booking {
	for _, b := range m.bookings {
		if b.CourtID == courtID && b.IsActive() && b.Interval().Overlaps(iv) {
			return b
		}
	}
	return nil
}

func (m *memoryBookings) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if m.createDelay > 0 {
		time.Sleep(m.createDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enforceConstraint && m.overlapLocked(b.CourtID, b.Interval()) != nil {
		return nil, fmt.Errorf("%w: court_id=%d", bookingRepo.ErrOverlappingBooking, b.CourtID)
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return b, nil
}

func (m *memoryBookings) UpdateStatus(_ context.Context, id string, status domain.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (m *memoryBookings) active(courtID int64) []*domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Booking
	for _, b := range m.bookings {
		if b.CourtID == courtID && b.IsActive() {
			out = append(out, b)
		}
	}
	return out
}

type passthroughTx struct{}

func (passthroughTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type courts struct{}

func (courts) GetByID(_ context.Context, id int64) (*domain.Court, error) {
	if id > 3 {
		return nil, courtRepo.ErrCourtNotFound
	}
	return &domain.Court{ID: id, IsActive: true, Currency: "CLP"}, nil
}

type fixedPrice struct {
	err error
}

func (f fixedPrice) ResolveForCourt(_ context.Context, _ *domain.Court, _ string, start, end time.Time) (domain.PriceSnapshot, error) {
	if f.err != nil {
		return domain.PriceSnapshot{}, f.err
	}
	minutes := int64(end.Sub(start) / time.Minute)
	return domain.PriceSnapshot{Amount: 10000 * minutes / 60, Currency: "CLP", Slot: domain.SlotPM, Source: domain.SourceRateCard}, nil
}

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

type noLock struct{}

func (noLock) Lock(int64) func() { return func() {} }

// 2026-03-10 09:00 в Сантьяго
var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	uc        *UseCase
	repo      *memoryBookings
	publisher *recordingPublisher
	clock     *tzclock.Clock
}

func newFixture(t *testing.T, repo *memoryBookings, price PriceResolver, locker CourtLocker) *fixture {
	t.Helper()
	clock, err := tzclock.NewWithNow(tzclock.DefaultZone, func() time.Time { return now })
	require.NoError(t, err)

	pub := &recordingPublisher{}
	var seq atomic.Int64
	uc := NewUseCase(repo, courts{}, price, passthroughTx{}, locker, pub, clock, logger.NewNop())
	uc.newID = func() string { return fmt.Sprintf("b-%d", seq.Add(1)) }

	return &fixture{uc: uc, repo: repo, publisher: pub, clock: clock}
}

func (f *fixture) at(t *testing.T, date string, hour, minute int) time.Time {
	t.Helper()
	ts := fmt.Sprintf("%02d:%02d", hour, minute)
	instant, err := f.clock.ToInstant(date, types.TimeString(ts))
	require.NoError(t, err)
	return instant
}

func TestExecute_CreatesConfirmedBooking(t *testing.T) {
	f := newFixture(t, newMemoryBookings(), fixedPrice{}, keylock.New[int64]())

	resp, err := f.uc.Execute(context.Background(), &Request{
		CourtID:   1,
		UserID:    ptr.Ptr("user-1"),
		StartTime: f.at(t, "2026-03-11", 18, 0),
		EndTime:   f.at(t, "2026-03-11", 19, 30),
		Title:     ptr.Ptr("Partido"),
	})
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, "b-1", b.ID)
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	assert.Equal(t, "2026-03-11", b.BookingDate)
	assert.Equal(t, int64(15000), b.Price.Amount)
	assert.Equal(t, []string{"booking.created"}, f.publisher.keys)
}

func TestExecute_ChatBookingIsPromoted(t *testing.T) {
	f := newFixture(t, newMemoryBookings(), fixedPrice{}, keylock.New[int64]())
	pending := domain.StatusPending

	resp, err := f.uc.Execute(context.Background(), &Request{
		CourtID:     2,
		ContactID:   ptr.Ptr("contact-1"),
		StartTime:   f.at(t, "2026-03-11", 10, 0),
		EndTime:     f.at(t, "2026-03-11", 11, 0),
		Status:      &pending,
		Title:       ptr.Ptr("Ana"),
		AutoConfirm: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, resp.Booking.Status)
	assert.Equal(t, domain.StatusConfirmed, f.repo.active(2)[0].Status)

	// Без AutoConfirm бронирование остаётся pending
	resp, err = f.uc.Execute(context.Background(), &Request{
		CourtID:   2,
		StartTime: f.at(t, "2026-03-11", 11, 0),
		EndTime:   f.at(t, "2026-03-11", 12, 0),
		Status:    &pending,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, resp.Booking.Status)
}

func TestExecute_TouchingIntervalsDoNotConflict(t *testing.T) {
	f := newFixture(t, newMemoryBookings(), fixedPrice{}, keylock.New[int64]())
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, &Request{CourtID: 1, StartTime: f.at(t, "2026-03-11", 10, 0), EndTime: f.at(t, "2026-03-11", 11, 0)})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, &Request{CourtID: 1, StartTime: f.at(t, "2026-03-11", 11, 0), EndTime: f.at(t, "2026-03-11", 12, 0)})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, &Request{CourtID: 1, StartTime: f.at(t, "2026-03-11", 10, 30), EndTime: f.at(t, "2026-03-11", 11, 30)})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// другой корт не конфликтует
	_, err = f.uc.Execute(ctx, &Request{CourtID: 2, StartTime: f.at(t, "2026-03-11", 10, 30), EndTime: f.at(t, "2026-03-11", 11, 30)})
	require.NoError(t, err)
}

// Случайные интервалы: guard отклоняет ровно пересекающиеся с уже принятыми
func TestExecute_RandomIntervalsMatchBruteForce(t *testing.T) {
	f := newFixture(t, newMemoryBookings(), fixedPrice{}, keylock.New[int64]())
	rng := rand.New(rand.NewSource(42))
	dayStart := f.at(t, "2026-03-12", 0, 0)

	var accepted []domain.Interval
	for i := 0; i < 300; i++ {
		startMin := rng.Intn(24*60 - 15)
		length := 15 * (1 + rng.Intn(8))
		start := dayStart.Add(time.Duration(startMin) * time.Minute)
		candidate := domain.Interval{Start: start, End: start.Add(time.Duration(length) * time.Minute)}

		wantConflict := false
		for _, a := range accepted {
			if a.Overlaps(candidate) {
				wantConflict = true
				break
			}
		}

		_, err := f.uc.Execute(context.Background(), &Request{CourtID: 1, StartTime: candidate.Start, EndTime: candidate.End})
		if wantConflict {
			require.ErrorIs(t, err, ErrSlotNotAvailable, "interval %v", candidate)
			continue
		}
		require.NoError(t, err, "interval %v", candidate)
		accepted = append(accepted, candidate)
	}

	assertNoOverlaps(t, f.repo.active(1))
}

func TestExecute_ConcurrentSameSlotSingleWinner(t *testing.T) {
	repo := newMemoryBookings()
	repo.createDelay = time.Millisecond
	f := newFixture(t, repo, fixedPrice{}, keylock.New[int64]())

	start := f.at(t, "2026-03-11", 20, 0)
	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), &Request{CourtID: 3, StartTime: start, EndTime: start.Add(time.Hour)})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, ErrSlotNotAvailable):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(19), conflicts.Load())
	assert.Len(t, repo.active(3), 1)
}

// Без внутрипроцессной блокировки гонку ловит ограничение хранилища,
// и проигравшие получают тот же конфликт
func TestExecute_StorageConstraintBecomesConflict(t *testing.T) {
	repo := newMemoryBookings()
	repo.enforceConstraint = true
	repo.skipOverlapCheck = true
	f := newFixture(t, repo, fixedPrice{}, noLock{})

	start := f.at(t, "2026-03-11", 20, 0)
	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			s := start.Add(time.Duration(offset*5) * time.Minute)
			_, err := f.uc.Execute(context.Background(), &Request{CourtID: 1, StartTime: s, EndTime: s.Add(time.Hour)})
			if err == nil {
				wins.Add(1)
				return
			}
			assert.ErrorIs(t, err, ErrSlotNotAvailable)
			assert.NotErrorIs(t, err, domain.ErrIntegrity)
			conflicts.Add(1)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(9), conflicts.Load())
	assertNoOverlaps(t, repo.active(1))
}

func TestExecute_PricingErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"straddles cutoff", pricing.ErrStraddlesCutoff, ErrCrossesPriceCutoff},
		{"missing rate", fmt.Errorf("%w: court 1, slot PM", pricing.ErrRateNotConfigured), ErrRateNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, newMemoryBookings(), fixedPrice{err: tt.err}, keylock.New[int64]())
			_, err := f.uc.Execute(context.Background(), &Request{
				CourtID:   1,
				StartTime: f.at(t, "2026-03-11", 11, 30),
				EndTime:   f.at(t, "2026-03-11", 13, 0),
			})
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrConflict)
			assert.Empty(t, f.repo.active(1))
			assert.Empty(t, f.publisher.keys)
		})
	}
}

func TestExecute_Validation(t *testing.T) {
	f := newFixture(t, newMemoryBookings(), fixedPrice{}, keylock.New[int64]())
	start := f.at(t, "2026-03-11", 10, 0)
	cancelled := domain.StatusCancelled

	tests := []struct {
		name string
		req  *Request
		want error
	}{
		{"end before start", &Request{CourtID: 1, StartTime: start, EndTime: start.Add(-time.Hour)}, ErrInvalidTimeRange},
		{"empty interval", &Request{CourtID: 1, StartTime: start, EndTime: start}, ErrInvalidTimeRange},
		{"missing court", &Request{StartTime: start, EndTime: start.Add(time.Hour)}, ErrInvalidInput},
		{"date mismatch", &Request{CourtID: 1, StartTime: start, EndTime: start.Add(time.Hour), Date: "2026-03-12"}, ErrInvalidInput},
		{"bad status", &Request{CourtID: 1, StartTime: start, EndTime: start.Add(time.Hour), Status: &cancelled}, ErrInvalidInput},
		{"past date", &Request{CourtID: 1, StartTime: f.at(t, "2026-03-09", 10, 0), EndTime: f.at(t, "2026-03-09", 11, 0)}, ErrBookingInPast},
		{"unknown court", &Request{CourtID: 7, StartTime: start, EndTime: start.Add(time.Hour)}, ErrCourtNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func assertNoOverlaps(t *testing.T, bookings []*domain.Booking) {
	t.Helper()
	for i := range bookings {
		for j := i + 1; j < len(bookings); j++ {
			assert.False(t, bookings[i].Interval().Overlaps(bookings[j].Interval()),
				"bookings %s and %s overlap", bookings[i].ID, bookings[j].ID)
		}
	}
}
