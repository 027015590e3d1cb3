package handle_message

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/session"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/cancel_booking"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-CourtBookingService/pkg/keylock"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tzclock"
)

const phone = "+56912345678"

// 2026-03-10 09:00 в Сантьяго
var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type sent struct {
	kind    string // text | buttons | list
	body    string
	buttons []domain.Button
	list    *domain.ListMessage
}

// recordingGateway шлюз без поддержки списков
type recordingGateway struct {
	mu          sync.Mutex
	sent        []sent
	failButtons bool
}

func (g *recordingGateway) SendText(_ context.Context, _ string, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sent{kind: "text", body: text})
	return nil
}

func (g *recordingGateway) SendButtons(_ context.Context, _ string, body string, b []domain.Button) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failButtons {
		return errors.New("buttons unsupported")
	}
	g.sent = append(g.sent, sent{kind: "buttons", body: body, buttons: b})
	return nil
}

func (g *recordingGateway) take() []sent {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.sent
	g.sent = nil
	return out
}

// listGateway шлюз с поддержкой списков
type listGateway struct {
	recordingGateway
	failList bool
}

func (g *listGateway) SendList(_ context.Context, _ string, l domain.ListMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failList {
		return errors.New("list rejected")
	}
	g.sent = append(g.sent, sent{kind: "list", body: l.Body, list: &l})
	return nil
}

type fakeContacts struct {
	calls []string
}

func (f *fakeContacts) FindOrCreateByPhone(_ context.Context, phone string, displayName *string, _ string) (*domain.Contact, error) {
	name := "<nil>"
	if displayName != nil {
		name = *displayName
	}
	f.calls = append(f.calls, phone+"|"+name)
	return &domain.Contact{ID: "c-1", WaPhone: phone, DisplayName: displayName}, nil
}

type fakeBookings struct {
	items []*domain.Booking
}

func (f *fakeBookings) GetUpcomingByContact(_ context.Context, contactID string, _ time.Time, limit int) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.items {
		if b.ContactID != nil && *b.ContactID == contactID && len(out) < limit {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeSlots struct {
	byDate map[string][]types.TimeString
}

func (f *fakeSlots) Execute(_ context.Context, req *get_available_slots.Request) (*get_available_slots.Response, error) {
	return &get_available_slots.Response{CourtID: req.CourtID, Date: req.Date, SlotMinutes: 60, Slots: f.byDate[req.Date]}, nil
}

type fakeCreator struct {
	requests []*create_booking.Request
	errs     []error
}

func (f *fakeCreator) Execute(_ context.Context, req *create_booking.Request) (*create_booking.Response, error) {
	f.requests = append(f.requests, req)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &create_booking.Response{Booking: &domain.Booking{ID: "new"}}, nil
}

type fakeCanceller struct {
	requests []*cancel_booking.Request
	resp     *cancel_booking.Response
	err      error
}

func (f *fakeCanceller) Execute(_ context.Context, req *cancel_booking.Request) (*cancel_booking.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &cancel_booking.Response{Booking: &domain.Booking{ID: req.BookingID}}, nil
}

type harness struct {
	uc        *UseCase
	sessions  *session.MemoryStore
	contacts  *fakeContacts
	bookings  *fakeBookings
	creator   *fakeCreator
	canceller *fakeCanceller
	clock     *tzclock.Clock
}

func newHarness(t *testing.T, gw Gateway) *harness {
	t.Helper()
	clock, err := tzclock.NewWithNow(tzclock.DefaultZone, func() time.Time { return now })
	require.NoError(t, err)

	h := &harness{
		sessions:  session.NewMemoryStore(time.Hour),
		contacts:  &fakeContacts{},
		bookings:  &fakeBookings{},
		creator:   &fakeCreator{},
		canceller: &fakeCanceller{},
		clock:     clock,
	}
	slots := &fakeSlots{byDate: map[string][]types.TimeString{
		"2026-03-10": {"10:00", "11:00"},
		"2026-03-11": {"09:00", "10:00", "11:00"},
		"2026-03-12": {"18:00"},
	}}
	h.uc = NewUseCase(h.sessions, h.contacts, h.bookings, slots, h.creator, h.canceller,
		gw, keylock.New[string](), clock, DefaultOptions(), logger.NewNop())
	return h
}

func (h *harness) send(t *testing.T, payload string) {
	t.Helper()
	require.NoError(t, h.uc.Execute(context.Background(), &Inbound{From: "whatsapp:56912345678", DisplayName: "Ana", Payload: payload}))
}

func (h *harness) session(t *testing.T) *domain.Session {
	t.Helper()
	s, err := h.sessions.Get(context.Background(), phone)
	require.NoError(t, err)
	return s
}

func upcomingBooking(t *testing.T, clock *tzclock.Clock, id, date string, at types.TimeString) *domain.Booking {
	t.Helper()
	start, err := clock.ToInstant(date, at)
	require.NoError(t, err)
	contactID := "c-1"
	return &domain.Booking{ID: id, CourtID: 1, ContactID: &contactID, StartTime: start, EndTime: start.Add(time.Hour), Status: domain.StatusConfirmed}
}

func TestReservationFlow_HappyPath(t *testing.T) {
	gw := &recordingGateway{}
	h := newHarness(t, gw)

	h.send(t, "Menu")
	out := gw.take()
	require.Len(t, out, 1)
	assert.Equal(t, msgMenu, out[0].body)
	assert.Equal(t, []string{phone + "|Ana"}, h.contacts.calls)

	h.send(t, tokenReserve)
	out = gw.take()
	require.Len(t, out, 1)
	assert.Len(t, out[0].buttons, 3)
	assert.Equal(t, domain.StepChooseCourt, h.session(t).Step)

	h.send(t, "cancha_2")
	assert.Equal(t, domain.StepChooseDate, h.session(t).Step)
	assert.Equal(t, int64(2), h.session(t).CourtID)
	gw.take()

	h.send(t, tokenDateTomorrow)
	out = gw.take()
	require.Len(t, out, 1)
	assert.Contains(t, out[0].body, "11-03-2026")
	assert.Contains(t, out[0].body, "09:00, 10:00, 11:00")
	assert.Equal(t, domain.StepChooseTime, h.session(t).Step)

	h.send(t, "10:00")
	out = gw.take()
	require.Len(t, out, 1)
	assert.Equal(t, msgAskName, out[0].body)
	assert.Equal(t, domain.StepAskName, h.session(t).Step)

	h.send(t, "Ana Pérez")
	out = gw.take()
	require.Len(t, out, 1)
	assert.Contains(t, out[0].body, "Reserva guardada")

	require.Len(t, h.creator.requests, 1)
	req := h.creator.requests[0]
	wantStart, _ := h.clock.ToInstant("2026-03-11", "10:00")
	assert.Equal(t, int64(2), req.CourtID)
	assert.Equal(t, "2026-03-11", req.Date)
	assert.True(t, wantStart.Equal(req.StartTime))
	assert.Equal(t, time.Hour, req.EndTime.Sub(req.StartTime))
	assert.Equal(t, domain.StatusPending, *req.Status)
	assert.True(t, req.AutoConfirm)
	assert.Equal(t, "c-1", *req.ContactID)
	assert.Equal(t, "Ana Pérez", *req.Title)

	assert.Nil(t, h.session(t))
}

func TestReservationFlow_ConflictKeepsSessionAndReusesName(t *testing.T) {
	gw := &recordingGateway{}
	h := newHarness(t, gw)
	h.creator.errs = []error{create_booking.ErrSlotNotAvailable}

	for _, p := range []string{tokenReserve, "cancha_1", "mañana", "09:00", "Equipo Azul"} {
		h.send(t, p)
	}
	out := gw.take()
	assert.Equal(t, slotJustTaken(1), out[len(out)-1].body)

	sess := h.session(t)
	require.NotNil(t, sess)
	assert.Equal(t, domain.StepChooseTime, sess.Step)
	assert.Equal(t, "2026-03-11", sess.Date)
	assert.Equal(t, "Equipo Azul", sess.ReservationName)

	h.send(t, "11:00")
	out = gw.take()
	assert.Equal(t, rememberedName("Equipo Azul"), out[0].body)

	h.send(t, "MISMO")
	require.Len(t, h.creator.requests, 2)
	assert.Equal(t, "Equipo Azul", *h.creator.requests[1].Title)
	assert.Nil(t, h.session(t))
}

func TestReservationFlow_DomainErrorsRevertToChooseTime(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"cutoff", create_booking.ErrCrossesPriceCutoff, crossesCutoff()},
		{"no rate", create_booking.ErrRateNotConfigured, rateMissing(1)},
		{"internal", create_booking.ErrInternal, msgSaveFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &recordingGateway{}
			h := newHarness(t, gw)
			h.creator.errs = []error{tt.err}

			for _, p := range []string{tokenReserve, "cancha_1", tokenDateTomorrow, "09:00", "Ana"} {
				h.send(t, p)
			}
			out := gw.take()
			assert.Equal(t, tt.want, out[len(out)-1].body)
			assert.Equal(t, domain.StepChooseTime, h.session(t).Step)
		})
	}
}

func TestReservationFlow_Dates(t *testing.T) {
	gw := &recordingGateway{}
	h := newHarness(t, gw)

	for _, p := range []string{tokenReserve, "cancha_3", tokenDateOther} {
		h.send(t, p)
	}
	assert.Equal(t, domain.StepAwaitingCustomDate, h.session(t).Step)
	gw.take()

	h.send(t, "31-02-2026")
	assert.Equal(t, msgInvalidDate, gw.take()[0].body)

	h.send(t, "tomorrow please")
	assert.Equal(t, msgInvalidDate, gw.take()[0].body)

	h.send(t, "01-03-2026")
	assert.Equal(t, msgPastDate, gw.take()[0].body)
	assert.Equal(t, domain.StepAwaitingCustomDate, h.session(t).Step)

	h.send(t, "12-03-2026")
	assert.Equal(t, domain.StepChooseTime, h.session(t).Step)
	assert.Equal(t, "2026-03-12", h.session(t).Date)
	gw.take()

	// Недоступная hora: остаёмся на выборе
	h.send(t, "10:00")
	assert.Equal(t, slotTaken("2026-03-12", []types.TimeString{"18:00"}), gw.take()[0].body)

	h.send(t, "25:00")
	assert.Equal(t, msgInvalidTime, gw.take()[0].body)

	// Дата на шаге выбора времени меняет день
	h.send(t, "hoy")
	assert.Equal(t, "2026-03-10", h.session(t).Date)
	assert.Equal(t, domain.StepChooseTime, h.session(t).Step)
}

func TestGlobalCommandsResetFromAnyStep(t *testing.T) {
	for _, word := range []string{"cancel", "Cancelar", " SALIR "} {
		t.Run(word, func(t *testing.T) {
			gw := &recordingGateway{}
			h := newHarness(t, gw)

			h.send(t, tokenReserve)
			h.send(t, "cancha_1")
			require.NotNil(t, h.session(t))
			gw.take()

			h.send(t, word)
			assert.Nil(t, h.session(t))
			assert.Equal(t, []sent{{kind: "text", body: msgFlowCancelled}}, gw.take())
		})
	}
}

func TestUnknownInputFallsBack(t *testing.T) {
	gw := &recordingGateway{}
	h := newHarness(t, gw)

	h.send(t, "hola")
	assert.Equal(t, msgNotUnderstood, gw.take()[0].body)
	assert.Equal(t, domain.StepIdle, h.session(t).Step)
	assert.Equal(t, "c-1", h.session(t).ContactID)

	h.send(t, "hola")
	assert.Len(t, h.contacts.calls, 1)
}

func TestCancellationFlow_WithList(t *testing.T) {
	gw := &listGateway{}
	h := newHarness(t, gw)
	h.bookings.items = []*domain.Booking{
		upcomingBooking(t, h.clock, "b-1", "2026-03-11", "09:00"),
		upcomingBooking(t, h.clock, "b-2", "2026-03-11", "18:00"),
		upcomingBooking(t, h.clock, "b-3", "2026-03-12", "10:00"),
	}

	h.send(t, tokenCancel)
	out := gw.take()
	require.Len(t, out, 1)
	require.Equal(t, "list", out[0].kind)
	l := out[0].list
	require.Len(t, l.Sections, 2)
	assert.Equal(t, "11-03-2026", l.Sections[0].Title)
	assert.Len(t, l.Sections[0].Rows, 2)
	assert.Equal(t, "CANCEL:b-2", l.Sections[0].Rows[1].ID)
	assert.Equal(t, "11-03 18:00-19:00 C1", l.Sections[0].Rows[1].Title)
	assert.Equal(t, []string{"b-1", "b-2", "b-3"}, h.session(t).CancelOptions)

	h.send(t, "CANCEL:b-2")
	out = gw.take()
	require.Len(t, out, 1)
	assert.Equal(t, confirmButtons("b-2"), out[0].buttons)
	assert.Equal(t, domain.StepCancelConfirm, h.session(t).Step)

	h.send(t, "CONFIRM_CANCEL:b-2")
	require.Len(t, h.canceller.requests, 1)
	assert.Equal(t, "b-2", h.canceller.requests[0].BookingID)
	assert.Equal(t, "wa:"+phone, h.canceller.requests[0].Actor)
	assert.Equal(t, msgCancelled, gw.take()[0].body)
	assert.Nil(t, h.session(t))
}

func TestCancellationFlow_PaginatedButtons(t *testing.T) {
	gw := &recordingGateway{}
	h := newHarness(t, gw)
	for i := 0; i < 5; i++ {
		h.bookings.items = append(h.bookings.items,
			upcomingBooking(t, h.clock, fmt.Sprintf("b-%d", i+1), "2026-03-11", types.TimeString(fmt.Sprintf("%02d:00", 9+i))))
	}

	h.send(t, tokenCancel)
	out := gw.take()
	require.Len(t, out, 3)
	assert.Len(t, out[0].buttons, 3)
	assert.Equal(t, "CANCEL:b-1", out[0].buttons[0].ID)
	assert.Equal(t, []domain.Button{{ID: "CANCEL_PAGE:2", Title: "Ver más"}}, out[1].buttons)
	assert.Equal(t, msgNumericFallback, out[2].body)

	h.send(t, "CANCEL_PAGE:2")
	out = gw.take()
	require.Len(t, out, 1)
	assert.Equal(t, pageTitle(2), out[0].body)
	assert.Len(t, out[0].buttons, 2)

	h.send(t, "CANCEL_PAGE:3")
	assert.Equal(t, msgNoMorePages, gw.take()[0].body)

	h.send(t, "CANCEL_PAGE:2")
	gw.take()

	// "2" - вторая кнопка текущей страницы
	h.send(t, "2")
	assert.Equal(t, "b-5", h.session(t).BookingIDToCancel)
	gw.take()

	h.send(t, "CONFIRM_CANCEL:b-4")
	assert.Equal(t, msgSelectionInvalid, gw.take()[0].body)
	assert.Empty(t, h.canceller.requests)
	assert.Nil(t, h.session(t))
}

func TestCancellationFlow_BackAndErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		resp *cancel_booking.Response
		want string
	}{
		{"too late", cancel_booking.ErrTooLateToCancel, nil, msgTooLate},
		{"denied", cancel_booking.ErrAccessDenied, nil, msgNotAllowed},
		{"not found", cancel_booking.ErrBookingNotFound, nil, msgBookingNotFound},
		{"internal", cancel_booking.ErrInternal, nil, msgCancelFailed},
		{"already", nil, &cancel_booking.Response{AlreadyCancelled: true}, msgAlreadyCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &listGateway{}
			h := newHarness(t, gw)
			h.bookings.items = []*domain.Booking{upcomingBooking(t, h.clock, "b-1", "2026-03-10", "10:00")}
			h.canceller.err = tt.err
			h.canceller.resp = tt.resp

			h.send(t, tokenCancel)
			h.send(t, "1")
			h.send(t, "CONFIRM_CANCEL:b-1")

			out := gw.take()
			assert.Equal(t, tt.want, out[len(out)-1].body)
			assert.Nil(t, h.session(t))
		})
	}

	t.Run("back", func(t *testing.T) {
		gw := &listGateway{}
		h := newHarness(t, gw)
		h.bookings.items = []*domain.Booking{upcomingBooking(t, h.clock, "b-1", "2026-03-10", "10:00")}

		h.send(t, tokenCancel)
		h.send(t, "CANCEL:b-1")
		h.send(t, tokenCancelBack)

		out := gw.take()
		assert.Equal(t, msgOperationAborted, out[len(out)-1].body)
		assert.Empty(t, h.canceller.requests)
		assert.Nil(t, h.session(t))
	})

	t.Run("nothing upcoming", func(t *testing.T) {
		gw := &listGateway{}
		h := newHarness(t, gw)

		h.send(t, tokenCancel)
		assert.Equal(t, msgNoUpcoming, gw.take()[0].body)
		assert.Equal(t, domain.StepIdle, h.session(t).Step)
	})

	t.Run("unknown booking id", func(t *testing.T) {
		gw := &listGateway{}
		h := newHarness(t, gw)
		h.bookings.items = []*domain.Booking{upcomingBooking(t, h.clock, "b-1", "2026-03-10", "10:00")}

		h.send(t, tokenCancel)
		h.send(t, "CANCEL:someone-else")
		out := gw.take()
		assert.Equal(t, msgSelectionInvalid, out[len(out)-1].body)
		assert.Nil(t, h.session(t))
	})
}

func TestDelivery_Degrades(t *testing.T) {
	gw := &listGateway{failList: true}
	h := newHarness(t, gw)
	h.bookings.items = []*domain.Booking{
		upcomingBooking(t, h.clock, "b-1", "2026-03-11", "09:00"),
		upcomingBooking(t, h.clock, "b-2", "2026-03-11", "10:00"),
		upcomingBooking(t, h.clock, "b-3", "2026-03-11", "11:00"),
		upcomingBooking(t, h.clock, "b-4", "2026-03-11", "12:00"),
	}

	h.send(t, tokenCancel)
	out := gw.take()
	require.Len(t, out, 1)
	assert.Equal(t, "buttons", out[0].kind)
	assert.Len(t, out[0].buttons, 3)

	gw.failButtons = true
	h.send(t, "menu")
	out = gw.take()
	require.Len(t, out, 1)
	assert.Equal(t, "text", out[0].kind)
	assert.Equal(t, msgMenu+"\n1. Reservar cancha\n2. Cancelar reserva", out[0].body)
}

func TestExecute_SerializesSamePhone(t *testing.T) {
	gw := &recordingGateway{}
	h := newHarness(t, gw)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.uc.Execute(context.Background(), &Inbound{From: phone, Payload: "hola"})
		}()
	}
	wg.Wait()

	assert.Len(t, gw.take(), 20)
	assert.Equal(t, "c-1", h.session(t).ContactID)
}

func TestExecute_RejectsEmptySender(t *testing.T) {
	h := newHarness(t, &recordingGateway{})
	err := h.uc.Execute(context.Background(), &Inbound{From: "  ", Payload: "menu"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
