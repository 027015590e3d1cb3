package handle_message

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tzclock"
)

func (uc *UseCase) startReservation(sess *domain.Session) outcome {
	sess.Step = domain.StepChooseCourt
	sess.CourtID = 0
	sess.Date = ""
	sess.Time = ""
	return keep(sess, buttons(msgChooseCourt, courtButtons(uc.opts.Courts)...))
}

func (uc *UseCase) chooseCourt(sess *domain.Session, payload string) outcome {
	raw := strings.TrimPrefix(strings.ToLower(payload), tokenCourtPrefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || !slices.Contains(uc.opts.Courts, id) {
		return keep(sess, buttons(msgInvalidCourt, courtButtons(uc.opts.Courts)...))
	}

	sess.CourtID = id
	sess.Step = domain.StepChooseDate
	return keep(sess, buttons(courtSelected(id), dateButtons()...))
}

func (uc *UseCase) chooseDate(ctx context.Context, sess *domain.Session, payload string) outcome {
	if payload == tokenDateOther {
		sess.Step = domain.StepAwaitingCustomDate
		return keep(sess, text(msgAskCustomDate))
	}

	date, ok, err := uc.parseDate(payload)
	if !ok {
		return keep(sess, buttons(msgChooseDate, dateButtons()...))
	}
	if err != nil {
		return keep(sess, text(dateErrorMessage(err)))
	}
	return uc.showAvailability(ctx, sess, date)
}

func (uc *UseCase) awaitCustomDate(ctx context.Context, sess *domain.Session, payload string) outcome {
	date, ok, err := uc.parseDate(payload)
	if !ok {
		return keep(sess, text(msgInvalidDate))
	}
	if err != nil {
		return keep(sess, text(dateErrorMessage(err)))
	}
	return uc.showAvailability(ctx, sess, date)
}

// showAvailability переводит сессию в choose_time для даты и показывает свободные часы
func (uc *UseCase) showAvailability(ctx context.Context, sess *domain.Session, date string) outcome {
	slots, err := uc.availableSlots(ctx, sess.CourtID, date)
	if err != nil {
		return keep(sess, text(slotsErrorMessage(err)))
	}

	sess.Date = date
	sess.Time = ""
	sess.Step = domain.StepChooseTime
	if len(slots) == 0 {
		return keep(sess, text(noSlots(date)))
	}
	return keep(sess, text(slotsAvailable(date, slots)))
}

func (uc *UseCase) chooseTime(ctx context.Context, sess *domain.Session, payload string) outcome {
	// Дата вместо времени - смена дня
	if date, ok, err := uc.parseDate(payload); ok {
		if err != nil {
			return keep(sess, text(dateErrorMessage(err)))
		}
		return uc.showAvailability(ctx, sess, date)
	}

	at, err := types.NewTimeStringFromString(payload)
	if err != nil {
		return keep(sess, text(msgInvalidTime))
	}

	slots, err := uc.availableSlots(ctx, sess.CourtID, sess.Date)
	if err != nil {
		return keep(sess, text(slotsErrorMessage(err)))
	}
	if !slices.Contains(slots, at) {
		if len(slots) == 0 {
			return keep(sess, text(noSlots(sess.Date)))
		}
		return keep(sess, text(slotTaken(sess.Date, slots)))
	}

	sess.Time = at
	sess.Step = domain.StepAskName
	if sess.ReservationName != "" {
		return keep(sess, text(rememberedName(sess.ReservationName)))
	}
	return keep(sess, text(msgAskName))
}

func (uc *UseCase) askNameAndCreate(ctx context.Context, sess *domain.Session, payload string) outcome {
	// 1. Имя: "mismo" или пустое - сохранённое
	name := strings.TrimSpace(payload)
	if name == "" || strings.EqualFold(name, sameNameKeyword) {
		name = sess.ReservationName
	}
	if name == "" {
		return keep(sess, text(msgNeedName))
	}
	if utf8.RuneCountInString(name) > domain.MaxTitleLength {
		name = string([]rune(name)[:domain.MaxTitleLength])
	}
	sess.ReservationName = name

	// 2. Интервал выбранного слота
	start, err := uc.clock.ToInstant(sess.Date, sess.Time)
	if err != nil {
		uc.logger.Error("HandleMessage: bad session slot %s %s: %v", sess.Date, sess.Time, err)
		sess.Step = domain.StepChooseTime
		return keep(sess, text(msgInvalidTime))
	}
	end := start.Add(time.Duration(uc.opts.Hours.SlotMinutes) * time.Minute)

	// 3. Создание; бронирование из чата подтверждается сразу
	req := &create_booking.Request{
		CourtID:     sess.CourtID,
		StartTime:   start,
		EndTime:     end,
		Date:        sess.Date,
		Status:      ptr.Ptr(domain.StatusPending),
		Title:       ptr.Ptr(name),
		AutoConfirm: true,
	}
	if sess.ContactID != "" {
		req.ContactID = ptr.Ptr(sess.ContactID)
	}

	if _, err := uc.creator.Execute(ctx, req); err != nil {
		// Сессия остаётся на выборе времени, чтобы можно было повторить
		sess.Step = domain.StepChooseTime
		sess.Time = ""
		return keep(sess, text(uc.creationErrorMessage(sess, err)))
	}

	return reset(text(bookingSaved(name, sess.CourtID, sess.Date, sess.Time)))
}

func (uc *UseCase) creationErrorMessage(sess *domain.Session, err error) string {
	switch {
	case errors.Is(err, create_booking.ErrSlotNotAvailable):
		return slotJustTaken(sess.CourtID)
	case errors.Is(err, create_booking.ErrCrossesPriceCutoff):
		return crossesCutoff()
	case errors.Is(err, create_booking.ErrRateNotConfigured):
		return rateMissing(sess.CourtID)
	case errors.Is(err, create_booking.ErrBookingInPast):
		return msgPastDate
	case errors.Is(err, domain.ErrValidation):
		return msgInvalidTime
	default:
		uc.logger.Error("HandleMessage: failed to create booking court=%d date=%s: %v", sess.CourtID, sess.Date, err)
		return msgSaveFailed
	}
}

// parseDate распознаёт hoy/mañana, кнопки дат и DD-MM-AAAA.
// ok=false - это не похоже на дату; err - дата распознана, но не подходит.
func (uc *UseCase) parseDate(payload string) (date string, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(payload)) {
	case tokenDateToday, "hoy":
		return uc.clock.Today(), true, nil
	case tokenDateTomorrow, "mañana", "manana":
		return uc.clock.Tomorrow(), true, nil
	}

	if !looksLikeDMY(payload) {
		return "", false, nil
	}
	date, err = tzclock.ParseDMY(payload)
	if err != nil {
		return "", true, err
	}
	if uc.clock.IsPast(date) {
		return "", true, get_available_slots.ErrDateInPast
	}
	return date, true, nil
}

// looksLikeDMY проверяет форму NN-NN-NNNN без проверки календаря
func looksLikeDMY(s string) bool {
	if len(s) != 10 || s[2] != '-' || s[5] != '-' {
		return false
	}
	for i, c := range s {
		if i == 2 || i == 5 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (uc *UseCase) availableSlots(ctx context.Context, courtID int64, date string) ([]types.TimeString, error) {
	resp, err := uc.slots.Execute(ctx, &get_available_slots.Request{CourtID: courtID, Date: date})
	if err != nil {
		return nil, err
	}
	return resp.Slots, nil
}

func dateErrorMessage(err error) string {
	if errors.Is(err, get_available_slots.ErrDateInPast) {
		return msgPastDate
	}
	return msgInvalidDate
}

func slotsErrorMessage(err error) string {
	switch {
	case errors.Is(err, get_available_slots.ErrDateInPast):
		return msgPastDate
	case errors.Is(err, domain.ErrValidation):
		return msgInvalidDate
	case errors.Is(err, domain.ErrNotFound):
		return msgInvalidCourt
	default:
		return msgTemporaryFailure
	}
}
