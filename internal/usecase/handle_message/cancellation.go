package handle_message

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/usecase/cancel_booking"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tzclock"
)

// upcoming ближайшие активные бронирования контакта, не больше 10
func (uc *UseCase) upcoming(ctx context.Context, sess *domain.Session) ([]*domain.Booking, error) {
	if sess.ContactID == "" {
		return nil, nil
	}
	return uc.bookings.GetUpcomingByContact(ctx, sess.ContactID, uc.clock.Now(), domain.MaxCancellationItems)
}

func (uc *UseCase) listCancellable(ctx context.Context, sess *domain.Session) outcome {
	items, err := uc.upcoming(ctx, sess)
	if err != nil {
		uc.logger.Error("HandleMessage: failed to list bookings contact=%s: %v", sess.ContactID, err)
		return reset(text(msgCancelFailed))
	}
	if len(items) == 0 {
		return keep(sess, text(msgNoUpcoming))
	}

	sess.Step = domain.StepCancelChoose
	sess.BookingIDToCancel = ""
	sess.CancelOptions = make([]string, len(items))
	for i, b := range items {
		sess.CancelOptions[i] = b.ID
	}

	// Список, если шлюз умеет, иначе страницы по 3 кнопки
	if _, ok := uc.gateway.(ListSender); ok {
		sess.CancelPage = 0
		return keep(sess, list(uc.cancellationList(items)))
	}
	return uc.cancellationPage(sess, items, 1)
}

// cancellationPage показывает страницу из трёх кнопок
func (uc *UseCase) cancellationPage(sess *domain.Session, items []*domain.Booking, page int) outcome {
	from := (page - 1) * domain.CancelPageSize
	if page < 1 || from >= len(items) {
		return keep(sess, text(msgNoMorePages))
	}
	to := min(from+domain.CancelPageSize, len(items))

	btns := make([]domain.Button, 0, to-from)
	for _, b := range items[from:to] {
		btns = append(btns, domain.Button{ID: tokenCancelPrefix + b.ID, Title: uc.shortSlotTitle(b)})
	}

	body := msgChooseToCancel
	if page > 1 {
		body = pageTitle(page)
	}

	sess.CancelPage = page
	prompts := []prompt{buttons(body, btns...)}
	if len(items) > to {
		prompts = append(prompts, buttons(msgMoreOptions, domain.Button{
			ID:    tokenPagePrefix + strconv.Itoa(page+1),
			Title: "Ver más",
		}))
	}
	if page == 1 {
		prompts = append(prompts, text(msgNumericFallback))
	}
	return keep(sess, prompts...)
}

// cancellationList строит список, сгруппированный по дате начала
func (uc *UseCase) cancellationList(items []*domain.Booking) domain.ListMessage {
	var sections []domain.ListSection
	for _, b := range items {
		title := tzclock.FormatDMY(uc.clock.DateOf(b.StartTime))
		row := domain.ListRow{
			ID:          tokenCancelPrefix + b.ID,
			Title:       uc.shortSlotTitle(b),
			Description: "Toca para cancelar",
		}
		if n := len(sections); n > 0 && sections[n-1].Title == title {
			sections[n-1].Rows = append(sections[n-1].Rows, row)
			continue
		}
		sections = append(sections, domain.ListSection{Title: title, Rows: []domain.ListRow{row}})
	}

	return domain.ListMessage{
		Header:     "Cancelar reserva",
		Body:       "Elige una reserva próxima para cancelar:",
		Footer:     cancelFooter(uc.opts.GraceMinutes),
		ButtonText: "Ver reservas",
		Sections:   sections,
	}
}

// shortSlotTitle "DD-MM HH:mm-HH:mm Cn" укладывается в заголовок кнопки
func (uc *UseCase) shortSlotTitle(b *domain.Booking) string {
	date := tzclock.FormatDMY(uc.clock.DateOf(b.StartTime))
	return fmt.Sprintf("%s %s-%s C%d", date[:5], uc.clock.TimeOf(b.StartTime), uc.clock.TimeOf(b.EndTime), b.CourtID)
}

func (uc *UseCase) chooseCancellation(ctx context.Context, sess *domain.Session, payload string) outcome {
	switch {
	case strings.HasPrefix(payload, tokenPagePrefix):
		page, err := strconv.Atoi(strings.TrimPrefix(payload, tokenPagePrefix))
		if err != nil {
			page = 1
		}
		items, err := uc.upcoming(ctx, sess)
		if err != nil {
			uc.logger.Error("HandleMessage: failed to list bookings contact=%s: %v", sess.ContactID, err)
			return reset(text(msgCancelFailed))
		}
		sess.CancelOptions = sess.CancelOptions[:0]
		for _, b := range items {
			sess.CancelOptions = append(sess.CancelOptions, b.ID)
		}
		return uc.cancellationPage(sess, items, page)

	case strings.HasPrefix(payload, tokenCancelPrefix):
		return uc.askConfirm(sess, strings.TrimSpace(strings.TrimPrefix(payload, tokenCancelPrefix)))

	case len(payload) == 1 && payload[0] >= '1' && payload[0] <= '3':
		// Номер кнопки на текущей странице
		page := max(sess.CancelPage, 1)
		idx := (page-1)*domain.CancelPageSize + int(payload[0]-'1')
		if idx < len(sess.CancelOptions) {
			return uc.askConfirm(sess, sess.CancelOptions[idx])
		}
	}
	return keep(sess, text(msgNotUnderstood))
}

func (uc *UseCase) askConfirm(sess *domain.Session, bookingID string) outcome {
	if bookingID == "" || !sess.HasCancelOption(bookingID) {
		return reset(text(msgSelectionInvalid))
	}
	sess.BookingIDToCancel = bookingID
	sess.Step = domain.StepCancelConfirm
	return keep(sess, buttons(msgConfirmCancel, confirmButtons(bookingID)...))
}

func (uc *UseCase) confirmCancellation(ctx context.Context, sess *domain.Session, payload string) outcome {
	if !strings.HasPrefix(payload, tokenConfirmPrefix) {
		return reset(text(msgOperationAborted))
	}

	bookingID := strings.TrimSpace(strings.TrimPrefix(payload, tokenConfirmPrefix))
	if bookingID == "" || bookingID != sess.BookingIDToCancel {
		return reset(text(msgSelectionInvalid))
	}

	resp, err := uc.canceller.Execute(ctx, &cancel_booking.Request{
		BookingID: bookingID,
		Actor:     domain.WhatsAppActor{Phone: sess.Phone}.Tag(),
		Reason:    ptr.Ptr(cancelReason),
	})
	if err != nil {
		return reset(text(uc.cancellationErrorMessage(bookingID, err)))
	}
	if resp.AlreadyCancelled {
		return reset(text(msgAlreadyCancelled))
	}
	return reset(text(msgCancelled))
}

func (uc *UseCase) cancellationErrorMessage(bookingID string, err error) string {
	switch {
	case errors.Is(err, cancel_booking.ErrTooLateToCancel):
		return msgTooLate
	case errors.Is(err, cancel_booking.ErrAccessDenied):
		return msgNotAllowed
	case errors.Is(err, cancel_booking.ErrBookingNotFound):
		return msgBookingNotFound
	case errors.Is(err, cancel_booking.ErrAlreadyCancelled):
		return msgAlreadyCancelled
	default:
		uc.logger.Error("HandleMessage: failed to cancel booking id=%s: %v", bookingID, err)
		return msgCancelFailed
	}
}
