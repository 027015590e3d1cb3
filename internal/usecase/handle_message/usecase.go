package handle_message

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ptr"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tracing"
)

var tracer = tracing.Tracer("usecase/handle_message")

// UseCase конечный автомат диалога в мессенджере.
// Каждое входящее сообщение - один шаг: чтение сессии, переход, запись сессии, ответы.
type UseCase struct {
	sessions  SessionStore
	contacts  ContactDirectory
	bookings  BookingReader
	slots     SlotLister
	creator   BookingCreator
	canceller BookingCanceller
	gateway   Gateway
	locker    PhoneLocker
	clock     Clock
	opts      Options
	logger    Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	sessions SessionStore,
	contacts ContactDirectory,
	bookings BookingReader,
	slots SlotLister,
	creator BookingCreator,
	canceller BookingCanceller,
	gateway Gateway,
	locker PhoneLocker,
	clock Clock,
	opts Options,
	logger Logger,
) *UseCase {
	if len(opts.Courts) == 0 {
		opts.Courts = DefaultOptions().Courts
	}
	if len(opts.Courts) > 3 {
		opts.Courts = opts.Courts[:3]
	}
	if opts.Hours.SlotMinutes == 0 {
		opts.Hours = domain.DefaultBusinessHours()
	}
	return &UseCase{
		sessions:  sessions,
		contacts:  contacts,
		bookings:  bookings,
		slots:     slots,
		creator:   creator,
		canceller: canceller,
		gateway:   gateway,
		locker:    locker,
		clock:     clock,
		opts:      opts,
		logger:    logger,
	}
}

// Execute обрабатывает одно входящее сообщение.
// Сообщения одного телефона обрабатываются строго по очереди.
func (uc *UseCase) Execute(ctx context.Context, in *Inbound) error {
	ctx, span := tracer.Start(ctx, "HandleMessage")
	defer span.End()

	err := uc.execute(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (uc *UseCase) execute(ctx context.Context, in *Inbound) error {
	// 1. Валидация входных данных
	phone := domain.NormalizePhone(in.From)
	if phone == "" {
		return fmt.Errorf("%w: sender phone is empty", ErrInvalidInput)
	}
	payload := strings.TrimSpace(in.Payload)
	if payload == "" {
		return nil
	}

	unlock := uc.locker.Lock(phone)
	defer unlock()

	uc.logger.Info("HandleMessage: phone=%s payload=%q", phone, payload)

	// 2. Загружаем сессию
	stored, err := uc.sessions.Get(ctx, phone)
	if err != nil {
		uc.logger.Error("HandleMessage: failed to load session phone=%s: %v", phone, err)
		uc.deliver(ctx, phone, []prompt{text(msgTemporaryFailure)})
		return fmt.Errorf("%w: get: %v", ErrSessionStore, err)
	}
	if stored == nil {
		stored = domain.NewSession(phone)
	}
	sess := stored.Clone()

	// 3. Контакт создаётся при первом сообщении
	if sess.ContactID == "" {
		if err := uc.ensureContact(ctx, sess, in.DisplayName); err != nil {
			uc.deliver(ctx, phone, []prompt{text(msgTemporaryFailure)})
			return err
		}
	}

	// 4. Переход
	from := sess.Step
	out := uc.transition(ctx, sess, payload)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("session.from", string(from)))
	if out.session != nil {
		span.SetAttributes(attribute.String("session.to", string(out.session.Step)))
	}

	// 5. Сохраняем сессию, затем отвечаем
	if out.session == nil {
		if err := uc.sessions.Delete(ctx, phone); err != nil {
			uc.logger.Error("HandleMessage: failed to delete session phone=%s: %v", phone, err)
			return fmt.Errorf("%w: delete: %v", ErrSessionStore, err)
		}
		uc.logger.Info("HandleMessage: phone=%s %s -> (cleared)", phone, from)
	} else {
		if err := uc.sessions.Set(ctx, phone, out.session); err != nil {
			uc.logger.Error("HandleMessage: failed to save session phone=%s: %v", phone, err)
			uc.deliver(ctx, phone, []prompt{text(msgTemporaryFailure)})
			return fmt.Errorf("%w: set: %v", ErrSessionStore, err)
		}
		uc.logger.Info("HandleMessage: phone=%s %s -> %s", phone, from, out.session.Step)
	}

	uc.deliver(ctx, phone, out.prompts)
	return nil
}

func (uc *UseCase) ensureContact(ctx context.Context, sess *domain.Session, displayName string) error {
	var name *string
	if n := strings.TrimSpace(displayName); n != "" {
		name = &n
	}

	contact, err := uc.contacts.FindOrCreateByPhone(ctx, sess.Phone, name, uc.opts.Timezone)
	if err != nil {
		uc.logger.Error("HandleMessage: failed to resolve contact phone=%s: %v", sess.Phone, err)
		return fmt.Errorf("%w: %v", ErrContact, err)
	}

	sess.ContactID = contact.ID
	sess.ContactName = ptr.Deref(contact.DisplayName, sess.ContactName)
	return nil
}

// transition выбирает обработчик по команде и текущему шагу
func (uc *UseCase) transition(ctx context.Context, sess *domain.Session, payload string) outcome {
	lower := strings.ToLower(payload)

	// Глобальные команды работают из любого шага
	switch {
	case slices.Contains(resetWords, lower):
		return reset(text(msgFlowCancelled))
	case isMenuCommand(lower):
		return uc.menu(sess)
	case payload == tokenReserve:
		return uc.startReservation(sess)
	case payload == tokenCancel:
		return uc.listCancellable(ctx, sess)
	}

	switch sess.Step {
	case domain.StepChooseCourt:
		return uc.chooseCourt(sess, payload)
	case domain.StepChooseDate:
		return uc.chooseDate(ctx, sess, payload)
	case domain.StepAwaitingCustomDate:
		return uc.awaitCustomDate(ctx, sess, payload)
	case domain.StepChooseTime:
		return uc.chooseTime(ctx, sess, payload)
	case domain.StepAskName:
		return uc.askNameAndCreate(ctx, sess, payload)
	case domain.StepCancelChoose:
		return uc.chooseCancellation(ctx, sess, payload)
	case domain.StepCancelConfirm:
		return uc.confirmCancellation(ctx, sess, payload)
	}

	return keep(sess, text(msgNotUnderstood))
}

func isMenuCommand(lower string) bool {
	return strings.Contains(lower, "menu") || strings.Contains(lower, "menú") || slices.Contains(menuWords, lower)
}

func (uc *UseCase) menu(sess *domain.Session) outcome {
	next := domain.NewSession(sess.Phone)
	next.ContactID = sess.ContactID
	next.ContactName = sess.ContactName
	next.ReservationName = sess.ReservationName
	return keep(next, buttons(msgMenu, menuButtons()...))
}
