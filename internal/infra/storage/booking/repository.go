package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Пространство ключей pg_advisory_xact_lock для бронирований (второй ключ - court_id)
const courtLockNamespace = 1001

// Коды ошибок PostgreSQL, которыми БД сообщает о проигранной гонке
const (
	pqExclusionViolation = "23P01"
	pqUniqueViolation    = "23505"
)

var bookingColumns = []string{
	"b.id",
	"b.court_id",
	"b.user_id",
	"b.contact_id",
	"b.start_time",
	"b.end_time",
	"to_char(b.booking_date, 'YYYY-MM-DD')",
	"b.status",
	"b.title",
	"b.price_applied",
	"b.currency_applied",
	"b.slot_applied",
	"b.pricing_source",
	"to_char(b.cutoff_applied, 'HH24:MI')",
	"b.cancellation_reason",
	"b.cancelled_by",
	"b.cancelled_at",
	"b.created_at",
	"b.updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockCourt берёт транзакционную advisory-блокировку корта.
// Блокировка держится до конца транзакции и сериализует проверку пересечений со вставкой.
func (r *Repository) LockCourt(ctx context.Context, courtID int64) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1, $2)", courtLockNamespace, courtID); err != nil {
		return fmt.Errorf("%w: LockCourt - court_id=%d: %w", ErrExecQuery, courtID, err)
	}
	return nil
}

// Create сохраняет бронирование. ID генерируется вызывающей стороной.
// Нарушение exclusion constraint превращается в ErrOverlappingBooking.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"id",
			"court_id",
			"user_id",
			"contact_id",
			"start_time",
			"end_time",
			"booking_date",
			"status",
			"title",
			"price_applied",
			"currency_applied",
			"slot_applied",
			"pricing_source",
			"cutoff_applied",
		).
		Values(
			booking.ID,
			booking.CourtID,
			booking.UserID,
			booking.ContactID,
			booking.StartTime,
			booking.EndTime,
			booking.BookingDate,
			booking.Status,
			booking.Title,
			booking.Price.Amount,
			booking.Price.Currency,
			booking.Price.Slot,
			booking.Price.Source,
			booking.Price.Cutoff,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if isOverlapViolation(err) {
			return nil, fmt.Errorf("%w: court_id=%d", ErrOverlappingBooking, booking.CourtID)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(bookingColumns...).
		From("bookings b").
		Where(squirrel.Eq{"b.id": id})

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// FindActiveOverlap ищет активное бронирование корта, пересекающее [start, end).
// Пересечение полуоткрытое: бронирование, заканчивающееся ровно в start, не мешает.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) FindActiveOverlap(ctx context.Context, courtID int64, start, end time.Time) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(bookingColumns...).
		From("bookings b").
		Where(squirrel.Eq{"b.court_id": courtID}).
		Where(squirrel.NotEq{"b.status": domain.StatusCancelled}).
		Where(squirrel.Lt{"b.start_time": end}).
		Where(squirrel.Gt{"b.end_time": start}).
		OrderBy("b.start_time").
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindActiveOverlap - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindActiveOverlap - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// GetByCourtWithFilter получает бронирования корта с фильтрацией по периоду и статусу
//
// Примеры использования:
//
// 1. Все активные бронирования корта:
//    filter := domain.CourtBookingsFilter{CourtID: 1}
//
// 2. Бронирования, пересекающие сутки:
//    filter := domain.CourtBookingsFilter{CourtID: 1, From: &dayStart, To: &dayEnd}
//
// 3. Все бронирования включая отменённые:
//    filter := domain.CourtBookingsFilter{CourtID: 1, IncludeInactive: true}
func (r *Repository) GetByCourtWithFilter(ctx context.Context, filter domain.CourtBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(bookingColumns...).
		From("bookings b").
		Where(squirrel.Eq{"b.court_id": filter.CourtID}).
		OrderBy("b.start_time ASC")

	if filter.From != nil {
		builder = builder.Where(squirrel.Gt{"b.end_time": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"b.start_time": *filter.To})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"b.status": *filter.Status})
	} else if !filter.IncludeInactive {
		builder = builder.Where(squirrel.Eq{"b.status": domain.ActiveStatuses})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCourtWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCourtWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetUpcomingByContact возвращает ближайшие активные бронирования контакта, по возрастанию начала
func (r *Repository) GetUpcomingByContact(ctx context.Context, contactID string, from time.Time, limit int) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings b").
		Where(squirrel.Eq{"b.contact_id": contactID}).
		Where(squirrel.NotEq{"b.status": domain.StatusCancelled}).
		Where(squirrel.Gt{"b.start_time": from}).
		OrderBy("b.start_time ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetUpcomingByContact - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetUpcomingByContact - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetContactPhone возвращает телефон контакта, связанного с бронированием (nil, если контакта нет)
func (r *Repository) GetContactPhone(ctx context.Context, bookingID string) (*string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("c.wa_phone").
		From("bookings b").
		LeftJoin("contacts c ON c.id = b.contact_id").
		Where(squirrel.Eq{"b.id": bookingID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetContactPhone - build select query: %v", ErrBuildQuery, err)
	}

	var phone sql.NullString
	err = executor.QueryRowContext(ctx, query, args...).Scan(&phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetContactPhone - scan: %w", ErrScanRow, err)
	}
	if !phone.Valid {
		return nil, nil
	}
	return &phone.String, nil
}

// UpdateStatus меняет статус активного бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// Cancel переводит бронирование в cancelled и записывает метаданные отмены.
// Если бронирование уже отменено, возвращает ErrAlreadyCancelled и ничего не меняет.
func (r *Repository) Cancel(ctx context.Context, id string, reason *string, cancelledBy string, at time.Time) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_by", cancelledBy).
		Set("cancelled_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: Cancel - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		// Различаем "нет такого" и "уже отменено"
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyCancelled
	}

	return r.GetByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b      domain.Booking
		cutoff sql.NullString
	)

	err := row.Scan(
		&b.ID,
		&b.CourtID,
		&b.UserID,
		&b.ContactID,
		&b.StartTime,
		&b.EndTime,
		&b.BookingDate,
		&b.Status,
		&b.Title,
		&b.Price.Amount,
		&b.Price.Currency,
		&b.Price.Slot,
		&b.Price.Source,
		&cutoff,
		&b.CancellationReason,
		&b.CancelledBy,
		&b.CancelledAt,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cutoff.Valid {
		c := types.TimeString(cutoff.String)
		b.Price.Cutoff = &c
	}

	return &b, nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows iteration: %w", ErrExecQuery, err)
	}

	return bookings, nil
}

func isOverlapViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pqExclusionViolation || pqErr.Code == pqUniqueViolation
}
