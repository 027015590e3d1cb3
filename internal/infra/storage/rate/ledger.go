package rate

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

// Пространство ключей pg_advisory_xact_lock для истории тарифов
const rateLockNamespace = 1002

const pqUniqueViolation = "23505"

var historyColumns = []string{
	"id",
	"court_id",
	"am_price",
	"pm_price",
	"currency",
	"to_char(price_cutoff, 'HH24:MI')",
	"effective_from",
	"effective_to",
	"set_by_admin_id",
	"created_at",
}

// Repository история базовых тарифов и дневные переопределения
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockCourt сериализует изменения тарифа одного корта до конца транзакции
func (r *Repository) LockCourt(ctx context.Context, courtID int64) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1, $2)", rateLockNamespace, courtID); err != nil {
		return fmt.Errorf("%w: LockCourt - court_id=%d: %w", ErrExecQuery, courtID, err)
	}
	return nil
}

// GetOpen возвращает текущую (открытую) запись корта или nil.
// Внутри транзакции запись блокируется.
func (r *Repository) GetOpen(ctx context.Context, courtID int64) (*domain.RateHistoryRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(historyColumns...).
		From("court_base_rate_history").
		Where(squirrel.Eq{"court_id": courtID, "effective_to": nil})

	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOpen - build select query: %v", ErrBuildQuery, err)
	}

	rec, err := scanRecord(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOpen - scan record: %w", ErrScanRow, err)
	}
	return rec, nil
}

// Close закрывает открытую запись моментом at
func (r *Repository) Close(ctx context.Context, id string, at time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("court_base_rate_history").
		Set("effective_to", at).
		Where(squirrel.Eq{"id": id, "effective_to": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Close - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Close - execute update: %w", ErrExecQuery, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Close - get rows affected: %w", ErrExecQuery, err)
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Insert добавляет запись. Вторая открытая запись отклоняется уникальным индексом.
func (r *Repository) Insert(ctx context.Context, rec *domain.RateHistoryRecord) (*domain.RateHistoryRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("court_base_rate_history").
		Columns("id", "court_id", "am_price", "pm_price", "currency", "price_cutoff",
			"effective_from", "effective_to", "set_by_admin_id").
		Values(rec.ID, rec.CourtID, rec.AmPrice, rec.PmPrice, rec.Currency, rec.PriceCutoff,
			rec.EffectiveFrom, rec.EffectiveTo, rec.SetByAdminID).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Insert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&rec.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, fmt.Errorf("%w: court_id=%d", ErrOpenRecordExists, rec.CourtID)
		}
		return nil, fmt.Errorf("%w: Insert - execute insert: %w", ErrExecQuery, err)
	}
	return rec, nil
}

// GetAt возвращает запись, действовавшую в момент at, или nil
func (r *Repository) GetAt(ctx context.Context, courtID int64, at time.Time) (*domain.RateHistoryRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(historyColumns...).
		From("court_base_rate_history").
		Where(squirrel.Eq{"court_id": courtID}).
		Where(squirrel.LtOrEq{"effective_from": at}).
		Where(squirrel.Or{
			squirrel.Eq{"effective_to": nil},
			squirrel.Gt{"effective_to": at},
		}).
		OrderBy("effective_from DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAt - build select query: %v", ErrBuildQuery, err)
	}

	rec, err := scanRecord(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetAt - scan record: %w", ErrScanRow, err)
	}
	return rec, nil
}

// ListHistory возвращает записи корта от новых к старым
func (r *Repository) ListHistory(ctx context.Context, courtID int64, limit int) ([]*domain.RateHistoryRecord, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(historyColumns...).
		From("court_base_rate_history").
		Where(squirrel.Eq{"court_id": courtID}).
		OrderBy("effective_from DESC", "created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListHistory - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	records := make([]*domain.RateHistoryRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListHistory - scan record: %w", ErrScanRow, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListHistory - rows iteration: %w", ErrExecQuery, err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*domain.RateHistoryRecord, error) {
	var (
		rec    domain.RateHistoryRecord
		cutoff sql.NullString
	)
	err := row.Scan(
		&rec.ID,
		&rec.CourtID,
		&rec.AmPrice,
		&rec.PmPrice,
		&rec.Currency,
		&cutoff,
		&rec.EffectiveFrom,
		&rec.EffectiveTo,
		&rec.SetByAdminID,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if cutoff.Valid {
		t := types.TimeString(cutoff.String)
		rec.PriceCutoff = &t
	}
	return &rec, nil
}
