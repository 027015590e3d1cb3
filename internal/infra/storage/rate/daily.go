package rate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/psqlbuilder"
)

// GetDailyOverride возвращает переопределение тарифа корта на дату (YYYY-MM-DD) или nil
func (r *Repository) GetDailyOverride(ctx context.Context, courtID int64, date string) (*domain.DailyRateOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"court_id",
		"to_char(date, 'YYYY-MM-DD')",
		"am_price",
		"pm_price",
		"currency",
	).
		From("court_daily_rates").
		Where(squirrel.Eq{"court_id": courtID, "date": date}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetDailyOverride - build select query: %v", ErrBuildQuery, err)
	}

	var o domain.DailyRateOverride
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&o.ID,
		&o.CourtID,
		&o.Date,
		&o.AmPrice,
		&o.PmPrice,
		&o.Currency,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetDailyOverride - scan: %w", ErrScanRow, err)
	}
	return &o, nil
}
