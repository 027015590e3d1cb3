package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/psqlbuilder"
)

var contactColumns = []string{"id", "wa_phone", "display_name", "timezone", "user_id", "created_at", "updated_at"}

// Repository справочник контактов мессенджера
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// FindOrCreateByPhone находит контакт по телефону или создаёт новый (upsert по wa_phone).
// Переданное имя обновляет сохранённое, nil оставляет прежнее.
func (r *Repository) FindOrCreateByPhone(ctx context.Context, phone string, displayName *string, timezone string) (*domain.Contact, error) {
	phone = domain.NormalizePhone(phone)
	if phone == "" {
		return nil, ErrInvalidPhone
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("contacts").
		Columns("id", "wa_phone", "display_name", "timezone").
		Values(uuid.NewString(), phone, displayName, timezone).
		Suffix("ON CONFLICT (wa_phone) DO UPDATE SET " +
			"display_name = COALESCE(EXCLUDED.display_name, contacts.display_name), " +
			"updated_at = NOW() " +
			"RETURNING id, wa_phone, display_name, timezone, user_id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindOrCreateByPhone - build upsert query: %v", ErrBuildQuery, err)
	}

	c, err := scanContact(executor.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%w: FindOrCreateByPhone - phone=%s: %w", ErrScanRow, phone, err)
	}
	return c, nil
}

// GetByID возвращает контакт по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(contactColumns...).
		From("contacts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	c, err := scanContact(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan contact: %w", ErrScanRow, err)
	}
	return c, nil
}

func scanContact(row *sql.Row) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(&c.ID, &c.WaPhone, &c.DisplayName, &c.Timezone, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
