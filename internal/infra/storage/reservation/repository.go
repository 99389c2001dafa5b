package reservation

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	"github.com/pawdesk/PCS-BookingService/pkg/dbmetrics"
	"github.com/pawdesk/PCS-BookingService/pkg/psqlbuilder"
)

var reservationColumns = []string{
	"id",
	"resource_id",
	"starts_at",
	"ends_at",
	"quantity",
	"booking_ref",
	"status",
	"created_at",
	"updated_at",
}

// Repository хранилище резервов ёмкости (availability index)
// Записи мутируются только сервисом availability внутри атомарного коммита
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория резервов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает активный резерв
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("reservations").
		Columns(
			"resource_id",
			"starts_at",
			"ends_at",
			"quantity",
			"booking_ref",
			"status",
		).
		Values(
			res.ResourceID,
			res.Window.Start,
			res.Window.End,
			res.Quantity,
			res.BookingRef,
			res.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}

// GetByID получает резерв по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// GetActiveByBookingRef получает активный резерв бронирования
// У бронирования в capacity-holding статусе ровно один активный резерв
func (r *Repository) GetActiveByBookingRef(ctx context.Context, bookingRef string) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"booking_ref": bookingRef, "status": domain.ReservationActive}).
		OrderBy("id DESC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByBookingRef - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveByBookingRef - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// GetActiveOverlapping получает активные резервы ресурса, пересекающие окно
// (полуоткрытые интервалы: starts_at < end AND ends_at > start)
//
// Внутри транзакции строки блокируются через FOR UPDATE: конкурирующие
// коммиты по одному ресурсу сериализуются на этих строках
func (r *Repository) GetActiveOverlapping(ctx context.Context, resourceID string, window domain.TimeWindow) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(reservationColumns...).
		From("reservations").
		Where(squirrel.Eq{"resource_id": resourceID, "status": domain.ReservationActive}).
		Where(squirrel.Lt{"starts_at": window.End}).
		Where(squirrel.Gt{"ends_at": window.Start}).
		OrderBy("id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveOverlapping - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveOverlapping - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanReservations(rows)
}

// Release помечает резерв released, освобождая ёмкость
// Идемпотентна: повторный вызов по уже освобождённому резерву ничего не меняет
// Возвращает true, если резерв был активен и освобождён этим вызовом
func (r *Repository) Release(ctx context.Context, id int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("reservations").
		Set("status", domain.ReservationReleased).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": domain.ReservationActive}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: Release - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: Release - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: Release - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected > 0 {
		return true, nil
	}

	// Ничего не обновили: либо резерв уже released (no-op), либо его нет
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}

	return false, nil
}

func scanReservation(row interface{ Scan(dest ...interface{}) error }) (*domain.Reservation, error) {
	var res domain.Reservation
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&res.ID,
		&res.ResourceID,
		&res.Window.Start,
		&res.Window.End,
		&res.Quantity,
		&res.BookingRef,
		&res.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

// scanReservations сканирует результаты запроса в слайс резервов
func (r *Repository) scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}
