package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	"github.com/pawdesk/PCS-BookingService/pkg/dbmetrics"
	"github.com/pawdesk/PCS-BookingService/pkg/psqlbuilder"
)

// Колонки таблицы bookings в порядке сканирования
var bookingColumns = []string{
	"id",
	"reference",
	"resource_id",
	"customer_id",
	"pet_id",
	"starts_at",
	"ends_at",
	"price",
	"status",
	"service_name",
	"pet_name",
	"contact_phone",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий журнала бронирований (booking ledger)
// Бронирования никогда не удаляются физически: отмена и no-show
// терминальные статусы, история остаётся для аудита и отчётности
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование вместе с первой записью истории статусов.
// Вызывается только после успешного резервирования ёмкости и только внутри
// той же транзакции (через context), чтобы коммит резерва и записи был атомарен.
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"reference",
			"resource_id",
			"customer_id",
			"pet_id",
			"starts_at",
			"ends_at",
			"price",
			"status",
			"service_name",
			"pet_name",
			"contact_phone",
			"notes",
		).
		Values(
			b.Reference,
			b.ResourceID,
			b.CustomerID,
			b.PetID,
			b.Window.Start,
			b.Window.End,
			b.Price,
			b.Status,
			b.ServiceName,
			b.PetName,
			b.ContactPhone,
			b.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	// Первая запись истории статусов пишется в той же транзакции
	entry := &domain.StatusHistoryEntry{
		BookingID: b.ID,
		Status:    b.Status,
		ActorRole: domain.ActorRoleCustomer,
	}
	if _, err := r.AppendHistory(ctx, entry); err != nil {
		return nil, err
	}

	return b, nil
}

// GetByID получает бронирование по внутреннему ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getByWhere(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByReference получает бронирование по внешнему reference
func (r *Repository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return r.getByWhere(ctx, "GetByReference", squirrel.Eq{"reference": reference})
}

func (r *Repository) getByWhere(ctx context.Context, method string, where squirrel.Eq) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	b, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan booking: %w", ErrScanRow, method, err)
	}

	return b, nil
}

// GetByCustomerID получает список бронирований клиента
// Опционально фильтрует по статусу
func (r *Repository) GetByCustomerID(ctx context.Context, customerID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("starts_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCustomerID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByResourceWithFilter получает бронирования ресурса с фильтрацией
// по окну (пересечение полуоткрытых интервалов), статусу и активности
// Используется read-путями поиска конфликтов и отчётами
func (r *Repository) GetByResourceWithFilter(ctx context.Context, filter domain.ResourceBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"resource_id": filter.ResourceID})

	// Пересечение с окном: starts_at < end AND ends_at > start
	if filter.Window != nil {
		selectBuilder = selectBuilder.
			Where(squirrel.Lt{"starts_at": filter.Window.End}).
			Where(squirrel.Gt{"ends_at": filter.Window.Start})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	selectBuilder = selectBuilder.OrderBy("starts_at ASC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByResourceWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByResourceWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// UpdateStatus обновляет статус бронирования compare-and-swap записью.
// Строка обновляется, только если текущий статус равен from: смена статуса,
// закоммитившаяся конкурентно, даёт ErrStatusConflict, и транзакция
// вызывающего откатывается
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execStatusGuarded(ctx, executor, "UpdateStatus", id, query, args)
}

// Cancel переводит бронирование из статуса from в cancelled с указанием
// причины. Как и UpdateStatus, пишет compare-and-swap по исходному статусу
func (r *Repository) Cancel(ctx context.Context, id int64, from domain.BookingStatus, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execStatusGuarded(ctx, executor, "Cancel", id, query, args)
}

// UpdateWindow обновляет временное окно бронирования (перенос)
// Статус при этом не меняется; попытка переноса фиксируется в истории вызывающим
func (r *Repository) UpdateWindow(ctx context.Context, id int64, window domain.TimeWindow) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("starts_at", window.Start).
		Set("ends_at", window.End).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateWindow - build update query: %v", ErrBuildQuery, err)
	}

	return r.execExpectingRow(ctx, executor, "UpdateWindow", query, args)
}

// AppendHistory добавляет запись в историю статусов (append-only)
func (r *Repository) AppendHistory(ctx context.Context, entry *domain.StatusHistoryEntry) (*domain.StatusHistoryEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_status_history").
		Columns("booking_id", "status", "actor_role", "note").
		Values(entry.BookingID, entry.Status, entry.ActorRole, entry.Note).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: AppendHistory - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: AppendHistory - execute insert: %w", ErrExecQuery, err)
	}

	entry.CreatedAt = createdAt.Time
	return entry, nil
}

// GetHistory получает историю статусов бронирования в порядке добавления
func (r *Repository) GetHistory(ctx context.Context, bookingID int64) ([]*domain.StatusHistoryEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "booking_id", "status", "actor_role", "note", "created_at").
		From("booking_status_history").
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetHistory - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]*domain.StatusHistoryEntry, 0)
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		var createdAt sql.NullTime

		if err := rows.Scan(&entry.ID, &entry.BookingID, &entry.Status, &entry.ActorRole, &entry.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: GetHistory - scan row: %w", ErrScanRow, err)
		}
		entry.CreatedAt = createdAt.Time
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetHistory - rows error: %w", ErrScanRow, err)
	}

	return entries, nil
}

// AnonymizeByCustomer стирает персональные данные во всех бронированиях клиента
// Статусы и история статусов не изменяются: это compliance-операция,
// а не переход жизненного цикла. Возвращает число обновлённых записей
func (r *Repository) AnonymizeByCustomer(ctx context.Context, customerID int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("pet_name", nil).
		Set("contact_phone", nil).
		Set("notes", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"customer_id": customerID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: AnonymizeByCustomer - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: AnonymizeByCustomer - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: AnonymizeByCustomer - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// TopServicesByCustomer проекция "самые бронируемые услуги" клиента,
// группировка по денормализованному названию услуги
func (r *Repository) TopServicesByCustomer(ctx context.Context, customerID int64, limit uint64) ([]*domain.ServiceBookingCount, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("service_name", "COUNT(*) AS bookings").
		From("bookings").
		Where(squirrel.Eq{"customer_id": customerID}).
		GroupBy("service_name").
		OrderBy("bookings DESC, service_name ASC").
		Limit(limit).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: TopServicesByCustomer - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: TopServicesByCustomer - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make([]*domain.ServiceBookingCount, 0)
	for rows.Next() {
		var c domain.ServiceBookingCount
		if err := rows.Scan(&c.ServiceName, &c.Bookings); err != nil {
			return nil, fmt.Errorf("%w: TopServicesByCustomer - scan row: %w", ErrScanRow, err)
		}
		counts = append(counts, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: TopServicesByCustomer - rows error: %w", ErrScanRow, err)
	}

	return counts, nil
}

// execStatusGuarded выполняет compare-and-swap обновление статуса.
// Ноль обновлённых строк означает либо отсутствие бронирования, либо
// конкурентную смену статуса, успевшую между чтением и этой записью
func (r *Repository) execStatusGuarded(ctx context.Context, executor DBExecutor, method string, id int64, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, method, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}

	return ErrStatusConflict
}

func (r *Repository) execExpectingRow(ctx context.Context, executor DBExecutor, method, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, method, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, method, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.ResourceID,
		&b.CustomerID,
		&b.PetID,
		&b.Window.Start,
		&b.Window.End,
		&b.Price,
		&b.Status,
		&b.ServiceName,
		&b.PetName,
		&b.ContactPhone,
		&b.Notes,
		&b.CancellationReason,
		&b.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return &b, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}
