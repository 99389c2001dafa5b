package reschedule_booking

import "time"

// Request модель запроса на перенос бронирования
type Request struct {
	BookingID int64
	UserID    int64  // пользователь, выполняющий перенос
	Role      string // роль пользователя (customer / staff / system)

	Start time.Time  // новое начало окна
	End   *time.Time // новый конец окна; можно опустить для фиксированной длительности
}

// Response модель ответа с перенесённым бронированием
type Response struct {
	ID         int64
	Reference  string
	ResourceID string
	Start      time.Time // начало нового окна (после нормализации)
	End        time.Time // конец нового окна (после нормализации)
	Status     string    // статус не меняется при переносе

	UpdatedAt time.Time
}
