package create_booking

import (
	"time"
)

// Request модель запроса на создание бронирования
type Request struct {
	CustomerID int64      // ID клиента
	PetID      int64      // ID питомца
	ResourceID string     // ID бронируемого ресурса из каталога
	Start      time.Time  // Начало окна
	End        *time.Time // Конец окна; для услуг с фиксированной длительностью можно опустить
	Quantity   int        // Количество единиц ёмкости; 0 означает 1
	Price      *float64   // Цена; если не указана, берётся из каталога

	// Денормализованный снимок для истории
	PetName      *string
	ContactPhone *string
	Notes        *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID         int64     // Внутренний ID бронирования
	Reference  string    // Внешний стабильный идентификатор
	ResourceID string    // ID ресурса
	CustomerID int64     // ID клиента
	PetID      int64     // ID питомца
	Start      time.Time // Начало окна (после нормализации)
	End        time.Time // Конец окна (после нормализации)
	Price      float64   // Цена
	Status     string    // Начальный статус

	// Денормализованные данные
	ServiceName  string
	PetName      *string
	ContactPhone *string
	Notes        *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
