package get_availability

import "time"

// Request модель запроса доступности ресурса
type Request struct {
	ResourceID string
	From       time.Time
	To         time.Time
}

// Slot один слот доступности
type Slot struct {
	Start         time.Time // начало слота
	End           time.Time // конец слота
	FreeCapacity  int       // свободная ёмкость в слоте
	TotalCapacity int       // полная ёмкость ресурса
}

// Response модель ответа с доступностью ресурса
type Response struct {
	ResourceID string
	From       time.Time
	To         time.Time
	Slots      []Slot
}
