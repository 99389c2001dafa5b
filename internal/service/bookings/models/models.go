package models

import (
	"time"

	"github.com/pawdesk/PCS-BookingService/internal/domain"
	"github.com/pawdesk/PCS-BookingService/pkg/ptr"
)

// Actor пользователь, выполняющий операцию
type Actor struct {
	UserID int64
	Role   string
}

// IsStaff возвращает true для сотрудников и системных операций
func (a Actor) IsStaff() bool {
	return a.Role == domain.ActorRoleStaff || a.Role == domain.ActorRoleSystem
}

// Owns возвращает true, если actor владелец бронирования
func (a Actor) Owns(b *domain.Booking) bool {
	return b.CustomerID == a.UserID
}

// Request модели

// ChangeStatusRequest запрос на смену статуса бронирования
type ChangeStatusRequest struct {
	Actor  Actor
	Status string
	Reason string // обязательна при отмене
	Note   *string
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	Actor              Actor
	CancellationReason string
}

// GetCustomerBookingsRequest запрос на получение бронирований клиента
type GetCustomerBookingsRequest struct {
	Actor      Actor
	CustomerID int64
	Status     *string
}

// GetResourceBookingsRequest запрос на получение бронирований ресурса
type GetResourceBookingsRequest struct {
	Actor           Actor
	ResourceID      string
	From            *time.Time
	To              *time.Time
	Status          *string
	IncludeInactive bool
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetResourceBookingsRequest) ToDomainFilter() (domain.ResourceBookingsFilter, error) {
	filter := domain.ResourceBookingsFilter{
		ResourceID:      r.ResourceID,
		IncludeInactive: r.IncludeInactive,
	}

	if r.From != nil && r.To != nil {
		window, err := domain.NewTimeWindow(*r.From, *r.To)
		if err != nil {
			return filter, err
		}
		filter.Window = &window
	}

	if r.Status != nil {
		status, err := domain.ParseBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// PaymentOutcomeRequest исход платежа от платёжного сервиса
type PaymentOutcomeRequest struct {
	BookingRef string
	Processed  bool
	Detail     string
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID         int64   `json:"id"`
	Reference  string  `json:"bookingId"`
	ResourceID string  `json:"resourceId"`
	CustomerID int64   `json:"customerId"`
	PetID      int64   `json:"petId"`
	StartsAt   string  `json:"startsAt"` // ISO 8601
	EndsAt     string  `json:"endsAt"`   // ISO 8601
	Price      float64 `json:"price"`
	Status     string  `json:"status"`

	// Денормализованные данные
	ServiceName  string  `json:"serviceName"`
	PetName      *string `json:"petName,omitempty"`
	ContactPhone *string `json:"contactPhone,omitempty"`
	Notes        *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// CancelBookingResponse ответ на отмену бронирования
type CancelBookingResponse struct {
	Booking BookingResponse `json:"booking"`

	// LateCancellation true, если отмена произошла позже допустимого срока
	LateCancellation   bool   `json:"lateCancellation"`
	CancellationCutoff string `json:"cancellationCutoff"` // ISO 8601
}

// HistoryEntryResponse одна запись истории статусов
type HistoryEntryResponse struct {
	Status    string    `json:"status"`
	ActorRole string    `json:"actorRole"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryResponse история статусов бронирования
type HistoryResponse struct {
	BookingID int64                  `json:"bookingId"`
	Entries   []HistoryEntryResponse `json:"entries"`
}

// ServiceStat статистика по одной услуге
type ServiceStat struct {
	ServiceName string `json:"serviceName"`
	Bookings    int    `json:"bookings"`
}

// CustomerStatsResponse самые бронируемые услуги клиента
type CustomerStatsResponse struct {
	CustomerID  int64         `json:"customerId"`
	TopServices []ServiceStat `json:"topServices"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		Reference:          b.Reference,
		ResourceID:         b.ResourceID,
		CustomerID:         b.CustomerID,
		PetID:              b.PetID,
		StartsAt:           b.Window.Start.Format(time.RFC3339),
		EndsAt:             b.Window.End.Format(time.RFC3339),
		Price:              b.Price,
		Status:             string(b.Status),
		ServiceName:        b.ServiceName,
		PetName:            b.PetName,
		ContactPhone:       b.ContactPhone,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.CancelledAt != nil {
		resp.CancelledAt = ptr.Ptr(b.CancelledAt.Format(time.RFC3339))
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// FromDomainHistory конвертирует историю статусов в DTO
func FromDomainHistory(bookingID int64, entries []*domain.StatusHistoryEntry) *HistoryResponse {
	resp := &HistoryResponse{
		BookingID: bookingID,
		Entries:   make([]HistoryEntryResponse, 0, len(entries)),
	}

	for _, e := range entries {
		resp.Entries = append(resp.Entries, HistoryEntryResponse{
			Status:    string(e.Status),
			ActorRole: e.ActorRole,
			Note:      e.Note,
			CreatedAt: e.CreatedAt,
		})
	}

	return resp
}

// FromDomainServiceCounts конвертирует проекцию услуг в DTO
func FromDomainServiceCounts(customerID int64, counts []*domain.ServiceBookingCount) *CustomerStatsResponse {
	resp := &CustomerStatsResponse{
		CustomerID:  customerID,
		TopServices: make([]ServiceStat, 0, len(counts)),
	}

	for _, c := range counts {
		resp.TopServices = append(resp.TopServices, ServiceStat{
			ServiceName: c.ServiceName,
			Bookings:    c.Bookings,
		})
	}

	return resp
}
