package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/pawdesk/PCS-BookingService/internal/api/handlers/cancel_booking"
	changeStatusHandler "github.com/pawdesk/PCS-BookingService/internal/api/handlers/change_status"
	createBookingHandler "github.com/pawdesk/PCS-BookingService/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/pawdesk/PCS-BookingService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/pawdesk/PCS-BookingService/internal/api/handlers/get_booking"
	getCustomerBookingsHandler "github.com/pawdesk/PCS-BookingService/internal/api/handlers/get_customer_bookings"
	getResourceBookingsHandler "github.com/pawdesk/PCS-BookingService/internal/api/handlers/get_resource_bookings"
	rescheduleBookingHandler "github.com/pawdesk/PCS-BookingService/internal/api/handlers/reschedule_booking"
	"github.com/pawdesk/PCS-BookingService/internal/api/middleware"
	"github.com/pawdesk/PCS-BookingService/internal/config"
	"github.com/pawdesk/PCS-BookingService/internal/events"
	bookingRepo "github.com/pawdesk/PCS-BookingService/internal/infra/storage/booking"
	reservationRepo "github.com/pawdesk/PCS-BookingService/internal/infra/storage/reservation"
	catalogServiceClient "github.com/pawdesk/PCS-BookingService/internal/integrations/catalogservice"
	availabilityService "github.com/pawdesk/PCS-BookingService/internal/service/availability"
	bookingsService "github.com/pawdesk/PCS-BookingService/internal/service/bookings"
	createBookingUC "github.com/pawdesk/PCS-BookingService/internal/usecase/create_booking"
	getAvailabilityUC "github.com/pawdesk/PCS-BookingService/internal/usecase/get_availability"
	rescheduleBookingUC "github.com/pawdesk/PCS-BookingService/internal/usecase/reschedule_booking"
	"github.com/pawdesk/PCS-BookingService/pkg/dbmetrics"
	"github.com/pawdesk/PCS-BookingService/pkg/logger"
	"github.com/pawdesk/PCS-BookingService/pkg/metrics"
	"github.com/pawdesk/PCS-BookingService/pkg/simpletxmanager"
	"github.com/pawdesk/PCS-BookingService/pkg/txmanager"
)

// systemClock реальный источник времени для сервисов
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting PCS-BookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиента каталога
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	log.Info("Catalog client initialized (url=%s, timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout)

	// Инициализируем репозитории и transaction manager (с метриками или без)
	var (
		bookingRepository     *bookingRepo.Repository
		reservationRepository *reservationRepo.Repository
		txMgr                 bookingsService.TransactionManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		reservationRepository = reservationRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем publisher событий
	publisher := events.NewPublisher(
		cfg.Events.RedisAddr,
		cfg.Events.RedisPassword,
		cfg.Events.RedisDB,
		log,
	)
	defer publisher.Close()

	// Инициализируем сервисы
	availabilitySvc := availabilityService.NewService(
		reservationRepository,
		txMgr,
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		availabilitySvc,
		txMgr,
		publisher,
		systemClock{},
		time.Duration(cfg.Policy.CancellationNoticeHours)*time.Hour,
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		availabilitySvc,
		catalogClient,
		publisher,
		txMgr,
		log,
	)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		reservationRepository,
		availabilitySvc,
		catalogClient,
		publisher,
		txMgr,
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		reservationRepository,
		catalogClient,
		log,
	)

	// Запускаем worker входящих событий
	worker := events.NewWorker(
		cfg.Events.RedisAddr,
		cfg.Events.RedisPassword,
		cfg.Events.RedisDB,
		cfg.Events.Concurrency,
		bookingSvc,
		log,
	)
	if err := worker.Start(); err != nil {
		log.Fatal("Failed to start events worker: %v", err)
	}
	log.Info("Events worker started (redis=%s, concurrency=%d)",
		cfg.Events.RedisAddr, cfg.Events.Concurrency)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	changeStatus := changeStatusHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getCustomerBookings := getCustomerBookingsHandler.NewHandler(bookingSvc, log)
	getResourceBookings := getResourceBookingsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступность ресурса по слотам
	api.HandleFunc("/resources/{resourceId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Получение бронирования по reference
	protected.HandleFunc("/bookings/reference/{reference}",
		getBooking.HandleByReference).Methods(http.MethodGet)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// История статусов бронирования
	protected.HandleFunc("/bookings/{bookingId}/history",
		getBooking.HandleHistory).Methods(http.MethodGet)

	// Смена статуса бронирования
	protected.HandleFunc("/bookings/{bookingId}/status",
		changeStatus.Handle).Methods(http.MethodPatch)

	// Отмена бронирования
	protected.HandleFunc("/bookings/{bookingId}/cancel",
		cancelBooking.Handle).Methods(http.MethodPatch)

	// Перенос бронирования на новое окно
	protected.HandleFunc("/bookings/{bookingId}/reschedule",
		rescheduleBooking.Handle).Methods(http.MethodPatch)

	// --- Клиенты ---
	// История бронирований клиента
	protected.HandleFunc("/customers/{customerId}/bookings",
		getCustomerBookings.Handle).Methods(http.MethodGet)

	// Самые бронируемые услуги клиента
	protected.HandleFunc("/customers/{customerId}/stats",
		getCustomerBookings.HandleStats).Methods(http.MethodGet)

	// --- Ресурсы (для сотрудников) ---
	// Список бронирований ресурса
	protected.HandleFunc("/resources/{resourceId}/bookings",
		getResourceBookings.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем worker событий, дожидаясь активных задач
	worker.Shutdown()
	log.Info("Events worker stopped")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
