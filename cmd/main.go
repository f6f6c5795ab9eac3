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
	"github.com/redis/go-redis/v9"

	attemptBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/attempt_booking"
	cancelBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_booking"
	dateBlockedEventHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/date_blocked_event"
	getAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_booking"
	getClientBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_client_bookings"
	getProviderBookingsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_provider_bookings"
	getProviderPolicyHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_provider_policy"
	subscribeAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/subscribe_availability"
	updateBookingStatusHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_booking_status"
	updateProviderPolicyHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_provider_policy"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/events"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/kafka"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	blockedDateRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/blockeddate"
	providerPolicyRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/providerpolicy"
	serviceRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/service"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/subscriptions"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/telegram"
	bookingsService "github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	"github.com/m04kA/SMC-AppointmentService/internal/service/broadcaster"
	policyEngine "github.com/m04kA/SMC-AppointmentService/internal/service/policy"
	"github.com/m04kA/SMC-AppointmentService/internal/service/providerconfig"
	attemptBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/attempt_booking"
	cancelBookingUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/cancel_booking"
	getAvailabilityUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_availability"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s", configPath)

	defaultPolicy, err := cfg.Booking.Policy()
	if err != nil {
		log.Fatal("Invalid booking policy: %v", err)
	}

	// Инициализируем метрики (если включены); nil-коллектор ничего не делает
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

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB, metricsCollector)

	// Инициализируем репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	serviceRepository := serviceRepo.NewRepository(wrappedDB)
	blockedDateRepository := blockedDateRepo.NewRepository(wrappedDB)
	providerPolicyRepository := providerPolicyRepo.NewRepository(wrappedDB)

	// Реестр подписчиков на доступность дат
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Warn("Redis is unavailable (addr=%s), subscriptions will fail until it recovers: %v", cfg.Redis.Addr, err)
	} else {
		log.Info("Successfully connected to redis (addr=%s)", cfg.Redis.Addr)
	}
	subscriberRegistry := subscriptions.NewRegistry(rdb, cfg.Notifications.SubscriptionTTL())

	// Канал уведомлений
	notifier, err := telegram.NewClient(
		cfg.Telegram.Token,
		time.Duration(cfg.Telegram.Timeout)*time.Second,
		log,
	)
	if err != nil {
		log.Fatal("Failed to initialize telegram client: %v", err)
	}

	// Инициализируем сервисы
	policySvc := providerconfig.NewService(providerPolicyRepository, defaultPolicy, log)
	engine := policyEngine.NewEngine(appointmentRepository, blockedDateRepository)
	bookingSvc := bookingsService.NewService(appointmentRepository, txMgr, log)

	availabilityBroadcaster := broadcaster.New(
		appointmentRepository,
		blockedDateRepository,
		policySvc,
		subscriberRegistry,
		notifier,
		broadcaster.Config{
			AdminChatID:  cfg.Notifications.AdminChatID,
			SendInterval: cfg.Notifications.SendInterval(),
		},
		metricsCollector,
		log,
	)

	// Шина событий: публикация в Kafka (если настроена) и рассылка доступности
	var publisher events.Publisher
	var kafkaPublisher *kafka.Publisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		publisher = kafkaPublisher
		log.Info("Kafka publishing enabled (brokers=%v, prefix=%s)", cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
	}
	bus := events.NewBus(log, publisher, availabilityBroadcaster)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		appointmentRepository,
		serviceRepository,
		blockedDateRepository,
		policySvc,
		engine,
		txMgr,
		log,
	)

	attemptBookingUseCase := attemptBookingUC.NewUseCase(
		appointmentRepository,
		serviceRepository,
		policySvc,
		engine,
		txMgr,
		bus,
		metricsCollector,
		log,
	)

	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		appointmentRepository,
		txMgr,
		bus,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	attemptBooking := attemptBookingHandler.NewHandler(attemptBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	confirmBooking := updateBookingStatusHandler.NewHandler(bookingSvc, updateBookingStatusHandler.ActionConfirm, log)
	completeBooking := updateBookingStatusHandler.NewHandler(bookingSvc, updateBookingStatusHandler.ActionComplete, log)
	getClientBookings := getClientBookingsHandler.NewHandler(bookingSvc, log)
	getProviderBookings := getProviderBookingsHandler.NewHandler(bookingSvc, log)
	subscribeAvailability := subscribeAvailabilityHandler.NewHandler(subscriberRegistry, log)
	dateBlockedEvent := dateBlockedEventHandler.NewHandler(blockedDateRepository, bus, log)
	getProviderPolicy := getProviderPolicyHandler.NewHandler(policySvc, log)
	updateProviderPolicy := updateProviderPolicyHandler.NewHandler(policySvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступность исполнителя на дату
	api.HandleFunc("/providers/{providerId}/availability", getAvailability.Handle).Methods(http.MethodGet)

	// Действующая политика исполнителя
	api.HandleFunc("/providers/{providerId}/policy", getProviderPolicy.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/bookings", attemptBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{appointmentId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{appointmentId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/clients/{clientId}/bookings", getClientBookings.Handle).Methods(http.MethodGet)

	// --- Подписка на освободившиеся слоты ---
	protected.HandleFunc("/providers/{providerId}/availability/subscriptions",
		subscribeAvailability.Subscribe).Methods(http.MethodPost)
	protected.HandleFunc("/providers/{providerId}/availability/subscriptions",
		subscribeAvailability.Unsubscribe).Methods(http.MethodDelete)

	// ============================================================
	// ADMIN ROUTES (X-User-Role: admin)
	// ============================================================

	admin := protected.PathPrefix("").Subrouter()
	admin.Use(middleware.AdminOnly)

	admin.HandleFunc("/bookings/{appointmentId}/confirm", confirmBooking.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/bookings/{appointmentId}/complete", completeBooking.Handle).Methods(http.MethodPatch)
	admin.HandleFunc("/providers/{providerId}/bookings", getProviderBookings.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/providers/{providerId}/policy", updateProviderPolicy.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/providers/{providerId}/blocked-dates/{date}/events",
		dateBlockedEvent.Handle).Methods(http.MethodPost)

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся рассылок по уже зафиксированным записям
	bus.Close()
	log.Info("Event bus drained")

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Error("Failed to close kafka writer: %v", err)
		}
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
