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

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelBookingHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/cancel_booking"
	changeBaseRateHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/change_base_rate"
	createBookingHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_available_slots"
	getBaseRateHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_base_rate"
	getBookingHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_booking"
	getCourtBookingsHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_court_bookings"
	getDailyRateHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_daily_rate"
	getRateHistoryHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/get_rate_history"
	listCourtsHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/list_courts"
	whatsappWebhookHandler "github.com/m04kA/SMC-CourtBookingService/internal/api/handlers/whatsapp_webhook"
	"github.com/m04kA/SMC-CourtBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtBookingService/internal/config"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/session"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	contactRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/contact"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	rateRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/rate"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/events"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/whatsapp"
	bookingsService "github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
	pricingService "github.com/m04kA/SMC-CourtBookingService/internal/service/pricing"
	ratesService "github.com/m04kA/SMC-CourtBookingService/internal/service/rates"
	cancelBookingUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/cancel_booking"
	changeBaseRateUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/change_base_rate"
	createBookingUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/get_available_slots"
	handleMessageUC "github.com/m04kA/SMC-CourtBookingService/internal/usecase/handle_message"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/keylock"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/metrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ratelimit"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tracing"
	"github.com/m04kA/SMC-CourtBookingService/pkg/txmanager"
	"github.com/m04kA/SMC-CourtBookingService/pkg/tzclock"
)

// eventPublisher общий интерфейс RabbitMQ и no-op публикатора
type eventPublisher interface {
	Publish(ctx context.Context, key string, payload any) error
	Close() error
}

func main() {
	// Загружаем конфигурацию
	configPath := "config.toml"
	if p := os.Getenv("COURTS_CONFIG"); p != "" {
		configPath = p
	}
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

	log.Info("Starting SMC-CourtBookingService...")
	log.Info("Configuration loaded from %s", configPath)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Трассировка (если включена)
	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Init(ctx, cfg.Metrics.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.Environment)
		if err != nil {
			log.Fatal("Failed to initialize tracing: %v", err)
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Error("Failed to flush traces: %v", err)
			}
		}()
		log.Info("Tracing enabled, exporting to %s", cfg.Tracing.Endpoint)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Часы клуба
	clock, err := tzclock.New(cfg.Business.Timezone)
	if err != nil {
		log.Fatal("Failed to load timezone %s: %v", cfg.Business.Timezone, err)
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
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Обёртка пишет метрики запросов только при включённых метриках
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Репозитории
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	courtRepository := courtRepo.NewRepository(wrappedDB)
	rateRepository := rateRepo.NewRepository(wrappedDB)
	contactRepository := contactRepo.NewRepository(wrappedDB)

	// Публикатор доменных событий
	var publisher eventPublisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		amqpPublisher, err := events.NewPublisher(cfg.Events.URL, cfg.Events.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to message broker: %v", err)
		}
		publisher = amqpPublisher
		log.Info("Domain events published to exchange %s", cfg.Events.Exchange)
	}
	defer publisher.Close()

	// Сервисы
	courtLocks := keylock.New[int64]()
	pricing := pricingService.NewResolver(rateRepository, courtRepository, clock, log)
	bookingSvc := bookingsService.NewService(bookingRepository, courtRepository, txMgr, log)
	rateSvc := ratesService.NewService(rateRepository, courtRepository, txMgr, log)

	// Use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		courtRepository,
		pricing,
		txMgr,
		courtLocks,
		publisher,
		clock,
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		bookingRepository,
		courtRepository,
		clock,
		cfg.Business.Hours(),
		log,
	)

	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		txMgr,
		publisher,
		clock,
		cancelBookingUC.Policy{
			GraceWindow:      time.Duration(cfg.Cancellation.GraceMinutes) * time.Minute,
			AllowInsideGrace: cfg.Cancellation.AllowInsideGrace,
			Idempotent:       cfg.Cancellation.Idempotent,
		},
		log,
	)

	changeBaseRateUseCase := changeBaseRateUC.NewUseCase(
		rateRepository,
		courtRepository,
		txMgr,
		courtLocks,
		publisher,
		clock,
		log,
	)

	// Handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	getCourtBookings := getCourtBookingsHandler.NewHandler(bookingSvc, log)
	listCourts := listCourtsHandler.NewHandler(bookingSvc, log)
	changeBaseRate := changeBaseRateHandler.NewHandler(changeBaseRateUseCase, log)
	getBaseRate := getBaseRateHandler.NewHandler(rateSvc, clock, log)
	getRateHistory := getRateHistoryHandler.NewHandler(rateSvc, log)
	getDailyRate := getDailyRateHandler.NewHandler(rateSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Корты и слоты ---
	api.HandleFunc("/courts", listCourts.Handle).Methods(http.MethodGet)
	api.HandleFunc("/courts/{courtId:[0-9]+}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/courts/{courtId:[0-9]+}/bookings", getCourtBookings.Handle).Methods(http.MethodGet)

	// --- Бронирования ---
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// --- Тарифы ---
	api.HandleFunc("/courts/{courtId:[0-9]+}/base-rate", changeBaseRate.Handle).Methods(http.MethodPost)
	api.HandleFunc("/courts/{courtId:[0-9]+}/base-rate", getBaseRate.Handle).Methods(http.MethodGet)
	api.HandleFunc("/courts/{courtId:[0-9]+}/base-rate/history", getRateHistory.Handle).Methods(http.MethodGet)
	api.HandleFunc("/courts/{courtId:[0-9]+}/daily-rates/{date}", getDailyRate.Handle).Methods(http.MethodGet)

	// --- WhatsApp ---
	if cfg.WhatsApp.Enabled {
		webhook, cleanup, err := buildWebhook(ctx, cfg, metricsCollector, clock, contactRepository, bookingRepository,
			getAvailableSlotsUseCase, createBookingUseCase, cancelBookingUseCase, log)
		if err != nil {
			log.Fatal("Failed to initialize WhatsApp channel: %v", err)
		}
		defer cleanup()

		r.HandleFunc("/webhook/whatsapp", webhook.Verify).Methods(http.MethodGet)
		r.HandleFunc("/webhook/whatsapp", webhook.Handle).Methods(http.MethodPost)
		log.Info("WhatsApp webhook enabled (lists=%t, redis=%t)", cfg.WhatsApp.ListsEnabled, cfg.Redis.Enabled)
	}

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

	// Останавливаем сбор метрик connection pool и фоновые задачи
	close(stopMetricsCh)
	stop()

	log.Info("Server stopped gracefully")
}

// buildWebhook собирает диалоговый канал: хранилище сессий, шлюз, движок и обработчик вебхука
func buildWebhook(
	ctx context.Context,
	cfg *config.Config,
	metricsCollector *metrics.Metrics,
	clock *tzclock.Clock,
	contacts *contactRepo.Repository,
	bookings *bookingRepo.Repository,
	slots *getAvailableSlotsUC.UseCase,
	creator *createBookingUC.UseCase,
	canceller *cancelBookingUC.UseCase,
	log *logger.Logger,
) (*whatsappWebhookHandler.Handler, func(), error) {
	cleanup := func() {}

	// Хранилище сессий: Redis или память процесса
	var sessions handleMessageUC.SessionStore
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, cleanup, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		cleanup = func() { _ = client.Close() }
		sessions = session.NewRedisStore(client, cfg.Session.TTL())
	} else {
		memory := session.NewMemoryStore(cfg.Session.TTL())
		go memory.RunJanitor(ctx, time.Duration(cfg.Session.JanitorInterval)*time.Second)
		sessions = memory
	}

	// Метрики передаются только если включены, иначе интерфейс остаётся nil
	var sendRecorder whatsapp.SendRecorder
	var webhookMetrics whatsappWebhookHandler.Metrics
	if metricsCollector != nil {
		sendRecorder = metricsCollector
		webhookMetrics = metricsCollector
	}

	waCfg := whatsapp.Config{
		APIURL:        cfg.WhatsApp.APIURL,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		Token:         cfg.WhatsApp.Token,
		Timeout:       time.Duration(cfg.WhatsApp.Timeout) * time.Second,
	}
	var gateway handleMessageUC.Gateway = whatsapp.NewClient(waCfg, sendRecorder, log)
	if cfg.WhatsApp.ListsEnabled {
		gateway = whatsapp.NewListClient(waCfg, sendRecorder, log)
	}

	engine := handleMessageUC.NewUseCase(
		sessions,
		contacts,
		bookings,
		slots,
		creator,
		canceller,
		gateway,
		keylock.New[string](),
		clock,
		handleMessageUC.Options{
			Courts:       cfg.Business.Courts,
			Hours:        cfg.Business.Hours(),
			Timezone:     cfg.Business.Timezone,
			GraceMinutes: cfg.Cancellation.GraceMinutes,
		},
		log,
	)

	limiter := ratelimit.New(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, time.Duration(cfg.RateLimit.IdleTTL)*time.Second)

	webhook := whatsappWebhookHandler.NewHandler(
		engine,
		limiter,
		webhookMetrics,
		whatsappWebhookHandler.Config{
			VerifyToken: cfg.WhatsApp.VerifyToken,
			AppSecret:   cfg.WhatsApp.AppSecret,
		},
		log,
	)
	return webhook, cleanup, nil
}
