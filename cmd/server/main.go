package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dedicate-place/backend/internal/config"
	"github.com/dedicate-place/backend/internal/db"
	httpHandlers "github.com/dedicate-place/backend/internal/http/handlers"
	httpRouter "github.com/dedicate-place/backend/internal/http/router"
	"github.com/dedicate-place/backend/internal/logger"
	"github.com/dedicate-place/backend/internal/payment"
	"github.com/dedicate-place/backend/internal/repository"
	"github.com/dedicate-place/backend/internal/service"
	"github.com/dedicate-place/backend/internal/storage"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Инициализируем вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	imageStorage, err := storage.NewImageStorage(ctx, storage.Config{
		Region:      cfg.S3Region,
		Bucket:      cfg.S3Bucket,
		AccessKey:   cfg.S3AccessKey,
		SecretKey:   cfg.S3SecretKey,
		Endpoint:    cfg.S3Endpoint,
		Folder:      cfg.S3Folder,
		MaxUploadMB: cfg.MaxUploadSizeMB,
	})
	if err != nil {
		log.Fatalf("main: не удалось подготовить хранилище изображений: %v", err)
	}

	stripeProvider := payment.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	objectRepo := repository.NewObjectRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)
	paymentRepo := repository.NewPaymentRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	userService := service.NewUserService(userRepo)
	objectService := service.NewObjectService(objectRepo)
	defer objectService.Close()
	reportService := service.NewReportService(reportRepo, objectRepo)
	paymentService := service.NewPaymentService(paymentRepo, objectRepo, stripeProvider, cfg.PaymentCurrency, cfg.AppURL)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(userService)
	objectHandler := httpHandlers.NewObjectHandler(objectService, reportService)
	reportHandler := httpHandlers.NewReportHandler(reportService)
	adminHandler := httpHandlers.NewAdminHandler(userService, reportService, objectService)
	paymentHandler := httpHandlers.NewPaymentHandler(paymentService, stripeProvider)
	mediaHandler := httpHandlers.NewMediaHandler(imageStorage)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, profileHandler, objectHandler, reportHandler, adminHandler, paymentHandler, mediaHandler, healthHandler, tokenManager)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
