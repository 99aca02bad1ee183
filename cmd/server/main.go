package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mkravchenko/lendit-backend/internal/config"
	"github.com/mkravchenko/lendit-backend/internal/db"
	"github.com/mkravchenko/lendit-backend/internal/goroutine"
	httpHandlers "github.com/mkravchenko/lendit-backend/internal/http/handlers"
	httpRouter "github.com/mkravchenko/lendit-backend/internal/http/router"
	"github.com/mkravchenko/lendit-backend/internal/logger"
	"github.com/mkravchenko/lendit-backend/internal/repository"
	"github.com/mkravchenko/lendit-backend/internal/service"
	"github.com/mkravchenko/lendit-backend/internal/storage"
	"github.com/mkravchenko/lendit-backend/internal/ws"
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
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
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

	photoStorage, err := storage.NewPhotoStorage(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	itemRepo := repository.NewItemRepository(dbConn)
	requestRepo := repository.NewRequestRepository(dbConn)
	returnRepo := repository.NewReturnRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	conversationRepo := repository.NewConversationRepository(dbConn)
	reviewRepo := repository.NewReviewRepository(dbConn)
	reportRepo := repository.NewReportRepository(dbConn)
	mediaRepo := repository.NewMediaRepository(dbConn)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	itemService := service.NewItemService(itemRepo)
	lendingService := service.NewLendingService(requestRepo, returnRepo, itemRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	chatService := service.NewChatService(conversationRepo, notificationRepo)
	reviewService := service.NewReviewService(reviewRepo, requestRepo, notificationRepo)
	reportService := service.NewReportService(reportRepo, userRepo, notificationRepo)
	userService := service.NewUserService(userRepo)

	// Вебсокеты и доставка уведомлений из outbox.
	hub := ws.NewHub()
	goroutine.SafeGoWithContext(ctx, hub.Run)

	dispatcher := service.NewNotificationDispatcher(
		notificationRepo, hub,
		cfg.OutboxPollInterval, cfg.OutboxBatchSize, cfg.OutboxMaxAttempts,
	)
	goroutine.SafeGoWithContext(ctx, dispatcher.Run)

	// HTTP хэндлеры.
	h := httpRouter.Handlers{
		Auth:         httpHandlers.NewAuthHandler(authService),
		User:         httpHandlers.NewUserHandler(userService, reviewService),
		Item:         httpHandlers.NewItemHandler(itemService),
		Request:      httpHandlers.NewRequestHandler(lendingService),
		Return:       httpHandlers.NewReturnHandler(lendingService),
		Notification: httpHandlers.NewNotificationHandler(notificationService),
		Conversation: httpHandlers.NewConversationHandler(chatService),
		Review:       httpHandlers.NewReviewHandler(reviewService),
		Report:       httpHandlers.NewReportHandler(reportService),
		Admin:        httpHandlers.NewAdminHandler(userService, lendingService, reportService),
		Media:        httpHandlers.NewMediaHandler(mediaRepo, photoStorage),
		WS:           httpHandlers.NewWSHandler(hub, tokenManager),
		Health:       httpHandlers.NewHealthHandler(dbConn),
	}

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, h, tokenManager)

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
