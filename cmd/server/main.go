package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yzairi/CDA/internal/adapter/llm"
	natsAdapter "github.com/Yzairi/CDA/internal/adapter/messaging/nats"
	"github.com/Yzairi/CDA/internal/adapter/repository"
	"github.com/Yzairi/CDA/internal/adapter/storage/s3"
	"github.com/Yzairi/CDA/internal/auth"
	"github.com/Yzairi/CDA/internal/config"
	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/handler"
	"github.com/Yzairi/CDA/internal/mailer"
	"github.com/Yzairi/CDA/internal/platform/clock"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/Yzairi/CDA/internal/platform/metrics"
	"github.com/Yzairi/CDA/internal/platform/tracer"
	"github.com/Yzairi/CDA/internal/router"
	"github.com/Yzairi/CDA/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file (optional, for local development)
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found or error loading: %v. Relying on OS environment variables.\n", err)
	}

	// 1. Logger and configuration
	bootLogger := logger.NewLogger(config.BootLoggerConfig())
	cfg, err := config.LoadConfig(bootLogger)
	if err != nil {
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	appLogger := logger.NewLogger(cfg.LoggerConfig())
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Application starting...", zap.String("service_name", cfg.ServiceName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Tracing
	tp := tracer.InitTracer(cfg.ServiceName, cfg.OTExporterOTLPEndpoint, appLogger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}()

	// 3. Persistence
	store, err := repository.NewStoreFromConfig(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open store", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer store.Close()
	appLogger.Info("Store ready", zap.String("driver", cfg.StorageDriver))

	blobs, err := s3.NewStorageFromConfig(ctx, s3.Config{
		Backend:   cfg.BlobBackend,
		Endpoint:  cfg.BlobEndpoint,
		AccessKey: cfg.BlobAccessKey,
		SecretKey: cfg.BlobSecretKey,
		Bucket:    cfg.BlobBucket,
		Region:    cfg.BlobRegion,
		UseSSL:    cfg.BlobUseSSL,
		PublicURL: cfg.BlobPublicURL,
	}, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize blob storage", zap.String("backend", cfg.BlobBackend), zap.Error(err))
	}

	// 4. Outbound collaborators
	var events domain.EventPublisher
	if cfg.NATSURL != "" {
		natsPublisher, err := natsAdapter.NewPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, appLogger, cfg.ServiceName)
		if err != nil {
			appLogger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
		}
		defer natsPublisher.Close()
		events = natsPublisher
	} else {
		events = natsAdapter.NewNopPublisher(appLogger)
	}

	var notifier domain.Notifier
	if cfg.SMTPHost != "" {
		notifier = mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, appLogger)
	} else {
		appLogger.Info("SMTP_HOST not set, publication e-mails are disabled")
	}

	var completions domain.CompletionClient
	if cfg.OpenAIAPIKey != "" {
		completions = llm.NewOpenAIClient(llm.Config{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, Model: cfg.OpenAIModel}, appLogger)
	} else {
		appLogger.Info("OPENAI_API_KEY not set, assistant endpoints answer 503")
	}

	metricsManager := metrics.NewMetricsManager(cfg.ServiceName)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, clock.Real{})
	clk := clock.Real{}
	ids := clock.UUIDGenerator{}

	// 5. Usecases
	authUC := usecase.NewAuthUsecase(store.Users, tokens, events, clk, ids, appLogger,
		usecase.AuthOptions{AllowAdminSignup: cfg.AuthAllowAdminRegistration})
	userUC := usecase.NewUserUsecase(store.Users, store.Listings, appLogger)
	listingUC := usecase.NewListingUsecase(store.Listings, usecase.ListingDeps{
		Blobs:    blobs,
		Events:   events,
		Notifier: notifier,
		Recorder: metricsManager,
	}, clk, ids, appLogger)
	imageUC := usecase.NewImageUsecase(store.Listings, blobs, events, metricsManager, clk, ids, appLogger)
	statsUC := usecase.NewStatsUsecase(store.Users, store.Listings, appLogger)
	assistantUC := usecase.NewAssistantUsecase(completions, usecase.DefaultAssistantConfig(), metricsManager, appLogger)

	// 6. HTTP
	mux := router.NewRouter(router.Handlers{
		Users:     handler.NewUserHandler(authUC, userUC, appLogger),
		Listings:  handler.NewListingHandler(listingUC, appLogger),
		Images:    handler.NewImageHandler(imageUC, cfg.UploadMaxMemoryMB, appLogger),
		Stats:     handler.NewStatsHandler(statsUC, appLogger),
		Assistant: handler.NewAssistantHandler(assistantUC, appLogger),
		Health:    handler.NewHealthHandler(store, appLogger),
	}, router.Options{
		Tokens:             tokens,
		Metrics:            metricsManager,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	go func() {
		if err := metrics.StartMetricsServer(ctx, cfg.PrometheusMetricsPort, appLogger, metricsManager.Registry); err != nil {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()

	// 7. Graceful shutdown
	<-ctx.Done()
	appLogger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Application shutting down...")
	// Store, NATS and tracer cleanups run as deferred.
}
