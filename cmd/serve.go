package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dynqr/redirector/internal/analytics"
	"dynqr/redirector/internal/config"
	"dynqr/redirector/internal/handler"
	"dynqr/redirector/internal/service"
	jwtpkg "dynqr/redirector/pkg/jwt"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP redirect and owner API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	// 1. Load configuration and logger
	cfg, logger, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// 2. Open record store
	repo, db, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB(db, logger)

	checks := make(map[string]handler.ReadinessCheck)
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}

	// 3. Select analytics sink
	var sink analytics.Sink
	switch cfg.Analytics.Backend {
	case config.AnalyticsBackendQueue:
		redisClient, err := config.NewRedisClient(cfg.Database.Redis)
		if err != nil {
			return fmt.Errorf("connect analytics broker: %w", err)
		}
		defer redisClient.Close()
		checks["broker"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}

		queueClient := asynq.NewClientFromRedisClient(redisClient)
		sink = analytics.NewQueueSink(queueClient, cfg.Analytics.MaxRetry)
		logger.Info("scan analytics via queue", zap.String("redis", cfg.Database.Redis.Addr()))
	default:
		sink = analytics.NewStoreSink(repo)
		logger.Info("scan analytics written directly")
	}

	// 4. Start analytics dispatcher
	dispatcher := analytics.NewDispatcher(sink, logger, analytics.DispatcherOptions{
		Workers:      cfg.Analytics.Workers,
		QueueSize:    cfg.Analytics.QueueSize,
		WriteTimeout: cfg.Analytics.WriteTimeout,
	})
	dispatcher.Start()

	// 5. Initialize JWT manager
	jwtManager := jwtpkg.NewManager(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.AccessTokenTTL)

	// 6. Initialize services
	redirectService := service.NewRedirectService(repo, dispatcher, logger)
	qrCodeService := service.NewQRCodeService(repo)

	// 7. Initialize handlers and router
	router := handler.SetupRouter(cfg, logger, jwtManager,
		handler.NewRedirectHandler(redirectService, cfg.Redirect.StatusCode),
		handler.NewQRCodeHandler(qrCodeService),
		handler.NewHealthHandler(checks),
	)

	// 8. Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 9. Serve until signalled, then shut down gracefully
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		dispatcher.Close()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// no more requests can submit; flush what is queued
	dispatcher.Close()
	logger.Info("server exited gracefully")
	return nil
}
