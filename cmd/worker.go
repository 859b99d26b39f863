package main

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dynqr/redirector/internal/analytics"
	"dynqr/redirector/internal/config"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Apply queued scan events to the record store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd.Context())
		},
	}
}

func runWorker(ctx context.Context) error {
	cfg, logger, err := loadApp()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// a separate process cannot see another process's memory store
	if cfg.Store.Backend != config.StoreBackendPostgres {
		return errPostgresRequired
	}
	repo, db, err := openRepository(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB(db, logger)

	redisCfg := cfg.Database.Redis
	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     redisCfg.Addr(),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
		PoolSize: redisCfg.PoolSize,
	}, asynq.Config{
		Concurrency: cfg.Analytics.Workers,
		Logger:      logger.Sugar(),
	})
	processor := analytics.NewProcessor(analytics.NewStoreSink(repo), logger)

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	logger.Info("scan worker starting", zap.String("redis", redisCfg.Addr()), zap.Int("concurrency", cfg.Analytics.Workers))
	if err := server.Run(processor.Handler()); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	return nil
}
