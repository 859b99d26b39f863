package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"dynqr/redirector/internal/config"
	"dynqr/redirector/internal/model"
	"dynqr/redirector/internal/repository"
)

var errPostgresRequired = errors.New("this command needs store.backend=postgres")

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// loadApp reads config and builds the logger shared by every subcommand.
func loadApp() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// openRepository returns the configured store. db is nil for the memory backend.
func openRepository(cfg *config.Config, logger *zap.Logger) (repository.QRCodeRepository, *gorm.DB, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := config.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Database.Postgres.AutoMigrate {
			if err := model.AutoMigrate(db); err != nil {
				return nil, nil, fmt.Errorf("auto-migrate: %w", err)
			}
			logger.Info("database migration completed")
		}
		logger.Info("using postgres store", zap.String("host", cfg.Database.Postgres.Host))
		return repository.NewPGQRCodeRepository(db), db, nil
	default:
		logger.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryQRCodeRepository(), nil, nil
	}
}

func closeDB(db *gorm.DB, logger *zap.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database", zap.Error(err))
	}
}
