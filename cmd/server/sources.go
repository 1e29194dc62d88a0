package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/simaogato/valuation-service/internal/adapter/fxapi"
	"github.com/simaogato/valuation-service/internal/adapter/repository/memory"
	"github.com/simaogato/valuation-service/internal/adapter/repository/postgres"
	"github.com/simaogato/valuation-service/internal/config"
	"github.com/simaogato/valuation-service/internal/domain"
)

const (
	dbConnectAttempts = 5
	dbConnectDelay    = 2 * time.Second
)

// sources holds the four collaborators picked by configuration
type sources struct {
	positions   domain.PositionSource
	eligibility domain.EligibilitySource
	prices      domain.PriceSource
	fx          domain.FXRateSource
	fxStore     domain.FXRateStore // nil when FX rates come from the read-only HTTP feed

	db *postgres.DB
}

// Close releases the database connection if one was opened
func (s *sources) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func buildSources(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sources, error) {
	src := &sources{}

	usesPostgres := cfg.Sources.Driver == config.DriverPostgres || cfg.Sources.FX == config.DriverPostgres
	if usesPostgres {
		db, err := connectDB(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		src.db = db
	}

	usesMemory := cfg.Sources.Driver == config.DriverMemory || cfg.Sources.FX == config.DriverMemory
	var store *memory.Store
	if usesMemory {
		var err error
		store, err = memory.LoadFixture(cfg.Sources.FixturePath)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("load fixture: %w", err)
		}
		logger.Info("fixture loaded", "path", cfg.Sources.FixturePath)
	}

	switch cfg.Sources.Driver {
	case config.DriverPostgres:
		src.positions = postgres.NewPositionRepository(src.db)
		src.eligibility = postgres.NewEligibilityRepository(src.db)
		src.prices = postgres.NewPriceRepository(src.db)
	case config.DriverMemory:
		src.positions = store
		src.eligibility = store
		src.prices = store
	}

	switch cfg.Sources.FX {
	case config.DriverPostgres:
		repo := postgres.NewFXRateRepository(src.db)
		src.fx, src.fxStore = repo, repo
	case config.DriverMemory:
		src.fx, src.fxStore = store, store
	case config.DriverHTTP:
		api := cfg.Sources.FXAPI
		src.fx = fxapi.NewClient(api.BaseURL,
			fxapi.WithAPIKey(api.APIKey),
			fxapi.WithTimeout(api.Timeout),
			fxapi.WithRetries(api.MaxRetries, api.Backoff),
			fxapi.WithLogger(logger),
		)
	}

	return src, nil
}

// connectDB retries while Postgres is still starting up
func connectDB(ctx context.Context, cfg *config.DBConfig, logger *slog.Logger) (*postgres.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= dbConnectAttempts; attempt++ {
		db, err := postgres.NewDB(cfg.ConnString())
		if err == nil {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
			if cfg.EnsureSchema {
				if err := db.EnsureSchema(ctx); err != nil {
					_ = db.Close()
					return nil, err
				}
			}
			logger.Info("database connected", "host", cfg.Host, "database", cfg.Name)
			return db, nil
		}

		lastErr = err
		logger.Warn("database not ready", "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dbConnectDelay):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", dbConnectAttempts, lastErr)
}
