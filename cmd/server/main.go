package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	grpclib "google.golang.org/grpc"

	grpcadapter "github.com/simaogato/valuation-service/internal/adapter/grpc"
	"github.com/simaogato/valuation-service/internal/adapter/rest"
	"github.com/simaogato/valuation-service/internal/config"
	"github.com/simaogato/valuation-service/internal/usecase/seeder"
	"github.com/simaogato/valuation-service/internal/usecase/valuation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		slog.Error("valuation service stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

// run wires and serves until ctx is cancelled or a server fails
// Every resource it opens is released before it returns.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := flags.String("config", "", "path to config file (optional, env vars are enough)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	// 1. Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.Log, stdout)
	slog.SetDefault(logger)

	logger.Info("starting valuation service",
		"config", *configPath,
		"driver", cfg.Sources.Driver,
		"fx", cfg.Sources.FX,
		"workers", cfg.Valuation.Workers,
	)

	// 2. Initialize sources
	src, err := buildSources(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize sources: %w", err)
	}
	defer src.Close()

	// Initialize FX seeder and run it
	if cfg.Seed.FXBase {
		if src.fxStore == nil {
			logger.Warn("fx seeding skipped, fx source is read-only", "fx", cfg.Sources.FX)
		} else if err := seeder.NewFXSeeder(src.fxStore, logger).Seed(ctx); err != nil {
			return fmt.Errorf("seed fx rates: %w", err)
		}
	}

	// 3. Initialize service (use case)
	valuationService := valuation.NewValuationService(
		src.positions,
		src.eligibility,
		src.prices,
		src.fx,
		valuation.WithWorkers(cfg.Valuation.Workers),
		valuation.WithLogger(logger),
	)

	// 4. Start gRPC server
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.GRPCAddr, err)
	}

	grpcServer := grpcadapter.NewGRPCServer(grpcadapter.NewServer(valuationService), cfg.Server.APIToken, logger)

	errCh := make(chan error, 2)
	go func() {
		logger.Info("grpc server listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	// 5. Start HTTP server when configured
	var httpServer *rest.Server
	if cfg.Server.HTTPAddr != "" {
		httpServer = rest.NewServer(valuationService, cfg.Server.APIToken, logger)
		go func() {
			logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
			if err := httpServer.Listen(cfg.Server.HTTPAddr); err != nil {
				errCh <- err
			}
		}()
	}

	// Graceful shutdown
	return waitForShutdown(ctx, logger, errCh, grpcServer, httpServer)
}

// waitForShutdown waits for ctx to end or a server failure and stops both servers
func waitForShutdown(ctx context.Context, logger *slog.Logger, errCh <-chan error, grpcServer *grpclib.Server, httpServer *rest.Server) error {
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case serveErr = <-errCh:
		logger.Error("server failed", "error", serveErr)
	}

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown", "error", err)
		}
		logger.Info("http server stopped")
	}

	grpcServer.GracefulStop()
	logger.Info("grpc server stopped")

	return serveErr
}
