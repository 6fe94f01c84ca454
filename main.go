package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abdusco/shortlink/internal/config"
	"github.com/abdusco/shortlink/internal/db"
	"github.com/abdusco/shortlink/internal/logger"
	"github.com/abdusco/shortlink/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/netutil"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse configuration from environment")
	}

	if err := logger.Setup(cfg.LogLevel, cfg.Debug); err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("failed to parse log level")
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Str("port", cfg.Server.Port).
		Str("db_driver", cfg.Database.Driver).
		Int("code_length", cfg.Links.CodeLength).
		Msg("current configuration")

	ctx := context.Background()
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("application error")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	log.Info().
		Str("version", version).
		Str("build_time", buildTime).
		Msg("starting application")

	dsn := cfg.Database.URL
	if cfg.Database.Driver == config.DriverSQLite {
		dsn = db.SQLiteDSN(cfg.Database.Path)
	}

	dbInstance, err := db.Open(ctx, cfg.Database.Driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbInstance.Close()
	log.Info().Str("driver", dbInstance.Driver()).Msg("database ready")

	e := server.New(cfg, dbInstance)
	defer e.Close()

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if cfg.Server.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.Server.MaxConnections)
		log.Info().Int("max_connections", cfg.Server.MaxConnections).Msg("limiting concurrent connections")
	}
	e.Listener = listener

	log.Info().Str("address", addr).Msg("server starting")

	runServer(ctx, e)

	return nil
}

func runServer(ctx context.Context, e *echo.Echo) {
	serverErr := make(chan error, 1)
	go func() {
		// the address is ignored once e.Listener is set
		serverErr <- e.Start("")
	}()

	// Wait for context cancellation (Ctrl+C or SIGTERM)
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during graceful shutdown")
	}

	if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server error")
	}

	log.Info().Msg("server stopped")
}
