// @title           Task Manager API
// @version         1.0
// @description     Task tracking REST API: create, list, filter, sort, update and delete tasks.
// @host            localhost:5000
// @BasePath        /api/v1
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmanager/internal/app"
	"taskmanager/internal/config"
	"taskmanager/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log := logging.New(config.EnvProduction, "info")
		log.Error().Err(err).Msg("taskmanager stopped")
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails, then shuts down.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logging.New(cfg.App.Env, cfg.App.LogLevel)
	if !cfg.App.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info().Str("env", cfg.App.Env).Msg("config loaded, connecting to task store...")

	initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	application, err := app.New(initCtx, cfg, log)
	cancel()
	if err != nil {
		return fmt.Errorf("app init: %w", err)
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case serveErr = <-errCh:
		log.Error().Err(serveErr).Msg("HTTP server error")
	}

	shutdown(server, application, log)
	return serveErr
}

func shutdown(server *http.Server, application *app.App, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown")
	}
	if err := application.Close(ctx); err != nil {
		log.Error().Err(err).Msg("closing resources")
	}
	log.Info().Msg("stopped")
}
