package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/console-client/internal/api/http"
	"github.com/spec-kit/console-client/internal/config"
	"github.com/spec-kit/console-client/internal/observability"
)

// Runs a local stand-in for the console backend so the client can be exercised end to end.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := httptransport.NewDevServer(ctx, cfg.DevServer, cfg.App.Version, logger, observability.NewMetrics())
	if err != nil {
		logger.Fatal("failed to build dev server", zap.Error(err))
	}

	go func() {
		logger.Info("dev server listening", zap.String("addr", cfg.DevServer.Addr()))
		if err := srv.App.Listen(cfg.DevServer.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = srv.App.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
