package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Splendour-K/Opp/internal/api"
	"github.com/Splendour-K/Opp/internal/app"
	"github.com/Splendour-K/Opp/internal/config"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build dashboard")
	}

	srv := api.NewServer(a.Dashboard, a.Advisor, api.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		Logger:         logger,
		Sources:        a.Gateway.Sources(),
	})

	go func() {
		logger.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"backend": cfg.AIBackend,
			"sources": a.Gateway.Sources(),
		}).Info("Server starting")
		if err := srv.Start(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP shutdown incomplete")
	}
	a.Close()
}
