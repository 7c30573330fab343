package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/clubcore/internal/access"
	"github.com/hongminglow/clubcore/internal/config"
	"github.com/hongminglow/clubcore/internal/observability"
	"github.com/hongminglow/clubcore/internal/server"
	"github.com/hongminglow/clubcore/internal/storage/postgres"
)

func main() {
	envLoaded := godotenv.Load() == nil

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := observability.NewLogger(cfg.LogLevel, os.Stdout)
	if !envLoaded {
		log.Info("no .env file found; relying on existing environment")
	}

	table, err := access.LoadTable(cfg.PermissionsFile)
	if err != nil {
		log.WithError(err).Fatal("load permission table")
	}

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("init database")
	}
	defer store.Close()

	srv := server.New(cfg, server.Deps{
		Store:   store,
		Pinger:  store,
		Table:   table,
		Logger:  log,
		Metrics: observability.NewMetrics(),
	})

	go func() {
		log.WithFields(logrus.Fields{
			"addr":                 cfg.HTTPAddress(),
			"sections":             len(table),
			"trial_gated_sections": cfg.TrialGatedSections,
		}).Info("clubcore listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("graceful shutdown error")
	}
}
