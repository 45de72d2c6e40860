package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duckgate/duckgate/internal/api"
	"github.com/duckgate/duckgate/internal/auth"
	"github.com/duckgate/duckgate/internal/config"
	"github.com/duckgate/duckgate/internal/observability"
	"github.com/duckgate/duckgate/internal/storage"
	s3store "github.com/duckgate/duckgate/internal/storage/s3"
	"github.com/duckgate/duckgate/internal/tools"

	duckdbgw "github.com/duckgate/duckgate/internal/query/duckdb"
)

func main() {
	dbPath := flag.String("db", "", "database file path (overrides DUCKGATE_DB_PATH)")
	flag.Parse()

	cfg, err := config.LoadFromEnv("duckgate")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	var objectStore storage.ObjectStore
	if cfg.ObjectStore.Enabled {
		store, err := s3store.New(context.Background(), s3store.Config{
			Endpoint:         cfg.ObjectStore.Endpoint,
			Region:           cfg.ObjectStore.Region,
			Bucket:           cfg.ObjectStore.Bucket,
			AccessKeyID:      cfg.ObjectStore.AccessKeyID,
			SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
			UseSSL:           cfg.ObjectStore.UseSSL,
			Prefix:           cfg.ObjectStore.Prefix,
			AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
		})
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		objectStore = store
	}

	gateway, err := duckdbgw.Open(cfg.Database.Path, duckdbgw.Options{
		QueryTimeout: cfg.Database.QueryTimeout,
		Store:        objectStore,
		SampleRows:   cfg.Database.SampleRows,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err), slog.String("path", cfg.Database.Path))
		os.Exit(1)
	}
	defer func() { _ = gateway.Close() }()

	deps := api.Dependencies{
		Logger:            logger,
		Registry:          tools.New(gateway),
		Readiness:         api.CheckDatabase(gateway),
		DependencyTimeout: time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting gateway server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("db_path", cfg.Database.Path),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("gateway server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down gateway server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
