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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/solrsync/internal/config"
	"github.com/kailas-cloud/solrsync/internal/db"
	dbPostgres "github.com/kailas-cloud/solrsync/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/solrsync/internal/db/redis"
	"github.com/kailas-cloud/solrsync/internal/domain/class"
	logpkg "github.com/kailas-cloud/solrsync/internal/logger"
	"github.com/kailas-cloud/solrsync/internal/metrics"
	dirtyrepo "github.com/kailas-cloud/solrsync/internal/repository/dirty"
	chiTransport "github.com/kailas-cloud/solrsync/internal/transport/chi"
	"github.com/kailas-cloud/solrsync/internal/transport/solrhttp"
	healthuc "github.com/kailas-cloud/solrsync/internal/usecase/health"
	hookuc "github.com/kailas-cloud/solrsync/internal/usecase/hook"
	"github.com/kailas-cloud/solrsync/internal/usecase/indexsync"
	searchuc "github.com/kailas-cloud/solrsync/internal/usecase/search"
	"github.com/kailas-cloud/solrsync/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting solrsync",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("solr_url", cfg.Solr.BaseURL),
	)

	ctx := context.Background()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterSolrMetrics()

	registry, err := buildRegistry(cfg.EnabledIndexes())
	if err != nil {
		logger.Fatal("Invalid index configuration", zap.Error(err))
	}
	hierarchy := class.NewHierarchy(cfg.Classes)

	solrClient := solrhttp.NewClient(&solrhttp.Config{
		BaseURL:  cfg.Solr.BaseURL,
		Username: cfg.Solr.Username,
		Password: cfg.Solr.Password,
		Timeout:  time.Duration(cfg.Solr.TimeoutSec) * time.Second,
		Logger:   logger,
	})

	cores := make([]string, 0, len(registry.All()))
	for _, def := range registry.All() {
		cores = append(cores, def.Name())
	}
	logger.Info("Indexes configured", zap.Strings("cores", cores))

	dirtyRepo := dirtyrepo.New(store, metrics.DirtyIdentifiersTotal, logger)
	syncSvc := indexsync.New(solrClient, registry, hierarchy, logger)
	hookSvc := hookuc.New(syncSvc, dirtyRepo, logger)
	searchSvc := searchuc.New(solrClient, registry, logger)
	healthSvc := healthuc.New(store, solrClient, cores)

	server := chiTransport.NewServer(hookSvc, syncSvc, searchSvc, dirtyRepo, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(chiTransport.Keys{
		Read:  cfg.Auth.APIKeys,
		Admin: cfg.Auth.AdminKeys,
	}))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore creates the dirty record store for the configured driver.
// Valkey speaks the Redis protocol, so both use the rueidis store.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
		}
		return s, nil
	case "postgres":
		s, err := dbPostgres.NewStore(ctx, dbPostgres.Config{
			DSN:      cfg.DSN,
			MaxConns: cfg.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
