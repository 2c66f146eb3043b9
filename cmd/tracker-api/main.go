// tracker-api — reference server for the applications collection.
//
// Serves the REST contract the tracker client synchronizes against:
//   - GET    /api/applications/       — list, most recently updated first
//   - POST   /api/applications/       — validated create
//   - DELETE /api/applications/{id}/  — delete
//
// Storage is Postgres when DATABASE_URL is set, SQLite otherwise.
// Publishes EVENT_APPLICATION_CREATED / EVENT_APPLICATION_DELETED to Redis
// when REDIS_URL is set, and reports health over grpc.health.v1.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"jobmate/tracker/internal/applications"
	"jobmate/tracker/internal/config"
	"jobmate/tracker/internal/db"
	"jobmate/tracker/internal/events"
	"jobmate/tracker/internal/grpcserver"
	"jobmate/tracker/internal/logger"
)

const (
	version             = "1.0.0"
	healthCheckInterval = 15 * time.Second
	shutdownTimeout     = 10 * time.Second
)

type migrator interface {
	applications.Repository
	Migrate(ctx context.Context) error
}

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[tracker-api] config error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[tracker-api] logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("tracker-api stopped", zap.Error(err))
	}
}

func run(cfg *config.Server, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Storage ─────────────────────────────────────────────────────────────
	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	if err := repo.Migrate(ctx); err != nil {
		return err
	}

	// ── Redis (optional) ────────────────────────────────────────────────────
	var pub events.Publisher = events.Nop{}
	if cfg.RedisURL != "" {
		log.Info("connecting to Redis")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		pub = events.NewRedisPublisher(rdb, log)
		log.Info("Redis connected")
	}

	// ── HTTP server ─────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	applications.NewHandler(repo, pub, log).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// ── gRPC health ─────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	gs := grpcserver.NewServer(repo, log)
	go gs.Watch(ctx, healthCheckInterval)

	errc := make(chan error, 2)
	go func() {
		log.Info("tracker-api listening", zap.String("version", version), zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info("grpc health listening", zap.String("port", cfg.GRPCPort))
		if err := gs.GRPC().Serve(lis); err != nil {
			errc <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// ── Graceful shutdown ───────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case runErr = <-errc:
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	gs.GRPC().GracefulStop()
	log.Info("stopped")
	return runErr
}

func openRepository(ctx context.Context, cfg *config.Server, log *zap.Logger) (migrator, func(), error) {
	if cfg.DatabaseURL != "" {
		log.Info("connecting to PostgreSQL")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		log.Info("PostgreSQL connected")
		return applications.NewPostgresRepository(pool), pool.Close, nil
	}

	log.Info("opening SQLite", zap.String("path", cfg.SQLitePath))
	sqlDB, err := db.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	return applications.NewSQLiteRepository(sqlDB), func() { _ = sqlDB.Close() }, nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "tracker-api",
		"version": version,
	})
}
