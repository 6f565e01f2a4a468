package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/okian/books/internal/adapters/http/api"
	"github.com/okian/books/internal/adapters/http/site"
	"github.com/okian/books/internal/adapters/http/swagger"
	"github.com/okian/books/internal/adapters/repository"
	app "github.com/okian/books/internal/app"
	"github.com/okian/books/internal/config"
	"github.com/okian/books/internal/domain/catalog"
	"github.com/okian/books/pkg/logger"
	"github.com/okian/books/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Initialize logging
	if err := logger.Init(logger.WithRequestID(middleware.GetReqID)); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "books server failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithRequestID(middleware.GetReqID)); err != nil {
		return err
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	if cfg.InitIfMissing {
		created, err := repository.EnsureInitialized(ctx, store)
		if err != nil {
			return fmt.Errorf("initialize %s store: %w", store.Backend(), err)
		}
		if created {
			log.Info(ctx, "created empty books document", logger.String("backend", store.Backend()))
		}
	}

	strategy, err := catalog.ParseIDStrategy(cfg.IDStrategy)
	if err != nil {
		return err
	}
	svc := app.New(
		app.WithStore(store),
		app.WithLogger(log.Named("service")),
		app.WithIDStrategy(strategy),
		app.WithStrictPayloads(cfg.StrictPayloads),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	handler, err := newRouter(ctx, cfg, svc, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "server running", logger.String("addr", "http://"+ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a serve failure
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
	return nil
}

// newStore builds the configured backend, wrapped with metrics.
func newStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	var store repository.Store
	switch cfg.StorageBackend {
	case config.BackendFile:
		store = repository.NewFileStore(cfg.DataFile)
	case config.BackendMemory:
		store = repository.NewMemoryStore()
	case config.BackendS3:
		client, err := repository.NewS3Client(ctx, repository.S3Config{
			Bucket:   cfg.S3Bucket,
			Key:      cfg.S3Key,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		store = repository.NewS3Store(client, cfg.S3Bucket, cfg.S3Key)
	case config.BackendRedis:
		client, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		store = repository.NewRedisStore(client, cfg.RedisKey)
	default:
		return nil, fmt.Errorf("%w: unknown storage_backend %q", config.ErrInvalidConfig, cfg.StorageBackend)
	}
	return repository.Instrument(store), nil
}

// newRouter wires middleware, the books API, its documentation and the root redirect.
func newRouter(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.Recovery(log.Named("api")))

	api.NewServer(svc, svc,
		api.WithMaxBodyBytes(cfg.MaxBodyBytes),
		api.WithLogger(log.Named("api")),
	).Register(ctx, r)

	info := swagger.Info{Title: cfg.DocsTitle, Version: cfg.DocsVersion}
	if err := swagger.Register(ctx, r, info, api.Operations()); err != nil {
		return nil, err
	}
	site.Register(ctx, r, site.DefaultLanding)
	return r, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
