package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/kickoff/internal/adapters/content"
	"github.com/okian/kickoff/internal/adapters/http/api"
	"github.com/okian/kickoff/internal/adapters/http/swagger"
	"github.com/okian/kickoff/internal/adapters/photostore"
	app "github.com/okian/kickoff/internal/app"
	"github.com/okian/kickoff/internal/config"
	"github.com/okian/kickoff/internal/domain/generator"
	"github.com/okian/kickoff/pkg/logger"
	"github.com/okian/kickoff/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	sessionIdleTTL            = 6 * time.Hour
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Only the custom registry is exposed; drop the default collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

// run serves until ctx is canceled.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	svc, err := newService(ctx, cfg, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop(context.Background())

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newService assembles the career service from configuration.
func newService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, error) {
	var genOpts []generator.Option
	if cfg.Seed != 0 {
		genOpts = append(genOpts, generator.WithSeed(cfg.Seed))
	}
	gen := generator.New(genOpts...)

	commentatorOpts := []content.CommentatorOption{content.WithLogger(log.Named("content"))}
	if cfg.ContentAPIKey != "" {
		commentatorOpts = append(commentatorOpts, content.WithModel(content.NewGeminiClient(cfg.ContentAPIKey,
			content.WithBaseURL(cfg.ContentBaseURL),
			content.WithModelName(cfg.ContentModel),
			content.WithTimeout(time.Duration(cfg.ContentTimeoutMS)*time.Millisecond),
		)))
	} else {
		log.Info(ctx, "no content api key; matches are simulated procedurally")
	}

	photos, err := newPhotoStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return app.New(
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.JobQueueSize),
		app.WithMaxInFlight(cfg.MaxInFlight),
		app.WithSessionIdleTTL(sessionIdleTTL),
		app.WithGenerator(gen),
		app.WithCommentator(content.NewCommentator(gen, commentatorOpts...)),
		app.WithPhotoStore(photos, cfg.PhotoBackend),
		app.WithPhotoKeyPrefix(cfg.PhotoKeyPrefix),
		app.WithPlaybackCadence(
			time.Duration(cfg.StepIntervalMS)*time.Millisecond,
			time.Duration(cfg.GoalPauseMS)*time.Millisecond,
			time.Duration(cfg.JitterIntervalMS)*time.Millisecond,
		),
	), nil
}

func newPhotoStore(ctx context.Context, cfg *config.Config) (photostore.Store, error) {
	if cfg.PhotoBackend == config.PhotoBackendRedis {
		store, err := photostore.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect photo store: %w", err)
		}
		return store, nil
	}
	return photostore.NewMemoryStore(), nil
}

// newHandler builds the router with docs and API routes behind CORS.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service) http.Handler {
	r := mux.NewRouter()
	swagger.Register(ctx, r)
	api.NewServer(svc, svc).Register(ctx, r)
	return api.CORS(r, cfg.AllowedOrigins())
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

// startServiceMetricsUpdater refreshes the service gauges on a ticker.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.GetStats()
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
