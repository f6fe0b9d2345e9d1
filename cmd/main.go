package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/okian/skillmatch/internal/adapters/http/api"
	"github.com/okian/skillmatch/internal/adapters/http/swagger"
	"github.com/okian/skillmatch/internal/adapters/identity"
	"github.com/okian/skillmatch/internal/adapters/messaging"
	"github.com/okian/skillmatch/internal/adapters/ratelimit"
	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/adapters/repository/mongostore"
	"github.com/okian/skillmatch/internal/adapters/repository/sqlstore"
	app "github.com/okian/skillmatch/internal/app"
	"github.com/okian/skillmatch/internal/config"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/scoring"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// We collect our own system metrics instead of the default Go collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "skillmatch exited", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.InitWithOptions(cfg.LogFormat, os.Stdout); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	log := logger.Get()
	metrics.Configure(metricsOptions(cfg)...)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error(ctx, "store close failed", logger.Error(err))
		}
	}()

	verifier, err := identity.NewVerifier(cfg.JWTSecret, identity.WithCookieName(cfg.TokenCookie))
	if err != nil {
		return fmt.Errorf("identity: %w", err)
	}

	policy, err := ranking.ParsePolicy(cfg.RankingPolicy)
	if err != nil {
		return err
	}

	svcOpts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithScorer(newScorer(cfg)),
		app.WithRanker(ranking.NewRanker(policy)),
		app.WithWorkerCount(cfg.NotifyWorkerCount),
		app.WithQueueSize(cfg.NotifyQueueSize),
		app.WithDedupeSize(cfg.NotifyDedupeSize),
		app.WithScoreConcurrency(cfg.ScoreConcurrency),
	}

	if cfg.NATSURL != "" {
		natsCfg := messaging.DefaultConfig(cfg.NATSURL)
		natsCfg.Subject = cfg.NATSSubject
		pub, err := messaging.Connect(natsCfg)
		if err != nil {
			log.Warn(ctx, "nats unavailable; notifications will not be published", logger.Error(err))
		} else {
			defer func() { _ = pub.Close() }()
			svcOpts = append(svcOpts, app.WithPublisher(pub))
		}
	}

	var limiter api.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = client.Close() }()
		limiter = ratelimit.NewLimiter(client)
	}

	svc := app.New(store, svcOpts...)
	// Workers outlive the signal context so Stop can drain the queue.
	if err := svc.Start(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           buildHandler(ctx, cfg, svc, verifier, limiter),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// openStore opens the configured store and loads the seed fixture into it.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	var (
		store interface {
			repository.Store
			Seed(ctx context.Context, f repository.Fixture) error
		}
		err error
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		store = repository.NewMemoryStore()
	case config.StorePostgres, config.StoreSQLite:
		store, err = sqlstore.Open(ctx, cfg.StoreDriver, cfg.StoreDSN)
	case config.StoreMongo:
		store, err = mongostore.Open(ctx, cfg.StoreDSN, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownDriver, cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	if cfg.SeedFile != "" {
		f, err := repository.ReadFixture(cfg.SeedFile)
		if err == nil {
			err = store.Seed(ctx, f)
		}
		if err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("seed %s: %w", cfg.SeedFile, err)
		}
		logger.Get().Info(ctx, "store seeded",
			logger.String("file", cfg.SeedFile),
			logger.Int("users", len(f.Users)),
			logger.Int("skills", len(f.Skills)),
		)
	}
	return store, nil
}

// metricsOptions maps the metrics settings onto manager options.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithCustomLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsGCPauseBuckets),
		metrics.WithRefreshInterval(cfg.MetricsRefreshInterval),
	}
}

// newScorer builds the candidate scorer. Without availability jitter scores
// are fully deterministic.
func newScorer(cfg *config.Config) scoring.Scorer {
	var jitter scoring.Jitter = scoring.NoJitter{}
	if cfg.AvailabilityJitter {
		jitter = scoring.NewSeededJitter(cfg.JitterSeed)
	}
	return scoring.NewWeightedScorer(scoring.WithJitter(jitter))
}

// buildHandler registers every route and wraps the mux with CORS.
func buildHandler(
	ctx context.Context,
	cfg *config.Config,
	svc *app.Service,
	auth api.Authenticator,
	limiter api.Limiter,
) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)

	opts := []api.Option{api.WithLimits(cfg.DefaultLimit, cfg.MaxLimit)}
	if limiter != nil {
		opts = append(opts, api.WithRateLimit(limiter, cfg.RateLimitPerMinute))
	}
	api.NewServer(svc, auth, svc, opts...).Register(ctx, mux)

	return api.CORS(cfg.CORSAllowedOrigins)(mux)
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
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

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
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

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if started, ok := stats["started"].(bool); ok && started {
		if workerCount, ok := stats["workerCount"].(int); ok {
			metrics.UpdateWorkerCount(workerCount)
		}
	}
}
