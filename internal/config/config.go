// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and SKILLMATCH_* environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"context"
	"runtime"
	"time"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMongo    = "mongo"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreDriver selects the user/skill/notification store.
	StoreDriver string `koanf:"store_driver"`

	// StoreDSN is the SQL DSN or Mongo URI of the store.
	StoreDSN string `koanf:"store_dsn"`

	// MongoDatabase names the database when StoreDriver is mongo.
	MongoDatabase string `koanf:"mongo_database"`

	// SeedFile is a JSON fixture loaded into the store at startup.
	SeedFile string `koanf:"seed_file"`

	// JWTSecret signs and verifies session tokens.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenCookie is the cookie carrying the session token.
	TokenCookie string `koanf:"token_cookie"`

	// NotifyQueueSize bounds the notification queue.
	NotifyQueueSize int `koanf:"notify_queue_size"`

	// NotifyWorkerCount sets the number of notification workers.
	NotifyWorkerCount int `koanf:"notify_worker_count"`

	// NotifyDedupeSize sizes the notification dedupe cache; 0 disables dedupe.
	NotifyDedupeSize int `koanf:"notify_dedupe_size"`

	// ScoreConcurrency bounds concurrent candidate scoring per request.
	ScoreConcurrency int `koanf:"score_concurrency"`

	// DefaultLimit is used when GET /match has no limit.
	DefaultLimit int `koanf:"default_limit"`

	// MaxLimit caps GET /match?limit.
	MaxLimit int `koanf:"max_limit"`

	// RankingPolicy is strict or cascading.
	RankingPolicy string `koanf:"ranking_policy"`

	// AvailabilityJitter adds the random availability bonus when true.
	AvailabilityJitter bool `koanf:"availability_jitter"`

	// JitterSeed seeds the availability jitter source.
	JitterSeed int64 `koanf:"jitter_seed"`

	// RedisAddr enables per-user rate limiting when set.
	RedisAddr string `koanf:"redis_addr"`

	// RateLimitPerMinute caps match requests per user; 0 disables it.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute"`

	// NATSURL enables publishing notifications when set.
	NATSURL string `koanf:"nats_url"`

	// NATSSubject is the subject prefix for published notifications.
	NATSSubject string `koanf:"nats_subject"`

	// CORSAllowedOrigins lists origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// Metrics settings.
	MetricsEnabled         bool              `koanf:"metrics_enabled"`
	MetricsNamespace       string            `koanf:"metrics_namespace"`
	MetricsSubsystem       string            `koanf:"metrics_subsystem"`
	MetricsLabels          map[string]string `koanf:"metrics_labels"`
	MetricsGCPauseBuckets  []float64         `koanf:"metrics_gc_pause_buckets"`
	MetricsRefreshInterval time.Duration     `koanf:"metrics_refresh_interval"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		StoreDriver:        StoreMemory,
		MongoDatabase:      "skillmatch",
		TokenCookie:        "token",
		NotifyQueueSize:    1024,
		NotifyWorkerCount:  runtime.NumCPU(),
		NotifyDedupeSize:   0,
		ScoreConcurrency:   runtime.NumCPU() * 4,
		DefaultLimit:       20,
		MaxLimit:           100,
		RankingPolicy:      "strict",
		AvailabilityJitter: true,
		JitterSeed:         42,
		RateLimitPerMinute: 60,
		NATSSubject:        "notifications",
		CORSAllowedOrigins: []string{"*"},

		MetricsEnabled:         true,
		MetricsNamespace:       "skillmatch",
		MetricsRefreshInterval: 10 * time.Second,
	}
}
