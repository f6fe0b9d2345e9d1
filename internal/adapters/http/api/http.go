// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/skillmatch/internal/adapters/ratelimit"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Default limits of GET /match.
const (
	defaultMatchLimit = types.DefaultLimit
	defaultMaxLimit   = 100
)

// MatchService computes ranked matches.
type MatchService interface {
	Match(ctx context.Context, req types.MatchRequest) (types.MatchResponse, error)
}

// Authenticator resolves the requester id of a request.
type Authenticator interface {
	FromRequest(r *http.Request) (string, error)
}

// Limiter decides whether an identifier may make another request.
type Limiter interface {
	Allow(ctx context.Context, identifier string, rule ratelimit.Rule) (bool, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	matchHandler  *MatchHandler
}

// Option configures the match handler.
type Option func(*MatchHandler)

// WithLimits sets the default and maximum ?limit of GET /match.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(h *MatchHandler) {
		if defaultLimit > 0 {
			h.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			h.maxLimit = maxLimit
		}
	}
}

// WithRateLimit throttles GET /match per requester. A nil limiter or a
// non-positive rate disables it.
func WithRateLimit(l Limiter, perMinute int) Option {
	return func(h *MatchHandler) {
		if l != nil && perMinute > 0 {
			h.limiter = l
			h.rule = ratelimit.MatchRule(perMinute)
		}
	}
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(l logger.Logger) Option {
	return func(h *MatchHandler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(svc MatchService, auth Authenticator, stats StatsProvider, opts ...Option) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(stats),
		matchHandler:  NewMatchHandler(svc, auth, opts...),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/match", MetricsMiddleware(s.matchHandler.HandleGetMatch, "match"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
