package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/skillmatch/internal/adapters/ratelimit"
	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
)

// MatchHandler handles match requests.
type MatchHandler struct {
	svc          MatchService
	auth         Authenticator
	limiter      Limiter
	rule         ratelimit.Rule
	defaultLimit int
	maxLimit     int
	logger       logger.Logger
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(svc MatchService, auth Authenticator, opts ...Option) *MatchHandler {
	h := &MatchHandler{
		svc:          svc,
		auth:         auth,
		defaultLimit: defaultMatchLimit,
		maxLimit:     defaultMaxLimit,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logger.Get().Named("api")
	}
	return h
}

// HandleGetMatch handles GET /match?limit&category&level&location requests.
func (h *MatchHandler) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_match"
	ctx := r.Context()

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	requesterID, err := h.auth.FromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", WrapKind(op, ErrUnauthorized, err))
		return
	}

	req, err := h.parse(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	req.RequesterID = requesterID

	if h.limiter != nil {
		ok, err := h.limiter.Allow(ctx, requesterID, h.rule)
		if err != nil {
			h.logger.Warn(ctx, "rate limiter unavailable", logger.Error(err))
		}
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(h.rule.Window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind(op, ErrRateLimited))
			return
		}
	}

	resp, err := h.svc.Match(ctx, req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Warn(ctx, "match cancelled", logger.String("requester", requesterID), logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, "request_cancelled", NewKind(op, ErrCancelled))
	case errors.Is(err, repository.ErrStoreUnavailable):
		h.logger.Error(ctx, "match failed", logger.String("requester", requesterID), logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", NewKind(op, ErrUnavailable))
	default:
		h.logger.Error(ctx, "match failed", logger.String("requester", requesterID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, errors.New("internal error")))
	}
}

// parse reads the query. A missing limit uses the default; a larger one
// than the maximum is clamped.
func (h *MatchHandler) parse(r *http.Request) (types.MatchRequest, error) {
	q := r.URL.Query()
	req := types.MatchRequest{
		Limit:    h.defaultLimit,
		Category: strings.TrimSpace(q.Get("category")),
		Level:    strings.TrimSpace(q.Get("level")),
		Location: strings.TrimSpace(q.Get("location")),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return types.MatchRequest{}, errors.New("limit must be a positive integer")
		}
		req.Limit = min(n, h.maxLimit)
	}
	return req, nil
}
