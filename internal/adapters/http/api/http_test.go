package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/okian/skillmatch/internal/adapters/http/api"
	"github.com/okian/skillmatch/internal/adapters/identity"
	"github.com/okian/skillmatch/internal/adapters/ratelimit"
	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type mockService struct {
	last types.MatchRequest
	resp types.MatchResponse
	err  error
}

func (m *mockService) Match(_ context.Context, req types.MatchRequest) (types.MatchResponse, error) {
	m.last = req
	if m.err != nil {
		return types.MatchResponse{}, m.err
	}
	return m.resp, nil
}

type mockStatsProvider struct {
	stats map[string]any
}

func (m *mockStatsProvider) GetStats() map[string]any {
	return m.stats
}

func newServer(svc api.MatchService, opts ...api.Option) (*http.ServeMux, *identity.Verifier) {
	v, err := identity.NewVerifier("s3cret")
	So(err, ShouldBeNil)
	mux := http.NewServeMux()
	api.NewServer(svc, v, &mockStatsProvider{stats: map[string]any{"started": true}}, opts...).
		Register(context.Background(), mux)
	return mux, v
}

func get(mux http.Handler, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: identity.DefaultCookie, Value: token})
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	_ = logger.Init()

	Convey("Given a registered API server", t, func() {
		mux, _ := newServer(&mockService{})

		Convey("Then the health endpoint reports ok", func() {
			w := get(mux, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
		})

		Convey("Then the stats endpoint returns the provider stats", func() {
			w := get(mux, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then the metrics endpoint serves prometheus text", func() {
			w := get(mux, "/metrics", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestMatchHandler(t *testing.T) {
	_ = logger.Init()

	Convey("Given a match endpoint", t, func() {
		svc := &mockService{resp: types.MatchResponse{
			MatchedUsers: []model.MatchCandidate{{User: model.CandidateProfile{ID: "ana", Name: "Ana"}, TotalScore: 0.9}},
			Total:        1,
			Filters:      types.Filters{Limit: 20},
			Suggestions:  []string{},
		}}
		mux, v := newServer(svc, api.WithLimits(20, 50))
		token, err := v.Issue("u1", "u1@example.com")
		So(err, ShouldBeNil)

		Convey("When the request has no token", func() {
			w := get(mux, "/match", "")

			Convey("Then it is unauthorized", func() {
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
				So(w.Body.String(), ShouldContainSubstring, `"code":"unauthorized"`)
			})
		})

		Convey("When the token is forged", func() {
			other, _ := identity.NewVerifier("other")
			forged, _ := other.Issue("u1", "")
			So(get(mux, "/match", forged).Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("When an authenticated user asks with filters", func() {
			w := get(mux, "/match?limit=5&category=Music&level=Advanced&location=Lisbon", token)

			Convey("Then the service gets the requester and filters", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(svc.last.RequesterID, ShouldEqual, "u1")
				So(svc.last.Limit, ShouldEqual, 5)
				So(svc.last.Category, ShouldEqual, "Music")
				So(svc.last.Level, ShouldEqual, "Advanced")
				So(svc.last.Location, ShouldEqual, "Lisbon")

				var resp types.MatchResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Total, ShouldEqual, 1)
				So(resp.MatchedUsers[0].User.ID, ShouldEqual, "ana")
			})
		})

		Convey("When no limit is given", func() {
			get(mux, "/match", token)
			So(svc.last.Limit, ShouldEqual, 20)
		})

		Convey("When the limit is above the maximum", func() {
			w := get(mux, "/match?limit=500", token)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(svc.last.Limit, ShouldEqual, 50)
		})

		Convey("When the limit is not a positive integer", func() {
			for _, bad := range []string{"abc", "0", "-3"} {
				w := get(mux, "/match?limit="+bad, token)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the requester does not exist", func() {
			svc.err = repository.ErrNotFound
			So(get(mux, "/match", token).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the store is down", func() {
			svc.err = repository.ErrStoreUnavailable
			w := get(mux, "/match", token)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, `"code":"store_unavailable"`)
		})

		Convey("When the request is cancelled while scoring or while reading the store", func() {
			for _, err := range []error{
				fmt.Errorf("score c1: %w", context.Canceled),
				fmt.Errorf("%w: %w", repository.ErrStoreUnavailable, context.Canceled),
				fmt.Errorf("score c1: %w", context.DeadlineExceeded),
			} {
				svc.err = err
				w := get(mux, "/match", token)
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(w.Body.String(), ShouldContainSubstring, `"code":"request_cancelled"`)
			}
		})

		Convey("When the service fails otherwise", func() {
			svc.err = errors.New("boom")
			w := get(mux, "/match", token)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(w.Body.String(), ShouldNotContainSubstring, "boom")
		})

		Convey("When the method is not GET", func() {
			req := httptest.NewRequest(http.MethodPost, "/match", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestMatchHandler_RateLimit(t *testing.T) {
	_ = logger.Init()

	Convey("Given a match endpoint limited to two requests a minute", t, func() {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer func() { _ = client.Close() }()

		mux, v := newServer(&mockService{}, api.WithRateLimit(ratelimit.NewLimiter(client), 2))
		token, _ := v.Issue("u1", "")

		Convey("When a third request arrives", func() {
			So(get(mux, "/match", token).Code, ShouldEqual, http.StatusOK)
			So(get(mux, "/match", token).Code, ShouldEqual, http.StatusOK)
			w := get(mux, "/match", token)

			Convey("Then it is rejected with a retry hint", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(w.Header().Get("Retry-After"), ShouldEqual, "60")
			})
		})

		Convey("When Redis is down", func() {
			mr.Close()

			Convey("Then requests are still served", func() {
				So(get(mux, "/match", token).Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestCORS(t *testing.T) {
	Convey("Given a CORS-wrapped handler", t, func() {
		h := api.CORS([]string{"https://app.example"})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		Convey("When an allowed origin calls", func() {
			req := httptest.NewRequest(http.MethodGet, "/match", http.NoBody)
			req.Header.Set("Origin", "https://app.example")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "https://app.example")
			So(w.Header().Get("Access-Control-Allow-Credentials"), ShouldEqual, "true")
		})

		Convey("When another origin calls", func() {
			req := httptest.NewRequest(http.MethodGet, "/match", http.NoBody)
			req.Header.Set("Origin", "https://evil.example")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
		})
	})
}

func TestOpError(t *testing.T) {
	Convey("Given op-tagged errors", t, func() {
		cause := errors.New("token expired")
		err := api.WrapKind("api.get_match", api.ErrUnauthorized, cause)

		Convey("Then both kind and cause match", func() {
			So(errors.Is(err, api.ErrUnauthorized), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.get_match: unauthorized: token expired")
		})

		Convey("Then kinds and wraps read naturally", func() {
			So(api.NewKind("op", api.ErrRateLimited).Error(), ShouldEqual, "op: rate limited")
			So(api.Wrap("op", nil), ShouldBeNil)
			So(errors.Is(api.Wrap("op", repository.ErrNotFound), repository.ErrNotFound), ShouldBeTrue)
		})
	})
}
