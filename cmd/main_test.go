package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/skillmatch/internal/adapters/identity"
	"github.com/okian/skillmatch/internal/adapters/repository"
	app "github.com/okian/skillmatch/internal/app"
	"github.com/okian/skillmatch/internal/config"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/scoring"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

const seed = `{
  "users": [
    {"id": "u1", "name": "Rui", "location": {"city": "Lisbon", "country": "Portugal"}},
    {"id": "u2", "name": "Ana", "location": {"city": "Lisbon", "country": "Portugal"}}
  ],
  "skills": [
    {"id": "s1", "ownerId": "u1", "title": "Spanish", "category": "Language Learning", "level": "Beginner", "direction": "learning", "active": true},
    {"id": "s2", "ownerId": "u2", "title": "Spanish", "category": "Language Learning", "level": "Advanced", "direction": "Offering", "active": true}
  ]
}`

func testConfig() *config.Config {
	cfg := config.New(context.Background())
	cfg.JWTSecret = "s3cret"
	cfg.AvailabilityJitter = false
	return cfg
}

func TestOpenStore(t *testing.T) {
	_ = logger.Init()

	convey.Convey("Given a memory store configuration", t, func() {
		ctx := context.Background()
		cfg := testConfig()

		convey.Convey("When a seed file is configured", func() {
			cfg.SeedFile = filepath.Join(t.TempDir(), "seed.json")
			convey.So(os.WriteFile(cfg.SeedFile, []byte(seed), 0o600), convey.ShouldBeNil)

			store, err := openStore(ctx, cfg)

			convey.Convey("Then the fixture is loaded", func() {
				convey.So(err, convey.ShouldBeNil)
				u, err := store.FindUser(ctx, "u2")
				convey.So(err, convey.ShouldBeNil)
				convey.So(u.Name, convey.ShouldEqual, "Ana")
				skills, err := store.FindSkills(ctx, "u1", model.DirectionLearning, true)
				convey.So(err, convey.ShouldBeNil)
				convey.So(skills, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When the seed file is missing", func() {
			cfg.SeedFile = filepath.Join(t.TempDir(), "missing.json")
			_, err := openStore(ctx, cfg)
			convey.So(errors.Is(err, repository.ErrInvalidFixture), convey.ShouldBeTrue)
		})

		convey.Convey("When the driver is unknown", func() {
			cfg.StoreDriver = "cassandra"
			_, err := openStore(ctx, cfg)
			convey.So(errors.Is(err, repository.ErrUnknownDriver), convey.ShouldBeTrue)
		})
	})
}

func TestNewScorer(t *testing.T) {
	convey.Convey("Given a scorer built without jitter", t, func() {
		scorer := newScorer(testConfig())
		in := scoring.Input{
			Requester: model.User{ID: "a"},
			Candidate: model.User{ID: "b", Preferences: model.Preferences{AvailableForMentoring: true}},
		}

		convey.Convey("Then scores repeat exactly", func() {
			first, err := scorer.Score(context.Background(), in)
			convey.So(err, convey.ShouldBeNil)
			second, _ := scorer.Score(context.Background(), in)
			convey.So(first.TotalScore, convey.ShouldEqual, second.TotalScore)
			f, _ := first.Factor(scoring.FactorAvailability)
			convey.So(f.Score, convey.ShouldEqual, 0.5)
		})
	})
}

func TestBuildHandler(t *testing.T) {
	_ = logger.Init()

	convey.Convey("Given the full HTTP handler over a seeded store", t, func() {
		ctx := context.Background()
		cfg := testConfig()
		cfg.SeedFile = filepath.Join(t.TempDir(), "seed.json")
		convey.So(os.WriteFile(cfg.SeedFile, []byte(seed), 0o600), convey.ShouldBeNil)

		store, err := openStore(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		svc := app.New(store, app.WithScorer(newScorer(cfg)))
		verifier, err := identity.NewVerifier(cfg.JWTSecret)
		convey.So(err, convey.ShouldBeNil)

		h := buildHandler(ctx, cfg, svc, verifier, nil)

		serve := func(target, token string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			return w
		}

		convey.Convey("Then operational routes respond", func() {
			for _, path := range []string{"/healthz", "/stats", "/metrics", "/openapi.yaml", "/api-docs"} {
				convey.So(serve(path, "").Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then /match requires a token", func() {
			convey.So(serve("/match", "").Code, convey.ShouldEqual, http.StatusUnauthorized)
		})

		convey.Convey("Then an authenticated requester gets the Spanish tutor", func() {
			token, _ := verifier.Issue("u1", "")
			w := serve("/match", token)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `"id":"u2"`)
		})

		convey.Convey("Then an unknown requester is not found", func() {
			token, _ := verifier.Issue("ghost", "")
			convey.So(serve("/match", token).Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMetricsConfiguration(t *testing.T) {
	_ = logger.Init()

	convey.Convey("Given metrics settings with a custom namespace", t, func() {
		cfg := testConfig()
		cfg.MetricsNamespace = "exchange"
		cfg.MetricsSubsystem = "api"
		cfg.MetricsLabels = map[string]string{"region": "eu"}
		cfg.MetricsRefreshInterval = 3 * time.Second
		defer metrics.Configure(metricsOptions(testConfig())...)

		metrics.Configure(metricsOptions(cfg)...)
		store := repository.NewMemoryStore()
		svc := app.New(store)
		verifier, err := identity.NewVerifier(cfg.JWTSecret)
		convey.So(err, convey.ShouldBeNil)
		h := buildHandler(context.Background(), cfg, svc, verifier, nil)

		convey.Convey("Then /metrics exposes collectors under that namespace", func() {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `exchange_api_candidates_scored_total{region="eu"}`)
			convey.So(w.Body.String(), convey.ShouldNotContainSubstring, "skillmatch_candidates_scored_total")
		})

		convey.Convey("Then the updaters use the configured interval", func() {
			convey.So(metrics.RefreshInterval(), convey.ShouldEqual, 3*time.Second)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	_ = logger.Init()

	convey.Convey("Given the metrics updaters", t, func() {
		convey.Convey("Then system metrics update without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})

		convey.Convey("Then the updater loops stop with their context", func() {
			svc := app.New(repository.NewMemoryStore())
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
				startServiceMetricsUpdater(ctx, svc)
				updateServiceMetrics(svc)
			}, convey.ShouldNotPanic)
		})
	})
}
