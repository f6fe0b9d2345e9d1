package loadtest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/skillmatch/internal/adapters/identity"
	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/pkg/logger"
)

const progressInterval = time.Second

// Run checks the service health, then issues cfg.Requests match requests
// for users of the fixture, round robin, from cfg.Workers goroutines. Every
// 200 response is verified. It fails when any request failed or violated
// the ranking invariants.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	stats := Stats{StartTime: time.Now()}
	log := logger.Get().Named("loadtest")

	if cfg.Requests < 1 || cfg.Workers < 1 {
		return stats, fmt.Errorf("%w: requests and workers must be positive", ErrInvalidConfig)
	}
	verifier, err := identity.NewVerifier(cfg.Secret)
	if err != nil {
		return stats, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	fixture, err := repository.ReadFixture(cfg.Fixture)
	if err != nil {
		return stats, fmt.Errorf("read fixture: %w", err)
	}
	tokens, err := issueTokens(verifier, fixture)
	if err != nil {
		return stats, err
	}

	log.Info(ctx, "starting load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.Int("requesters", len(tokens)))

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, err
	}

	var succeeded, failed, violations, matches, done atomic.Int64
	jobs := make(chan string, cfg.Workers*2)
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for token := range jobs {
				resp, _, err := client.Match(ctx, token, cfg.Limit)
				done.Add(1)
				if err != nil {
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "match request failed", logger.Error(err))
					}
					continue
				}
				succeeded.Add(1)
				matches.Add(int64(len(resp.MatchedUsers)))
				if err := Verify(resp, cfg.Strict); err != nil {
					violations.Add(1)
					log.Error(ctx, "invalid match response", logger.Error(err))
				}
			}
		}()
	}

	stop := make(chan struct{})
	go reportProgress(ctx, log, &done, cfg.Requests, stop)

	func() {
		defer close(jobs)
		for i := range cfg.Requests {
			select {
			case <-ctx.Done():
				return
			case jobs <- tokens[i%len(tokens)]:
			}
		}
	}()
	wg.Wait()
	close(stop)

	stats.Requests = int(done.Load())
	stats.Succeeded = int(succeeded.Load())
	stats.Failed = int(failed.Load())
	stats.Violations = int(violations.Load())
	stats.Matches = int(matches.Load())
	stats.Duration = time.Since(stats.StartTime)
	logStats(ctx, log, stats)

	var errs []error
	if err := ctx.Err(); err != nil {
		errs = append(errs, fmt.Errorf("load run interrupted: %w", err))
	}
	if stats.Failed > 0 {
		errs = append(errs, fmt.Errorf("%w: %d of %d requests failed", ErrFailures, stats.Failed, stats.Requests))
	}
	if stats.Violations > 0 {
		errs = append(errs, fmt.Errorf("%w: %d responses", ErrViolation, stats.Violations))
	}
	return stats, errors.Join(errs...)
}

func issueTokens(v *identity.Verifier, f repository.Fixture) ([]string, error) {
	tokens := make([]string, 0, len(f.Users))
	for _, u := range f.Users {
		if u.Disabled {
			continue
		}
		tok, err := v.Issue(u.ID, u.Email)
		if err != nil {
			return nil, fmt.Errorf("issue token for %s: %w", u.ID, err)
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: fixture has no active users", ErrInvalidConfig)
	}
	return tokens, nil
}

func reportProgress(ctx context.Context, log logger.Logger, done *atomic.Int64, total int, stop <-chan struct{}) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			log.Info(ctx, "progress", logger.Int64("done", done.Load()), logger.Int("total", total))
		}
	}
}

func logStats(ctx context.Context, log logger.Logger, s Stats) {
	var perSecond float64
	if s.Duration > 0 {
		perSecond = float64(s.Requests) / s.Duration.Seconds()
	}
	var avgMatches float64
	if s.Succeeded > 0 {
		avgMatches = float64(s.Matches) / float64(s.Succeeded)
	}
	log.Info(ctx, "final statistics",
		logger.Int("requests", s.Requests),
		logger.Int("succeeded", s.Succeeded),
		logger.Int("failed", s.Failed),
		logger.Int("violations", s.Violations),
		logger.Float64("avgMatches", avgMatches),
		logger.Duration("duration", s.Duration),
		logger.Float64("requestsPerSecond", perSecond))
}
