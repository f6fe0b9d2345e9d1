// Package service orchestrates a match request: it loads the requester and
// every other active user, scores candidates concurrently, ranks them and
// hands the strongest matches to the notification workers.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	eventqueue "github.com/okian/skillmatch/internal/adapters/mq/queue"
	workerpool "github.com/okian/skillmatch/internal/adapters/mq/worker"
	"github.com/okian/skillmatch/internal/adapters/repository"
	"github.com/okian/skillmatch/internal/domain/dedupe"
	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/notification"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/scoring"
	"github.com/okian/skillmatch/internal/domain/suggest"
	"github.com/okian/skillmatch/internal/domain/types"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

// Notification rules for a finished match.
const (
	NotifyThreshold = 0.7
	NotifyTop       = 3
)

// Match outcomes reported to metrics.
const (
	outcomeOK          = "ok"
	outcomeNotFound    = "not_found"
	outcomeUnavailable = "store_unavailable"
	outcomeCancelled   = "cancelled"
	outcomeError       = "error"
)

// Service implements the API dependencies for the match system.
type Service struct {
	mu sync.RWMutex

	store     repository.Store
	scorer    scoring.Scorer
	ranker    *ranking.Ranker
	publisher workerpool.Publisher

	queue   *eventqueue.InMemoryQueue
	deduper dedupe.Deduper
	pool    *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	scoreConcurrency int
	newJobID         func() string

	started bool
	logger  logger.Logger
}

// New constructs a Service over store with default configuration.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:            store,
		scorer:           scoring.NewWeightedScorer(),
		ranker:           ranking.NewRanker(nil),
		workerCount:      runtime.NumCPU(),
		queueSize:        1024,
		scoreConcurrency: runtime.NumCPU() * 4,
		newJobID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start creates the notification queue and starts its workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return errors.New("service: nil store")
	}

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))

	workerOpts := []workerpool.Option{}
	if s.dedupeSize > 0 {
		s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
		workerOpts = append(workerOpts, workerpool.WithDeduper(s.deduper))
	}
	if s.publisher != nil {
		workerOpts = append(workerOpts, workerpool.WithPublisher(s.publisher))
	}
	s.pool = workerpool.NewPool(s.workerCount, s.queue, notification.NewCreator(s.store), workerOpts...)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "match service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("scoreConcurrency", s.scoreConcurrency),
		logger.String("rankingPolicy", s.ranker.Policy().Name()),
	)
	return nil
}

// Stop drains pending notifications and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping match service...")

	err := s.pool.Shutdown(ctx)
	s.started = false
	if err != nil {
		return fmt.Errorf("stop workers: %w", err)
	}
	s.logger.Info(ctx, "match service stopped")
	return nil
}

// Match ranks the active users that complement the requester.
func (s *Service) Match(ctx context.Context, req types.MatchRequest) (types.MatchResponse, error) {
	start := time.Now()
	resp, err := s.match(ctx, req)
	metrics.RecordMatchLatency(float64(time.Since(start).Milliseconds()))

	switch {
	case err == nil:
		metrics.RecordMatchRequest(outcomeOK)
		metrics.RecordMatchResults(resp.Total)
	case errors.Is(err, repository.ErrNotFound):
		metrics.RecordMatchRequest(outcomeNotFound)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		metrics.RecordMatchRequest(outcomeCancelled)
	case errors.Is(err, repository.ErrStoreUnavailable):
		metrics.RecordMatchRequest(outcomeUnavailable)
	default:
		metrics.RecordMatchRequest(outcomeError)
	}
	return resp, err
}

func (s *Service) match(ctx context.Context, req types.MatchRequest) (types.MatchResponse, error) {
	filters := types.FiltersOf(req)

	requester, err := s.store.FindUser(ctx, req.RequesterID)
	if err != nil {
		return types.MatchResponse{}, fmt.Errorf("load requester %s: %w", req.RequesterID, err)
	}
	offered, needed, err := s.skillsOf(ctx, requester.ID)
	if err != nil {
		return types.MatchResponse{}, fmt.Errorf("load requester skills: %w", err)
	}
	users, err := s.store.FindActiveUsers(ctx, requester.ID)
	if err != nil {
		return types.MatchResponse{}, fmt.Errorf("load candidates: %w", err)
	}

	candidates, err := s.scoreAll(ctx, requester, offered, needed, users)
	if err != nil {
		return types.MatchResponse{}, err
	}

	ranked := s.ranker.Rank(candidates, ranking.Filters{
		Category: filters.Category,
		Level:    filters.Level,
		Location: filters.Location,
	}, filters.Limit)

	s.notify(ctx, requester.ID, ranked)

	s.logger.Debug(ctx, "match computed",
		logger.String("requester", requester.ID),
		logger.Int("candidates", len(users)),
		logger.Int("matches", len(ranked)),
	)

	return types.MatchResponse{
		MatchedUsers: ranked,
		Total:        len(ranked),
		Filters:      filters,
		Suggestions: suggest.For(suggest.Input{
			Requester:     requester,
			OfferedSkills: len(offered),
			NeededSkills:  len(needed),
			Matches:       len(ranked),
		}),
	}, nil
}

// skillsOf loads the active offered and needed skills of a user.
func (s *Service) skillsOf(ctx context.Context, userID string) (offered, needed []model.Skill, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		offered, err = s.store.FindSkills(gctx, userID, model.DirectionOffering, true)
		return err
	})
	g.Go(func() error {
		var err error
		needed, err = s.store.FindSkills(gctx, userID, model.DirectionLearning, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return offered, needed, nil
}

// scoreAll scores every user with bounded concurrency. Results keep the
// order of users so ranking ties are stable.
func (s *Service) scoreAll(
	ctx context.Context,
	requester model.User,
	offered, needed []model.Skill,
	users []model.User,
) ([]model.MatchCandidate, error) {
	results := make([]model.MatchCandidate, len(users))

	g, gctx := errgroup.WithContext(ctx)
	if s.scoreConcurrency > 0 {
		g.SetLimit(s.scoreConcurrency)
	}
	for i, u := range users {
		g.Go(func() error {
			start := time.Now()
			candOffered, candNeeded, err := s.skillsOf(gctx, u.ID)
			if err != nil {
				return fmt.Errorf("load skills of %s: %w", u.ID, err)
			}
			c, err := s.scorer.Score(gctx, scoring.Input{
				Requester:        requester,
				RequesterOffered: offered,
				RequesterNeeded:  needed,
				Candidate:        u,
				CandidateOffered: candOffered,
				CandidateNeeded:  candNeeded,
			})
			if err != nil {
				return fmt.Errorf("score %s: %w", u.ID, err)
			}
			results[i] = c
			metrics.RecordCandidateScored(float64(time.Since(start).Milliseconds()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// notify enqueues a skill_match notice to the requester for each of the top
// ranked candidates above NotifyThreshold. Jobs that do not fit are dropped.
func (s *Service) notify(ctx context.Context, requesterID string, ranked []model.MatchCandidate) {
	s.mu.RLock()
	q := s.queue
	started := s.started
	s.mu.RUnlock()
	if !started {
		return
	}

	sent := 0
	for _, c := range ranked {
		if sent == NotifyTop {
			break
		}
		if c.TotalScore <= NotifyThreshold {
			continue
		}
		sent++

		job := model.NotificationJob{
			JobID:     s.newJobID(),
			Template:  notification.TemplateSkillMatch,
			Recipient: requesterID,
			Variables: map[string]string{"matchName": c.User.Name},
			Data: model.NotificationData{
				UserID:   c.User.ID,
				Metadata: map[string]any{"score": c.TotalScore},
			},
			ActionURL: "/users/" + c.User.ID,
			Priority:  model.PriorityNormal,
			DedupeKey: dedupe.Key(requesterID, c.User.ID),
		}
		if !q.TryEnqueue(ctx, job) {
			s.logger.Warn(ctx, "notification dropped",
				logger.String("recipient", requesterID),
				logger.String("match", c.User.ID),
			)
		}
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":          s.started,
		"workerCount":      s.workerCount,
		"queueSize":        s.queueSize,
		"dedupeSize":       s.dedupeSize,
		"scoreConcurrency": s.scoreConcurrency,
		"rankingPolicy":    s.ranker.Policy().Name(),
	}

	if s.started {
		queueLen := s.queue.Len()
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen)
		if s.deduper != nil {
			stats["dedupeEntries"] = s.deduper.Size()
		}
	}
	return stats
}
