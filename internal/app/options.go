package service

import (
	workerpool "github.com/okian/skillmatch/internal/adapters/mq/worker"
	"github.com/okian/skillmatch/internal/domain/ranking"
	"github.com/okian/skillmatch/internal/domain/scoring"
	"github.com/okian/skillmatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of notification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the notification queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize enables notification dedupe with a cache of size keys.
// Zero disables it.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithScoreConcurrency bounds how many candidates are loaded and scored at once.
func WithScoreConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.scoreConcurrency = n
		}
	}
}

// WithScorer replaces the candidate scorer.
func WithScorer(scorer scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithRanker replaces the ranker.
func WithRanker(r *ranking.Ranker) Option {
	return func(s *Service) {
		if r != nil {
			s.ranker = r
		}
	}
}

// WithPublisher publishes every stored notification.
func WithPublisher(p workerpool.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithJobIDGenerator overrides notification job id generation.
func WithJobIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newJobID = fn
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
