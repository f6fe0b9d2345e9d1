package scoring

import "time"

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithJitter sets the availability jitter source. A nil source disables jitter.
func WithJitter(j Jitter) Option {
	return func(s *WeightedScorer) {
		if j == nil {
			j = NoJitter{}
		}
		s.jitter = j
	}
}

// WithClock sets the clock used to age activity.
func WithClock(now func() time.Time) Option {
	return func(s *WeightedScorer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSimilarity replaces the title similarity function.
func WithSimilarity(fn func(a, b string) float64) Option {
	return func(s *WeightedScorer) {
		if fn != nil {
			s.similarity = fn
		}
	}
}
