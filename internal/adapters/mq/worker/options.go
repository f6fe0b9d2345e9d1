package worker

import (
	"github.com/okian/skillmatch/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDeduper skips jobs whose dedupe key was already processed.
func WithDeduper(d Deduper) Option {
	return func(w *InMemoryWorker) {
		w.deduper = d
	}
}

// WithPublisher publishes every stored notification.
func WithPublisher(p Publisher) Option {
	return func(w *InMemoryWorker) {
		w.publisher = p
	}
}
