package service

import (
	"github.com/okian/psychometrician/internal/adapters/repository"
	"github.com/okian/psychometrician/internal/domain/generator"
	"github.com/okian/psychometrician/internal/domain/scoring"
	"github.com/okian/psychometrician/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the item bank. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithScorer sets the scorer used for every session.
func WithScorer(scorer scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithCompleter sets the text completer behind item generation.
func WithCompleter(c generator.Completer) Option {
	return func(s *Service) {
		if c != nil {
			s.completer = c
		}
	}
}

// WithItemQuota sets how many responses complete a session.
func WithItemQuota(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.quota = n
		}
	}
}

// WithInitialAbility sets the ability estimate sessions start from.
func WithInitialAbility(a float64) Option {
	return func(s *Service) {
		if a >= 0 && a <= 1 {
			s.initialAbility = a
		}
	}
}

// WithRandomSeed seeds fallback selection and item drafting. Zero seeds from
// the clock.
func WithRandomSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithWorkerCount sets the number of generation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the generation queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithStatusCacheSize bounds how many generation outcomes are remembered.
func WithStatusCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.statusCacheSize = size
		}
	}
}

// WithReplayCacheSize bounds how many answered tickets are remembered.
func WithReplayCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.replayCacheSize = size
		}
	}
}

// WithIDGenerator overrides how session, ticket and request ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
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
