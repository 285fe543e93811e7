package adaptive

import (
	"math/rand"

	"github.com/okian/psychometrician/internal/domain/scoring"
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithScorer sets the live scorer used for reports and domain ability lookups.
func WithScorer(s scoring.Scorer) Option {
	return func(c *Controller) {
		if s != nil {
			c.scorer = s
		}
	}
}

// WithQuota sets how many responses complete a session.
func WithQuota(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.quota = n
		}
	}
}

// WithInitialAbility sets the ability estimate a session starts from.
func WithInitialAbility(a float64) Option {
	return func(c *Controller) {
		if a >= 0 && a <= 1 {
			c.initialAbility = a
		}
	}
}

// WithRand injects the random source used by fallback selection.
func WithRand(r *rand.Rand) Option {
	return func(c *Controller) {
		if r != nil {
			c.rng = r
		}
	}
}

// WithSeed seeds the fallback random source.
func WithSeed(seed int64) Option {
	return func(c *Controller) {
		c.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // selection does not need crypto randomness
	}
}

// WithIDGenerator overrides how session and ticket ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}
