package generator

import "math/rand"

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithRand injects the random source used for domain and difficulty defaults.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		if r != nil {
			g.rng = r
		}
	}
}

// WithDomains replaces the domains a request without a domain is drawn from.
func WithDomains(domains ...string) Option {
	return func(g *Generator) {
		if len(domains) > 0 {
			g.domains = append([]string(nil), domains...)
		}
	}
}

// WithMaxExamples sets how many bank items are quoted in the prompt.
func WithMaxExamples(n int) Option {
	return func(g *Generator) {
		if n >= 0 {
			g.maxExamples = n
		}
	}
}
