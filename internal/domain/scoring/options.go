package scoring

import (
	"strings"

	"github.com/okian/psychometrician/internal/domain/model"
)

// Option applies a configuration option to the ResponseScorer.
type Option func(*ResponseScorer)

// WithDefaultThresholds replaces the fallback thresholds used for domains
// without their own entry. Unordered bounds are ignored.
func WithDefaultThresholds(t Thresholds) Option {
	return func(s *ResponseScorer) {
		if t.valid() {
			s.thresholds[DefaultDomain] = t
		}
	}
}

// WithDomainThresholdsFromConfig sets per-domain thresholds from a
// configuration map. Entries with unordered bounds are skipped.
func WithDomainThresholdsFromConfig(table map[string]Thresholds) Option {
	return func(s *ResponseScorer) {
		for domain, t := range table {
			domain = strings.TrimSpace(domain)
			if domain == "" || !t.valid() {
				continue
			}
			s.thresholds[domain] = t
		}
	}
}

// WithInvertedDomains replaces the set of reverse-scored domains.
func WithInvertedDomains(domains ...string) Option {
	return func(s *ResponseScorer) {
		s.invertedDomains = make(map[string]struct{}, len(domains))
		for _, d := range domains {
			if d = strings.TrimSpace(d); d != "" {
				s.invertedDomains[d] = struct{}{}
			}
		}
	}
}

// WithNegationMarkers replaces the markers that suppress reverse-scoring.
// Markers match case-insensitively.
func WithNegationMarkers(markers ...string) Option {
	return func(s *ResponseScorer) {
		s.negationMarkers = make([]string, 0, len(markers))
		for _, m := range markers {
			if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
				s.negationMarkers = append(s.negationMarkers, m)
			}
		}
	}
}

// WithLikertWeights registers a weight table for a Likert-family type.
func WithLikertWeights(t model.ResponseType, weights map[model.Response]float64) Option {
	return func(s *ResponseScorer) {
		if !t.IsLikert() || len(weights) == 0 {
			return
		}
		table := make(map[model.Response]float64, len(weights))
		for r, w := range weights {
			if w < 0 || w > 1 {
				continue
			}
			table[r] = w
		}
		s.likertWeights[t] = table
	}
}
