// Package scoring converts responses into normalized scores and aggregates
// response histories into per-domain and overall reports.
package scoring

import (
	"sort"
	"strings"

	"github.com/okian/psychometrician/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultModerateThreshold = 0.3
	defaultHighThreshold     = 0.7
)

// DefaultDomain keys the fallback entry of the threshold table.
const DefaultDomain = "*"

// Thresholds are the lower bounds of the moderate and high bands.
type Thresholds struct {
	Moderate float64 `koanf:"moderate" json:"moderate"`
	High     float64 `koanf:"high" json:"high"`
}

// DefaultThresholds returns the 0.3/0.7 band bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{Moderate: defaultModerateThreshold, High: defaultHighThreshold}
}

// Band maps score onto low (< Moderate), moderate (< High) or high.
func (t Thresholds) Band(score float64) model.Band {
	switch {
	case score < t.Moderate:
		return model.BandLow
	case score < t.High:
		return model.BandModerate
	default:
		return model.BandHigh
	}
}

// valid reports whether the bounds are ordered inside [0,1].
func (t Thresholds) valid() bool {
	return t.Moderate >= 0 && t.Moderate <= t.High && t.High <= 1
}

// Scorer scores single responses and aggregates histories. Implementations
// are stateless across calls.
type Scorer interface {
	// Score returns the normalized [0,1] score of one response.
	Score(item model.Item, response model.Response) float64
	// DomainScore averages the scores of records in domain; 0.5 when none match.
	DomainScore(records []model.Record, domain string) float64
	// Report aggregates every domain seen in records.
	Report(records []model.Record) model.Report
}

// ResponseScorer implements Scorer with Likert weight tables, reverse-scoring
// of positively phrased domains, and a per-domain threshold table.
type ResponseScorer struct {
	likertWeights   map[model.ResponseType]map[model.Response]float64
	thresholds      map[string]Thresholds
	invertedDomains map[string]struct{}
	negationMarkers []string
}

// NewResponseScorer creates a scorer with configuration options.
func NewResponseScorer(opts ...Option) *ResponseScorer {
	s := &ResponseScorer{
		likertWeights: map[model.ResponseType]map[model.Response]float64{
			model.ResponseTypeLikert5: {
				"1": 0.0,
				"2": 0.25,
				"3": 0.5,
				"4": 0.75,
				"5": 1.0,
			},
		},
		thresholds:      defaultThresholdTable(),
		invertedDomains: map[string]struct{}{model.DomainSociability: {}, model.DomainConscientiousness: {}},
		negationMarkers: []string{"don't"},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func defaultThresholdTable() map[string]Thresholds {
	table := map[string]Thresholds{DefaultDomain: DefaultThresholds()}
	for _, d := range model.KnownDomains() {
		table[d] = DefaultThresholds()
	}
	return table
}

// Score computes the normalized score of a single response. It never fails:
// unrecognized Likert values and non-Likert items score 0.5.
func (s *ResponseScorer) Score(item model.Item, response model.Response) float64 {
	if !item.Type.IsLikert() {
		return model.NeutralScore
	}

	weights, ok := s.likertWeights[item.Type]
	if !ok {
		weights = s.likertWeights[model.ResponseTypeLikert5]
	}
	raw, ok := weights[response]
	if !ok {
		raw = model.NeutralScore
	}

	if s.inverts(item) {
		return 1.0 - raw
	}
	return raw
}

// inverts reports whether item is a positively phrased item that is reverse-scored.
func (s *ResponseScorer) inverts(item model.Item) bool {
	if _, ok := s.invertedDomains[item.Domain]; !ok {
		return false
	}
	text := strings.ToLower(item.Text)
	for _, marker := range s.negationMarkers {
		if strings.Contains(text, marker) {
			return false
		}
	}
	return true
}

// DomainScore averages scores of the records whose item belongs to domain.
func (s *ResponseScorer) DomainScore(records []model.Record, domain string) float64 {
	var sum float64
	var n int
	for _, r := range records {
		if r.Item.Domain != domain {
			continue
		}
		sum += s.Score(r.Item, r.Response)
		n++
	}
	if n == 0 {
		return model.NeutralScore
	}
	return sum / float64(n)
}

// Report computes domain scores for every domain present in records, their
// unweighted mean, and the band of each domain.
func (s *ResponseScorer) Report(records []model.Record) model.Report {
	report := model.NeutralReport()

	seen := make(map[string]struct{})
	for _, r := range records {
		if r.Item.HasDomain() {
			seen[r.Item.Domain] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return report
	}

	// Sum in a fixed order so repeated reports over one history are identical.
	domains := make([]string, 0, len(seen))
	for d := range seen {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	var total float64
	for _, d := range domains {
		score := s.DomainScore(records, d)
		report.Domains[d] = score
		report.Interpretations[d] = s.Interpret(d, score)
		total += score
	}
	report.Overall = total / float64(len(domains))

	return report
}

// Interpret returns the band of score in domain, falling back to the default
// threshold entry for domains without their own.
func (s *ResponseScorer) Interpret(domain string, score float64) model.Band {
	t, ok := s.thresholds[domain]
	if !ok {
		t = s.thresholds[DefaultDomain]
	}
	return t.Band(score)
}

// ThresholdsFor returns the thresholds applied to domain.
func (s *ResponseScorer) ThresholdsFor(domain string) Thresholds {
	if t, ok := s.thresholds[domain]; ok {
		return t
	}
	return s.thresholds[DefaultDomain]
}
