package simulate

import (
	"time"

	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/internal/domain/scoring"
)

// Default run parameters.
const (
	DefaultSessions = 20
	DefaultTimeout  = 30 * time.Second
	DefaultPersona  = PersonaMixed
)

// Config holds configuration for a simulation run.
type Config struct {
	Targets          []string                      // Base URLs, one running server each
	Sessions         int                           // Sessions per target
	Persona          string                        // Persona name or "mixed"
	Seed             int64                         // 0 seeds from the clock
	Timeout          time.Duration                 // HTTP request timeout
	Thresholds       scoring.Thresholds            // Band thresholds the server uses
	DomainThresholds map[string]scoring.Thresholds // Per-domain overrides
	InvertedDomains  []string                      // Domains scored reverse on the server
	Verbose          bool
}

// withDefaults returns c with zero fields filled in.
func (c Config) withDefaults() Config {
	if c.Sessions <= 0 {
		c.Sessions = DefaultSessions
	}
	if c.Persona == "" {
		c.Persona = DefaultPersona
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Thresholds == (scoring.Thresholds{}) {
		c.Thresholds = scoring.DefaultThresholds()
	}
	return c
}

// thresholdsFor returns the band thresholds of domain.
func (c Config) thresholdsFor(domain string) scoring.Thresholds {
	if t, ok := c.DomainThresholds[domain]; ok {
		return t
	}
	return c.Thresholds
}

// SessionResult is one finished simulated session.
type SessionResult struct {
	Target    string
	Persona   string
	SessionID string
	Quota     int
	Answered  int
	Report    model.Report
	Duration  time.Duration
}

// Stats aggregates a simulation run.
type Stats struct {
	Sessions     int
	Responses    int
	Failed       int
	Overall      float64            // mean overall score
	DomainMeans  map[string]float64 // mean score per domain
	Bands        map[model.Band]int // band counts over all domain interpretations
	PersonaRuns  map[string]int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	sumOverall   float64
	domainSums   map[string]float64
	domainCounts map[string]int
}

func newStats() *Stats {
	return &Stats{
		DomainMeans:  make(map[string]float64),
		Bands:        make(map[model.Band]int),
		PersonaRuns:  make(map[string]int),
		StartTime:    time.Now(),
		domainSums:   make(map[string]float64),
		domainCounts: make(map[string]int),
	}
}

// add folds one session into the totals.
func (s *Stats) add(r SessionResult) {
	s.Sessions++
	s.Responses += r.Answered
	s.PersonaRuns[r.Persona]++
	s.sumOverall += r.Report.Overall
	s.Overall = s.sumOverall / float64(s.Sessions)
	for d, v := range r.Report.Domains {
		s.domainSums[d] += v
		s.domainCounts[d]++
		s.DomainMeans[d] = s.domainSums[d] / float64(s.domainCounts[d])
	}
	for _, b := range r.Report.Interpretations {
		s.Bands[b]++
	}
}

func (s *Stats) finish() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}
