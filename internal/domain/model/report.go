package model

import "sort"

// Band is a qualitative interpretation of a domain score.
type Band string

// Interpretation bands.
const (
	BandLow      Band = "low"
	BandModerate Band = "moderate"
	BandHigh     Band = "high"
)

// NeutralScore is the score used whenever there is nothing to average.
const NeutralScore = 0.5

// Report is the aggregated score of a response history. A Report is a value:
// it is recomputed, never updated in place.
type Report struct {
	Overall         float64            `json:"overall"`
	Domains         map[string]float64 `json:"domains"`
	Interpretations map[string]Band    `json:"interpretations"`
}

// NeutralReport is the report of an empty history.
func NeutralReport() Report {
	return Report{
		Overall:         NeutralScore,
		Domains:         map[string]float64{},
		Interpretations: map[string]Band{},
	}
}

// SortedDomains returns the report's domains in lexical order.
func (r Report) SortedDomains() []string {
	out := make([]string, 0, len(r.Domains))
	for d := range r.Domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Clone returns a deep copy of r.
func (r Report) Clone() Report {
	c := Report{
		Overall:         r.Overall,
		Domains:         make(map[string]float64, len(r.Domains)),
		Interpretations: make(map[string]Band, len(r.Interpretations)),
	}
	for k, v := range r.Domains {
		c.Domains[k] = v
	}
	for k, v := range r.Interpretations {
		c.Interpretations[k] = v
	}
	return c
}
