package simulate

import (
	"fmt"
	"slices"

	"github.com/okian/psychometrician/internal/domain/model"
)

// verify checks the properties every finished session must hold.
func verify(cfg Config, res SessionResult, history int) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: session %s: %s", ErrVerification, res.SessionID, fmt.Sprintf(format, args...))
	}

	if res.Answered > res.Quota {
		return fail("answered %d items over a quota of %d", res.Answered, res.Quota)
	}
	if history != res.Answered {
		return fail("history has %d rows for %d answers", history, res.Answered)
	}
	if !inUnit(res.Report.Overall) {
		return fail("overall %.3f outside [0,1]", res.Report.Overall)
	}
	if len(res.Report.Domains) != len(res.Report.Interpretations) {
		return fail("%d domain scores but %d interpretations", len(res.Report.Domains), len(res.Report.Interpretations))
	}

	for d, score := range res.Report.Domains {
		if !inUnit(score) {
			return fail("domain %s score %.3f outside [0,1]", d, score)
		}
		got, ok := res.Report.Interpretations[d]
		if !ok {
			return fail("domain %s has no interpretation", d)
		}
		if want := cfg.thresholdsFor(d).Band(score); got != want {
			return fail("domain %s score %.3f banded %s, want %s", d, score, got, want)
		}
	}
	return nil
}

// checkPersona reports domains whose score disagrees with a steady persona's
// tendency. It is advisory: jitter and inversion make it soft.
func checkPersona(cfg Config, p Persona, r model.Report) []string {
	var odd []string
	for d, score := range r.Domains {
		level, ok := p.Tendency[d]
		if !ok {
			level = p.Default
		}
		if level == 0 || level == 3 {
			continue
		}
		agree := level > 3
		if slices.Contains(cfg.InvertedDomains, d) {
			agree = !agree
		}
		if agree && score < model.NeutralScore || !agree && score > model.NeutralScore {
			odd = append(odd, d)
		}
	}
	slices.Sort(odd)
	return odd
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
