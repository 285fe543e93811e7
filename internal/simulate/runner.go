// Package simulate drives running questionnaire servers with simulated
// respondents and checks every finished session.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/psychometrician/pkg/logger"
)

// Run takes cfg.Sessions sessions on every target. Targets run concurrently;
// sessions on one target run one after another since a server holds a
// single active session. Transport failures stop the run; verification
// failures are counted and returned together once every session finished.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	cfg = cfg.withDefaults()
	if len(cfg.Targets) == 0 {
		return nil, errors.New("simulate: no targets")
	}
	if cfg.Persona != PersonaMixed {
		if _, err := LookupPersona(cfg.Persona); err != nil {
			return nil, err
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	log := logger.Get().Named("simulate")
	log.Info(ctx, "starting simulation",
		logger.Int("targets", len(cfg.Targets)),
		logger.Int("sessions", cfg.Sessions),
		logger.String("persona", cfg.Persona),
		logger.Duration("timeout", cfg.Timeout),
	)

	var (
		mu       sync.Mutex
		stats    = newStats()
		failures []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range cfg.Targets {
		rng := rand.New(rand.NewSource(seed + int64(i))) //nolint:gosec // simulated answers
		r := &runner{cfg: cfg, client: NewClient(target, cfg.Timeout), target: target, rng: rng, log: log}

		g.Go(func() error {
			if err := r.client.Health(gctx); err != nil {
				return err
			}
			for n := 0; n < cfg.Sessions; n++ {
				res, err := r.session(gctx, n)
				mu.Lock()
				switch {
				case errors.Is(err, ErrVerification):
					stats.Failed++
					failures = append(failures, err)
				case err == nil:
					stats.add(res)
				}
				mu.Unlock()
				if err != nil && !errors.Is(err, ErrVerification) {
					return fmt.Errorf("target %s session %d: %w", target, n+1, err)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	stats.finish()
	if err != nil {
		return stats, err
	}
	return stats, errors.Join(failures...)
}

// runner takes sessions on one target.
type runner struct {
	cfg    Config
	client *Client
	target string
	rng    *rand.Rand
	log    logger.Logger
}

// session takes one session with the n-th persona and verifies the result.
func (r *runner) session(ctx context.Context, n int) (SessionResult, error) {
	persona, err := pickPersona(r.cfg.Persona, n)
	if err != nil {
		return SessionResult{}, err
	}

	began := time.Now()
	p, err := r.client.Start(ctx)
	if err != nil {
		return SessionResult{}, fmt.Errorf("start session: %w", err)
	}

	res := SessionResult{Target: r.target, Persona: persona.Name, SessionID: p.SessionID, Quota: p.Quota}

	// A session must finish within its quota; one extra call observes an
	// exhausted bank.
	for step := 0; ; step++ {
		if step > p.Quota {
			return res, fmt.Errorf("%w: session %s still open after %d items", ErrVerification, p.SessionID, step)
		}

		sel, _, err := r.client.Next(ctx)
		if err != nil {
			return res, fmt.Errorf("next item: %w", err)
		}
		if sel == nil {
			break
		}

		out, err := r.client.Respond(ctx, sel.Ticket.ID, persona.Answer(r.rng, sel.Item.Domain))
		if err != nil {
			return res, fmt.Errorf("respond: %w", err)
		}
		res.Answered = out.Answered
		if out.Complete {
			break
		}
	}

	result, err := r.client.Report(ctx)
	if err != nil {
		return res, fmt.Errorf("report: %w", err)
	}
	res.Report = result.Report
	res.Duration = time.Since(began)

	if err := verify(r.cfg, res, len(result.History)); err != nil {
		r.log.Warn(ctx, "session failed verification", logger.String("target", r.target), logger.Error(err))
		return res, err
	}

	if odd := checkPersona(r.cfg, persona, res.Report); len(odd) > 0 {
		r.log.Debug(ctx, "scores lean against persona",
			logger.String("persona", persona.Name),
			logger.Any("domains", odd),
		)
	}
	if r.cfg.Verbose {
		r.log.Info(ctx, "session finished",
			logger.String("target", r.target),
			logger.String("session_id", res.SessionID),
			logger.String("persona", persona.Name),
			logger.Int("answered", res.Answered),
			logger.Float64("overall", res.Report.Overall),
			logger.Duration("duration", res.Duration),
		)
	}
	return res, nil
}
