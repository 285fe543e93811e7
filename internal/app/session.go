package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/okian/psychometrician/internal/domain/adaptive"
	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/pkg/logger"
	"github.com/okian/psychometrician/pkg/metrics"
)

// Ticket rejection reasons reported to metrics.
const (
	rejectMismatch   = "mismatch"
	rejectNoPending  = "no_pending"
	rejectComplete   = "complete"
	rejectNotStarted = "not_started"
)

// Progress describes where the active session stands.
type Progress struct {
	SessionID      string              `json:"session_id,omitempty"`
	State          string              `json:"state"`
	Answered       int                 `json:"answered"`
	Quota          int                 `json:"quota"`
	QuestionNumber int                 `json:"question_number"`
	Fraction       float64             `json:"progress"`
	Ability        float64             `json:"ability"`
	BankSize       int                 `json:"bank_size"`
	Pending        *adaptive.Selection `json:"pending,omitempty"`
}

// Outcome is the result of submitting a response.
type Outcome struct {
	Report    model.Report `json:"report"`
	State     string       `json:"state"`
	Answered  int          `json:"answered"`
	Complete  bool         `json:"complete"`
	Duplicate bool         `json:"duplicate"`
}

// HistoryRow is one answered item as shown on the result view.
type HistoryRow struct {
	Sequence      int            `json:"sequence"`
	ItemID        int            `json:"item_id"`
	Question      string         `json:"question"`
	Domain        string         `json:"domain,omitempty"`
	DomainName    string         `json:"domain_name"`
	Response      model.Response `json:"response"`
	ResponseLabel string         `json:"response_label"`
	Score         float64        `json:"score"`
}

// Result is the report of the active session with its response history.
type Result struct {
	SessionID string       `json:"session_id,omitempty"`
	State     string       `json:"state"`
	Report    model.Report `json:"report"`
	History   []HistoryRow `json:"history"`
}

// StartSession discards any active session and starts a fresh one over the
// current bank. Items added later join the following session.
func (s *Service) StartSession(ctx context.Context) (Progress, error) {
	ctx, span := s.tracer.Start(ctx, "service.StartSession")
	defer span.End()

	if !s.running() {
		return Progress{}, fail(span, ErrNotRunning)
	}

	bank, err := s.store.All(ctx)
	if err != nil {
		return Progress{}, fail(span, fmt.Errorf("snapshot bank: %w", err))
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	restarted := s.controller != nil && s.controller.State() == adaptive.StateInProgress

	c := adaptive.New(bank,
		adaptive.WithScorer(s.scorer),
		adaptive.WithQuota(s.quota),
		adaptive.WithInitialAbility(s.initialAbility),
		adaptive.WithRand(s.rng),
		adaptive.WithIDGenerator(s.newID),
	)
	c.Start()
	s.controller = c
	s.replay.Reset(ctx)

	metrics.RecordSessionStarted()
	metrics.UpdateAbility(c.Ability())

	span.SetAttributes(
		attribute.String("session.id", c.SessionID()),
		attribute.Int("bank.size", c.BankSize()),
		attribute.Bool("session.restarted", restarted),
	)
	s.logger.Info(ctx, "session started",
		logger.String("session_id", c.SessionID()),
		logger.Int("bank_size", c.BankSize()),
		logger.Int("domains", len(c.Domains())),
		logger.Bool("restarted", restarted),
	)

	return s.progress(), nil
}

// Session returns the progress of the active session. Before the first
// StartSession it reports the not_started state.
func (s *Service) Session(_ context.Context) (Progress, error) {
	if !s.running() {
		return Progress{}, ErrNotRunning
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	return s.progress(), nil
}

// progress must be called with sessionMu held.
func (s *Service) progress() Progress {
	if s.controller == nil {
		return Progress{
			State:          adaptive.StateNotStarted.String(),
			Quota:          s.quota,
			QuestionNumber: 1,
			Ability:        s.initialAbility,
		}
	}

	c := s.controller
	p := Progress{
		SessionID:      c.SessionID(),
		State:          c.State().String(),
		Answered:       c.Answered(),
		Quota:          c.Quota(),
		QuestionNumber: c.Answered() + 1,
		Fraction:       float64(c.Answered()) / float64(c.Quota()),
		Ability:        c.Ability(),
		BankSize:       c.BankSize(),
	}
	if p.Fraction > 1 {
		p.Fraction = 1
	}
	if sel, ok := c.Pending(); ok {
		p.Pending = &sel
	}
	return p
}

// Next issues the next item of the active session. Calling it again before
// responding returns the same ticket. adaptive.ErrBankExhausted means the
// session completed because every item was answered.
func (s *Service) Next(ctx context.Context) (adaptive.Selection, error) {
	ctx, span := s.tracer.Start(ctx, "service.Next")
	defer span.End()

	if !s.running() {
		return adaptive.Selection{}, fail(span, ErrNotRunning)
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	c := s.controller
	if c == nil {
		return adaptive.Selection{}, fail(span, adaptive.ErrNotStarted)
	}

	_, reissued := c.Pending()
	sel, err := c.Next()
	if errors.Is(err, adaptive.ErrBankExhausted) {
		s.complete(ctx, c)
		return adaptive.Selection{}, fail(span, err)
	}
	if err != nil {
		return adaptive.Selection{}, fail(span, err)
	}

	if !reissued {
		if err := metrics.RecordSelection(string(sel.Path)); err != nil {
			s.logger.Warn(ctx, "unrecorded selection path", logger.String("path", string(sel.Path)), logger.Error(err))
		}
	}

	span.SetAttributes(
		attribute.String("ticket.id", sel.Ticket.ID),
		attribute.Int("item.id", sel.Item.ID),
		attribute.String("selection.path", string(sel.Path)),
		attribute.Bool("ticket.reissued", reissued),
	)
	s.logger.Debug(ctx, "item issued",
		logger.String("session_id", c.SessionID()),
		logger.String("ticket_id", sel.Ticket.ID),
		logger.Int("item_id", sel.Item.ID),
		logger.String("domain", sel.Domain),
		logger.String("path", string(sel.Path)),
		logger.Float64("target_ability", sel.TargetAbility),
		logger.Bool("reissued", reissued),
	)

	return sel, nil
}

// Respond records response for the item issued with ticketID. Re-submitting
// a ticket that was already recorded returns the current report flagged as
// a duplicate instead of an error.
func (s *Service) Respond(ctx context.Context, ticketID string, response model.Response) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "service.Respond")
	defer span.End()
	span.SetAttributes(attribute.String("ticket.id", ticketID))

	if !s.running() {
		return Outcome{}, fail(span, ErrNotRunning)
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	c := s.controller
	if c == nil {
		metrics.RecordTicketRejected(rejectNotStarted)
		return Outcome{}, fail(span, adaptive.ErrNotStarted)
	}

	report, err := c.Record(ticketID, response)
	if err != nil {
		if s.isReplay(ctx, ticketID) {
			metrics.RecordResponseDuplicate()
			span.SetAttributes(attribute.Bool("response.duplicate", true))
			s.logger.Debug(ctx, "replayed ticket acknowledged", logger.String("ticket_id", ticketID))
			return s.outcome(c, c.Report(), true), nil
		}
		metrics.RecordTicketRejected(rejectReason(err))
		s.logger.Warn(ctx, "response rejected",
			logger.String("session_id", c.SessionID()),
			logger.String("ticket_id", ticketID),
			logger.Error(err),
		)
		return Outcome{}, fail(span, err)
	}

	s.replay.SeenAndRecord(ctx, ticketID)
	metrics.RecordResponseRecorded()
	metrics.UpdateAbility(c.Ability())

	s.logger.Info(ctx, "response recorded",
		logger.String("session_id", c.SessionID()),
		logger.Int("answered", c.Answered()),
		logger.Int("quota", c.Quota()),
		logger.Float64("ability", c.Ability()),
	)

	if c.State() == adaptive.StateComplete {
		s.complete(ctx, c)
	}

	return s.outcome(c, report, false), nil
}

// isReplay reports whether ticketID was already recorded in this session.
func (s *Service) isReplay(ctx context.Context, ticketID string) bool {
	if ticketID == "" {
		return false
	}
	return s.replay.Seen(ctx, ticketID)
}

func (s *Service) outcome(c *adaptive.Controller, report model.Report, duplicate bool) Outcome {
	return Outcome{
		Report:    report,
		State:     c.State().String(),
		Answered:  c.Answered(),
		Complete:  c.State() == adaptive.StateComplete,
		Duplicate: duplicate,
	}
}

// complete publishes the final report of c.
func (s *Service) complete(ctx context.Context, c *adaptive.Controller) {
	report := c.Report()
	metrics.RecordSessionCompleted(report.Domains)
	s.logger.Info(ctx, "session complete",
		logger.String("session_id", c.SessionID()),
		logger.Int("answered", c.Answered()),
		logger.Float64("overall", report.Overall),
	)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, adaptive.ErrTicketMismatch):
		return rejectMismatch
	case errors.Is(err, adaptive.ErrNoPendingItem):
		return rejectNoPending
	case errors.Is(err, adaptive.ErrSessionComplete):
		return rejectComplete
	default:
		return rejectNotStarted
	}
}

// Report returns the latest report of the active session with one history
// row per answered item.
func (s *Service) Report(_ context.Context) (Result, error) {
	if !s.running() {
		return Result{}, ErrNotRunning
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	c := s.controller
	if c == nil {
		return Result{}, adaptive.ErrNotStarted
	}

	history := c.History()
	rows := make([]HistoryRow, 0, len(history))
	for i, r := range history {
		rows = append(rows, HistoryRow{
			Sequence:      i + 1,
			ItemID:        r.Item.ID,
			Question:      r.Item.Text,
			Domain:        r.Item.Domain,
			DomainName:    model.DisplayName(r.Item.Domain),
			Response:      r.Response,
			ResponseLabel: r.Response.Label(),
			Score:         s.scorer.Score(r.Item, r.Response),
		})
	}

	return Result{
		SessionID: c.SessionID(),
		State:     c.State().String(),
		Report:    c.Report(),
		History:   rows,
	}, nil
}
