// Package cli drives a questionnaire session from the terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	service "github.com/okian/psychometrician/internal/app"
	"github.com/okian/psychometrician/internal/domain/adaptive"
	"github.com/okian/psychometrician/internal/domain/model"
	"github.com/okian/psychometrician/pkg/logger"
)

// Session is the part of the service a terminal session needs.
type Session interface {
	StartSession(ctx context.Context) (service.Progress, error)
	Next(ctx context.Context) (adaptive.Selection, error)
	Respond(ctx context.Context, ticketID string, response model.Response) (service.Outcome, error)
	Report(ctx context.Context) (service.Result, error)
}

// Driver runs sessions interactively until the respondent stops.
type Driver struct {
	session  Session
	prompter Prompter
	out      io.Writer
	color    bool
	repeat   bool
	logger   logger.Logger
}

// NewDriver creates a terminal driver over session.
func NewDriver(session Session, opts ...Option) *Driver {
	d := &Driver{
		session: session,
		out:     os.Stdout,
		color:   true,
		repeat:  true,
		logger:  logger.Get().Named("cli"),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.prompter == nil {
		d.prompter = NewTerminalPrompter(nil, nil)
	}
	return d
}

// Run takes sessions until the respondent declines another one. An
// interrupted prompt ends the run without error.
func (d *Driver) Run(ctx context.Context) error {
	render := NewRenderer(d.out, d.color)
	for {
		res, err := d.take(ctx, render)
		if errors.Is(err, ErrAborted) {
			fmt.Fprintln(d.out, "\nAssessment stopped.")
			return nil
		}
		if err != nil {
			return err
		}
		render.Result(res)

		if !d.repeat {
			return nil
		}
		again, err := d.prompter.Confirm("Take the assessment again")
		if err != nil && !errors.Is(err, ErrAborted) {
			return err
		}
		if !again {
			return nil
		}
	}
}

// take runs one session to completion and returns its result.
func (d *Driver) take(ctx context.Context, render *Renderer) (service.Result, error) {
	p, err := d.session.StartSession(ctx)
	if err != nil {
		return service.Result{}, fmt.Errorf("start session: %w", err)
	}
	d.logger.Debug(ctx, "terminal session started", logger.String("session_id", p.SessionID))

	for p.State != adaptive.StateComplete.String() {
		if err := ctx.Err(); err != nil {
			return service.Result{}, err
		}

		sel, err := d.session.Next(ctx)
		if errors.Is(err, adaptive.ErrBankExhausted) {
			break
		}
		if err != nil {
			return service.Result{}, fmt.Errorf("next item: %w", err)
		}

		render.Question(sel, p)
		answer, err := d.prompter.Likert(sel.Item.Text)
		if err != nil {
			return service.Result{}, err
		}

		out, err := d.session.Respond(ctx, sel.Ticket.ID, answer)
		if err != nil {
			return service.Result{}, fmt.Errorf("record answer: %w", err)
		}
		p.Answered = out.Answered
		p.QuestionNumber = out.Answered + 1
		p.Fraction = float64(out.Answered) / float64(p.Quota)
		p.State = out.State
	}

	return d.session.Report(ctx)
}
