package cli

import (
	"io"

	"github.com/okian/psychometrician/pkg/logger"
)

// Option applies a configuration option to the Driver.
type Option func(*Driver)

// WithPrompter sets how answers are collected.
func WithPrompter(p Prompter) Option {
	return func(d *Driver) {
		if p != nil {
			d.prompter = p
		}
	}
}

// WithOutput sets where questions and reports are written.
func WithOutput(w io.Writer) Option {
	return func(d *Driver) {
		if w != nil {
			d.out = w
		}
	}
}

// WithColor turns colored output on or off.
func WithColor(enabled bool) Option {
	return func(d *Driver) {
		d.color = enabled
	}
}

// WithRepeat controls whether the respondent is offered another session.
func WithRepeat(enabled bool) Option {
	return func(d *Driver) {
		d.repeat = enabled
	}
}

// WithLogger sets a custom logger for the driver.
func WithLogger(logger logger.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}
