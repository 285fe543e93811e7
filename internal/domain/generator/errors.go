package generator

import "errors"

// Sentinel kinds for generation errors.
var (
	ErrEmptyItem     = errors.New("completion contained no item text")
	ErrNoCompleter   = errors.New("no completer configured")
	ErrInvalidDomain = errors.New("domain must not be blank")
)
