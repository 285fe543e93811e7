package cli

import "errors"

// Sentinel errors returned by the terminal driver.
var (
	ErrAborted = errors.New("assessment aborted")
)
