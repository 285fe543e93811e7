package metrics

import "errors"

// ErrUnknownPath is returned by RecordSelection for a path label outside
// adaptive, fallback and random.
var ErrUnknownPath = errors.New("metrics: unknown selection path")
