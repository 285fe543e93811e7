package adaptive

import "errors"

// Sentinel kinds for controller errors.
var (
	ErrNotStarted      = errors.New("session not started")
	ErrSessionComplete = errors.New("session complete")
	ErrBankExhausted   = errors.New("item bank exhausted")
	ErrNoPendingItem   = errors.New("no item pending a response")
	ErrTicketMismatch  = errors.New("ticket does not match the pending item")
)
