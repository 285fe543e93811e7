package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrNotRunning     = errors.New("service not started")
	ErrBackpressure   = errors.New("generation queue is full")
	ErrUnknownRequest = errors.New("unknown generation request")
	ErrInvalidRequest = errors.New("invalid generation request")
)
