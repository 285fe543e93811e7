package simulate

import "errors"

var (
	// ErrUnhealthy is returned when a target fails its health check.
	ErrUnhealthy = errors.New("simulate: target unhealthy")
	// ErrUnknownPersona is returned for a persona name that is not registered.
	ErrUnknownPersona = errors.New("simulate: unknown persona")
	// ErrVerification is returned when a finished session breaks an expected property.
	ErrVerification = errors.New("simulate: verification failed")
	// ErrStatus is returned for an unexpected HTTP status.
	ErrStatus = errors.New("simulate: unexpected status")
)
