package repository

import "errors"

// Sentinel kinds for item bank errors.
var (
	ErrNotFound          = errors.New("item not found")
	ErrDuplicateID       = errors.New("duplicate item id")
	ErrInvalidItem       = errors.New("invalid item")
	ErrMissingItems      = errors.New(`bank document has no "items" key`)
	ErrUnsupportedFormat = errors.New("unsupported bank file format")
	ErrNotConfigured     = errors.New("storage is not configured")
)
