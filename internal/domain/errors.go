package domain

import "errors"

// Sentinel errors shared across services. Controllers map these to HTTP
// statuses; services wrap any other failure with fmt.Errorf("...: %w", err).
var (
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
