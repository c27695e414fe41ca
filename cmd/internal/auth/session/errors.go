package session

import "errors"

var (
	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")

	// ErrInvalidSubject is returned when Issue is called without an id or username.
	ErrInvalidSubject = errors.New("invalid session subject")
)
