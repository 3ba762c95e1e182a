package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrConnectorTimeout is returned when a connector exceeds its search deadline
	ErrConnectorTimeout = errors.New("connector timed out")

	// ErrConnectorFailure is returned when a connector's fetch or parse fails
	ErrConnectorFailure = errors.New("connector request failed")
)
