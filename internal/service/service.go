// Package service implements the business layer between the HTTP
// handlers and storage.
package service

import "errors"

var (
	// ErrValidation marks rejected input; the message is safe to show to
	// the user.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden is returned when a user touches a resource they do not
	// own.
	ErrForbidden = errors.New("forbidden")

	// ErrFinalized is returned when mutating a finalized split session.
	ErrFinalized = errors.New("session is finalized")

	// ErrParseUpstream wraps failures of the external receipt parse
	// service.
	ErrParseUpstream = errors.New("receipt parse service failed")
)
