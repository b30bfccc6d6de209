package service

import "errors"

// Sentinel errors controllers translate to HTTP status codes. Ownership
// failures are reported as not-found so callers cannot enumerate other users'
// sessions.
var (
	ErrPackageNotFound  = errors.New("package not found or inactive")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionClosed    = errors.New("session is no longer in progress")
	ErrAlreadySubmitted = errors.New("session already submitted")
	ErrDuplicateOrder   = errors.New("duplicate question order in package")
)
