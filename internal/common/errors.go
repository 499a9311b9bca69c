// Package common defines shared constants and sentinel errors used across
// the berbagi components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")

	// Validation errors.
	ErrInvalidLocation = errors.New("latitude and longitude must be set together")
	ErrInvalidSortKey  = errors.New("invalid sort key")
	ErrEmptyPayload    = errors.New("empty payload")

	// Auth errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrInvalidToken   = errors.New("invalid token")

	// Notification permission was denied by the user. Not retried.
	ErrPermissionDenied = errors.New("notification permission denied")

	// Cache lifecycle errors.
	ErrInstallFailed = errors.New("install failed")
	ErrNoWaiting     = errors.New("no waiting generation")
)
