// Package services implements the business logic behind the auth endpoints.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing envelopes and HTTP status codes is performed at the
// handler layer.
package services

import "errors"

var (
	// ErrInvalidCredentials is returned when the email/password pair does not
	// match a stored credential. Callers must not reveal which half was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned when a registration collides with an existing
	// account email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUserNotFound indicates a principal lookup for a user that no longer
	// exists.
	ErrUserNotFound = errors.New("user not found")

	// ErrStorageUnavailable is returned when the service is running degraded
	// without a reachable credential store.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
