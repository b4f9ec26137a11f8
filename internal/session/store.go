// Package session manages server-side session records and the signed cookie
// token that associates a client with its record.
//
// A session exists independently of authentication: every client gets an
// anonymous record on first contact, and the record is upgraded in place when
// a login succeeds (Attach) or downgraded on logout (Detach). Expired records
// are indistinguishable from missing ones at the API surface: callers get
// ErrExpired and mint a fresh session, exactly as if the client had arrived
// with no cookie at all.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/globetrotter-app/go-trip-gateway/internal/domain"
)

var (
	// ErrNotFound is returned when no record exists for the presented id.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when the record exists but is past its expiry.
	// The store deletes the record before returning this.
	ErrExpired = errors.New("session expired")
)

// Store is the server-side session capability consumed by the session
// middleware and the auth handlers. The backing implementation (in-memory or
// database-backed) is swappable without touching the pipeline.
//
// Implementations must be safe for concurrent use, and Create must never
// return a record whose id collides with a live one; minting is the only
// way a record comes into existence, so two requests racing on the same
// absent cookie always end up with two distinct fresh sessions rather than
// fighting over one id.
type Store interface {
	// Create mints a fresh anonymous session expiring at expiresAt.
	Create(ctx context.Context, expiresAt time.Time) (*domain.Session, error)

	// Get loads the record for id, validating expiry against now.
	Get(ctx context.Context, id string, now time.Time) (*domain.Session, error)

	// Attach sets the user on an existing session (login).
	Attach(ctx context.Context, id, userID string) error

	// Detach clears the user from an existing session (logout). The session
	// itself survives as anonymous.
	Detach(ctx context.Context, id string) error

	// Invalidate removes the record entirely.
	Invalidate(ctx context.Context, id string) error

	// DeleteExpired reclaims records past their expiry and reports how many
	// were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
