// Package middleware contains the gateway's Gin middleware pipeline stages.
//
// This file implements the session stage: the state machine that guarantees
// every request reaches the router in exactly one of three states: no
// session (store unreachable), anonymous session, or authenticated session.
//
// A request presenting no cookie, a tampered cookie, or an expired session
// is transparently given a freshly minted anonymous session and a new signed
// cookie; it is never an error. A request presenting a live authenticated
// session additionally gets its Principal resolved and attached for the
// remainder of the pipeline.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/globetrotter-app/go-trip-gateway/internal/config"
	"github.com/globetrotter-app/go-trip-gateway/internal/domain"
	"github.com/globetrotter-app/go-trip-gateway/internal/session"
)

// Context keys for session state. Unexported; use the accessor helpers.
const (
	ctxKeySession   = "session"
	ctxKeyPrincipal = "principal"
)

// PrincipalResolver turns a stored user id into a Principal. Implemented by
// services.AuthService.
type PrincipalResolver interface {
	Resolve(ctx context.Context, userID string) (*domain.Principal, error)
}

// SessionFrom returns the session record attached to the request, or nil
// when the store was unreachable.
func SessionFrom(c *gin.Context) *domain.Session {
	if v, ok := c.Get(ctxKeySession); ok {
		if s, ok := v.(*domain.Session); ok {
			return s
		}
	}
	return nil
}

// PrincipalFrom returns the authenticated principal attached to the request,
// or nil for anonymous requests. The value is read-only once attached.
func PrincipalFrom(c *gin.Context) *domain.Principal {
	if v, ok := c.Get(ctxKeyPrincipal); ok {
		if p, ok := v.(*domain.Principal); ok {
			return p
		}
	}
	return nil
}

// AttachPrincipal stores a freshly resolved principal on the request. Used
// by the login handler so the rest of the request sees the new identity.
func AttachPrincipal(c *gin.Context, p *domain.Principal) {
	c.Set(ctxKeyPrincipal, p)
	c.Set("userID", p.UserID)
}

// Session returns the middleware managing the session lifecycle. It must run
// after CORS (so session state never leaks to disallowed origins) and before
// any handler that reads SessionFrom/PrincipalFrom.
func Session(store session.Store, codec *session.Codec, resolver PrincipalResolver, cfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()

		rec, err := loadSession(c, store, codec, cfg.CookieName, now)
		if err != nil {
			// Transient store failure. The presented cookie may well be
			// valid, so leave it alone and continue without a session
			// instead of minting a replacement over it.
			LoggerFrom(c).Warn().Err(err).Msg("session lookup failed")
			c.Next()
			return
		}
		if rec == nil {
			rec = mintSession(c, store, codec, cfg, now)
		}
		if rec == nil {
			// Store unreachable: continue without a session rather than
			// refusing the request. Handlers needing one will fail and be
			// normalized downstream.
			c.Next()
			return
		}

		c.Set(ctxKeySession, rec)

		if rec.Authenticated() {
			p, err := resolver.Resolve(c.Request.Context(), rec.UserID)
			if err != nil {
				// The account may have been removed since login. The record
				// now points at a dead identity, so destroy it and let the
				// request continue anonymously; the next request mints a
				// fresh session over the stale cookie.
				LoggerFrom(c).Warn().Err(err).Str("session_id", rec.ID).
					Msg("principal resolution failed, destroying session")
				if derr := store.Invalidate(c.Request.Context(), rec.ID); derr != nil && !errors.Is(derr, session.ErrNotFound) {
					LoggerFrom(c).Warn().Err(derr).Msg("session invalidate failed")
				}
				rec.UserID = ""
			} else {
				AttachPrincipal(c, p)
			}
		}

		c.Next()
	}
}

// loadSession resolves the presented cookie into a live session record. A
// nil, nil return means the request should get a fresh session (no cookie,
// tampered token, or a record that is missing or expired). A non-nil error
// means the store failed and nothing can be said about the cookie.
func loadSession(c *gin.Context, store session.Store, codec *session.Codec, cookieName string, now time.Time) (*domain.Session, error) {
	raw, err := c.Cookie(cookieName)
	if err != nil || raw == "" {
		return nil, nil
	}
	sid, err := codec.Verify(raw, now)
	if err != nil {
		return nil, nil
	}
	rec, err := store.Get(c.Request.Context(), sid, now)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		// Expired and missing collapse to the same outcome: a new session.
		return nil, nil
	default:
		return nil, err
	}
}

// mintSession creates an anonymous session and sets the signed cookie on the
// response. Returns nil when the store or codec failed.
func mintSession(c *gin.Context, store session.Store, codec *session.Codec, cfg config.SessionConfig, now time.Time) *domain.Session {
	rec, err := store.Create(c.Request.Context(), now.Add(cfg.MaxAge))
	if err != nil {
		LoggerFrom(c).Warn().Err(err).Msg("session create failed")
		return nil
	}
	tok, err := codec.Sign(rec.ID, rec.ExpiresAt)
	if err != nil {
		LoggerFrom(c).Warn().Err(err).Msg("session token sign failed")
		return nil
	}
	http.SetCookie(c.Writer, sessionCookie(cfg, tok))
	return rec
}

// sessionCookie builds the response cookie carrying the signed session
// token: httpOnly, SameSite=Lax, Secure per configuration.
func sessionCookie(cfg config.SessionConfig, token string) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
