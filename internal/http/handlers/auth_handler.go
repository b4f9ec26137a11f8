// Authentication HTTP handlers.
//
// This file exposes the credential endpoints:
//   - POST /api/auth/register  (create account)
//   - POST /api/auth/login     (attach user to the current session)
//   - POST /api/auth/logout    (detach user, keep the session)
//   - GET  /api/auth/me        (current principal, 401 when anonymous)
//
// Login and logout transition the session state machine; the session record
// and cookie are owned by the session middleware, which runs earlier in the
// pipeline. Handlers only attach or detach the user behind the existing
// session id.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/globetrotter-app/go-trip-gateway/internal/apperr"
	"github.com/globetrotter-app/go-trip-gateway/internal/domain"
	"github.com/globetrotter-app/go-trip-gateway/internal/http/middleware"
	"github.com/globetrotter-app/go-trip-gateway/internal/services"
	"github.com/globetrotter-app/go-trip-gateway/internal/session"
)

// AuthService defines the account operations consumed by the HTTP layer.
//
// Implementations must be safe for concurrent use and honor the provided
// context for cancellation.
type AuthService interface {
	// Register creates an account with deterministic username derivation.
	Register(ctx context.Context, in services.RegisterInput) (*domain.User, error)
	// Login verifies credentials and returns the account.
	Login(ctx context.Context, email, password string) (*domain.User, error)
	// Resolve returns the principal for a stored user id.
	Resolve(ctx context.Context, userID string) (*domain.Principal, error)
}

// AuthHandlers groups the credential endpoints. It holds the session store
// so login and logout can move the current session between the anonymous
// and authenticated states.
type AuthHandlers struct {
	svc   AuthService
	store session.Store
}

// NewAuthHandlers constructs the credential endpoints bound to the given
// service and session store.
func NewAuthHandlers(svc AuthService, store session.Store) *AuthHandlers {
	return &AuthHandlers{svc: svc, store: store}
}

// RegisterRequest is the JSON payload for account creation. The password
// ceiling matches the bcrypt input limit.
type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,min=1,max=100"`
	LastName  string `json:"lastName" binding:"omitempty,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest is the JSON payload for credential verification.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account and returns it with HTTP 201. A taken
// email maps to the duplicate-entry envelope; registration does not log the
// user in.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), services.RegisterInput{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			abortWith(c, apperr.Conflict("email", strings.ToLower(strings.TrimSpace(req.Email))))
			return
		}
		abortWith(c, err)
		return
	}

	ok(c, http.StatusCreated, "User registered successfully", user)
}

// Login verifies credentials and attaches the user to the current session.
// All credential failures collapse to one opaque 401; a failed login never
// changes session state.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			abortWith(c, apperr.Unauthenticated("Login failed"))
			return
		}
		abortWith(c, err)
		return
	}

	sess := middleware.SessionFrom(c)
	if sess == nil {
		// Credentials were valid but there is no session to upgrade.
		abortWith(c, services.ErrStorageUnavailable)
		return
	}
	if err := h.store.Attach(c.Request.Context(), sess.ID, user.ID); err != nil {
		abortWith(c, err)
		return
	}
	sess.UserID = user.ID

	p := domain.PrincipalFromUser(user)
	middleware.AttachPrincipal(c, p)

	ok(c, http.StatusOK, "Login successful", p)
}

// Logout detaches the user from the current session, returning it to the
// anonymous state. Logging out an anonymous session succeeds as a no-op.
func (h *AuthHandlers) Logout(c *gin.Context) {
	sess := middleware.SessionFrom(c)
	if sess != nil && sess.Authenticated() {
		if err := h.store.Detach(c.Request.Context(), sess.ID); err != nil && !errors.Is(err, session.ErrNotFound) {
			abortWith(c, err)
			return
		}
		sess.UserID = ""
	}

	ok(c, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the principal attached to the current session, or 401 for
// anonymous requests.
func (h *AuthHandlers) Me(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		abortWith(c, apperr.Unauthenticated("Not authenticated"))
		return
	}
	ok(c, http.StatusOK, "Authenticated", p)
}
