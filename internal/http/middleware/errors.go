// Package middleware contains the gateway's Gin middleware pipeline stages.
//
// This file implements the error normalizer, the terminal stage every failed
// request passes through. Pipeline stages and route handlers never write
// error payloads themselves: they attach a failure to the Gin context with
// c.Error(err) and abort, and the normalizer translates the failure into
// exactly one client-facing envelope.
//
// Classification matches on the closed apperr taxonomy (errors.As on tagged
// variants), never on an error's textual shape. Anything outside the
// taxonomy is an internal failure: it is logged in full server-side and the
// client sees only "Internal server error".
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/globetrotter-app/go-trip-gateway/internal/apperr"
)

// FailureResponse is the uniform error envelope returned by every endpoint.
type FailureResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// failureBody builds the standard error envelope.
func failureBody(message string, errs []apperr.FieldError) FailureResponse {
	return FailureResponse{Success: false, Message: message, Errors: errs}
}

// ErrorNormalizer returns the middleware that converts any failure collected
// during the request into the uniform envelope. Install it early (right
// after Recovery) so it wraps every later stage and handler.
//
// A handler reports a failure with:
//
//	c.Error(apperr.Conflict("email", v.Email))
//	c.Abort()
//
// and never writes a body of its own on the failure path.
func ErrorNormalizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := apperr.Classify(c.Errors[0].Err)
		status := apperr.Status(err)

		// Operator visibility before normalization; the client payload never
		// carries internal detail.
		lg := LoggerFrom(c)
		if status >= http.StatusInternalServerError {
			lg.Error().Err(c.Errors[0].Err).Msg("request failed")
		} else {
			lg.Warn().Err(err).Int("status", status).Msg("request rejected")
		}

		c.JSON(status, envelopeFor(err))
	}
}

// envelopeFor renders the client-facing envelope for a classified failure.
// Wrapped taxonomy members are honored via errors.As.
func envelopeFor(err error) FailureResponse {
	var (
		ve *apperr.ValidationError
		ce *apperr.ConflictError
		ae *apperr.AuthenticationError
		ne *apperr.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return failureBody("Validation error", ve.Fields)
	case errors.As(err, &ce):
		return failureBody("Duplicate entry", []apperr.FieldError{{
			Field:   ce.Field,
			Message: ce.Field + " already exists",
			Value:   ce.Value,
		}})
	case errors.As(err, &ae):
		msg := ae.Message
		if msg == "" {
			msg = "Login failed"
		}
		return failureBody(msg, nil)
	case errors.As(err, &ne):
		msg := ne.Message
		if msg == "" {
			msg = "Route not found"
		}
		return failureBody(msg, nil)
	default:
		return failureBody("Internal server error", nil)
	}
}
