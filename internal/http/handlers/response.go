// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. Failures are never
// serialized here; handlers attach them to the Gin context and the error
// normalizer middleware renders the uniform envelope.
//
// Example success response:
//
//	HTTP/1.1 200 OK
//	{ "success": true, "message": "Login successful", "data": { ... } }
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/globetrotter-app/go-trip-gateway/internal/apperr"
)

// SuccessResponse is the standard success envelope returned by all
// endpoints.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ok writes a success envelope with the given HTTP status.
func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, SuccessResponse{Success: true, Message: message, Data: data})
}

// bindJSON decodes the request body into dst, reporting binding failures
// through the error-normalizer path. Returns false when binding failed and
// the request has been aborted.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		_ = c.Error(verrs)
	} else {
		// Malformed JSON, wrong types, truncated body.
		_ = c.Error(apperr.Validation(apperr.FieldError{
			Field:   "body",
			Message: "invalid JSON body",
		}))
	}
	c.Abort()
	return false
}

// abortWith attaches err to the context and stops the handler chain. The
// normalizer converts it downstream.
func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
