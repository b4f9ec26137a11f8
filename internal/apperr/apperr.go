// Package apperr defines the closed set of failure classes the gateway knows
// how to translate into client-facing envelopes. Every failure surfaced from
// a pipeline stage or a domain route group terminates as exactly one of these
// variants; anything unrecognized is classified as internal and its detail is
// kept server-side.
//
// The error normalizer matches on these types with errors.As, never on the
// textual shape of an error.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// FieldError describes a single field-level failure inside a validation or
// conflict envelope.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationError carries one or more field-level failures. Status 400.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// ConflictError marks a uniqueness violation on a single field. Status 400.
type ConflictError struct {
	Field string
	Value any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

// AuthenticationError marks a credential or session failure. Status 401.
// Message is safe to show to clients; an empty message renders the default
// "Login failed".
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return e.Message
}

// NotFoundError marks a missing route or resource. Status 404. An empty
// message renders the default "Route not found".
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return "not found"
	}
	return e.Message
}

// Validation builds a ValidationError from individual field failures.
func Validation(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Conflict builds a ConflictError for one field/value pair.
func Conflict(field string, value any) *ConflictError {
	return &ConflictError{Field: field, Value: value}
}

// Unauthenticated builds an AuthenticationError with an optional message.
func Unauthenticated(msg string) *AuthenticationError {
	return &AuthenticationError{Message: msg}
}

// NotFound builds a NotFoundError with an optional message.
func NotFound(msg string) *NotFoundError {
	return &NotFoundError{Message: msg}
}

// Status returns the HTTP status the given failure maps to. Unclassified
// errors map to 500.
func Status(err error) int {
	var (
		ve *ValidationError
		ce *ConflictError
		ae *AuthenticationError
		ne *NotFoundError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &ce):
		return http.StatusBadRequest
	case errors.As(err, &ae):
		return http.StatusUnauthorized
	case errors.As(err, &ne):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Classify folds well-known library failures into the taxonomy so callers can
// return raw storage or binding errors and still get a precise envelope:
//
//   - validator.ValidationErrors        -> ValidationError (per-field)
//   - gorm.ErrDuplicatedKey             -> ConflictError
//   - gorm.ErrRecordNotFound            -> NotFoundError
//
// Errors already belonging to the taxonomy pass through untouched. Everything
// else is returned as-is and will be treated as internal by the normalizer.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var (
		ve *ValidationError
		ce *ConflictError
		ae *AuthenticationError
		ne *NotFoundError
	)
	if errors.As(err, &ve) || errors.As(err, &ce) || errors.As(err, &ae) || errors.As(err, &ne) {
		return err
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field:   fieldName(fe),
				Message: bindingMessage(fe),
				Value:   fe.Value(),
			})
		}
		return &ValidationError{Fields: fields}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ConflictError{Field: "record"}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{}
	}

	return err
}

// fieldName lowercases the first rune of the struct field so envelopes use
// the JSON-style name clients submitted ("email", not "Email").
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return name
	}
	return string(name[0]|0x20) + name[1:]
}

// bindingMessage renders a short human-readable description for the most
// common binding tags.
func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fieldName(fe) + " is required"
	case "email":
		return fieldName(fe) + " must be a valid email address"
	case "min":
		return fieldName(fe) + " must be at least " + fe.Param() + " characters"
	case "max":
		return fieldName(fe) + " must be at most " + fe.Param() + " characters"
	default:
		return fieldName(fe) + " is invalid"
	}
}
