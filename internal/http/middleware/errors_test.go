package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/globetrotter-app/go-trip-gateway/internal/apperr"
)

// serveWithError runs a request through the normalizer with a handler that
// reports err and returns the recorded response.
func serveWithError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorNormalizer())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(err)
		c.Abort()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	return w
}

func decodeFailure(t *testing.T, w *httptest.ResponseRecorder) FailureResponse {
	t.Helper()
	var body FailureResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	if body.Success {
		t.Fatalf("failure envelope must have success=false")
	}
	return body
}

func TestErrorNormalizer_Validation(t *testing.T) {
	err := apperr.Validation(apperr.FieldError{
		Field: "email", Message: "email must be a valid email address", Value: "nope",
	})
	w := serveWithError(t, err)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := decodeFailure(t, w)
	if body.Message != "Validation error" {
		t.Fatalf("message = %q", body.Message)
	}
	if len(body.Errors) != 1 || body.Errors[0].Field != "email" {
		t.Fatalf("unexpected field errors: %+v", body.Errors)
	}
}

func TestErrorNormalizer_Conflict(t *testing.T) {
	w := serveWithError(t, apperr.Conflict("email", "jane@example.com"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := decodeFailure(t, w)
	if body.Message != "Duplicate entry" {
		t.Fatalf("message = %q", body.Message)
	}
	if len(body.Errors) != 1 || body.Errors[0].Message != "email already exists" {
		t.Fatalf("unexpected field errors: %+v", body.Errors)
	}
}

func TestErrorNormalizer_Authentication(t *testing.T) {
	w := serveWithError(t, apperr.Unauthenticated(""))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if body := decodeFailure(t, w); body.Message != "Login failed" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestErrorNormalizer_NotFound(t *testing.T) {
	w := serveWithError(t, apperr.NotFound(""))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if body := decodeFailure(t, w); body.Message != "Route not found" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestErrorNormalizer_UnknownErrorIsOpaque(t *testing.T) {
	w := serveWithError(t, errors.New("pq: connection refused on 10.0.0.3"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	body := decodeFailure(t, w)
	if body.Message != "Internal server error" {
		t.Fatalf("message = %q", body.Message)
	}
	if len(body.Errors) != 0 {
		t.Fatalf("internal failures must not leak detail: %+v", body.Errors)
	}
}

func TestErrorNormalizer_WrappedTaxonomyError(t *testing.T) {
	wrapped := fmt.Errorf("creating user: %w", apperr.Conflict("email", "a@b.com"))
	w := serveWithError(t, wrapped)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("wrapped conflict should classify, got %d", w.Code)
	}
}

func TestErrorNormalizer_SkipsWrittenResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorNormalizer())
	r.GET("/half", func(c *gin.Context) {
		c.String(http.StatusTeapot, "already written")
		_ = c.Error(errors.New("late failure"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/half", nil))

	if w.Code != http.StatusTeapot || w.Body.String() != "already written" {
		t.Fatalf("normalizer must not overwrite a written response: %d %q", w.Code, w.Body.String())
	}
}
