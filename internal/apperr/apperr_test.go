package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

func TestStatus_Mapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation(FieldError{Field: "email", Message: "email is required"}), http.StatusBadRequest},
		{Conflict("email", "a@b.com"), http.StatusBadRequest},
		{Unauthenticated(""), http.StatusUnauthorized},
		{NotFound(""), http.StatusNotFound},
		{errors.New("disk on fire"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", Unauthenticated("Login failed")), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestClassify_PassesTaxonomyThrough(t *testing.T) {
	orig := Conflict("email", "a@b.com")
	if got := Classify(orig); got != orig {
		t.Errorf("Classify rewrote an already-classified error: %v", got)
	}
	if Classify(nil) != nil {
		t.Error("Classify(nil) must be nil")
	}
}

func TestClassify_GormErrors(t *testing.T) {
	var ce *ConflictError
	if err := Classify(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)); !errors.As(err, &ce) {
		t.Errorf("duplicated key not classified as conflict: %v", err)
	}
	var ne *NotFoundError
	if err := Classify(gorm.ErrRecordNotFound); !errors.As(err, &ne) {
		t.Errorf("record not found not classified: %v", err)
	}
}

func TestClassify_ValidatorErrors(t *testing.T) {
	type payload struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
	}
	v := validator.New()
	err := v.Struct(payload{Email: "nope", Password: "abc"})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	classified := Classify(err)
	var ve *ValidationError
	if !errors.As(classified, &ve) {
		t.Fatalf("not a ValidationError: %v", classified)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("fields = %+v", ve.Fields)
	}
	if ve.Fields[0].Field != "email" {
		t.Errorf("field name = %q, want json-style lowercase", ve.Fields[0].Field)
	}
	if ve.Fields[0].Message != "email must be a valid email address" {
		t.Errorf("message = %q", ve.Fields[0].Message)
	}
	if ve.Fields[1].Message != "password must be at least 6 characters" {
		t.Errorf("message = %q", ve.Fields[1].Message)
	}
}

func TestErrorStrings(t *testing.T) {
	if (&AuthenticationError{}).Error() != "authentication failed" {
		t.Error("empty auth message should render a generic string")
	}
	if (&NotFoundError{Message: "Trip not found"}).Error() != "Trip not found" {
		t.Error("custom not-found message should pass through")
	}
	if (&ValidationError{Fields: []FieldError{{}, {}}}).Error() != "validation failed on 2 field(s)" {
		t.Error("validation error string mismatch")
	}
}
