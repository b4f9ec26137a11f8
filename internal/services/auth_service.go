// Package services – AuthService
//
// This file implements the AuthService, which owns credential verification
// and account creation. It hashes passwords with bcrypt, derives a stable
// username handle from the registration email, and resolves authenticated
// principals for the session middleware.
//
// Service-level errors (e.g., ErrInvalidCredentials) are returned for
// predictable cases so handlers can map them to envelopes consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/globetrotter-app/go-trip-gateway/internal/domain"
	"github.com/globetrotter-app/go-trip-gateway/internal/repo"
)

// nonAlnumRuns matches every run of characters outside [a-zA-Z0-9].
var nonAlnumRuns = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// DeriveUsername produces the account handle from a registration email by
// collapsing every run of non-alphanumeric characters into a single
// underscore. The derivation is deterministic and idempotent:
//
//	Jane.Doe+1@example.com -> Jane_Doe_1_example_com
func DeriveUsername(email string) string {
	return nonAlnumRuns.ReplaceAllString(email, "_")
}

// RegisterInput carries the registration payload after transport-level
// validation.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AuthService verifies credentials and creates accounts. A nil DB puts the
// service in degraded mode: every operation fails with
// ErrStorageUnavailable instead of panicking, so the gateway keeps serving
// the endpoints that do not need storage.
type AuthService struct {
	DB *gorm.DB
}

// NewAuthService constructs an AuthService over the given handle. db may be
// nil when storage was unreachable at boot.
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

// Register creates a credential record. It normalizes names to NFC, lowers
// the email, derives the username, and hashes the password. It does not
// authenticate: the caller must subsequently log in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if s.DB == nil {
		return nil, ErrStorageUnavailable
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))

	// Pre-check for a friendlier conflict; the unique index remains the
	// backstop for concurrent registrations.
	taken, err := repo.EmailTaken(ctx, s.DB, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// The handle keeps the email's original casing; only the stored login
	// identifier is case-folded.
	u := &domain.User{
		Username:     DeriveUsername(strings.TrimSpace(in.Email)),
		FirstName:    norm.NFC.String(strings.TrimSpace(in.FirstName)),
		LastName:     norm.NFC.String(strings.TrimSpace(in.LastName)),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Login verifies the email/password pair against stored credentials. A
// missing user and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if s.DB == nil {
		return nil, ErrStorageUnavailable
	}

	u, err := repo.GetUserByEmail(ctx, s.DB, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Resolve returns the principal for a user id, used to re-attach identity on
// requests bearing an authenticated session.
func (s *AuthService) Resolve(ctx context.Context, userID string) (*domain.Principal, error) {
	if s.DB == nil {
		return nil, ErrStorageUnavailable
	}

	u, err := repo.GetUserByID(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return domain.PrincipalFromUser(u), nil
}
