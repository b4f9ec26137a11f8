// Package repo implements the data persistence layer for users and sessions,
// backed by GORM. This file provides the durable session store: session
// records live in SQLite so they survive a process restart and can be shared
// by multiple gateway instances pointing at the same database.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/globetrotter-app/go-trip-gateway/internal/domain"
	"github.com/globetrotter-app/go-trip-gateway/internal/session"
)

// SessionStore is the database-backed implementation of session.Store.
type SessionStore struct {
	DB *gorm.DB
}

// NewSessionStore wraps a GORM handle as a session store.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{DB: db}
}

var _ session.Store = (*SessionStore)(nil)

// Create mints a fresh anonymous session row. The UUID primary key makes
// check-then-create races harmless: two racing requests insert two distinct
// rows instead of contending on one id.
func (s *SessionStore) Create(ctx context.Context, expiresAt time.Time) (*domain.Session, error) {
	rec := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	if err := s.DB.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// Get loads the row for id. Expired rows are deleted and reported as
// session.ErrExpired so the caller mints a replacement.
func (s *SessionStore) Get(ctx context.Context, id string, now time.Time) (*domain.Session, error) {
	var rec domain.Session
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	if rec.Expired(now) {
		s.DB.WithContext(ctx).Delete(&domain.Session{}, "id = ?", id)
		return nil, session.ErrExpired
	}
	return &rec, nil
}

// Attach sets the user on an existing session row.
func (s *SessionStore) Attach(ctx context.Context, id, userID string) error {
	return s.setUser(ctx, id, userID)
}

// Detach clears the user from an existing session row.
func (s *SessionStore) Detach(ctx context.Context, id string) error {
	return s.setUser(ctx, id, "")
}

func (s *SessionStore) setUser(ctx context.Context, id, userID string) error {
	res := s.DB.WithContext(ctx).
		Model(&domain.Session{}).
		Where("id = ?", id).
		Update("user_id", userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return session.ErrNotFound
	}
	return nil
}

// Invalidate removes the row entirely. Removing an absent row is not an
// error.
func (s *SessionStore) Invalidate(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Delete(&domain.Session{}, "id = ?", id).Error
}

// DeleteExpired reclaims rows past their expiry.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
