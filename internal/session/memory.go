package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/globetrotter-app/go-trip-gateway/internal/domain"
)

// sweepEvery is the number of store operations between opportunistic sweeps
// of expired records. Sweeping piggybacks on regular traffic so an idle
// process holds no timers.
const sweepEvery = 5000

// MemoryStore keeps session records in a mutex-guarded map. It is the
// fallback backend when storage is unreachable; records do not survive a
// process restart and are not shared across instances.
type MemoryStore struct {
	mu       sync.Mutex
	records  map[string]*domain.Session
	ops      uint64
	now      func() time.Time // test seam
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*domain.Session),
		now:     time.Now,
	}
}

// Create mints a fresh anonymous session. The id is a random UUID, so
// concurrent creates can never converge on the same record.
func (m *MemoryStore) Create(_ context.Context, expiresAt time.Time) (*domain.Session, error) {
	s := &domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: m.now().UTC(),
		ExpiresAt: expiresAt,
	}

	m.mu.Lock()
	m.maybeSweepLocked()
	m.records[s.ID] = s
	m.mu.Unlock()

	cp := *s
	return &cp, nil
}

// Get returns a copy of the record for id. Expired records are deleted and
// reported as ErrExpired so callers treat them like missing sessions.
func (m *MemoryStore) Get(_ context.Context, id string, now time.Time) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.maybeSweepLocked()
	s, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Expired(now) {
		delete(m.records, id)
		return nil, ErrExpired
	}
	cp := *s
	return &cp, nil
}

// Attach sets the user on an existing session.
func (m *MemoryStore) Attach(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	s.UserID = userID
	return nil
}

// Detach clears the user from an existing session.
func (m *MemoryStore) Detach(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	s.UserID = ""
	return nil
}

// Invalidate removes the record entirely. Removing an absent record is not
// an error.
func (m *MemoryStore) Invalidate(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.records, id)
	m.mu.Unlock()
	return nil
}

// DeleteExpired removes every record past its expiry.
func (m *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.records {
		if s.Expired(now) {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}

// Len reports the number of live records. Used by tests and the sweep.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// maybeSweepLocked evicts expired records after a threshold of operations.
// Callers must hold m.mu.
func (m *MemoryStore) maybeSweepLocked() {
	m.ops++
	if m.ops < sweepEvery {
		return
	}
	m.ops = 0
	now := m.now()
	for id, s := range m.records {
		if s.Expired(now) {
			delete(m.records, id)
		}
	}
}
