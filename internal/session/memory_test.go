package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Now()

	s, err := st.Create(ctx, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID == "" || s.Authenticated() {
		t.Fatalf("fresh session should be anonymous with an id: %+v", s)
	}

	got, err := st.Get(ctx, s.ID, now)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != s.ID {
		t.Errorf("Get returned %q, want %q", got.ID, s.ID)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	st := NewMemoryStore()
	if _, err := st.Get(context.Background(), "nope", time.Now()); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_ExpiryDeletesRecord(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Now()

	s, _ := st.Create(ctx, now.Add(time.Minute))
	if _, err := st.Get(ctx, s.ID, now.Add(2*time.Minute)); err != ErrExpired {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
	// The record is reclaimed, a second read sees plain not-found.
	if _, err := st.Get(ctx, s.ID, now); err != ErrNotFound {
		t.Fatalf("err after expiry eviction = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_AttachDetach(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Now()

	s, _ := st.Create(ctx, now.Add(time.Hour))
	if err := st.Attach(ctx, s.ID, "user-1"); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	got, _ := st.Get(ctx, s.ID, now)
	if !got.Authenticated() || got.UserID != "user-1" {
		t.Fatalf("after Attach: %+v", got)
	}

	if err := st.Detach(ctx, s.ID); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	got, _ = st.Get(ctx, s.ID, now)
	if got.Authenticated() {
		t.Fatalf("after Detach session should be anonymous: %+v", got)
	}

	if err := st.Attach(ctx, "missing", "user-1"); err != ErrNotFound {
		t.Errorf("Attach on missing id = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Invalidate(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	s, _ := st.Create(ctx, time.Now().Add(time.Hour))

	if err := st.Invalidate(ctx, s.ID); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := st.Get(ctx, s.ID, time.Now()); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	// Idempotent for absent ids.
	if err := st.Invalidate(ctx, s.ID); err != nil {
		t.Fatalf("second Invalidate: %v", err)
	}
}

func TestMemoryStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Now()

	st.Create(ctx, now.Add(-time.Minute))
	st.Create(ctx, now.Add(-time.Second))
	live, _ := st.Create(ctx, now.Add(time.Hour))

	n, err := st.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 2 {
		t.Errorf("reclaimed %d, want 2", n)
	}
	if _, err := st.Get(ctx, live.ID, now); err != nil {
		t.Errorf("live session evicted: %v", err)
	}
}

func TestMemoryStore_ConcurrentCreateDistinctIDs(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	exp := time.Now().Add(time.Hour)

	const n = 64
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := st.Create(ctx, exp)
			if err != nil {
				t.Error(err)
				return
			}
			ids <- s.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
	if st.Len() != n {
		t.Errorf("Len = %d, want %d", st.Len(), n)
	}
}

func TestMemoryStore_OpportunisticSweep(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	base := time.Now()
	st.now = func() time.Time { return base.Add(time.Hour) }

	s, _ := st.Create(ctx, base.Add(time.Minute)) // already expired per st.now
	st.ops = sweepEvery - 1                       // next operation triggers the sweep
	st.Create(ctx, base.Add(2*time.Hour))

	if _, err := st.Get(ctx, s.ID, base); err != ErrNotFound {
		t.Fatalf("stale record survived the sweep: %v", err)
	}
}
