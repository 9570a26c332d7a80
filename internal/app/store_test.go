package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestStoreCreateGet(t *testing.T) {
	s := NewStore(StoreOptions{TTL: time.Hour})
	id, ctrl := s.Create()

	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("session id %q is not a UUID: %v", id, err)
	}
	got, ok := s.Get(id)
	if !ok || got != ctrl {
		t.Error("Get() did not return the created controller")
	}
	if _, ok := s.Get(uuid.NewString()); ok {
		t.Error("Get() found an unknown session")
	}
}

func TestStoreTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	closed := 0
	s := NewStore(StoreOptions{TTL: time.Minute, Now: clock.Now, OnClose: func() { closed++ }})

	idle, _ := s.Create()
	active, _ := s.Create()

	clock.Advance(40 * time.Second)
	if _, ok := s.Get(active); !ok {
		t.Fatal("active session missing")
	}
	clock.Advance(40 * time.Second)

	if n := s.Sweep(); n != 1 {
		t.Errorf("Sweep() removed %d, want 1", n)
	}
	if _, ok := s.Get(idle); ok {
		t.Error("idle session survived its TTL")
	}
	if _, ok := s.Get(active); !ok {
		t.Error("recently used session was evicted")
	}
	if closed != 1 {
		t.Errorf("OnClose called %d times, want 1", closed)
	}
}

func TestStoreGetExpiredWithoutSweep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s := NewStore(StoreOptions{TTL: time.Minute, Now: clock.Now})
	id, _ := s.Create()
	clock.Advance(2 * time.Minute)
	if _, ok := s.Get(id); ok {
		t.Error("Get() returned an expired session")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after expired Get, want 0", s.Len())
	}
}

func TestStoreMaxSessions(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s := NewStore(StoreOptions{MaxSessions: 2, Now: clock.Now})

	first, _ := s.Create()
	clock.Advance(time.Second)
	second, _ := s.Create()
	clock.Advance(time.Second)
	third, _ := s.Create()

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if _, ok := s.Get(first); ok {
		t.Error("oldest session should have been evicted")
	}
	for _, id := range []string{second, third} {
		if _, ok := s.Get(id); !ok {
			t.Errorf("session %s missing", id)
		}
	}
}

func TestStoreGetOrCreate(t *testing.T) {
	s := NewStore(StoreOptions{})
	id, ctrl, created := s.GetOrCreate("")
	if !created {
		t.Error("GetOrCreate(\"\") should create")
	}
	again, ctrl2, created := s.GetOrCreate(id)
	if created || again != id || ctrl2 != ctrl {
		t.Error("GetOrCreate(existing) should return the same session")
	}
	if _, _, created := s.GetOrCreate("not-a-uuid"); !created {
		t.Error("GetOrCreate(invalid) should create")
	}

	s.Delete(id)
	if _, ok := s.Get(id); ok {
		t.Error("Delete() left the session in place")
	}
}

func TestStoreRunStopsOnCancel(t *testing.T) {
	s := NewStore(StoreOptions{TTL: time.Nanosecond})
	s.Create()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for s.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("Run() never swept the expired session")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
