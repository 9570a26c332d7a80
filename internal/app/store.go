package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// StoreOptions configures a Store.
type StoreOptions struct {
	// TTL is how long a session may sit idle before it is evicted.
	TTL time.Duration

	// MaxSessions caps live sessions; the least recently used is evicted
	// to make room. Zero means unlimited.
	MaxSessions int

	// NewController builds the controller for a new session.
	NewController func() *Controller

	// OnOpen and OnClose are called when sessions are created and evicted.
	OnOpen  func()
	OnClose func()

	Logger hclog.Logger
	Now    func() time.Time
}

type session struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Store maps session IDs to controllers.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	opts     StoreOptions
}

// NewStore creates an empty Store.
func NewStore(opts StoreOptions) *Store {
	if opts.NewController == nil {
		opts.NewController = func() *Controller { return NewController() }
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OnOpen == nil {
		opts.OnOpen = func() {}
	}
	if opts.OnClose == nil {
		opts.OnClose = func() {}
	}
	return &Store{sessions: make(map[string]*session), opts: opts}
}

// Get returns the controller for id and marks the session as used.
func (s *Store) Get(id string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.opts.Now()
	if s.expired(sess, now) {
		s.evictLocked(id, "expired")
		return nil, false
	}
	sess.lastSeen = now
	return sess.ctrl, true
}

// Create starts a new session and returns its ID.
func (s *Store) Create() (string, *Controller) {
	id := uuid.NewString()
	ctrl := s.opts.NewController()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.MaxSessions > 0 && len(s.sessions) >= s.opts.MaxSessions {
		s.evictOldestLocked()
	}
	s.sessions[id] = &session{ctrl: ctrl, lastSeen: s.opts.Now()}
	s.opts.OnOpen()
	s.opts.Logger.Debug("session created", "id", id)
	return id, ctrl
}

// GetOrCreate returns the session for id, or a new session when id is
// unknown, expired or not a valid UUID. created reports which happened.
func (s *Store) GetOrCreate(id string) (sid string, ctrl *Controller, created bool) {
	if _, err := uuid.Parse(id); err == nil {
		if ctrl, ok := s.Get(id); ok {
			return id, ctrl, false
		}
	}
	sid, ctrl = s.Create()
	return sid, ctrl, true
}

// Delete ends a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		s.evictLocked(id, "deleted")
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.opts.Now()
	n := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			s.evictLocked(id, "expired")
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.opts.Logger.Debug("swept idle sessions", "count", n)
			}
		}
	}
}

func (s *Store) expired(sess *session, now time.Time) bool {
	return s.opts.TTL > 0 && now.Sub(sess.lastSeen) > s.opts.TTL
}

func (s *Store) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastSeen.Before(oldest) {
			oldestID, oldest = id, sess.lastSeen
		}
	}
	if oldestID != "" {
		s.evictLocked(oldestID, "capacity")
	}
}

func (s *Store) evictLocked(id, reason string) {
	delete(s.sessions, id)
	s.opts.OnClose()
	s.opts.Logger.Debug("session evicted", "id", id, "reason", reason)
}
