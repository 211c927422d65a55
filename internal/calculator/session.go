package calculator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"go-chi-widgets/internal/notify"
)

var (
	ErrSessionNotFound = errors.New("calculator session not found")
	ErrSessionLimit    = errors.New("too many calculator sessions")
)

// sessionNotificationLimit bounds undrained notifications per session.
const sessionNotificationLimit = 32

// Session is one calculator hosted by the HTTP API. Events for a session are
// applied one at a time.
type Session struct {
	ID string

	mu      sync.Mutex
	ctrl    *Controller
	queue   *notify.Queue
	display string

	// lastSeen is unix nanoseconds, read without mu so sweeps never wait on
	// a busy session.
	lastSeen atomic.Int64
}

// Result is what a host sees after one event.
type Result struct {
	Display       string
	Notifications []notify.Notification
}

// Apply handles ev and returns the rendered display plus any notifications
// raised while handling it. obs, when non-nil, watches evaluations.
func (s *Session) Apply(ev Event, obs Observer) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.SetObserver(obs)
	defer s.ctrl.SetObserver(nil)

	if err := s.ctrl.Handle(ev); err != nil {
		return Result{}, err
	}
	return Result{Display: s.display, Notifications: s.queue.Drain()}, nil
}

// Snapshot returns the session's calculator state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ctrl.Snapshot()
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func newSession(now time.Time) *Session {
	s := &Session{
		ID:      uuid.New().String(),
		queue:   notify.NewQueue(sessionNotificationLimit),
		display: "0",
	}
	s.touch(now)
	s.ctrl = NewController(RenderFunc(func(d string) { s.display = d }), s.queue)
	return s
}

// Store keeps live sessions in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	now      func() time.Time
}

// NewStore returns a store that expires sessions idle for longer than ttl and
// holds at most maxSessions sessions. Zero disables either limit.
func NewStore(ttl time.Duration, maxSessions int) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      maxSessions,
		now:      time.Now,
	}
}

func (st *Store) Create() (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.max > 0 && len(st.sessions) >= st.max {
		return nil, fmt.Errorf("%w: limit %d", ErrSessionLimit, st.max)
	}

	s := newSession(st.now())
	st.sessions[s.ID] = s
	return s, nil
}

// Get returns the session and marks it as used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.touch(st.now())
	return s, nil
}

func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(st.sessions, id)
	return nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return len(st.sessions)
}

// Sweep removes sessions idle since before now-ttl and returns how many were
// removed. It never takes a session's lock, so a busy session does not stall
// the rest of the store.
func (st *Store) Sweep(now time.Time) int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-st.ttl)

	st.mu.RLock()
	var expired []*Session
	for _, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
		}
	}
	st.mu.RUnlock()

	if len(expired) == 0 {
		return 0
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for _, s := range expired {
		// A Get since the scan keeps the session alive.
		if st.sessions[s.ID] != s || !s.idleSince().Before(cutoff) {
			continue
		}
		delete(st.sessions, s.ID)
		removed++
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
// onSweep, when non-nil, receives the number removed by each non-empty sweep.
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration, onSweep func(int)) {
	if st.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n := st.Sweep(now)
			if n == 0 {
				continue
			}
			sessionsCount.Add(ctx, -int64(n))
			if onSweep != nil {
				onSweep(n)
			}
		}
	}
}
