package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/agricred/intake/internal/domain/intake"
	"github.com/agricred/intake/internal/domain/shared"
	"github.com/google/uuid"
)

// sessionEntry pairs a live session with its lock and last activity
type sessionEntry struct {
	mu       sync.Mutex
	session  *intake.Session
	lastSeen time.Time
}

// InMemorySessionRepository keeps live wizard sessions in process memory.
// Sessions idle for longer than the TTL are dropped by a background sweep.
type InMemorySessionRepository struct {
	mu          sync.RWMutex
	entries     map[uuid.UUID]*sessionEntry
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
	onEvict     func(n int)

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// SessionRepositoryOption configures InMemorySessionRepository
type SessionRepositoryOption func(*InMemorySessionRepository)

// WithSessionTTL sets how long an idle session is kept. Zero keeps sessions forever.
func WithSessionTTL(ttl time.Duration) SessionRepositoryOption {
	return func(r *InMemorySessionRepository) {
		r.ttl = ttl
	}
}

// WithMaxSessions caps the number of live sessions. Zero means unlimited.
func WithMaxSessions(n int) SessionRepositoryOption {
	return func(r *InMemorySessionRepository) {
		r.maxSessions = n
	}
}

// WithSessionClock overrides the clock used for idle tracking
func WithSessionClock(now func() time.Time) SessionRepositoryOption {
	return func(r *InMemorySessionRepository) {
		r.now = now
	}
}

// WithEvictionHook is called with the number of sessions dropped by a sweep
func WithEvictionHook(fn func(n int)) SessionRepositoryOption {
	return func(r *InMemorySessionRepository) {
		r.onEvict = fn
	}
}

// NewInMemorySessionRepository creates a repository. When sweepInterval is
// positive a goroutine removes expired sessions until Close is called.
func NewInMemorySessionRepository(sweepInterval time.Duration, opts ...SessionRepositoryOption) *InMemorySessionRepository {
	r := &InMemorySessionRepository{
		entries:  make(map[uuid.UUID]*sessionEntry),
		now:      time.Now,
		onEvict:  func(int) {},
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if sweepInterval > 0 {
		r.wg.Add(1)
		go r.sweepLoop(sweepInterval)
	}
	return r
}

// Save implements intake.SessionRepository
func (r *InMemorySessionRepository) Save(_ context.Context, session *intake.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[session.ID]; exists {
		return shared.ErrAlreadyExists
	}
	if r.maxSessions > 0 && len(r.entries) >= r.maxSessions {
		return intake.ErrTooManySessions
	}
	r.entries[session.ID] = &sessionEntry{session: session, lastSeen: r.now()}
	return nil
}

// View implements intake.SessionRepository. Reading a session counts as
// activity, so a client that only polls keeps its session alive.
func (r *InMemorySessionRepository) View(_ context.Context, id uuid.UUID, fn func(*intake.Session) error) error {
	return r.withEntry(id, fn)
}

// Update implements intake.SessionRepository. A session that is being
// updated counts as active.
func (r *InMemorySessionRepository) Update(_ context.Context, id uuid.UUID, fn func(*intake.Session) error) error {
	return r.withEntry(id, fn)
}

// Delete implements intake.SessionRepository. It waits for a running
// View or Update of the session to finish.
func (r *InMemorySessionRepository) Delete(_ context.Context, id uuid.UUID) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[id] != e {
		return intake.ErrSessionNotFound
	}
	delete(r.entries, id)
	return nil
}

// Count implements intake.SessionRepository
func (r *InMemorySessionRepository) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Close stops the sweep goroutine. Safe to call multiple times.
func (r *InMemorySessionRepository) Close() error {
	r.closeOnce.Do(func() {
		close(r.stopChan)
		r.wg.Wait()
	})
	return nil
}

// withEntry runs fn under the session lock. The entry is checked again
// once the lock is held, so a session deleted or swept while fn was
// waiting is reported as not found.
func (r *InMemorySessionRepository) withEntry(id uuid.UUID, fn func(*intake.Session) error) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !r.holds(id, e) {
		return intake.ErrSessionNotFound
	}
	e.lastSeen = r.now()
	return fn(e.session)
}

func (r *InMemorySessionRepository) holds(id uuid.UUID, e *sessionEntry) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id] == e
}

func (r *InMemorySessionRepository) lookup(id uuid.UUID) (*sessionEntry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, intake.ErrSessionNotFound
	}
	return e, nil
}

func (r *InMemorySessionRepository) sweepLoop(interval time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep drops every session idle for longer than the TTL and returns how
// many were removed
func (r *InMemorySessionRepository) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	removed := 0
	for id, e := range r.entries {
		if !e.mu.TryLock() {
			// being updated right now
			continue
		}
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			removed++
		}
		e.mu.Unlock()
	}
	r.mu.Unlock()

	if removed > 0 {
		r.onEvict(removed)
	}
	return removed
}

// Ensure InMemorySessionRepository implements SessionRepository
var _ intake.SessionRepository = (*InMemorySessionRepository)(nil)
