package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tipcalc/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// Hooks receives registry lifecycle notifications. Any field may be nil.
type Hooks struct {
	Opened  func(id string)
	Closed  func(id string, expired bool)
	Applied func(kind EventKind, err error)
}

// Registry keeps the open sessions of remote screens in memory. A session
// lives from Open until Close or until it has been idle longer than the
// registry's TTL.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	steps    int
	hooks    Hooks
	now      func() time.Time
}

// entry is guarded by mu. Lock order is Registry.mu before entry.mu.
type entry struct {
	mu       sync.Mutex
	state    *State
	lastSeen time.Time
	closed   bool
}

// NewRegistry creates an empty registry. ttl <= 0 disables expiry.
// sliderSteps is passed to every new State.
func NewRegistry(ttl time.Duration, sliderSteps int, hooks Hooks) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		steps:    sliderSteps,
		hooks:    hooks,
		now:      time.Now,
	}
}

// Open creates a session with default inputs and returns its ID and
// initial snapshot.
func (r *Registry) Open() (string, models.Snapshot) {
	id := uuid.New().String()
	st := New(WithSliderSteps(r.steps))

	r.mu.Lock()
	r.sessions[id] = &entry{state: st, lastSeen: r.now()}
	r.mu.Unlock()

	slog.Info("Session opened", "session_id", id)
	if r.hooks.Opened != nil {
		r.hooks.Opened(id)
	}
	return id, st.Snapshot()
}

// Get returns the current snapshot of session id.
func (r *Registry) Get(id string) (models.Snapshot, error) {
	e, err := r.lookup(id)
	if err != nil {
		return models.Snapshot{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return models.Snapshot{}, ErrSessionNotFound
	}
	e.lastSeen = r.now()
	return e.state.Snapshot(), nil
}

// Apply runs one input event against session id. Events for the same
// session are applied one at a time, in arrival order.
func (r *Registry) Apply(id string, kind EventKind, text string, position float64) (models.Snapshot, error) {
	e, err := r.lookup(id)
	if err != nil {
		return models.Snapshot{}, err
	}
	return r.applyTo(e, kind, text, position)
}

// applyTo runs the event against e unless e was closed or swept after it
// was looked up.
func (r *Registry) applyTo(e *entry, kind EventKind, text string, position float64) (models.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return models.Snapshot{}, ErrSessionNotFound
	}
	e.lastSeen = r.now()
	snap, err := e.state.Apply(kind, text, position)
	if r.hooks.Applied != nil {
		r.hooks.Applied(kind, err)
	}
	return snap, err
}

// Close ends session id.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	slog.Info("Session closed", "session_id", id)
	if r.hooks.Closed != nil {
		r.hooks.Closed(id, false)
	}
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes every session idle since before now minus the TTL and
// returns how many were closed.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-r.ttl)

	var expired []string
	r.mu.Lock()
	for id, e := range r.sessions {
		e.mu.Lock()
		idle := e.lastSeen.Before(cutoff)
		if idle {
			e.closed = true
		}
		e.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			expired = append(expired, id)
		}
	}
	r.mu.Unlock()

	for _, id := range expired {
		slog.Info("Session expired", "session_id", id)
		if r.hooks.Closed != nil {
			r.hooks.Closed(id, true)
		}
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || r.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if n := r.Sweep(t); n > 0 {
				slog.Debug("Swept idle sessions", "expired", n, "open", r.Len())
			}
		}
	}
}

func (r *Registry) lookup(id string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}
