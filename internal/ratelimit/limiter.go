// Package ratelimit implements the fixed-window admission control that guards
// the lead-capture endpoints.
//
// Each identifier (normally the caller's address, optionally namespaced by the
// caller, e.g. "emergency-203.0.113.7") owns one Entry: a request count and
// the instant its window resets. The first request of a window creates the
// entry; subsequent requests inside the window increment it until MaxRequests
// is reached, after which requests are denied until the window lapses.
//
// Notes:
//   - The limiter is process-local. Multi-instance deployments need a shared
//     counter behind the Store interface.
//   - Expired entries are swept opportunistically every N admissions checks;
//     there is no background goroutine to stop.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Default values used when the environment does not override them.
const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxRequests = 5
	DefaultSweepEvery  = 10
)

// Config contains the window parameters.
type Config struct {
	// Window is the span over which requests accumulate before resetting.
	Window time.Duration
	// MaxRequests is the number of admissions allowed per Window.
	MaxRequests int
}

// Validate checks that both values are positive.
func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %v", c.Window)
	}
	if c.MaxRequests <= 0 {
		return fmt.Errorf("max requests must be positive, got %d", c.MaxRequests)
	}
	return nil
}

// Info is the read-only view of an identifier's quota.
//
// It serializes as {"limit":5,"remaining":0,"resetTime":1700000000000} where
// resetTime is epoch milliseconds, the shape browser clients already parse.
type Info struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// MarshalJSON renders ResetAt as epoch milliseconds under "resetTime".
func (i Info) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Limit     int   `json:"limit"`
		Remaining int   `json:"remaining"`
		ResetTime int64 `json:"resetTime"`
	}{i.Limit, i.Remaining, i.ResetAt.UnixMilli()})
}

// RetryAfter returns the whole seconds until ResetAt, rounded up, never
// negative.
func (i Info) RetryAfter(now time.Time) int {
	d := i.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}

// Stats reports the size of the backing table.
type Stats struct {
	TrackedIdentifiers int
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now. Tests use it to step through windows.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithStore replaces the default MemoryStore.
func WithStore(s Store) Option {
	return func(l *Limiter) { l.store = s }
}

// WithSweepEvery sets how many IsRateLimited calls happen between sweeps of
// expired entries. Values <= 0 disable sweeping.
func WithSweepEvery(n int) Option {
	return func(l *Limiter) { l.sweepEvery = n }
}

// Limiter is a fixed-window, per-identifier request counter.
//
// All operations take a single mutex so the read-modify-write of an entry is
// never torn. It is safe for concurrent use.
type Limiter struct {
	cfg Config

	mu    sync.Mutex
	store Store

	now        func() time.Time
	sweepEvery int
	calls      int
}

// New constructs a Limiter. The returned limiter owns its store.
func New(cfg Config, opts ...Option) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := &Limiter{
		cfg:        cfg,
		store:      NewMemoryStore(),
		now:        time.Now,
		sweepEvery: DefaultSweepEvery,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Config returns the window parameters the limiter was built with.
func (l *Limiter) Config() Config { return l.cfg }

// Now returns the limiter's current time, so callers computing Retry-After
// agree with the clock that set ResetAt.
func (l *Limiter) Now() time.Time { return l.now() }

// IsRateLimited records a request for id and reports whether it must be
// denied.
//
// A missing or expired entry is replaced with a fresh window holding one
// request (admit). An entry at MaxRequests denies without being modified.
// Anything else is incremented (admit).
func (l *Limiter) IsRateLimited(id string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Sweep before touching id so its own stale entry can go too.
	if l.sweepEvery > 0 {
		l.calls++
		if l.calls >= l.sweepEvery {
			l.store.DeleteExpired(now)
			l.calls = 0
		}
	}

	e, ok := l.store.Get(id)
	if !ok || now.After(e.ResetAt) {
		l.store.Put(id, Entry{Count: 1, ResetAt: now.Add(l.cfg.Window)})
		return false
	}
	if e.Count >= l.cfg.MaxRequests {
		return true
	}
	e.Count++
	l.store.Put(id, e)
	return false
}

// Info reports the quota for id without recording a request. Identifiers
// without a live window report the full quota and a window starting now.
func (l *Limiter) Info(id string) Info {
	now := l.now()

	l.mu.Lock()
	e, ok := l.store.Get(id)
	l.mu.Unlock()

	if !ok || now.After(e.ResetAt) {
		return Info{
			Limit:     l.cfg.MaxRequests,
			Remaining: l.cfg.MaxRequests,
			ResetAt:   now.Add(l.cfg.Window),
		}
	}
	remaining := l.cfg.MaxRequests - e.Count
	if remaining < 0 {
		remaining = 0
	}
	return Info{Limit: l.cfg.MaxRequests, Remaining: remaining, ResetAt: e.ResetAt}
}

// Reset forgets id, restoring its full quota.
func (l *Limiter) Reset(id string) {
	l.mu.Lock()
	l.store.Delete(id)
	l.mu.Unlock()
}

// Stats returns the current table size.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{TrackedIdentifiers: l.store.Len()}
}
