package memory

import (
	"sort"
	"sync"
	"time"
)

// entry is a stored value with an optional absolute deadline.
type entry struct {
	value     string
	expiresAt time.Time
	hasExpiry bool
}

func (e entry) expired(now time.Time) bool {
	return e.hasExpiry && !now.Before(e.expiresAt)
}

// Entry is a live key as returned by Snapshot.
// TTL is the remaining lifetime, or nil for keys without expiry.
type Entry struct {
	Key   string
	Value string
	TTL   *time.Duration
}

// Store is a string key-value map with per-key TTL.
type Store struct {
	mu   sync.Mutex
	data map[string]entry

	now      func() time.Time
	onExpire func(key string)
}

// Option configures the Store.
type Option func(*Store)

// WithClock replaces time.Now. The clock must be monotonic.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithExpireHook registers fn to be called, outside the lock, for every
// entry evicted because its TTL elapsed.
func WithExpireHook(fn func(key string)) Option {
	return func(s *Store) {
		s.onExpire = fn
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores value under key, replacing any previous value and TTL.
// A nil ttl means the key never expires.
func (s *Store) Set(key, value string, ttl *time.Duration) {
	e := entry{value: value}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl != nil {
		e.hasExpiry = true
		e.expiresAt = s.now().Add(*ttl)
	}
	s.data[key] = e
}

// Get returns the live value for key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	e, ok, evicted := s.lookupLocked(key)
	s.mu.Unlock()

	s.notifyExpired(key, evicted)
	if !ok {
		return "", false
	}
	return e.value, true
}

// Del removes key and reports whether a live entry was removed.
// An expired entry is removed too but reported as absent.
func (s *Store) Del(key string) bool {
	s.mu.Lock()
	_, ok, evicted := s.lookupLocked(key)
	if ok {
		delete(s.data, key)
	}
	s.mu.Unlock()

	s.notifyExpired(key, evicted)
	return ok
}

// Exists reports whether key holds a live entry.
func (s *Store) Exists(key string) bool {
	s.mu.Lock()
	_, ok, evicted := s.lookupLocked(key)
	s.mu.Unlock()

	s.notifyExpired(key, evicted)
	return ok
}

// Len returns the number of held entries, including expired entries that
// no read has discovered yet.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Snapshot returns all live entries sorted by key, evicting expired ones.
func (s *Store) Snapshot() []Entry {
	var evicted []string

	s.mu.Lock()
	now := s.now()
	out := make([]Entry, 0, len(s.data))
	for k, e := range s.data {
		if e.expired(now) {
			delete(s.data, k)
			evicted = append(evicted, k)
			continue
		}
		item := Entry{Key: k, Value: e.value}
		if e.hasExpiry {
			remaining := e.expiresAt.Sub(now)
			item.TTL = &remaining
		}
		out = append(out, item)
	}
	s.mu.Unlock()

	for _, k := range evicted {
		s.notifyExpired(k, true)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// lookupLocked returns the live entry for key. An expired entry is deleted
// and reported through evicted. s.mu must be held.
func (s *Store) lookupLocked(key string) (e entry, ok, evicted bool) {
	e, ok = s.data[key]
	if !ok {
		return entry{}, false, false
	}
	if e.expired(s.now()) {
		delete(s.data, key)
		return entry{}, false, true
	}
	return e, true, false
}

func (s *Store) notifyExpired(key string, evicted bool) {
	if evicted && s.onExpire != nil {
		s.onExpire(key)
	}
}
