package cache

import (
	"sync"
	"time"

	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

// entry is one cached payload with its expiry deadline.
type entry struct {
	payload any
	expiry  time.Time
}

type namespace struct {
	opts    domainRepos.CacheOptions
	entries map[string]entry
}

// Store is the in-process namespaced TTL cache. Namespaces are independent;
// within one, keys are unique strings, so concurrent writers only ever
// conflict on the same key, where last-write-wins is acceptable because
// entries are snapshots, not accumulators.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]*namespace
	now        func() time.Time
}

// NewStore creates an empty cache store.
func NewStore() *Store {
	return &Store{
		namespaces: make(map[string]*namespace),
		now:        time.Now,
	}
}

// NewStoreWithClock creates a store with an injected clock for tests.
func NewStoreWithClock(now func() time.Time) *Store {
	store := NewStore()
	store.now = now
	return store
}

// Register creates or reconfigures a namespace. Existing entries survive a
// reconfiguration; new writes pick up the new TTL.
func (s *Store) Register(name string, opts domainRepos.CacheOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ns, ok := s.namespaces[name]; ok {
		ns.opts = opts
		return
	}
	s.namespaces[name] = &namespace{
		opts:    opts,
		entries: make(map[string]entry),
	}
}

// Get returns the live payload under name/key. Expired entries are dropped
// lazily on read.
func (s *Store) Get(name, key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[name]
	if !ok {
		return nil, false
	}

	fullKey := ns.opts.KeyPrefix + key
	cached, ok := ns.entries[fullKey]
	if !ok {
		return nil, false
	}
	if s.now().After(cached.expiry) {
		delete(ns.entries, fullKey)
		return nil, false
	}
	return cached.payload, true
}

// Set stores payload under name/key with the namespace TTL. Writes to an
// unregistered namespace are dropped: a missing registration is a wiring
// bug the read path will surface anyway.
func (s *Store) Set(name, key string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[name]
	if !ok {
		return
	}

	if ns.opts.MaxSize > 0 && len(ns.entries) >= ns.opts.MaxSize {
		s.evictOldest(ns)
	}

	ns.entries[ns.opts.KeyPrefix+key] = entry{
		payload: payload,
		expiry:  s.now().Add(ns.opts.TTL),
	}
}

// Clear drops every entry of the namespace.
func (s *Store) Clear(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ns, ok := s.namespaces[name]; ok {
		ns.entries = make(map[string]entry)
	}
}

// evictOldest removes the entry closest to expiry. Caller holds the lock.
func (s *Store) evictOldest(ns *namespace) {
	var oldestKey string
	var oldestExpiry time.Time
	for key, cached := range ns.entries {
		if oldestKey == "" || cached.expiry.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = cached.expiry
		}
	}
	if oldestKey != "" {
		delete(ns.entries, oldestKey)
	}
}
