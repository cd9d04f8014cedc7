package repositories

import "time"

// CacheOptions configures one cache namespace.
type CacheOptions struct {
	TTL       time.Duration
	MaxSize   int
	KeyPrefix string
}

// CacheStore is a namespaced TTL cache. Entries are idempotent snapshots:
// concurrent writers to the same key are last-write-wins by design, and
// payload validation (beyond key equality) is the caller's job.
type CacheStore interface {
	// Register creates or reconfigures a namespace.
	Register(name string, opts CacheOptions)

	// Get returns the live payload under name/key, or ok=false when the
	// entry is missing or expired.
	Get(name, key string) (any, bool)

	// Set stores payload under name/key with the namespace TTL.
	Set(name, key string, payload any)

	// Clear drops every entry of the namespace.
	Clear(name string)
}
