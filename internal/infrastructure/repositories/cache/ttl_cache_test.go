//go:build unit

package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
	"github.com/multigit/reposource/internal/infrastructure/repositories/cache"
)

func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("should round-trip a payload within its TTL", func(t *testing.T) {
		t.Parallel()

		// given
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		store := cache.NewStoreWithClock(func() time.Time { return now })
		store.Register("commits", domainRepos.CacheOptions{TTL: 5 * time.Minute})

		// when
		store.Set("commits", "main:p1", []string{"a", "b"})
		payload, ok := store.Get("commits", "main:p1")

		// then
		require.True(t, ok)
		assert.Equal(t, []string{"a", "b"}, payload)
	})

	t.Run("should expire entries after the TTL", func(t *testing.T) {
		t.Parallel()

		// given
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		store := cache.NewStoreWithClock(func() time.Time { return now })
		store.Register("commits", domainRepos.CacheOptions{TTL: 5 * time.Minute})
		store.Set("commits", "main:p1", "payload")

		// when
		now = now.Add(6 * time.Minute)
		_, ok := store.Get("commits", "main:p1")

		// then
		assert.False(t, ok)
	})

	t.Run("should clear only the named namespace", func(t *testing.T) {
		t.Parallel()

		// given
		store := cache.NewStore()
		store.Register("commits", domainRepos.CacheOptions{TTL: time.Minute})
		store.Register("files", domainRepos.CacheOptions{TTL: time.Minute})
		store.Set("commits", "k", 1)
		store.Set("files", "k", 2)

		// when
		store.Clear("commits")

		// then
		_, commitsOk := store.Get("commits", "k")
		_, filesOk := store.Get("files", "k")
		assert.False(t, commitsOk)
		assert.True(t, filesOk)
	})

	t.Run("should isolate equal keys across namespaces", func(t *testing.T) {
		t.Parallel()

		// given
		store := cache.NewStore()
		store.Register("a", domainRepos.CacheOptions{TTL: time.Minute, KeyPrefix: "a:"})
		store.Register("b", domainRepos.CacheOptions{TTL: time.Minute, KeyPrefix: "b:"})

		// when
		store.Set("a", "k", "from-a")
		store.Set("b", "k", "from-b")

		// then
		payloadA, _ := store.Get("a", "k")
		payloadB, _ := store.Get("b", "k")
		assert.Equal(t, "from-a", payloadA)
		assert.Equal(t, "from-b", payloadB)
	})

	t.Run("should drop writes to an unregistered namespace", func(t *testing.T) {
		t.Parallel()

		// given
		store := cache.NewStore()

		// when
		store.Set("nowhere", "k", 1)
		_, ok := store.Get("nowhere", "k")

		// then
		assert.False(t, ok)
	})

	t.Run("should evict the entry closest to expiry when full", func(t *testing.T) {
		t.Parallel()

		// given
		now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		store := cache.NewStoreWithClock(func() time.Time { return now })
		store.Register("files", domainRepos.CacheOptions{TTL: time.Minute, MaxSize: 2})
		store.Set("files", "oldest", 1)
		now = now.Add(10 * time.Second)
		store.Set("files", "newer", 2)

		// when
		store.Set("files", "newest", 3)

		// then
		_, oldestOk := store.Get("files", "oldest")
		_, newerOk := store.Get("files", "newer")
		_, newestOk := store.Get("files", "newest")
		assert.False(t, oldestOk)
		assert.True(t, newerOk)
		assert.True(t, newestOk)
	})

	t.Run("should keep entries across a re-registration", func(t *testing.T) {
		t.Parallel()

		// given
		store := cache.NewStore()
		store.Register("commits", domainRepos.CacheOptions{TTL: time.Minute})
		store.Set("commits", "k", "kept")

		// when
		store.Register("commits", domainRepos.CacheOptions{TTL: time.Hour})

		// then
		payload, ok := store.Get("commits", "k")
		require.True(t, ok)
		assert.Equal(t, "kept", payload)
	})
}
