//go:build unit

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multigit/reposource/internal/domain/commands"
	"github.com/multigit/reposource/internal/domain/entities"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
	"github.com/multigit/reposource/test/domain/entitybuilders"
	"github.com/multigit/reposource/test/infrastructure/repositorydoubles"
)

func notFoundErr(op string) error {
	return entities.NewOpError(entities.KindNotFound, entities.ClassRetriable, op, errors.New("missing"))
}

func authErr(op string) error {
	return entities.NewOpError(entities.KindAuthRequired, entities.ClassRetriable, op, errors.New("bad token"))
}

func TestReadRouterListCommits(t *testing.T) {
	t.Parallel()

	t.Run("should serve the read from the first working vendor", func(t *testing.T) {
		t.Parallel()

		// given
		vendorCommits := entitybuilders.BuildCommitChain(3)
		detector := &repositorydoubles.StubVendorDetector{
			ClientsByHost: map[string]*repositorydoubles.SpyVendorClient{
				"github.com": {VendorName: "github", Commits: vendorCommits},
			},
		}
		engine := &repositorydoubles.SpyGitEngine{}
		router := commands.NewReadRouter(detector, engine,
			&repositorydoubles.StubCredentialStore{}, true)

		// when
		commitsOut, route, err := router.ListCommits(context.Background(), commands.ReadRequest{
			RepoID:  "repo1",
			Remotes: []string{"https://github.com/a/b.git"},
			Branch:  "main",
			Limit:   30,
		})

		// then
		require.NoError(t, err)
		assert.Len(t, commitsOut, 3)
		assert.True(t, route.FromVendor)
		assert.Empty(t, route.Attempts)
		assert.Empty(t, engine.HistoryDepths)
	})

	t.Run("should record ordered attempts and fall back to the engine", func(t *testing.T) {
		t.Parallel()

		// given two failing vendors and a healthy engine
		detector := &repositorydoubles.StubVendorDetector{
			ClientsByHost: map[string]*repositorydoubles.SpyVendorClient{
				"github.com": {VendorName: "github", ListCommitsErr: notFoundErr("list_commits")},
				"gitlab.com": {VendorName: "gitlab", ListCommitsErr: notFoundErr("list_commits")},
			},
		}
		engine := &repositorydoubles.SpyGitEngine{
			Commits: entitybuilders.BuildCommitChain(2),
		}
		router := commands.NewReadRouter(detector, engine,
			&repositorydoubles.StubCredentialStore{}, true)

		// when
		commitsOut, route, err := router.ListCommits(context.Background(), commands.ReadRequest{
			RepoID:  "repo1",
			Remotes: []string{"https://github.com/a/b.git", "https://gitlab.com/a/b.git"},
			Branch:  "main",
			Limit:   30,
		})

		// then
		require.NoError(t, err)
		assert.Len(t, commitsOut, 2)
		assert.False(t, route.FromVendor)
		require.Len(t, route.Attempts, 2)
		assert.Equal(t, "https://github.com/a/b.git", route.Attempts[0].URL)
		assert.Equal(t, "https://gitlab.com/a/b.git", route.Attempts[1].URL)
	})

	t.Run("should chain vendor context when the engine also fails", func(t *testing.T) {
		t.Parallel()

		// given
		detector := &repositorydoubles.StubVendorDetector{
			ClientsByHost: map[string]*repositorydoubles.SpyVendorClient{
				"github.com": {VendorName: "github", ListCommitsErr: notFoundErr("list_commits")},
			},
		}
		engine := &repositorydoubles.SpyGitEngine{
			CommitHistoryErr: entities.NewOpError(entities.KindNetwork, entities.ClassRetriable,
				"get_commit_history", errors.New("engine down")),
		}
		router := commands.NewReadRouter(detector, engine,
			&repositorydoubles.StubCredentialStore{}, true)

		// when
		_, route, err := router.ListCommits(context.Background(), commands.ReadRequest{
			RepoID:  "repo1",
			Remotes: []string{"https://github.com/a/b.git"},
			Branch:  "main",
			Limit:   30,
		})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 vendor attempt")
		assert.Equal(t, entities.KindNetwork, entities.KindOf(err))
		assert.Len(t, route.Attempts, 1)
	})

	t.Run("should upgrade a shallow clone before the engine read", func(t *testing.T) {
		t.Parallel()

		// given no vendor and a shallow local clone
		detector := &repositorydoubles.StubVendorDetector{}
		engine := &repositorydoubles.SpyGitEngine{
			DataLevel: domainRepos.DataLevelShallow,
			Commits:   entitybuilders.BuildCommitChain(1),
		}
		router := commands.NewReadRouter(detector, engine,
			&repositorydoubles.StubCredentialStore{}, true)

		// when
		_, _, err := router.ListCommits(context.Background(), commands.ReadRequest{
			RepoID:  "repo1",
			Remotes: []string{"https://git.internal.example/a/b.git"},
			Branch:  "main",
			Limit:   30,
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, engine.EnsureFullCloneCalls)
	})
}

func TestReadRouterCredentialRetry(t *testing.T) {
	t.Parallel()

	t.Run("should try the next token only on an auth rejection", func(t *testing.T) {
		t.Parallel()

		// given a client that rejects the first token and accepts the second
		client := &repositorydoubles.SpyVendorClient{
			VendorName:  "github",
			Commits:     entitybuilders.BuildCommitChain(1),
			ErrSequence: []error{authErr("list_commits"), nil},
		}
		detector := &repositorydoubles.StubVendorDetector{
			ClientsByHost: map[string]*repositorydoubles.SpyVendorClient{"github.com": client},
		}
		credentials := &repositorydoubles.StubCredentialStore{
			Tokens: map[string][]string{"github.com": {"stale", "fresh"}},
		}
		router := commands.NewReadRouter(detector, &repositorydoubles.SpyGitEngine{}, credentials, true)

		// when
		_, route, err := router.ListCommits(context.Background(), commands.ReadRequest{
			RepoID:  "repo1",
			Remotes: []string{"https://github.com/a/b.git"},
			Branch:  "main",
			Limit:   10,
		})

		// then
		require.NoError(t, err)
		assert.True(t, route.FromVendor)
		assert.Equal(t, []string{"stale", "fresh"}, detector.FactoryTokens)
	})

	t.Run("should abort the URL on a non-auth failure", func(t *testing.T) {
		t.Parallel()

		// given
		client := &repositorydoubles.SpyVendorClient{
			VendorName:  "github",
			ErrSequence: []error{notFoundErr("list_commits")},
		}
		detector := &repositorydoubles.StubVendorDetector{
			ClientsByHost: map[string]*repositorydoubles.SpyVendorClient{"github.com": client},
		}
		credentials := &repositorydoubles.StubCredentialStore{
			Tokens: map[string][]string{"github.com": {"first", "second"}},
		}
		engine := &repositorydoubles.SpyGitEngine{Commits: entitybuilders.BuildCommitChain(1)}
		router := commands.NewReadRouter(detector, engine, credentials, true)

		// when
		_, route, err := router.ListCommits(context.Background(), commands.ReadRequest{
			RepoID:  "repo1",
			Remotes: []string{"https://github.com/a/b.git"},
			Branch:  "main",
			Limit:   10,
		})

		// then
		require.NoError(t, err)
		assert.False(t, route.FromVendor)
		assert.Equal(t, []string{"first"}, detector.FactoryTokens)
	})

	t.Run("should make one unauthenticated attempt without stored tokens", func(t *testing.T) {
		t.Parallel()

		// given
		client := &repositorydoubles.SpyVendorClient{
			VendorName: "github",
			Commits:    entitybuilders.BuildCommitChain(1),
		}
		detector := &repositorydoubles.StubVendorDetector{
			ClientsByHost: map[string]*repositorydoubles.SpyVendorClient{"github.com": client},
		}
		router := commands.NewReadRouter(detector, &repositorydoubles.SpyGitEngine{},
			&repositorydoubles.StubCredentialStore{}, true)

		// when
		_, route, err := router.ListCommits(context.Background(), commands.ReadRequest{
			RepoID:  "repo1",
			Remotes: []string{"https://github.com/a/b.git"},
			Branch:  "main",
			Limit:   10,
		})

		// then
		require.NoError(t, err)
		assert.True(t, route.FromVendor)
		assert.Equal(t, []string{""}, detector.FactoryTokens)
	})
}

func TestReadRouterVendorFirstToggle(t *testing.T) {
	t.Parallel()

	t.Run("should skip vendors entirely when disabled", func(t *testing.T) {
		t.Parallel()

		// given a healthy vendor that must not be consulted
		client := &repositorydoubles.SpyVendorClient{
			VendorName: "github",
			Commits:    entitybuilders.BuildCommitChain(5),
		}
		detector := &repositorydoubles.StubVendorDetector{
			ClientsByHost: map[string]*repositorydoubles.SpyVendorClient{"github.com": client},
		}
		engine := &repositorydoubles.SpyGitEngine{Commits: entitybuilders.BuildCommitChain(2)}
		router := commands.NewReadRouter(detector, engine,
			&repositorydoubles.StubCredentialStore{}, false)

		// when
		commitsOut, route, err := router.ListCommits(context.Background(), commands.ReadRequest{
			RepoID:  "repo1",
			Remotes: []string{"https://github.com/a/b.git"},
			Branch:  "main",
			Limit:   30,
		})

		// then
		require.NoError(t, err)
		assert.False(t, route.FromVendor)
		assert.Len(t, commitsOut, 2)
		assert.Zero(t, client.Calls)
		assert.False(t, router.VendorAvailable([]string{"https://github.com/a/b.git"}))
	})
}

func TestReadRouterCountCommits(t *testing.T) {
	t.Parallel()

	t.Run("should return a flagged estimate when a vendor is available", func(t *testing.T) {
		t.Parallel()

		// given
		detector := &repositorydoubles.StubVendorDetector{
			ClientsByHost: map[string]*repositorydoubles.SpyVendorClient{
				"github.com": {VendorName: "github"},
			},
		}
		engine := &repositorydoubles.SpyGitEngine{CommitCount: 999}
		router := commands.NewReadRouter(detector, engine,
			&repositorydoubles.StubCredentialStore{}, true)

		// when
		count, err := router.CountCommits(context.Background(), commands.ReadRequest{
			RepoID:  "repo1",
			Remotes: []string{"https://github.com/a/b.git"},
			Branch:  "main",
		}, 30)

		// then
		require.NoError(t, err)
		assert.Equal(t, 30, count.Count)
		assert.True(t, count.IsEstimate)
	})

	t.Run("should ask the engine for an exact count otherwise", func(t *testing.T) {
		t.Parallel()

		// given
		engine := &repositorydoubles.SpyGitEngine{CommitCount: 128}
		router := commands.NewReadRouter(&repositorydoubles.StubVendorDetector{}, engine,
			&repositorydoubles.StubCredentialStore{}, true)

		// when
		count, err := router.CountCommits(context.Background(), commands.ReadRequest{
			RepoID:  "repo1",
			Remotes: []string{"https://git.internal.example/a/b.git"},
			Branch:  "main",
		}, 30)

		// then
		require.NoError(t, err)
		assert.Equal(t, 128, count.Count)
		assert.False(t, count.IsEstimate)
	})
}
