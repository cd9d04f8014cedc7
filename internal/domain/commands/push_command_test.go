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
	"github.com/multigit/reposource/test/infrastructure/repositorydoubles"
)

func newPushCommand(remotes []string, engine *repositorydoubles.SpyGitEngine) *commands.PushCommand {
	detector := &repositorydoubles.StubVendorDetector{
		ClientsByHost: map[string]*repositorydoubles.SpyVendorClient{
			"github.com": {VendorName: "github"},
			"gitlab.com": {VendorName: "gitlab"},
		},
	}
	credentials := &repositorydoubles.StubCredentialStore{
		Tokens: map[string][]string{
			"github.com": {"gh-token"},
			"gitlab.com": {"gl-token"},
		},
	}
	return commands.NewPushCommand("repo1", remotes, detector, engine, credentials)
}

func TestPushToAllRemotes(t *testing.T) {
	t.Parallel()

	t.Run("should push to every remote with its own credential", func(t *testing.T) {
		t.Parallel()

		// given
		engine := &repositorydoubles.SpyGitEngine{}
		command := newPushCommand([]string{
			"https://github.com/a/b.git",
			"https://gitlab.com/a/b.git",
		}, engine)

		// when
		result, err := command.PushToAllRemotes(context.Background(), commands.PushOptions{
			Branch: "main",
		})

		// then
		require.NoError(t, err)
		assert.True(t, result.AllSucceeded)
		assert.True(t, result.AnySucceeded)
		require.Len(t, engine.PushRequests, 2)
		assert.Equal(t, "gh-token", engine.PushRequests[0].Token)
		assert.Equal(t, "github", engine.PushRequests[0].Provider)
		assert.Equal(t, "gl-token", engine.PushRequests[1].Token)
		assert.Equal(t, "repo1", engine.PushRequests[1].RepoID)
	})

	t.Run("should continue past a failing remote in best-effort mode", func(t *testing.T) {
		t.Parallel()

		// given one remote that rejects the push
		engine := &repositorydoubles.SpyGitEngine{
			PushErrByURL: map[string]error{
				"https://github.com/a/b.git": errors.New("rejected"),
			},
		}
		command := newPushCommand([]string{
			"https://github.com/a/b.git",
			"https://gitlab.com/a/b.git",
		}, engine)

		// when
		result, err := command.PushToAllRemotes(context.Background(), commands.PushOptions{
			Branch: "main",
			Mode:   entities.PushBestEffort,
		})

		// then partial success is not an error
		require.NoError(t, err)
		assert.True(t, result.AnySucceeded)
		assert.False(t, result.AllSucceeded)
		assert.Equal(t, []string{"https://github.com/a/b.git"}, result.FailedRemotes())
		assert.Len(t, engine.PushRequests, 2)
	})

	t.Run("should raise with the full breakdown in all-or-nothing mode", func(t *testing.T) {
		t.Parallel()

		// given
		engine := &repositorydoubles.SpyGitEngine{
			PushErrByURL: map[string]error{
				"https://gitlab.com/a/b.git": errors.New("protected branch"),
			},
		}
		command := newPushCommand([]string{
			"https://github.com/a/b.git",
			"https://gitlab.com/a/b.git",
		}, engine)

		// when
		result, err := command.PushToAllRemotes(context.Background(), commands.PushOptions{
			Branch: "main",
			Mode:   entities.PushAllOrNothing,
		})

		// then every remote was still attempted
		require.Error(t, err)
		assert.Equal(t, entities.ClassUserActionable, entities.ClassOf(err))
		require.NotNil(t, result)
		require.Len(t, result.Results, 2)
		assert.True(t, result.Results[0].Success)
		assert.False(t, result.Results[1].Success)
		assert.Contains(t, err.Error(), "https://gitlab.com/a/b.git")
	})

	t.Run("should raise retriable when every remote failed", func(t *testing.T) {
		t.Parallel()

		// given
		engine := &repositorydoubles.SpyGitEngine{PushErr: errors.New("network down")}
		command := newPushCommand([]string{"https://github.com/a/b.git"}, engine)

		// when
		result, err := command.PushToAllRemotes(context.Background(), commands.PushOptions{
			Branch: "main",
			Mode:   entities.PushBestEffort,
		})

		// then
		require.Error(t, err)
		assert.Equal(t, entities.ClassRetriable, entities.ClassOf(err))
		assert.False(t, result.AnySucceeded)
	})

	t.Run("should fail fast without a repository id", func(t *testing.T) {
		t.Parallel()

		// given
		engine := &repositorydoubles.SpyGitEngine{}
		command := commands.NewPushCommand("", []string{"https://github.com/a/b.git"},
			&repositorydoubles.StubVendorDetector{}, engine,
			&repositorydoubles.StubCredentialStore{})

		// when
		_, err := command.PushToAllRemotes(context.Background(), commands.PushOptions{Branch: "main"})

		// then
		require.Error(t, err)
		assert.Equal(t, entities.ClassFatal, entities.ClassOf(err))
		assert.Empty(t, engine.PushRequests)
	})

	t.Run("should require at least one push-capable remote", func(t *testing.T) {
		t.Parallel()

		// given only unparseable candidates
		engine := &repositorydoubles.SpyGitEngine{}
		command := newPushCommand([]string{"", "   "}, engine)

		// when
		_, err := command.PushToAllRemotes(context.Background(), commands.PushOptions{Branch: "main"})

		// then
		require.Error(t, err)
		assert.Equal(t, entities.ClassUserActionable, entities.ClassOf(err))
	})

	t.Run("should skip credential resolution for credential-less remotes", func(t *testing.T) {
		t.Parallel()

		// given a wss relay remote on a host that has stored tokens
		engine := &repositorydoubles.SpyGitEngine{}
		detector := &repositorydoubles.StubVendorDetector{}
		credentials := &repositorydoubles.StubCredentialStore{
			Tokens: map[string][]string{"relay.github.com": {"must-not-leak"}},
		}
		command := commands.NewPushCommand("repo1",
			[]string{"wss://relay.github.com/a/b"}, detector, engine, credentials)

		// when
		result, err := command.PushToAllRemotes(context.Background(), commands.PushOptions{
			Branch: "main",
		})

		// then the push went out without a token
		require.NoError(t, err)
		assert.True(t, result.AllSucceeded)
		require.Len(t, engine.PushRequests, 1)
		assert.Empty(t, engine.PushRequests[0].Token)
		assert.Empty(t, engine.PushRequests[0].Provider)
	})

	t.Run("should forward force and confirmation flags to the engine", func(t *testing.T) {
		t.Parallel()

		// given
		engine := &repositorydoubles.SpyGitEngine{}
		command := newPushCommand([]string{"https://github.com/a/b.git"}, engine)

		// when
		_, err := command.PushToAllRemotes(context.Background(), commands.PushOptions{
			Branch:             "refs/heads/main",
			AllowForce:         true,
			ConfirmDestructive: true,
		})

		// then
		require.NoError(t, err)
		require.Len(t, engine.PushRequests, 1)
		assert.True(t, engine.PushRequests[0].AllowForce)
		assert.True(t, engine.PushRequests[0].ConfirmDestructive)
		assert.Equal(t, "main", engine.PushRequests[0].Branch)
	})
}
