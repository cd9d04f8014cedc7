//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multigit/reposource/internal/domain/entities"
)

func TestParseRemoteURL(t *testing.T) {
	t.Parallel()

	t.Run("should parse an HTTPS URL with .git suffix", func(t *testing.T) {
		t.Parallel()

		// given
		url := "https://github.com/myorg/myrepo.git"

		// when
		remote, err := entities.ParseRemoteURL(url)

		// then
		require.NoError(t, err)
		assert.Equal(t, "https", remote.Scheme)
		assert.Equal(t, "github.com", remote.Host)
		assert.Equal(t, "myorg", remote.Owner)
		assert.Equal(t, "myrepo", remote.Repo)
	})

	t.Run("should parse an scp-like SSH URL", func(t *testing.T) {
		t.Parallel()

		// given
		url := "git@gitlab.com:group/project.git"

		// when
		remote, err := entities.ParseRemoteURL(url)

		// then
		require.NoError(t, err)
		assert.Equal(t, "ssh", remote.Scheme)
		assert.Equal(t, "gitlab.com", remote.Host)
		assert.Equal(t, "group", remote.Owner)
		assert.Equal(t, "project", remote.Repo)
	})

	t.Run("should keep nested groups in the owner", func(t *testing.T) {
		t.Parallel()

		// given
		url := "https://gitlab.example.com/group/subgroup/project.git"

		// when
		remote, err := entities.ParseRemoteURL(url)

		// then
		require.NoError(t, err)
		assert.Equal(t, "group/subgroup", remote.Owner)
		assert.Equal(t, "project", remote.Repo)
		assert.Equal(t, "group/subgroup/project", remote.OwnerRepo())
	})

	t.Run("should fail on an empty URL", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := entities.ParseRemoteURL("   ")

		// then
		require.Error(t, err)
	})

	t.Run("should mark wss remotes credential-less but push-capable", func(t *testing.T) {
		t.Parallel()

		// given
		url := "wss://relay.example.net/myorg/myrepo"

		// when
		remote, err := entities.ParseRemoteURL(url)

		// then
		require.NoError(t, err)
		assert.True(t, remote.PushCapable())
		assert.True(t, remote.Credentialless())
	})
}

func TestValidRemotes(t *testing.T) {
	t.Parallel()

	t.Run("should drop empty, duplicate and unparseable candidates", func(t *testing.T) {
		t.Parallel()

		// given
		candidates := []string{
			"https://github.com/a/b.git",
			"",
			"https://github.com/a/b.git",
			"git@gitlab.com:c/d.git",
		}

		// when
		remotes := entities.ValidRemotes(candidates)

		// then
		require.Len(t, remotes, 2)
		assert.Equal(t, "github.com", remotes[0].Host)
		assert.Equal(t, "gitlab.com", remotes[1].Host)
	})

	t.Run("should preserve candidate order", func(t *testing.T) {
		t.Parallel()

		// given
		candidates := []string{
			"https://gitea.example.com/a/b.git",
			"https://github.com/a/b.git",
		}

		// when
		remotes := entities.ValidRemotes(candidates)

		// then
		require.Len(t, remotes, 2)
		assert.Equal(t, "gitea.example.com", remotes[0].Host)
		assert.Equal(t, "github.com", remotes[1].Host)
	})
}
