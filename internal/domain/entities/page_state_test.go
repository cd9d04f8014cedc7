//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/multigit/reposource/internal/domain/entities"
)

func TestCommitPageState(t *testing.T) {
	t.Parallel()

	t.Run("should start with an unknown total", func(t *testing.T) {
		t.Parallel()

		// when
		state := entities.NewCommitPageState(30)

		// then
		assert.False(t, state.TotalKnown())
		assert.Equal(t, 1, state.CurrentPage)
		assert.Equal(t, 30, state.PageSize)
	})

	t.Run("should fall back to the default page size", func(t *testing.T) {
		t.Parallel()

		// when
		state := entities.NewCommitPageState(0)

		// then
		assert.Equal(t, entities.DefaultPageSize, state.PageSize)
	})

	t.Run("should derive has-more from an exact total", func(t *testing.T) {
		t.Parallel()

		// given
		state := entities.NewCommitPageState(30)
		state.TotalCommits = 45

		// then
		state.CurrentPage = 1
		assert.True(t, state.DeriveHasMore(30))
		state.CurrentPage = 2
		assert.False(t, state.DeriveHasMore(15))
	})

	t.Run("should use the full-page heuristic for estimated totals", func(t *testing.T) {
		t.Parallel()

		// given an estimate equal to the loaded count
		state := entities.NewCommitPageState(30)
		state.TotalCommits = 30
		state.TotalIsEstimate = true
		state.CurrentPage = 1

		// then a full page still means more may exist
		assert.True(t, state.DeriveHasMore(30))
		assert.False(t, state.DeriveHasMore(12))
	})

	t.Run("should reset per-branch session state only", func(t *testing.T) {
		t.Parallel()

		// given
		state := entities.NewCommitPageState(10)
		state.Commits = []entities.Commit{{SHA: "a"}}
		state.TotalCommits = 99
		state.CurrentPage = 4
		state.HasMore = true

		// when
		state.ResetForBranch("feature/x", "main")

		// then
		assert.Empty(t, state.Commits)
		assert.False(t, state.TotalKnown())
		assert.Equal(t, 1, state.CurrentPage)
		assert.Equal(t, 10, state.PageSize)
		assert.Equal(t, "feature/x", state.CurrentBranch)
		assert.Equal(t, "main", state.MainBranch)
	})
}
