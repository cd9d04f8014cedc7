//go:build unit

package gitlab

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gl "gitlab.com/gitlab-org/api/client-go"
)

func TestNormalizeCommit(t *testing.T) {
	t.Parallel()

	t.Run("should map the full commit shape", func(t *testing.T) {
		t.Parallel()

		// given
		authored := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		committed := authored.Add(5 * time.Minute)
		item := &gl.Commit{
			ID:             "abc123",
			Message:        "first\n\nbody",
			AuthorName:     "Alice",
			AuthorEmail:    "alice@example.com",
			AuthoredDate:   &authored,
			CommitterName:  "CI",
			CommitterEmail: "ci@example.com",
			CommittedDate:  &committed,
			ParentIDs:      []string{"def456"},
		}

		// when
		commit := normalizeCommit(item)

		// then
		assert.Equal(t, "abc123", commit.SHA)
		assert.Equal(t, "first\n\nbody", commit.Message)
		assert.Equal(t, "Alice", commit.Author.Name)
		assert.Equal(t, authored, commit.Author.When)
		assert.Equal(t, "CI", commit.Committer.Name)
		assert.Equal(t, committed, commit.Committer.When)
		assert.Equal(t, []string{"def456"}, commit.Parents)
	})

	t.Run("should tolerate missing dates", func(t *testing.T) {
		t.Parallel()

		// given
		item := &gl.Commit{ID: "abc123", Message: "orphan"}

		// when
		commit := normalizeCommit(item)

		// then
		assert.True(t, commit.Author.When.IsZero())
		assert.True(t, commit.Committer.When.IsZero())
	})
}

func TestPageSizeFor(t *testing.T) {
	t.Parallel()

	t.Run("should request exactly a small limit", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 30, pageSizeFor(30))
	})

	t.Run("should cap large and unbounded limits at the page size", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, perPage, pageSizeFor(500))
		assert.Equal(t, perPage, pageSizeFor(0))
	})
}
