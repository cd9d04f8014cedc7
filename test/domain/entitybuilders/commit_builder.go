//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"fmt"
	"time"

	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/multigit/reposource/internal/domain/entities"
)

// CommitBuilder helps create test commits with a fluent interface.
type CommitBuilder struct {
	*testkit.BaseBuilder
	sha     string
	message string
	author  string
	email   string
	when    time.Time
	parents []string
}

// NewCommitBuilder creates a new commit builder with sensible defaults.
func NewCommitBuilder() *CommitBuilder {
	return &CommitBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		sha:         "0000000000000000000000000000000000000001",
		message:     "test commit",
		author:      "Test Author",
		email:       "author@example.com",
		when:        time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// WithSHA sets the commit id.
func (b *CommitBuilder) WithSHA(sha string) *CommitBuilder {
	b.sha = sha
	return b
}

// WithMessage sets the commit message.
func (b *CommitBuilder) WithMessage(message string) *CommitBuilder {
	b.message = message
	return b
}

// WithAuthor sets the author name.
func (b *CommitBuilder) WithAuthor(author string) *CommitBuilder {
	b.author = author
	return b
}

// WithWhen sets the author timestamp.
func (b *CommitBuilder) WithWhen(when time.Time) *CommitBuilder {
	b.when = when
	return b
}

// WithParents sets the parent commit ids.
func (b *CommitBuilder) WithParents(parents ...string) *CommitBuilder {
	b.parents = parents
	return b
}

// Build creates the commit (satisfies testkit.Builder interface).
func (b *CommitBuilder) Build() interface{} {
	return b.BuildCommit()
}

// BuildCommit creates the commit with a concrete return type.
func (b *CommitBuilder) BuildCommit() entities.Commit {
	signature := entities.Signature{
		Name:  b.author,
		Email: b.email,
		When:  b.when,
	}
	return entities.Commit{
		SHA:       b.sha,
		Message:   b.message,
		Author:    signature,
		Committer: signature,
		Parents:   b.parents,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *CommitBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.sha = "0000000000000000000000000000000000000001"
	b.message = "test commit"
	b.author = "Test Author"
	b.email = "author@example.com"
	b.when = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	b.parents = nil
	return b
}

// Clone creates a deep copy of the CommitBuilder.
func (b *CommitBuilder) Clone() testkit.Builder {
	return &CommitBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		sha:         b.sha,
		message:     b.message,
		author:      b.author,
		email:       b.email,
		when:        b.when,
		parents:     append([]string(nil), b.parents...),
	}
}

// BuildCommitChain creates n distinct commits, newest first, each linked to
// the previous one.
func BuildCommitChain(n int) []entities.Commit {
	commits := make([]entities.Commit, 0, n)
	for i := range n {
		builder := NewCommitBuilder().
			WithSHA(fmt.Sprintf("%040d", n-i)).
			WithMessage(fmt.Sprintf("commit %d", n-i)).
			WithWhen(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Add(-time.Duration(i) * time.Hour))
		if i < n-1 {
			builder = builder.WithParents(fmt.Sprintf("%040d", n-i-1))
		}
		commits = append(commits, builder.BuildCommit())
	}
	return commits
}
