package repositories

import (
	"context"

	"github.com/multigit/reposource/internal/domain/entities"
)

// VendorClient is one authenticated (or anonymous) session against a git
// hosting vendor's REST API, scoped to a single remote. Implementations
// normalize the vendor's response envelope into the shared entity shapes.
type VendorClient interface {
	// Name returns the vendor identifier (e.g. "github", "gitlab").
	Name() string

	// ListDirectory lists one directory level at the given ref.
	ListDirectory(ctx context.Context, ref, path string) ([]entities.DirEntry, error)

	// GetFileContent reads a file's raw content at the given ref.
	GetFileContent(ctx context.Context, ref, path string) ([]byte, error)

	// ListRefs lists branches and tags.
	ListRefs(ctx context.Context) ([]entities.Ref, error)

	// ListCommits lists up to limit commits of branch, newest first.
	ListCommits(ctx context.Context, branch string, limit int) ([]entities.Commit, error)
}

// VendorFactory builds a VendorClient for one remote and one credential.
// An empty token means an unauthenticated session for public repositories.
type VendorFactory func(remote *entities.RemoteURL, token string) (VendorClient, error)

// VendorDetector decides whether a remote belongs to a supported vendor.
// Detection goes by hostname and URL shape, never by what the remote
// claims to be.
type VendorDetector interface {
	// Detect returns the vendor name and factory for the remote, or
	// ok=false when no supported vendor matches.
	Detect(remote *entities.RemoteURL) (name string, factory VendorFactory, ok bool)
}
