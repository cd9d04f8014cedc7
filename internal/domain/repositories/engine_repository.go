package repositories

import (
	"context"

	"github.com/multigit/reposource/internal/domain/entities"
)

// DataLevel describes how much of a repository the engine holds locally.
type DataLevel string

const (
	DataLevelNone    DataLevel = "none"
	DataLevelShallow DataLevel = "shallow"
	DataLevelFull    DataLevel = "full"
)

// CommitHistoryResult is the engine's answer to a history read.
type CommitHistoryResult struct {
	Commits      []entities.Commit
	FallbackUsed bool
}

// SyncResult reports whether a remote sync pulled anything new.
type SyncResult struct {
	NeedsUpdate bool
}

// PushRequest carries everything the engine needs to push one branch to
// one remote.
type PushRequest struct {
	RepoID             string
	RemoteURL          string
	Branch             string
	Token              string
	Provider           string
	AllowForce         bool
	ConfirmDestructive bool
}

// GitEngine is the local git execution engine behind the RPC boundary.
// It is the source of truth for writes and the fallback source for reads
// when no vendor API is reachable. Calls run to completion once issued;
// ctx bounds only the transport.
type GitEngine interface {
	GetRepoDataLevel(ctx context.Context, repoID string) (DataLevel, error)
	EnsureFullClone(ctx context.Context, repoID, branch string, depth int) error
	GetCommitHistory(ctx context.Context, repoID, branch string, depth int) (*CommitHistoryResult, error)
	GetCommitCount(ctx context.Context, repoID, branch string) (int, error)
	SyncWithRemote(ctx context.Context, repoID string, cloneURLs []string, branch string) (*SyncResult, error)
	ListRepoFiles(ctx context.Context, repoID, branch, path string) ([]entities.DirEntry, error)
	GetRepoFileContent(ctx context.Context, repoID, branch, path string) ([]byte, error)
	ListBranches(ctx context.Context, repoID string) ([]entities.Ref, error)
	SafePushToRemote(ctx context.Context, req PushRequest) error
}
