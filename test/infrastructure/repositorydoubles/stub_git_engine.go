//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations — no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/multigit/reposource/internal/domain/entities"
	"github.com/multigit/reposource/internal/domain/repositories"
)

// SpyGitEngine implements repositories.GitEngine as a configurable spy.
type SpyGitEngine struct {
	// --- GetRepoDataLevel ---
	DataLevel    repositories.DataLevel
	DataLevelErr error

	// --- EnsureFullClone ---
	EnsureFullCloneErr   error
	EnsureFullCloneCalls int

	// --- GetCommitHistory ---
	Commits          []entities.Commit
	CommitHistoryErr error
	HistoryDepths    []int

	// --- GetCommitCount ---
	CommitCount    int
	CommitCountErr error

	// --- SyncWithRemote ---
	SyncNeedsUpdate bool
	SyncErr         error
	SyncCalls       int
	SyncedBranches  []string

	// --- ListRepoFiles ---
	Files        []entities.DirEntry
	ListFilesErr error

	// --- GetRepoFileContent ---
	FileContent    []byte
	FileContentErr error

	// --- ListBranches ---
	Refs            []entities.Ref
	ListBranchesErr error

	// --- SafePushToRemote ---
	PushErr        error
	PushErrByURL   map[string]error
	PushRequests   []repositories.PushRequest
}

var _ repositories.GitEngine = (*SpyGitEngine)(nil)

func (e *SpyGitEngine) GetRepoDataLevel(_ context.Context, _ string) (repositories.DataLevel, error) {
	if e.DataLevel == "" && e.DataLevelErr == nil {
		return repositories.DataLevelFull, nil
	}
	return e.DataLevel, e.DataLevelErr
}

func (e *SpyGitEngine) EnsureFullClone(_ context.Context, _, _ string, _ int) error {
	e.EnsureFullCloneCalls++
	return e.EnsureFullCloneErr
}

func (e *SpyGitEngine) GetCommitHistory(
	_ context.Context, _, _ string, depth int,
) (*repositories.CommitHistoryResult, error) {
	e.HistoryDepths = append(e.HistoryDepths, depth)
	if e.CommitHistoryErr != nil {
		return nil, e.CommitHistoryErr
	}
	commits := e.Commits
	if depth > 0 && depth < len(commits) {
		commits = commits[:depth]
	}
	return &repositories.CommitHistoryResult{Commits: commits}, nil
}

func (e *SpyGitEngine) GetCommitCount(_ context.Context, _, _ string) (int, error) {
	return e.CommitCount, e.CommitCountErr
}

func (e *SpyGitEngine) SyncWithRemote(
	_ context.Context, _ string, _ []string, branch string,
) (*repositories.SyncResult, error) {
	e.SyncCalls++
	e.SyncedBranches = append(e.SyncedBranches, branch)
	if e.SyncErr != nil {
		return nil, e.SyncErr
	}
	return &repositories.SyncResult{NeedsUpdate: e.SyncNeedsUpdate}, nil
}

func (e *SpyGitEngine) ListRepoFiles(
	_ context.Context, _, _, _ string,
) ([]entities.DirEntry, error) {
	return e.Files, e.ListFilesErr
}

func (e *SpyGitEngine) GetRepoFileContent(
	_ context.Context, _, _, _ string,
) ([]byte, error) {
	return e.FileContent, e.FileContentErr
}

func (e *SpyGitEngine) ListBranches(_ context.Context, _ string) ([]entities.Ref, error) {
	return e.Refs, e.ListBranchesErr
}

func (e *SpyGitEngine) SafePushToRemote(_ context.Context, req repositories.PushRequest) error {
	e.PushRequests = append(e.PushRequests, req)
	if e.PushErrByURL != nil {
		if err, ok := e.PushErrByURL[req.RemoteURL]; ok {
			return err
		}
		return nil
	}
	return e.PushErr
}
