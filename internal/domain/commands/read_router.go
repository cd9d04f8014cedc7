package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/multigit/reposource/internal/domain/entities"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

// ReadRequest identifies what a read operation targets. Remotes is the
// caller's full candidate set; the router filters and orders it.
type ReadRequest struct {
	RepoID  string
	Remotes []string
	Branch  string
	Path    string
	Limit   int
}

// Attempt records one failed vendor attempt for diagnostics.
type Attempt struct {
	URL string
	Err error
}

// RouteInfo describes how a read was satisfied.
type RouteInfo struct {
	FromVendor bool
	Attempts   []Attempt
}

// ReadRouter chooses the fastest available source per read: vendor REST
// APIs first (URL-level fallback across candidates, credential-level retry
// within each), then the git engine RPC. A vendor failure is never
// surfaced as long as a fallback remains.
type ReadRouter struct {
	detector    domainRepos.VendorDetector
	engine      domainRepos.GitEngine
	credentials domainRepos.CredentialStore
	vendorFirst bool
}

// NewReadRouter wires the router from its explicit dependencies.
func NewReadRouter(
	detector domainRepos.VendorDetector,
	engine domainRepos.GitEngine,
	credentials domainRepos.CredentialStore,
	vendorFirst bool,
) *ReadRouter {
	return &ReadRouter{
		detector:    detector,
		engine:      engine,
		credentials: credentials,
		vendorFirst: vendorFirst,
	}
}

// VendorAvailable reports whether any candidate remote belongs to a
// supported vendor and vendor-first reads are enabled. Best-effort: an
// unparseable candidate never makes this panic or fail.
func (r *ReadRouter) VendorAvailable(remotes []string) bool {
	if !r.vendorFirst {
		return false
	}
	for _, remote := range entities.ValidRemotes(remotes) {
		if _, _, ok := r.detector.Detect(remote); ok {
			return true
		}
	}
	return false
}

// ListDirectory lists one directory level at the requested branch.
func (r *ReadRouter) ListDirectory(ctx context.Context, req ReadRequest) ([]entities.DirEntry, *RouteInfo, error) {
	return routeRead(ctx, r, req, "list_directory",
		func(ctx context.Context, client domainRepos.VendorClient) ([]entities.DirEntry, error) {
			return client.ListDirectory(ctx, req.Branch, req.Path)
		},
		func(ctx context.Context) ([]entities.DirEntry, error) {
			return r.engine.ListRepoFiles(ctx, req.RepoID, req.Branch, req.Path)
		},
	)
}

// GetFileContent reads one file at the requested branch.
func (r *ReadRouter) GetFileContent(ctx context.Context, req ReadRequest) ([]byte, *RouteInfo, error) {
	return routeRead(ctx, r, req, "get_file_content",
		func(ctx context.Context, client domainRepos.VendorClient) ([]byte, error) {
			return client.GetFileContent(ctx, req.Branch, req.Path)
		},
		func(ctx context.Context) ([]byte, error) {
			return r.engine.GetRepoFileContent(ctx, req.RepoID, req.Branch, req.Path)
		},
	)
}

// ListRefs lists branches and tags.
func (r *ReadRouter) ListRefs(ctx context.Context, req ReadRequest) ([]entities.Ref, *RouteInfo, error) {
	return routeRead(ctx, r, req, "list_refs",
		func(ctx context.Context, client domainRepos.VendorClient) ([]entities.Ref, error) {
			return client.ListRefs(ctx)
		},
		func(ctx context.Context) ([]entities.Ref, error) {
			return r.engine.ListBranches(ctx, req.RepoID)
		},
	)
}

// ListCommits lists up to req.Limit commits of req.Branch, newest first.
// The engine equivalent materializes the branch first: history depth may
// exceed what a shallow clone holds.
func (r *ReadRouter) ListCommits(ctx context.Context, req ReadRequest) ([]entities.Commit, *RouteInfo, error) {
	return routeRead(ctx, r, req, "list_commits",
		func(ctx context.Context, client domainRepos.VendorClient) ([]entities.Commit, error) {
			return client.ListCommits(ctx, req.Branch, req.Limit)
		},
		func(ctx context.Context) ([]entities.Commit, error) {
			if err := r.ensureFullData(ctx, req); err != nil {
				return nil, err
			}
			history, err := r.engine.GetCommitHistory(ctx, req.RepoID, req.Branch, req.Limit)
			if err != nil {
				return nil, err
			}
			return history.Commits, nil
		},
	)
}

// CountCommits implements the unified commit-count operation. Vendor APIs
// cannot report an exact total without full pagination, so when a vendor is
// available the caller's loaded count is returned as a flagged estimate;
// exact counts come only from the engine.
func (r *ReadRouter) CountCommits(ctx context.Context, req ReadRequest, loadedCount int) (entities.CommitCount, error) {
	if r.VendorAvailable(req.Remotes) {
		return entities.CommitCount{Count: loadedCount, IsEstimate: true}, nil
	}

	count, err := r.engine.GetCommitCount(ctx, req.RepoID, req.Branch)
	if err != nil {
		return entities.CommitCount{}, err
	}
	return entities.CommitCount{Count: count}, nil
}

// ensureFullData upgrades a shallow or partial clone before a deep read.
func (r *ReadRouter) ensureFullData(ctx context.Context, req ReadRequest) error {
	level, err := r.engine.GetRepoDataLevel(ctx, req.RepoID)
	if err == nil && level == domainRepos.DataLevelFull {
		return nil
	}
	return r.engine.EnsureFullClone(ctx, req.RepoID, req.Branch, req.Limit)
}

// routeRead is the shared routing core: vendor URLs in order with
// per-credential retry, then the engine. The engine fallback is attempted
// on its own merits — it never rethrows a vendor error; when both sides
// fail, the engine failure is surfaced with the vendor attempts chained in
// for context.
func routeRead[T any](
	ctx context.Context,
	r *ReadRouter,
	req ReadRequest,
	op string,
	vendorCall func(ctx context.Context, client domainRepos.VendorClient) (T, error),
	engineCall func(ctx context.Context) (T, error),
) (T, *RouteInfo, error) {
	var zero T
	info := &RouteInfo{}

	if r.vendorFirst {
		for _, remote := range entities.ValidRemotes(req.Remotes) {
			name, factory, ok := r.detector.Detect(remote)
			if !ok {
				continue
			}

			result, err := attemptVendor(ctx, r, remote, name, factory, vendorCall)
			if err == nil {
				info.FromVendor = true
				return result, info, nil
			}
			logger.Debugf("vendor %s failed for %s (%s): %v", name, remote.Raw, op, err)
			info.Attempts = append(info.Attempts, Attempt{URL: remote.Raw, Err: err})
		}
	}

	result, err := engineCall(ctx)
	if err != nil {
		if len(info.Attempts) > 0 {
			err = fmt.Errorf("engine fallback failed after %d vendor attempt(s): %w",
				len(info.Attempts), err)
		}
		return zero, info, err
	}
	return result, info, nil
}

// attemptVendor runs one vendor URL attempt: one call per stored credential
// for the host, moving to the next credential only on an auth rejection; no
// stored credential means a single unauthenticated call.
func attemptVendor[T any](
	ctx context.Context,
	r *ReadRouter,
	remote *entities.RemoteURL,
	name string,
	factory domainRepos.VendorFactory,
	vendorCall func(ctx context.Context, client domainRepos.VendorClient) (T, error),
) (T, error) {
	var zero T

	tokens := r.credentials.TokensForHost(remote.Host)
	if len(tokens) == 0 {
		tokens = []string{""}
	}

	var lastErr error
	for _, token := range tokens {
		client, err := factory(remote, token)
		if err != nil {
			return zero, fmt.Errorf("failed to build %s client: %w", name, err)
		}

		result, callErr := vendorCall(ctx, client)
		if callErr == nil {
			return result, nil
		}
		lastErr = callErr

		if entities.KindOf(callErr) != entities.KindAuthRequired {
			break
		}
	}
	return zero, lastErr
}
