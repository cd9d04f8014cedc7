package commands

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	logger "github.com/sirupsen/logrus"

	"github.com/multigit/reposource/internal/domain/entities"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

// BranchSwitcher coordinates a branch change across the loader, the caches
// and the git engine. One switch at a time; an overlapping call fails
// immediately instead of queueing.
type BranchSwitcher struct {
	repoID  string
	remotes []string
	router  *ReadRouter
	engine  domainRepos.GitEngine
	loader  *CommitLoader
	cache   domainRepos.CacheStore

	switching atomic.Bool
	refs      atomic.Pointer[[]entities.Ref]
	observers []func(branch string)
}

// NewBranchSwitcher wires the coordinator from its explicit dependencies.
func NewBranchSwitcher(
	repoID string,
	remotes []string,
	router *ReadRouter,
	engine domainRepos.GitEngine,
	loader *CommitLoader,
	cacheStore domainRepos.CacheStore,
) *BranchSwitcher {
	return &BranchSwitcher{
		repoID:  repoID,
		remotes: remotes,
		router:  router,
		engine:  engine,
		loader:  loader,
		cache:   cacheStore,
	}
}

// Switching reports whether a switch is in flight.
func (s *BranchSwitcher) Switching() bool { return s.switching.Load() }

// Refs returns the last loaded ref list, possibly nil before the first
// switch or refresh.
func (s *BranchSwitcher) Refs() []entities.Ref {
	if refs := s.refs.Load(); refs != nil {
		return *refs
	}
	return nil
}

// OnSwitched registers a callback invoked after a successful switch, once
// the switching gate has been cleared.
func (s *BranchSwitcher) OnSwitched(observer func(branch string)) {
	s.observers = append(s.observers, observer)
}

// SetSelectedBranch switches the active branch: syncs with the remotes
// when the engine is the read source, invalidates stale caches, resets the
// loader's paging session and loads the first page of the new branch.
func (s *BranchSwitcher) SetSelectedBranch(ctx context.Context, name string) error {
	if !s.switching.CompareAndSwap(false, true) {
		return entities.NewOpError(entities.KindUnknown, entities.ClassRetriable,
			"switch_branch", fmt.Errorf("a branch switch is already in progress"))
	}

	branch := entities.ShortRefName(name)
	if branch == "" {
		s.switching.Store(false)
		return entities.NewOpError(entities.KindUnknown, entities.ClassFatal,
			"switch_branch", fmt.Errorf("branch name is empty"))
	}
	if s.repoID == "" {
		s.switching.Store(false)
		return entities.NewOpError(entities.KindUnknown, entities.ClassFatal,
			"switch_branch", fmt.Errorf("repository id is missing")).WithBranch(branch)
	}

	// Tags are read-only checkouts: history still loads, but there is no
	// upstream to sync against.
	isTag := isTagRef(name)

	// Vendor reads hit the provider API live, so the local clone's
	// staleness does not matter and the sync round-trip is skipped.
	if !isTag && !s.router.VendorAvailable(s.remotes) {
		sync, err := s.engine.SyncWithRemote(ctx, s.repoID, entities.RawRemotes(s.remotes), branch)
		if err != nil {
			// Fail safe: an unknown sync state means caches may be stale.
			logger.Warnf("sync with remote failed for %s, invalidating caches: %v", branch, err)
			s.invalidateCaches()
		} else if sync.NeedsUpdate {
			s.invalidateCaches()
		}
	}

	if err := s.engine.EnsureFullClone(ctx, s.repoID, branch, 0); err != nil {
		logger.Debugf("full clone upgrade failed for %s: %v", branch, err)
	}

	s.loader.ResetForBranch(branch, "")

	result, err := s.loader.load(ctx, branch, "")
	if err != nil {
		// The session was already reset to the new branch; observers still
		// get that partial state so they do not keep rendering the old one.
		s.switching.Store(false)
		s.loader.publish()
		return err
	}
	logger.Debugf("switched to %s: %d commit(s) loaded (cache=%t vendor=%t)",
		branch, len(result.Commits), result.FromCache, result.FromVendor)

	s.reloadRefs(ctx)

	// Clear the gate before publication so observers reading Switching()
	// inside the callback see the switch as finished.
	s.switching.Store(false)
	s.loader.publish()
	for _, observer := range s.observers {
		observer(branch)
	}
	return nil
}

// RefreshRefs reloads the branch and tag list outside a switch.
func (s *BranchSwitcher) RefreshRefs(ctx context.Context) ([]entities.Ref, error) {
	refs, _, err := s.router.ListRefs(ctx, ReadRequest{
		RepoID:  s.repoID,
		Remotes: s.remotes,
	})
	if err != nil {
		return nil, err
	}
	s.refs.Store(&refs)
	return refs, nil
}

// reloadRefs is the best-effort variant used during a switch: a failure is
// logged and the previous list kept.
func (s *BranchSwitcher) reloadRefs(ctx context.Context) {
	if _, err := s.RefreshRefs(ctx); err != nil {
		logger.Warnf("ref reload failed after branch switch: %v", err)
	}
}

func (s *BranchSwitcher) invalidateCaches() {
	s.cache.Clear(CommitHistoryCacheName)
	s.cache.Clear(FileContentCacheName)
}

func isTagRef(name string) bool {
	return strings.HasPrefix(name, "refs/tags/")
}
