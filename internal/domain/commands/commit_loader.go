package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/multigit/reposource/internal/domain/entities"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

// CommitHistoryCacheName is the cache namespace for commit pages.
const CommitHistoryCacheName = "commit_history"

// CommitPage is the cached payload for one commit page. RepoKey and Branch
// are embedded so a read can re-validate the payload against the request
// and catch cache-key collisions across repository instances.
type CommitPage struct {
	RepoKey         string
	Branch          string
	Commits         []entities.Commit
	Total           int
	TotalIsEstimate bool
}

// CommitLoadResult is what one load call returns.
type CommitLoadResult struct {
	Commits         []entities.Commit
	TotalCount      int
	TotalIsEstimate bool
	FromCache       bool
	FromVendor      bool
}

// CommitLoader pages through a branch's commit history, vendor-first with
// engine fallback, keeping a branch- and page-keyed cache so revisiting a
// recent branch is near-instant. One loader serves one repository.
//
// Only one load may be in flight per loader. A generation counter guards
// against a branch switch racing an outstanding load: a response whose
// generation is stale is discarded instead of published.
type CommitLoader struct {
	repoID  string
	remotes []string
	router  *ReadRouter
	cache   domainRepos.CacheStore

	mu         sync.Mutex
	state      entities.CommitPageState
	loading    bool
	generation uint64
	observers  []func(entities.CommitPageState)
}

// NewCommitLoader builds a loader for one repository and registers its
// cache namespace.
func NewCommitLoader(
	repoID string,
	remotes []string,
	mainBranch string,
	pageSize int,
	router *ReadRouter,
	cacheStore domainRepos.CacheStore,
	ttl time.Duration,
) *CommitLoader {
	cacheStore.Register(CommitHistoryCacheName, domainRepos.CacheOptions{
		TTL:       ttl,
		KeyPrefix: "ch:",
	})

	state := entities.NewCommitPageState(pageSize)
	state.MainBranch = mainBranch

	return &CommitLoader{
		repoID:  repoID,
		remotes: remotes,
		router:  router,
		cache:   cacheStore,
		state:   state,
	}
}

// SetPageSize changes the page size. A change starts a fresh session for
// the current branch since the accumulated pages no longer line up.
func (l *CommitLoader) SetPageSize(pageSize int) {
	if pageSize <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if pageSize == l.state.PageSize {
		return
	}
	l.generation++
	branch, main := l.state.CurrentBranch, l.state.MainBranch
	l.state = entities.NewCommitPageState(pageSize)
	l.state.CurrentBranch = branch
	l.state.MainBranch = main
}

// Subscribe registers an observer called after every published state
// change. Callbacks run outside the loader lock.
func (l *CommitLoader) Subscribe(observer func(entities.CommitPageState)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, observer)
}

// State returns a snapshot of the current page state.
func (l *CommitLoader) State() entities.CommitPageState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// LoadCommits loads the current page for the given branch (empty means the
// loader's current branch, then the main branch) and publishes the result.
func (l *CommitLoader) LoadCommits(ctx context.Context, branch, mainBranch string) (*CommitLoadResult, error) {
	result, err := l.load(ctx, branch, mainBranch)
	if err != nil {
		return nil, err
	}
	l.publish()
	return result, nil
}

// LoadPage jumps to page n (1-based) and loads it.
func (l *CommitLoader) LoadPage(ctx context.Context, page int) (*CommitLoadResult, error) {
	if page < 1 {
		return nil, entities.NewOpError(entities.KindUnknown, entities.ClassFatal,
			"load_page", fmt.Errorf("page must be >= 1, got %d", page))
	}

	l.mu.Lock()
	l.state.CurrentPage = page
	l.mu.Unlock()

	return l.LoadCommits(ctx, "", "")
}

// LoadMoreCommits advances to the next page. It is a no-op failure when a
// load is already in flight or no more commits exist.
func (l *CommitLoader) LoadMoreCommits(ctx context.Context) (*CommitLoadResult, error) {
	l.mu.Lock()
	if l.loading {
		l.mu.Unlock()
		return nil, entities.NewOpError(entities.KindUnknown, entities.ClassRetriable,
			"load_more", fmt.Errorf("a commit load is already in flight"))
	}
	if !l.state.HasMore {
		l.mu.Unlock()
		return nil, entities.NewOpError(entities.KindUnknown, entities.ClassRetriable,
			"load_more", fmt.Errorf("no more commits for branch %q", l.state.CurrentBranch))
	}
	l.state.CurrentPage++
	previousPage := l.state.CurrentPage - 1
	l.mu.Unlock()

	result, err := l.LoadCommits(ctx, "", "")
	if err != nil {
		l.mu.Lock()
		l.state.CurrentPage = previousPage
		l.mu.Unlock()
		return nil, err
	}
	return result, nil
}

// RefreshCommits drops the cache namespace and reloads page 1 from the
// sources.
func (l *CommitLoader) RefreshCommits(ctx context.Context) (*CommitLoadResult, error) {
	l.mu.Lock()
	l.generation++
	l.state.CurrentPage = 1
	l.state.TotalCommits = -1
	l.state.TotalIsEstimate = false
	l.mu.Unlock()

	l.cache.Clear(CommitHistoryCacheName)
	return l.LoadCommits(ctx, "", "")
}

// ResetForBranch starts a new branch session: accumulated commits and the
// total are dropped, the page cache (branch-keyed, naturally isolated)
// survives, and any in-flight load is invalidated.
func (l *CommitLoader) ResetForBranch(branch, mainBranch string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	if mainBranch == "" {
		mainBranch = l.state.MainBranch
	}
	l.state.ResetForBranch(entities.ShortRefName(branch), mainBranch)
}

// load runs one load without publishing, so the branch switcher can order
// publication after its switching gate is cleared.
func (l *CommitLoader) load(ctx context.Context, branch, mainBranch string) (*CommitLoadResult, error) {
	l.mu.Lock()

	if l.loading {
		l.mu.Unlock()
		return nil, entities.NewOpError(entities.KindUnknown, entities.ClassRetriable,
			"load_commits", fmt.Errorf("a commit load is already in flight"))
	}

	effectiveBranch, effectiveMain, err := l.resolveBranchLocked(branch, mainBranch)
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}
	l.state.CurrentBranch = effectiveBranch
	l.state.MainBranch = effectiveMain

	page := l.state.CurrentPage
	pageSize := l.state.PageSize
	key := commitPageKey(l.repoID, effectiveBranch, page, pageSize)

	// Cache hit: adopt without touching the network. The payload's own
	// repo/branch must match the request, not just the key.
	if payload, ok := l.cache.Get(CommitHistoryCacheName, key); ok {
		if cached, ok := payload.(*CommitPage); ok &&
			cached.RepoKey == l.repoID && cached.Branch == effectiveBranch {
			l.adoptPageLocked(page, cached.Commits, cached.Total, cached.TotalIsEstimate)
			result := &CommitLoadResult{
				Commits:         l.snapshotCommitsLocked(),
				TotalCount:      l.state.TotalCommits,
				TotalIsEstimate: l.state.TotalIsEstimate,
				FromCache:       true,
			}
			l.mu.Unlock()
			return result, nil
		}
	}

	l.loading = true
	generation := l.generation
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.loading = false
		l.mu.Unlock()
	}()

	// Always re-fetch from the start up to the required depth; simpler
	// than delta pages and the page cache absorbs the cost.
	requiredDepth := pageSize * page
	all, route, err := l.router.ListCommits(ctx, ReadRequest{
		RepoID:  l.repoID,
		Remotes: l.remotes,
		Branch:  effectiveBranch,
		Limit:   requiredDepth,
	})
	if err != nil {
		return nil, err
	}

	total, totalIsEstimate := l.resolveTotal(ctx, effectiveBranch, page, requiredDepth, all)

	l.mu.Lock()

	// Fresh-read rule: the branch may have switched while the request was
	// outstanding. A stale generation means these commits belong to a
	// previous session and must not be merged into the new one.
	if generation != l.generation {
		l.mu.Unlock()
		logger.Debugf("discarding stale commit load for %s (generation %d)", effectiveBranch, generation)
		return nil, entities.NewOpError(entities.KindUnknown, entities.ClassRetriable,
			"load_commits", fmt.Errorf("superseded by a branch switch")).WithBranch(effectiveBranch)
	}

	start := (page - 1) * pageSize
	end := min(page*pageSize, len(all))
	var pageCommits []entities.Commit
	if start < len(all) {
		pageCommits = all[start:end]
	}

	l.adoptPageLocked(page, pageCommits, total, totalIsEstimate)
	if end < len(all) {
		l.state.HasMore = true
	}

	result := &CommitLoadResult{
		Commits:         l.snapshotCommitsLocked(),
		TotalCount:      l.state.TotalCommits,
		TotalIsEstimate: l.state.TotalIsEstimate,
		FromVendor:      route.FromVendor,
	}
	l.mu.Unlock()

	l.cache.Set(CommitHistoryCacheName, key, &CommitPage{
		RepoKey:         l.repoID,
		Branch:          effectiveBranch,
		Commits:         pageCommits,
		Total:           total,
		TotalIsEstimate: totalIsEstimate,
	})

	return result, nil
}

// resolveTotal establishes the commit total once per branch session, on
// page 1 only. This path never fails: when no exact count is reachable the
// loaded count becomes the estimate and the page heuristic decides HasMore.
func (l *CommitLoader) resolveTotal(ctx context.Context, branch string, page, requiredDepth int, all []entities.Commit) (int, bool) {
	l.mu.Lock()
	known := l.state.TotalKnown()
	currentTotal := l.state.TotalCommits
	currentEstimate := l.state.TotalIsEstimate
	l.mu.Unlock()

	if known || page != 1 {
		return currentTotal, currentEstimate
	}

	// Fewer commits than asked for means the history is exhausted and the
	// loaded count is exact.
	if len(all) < requiredDepth {
		return len(all), false
	}

	count, err := l.router.CountCommits(ctx, ReadRequest{
		RepoID:  l.repoID,
		Remotes: l.remotes,
		Branch:  branch,
	}, len(all))
	if err != nil {
		logger.Warnf("commit count unavailable for %s, assuming more: %v", branch, err)
		return len(all), true
	}
	return count.Count, count.IsEstimate
}

// adoptPageLocked publishes one page into the state: page 1 replaces the
// accumulated commits, later pages replace everything from their own page
// boundary onward, so re-adopting a page already held (a cache hit on the
// current page) cannot duplicate it. Caller holds the lock.
func (l *CommitLoader) adoptPageLocked(page int, commits []entities.Commit, total int, totalIsEstimate bool) {
	if page == 1 {
		l.state.Commits = append([]entities.Commit(nil), commits...)
	} else {
		keep := min(len(l.state.Commits), (page-1)*l.state.PageSize)
		l.state.Commits = append(l.state.Commits[:keep], commits...)
	}
	l.state.CurrentPage = page
	l.state.TotalCommits = total
	l.state.TotalIsEstimate = totalIsEstimate
	l.state.HasMore = l.state.DeriveHasMore(len(commits))
}

func (l *CommitLoader) resolveBranchLocked(branch, mainBranch string) (string, string, error) {
	effectiveMain := firstNonEmpty(mainBranch, l.state.MainBranch)
	effectiveBranch := entities.ShortRefName(
		firstNonEmpty(branch, l.state.CurrentBranch, effectiveMain))

	if l.repoID == "" {
		return "", "", entities.NewOpError(entities.KindUnknown, entities.ClassFatal,
			"load_commits", fmt.Errorf("repository id is missing"))
	}
	if effectiveBranch == "" {
		return "", "", entities.NewOpError(entities.KindUnknown, entities.ClassFatal,
			"load_commits", fmt.Errorf("no branch resolved (no branch, current branch, or main branch)"))
	}
	return effectiveBranch, effectiveMain, nil
}

func (l *CommitLoader) snapshotLocked() entities.CommitPageState {
	snapshot := l.state
	snapshot.Commits = l.snapshotCommitsLocked()
	return snapshot
}

func (l *CommitLoader) snapshotCommitsLocked() []entities.Commit {
	return append([]entities.Commit(nil), l.state.Commits...)
}

// publish notifies observers with a state snapshot, outside the lock.
func (l *CommitLoader) publish() {
	l.mu.Lock()
	snapshot := l.snapshotLocked()
	observers := append([]func(entities.CommitPageState){}, l.observers...)
	l.mu.Unlock()

	for _, observer := range observers {
		observer(snapshot)
	}
}

func commitPageKey(repoKey, branch string, page, pageSize int) string {
	return fmt.Sprintf("%s:%s:p%d:s%d", repoKey, branch, page, pageSize)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
