package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/multigit/reposource/internal/domain/entities"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

// FileContentCacheName is the cache namespace for directory listings and
// file contents.
const FileContentCacheName = "file_content"

// fileContentMaxEntries bounds the namespace; file blobs can be large.
const fileContentMaxEntries = 256

// FileBrowser serves directory listings and file contents through the read
// router, with a branch- and path-keyed cache in front.
type FileBrowser struct {
	repoID  string
	remotes []string
	router  *ReadRouter
	cache   domainRepos.CacheStore
}

// NewFileBrowser builds a browser for one repository and registers its
// cache namespace.
func NewFileBrowser(
	repoID string,
	remotes []string,
	router *ReadRouter,
	cacheStore domainRepos.CacheStore,
	ttl time.Duration,
) *FileBrowser {
	cacheStore.Register(FileContentCacheName, domainRepos.CacheOptions{
		TTL:       ttl,
		MaxSize:   fileContentMaxEntries,
		KeyPrefix: "fc:",
	})

	return &FileBrowser{
		repoID:  repoID,
		remotes: remotes,
		router:  router,
		cache:   cacheStore,
	}
}

// ListDirectory lists one directory level of the given branch.
func (b *FileBrowser) ListDirectory(ctx context.Context, branch, path string) ([]entities.DirEntry, error) {
	key := fileCacheKey(b.repoID, "dir", branch, path)
	if payload, ok := b.cache.Get(FileContentCacheName, key); ok {
		if entries, ok := payload.([]entities.DirEntry); ok {
			return entries, nil
		}
	}

	entries, _, err := b.router.ListDirectory(ctx, ReadRequest{
		RepoID:  b.repoID,
		Remotes: b.remotes,
		Branch:  entities.ShortRefName(branch),
		Path:    path,
	})
	if err != nil {
		return nil, err
	}

	b.cache.Set(FileContentCacheName, key, entries)
	return entries, nil
}

// ReadFile reads one file of the given branch.
func (b *FileBrowser) ReadFile(ctx context.Context, branch, path string) ([]byte, error) {
	if path == "" {
		return nil, entities.NewOpError(entities.KindUnknown, entities.ClassFatal,
			"read_file", fmt.Errorf("file path is empty")).WithBranch(branch)
	}

	key := fileCacheKey(b.repoID, "blob", branch, path)
	if payload, ok := b.cache.Get(FileContentCacheName, key); ok {
		if content, ok := payload.([]byte); ok {
			return content, nil
		}
	}

	content, _, err := b.router.GetFileContent(ctx, ReadRequest{
		RepoID:  b.repoID,
		Remotes: b.remotes,
		Branch:  entities.ShortRefName(branch),
		Path:    path,
	})
	if err != nil {
		return nil, err
	}

	b.cache.Set(FileContentCacheName, key, content)
	return content, nil
}

func fileCacheKey(repoKey, kind, branch, path string) string {
	return fmt.Sprintf("%s:%s:%s:%s", repoKey, kind, entities.ShortRefName(branch), path)
}
