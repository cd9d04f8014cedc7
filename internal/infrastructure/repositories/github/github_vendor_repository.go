package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v66/github"

	"github.com/multigit/reposource/internal/domain/entities"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

const (
	vendorName     = "github"
	saasHost       = "github.com"
	perPage        = 100
	requestTimeout = 20 * time.Second
)

// GitHubVendorRepository implements repositories.VendorClient on the
// GitHub REST API, for github.com and GitHub-like self-hosted instances.
type GitHubVendorRepository struct {
	remote *entities.RemoteURL
	client *gh.Client
}

// NewVendorClient creates a client for one remote and one credential.
// An empty token yields an unauthenticated session (public repositories).
func NewVendorClient(remote *entities.RemoteURL, token string) (domainRepos.VendorClient, error) {
	httpClient := &http.Client{Timeout: requestTimeout}
	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	if remote.Host != saasHost {
		// Self-hosted instances serve the API under a path prefix
		// instead of a dedicated api. host.
		base := fmt.Sprintf("https://%s/api/v3/", remote.Host)
		enterprise, err := client.WithEnterpriseURLs(base, base)
		if err != nil {
			return nil, fmt.Errorf("invalid self-hosted API base for %q: %w", remote.Host, err)
		}
		client = enterprise
	}

	return &GitHubVendorRepository{remote: remote, client: client}, nil
}

func (v *GitHubVendorRepository) Name() string { return vendorName }

func (v *GitHubVendorRepository) ListDirectory(ctx context.Context, ref, path string) ([]entities.DirEntry, error) {
	opts := &gh.RepositoryContentGetOptions{Ref: ref}
	file, dir, resp, err := v.client.Repositories.GetContents(
		ctx, v.remote.Owner, v.remote.Repo, path, opts,
	)
	if err != nil {
		return nil, v.wrap("list_directory", resp, err).WithPath(path)
	}
	if file != nil {
		return nil, v.wrap("list_directory",
			nil, fmt.Errorf("path %q is a file, not a directory", path)).WithPath(path)
	}

	entries := make([]entities.DirEntry, 0, len(dir))
	for _, item := range dir {
		entries = append(entries, entities.DirEntry{
			Name:  item.GetName(),
			Path:  item.GetPath(),
			IsDir: item.GetType() == "dir",
			Size:  int64(item.GetSize()),
		})
	}
	return entries, nil
}

func (v *GitHubVendorRepository) GetFileContent(ctx context.Context, ref, path string) ([]byte, error) {
	opts := &gh.RepositoryContentGetOptions{Ref: ref}
	file, _, resp, err := v.client.Repositories.GetContents(
		ctx, v.remote.Owner, v.remote.Repo, path, opts,
	)
	if err != nil {
		return nil, v.wrap("get_file_content", resp, err).WithPath(path)
	}
	if file == nil {
		return nil, v.wrap("get_file_content",
			nil, fmt.Errorf("path %q is a directory, not a file", path)).WithPath(path)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, v.wrap("get_file_content",
			nil, fmt.Errorf("failed to decode content: %w", err)).WithPath(path)
	}
	return []byte(content), nil
}

func (v *GitHubVendorRepository) ListRefs(ctx context.Context) ([]entities.Ref, error) {
	var refs []entities.Ref

	branchOpts := &gh.BranchListOptions{
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	for {
		branches, resp, err := v.client.Repositories.ListBranches(
			ctx, v.remote.Owner, v.remote.Repo, branchOpts,
		)
		if err != nil {
			return nil, v.wrap("list_refs", resp, err)
		}
		for _, branch := range branches {
			refs = append(refs, entities.NewBranchRef(
				branch.GetName(), branch.GetCommit().GetSHA(),
			))
		}
		if resp.NextPage == 0 {
			break
		}
		branchOpts.Page = resp.NextPage
	}

	tagOpts := &gh.ListOptions{PerPage: perPage}
	for {
		tags, resp, err := v.client.Repositories.ListTags(
			ctx, v.remote.Owner, v.remote.Repo, tagOpts,
		)
		if err != nil {
			return nil, v.wrap("list_refs", resp, err)
		}
		for _, tag := range tags {
			refs = append(refs, entities.NewTagRef(
				tag.GetName(), tag.GetCommit().GetSHA(),
			))
		}
		if resp.NextPage == 0 {
			break
		}
		tagOpts.Page = resp.NextPage
	}

	entities.SortRefs(refs)
	return refs, nil
}

func (v *GitHubVendorRepository) ListCommits(ctx context.Context, branch string, limit int) ([]entities.Commit, error) {
	var commits []entities.Commit

	opts := &gh.CommitsListOptions{
		SHA:         branch,
		ListOptions: gh.ListOptions{PerPage: pageSizeFor(limit)},
	}
	for {
		page, resp, err := v.client.Repositories.ListCommits(
			ctx, v.remote.Owner, v.remote.Repo, opts,
		)
		if err != nil {
			return nil, v.wrap("list_commits", resp, err).WithBranch(branch)
		}
		for _, item := range page {
			commits = append(commits, normalizeCommit(item))
			if len(commits) >= limit {
				return commits, nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return commits, nil
}

func normalizeCommit(item *gh.RepositoryCommit) entities.Commit {
	commit := entities.Commit{
		SHA:     item.GetSHA(),
		Message: item.GetCommit().GetMessage(),
	}
	if author := item.GetCommit().GetAuthor(); author != nil {
		commit.Author = entities.Signature{
			Name:  author.GetName(),
			Email: author.GetEmail(),
			When:  author.GetDate().Time,
		}
	}
	if committer := item.GetCommit().GetCommitter(); committer != nil {
		commit.Committer = entities.Signature{
			Name:  committer.GetName(),
			Email: committer.GetEmail(),
			When:  committer.GetDate().Time,
		}
	}
	for _, parent := range item.Parents {
		commit.Parents = append(commit.Parents, parent.GetSHA())
	}
	return commit
}

func pageSizeFor(limit int) int {
	if limit > 0 && limit < perPage {
		return limit
	}
	return perPage
}

// wrap turns a go-github failure into the layer's typed error, preferring
// the HTTP status when one was received.
func (v *GitHubVendorRepository) wrap(op string, resp *gh.Response, err error) *entities.OpError {
	kind := entities.MapTransportError(err)
	if resp != nil && resp.Response != nil {
		kind = entities.MapHTTPStatus(resp.StatusCode)
	}
	return entities.NewOpError(kind, entities.ClassRetriable, vendorName+"."+op, err).
		WithRemote(v.remote.Raw)
}
