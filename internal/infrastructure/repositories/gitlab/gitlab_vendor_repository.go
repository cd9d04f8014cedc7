package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/multigit/reposource/internal/domain/entities"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

const (
	vendorName     = "gitlab"
	saasHost       = "gitlab.com"
	perPage        = 100
	requestTimeout = 20 * time.Second
)

// GitLabVendorRepository implements repositories.VendorClient on the
// GitLab REST API. Projects are addressed by their path-encoded id, which
// supports nested groups in the owner segment.
type GitLabVendorRepository struct {
	remote *entities.RemoteURL
	client *gl.Client
}

// NewVendorClient creates a client for one remote and one credential.
// An empty token yields an unauthenticated session (public projects).
func NewVendorClient(remote *entities.RemoteURL, token string) (domainRepos.VendorClient, error) {
	options := []gl.ClientOptionFunc{
		gl.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
	}
	if remote.Host != saasHost {
		options = append(options,
			gl.WithBaseURL(fmt.Sprintf("https://%s/api/v4", remote.Host)))
	}

	client, err := gl.NewClient(token, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to build gitlab client for %q: %w", remote.Host, err)
	}

	return &GitLabVendorRepository{remote: remote, client: client}, nil
}

func (v *GitLabVendorRepository) Name() string { return vendorName }

// pid is the path-encoded project id ("group/subgroup/repo").
func (v *GitLabVendorRepository) pid() string { return v.remote.OwnerRepo() }

func (v *GitLabVendorRepository) ListDirectory(ctx context.Context, ref, path string) ([]entities.DirEntry, error) {
	var entries []entities.DirEntry

	opts := &gl.ListTreeOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
		Path:        gl.Ptr(path),
		Ref:         gl.Ptr(ref),
	}
	for {
		nodes, resp, err := v.client.Repositories.ListTree(
			v.pid(), opts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, v.wrap("list_directory", resp, err).WithPath(path)
		}
		for _, node := range nodes {
			entries = append(entries, entities.DirEntry{
				Name:  node.Name,
				Path:  node.Path,
				IsDir: node.Type == "tree",
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return entries, nil
}

func (v *GitLabVendorRepository) GetFileContent(ctx context.Context, ref, path string) ([]byte, error) {
	raw, resp, err := v.client.RepositoryFiles.GetRawFile(
		v.pid(), path,
		&gl.GetRawFileOptions{Ref: gl.Ptr(ref)},
		gl.WithContext(ctx),
	)
	if err != nil {
		return nil, v.wrap("get_file_content", resp, err).WithPath(path)
	}
	return raw, nil
}

func (v *GitLabVendorRepository) ListRefs(ctx context.Context) ([]entities.Ref, error) {
	var refs []entities.Ref

	branchOpts := &gl.ListBranchesOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
	}
	for {
		branches, resp, err := v.client.Branches.ListBranches(
			v.pid(), branchOpts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, v.wrap("list_refs", resp, err)
		}
		for _, branch := range branches {
			commitID := ""
			if branch.Commit != nil {
				commitID = branch.Commit.ID
			}
			refs = append(refs, entities.NewBranchRef(branch.Name, commitID))
		}
		if resp.NextPage == 0 {
			break
		}
		branchOpts.Page = resp.NextPage
	}

	tagOpts := &gl.ListTagsOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
	}
	for {
		tags, resp, err := v.client.Tags.ListTags(
			v.pid(), tagOpts, gl.WithContext(ctx),
		)
		if err != nil {
			return nil, v.wrap("list_refs", resp, err)
		}
		for _, tag := range tags {
			commitID := ""
			if tag.Commit != nil {
				commitID = tag.Commit.ID
			}
			refs = append(refs, entities.NewTagRef(tag.Name, commitID))
		}
		if resp.NextPage == 0 {
			break
		}
		tagOpts.Page = resp.NextPage
	}

	entities.SortRefs(refs)
	return refs, nil
}

func (v *GitLabVendorRepository) ListCommits(ctx context.Context, branch string, limit int) ([]entities.Commit, error) {
	var commits []entities.Commit

	opts := &gl.ListCommitsOptions{
		ListOptions: gl.ListOptions{PerPage: int64(pageSizeFor(limit))},
		RefName:     gl.Ptr(branch),
	}
	for {
		page, resp, err := v.client.Commits.ListCommits(
			v.pid(), opts, gl.WithContext(ctx),
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

func normalizeCommit(item *gl.Commit) entities.Commit {
	commit := entities.Commit{
		SHA:     item.ID,
		Message: item.Message,
		Author: entities.Signature{
			Name:  item.AuthorName,
			Email: item.AuthorEmail,
		},
		Committer: entities.Signature{
			Name:  item.CommitterName,
			Email: item.CommitterEmail,
		},
		Parents: item.ParentIDs,
	}
	if item.AuthoredDate != nil {
		commit.Author.When = *item.AuthoredDate
	}
	if item.CommittedDate != nil {
		commit.Committer.When = *item.CommittedDate
	}
	return commit
}

func pageSizeFor(limit int) int {
	if limit > 0 && limit < perPage {
		return limit
	}
	return perPage
}

// wrap turns a client-go failure into the layer's typed error, preferring
// the HTTP status when one was received.
func (v *GitLabVendorRepository) wrap(op string, resp *gl.Response, err error) *entities.OpError {
	kind := entities.MapTransportError(err)
	if resp != nil && resp.Response != nil {
		kind = entities.MapHTTPStatus(resp.StatusCode)
	}
	return entities.NewOpError(kind, entities.ClassRetriable, vendorName+"."+op, err).
		WithRemote(v.remote.Raw)
}
