package gitea

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/multigit/reposource/internal/domain/entities"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

const (
	vendorName     = "gitea"
	perPage        = 50
	requestTimeout = 20 * time.Second
)

// GiteaVendorRepository implements repositories.VendorClient on the Gitea
// REST API (Gitea, Forgejo, Codeberg). The API is GitHub-shaped — bare
// array responses under an /api/v1 path prefix on the instance host.
type GiteaVendorRepository struct {
	remote     *entities.RemoteURL
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewVendorClient creates a client for one remote and one credential.
// An empty token yields an unauthenticated session (public repositories).
func NewVendorClient(remote *entities.RemoteURL, token string) (domainRepos.VendorClient, error) {
	return &GiteaVendorRepository{
		remote:     remote,
		baseURL:    fmt.Sprintf("https://%s/api/v1", remote.Host),
		token:      token,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

func (v *GiteaVendorRepository) Name() string { return vendorName }

func (v *GiteaVendorRepository) repoBase() string {
	return fmt.Sprintf("%s/repos/%s/%s", v.baseURL, v.remote.Owner, v.remote.Repo)
}

type contentsEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // file | dir | symlink | submodule
	Size int64  `json:"size"`
}

func (v *GiteaVendorRepository) ListDirectory(ctx context.Context, ref, path string) ([]entities.DirEntry, error) {
	endpoint := fmt.Sprintf("%s/contents/%s?ref=%s",
		v.repoBase(), escapePath(path), url.QueryEscape(ref))

	var items []contentsEntry
	if err := v.getJSON(ctx, "list_directory", endpoint, &items); err != nil {
		return nil, err.WithPath(path)
	}

	entries := make([]entities.DirEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, entities.DirEntry{
			Name:  item.Name,
			Path:  item.Path,
			IsDir: item.Type == "dir",
			Size:  item.Size,
		})
	}
	return entries, nil
}

func (v *GiteaVendorRepository) GetFileContent(ctx context.Context, ref, path string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/raw/%s?ref=%s",
		v.repoBase(), escapePath(path), url.QueryEscape(ref))

	body, err := v.get(ctx, "get_file_content", endpoint)
	if err != nil {
		return nil, err.WithPath(path)
	}
	return body, nil
}

type branchEntry struct {
	Name   string `json:"name"`
	Commit struct {
		ID string `json:"id"`
	} `json:"commit"`
}

type tagEntry struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

func (v *GiteaVendorRepository) ListRefs(ctx context.Context) ([]entities.Ref, error) {
	var refs []entities.Ref

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/branches?page=%d&limit=%d", v.repoBase(), page, perPage)
		var branches []branchEntry
		if err := v.getJSON(ctx, "list_refs", endpoint, &branches); err != nil {
			return nil, err
		}
		for _, branch := range branches {
			refs = append(refs, entities.NewBranchRef(branch.Name, branch.Commit.ID))
		}
		if len(branches) < perPage {
			break
		}
	}

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/tags?page=%d&limit=%d", v.repoBase(), page, perPage)
		var tags []tagEntry
		if err := v.getJSON(ctx, "list_refs", endpoint, &tags); err != nil {
			return nil, err
		}
		for _, tag := range tags {
			refs = append(refs, entities.NewTagRef(tag.Name, tag.Commit.SHA))
		}
		if len(tags) < perPage {
			break
		}
	}

	entities.SortRefs(refs)
	return refs, nil
}

type commitEntry struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Date  string `json:"date"`
		} `json:"author"`
		Committer struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Date  string `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
	Parents []struct {
		SHA string `json:"sha"`
	} `json:"parents"`
}

func (v *GiteaVendorRepository) ListCommits(ctx context.Context, branch string, limit int) ([]entities.Commit, error) {
	var commits []entities.Commit

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/commits?sha=%s&page=%d&limit=%d",
			v.repoBase(), url.QueryEscape(branch), page, perPage)

		var items []commitEntry
		if err := v.getJSON(ctx, "list_commits", endpoint, &items); err != nil {
			return nil, err.WithBranch(branch)
		}
		for _, item := range items {
			commits = append(commits, normalizeCommit(item))
			if len(commits) >= limit {
				return commits, nil
			}
		}
		if len(items) < perPage {
			break
		}
	}

	return commits, nil
}

func normalizeCommit(item commitEntry) entities.Commit {
	commit := entities.Commit{
		SHA:     item.SHA,
		Message: item.Commit.Message,
		Author: entities.Signature{
			Name:  item.Commit.Author.Name,
			Email: item.Commit.Author.Email,
			When:  entities.ParseVendorTime(item.Commit.Author.Date),
		},
		Committer: entities.Signature{
			Name:  item.Commit.Committer.Name,
			Email: item.Commit.Committer.Email,
			When:  entities.ParseVendorTime(item.Commit.Committer.Date),
		},
	}
	for _, parent := range item.Parents {
		commit.Parents = append(commit.Parents, parent.SHA)
	}
	return commit
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

func (v *GiteaVendorRepository) getJSON(ctx context.Context, op, endpoint string, out any) *entities.OpError {
	body, err := v.get(ctx, op, endpoint)
	if err != nil {
		return err
	}
	if unmarshalErr := json.Unmarshal(body, out); unmarshalErr != nil {
		return v.wrap(op, 0, fmt.Errorf("failed to parse response: %w", unmarshalErr))
	}
	return nil
}

func (v *GiteaVendorRepository) get(ctx context.Context, op, endpoint string) ([]byte, *entities.OpError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, v.wrap(op, 0, fmt.Errorf("failed to create request: %w", err))
	}
	if v.token != "" {
		req.Header.Set("Authorization", "token "+v.token)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, v.wrap(op, 0, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, v.wrap(op, 0, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, v.wrap(op, resp.StatusCode,
			fmt.Errorf("API error (status %d)", resp.StatusCode))
	}

	return body, nil
}

// wrap turns a failure into the layer's typed error, preferring the HTTP
// status when one was received.
func (v *GiteaVendorRepository) wrap(op string, status int, err error) *entities.OpError {
	kind := entities.MapTransportError(err)
	if status != 0 {
		kind = entities.MapHTTPStatus(status)
	}
	return entities.NewOpError(kind, entities.ClassRetriable, vendorName+"."+op, err).
		WithRemote(v.remote.Raw)
}
