package bitbucket

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
	vendorName     = "bitbucket"
	saasHost       = "bitbucket.org"
	saasAPIBase    = "https://api.bitbucket.org/2.0"
	pageLen        = 100
	requestTimeout = 20 * time.Second
)

// BitbucketVendorRepository implements repositories.VendorClient on the
// Bitbucket 2.0 REST API. Bitbucket wraps list responses in a
// {values: [...], next: ...} pagination envelope. No Bitbucket SDK is used;
// the surface needed here is four endpoints.
type BitbucketVendorRepository struct {
	remote     *entities.RemoteURL
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewVendorClient creates a client for one remote and one credential.
// An empty token yields an unauthenticated session (public repositories).
func NewVendorClient(remote *entities.RemoteURL, token string) (domainRepos.VendorClient, error) {
	base := saasAPIBase
	if remote.Host != saasHost {
		// Self-hosted instances serve the API under a path prefix.
		base = fmt.Sprintf("https://%s/api/2.0", remote.Host)
	}

	return &BitbucketVendorRepository{
		remote:     remote,
		baseURL:    base,
		token:      token,
		httpClient: &http.Client{Timeout: requestTimeout},
	}, nil
}

func (v *BitbucketVendorRepository) Name() string { return vendorName }

func (v *BitbucketVendorRepository) repoBase() string {
	return fmt.Sprintf("%s/repositories/%s/%s", v.baseURL, v.remote.Owner, v.remote.Repo)
}

// srcEntry is one entry of the /src listing envelope.
type srcEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // commit_directory | commit_file
	Size int64  `json:"size"`
}

func (v *BitbucketVendorRepository) ListDirectory(ctx context.Context, ref, path string) ([]entities.DirEntry, error) {
	endpoint := fmt.Sprintf("%s/src/%s/%s?pagelen=%d",
		v.repoBase(), url.PathEscape(ref), escapePath(path), pageLen)

	var entries []entities.DirEntry
	for endpoint != "" {
		var envelope struct {
			Values []srcEntry `json:"values"`
			Next   string     `json:"next"`
		}
		if err := v.getJSON(ctx, "list_directory", endpoint, &envelope); err != nil {
			return nil, err.WithPath(path)
		}
		for _, item := range envelope.Values {
			entries = append(entries, entities.DirEntry{
				Name:  baseName(item.Path),
				Path:  item.Path,
				IsDir: item.Type == "commit_directory",
				Size:  item.Size,
			})
		}
		endpoint = envelope.Next
	}

	return entries, nil
}

func (v *BitbucketVendorRepository) GetFileContent(ctx context.Context, ref, path string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/src/%s/%s",
		v.repoBase(), url.PathEscape(ref), escapePath(path))

	body, err := v.get(ctx, "get_file_content", endpoint)
	if err != nil {
		return nil, err.WithPath(path)
	}
	return body, nil
}

// refEntry is one entry of the /refs listing envelope.
type refEntry struct {
	Name   string `json:"name"`
	Target struct {
		Hash string `json:"hash"`
	} `json:"target"`
}

func (v *BitbucketVendorRepository) ListRefs(ctx context.Context) ([]entities.Ref, error) {
	var refs []entities.Ref

	branches, err := v.listRefPages(ctx, v.repoBase()+"/refs/branches")
	if err != nil {
		return nil, err
	}
	for _, branch := range branches {
		refs = append(refs, entities.NewBranchRef(branch.Name, branch.Target.Hash))
	}

	tags, err := v.listRefPages(ctx, v.repoBase()+"/refs/tags")
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		refs = append(refs, entities.NewTagRef(tag.Name, tag.Target.Hash))
	}

	entities.SortRefs(refs)
	return refs, nil
}

func (v *BitbucketVendorRepository) listRefPages(ctx context.Context, base string) ([]refEntry, error) {
	endpoint := fmt.Sprintf("%s?pagelen=%d", base, pageLen)

	var all []refEntry
	for endpoint != "" {
		var envelope struct {
			Values []refEntry `json:"values"`
			Next   string     `json:"next"`
		}
		if err := v.getJSON(ctx, "list_refs", endpoint, &envelope); err != nil {
			return nil, err
		}
		all = append(all, envelope.Values...)
		endpoint = envelope.Next
	}
	return all, nil
}

// commitEntry is one entry of the /commits listing envelope.
type commitEntry struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	Date    string `json:"date"`
	Author  struct {
		Raw  string `json:"raw"`
		User struct {
			DisplayName string `json:"display_name"`
		} `json:"user"`
	} `json:"author"`
	Parents []struct {
		Hash string `json:"hash"`
	} `json:"parents"`
}

func (v *BitbucketVendorRepository) ListCommits(ctx context.Context, branch string, limit int) ([]entities.Commit, error) {
	endpoint := fmt.Sprintf("%s/commits/%s?pagelen=%d",
		v.repoBase(), url.PathEscape(branch), pageLen)

	var commits []entities.Commit
	for endpoint != "" {
		var envelope struct {
			Values []commitEntry `json:"values"`
			Next   string        `json:"next"`
		}
		if err := v.getJSON(ctx, "list_commits", endpoint, &envelope); err != nil {
			return nil, err.WithBranch(branch)
		}
		for _, item := range envelope.Values {
			commits = append(commits, normalizeCommit(item))
			if len(commits) >= limit {
				return commits, nil
			}
		}
		endpoint = envelope.Next
	}

	return commits, nil
}

func normalizeCommit(item commitEntry) entities.Commit {
	name, email := splitRawAuthor(item.Author.Raw)
	if item.Author.User.DisplayName != "" {
		name = item.Author.User.DisplayName
	}
	signature := entities.Signature{
		Name:  name,
		Email: email,
		When:  entities.ParseVendorTime(item.Date),
	}

	commit := entities.Commit{
		SHA:     item.Hash,
		Message: item.Message,
		Author:  signature,
		// Bitbucket reports a single identity per commit.
		Committer: signature,
	}
	for _, parent := range item.Parents {
		commit.Parents = append(commit.Parents, parent.Hash)
	}
	return commit
}

// splitRawAuthor parses Bitbucket's "Name <email>" raw author string.
func splitRawAuthor(raw string) (string, string) {
	open := strings.LastIndex(raw, "<")
	closing := strings.LastIndex(raw, ">")
	if open < 0 || closing <= open {
		return strings.TrimSpace(raw), ""
	}
	return strings.TrimSpace(raw[:open]), raw[open+1 : closing]
}

func baseName(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

func (v *BitbucketVendorRepository) getJSON(ctx context.Context, op, endpoint string, out any) *entities.OpError {
	body, err := v.get(ctx, op, endpoint)
	if err != nil {
		return err
	}
	if unmarshalErr := json.Unmarshal(body, out); unmarshalErr != nil {
		return v.wrap(op, 0, fmt.Errorf("failed to parse response: %w", unmarshalErr))
	}
	return nil
}

func (v *BitbucketVendorRepository) get(ctx context.Context, op, endpoint string) ([]byte, *entities.OpError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, v.wrap(op, 0, fmt.Errorf("failed to create request: %w", err))
	}
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
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
			fmt.Errorf("API error (status %d): %s", resp.StatusCode, truncate(body)))
	}

	return body, nil
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

// wrap turns a failure into the layer's typed error, preferring the HTTP
// status when one was received.
func (v *BitbucketVendorRepository) wrap(op string, status int, err error) *entities.OpError {
	kind := entities.MapTransportError(err)
	if status != 0 {
		kind = entities.MapHTTPStatus(status)
	}
	return entities.NewOpError(kind, entities.ClassRetriable, vendorName+"."+op, err).
		WithRemote(v.remote.Raw)
}
