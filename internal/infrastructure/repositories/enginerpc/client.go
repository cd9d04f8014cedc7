package enginerpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/multigit/reposource/internal/domain/entities"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

const defaultTimeout = 60 * time.Second

// Client talks to the git execution engine over its HTTP JSON boundary:
// one POST per method under /rpc/. The engine's internals are opaque here;
// this client only shapes requests and normalizes responses. Issued calls
// run to completion on the engine side — ctx bounds the transport only.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client against the engine endpoint
// (e.g. http://127.0.0.1:9418).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// wireCommit is the engine's native commit shape: oid plus unix-seconds
// timestamps.
type wireCommit struct {
	OID     string   `json:"oid"`
	Message string   `json:"message"`
	Parents []string `json:"parents"`
	Author  wireSig  `json:"author"`
	Commit  wireSig  `json:"committer"`
}

type wireSig struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Timestamp int64  `json:"timestamp"`
}

func (w wireCommit) normalize() entities.Commit {
	return entities.Commit{
		SHA:     w.OID,
		Message: w.Message,
		Parents: w.Parents,
		Author: entities.Signature{
			Name:  w.Author.Name,
			Email: w.Author.Email,
			When:  time.Unix(w.Author.Timestamp, 0).UTC(),
		},
		Committer: entities.Signature{
			Name:  w.Commit.Name,
			Email: w.Commit.Email,
			When:  time.Unix(w.Commit.Timestamp, 0).UTC(),
		},
	}
}

type wireRef struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	CommitID string `json:"commitId"`
}

type wireFile struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"isDir"`
	Size  int64  `json:"size"`
}

func (c *Client) GetRepoDataLevel(ctx context.Context, repoID string) (domainRepos.DataLevel, error) {
	var result struct {
		Level string `json:"level"`
	}
	if err := c.call(ctx, "getRepoDataLevel", map[string]any{
		"repoId": repoID,
	}, &result); err != nil {
		return domainRepos.DataLevelNone, err
	}
	return domainRepos.DataLevel(result.Level), nil
}

func (c *Client) EnsureFullClone(ctx context.Context, repoID, branch string, depth int) error {
	return c.call(ctx, "ensureFullClone", map[string]any{
		"repoId": repoID,
		"branch": branch,
		"depth":  depth,
	}, nil)
}

func (c *Client) GetCommitHistory(ctx context.Context, repoID, branch string, depth int) (*domainRepos.CommitHistoryResult, error) {
	var result struct {
		Success      bool         `json:"success"`
		Commits      []wireCommit `json:"commits"`
		FallbackUsed bool         `json:"fallbackUsed"`
		Error        string       `json:"error"`
	}
	if err := c.call(ctx, "getCommitHistory", map[string]any{
		"repoId": repoID,
		"branch": branch,
		"depth":  depth,
	}, &result); err != nil {
		return nil, err
	}
	if !result.Success {
		return nil, c.engineError("getCommitHistory", result.Error).WithBranch(branch)
	}

	history := &domainRepos.CommitHistoryResult{FallbackUsed: result.FallbackUsed}
	for _, commit := range result.Commits {
		history.Commits = append(history.Commits, commit.normalize())
	}
	return history, nil
}

func (c *Client) GetCommitCount(ctx context.Context, repoID, branch string) (int, error) {
	var result struct {
		Success bool   `json:"success"`
		Count   int    `json:"count"`
		Error   string `json:"error"`
	}
	if err := c.call(ctx, "getCommitCount", map[string]any{
		"repoId": repoID,
		"branch": branch,
	}, &result); err != nil {
		return 0, err
	}
	if !result.Success {
		return 0, c.engineError("getCommitCount", result.Error).WithBranch(branch)
	}
	return result.Count, nil
}

func (c *Client) SyncWithRemote(ctx context.Context, repoID string, cloneURLs []string, branch string) (*domainRepos.SyncResult, error) {
	var result struct {
		NeedsUpdate bool `json:"needsUpdate"`
	}
	if err := c.call(ctx, "syncWithRemote", map[string]any{
		"repoId":    repoID,
		"cloneUrls": cloneURLs,
		"branch":    branch,
	}, &result); err != nil {
		return nil, err
	}
	return &domainRepos.SyncResult{NeedsUpdate: result.NeedsUpdate}, nil
}

func (c *Client) ListRepoFiles(ctx context.Context, repoID, branch, path string) ([]entities.DirEntry, error) {
	var result struct {
		Files []wireFile `json:"files"`
	}
	if err := c.call(ctx, "listRepoFilesFromEvent", map[string]any{
		"repoId": repoID,
		"branch": branch,
		"path":   path,
	}, &result); err != nil {
		return nil, err
	}

	entries := make([]entities.DirEntry, 0, len(result.Files))
	for _, file := range result.Files {
		entries = append(entries, entities.DirEntry{
			Name:  file.Name,
			Path:  file.Path,
			IsDir: file.IsDir,
			Size:  file.Size,
		})
	}
	return entries, nil
}

func (c *Client) GetRepoFileContent(ctx context.Context, repoID, branch, path string) ([]byte, error) {
	var result struct {
		Content []byte `json:"content"`
	}
	if err := c.call(ctx, "getRepoFileContentFromEvent", map[string]any{
		"repoId": repoID,
		"branch": branch,
		"path":   path,
	}, &result); err != nil {
		return nil, err
	}
	return result.Content, nil
}

func (c *Client) ListBranches(ctx context.Context, repoID string) ([]entities.Ref, error) {
	var result struct {
		Refs []wireRef `json:"refs"`
	}
	if err := c.call(ctx, "listBranchesFromEvent", map[string]any{
		"repoId": repoID,
	}, &result); err != nil {
		return nil, err
	}

	refs := make([]entities.Ref, 0, len(result.Refs))
	for _, ref := range result.Refs {
		if ref.Type == string(entities.RefTypeTags) {
			refs = append(refs, entities.NewTagRef(ref.Name, ref.CommitID))
		} else {
			refs = append(refs, entities.NewBranchRef(ref.Name, ref.CommitID))
		}
	}
	entities.SortRefs(refs)
	return refs, nil
}

func (c *Client) SafePushToRemote(ctx context.Context, req domainRepos.PushRequest) error {
	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.call(ctx, "safePushToRemote", map[string]any{
		"repoId":             req.RepoID,
		"remoteUrl":          req.RemoteURL,
		"branch":             req.Branch,
		"token":              req.Token,
		"provider":           req.Provider,
		"allowForce":         req.AllowForce,
		"confirmDestructive": req.ConfirmDestructive,
	}, &result); err != nil {
		return err
	}
	if !result.Success {
		return c.engineError("safePushToRemote", result.Error).
			WithRemote(req.RemoteURL).WithBranch(req.Branch)
	}
	return nil
}

// call issues one POST to /rpc/<method> with a JSON body and decodes the
// JSON response into out (when out is non-nil).
func (c *Client) call(ctx context.Context, method string, params map[string]any, out any) error {
	payload, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	endpoint := c.baseURL + "/rpc/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entities.NewOpError(entities.MapTransportError(err),
			entities.ClassRetriable, "engine."+method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return entities.NewOpError(entities.KindNetwork,
			entities.ClassRetriable, "engine."+method,
			fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return entities.NewOpError(entities.MapHTTPStatus(resp.StatusCode),
			entities.ClassRetriable, "engine."+method,
			fmt.Errorf("engine error (status %d): %s", resp.StatusCode, body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	return nil
}

// engineError wraps an engine-reported failure message.
func (c *Client) engineError(method, message string) *entities.OpError {
	if message == "" {
		message = "engine call failed"
	}
	return entities.NewOpError(entities.KindUnknown, entities.ClassRetriable,
		"engine."+method, fmt.Errorf("%s", message))
}
