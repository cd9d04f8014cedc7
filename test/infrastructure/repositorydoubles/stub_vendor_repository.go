//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/multigit/reposource/internal/domain/entities"
	"github.com/multigit/reposource/internal/domain/repositories"
)

// SpyVendorClient implements repositories.VendorClient as a configurable spy.
type SpyVendorClient struct {
	VendorName string
	Token      string

	// --- ListDirectory ---
	Entries          []entities.DirEntry
	ListDirectoryErr error

	// --- GetFileContent ---
	FileContent    []byte
	FileContentErr error

	// --- ListRefs ---
	Refs        []entities.Ref
	ListRefsErr error

	// --- ListCommits ---
	Commits        []entities.Commit
	ListCommitsErr error
	CommitLimits   []int

	// ErrSequence, when set, is consumed one error per call across all
	// operations; a nil entry means the call succeeds.
	ErrSequence []error
	Calls       int
}

var _ repositories.VendorClient = (*SpyVendorClient)(nil)

func (c *SpyVendorClient) Name() string { return c.VendorName }

func (c *SpyVendorClient) nextErr(fallback error) error {
	c.Calls++
	if len(c.ErrSequence) > 0 {
		err := c.ErrSequence[0]
		c.ErrSequence = c.ErrSequence[1:]
		return err
	}
	return fallback
}

func (c *SpyVendorClient) ListDirectory(
	_ context.Context, _, _ string,
) ([]entities.DirEntry, error) {
	if err := c.nextErr(c.ListDirectoryErr); err != nil {
		return nil, err
	}
	return c.Entries, nil
}

func (c *SpyVendorClient) GetFileContent(
	_ context.Context, _, _ string,
) ([]byte, error) {
	if err := c.nextErr(c.FileContentErr); err != nil {
		return nil, err
	}
	return c.FileContent, nil
}

func (c *SpyVendorClient) ListRefs(_ context.Context) ([]entities.Ref, error) {
	if err := c.nextErr(c.ListRefsErr); err != nil {
		return nil, err
	}
	return c.Refs, nil
}

func (c *SpyVendorClient) ListCommits(
	_ context.Context, _ string, limit int,
) ([]entities.Commit, error) {
	c.CommitLimits = append(c.CommitLimits, limit)
	if err := c.nextErr(c.ListCommitsErr); err != nil {
		return nil, err
	}
	commits := c.Commits
	if limit > 0 && limit < len(commits) {
		commits = commits[:limit]
	}
	return commits, nil
}

// StubVendorDetector implements repositories.VendorDetector over a fixed
// host-to-client table.
type StubVendorDetector struct {
	// ClientsByHost maps a hostname to the client every token resolves to.
	ClientsByHost map[string]*SpyVendorClient
	// FactoryTokens records the tokens factories were called with, in order.
	FactoryTokens []string
}

var _ repositories.VendorDetector = (*StubVendorDetector)(nil)

func (d *StubVendorDetector) Detect(
	remote *entities.RemoteURL,
) (string, repositories.VendorFactory, bool) {
	if remote == nil {
		return "", nil, false
	}
	client, ok := d.ClientsByHost[remote.Host]
	if !ok {
		return "", nil, false
	}
	factory := func(_ *entities.RemoteURL, token string) (repositories.VendorClient, error) {
		d.FactoryTokens = append(d.FactoryTokens, token)
		client.Token = token
		return client, nil
	}
	return client.VendorName, factory, true
}
