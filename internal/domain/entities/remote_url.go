package entities

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// pushCapableSchemes are the URL schemes a push can be issued against.
// Anything else (e.g. decentralized-routing addresses) is address-only:
// it names the repository but is never used for pushes or vendor calls.
var pushCapableSchemes = map[string]bool{
	"https": true,
	"http":  true,
	"ssh":   true,
	"git":   true,
	"wss":   true,
}

// credentiallessSchemes never carry a host credential on push.
var credentiallessSchemes = map[string]bool{
	"wss": true,
}

// RemoteURL is a parsed candidate remote. Owner may contain slashes when
// the hosting vendor supports nested groups.
type RemoteURL struct {
	Raw    string
	Scheme string
	Host   string
	Owner  string
	Repo   string
}

// ParseRemoteURL parses the supported remote shapes:
// https://host/owner/repo.git, git@host:owner/repo.git and generic
// scheme://host/owner/repo[.git], including multi-segment owners.
// go-git's endpoint parser covers the scp-like ssh shape.
func ParseRemoteURL(raw string) (*RemoteURL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty remote URL")
	}

	endpoint, err := transport.NewEndpoint(trimmed)
	if err != nil {
		return nil, fmt.Errorf("unparseable remote URL %q: %w", raw, err)
	}

	repoPath := strings.Trim(endpoint.Path, "/")
	repoPath = strings.TrimSuffix(repoPath, ".git")

	remote := &RemoteURL{
		Raw:    trimmed,
		Scheme: endpoint.Protocol,
		Host:   endpoint.Host,
	}

	if idx := strings.LastIndex(repoPath, "/"); idx >= 0 {
		remote.Owner = repoPath[:idx]
		remote.Repo = repoPath[idx+1:]
	} else {
		remote.Repo = repoPath
	}

	return remote, nil
}

// PushCapable reports whether this remote can be pushed to.
func (r *RemoteURL) PushCapable() bool {
	return pushCapableSchemes[r.Scheme]
}

// Credentialless reports whether pushes to this remote skip host
// credential resolution entirely.
func (r *RemoteURL) Credentialless() bool {
	return credentiallessSchemes[r.Scheme]
}

// OwnerRepo returns the full project path ("owner/repo", owner possibly
// nested) used for path-encoded vendor project addressing.
func (r *RemoteURL) OwnerRepo() string {
	if r.Owner == "" {
		return r.Repo
	}
	return r.Owner + "/" + r.Repo
}

// ValidRemotes filters a caller's candidate URL set down to the remotes the
// data access layer may use: empty strings, duplicates and address-only
// URLs are dropped, order is preserved.
func ValidRemotes(candidates []string) []*RemoteURL {
	seen := make(map[string]bool, len(candidates))
	var remotes []*RemoteURL

	for _, candidate := range candidates {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true

		remote, err := ParseRemoteURL(trimmed)
		if err != nil {
			continue
		}
		if !remote.PushCapable() {
			continue
		}
		remotes = append(remotes, remote)
	}

	return remotes
}

// RawRemotes returns the raw URLs of the valid remotes, for calls that
// take plain clone URLs.
func RawRemotes(candidates []string) []string {
	valid := ValidRemotes(candidates)
	raws := make([]string, 0, len(valid))
	for _, remote := range valid {
		raws = append(raws, remote.Raw)
	}
	return raws
}
