//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/multigit/reposource/internal/domain/repositories"
)

// StubCredentialStore implements repositories.CredentialStore over a fixed
// host-to-tokens table.
type StubCredentialStore struct {
	Tokens map[string][]string
}

var _ repositories.CredentialStore = (*StubCredentialStore)(nil)

func (s *StubCredentialStore) AllTokens() []repositories.HostToken {
	var all []repositories.HostToken
	for host, tokens := range s.Tokens {
		for _, token := range tokens {
			all = append(all, repositories.HostToken{Host: host, Token: token})
		}
	}
	return all
}

func (s *StubCredentialStore) TokensForHost(host string) []string {
	return s.Tokens[host]
}
