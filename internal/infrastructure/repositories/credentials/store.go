package credentials

import (
	"os"
	"strings"

	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

// envFallbacks maps well-known hosts to the environment variables users
// commonly already have set, tried only when the config has no token for
// the host.
var envFallbacks = map[string][]string{
	"github.com":    {"GITHUB_TOKEN", "GH_TOKEN"},
	"gitlab.com":    {"GITLAB_TOKEN", "GL_TOKEN"},
	"bitbucket.org": {"BITBUCKET_TOKEN"},
	"codeberg.org":  {"GITEA_TOKEN"},
}

// Store is the config-backed credential store. A host may carry several
// tokens; lookup preserves their configured order.
type Store struct {
	tokens []domainRepos.HostToken
}

// NewStore builds a store from configured host/token pairs.
func NewStore(tokens []domainRepos.HostToken) *Store {
	return &Store{tokens: tokens}
}

// AllTokens returns every stored credential.
func (s *Store) AllTokens() []domainRepos.HostToken {
	out := make([]domainRepos.HostToken, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// TokensForHost returns the tokens stored for host, in order. When the
// config has none, well-known environment variables are consulted so that
// public-host setups work without a config file.
func (s *Store) TokensForHost(host string) []string {
	normalized := strings.ToLower(strings.TrimSpace(host))

	var tokens []string
	for _, stored := range s.tokens {
		if strings.EqualFold(stored.Host, normalized) && stored.Token != "" {
			tokens = append(tokens, stored.Token)
		}
	}
	if len(tokens) > 0 {
		return tokens
	}

	for _, envVar := range envFallbacks[normalized] {
		if value := os.Getenv(envVar); value != "" {
			return []string{value}
		}
	}
	return nil
}
