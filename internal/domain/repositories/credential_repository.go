package repositories

// HostToken is one stored credential, bound to a host.
type HostToken struct {
	Host  string
	Token string
}

// CredentialStore looks up stored credentials. Storage itself lives
// outside this layer; only the lookup surface is consumed here.
type CredentialStore interface {
	// AllTokens returns every stored credential.
	AllTokens() []HostToken

	// TokensForHost returns the tokens stored for the given host, in the
	// order they should be tried.
	TokensForHost(host string) []string
}
