package repositories

import (
	"strings"

	"github.com/multigit/reposource/internal/domain/entities"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

// matcher decides whether a remote's hostname belongs to a vendor.
type matcher func(host string) bool

type registration struct {
	name    string
	match   matcher
	factory domainRepos.VendorFactory
}

// VendorRegistry holds the supported vendor implementations and detects
// which one, if any, a remote belongs to. Detection goes by hostname
// heuristics: a GitLab instance is recognized by its hostname, not by any
// claim in the URL path.
type VendorRegistry struct {
	registrations []registration
}

// NewVendorRegistry creates an empty registry.
func NewVendorRegistry() *VendorRegistry {
	return &VendorRegistry{}
}

// Register adds a vendor under the given name. Registration order is
// detection order, so more specific matchers go first.
func (r *VendorRegistry) Register(name string, match func(host string) bool, factory domainRepos.VendorFactory) {
	r.registrations = append(r.registrations, registration{
		name:    name,
		match:   match,
		factory: factory,
	})
}

// Detect returns the vendor matching the remote's host, or ok=false.
// Address-only remotes never match.
func (r *VendorRegistry) Detect(remote *entities.RemoteURL) (string, domainRepos.VendorFactory, bool) {
	if remote == nil || !remote.PushCapable() || remote.Credentialless() {
		return "", nil, false
	}
	host := strings.ToLower(remote.Host)
	for _, reg := range r.registrations {
		if reg.match(host) {
			return reg.name, reg.factory, true
		}
	}
	return "", nil, false
}

// Names returns the registered vendor names in detection order.
func (r *VendorRegistry) Names() []string {
	names := make([]string, 0, len(r.registrations))
	for _, reg := range r.registrations {
		names = append(names, reg.name)
	}
	return names
}

// HostContains builds a matcher for hosts containing the given fragment
// (covers SaaS hosts and conventionally named self-hosted instances,
// e.g. gitlab.example.com).
func HostContains(fragment string) func(host string) bool {
	return func(host string) bool {
		return strings.Contains(host, fragment)
	}
}

// HostIsAny builds a matcher for an exact host list.
func HostIsAny(hosts ...string) func(host string) bool {
	return func(host string) bool {
		for _, candidate := range hosts {
			if host == candidate {
				return true
			}
		}
		return false
	}
}
