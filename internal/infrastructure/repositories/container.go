package repositories

import (
	"go.uber.org/dig"

	"github.com/multigit/reposource/config"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
	bbRepo "github.com/multigit/reposource/internal/infrastructure/repositories/bitbucket"
	"github.com/multigit/reposource/internal/infrastructure/repositories/cache"
	"github.com/multigit/reposource/internal/infrastructure/repositories/credentials"
	"github.com/multigit/reposource/internal/infrastructure/repositories/enginerpc"
	gtRepo "github.com/multigit/reposource/internal/infrastructure/repositories/gitea"
	ghRepo "github.com/multigit/reposource/internal/infrastructure/repositories/github"
	glRepo "github.com/multigit/reposource/internal/infrastructure/repositories/gitlab"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register vendor registry with all vendor factories. More specific
	// host matchers are registered first; gitea also covers Forgejo and
	// Codeberg, whose hostnames do not carry the product name.
	if err := container.Provide(func() *VendorRegistry {
		reg := NewVendorRegistry()
		reg.Register("github", HostContains("github"), ghRepo.NewVendorClient)
		reg.Register("gitlab", HostContains("gitlab"), glRepo.NewVendorClient)
		reg.Register("bitbucket", HostContains("bitbucket"), bbRepo.NewVendorClient)
		reg.Register("gitea", giteaHost, gtRepo.NewVendorClient)
		return reg
	}); err != nil {
		return err
	}

	// Bind the registry to the detection interface the domain layer sees.
	if err := container.Provide(func(reg *VendorRegistry) domainRepos.VendorDetector {
		return reg
	}); err != nil {
		return err
	}

	if err := container.Provide(func() domainRepos.CacheStore {
		return cache.NewStore()
	}); err != nil {
		return err
	}

	if err := container.Provide(func(cfg *config.Config) domainRepos.CredentialStore {
		tokens := make([]domainRepos.HostToken, 0, len(cfg.Credentials))
		for _, cred := range cfg.Credentials {
			tokens = append(tokens, domainRepos.HostToken{
				Host:  cred.Host,
				Token: cred.Token,
			})
		}
		return credentials.NewStore(tokens)
	}); err != nil {
		return err
	}

	if err := container.Provide(func(cfg *config.Config) domainRepos.GitEngine {
		return enginerpc.NewClient(cfg.Engine.Endpoint)
	}); err != nil {
		return err
	}

	return nil
}

func giteaHost(host string) bool {
	return HostContains("gitea")(host) ||
		HostContains("forgejo")(host) ||
		HostIsAny("codeberg.org")(host)
}
