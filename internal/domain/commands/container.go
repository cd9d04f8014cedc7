package commands

import (
	"go.uber.org/dig"

	"github.com/multigit/reposource/config"
	"github.com/multigit/reposource/internal/domain/entities"
	domainRepos "github.com/multigit/reposource/internal/domain/repositories"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(func(
		cfg *config.Config,
		detector domainRepos.VendorDetector,
		engine domainRepos.GitEngine,
		credentials domainRepos.CredentialStore,
	) *ReadRouter {
		return NewReadRouter(detector, engine, credentials, cfg.VendorFirstEnabled())
	}); err != nil {
		return err
	}

	if err := container.Provide(func(
		cfg *config.Config,
		router *ReadRouter,
		cacheStore domainRepos.CacheStore,
	) *CommitLoader {
		return NewCommitLoader(
			cfg.Repository.ID,
			cfg.Repository.Remotes,
			cfg.Repository.MainBranch,
			entities.DefaultPageSize,
			router,
			cacheStore,
			cfg.Cache.CommitHistoryTTL,
		)
	}); err != nil {
		return err
	}

	if err := container.Provide(func(
		cfg *config.Config,
		router *ReadRouter,
		cacheStore domainRepos.CacheStore,
	) *FileBrowser {
		return NewFileBrowser(
			cfg.Repository.ID,
			cfg.Repository.Remotes,
			router,
			cacheStore,
			cfg.Cache.FileContentTTL,
		)
	}); err != nil {
		return err
	}

	if err := container.Provide(func(
		cfg *config.Config,
		router *ReadRouter,
		engine domainRepos.GitEngine,
		loader *CommitLoader,
		cacheStore domainRepos.CacheStore,
	) *BranchSwitcher {
		return NewBranchSwitcher(
			cfg.Repository.ID,
			cfg.Repository.Remotes,
			router,
			engine,
			loader,
			cacheStore,
		)
	}); err != nil {
		return err
	}

	if err := container.Provide(func(
		cfg *config.Config,
		detector domainRepos.VendorDetector,
		engine domainRepos.GitEngine,
		credentials domainRepos.CredentialStore,
	) *PushCommand {
		return NewPushCommand(
			cfg.Repository.ID,
			cfg.Repository.Remotes,
			detector,
			engine,
			credentials,
		)
	}); err != nil {
		return err
	}

	return nil
}
