package internal

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/multigit/reposource/config"
	"github.com/multigit/reposource/internal/domain/commands"
	"github.com/multigit/reposource/internal/domain/entities"
	"github.com/multigit/reposource/internal/infrastructure/controllers"
	"github.com/multigit/reposource/internal/infrastructure/repositories"
)

// RegisterProviders registers all internal providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(loadConfig); err != nil {
		return err
	}

	// Register all layers (bottom-up: infrastructure repos -> domain entities -> domain commands -> controllers)
	if err := repositories.RegisterProviders(container); err != nil {
		return err
	}
	if err := entities.RegisterProviders(container); err != nil {
		return err
	}
	if err := commands.RegisterProviders(container); err != nil {
		return err
	}
	if err := controllers.RegisterProviders(container); err != nil {
		return err
	}

	// Register the main app internal
	if err := container.Provide(NewAppInternal); err != nil {
		return err
	}

	return nil
}

// loadConfig resolves the configuration: explicit path via
// REPOSOURCE_CONFIG, then the standard file locations, then built-in
// defaults (repository id and remotes must then come from flags).
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("REPOSOURCE_CONFIG"); path != "" {
		return config.Load(path)
	}

	path, err := config.FindConfigFile()
	if err != nil {
		logger.Debugf("no config file found, using defaults: %v", err)
		return config.Default(), nil
	}

	logger.Infof("Using config file: %s", path)
	return config.Load(path)
}
