package internal

import (
	"github.com/multigit/reposource/internal/domain/entities"
)

// AppInternal is the assembled application: every controller the CLI
// exposes, in registration order.
type AppInternal struct {
	controllers *[]entities.Controller
}

// NewAppInternal creates the application from the aggregated controllers.
func NewAppInternal(controllers *[]entities.Controller) *AppInternal {
	return &AppInternal{controllers: controllers}
}

// GetControllers returns the controllers to mount as subcommands.
func (it *AppInternal) GetControllers() []entities.Controller {
	return *it.controllers
}
