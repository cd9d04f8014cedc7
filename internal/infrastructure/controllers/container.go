package controllers

import (
	"github.com/multigit/reposource/internal/domain/entities"
	"go.uber.org/dig"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	if err := container.Provide(NewBranchesController); err != nil {
		return err
	}
	if err := container.Provide(NewCommitsController); err != nil {
		return err
	}
	if err := container.Provide(NewFilesController); err != nil {
		return err
	}
	if err := container.Provide(NewCatController); err != nil {
		return err
	}
	if err := container.Provide(NewSwitchController); err != nil {
		return err
	}
	if err := container.Provide(NewPushController); err != nil {
		return err
	}
	if err := container.Provide(NewControllers); err != nil {
		return err
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	branchesController *BranchesController,
	commitsController *CommitsController,
	filesController *FilesController,
	catController *CatController,
	switchController *SwitchController,
	pushController *PushController,
) *[]entities.Controller {
	return &[]entities.Controller{
		branchesController,
		commitsController,
		filesController,
		catController,
		switchController,
		pushController,
	}
}
