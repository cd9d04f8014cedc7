package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/multigit/reposource/internal/domain/commands"
	"github.com/multigit/reposource/internal/domain/entities"
)

// SwitchController handles the "switch" subcommand.
type SwitchController struct {
	switcher *commands.BranchSwitcher
	loader   *commands.CommitLoader
}

// NewSwitchController creates a new SwitchController.
func NewSwitchController(switcher *commands.BranchSwitcher, loader *commands.CommitLoader) *SwitchController {
	return &SwitchController{switcher: switcher, loader: loader}
}

// GetBind returns the Cobra command metadata for the switch controller.
func (it *SwitchController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "switch <branch>",
		Short: "Switch the active branch",
		Long: `Switch the active branch: sync with the remotes when needed,
drop stale caches and load the first commit page of the target branch.`,
	}
}

// Execute runs one branch switch.
func (it *SwitchController) Execute(_ *cobra.Command, args []string) {
	ctx := context.Background()

	if len(args) == 0 {
		logger.Error("a branch name is required")
		return
	}

	if err := it.switcher.SetSelectedBranch(ctx, args[0]); err != nil {
		logger.Errorf("Branch switch failed: %v", err)
		return
	}

	state := it.loader.State()
	fmt.Printf("switched to %s (%d commit(s) loaded)\n", state.CurrentBranch, len(state.Commits))
}
