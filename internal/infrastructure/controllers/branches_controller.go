package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/multigit/reposource/internal/domain/commands"
	"github.com/multigit/reposource/internal/domain/entities"
)

// BranchesController handles the "branches" subcommand.
type BranchesController struct {
	switcher *commands.BranchSwitcher
}

// NewBranchesController creates a new BranchesController.
func NewBranchesController(switcher *commands.BranchSwitcher) *BranchesController {
	return &BranchesController{switcher: switcher}
}

// GetBind returns the Cobra command metadata for the branches controller.
func (it *BranchesController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "branches",
		Short: "List branches and tags",
		Long: `List the repository's branches and tags.
Branches come first in alphabetical order, tags after them sorted
version-descending.`,
	}
}

// Execute lists the refs.
func (it *BranchesController) Execute(_ *cobra.Command, _ []string) {
	ctx := context.Background()

	refs, err := it.switcher.RefreshRefs(ctx)
	if err != nil {
		logger.Errorf("Failed to list refs: %v", err)
		return
	}

	for _, ref := range refs {
		marker := "branch"
		if ref.IsTag() {
			marker = "tag"
		}
		fmt.Printf("%-8s %s\n", marker, ref.Name)
	}
}
