package controllers

import (
	"context"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/multigit/reposource/config"
	"github.com/multigit/reposource/internal/domain/commands"
	"github.com/multigit/reposource/internal/domain/entities"
)

// CatController handles the "cat" subcommand.
type CatController struct {
	browser *commands.FileBrowser
	cfg     *config.Config
}

// NewCatController creates a new CatController.
func NewCatController(browser *commands.FileBrowser, cfg *config.Config) *CatController {
	return &CatController{browser: browser, cfg: cfg}
}

// GetBind returns the Cobra command metadata for the cat controller.
func (it *CatController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "cat <path>",
		Short: "Print a file's content",
		Long:  `Print the content of one file at the given branch to stdout.`,
	}
}

// Execute prints one file.
func (it *CatController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	if len(args) == 0 {
		logger.Error("a file path is required")
		return
	}

	branch, _ := cmd.Flags().GetString("branch")
	if branch == "" {
		branch = it.cfg.Repository.MainBranch
	}

	content, err := it.browser.ReadFile(ctx, branch, args[0])
	if err != nil {
		logger.Errorf("Failed to read %q: %v", args[0], err)
		return
	}

	_, _ = os.Stdout.Write(content)
}

// AddFlags adds the cat-specific flags to the given Cobra command.
func (it *CatController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("branch", "", "Branch to read from (default: main branch)")
}
