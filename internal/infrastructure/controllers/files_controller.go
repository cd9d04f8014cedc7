package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/multigit/reposource/config"
	"github.com/multigit/reposource/internal/domain/commands"
	"github.com/multigit/reposource/internal/domain/entities"
)

// FilesController handles the "files" subcommand.
type FilesController struct {
	browser *commands.FileBrowser
	cfg     *config.Config
}

// NewFilesController creates a new FilesController.
func NewFilesController(browser *commands.FileBrowser, cfg *config.Config) *FilesController {
	return &FilesController{browser: browser, cfg: cfg}
}

// GetBind returns the Cobra command metadata for the files controller.
func (it *FilesController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "files [path]",
		Short: "List files at a path",
		Long: `List one directory level of the repository tree.
Without a path argument, the repository root is listed.`,
	}
}

// Execute lists one directory level.
func (it *FilesController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	branch, _ := cmd.Flags().GetString("branch")
	if branch == "" {
		branch = it.cfg.Repository.MainBranch
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	entries, err := it.browser.ListDirectory(ctx, branch, path)
	if err != nil {
		logger.Errorf("Failed to list %q: %v", path, err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir {
			fmt.Printf("%10s  %s/\n", "-", entry.Name)
			continue
		}
		fmt.Printf("%10d  %s\n", entry.Size, entry.Name)
	}
}

// AddFlags adds the files-specific flags to the given Cobra command.
func (it *FilesController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("branch", "", "Branch to read from (default: main branch)")
}
