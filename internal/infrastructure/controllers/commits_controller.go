package controllers

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/multigit/reposource/internal/domain/commands"
	"github.com/multigit/reposource/internal/domain/entities"
)

// CommitsController handles the "commits" subcommand.
type CommitsController struct {
	loader *commands.CommitLoader
}

// NewCommitsController creates a new CommitsController.
func NewCommitsController(loader *commands.CommitLoader) *CommitsController {
	return &CommitsController{loader: loader}
}

// GetBind returns the Cobra command metadata for the commits controller.
func (it *CommitsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "commits",
		Short: "Show the commit history of a branch",
		Long: `Show one page of a branch's commit history, newest first.
Reads go to the hosting vendor's API when one is reachable and fall
back to the local git engine otherwise.`,
	}
}

// Execute loads and prints one commit page.
func (it *CommitsController) Execute(cmd *cobra.Command, _ []string) {
	ctx := context.Background()

	branch, _ := cmd.Flags().GetString("branch")
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")

	if pageSize > 0 {
		it.loader.SetPageSize(pageSize)
	}

	var result *commands.CommitLoadResult
	var err error
	if page > 1 {
		if _, err = it.loader.LoadCommits(ctx, branch, ""); err == nil {
			result, err = it.loader.LoadPage(ctx, page)
		}
	} else {
		result, err = it.loader.LoadCommits(ctx, branch, "")
	}
	if err != nil {
		logger.Errorf("Failed to load commits: %v", err)
		return
	}

	state := it.loader.State()
	for _, commit := range pageSlice(state) {
		fmt.Printf("%.8s  %s  %-20s  %s\n",
			commit.SHA,
			commit.Author.When.Format("2006-01-02"),
			commit.Author.Name,
			firstLine(commit.Message),
		)
	}

	total := entities.CommitCount{Count: result.TotalCount, IsEstimate: result.TotalIsEstimate}
	fmt.Printf("\npage %d of %s commit(s)", state.CurrentPage, total.String())
	if state.HasMore {
		fmt.Print(", more available")
	}
	fmt.Println()
}

// AddFlags adds the commits-specific flags to the given Cobra command.
func (it *CommitsController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("branch", "", "Branch to show (default: main branch)")
	cmd.Flags().Int("page", 1, "Page number to show (1-based)")
	cmd.Flags().Int("page-size", 0, "Commits per page")
}

// pageSlice returns only the current page from the accumulated commits.
func pageSlice(state entities.CommitPageState) []entities.Commit {
	start := (state.CurrentPage - 1) * state.PageSize
	if start >= len(state.Commits) {
		start = 0
	}
	end := min(start+state.PageSize, len(state.Commits))
	return state.Commits[start:end]
}

func firstLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		return message[:idx]
	}
	return message
}
