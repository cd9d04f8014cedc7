package controllers

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/multigit/reposource/internal/domain/commands"
	"github.com/multigit/reposource/internal/domain/entities"
)

// PushController handles the "push" subcommand.
type PushController struct {
	command *commands.PushCommand
}

// NewPushController creates a new PushController.
func NewPushController(command *commands.PushCommand) *PushController {
	return &PushController{command: command}
}

// GetBind returns the Cobra command metadata for the push controller.
func (it *PushController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "push <branch>",
		Short: "Push a branch to every remote",
		Long: `Push one branch to every push-capable remote through the git
engine. Best-effort mode reports partial success; all-or-nothing mode
fails the whole run when any remote failed.`,
	}
}

// Execute runs the push fan-out.
func (it *PushController) Execute(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	if len(args) == 0 {
		logger.Error("a branch name is required")
		return
	}

	mode, _ := cmd.Flags().GetString("mode")
	force, _ := cmd.Flags().GetBool("force")
	confirm, _ := cmd.Flags().GetBool("yes")

	result, err := it.command.PushToAllRemotes(ctx, commands.PushOptions{
		Branch:             args[0],
		Mode:               entities.PushMode(mode),
		AllowForce:         force,
		ConfirmDestructive: confirm,
	})
	if result != nil {
		printBreakdown(result)
	}
	if err != nil {
		logger.Errorf("Push failed: %v", err)
	}
}

// AddFlags adds the push-specific flags to the given Cobra command.
func (it *PushController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", string(entities.PushBestEffort),
		"Failure policy (best-effort, all-or-nothing)")
	cmd.Flags().Bool("force", false, "Allow a force push")
	cmd.Flags().Bool("yes", false, "Confirm destructive operations")
}

func printBreakdown(result *entities.PushFanoutResult) {
	for _, remote := range result.Results {
		if remote.Success {
			fmt.Printf("ok      %s\n", remote.RemoteURL)
			continue
		}
		fmt.Printf("failed  %s: %v\n", remote.RemoteURL, remote.Err)
	}
}
