package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/multigit/reposource/internal"
)

// flagAdder is implemented by controllers that carry their own flags.
type flagAdder interface {
	AddFlags(cmd *cobra.Command)
}

func buildRootCommand() *cobra.Command {
	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{
		Use:   "reposource",
		Short: "Multi-source repository data access",
		Long: `Read repository data (branches, commits, files) from the fastest
available source: the hosting vendor's REST API when one is reachable,
the local git execution engine otherwise. Writes always go through the
engine, fanned out to every configured remote.

Supports GitHub, GitLab, Bitbucket and Gitea/Forgejo hosted remotes.`,
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}

	// Global persistent flags
	cmd.PersistentFlags().StringP("config", "c", "",
		"Path to config file (default: auto-detect)")
	cmd.PersistentFlags().BoolP("verbose", "v", false,
		"Enable verbose output")

	return cmd
}

func addSubcommands(rootCmd *cobra.Command, appContext *internal.AppInternal) {
	for _, controller := range appContext.GetControllers() {
		bind := controller.GetBind()
		ctrl := controller // capture for closure
		//nolint:exhaustruct // Minimal Command initialization with required fields only
		subCmd := &cobra.Command{
			Use:   bind.Use,
			Short: bind.Short,
			Long:  bind.Long,
			Run: func(command *cobra.Command, arguments []string) {
				ctrl.Execute(command, arguments)
			},
		}

		// Add controller-specific flags
		if fa, ok := ctrl.(flagAdder); ok {
			fa.AddFlags(subCmd)
		}

		rootCmd.AddCommand(subCmd)
	}
}

func main() {
	//nolint:exhaustruct // Minimal TextFormatter initialization with required fields only
	logger.SetFormatter(&logger.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	if os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DebugLevel)
	}

	applyConfigFlag(os.Args[1:])

	cobraRoot := buildRootCommand()

	// Add all subcommands
	appContext := injectAppContext()
	addSubcommands(cobraRoot, appContext)

	if err := cobraRoot.Execute(); err != nil {
		logger.Fatalf("Error executing 'reposource': %s", err)
	}
}

// applyConfigFlag pre-scans the arguments for --config so the injected
// configuration honors it. Cobra parses flags only after the container is
// already built.
func applyConfigFlag(args []string) {
	for i, arg := range args {
		switch {
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				_ = os.Setenv("REPOSOURCE_CONFIG", args[i+1])
			}
		case len(arg) > len("--config=") && arg[:len("--config=")] == "--config=":
			_ = os.Setenv("REPOSOURCE_CONFIG", arg[len("--config="):])
		}
	}
}
