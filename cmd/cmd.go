package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dynalint/dynalint/cmd/check"
	dynalintcmd "github.com/dynalint/dynalint/cmd/internal/cmd"
	"github.com/dynalint/dynalint/cmd/list"
	"github.com/dynalint/dynalint/cmd/provision"
	"github.com/dynalint/dynalint/cmd/version"
	"github.com/dynalint/dynalint/internal/flags/log"
)

// Execute runs the root command. It is called by main.main() exactly once.
func Execute() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

// New constructs the root command with all subcommands and persistent
// flags attached.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dynalint [sub-command]",
		Short: "Run dynamically loaded analysis plugins over a project",
		Long: `dynalint discovers dynamically loadable analysis libraries, builds the
ones that only exist as source, obtains a host driver matched to each
library's toolchain, and runs one check per toolchain over the project.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: setup,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	cmd.PersistentFlags().String(dynalintcmd.WorkingDirectoryFlag, ".",
		`project directory the workspace configuration is loaded from and checks run in`)
	log.RegisterLoggingFlags(cmd.PersistentFlags())

	cmd.AddCommand(check.New())
	cmd.AddCommand(list.New())
	cmd.AddCommand(provision.New())
	cmd.AddCommand(version.New())
	return cmd
}
