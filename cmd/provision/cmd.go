// Package provision implements the provision subcommand: build and cache
// the drivers of several toolchains ahead of time.
package provision

import (
	"github.com/spf13/cobra"

	clictx "github.com/dynalint/dynalint/internal/context"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "provision TOOLCHAIN...",
		Short: "Build and cache drivers for the given toolchains ahead of time",
		Long: `Provision builds the host driver of every named toolchain and places it
in the driver cache, one worker per toolchain. Toolchains already in the
cache are left untouched. This is a maintenance operation; check obtains
missing drivers on demand without it.`,
		Example:           `  dynalint provision stable-2024-01-01 nightly-2024-06-01`,
		Args:              cobra.MinimumNArgs(1),
		RunE:              run,
		DisableAutoGenTag: true,
	}
}

func run(cmd *cobra.Command, args []string) error {
	c := clictx.FromContext(cmd.Context())
	return c.Drivers().ProvisionAll(cmd.Context(), args)
}
