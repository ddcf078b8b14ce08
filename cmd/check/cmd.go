// Package check implements the check subcommand: resolve the selection,
// build what only exists as source, and dispatch one driver-backed check
// per required toolchain.
package check

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	dynalintcmd "github.com/dynalint/dynalint/cmd/internal/cmd"
	"github.com/dynalint/dynalint/internal/artifact"
	"github.com/dynalint/dynalint/internal/builder"
	clictx "github.com/dynalint/dynalint/internal/context"
	"github.com/dynalint/dynalint/internal/dispatch"
	"github.com/dynalint/dynalint/internal/gitsrc"
	"github.com/dynalint/dynalint/internal/selection"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [-- ENGINE_ARGS]",
		Short: "Run the selected analysis libraries over the project",
		Long: `Check resolves the selected libraries, builds any that only exist as
source, obtains a driver matched to each library's toolchain, and runs the
project check tool once per toolchain with the libraries loaded.

Arguments after -- are passed through to the analysis engine unmodified.`,
		Example: `  # run every discoverable library
  dynalint check --all

  # run one library by name
  dynalint check --lib unused_exports

  # run the libraries of one source tree, skipping everything else
  dynalint check --path ../my-lints

  # keep checking remaining toolchains after a failure
  dynalint check --all --keep-going`,
		Args:              cobra.ArbitraryArgs,
		RunE:              run,
		DisableAutoGenTag: true,
	}

	dynalintcmd.RegisterSelectionFlags(cmd.Flags())
	cmd.Flags().Bool(dynalintcmd.NoBuildFlag, false, "trust that artifacts already exist; never invoke the build tool")
	cmd.Flags().Bool(dynalintcmd.NoDepsFlag, false, "forward --no-deps to the check tool")
	cmd.Flags().Bool(dynalintcmd.KeepGoingFlag, false, "run every toolchain partition even after failures")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c := clictx.FromContext(ctx)
	cfg := c.Configuration()

	criteria, err := dynalintcmd.CriteriaFromFlags(cmd)
	if err != nil {
		return err
	}
	noBuild, err := cmd.Flags().GetBool(dynalintcmd.NoBuildFlag)
	if err != nil {
		return err
	}
	noDeps, err := cmd.Flags().GetBool(dynalintcmd.NoDepsFlag)
	if err != nil {
		return err
	}
	keepGoing, err := cmd.Flags().GetBool(dynalintcmd.KeepGoingFlag)
	if err != nil {
		return err
	}

	engineArgs := args
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		engineArgs = args[at:]
	}

	resolver := &selection.Resolver{Index: c.Index()}
	res, err := resolver.Resolve(ctx, criteria)
	if err != nil {
		return err
	}

	// Workspace-declared source specs join the unbuilt set whenever the
	// index is in play and something was actually asked for.
	if !criteria.Bypass() && (criteria.All || len(criteria.Names) > 0) {
		res.Unbuilt = append(res.Unbuilt, cfg.Specs(c.WorkingDir())...)
	}

	bld := builder.New(c.Runner(), cfg.BuildTool, cfg.OutputDir)
	bld.NoBuild = noBuild
	if err := buildAndAdmit(ctx, bld, c, res, criteria); err != nil {
		var buildErr *builder.BuildError
		if errors.As(err, &buildErr) && len(buildErr.Output) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s", buildErr.Output)
		}
		return err
	}

	if res.Selection.Empty() {
		if !criteria.Bypass() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", selection.EmptySelectionWarning)
		}
		return nil
	}

	dispatcher := &dispatch.Dispatcher{Runner: c.Runner(), Drivers: c.Drivers()}
	return dispatcher.Check(ctx, res.Selection, dispatch.Options{
		Workspace:  c.WorkingDir(),
		CheckTool:  cfg.BuildTool,
		NoDeps:     noDeps,
		KeepGoing:  keepGoing,
		EngineArgs: engineArgs,
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
	})
}

// buildAndAdmit materializes every unbuilt spec, rediscovers the artifacts
// it produced, and admits the ones the criteria ask for into the selection.
func buildAndAdmit(ctx context.Context, bld *builder.Builder, c *clictx.Context, res *selection.Result, criteria selection.Criteria) error {
	for _, spec := range res.Unbuilt {
		loc, err := locationFor(ctx, c, spec)
		if err != nil {
			return err
		}
		artifacts, err := bld.Discover(ctx, loc)
		if err != nil {
			return err
		}
		for _, a := range artifacts {
			if criteria.Admits(a.Name) {
				res.Selection.Add(a.Toolchain, a.Location)
			}
		}
	}
	return nil
}

// locationFor materializes a spec on disk. Remote sources are fetched and
// checked out first; the checkout itself yields no artifacts.
func locationFor(ctx context.Context, c *clictx.Context, spec artifact.Spec) (artifact.Location, error) {
	switch s := spec.(type) {
	case artifact.PrebuiltSpec:
		return artifact.Prebuilt{Dir: filepath.Dir(artifact.Canonical(s.Path))}, nil
	case artifact.LocalSourceSpec:
		return artifact.Buildable{SourceDir: s.Dir}, nil
	case artifact.RemoteSourceSpec:
		checkoutRoot := filepath.Join(filepath.Dir(c.Drivers().Root), "checkouts")
		dir, err := gitsrc.Checkout(ctx, checkoutRoot, s)
		if err != nil {
			return nil, err
		}
		return artifact.Buildable{SourceDir: dir}, nil
	default:
		return nil, fmt.Errorf("spec %q cannot be materialized", spec)
	}
}
