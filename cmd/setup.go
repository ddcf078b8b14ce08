package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	dynalintcmd "github.com/dynalint/dynalint/cmd/internal/cmd"
	clictx "github.com/dynalint/dynalint/internal/context"
	"github.com/dynalint/dynalint/internal/driver"
	"github.com/dynalint/dynalint/internal/flags/log"
	"github.com/dynalint/dynalint/internal/index"
	"github.com/dynalint/dynalint/internal/toolexec"
	"github.com/dynalint/dynalint/internal/wsconfig"
)

// setup runs before every subcommand. It constructs the logger, loads the
// workspace configuration, validates the library search path, and registers
// the per-invocation index, driver cache and tool runner on the command
// context.
func setup(cmd *cobra.Command, _ []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	slog.SetDefault(logger)
	cmd.SetContext(slogctx.NewCtx(cmd.Context(), logger))
	clictx.Register(cmd)

	workingDir, err := cmd.Flags().GetString(dynalintcmd.WorkingDirectoryFlag)
	if err != nil {
		return err
	}
	if workingDir, err = filepath.Abs(workingDir); err != nil {
		return fmt.Errorf("could not resolve working directory: %w", err)
	}

	cfg, err := wsconfig.Load(workingDir)
	if err != nil {
		return err
	}
	ctx := clictx.WithConfiguration(cmd.Context(), cfg, workingDir)

	roots, err := wsconfig.LibraryPathRoots(os.Getenv(dynalintcmd.EnvLibraryPath))
	if err != nil {
		return err
	}
	ctx = clictx.WithIndex(ctx, index.New(roots...))

	cacheRoot, err := driver.DefaultRoot()
	if err != nil {
		return err
	}
	runner := toolexec.ExecRunner{}
	ctx = clictx.WithDriverCache(ctx, driver.NewCache(cacheRoot, runner, cfg.BuildTool, cfg.OutputDir))
	ctx = clictx.WithRunner(ctx, runner)

	cmd.SetContext(ctx)
	return nil
}
