// Package dispatch partitions a selection by toolchain and runs the
// project check tool once per partition, routing compilation through the
// toolchain-matched driver. The dispatcher only observes process exit
// status; plugin-emitted diagnostics pass through untouched.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	slogctx "github.com/veqryn/slog-context"

	"github.com/dynalint/dynalint/internal/selection"
	"github.com/dynalint/dynalint/internal/toolexec"
)

// Environment channels of one driver invocation. The partition's artifact
// locations travel in EnvLibs, pass-through engine flags in EnvArgs; both
// are JSON arrays so paths with separators survive.
const (
	EnvDriver = "DYNALINT_DRIVER"
	EnvLibs   = "DYNALINT_LIBS"
	EnvArgs   = "DYNALINT_ARGS"
)

// ExecutionError reports a dispatched invocation that exited non-zero.
type ExecutionError struct {
	Toolchain string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("check failed for toolchain %s: %v", e.Toolchain, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// DriverResolver yields the driver binary matching a toolchain.
type DriverResolver interface {
	Resolve(ctx context.Context, toolchain string) (string, error)
}

// Options configure one dispatch run.
type Options struct {
	// Workspace is the project directory the check tool runs in.
	Workspace string
	// CheckTool is the ecosystem build/check tool.
	CheckTool string
	// NoDeps forwards the corresponding flag to the check tool.
	NoDeps bool
	// KeepGoing runs every partition even after failures and reports
	// overall failure at the end.
	KeepGoing bool
	// EngineArgs are passed through to the engine unmodified.
	EngineArgs []string
	// Stdout and Stderr receive the check tool's output.
	Stdout io.Writer
	Stderr io.Writer
}

// Dispatcher runs selections.
type Dispatcher struct {
	Runner  toolexec.Runner
	Drivers DriverResolver
}

// Check runs one check-tool invocation per toolchain partition, in sorted
// toolchain order. Without KeepGoing the first failing partition aborts the
// run; with it, every partition runs and the joined failures are returned
// at the end. A driver that cannot be obtained is fatal either way.
func (d *Dispatcher) Check(ctx context.Context, sel selection.Selection, opts Options) error {
	var deferred []error

	for _, toolchain := range sel.Toolchains() {
		ctx := slogctx.Append(ctx, "toolchain", toolchain)

		driverBin, err := d.Drivers.Resolve(ctx, toolchain)
		if err != nil {
			return err
		}

		if err := d.checkPartition(ctx, toolchain, driverBin, sel.Locations(toolchain), opts); err != nil {
			if !opts.KeepGoing {
				return err
			}
			slog.WarnContext(ctx, "continuing after failed partition")
			deferred = append(deferred, err)
		}
	}

	return errors.Join(deferred...)
}

func (d *Dispatcher) checkPartition(ctx context.Context, toolchain, driverBin string, locations []string, opts Options) error {
	libs, err := json.Marshal(locations)
	if err != nil {
		return fmt.Errorf("encoding artifact locations: %w", err)
	}
	engineArgs, err := json.Marshal(opts.EngineArgs)
	if err != nil {
		return fmt.Errorf("encoding engine args: %w", err)
	}

	args := []string{"check"}
	if opts.NoDeps {
		args = append(args, "--no-deps")
	}

	slog.InfoContext(ctx, "checking partition", "libraries", len(locations))

	_, err = d.Runner.Run(ctx, toolexec.Cmd{
		Name: opts.CheckTool,
		Args: args,
		Dir:  opts.Workspace,
		Env: []string{
			EnvDriver + "=" + driverBin,
			EnvLibs + "=" + string(libs),
			EnvArgs + "=" + string(engineArgs),
			"RUSTC_WORKSPACE_WRAPPER=" + driverBin,
		},
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
	if err != nil {
		return &ExecutionError{Toolchain: toolchain, Err: err}
	}
	return nil
}
