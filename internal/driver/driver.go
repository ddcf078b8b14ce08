// Package driver obtains toolchain-matched host-engine binaries. Each
// toolchain gets its own cache subdirectory; a binary is built on demand
// from a fixed minimal project pinned to that exact toolchain and renamed
// into the cache atomically, so a concurrent reader either misses or sees
// the complete binary, never a partial one.
package driver

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"

	"github.com/dynalint/dynalint/internal/lockdir"
	"github.com/dynalint/dynalint/internal/toolexec"
)

const (
	// BinaryName is the expected driver binary name inside a toolchain's
	// cache subdirectory. Its presence alone constitutes a cache hit; the
	// content is never verified.
	BinaryName = "dynalint-driver"

	// APIVersion is the driver interface version this binary understands.
	APIVersion = "0.1.0"

	// EnvCacheRoot overrides the driver cache root.
	EnvCacheRoot = "PLUGIN_HOST_ENGINE_CACHE"
)

// UnavailableError reports that no driver could be obtained for a
// toolchain. It is unconditionally fatal.
type UnavailableError struct {
	Toolchain string
	Err       error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("no driver available for toolchain %s: %v", e.Toolchain, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// DefaultRoot returns the driver cache root: the EnvCacheRoot override when
// set, the user cache directory otherwise.
func DefaultRoot() (string, error) {
	if root := os.Getenv(EnvCacheRoot); root != "" {
		return root, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user cache directory: %w", err)
	}
	return filepath.Join(base, "dynalint", "drivers"), nil
}

// Cache resolves and builds drivers under one cache root. Distinct
// toolchains use independent subdirectories and never contend; concurrent
// builds of the same toolchain serialize on the subdirectory lock.
type Cache struct {
	Root      string
	Runner    toolexec.Runner
	BuildTool string
	// OutputDir is where the build tool places the binary, relative to
	// the staged project root.
	OutputDir string
}

// NewCache returns a Cache over root.
func NewCache(root string, runner toolexec.Runner, buildTool, outputDir string) *Cache {
	return &Cache{Root: root, Runner: runner, BuildTool: buildTool, OutputDir: outputDir}
}

// Resolve returns the path of the driver binary matching the toolchain,
// building and caching it first when absent.
func (c *Cache) Resolve(ctx context.Context, toolchain string) (string, error) {
	ctx = slogctx.Append(ctx, "toolchain", toolchain)
	dir := filepath.Join(c.Root, toolchain)
	bin := filepath.Join(dir, BinaryName)

	if _, err := os.Stat(bin); err == nil {
		slog.DebugContext(ctx, "driver cache hit", "path", bin)
		return bin, nil
	}

	release, err := lockdir.Lock(dir)
	if err != nil {
		return "", &UnavailableError{Toolchain: toolchain, Err: err}
	}
	defer func() {
		_ = release()
	}()

	// Another process may have completed the build while we waited.
	if _, err := os.Stat(bin); err == nil {
		return bin, nil
	}

	if err := c.build(ctx, toolchain, bin); err != nil {
		return "", &UnavailableError{Toolchain: toolchain, Err: err}
	}

	c.checkVersion(ctx, bin)
	return bin, nil
}

func (c *Cache) build(ctx context.Context, toolchain, bin string) error {
	// Stage under the cache root so the final rename stays on one
	// filesystem and is atomic.
	stage, err := os.MkdirTemp(c.Root, ".staging-")
	if err != nil {
		return fmt.Errorf("cannot create staging directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(stage)
	}()

	if err := scaffold(stage, toolchain); err != nil {
		return err
	}

	slog.InfoContext(ctx, "building driver")
	output, err := c.Runner.Run(ctx, toolexec.Cmd{
		Name: c.BuildTool,
		Args: []string{"build", "--release"},
		Dir:  stage,
	})
	if err != nil {
		return fmt.Errorf("driver build failed: %w\n%s", err, output)
	}

	built := filepath.Join(stage, c.OutputDir, BinaryName)
	if err := os.Rename(built, bin); err != nil {
		return fmt.Errorf("cannot move driver into cache: %w", err)
	}
	return nil
}

// checkVersion asks a freshly built driver for its version and warns on an
// interface mismatch. Failures here never fail the resolution.
func (c *Cache) checkVersion(ctx context.Context, bin string) {
	output, err := c.Runner.Run(ctx, toolexec.Cmd{Name: bin, Args: []string{"--version"}})
	if err != nil {
		slog.DebugContext(ctx, "driver does not report a version", "error", err)
		return
	}

	fields := bytes.Fields(output)
	if len(fields) == 0 {
		return
	}
	reported, err := semver.NewVersion(string(fields[len(fields)-1]))
	if err != nil {
		slog.DebugContext(ctx, "unparsable driver version", "output", string(output))
		return
	}

	constraint, err := semver.NewConstraint("^" + APIVersion)
	if err != nil {
		return
	}
	if !constraint.Check(reported) {
		slog.WarnContext(ctx, "driver version does not match the supported interface",
			"driver", reported.String(), "supported", APIVersion)
	}
}

// ProvisionAll builds the drivers of several toolchains ahead of time, one
// worker per toolchain. All workers are joined and the first error
// encountered is returned. Workers touch independent cache subdirectories
// and do not contend.
func (c *Cache) ProvisionAll(ctx context.Context, toolchains []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, toolchain := range toolchains {
		g.Go(func() error {
			_, err := c.Resolve(ctx, toolchain)
			return err
		})
	}
	return g.Wait()
}
