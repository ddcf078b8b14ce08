// Package builder turns buildable source locations into prebuilt artifact
// files by invoking the target ecosystem's own build tool, then rediscovers
// the produced artifacts through the locator.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/dynalint/dynalint/internal/artifact"
	"github.com/dynalint/dynalint/internal/lockdir"
	"github.com/dynalint/dynalint/internal/locator"
	"github.com/dynalint/dynalint/internal/toolexec"
)

// BuildError reports a failed build-tool invocation. The tool's full
// combined output is preserved verbatim in Output. Builds are never
// retried.
type BuildError struct {
	Dir    string
	Output []byte
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed in %s: %v", e.Dir, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Builder builds source locations at most once per canonical directory
// within one invocation. It is not safe for concurrent use; the scheduling
// model is sequential.
type Builder struct {
	Runner    toolexec.Runner
	BuildTool string
	// OutputDir is the build-output directory relative to a source root.
	OutputDir string
	// NoBuild trusts that artifacts already exist and skips the build
	// step entirely.
	NoBuild bool

	built map[string]string
}

// New returns a Builder using the given runner and workspace settings.
func New(runner toolexec.Runner, buildTool, outputDir string) *Builder {
	return &Builder{
		Runner:    runner,
		BuildTool: buildTool,
		OutputDir: outputDir,
		built:     make(map[string]string),
	}
}

// Build builds one source directory and returns the directory that holds
// the produced artifact files. The same canonical location is never built
// twice, even when named by overlapping selection criteria.
func (b *Builder) Build(ctx context.Context, sourceDir string) (string, error) {
	canonical := artifact.Canonical(sourceDir)
	outputDir := filepath.Join(canonical, b.OutputDir)

	if done, ok := b.built[canonical]; ok {
		return done, nil
	}
	if b.NoBuild {
		slog.DebugContext(ctx, "skipping build", "dir", canonical)
		b.built[canonical] = outputDir
		return outputDir, nil
	}

	release, err := lockdir.Lock(outputDir)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = release()
	}()

	slog.InfoContext(ctx, "building plugin library", "dir", canonical)
	output, err := b.Runner.Run(ctx, toolexec.Cmd{
		Name: b.BuildTool,
		Args: []string{"build", "--release"},
		Dir:  canonical,
	})
	if err != nil {
		return "", &BuildError{Dir: canonical, Output: output, Err: err}
	}

	b.built[canonical] = outputDir
	return outputDir, nil
}

// Discover resolves one location (building when needed) and re-runs the
// locator scoped to its output directory, returning the artifacts the
// build produced. The output directory is a required root here: a build
// that produced nothing discoverable is an error upstream concerns itself
// with.
func (b *Builder) Discover(ctx context.Context, loc artifact.Location) ([]locator.Artifact, error) {
	outputDir, err := loc.Resolve(ctx, b.Build)
	if err != nil {
		return nil, err
	}
	return locator.Scan(ctx, []locator.Root{{Dir: outputDir, Required: true}})
}
