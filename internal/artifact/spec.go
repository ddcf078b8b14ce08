// Package artifact models the sources a plugin artifact can come from.
//
// A Spec is what the user (or the workspace configuration) names: a prebuilt
// artifact file, a local source directory, a remote source location, or a
// purely informational name pattern. A Location is the on-disk form a spec
// takes once remote sources have been materialized; it is a closed union of
// "already built" and "needs building".
package artifact

import (
	"context"
	"fmt"
	"path/filepath"
)

// RefKind selects how the revision of a RemoteSource is interpreted.
type RefKind string

const (
	RefBranch   RefKind = "branch"
	RefTag      RefKind = "tag"
	RefRevision RefKind = "rev"
)

// Spec identifies one plugin artifact source supplied for an invocation.
// It is a closed union: PrebuiltSpec, LocalSourceSpec, RemoteSourceSpec
// and PatternSpec are the only implementations.
type Spec interface {
	fmt.Stringer

	spec()
}

// PrebuiltSpec names an existing artifact file. Its identity is the
// canonicalized path.
type PrebuiltSpec struct {
	Path string
}

// LocalSourceSpec names a buildable source directory. Its identity is the
// canonicalized directory.
type LocalSourceSpec struct {
	Dir string
}

// RemoteSourceSpec names a fetchable source location pinned to a revision.
// Its identity is the resolved checkout path after fetch.
type RemoteSourceSpec struct {
	URL  string
	Ref  string
	Kind RefKind
}

// PatternSpec is a glob over artifact names. It is informational only and
// never participates in execution selection.
type PatternSpec struct {
	Pattern string
}

func (PrebuiltSpec) spec()     {}
func (LocalSourceSpec) spec()  {}
func (RemoteSourceSpec) spec() {}
func (PatternSpec) spec()      {}

func (s PrebuiltSpec) String() string    { return s.Path }
func (s LocalSourceSpec) String() string { return s.Dir }
func (s PatternSpec) String() string     { return s.Pattern }

func (s RemoteSourceSpec) String() string {
	if s.Ref == "" {
		return s.URL
	}
	return fmt.Sprintf("%s@%s", s.URL, s.Ref)
}

// BuildFunc builds the artifacts of a source directory and returns the
// directory that holds the produced artifact files.
type BuildFunc func(ctx context.Context, sourceDir string) (string, error)

// Location is the on-disk form of a plugin artifact source. Resolve returns
// the directory that can be scanned for built artifact files, building first
// when the location is a source tree. Prebuilt and Buildable are the only
// implementations.
type Location interface {
	Resolve(ctx context.Context, build BuildFunc) (string, error)
}

// Prebuilt is a location that already holds built artifact files.
type Prebuilt struct {
	// Dir is the directory containing the artifact files.
	Dir string
}

// Resolve returns the directory as-is.
func (p Prebuilt) Resolve(_ context.Context, _ BuildFunc) (string, error) {
	return p.Dir, nil
}

// Buildable is a source-tree location whose artifacts must be built before
// they can be discovered.
type Buildable struct {
	// SourceDir is the root of the source tree.
	SourceDir string
}

// Resolve builds the source tree and returns its build-output directory.
func (b Buildable) Resolve(ctx context.Context, build BuildFunc) (string, error) {
	return build(ctx, b.SourceDir)
}

// Canonical returns the canonical identity of a filesystem path: absolute,
// cleaned and with symlinks resolved. Paths that cannot be fully resolved
// (for example because they do not exist yet) fall back to the cleaned
// absolute form.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
