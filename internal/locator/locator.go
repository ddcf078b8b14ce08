// Package locator discovers built plugin artifacts on disk.
//
// A scan walks an ordered list of search roots non-recursively and parses
// every entry's filename against the artifact naming convention. Entries
// that do not follow the convention are skipped. The scan yields each
// distinct (name, toolchain, location) triple exactly once; ordering is not
// guaranteed and is normalized by the index.
package locator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dynalint/dynalint/internal/artifact"
)

// Root is one search directory. A required root that does not exist is a
// fatal DiscoveryError; an optional root that does not exist is skipped.
type Root struct {
	Dir      string
	Required bool
}

// Artifact is one discovered plugin artifact.
type Artifact struct {
	Name      string
	Toolchain string
	// Location is the canonical path of the artifact file.
	Location string
}

// DiscoveryError reports a required search root that could not be scanned.
type DiscoveryError struct {
	Dir string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("cannot scan plugin search root %s: %v", e.Dir, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Scan discovers artifacts under the given roots, in no particular order.
// Duplicate triples collapse into one.
func Scan(ctx context.Context, roots []Root) ([]Artifact, error) {
	var found []Artifact
	seen := make(map[Artifact]struct{})

	for _, root := range roots {
		entries, err := os.ReadDir(root.Dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && !root.Required {
				slog.DebugContext(ctx, "skipping missing optional search root", "dir", root.Dir)
				continue
			}
			return nil, &DiscoveryError{Dir: root.Dir, Err: err}
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name, toolchain, ok := ParseFilename(entry.Name())
			if !ok {
				continue
			}
			a := Artifact{
				Name:      name,
				Toolchain: toolchain,
				Location:  artifact.Canonical(filepath.Join(root.Dir, entry.Name())),
			}
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			found = append(found, a)
			slog.DebugContext(ctx, "discovered plugin artifact",
				"name", a.Name, "toolchain", a.Toolchain, "location", a.Location)
		}
	}

	return found, nil
}
