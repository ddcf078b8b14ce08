// Package lockdir provides the advisory, directory-scoped mutual-exclusion
// guard taken around any directory the builders write to. Readers never
// take the lock: builds become visible only through an atomic rename, so a
// concurrent scan sees either the old state or the complete new one.
package lockdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".dynalint.lock"

// Lock acquires the advisory lock for dir, creating the directory if it
// does not exist yet. The returned release function must run on every exit
// path; deferring it immediately is the expected usage.
func Lock(dir string) (release func() error, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create lock directory %s: %w", dir, err)
	}

	fl := flock.New(filepath.Join(dir, lockFileName))
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("cannot lock directory %s: %w", dir, err)
	}
	return fl.Unlock, nil
}
