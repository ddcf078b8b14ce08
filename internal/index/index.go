// Package index aggregates discovered artifacts into a memoized
// name -> toolchain -> locations map with deterministic iteration order.
package index

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/dynalint/dynalint/internal/locator"
)

// Entry is one (toolchain, location) pair registered under a name.
type Entry struct {
	Toolchain string
	Location  string
}

// Index is the lazily built, process-wide view of all discoverable
// artifacts. The first query triggers the scan; the result is memoized for
// the lifetime of the Index, so disk changes after construction are not
// observed. Both axes iterate in sorted order.
type Index struct {
	roots []locator.Root

	once sync.Once
	// byName is name -> toolchain -> set of locations.
	byName map[string]map[string]map[string]struct{}
	err    error
}

// New returns an Index over the given search roots. Nothing is scanned
// until the first query.
func New(roots ...locator.Root) *Index {
	return &Index{roots: roots}
}

func (ix *Index) build(ctx context.Context) error {
	ix.once.Do(func() {
		artifacts, err := locator.Scan(ctx, ix.roots)
		if err != nil {
			ix.err = err
			return
		}
		ix.byName = make(map[string]map[string]map[string]struct{})
		for _, a := range artifacts {
			byToolchain, ok := ix.byName[a.Name]
			if !ok {
				byToolchain = make(map[string]map[string]struct{})
				ix.byName[a.Name] = byToolchain
			}
			locations, ok := byToolchain[a.Toolchain]
			if !ok {
				locations = make(map[string]struct{})
				byToolchain[a.Toolchain] = locations
			}
			locations[a.Location] = struct{}{}
		}
	})
	return ix.err
}

// Names returns every artifact name in the index, sorted.
func (ix *Index) Names(ctx context.Context) ([]string, error) {
	if err := ix.build(ctx); err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(ix.byName)), nil
}

// Lookup returns every (toolchain, location) pair registered under name,
// sorted by toolchain then location. An absent name yields an empty slice,
// not an error.
func (ix *Index) Lookup(ctx context.Context, name string) ([]Entry, error) {
	if err := ix.build(ctx); err != nil {
		return nil, err
	}
	byToolchain := ix.byName[name]
	var entries []Entry
	for _, toolchain := range slices.Sorted(maps.Keys(byToolchain)) {
		for _, location := range slices.Sorted(maps.Keys(byToolchain[toolchain])) {
			entries = append(entries, Entry{Toolchain: toolchain, Location: location})
		}
	}
	return entries, nil
}

// All returns the full index content as name -> sorted entries, with names
// sorted as well.
func (ix *Index) All(ctx context.Context) ([]string, map[string][]Entry, error) {
	names, err := ix.Names(ctx)
	if err != nil {
		return nil, nil, err
	}
	byName := make(map[string][]Entry, len(names))
	for _, name := range names {
		entries, err := ix.Lookup(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		byName[name] = entries
	}
	return names, byName, nil
}
