package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynalint/dynalint/internal/locator"
)

func writeArtifact(t *testing.T, dir, name, toolchain string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, locator.Filename(name, toolchain)), []byte("artifact"), 0o644))
}

func TestIndexSortedIteration(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "zeta", "tc-B")
	writeArtifact(t, dir, "zeta", "tc-A")
	writeArtifact(t, dir, "alpha", "tc-C")

	ix := New(locator.Root{Dir: dir, Required: true})

	names, err := ix.Names(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names)

	entries, err := ix.Lookup(t.Context(), "zeta")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "tc-A", entries[0].Toolchain)
	assert.Equal(t, "tc-B", entries[1].Toolchain)
}

func TestIndexLookupAbsentName(t *testing.T) {
	ix := New(locator.Root{Dir: t.TempDir(), Required: true})

	entries, err := ix.Lookup(t.Context(), "nope")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIndexMemoizesFirstScan(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "first", "tc-A")

	ix := New(locator.Root{Dir: dir, Required: true})

	names, err := ix.Names(t.Context())
	require.NoError(t, err)
	require.Equal(t, []string{"first"}, names)

	// Artifacts appearing after the first query stay invisible.
	writeArtifact(t, dir, "second", "tc-A")

	names, err = ix.Names(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, names)
}

func TestIndexCollapsesDuplicateRoots(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "foo", "tc-A")

	ix := New(
		locator.Root{Dir: dir, Required: true},
		locator.Root{Dir: dir, Required: true},
	)

	entries, err := ix.Lookup(t.Context(), "foo")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestIndexAll(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "foo", "tc-A")
	writeArtifact(t, dir, "bar", "tc-B")

	ix := New(locator.Root{Dir: dir, Required: true})

	names, byName, err := ix.All(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"bar", "foo"}, names)
	require.Len(t, byName["foo"], 1)
	assert.Equal(t, "tc-A", byName["foo"][0].Toolchain)
}

func TestIndexPropagatesScanError(t *testing.T) {
	ix := New(locator.Root{Dir: filepath.Join(t.TempDir(), "absent"), Required: true})

	_, err := ix.Names(t.Context())
	require.Error(t, err)

	var discoveryErr *locator.DiscoveryError
	assert.ErrorAs(t, err, &discoveryErr)
}
