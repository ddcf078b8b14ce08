package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(target, 0o755))
	link := filepath.Join(dir, "alias")
	require.NoError(t, os.Symlink(target, link))

	assert.Equal(t, Canonical(target), Canonical(link))
}

func TestCanonicalFallsBackForMissingPaths(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "not", "there")
	assert.Equal(t, missing, Canonical(missing))
}

func TestCanonicalCleansRelativePaths(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	assert.Equal(t, Canonical(dir), Canonical("."))
}

func TestLocationResolve(t *testing.T) {
	built := "/out"
	buildCalls := 0
	build := func(_ context.Context, sourceDir string) (string, error) {
		buildCalls++
		assert.Equal(t, "/src", sourceDir)
		return built, nil
	}

	dir, err := Prebuilt{Dir: "/prebuilt"}.Resolve(t.Context(), build)
	require.NoError(t, err)
	assert.Equal(t, "/prebuilt", dir)
	assert.Zero(t, buildCalls)

	dir, err = Buildable{SourceDir: "/src"}.Resolve(t.Context(), build)
	require.NoError(t, err)
	assert.Equal(t, built, dir)
	assert.Equal(t, 1, buildCalls)
}

func TestRemoteSourceSpecString(t *testing.T) {
	assert.Equal(t, "https://example.com/lints.git",
		RemoteSourceSpec{URL: "https://example.com/lints.git"}.String())
	assert.Equal(t, "https://example.com/lints.git@v1.2.3",
		RemoteSourceSpec{URL: "https://example.com/lints.git", Ref: "v1.2.3", Kind: RefTag}.String())
}
