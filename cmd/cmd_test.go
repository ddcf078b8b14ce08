package cmd_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynalint/dynalint/cmd/internal/test"
	"github.com/dynalint/dynalint/internal/driver"
	"github.com/dynalint/dynalint/internal/locator"
	"github.com/dynalint/dynalint/internal/selection"
)

// isolate points every environment channel at throwaway directories so a
// test run never touches the real caches or library path.
func isolate(t *testing.T, libraryDirs ...string) {
	t.Helper()
	t.Setenv("PLUGIN_LIBRARY_PATH", joinPathList(libraryDirs))
	t.Setenv(driver.EnvCacheRoot, t.TempDir())
}

func joinPathList(dirs []string) string {
	out := ""
	for i, dir := range dirs {
		if i > 0 {
			out += string(os.PathListSeparator)
		}
		out += dir
	}
	return out
}

func writeArtifact(t *testing.T, dir, name, toolchain string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, locator.Filename(name, toolchain)), []byte("artifact"), 0o644))
}

func TestRootShowsHelp(t *testing.T) {
	isolate(t)
	out := bytes.NewBuffer(nil)

	_, err := test.Dynalint(t, test.WithArgs("--working-directory", t.TempDir()), test.WithOutput(out))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "dynalint [sub-command]")
	assert.Contains(t, out.String(), "check")
	assert.Contains(t, out.String(), "list")
}

func TestListTable(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "unused_exports", "stable-2024-01-01")
	writeArtifact(t, dir, "dead_code", "stable-2024-01-01")
	isolate(t, dir)

	out := bytes.NewBuffer(nil)
	_, err := test.Dynalint(t,
		test.WithArgs("list", "--all", "--working-directory", t.TempDir()),
		test.WithOutput(out))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "unused_exports")
	assert.Contains(t, out.String(), "dead_code")
	assert.Contains(t, out.String(), "stable-2024-01-01")
}

func TestListJSON(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "unused_exports", "stable-2024-01-01")
	isolate(t, dir)

	out := bytes.NewBuffer(nil)
	_, err := test.Dynalint(t,
		test.WithArgs("list", "--all", "-o", "json", "--working-directory", t.TempDir()),
		test.WithOutput(out))
	require.NoError(t, err)

	var entries []struct {
		Name      string `json:"name"`
		Toolchain string `json:"toolchain"`
		Location  string `json:"location"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "unused_exports", entries[0].Name)
	assert.Equal(t, "stable-2024-01-01", entries[0].Toolchain)
	assert.NotEmpty(t, entries[0].Location)
}

func TestListPatternAndNoMetadata(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "unused_exports", "tc-A")
	writeArtifact(t, dir, "unused_imports", "tc-A")
	writeArtifact(t, dir, "unused_imports", "tc-B")
	writeArtifact(t, dir, "dead_code", "tc-A")
	isolate(t, dir)

	out := bytes.NewBuffer(nil)
	_, err := test.Dynalint(t,
		test.WithArgs("list", "--all", "--pattern", "unused_*", "--no-metadata",
			"--working-directory", t.TempDir()),
		test.WithOutput(out))
	require.NoError(t, err)

	// Names only, each exactly once, no toolchain metadata.
	assert.Equal(t, "unused_exports\nunused_imports\n", out.String())
}

func TestListRejectsInvalidPattern(t *testing.T) {
	isolate(t, t.TempDir())

	_, err := test.Dynalint(t,
		test.WithArgs("list", "--all", "--pattern", "[oops", "--working-directory", t.TempDir()),
		test.WithErrOutput(bytes.NewBuffer(nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid name pattern")
}

func TestListRejectsRelativeLibraryPathEntry(t *testing.T) {
	t.Setenv("PLUGIN_LIBRARY_PATH", "relative/dir")
	t.Setenv(driver.EnvCacheRoot, t.TempDir())

	_, err := test.Dynalint(t,
		test.WithArgs("list", "--all", "--working-directory", t.TempDir()),
		test.WithErrOutput(bytes.NewBuffer(nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not absolute")
}

func TestCheckNothingSelectedWarns(t *testing.T) {
	isolate(t, t.TempDir())

	errOut := bytes.NewBuffer(nil)
	_, err := test.Dynalint(t,
		test.WithArgs("check", "--lib", "no_such_library", "--working-directory", t.TempDir()),
		test.WithErrOutput(errOut))
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "Warning: "+selection.EmptySelectionWarning)
}

func TestCheckAmbiguousSelectionFails(t *testing.T) {
	d1 := t.TempDir()
	d2 := t.TempDir()
	writeArtifact(t, d1, "unused_exports", "tc-A")
	writeArtifact(t, d2, "unused_exports", "tc-B")
	isolate(t, d1, d2)

	_, err := test.Dynalint(t,
		test.WithArgs("check", "--lib", "unused_exports", "--working-directory", t.TempDir()),
		test.WithErrOutput(bytes.NewBuffer(nil)))
	require.Error(t, err)

	var ambiguous *selection.AmbiguousSelectionError
	require.ErrorAs(t, err, &ambiguous)
	assert.Len(t, ambiguous.Candidates, 2)
}

func TestListRejectsSourceLocationFlags(t *testing.T) {
	isolate(t, t.TempDir())

	_, err := test.Dynalint(t,
		test.WithArgs("list", "--path", "../my-lints", "--working-directory", t.TempDir()),
		test.WithErrOutput(bytes.NewBuffer(nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list covers the library path only")
}

func TestCheckRejectsAllWithLib(t *testing.T) {
	isolate(t)

	_, err := test.Dynalint(t,
		test.WithArgs("check", "--all", "--lib", "unused_exports", "--working-directory", t.TempDir()),
		test.WithErrOutput(bytes.NewBuffer(nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestCheckRejectsConflictingSourceFlags(t *testing.T) {
	isolate(t)

	_, err := test.Dynalint(t,
		test.WithArgs("check", "--path", "a", "--git", "https://example.com/b.git",
			"--working-directory", t.TempDir()),
		test.WithErrOutput(bytes.NewBuffer(nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestCheckRejectsRefWithoutGit(t *testing.T) {
	isolate(t)

	_, err := test.Dynalint(t,
		test.WithArgs("check", "--tag", "v1", "--working-directory", t.TempDir()),
		test.WithErrOutput(bytes.NewBuffer(nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "require --git")
}

func TestVersionJSON(t *testing.T) {
	isolate(t)

	out := bytes.NewBuffer(nil)
	_, err := test.Dynalint(t,
		test.WithArgs("version", "-o", "json", "--working-directory", t.TempDir()),
		test.WithOutput(out))
	require.NoError(t, err)

	var info struct {
		Version       string `json:"version"`
		DriverVersion string `json:"driverVersion"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, driver.APIVersion, info.DriverVersion)
}

func TestProvisionRequiresToolchains(t *testing.T) {
	isolate(t)

	_, err := test.Dynalint(t,
		test.WithArgs("provision", "--working-directory", t.TempDir()),
		test.WithErrOutput(bytes.NewBuffer(nil)))
	require.Error(t, err)
}

func TestDebugLogsAreStructured(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "unused_exports", "tc-A")
	isolate(t, dir)

	logs := test.NewJSONLogReader()
	_, err := test.Dynalint(t,
		test.WithArgs("list", "--all", "--loglevel", "debug", "--working-directory", t.TempDir()),
		test.WithOutput(bytes.NewBuffer(nil)),
		test.WithErrOutput(logs))
	require.NoError(t, err)

	entries, err := logs.List()
	require.NoError(t, err)

	found := false
	for _, entry := range entries {
		if entry.Msg == "discovered plugin artifact" {
			found = true
			assert.Equal(t, "DEBUG", entry.Level)
			assert.Equal(t, "unused_exports", entry.Extras["name"])
			assert.Equal(t, "tc-A", entry.Extras["toolchain"])
		}
	}
	assert.True(t, found, "expected a discovery log entry")
}

func TestDualWorkspaceConfigIsRejected(t *testing.T) {
	isolate(t)

	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, "dynalint.yaml"), []byte("libraries: []\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(work, ".config"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(work, ".config", "dynalint.yaml"), []byte("libraries: []\n"), 0o644))

	_, err := test.Dynalint(t,
		test.WithArgs("list", "--all", "--working-directory", work),
		test.WithErrOutput(bytes.NewBuffer(nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared in both")
}
