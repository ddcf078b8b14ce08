package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaffoldRendersPinnedProject(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, scaffold(dir, "nightly-2024-06-01"))

	for _, file := range []string{"Cargo.toml", "rust-toolchain.toml", filepath.Join("src", "main.rs")} {
		assert.FileExists(t, filepath.Join(dir, file))
	}

	toolchainFile, err := os.ReadFile(filepath.Join(dir, "rust-toolchain.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(toolchainFile), `channel = "nightly-2024-06-01"`)

	manifest, err := os.ReadFile(filepath.Join(dir, "Cargo.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), BinaryName)

	main, err := os.ReadFile(filepath.Join(dir, "src", "main.rs"))
	require.NoError(t, err)
	assert.Contains(t, string(main), "dynalint_driver::main")
}
