package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFind_WalksUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "src", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	want := writeConfig(t, root, "")

	got, ok, err := Find(nested)
	require.NoError(t, err)
	require.True(t, ok)
	// Resolve symlinks before comparing: TempDir may sit behind one.
	wantReal, err := filepath.EvalSymlinks(want)
	require.NoError(t, err)
	gotReal, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, wantReal, gotReal)
}

func TestFind_Absent(t *testing.T) {
	t.Parallel()

	_, ok, err := Find(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `
[translate]
target = "lua"
concurrency = 4

[cache]
enabled = true
path = "build/cache.db"
`)

	cfg, ok, err := Load(dir)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "lua", cfg.Translate.Target)
	assert.Equal(t, 4, cfg.Translate.Concurrency)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, filepath.Join(dir, "build", "cache.db"), cfg.Cache.Path,
		"relative cache path resolves against the config file")
}

func TestLoad_NoFile(t *testing.T) {
	t.Parallel()

	cfg, ok, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
	require.NotNil(t, cfg)
	assert.Empty(t, cfg.Translate.Target)
}

func TestLoad_Malformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "translate = not valid toml [")

	_, _, err := Load(dir)
	require.Error(t, err)
}
