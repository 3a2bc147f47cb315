package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGet_MissingEntry(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)

	out, ok, err := c.Get(Key("src"), "typescript", "lua")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, out)
}

func TestPutGet(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)

	key := Key("const x = 1;")
	require.NoError(t, c.Put(key, "typescript", "lua", "local x = 1\n"))

	out, ok, err := c.Get(key, "typescript", "lua")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "local x = 1\n", out)

	// The same hash under a different language pair is a separate entry.
	_, ok, err = c.Get(key, "lua", "typescript")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPut_Upserts(t *testing.T) {
	t.Parallel()
	c := newTestCache(t)

	key := Key("src")
	require.NoError(t, c.Put(key, "typescript", "lua", "old"))
	require.NoError(t, c.Put(key, "typescript", "lua", "new"))

	out, ok, err := c.Get(key, "typescript", "lua")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", out)

	n, err := c.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestKey_Deterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Key("abc"), Key("abc"))
	assert.NotEqual(t, Key("abc"), Key("abd"))
	assert.Len(t, Key(""), 64)
}

func TestOpen_Reopens(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "persist.db")
	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.Put(Key("src"), "lua", "typescript", "let x = 1;\n"))
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()
	out, ok, err := c.Get(Key("src"), "lua", "typescript")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "let x = 1;\n", out)
}
