package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/recast/internal/config"
)

func TestConcurrency_FlagWinsOverConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Translate.Concurrency = 4

	flagConcurrency = 0
	assert.Equal(t, 4, concurrency(cfg))

	flagConcurrency = 8
	defer func() { flagConcurrency = 0 }()
	assert.Equal(t, 8, concurrency(cfg))
}

func TestJoinExts(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ts, .tsx", joinExts([]string{"ts", "tsx"}))
	assert.Equal(t, "lua", joinExts([]string{"lua"}))
	assert.Equal(t, "", joinExts(nil))
}

func TestRunCheck(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.lua")
	require.NoError(t, os.WriteFile(good, []byte("local x = 1\n"), 0o644))
	bad := filepath.Join(dir, "bad.lua")
	require.NoError(t, os.WriteFile(bad, []byte("repeat f() until done\n"), 0o644))

	flagFrom = ""
	assert.NoError(t, runCheck(checkCmd, []string{good}))
	assert.Error(t, runCheck(checkCmd, []string{bad}))
	assert.Error(t, runCheck(checkCmd, []string{filepath.Join(dir, "unknown.xyz")}))
}
