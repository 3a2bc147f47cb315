// Package config loads the optional recast.toml project file. The file is
// discovered by walking up from the starting directory, so a nested source
// tree picks up the project-level defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the project configuration filename searched for.
const FileName = "recast.toml"

// Config carries project-level defaults for the CLI. Flags always win over
// file values.
type Config struct {
	Translate TranslateConfig `toml:"translate"`
	Cache     CacheConfig     `toml:"cache"`
}

type TranslateConfig struct {
	// Target is the default target language when --to is omitted.
	Target string `toml:"target"`
	// Concurrency bounds the worker count for directory translation.
	// Zero means one worker per CPU.
	Concurrency int `toml:"concurrency"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Find walks up from startDir looking for recast.toml. Returns the file path
// and whether one was found.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and parses recast.toml starting from startDir. Returns a zero
// Config and ok=false when no file exists.
func Load(startDir string) (*Config, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return &Config{}, false, err
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", path, err)
	}
	// Cache paths are relative to the config file, not the working directory.
	if cfg.Cache.Path != "" && !filepath.IsAbs(cfg.Cache.Path) {
		cfg.Cache.Path = filepath.Join(filepath.Dir(path), cfg.Cache.Path)
	}
	return &cfg, true, nil
}
