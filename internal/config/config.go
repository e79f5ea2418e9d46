// Package config loads structlink settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Fragment dataset formats.
const (
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Config names the inputs of one asset and how queries are served.
type Config struct {
	Records      string     `hcl:"records,optional"`
	RecordsPath  string     `hcl:"records_path,optional"`
	Associations string     `hcl:"associations,optional"`
	Scene        string     `hcl:"scene,optional"`
	Context      string     `hcl:"context,optional"`
	Fragments    *Fragments `hcl:"fragments,block"`
}

// Fragments locates the fragment dataset.
type Fragments struct {
	Path   string `hcl:"path"`
	Format string `hcl:"format,optional"`
}

// DefaultDir is where structlink looks for its config file.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".agentic-research", "structlink"), nil
}

// DefaultPath is the config file used when none is given.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "structlink.hcl"), nil
}

// Load decodes the config file at path. Files ending in .json use HCL's JSON
// syntax, everything else native HCL. Relative input
// paths in the file are resolved against the file's directory.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	// hclsimple picks the syntax from the name; anything not .json is native HCL.
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != ".hcl" && ext != ".json" {
		name += ".hcl"
	}
	var cfg Config
	if err := hclsimple.Decode(name, src, nil, &cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.resolve(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOptional loads path if it exists and returns an empty Config otherwise.
func LoadOptional(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	return Load(path)
}

// Validate checks values that have a fixed vocabulary.
func (c *Config) Validate() error {
	switch c.Context {
	case "", "main", "worker":
	default:
		return fmt.Errorf("unknown context %q (want main or worker)", c.Context)
	}
	if c.Fragments != nil {
		switch c.Fragments.Format {
		case "", FormatJSON, FormatSQLite:
		default:
			return fmt.Errorf("unknown fragments format %q", c.Fragments.Format)
		}
	}
	return nil
}

// FragmentsFormat returns the dataset format, inferred from the file
// extension when not set.
func (c *Config) FragmentsFormat() string {
	if c.Fragments == nil {
		return ""
	}
	if c.Fragments.Format != "" {
		return c.Fragments.Format
	}
	switch filepath.Ext(c.Fragments.Path) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatJSON
	}
}

func (c *Config) resolve(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Records = abs(c.Records)
	c.Associations = abs(c.Associations)
	c.Scene = abs(c.Scene)
	if c.Fragments != nil {
		c.Fragments.Path = abs(c.Fragments.Path)
	}
}
