// Package config loads and validates the optional .texkit YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	units "github.com/docker/go-units"
	"gopkg.in/yaml.v3"
)

// Default values for runner and toolchain configuration.
const (
	DefaultTimeout   = 5 * time.Minute
	DefaultMaxOutput = 1 << 20 // 1 MB
	DefaultEngine    = "texi2dvi"
)

// Config holds the parsed .texkit configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int           `yaml:"version"`
	RawTimeout   string        `yaml:"timeout"`    // e.g. "5m", "30s"
	RawMaxOutput string        `yaml:"max_output"` // human-readable size, e.g. "4MB"
	RawEngine    string        `yaml:"engine"`     // binary name or absolute path
	TexmfRoot    string        `yaml:"texmf_root"` // texmf tree root; discovered via R when empty
	ScriptsDir   string        `yaml:"scripts_dir"`
	Compile      CompileConfig `yaml:"compile"`
}

// CompileConfig controls how the compile invocation is built.
type CompileConfig struct {
	Args []string `yaml:"args"` // extra flags appended after --pdf --quiet
}

// Timeout returns the configured timeout or the default.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return DefaultTimeout
}

// MaxOutputBytes returns the configured max captured output size or the
// default. The value is parsed as a human-readable size ("512KB", "4MB",
// "1048576").
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput != "" {
		n, err := units.RAMInBytes(c.RawMaxOutput)
		if err == nil && n > 0 {
			return int(n)
		}
	}
	return DefaultMaxOutput
}

// Engine returns the configured toolchain binary name or path, or the default.
func (c *Config) Engine() string {
	if c.RawEngine != "" {
		return c.RawEngine
	}
	return DefaultEngine
}

// LoadResult holds the parsed config and the directory it was loaded from.
type LoadResult struct {
	Config *Config
	Root   string // directory containing .texkit; falls back to workspace
}

// Load reads the .texkit file closest to workspace. The file is discovered
// by walking upward from workspace. If no .texkit file exists, a default
// Config is returned with Root set to workspace.
func Load(workspace string) (*LoadResult, error) {
	root, err := findConfigRoot(workspace)
	if err != nil {
		// No .texkit found anywhere above workspace.
		return &LoadResult{Config: &Config{}, Root: workspace}, nil
	}

	path := filepath.Join(root, ".texkit")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading .texkit: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing .texkit: %w", err)
	}
	return &LoadResult{Config: cfg, Root: root}, nil
}

// findConfigRoot walks upward from dir looking for a directory containing .texkit.
func findConfigRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".texkit")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf(".texkit not found")
		}
		dir = parent
	}
}
