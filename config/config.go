// Package config loads the optional tules config file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tules/tules/pkg/paths"
)

// Config holds user preferences from ~/.config/tules/config.yml.
// Every field is optional; flags and environment take precedence.
type Config struct {
	// Provider is the default backend ("claude" or "gemini").
	Provider string `yaml:"provider,omitempty"`
	// SandboxImage overrides the per-provider image tag.
	SandboxImage string `yaml:"sandbox_image,omitempty"`
	// Sandbox disables container isolation when set to false.
	Sandbox *bool `yaml:"sandbox,omitempty"`
	// LogLines is the default line count for `tules logs`.
	LogLines int `yaml:"log_lines,omitempty"`
	// BranchIsolation creates a git branch per launched job.
	BranchIsolation *bool `yaml:"branch_isolation,omitempty"`
}

// Load reads the config file. A missing file yields zero-value defaults.
func Load() (*Config, error) {
	return LoadFrom(paths.ConfigFile())
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// SandboxEnabled reports whether sandboxing is on (default true).
func (c *Config) SandboxEnabled() bool {
	return c.Sandbox == nil || *c.Sandbox
}

// BranchIsolationEnabled reports whether per-job git branches are on
// (default true, matching the launch flow).
func (c *Config) BranchIsolationEnabled() bool {
	return c.BranchIsolation == nil || *c.BranchIsolation
}

// DefaultLogLines returns the configured log line count or 50.
func (c *Config) DefaultLogLines() int {
	if c.LogLines > 0 {
		return c.LogLines
	}
	return 50
}
