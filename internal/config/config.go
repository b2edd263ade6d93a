// Package config loads CLI configuration from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/alnah/go-pdfembed/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
)

// Config holds all configuration for an export run.
// CLI flags override any value set here.
type Config struct {
	Vault  VaultConfig  `yaml:"vault"`
	Output OutputConfig `yaml:"output"`
	Render RenderConfig `yaml:"render"`
	Export ExportConfig `yaml:"export"`
}

// VaultConfig locates the document vault.
type VaultConfig struct {
	Dir string `yaml:"dir"` // vault root directory (empty = directory of the input file)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // default output directory (empty = same as source)
}

// RenderConfig defines page rasterization options.
type RenderConfig struct {
	Scale       float64 `yaml:"scale"`       // linear render multiplier (default 1.5)
	ImageType   string  `yaml:"imageType"`   // "jpeg" or "png" (default "jpeg")
	Concurrency int     `yaml:"concurrency"` // max simultaneous page renders (default 3)
}

// ExportConfig defines pipeline options.
type ExportConfig struct {
	Timeout  string `yaml:"timeout"`  // browser render timeout, e.g. "2m"
	Workers  int    `yaml:"workers"`  // browser pool size (0 = auto)
	HTMLOnly bool   `yaml:"htmlOnly"` // skip PDF generation
}

// DefaultConfig returns a config with zero values; the library applies its
// own defaults for unset render options.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return cfg, nil
}
