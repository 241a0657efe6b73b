package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the bundling configuration. Roots are searched in list order,
// first match wins; Entry is a module name resolved against the roots; an
// empty Output means standard output.
type Config struct {
	Roots  []string `yaml:"roots"`
	Entry  string   `yaml:"entry"`
	Output string   `yaml:"output"`
}

// Default returns the configuration used when no file and no flags are given.
func Default() *Config {
	return &Config{
		Roots: []string{"src"},
		Entry: "main",
	}
}

// Load reads a yaml configuration file. Fields absent from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(cfg.Roots) == 0 {
		cfg.Roots = Default().Roots
	}
	if cfg.Entry == "" {
		cfg.Entry = Default().Entry
	}
	return cfg, nil
}
