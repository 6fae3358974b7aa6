package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/twolodzko/canard/search"
	"gopkg.in/yaml.v3"
)

const (
	Plain = "plain"
	JSON  = "json"
)

type Config struct {
	// Maximal depth of the search.
	Depth int `yaml:"depth"`
	// Output format, plain or json.
	Format string `yaml:"format"`
	// Skip the equivalent queries during search.
	Deduplicate bool `yaml:"deduplicate"`
	// Trace the search on stderr.
	Trace bool `yaml:"trace"`
	// REPL history file, empty disables the history.
	History string `yaml:"history"`
	// Files evaluated before anything else.
	Preload []string `yaml:"preload"`
}

func Default() Config {
	history := ""
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, ".canard_history")
	}
	return Config{
		Depth:   search.DefaultDepth,
		Format:  Plain,
		History: history,
	}
}

// Load the YAML file, the fields missing in the file keep the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Depth < 1 {
		return fmt.Errorf("depth has to be positive, got %d", c.Depth)
	}
	if c.Format != Plain && c.Format != JSON {
		return fmt.Errorf("unknown format '%s'", c.Format)
	}
	return nil
}
