// Package config loads and saves releve.yaml, the per-data-directory
// configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file at the data-directory root.
const FileName = "releve.yaml"

// Config represents the top-level releve.yaml configuration.
type Config struct {
	Bank   BankConfig   `yaml:"bank"`
	Parser ParserConfig `yaml:"parser"`
	Import ImportConfig `yaml:"import"`
	Git    GitConfig    `yaml:"git"`
}

// BankConfig sets the default bank identifiers for imports.
type BankConfig struct {
	Code string `yaml:"code"` // e.g. "SG"
}

// ParserConfig points at the external statement-parsing service.
type ParserConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ImportConfig tunes import behavior.
type ImportConfig struct {
	PreviewLimit int `yaml:"preview_limit"`
}

// GitConfig controls git integration for the data directory.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a releve.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new data
// directory.
func Default() *Config {
	return &Config{
		Bank: BankConfig{
			Code: "SG",
		},
		Parser: ParserConfig{
			URL:            "http://127.0.0.1:8765",
			TimeoutSeconds: 30,
		},
		Import: ImportConfig{
			PreviewLimit: 10,
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Releve",
			AuthorEmail: "releve@localhost",
		},
	}
}
