// Package config loads lectern's configuration from a YAML file with
// LECTERN_* environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Config holds all runtime settings.
type Config struct {
	// LibraryDir is where documents and the index database live.
	LibraryDir string `koanf:"library_dir" yaml:"library_dir"`
	// StateDir holds the session file and logs.
	StateDir string `koanf:"state_dir" yaml:"state_dir"`
	// LogFile is the zap sink; stdout belongs to the terminal UI.
	LogFile string `koanf:"log_file" yaml:"log_file"`

	// OpenAIKey enables roadmap generation and chat when set.
	OpenAIKey string `koanf:"openai_key" yaml:"openai_key"`
	// Model is the chat-completion model for both roadmap and chat.
	Model string `koanf:"model" yaml:"model"`
	// ExcerptRunes caps how much document text is sent to the model.
	ExcerptRunes int `koanf:"excerpt_runes" yaml:"excerpt_runes"`

	// Panel geometry defaults, in cells.
	PanelX      int `koanf:"panel_x" yaml:"panel_x"`
	PanelY      int `koanf:"panel_y" yaml:"panel_y"`
	PanelWidth  int `koanf:"panel_width" yaml:"panel_width"`
	PanelHeight int `koanf:"panel_height" yaml:"panel_height"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".lectern")
	return &Config{
		LibraryDir:   filepath.Join(base, "library"),
		StateDir:     base,
		LogFile:      filepath.Join(base, "lectern.log"),
		Model:        "gpt-4o-mini",
		ExcerptRunes: 24000,
		PanelX:       4,
		PanelY:       2,
		PanelWidth:   60,
		PanelHeight:  20,
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (LECTERN_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider("LECTERN_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "LECTERN_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.LibraryDir == "" {
		return fmt.Errorf("library_dir is required")
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir is required")
	}
	if c.ExcerptRunes <= 0 {
		return fmt.Errorf("excerpt_runes must be positive, got %d", c.ExcerptRunes)
	}
	if c.PanelWidth < 20 || c.PanelHeight < 8 {
		return fmt.Errorf("panel size %dx%d is below the 20x8 minimum", c.PanelWidth, c.PanelHeight)
	}
	return nil
}
