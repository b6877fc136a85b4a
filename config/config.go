package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"talkboard/board"
	"talkboard/locale"
	"talkboard/render"
	"talkboard/storage"
)

// Config represents the application configuration
type Config struct {
	DefaultText    string  `yaml:"default_text"`
	Language       string  `yaml:"language"`
	Themes         []Theme `yaml:"themes"`
	SizeThresholds []int   `yaml:"size_thresholds"`
	Speech         Speech  `yaml:"speech"`
	Storage        Storage `yaml:"storage"`
}

// Theme is a named background/text color pair.
type Theme struct {
	Label string `yaml:"label"`
	Bg    string `yaml:"bg"`
	Text  string `yaml:"text"`
}

type Speech struct {
	Provider        string        `yaml:"provider"`
	Device          string        `yaml:"device"`
	MaxUtterance    time.Duration `yaml:"max_utterance"`
	TrailingSilence time.Duration `yaml:"trailing_silence"`
	SilenceLevel    float64       `yaml:"silence_level"`
}

type Storage struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

func DefaultThemes() []Theme {
	return []Theme{
		{Label: "Inverted", Bg: "#000000", Text: "#ffffff"},
		{Label: "Modern", Bg: "#ffffff", Text: "#000000"},
		{Label: "Terminal", Bg: "#000000", Text: "#00ff00"},
		{Label: "High Vis", Bg: "#000000", Text: "#ffff00"},
		{Label: "Indigo", Bg: "#1e1b4b", Text: "#e0e7ff"},
		{Label: "Alert", Bg: "#450a0a", Text: "#fecaca"},
		{Label: "Forest", Bg: "#064e3b", Text: "#d1fae5"},
	}
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the config file at path. An empty path means TALKBOARD_CONFIG,
// then the user's config directory; a missing file there yields defaults.
// A path given explicitly must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		if env := os.Getenv("TALKBOARD_CONFIG"); env != "" {
			path, explicit = env, true
		}
	}
	if !explicit {
		p, err := getConfigPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Fill in any missing values with defaults
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &config, nil
}

// Save writes the config to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Path returns where Load looks when no path is given.
func Path() (string, error) {
	if env := os.Getenv("TALKBOARD_CONFIG"); env != "" {
		return env, nil
	}
	return getConfigPath()
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "talkboard", "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "talkboard", "config.yaml"), nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.DefaultText == "" {
		c.DefaultText = board.DefaultText
	}
	if c.Language == "" {
		c.Language = string(locale.English)
	}
	if len(c.Themes) == 0 {
		c.Themes = DefaultThemes()
	}
	if len(c.SizeThresholds) == 0 {
		c.SizeThresholds = append([]int(nil), render.DefaultThresholds[:]...)
	}
	if c.Speech.MaxUtterance <= 0 {
		c.Speech.MaxUtterance = 15 * time.Second
	}
	if c.Speech.TrailingSilence <= 0 {
		c.Speech.TrailingSilence = 1200 * time.Millisecond
	}
	if c.Speech.SilenceLevel <= 0 {
		c.Speech.SilenceLevel = 0.02
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = storage.BackendFile
	}
}

// Validate reports the first field that cannot be used.
func (c *Config) Validate() error {
	if _, ok := locale.Parse(c.Language); !ok {
		return fmt.Errorf("language %q: %w", c.Language, board.ErrUnknownLanguage)
	}
	for i, th := range c.Themes {
		if th.Label == "" {
			return fmt.Errorf("themes[%d]: missing label", i)
		}
		if _, err := board.ParseColor(th.Bg); err != nil {
			return fmt.Errorf("themes[%d] (%s) bg: %w", i, th.Label, err)
		}
		if _, err := board.ParseColor(th.Text); err != nil {
			return fmt.Errorf("themes[%d] (%s) text: %w", i, th.Label, err)
		}
	}
	if _, err := c.Thresholds(); err != nil {
		return err
	}
	switch c.Speech.Provider {
	case "", "groq", "openai":
	default:
		return fmt.Errorf("speech.provider %q: want groq or openai", c.Speech.Provider)
	}
	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	default:
		return fmt.Errorf("storage.backend %q: want file, sqlite or memory", c.Storage.Backend)
	}
	return nil
}

// Lang returns the configured default language.
func (c *Config) Lang() locale.Lang {
	l, ok := locale.Parse(c.Language)
	if !ok {
		return locale.English
	}
	return l
}

// Thresholds converts size_thresholds into render cut points.
func (c *Config) Thresholds() (render.Thresholds, error) {
	var th render.Thresholds
	if len(c.SizeThresholds) != len(th) {
		return th, fmt.Errorf("size_thresholds: want %d values, got %d", len(th), len(c.SizeThresholds))
	}
	copy(th[:], c.SizeThresholds)
	if !th.Valid() {
		return th, fmt.Errorf("size_thresholds %v: must be positive and ascending", c.SizeThresholds)
	}
	return th, nil
}
