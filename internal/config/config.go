package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matheuskafuri/headlines/internal/source"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const (
	EngineChrome = "chrome"
	EngineHTTP   = "http"

	// MaxCap bounds per-source cap overrides.
	MaxCap = 50
)

type Source struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
	Cap     int    `yaml:"cap,omitempty"`
}

type Config struct {
	Engine           string   `yaml:"engine"`
	PageTimeout      string   `yaml:"page_timeout"`
	MinLoadInterval  string   `yaml:"min_load_interval"`
	Headless         bool     `yaml:"headless"`
	ChromePath       string   `yaml:"chrome_path"`
	UserAgent        string   `yaml:"user_agent"`
	HistoryRetention string   `yaml:"history_retention"`
	LogLevel         string   `yaml:"log_level"`
	Sources          []Source `yaml:"sources"`
}

// PageTimeoutDuration bounds a single page load. Defaults to 10s.
func (c *Config) PageTimeoutDuration() time.Duration {
	d, err := ParseDuration(c.PageTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// LoadInterval is the minimum spacing between page loads. Zero disables
// throttling.
func (c *Config) LoadInterval() time.Duration {
	if c.MinLoadInterval == "" {
		return time.Second
	}
	d, err := ParseDuration(c.MinLoadInterval)
	if err != nil || d < 0 {
		return time.Second
	}
	return d
}

func (c *Config) RetentionDuration() time.Duration {
	d, err := ParseDuration(c.HistoryRetention)
	if err != nil || d <= 0 {
		return 30 * 24 * time.Hour
	}
	return d
}

// Level is the configured log level, "info" when unset.
func (c *Config) Level() string {
	if c.LogLevel == "" {
		return "info"
	}
	return strings.ToLower(c.LogLevel)
}

// EnabledSources returns the enabled categories in menu order. Categories
// missing from the config are enabled.
func (c *Config) EnabledSources() []source.Source {
	disabled := make(map[source.Source]bool)
	for _, s := range c.Sources {
		if src, err := source.Parse(s.Name); err == nil && !s.Enabled {
			disabled[src] = true
		}
	}
	var out []source.Source
	for _, src := range source.All() {
		if !disabled[src] {
			out = append(out, src)
		}
	}
	return out
}

// Limits returns the cap overrides keyed by source.
func (c *Config) Limits() map[source.Source]int {
	out := make(map[source.Source]int)
	for _, s := range c.Sources {
		if s.Cap <= 0 {
			continue
		}
		if src, err := source.Parse(s.Name); err == nil {
			out[src] = s.Cap
		}
	}
	return out
}

// ParseDuration accepts Go durations plus a whole-day "Nd" form.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "headlines", "config.yaml")
}

func HistoryPath() string {
	return filepath.Join(xdg.StateHome, "headlines", "history.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, "headlines", "headlines.log")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (DefaultConfigPath when empty), layered
// over the embedded defaults, then applies a .env file from the working
// directory and HEADLINES_* environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Non-fatal: embedded defaults still apply
		_ = writeDefaults(path)
		applyEnv(defaults)
		if err := validate(defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}

	cfg := *defaults
	cfg.Sources = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	mergeDefaultSources(&cfg, defaults)
	applyEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeDefaultSources appends default categories the user config does not
// mention.
func mergeDefaultSources(cfg, defaults *Config) {
	seen := make(map[string]bool, len(cfg.Sources))
	for _, s := range cfg.Sources {
		seen[strings.ToLower(strings.TrimSpace(s.Name))] = true
	}
	for _, s := range defaults.Sources {
		if !seen[s.Name] {
			cfg.Sources = append(cfg.Sources, s)
		}
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HEADLINES_ENGINE"); v != "" {
		cfg.Engine = v
	}
	if v := os.Getenv("HEADLINES_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("HEADLINES_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	switch cfg.Engine {
	case EngineChrome, EngineHTTP:
	default:
		return fmt.Errorf("unknown engine %q (valid: %s, %s)", cfg.Engine, EngineChrome, EngineHTTP)
	}

	for field, v := range map[string]string{
		"page_timeout":      cfg.PageTimeout,
		"min_load_interval": cfg.MinLoadInterval,
		"history_retention": cfg.HistoryRetention,
	} {
		if v == "" {
			continue
		}
		d, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		if d < 0 {
			return fmt.Errorf("%s: must not be negative", field)
		}
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q (valid: debug, info, warn, error)", cfg.LogLevel)
	}

	seen := make(map[source.Source]bool)
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		src, err := source.Parse(s.Name)
		if err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
		if seen[src] {
			return fmt.Errorf("source %q: listed twice", s.Name)
		}
		seen[src] = true
		if s.Cap < 0 || s.Cap > MaxCap {
			return fmt.Errorf("source %q: cap must be between 1 and %d (0 for the default), got %d", s.Name, MaxCap, s.Cap)
		}
	}
	return nil
}
