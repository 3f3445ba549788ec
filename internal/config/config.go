package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const MemoryPath = ":memory:"

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Feed     FeedConfig     `mapstructure:"feed"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Backend string        `mapstructure:"backend"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type FeedConfig struct {
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	MaxEntryAge       time.Duration `mapstructure:"max_entry_age"`
	SyncConcurrency   int           `mapstructure:"sync_concurrency"`
	MaxBodyBytes      int64         `mapstructure:"max_body_bytes"`
	AllowPrivateHosts bool          `mapstructure:"allow_private_hosts"`
}

type UIConfig struct {
	Colors       UIColors      `mapstructure:"colors"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type MediaConfig struct {
	DefaultOpener string `mapstructure:"default_opener"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".pequod")

	return &Config{
		Database: DatabaseConfig{
			Path:    filepath.Join(dataDir, "pequod.db"),
			Backend: "bolt",
			Timeout: 1 * time.Second,
		},
		Feed: FeedConfig{
			HTTPTimeout:       30 * time.Second,
			UserAgent:         "pequod/1.0 (https://github.com/pders01/pequod)",
			MaxEntryAge:       5 * 24 * time.Hour,
			SyncConcurrency:   4,
			MaxBodyBytes:      10 << 20,
			AllowPrivateHosts: true,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			TickInterval: 100 * time.Millisecond,
		},
		Media: MediaConfig{
			DefaultOpener: getDefaultOpener(),
		},
		Log: LogConfig{
			Level: "off",
			File:  filepath.Join(dataDir, "pequod.log"),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// Load reads the config file at configPath, or the first config.toml
// found in ~/.config/pequod and the working directory. A missing file is
// not an error. PEQUOD_* environment variables override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range settings(defaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultConfigPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PEQUOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// ExpandPath expands a leading ~ and makes path absolute. The in-memory
// database path is returned unchanged.
func ExpandPath(path string) string {
	if path == "" || path == MemoryPath {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Log.File = ExpandPath(cfg.Log.File)
}

// settings flattens the config into dotted viper keys. Durations are
// written as strings so the TOML stays readable.
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"database.path":            cfg.Database.Path,
		"database.backend":         cfg.Database.Backend,
		"database.timeout":         cfg.Database.Timeout.String(),
		"feed.http_timeout":        cfg.Feed.HTTPTimeout.String(),
		"feed.user_agent":          cfg.Feed.UserAgent,
		"feed.max_entry_age":       cfg.Feed.MaxEntryAge.String(),
		"feed.sync_concurrency":    cfg.Feed.SyncConcurrency,
		"feed.max_body_bytes":      cfg.Feed.MaxBodyBytes,
		"feed.allow_private_hosts": cfg.Feed.AllowPrivateHosts,
		"ui.colors.primary":        cfg.UI.Colors.Primary,
		"ui.colors.secondary":      cfg.UI.Colors.Secondary,
		"ui.colors.accent":         cfg.UI.Colors.Accent,
		"ui.colors.text":           cfg.UI.Colors.Text,
		"ui.colors.muted":          cfg.UI.Colors.Muted,
		"ui.colors.error":          cfg.UI.Colors.Error,
		"ui.colors.success":        cfg.UI.Colors.Success,
		"ui.tick_interval":         cfg.UI.TickInterval.String(),
		"media.default_opener":     cfg.Media.DefaultOpener,
		"log.level":                cfg.Log.Level,
		"log.file":                 cfg.Log.File,
	}
}

func Save(config *Config, path string) error {
	v := viper.New()
	for key, value := range settings(config) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

// DefaultConfigPath is where config generate writes and Load looks first.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "pequod", "config.toml")
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}

// Encode renders the config as a TOML document with one table per section.
func Encode(cfg *Config) ([]byte, error) {
	doc := map[string]any{}
	for key, value := range settings(cfg) {
		insert(doc, strings.Split(key, "."), value)
	}
	out, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return out, nil
}

func insert(doc map[string]any, path []string, value any) {
	for _, part := range path[:len(path)-1] {
		next, ok := doc[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			doc[part] = next
		}
		doc = next
	}
	doc[path[len(path)-1]] = value
}
