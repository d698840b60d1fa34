package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"calterm/internal/calendar"
)

const (
	appDir     = "calterm"
	fileName   = "config.yaml"
	envPrefix  = "CALTERM"
	pathEnvVar = "CALTERM_CONFIG_PATH"
)

// Store manages the runtime configuration for the calendar.
type Store struct {
	path   string
	Config Data
}

// Data represents persisted user preferences. Every field can be overridden
// by a CALTERM_<FIELD> environment variable.
type Data struct {
	Timezone   string `yaml:"timezone" mapstructure:"timezone"`
	Storage    string `yaml:"storage" mapstructure:"storage"`
	DataPath   string `yaml:"data_path" mapstructure:"data_path"`
	LogFile    string `yaml:"log_file" mapstructure:"log_file"`
	LogLevel   string `yaml:"log_level" mapstructure:"log_level"`
	StartMonth string `yaml:"start_month" mapstructure:"start_month"`
}

// Load retrieves the config from the user config directory, or from
// CALTERM_CONFIG_PATH when set, creating defaults if needed.
func Load() (*Store, error) {
	dir := os.Getenv(pathEnvVar)
	if dir == "" {
		resolved, err := resolveDir()
		if err != nil {
			return nil, err
		}
		dir = resolved
	}
	return LoadFrom(dir)
}

// LoadFrom reads dir/config.yaml, writing defaults on first run.
func LoadFrom(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	cfgPath := filepath.Join(dir, fileName)

	if _, err := os.Stat(cfgPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
		if err := writeConfig(cfgPath, defaultConfig()); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetConfigFile(cfgPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	for key, value := range defaultValues() {
		v.SetDefault(key, value)
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Data{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Timezone == "" {
		cfg.Timezone = defaultTimezone()
	}
	if cfg.Storage == "" {
		cfg.Storage = "sqlite"
	}
	cfg.Storage = strings.ToLower(cfg.Storage)

	return &Store{path: cfgPath, Config: cfg}, nil
}

// Save writes the current config values to disk.
func (s *Store) Save() error {
	if s == nil {
		return errors.New("nil config store")
	}
	return writeConfig(s.path, s.Config)
}

// Path returns the config file location.
func (s *Store) Path() string {
	return s.path
}

func resolveDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = os.Getenv("HOME")
		if base == "" {
			return "", fmt.Errorf("cannot resolve config directory: %w", err)
		}
	}
	return filepath.Join(base, appDir), nil
}

func writeConfig(path string, cfg Data) error {
	bytes, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, bytes, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func defaultConfig() Data {
	return Data{
		Timezone: defaultTimezone(),
		Storage:  "sqlite",
		LogLevel: "info",
	}
}

func defaultValues() map[string]string {
	d := defaultConfig()
	return map[string]string{
		"timezone":    d.Timezone,
		"storage":     d.Storage,
		"data_path":   d.DataPath,
		"log_file":    d.LogFile,
		"log_level":   d.LogLevel,
		"start_month": d.StartMonth,
	}
}

func defaultTimezone() string {
	if locName := time.Now().Location().String(); locName != "Local" && locName != "" {
		return locName
	}
	return "UTC"
}

// Location returns the configured timezone Location, defaulting to UTC on error.
func (s *Store) Location() *time.Location {
	if s == nil {
		return time.UTC
	}
	if loc, err := time.LoadLocation(s.Config.Timezone); err == nil {
		return loc
	}
	return time.UTC
}

// DataDir returns the expanded storage directory, or "" for the default.
func (s *Store) DataDir() (string, error) {
	return expand(s.Config.DataPath)
}

// LogPath returns the expanded log file path, or "" when logging is off.
func (s *Store) LogPath() (string, error) {
	return expand(s.Config.LogFile)
}

// StartMonth returns the configured initial month, falling back to the
// month containing now.
func (s *Store) StartMonth(now time.Time) calendar.Month {
	if s != nil && s.Config.StartMonth != "" {
		if m, err := calendar.ParseMonth(s.Config.StartMonth); err == nil {
			return m
		}
	}
	return calendar.MonthOf(now.In(s.Location()))
}

func expand(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return expanded, nil
}
