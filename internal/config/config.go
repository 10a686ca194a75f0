package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a planner project.
type Config struct {
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Notify   NotifyConfig   `yaml:"notify"`
	Server   ServerConfig   `yaml:"server"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"` // relative paths resolve against the project directory
}

// LogConfig sets the log level. LOG_LEVEL wins when set.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// NotifyConfig selects where notifications go.
type NotifyConfig struct {
	Mode     string `yaml:"mode"`                // "log", "redis" or "none"
	RedisURL string `yaml:"redis_url,omitempty"` // redis://host:port/db or host:port
	Channel  string `yaml:"channel,omitempty"`   // pub/sub channel for redis mode
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_sec,omitempty"` // 0 = default 10
}

// ShutdownSeconds returns the effective graceful shutdown timeout.
func (s ServerConfig) ShutdownSeconds() int {
	if s.ShutdownTimeout > 0 {
		return s.ShutdownTimeout
	}
	return 10
}

// Load reads and parses the config file at the given path, then applies
// PLANNER_* environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to the given path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns a starter config.
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Database: DatabaseConfig{Path: "planner.db"},
		Log:      LogConfig{Level: "info"},
		Notify:   NotifyConfig{Mode: "log", Channel: "planner:notifications"},
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Config) applyEnv() error {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Database.Path, "PLANNER_DB_PATH")
	set(&c.Log.Level, "PLANNER_LOG_LEVEL")
	set(&c.Notify.Mode, "PLANNER_NOTIFY_MODE")
	set(&c.Notify.RedisURL, "PLANNER_REDIS_URL")
	set(&c.Notify.Channel, "PLANNER_NOTIFY_CHANNEL")
	set(&c.Server.Addr, "PLANNER_ADDR")
	if v := os.Getenv("PLANNER_SHUTDOWN_TIMEOUT_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PLANNER_SHUTDOWN_TIMEOUT_SEC: %w", err)
		}
		c.Server.ShutdownTimeout = n
	}
	return nil
}

func (c *Config) validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database: path is required")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Notify.Mode {
	case "", "log", "none":
	case "redis":
		if c.Notify.RedisURL == "" {
			return fmt.Errorf("notify: redis_url is required for redis mode")
		}
		if c.Notify.Channel == "" {
			return fmt.Errorf("notify: channel is required for redis mode")
		}
	default:
		return fmt.Errorf("notify: mode must be 'log', 'redis' or 'none', got %q", c.Notify.Mode)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server: shutdown_timeout_sec cannot be negative")
	}
	return nil
}
