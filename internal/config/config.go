// Package config loads pdftools settings from defaults, a YAML file and
// PDFTOOLS_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix  = "PDFTOOLS"
	ConfigName = "pdftools"
)

// ServerConfig holds HTTP settings
type ServerConfig struct {
	// Port is the TCP port for `pdftools serve`
	Port string `mapstructure:"port" yaml:"port"`

	// MaxUploadBytes caps a single uploaded part
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// ProcessingConfig bounds the simulated processing delay
type ProcessingConfig struct {
	MinDelay time.Duration `mapstructure:"min_delay" yaml:"min_delay"`
	MaxDelay time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
}

// SessionsConfig controls expiry of idle server sessions
type SessionsConfig struct {
	TTL           time.Duration `mapstructure:"ttl" yaml:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// HistoryConfig locates the operation history database
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// LogConfig selects the log level and an optional log file
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Processing ProcessingConfig `mapstructure:"processing" yaml:"processing"`
	Sessions   SessionsConfig   `mapstructure:"sessions" yaml:"sessions"`
	History    HistoryConfig    `mapstructure:"history" yaml:"history"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           "8888",
			MaxUploadBytes: 100 * 1024 * 1024,
		},
		Processing: ProcessingConfig{
			MinDelay: 2 * time.Second,
			MaxDelay: 4 * time.Second,
		},
		Sessions: SessionsConfig{
			TTL:           time.Hour,
			SweepInterval: time.Minute,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "pdftools.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers every key with viper so environment overrides
// are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.max_upload_bytes", d.Server.MaxUploadBytes)
	v.SetDefault("processing.min_delay", d.Processing.MinDelay)
	v.SetDefault("processing.max_delay", d.Processing.MaxDelay)
	v.SetDefault("sessions.ttl", d.Sessions.TTL)
	v.SetDefault("sessions.sweep_interval", d.Sessions.SweepInterval)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// Load reads configuration into v. cfgFile overrides the search path
// (./pdftools.yaml, then ~/.config/pdftools/pdftools.yaml). A missing
// config file is not an error; a malformed one is.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Processing.MinDelay < 0 || c.Processing.MaxDelay < 0 {
		errs = append(errs, errors.New("processing delays must not be negative"))
	}
	if c.Processing.MinDelay > c.Processing.MaxDelay {
		errs = append(errs, fmt.Errorf("processing.min_delay (%s) exceeds processing.max_delay (%s)", c.Processing.MinDelay, c.Processing.MaxDelay))
	}
	if c.Sessions.TTL < 0 || c.Sessions.SweepInterval < 0 {
		errs = append(errs, errors.New("session durations must not be negative"))
	}
	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, errors.New("history.path is required when history is enabled"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// WriteDefault writes the default configuration as YAML. Existing files are
// not overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	d := Default()
	data, err := yaml.Marshal(&d)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
