package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMaxUploadBytes is the upload ceiling applied when no config overrides it.
const DefaultMaxUploadBytes = 40 * 1024 * 1024

// MinBodyHeadroomBytes is how far the transport body limit must sit above the
// upload ceiling to leave room for multipart framing and the options field.
const MinBodyHeadroomBytes = 64 * 1024

// Config is the full service configuration. Only PORT is read from the
// environment directly; everything else comes from the optional YAML file.
type Config struct {
	Server struct {
		Host            string        `yaml:"host"`
		Port            string        `yaml:"port"`
		Prefork         bool          `yaml:"prefork"`
		BodyLimitBytes  int           `yaml:"body_limit_bytes"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		// CORSAllowOrigins is a comma separated origin list, "*" for any.
		CORSAllowOrigins string `yaml:"cors_allow_origins"`
	} `yaml:"server"`

	Limits struct {
		MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	} `yaml:"limits"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`

	Tracer TracerConfig `yaml:"tracer"`
}

// TracerConfig controls how the vtracer binary is invoked.
type TracerConfig struct {
	BinaryPath     string        `yaml:"binary_path"`
	ScratchDir     string        `yaml:"scratch_dir"`
	NormalizeInput bool          `yaml:"normalize_input"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Addr returns the host:port pair the server listens on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = "8080"
	cfg.Server.BodyLimitBytes = 48 * 1024 * 1024
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Server.CORSAllowOrigins = "*"
	cfg.Limits.MaxUploadBytes = DefaultMaxUploadBytes
	cfg.Logger.Level = "info"
	cfg.Logger.MaxSizeMB = 10
	cfg.Logger.MaxBackups = 3
	cfg.Logger.MaxAgeDays = 7
	cfg.Tracer.BinaryPath = "vtracer"
	cfg.Tracer.NormalizeInput = true
	return cfg
}

// Load reads the config file named by CONFIG_PATH, or the defaults when it is
// unset, and applies the PORT override.
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		cfg := Default()
		applyEnv(&cfg)
		validate(cfg)
		return cfg
	}
	return LoadFrom(path)
}

// LoadFrom reads the YAML file at path on top of the defaults. It panics when
// the file cannot be read or holds invalid values.
func LoadFrom(path string) Config {
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		panic(fmt.Sprintf("config: parse %s: %v", path, err))
	}

	applyEnv(&cfg)
	validate(cfg)
	return cfg
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
}

func validate(cfg Config) {
	port, err := strconv.Atoi(cfg.Server.Port)
	if err != nil || port < 0 || port > 65535 {
		panic(fmt.Sprintf("config: invalid server port %q", cfg.Server.Port))
	}
	if cfg.Limits.MaxUploadBytes <= 0 {
		panic("config: limits.max_upload_bytes must be positive")
	}
	if int64(cfg.Server.BodyLimitBytes) < cfg.Limits.MaxUploadBytes+MinBodyHeadroomBytes {
		panic(fmt.Sprintf("config: server.body_limit_bytes must exceed limits.max_upload_bytes by at least %d bytes",
			MinBodyHeadroomBytes))
	}
	if cfg.Server.ShutdownTimeout < 0 {
		panic("config: server.shutdown_timeout must not be negative")
	}
	if cfg.Tracer.BinaryPath == "" {
		panic("config: tracer.binary_path is empty")
	}
	if cfg.Tracer.Timeout < 0 {
		panic("config: tracer.timeout must not be negative")
	}
}
