// Package config implements the host application's on-disk
// configuration: where the device lives, how long to wait for it, and
// how to log. This is ambient client configuration, not the on-device
// signal-chain configuration — see internal/signalchain for that.
//
// Grounded on the teacher's internal/config/config.go: a YAML struct
// loaded with LoadClientConfig, defaulted, then validated, wrapping
// load/parse failures with internal/errors-style context.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sciencecorp/synapse-cpp/internal/status"
)

// DeviceConfig describes how to reach the device.
type DeviceConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	TimeoutMs    int    `yaml:"timeout_ms"`
	UseMulticast bool   `yaml:"use_multicast"`
	MulticastTTL int    `yaml:"multicast_ttl,omitempty"`
}

// LoggingConfig controls the ambient logger.
type LoggingConfig struct {
	Level   string `yaml:"level"` // "silent", "error", "info", "verbose", "debug"
	LogFile string `yaml:"log_file,omitempty"`
}

// Config is the client's top-level configuration file shape.
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Host:      "127.0.0.1",
			Port:      6480,
			TimeoutMs: 5000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Load reads a configuration file at path, applying defaults and
// validating the result. If the file is missing and autoCreate is
// true, a default config is written and then loaded.
func Load(path string, autoCreate bool) (*Config, status.Status) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, status.FromError(fmt.Errorf("read config file %s: %w", path, err))
		}
		if !autoCreate {
			return nil, status.New(status.NotFound, "config file not found: %s", path).WithHint("load with autoCreate set to generate a default config")
		}
		if err := WriteDefault(path); err != nil {
			return nil, status.FromError(fmt.Errorf("create default config %s: %w", path, err))
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, status.FromError(fmt.Errorf("read created config file %s: %w", path, err))
		}
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, status.New(status.InvalidArgument, "parse config %s: %v", path, err)
	}

	applyDefaults(cfg)
	if st := Validate(cfg); !st.Ok() {
		return nil, st
	}
	return cfg, status.OKStatus()
}

func applyDefaults(cfg *Config) {
	if cfg.Device.Port == 0 {
		cfg.Device.Port = 6480
	}
	if cfg.Device.TimeoutMs == 0 {
		cfg.Device.TimeoutMs = 5000
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate checks invariants that applyDefaults cannot repair.
func Validate(cfg *Config) status.Status {
	if cfg.Device.Host == "" {
		return status.New(status.InvalidArgument, "device.host must not be empty")
	}
	if cfg.Device.Port <= 0 || cfg.Device.Port > 65535 {
		return status.New(status.InvalidArgument, "device.port %d out of range", cfg.Device.Port)
	}
	if cfg.Device.TimeoutMs <= 0 {
		return status.New(status.InvalidArgument, "device.timeout_ms must be positive, got %d", cfg.Device.TimeoutMs)
	}
	switch cfg.Logging.Level {
	case "silent", "error", "info", "verbose", "debug":
	default:
		return status.New(status.InvalidArgument, "logging.level %q is not recognized", cfg.Logging.Level)
	}
	return status.OKStatus()
}
