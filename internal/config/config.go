// Package config provides configuration loading and defaults for the NUT
// UDP bridge.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ReceiverConfig identifies the UDP destination for outbound records.
type ReceiverConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// NUTConfig holds the status-source settings.
type NUTConfig struct {
	// Target is the NUT identifier passed to upsc, e.g. "myups@192.168.1.20".
	Target string `yaml:"target"`
	// TimeoutSec bounds each upsc invocation.
	TimeoutSec int `yaml:"timeout_sec"`
	// SampleFile, when non-empty, switches the bridge to reading a captured
	// upsc listing from this path instead of invoking upsc.
	SampleFile string `yaml:"sample_file"`
}

// PollConfig controls cycle timing.
type PollConfig struct {
	// OnlineIntervalSec is the sleep between polls while the UPS is Online.
	// Any other condition polls every 5 seconds regardless of this value.
	OnlineIntervalSec int `yaml:"online_interval_sec"`
}

// DebounceConfig controls replace-battery flag filtering.
type DebounceConfig struct {
	// ReplaceBatteryCycles is how many consecutive polls the RB flag must
	// persist before it is honored.
	ReplaceBatteryCycles int `yaml:"replace_battery_cycles"`
	// IgnoreDuringSelfTest discounts the RB flag entirely while a battery
	// self-test is running.
	IgnoreDuringSelfTest bool `yaml:"ignore_during_self_test"`
}

// LogConfig controls log verbosity and the rotating log file target.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config is the top-level configuration structure for the bridge.
type Config struct {
	Receiver ReceiverConfig `yaml:"receiver"`
	NUT      NUTConfig      `yaml:"nut"`
	Poll     PollConfig     `yaml:"poll"`
	Debounce DebounceConfig `yaml:"debounce"`
	// HostnameOverride replaces os.Hostname in outbound records when set.
	HostnameOverride string    `yaml:"hostname_override"`
	Log              LogConfig `yaml:"log"`
}

// DefaultConfig returns a new Config populated with the documented default
// values. Each call returns a distinct instance.
func DefaultConfig() *Config {
	return &Config{
		Receiver: ReceiverConfig{
			Host: "127.0.0.1",
			Port: 9999,
		},
		NUT: NUTConfig{
			Target:     "ups@localhost",
			TimeoutSec: 3,
		},
		Poll: PollConfig{
			OnlineIntervalSec: 10,
		},
		Debounce: DebounceConfig{
			ReplaceBatteryCycles: 12,
			IgnoreDuringSelfTest: true,
		},
		Log: LogConfig{
			Level: "info",
			File:  "nut-udp-bridge.log",
		},
	}
}

// LoadConfig reads and parses a YAML configuration file from the given path.
// Values absent from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// LoadOrCreate reads the config at path, writing a fresh file with defaults
// (and returning those defaults) if none exists yet. created reports
// whether a new file was written.
func LoadOrCreate(path string) (cfg *Config, created bool, err error) {
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		cfg = DefaultConfig()
		data, marshalErr := yaml.Marshal(cfg)
		if marshalErr != nil {
			return nil, false, fmt.Errorf("failed to marshal default config: %w", marshalErr)
		}
		if writeErr := os.WriteFile(path, data, 0o644); writeErr != nil {
			return nil, false, fmt.Errorf("failed to write default config: %w", writeErr)
		}
		return cfg, true, nil
	}

	cfg, err = LoadConfig(path)
	if err != nil {
		return nil, false, err
	}
	return cfg, false, nil
}

// ApplyEnvOverrides updates cfg in place with values from environment
// variables. Recognized variables:
//   - NUT_BRIDGE_RECEIVER_HOST overrides cfg.Receiver.Host
//   - NUT_BRIDGE_RECEIVER_PORT overrides cfg.Receiver.Port
//   - NUT_BRIDGE_TARGET overrides cfg.NUT.Target
func ApplyEnvOverrides(cfg *Config) {
	if host := os.Getenv("NUT_BRIDGE_RECEIVER_HOST"); host != "" {
		cfg.Receiver.Host = host
	}
	if port := os.Getenv("NUT_BRIDGE_RECEIVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Receiver.Port = p
		}
	}
	if target := os.Getenv("NUT_BRIDGE_TARGET"); target != "" {
		cfg.NUT.Target = target
	}
}

// Normalize clamps out-of-range values to safe minimums: the online poll
// interval and the upsc timeout must each be at least 1 second, and the
// debounce threshold at least 1 cycle.
func Normalize(cfg *Config) {
	if cfg.Poll.OnlineIntervalSec < 1 {
		cfg.Poll.OnlineIntervalSec = 1
	}
	if cfg.NUT.TimeoutSec < 1 {
		cfg.NUT.TimeoutSec = 1
	}
	if cfg.Debounce.ReplaceBatteryCycles < 1 {
		cfg.Debounce.ReplaceBatteryCycles = 1
	}
}

// Hostname resolves the host identity for outbound records: the override
// when configured, otherwise os.Hostname, falling back to "unknown-host"
// when even that fails.
func (c *Config) Hostname() string {
	if c.HostnameOverride != "" {
		return c.HostnameOverride
	}
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "unknown-host"
	}
	return name
}
