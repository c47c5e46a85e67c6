// Package config handles YAML config file loading for flowpilot run.
package config

import (
	"fmt"
	"time"
)

// Config represents a flowpilot.yaml configuration file. All values are
// optional and act as defaults for flowpilot run flags. CLI flags always
// override config values.
type Config struct {
	Remote    RemoteConfig   `yaml:"remote"`
	Algorithm string         `yaml:"algorithm"`
	Interval  Duration       `yaml:"interval"`
	FlowID    *int           `yaml:"flow_id,omitempty"`
	PerfLog   string         `yaml:"perf_log"`
	Trace     string         `yaml:"trace"`
	Dashboard bool           `yaml:"dashboard"`
	Decision  DecisionConfig `yaml:"decision"`
}

// RemoteConfig holds the data-flow destination.
type RemoteConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

// DecisionConfig holds decision-process defaults from the config file.
type DecisionConfig struct {
	// Endpoint is the unix-socket path of the decision process.
	Endpoint string `yaml:"endpoint"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "20ms", "1s").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "20ms" or "1s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks cross-field constraints a run cannot start without.
func (c *Config) Validate() error {
	if c.Remote.Port < 0 || c.Remote.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Remote.Port)
	}
	if c.Interval.Duration < 0 {
		return fmt.Errorf("invalid interval %v", c.Interval.Duration)
	}
	return nil
}
