// Package config loads the validator's YAML configuration, merging
// file values over built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for the voltage band and solve settings.
const (
	DefaultVmLb                 = 0.95
	DefaultVmUb                 = 1.05
	DefaultBaseFrequency        = 60.0
	DefaultMaxIterations        = 100
	DefaultMaxControlIterations = 100
)

// Config is the validator configuration.
type Config struct {
	Limits  LimitsConfig  `yaml:"limits"`
	Solver  SolverConfig  `yaml:"solver"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LimitsConfig is the per-unit voltage operating band.
type LimitsConfig struct {
	VmLb float64 `yaml:"vm_lb"`
	VmUb float64 `yaml:"vm_ub"`
}

// SolverConfig holds the global solve settings emitted into every
// circuit description.
type SolverConfig struct {
	BaseFrequency        float64   `yaml:"base_frequency"`
	VoltageBases         []float64 `yaml:"voltage_bases"`
	MaxIterations        int       `yaml:"max_iterations"`
	MaxControlIterations int       `yaml:"max_control_iterations"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // e.g. ":9090"; empty disables the endpoint
}

// DefaultConfig returns the built-in defaults: the fixed 0.95-1.05 p.u.
// band and the engine's standard solve settings.
func DefaultConfig() *Config {
	return &Config{
		Limits: LimitsConfig{
			VmLb: DefaultVmLb,
			VmUb: DefaultVmUb,
		},
		Solver: SolverConfig{
			BaseFrequency:        DefaultBaseFrequency,
			VoltageBases:         []float64{115, 12.47},
			MaxIterations:        DefaultMaxIterations,
			MaxControlIterations: DefaultMaxControlIterations,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Limits.VmLb >= cfg.Limits.VmUb {
		return nil, fmt.Errorf("config: vm_lb %g must be below vm_ub %g", cfg.Limits.VmLb, cfg.Limits.VmUb)
	}
	return cfg, nil
}
