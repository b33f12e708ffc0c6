package qsim

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// maxSupportedQubits bounds MaxQubits; a 30 qubit state vector is 16 GiB.
const maxSupportedQubits = 30

/*
Config holds the engine limits and the tuning of the algorithm drivers. The zero
value is not usable, start from NewConfig or LoadConfig.
*/
type Config struct {
	MaxQubits          int           `yaml:"max_qubits"`
	Seed               uint64        `yaml:"seed"`
	ShorMaxDenominator int           `yaml:"shor_max_denominator"`
	ShorMaxAttempts    int           `yaml:"shor_max_attempts"`
	MinWorkers         int           `yaml:"min_workers"`
	MaxWorkers         int           `yaml:"max_workers"`
	SchedulingTimeout  time.Duration `yaml:"scheduling_timeout"`
	JobTimeout         time.Duration `yaml:"job_timeout"`
}

func NewConfig() *Config {
	return &Config{
		MaxQubits:          20,
		Seed:               0,
		ShorMaxDenominator: 100,
		ShorMaxAttempts:    5,
		MinWorkers:         1,
		MaxWorkers:         4,
		SchedulingTimeout:  10 * time.Second,
		JobTimeout:         30 * time.Second,
	}
}

/*
LoadConfig reads a YAML file on top of the defaults, so a file only needs to
name the values it changes.
*/
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first out-of-range field.
func (c *Config) Validate() error {
	switch {
	case c.MaxQubits < 1 || c.MaxQubits > maxSupportedQubits:
		return fmt.Errorf("%w: max_qubits must be in [1, %d], got %d", ErrInvalidConfig, maxSupportedQubits, c.MaxQubits)
	case c.ShorMaxDenominator < 1:
		return fmt.Errorf("%w: shor_max_denominator must be positive, got %d", ErrInvalidConfig, c.ShorMaxDenominator)
	case c.ShorMaxAttempts < 1:
		return fmt.Errorf("%w: shor_max_attempts must be positive, got %d", ErrInvalidConfig, c.ShorMaxAttempts)
	case c.MinWorkers < 1 || c.MaxWorkers < c.MinWorkers:
		return fmt.Errorf("%w: need 1 <= min_workers <= max_workers, got %d and %d", ErrInvalidConfig, c.MinWorkers, c.MaxWorkers)
	case c.SchedulingTimeout <= 0 || c.JobTimeout <= 0:
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	return nil
}
