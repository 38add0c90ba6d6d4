// Package config loads the service configuration from a YAML file with
// environment overrides for deployment secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so values like "10m" parse from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config represents the application configuration.
type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		MetricsPort int `yaml:"metrics_port"`
	} `yaml:"server"`

	Database struct {
		// Dialect is sqlite3 or postgres; empty runs in-memory.
		Dialect string `yaml:"dialect"`
		DSN     string `yaml:"dsn"`
	} `yaml:"database"`

	AMQP struct {
		// URL is optional; empty disables the broker publisher.
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"amqp"`

	Pacing struct {
		Schedule        string   `yaml:"schedule"`
		CourseThreshold Duration `yaml:"course_threshold"`
	} `yaml:"pacing"`

	TaxRate float64 `yaml:"tax_rate"`
}

// Load reads the configuration file and applies defaults and
// environment overrides (DATABASE_DSN, AMQP_URL).
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.MetricsPort = 9090
	cfg.AMQP.Exchange = "orders.status"
	cfg.Pacing.Schedule = "@every 1m"
	cfg.Pacing.CourseThreshold = Duration(20 * time.Minute)

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if url := os.Getenv("AMQP_URL"); url != "" {
		cfg.AMQP.URL = url
	}

	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return nil, fmt.Errorf("tax rate %v out of range", cfg.TaxRate)
	}
	return cfg, nil
}
