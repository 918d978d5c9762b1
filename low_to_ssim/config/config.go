// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

// Package config loads converter settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/logging"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/ssim"
)

// Environment variables overriding values from the config file.
const (
	EnvInput    = "LOW2SSIM_INPUT"
	EnvOutput   = "LOW2SSIM_OUTPUT"
	EnvAirline  = "LOW2SSIM_AIRLINE"
	EnvProvider = "LOW2SSIM_TZ_PROVIDER"
	EnvLogLevel = "LOG_LEVEL"
)

const (
	ProviderPrecise    = "precise"
	ProviderEstimating = "estimating"
)

type Config struct {
	Input        string         `yaml:"input" validate:"required"`
	Output       string         `yaml:"output"`
	Airline      string         `yaml:"airline" validate:"required,min=2,max=3"`
	Creator      string         `yaml:"creator" validate:"required"`
	TimeZoneMode string         `yaml:"time_zone_mode" validate:"oneof=L U"`
	Traversal    string         `yaml:"traversal" validate:"oneof=chained sequential"`
	Timezone     TimezoneConfig `yaml:"timezone"`
	Exports      ExportsConfig  `yaml:"exports"`
	Logging      logging.Config `yaml:"logging"`
}

type TimezoneConfig struct {
	Provider      string        `yaml:"provider" validate:"oneof=precise estimating"`
	AirportsFile  string        `yaml:"airports_file"`
	AirportsURL   string        `yaml:"airports_url" validate:"omitempty,url"`
	FetchAttempts int           `yaml:"fetch_attempts" validate:"gte=1"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout" validate:"gte=0"`
	FetchBackoff  time.Duration `yaml:"fetch_backoff" validate:"gte=0"`
}

// ExportsConfig lists optional additional outputs; empty paths are skipped.
type ExportsConfig struct {
	GTFSRT   string `yaml:"gtfsrt"`
	JSON     string `yaml:"json"`
	Readable bool   `yaml:"readable"`
}

// Load reads the configuration: defaults are overwritten by the YAML file
// (if path is not empty), then by environment variables, then by the provided
// overrides (usually command-line flags). The result is validated.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	c := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	c.loadFromEnv()
	for _, override := range overrides {
		override(c)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

func Default() *Config {
	return &Config{
		Airline:      ssim.DefaultAirline,
		Creator:      ssim.DefaultCreator,
		TimeZoneMode: string(ssim.Local),
		Traversal:    "chained",
		Timezone: TimezoneConfig{
			Provider:      ProviderPrecise,
			FetchAttempts: 3,
			FetchTimeout:  30 * time.Second,
			FetchBackoff:  2 * time.Second,
		},
		Logging: logging.Config{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv(EnvInput); v != "" {
		c.Input = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
	if v := os.Getenv(EnvAirline); v != "" {
		c.Airline = v
	}
	if v := os.Getenv(EnvProvider); v != "" {
		c.Timezone.Provider = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// OutputPath returns the configured output path, or "output_<input name>"
// placed next to the input file.
func (c *Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	dir, name := filepath.Split(c.Input)
	return filepath.Join(dir, "output_"+name)
}
