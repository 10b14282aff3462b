package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnvMinConfidence overrides Config.MinConfidence.
const EnvMinConfidence = "MIN_CONFIDENCE"

// Config is the runtime configuration for the CLI and HTTP adapter.
type Config struct {
	MinConfidence float64      `yaml:"min_confidence"`
	Server        ServerConfig `yaml:"server"`
	Log           LogConfig    `yaml:"log"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// RateLimit is requests per second on the parse endpoints; burst is twice
	// this value. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MinConfidence: 0.7,
		Server: ServerConfig{
			Addr:      ":8080",
			RateLimit: 20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// environment override. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %q: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	raw, ok := lookup(EnvMinConfidence)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%s=%q: %w", EnvMinConfidence, raw, err)
	}
	cfg.MinConfidence = v
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("min_confidence %v outside [0,1]", c.MinConfidence))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit %v is negative", c.Server.RateLimit))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	return errors.Join(errs...)
}
