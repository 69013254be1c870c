package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/LLIEPJIOK/obs-remote/pkg/obs/client"
	"github.com/LLIEPJIOK/obs-remote/pkg/obsws"
)

// fileConfig is the YAML config file. The password is never read from or written to it.
type fileConfig struct {
	URL            string        `yaml:"url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RequestRate    float64       `yaml:"request_rate"`
	RequestBurst   int           `yaml:"request_burst"`
	LogLevel       string        `yaml:"log_level"`
}

type config struct {
	Session  obsws.SessionConfig
	Password string
	LogLevel slog.Level
}

// loadConfig layers defaults, the config file at path when given and OBS_* environment
// variables. Flags are applied by the caller on top.
func loadConfig(path string) (config, error) {
	cfg := config{
		Session:  obsws.DefaultSessionConfig(client.DefaultURL),
		LogLevel: slog.LevelInfo,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config{}, fmt.Errorf("failed to read config: %w", err)
		}

		var fc fileConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}

		if err := cfg.apply(fc); err != nil {
			return config{}, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	password, err := client.ApplyEnv(&cfg.Session)
	if err != nil {
		return config{}, err
	}

	cfg.Password = password

	if raw := os.Getenv("OBS_LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return config{}, fmt.Errorf("failed to parse OBS_LOG_LEVEL: %w", err)
		}
	}

	return cfg, nil
}

func (c *config) apply(fc fileConfig) error {
	if fc.URL != "" {
		c.Session.URL = fc.URL
	}

	if fc.RequestTimeout < 0 {
		return errors.New("request_timeout must not be negative")
	}

	if fc.RequestTimeout > 0 {
		c.Session.RequestTimeout = fc.RequestTimeout
	}

	if fc.RequestRate < 0 {
		return errors.New("request_rate must not be negative")
	}

	if fc.RequestRate > 0 {
		c.Session.RequestRate = fc.RequestRate
		c.Session.RequestBurst = fc.RequestBurst
	}

	if fc.LogLevel != "" {
		if err := c.LogLevel.UnmarshalText([]byte(fc.LogLevel)); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}

	return nil
}
