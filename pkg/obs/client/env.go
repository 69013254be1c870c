package client

import (
	"fmt"
	"os"
	"time"

	"github.com/LLIEPJIOK/obs-remote/pkg/obsws"
)

const DefaultURL = "ws://localhost:4444"

// ConfigFromEnv builds a session config from environment variables
// OBS_URL - адрес сервера (по умолчанию ws://localhost:4444)
// OBS_REQUEST_TIMEOUT - таймаут запроса в формате time.ParseDuration
// Пароль возвращается отдельно из OBS_PASSWORD и в конфигурации не хранится.
func ConfigFromEnv() (obsws.SessionConfig, string, error) {
	cfg := obsws.DefaultSessionConfig(DefaultURL)

	password, err := ApplyEnv(&cfg)
	if err != nil {
		return obsws.SessionConfig{}, "", err
	}

	return cfg, password, nil
}

// ApplyEnv overrides cfg with the OBS_* variables that are set and returns OBS_PASSWORD.
func ApplyEnv(cfg *obsws.SessionConfig) (string, error) {
	if wsURL := os.Getenv("OBS_URL"); wsURL != "" {
		cfg.URL = wsURL
	}

	if raw := os.Getenv("OBS_REQUEST_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return "", fmt.Errorf("failed to parse OBS_REQUEST_TIMEOUT: %w", err)
		}

		cfg.RequestTimeout = timeout
	}

	return os.Getenv("OBS_PASSWORD"), nil
}
