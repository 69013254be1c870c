package obsws

import (
	"context"
	"log/slog"
	"time"
)

type SessionConfig struct {
	URL string
	// RequestTimeout bounds the wait for a response. Zero waits until the response,
	// ctx cancellation or the end of the session.
	RequestTimeout   time.Duration
	WriteTimeout     time.Duration
	HandshakeTimeout time.Duration
	MaxMessageSize   int64
	// RequestRate limits outgoing requests per second, zero disables the limit.
	RequestRate  float64
	RequestBurst int
	EventSink    EventSink
	Logger       *slog.Logger
	// Dial opens the transport. Defaults to DialWebSocket.
	Dial func(ctx context.Context, url string) (Transport, error)
}

func DefaultSessionConfig(wsURL string) SessionConfig {
	return SessionConfig{
		URL:              wsURL,
		RequestTimeout:   30 * time.Second,
		WriteTimeout:     10 * time.Second,
		HandshakeTimeout: 45 * time.Second,
		Logger:           slog.Default(),
	}
}

func (cfg SessionConfig) transportConfig() TransportConfig {
	return TransportConfig{
		HandshakeTimeout: cfg.HandshakeTimeout,
		WriteTimeout:     cfg.WriteTimeout,
		MaxMessageSize:   cfg.MaxMessageSize,
	}
}
