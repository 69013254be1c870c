package obsws

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Transport carries whole JSON frames over one connection.
// Send may be called concurrently; Receive is called only by the dispatch loop.
// Close must unblock a pending Receive.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	Receive() ([]byte, error)
	Close() error
}

type TransportConfig struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	MaxMessageSize   int64
}

type WebSocketTransport struct {
	conn         *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
	closed       atomic.Bool
	closeOnce    sync.Once
	closeErr     error
}

func DialWebSocket(ctx context.Context, rawURL string, cfg TransportConfig) (*WebSocketTransport, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	if (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not a websocket url", ErrInvalidURL, rawURL)
	}

	// Прокси из окружения игнорируется.
	dialer := websocket.Dialer{
		Proxy:            nil,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDial, err)
	}

	return NewWebSocketTransport(conn, cfg), nil
}

// NewWebSocketTransport wraps an already established connection.
func NewWebSocketTransport(conn *websocket.Conn, cfg TransportConfig) *WebSocketTransport {
	if cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	return &WebSocketTransport{
		conn:         conn,
		writeTimeout: cfg.WriteTimeout,
	}
}

func (t *WebSocketTransport) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if t.closed.Load() {
		return ErrConnectionClosed
	}

	var deadline time.Time
	if t.writeTimeout > 0 {
		deadline = time.Now().Add(t.writeTimeout)
	}

	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}

	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (t *WebSocketTransport) Receive() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		if t.closed.Load() || websocket.IsCloseError(
			err,
			websocket.CloseNormalClosure,
			websocket.CloseGoingAway,
		) {
			return nil, fmt.Errorf("%w: %w", ErrConnectionClosed, err)
		}

		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	return data, nil
}

func (t *WebSocketTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)

		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing")
		_ = t.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))

		t.closeErr = t.conn.Close()
	})

	return t.closeErr
}
