package obstest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/LLIEPJIOK/obs-remote/pkg/obsws"
)

var ErrNoFrame = errors.New("no frame sent")

// Transport is an in-memory obsws.Transport. Frames written by the session are read with
// NextSent, frames for the session are injected with Deliver.
type Transport struct {
	sent    chan []byte
	inbound chan []byte

	closed    chan struct{}
	closeOnce sync.Once

	sendErr error
	mu      sync.Mutex
}

func NewTransport() *Transport {
	return &Transport{
		sent:    make(chan []byte, 64),
		inbound: make(chan []byte, 64),
		closed:  make(chan struct{}),
	}
}

// Dial returns a dial function for obsws.SessionConfig that always yields t.
func (t *Transport) Dial() func(ctx context.Context, url string) (obsws.Transport, error) {
	return func(ctx context.Context, url string) (obsws.Transport, error) {
		return t, nil
	}
}

func (t *Transport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	err := t.sendErr
	t.mu.Unlock()

	if err != nil {
		return err
	}

	select {
	case <-t.closed:
		return obsws.ErrConnectionClosed
	default:
	}

	select {
	case t.sent <- data:
		return nil
	case <-t.closed:
		return obsws.ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Transport) Receive() ([]byte, error) {
	select {
	case data := <-t.inbound:
		return data, nil
	case <-t.closed:
		return nil, obsws.ErrConnectionClosed
	}
}

func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closed)
	})

	return nil
}

// Closed is closed once Close has been called.
func (t *Transport) Closed() <-chan struct{} {
	return t.closed
}

// FailSends makes every following Send return err.
func (t *Transport) FailSends(err error) {
	t.mu.Lock()
	t.sendErr = err
	t.mu.Unlock()
}

// Deliver queues a frame for the session's dispatch loop.
func (t *Transport) Deliver(frame []byte) {
	t.inbound <- frame
}

func (t *Transport) DeliverJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	t.Deliver(data)

	return nil
}

// NextSent waits for the next frame written by the session.
func (t *Transport) NextSent(timeout time.Duration) (Request, error) {
	select {
	case data := <-t.sent:
		req, err := parseRequest(data)
		if err != nil {
			return Request{}, fmt.Errorf("failed to unmarshal sent frame: %w", err)
		}

		return req, nil

	case <-time.After(timeout):
		return Request{}, ErrNoFrame
	}
}

// Reply delivers a successful response to req with the given fields.
func (t *Transport) Reply(req Request, fields map[string]any) error {
	frame := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		frame[k] = v
	}
	frame[obsws.FieldMessageID] = req.ID
	frame[obsws.FieldStatus] = obsws.StatusOK

	return t.DeliverJSON(frame)
}

// ServeAuth answers the next GetAuthRequired with authRequired=false.
func (t *Transport) ServeAuth(timeout time.Duration) error {
	req, err := t.NextSent(timeout)
	if err != nil {
		return err
	}

	if req.Type != obsws.RequestGetAuthRequired {
		return fmt.Errorf("expected %s, got %q", obsws.RequestGetAuthRequired, req.Type)
	}

	return t.Reply(req, map[string]any{"authRequired": false})
}
