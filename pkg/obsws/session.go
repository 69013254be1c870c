package obsws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Session is one authenticated connection to the server.
type Session struct {
	cfg     SessionConfig
	id      string
	logger  *slog.Logger
	limiter *rate.Limiter
	corr    *correlator
	stats   counters

	transport Transport
	connMu    sync.RWMutex

	closed   bool
	err      error
	closedMu sync.RWMutex

	done     chan struct{}
	doneOnce sync.Once
}

func NewSession(cfg SessionConfig) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Dial == nil {
		tcfg := cfg.transportConfig()
		cfg.Dial = func(ctx context.Context, url string) (Transport, error) {
			t, err := DialWebSocket(ctx, url, tcfg)
			if err != nil {
				return nil, err
			}

			return t, nil
		}
	}

	id := uuid.NewString()

	s := &Session{
		cfg:    cfg,
		id:     id,
		logger: cfg.Logger.With(slog.String("session", id)),
		corr:   newCorrelator(),
		done:   make(chan struct{}),
	}

	if cfg.RequestRate > 0 {
		burst := cfg.RequestBurst
		if burst <= 0 {
			burst = 1
		}

		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestRate), burst)
	}

	return s
}

// Connect opens the transport, starts the dispatch loop and authenticates with password.
// The password is used for the handshake only and is not kept by the session.
func (s *Session) Connect(ctx context.Context, password string) error {
	if s.IsClosed() {
		return ErrConnectionClosed
	}

	s.connMu.Lock()

	if s.transport != nil {
		s.connMu.Unlock()
		return ErrAlreadyConnected
	}

	s.logger.Info("connecting to server", slog.String("url", s.cfg.URL))

	t, err := s.cfg.Dial(ctx, s.cfg.URL)
	if err != nil {
		s.connMu.Unlock()
		return err
	}

	s.transport = t
	s.connMu.Unlock()

	go s.dispatchLoop(t)

	s.logger.Info("connected to server, starting authentication", "url", s.cfg.URL)

	required, err := Authenticate(ctx, s, password)
	if err != nil {
		_ = s.Close()
		return err
	}

	s.logger.Info("session ready", "url", s.cfg.URL, "auth_required", required)

	return nil
}

// Call sends one request and waits for the response with the same message-id.
// A response with status "error" is returned together with a *RequestError.
func (s *Session) Call(ctx context.Context, requestType string, args Args) (*Response, error) {
	t, err := s.activeTransport()
	if err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	id, pr, err := s.corr.register()
	if err != nil {
		return nil, err
	}

	data, err := encodeRequest(requestType, id, args)
	if err != nil {
		s.corr.cancel(id)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if err := t.Send(ctx, data); err != nil {
		s.corr.cancel(id)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	s.stats.requestsSent.Add(1)
	s.logger.Debug("request sent", "request_type", requestType, "id", id)

	var timeout <-chan time.Time

	if s.cfg.RequestTimeout > 0 {
		timer := time.NewTimer(s.cfg.RequestTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case resp := <-pr.responseCh:
		if resp.Status() == StatusError {
			return resp, &RequestError{
				RequestType: requestType,
				ID:          id,
				Message:     resp.ErrorMessage(),
			}
		}

		return resp, nil

	case err := <-pr.errCh:
		return nil, err

	case <-timeout:
		s.corr.cancel(id)
		return nil, fmt.Errorf("%w: %s (message-id %s)", ErrRequestTimeout, requestType, id)

	case <-ctx.Done():
		s.corr.cancel(id)
		return nil, ctx.Err()
	}
}

// CallTyped is Call followed by decoding the whole response frame into out.
func (s *Session) CallTyped(ctx context.Context, requestType string, args Args, out any) error {
	resp, err := s.Call(ctx, requestType, args)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := resp.Unmarshal(out); err != nil {
		return fmt.Errorf("%w: %s response: %w", ErrDecode, requestType, err)
	}

	return nil
}

func (s *Session) activeTransport() (Transport, error) {
	if s.IsClosed() {
		return nil, ErrConnectionClosed
	}

	s.connMu.RLock()
	t := s.transport
	s.connMu.RUnlock()

	if t == nil {
		return nil, ErrNotConnected
	}

	return t, nil
}

// Close closes the transport. The dispatch loop exits once its pending read fails,
// Done is closed after that.
func (s *Session) Close() error {
	s.closedMu.Lock()
	if s.closed {
		s.closedMu.Unlock()
		return nil
	}
	s.closed = true
	s.closedMu.Unlock()

	s.connMu.RLock()
	t := s.transport
	s.connMu.RUnlock()

	if t == nil {
		s.finish(ErrConnectionClosed)
		return nil
	}

	s.logger.Info("closing session")

	return t.Close()
}

// finish marks the session dead, wakes pending callers and closes Done.
func (s *Session) finish(cause error) {
	if !errors.Is(cause, ErrConnectionClosed) {
		cause = fmt.Errorf("%w: %w", ErrConnectionClosed, cause)
	}

	s.closedMu.Lock()
	s.closed = true
	if s.err == nil {
		s.err = cause
	}
	s.closedMu.Unlock()

	s.corr.failAll(cause)

	s.doneOnce.Do(func() {
		close(s.done)
	})
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the reason the session ended, or nil while it is alive.
func (s *Session) Err() error {
	s.closedMu.RLock()
	defer s.closedMu.RUnlock()
	return s.err
}

func (s *Session) IsClosed() bool {
	s.closedMu.RLock()
	defer s.closedMu.RUnlock()
	return s.closed
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Stats() Stats {
	return s.stats.snapshot(s.corr.size())
}
