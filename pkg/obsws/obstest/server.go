// Package obstest provides an in-process OBS websocket server and an in-memory
// transport for testing code built on obsws.
package obstest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/LLIEPJIOK/obs-remote/pkg/obsws"
)

var (
	ErrUnknownRequest   = errors.New("invalid request type")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAuthFailed       = errors.New("authentication failed")
)

// Handler answers one request. The returned fields are merged into the response next to
// message-id and status.
type Handler func(ctx context.Context, args map[string]any) (map[string]any, error)

// Request is a request frame as received by the server.
type Request struct {
	Type string
	ID   string
	Args map[string]any
}

type Config struct {
	// Password enables authentication when non-empty.
	Password  string
	Salt      string
	Challenge string
	Logger    *slog.Logger
}

type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
	handlers map[string]Handler
	mu       sync.RWMutex
	logger   *slog.Logger
	http     *httptest.Server

	conns   map[*serverConn]struct{}
	connsMu sync.Mutex

	requests   []Request
	requestsMu sync.Mutex
}

type serverConn struct {
	conn          *websocket.Conn
	writeMu       sync.Mutex
	authenticated bool
	authMu        sync.Mutex
}

// NewServer starts a server on a local port. Close must be called when done.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Salt == "" {
		cfg.Salt = uuid.NewString()
	}

	if cfg.Challenge == "" {
		cfg.Challenge = uuid.NewString()
	}

	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		handlers: make(map[string]Handler),
		logger:   cfg.Logger,
		conns:    make(map[*serverConn]struct{}),
	}

	s.http = httptest.NewServer(s)

	return s
}

// URL returns the ws:// address of the server.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.http.URL, "http")
}

func (s *Server) Close() {
	s.connsMu.Lock()
	for c := range s.conns {
		_ = c.conn.Close()
	}
	s.connsMu.Unlock()

	s.http.Close()
}

func (s *Server) Handle(requestType string, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[requestType] = handler
}

func (s *Server) getHandler(requestType string) (Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[requestType]
	return h, ok
}

// Requests returns every request received so far, in arrival order.
func (s *Server) Requests() []Request {
	s.requestsMu.Lock()
	defer s.requestsMu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Push sends an event to every connected client.
func (s *Server) Push(updateType string, fields map[string]any) error {
	frame := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		frame[k] = v
	}
	frame[obsws.FieldUpdateType] = updateType

	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return s.SendRaw(data)
}

// SendRaw writes data as a text frame to every connected client.
func (s *Server) SendRaw(data []byte) error {
	s.connsMu.Lock()
	conns := make([]*serverConn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.connsMu.Unlock()

	var errs []error
	for _, c := range conns {
		errs = append(errs, c.write(data))
	}

	return errors.Join(errs...)
}

// Connections reports how many clients are connected.
func (s *Server) Connections() int {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	return len(s.conns)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	sc := &serverConn{conn: conn, authenticated: s.cfg.Password == ""}

	s.connsMu.Lock()
	s.conns[sc] = struct{}{}
	s.connsMu.Unlock()

	defer func() {
		s.connsMu.Lock()
		delete(s.conns, sc)
		s.connsMu.Unlock()
	}()

	s.logger.Debug("client connected", "remote_addr", conn.RemoteAddr())
	defer s.logger.Debug("client disconnected", "remote_addr", conn.RemoteAddr())

	s.handleConnection(r.Context(), sc)
}

func (s *Server) handleConnection(ctx context.Context, sc *serverConn) {
	for {
		_, data, err := sc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
			) {
				s.logger.Debug("read error", "error", err)
			}

			return
		}

		req, err := parseRequest(data)
		if err != nil {
			s.logger.Error("failed to unmarshal request", "error", err)
			continue
		}

		s.requestsMu.Lock()
		s.requests = append(s.requests, req)
		s.requestsMu.Unlock()

		// Аутентификация обрабатывается последовательно, остальные запросы конкурентно.
		switch req.Type {
		case obsws.RequestGetAuthRequired, obsws.RequestAuthenticate:
			s.processRequest(ctx, sc, req)
		default:
			go s.processRequest(ctx, sc, req)
		}
	}
}

func (s *Server) processRequest(ctx context.Context, sc *serverConn, req Request) {
	result, err := s.handle(ctx, sc, req)
	if err != nil {
		s.reply(sc, req.ID, map[string]any{
			obsws.FieldStatus: obsws.StatusError,
			obsws.FieldError:  err.Error(),
		})

		return
	}

	frame := make(map[string]any, len(result)+1)
	for k, v := range result {
		frame[k] = v
	}
	frame[obsws.FieldStatus] = obsws.StatusOK

	s.reply(sc, req.ID, frame)
}

func (s *Server) handle(ctx context.Context, sc *serverConn, req Request) (map[string]any, error) {
	switch req.Type {
	case obsws.RequestGetAuthRequired:
		if s.cfg.Password == "" {
			return map[string]any{"authRequired": false}, nil
		}

		return map[string]any{
			"authRequired": true,
			"salt":         s.cfg.Salt,
			"challenge":    s.cfg.Challenge,
		}, nil

	case obsws.RequestAuthenticate:
		auth, _ := req.Args["auth"].(string)
		if auth != obsws.AuthResponse(s.cfg.Password, s.cfg.Salt, s.cfg.Challenge) {
			return nil, ErrAuthFailed
		}

		sc.setAuthenticated()

		return nil, nil
	}

	if !sc.isAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	handler, ok := s.getHandler(req.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRequest, req.Type)
	}

	return handler(ctx, req.Args)
}

func (s *Server) reply(sc *serverConn, id string, frame map[string]any) {
	frame[obsws.FieldMessageID] = id

	data, err := json.Marshal(frame)
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	if err := sc.write(data); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

func parseRequest(data []byte) (Request, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return Request{}, err
	}

	req := Request{Args: fields}
	req.Type, _ = fields[obsws.FieldRequestType].(string)
	req.ID, _ = fields[obsws.FieldMessageID].(string)
	delete(fields, obsws.FieldRequestType)
	delete(fields, obsws.FieldMessageID)

	return req, nil
}

func (c *serverConn) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *serverConn) setAuthenticated() {
	c.authMu.Lock()
	c.authenticated = true
	c.authMu.Unlock()
}

func (c *serverConn) isAuthenticated() bool {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	return c.authenticated
}
