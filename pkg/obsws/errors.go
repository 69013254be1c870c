package obsws

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL       = errors.New("invalid url")
	ErrDial             = errors.New("dial failed")
	ErrAuthFailed       = errors.New("authentication failed")
	ErrConnectionClosed = errors.New("connection closed")
	ErrNotConnected     = errors.New("not connected")
	ErrAlreadyConnected = errors.New("already connected")
	ErrRequestTimeout   = errors.New("request timeout")
	ErrRequestFailed    = errors.New("request failed")
	ErrDecode           = errors.New("decode failed")
)

// RequestError is returned by Session.Call when the server answers with status "error".
type RequestError struct {
	RequestType string
	ID          string
	Message     string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s (message-id %s): %s", e.RequestType, e.ID, e.Message)
}

func (e *RequestError) Unwrap() error {
	return ErrRequestFailed
}
