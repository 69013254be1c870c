package obs

import (
	"errors"
	"log/slog"

	"github.com/LLIEPJIOK/obs-remote/pkg/obsws"
)

// EventHandler is an obsws.EventSink that decodes events before handing them to Handle.
// Events of unknown kinds are passed to Unknown when set and skipped otherwise.
type EventHandler struct {
	Handle  func(event any)
	Unknown func(ev obsws.Event)
	Logger  *slog.Logger
}

func NewEventHandler(handle func(event any), logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &EventHandler{Handle: handle, Logger: logger}
}

func (h *EventHandler) OnEvent(ev obsws.Event) {
	typed, err := DecodeEvent(ev)

	switch {
	case errors.Is(err, ErrUnknownEvent):
		if h.Unknown != nil {
			h.Unknown(ev)
			return
		}

		h.logger().Debug("skipping unknown event", "update_type", ev.Type)

	case err != nil:
		h.logger().Warn("failed to decode event", "update_type", ev.Type, "error", err)

	case h.Handle != nil:
		h.Handle(typed)
	}
}

func (h *EventHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}

	return h.Logger
}
