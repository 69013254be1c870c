package obsws

import (
	"errors"
	"log/slog"
)

// dispatchLoop is the only reader of t. It runs until Receive fails.
func (s *Session) dispatchLoop(t Transport) {
	for {
		data, err := t.Receive()
		if err != nil {
			if errors.Is(err, ErrConnectionClosed) {
				s.logger.Info("connection closed")
			} else {
				s.logger.Error("read error", "error", err)
			}

			_ = t.Close()
			s.finish(err)

			return
		}

		s.dispatchFrame(data)
	}
}

func (s *Session) dispatchFrame(data []byte) {
	resp, event, err := decodeFrame(data)

	switch {
	case err != nil:
		s.stats.decodeFailures.Add(1)
		s.logger.Warn("failed to decode frame", "error", err, "size", len(data))

	case resp != nil:
		if s.corr.resolve(resp) {
			s.stats.responsesResolved.Add(1)
			return
		}

		s.stats.responsesDropped.Add(1)
		s.logger.Debug("received response for unknown request", "id", resp.ID)

	default:
		s.stats.eventsReceived.Add(1)
		s.deliverEvent(*event)
	}
}

func (s *Session) deliverEvent(ev Event) {
	if s.cfg.EventSink == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("event sink panicked", slog.String("update_type", ev.Type), slog.Any("panic", r))
		}
	}()

	s.cfg.EventSink.OnEvent(ev)
}
