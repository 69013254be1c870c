package obsws

import "sync/atomic"

// Stats is a snapshot of the session counters.
type Stats struct {
	RequestsSent      uint64
	ResponsesResolved uint64
	ResponsesDropped  uint64
	EventsReceived    uint64
	DecodeFailures    uint64
	Pending           int
}

type counters struct {
	requestsSent      atomic.Uint64
	responsesResolved atomic.Uint64
	responsesDropped  atomic.Uint64
	eventsReceived    atomic.Uint64
	decodeFailures    atomic.Uint64
}

func (c *counters) snapshot(pending int) Stats {
	return Stats{
		RequestsSent:      c.requestsSent.Load(),
		ResponsesResolved: c.responsesResolved.Load(),
		ResponsesDropped:  c.responsesDropped.Load(),
		EventsReceived:    c.eventsReceived.Load(),
		DecodeFailures:    c.decodeFailures.Load(),
		Pending:           pending,
	}
}
