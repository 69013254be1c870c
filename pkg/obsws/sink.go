package obsws

// EventSink receives every event frame, in arrival order, on the dispatch goroutine.
// A slow sink delays the processing of every later frame, responses included.
type EventSink interface {
	OnEvent(Event)
}

type EventSinkFunc func(Event)

func (f EventSinkFunc) OnEvent(ev Event) {
	f(ev)
}
