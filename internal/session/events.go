package session

// eventKind discriminates the entries on the controller's inbound queues.
type eventKind int

const (
	// eventMessage carries a raw inbound payload.
	eventMessage eventKind = iota

	// eventClosed reports that the source connection failed or closed.
	eventClosed

	// eventConnectFailed reports that a dial attempt never produced a
	// connection.
	eventConnectFailed
)

// event is one entry on an inbound queue. Transport goroutines only ever
// enqueue; effects are applied when the owning goroutine drains the queues
// in Tick, preserving arrival order.
type event struct {
	kind    eventKind
	payload []byte

	// src is the connection the event came from, nil for dial failures
	// and for payloads injected through HandleRaw. Events from a
	// connection that is no longer current are discarded on drain.
	src *conn
}

const (
	messageQueueSize = 256
	controlQueueSize = 8
)

// enqueueMessage adds a payload event without ever blocking the transport
// goroutine. If the queue is full the event is dropped; the game loop has
// fallen far behind and stale updates are not worth stalling the socket for.
func enqueueMessage(events chan<- event, ev event) {
	select {
	case events <- ev:
	default:
	}
}

// enqueueControl adds a lifecycle event. Control events drive the
// single-player fallback, so unlike payload events they must not be lost;
// the queue holds at most one entry per connection attempt and never fills.
func enqueueControl(control chan<- event, ev event) {
	select {
	case control <- ev:
	default:
	}
}
