package backup

import (
	"sync"

	"github.com/tdex-network/tdex-backup/internal/core/ports"
)

type eventType int

const (
	eventStart eventType = iota
	eventFlow
	eventExportResult
	eventShareDone
)

func (t eventType) String() string {
	switch t {
	case eventStart:
		return "start"
	case eventFlow:
		return "flow"
	case eventExportResult:
		return "export-result"
	case eventShareDone:
		return "share-done"
	default:
		return "unknown"
	}
}

// event is the only message handled by the coordinator loop. Every field but
// kind is optional and depends on it.
type event struct {
	kind      eventType
	flow      ports.FlowEvent
	secret    string
	err       error
	completed bool
}

// eventQueue is an unbounded FIFO queue so that posting never blocks, not
// even when done from within the loop goroutine.
type eventQueue struct {
	lock   sync.Mutex
	events []event
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{signal: make(chan struct{}, 1)}
}

func (q *eventQueue) push(ev event) {
	q.lock.Lock()
	q.events = append(q.events, ev)
	q.lock.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *eventQueue) pop() (event, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if len(q.events) <= 0 {
		return event{}, false
	}
	ev := q.events[0]
	q.events = q.events[1:]
	return ev, true
}
