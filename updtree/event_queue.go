package updtree

import (
	"sync"

	"github.com/pkg/errors"
)

// EventQueue buffers published events until every reader has pulled them.
// Safe for concurrent use: publishers may run on any goroutine while readers
// drain the queue from the goroutine delivering events.
type EventQueue[E any] struct {
	mu        sync.Mutex
	published int
	pending   []pendingEvent[E]
	readers   int
}

type pendingEvent[E any] struct {
	ev    E
	reads int
	// Readers which existed when the event was published.
	want int
}

func NewEventQueue[E any]() *EventQueue[E] {
	return &EventQueue[E]{}
}

// NewReader creates a reader, which will see events published from now on.
func (q *EventQueue[E]) NewReader() *EventReader[E] {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.readers++

	return &EventReader[E]{q: q, cursor: q.published}
}

// Publish appends ev and reports whether anybody will read it.
// Events published while there are no readers are dropped.
func (q *EventQueue[E]) Publish(ev E) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.readers == 0 {
		return false
	}

	q.published++
	q.pending = append(q.pending, pendingEvent[E]{ev: ev, want: q.readers})

	return true
}

// Len is the number of events not yet read by every reader.
func (q *EventQueue[E]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.pending)
}

func (q *EventQueue[E]) read(from int) []E {
	q.mu.Lock()
	defer q.mu.Unlock()

	unread := q.published - from
	if unread == 0 {
		return nil
	}

	first := len(q.pending) - unread
	if first < 0 {
		panic(errors.Errorf("event queue cursor out of range: pending = %v, published = %v, cursor = %v",
			len(q.pending), q.published, from))
	}

	res := make([]E, 0, unread)
	for i := first; i < len(q.pending); i++ {
		q.pending[i].reads++
		res = append(res, q.pending[i].ev)
	}

	done := 0
	for done < len(q.pending) && q.pending[done].reads == q.pending[done].want {
		done++
	}
	if done > 0 {
		clear(q.pending[:done])
		q.pending = q.pending[done:]
	}

	return res
}

// EventReader is a cursor into an EventQueue. A reader must not be used
// from several goroutines at once.
type EventReader[E any] struct {
	q      *EventQueue[E]
	cursor int
}

// Pull returns all events this reader has not seen yet, oldest first.
func (r *EventReader[E]) Pull() []E {
	events := r.q.read(r.cursor)
	r.cursor += len(events)

	return events
}
