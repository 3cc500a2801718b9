package shstate_test

import (
	"sync"

	"github.com/nnikolash/go-shstate"
)

// fakeHost records what the store asks of the toolkit.
type fakeHost struct {
	mu         sync.Mutex
	interact   map[any]func()
	handlers   map[any][]func()
	dispatched []any
	wakes      int

	// Called from Dispatch, if set.
	onDispatch func(scope any) error
}

var _ shstate.Host = &fakeHost{}

func newFakeHost() *fakeHost {
	return &fakeHost{
		interact: make(map[any]func()),
		handlers: make(map[any][]func()),
	}
}

func (h *fakeHost) OnInteract(target any, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.interact[target] = fn
}

func (h *fakeHost) OnEvent(target any, ev shstate.Event, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ev == shstate.StateChanged {
		h.handlers[target] = append(h.handlers[target], fn)
	}
}

func (h *fakeHost) Dispatch(ev shstate.Event, scope any) error {
	h.mu.Lock()
	h.dispatched = append(h.dispatched, scope)
	hook := h.onDispatch
	h.mu.Unlock()

	if hook != nil {
		return hook(scope)
	}
	return nil
}

func (h *fakeHost) Wake() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wakes++
}

func (h *fakeHost) fire(target any) {
	h.mu.Lock()
	fn := h.interact[target]
	h.mu.Unlock()
	fn()
}

// deliver runs the StateChanged handlers of target.
func (h *fakeHost) deliver(target any) {
	h.mu.Lock()
	fns := append([]func(){}, h.handlers[target]...)
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (h *fakeHost) dispatchCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.dispatched)
}

func (h *fakeHost) wakeCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.wakes
}

// errorSink collects errors passed to the store error handler.
type errorSink struct {
	mu   sync.Mutex
	errs []error
}

func (s *errorSink) handle(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *errorSink) all() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error{}, s.errs...)
}

type target struct {
	name string
}
