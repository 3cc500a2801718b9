package shstate

import (
	"context"
	"sync/atomic"

	"github.com/nnikolash/go-shstate/access"
	"github.com/pkg/errors"
)

// BindAction makes every interaction with target run mutator over the state.
//
// Each firing holds exclusive access for the duration of mutator, releases
// it and then raises exactly one StateChanged. If mutator returns an error,
// the error goes to the store error handler and no signal is raised.
//
// Mutators must not access the store themselves.
func BindAction[S, T any](s *Store, target T, mutator func(state *S, target T) error) {
	s.host.OnInteract(target, s.schedule(newAction(s, target, mutator)))
}

// AddMenuAction adds a menu item labeled label to menu and binds mutator to it
// like BindAction does. The host must implement MenuHost.
func AddMenuAction[S, M any](s *Store, menu M, label string, mutator func(state *S, menu M) error) error {
	mh, ok := s.host.(MenuHost)
	if !ok {
		panic(errors.Errorf("host %T does not support menus", s.host))
	}

	_, err := mh.AddMenuItem(menu, label, s.schedule(newAction(s, menu, mutator)))

	return errors.Wrapf(err, "failed to add menu item %q", label)
}

func newAction[S, T any](s *Store, target T, mutator func(state *S, target T) error) func() {
	return func() {
		s.l.Tracef("Action on %T fired", target)

		err := withState(context.Background(), s, func(state *S) error {
			return mutator(state, target)
		})
		if err != nil {
			s.onError(errors.Wrapf(err, "action on %T failed", target))
			return
		}

		if s.actionScope == ScopeMain {
			s.raise(nil)
		} else {
			s.raise(target)
		}
	}
}

// BindView renders target with reader right away and then again every time
// StateChanged is delivered to target. reader must not modify the state.
//
// On a Cooperative store re-renders are scheduled as tasks. A re-render which
// is scheduled but does not hold access to the state yet absorbs further
// signals.
func BindView[S, T any](s *Store, target T, reader func(state *S, target T) error) {
	render := func(acquired func()) {
		s.l.Tracef("Rendering %T", target)

		err := withStateAcquired(context.Background(), s, acquired, func(state *S) error {
			return reader(state, target)
		})
		if err != nil {
			s.onError(errors.Wrapf(err, "view of %T failed", target))
		}
	}

	render(nil)

	if s.discipline != access.Cooperative {
		s.host.OnEvent(target, StateChanged, func() { render(nil) })
		return
	}

	var pending atomic.Bool

	s.host.OnEvent(target, StateChanged, func() {
		if !pending.CompareAndSwap(false, true) {
			return
		}

		s.tasks.Go(func() {
			// Cleared once access is held: every signal absorbed so far
			// belongs to a committed mutation, and any later one schedules
			// another render.
			render(func() { pending.Store(false) })
			s.host.Wake()
		})
	})
}

// schedule wraps a binding invocation according to the store discipline.
func (s *Store) schedule(f func()) func() {
	if s.discipline != access.Cooperative {
		return f
	}

	return func() {
		s.tasks.Go(f)
	}
}
