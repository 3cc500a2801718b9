package shstate

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/nnikolash/go-shstate/access"
	"github.com/nnikolash/go-shstate/cell"
	"github.com/nnikolash/go-shstate/utils"
	"github.com/pkg/errors"
)

var ErrAlreadyInitialized = errors.New("state is already initialized")

// Store owns the shared state of one application. Create it next to the
// host application object and hand it to whoever binds widgets.
type Store struct {
	host        Host
	discipline  access.Discipline
	guard       access.Guard
	tasks       access.Tasks
	cell        cell.Cell
	actionScope SignalScope
	onError     func(err error)
	l           utils.Logger
}

type Option func(s *Store)

// WithDiscipline sets how access to the state is synchronized.
// Default is Exclusive.
func WithDiscipline(d access.Discipline) Option {
	return func(s *Store) {
		s.discipline = d
	}
}

// WithActionScope sets where action bindings deliver StateChanged.
// Default is ScopeTarget.
func WithActionScope(scope SignalScope) Option {
	return func(s *Store) {
		s.actionScope = scope
	}
}

// WithErrorHandler receives errors returned by bound functions.
// By default they are logged.
func WithErrorHandler(h func(err error)) Option {
	return func(s *Store) {
		s.onError = h
	}
}

func WithLogger(l utils.Logger) Option {
	return func(s *Store) {
		s.l = utils.OrNoop(l)
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Store) {
		s.discipline = cfg.Discipline
		s.actionScope = cfg.ActionSignal
	}
}

func New(host Host, opts ...Option) *Store {
	if host == nil {
		panic("shstate: host must not be nil")
	}

	s := &Store{
		host:       host,
		discipline: access.Exclusive,
		l:          &utils.NoopLogger{},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.guard = access.New(s.discipline)

	if s.onError == nil {
		s.onError = func(err error) {
			s.l.Errorf("%v", err)
		}
	}

	return s
}

func (s *Store) Discipline() access.Discipline {
	return s.discipline
}

// Wait blocks until all scheduled binding tasks are finished.
// Only Cooperative stores schedule tasks.
//
// Tasks are scheduled by the host when it delivers interactions and
// StateChanged, so the host must have stopped delivering them, e.g. its event
// loop must have returned, before Wait is called. Calling Wait while the host
// still schedules tasks is a misuse of the underlying task group.
func (s *Store) Wait() {
	s.tasks.Wait()
}

// Init installs the value produced by factory.
//
// Exclusive and Cooperative stores may be initialized again, which replaces
// the value. Blocking stores are initialized once; later calls return
// ErrAlreadyInitialized and keep the value.
//
// Init must be done before the host starts dispatching interaction events.
func Init[S any](ctx context.Context, s *Store, factory func() S) error {
	if err := s.guard.Lock(ctx); err != nil {
		return err
	}
	defer s.guard.Unlock()

	if s.discipline == access.Blocking && cell.Installed(&s.cell) {
		return errors.WithStack(ErrAlreadyInitialized)
	}

	cell.Install(&s.cell, factory())
	s.l.Debugf("State of type %v initialized, %v access", cell.TypeOf(&s.cell), s.discipline)

	return nil
}

// Update mutates the state and broadcasts StateChanged to the main window.
func Update[S any](ctx context.Context, s *Store, fn func(state *S) error) error {
	return UpdateOn(ctx, s, nil, fn)
}

// UpdateOn mutates the state and delivers StateChanged to scope.
// No signal is raised if fn fails.
func UpdateOn[S any](ctx context.Context, s *Store, scope any, fn func(state *S) error) error {
	if err := withState(ctx, s, fn); err != nil {
		return errors.Wrap(err, "failed to update state")
	}

	s.raise(scope)

	return nil
}

// Read gives fn the state for reading. fn must not modify it.
func Read[S any](ctx context.Context, s *Store, fn func(state *S) error) error {
	if err := withState(ctx, s, fn); err != nil {
		return errors.Wrap(err, "failed to read state")
	}
	return nil
}

// Snapshot returns the state encoded as JSON.
func Snapshot[S any](ctx context.Context, s *Store) ([]byte, error) {
	var data []byte

	err := Read(ctx, s, func(state *S) error {
		var err error
		data, err = sonic.Marshal(state)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to snapshot state")
	}

	return data, nil
}

// withState holds the access token for exactly the duration of fn.
// The token is released even if fn panics, e.g. on a type mismatch.
func withState[S any](ctx context.Context, s *Store, fn func(state *S) error) error {
	return withStateAcquired(ctx, s, nil, fn)
}

// withStateAcquired is withState calling acquired, if set, as soon as the
// token is held and before fn.
func withStateAcquired[S any](ctx context.Context, s *Store, acquired func(), fn func(state *S) error) error {
	if err := s.guard.Lock(ctx); err != nil {
		return err
	}
	defer s.guard.Unlock()

	if acquired != nil {
		acquired()
	}

	return fn(cell.Get[S](&s.cell))
}

// raise must be called after the access token is released.
func (s *Store) raise(scope any) {
	if err := s.host.Dispatch(StateChanged, scope); err != nil {
		s.l.Warnf("Failed to dispatch state change to %v: %v", describeScope(scope), err)
	}

	if s.discipline != access.Exclusive {
		// Mutation may have happened outside of the event loop goroutine.
		s.host.Wake()
	}
}

func describeScope(scope any) string {
	if scope == nil {
		return "main window"
	}
	return fmt.Sprintf("%T", scope)
}
