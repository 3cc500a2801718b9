// Package shstate lets widgets of a toolkit observe and mutate one piece of
// shared application state.
//
// A Store holds a single value of an application-chosen type. Action
// bindings mutate it in response to user interaction, then raise
// StateChanged. View bindings render it once when bound and again whenever
// StateChanged reaches their target. The toolkit itself stays outside:
// the store only needs the four capabilities of Host.
//
//	st := shstate.New(app, shstate.WithDiscipline(shstate.Blocking))
//	shstate.Init(ctx, st, NewCounter)
//	shstate.BindAction(st, incButton, (*Counter).Increment)
//	shstate.BindView(st, display, (*Counter).Render)
package shstate

import (
	"github.com/nnikolash/go-shstate/access"
	"github.com/nnikolash/go-shstate/cell"
)

// Event identifies a custom toolkit event.
type Event int

// StateChanged is raised by the store after every committed mutation.
// It carries no payload.
const StateChanged Event = 100

// Host is the widget toolkit, seen from the store.
type Host interface {
	// OnInteract makes the host call fn whenever the user interacts with target.
	OnInteract(target any, fn func())
	// OnEvent makes the host call fn whenever ev is delivered to target.
	OnEvent(target any, ev Event, fn func())
	// Dispatch delivers ev to scope. A nil scope means the main window;
	// otherwise the event goes to the window owning scope.
	Dispatch(ev Event, scope any) error
	// Wake makes a sleeping event loop process dispatched events.
	Wake()
}

// MenuHost is implemented by hosts which can create menu items.
type MenuHost interface {
	AddMenuItem(menu any, label string, fn func()) (item any, err error)
}

type Discipline = access.Discipline

const (
	Exclusive   = access.Exclusive
	Blocking    = access.Blocking
	Cooperative = access.Cooperative
)

type TypeMismatchError = cell.TypeMismatchError

var ErrNotInitialized = cell.ErrNotInstalled
