// Package tk is a small in-memory widget toolkit. It implements
// shstate.Host and is used to run the examples and the demo without a real
// display.
//
// Like real toolkits it is single threaded: widgets are created, clicked
// and delivered events on the goroutine running the event loop. Only
// Dispatch, Post, Wake and widget labels may be used from other goroutines.
package tk

import (
	"context"
	"sync"

	"github.com/nnikolash/go-shstate"
	"github.com/nnikolash/go-shstate/updtree"
	"github.com/nnikolash/go-shstate/utils"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
)

var ErrNoWindow = errors.New("application has no windows")

type queued struct {
	ev    shstate.Event
	win   *Window
	fn    func()
	isFun bool
}

type App struct {
	mu      sync.Mutex
	pending *updtree.EventQueue[queued]
	reader  *updtree.EventReader[queued]
	main    *Window
	widgets map[string]*Widget

	wake chan struct{}
	l    utils.Logger
}

var (
	_ shstate.Host     = &App{}
	_ shstate.MenuHost = &App{}
)

func NewApp(l utils.Logger) *App {
	a := &App{
		pending: updtree.NewEventQueue[queued](),
		widgets: make(map[string]*Widget),
		wake:    make(chan struct{}, 1),
		l:       utils.OrNoop(l),
	}
	a.reader = a.pending.NewReader()

	return a
}

// NewWindow creates a window. The first window is the main one.
func (a *App) NewWindow(name string) *Window {
	w := &Window{
		app:  a,
		name: name,
	}
	w.container = container{owner: w, tree: updtree.NewNode[shstate.Event](name, nil)}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.main == nil {
		a.main = w
	}

	return w
}

func (a *App) MainWindow() *Window {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.main
}

// Widget returns widget by its name, or nil.
func (a *App) Widget(name string) *Widget {
	return a.widgets[name]
}

// Widgets returns all named widgets.
func (a *App) Widgets() map[string]*Widget {
	return maps.Clone(a.widgets)
}

func (a *App) register(w *Widget) {
	utils.Assert(a.widgets[w.name] == nil, "widget %q already exists", w.name)
	a.widgets[w.name] = w
}

func (a *App) OnInteract(target any, fn func()) {
	t, ok := target.(interactive)
	if !ok {
		panic(errors.Errorf("%T does not report interactions", target))
	}
	t.widget().callback = fn
}

func (a *App) OnEvent(target any, ev shstate.Event, fn func()) {
	t, ok := target.(eventTarget)
	if !ok {
		panic(errors.Errorf("%T does not receive events", target))
	}
	t.Handle(ev, fn)
}

func (a *App) AddMenuItem(menu any, label string, fn func()) (any, error) {
	m, ok := menu.(*MenuBar)
	if !ok {
		return nil, errors.Errorf("%T is not a menu", menu)
	}

	item := m.Add(label)
	item.callback = fn

	return item, nil
}

// Dispatch queues ev for delivery to the window owning scope, or to the main
// window when scope is nil. Safe for concurrent use; events queued from
// outside of the loop goroutine are delivered once the loop is woken.
func (a *App) Dispatch(ev shstate.Event, scope any) error {
	var win *Window

	switch s := scope.(type) {
	case nil:
		if win = a.MainWindow(); win == nil {
			return errors.WithStack(ErrNoWindow)
		}
	case *Window:
		win = s
	case windowed:
		win = s.Window()
	default:
		return errors.Errorf("cannot dispatch event %v to %T", ev, scope)
	}

	a.l.Tracef("Event %v queued for window %v", ev, win.name)
	a.pending.Publish(queued{ev: ev, win: win})

	return nil
}

// Post queues fn to be run on the loop goroutine and wakes the loop.
func (a *App) Post(fn func()) {
	a.pending.Publish(queued{fn: fn, isFun: true})
	a.Wake()
}

func (a *App) Wake() {
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// RunPending processes queued work until there is none left, including work
// queued while processing. Returns the number of processed items.
func (a *App) RunPending() int {
	processed := 0

	for {
		items := a.reader.Pull()
		if len(items) == 0 {
			return processed
		}

		for _, q := range items {
			if q.isFun {
				q.fn()
			} else {
				q.win.deliver(q.ev)
			}
			processed++
		}
	}
}

// Run is the event loop: it processes queued work and sleeps until woken.
// Returns when ctx is done, after processing what was queued by then.
func (a *App) Run(ctx context.Context) error {
	a.l.Debugf("Event loop started")
	defer a.l.Debugf("Event loop stopped")

	for {
		a.RunPending()

		select {
		case <-ctx.Done():
			a.RunPending()
			return ctx.Err()
		case <-a.wake:
		}
	}
}
