package tk

import (
	"fmt"
	"sync"

	"github.com/nnikolash/go-shstate"
	"github.com/nnikolash/go-shstate/updtree"
)

type interactive interface {
	widget() *Widget
}

type eventTarget interface {
	Handle(ev shstate.Event, fn func())
}

type windowed interface {
	Window() *Window
}

// container is the part of windows and groups which creates child widgets.
type container struct {
	owner *Window
	tree  *updtree.Node[shstate.Event]
}

func (c *container) NewButton(name, label string) *Button {
	b := &Button{}
	c.add(&b.Widget, name, label)
	return b
}

func (c *container) NewLabel(name, text string) *Label {
	l := &Label{}
	c.add(&l.Widget, name, text)
	return l
}

func (c *container) NewMenuBar(name string) *MenuBar {
	m := &MenuBar{}
	c.add(&m.Widget, name, "")
	return m
}

// NewGroup creates a group of widgets. Events reach the group first and
// then its children, unless the group is hidden.
func (c *container) NewGroup(name string) *Group {
	g := &Group{}
	c.add(&g.Widget, name, "")
	g.container = container{owner: c.owner, tree: g.node}
	return g
}

func (c *container) add(wd *Widget, name, label string) {
	wd.setup(c.owner, c.tree, name, label)
	c.owner.app.register(wd)
}

// Window is a top level container. Events delivered to a window reach its
// own handlers first, then its widgets, parents before children.
type Window struct {
	container
	app      *App
	name     string
	handlers map[shstate.Event][]func()
}

func (w *Window) Name() string {
	return w.name
}

func (w *Window) Handle(ev shstate.Event, fn func()) {
	if w.handlers == nil {
		w.handlers = make(map[shstate.Event][]func())
	}
	w.handlers[ev] = append(w.handlers[ev], fn)
}

func (w *Window) deliver(ev shstate.Event) {
	w.app.l.Tracef("Delivering event %v to window %v", ev, w.name)

	for _, fn := range w.handlers[ev] {
		fn()
	}

	w.tree.NotifyUpdated(ev)
}

// Widget is the common part of all widgets.
type Widget struct {
	name     string
	win      *Window
	node     *updtree.Node[shstate.Event]
	callback func()
	handlers map[shstate.Event][]func()
	hidden   bool

	labelMu sync.Mutex
	label   string
}

// setup initializes wd in place and subscribes it to parent.
func (wd *Widget) setup(win *Window, parent *updtree.Node[shstate.Event], name, label string) {
	wd.name = name
	wd.win = win
	wd.label = label
	wd.node = updtree.NewNode(name, wd.receive)

	parent.Subscribe(wd.node)
}

// receive runs the handlers of ev and passes it on to the children.
// Hidden widgets ignore events.
func (wd *Widget) receive(ev shstate.Event) {
	if wd.hidden {
		return
	}

	wd.win.app.l.Tracef("Event %v reached %v", ev, wd.node.Name())

	for _, fn := range wd.handlers[ev] {
		fn()
	}

	wd.node.NotifyUpdated(ev)
}

func (wd *Widget) Name() string {
	return wd.name
}

func (wd *Widget) Window() *Window {
	return wd.win
}

func (wd *Widget) Label() string {
	wd.labelMu.Lock()
	defer wd.labelMu.Unlock()

	return wd.label
}

func (wd *Widget) SetLabel(label string) {
	wd.labelMu.Lock()
	defer wd.labelMu.Unlock()

	wd.label = label
}

// Handle registers fn to be called when ev is delivered to the widget.
func (wd *Widget) Handle(ev shstate.Event, fn func()) {
	if wd.handlers == nil {
		wd.handlers = make(map[shstate.Event][]func())
	}
	wd.handlers[ev] = append(wd.handlers[ev], fn)
}

// Hide stops delivery of events to the widget and everything inside it.
func (wd *Widget) Hide() {
	wd.hidden = true
}

// Show makes the widget visible again and redraws it: StateChanged is
// delivered to the widget and everything inside it.
func (wd *Widget) Show() {
	if !wd.hidden {
		return
	}

	wd.hidden = false
	wd.receive(shstate.StateChanged)
}

func (wd *Widget) Visible() bool {
	return !wd.hidden
}

// Activate simulates user interaction.
func (wd *Widget) Activate() {
	if wd.callback != nil {
		wd.callback()
	}
}

func (wd *Widget) widget() *Widget {
	return wd
}

func (wd *Widget) String() string {
	return fmt.Sprintf("%v/%v", wd.win.name, wd.name)
}

type Button struct {
	Widget
}

func (b *Button) Click() {
	b.Activate()
}

// Label displays text and does not react to the user.
type Label struct {
	Widget
}

// Group holds widgets of a part of a window, which can be hidden at once.
type Group struct {
	Widget
	container
}

// MenuBar holds menu items. Events delivered to the bar reach its items.
type MenuBar struct {
	Widget
	items []*MenuItem
}

// Add appends an item labeled with path.
func (m *MenuBar) Add(path string) *MenuItem {
	item := &MenuItem{}
	item.setup(m.win, m.node, m.name+":"+path, path)

	m.items = append(m.items, item)
	return item
}

// Item returns the item with the given path, or nil.
func (m *MenuBar) Item(path string) *MenuItem {
	for _, item := range m.items {
		if item.name == m.name+":"+path {
			return item
		}
	}
	return nil
}

type MenuItem struct {
	Widget
}
