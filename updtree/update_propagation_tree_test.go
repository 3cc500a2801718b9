package updtree_test

import (
	"testing"

	"github.com/nnikolash/go-shstate/updtree"
	"github.com/stretchr/testify/require"
)

const (
	evRedraw = 100
	evResize = 101
)

type deliveryLog struct {
	names  []string
	events []int
}

func (l *deliveryLog) reset() {
	l.names = nil
	l.events = nil
}

// newNode creates a node which records every delivery into log and, if
// forward is set, passes the event further down.
func newNode(name string, log *deliveryLog, forward bool) *updtree.Node[int] {
	n := updtree.NewNode[int](name, nil)
	n.SetHandler(func(ev int) {
		log.names = append(log.names, name)
		log.events = append(log.events, ev)

		if forward {
			n.NotifyUpdated(ev)
		}
	})

	return n
}

func TestUpdatePropagationTree_WidgetOrder(t *testing.T) {
	t.Parallel()

	var log deliveryLog

	window := newNode("window", &log, true)
	toolbar := newNode("toolbar", &log, true)
	panel := newNode("panel", &log, true)
	button := newNode("button", &log, true)
	label1 := newNode("label1", &log, true)
	label2 := newNode("label2", &log, true)

	window.Subscribe(toolbar)
	window.Subscribe(panel)
	toolbar.Subscribe(button)
	panel.Subscribe(label1)
	panel.Subscribe(label2)

	for i := 0; i < 2; i++ {
		log.reset()
		window.NotifyUpdated(evRedraw)

		require.Equal(t, []string{"toolbar", "panel", "button", "label1", "label2"}, log.names)
		require.Equal(t, []int{evRedraw, evRedraw, evRedraw, evRedraw, evRedraw}, log.events)
	}

	log.reset()
	panel.NotifyUpdated(evResize)
	require.Equal(t, []string{"label1", "label2"}, log.names)
	require.Equal(t, []int{evResize, evResize}, log.events)

	for _, n := range []*updtree.Node[int]{window, toolbar, panel, button, label1, label2} {
		require.False(t, n.HasUpdated(), n.Name())
	}
}

func TestUpdatePropagationTree_SharedSubscriberHandledOnce(t *testing.T) {
	t.Parallel()

	var log deliveryLog

	window := newNode("window", &log, true)
	left := newNode("left", &log, true)
	right := newNode("right", &log, true)
	status := newNode("status", &log, true)

	window.Subscribe(left)
	window.Subscribe(right)
	left.Subscribe(status)
	right.Subscribe(status)

	window.NotifyUpdated(evRedraw)
	require.Equal(t, []string{"left", "right", "status"}, log.names)

	log.reset()
	left.NotifyUpdated(evRedraw)
	require.Equal(t, []string{"status"}, log.names)
}

func TestUpdatePropagationTree_PartialForwarding(t *testing.T) {
	t.Parallel()

	var log deliveryLog
	var fromLeft, fromRight bool

	window := newNode("window", &log, true)
	left := newNode("left", &log, true)
	right := newNode("right", &log, false)

	status := updtree.NewNode[int]("status", nil)
	status.SetHandler(func(ev int) {
		log.names = append(log.names, "status")
		fromLeft = left.HasUpdated()
		fromRight = right.HasUpdated()
	})

	window.Subscribe(left)
	window.Subscribe(right)
	left.Subscribe(status)
	right.Subscribe(status)

	window.NotifyUpdated(evRedraw)
	require.Equal(t, []string{"left", "right", "status"}, log.names)
	require.True(t, fromLeft)
	require.False(t, fromRight)

	require.False(t, left.HasUpdated())
	require.False(t, right.HasUpdated())

	log.reset()
	right.NotifyUpdated(evRedraw)
	require.Equal(t, []string{"status"}, log.names)
	require.False(t, fromLeft)
	require.True(t, fromRight)
}

func TestUpdatePropagationTree_LateSubscription(t *testing.T) {
	t.Parallel()

	var log deliveryLog

	root := newNode("root", &log, true)
	win := newNode("win", &log, true)
	btn := newNode("btn", &log, true)

	root.Subscribe(win)
	win.Subscribe(btn)

	root.NotifyUpdated(evRedraw)
	require.Equal(t, []string{"win", "btn"}, log.names)

	// Subscribing after the update order was cached must be picked up.
	label := newNode("label", &log, true)
	win.Subscribe(label)

	log.reset()
	root.NotifyUpdated(evRedraw)
	require.Equal(t, []string{"win", "btn", "label"}, log.names)

	require.Equal(t, "label", label.Name())
}

func TestUpdatePropagationTree_HandlerNotForwarding(t *testing.T) {
	t.Parallel()

	var log deliveryLog

	root := newNode("root", &log, true)
	win := newNode("win", &log, false)
	btn := newNode("btn", &log, true)

	root.Subscribe(win)
	win.Subscribe(btn)

	root.NotifyUpdated(evRedraw)
	require.Equal(t, []string{"win"}, log.names)
	require.False(t, win.HasUpdated())
}

func TestUpdatePropagationTree_NoHandler(t *testing.T) {
	t.Parallel()

	var log deliveryLog

	root := newNode("root", &log, true)
	mid := updtree.NewNode[int]("mid", nil)
	leaf := newNode("leaf", &log, true)

	root.Subscribe(mid)
	mid.Subscribe(leaf)

	require.NotPanics(t, func() { root.NotifyUpdated(evRedraw) })
	require.Empty(t, log.names)
}

func TestUpdatePropagationTree_Cycle(t *testing.T) {
	t.Parallel()

	var log deliveryLog

	a := newNode("a", &log, true)
	b := newNode("b", &log, true)
	a.Subscribe(b)
	b.Subscribe(a)

	require.Panics(t, func() { a.NotifyUpdated(evRedraw) })
}
