package updtree

import (
	"fmt"
	"sync/atomic"

	"github.com/nnikolash/go-shstate/utils"
	"github.com/pkg/errors"
)

// Node is an element of an update propagation tree. A node is told when any
// node it is subscribed to reports an update, and decides itself whether the
// update goes further down by calling NotifyUpdated from its handler.
//
// Every node reachable from the node starting a pass is visited at most once
// per pass, after all of its reachable upstream nodes.
//
// Not safe for concurrent use: all nodes of one tree must be used from one
// goroutine.
type Node[Ev any] struct {
	name    string
	handler func(ev Ev)

	subscribers []*Node[Ev]

	order        []*Node[Ev]
	orderVersion uint64

	// Reported an update during the current pass.
	updated bool
	// One of the nodes this node is subscribed to reported an update
	// during the current pass.
	upstreamUpdated bool
}

// Bumped on every Subscribe, so that cached pass orders are recomputed.
var topologyVersion atomic.Uint64

func NewNode[Ev any](name string, handler func(ev Ev)) *Node[Ev] {
	return &Node[Ev]{
		name:    name,
		handler: handler,
	}
}

func (n *Node[Ev]) Name() string {
	return n.name
}

func (n *Node[Ev]) SetHandler(handler func(ev Ev)) {
	n.handler = handler
}

// Subscribe makes sub receive updates reported by n.
func (n *Node[Ev]) Subscribe(sub *Node[Ev]) {
	n.subscribers = append(n.subscribers, sub)
	topologyVersion.Add(1)
}

// HasUpdated reports whether n reported an update during the current pass.
// Lets a handler find out which of its upstream nodes has changed.
func (n *Node[Ev]) HasUpdated() bool {
	return n.updated
}

// NotifyUpdated reports an update of n to its subscribers. Called outside of
// a pass it starts one: handlers of all affected nodes below n run before it
// returns. Called from n's own handler it only marks the subscribers, the
// running pass reaches them.
func (n *Node[Ev]) NotifyUpdated(ev Ev) {
	n.updated = true

	for _, sub := range n.subscribers {
		sub.upstreamUpdated = true
	}

	if n.upstreamUpdated {
		return
	}

	n.pass(ev)
}

func (n *Node[Ev]) pass(ev Ev) {
	order := n.passOrder()

	for _, node := range order {
		if node.upstreamUpdated {
			if node.handler != nil {
				node.handler(ev)
			}
			node.upstreamUpdated = false
		}
	}

	for _, node := range order {
		node.updated = false
	}
}

func (n *Node[Ev]) passOrder() []*Node[Ev] {
	v := topologyVersion.Load()
	if n.order != nil && n.orderVersion == v {
		return n.order
	}

	graph := make(utils.Graph[*Node[Ev]])
	var discovered []*Node[Ev]

	var visit func(node *Node[Ev])
	visit = func(node *Node[Ev]) {
		if _, seen := graph[node]; seen {
			return
		}
		graph[node] = node.subscribers
		discovered = append(discovered, node)

		for _, sub := range node.subscribers {
			visit(sub)
		}
	}
	visit(n)

	order, err := utils.StableTopologicalSortWithSortedKeys(graph, discovered)
	if err != nil {
		panic(errors.Wrapf(err, "invalid update tree below %v", n))
	}

	n.order = order
	n.orderVersion = v

	return order
}

func (n *Node[Ev]) String() string {
	return fmt.Sprintf("%v-%p", n.name, n)
}
