// SPDX-License-Identifier: GPL-3.0

// Package engine is the discrete-event harness that drives the sidelink
// MAC core: message dispatch, self-message timers, and node scheduling
// gates (spec.md §1's "simulation framework plumbing", kept external to
// the core per Design Notes §9's "model as a pure step function" split).
package engine

import (
	"fmt"

	"github.com/ucc-mobile/ltemac4/sidelink"
)

// Clock is the tick-counted simulation clock shared with the sidelink
// core.
type Clock = sidelink.Clock

// NodeID is the index of a node in the order added to the Sim.
type NodeID int

// node is the node implementation.
type node struct {
	handler  Handler
	in       chan inputNow
	out      chan output
	now      Clock
	id       NodeID
	shutdown bool
}

// newNode returns a new node.
func newNode(handler Handler, in chan inputNow, out chan output, id NodeID) *node {
	return &node{handler: handler, in: in, out: out, id: id}
}

// run runs the node.
func (n *node) run() {
	var err error
	defer func() {
		n.out <- done{err}
		close(n.out)
	}()
	if s, ok := n.handler.(Starter); ok {
		if err = s.Start(n); err != nil {
			return
		}
	}
	n.out <- wait{}
	for i := range n.in {
		n.now = i.nowVal
		if err = i.handleNode(n); err != nil {
			return
		}
		if n.shutdown {
			break
		}
		n.out <- wait{}
	}
	if s, ok := n.handler.(Stopper); ok {
		err = s.Stop(n)
	}
}

// Timer implements Node.
func (n *node) Timer(delay Clock, data any) {
	n.out <- timer{n.id, n.now + delay, data}
}

// Send implements Node.
func (n *node) Send(m Message) {
	n.out <- m
}

// Now implements Node.
func (n *node) Now() Clock {
	return n.now
}

// Logf emits a message tagged with this node's id and current tick.
func (n *node) Logf(format string, a ...any) {
	logf(n.now, n.id, format, a...)
}

// Shutdown implements Node.
func (n *node) Shutdown() {
	n.shutdown = true
}

// An input is sent to a node.
type input interface {
	handleNode(node *node) error
}

// inputNow pairs an input with the tick it should be delivered at,
// letting ding and Envelope implement only handleNode while the
// dispatcher still knows when each was scheduled.
type inputNow struct {
	input
	nowVal Clock
}

// Node provides an API for node implementations.
type Node interface {
	Timer(delay Clock, data any)
	Send(Message)
	Now() Clock
	Logf(format string, a ...any)
	Shutdown()
}

// ding is sent by the simulator to a node after a timer has completed.
type ding struct {
	data any
}

// handleNode implements input.
func (d ding) handleNode(node *node) (err error) {
	if r, ok := node.handler.(Dinger); ok {
		err = r.Ding(d.data, node)
	} else {
		err = fmt.Errorf("node %d called Timer so must implement Dinger", node.id)
	}
	return
}

// A Starter runs in a node at the start of the simulation.
type Starter interface {
	Start(node Node) error
}

// A Handler runs in a node to process received messages.
type Handler interface {
	Handle(msg Message, node Node) error
}

// Dinger wraps the Ding method to handle elapsed timers.
type Dinger interface {
	Ding(data any, node Node) error
}

// A Stopper runs in a node at the end of the simulation.
type Stopper interface {
	Stop(node Node) error
}
