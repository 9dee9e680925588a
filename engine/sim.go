// SPDX-License-Identifier: GPL-3.0

package engine

import (
	"fmt"
	"sort"
)

// logAllMessages logs every message exchanged between nodes, mirroring
// the teacher's logAllPackets debug switch.
const logAllMessages = false

// Sim is a discrete-event simulator: a fixed set of Handlers, each run in
// its own goroutine as a node, exchanging Messages and Timers through a
// single round-robin dispatch loop (Design Notes §9's "cyclic
// message-loop control flow").
type Sim struct {
	handler []Handler
	now     Clock
	in      []chan inputNow
	out     []chan output
	timer   []timer
	table
	done bool
}

// NewSim returns a new Sim over handler, one node per entry, indexed in
// the given order.
func NewSim(handler []Handler) *Sim {
	var i []chan inputNow
	var o []chan output
	for range handler {
		i = append(i, make(chan inputNow))
		o = append(o, make(chan output))
	}
	return &Sim{
		handler: handler,
		in:      i,
		out:     o,
		table:   newTable(len(handler)),
	}
}

// Run runs the simulation to completion, or until a Handler returns an
// error.
func (s *Sim) Run() (err error) {
	for i, h := range s.handler {
		n := NodeID(i)
		no := newNode(h, s.in[n], s.out[n], n)
		s.setState(n, Running)
		go no.run()
	}

	n := NodeID(0)
	oo := make([]*output, len(s.handler))
	for {
		if s.State[n] == Running {
			var o output
			if oo[n] != nil {
				o = *oo[n]
			} else {
				o = <-s.out[n]
			}
			if logAllMessages {
				logf(s.now, n, "-> %T%v", o, o)
			}
			var ok bool
			if err, ok = o.handleSim(s, n); err != nil {
				break
			}
			if !ok {
				oo[n] = &o
			} else {
				oo[n] = nil
			}
		}

		if s.done {
			break
		}

		if s.Waiting == len(s.handler) {
			if len(s.timer) == 0 {
				err = fmt.Errorf("deadlock: no nodes and no timers running")
				return
			}
			var t timer
			t, s.timer = s.timer[0], s.timer[1:]
			s.now = t.at
			s.in[t.from] <- inputNow{ding{t.data}, s.now}
			s.setState(t.from, Running)
			n = t.from
		} else {
			n = s.next(n)
		}
	}

	for i := range s.handler {
		close(s.in[i])
		for range s.out[i] {
		}
	}
	return
}

// next returns the node after the given node.
func (s *Sim) next(from NodeID) NodeID {
	if from >= NodeID(len(s.handler)-1) {
		return 0
	}
	return from + 1
}

// State represents the status of a node.
type State int

const (
	Running State = iota
	Waiting
)

// table tracks the State of each node and running/waiting counts.
type table struct {
	State   []State
	Running int
	Waiting int
}

func newTable(size int) table {
	return table{State: make([]State, size), Running: size}
}

func (t *table) setState(node NodeID, state State) {
	if t.State[node] == state {
		return
	}
	switch t.State[node] {
	case Running:
		t.Running--
	case Waiting:
		t.Waiting--
	}
	t.State[node] = state
	switch state {
	case Running:
		t.Running++
	case Waiting:
		t.Waiting++
	}
}

// An output is sent by a node.
type output interface {
	handleSim(sim *Sim, from NodeID) (err error, ok bool)
}

// done is sent when a node's Handler returns from run.
type done struct {
	Err error
}

func (d done) handleSim(s *Sim, from NodeID) (error, bool) {
	s.done = true
	return d.Err, true
}

// wait is sent by a node to signify it is ready for further input.
type wait struct{}

func (wait) handleSim(sim *Sim, from NodeID) (error, bool) {
	sim.setState(from, Waiting)
	return nil, true
}

// A timer is posted by a node to request a ding at the given tick.
type timer struct {
	from NodeID
	at   Clock
	data any
}

func (t timer) handleSim(sim *Sim, from NodeID) (error, bool) {
	i := sort.Search(len(sim.timer), func(i int) bool {
		return sim.timer[i].at > t.at
	})
	if len(sim.timer) == i {
		sim.timer = append(sim.timer, t)
		return nil, true
	}
	sim.timer = append(sim.timer[:i+1], sim.timer[i:]...)
	sim.timer[i] = t
	return nil, true
}
