// SPDX-License-Identifier: GPL-3.0

package engine

import (
	"fmt"

	"github.com/ucc-mobile/ltemac4/sidelink"
)

// SduPush queues one Sdu directly into a mac buffer ahead of a TTI,
// modeling the RLC layer's proactive SDU delivery (spec.md §1 declares
// the RLC layer external; this harness feeds its buffer directly rather
// than simulating RLC segmentation).
type SduPush struct {
	ConnectionID int
	Sdu          sidelink.Sdu
}

// UpperEvent is one scheduled upper-layer action at tick At.
type UpperEvent struct {
	At      Clock
	NewData *sidelink.NewDataPkt
	Push    *SduPush
}

// UpperStub stands in for the upper layer (RLC/application) spec.md §1
// declares out of scope: it issues newDataPkt notifications and feeds
// SDUs on a fixed schedule, and logs deliveries/CBR echoes from the MAC
// node.
type UpperStub struct {
	MacID  NodeID
	Sched  *sidelink.TTIScheduler
	Events []UpperEvent

	idx int
}

// NewUpperStub returns an UpperStub wired to sched's mac buffers.
func NewUpperStub(macID NodeID, sched *sidelink.TTIScheduler, events []UpperEvent) *UpperStub {
	return &UpperStub{MacID: macID, Sched: sched, Events: events}
}

// Start implements Starter.
func (u *UpperStub) Start(n Node) error {
	if len(u.Events) == 0 {
		n.Shutdown()
		return nil
	}
	n.Timer(u.Events[0].At-n.Now(), nil)
	return nil
}

// Ding implements Dinger.
func (u *UpperStub) Ding(data any, n Node) error {
	ev := u.Events[u.idx]
	if ev.Push != nil {
		u.Sched.Buffers().GetOrCreate(ev.Push.ConnectionID).Push(ev.Push.Sdu)
	}
	if ev.NewData != nil {
		n.Send(Envelope{Dest: u.MacID, Payload: *ev.NewData})
	}
	u.idx++
	if u.idx < len(u.Events) {
		n.Timer(u.Events[u.idx].At-n.Now(), nil)
	} else {
		n.Shutdown()
	}
	return nil
}

// Handle implements Handler.
func (u *UpperStub) Handle(msg Message, n Node) error {
	env, ok := msg.(Envelope)
	if !ok {
		return fmt.Errorf("upper stub: unexpected message type %T", msg)
	}
	switch e := env.Payload.(type) {
	case sidelink.UpperDeliverOut:
		n.Logf("upper recv pdu: size=%d", e.Pdu.Size)
	case sidelink.CbrUpOut:
		n.Logf("upper recv cbr: %d", e.Cbr)
	default:
		return fmt.Errorf("upper stub: unexpected payload type %T", e)
	}
	return nil
}
