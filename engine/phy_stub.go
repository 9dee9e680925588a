// SPDX-License-Identifier: GPL-3.0

package engine

import (
	"fmt"

	"github.com/ucc-mobile/ltemac4/sidelink"
)

// PhyEvent is one scheduled PHY-layer delivery: a CSR list, a CBR
// sample, or both, fired at tick At.
type PhyEvent struct {
	At   Clock
	Csrs sidelink.CSRList
	Cbr  *int
}

// PhyStub stands in for the PHY layer spec.md §1 declares out of scope:
// it feeds CSRs/CBR samples to the MAC node on a fixed schedule and logs
// what the MAC node sends down.
type PhyStub struct {
	MacID  NodeID
	Events []PhyEvent

	idx int
}

// NewPhyStub returns a PhyStub that delivers events to macID.
func NewPhyStub(macID NodeID, events []PhyEvent) *PhyStub {
	return &PhyStub{MacID: macID, Events: events}
}

// Start implements Starter.
func (p *PhyStub) Start(n Node) error {
	if len(p.Events) == 0 {
		n.Shutdown()
		return nil
	}
	n.Timer(p.Events[0].At-n.Now(), nil)
	return nil
}

// Ding implements Dinger.
func (p *PhyStub) Ding(data any, n Node) error {
	ev := p.Events[p.idx]
	if len(ev.Csrs) > 0 {
		n.Send(Envelope{Dest: p.MacID, Payload: ev.Csrs})
	}
	if ev.Cbr != nil {
		n.Send(Envelope{Dest: p.MacID, Payload: sidelink.CbrPkt{Cbr: *ev.Cbr}})
	}
	p.idx++
	if p.idx < len(p.Events) {
		n.Timer(p.Events[p.idx].At-n.Now(), nil)
	} else {
		n.Shutdown()
	}
	return nil
}

// Handle implements Handler.
func (p *PhyStub) Handle(msg Message, n Node) error {
	env, ok := msg.(Envelope)
	if !ok {
		return fmt.Errorf("phy stub: unexpected message type %T", msg)
	}
	switch e := env.Payload.(type) {
	case sidelink.GrantPktOut:
		n.Logf("phy recv grant: mcs=%d subch=%d+%d", e.Pkt.Grant.Mcs, e.Pkt.Grant.StartingSubchannel, e.Pkt.Grant.NumSubchannels)
	case sidelink.MacPduOut:
		n.Logf("phy recv pdu: size=%d sdus=%d", e.Pdu.Size, e.Pdu.SduCount)
	default:
		return fmt.Errorf("phy stub: unexpected payload type %T", e)
	}
	return nil
}
