// SPDX-License-Identifier: GPL-3.0

package engine

import (
	"fmt"

	"github.com/ucc-mobile/ltemac4/sidelink"
)

// MacNode wires a sidelink.TTIScheduler into the discrete-event harness:
// it buffers inbound messages until the next TTI boundary, then runs one
// Step and routes the resulting packets and observations (Design Notes
// §9's pure step function, given a scheduler integration here).
type MacNode struct {
	Sched   *sidelink.TTIScheduler
	PhyID   NodeID
	UpperID NodeID
	Metrics *Metrics

	pending []sidelink.InboundEvent
}

// NewMacNode returns a MacNode driving sched, sending GRANTPKT/PDU
// traffic to phyID and upward deliveries/CBR echoes to upperID.
func NewMacNode(sched *sidelink.TTIScheduler, phyID, upperID NodeID) *MacNode {
	return &MacNode{Sched: sched, PhyID: phyID, UpperID: upperID}
}

// Start implements Starter: arms the first TTI timer.
func (m *MacNode) Start(n Node) error {
	n.Timer(sidelink.TTI, nil)
	return nil
}

// Ding implements Dinger: runs one TTI of the scheduler and routes its
// output, then re-arms the next TTI timer.
func (m *MacNode) Ding(data any, n Node) error {
	out, obs, err := m.Sched.Step(n.Now(), m.pending)
	m.pending = nil
	if err != nil {
		return err
	}
	for _, o := range out {
		m.route(o, n)
	}
	for _, ob := range obs {
		n.Logf("%s=%d", ob.Signal, ob.Value)
	}
	if m.Metrics != nil {
		m.Metrics.Observe(obs)
	}
	n.Timer(sidelink.TTI, nil)
	return nil
}

func (m *MacNode) route(o sidelink.OutboundEvent, n Node) {
	switch o.(type) {
	case sidelink.GrantPktOut, sidelink.MacPduOut:
		n.Send(Envelope{Dest: m.PhyID, Payload: o})
	case sidelink.UpperDeliverOut, sidelink.CbrUpOut:
		n.Send(Envelope{Dest: m.UpperID, Payload: o})
	}
}

// Handle implements Handler: buffers inbound PHY/upper-layer messages
// for the next Ding, rather than stepping the scheduler mid-TTI (spec.md
// §5's ordering guarantees hold only across whole-TTI boundaries).
func (m *MacNode) Handle(msg Message, n Node) error {
	env, ok := msg.(Envelope)
	if !ok {
		return fmt.Errorf("mac node: unexpected message type %T", msg)
	}
	switch p := env.Payload.(type) {
	case sidelink.CSRList:
		m.pending = append(m.pending, sidelink.CSRsEvent{Csrs: p})
	case sidelink.CbrPkt:
		m.pending = append(m.pending, sidelink.CBREvent{Pkt: p})
	case sidelink.NewDataPkt:
		m.pending = append(m.pending, sidelink.NewDataEvent{Pkt: p})
	default:
		return fmt.Errorf("mac node: unexpected payload type %T", p)
	}
	return nil
}
