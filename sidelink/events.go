package sidelink

// InboundEvent is one message delivered to Step for the current TTI.
// Concrete types: NewDataEvent, CSRsEvent, CBREvent.
type InboundEvent interface{ isInboundEvent() }

// NewDataEvent carries the up-in newDataPkt notification (spec.md §6).
type NewDataEvent struct{ Pkt NewDataPkt }

// CSRsEvent carries a CSR list reported by PHY (spec.md §6).
type CSRsEvent struct{ Csrs CSRList }

// CBREvent carries a CBR sample reported by PHY (spec.md §6).
type CBREvent struct{ Pkt CbrPkt }

func (NewDataEvent) isInboundEvent() {}
func (CSRsEvent) isInboundEvent()    {}
func (CBREvent) isInboundEvent()     {}

// OutboundEvent is one message Step emits for the caller to route.
// Concrete types: GrantPktOut, MacPduOut, UpperDeliverOut, CbrUpOut.
type OutboundEvent interface{ isOutboundEvent() }

// GrantPktOut is a GRANTPKT sent down to PHY (spec.md §6).
type GrantPktOut struct{ Pkt GrantPkt }

// MacPduOut is an assembled MAC PDU sent down to PHY after a successful
// HARQ flush (spec.md §6/§4.10).
type MacPduOut struct{ Pdu *MacPdu }

// UpperDeliverOut is a correctly received PDU handed upward after RX HARQ
// drain (spec.md §4.10 step 1).
type UpperDeliverOut struct{ Pdu *MacPdu }

// CbrUpOut forwards a CBR sample upward verbatim (spec.md §6).
type CbrUpOut struct{ Cbr int }

func (GrantPktOut) isOutboundEvent()     {}
func (MacPduOut) isOutboundEvent()       {}
func (UpperDeliverOut) isOutboundEvent() {}
func (CbrUpOut) isOutboundEvent()        {}
