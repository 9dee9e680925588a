package sidelink

// UETxHarqProcesses is the number of parallel HARQ TX processes a sidelink
// UE maintains (spec.md §4.5's "UE_TX_HARQ_PROCESSES").
const UETxHarqProcesses = 8

// Process is one HARQ process's view onto its codeword units (spec.md
// §4.6). Pdu is not in the source contract list but is required to hand
// the actual assembled PDU down to PHY once selected; readyUnitIDs alone
// would only report which codewords are occupied.
type Process interface {
	PduLength(cw int) int
	ReadyUnitIDs() []int
	ForceDrop()
	Pdu(cw int) *MacPdu
}

// TxBuf is the HARQ transmit-buffer contract of spec.md §4.6. Callers
// never look past this interface. This package has one concrete kind,
// MemTxBuf, which MemFacade builds for every direction; there is no
// separate unicast or D2D variant.
//
// RetransmitCandidate is a pragmatic addition beyond spec.md §4.6's
// listed methods: real HARQ ACK/NACK feedback is explicitly out of scope
// (spec.md §1), so the scheduler needs some way to ask "is a process
// already holding unsent units from a prior TTI" without reimplementing
// ACK tracking. It reports the first such process, in ascending id
// order, that has not yet been marked selected this TTI.
type TxBuf interface {
	EmptyUnits(processID int) (acid int, codewords []int, ok bool)
	InsertPdu(acid int, cw int, pdu *MacPdu)
	MarkSelected(unitList []int, layerCount int)
	SelectedProcess() (Process, bool)
	RetransmitCandidate() (processID int, ok bool)
	ClearSelected()
}

// RxBuf is the HARQ receive-buffer contract of spec.md §4.6.
type RxBuf interface {
	ExtractCorrectPdus() []*MacPdu
	PurgeCorrupted() int
}

// HarqFacade is the opaque HARQ buffer machinery of spec.md §4.6/§1: this
// package treats it as an external collaborator whose buffers are created
// on first use at get-or-create time. The direction argument selects
// which buffer is returned (MemFacade keys on destID and direction), not
// which concrete kind is built.
type HarqFacade interface {
	GetOrCreateTx(destID int, dir Direction) TxBuf
	GetOrCreateRx(destID int, dir Direction) RxBuf
}
