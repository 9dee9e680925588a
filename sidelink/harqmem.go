package sidelink

// memUnit is one codeword slot of a HARQ process.
type memUnit struct {
	pdu *MacPdu
}

// memProcess is the in-memory Process implementation. Codeword index is
// limited to {0,1} per spec.md §3.
type memProcess struct {
	id         int
	units      [2]*memUnit
	selected   bool
	layerCount int
}

func (p *memProcess) PduLength(cw int) int {
	if p.units[cw] == nil || p.units[cw].pdu == nil {
		return 0
	}
	return p.units[cw].pdu.Size
}

func (p *memProcess) Pdu(cw int) *MacPdu {
	if cw < 0 || cw > 1 || p.units[cw] == nil {
		return nil
	}
	return p.units[cw].pdu
}

func (p *memProcess) ReadyUnitIDs() []int {
	var ids []int
	for cw, u := range p.units {
		if u != nil && u.pdu != nil {
			ids = append(ids, cw)
		}
	}
	return ids
}

func (p *memProcess) ForceDrop() {
	p.units[0] = nil
	p.units[1] = nil
	p.selected = false
	p.layerCount = 0
}

// MemTxBuf is the in-memory TxBuf implementation. Processes are held in a
// fixed-size slice rather than a map so SelectedProcess iterates in a
// deterministic order (spec.md §8, L2).
type MemTxBuf struct {
	destID    int
	direction Direction
	processes [UETxHarqProcesses]*memProcess
}

func newMemTxBuf(destID int, dir Direction) *MemTxBuf {
	b := &MemTxBuf{destID: destID, direction: dir}
	for i := range b.processes {
		b.processes[i] = &memProcess{id: i}
	}
	return b
}

func (b *MemTxBuf) EmptyUnits(processID int) (int, []int, bool) {
	if processID < 0 || processID >= len(b.processes) {
		return 0, nil, false
	}
	p := b.processes[processID]
	var cws []int
	for cw, u := range p.units {
		if u == nil {
			cws = append(cws, cw)
		}
	}
	if len(cws) == 0 {
		return 0, nil, false
	}
	return p.id, cws, true
}

func (b *MemTxBuf) InsertPdu(acid int, cw int, pdu *MacPdu) {
	if acid < 0 || acid >= len(b.processes) || cw < 0 || cw > 1 {
		return
	}
	b.processes[acid].units[cw] = &memUnit{pdu: pdu}
}

func (b *MemTxBuf) MarkSelected(unitList []int, layerCount int) {
	for _, id := range unitList {
		if id < 0 || id >= len(b.processes) {
			continue
		}
		b.processes[id].selected = true
		b.processes[id].layerCount = layerCount
	}
}

func (b *MemTxBuf) SelectedProcess() (Process, bool) {
	for _, p := range b.processes {
		if p.selected {
			return p, true
		}
	}
	return nil, false
}

func (b *MemTxBuf) RetransmitCandidate() (int, bool) {
	for _, p := range b.processes {
		if !p.selected && len(p.ReadyUnitIDs()) > 0 {
			return p.id, true
		}
	}
	return 0, false
}

// ClearSelected resets the selected flag on every process. selected marks
// "already chosen for this TTI's transmission", not a persistent
// retransmission-pending flag, so it must be cleared at the start of
// every TTI's transmit attempt -- otherwise a process marked selected
// once would be permanently skipped by RetransmitCandidate and would
// wrongly keep matching SelectedProcess on every later TTI.
func (b *MemTxBuf) ClearSelected() {
	for _, p := range b.processes {
		p.selected = false
	}
}

// MemRxBuf is the in-memory RxBuf implementation. Deliver is the test /
// PHY-stub hook used to enqueue inbound PDUs ahead of a drain.
type MemRxBuf struct {
	destID    int
	direction Direction
	correct   []*MacPdu
	corrupted int
}

func newMemRxBuf(destID int, dir Direction) *MemRxBuf {
	return &MemRxBuf{destID: destID, direction: dir}
}

func (b *MemRxBuf) Deliver(pdu *MacPdu, corrupted bool) {
	if corrupted {
		b.corrupted++
		return
	}
	b.correct = append(b.correct, pdu)
}

func (b *MemRxBuf) ExtractCorrectPdus() []*MacPdu {
	out := b.correct
	b.correct = nil
	return out
}

func (b *MemRxBuf) PurgeCorrupted() int {
	n := b.corrupted
	b.corrupted = 0
	return n
}

type harqBufKey struct {
	destID int
	dir    Direction
}

// MemFacade is the in-memory HarqFacade implementation, owned exclusively
// by one TTIScheduler (spec.md §5's "HARQ buffers are exclusively owned by
// this MAC instance"). Its buffers live and die with the scheduler that
// created it -- Go's garbage collector resolves the source's "hb is never
// deleted" FIXME (spec.md §9) automatically once the scheduler is
// dropped; Reset is provided for callers (tests, graceful shutdown) that
// want to tie the buffers' lifetime to an explicit event instead.
type MemFacade struct {
	tx map[harqBufKey]*MemTxBuf
	rx map[harqBufKey]*MemRxBuf
}

// NewMemFacade returns an empty MemFacade.
func NewMemFacade() *MemFacade {
	return &MemFacade{
		tx: make(map[harqBufKey]*MemTxBuf),
		rx: make(map[harqBufKey]*MemRxBuf),
	}
}

func (f *MemFacade) GetOrCreateTx(destID int, dir Direction) TxBuf {
	k := harqBufKey{destID, dir}
	b, ok := f.tx[k]
	if !ok {
		b = newMemTxBuf(destID, dir)
		f.tx[k] = b
	}
	return b
}

func (f *MemFacade) GetOrCreateRx(destID int, dir Direction) RxBuf {
	k := harqBufKey{destID, dir}
	b, ok := f.rx[k]
	if !ok {
		b = newMemRxBuf(destID, dir)
		f.rx[k] = b
	}
	return b
}

// Reset destroys every buffer this facade owns.
func (f *MemFacade) Reset() {
	f.tx = make(map[harqBufKey]*MemTxBuf)
	f.rx = make(map[harqBufKey]*MemRxBuf)
}
