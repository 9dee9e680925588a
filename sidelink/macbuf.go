package sidelink

// Sdu is one service data unit queued for a logical channel connection,
// the unit the PDU Assembler pops from a MacBuffer (spec.md §4.9).
type Sdu struct {
	Bytes            int
	MulticastGroupID int
	HasMulticastGroup bool
}

// MacBuffer is the per-connection SDU queue spec.md §3 calls "the mac
// buffer for that connection". VirtualOccupancy models the RLC's
// reported post-pop backlog (spec.md §4.9's "virtual buffer occupancy").
type MacBuffer struct {
	queue             []Sdu
	virtualOccupancy  int
}

// Push enqueues an SDU.
func (b *MacBuffer) Push(sdu Sdu) {
	b.queue = append(b.queue, sdu)
}

// Pop dequeues the oldest SDU. ok is false on an empty buffer -- spec.md
// §4.9/§7 treats popping from an empty buffer with sdu_count > 0 as a
// fatal InvariantViolation, so callers must check Len first.
func (b *MacBuffer) Pop() (Sdu, bool) {
	if len(b.queue) == 0 {
		return Sdu{}, false
	}
	sdu := b.queue[0]
	b.queue = b.queue[1:]
	return sdu, true
}

// Len reports the number of queued SDUs.
func (b *MacBuffer) Len() int { return len(b.queue) }

// SetVirtualOccupancy records the RLC-reported backlog after a batch of
// pops (spec.md §4.9).
func (b *MacBuffer) SetVirtualOccupancy(n int) { b.virtualOccupancy = n }

// VirtualOccupancy reports the last recorded backlog.
func (b *MacBuffer) VirtualOccupancy() int { return b.virtualOccupancy }

// MacBuffers is the set of per-connection mac buffers owned by one MAC
// instance.
type MacBuffers struct {
	buffers map[int]*MacBuffer
}

// NewMacBuffers returns an empty MacBuffers set.
func NewMacBuffers() *MacBuffers {
	return &MacBuffers{buffers: make(map[int]*MacBuffer)}
}

// Get looks up the buffer for cid without creating one -- the PDU
// Assembler's "absent mac buffer for the cid" fatal case (spec.md §4.9)
// uses this to detect the missing-buffer condition.
func (m *MacBuffers) Get(cid int) (*MacBuffer, bool) {
	b, ok := m.buffers[cid]
	return b, ok
}

// GetOrCreate returns the buffer for cid, creating an empty one if
// absent. Used by the upper-layer stub that feeds SDUs in, not by the
// PDU Assembler (which must see absence as an error).
func (m *MacBuffers) GetOrCreate(cid int) *MacBuffer {
	b, ok := m.buffers[cid]
	if !ok {
		b = &MacBuffer{}
		m.buffers[cid] = b
	}
	return b
}

// ConnectionIDs returns the known connection ids in ascending order, for
// deterministic iteration by the schedule-list builder.
func (m *MacBuffers) ConnectionIDs() []int {
	ids := make([]int, 0, len(m.buffers))
	for cid := range m.buffers {
		ids = append(ids, cid)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// ScheduleEntry is one row of the ephemeral Schedule List of spec.md §3:
// a (connection_id, codeword) pair with an sdu_count to pop.
type ScheduleEntry struct {
	ConnectionID int
	Codeword     int
	SduCount     int
}

// ScheduleList is the per-TTI mapping the PDU Assembler consumes once.
type ScheduleList []ScheduleEntry

// BuildScheduleList is a minimal round-robin logical-channel scheduler
// standing in for the external upper-layer scheduler spec.md §3 leaves
// unspecified ("produced by the upper-layer logical-channel scheduler
// (external)"): every connection with queued SDUs is granted its entire
// backlog on the given codeword, in ascending connection-id order.
func BuildScheduleList(mb *MacBuffers, cw int) ScheduleList {
	var list ScheduleList
	for _, cid := range mb.ConnectionIDs() {
		buf, _ := mb.Get(cid)
		if buf.Len() > 0 {
			list = append(list, ScheduleEntry{ConnectionID: cid, Codeword: cw, SduCount: buf.Len()})
		}
	}
	return list
}
