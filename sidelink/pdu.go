package sidelink

// rlcHeaderUMBytes and rlcHeaderAMBytes are the accounting sizes added to
// a PDU's size when the backing connection reports nonzero virtual
// buffer occupancy after a pop batch (spec.md §4.9). Sidelink broadcast
// traffic (D2D_MULTI) uses unacknowledged mode; anything else is
// accounted as acknowledged mode.
const (
	rlcHeaderUMBytes = 2
	rlcHeaderAMBytes = 3
)

// Assembler implements the PDU Assembler of spec.md §4.9.
type Assembler struct {
	cfg  *Config
	harq HarqFacade
}

// NewAssembler returns an Assembler bound to cfg and harq.
func NewAssembler(cfg *Config, harq HarqFacade) *Assembler {
	return &Assembler{cfg: cfg, harq: harq}
}

// Assemble builds one MAC PDU per (connection_id, codeword) entry of list
// with a nonzero sdu_count, pops the corresponding SDUs from mb, and
// inserts each PDU into the HARQ tx buffer at the first empty unit for
// currentHarq. destID/direction/preconfigured mirror the grant's PHY
// binding (spec.md §4.9: "user tx params (preconfigured or from grant)").
//
// Assemble returns an *InvariantViolation -- fatal per spec.md §7 -- if a
// scheduled connection has no mac buffer, or its buffer runs dry before
// sdu_count SDUs are popped.
func (a *Assembler) Assemble(list ScheduleList, mb *MacBuffers, g *Grant, now Clock, preconfigured *UserTxParams, destID int, currentHarq int) ([]*MacPdu, error) {
	var pdus []*MacPdu
	for _, entry := range list {
		if entry.SduCount <= 0 {
			continue
		}
		buf, ok := mb.Get(entry.ConnectionID)
		if !ok {
			return nil, &InvariantViolation{Reason: "no mac buffer for scheduled connection"}
		}

		txParams := preconfigured
		if txParams == nil && g != nil {
			txParams = g.UserTxParams
		}

		direction := DirD2DMulti
		if g != nil {
			direction = g.Direction
		}

		pdu := &MacPdu{
			Dest:         destID,
			Direction:    direction,
			CreatedAt:    now,
			HeaderLen:    MacHeaderLen,
			UserTxParams: txParams,
			Lcid:         LcidShortBsr,
			ConnectionID: entry.ConnectionID,
			Codeword:     entry.Codeword,
		}

		size := MacHeaderLen
		for i := 0; i < entry.SduCount; i++ {
			sdu, ok := buf.Pop()
			if !ok {
				return nil, &InvariantViolation{Reason: "popped empty mac buffer while sdu_count > 0 remained"}
			}
			size += sdu.Bytes
			pdu.SduCount++
			if sdu.HasMulticastGroup && pdu.MulticastGroup == 0 {
				pdu.MulticastGroup = sdu.MulticastGroupID
			}
		}

		if buf.VirtualOccupancy() > 0 {
			if direction == DirD2DMulti {
				size += rlcHeaderUMBytes
			} else {
				size += rlcHeaderAMBytes
			}
		}
		pdu.Size = size

		tx := a.harq.GetOrCreateTx(destID, direction)
		acid, cws, ok := tx.EmptyUnits(currentHarq)
		if !ok || len(cws) == 0 {
			continue // no empty HARQ unit: drop the PDU (spec.md §7, resource exhaustion)
		}
		tx.InsertPdu(acid, cws[0], pdu)
		pdus = append(pdus, pdu)
	}
	return pdus, nil
}
