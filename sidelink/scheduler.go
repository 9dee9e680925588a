package sidelink

// TTIScheduler drives the per-TTI main loop of spec.md §4.10, consulting
// Grant State, the HARQ Facade, the PDU Assembler and the MCS Selector on
// every tick. It is a pure step function (Design Notes §9): Step takes
// the current tick and this TTI's inbound events and returns outbound
// events and observations, with no goroutines or channels inside.
//
// The discrete-event harness that actually drives TTIScheduler (message
// dispatch, self-messages, gates) lives outside this package.
type TTIScheduler struct {
	cfg       *Config
	rnd       *RandomSource
	cbrPolicy *CBRPolicy
	acceptor  *Acceptor
	generator *Generator
	assembler *Assembler
	harq      HarqFacade
	buffers   *MacBuffers

	localNodeID  int
	groupDestID  int
	preconfigured *UserTxParams

	grant *Grant

	currentHarq            int
	currentHarqInitialized bool

	missedTransmissions int
	lastCbr             int

	// retxRemaining tracks blind-HARQ-retransmission budget per process
	// id, since real ACK/NACK feedback is out of scope (spec.md §1) and
	// Mode 4 V2V broadcast retransmission is blind and count-bounded by
	// config.AllowedRetx / the CBR-adjusted allowed_retx_eff.
	retxRemaining map[int]int
}

// NewTTIScheduler wires a complete TTIScheduler from its collaborators.
// localNodeID stamps GRANTPKT source/destination (spec.md §4.8);
// groupDestID is the sidelink broadcast group the HARQ facade is keyed
// on.
func NewTTIScheduler(cfg *Config, rnd *RandomSource, harq HarqFacade, localNodeID, groupDestID int) *TTIScheduler {
	cbrPolicy := NewCBRPolicy(cfg)
	return &TTIScheduler{
		cfg:           cfg,
		rnd:           rnd,
		cbrPolicy:     cbrPolicy,
		acceptor:      NewAcceptor(cfg, rnd),
		generator:     NewGenerator(cfg, rnd, cbrPolicy, localNodeID),
		assembler:     NewAssembler(cfg, harq),
		harq:          harq,
		buffers:       NewMacBuffers(),
		localNodeID:   localNodeID,
		groupDestID:   groupDestID,
		retxRemaining: make(map[int]int),
	}
}

// Buffers exposes the per-connection mac buffers so an upper-layer stub
// can push Sdus ahead of the TTI they should be scheduled in.
func (s *TTIScheduler) Buffers() *MacBuffers { return s.buffers }

// Grant reports the currently held grant, or nil if none (state None).
func (s *TTIScheduler) Grant() *Grant { return s.grant }

// Step advances the scheduler by one TTI, per spec.md §4.10/§5.
func (s *TTIScheduler) Step(now Clock, in []InboundEvent) ([]OutboundEvent, []Observation, error) {
	var out []OutboundEvent
	var obs []Observation

	// Step 1: drain RX HARQ buffers (spec.md §4.10 step 1, §4 step 4).
	s.drainRx(&out)

	// Process this TTI's inbound events in the order delivered.
	for _, ev := range in {
		switch e := ev.(type) {
		case CBREvent:
			s.lastCbr = e.Pkt.Cbr
			out = append(out, CbrUpOut{Cbr: e.Pkt.Cbr})
		case CSRsEvent:
			if s.grant != nil && !s.grant.Periodic {
				if err := s.acceptor.Accept(s.grant, e.Csrs, now); err != nil {
					return out, obs, err
				}
			}
			// Stale CSRs (no pending grant) are discarded silently (spec.md §7).
		case NewDataEvent:
			if err := s.handleNewData(e.Pkt, now, &out, &obs); err != nil {
				return out, obs, err
			}
		}
	}

	canTx, err := s.runGrantTransitions(now, &obs)
	if err != nil {
		return out, obs, err
	}

	requestedSdu := false
	if canTx {
		requestedSdu, err = s.transmit(now, &out, &obs)
		if err != nil {
			return out, obs, err
		}
	}

	if !requestedSdu {
		s.currentHarq = (s.currentHarq + 1) % UETxHarqProcesses
	}

	return out, obs, nil
}

func (s *TTIScheduler) drainRx(out *[]OutboundEvent) {
	rx := s.harq.GetOrCreateRx(s.groupDestID, DirD2DMulti)
	for _, pdu := range rx.ExtractCorrectPdus() {
		*out = append(*out, UpperDeliverOut{Pdu: pdu})
	}
	rx.PurgeCorrupted()
}

func (s *TTIScheduler) handleNewData(pkt NewDataPkt, now Clock, out *[]OutboundEvent, obs *[]Observation) error {
	remaining := Clock(pkt.DurationMs) - (now - pkt.CreationTime)

	if s.grant == nil {
		grant, gpkt := s.generator.Generate(pkt.Priority, remaining, s.lastCbr, now)
		s.grant = grant
		*out = append(*out, GrantPktOut{Pkt: gpkt})
		*obs = append(*obs, Observation{Signal: SigGeneratedGrants}, Observation{Signal: SigGrantRequests})
		return nil
	}

	if s.grant.Periodic && remaining < s.grant.PeriodCounter {
		*obs = append(*obs, Observation{Signal: SigGrantBreakTiming})
		grant, gpkt := s.generator.Generate(pkt.Priority, remaining, s.lastCbr, now)
		s.grant = grant
		*out = append(*out, GrantPktOut{Pkt: gpkt})
		*obs = append(*obs, Observation{Signal: SigGeneratedGrants}, Observation{Signal: SigGrantRequests})
	}
	return nil
}

// runGrantTransitions executes spec.md §4.5's per-TTI Active-state
// transitions and reports whether the scheduler may transmit this tick.
func (s *TTIScheduler) runGrantTransitions(now Clock, obs *[]Observation) (bool, error) {
	g := s.grant
	if g == nil || !g.Periodic || g.StartTime > now {
		return false, nil
	}

	g.ExpirationCounter--
	if g.ExpirationCounter == g.Period {
		r := s.rnd.UniformFloat()
		if r > s.cfg.ProbResourceKeep {
			k := s.rnd.UniformInt(5, 15)
			g.ResourceReselectionCounter = k
			g.FirstTransmission = true
			g.ExpirationCounter += Clock(k) * g.Period
		}
		// Else: the reservation is not extended. expiration_counter is left
		// untouched here (it already equals period from the decrement
		// above) rather than zeroed -- "expiration" and "expiration_counter"
		// are distinct per spec.md §4.5 ("set expiration = 0... grant will
		// terminate after this period"), and it is expiration_counter, not
		// expiration, that the transitions below and next TTI's decrement
		// actually gate on. Left alone, it keeps decrementing tick by tick
		// and the grant breaks naturally once it reaches zero.
	}

	g.PeriodCounter--

	canTx := false
	switch {
	case g.PeriodCounter > 0 && !g.FirstTransmission:
		// intra-period gate: no TX this TTI
	case g.ExpirationCounter > 0:
		g.PeriodCounter = g.Period
		canTx = true
	default:
		*obs = append(*obs, Observation{Signal: SigGrantBreak})
		s.grant = nil
		return false, nil
	}

	if canTx {
		if g.FirstTransmission {
			g.FirstTransmission = false
		}
		if !s.currentHarqInitialized {
			s.currentHarq = UETxHarqProcesses - 2
			s.currentHarqInitialized = true
		}
	}
	return canTx, nil
}

// transmit implements spec.md §4.10 steps 3a-3c and the deferred flush,
// collapsed into one sequential pass since Step already runs atomically
// within one tick (Design Notes §9). It returns whether an SDU was
// requested from the upper layer this TTI.
func (s *TTIScheduler) transmit(now Clock, out *[]OutboundEvent, obs *[]Observation) (bool, error) {
	g := s.grant
	tx := s.harq.GetOrCreateTx(s.groupDestID, g.Direction)
	tx.ClearSelected()

	requestedSdu := false
	if acid, ok := tx.RetransmitCandidate(); ok {
		tx.MarkSelected([]int{acid}, 1)
	} else {
		requestedSdu = true
		list := BuildScheduleList(s.buffers, g.CurrentCw)
		pdus, err := s.assembler.Assemble(list, s.buffers, g, now, s.preconfigured, s.groupDestID, s.currentHarq)
		if err != nil {
			return requestedSdu, err
		}
		if len(pdus) == 0 {
			// BSR-only transmission: assemble an empty PDU so SCI/grant
			// continuity is preserved even with nothing queued.
			s.assembleEmpty(now, g)
		}
		s.retxRemaining[s.currentHarq] = s.cbrPolicy.Effective(s.lastCbr).AllowedRetx
		tx.MarkSelected([]int{s.currentHarq}, 1)
	}

	s.flush(now, tx, out, obs)
	return requestedSdu, nil
}

// assembleEmpty inserts a zero-SDU, header-only PDU directly into the
// current HARQ process, used when the schedule list has nothing queued
// but a BSR-only transmission must still occur (spec.md §4.10 step 3b).
func (s *TTIScheduler) assembleEmpty(now Clock, g *Grant) {
	txParams := s.preconfigured
	if txParams == nil {
		txParams = g.UserTxParams
	}
	pdu := &MacPdu{
		Dest:      s.groupDestID,
		Direction: g.Direction,
		CreatedAt: now,
		HeaderLen: MacHeaderLen,
		Size:      MacHeaderLen,
		Lcid:      LcidShortBsr,
		UserTxParams: txParams,
	}
	tx := s.harq.GetOrCreateTx(s.groupDestID, g.Direction)
	acid, cws, ok := tx.EmptyUnits(s.currentHarq)
	if !ok || len(cws) == 0 {
		return
	}
	tx.InsertPdu(acid, cws[0], pdu)
}

// flush implements spec.md §4.10's deferred Flush step.
func (s *TTIScheduler) flush(now Clock, tx TxBuf, out *[]OutboundEvent, obs *[]Observation) {
	g := s.grant
	sp, ok := tx.SelectedProcess()
	if !ok {
		s.onMissedTransmission(out, obs)
		return
	}

	ids := sp.ReadyUnitIDs()
	if len(ids) == 0 {
		s.onMissedTransmission(out, obs)
		return
	}
	cw := ids[0]
	pduLen := sp.PduLength(cw)

	bounds := s.cbrPolicy.Effective(s.lastCbr)
	mcs, capacity, err := SelectMCS(pduLen, g.TotalGrantedBlocks, bounds.MinMcs, bounds.MaxMcs)
	if err != nil {
		if noFit, ok := err.(*NoMcsFits); ok {
			*obs = append(*obs, Observation{Signal: SigGrantBreakSize}, Observation{Signal: SigMaximumCapacity, Value: noFit.MaxCapacity})
		}
		remaining := g.MaxLatency - (now - g.ReceivedAt)
		sp.ForceDrop()
		if remaining <= 0 {
			*obs = append(*obs, Observation{Signal: SigDroppedTimeout})
			s.grant = nil
			return
		}
		newGrant, gpkt := s.generator.Generate(g.Priority, remaining, s.lastCbr, now)
		s.grant = newGrant
		*out = append(*out, GrantPktOut{Pkt: gpkt})
		*obs = append(*obs, Observation{Signal: SigGeneratedGrants}, Observation{Signal: SigGrantRequests})
		return
	}

	g.Mcs = mcs
	g.GrantedCwBytes[cw] = capacity
	if g.UserTxParams == nil {
		g.UserTxParams = s.preconfigured
	}

	*obs = append(*obs,
		Observation{Signal: SigSelectedMCS, Value: mcs},
		Observation{Signal: SigSelectedSubchIndex, Value: g.StartingSubchannel},
		Observation{Signal: SigSelectedNumSubch, Value: g.NumSubchannels},
	)

	*out = append(*out, GrantPktOut{Pkt: GrantPkt{
		Grant:        *g,
		SourceID:     s.localNodeID,
		DestID:       s.localNodeID,
		FrameType:    FrameTypeGrantpkt,
		TxNumber:     1,
		Direction:    DirD2DMulti,
		UserTxParams: g.UserTxParams,
	}})
	*out = append(*out, MacPduOut{Pdu: sp.Pdu(cw)})

	pid := processIDOf(sp)
	if remaining := s.retxRemaining[pid]; remaining > 0 {
		s.retxRemaining[pid] = remaining - 1
	} else {
		sp.ForceDrop()
	}
}

func (s *TTIScheduler) onMissedTransmission(out *[]OutboundEvent, obs *[]Observation) {
	g := s.grant
	s.missedTransmissions++
	*obs = append(*obs, Observation{Signal: SigMissedTransmission})

	if g != nil {
		lowered := *g
		if lowered.Priority < 7 {
			lowered.Priority++
		}
		*out = append(*out, GrantPktOut{Pkt: GrantPkt{
			Grant:     lowered,
			SourceID:  s.localNodeID,
			DestID:    s.localNodeID,
			FrameType: FrameTypeGrantpkt,
			TxNumber:  1,
			Direction: DirD2DMulti,
		}})
	}

	if s.missedTransmissions >= s.cfg.ReselectAfter {
		*obs = append(*obs, Observation{Signal: SigGrantBreakMissedTrans})
		s.grant = nil
		s.missedTransmissions = 0
	}
}

// processIDOf recovers a Process's owning id so retransmission budget
// bookkeeping can key off it. It relies on the concrete memProcess type;
// a different Process implementation would need its own bookkeeping
// strategy.
func processIDOf(p Process) int {
	if mp, ok := p.(*memProcess); ok {
		return mp.id
	}
	return -1
}
