package sidelink

// Acceptor implements the SPS Acceptor of spec.md §4.7: it converts a CSR
// list reported by PHY into a concrete, periodic Grant.
type Acceptor struct {
	cfg *Config
	rnd *RandomSource
}

// NewAcceptor returns an Acceptor bound to cfg and rnd.
func NewAcceptor(cfg *Config, rnd *RandomSource) *Acceptor {
	return &Acceptor{cfg: cfg, rnd: rnd}
}

// Accept finalizes g (which must be Pending) against a non-empty CSR
// list, per spec.md §4.7. The CSR packet is consumed one-shot by the
// caller; Accept itself is side-effect-free on csrs.
//
// Per spec.md §5, Accept must only be called when g is a Pending grant;
// a CSR list arriving while no grant is pending is stale and must be
// discarded by the caller before reaching here.
func (a *Acceptor) Accept(g *Grant, csrs CSRList, now Clock) error {
	if g == nil {
		return &InvariantViolation{Reason: "SPS Acceptor invoked without a pending grant"}
	}
	if len(csrs) == 0 {
		return &InvariantViolation{Reason: "SPS Acceptor invoked with an empty CSR list"}
	}

	u := a.rnd.UniformInt(0, len(csrs)-1)
	csr := csrs[u]

	g.StartTime = now + TTI*Clock(csr.TtiOffset)
	g.StartingSubchannel = csr.SubchannelIndex
	g.TotalGrantedBlocks = g.NumSubchannels * a.cfg.SubchannelSize

	g.GrantedBlocks = make(map[int]map[int]bool, g.NumSubchannels)
	for sc := g.StartingSubchannel; sc < g.StartingSubchannel+g.NumSubchannels; sc++ {
		blocks := make(map[int]bool, a.cfg.SubchannelSize)
		for rb := 0; rb < a.cfg.SubchannelSize; rb++ {
			blocks[rb] = true
		}
		g.GrantedBlocks[sc] = blocks
	}

	g.Periodic = true
	g.Codewords = 1
	g.Direction = DirD2DMulti
	g.Mcs = a.cfg.MaxMcs
	g.ExpirationCounter = Clock(g.ResourceReselectionCounter)*g.Period + 1
	g.PeriodCounter = g.Period

	mod, i := modulationFor(g.Mcs)
	g.GrantedCwBytes[g.CurrentCw] = itbsToTbs(mod, g.Mcs-i, g.TotalGrantedBlocks)
	g.CurrentCw = 1 - g.CurrentCw

	return nil
}
