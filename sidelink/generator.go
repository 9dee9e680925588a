package sidelink

// Generator implements the Grant Generator of spec.md §4.8: given a
// priority and a remaining-latency budget, it builds a fresh Pending
// Grant and the GrantPkt duplicate sent down to PHY.
type Generator struct {
	cfg         *Config
	rnd         *RandomSource
	cbr         *CBRPolicy
	localNodeID int
}

// NewGenerator returns a Generator bound to cfg, rnd and cbr, stamping
// GRANTPKT packets with localNodeID as both source and destination
// (spec.md §4.8: "source and destination set to the local node id").
func NewGenerator(cfg *Config, rnd *RandomSource, cbr *CBRPolicy, localNodeID int) *Generator {
	return &Generator{cfg: cfg, rnd: rnd, cbr: cbr, localNodeID: localNodeID}
}

// Generate builds a new Pending grant at priority, with remainingLatency
// as its max_latency budget and cbrValue as the current CBR sample, per
// spec.md §4.8. It returns the local grant (to be stored Pending by the
// caller) and the packet to send down to PHY.
//
// spec.md leaves unspecified which of the configured valid RRIs the
// generator picks (§4.8 only states "period = RRI × 100"); this
// implementation picks the largest configured RRI whose resulting period
// still fits within remainingLatency, falling back to the smallest
// configured RRI when none fit -- the natural SPS choice of reserving for
// as long as the latency budget allows.
func (g *Generator) Generate(priority int, remainingLatency Clock, cbrValue int, now Clock) (*Grant, GrantPkt) {
	rri := g.selectRRI(remainingLatency)
	period := Clock(rri) * 100

	bounds := g.cbr.Effective(cbrValue)
	numSubch := g.rnd.UniformInt(bounds.MinSubch, bounds.MaxSubch)
	resel := g.rnd.UniformInt(5, 15)

	grant := &Grant{
		Priority:                   priority,
		Period:                     period,
		MaxLatency:                 remainingLatency,
		PossibleRRIs:               append([]int(nil), g.cfg.ValidRRIs...),
		NumSubchannels:             numSubch,
		ResourceReselectionCounter: resel,
		FirstTransmission:          true,
		ReceivedAt:                 now,
	}

	pkt := GrantPkt{
		Grant:     *grant,
		SourceID:  g.localNodeID,
		DestID:    g.localNodeID,
		FrameType: FrameTypeGrantpkt,
		Direction: DirD2DMulti,
	}
	return grant, pkt
}

func (g *Generator) selectRRI(remainingLatency Clock) int {
	minRRI := g.cfg.ValidRRIs[0]
	best := -1
	for _, rri := range g.cfg.ValidRRIs {
		if rri < minRRI {
			minRRI = rri
		}
		if Clock(rri)*100 <= remainingLatency && rri > best {
			best = rri
		}
	}
	if best == -1 {
		return minRRI
	}
	return best
}
