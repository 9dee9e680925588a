package sidelink

// Bounds is the effective, CBR-adjusted range a grant's MCS, subchannel
// count, and retransmission count must fall within.
type Bounds struct {
	MinMcs      int
	MaxMcs      int
	MinSubch    int
	MaxSubch    int
	AllowedRetx int
}

// CBRPolicy implements spec.md §4.3: given the latest CBR sample and the
// tables loaded into Config, it computes the effective bounds a grant must
// respect.
type CBRPolicy struct {
	cfg *Config
}

// NewCBRPolicy returns a CBRPolicy bound to cfg.
func NewCBRPolicy(cfg *Config) *CBRPolicy {
	return &CBRPolicy{cfg: cfg}
}

// Effective computes the CBR-adjusted bounds for the given CBR sample, per
// spec.md §4.3. If UseCBR is false, the base Config bounds are returned
// unchanged.
func (p *CBRPolicy) Effective(cbr int) Bounds {
	base := Bounds{
		MinMcs:      p.cfg.MinMcs,
		MaxMcs:      p.cfg.MaxMcs,
		MinSubch:    p.cfg.MinSubch,
		MaxSubch:    p.cfg.MaxSubch,
		AllowedRetx: p.cfg.AllowedRetx,
	}
	if !p.cfg.UseCBR {
		return base
	}

	idx := p.cbrIndex(cbr)
	tc := p.cfg.CBRTxConfigs[idx]

	eff := Bounds{
		AllowedRetx: min(tc.AllowedRetx, base.AllowedRetx),
	}

	// Disjoint MCS ranges: adopt the CBR subchannel bounds verbatim.
	if base.MaxMcs < tc.MinMcs || tc.MaxMcs < base.MinMcs {
		eff.MinMcs, eff.MaxMcs = base.MinMcs, base.MaxMcs
		eff.MinSubch, eff.MaxSubch = tc.MinSubch, tc.MaxSubch
		return eff
	}

	// Overlapping: intersect subchannel bounds.
	eff.MinMcs, eff.MaxMcs = base.MinMcs, base.MaxMcs
	eff.MinSubch = max(base.MinSubch, tc.MinSubch)
	eff.MaxSubch = min(base.MaxSubch, tc.MaxSubch)
	return eff
}

// cbrIndex returns the tx-config index for the latest CBR sample: the
// index of the first configured level whose upper bound exceeds cbr, else
// the configured default.
func (p *CBRPolicy) cbrIndex(cbr int) int {
	for _, lvl := range p.cfg.CBRLevels {
		if cbr < lvl.Upper {
			return lvl.TxConfigIndex
		}
	}
	return p.cfg.DefaultCbrIndex
}
