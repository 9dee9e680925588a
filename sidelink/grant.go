package sidelink

// Direction identifies the destination class a grant or PDU is bound for,
// per spec.md §4.9/§6 (D2D_MULTI is the only direction this UE ever
// transmits with, but the type mirrors the full set the contract allows).
type Direction int

const (
	DirUL Direction = iota
	DirD2D
	DirD2DMulti
)

// Band identifies a set of resource blocks. Mode 4 sidelink always grants
// against the MACRO band (spec.md §4.7).
type Band int

const MACRO Band = 0

// GrantState names the states of the SPS grant state machine (spec.md
// §4.5). The TTIScheduler holds at most one *Grant at a time; a nil grant
// is state None.
type GrantState int

const (
	StateNone GrantState = iota
	StatePending
	StateActive
	StateExpired
)

// Grant is the mutable SPS grant record of spec.md §3.
type Grant struct {
	Priority       int
	Period         Clock // RRI * 100, internal ticks
	MaxLatency     Clock
	PossibleRRIs   []int

	NumSubchannels     int
	StartingSubchannel int
	GrantedBlocks      map[int]map[int]bool // subchannel -> resource block -> occupied
	TotalGrantedBlocks int

	Mcs             int
	GrantedCwBytes  [2]int
	CurrentCw       int
	Direction       Direction
	Codewords       int

	StartTime Clock

	// ReceivedAt is the tick the Grant Generator created this grant, used
	// to compute remaining_time during MCS-exhaustion handling (spec.md
	// §4.10's "remaining_time = max_latency - (now - received_time)").
	ReceivedAt Clock

	ResourceReselectionCounter int
	ExpirationCounter          Clock
	PeriodCounter              Clock

	Periodic          bool
	FirstTransmission bool

	UserTxParams *UserTxParams

	// state is read by State() only to report StateExpired; nothing in
	// this package sets it. None/Pending/Active are derived from the nil
	// grant and Periodic, and StartTime is not consulted.
	state GrantState
}

// UserTxParams is a stand-in for the PHY transmission parameters attached
// to a grant (spec.md calls this field "optional"; PHY-layer modeling is
// explicitly out of scope per spec.md §1).
type UserTxParams struct {
	TxMode  string
	Rank    int
	Pmi     int
	Bands   []int
	Antenna Band
}

// State reports the grant's current lifecycle state per spec.md §4.5.
func (g *Grant) State(now Clock) GrantState {
	if g == nil {
		return StateNone
	}
	if g.state == StateExpired {
		return StateExpired
	}
	if !g.Periodic {
		return StatePending
	}
	return StateActive
}

// CheckInvariants validates the structural invariants of spec.md §3/§8
// (P2-P4). It is intended for tests, not the hot path.
func (g *Grant) CheckInvariants(numSubchannelsConfig, subchannelSize int) error {
	if g == nil {
		return nil
	}
	if g.Periodic && g.Period <= 0 {
		return &InvariantViolation{Reason: "periodic grant must have period > 0"}
	}
	if g.Periodic && g.ResourceReselectionCounter < 0 {
		return &InvariantViolation{Reason: "resource_reselection_counter must be >= 0"}
	}
	if g.StartingSubchannel < 0 {
		return &InvariantViolation{Reason: "starting_subchannel must be >= 0"}
	}
	if g.StartingSubchannel+g.NumSubchannels > numSubchannelsConfig {
		return &InvariantViolation{Reason: "starting_subchannel + num_subchannels exceeds configured subchannels"}
	}
	if g.TotalGrantedBlocks != g.NumSubchannels*subchannelSize {
		return &InvariantViolation{Reason: "total_granted_blocks must equal num_subchannels * subchannel_size"}
	}
	if g.Periodic {
		if g.PeriodCounter < 0 || g.PeriodCounter > g.Period {
			return &InvariantViolation{Reason: "period_counter must be in [0, period]"}
		}
		if g.ExpirationCounter < 0 {
			return &InvariantViolation{Reason: "expiration_counter must be >= 0"}
		}
	}
	return nil
}

// Binder models the process-wide UE registry collaborator (Design Notes
// §9) as an interface rather than a global singleton. TTIScheduler does
// not take a Binder, and nothing in this module calls AddUeInfo or
// RemoveUeInfo; NopBinder is the only implementation.
type Binder interface {
	AddUeInfo(ueID int)
	RemoveUeInfo(ueID int)
}

// NopBinder implements Binder with no-ops.
type NopBinder struct{}

func (NopBinder) AddUeInfo(int)    {}
func (NopBinder) RemoveUeInfo(int) {}
