package sidelink

// CSR is one Candidate Single-subframe Resource reported by PHY sensing
// (spec.md §6).
type CSR struct {
	Metric          float64
	TtiOffset       int
	SubchannelIndex int
}

// CSRList is the SpsCandidateResources packet of spec.md §6, consumed
// one-shot by the SPS Acceptor.
type CSRList []CSR

// CbrPkt carries a Channel Busy Ratio sample on the down-in gate
// (spec.md §6). The value updates CBRPolicy's input and is forwarded
// upward verbatim by the caller.
type CbrPkt struct {
	Cbr int
}

// NewDataPkt is the up-in newDataPkt notification of spec.md §6.
type NewDataPkt struct {
	Priority     int
	CreationTime Clock
	DurationMs   int
	BitLength    int
}

// GrantPkt is a duplicated Grant sent down to PHY with attached control
// info (spec.md §6/§4.8/§4.10).
type GrantPkt struct {
	Grant        Grant
	SourceID     int
	DestID       int
	FrameType    string
	TxNumber     int
	Direction    Direction
	UserTxParams *UserTxParams
}

const (
	FrameTypeGrantpkt = "GRANTPKT"
	LcidShortBsr      = "SHORT_BSR"
	RlcHeaderUM       = "RLC_HEADER_UM"
	RlcHeaderAM       = "RLC_HEADER_AM"
)

// MacHeaderLen is the fixed MAC header size stamped onto every assembled
// PDU (spec.md §4.9).
const MacHeaderLen = 2

// MacPdu is the PDU assembled by the PDU Assembler and carried by HARQ
// (spec.md §4.9).
type MacPdu struct {
	Dest           int
	Direction      Direction
	CreatedAt      Clock
	HeaderLen      int
	UserTxParams   *UserTxParams
	Lcid           string
	SduCount       int
	Size           int
	MulticastGroup int
	ConnectionID   int
	Codeword       int
}
