package sidelink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleBuildsPduAndPopsSdus(t *testing.T) {
	cfg := validConfig()
	harq := NewMemFacade()
	asm := NewAssembler(cfg, harq)

	mb := NewMacBuffers()
	buf := mb.GetOrCreate(1)
	buf.Push(Sdu{Bytes: 10})
	buf.Push(Sdu{Bytes: 20})

	g := &Grant{Direction: DirD2DMulti}
	list := ScheduleList{{ConnectionID: 1, Codeword: 0, SduCount: 2}}

	pdus, err := asm.Assemble(list, mb, g, 5, nil, 99, 0)
	require.NoError(t, err)
	require.Len(t, pdus, 1)

	pdu := pdus[0]
	assert.Equal(t, 2, pdu.SduCount)
	assert.Equal(t, MacHeaderLen+30, pdu.Size)
	assert.Equal(t, 0, buf.Len())

	tx := harq.GetOrCreateTx(99, DirD2DMulti)
	_, cws, ok := tx.EmptyUnits(0)
	require.True(t, ok)
	assert.Equal(t, []int{1}, cws)
}

func TestAssembleMissingBufferIsFatal(t *testing.T) {
	cfg := validConfig()
	harq := NewMemFacade()
	asm := NewAssembler(cfg, harq)
	mb := NewMacBuffers()

	list := ScheduleList{{ConnectionID: 7, Codeword: 0, SduCount: 1}}
	_, err := asm.Assemble(list, mb, &Grant{}, 0, nil, 1, 0)
	require.Error(t, err)
	var iv *InvariantViolation
	assert.ErrorAs(t, err, &iv)
}

func TestAssembleDryBufferIsFatal(t *testing.T) {
	cfg := validConfig()
	harq := NewMemFacade()
	asm := NewAssembler(cfg, harq)
	mb := NewMacBuffers()
	mb.GetOrCreate(1).Push(Sdu{Bytes: 5})

	list := ScheduleList{{ConnectionID: 1, Codeword: 0, SduCount: 2}}
	_, err := asm.Assemble(list, mb, &Grant{}, 0, nil, 1, 0)
	require.Error(t, err)
}

func TestAssembleAccountsRlcHeaderByDirection(t *testing.T) {
	cfg := validConfig()

	for _, tc := range []struct {
		name     string
		dir      Direction
		expected int
	}{
		{"multicast uses UM header", DirD2DMulti, rlcHeaderUMBytes},
		{"unicast uses AM header", DirUL, rlcHeaderAMBytes},
	} {
		t.Run(tc.name, func(t *testing.T) {
			harq := NewMemFacade()
			asm := NewAssembler(cfg, harq)
			mb := NewMacBuffers()
			buf := mb.GetOrCreate(1)
			buf.Push(Sdu{Bytes: 10})
			buf.SetVirtualOccupancy(1)

			g := &Grant{Direction: tc.dir}
			list := ScheduleList{{ConnectionID: 1, Codeword: 0, SduCount: 1}}
			pdus, err := asm.Assemble(list, mb, g, 0, nil, 1, 0)
			require.NoError(t, err)
			assert.Equal(t, MacHeaderLen+10+tc.expected, pdus[0].Size)
		})
	}
}

func TestAssembleDropsPduWhenNoEmptyHarqUnit(t *testing.T) {
	cfg := validConfig()
	harq := NewMemFacade()
	asm := NewAssembler(cfg, harq)
	mb := NewMacBuffers()
	mb.GetOrCreate(1).Push(Sdu{Bytes: 5})

	tx := harq.GetOrCreateTx(1, DirD2DMulti)
	tx.InsertPdu(0, 0, &MacPdu{})
	tx.InsertPdu(0, 1, &MacPdu{})

	list := ScheduleList{{ConnectionID: 1, Codeword: 0, SduCount: 1}}
	pdus, err := asm.Assemble(list, mb, &Grant{Direction: DirD2DMulti}, 0, nil, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, pdus)
}

func TestAssemblePropagatesMulticastGroupFromFirstSdu(t *testing.T) {
	cfg := validConfig()
	harq := NewMemFacade()
	asm := NewAssembler(cfg, harq)
	mb := NewMacBuffers()
	buf := mb.GetOrCreate(1)
	buf.Push(Sdu{Bytes: 5, MulticastGroupID: 9, HasMulticastGroup: true})
	buf.Push(Sdu{Bytes: 5})

	list := ScheduleList{{ConnectionID: 1, Codeword: 0, SduCount: 2}}
	pdus, err := asm.Assemble(list, mb, &Grant{Direction: DirD2DMulti}, 0, nil, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 9, pdus[0].MulticastGroup)
}
