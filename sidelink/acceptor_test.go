package sidelink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptorRejectsNilGrant(t *testing.T) {
	cfg := validConfig()
	a := NewAcceptor(cfg, NewRandomSource([32]byte{1}))
	err := a.Accept(nil, CSRList{{Metric: 1, TtiOffset: 1}}, 0)
	require.Error(t, err)
	var iv *InvariantViolation
	assert.ErrorAs(t, err, &iv)
}

func TestAcceptorRejectsEmptyCSRs(t *testing.T) {
	cfg := validConfig()
	a := NewAcceptor(cfg, NewRandomSource([32]byte{1}))
	err := a.Accept(&Grant{}, nil, 0)
	require.Error(t, err)
}

func TestAcceptorFinalizesGrant(t *testing.T) {
	cfg := validConfig()
	a := NewAcceptor(cfg, NewRandomSource([32]byte{1}))

	g := &Grant{
		Priority:                   3,
		Period:                     2000,
		NumSubchannels:             2,
		ResourceReselectionCounter: 8,
	}
	csrs := CSRList{
		{Metric: 0.1, TtiOffset: 3, SubchannelIndex: 0},
		{Metric: 0.9, TtiOffset: 7, SubchannelIndex: 2},
	}

	err := a.Accept(g, csrs, 100)
	require.NoError(t, err)

	assert.True(t, g.Periodic)
	assert.Equal(t, 1, g.Codewords)
	assert.Equal(t, DirD2DMulti, g.Direction)
	assert.Equal(t, cfg.MaxMcs, g.Mcs)
	assert.Equal(t, g.NumSubchannels*cfg.SubchannelSize, g.TotalGrantedBlocks)
	assert.Equal(t, g.PeriodCounter, g.Period)
	assert.Equal(t, Clock(8)*g.Period+1, g.ExpirationCounter)
	assert.Contains(t, []Clock{103, 107}, g.StartTime)
	assert.Len(t, g.GrantedBlocks, g.NumSubchannels)
	assert.NoError(t, g.CheckInvariants(cfg.NumSubchannels, cfg.SubchannelSize))
}

func TestAcceptorGrantedBlocksCoverConfiguredSubchannelSize(t *testing.T) {
	cfg := validConfig()
	a := NewAcceptor(cfg, NewRandomSource([32]byte{2}))
	g := &Grant{Period: 2000, NumSubchannels: 1, ResourceReselectionCounter: 5}
	err := a.Accept(g, CSRList{{TtiOffset: 0, SubchannelIndex: 0}}, 0)
	require.NoError(t, err)

	blocks, ok := g.GrantedBlocks[0]
	require.True(t, ok)
	assert.Len(t, blocks, cfg.SubchannelSize)
}
