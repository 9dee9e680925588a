package sidelink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCBRPolicyUseCBRDisabled(t *testing.T) {
	cfg := validConfig()
	cfg.UseCBR = false
	p := NewCBRPolicy(cfg)

	got := p.Effective(90)
	assert.Equal(t, Bounds{MinMcs: cfg.MinMcs, MaxMcs: cfg.MaxMcs, MinSubch: cfg.MinSubch, MaxSubch: cfg.MaxSubch, AllowedRetx: cfg.AllowedRetx}, got)
}

func TestCBRPolicyLowCBRUsesFirstLevel(t *testing.T) {
	cfg := validConfig()
	p := NewCBRPolicy(cfg)

	got := p.Effective(10)
	assert.Equal(t, 1, got.MinSubch)
	assert.Equal(t, 3, got.MaxSubch)
	assert.Equal(t, 2, got.AllowedRetx)
}

func TestCBRPolicyHighCBRNarrowsBounds(t *testing.T) {
	cfg := validConfig()
	p := NewCBRPolicy(cfg)

	got := p.Effective(80)
	assert.Equal(t, 1, got.MinSubch)
	assert.Equal(t, 1, got.MaxSubch)
	assert.Equal(t, 0, got.AllowedRetx)
}

func TestCBRPolicyFallsBackToDefaultIndex(t *testing.T) {
	cfg := validConfig()
	cfg.CBRLevels = []CBRLevel{{Lower: 0, Upper: 10, TxConfigIndex: 0}}
	p := NewCBRPolicy(cfg)

	// No configured level covers cbr=50, so the default index applies.
	got := p.Effective(50)
	assert.Equal(t, cfg.CBRTxConfigs[cfg.DefaultCbrIndex].MinSubch, got.MinSubch)
}

func TestCBRPolicyDisjointMcsRangeAdoptsCbrSubchannels(t *testing.T) {
	cfg := validConfig()
	cfg.CBRTxConfigs[1] = CBRTxConfig{MinMcs: 25, MaxMcs: 28, MinSubch: 2, MaxSubch: 2, AllowedRetx: 1}
	p := NewCBRPolicy(cfg)

	got := p.Effective(80)
	assert.Equal(t, cfg.MinMcs, got.MinMcs)
	assert.Equal(t, cfg.MaxMcs, got.MaxMcs)
	assert.Equal(t, 2, got.MinSubch)
	assert.Equal(t, 2, got.MaxSubch)
}
