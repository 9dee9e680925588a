// SPDX-License-Identifier: GPL-3.0

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ucc-mobile/ltemac4/sidelink"
)

// Scenario is the YAML-described simulation scenario: which config
// document to load and the timed PHY/upper-layer event schedule to
// drive the MAC node with.
type Scenario struct {
	ConfigPath  string       `yaml:"config"`
	LocalNodeID int          `yaml:"localNodeId"`
	GroupDestID int          `yaml:"groupDestId"`
	PhyEvents   []PhyEvent   `yaml:"phyEvents"`
	UpperEvents []UpperEvent `yaml:"upperEvents"`
}

// CSR mirrors sidelink.CSR with YAML tags.
type CSR struct {
	Metric          float64 `yaml:"metric"`
	TtiOffset       int     `yaml:"ttiOffset"`
	SubchannelIndex int     `yaml:"subchannelIndex"`
}

// PhyEvent is one scheduled PHY delivery.
type PhyEvent struct {
	AtMs int   `yaml:"atMs"`
	Csrs []CSR `yaml:"csrs"`
	Cbr  *int  `yaml:"cbr"`
}

// SduPush queues one Sdu into a mac buffer.
type SduPush struct {
	ConnectionID      int  `yaml:"connectionId"`
	Bytes             int  `yaml:"bytes"`
	MulticastGroupID  int  `yaml:"multicastGroupId"`
	HasMulticastGroup bool `yaml:"hasMulticastGroup"`
}

// NewDataEvent mirrors sidelink.NewDataPkt with YAML tags.
type NewDataEvent struct {
	Priority   int `yaml:"priority"`
	CreationMs int `yaml:"creationMs"`
	DurationMs int `yaml:"durationMs"`
	BitLength  int `yaml:"bitLength"`
}

// UpperEvent is one scheduled upper-layer action.
type UpperEvent struct {
	AtMs    int           `yaml:"atMs"`
	NewData *NewDataEvent `yaml:"newData"`
	Push    *SduPush      `yaml:"push"`
}

// LoadScenario reads and parses a YAML scenario document.
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	var sc Scenario
	if err := yaml.NewDecoder(f).Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &sc, nil
}

func (e PhyEvent) toCSRList() sidelink.CSRList {
	if len(e.Csrs) == 0 {
		return nil
	}
	out := make(sidelink.CSRList, len(e.Csrs))
	for i, c := range e.Csrs {
		out[i] = sidelink.CSR{Metric: c.Metric, TtiOffset: c.TtiOffset, SubchannelIndex: c.SubchannelIndex}
	}
	return out
}
