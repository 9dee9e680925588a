// SPDX-License-Identifier: GPL-3.0

// Command ltemac4sim drives the sidelink MAC scheduler core through a
// scripted scenario on top of the engine discrete-event harness, for
// manual inspection and demo runs outside the test suite.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/ucc-mobile/ltemac4/engine"
	"github.com/ucc-mobile/ltemac4/sidelink"
)

func main() {
	var (
		scenarioPath = pflag.StringP("scenario", "s", "", "path to a YAML scenario file (required)")
		seedHex      = pflag.String("seed", "", "hex-encoded 32-byte RNG seed (default: random, drawn from crypto/rand)")
		metricsAddr  = pflag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9100)")
	)
	pflag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintln(os.Stderr, "ltemac4sim: --scenario is required")
		pflag.Usage()
		os.Exit(2)
	}

	if err := run(*scenarioPath, *seedHex, *metricsAddr); err != nil {
		engine.Logger.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(scenarioPath, seedHex, metricsAddr string) error {
	sc, err := LoadScenario(scenarioPath)
	if err != nil {
		return fmt.Errorf("load scenario: %w", err)
	}

	cfgFile, err := os.Open(sc.ConfigPath)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer cfgFile.Close()

	cfg, err := sidelink.LoadConfigXML(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	seed, err := resolveSeed(seedHex)
	if err != nil {
		return err
	}
	rnd := sidelink.NewRandomSource(seed)

	harq := sidelink.NewMemFacade()
	sched := sidelink.NewTTIScheduler(cfg, rnd, harq, sc.LocalNodeID, sc.GroupDestID)

	var metrics *engine.Metrics
	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = engine.NewMetrics(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				engine.Logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		engine.Logger.Info().Str("addr", metricsAddr).Msg("serving prometheus metrics")
	}

	const (
		macID   engine.NodeID = 0
		phyID   engine.NodeID = 1
		upperID engine.NodeID = 2
	)

	macNode := engine.NewMacNode(sched, phyID, upperID)
	macNode.Metrics = metrics

	phyStub := engine.NewPhyStub(macID, phyEvents(sc.PhyEvents))
	upperStub := engine.NewUpperStub(macID, sched, upperEvents(sc.UpperEvents))

	// engine.NewSim indexes handlers by slot position, so the order here
	// must match the macID/phyID/upperID constants above.
	sim := engine.NewSim([]engine.Handler{macNode, phyStub, upperStub})
	return sim.Run()
}

func resolveSeed(seedHex string) ([32]byte, error) {
	var seed [32]byte
	if seedHex == "" {
		if _, err := rand.Read(seed[:]); err != nil {
			return seed, fmt.Errorf("draw random seed: %w", err)
		}
		return seed, nil
	}
	b, err := hex.DecodeString(seedHex)
	if err != nil {
		return seed, fmt.Errorf("decode --seed: %w", err)
	}
	if len(b) != 32 {
		return seed, fmt.Errorf("--seed must decode to exactly 32 bytes, got %d", len(b))
	}
	copy(seed[:], b)
	return seed, nil
}

func phyEvents(in []PhyEvent) []engine.PhyEvent {
	out := make([]engine.PhyEvent, len(in))
	for i, e := range in {
		out[i] = engine.PhyEvent{
			At:   engine.Clock(e.AtMs),
			Csrs: e.toCSRList(),
			Cbr:  e.Cbr,
		}
	}
	return out
}

func upperEvents(in []UpperEvent) []engine.UpperEvent {
	out := make([]engine.UpperEvent, len(in))
	for i, e := range in {
		ev := engine.UpperEvent{At: engine.Clock(e.AtMs)}
		if e.NewData != nil {
			ev.NewData = &sidelink.NewDataPkt{
				Priority:     e.NewData.Priority,
				CreationTime: engine.Clock(e.NewData.CreationMs),
				DurationMs:   e.NewData.DurationMs,
				BitLength:    e.NewData.BitLength,
			}
		}
		if e.Push != nil {
			ev.Push = &engine.SduPush{
				ConnectionID: e.Push.ConnectionID,
				Sdu: sidelink.Sdu{
					Bytes:             e.Push.Bytes,
					MulticastGroupID:  e.Push.MulticastGroupID,
					HasMulticastGroup: e.Push.HasMulticastGroup,
				},
			}
		}
		out[i] = ev
	}
	return out
}
