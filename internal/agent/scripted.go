// Package agent implements dune.AgentProvider: scripted test agents that
// can drive a game to completion without a human present, and the
// HTTP+WebSocket client/orchestrator an out-of-process bot uses to play
// against a running server.
package agent

import (
	"context"
	"math/rand"

	"github.com/dunebench/engine/pkg/dune"
)

// HoldAgent answers every request with the most conservative legal
// choice: hold forces in place, decline to bid, decline every interrupt.
// Grounded on the teacher's HoldStrategy, generalized from Diplomacy
// orders to this domain's AgentRequest kinds.
type HoldAgent struct{}

func (HoldAgent) Answer(_ context.Context, req dune.AgentRequest) (dune.AgentResponse, error) {
	resp := dune.AgentResponse{Faction: req.Faction}
	switch req.Kind {
	case dune.RequestStormDial:
		resp.Int = 0
	case dune.RequestBid:
		resp.Int = 0 // pass
	case dune.RequestShipment, dune.RequestMovement:
		resp.String = "" // no-op
	case dune.RequestBattlePlan:
		resp.Data = map[string]any{"forcesDialed": 0}
	case dune.RequestRevival:
		resp.Data = map[string]any{"regular": 0, "elite": 0}
	case dune.RequestKaramaInterrupt, dune.RequestDealResponse, dune.RequestVoice, dune.RequestTraitorCall:
		resp.Bool = false
	case dune.RequestSpiceBlowChoice, dune.RequestPrescience:
		resp.String = ""
	}
	return resp, nil
}

// RandomAgent picks uniformly among legal-looking choices, validated
// where this package can cheaply check before committing. Grounded on
// the teacher's RandomStrategy: a test/self-play harness agent, not game
// strategy.
type RandomAgent struct {
	Rand *rand.Rand
}

func (a RandomAgent) rng() *rand.Rand {
	if a.Rand != nil {
		return a.Rand
	}
	return rand.New(rand.NewSource(1))
}

func (a RandomAgent) Answer(_ context.Context, req dune.AgentRequest) (dune.AgentResponse, error) {
	r := a.rng()
	resp := dune.AgentResponse{Faction: req.Faction}
	s := req.Snapshot

	switch req.Kind {
	case dune.RequestStormDial:
		resp.Int = r.Intn(3)
	case dune.RequestBid:
		fs := s.Factions[req.Faction]
		highBid, _ := req.Data["highBid"].(int)
		if fs.Spice > highBid && r.Float64() < 0.5 {
			resp.Int = highBid + 1
		}
	case dune.RequestShipment:
		if r.Float64() < 0.5 {
			targets := dune.AllTerritories()
			t := targets[r.Intn(len(targets))]
			resp.String = string(t.ID)
			resp.Data = map[string]any{"regular": 1, "elite": 0}
		}
	case dune.RequestMovement:
		fs := s.Factions[req.Faction]
		if len(fs.Pool.OnBoard) > 0 {
			st := fs.Pool.OnBoard[r.Intn(len(fs.Pool.OnBoard))]
			reachable := dune.ReachableTerritories(s, req.Faction, st.TerritoryID)
			if len(reachable) > 0 && st.Regular > 0 {
				dest := reachable[r.Intn(len(reachable))]
				resp.Data = map[string]any{
					"from": string(st.TerritoryID), "to": string(dest), "regular": 1, "elite": 0, "advisors": 0,
				}
			}
		}
	case dune.RequestBattlePlan:
		fs := s.Factions[req.Faction]
		dialed := 0
		if len(fs.Pool.OnBoard) > 0 {
			dialed = 1 + r.Intn(3)
		}
		resp.Data = map[string]any{"forcesDialed": dialed}
	case dune.RequestRevival:
		fs := s.Factions[req.Faction]
		regular := 0
		if fs.Pool.TanksRegular > 0 {
			regular = 1
		}
		resp.Data = map[string]any{"regular": regular, "elite": 0}
	case dune.RequestKaramaInterrupt, dune.RequestDealResponse, dune.RequestVoice, dune.RequestTraitorCall:
		resp.Bool = r.Float64() < 0.1
	case dune.RequestSpiceBlowChoice, dune.RequestPrescience:
		resp.String = ""
	}
	return resp, nil
}
