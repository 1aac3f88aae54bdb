package dune

import "context"

const paidRevivalCostPerForce = 2
const leaderRevivalCost = 2

// RunRevivalPhase lets every faction revive forces (free up to its cap,
// paid beyond that) and optionally a leader, in storm order (§4.E.?,
// base-game revival phase the distilled spec's §4.E numbering left
// implicit between bidding and shipment).
func RunRevivalPhase(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, timestamp int64) (Snapshot, []Event, error) {
	var events []Event
	out := s.logAction("", "PHASE_STARTED", map[string]any{"phase": string(PhaseRevival)}, timestamp)

	rCtx := &RevivalContext{Requested: map[Faction]bool{}}
	out.PhaseContext = PhaseContext{Revival: rCtx}

	for _, f := range out.StormOrder {
		provider, ok := providers[f]
		if !ok {
			continue
		}
		resp, err := provider.Answer(ctx, AgentRequest{Kind: RequestRevival, Faction: f, Snapshot: out})
		if err != nil || resp.Missing {
			out, events = appendForcedDefault(out, events, f, RequestRevival, timestamp)
			continue
		}
		out.PhaseContext.Revival.Requested[f] = true

		regular, _ := resp.Data["regular"].(int)
		elite, _ := resp.Data["elite"].(int)
		leaderID, _ := resp.Data["leaderId"].(string)

		cfg := FactionConfigFor(f)
		fs := out.Factions[f]
		freeRegular := regular
		if freeRegular > cfg.FreeRevivalCap {
			freeRegular = cfg.FreeRevivalCap
		}
		paidRegular := regular - freeRegular
		if fs.Pool.TanksRegular < freeRegular+paidRegular {
			paidRegular = fs.Pool.TanksRegular - freeRegular
			if paidRegular < 0 {
				paidRegular = 0
			}
		}
		cost := paidRegular * paidRevivalCostPerForce
		if cost > 0 {
			if spent, rerr := SpendSpice(out, f, cost, "paid_revival", timestamp); rerr == nil {
				out = spent
			} else {
				paidRegular = 0
			}
		}
		out = ReviveForces(out, f, freeRegular+paidRegular, 0, timestamp)

		if elite > 0 && fs.EliteRevivedThisTurn < cfg.EliteRevivalCap {
			allowed := cfg.EliteRevivalCap - fs.EliteRevivedThisTurn
			if elite > allowed {
				elite = allowed
			}
			out = ReviveForces(out, f, 0, elite, timestamp)
			fs2 := out.Factions[f]
			fs2.EliteRevivedThisTurn += elite
			out.Factions[f] = fs2
		}

		if leaderID != "" {
			if spent, rerr := SpendSpice(out, f, leaderRevivalCost, "leader_revival", timestamp); rerr == nil {
				out = spent
				out = ReviveLeader(out, f, LeaderDefinitionID(leaderID), timestamp)
			}
		}

		events = append(events, newEvent(EventRevivalCompleted, "revival completed", map[string]any{
			"faction": string(f), "regular": freeRegular + paidRegular, "elite": elite,
		}))
	}

	out = out.logAction("", "PHASE_ENDED", map[string]any{"phase": string(PhaseRevival)}, timestamp)
	return out, events, nil
}
