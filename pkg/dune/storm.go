package dune

import "context"

// RunStormPhase resolves the storm phase (§4.E.1). Turn 1 moves the storm
// by the sum of the dials of every configured faction with a provider,
// modulo the sector count; every later
// turn draws the next storm card from an implicit deck the caller feeds
// via drawnDelta (movement is otherwise identical, so this package takes
// the already-resolved delta rather than owning deck state itself).
func RunStormPhase(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, drawnDelta int, timestamp int64) (Snapshot, []Event, error) {
	var events []Event
	out := s
	out = out.logAction("", "PHASE_STARTED", map[string]any{"phase": string(PhaseStorm)}, timestamp)

	delta := drawnDelta
	if out.Turn == 1 {
		total := 0
		for _, f := range out.Config.Factions {
			provider, ok := providers[f]
			if !ok {
				continue
			}
			resp, err := provider.Answer(ctx, AgentRequest{Kind: RequestStormDial, Faction: f, Snapshot: out})
			if err != nil || resp.Missing {
				out, events = appendForcedDefault(out, events, f, RequestStormDial, timestamp)
				continue
			}
			total += resp.Int
		}
		delta = total % StormSectorCount
	}

	out = MoveStorm(out, delta, timestamp)
	events = append(events, newEvent(EventStormMoved, "storm advanced", map[string]any{"delta": delta, "sector": out.StormSector}))

	order := StormOrderFrom(out, out.StormSector)
	out = SetStormOrder(out, order, timestamp)

	out = out.logAction("", "PHASE_ENDED", map[string]any{"phase": string(PhaseStorm)}, timestamp)
	return out, events, nil
}

// appendForcedDefault records a missing/invalid agent response and
// applies the phase's forced-default recovery (§4.E.10): the engine never
// blocks on a misbehaving agent.
func appendForcedDefault(s Snapshot, events []Event, f Faction, kind RequestKind, timestamp int64) (Snapshot, []Event) {
	out := s.logAction(f, "FORCED_DEFAULT_APPLIED", map[string]any{"request": string(kind)}, timestamp)
	events = append(events, newEvent(EventForcedDefault, "forced default applied", map[string]any{
		"faction": string(f), "request": string(kind),
	}))
	return out, events
}
