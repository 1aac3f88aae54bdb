package dune

import "context"

// OpenKaramaWindow records an interrupt opportunity: any faction holding
// a Karama card may cancel or prevent the named ability before it
// resolves (§4.E.8).
func OpenKaramaWindow(s Snapshot, kind KaramaInterruptKind, target Faction, ability string, context map[string]any, timestamp int64) Snapshot {
	out := s.clone()
	out.Karama = &KaramaState{Kind: kind, Target: target, Ability: ability, Context: context}
	return out.logAction("", "KARAMA_WINDOW_OPENED", map[string]any{"ability": ability, "target": string(target)}, timestamp)
}

// PollKaramaInterrupts asks every faction holding a Karama card whether
// it wants to play it into the currently open window, in storm order,
// stopping at the first yes.
func PollKaramaInterrupts(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, timestamp int64) (Snapshot, []Event) {
	var events []Event
	out := s
	if out.Karama == nil {
		return out, events
	}
	for _, f := range out.StormOrder {
		if !holdsKarama(out, f) {
			continue
		}
		provider, ok := providers[f]
		if !ok {
			continue
		}
		resp, err := provider.Answer(ctx, AgentRequest{
			Kind: RequestKaramaInterrupt, Faction: f, Snapshot: out,
			Data: map[string]any{"ability": out.Karama.Ability, "target": string(out.Karama.Target)},
		})
		if err != nil || resp.Missing || !resp.Bool {
			continue
		}
		out = discardFromHandByDef(out, f, "karama", timestamp)
		k := *out.Karama
		k.PlayedBy = f
		k.Discarded = true
		out.Karama = &k
		events = append(events, newEvent(EventKaramaPlayed, "karama played", map[string]any{
			"faction": string(f), "ability": out.Karama.Ability,
		}))
		break
	}
	return out, events
}

func holdsKarama(s Snapshot, f Faction) bool {
	for _, c := range s.Factions[f].Hand {
		if c.DefinitionID == "karama" {
			return true
		}
	}
	return false
}

// CloseKaramaWindow clears the open interrupt once resolved.
func CloseKaramaWindow(s Snapshot) Snapshot {
	out := s.clone()
	out.Karama = nil
	return out
}
