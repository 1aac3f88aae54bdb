package dune

import "context"

// RunSpiceBlowPhase draws the top card of the spice deck twice, once onto
// discard track A and once onto track B, placing spice or handling a
// Shai-Hulud reveal (§4.E.?, supplemented base-game two-deck spice blow).
// A worm appears in the territory of the last territory card on its
// track: non-Fremen forces there are destroyed and Fremen may ride it.
func RunSpiceBlowPhase(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, timestamp int64) (Snapshot, []Event, error) {
	var events []Event
	out := s.logAction("", "PHASE_STARTED", map[string]any{"phase": string(PhaseSpiceBlow)}, timestamp)

	sbCtx := &SpiceBlowContext{}
	out.PhaseContext = PhaseContext{SpiceBlow: sbCtx}

	for _, toB := range []bool{false, true} {
		next, card, rerr := DrawSpiceCard(out, toB, timestamp)
		if rerr != nil {
			continue
		}
		out = next
		if toB {
			out.PhaseContext.SpiceBlow.RevealedB = append(out.PhaseContext.SpiceBlow.RevealedB, card)
		} else {
			out.PhaseContext.SpiceBlow.RevealedA = append(out.PhaseContext.SpiceBlow.RevealedA, card)
		}

		if card.Kind == SpiceCardShaiHulud {
			events = append(events, newEvent(EventSpiceBlown, "shai-hulud appeared", map[string]any{"track": toB}))
			track := out.SpiceDiscardA
			if toB {
				track = out.SpiceDiscardB
			}
			for j := len(track) - 1; j >= 0; j-- {
				if track[j].Kind == SpiceCardTerritory {
					out.PhaseContext.SpiceBlow.ShaiHuludTerritoryID = track[j].TerritoryID
					break
				}
			}
			out, events = resolveShaiHulud(ctx, out, providers, events, timestamp)
			continue
		}

		out = PlaceSpiceOnBoard(out, card.TerritoryID, card.Sector, card.Amount, timestamp)
		events = append(events, newEvent(EventSpiceBlown, "spice blow revealed", map[string]any{
			"territoryId": string(card.TerritoryID), "amount": card.Amount,
		}))
	}

	out = out.logAction("", "PHASE_ENDED", map[string]any{"phase": string(PhaseSpiceBlow)}, timestamp)
	return out, events, nil
}

// resolveShaiHulud devours every faction present in the worm's territory
// (Fremen excepted) and, whenever Fremen has a provider, asks Fremen for a
// destination and moves the Fremen forces in the worm's territory there.
func resolveShaiHulud(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, events []Event, timestamp int64) (Snapshot, []Event) {
	out := s
	territoryID := out.PhaseContext.SpiceBlow.ShaiHuludTerritoryID
	if territoryID == "" {
		return out, events
	}
	for _, f := range out.Config.Factions {
		if f == Fremen {
			continue
		}
		st := ForcesInTerritory(out, f, territoryID)
		if st.Regular+st.Elite > 0 {
			out = KillForces(out, f, territoryID, st.Regular, st.Elite, timestamp)
		}
	}

	provider, ok := providers[Fremen]
	if !ok {
		return out, events
	}
	resp, err := provider.Answer(ctx, AgentRequest{
		Kind: RequestSpiceBlowChoice, Faction: Fremen, Snapshot: out,
		Data: map[string]any{"territoryId": string(territoryID)},
	})
	if err != nil || resp.Missing || resp.String == "" {
		out, events = appendForcedDefault(out, events, Fremen, RequestSpiceBlowChoice, timestamp)
		return out, events
	}
	dest := TerritoryID(resp.String)
	fs := out.Factions[Fremen]
	st, _ := findStack(fs, territoryID)
	mutated, rerr := MoveForces(out, Fremen, territoryID, dest, st.Regular, st.Elite, 0, timestamp)
	if rerr == nil {
		out = mutated
	}
	return out, events
}
