package dune

// RunCollectionPhase pays each faction spice for the spice-bearing
// territories it occupies (§ SUPPLEMENTED FEATURES, base-game spice
// collection: 2 per fighting force for most factions, 3 per force for
// Fremen, capped at the spice lying in the territory), then lets
// UniversalStewardsCollect run. Strongholds without a spice slot pay nothing.
func RunCollectionPhase(s Snapshot, timestamp int64) (Snapshot, []Event) {
	var events []Event
	out := s.logAction("", "PHASE_STARTED", map[string]any{"phase": string(PhaseCollection)}, timestamp)

	for _, t := range AllTerritories() {
		if !t.HasSpiceSlot {
			continue
		}
		for _, f := range out.Config.Factions {
			st := ForcesInTerritory(out, f, t.ID)
			fighting := st.Regular - st.Advisors + st.Elite
			if fighting <= 0 {
				continue
			}
			rate := 2
			if f == Fremen {
				rate = 3
			}
			collect := fighting * rate
			var available int
			for _, d := range out.SpiceOnBoard {
				if d.TerritoryID == t.ID {
					available += d.Amount
				}
			}
			if collect > available {
				collect = available
			}
			if collect <= 0 {
				continue
			}
			out = CollectSpice(out, f, t.ID, collect, timestamp)
			events = append(events, newEvent(EventSpiceBlown, "spice collected", map[string]any{
				"faction": string(f), "territoryId": string(t.ID), "amount": collect,
			}))
		}
	}

	out = UniversalStewardsCollect(out, timestamp)

	out = out.logAction("", "PHASE_ENDED", map[string]any{"phase": string(PhaseCollection)}, timestamp)
	return out, events
}
