package dune

// Bene Gesserit-only abilities (§4.E.7): Voice (force an opponent's
// battle-plan choice, modeled as a constrained RequestBattlePlan the
// orchestrator issues before the real one) and advisors/fighters flips.
// The flip mutation itself lives in mutate_forces.go (FlipToAdvisors);
// this file holds the eligibility rule.

// CanFlipToFighters reports whether BG may flip advisors to fighters in
// territoryID: base-game rule is only when no other faction's fighting
// forces are present (flipping to fight would otherwise be an ambush).
func CanFlipToFighters(s Snapshot, territoryID TerritoryID) bool {
	for _, f := range s.Config.Factions {
		if f == BeneGesserit {
			continue
		}
		if IsBattleCapable(s, f, territoryID) {
			return false
		}
	}
	return true
}

// UniversalStewardsCollect applies the Bene Gesserit variant where
// advisor stacks still collect spice from their territory even though
// they cannot fight (§ SUPPLEMENTED FEATURES).
func UniversalStewardsCollect(s Snapshot, timestamp int64) Snapshot {
	out := s
	fs := out.Factions[BeneGesserit]
	for _, st := range fs.Pool.OnBoard {
		if st.Advisors == 0 {
			continue
		}
		for _, d := range out.SpiceOnBoard {
			if d.TerritoryID == st.TerritoryID && d.Amount > 0 {
				out = CollectSpice(out, BeneGesserit, st.TerritoryID, d.Amount, timestamp)
			}
		}
	}
	return out
}
