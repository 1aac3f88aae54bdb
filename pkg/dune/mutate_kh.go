package dune

// ThrowInKwisatzHaderach commits Atreides's Kwisatz Haderach to a battle
// in territoryID, adding +2 strength (applied by the combat kernel) once
// activated (cumulative forces lost >= 7, §4.E.6). Returns a RuleError if
// not yet activated, already dead, or already used this turn.
func ThrowInKwisatzHaderach(s Snapshot, territoryID TerritoryID, timestamp int64) (Snapshot, *RuleError) {
	fs := s.Factions[Atreides]
	if fs.KwisatzHaderach == nil || !fs.KwisatzHaderach.Activated {
		return s, newRuleError(ErrNotEligible, "kwisatzHaderach", "Kwisatz Haderach is not yet activated")
	}
	if !fs.KwisatzHaderach.Alive {
		return s, newRuleError(ErrNotEligible, "kwisatzHaderach", "Kwisatz Haderach has been killed")
	}
	if fs.KwisatzHaderach.UsedThisTurn {
		return s, newRuleError(ErrNotEligible, "kwisatzHaderach", "already committed to a battle this turn")
	}
	out := s.clone()
	a := out.Factions[Atreides]
	kh := *a.KwisatzHaderach
	kh.UsedThisTurn = true
	kh.UsedInTerritoryID = territoryID
	a.KwisatzHaderach = &kh
	out.Factions[Atreides] = a
	return out.logAction(Atreides, "KWISATZ_HADERACH_THROWN_IN",
		map[string]any{"territoryId": string(territoryID)}, timestamp), nil
}

// KillKwisatzHaderach sends the Kwisatz Haderach to the tanks (lost in a
// battle he was thrown into); he may be revived later for 2 spice like a
// leader.
func KillKwisatzHaderach(s Snapshot, timestamp int64) Snapshot {
	out := s.clone()
	a := out.Factions[Atreides]
	if a.KwisatzHaderach == nil {
		return out
	}
	kh := *a.KwisatzHaderach
	kh.Alive = false
	a.KwisatzHaderach = &kh
	out.Factions[Atreides] = a
	return out.logAction(Atreides, "KWISATZ_HADERACH_KILLED", nil, timestamp)
}

// ReviveKwisatzHaderach brings him back for the standard 2-spice leader
// revival cost, already deducted by the caller.
func ReviveKwisatzHaderach(s Snapshot, timestamp int64) Snapshot {
	out := s.clone()
	a := out.Factions[Atreides]
	if a.KwisatzHaderach == nil {
		return out
	}
	kh := *a.KwisatzHaderach
	kh.Alive = true
	a.KwisatzHaderach = &kh
	out.Factions[Atreides] = a
	return out.logAction(Atreides, "KWISATZ_HADERACH_REVIVED", nil, timestamp)
}
