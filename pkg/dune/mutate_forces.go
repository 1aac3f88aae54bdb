package dune

func findStack(fs FactionState, territoryID TerritoryID) (Stack, int) {
	for i, st := range fs.Pool.OnBoard {
		if st.TerritoryID == territoryID {
			return st, i
		}
	}
	return Stack{TerritoryID: territoryID, Sector: territorySector(territoryID)}, -1
}

func putStack(fs FactionState, st Stack) FactionState {
	_, idx := findStack(fs, st.TerritoryID)
	if st.Regular == 0 && st.Elite == 0 {
		if idx >= 0 {
			fs.Pool.OnBoard = append(fs.Pool.OnBoard[:idx], fs.Pool.OnBoard[idx+1:]...)
		}
		return fs
	}
	if idx >= 0 {
		fs.Pool.OnBoard[idx] = st
	} else {
		fs.Pool.OnBoard = append(fs.Pool.OnBoard, st)
	}
	return fs
}

// ShipForces moves forces from faction f's reserves onto the board at
// territoryID (§4.E.4). elite selects sardaukar/fedaykin vs regular.
func ShipForces(s Snapshot, f Faction, territoryID TerritoryID, regular, elite int, timestamp int64) (Snapshot, *RuleError) {
	fs := s.Factions[f]
	if regular > fs.Pool.ReservesRegular || elite > fs.Pool.ReservesElite {
		return s, newRuleError(ErrInsufficientReserves, "forces", "not enough forces in reserves")
	}
	if re := ValidateStrongholdOccupancy(s, territoryID, f); re != nil {
		return s, re
	}
	out := s.clone()
	fs = out.Factions[f]
	fs.Pool.ReservesRegular -= regular
	fs.Pool.ReservesElite -= elite
	st, _ := findStack(fs, territoryID)
	st.Regular += regular
	st.Elite += elite
	fs = putStack(fs, st)
	out.Factions[f] = fs
	return out.logAction(f, "FORCES_SHIPPED",
		map[string]any{"territoryId": string(territoryID), "regular": regular, "elite": elite}, timestamp), nil
}

// MoveForces relocates on-board forces from one territory to another for
// the same faction (§4.E.5). Does not check range/path validity; callers
// use FindPath/ReachableTerritories beforehand.
func MoveForces(s Snapshot, f Faction, fromID, toID TerritoryID, regular, elite, advisors int, timestamp int64) (Snapshot, *RuleError) {
	fs := s.Factions[f]
	from, _ := findStack(fs, fromID)
	if regular > from.Regular || elite > from.Elite || advisors > from.Advisors {
		return s, newRuleError(ErrInsufficientForces, "forces", "not enough forces present to move")
	}
	if re := ValidateStrongholdOccupancy(s, toID, f); re != nil {
		return s, re
	}
	out := s.clone()
	fs = out.Factions[f]
	from, _ = findStack(fs, fromID)
	from.Regular -= regular
	from.Elite -= elite
	from.Advisors -= advisors
	fs = putStack(fs, from)
	to, _ := findStack(fs, toID)
	to.Regular += regular
	to.Elite += elite
	to.Advisors += advisors
	fs = putStack(fs, to)
	out.Factions[f] = fs
	return out.logAction(f, "FORCES_MOVED", map[string]any{
		"from": string(fromID), "to": string(toID),
		"regular": regular, "elite": elite, "advisors": advisors,
	}, timestamp), nil
}

// KillForces sends forces from the board straight to the tanks (combat
// losses, storm destruction).
func KillForces(s Snapshot, f Faction, territoryID TerritoryID, regular, elite int, timestamp int64) Snapshot {
	out := s.clone()
	fs := out.Factions[f]
	st, _ := findStack(fs, territoryID)
	if regular > st.Regular {
		regular = st.Regular
	}
	if elite > st.Elite {
		elite = st.Elite
	}
	st.Regular -= regular
	st.Elite -= elite
	if st.Advisors > st.Regular {
		st.Advisors = st.Regular
	}
	fs = putStack(fs, st)
	fs.Pool.TanksRegular += regular
	fs.Pool.TanksElite += elite
	out.Factions[f] = fs
	if f == Atreides && out.Factions[f].KwisatzHaderach != nil {
		kh := *out.Factions[f].KwisatzHaderach
		kh.CumulativeForcesLost += regular + elite
		if !kh.Activated && kh.CumulativeForcesLost >= 7 {
			kh.Activated = true
			kh.Alive = true
		}
		fsA := out.Factions[f]
		fsA.KwisatzHaderach = &kh
		out.Factions[f] = fsA
	}
	return out.logAction(f, "FORCES_KILLED",
		map[string]any{"territoryId": string(territoryID), "regular": regular, "elite": elite}, timestamp)
}

// ReviveForces moves forces from the tanks back to reserves, the
// free-revival cap and paid-revival spice having already been checked by
// the revival kernel.
func ReviveForces(s Snapshot, f Faction, regular, elite int, timestamp int64) Snapshot {
	out := s.clone()
	fs := out.Factions[f]
	if regular > fs.Pool.TanksRegular {
		regular = fs.Pool.TanksRegular
	}
	if elite > fs.Pool.TanksElite {
		elite = fs.Pool.TanksElite
	}
	fs.Pool.TanksRegular -= regular
	fs.Pool.TanksElite -= elite
	fs.Pool.ReservesRegular += regular
	fs.Pool.ReservesElite += elite
	out.Factions[f] = fs
	return out.logAction(f, "FORCES_REVIVED", map[string]any{"regular": regular, "elite": elite}, timestamp)
}

// FlipToAdvisors converts Bene Gesserit fighting forces in territoryID to
// their non-combatant advisor side, or back (§4.E.7 Voice/Universal
// Stewards). toAdvisors selects the direction.
func FlipToAdvisors(s Snapshot, territoryID TerritoryID, toAdvisors bool, timestamp int64) Snapshot {
	out := s.clone()
	fs := out.Factions[BeneGesserit]
	st, _ := findStack(fs, territoryID)
	if toAdvisors {
		st.Advisors = st.Regular
	} else {
		st.Advisors = 0
	}
	fs = putStack(fs, st)
	out.Factions[BeneGesserit] = fs
	evtData := map[string]any{"territoryId": string(territoryID), "toAdvisors": toAdvisors}
	return out.logAction(BeneGesserit, "ADVISORS_FLIPPED", evtData, timestamp)
}
