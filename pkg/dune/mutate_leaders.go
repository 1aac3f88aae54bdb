package dune

func findLeader(fs FactionState, id LeaderDefinitionID) (Leader, int) {
	for i, l := range fs.Leaders {
		if l.DefinitionID == id {
			return l, i
		}
	}
	return Leader{}, -1
}

// MarkLeaderUsed flags a leader as committed to battle this turn in
// territoryID (§3 invariant: a leader fights in at most one territory per
// turn).
func MarkLeaderUsed(s Snapshot, f Faction, id LeaderDefinitionID, territoryID TerritoryID, timestamp int64) Snapshot {
	out := s.clone()
	fs := out.Factions[f]
	l, idx := findLeader(fs, id)
	if idx < 0 {
		return out
	}
	l.UsedThisTurn = true
	l.UsedInTerritoryID = territoryID
	fs.Leaders[idx] = l
	out.Factions[f] = fs
	return out.logAction(f, "LEADER_USED",
		map[string]any{"leaderId": string(id), "territoryId": string(territoryID)}, timestamp)
}

// KillLeader sends a leader to the tanks, face up or face down depending
// on whether it died from a poison weapon (face down, per §4.E.6) or any
// other cause.
func KillLeader(s Snapshot, f Faction, id LeaderDefinitionID, faceDown bool, timestamp int64) Snapshot {
	out := s.clone()
	fs := out.Factions[f]
	l, idx := findLeader(fs, id)
	if idx < 0 {
		return out
	}
	l.HasBeenKilled = true
	l.UsedThisTurn = false
	if faceDown {
		l.Location = LeaderTanksFaceDown
	} else {
		l.Location = LeaderTanksFaceUp
	}
	fs.Leaders[idx] = l
	out.Factions[f] = fs
	return out.logAction(f, "LEADER_KILLED", map[string]any{"leaderId": string(id), "faceDown": faceDown}, timestamp)
}

// ReviveLeader returns a leader from the tanks to its owning faction's
// pool, available to lead again.
func ReviveLeader(s Snapshot, f Faction, id LeaderDefinitionID, timestamp int64) Snapshot {
	out := s.clone()
	fs := out.Factions[f]
	l, idx := findLeader(fs, id)
	if idx < 0 {
		return out
	}
	l.HasBeenKilled = false
	l.Location = LeaderInPool
	fs.Leaders[idx] = l
	out.Factions[f] = fs
	return out.logAction(f, "LEADER_RETURNED", map[string]any{"leaderId": string(id)}, timestamp)
}

// CaptureLeader moves a leader from its original faction's roster into
// Harkonnen's (§4.E.6 Harkonnen capture bonus, §4.D Harkonnen extensions).
// Only Harkonnen may be the captor.
func CaptureLeader(s Snapshot, originalFaction Faction, id LeaderDefinitionID, timestamp int64) Snapshot {
	out := s.clone()
	orig := out.Factions[originalFaction]
	l, idx := findLeader(orig, id)
	if idx < 0 {
		return out
	}
	orig.Leaders = append(orig.Leaders[:idx], orig.Leaders[idx+1:]...)
	out.Factions[originalFaction] = orig

	hrk := out.Factions[Harkonnen]
	l.Faction = Harkonnen
	l.CapturedBy = Harkonnen
	l.OriginalFaction = originalFaction
	l.Location = LeaderInPool
	hrk.Leaders = append(hrk.Leaders, l)
	hrk.HarkonnenCaptures = append(hrk.HarkonnenCaptures, HarkonnenCapture{
		LeaderDefinitionID: id, OriginalFaction: originalFaction,
	})
	out.Factions[Harkonnen] = hrk

	return out.logAction(Harkonnen, "LEADER_CAPTURED",
		map[string]any{"leaderId": string(id), "from": string(originalFaction)}, timestamp)
}

// ReleaseCapturedLeader returns a Harkonnen-held captive to its original
// faction, either via prison break or at the start of a later Mentat
// Pause (teacher-style forced-recovery timing, §4.E.6).
func ReleaseCapturedLeader(s Snapshot, id LeaderDefinitionID, timestamp int64) Snapshot {
	out := s.clone()
	hrk := out.Factions[Harkonnen]
	l, idx := findLeader(hrk, id)
	if idx < 0 {
		return out
	}
	original := l.OriginalFaction
	hrk.Leaders = append(hrk.Leaders[:idx], hrk.Leaders[idx+1:]...)
	newCaptures := hrk.HarkonnenCaptures[:0]
	for _, c := range hrk.HarkonnenCaptures {
		if c.LeaderDefinitionID != id {
			newCaptures = append(newCaptures, c)
		}
	}
	hrk.HarkonnenCaptures = newCaptures
	out.Factions[Harkonnen] = hrk

	owner := out.Factions[original]
	l.Faction = original
	l.CapturedBy = ""
	owner.Leaders = append(owner.Leaders, l)
	out.Factions[original] = owner

	return out.logAction(Harkonnen, "PRISON_BREAK",
		map[string]any{"leaderId": string(id), "to": string(original)}, timestamp)
}

// resetFactionTurnState clears per-turn counters and used-leader flags at
// the Mentat Pause / turn boundary (§4.E.9).
func resetFactionTurnState(s Snapshot, timestamp int64) Snapshot {
	out := s.clone()
	for f, fs := range out.Factions {
		fs.EliteRevivedThisTurn = 0
		fs.BidsPassedThisTurn = false
		for i := range fs.Leaders {
			fs.Leaders[i].UsedThisTurn = false
			fs.Leaders[i].UsedInTerritoryID = ""
		}
		if fs.KwisatzHaderach != nil {
			kh := *fs.KwisatzHaderach
			kh.UsedThisTurn = false
			fs.KwisatzHaderach = &kh
		}
		out.Factions[f] = fs
	}
	return out.logAction("", "TURN_STATE_RESET", nil, timestamp)
}
