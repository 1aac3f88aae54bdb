package dune

const strongholdsNeededToWin = 3

// CheckWinCondition evaluates the end-of-Mentat-Pause win check (§ GLOSSARY
// "stronghold victory"): a faction (or an allied pair's combined total)
// holding at least strongholdsNeededToWin of the board's strongholds wins
// immediately. Fremen need only 2 strongholds, applied here. Guild's
// turn-cap win is checked separately by CheckTurnLimitWinner.
func CheckWinCondition(s Snapshot) (winner Faction, ok bool) {
	counts := map[Faction]int{}
	for _, id := range StrongholdIDs() {
		occupants := OccupantsOfTerritory(s, id)
		for _, f := range occupants {
			if IsBattleCapable(s, f, id) {
				counts[f]++
			}
		}
	}

	for _, f := range s.Config.Factions {
		total := counts[f]
		ally := AlliedWith(s, f)
		if ally != "" {
			total += counts[ally]
		}
		needed := strongholdsNeededToWin
		if f == Fremen {
			needed = 2
		}
		if total >= needed {
			return f, true
		}
	}
	return "", false
}

// CheckTurnLimitWinner applies the Guild fallback win: if the configured
// turn limit is reached with no stronghold winner, Guild wins outright
// (base-game tie-break rule).
func CheckTurnLimitWinner(s Snapshot) (Faction, bool) {
	if s.Turn < s.Config.MaxTurns {
		return "", false
	}
	if _, ok := s.Factions[Guild]; ok {
		return Guild, true
	}
	return "", false
}

// ApplyGameOver marks the snapshot as finished with the given winner.
func ApplyGameOver(s Snapshot, winner Faction, timestamp int64) (Snapshot, Event) {
	out := s.clone()
	out.GameOver = true
	out.Winner = winner
	out.Phase = PhaseGameOver
	out = out.logAction("", "GAME_ENDED", map[string]any{"winner": string(winner)}, timestamp)
	return out, newEvent(EventGameEnded, "game ended", map[string]any{"winner": string(winner)})
}
