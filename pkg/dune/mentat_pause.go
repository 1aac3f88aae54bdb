package dune

import "context"

// RunMentatPausePhase polls pending deals, checks the stronghold win
// condition, releases any Harkonnen prison-break-eligible leaders, and
// resets per-turn counters before the turn advances (§4.E.9).
func RunMentatPausePhase(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, timestamp int64) (Snapshot, []Event, bool) {
	var events []Event
	out := s.logAction("", "PHASE_STARTED", map[string]any{"phase": string(PhaseMentatPause)}, timestamp)

	var dealEvents []Event
	out, dealEvents = PollDealResponses(ctx, out, providers, timestamp)
	events = append(events, dealEvents...)

	for _, f := range out.Config.Factions {
		if ShouldTriggerPrisonBreak(out, f) {
			for _, c := range out.Factions[f].HarkonnenCaptures {
				out = ReleaseCapturedLeader(out, c.LeaderDefinitionID, timestamp)
				events = append(events, newEvent(EventPrisonBreak, "prison break", map[string]any{
					"leaderId": string(c.LeaderDefinitionID),
				}))
			}
		}
	}

	out = CloseNexus(out, timestamp)
	out = resetFactionTurnState(out, timestamp)

	gameOver := false
	if winner, ok := CheckWinCondition(out); ok {
		var ev Event
		out, ev = ApplyGameOver(out, winner, timestamp)
		events = append(events, ev)
		gameOver = true
	}

	out = out.logAction("", "PHASE_ENDED", map[string]any{"phase": string(PhaseMentatPause)}, timestamp)
	return out, events, gameOver
}
