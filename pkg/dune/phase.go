package dune

import "context"

// TurnParams carries the few values each turn's phases need that this
// package does not generate itself: randomness-derived inputs (storm
// card delta after turn 1, number of cards up for bid) and the wall-clock
// timestamp to stamp into the action log. Supplying these lets every
// mutation in this package stay a pure function of its arguments (§9).
type TurnParams struct {
	StormDelta int
	CardsUp    int
	Timestamp  int64
}

// StepPhase advances s by running exactly the phase named by s.Phase to
// completion, then returns the resulting Snapshot, its events, and
// whether the game ended. The caller advances s.Phase via NextPhaseName
// (and increments Turn at the MentatPause -> Storm wraparound) between
// calls; Component G's orchestrator does this in RunTurn/PlayGame.
func StepPhase(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, params TurnParams) (Snapshot, []Event, bool, error) {
	switch s.Phase {
	case PhaseStorm:
		out, events, err := RunStormPhase(ctx, s, providers, params.StormDelta, params.Timestamp)
		return out, events, false, err
	case PhaseSpiceBlow:
		out, events, err := RunSpiceBlowPhase(ctx, s, providers, params.Timestamp)
		return out, events, false, err
	case PhaseChoamCharity:
		out, events := RunChoamCharityPhase(s, params.Timestamp)
		return out, events, false, nil
	case PhaseBidding:
		out, events, err := RunBiddingPhase(ctx, s, providers, params.CardsUp, params.Timestamp)
		return out, events, false, err
	case PhaseRevival:
		out, events, err := RunRevivalPhase(ctx, s, providers, params.Timestamp)
		return out, events, false, err
	case PhaseShipmentMovement:
		out, events, err := RunShipmentMovementPhase(ctx, s, providers, params.Timestamp)
		return out, events, false, err
	case PhaseBattle:
		out, events, err := RunBattlePhase(ctx, s, providers, params.Timestamp)
		return out, events, false, err
	case PhaseCollection:
		out, events := RunCollectionPhase(s, params.Timestamp)
		return out, events, false, nil
	case PhaseMentatPause:
		out, events, gameOver := RunMentatPausePhase(ctx, s, providers, params.Timestamp)
		return out, events, gameOver, nil
	default:
		return s, nil, s.GameOver, nil
	}
}

// RunTurn steps through every phase of one turn in sequence, advancing
// s.Phase (and s.Turn, at the wraparound) between steps. It stops early
// if a phase reports the game has ended.
func RunTurn(ctx context.Context, s Snapshot, providers map[Faction]AgentProvider, params TurnParams) (Snapshot, []Event, bool, error) {
	var allEvents []Event
	out := s
	if out.Phase == PhaseSetup || out.Phase == PhaseGameOver {
		out.Phase = PhaseStorm
	}

	for {
		stepOut, events, gameOver, err := StepPhase(ctx, out, providers, params)
		if err != nil {
			return stepOut, allEvents, gameOver, err
		}
		out = stepOut
		allEvents = append(allEvents, events...)
		if gameOver {
			return out, allEvents, true, nil
		}

		finishedPhase := out.Phase
		next := NextPhaseName(finishedPhase)
		out.Phase = next
		if finishedPhase == PhaseMentatPause {
			out.Turn++
			if winner, ok := CheckTurnLimitWinner(out); ok {
				var ev Event
				out, ev = ApplyGameOver(out, winner, params.Timestamp)
				allEvents = append(allEvents, ev)
				return out, allEvents, true, nil
			}
			return out, allEvents, false, nil
		}
	}
}
