package dune

import "context"

// PlayGame is Component G's thin driver: it repeatedly calls RunTurn
// until the game ends or the turn cap is hit, handing every event to
// onEvents as it's produced. TurnInputs supplies the per-turn
// randomness-derived parameters (storm delta, cards up for bid); the
// caller owns the random source, keeping this package's output a pure
// function of its inputs (§9).
type TurnInputs func(turn int) TurnParams

func PlayGame(ctx context.Context, start Snapshot, providers map[Faction]AgentProvider, inputs TurnInputs, onEvents func(turn int, events []Event)) (Snapshot, error) {
	s := start
	for !s.GameOver {
		params := inputs(s.Turn)
		next, events, gameOver, err := RunTurn(ctx, s, providers, params)
		if err != nil {
			return s, err
		}
		if onEvents != nil {
			onEvents(s.Turn, events)
		}
		s = next
		if gameOver {
			break
		}
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		default:
		}
	}
	return s, nil
}
