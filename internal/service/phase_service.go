package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dunebench/engine/internal/agent"
	"github.com/dunebench/engine/internal/model"
	"github.com/dunebench/engine/internal/repository"
	"github.com/dunebench/engine/pkg/dune"
)

// PhaseService drives each active game's turn loop: one goroutine per game
// repeatedly steps the phase engine, persisting every phase boundary and
// blocking on cachedAgentProvider for each faction's answers.
type PhaseService struct {
	gameRepo    repository.GameRepository
	phaseRepo   repository.PhaseRepository
	cache       repository.GameCache
	broadcaster Broadcaster

	waiters *waiterRegistry

	mu      sync.Mutex
	cancels map[string]context.CancelFunc // gameID -> stop the turn goroutine
}

// NewPhaseService creates a PhaseService.
func NewPhaseService(
	gameRepo repository.GameRepository,
	phaseRepo repository.PhaseRepository,
	cache repository.GameCache,
	broadcaster Broadcaster,
) *PhaseService {
	if broadcaster == nil {
		broadcaster = NoopBroadcaster{}
	}
	return &PhaseService{
		gameRepo:    gameRepo,
		phaseRepo:   phaseRepo,
		cache:       cache,
		broadcaster: broadcaster,
		waiters:     newWaiterRegistry(),
		cancels:     make(map[string]context.CancelFunc),
	}
}

// RecoverActiveGames relaunches the turn goroutine for every game left
// active by a prior process; each loop resumes from the current phase's
// persisted snapshot. Called once on server startup.
func (s *PhaseService) RecoverActiveGames(ctx context.Context) error {
	games, err := s.gameRepo.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active games: %w", err)
	}
	if len(games) == 0 {
		log.Info().Msg("No active games to recover")
		return nil
	}
	log.Info().Int("count", len(games)).Msg("Recovering active games after restart")
	for _, game := range games {
		s.EnsureRunning(game.ID)
	}
	return nil
}

// EnsureRunning starts the turn goroutine for gameID if one isn't already
// running. Safe to call repeatedly (from the watchdog, from StartGame, or
// from recovery) — a second call while a goroutine is live is a no-op.
func (s *PhaseService) EnsureRunning(gameID string) {
	s.mu.Lock()
	if _, running := s.cancels[gameID]; running {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancels[gameID] = cancel
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.cancels, gameID)
			s.mu.Unlock()
		}()
		s.runGame(ctx, gameID)
	}()
}

// Stop cancels the running turn goroutine for a game, if any.
func (s *PhaseService) Stop(gameID string) {
	s.mu.Lock()
	cancel, ok := s.cancels[gameID]
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// SubmitResponse delivers a faction's answer to its currently blocked
// request. Returns ErrNoPendingRequest if the faction has no outstanding
// question (already answered, or the deadline already passed).
func (s *PhaseService) SubmitResponse(ctx context.Context, gameID string, resp dune.AgentResponse) error {
	if !s.waiters.deliver(gameID, resp.Faction, resp) {
		return ErrNoPendingRequest
	}
	if err := s.cache.MarkAnswered(ctx, gameID, string(resp.Faction)); err != nil {
		log.Warn().Err(err).Str("gameId", gameID).Str("faction", string(resp.Faction)).Msg("Failed to mark faction answered")
	}
	respJSON, err := json.Marshal(resp)
	if err == nil {
		if err := s.cache.SetResponse(ctx, gameID, string(resp.Faction), respJSON); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to cache response")
		}
	}
	s.broadcaster.BroadcastGameEvent(gameID, "response_submitted", map[string]any{
		"faction": resp.Faction,
	})
	return nil
}

// GetPendingRequest returns the question currently posed to a faction, if any.
func (s *PhaseService) GetPendingRequest(ctx context.Context, gameID, faction string) (json.RawMessage, error) {
	return s.cache.GetPendingRequest(ctx, gameID, faction)
}

// StartGame builds the initial snapshot, persists the first phase, primes
// the cache, and launches the turn goroutine. Called once by GameService
// after a game's factions are all seated.
func (s *PhaseService) StartGame(ctx context.Context, game *model.Game, variants dune.Variants, phaseTimeout time.Duration, rng *rand.Rand) error {
	cfg := dune.Config{Factions: dune.AllFactions(), MaxTurns: 10, Variants: variants}

	deck := dune.AllTreacheryCardDefinitionIDs()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	spice := dune.NewSpiceDeck()
	rng.Shuffle(len(spice), func(i, j int) { spice[i], spice[j] = spice[j], spice[i] })

	snap := dune.NewInitialState(cfg, deck, spice)

	stateJSON, err := dune.MarshalSnapshot(snap)
	if err != nil {
		return fmt.Errorf("marshal initial state: %w", err)
	}

	deadline := time.Now().Add(phaseTimeout)
	if _, err := s.phaseRepo.CreatePhase(ctx, game.ID, snap.Turn, string(snap.Phase), stateJSON, deadline); err != nil {
		return fmt.Errorf("create first phase: %w", err)
	}

	if err := s.cache.SetGameState(ctx, game.ID, stateJSON); err != nil {
		return fmt.Errorf("set initial game state: %w", err)
	}
	if err := s.cache.SetTimer(ctx, game.ID, deadline); err != nil {
		return fmt.Errorf("set initial timer: %w", err)
	}

	s.broadcaster.BroadcastGameEvent(game.ID, "phase_changed", map[string]any{
		"turn":     snap.Turn,
		"phase":    string(snap.Phase),
		"deadline": deadline.Format(time.RFC3339),
	})

	s.EnsureRunning(game.ID)
	return nil
}

// runGame is the per-game turn loop: step the current phase to
// completion, persist the result, and advance to the next phase (or end
// the game), forever until ctx is cancelled or the game ends.
func (s *PhaseService) runGame(ctx context.Context, gameID string) {
	log.Info().Str("gameId", gameID).Msg("Turn loop started")
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		game, err := s.gameRepo.FindByID(ctx, gameID)
		if err != nil || game == nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("Turn loop: failed to load game")
			return
		}
		if game.Status != "active" {
			return
		}

		phase, err := s.phaseRepo.CurrentPhase(ctx, gameID)
		if err != nil || phase == nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("Turn loop: failed to load current phase")
			return
		}

		snap, err := dune.UnmarshalSnapshot(phase.StateBefore)
		if err != nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("Turn loop: failed to unmarshal snapshot")
			return
		}

		providers := s.buildProviders(gameID, game.Players)
		params := dune.TurnParams{
			StormDelta: stormDeltaFor(snap.Turn),
			CardsUp:    len(dune.AllFactions()),
			Timestamp:  time.Now().Unix(),
		}

		stepCtx, cancel := context.WithDeadline(ctx, phase.Deadline)
		next, events, gameOver, err := dune.StepPhase(stepCtx, snap, providers, params)
		cancel()
		if err != nil {
			log.Error().Err(err).Str("gameId", gameID).Str("phase", string(snap.Phase)).Msg("Phase step failed")
			return
		}

		nextJSON, err := dune.MarshalSnapshot(next)
		if err != nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("Turn loop: failed to marshal result snapshot")
			return
		}
		if err := s.phaseRepo.ResolvePhase(ctx, phase.ID, nextJSON); err != nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("Turn loop: failed to persist resolved phase")
			return
		}
		s.broadcastEvents(gameID, events)

		factionStrs := factionStrings(dune.AllFactions())
		if err := s.cache.ClearPhaseData(ctx, gameID, factionStrs); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to clear phase data")
		}

		if gameOver || next.GameOver {
			s.finishGame(ctx, game, next, factionStrs)
			return
		}

		finishedPhase := next.Phase
		next.Phase = dune.NextPhaseName(finishedPhase)
		if finishedPhase == dune.PhaseMentatPause {
			next.Turn++
			if winner, ok := dune.CheckTurnLimitWinner(next); ok {
				next, ev := dune.ApplyGameOver(next, winner, time.Now().Unix())
				s.broadcastEvents(gameID, []dune.Event{ev})
				s.finishGame(ctx, game, next, factionStrs)
				return
			}
		}

		newStateJSON, err := dune.MarshalSnapshot(next)
		if err != nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("Turn loop: failed to marshal next phase state")
			return
		}
		deadline := time.Now().Add(parseDuration(game.PhaseTimeout))
		if _, err := s.phaseRepo.CreatePhase(ctx, gameID, next.Turn, string(next.Phase), newStateJSON, deadline); err != nil {
			log.Error().Err(err).Str("gameId", gameID).Msg("Turn loop: failed to create next phase")
			return
		}
		if err := s.cache.SetGameState(ctx, gameID, newStateJSON); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to set new game state")
		}
		if err := s.cache.SetTimer(ctx, gameID, deadline); err != nil {
			log.Warn().Err(err).Str("gameId", gameID).Msg("Failed to set new timer")
		}

		s.broadcaster.BroadcastGameEvent(gameID, "phase_changed", map[string]any{
			"turn":     next.Turn,
			"phase":    string(next.Phase),
			"deadline": deadline.Format(time.RFC3339),
		})
	}
}

func (s *PhaseService) finishGame(ctx context.Context, game *model.Game, final dune.Snapshot, factions []string) {
	if err := s.gameRepo.SetFinished(ctx, game.ID, string(final.Winner)); err != nil {
		log.Error().Err(err).Str("gameId", game.ID).Msg("Failed to mark game finished")
	}
	s.broadcaster.BroadcastGameEvent(game.ID, "game_ended", map[string]any{
		"winner": string(final.Winner),
	})
	if err := s.cache.DeleteGameData(ctx, game.ID, factions); err != nil {
		log.Warn().Err(err).Str("gameId", game.ID).Msg("Failed to delete game cache data")
	}
	log.Info().Str("gameId", game.ID).Str("winner", string(final.Winner)).Msg("Game finished")
}

// CleanupStoppedGame broadcasts the game_ended event and clears cached
// data for a game the creator stopped manually.
func (s *PhaseService) CleanupStoppedGame(ctx context.Context, gameID string) error {
	s.Stop(gameID)
	return s.cache.DeleteGameData(ctx, gameID, factionStrings(dune.AllFactions()))
}

// buildProviders returns one AgentProvider per seated faction: scripted
// agent seats answer in-process (HoldAgent/RandomAgent, no HTTP round
// trip), human seats block on cachedAgentProvider until an HTTP client
// answers or the phase deadline passes.
func (s *PhaseService) buildProviders(gameID string, players []model.GamePlayer) map[dune.Faction]dune.AgentProvider {
	providers := make(map[dune.Faction]dune.AgentProvider, len(players))
	for _, p := range players {
		f := dune.Faction(p.Faction)
		if p.IsAgent {
			providers[f] = scriptedAgentFor(p.AgentKind)
			continue
		}
		providers[f] = &cachedAgentProvider{
			gameID:      gameID,
			faction:     f,
			cache:       s.cache,
			waiters:     s.waiters,
			broadcaster: s.broadcaster,
		}
	}
	return providers
}

func scriptedAgentFor(agentKind string) dune.AgentProvider {
	if agentKind == "random" {
		return agent.RandomAgent{}
	}
	return agent.HoldAgent{}
}

func (s *PhaseService) broadcastEvents(gameID string, events []dune.Event) {
	for _, ev := range events {
		s.broadcaster.BroadcastGameEvent(gameID, string(ev.Type), map[string]any{
			"message": ev.Message,
			"data":    ev.Data,
		})
	}
}

func factionStrings(factions []dune.Faction) []string {
	out := make([]string, len(factions))
	for i, f := range factions {
		out[i] = string(f)
	}
	return out
}

// stormDeltaFor returns the randomness-derived storm movement for turns
// after the first (turn 1 is dialed live by every configured faction;
// see RunStormPhase). Later turns draw from an implicit 6-card deck.
func stormDeltaFor(turn int) int {
	if turn <= 1 {
		return 0
	}
	return 1 + rand.Intn(6)
}
