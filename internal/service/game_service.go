package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/dunebench/engine/internal/model"
	"github.com/dunebench/engine/internal/repository"
	"github.com/dunebench/engine/pkg/dune"
)

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameNotWaiting   = errors.New("game is not in waiting status")
	ErrGameFull         = errors.New("all six factions are already seated")
	ErrNotEnough        = errors.New("need all six factions seated to start")
	ErrNotCreator       = errors.New("only the creator can start the game")
	ErrGameNotActive    = errors.New("game is not active")
	ErrAlreadyJoined    = errors.New("already joined this game")
	ErrNotInGame        = errors.New("you are not in this game")
	ErrFactionTaken     = errors.New("faction already assigned to another player")
	ErrInvalidFaction   = errors.New("invalid faction")
	ErrCannotSetFaction = errors.New("you can only set your own faction, or an agent's faction as creator")
	ErrNoPendingRequest = errors.New("faction has no pending request")
	ErrInvalidAgentKind = errors.New("invalid agent kind: must be hold or random")
)

// GameService handles game lifecycle operations: creation, seating, and
// the waiting -> active -> finished transitions. Turn-by-turn play itself
// is PhaseService's job once StartGame hands off.
type GameService struct {
	gameRepo  repository.GameRepository
	phaseRepo repository.PhaseRepository
	cache     repository.GameCache
	userRepo  repository.UserRepository
	phaseSvc  *PhaseService
}

// NewGameService creates a GameService.
func NewGameService(
	gameRepo repository.GameRepository,
	phaseRepo repository.PhaseRepository,
	cache repository.GameCache,
	userRepo repository.UserRepository,
	phaseSvc *PhaseService,
) *GameService {
	return &GameService{gameRepo: gameRepo, phaseRepo: phaseRepo, cache: cache, userRepo: userRepo, phaseSvc: phaseSvc}
}

// CreateGame creates a new game in "waiting" status and seats the creator
// at creatorFaction. phaseTimeout is a Go duration string (e.g. "2m");
// empty defaults to 2 minutes.
func (s *GameService) CreateGame(ctx context.Context, name, creatorID, creatorFaction, phaseTimeout string, variants dune.Variants) (*model.Game, error) {
	if !dune.Faction(creatorFaction).IsValid() {
		return nil, ErrInvalidFaction
	}
	phaseTimeoutPg := toPgInterval(phaseTimeout, "2 minutes")
	variantsJSON, err := json.Marshal(variants)
	if err != nil {
		return nil, fmt.Errorf("marshal variants: %w", err)
	}

	game, err := s.gameRepo.Create(ctx, name, creatorID, phaseTimeoutPg, string(variantsJSON))
	if err != nil {
		return nil, err
	}
	if err := s.gameRepo.JoinGame(ctx, game.ID, creatorID, creatorFaction); err != nil {
		return nil, err
	}

	return s.gameRepo.FindByID(ctx, game.ID)
}

// JoinGame seats a player at a specific faction in a waiting game,
// replacing a scripted agent if the faction is currently agent-held.
func (s *GameService) JoinGame(ctx context.Context, gameID, userID, faction string) error {
	if !dune.Faction(faction).IsValid() {
		return ErrInvalidFaction
	}

	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}

	for _, p := range game.Players {
		if p.UserID == userID {
			return ErrAlreadyJoined
		}
		if p.Faction == faction {
			if !p.IsAgent {
				return ErrFactionTaken
			}
			return s.gameRepo.ReplaceAgent(ctx, gameID, userID)
		}
	}

	return s.gameRepo.JoinGame(ctx, gameID, userID, faction)
}

// FillWithAgents seats a scripted agent (agentKind: "hold" or "random")
// at every faction not yet claimed, so a game can start without six
// human players.
func (s *GameService) FillWithAgents(ctx context.Context, gameID, requestingUserID, agentKind string) error {
	if agentKind != "hold" && agentKind != "random" {
		return ErrInvalidAgentKind
	}
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}
	if game.CreatorID != requestingUserID {
		return ErrNotCreator
	}

	taken := make(map[string]bool, len(game.Players))
	for _, p := range game.Players {
		if p.Faction != "" {
			taken[p.Faction] = true
		}
	}

	for i, f := range dune.AllFactions() {
		if taken[string(f)] {
			continue
		}
		providerID := fmt.Sprintf("agent-%s-%d", gameID, i+1)
		displayName := fmt.Sprintf("Agent (%s)", f)
		agentUser, err := s.userRepo.Upsert(ctx, "agent", providerID, displayName, "")
		if err != nil {
			return fmt.Errorf("create agent user for %s: %w", f, err)
		}
		if err := s.gameRepo.JoinGameAsAgent(ctx, gameID, agentUser.ID, string(f), agentKind); err != nil {
			return fmt.Errorf("seat agent at %s: %w", f, err)
		}
	}
	return nil
}

// StartGame builds the initial board state and hands the game off to
// PhaseService's turn loop. Requires all six factions seated.
func (s *GameService) StartGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "waiting" {
		return nil, ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if len(game.Players) != len(dune.AllFactions()) {
		return nil, ErrNotEnough
	}
	seated := make(map[string]bool, len(game.Players))
	for _, p := range game.Players {
		seated[p.Faction] = true
	}
	for _, f := range dune.AllFactions() {
		if !seated[string(f)] {
			return nil, ErrNotEnough
		}
	}

	var variants dune.Variants
	if err := json.Unmarshal([]byte(game.Variants), &variants); err != nil {
		return nil, fmt.Errorf("unmarshal variants: %w", err)
	}

	if err := s.gameRepo.MarkStarted(ctx, gameID); err != nil {
		return nil, err
	}
	game, err = s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	if err := s.phaseSvc.StartGame(ctx, game, variants, parseDuration(game.PhaseTimeout), rng); err != nil {
		return nil, fmt.Errorf("start turn loop: %w", err)
	}

	return s.gameRepo.FindByID(ctx, gameID)
}

// GetGame returns a game by ID.
func (s *GameService) GetGame(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// UpdateAgentKind changes a seated agent's scripted strategy.
func (s *GameService) UpdateAgentKind(ctx context.Context, gameID, userID, agentUserID, agentKind string) error {
	if agentKind != "hold" && agentKind != "random" {
		return ErrInvalidAgentKind
	}
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return ErrNotCreator
	}
	return s.gameRepo.UpdateAgentKind(ctx, gameID, agentUserID, agentKind)
}

// UpdatePlayerFaction reseats a player to a different faction before the
// game starts.
func (s *GameService) UpdatePlayerFaction(ctx context.Context, gameID, targetUserID, requestingUserID, faction string) error {
	if !dune.Faction(faction).IsValid() {
		return ErrInvalidFaction
	}

	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}

	var targetPlayer *model.GamePlayer
	for i := range game.Players {
		if game.Players[i].UserID == targetUserID {
			targetPlayer = &game.Players[i]
			break
		}
	}
	if targetPlayer == nil {
		return ErrNotInGame
	}

	if targetPlayer.IsAgent {
		if game.CreatorID != requestingUserID {
			return ErrNotCreator
		}
	} else if targetUserID != requestingUserID {
		return ErrCannotSetFaction
	}

	for _, p := range game.Players {
		if p.UserID != targetUserID && p.Faction == faction {
			return ErrFactionTaken
		}
	}

	return s.gameRepo.UpdatePlayerFaction(ctx, gameID, targetUserID, faction)
}

// DeleteGame removes a waiting game. Only the creator can delete it.
func (s *GameService) DeleteGame(ctx context.Context, gameID, userID string) error {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return ErrGameNotFound
	}
	if game.Status != "waiting" {
		return ErrGameNotWaiting
	}
	if game.CreatorID != userID {
		return ErrNotCreator
	}
	return s.gameRepo.Delete(ctx, gameID)
}

// StopGame ends an active game early with no declared winner. Only the
// creator can stop a game.
func (s *GameService) StopGame(ctx context.Context, gameID, userID string) (*model.Game, error) {
	game, err := s.gameRepo.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, ErrGameNotFound
	}
	if game.Status != "active" {
		return nil, ErrGameNotActive
	}
	if game.CreatorID != userID {
		return nil, ErrNotCreator
	}
	if err := s.gameRepo.SetFinished(ctx, gameID, ""); err != nil {
		return nil, err
	}
	if err := s.phaseSvc.CleanupStoppedGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.gameRepo.FindByID(ctx, gameID)
}

// ListGames returns open games, a user's games, or finished games. search
// narrows the finished list by name and is ignored for other filters.
func (s *GameService) ListGames(ctx context.Context, userID, filter, search string) ([]model.Game, error) {
	switch filter {
	case "my":
		return s.gameRepo.ListByUser(ctx, userID)
	case "finished":
		if search != "" {
			return s.gameRepo.SearchFinished(ctx, search)
		}
		return s.gameRepo.ListFinished(ctx)
	default:
		return s.gameRepo.ListOpen(ctx)
	}
}

// toPgInterval converts Go-style duration strings (e.g. "5m", "1h") to
// PostgreSQL interval format (e.g. "5 minutes", "60 minutes" for "1h").
// Durations of a minute or more are truncated to whole minutes. Returns
// defaultVal if input is empty or unparseable.
func toPgInterval(s, defaultVal string) string {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%d seconds", totalSeconds)
	}
	return fmt.Sprintf("%d minutes", totalSeconds/60)
}

// parseDuration converts Postgres interval strings like "24:00:00" or Go
// duration strings like "5m" to time.Duration.
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err == nil {
		return d
	}
	parts := strings.Split(s, ":")
	if len(parts) == 3 {
		h, e1 := strconv.Atoi(parts[0])
		m, e2 := strconv.Atoi(parts[1])
		sec, e3 := strconv.Atoi(parts[2])
		if e1 == nil && e2 == nil && e3 == nil {
			return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
		}
	}
	return 2 * time.Minute
}
