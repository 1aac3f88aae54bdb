package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dunebench/engine/pkg/dune"
)

// Orchestrator drives a full six-faction game against a running server,
// one out-of-process Client per faction. Grounded on the teacher's
// internal/bot Orchestrator, with the fixed 7-power assignment and
// movement/retreat/build order phases replaced by this domain's single
// pending-request/response cycle per faction per phase.
type Orchestrator struct {
	baseURL      string
	provider     dune.AgentProvider
	turnDuration time.Duration
	players      []*Player
}

// Player wraps a Client with its assigned faction.
type Player struct {
	Client  *Client
	Faction dune.Faction
}

// NewOrchestrator creates a new Orchestrator using the same AgentProvider
// for every seat (e.g. RandomAgent, for self-play regression games).
func NewOrchestrator(baseURL string, provider dune.AgentProvider, turnDuration time.Duration) *Orchestrator {
	return &Orchestrator{baseURL: baseURL, provider: provider, turnDuration: turnDuration}
}

// Run executes a full game: create players, create game, join, start, play loop.
func (o *Orchestrator) Run(ctx context.Context) error {
	factions := dune.AllFactions()
	log.Info().Int("factions", len(factions)).Dur("turnDuration", o.turnDuration).Msg("starting agent game")

	for i, f := range factions {
		name := fmt.Sprintf("Agent%d", i+1)
		c := NewClient(name, o.baseURL)
		if err := c.Login(); err != nil {
			return fmt.Errorf("login %s: %w", name, err)
		}
		o.players = append(o.players, &Player{Client: c, Faction: f})
	}

	gameID, err := o.players[0].Client.CreateGame("Agent self-play game", nil)
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	log.Info().Str("gameId", gameID).Msg("game created")

	for _, p := range o.players {
		if err := p.Client.JoinGame(gameID, string(p.Faction)); err != nil {
			return fmt.Errorf("join %s: %w", p.Client.Name(), err)
		}
	}
	log.Info().Msg("all factions joined")

	if err := o.players[0].Client.StartGame(gameID); err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	log.Info().Msg("game started")

	for _, p := range o.players {
		if err := p.Client.ConnectWS(); err != nil {
			return fmt.Errorf("ws connect %s: %w", p.Client.Name(), err)
		}
		if err := p.Client.SubscribeGame(gameID); err != nil {
			return fmt.Errorf("ws subscribe %s: %w", p.Client.Name(), err)
		}
	}
	defer func() {
		for _, p := range o.players {
			p.Client.CloseWS()
		}
	}()

	return o.playLoop(ctx, gameID)
}

// playLoop polls each player for a pending request, answers it via the
// configured AgentProvider, submits the response, then waits for the
// server to advance the phase or end the game.
func (o *Orchestrator) playLoop(ctx context.Context, gameID string) error {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("context cancelled, stopping agents")
			return ctx.Err()
		default:
		}

		answered := 0
		for _, p := range o.players {
			reqData, err := p.Client.GetPendingRequest(gameID)
			if err != nil {
				return fmt.Errorf("get pending request for %s: %w", p.Faction, err)
			}
			if reqData == nil {
				continue
			}

			req, err := decodeRequest(p.Faction, reqData)
			if err != nil {
				return fmt.Errorf("decode request for %s: %w", p.Faction, err)
			}

			resp, err := o.provider.Answer(ctx, req)
			if err != nil {
				log.Warn().Err(err).Str("faction", string(p.Faction)).Msg("agent answer failed, server will force-default")
				continue
			}

			payload, err := encodeResponse(resp)
			if err != nil {
				return fmt.Errorf("encode response for %s: %w", p.Faction, err)
			}
			if err := p.Client.SubmitResponse(gameID, payload); err != nil {
				log.Warn().Err(err).Str("faction", string(p.Faction)).Msg("submit response failed, continuing")
				continue
			}
			answered++
		}

		event, err := o.waitForEvent(ctx, o.players[0].Client, "phase_changed", "game_ended")
		if err != nil {
			return fmt.Errorf("wait for event: %w", err)
		}
		if event.Type == "game_ended" {
			winner, _ := event.Data["winner"].(string)
			log.Info().Str("winner", winner).Msg("game ended")
			return nil
		}

		if answered == 0 {
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// waitForEvent blocks until one of the given event types is received or context cancels.
func (o *Orchestrator) waitForEvent(ctx context.Context, c *Client, eventTypes ...string) (WSEvent, error) {
	typeSet := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		typeSet[t] = true
	}

	timeout := time.After(o.turnDuration + 30*time.Second)
	for {
		select {
		case <-ctx.Done():
			return WSEvent{}, ctx.Err()
		case <-timeout:
			return WSEvent{}, fmt.Errorf("timeout waiting for events %v", eventTypes)
		case event, ok := <-c.Events():
			if !ok {
				return WSEvent{}, fmt.Errorf("ws connection closed")
			}
			if typeSet[event.Type] {
				return event, nil
			}
			log.Debug().Str("type", event.Type).Msg("ignoring event")
		}
	}
}

func decodeRequest(faction dune.Faction, data map[string]any) (dune.AgentRequest, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return dune.AgentRequest{}, err
	}
	var req dune.AgentRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return dune.AgentRequest{}, err
	}
	req.Faction = faction
	return req, nil
}

func encodeResponse(resp dune.AgentResponse) (map[string]any, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
