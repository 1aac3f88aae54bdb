package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for Redis game state.
func stateKey(gameID string) string             { return "game:" + gameID + ":state" }
func responseKey(gameID, faction string) string { return "game:" + gameID + ":response:" + faction }
func requestKey(gameID, faction string) string  { return "game:" + gameID + ":request:" + faction }
func answeredKey(gameID string) string          { return "game:" + gameID + ":answered" }
func timerKey(gameID string) string             { return "game:" + gameID + ":timer" }

// SetGameState stores the live game state JSON.
func (c *Client) SetGameState(ctx context.Context, gameID string, state json.RawMessage) error {
	return c.rdb.Set(ctx, stateKey(gameID), []byte(state), 0).Err()
}

// GetGameState retrieves the live game state JSON.
func (c *Client) GetGameState(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, stateKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get game state: %w", err)
	}
	return json.RawMessage(data), nil
}

// SetResponse stores a faction's answer to the current phase's pending request.
func (c *Client) SetResponse(ctx context.Context, gameID, faction string, response json.RawMessage) error {
	return c.rdb.Set(ctx, responseKey(gameID, faction), []byte(response), 0).Err()
}

// GetResponse retrieves a faction's submitted response.
func (c *Client) GetResponse(ctx context.Context, gameID, faction string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, responseKey(gameID, faction)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get response: %w", err)
	}
	return json.RawMessage(data), nil
}

// GetAllResponses retrieves responses from all factions that have answered.
func (c *Client) GetAllResponses(ctx context.Context, gameID string, factions []string) (map[string]json.RawMessage, error) {
	result := make(map[string]json.RawMessage)
	for _, faction := range factions {
		data, err := c.GetResponse(ctx, gameID, faction)
		if err != nil {
			return nil, err
		}
		if data != nil {
			result[faction] = data
		}
	}
	return result, nil
}

// SetPendingRequest stores the question currently posed to a faction, so an
// HTTP client can poll for it independently of the goroutine blocked
// waiting for the answer.
func (c *Client) SetPendingRequest(ctx context.Context, gameID, faction string, request json.RawMessage) error {
	return c.rdb.Set(ctx, requestKey(gameID, faction), []byte(request), 0).Err()
}

// GetPendingRequest retrieves the question currently posed to a faction, if any.
func (c *Client) GetPendingRequest(ctx context.Context, gameID, faction string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, requestKey(gameID, faction)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending request: %w", err)
	}
	return json.RawMessage(data), nil
}

// MarkAnswered adds a faction to the answered set for the game's current request.
func (c *Client) MarkAnswered(ctx context.Context, gameID, faction string) error {
	return c.rdb.SAdd(ctx, answeredKey(gameID), faction).Err()
}

// UnmarkAnswered removes a faction from the answered set.
func (c *Client) UnmarkAnswered(ctx context.Context, gameID, faction string) error {
	return c.rdb.SRem(ctx, answeredKey(gameID), faction).Err()
}

// AnsweredCount returns how many factions have answered.
func (c *Client) AnsweredCount(ctx context.Context, gameID string) (int64, error) {
	return c.rdb.SCard(ctx, answeredKey(gameID)).Result()
}

// AnsweredFactions returns the set of factions that have answered.
func (c *Client) AnsweredFactions(ctx context.Context, gameID string) ([]string, error) {
	return c.rdb.SMembers(ctx, answeredKey(gameID)).Result()
}

// phaseGracePeriod is the extra time after the displayed deadline that the
// timer key stays alive.
const phaseGracePeriod = 5 * time.Second

// SetTimer creates a timer key recording the phase deadline, with a TTL.
// Nothing subscribes to the key's expiry; forced defaults are applied
// in-process when the turn loop's deadline context runs out.
// The TTL includes a grace period so the key expires slightly after the displayed deadline.
func (c *Client) SetTimer(ctx context.Context, gameID string, deadline time.Time) error {
	ttl := time.Until(deadline) + phaseGracePeriod
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.rdb.Set(ctx, timerKey(gameID), deadline.Unix(), ttl).Err()
}

// ClearTimer removes the timer for a game.
func (c *Client) ClearTimer(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, timerKey(gameID)).Err()
}

// ClearPhaseData removes all responses, the answered set, and the timer
// for a game. Called after phase resolution to prepare for the next phase.
func (c *Client) ClearPhaseData(ctx context.Context, gameID string, factions []string) error {
	keys := []string{answeredKey(gameID), timerKey(gameID)}
	for _, faction := range factions {
		keys = append(keys, responseKey(gameID, faction), requestKey(gameID, faction))
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// DeleteGameData removes all Redis data for a game (on game end).
func (c *Client) DeleteGameData(ctx context.Context, gameID string, factions []string) error {
	keys := []string{stateKey(gameID), answeredKey(gameID), timerKey(gameID)}
	for _, faction := range factions {
		keys = append(keys, responseKey(gameID, faction), requestKey(gameID, faction))
	}
	return c.rdb.Del(ctx, keys...).Err()
}
