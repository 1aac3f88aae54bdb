package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dunebench/engine/internal/repository"
	"github.com/dunebench/engine/pkg/dune"
)

// waiterRegistry holds the in-memory channels a running game's turn
// goroutine blocks on while a faction's answer is outstanding. Answers
// arrive from an HTTP handler (SubmitResponse) running on a different
// goroutine, so delivery has to go through a channel rather than a return
// value.
type waiterRegistry struct {
	mu sync.Mutex
	m  map[string]chan dune.AgentResponse
}

func newWaiterRegistry() *waiterRegistry {
	return &waiterRegistry{m: make(map[string]chan dune.AgentResponse)}
}

func waiterKey(gameID string, f dune.Faction) string {
	return gameID + "|" + string(f)
}

func (r *waiterRegistry) register(gameID string, f dune.Faction) chan dune.AgentResponse {
	ch := make(chan dune.AgentResponse, 1)
	r.mu.Lock()
	r.m[waiterKey(gameID, f)] = ch
	r.mu.Unlock()
	return ch
}

func (r *waiterRegistry) unregister(gameID string, f dune.Faction) {
	r.mu.Lock()
	delete(r.m, waiterKey(gameID, f))
	r.mu.Unlock()
}

// deliver hands resp to the waiting turn goroutine, if one is currently
// blocked on this faction's answer. Returns false if nobody is waiting
// (the request already timed out, or this faction has no pending
// question), which callers surface as a "nothing to answer" error.
func (r *waiterRegistry) deliver(gameID string, f dune.Faction, resp dune.AgentResponse) bool {
	r.mu.Lock()
	ch, ok := r.m[waiterKey(gameID, f)]
	r.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- resp:
		return true
	default:
		return false
	}
}

// cachedAgentProvider implements dune.AgentProvider for one faction of one
// live game: it publishes the pending question to the cache (so an HTTP
// client can poll for it) and blocks on the waiter registry until an
// answer is delivered or the phase deadline (carried by ctx) passes, at
// which point it reports Missing so the phase engine's own forced-default
// handling takes over (§4.E.10).
type cachedAgentProvider struct {
	gameID      string
	faction     dune.Faction
	cache       repository.GameCache
	waiters     *waiterRegistry
	broadcaster Broadcaster
}

func (p *cachedAgentProvider) Answer(ctx context.Context, req dune.AgentRequest) (dune.AgentResponse, error) {
	reqJSON, err := json.Marshal(map[string]any{
		"kind": req.Kind,
		"data": req.Data,
	})
	if err != nil {
		return dune.AgentResponse{}, fmt.Errorf("marshal pending request: %w", err)
	}
	if err := p.cache.SetPendingRequest(ctx, p.gameID, string(p.faction), reqJSON); err != nil {
		return dune.AgentResponse{}, fmt.Errorf("store pending request: %w", err)
	}

	ch := p.waiters.register(p.gameID, p.faction)
	defer p.waiters.unregister(p.gameID, p.faction)

	p.broadcaster.BroadcastGameEvent(p.gameID, "request_pending", map[string]any{
		"faction": p.faction,
		"kind":    req.Kind,
	})

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return dune.AgentResponse{Faction: p.faction, Missing: true}, nil
	}
}
