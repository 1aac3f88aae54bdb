package model

import (
	"encoding/json"
	"time"
)

// User represents a registered player.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Game represents a single run of the engine from lobby to conclusion.
type Game struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	CreatorID    string       `json:"creator_id"`
	Status       string       `json:"status"` // waiting, active, finished
	Winner       string       `json:"winner,omitempty"`
	PhaseTimeout string       `json:"phase_timeout"`
	Variants     string       `json:"variants"` // JSON-encoded dune.Variants
	CreatedAt    time.Time    `json:"created_at"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
	Players      []GamePlayer `json:"players,omitempty"`
}

// GamePlayer represents a player's membership in a game, seated at one faction.
type GamePlayer struct {
	GameID    string    `json:"game_id"`
	UserID    string    `json:"user_id"`
	Faction   string    `json:"faction,omitempty"`
	IsAgent   bool      `json:"is_agent"`
	AgentKind string    `json:"agent_kind,omitempty"` // hold, random
	JoinedAt  time.Time `json:"joined_at"`
}

// Phase persists one step of the turn/phase state machine: the snapshot
// entering the phase, the snapshot after it resolved (once known), and
// the deadline by which outstanding agent requests force-default.
type Phase struct {
	ID          string          `json:"id"`
	GameID      string          `json:"game_id"`
	Turn        int             `json:"turn"`
	PhaseName   string          `json:"phase_name"`
	StateBefore json.RawMessage `json:"state_before"`
	StateAfter  json.RawMessage `json:"state_after,omitempty"`
	Deadline    time.Time       `json:"deadline"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AgentResponseRecord persists one faction's answer to one pending
// request within a phase, for replay and audit.
type AgentResponseRecord struct {
	ID        string    `json:"id"`
	PhaseID   string    `json:"phase_id"`
	Faction   string    `json:"faction"`
	Kind      string    `json:"kind"`
	Response  string    `json:"response"` // JSON-encoded dune.AgentResponse
	CreatedAt time.Time `json:"created_at"`
}

// Message represents an in-game communication: public table talk, a
// private negotiation between two factions, or a structured deal
// proposal/response (Data carries the dune.Deal payload when Kind is
// "deal").
type Message struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id,omitempty"` // empty = public broadcast
	Kind        string    `json:"kind"`                   // chat, deal
	Content     string    `json:"content"`
	Data        string    `json:"data,omitempty"` // JSON-encoded payload for Kind=deal
	PhaseID     string    `json:"phase_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
