package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dunebench/engine/internal/model"
)

// UserRepository defines user data operations.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByProviderID(ctx context.Context, provider, providerID string) (*model.User, error)
	Upsert(ctx context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
}

// GameRepository defines game and seating data operations.
type GameRepository interface {
	Create(ctx context.Context, name, creatorID, phaseTimeout, variants string) (*model.Game, error)
	FindByID(ctx context.Context, id string) (*model.Game, error)
	ListOpen(ctx context.Context) ([]model.Game, error)
	ListByUser(ctx context.Context, userID string) ([]model.Game, error)
	ListFinished(ctx context.Context) ([]model.Game, error)
	SearchFinished(ctx context.Context, search string) ([]model.Game, error)
	JoinGame(ctx context.Context, gameID, userID, faction string) error
	JoinGameAsAgent(ctx context.Context, gameID, userID, faction, agentKind string) error
	ReplaceAgent(ctx context.Context, gameID, newUserID string) error
	PlayerCount(ctx context.Context, gameID string) (int, error)
	ListActive(ctx context.Context) ([]model.Game, error)
	MarkStarted(ctx context.Context, gameID string) error
	SetFinished(ctx context.Context, gameID, winner string) error
	Delete(ctx context.Context, gameID string) error
	UpdateAgentKind(ctx context.Context, gameID, agentUserID, agentKind string) error
	UpdatePlayerFaction(ctx context.Context, gameID, userID, faction string) error
}

// PhaseRepository defines phase and agent-response data operations.
type PhaseRepository interface {
	CreatePhase(ctx context.Context, gameID string, turn int, phaseName string, stateBefore json.RawMessage, deadline time.Time) (*model.Phase, error)
	CurrentPhase(ctx context.Context, gameID string) (*model.Phase, error)
	ListPhases(ctx context.Context, gameID string) ([]model.Phase, error)
	ResolvePhase(ctx context.Context, phaseID string, stateAfter json.RawMessage) error
	SaveResponses(ctx context.Context, responses []model.AgentResponseRecord) error
	ResponsesByPhase(ctx context.Context, phaseID string) ([]model.AgentResponseRecord, error)
	ListExpired(ctx context.Context) ([]model.Phase, error)
}

// MessageRepository defines message and deal-negotiation data operations.
type MessageRepository interface {
	Create(ctx context.Context, gameID, senderID, recipientID, kind, content, data, phaseID string) (*model.Message, error)
	ListByGame(ctx context.Context, gameID, userID string) ([]model.Message, error)
}

// GameCache defines live game state operations (Redis): the current
// snapshot, pending per-faction requests, the responses submitted to them
// and the phase timer. Responses held here are not copied to Postgres.
type GameCache interface {
	SetGameState(ctx context.Context, gameID string, state json.RawMessage) error
	GetGameState(ctx context.Context, gameID string) (json.RawMessage, error)
	SetResponse(ctx context.Context, gameID, faction string, response json.RawMessage) error
	GetResponse(ctx context.Context, gameID, faction string) (json.RawMessage, error)
	GetAllResponses(ctx context.Context, gameID string, factions []string) (map[string]json.RawMessage, error)
	SetPendingRequest(ctx context.Context, gameID, faction string, request json.RawMessage) error
	GetPendingRequest(ctx context.Context, gameID, faction string) (json.RawMessage, error)
	MarkAnswered(ctx context.Context, gameID, faction string) error
	UnmarkAnswered(ctx context.Context, gameID, faction string) error
	AnsweredCount(ctx context.Context, gameID string) (int64, error)
	AnsweredFactions(ctx context.Context, gameID string) ([]string, error)
	SetTimer(ctx context.Context, gameID string, deadline time.Time) error
	ClearTimer(ctx context.Context, gameID string) error
	ClearPhaseData(ctx context.Context, gameID string, factions []string) error
	DeleteGameData(ctx context.Context, gameID string, factions []string) error
}
