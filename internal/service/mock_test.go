package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dunebench/engine/internal/model"
)

// mockGameRepo implements repository.GameRepository for testing.
type mockGameRepo struct {
	games   map[string]*model.Game
	players map[string][]model.GamePlayer
}

func newMockGameRepo() *mockGameRepo {
	return &mockGameRepo{
		games:   make(map[string]*model.Game),
		players: make(map[string][]model.GamePlayer),
	}
}

func (m *mockGameRepo) Create(_ context.Context, name, creatorID, phaseTimeout, variants string) (*model.Game, error) {
	g := &model.Game{
		ID:           fmt.Sprintf("game-%d", len(m.games)+1),
		Name:         name,
		CreatorID:    creatorID,
		Status:       "waiting",
		PhaseTimeout: phaseTimeout,
		Variants:     variants,
		CreatedAt:    time.Now(),
	}
	m.games[g.ID] = g
	return g, nil
}

func (m *mockGameRepo) FindByID(_ context.Context, id string) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	cp.Players = m.players[id]
	return &cp, nil
}

func (m *mockGameRepo) ListOpen(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "waiting" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListByUser(_ context.Context, userID string) ([]model.Game, error) {
	seen := make(map[string]bool)
	var result []model.Game
	for gameID, players := range m.players {
		for _, p := range players {
			if p.UserID == userID && !seen[gameID] {
				if g, ok := m.games[gameID]; ok {
					result = append(result, *g)
					seen[gameID] = true
				}
			}
		}
	}
	for _, g := range m.games {
		if g.CreatorID == userID && !seen[g.ID] {
			result = append(result, *g)
			seen[g.ID] = true
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListFinished(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "finished" {
			cp := *g
			cp.Players = m.players[g.ID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockGameRepo) SearchFinished(_ context.Context, search string) ([]model.Game, error) {
	lower := strings.ToLower(search)
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "finished" && strings.Contains(strings.ToLower(g.Name), lower) {
			cp := *g
			cp.Players = m.players[g.ID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockGameRepo) JoinGame(_ context.Context, gameID, userID, faction string) error {
	m.players[gameID] = append(m.players[gameID], model.GamePlayer{
		GameID:   gameID,
		UserID:   userID,
		Faction:  faction,
		JoinedAt: time.Now(),
	})
	return nil
}

func (m *mockGameRepo) JoinGameAsAgent(_ context.Context, gameID, userID, faction, agentKind string) error {
	m.players[gameID] = append(m.players[gameID], model.GamePlayer{
		GameID:    gameID,
		UserID:    userID,
		Faction:   faction,
		IsAgent:   true,
		AgentKind: agentKind,
		JoinedAt:  time.Now(),
	})
	return nil
}

func (m *mockGameRepo) ReplaceAgent(_ context.Context, gameID, newUserID string) error {
	players := m.players[gameID]
	for i, p := range players {
		if p.IsAgent {
			m.players[gameID][i] = model.GamePlayer{
				GameID:   gameID,
				UserID:   newUserID,
				Faction:  p.Faction,
				JoinedAt: time.Now(),
			}
			return nil
		}
	}
	return fmt.Errorf("no agent to replace")
}

func (m *mockGameRepo) PlayerCount(_ context.Context, gameID string) (int, error) {
	return len(m.players[gameID]), nil
}

func (m *mockGameRepo) ListActive(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "active" {
			cp := *g
			cp.Players = m.players[g.ID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockGameRepo) MarkStarted(_ context.Context, gameID string) error {
	if g, ok := m.games[gameID]; ok {
		g.Status = "active"
		now := time.Now()
		g.StartedAt = &now
	}
	return nil
}

func (m *mockGameRepo) SetFinished(_ context.Context, gameID, winner string) error {
	if g, ok := m.games[gameID]; ok {
		g.Status = "finished"
		g.Winner = winner
		now := time.Now()
		g.FinishedAt = &now
	}
	return nil
}

func (m *mockGameRepo) Delete(_ context.Context, gameID string) error {
	delete(m.games, gameID)
	delete(m.players, gameID)
	return nil
}

func (m *mockGameRepo) UpdateAgentKind(_ context.Context, gameID, agentUserID, agentKind string) error {
	players := m.players[gameID]
	for i, p := range players {
		if p.UserID == agentUserID && p.IsAgent {
			players[i].AgentKind = agentKind
			return nil
		}
	}
	return fmt.Errorf("agent not found")
}

func (m *mockGameRepo) UpdatePlayerFaction(_ context.Context, gameID, userID, faction string) error {
	players := m.players[gameID]
	for i, p := range players {
		if p.UserID == userID {
			players[i].Faction = faction
			return nil
		}
	}
	return fmt.Errorf("player not found")
}

// mockUserRepo implements repository.UserRepository for testing.
type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) FindByProviderID(_ context.Context, provider, providerID string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Upsert(_ context.Context, provider, providerID, displayName, avatarURL string) (*model.User, error) {
	for _, u := range m.users {
		if u.Provider == provider && u.ProviderID == providerID {
			u.DisplayName = displayName
			return u, nil
		}
	}
	m.seq++
	u := &model.User{
		ID:          fmt.Sprintf("agent-user-%d", m.seq),
		Provider:    provider,
		ProviderID:  providerID,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserRepo) UpdateDisplayName(_ context.Context, id, displayName string) error {
	if u, ok := m.users[id]; ok {
		u.DisplayName = displayName
	}
	return nil
}

// mockPhaseRepo implements repository.PhaseRepository for testing.
type mockPhaseRepo struct {
	phases    map[string]*model.Phase
	responses map[string][]model.AgentResponseRecord
}

func newMockPhaseRepo() *mockPhaseRepo {
	return &mockPhaseRepo{
		phases:    make(map[string]*model.Phase),
		responses: make(map[string][]model.AgentResponseRecord),
	}
}

func (m *mockPhaseRepo) CreatePhase(_ context.Context, gameID string, turn int, phaseName string, stateBefore json.RawMessage, deadline time.Time) (*model.Phase, error) {
	p := &model.Phase{
		ID:          fmt.Sprintf("phase-%d", len(m.phases)+1),
		GameID:      gameID,
		Turn:        turn,
		PhaseName:   phaseName,
		StateBefore: stateBefore,
		Deadline:    deadline,
		CreatedAt:   time.Now(),
	}
	m.phases[p.ID] = p
	return p, nil
}

func (m *mockPhaseRepo) CurrentPhase(_ context.Context, gameID string) (*model.Phase, error) {
	for _, p := range m.phases {
		if p.GameID == gameID && p.ResolvedAt == nil {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockPhaseRepo) ListPhases(_ context.Context, gameID string) ([]model.Phase, error) {
	var result []model.Phase
	for _, p := range m.phases {
		if p.GameID == gameID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPhaseRepo) ResolvePhase(_ context.Context, phaseID string, stateAfter json.RawMessage) error {
	if p, ok := m.phases[phaseID]; ok {
		p.StateAfter = stateAfter
		now := time.Now()
		p.ResolvedAt = &now
	}
	return nil
}

func (m *mockPhaseRepo) SaveResponses(_ context.Context, responses []model.AgentResponseRecord) error {
	for _, r := range responses {
		m.responses[r.PhaseID] = append(m.responses[r.PhaseID], r)
	}
	return nil
}

func (m *mockPhaseRepo) ResponsesByPhase(_ context.Context, phaseID string) ([]model.AgentResponseRecord, error) {
	return m.responses[phaseID], nil
}

func (m *mockPhaseRepo) ListExpired(_ context.Context) ([]model.Phase, error) {
	return nil, nil
}

// mockMessageRepo implements repository.MessageRepository for testing.
type mockMessageRepo struct {
	messages map[string][]model.Message
	seq      int
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{messages: make(map[string][]model.Message)}
}

func (m *mockMessageRepo) Create(_ context.Context, gameID, senderID, recipientID, kind, content, data, phaseID string) (*model.Message, error) {
	m.seq++
	msg := &model.Message{
		ID:          fmt.Sprintf("msg-%d", m.seq),
		GameID:      gameID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Kind:        kind,
		Content:     content,
		Data:        data,
		PhaseID:     phaseID,
		CreatedAt:   time.Now(),
	}
	m.messages[gameID] = append(m.messages[gameID], *msg)
	return msg, nil
}

func (m *mockMessageRepo) ListByGame(_ context.Context, gameID, userID string) ([]model.Message, error) {
	var result []model.Message
	for _, msg := range m.messages[gameID] {
		if msg.RecipientID == "" || msg.RecipientID == userID || msg.SenderID == userID {
			result = append(result, msg)
		}
	}
	return result, nil
}

// mockCache implements repository.GameCache for testing.
type mockCache struct {
	states    map[string]json.RawMessage
	responses map[string]json.RawMessage // key: "gameID:faction"
	requests  map[string]json.RawMessage // key: "gameID:faction"
	answered  map[string]map[string]bool // gameID -> set of factions
	timers    map[string]time.Time
}

func newMockCache() *mockCache {
	return &mockCache{
		states:    make(map[string]json.RawMessage),
		responses: make(map[string]json.RawMessage),
		requests:  make(map[string]json.RawMessage),
		answered:  make(map[string]map[string]bool),
		timers:    make(map[string]time.Time),
	}
}

func (c *mockCache) SetGameState(_ context.Context, gameID string, state json.RawMessage) error {
	c.states[gameID] = state
	return nil
}

func (c *mockCache) GetGameState(_ context.Context, gameID string) (json.RawMessage, error) {
	return c.states[gameID], nil
}

func (c *mockCache) SetResponse(_ context.Context, gameID, faction string, response json.RawMessage) error {
	c.responses[gameID+":"+faction] = response
	return nil
}

func (c *mockCache) GetResponse(_ context.Context, gameID, faction string) (json.RawMessage, error) {
	return c.responses[gameID+":"+faction], nil
}

func (c *mockCache) GetAllResponses(_ context.Context, gameID string, factions []string) (map[string]json.RawMessage, error) {
	result := make(map[string]json.RawMessage)
	for _, faction := range factions {
		if data, ok := c.responses[gameID+":"+faction]; ok {
			result[faction] = data
		}
	}
	return result, nil
}

func (c *mockCache) SetPendingRequest(_ context.Context, gameID, faction string, request json.RawMessage) error {
	c.requests[gameID+":"+faction] = request
	return nil
}

func (c *mockCache) GetPendingRequest(_ context.Context, gameID, faction string) (json.RawMessage, error) {
	return c.requests[gameID+":"+faction], nil
}

func (c *mockCache) MarkAnswered(_ context.Context, gameID, faction string) error {
	if c.answered[gameID] == nil {
		c.answered[gameID] = make(map[string]bool)
	}
	c.answered[gameID][faction] = true
	return nil
}

func (c *mockCache) UnmarkAnswered(_ context.Context, gameID, faction string) error {
	if c.answered[gameID] != nil {
		delete(c.answered[gameID], faction)
	}
	return nil
}

func (c *mockCache) AnsweredCount(_ context.Context, gameID string) (int64, error) {
	return int64(len(c.answered[gameID])), nil
}

func (c *mockCache) AnsweredFactions(_ context.Context, gameID string) ([]string, error) {
	var result []string
	for faction := range c.answered[gameID] {
		result = append(result, faction)
	}
	return result, nil
}

func (c *mockCache) SetTimer(_ context.Context, gameID string, deadline time.Time) error {
	c.timers[gameID] = deadline
	return nil
}

func (c *mockCache) ClearTimer(_ context.Context, gameID string) error {
	delete(c.timers, gameID)
	return nil
}

func (c *mockCache) ClearPhaseData(_ context.Context, gameID string, factions []string) error {
	delete(c.answered, gameID)
	delete(c.timers, gameID)
	for _, faction := range factions {
		delete(c.responses, gameID+":"+faction)
		delete(c.requests, gameID+":"+faction)
	}
	return nil
}

func (c *mockCache) DeleteGameData(_ context.Context, gameID string, factions []string) error {
	delete(c.states, gameID)
	delete(c.answered, gameID)
	delete(c.timers, gameID)
	for _, faction := range factions {
		delete(c.responses, gameID+":"+faction)
		delete(c.requests, gameID+":"+faction)
	}
	return nil
}
