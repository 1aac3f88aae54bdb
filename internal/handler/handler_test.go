package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dunebench/engine/internal/auth"
	"github.com/dunebench/engine/internal/model"
	"github.com/dunebench/engine/internal/service"
)

// --- Mock Repositories ---

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
	u, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}
	u.DisplayName = displayName
	return nil
}

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
	var result []model.Game
	for gameID, players := range m.players {
		for _, p := range players {
			if p.UserID == userID {
				if g, ok := m.games[gameID]; ok {
					result = append(result, *g)
				}
			}
		}
	}
	return result, nil
}

func (m *mockGameRepo) ListFinished(_ context.Context) ([]model.Game, error) {
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "finished" {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGameRepo) SearchFinished(_ context.Context, search string) ([]model.Game, error) {
	lower := strings.ToLower(search)
	var result []model.Game
	for _, g := range m.games {
		if g.Status == "finished" && strings.Contains(strings.ToLower(g.Name), lower) {
			result = append(result, *g)
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
			players[i] = model.GamePlayer{GameID: gameID, UserID: newUserID, Faction: p.Faction, JoinedAt: time.Now()}
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
		ID:          "phase-1",
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

type mockMessageRepo struct {
	messages []model.Message
	seq      int
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{}
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
	m.messages = append(m.messages, *msg)
	return msg, nil
}

func (m *mockMessageRepo) ListByGame(_ context.Context, gameID, userID string) ([]model.Message, error) {
	var result []model.Message
	for _, msg := range m.messages {
		if msg.GameID == gameID && (msg.RecipientID == "" || msg.SenderID == userID || msg.RecipientID == userID) {
			result = append(result, msg)
		}
	}
	return result, nil
}

// mockCache implements repository.GameCache for testing. Only the
// pending-request path is exercised by handler tests.
type mockCache struct {
	requests map[string]json.RawMessage
}

func newMockCache() *mockCache {
	return &mockCache{requests: make(map[string]json.RawMessage)}
}

func (c *mockCache) SetGameState(context.Context, string, json.RawMessage) error { return nil }
func (c *mockCache) GetGameState(context.Context, string) (json.RawMessage, error) {
	return nil, nil
}
func (c *mockCache) SetResponse(context.Context, string, string, json.RawMessage) error { return nil }
func (c *mockCache) GetResponse(context.Context, string, string) (json.RawMessage, error) {
	return nil, nil
}
func (c *mockCache) GetAllResponses(context.Context, string, []string) (map[string]json.RawMessage, error) {
	return nil, nil
}
func (c *mockCache) SetPendingRequest(_ context.Context, gameID, faction string, request json.RawMessage) error {
	c.requests[gameID+":"+faction] = request
	return nil
}
func (c *mockCache) GetPendingRequest(_ context.Context, gameID, faction string) (json.RawMessage, error) {
	return c.requests[gameID+":"+faction], nil
}
func (c *mockCache) MarkAnswered(context.Context, string, string) error   { return nil }
func (c *mockCache) UnmarkAnswered(context.Context, string, string) error { return nil }
func (c *mockCache) AnsweredCount(context.Context, string) (int64, error) { return 0, nil }
func (c *mockCache) AnsweredFactions(context.Context, string) ([]string, error) {
	return nil, nil
}
func (c *mockCache) SetTimer(context.Context, string, time.Time) error { return nil }
func (c *mockCache) ClearTimer(context.Context, string) error          { return nil }
func (c *mockCache) ClearPhaseData(context.Context, string, []string) error {
	return nil
}
func (c *mockCache) DeleteGameData(context.Context, string, []string) error {
	return nil
}

// --- Helpers ---

func reqWithUserID(method, path string, body string, userID string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	ctx := auth.SetUserIDForTest(req.Context(), userID)
	return req.WithContext(ctx)
}

func newTestGameService() (*service.GameService, *mockGameRepo) {
	gameRepo := newMockGameRepo()
	phaseRepo := newMockPhaseRepo()
	cache := newMockCache()
	userRepo := newMockUserRepo()
	phaseSvc := service.NewPhaseService(gameRepo, phaseRepo, cache, nil)
	return service.NewGameService(gameRepo, phaseRepo, cache, userRepo, phaseSvc), gameRepo
}

// --- User Handler Tests ---

func TestGetMe(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = &model.User{
		ID:          "user-1",
		DisplayName: "Alice",
		Provider:    "google",
	}
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodGet, "/users/me", "", "user-1")
	rec := httptest.NewRecorder()
	h.GetMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var user model.User
	json.Unmarshal(rec.Body.Bytes(), &user)
	if user.DisplayName != "Alice" {
		t.Errorf("expected Alice, got %s", user.DisplayName)
	}
}

func TestGetMeNotFound(t *testing.T) {
	repo := newMockUserRepo()
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodGet, "/users/me", "", "nonexistent")
	rec := httptest.NewRecorder()
	h.GetMe(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateMe(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = &model.User{
		ID:          "user-1",
		DisplayName: "Alice",
	}
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodPatch, "/users/me", `{"display_name":"Bob"}`, "user-1")
	rec := httptest.NewRecorder()
	h.UpdateMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var user model.User
	json.Unmarshal(rec.Body.Bytes(), &user)
	if user.DisplayName != "Bob" {
		t.Errorf("expected Bob, got %s", user.DisplayName)
	}
}

func TestUpdateMeEmptyName(t *testing.T) {
	repo := newMockUserRepo()
	repo.users["user-1"] = &model.User{ID: "user-1"}
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodPatch, "/users/me", `{"display_name":""}`, "user-1")
	rec := httptest.NewRecorder()
	h.UpdateMe(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateMeInvalidJSON(t *testing.T) {
	repo := newMockUserRepo()
	h := NewUserHandler(repo)

	req := reqWithUserID(http.MethodPatch, "/users/me", "not json", "user-1")
	rec := httptest.NewRecorder()
	h.UpdateMe(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// --- Game Handler Tests ---

func TestCreateGame(t *testing.T) {
	gameSvc, _ := newTestGameService()
	h := NewGameHandler(gameSvc, NewHub())

	req := reqWithUserID(http.MethodPost, "/games", `{"name":"Test Game","faction":"atreides"}`, "user-1")
	rec := httptest.NewRecorder()
	h.CreateGame(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var game model.Game
	json.Unmarshal(rec.Body.Bytes(), &game)
	if game.Name != "Test Game" {
		t.Errorf("expected 'Test Game', got %s", game.Name)
	}
}

func TestCreateGameMissingName(t *testing.T) {
	gameSvc, _ := newTestGameService()
	h := NewGameHandler(gameSvc, NewHub())

	req := reqWithUserID(http.MethodPost, "/games", `{"name":"","faction":"atreides"}`, "user-1")
	rec := httptest.NewRecorder()
	h.CreateGame(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateGameInvalidFaction(t *testing.T) {
	gameSvc, _ := newTestGameService()
	h := NewGameHandler(gameSvc, NewHub())

	req := reqWithUserID(http.MethodPost, "/games", `{"name":"Test Game","faction":"not-a-faction"}`, "user-1")
	rec := httptest.NewRecorder()
	h.CreateGame(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListGamesEmpty(t *testing.T) {
	gameSvc, _ := newTestGameService()
	h := NewGameHandler(gameSvc, NewHub())

	req := reqWithUserID(http.MethodGet, "/games", "", "user-1")
	rec := httptest.NewRecorder()
	h.ListGames(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := strings.TrimSpace(rec.Body.String())
	if body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestGetGameNotFound(t *testing.T) {
	gameSvc, _ := newTestGameService()
	h := NewGameHandler(gameSvc, NewHub())

	req := reqWithUserID(http.MethodGet, "/games/nonexistent", "", "user-1")
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()
	h.GetGame(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestJoinGameNotFound(t *testing.T) {
	gameSvc, _ := newTestGameService()
	h := NewGameHandler(gameSvc, NewHub())

	req := reqWithUserID(http.MethodPost, "/games/nonexistent/join", `{"faction":"harkonnen"}`, "user-1")
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()
	h.JoinGame(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestFillWithAgents(t *testing.T) {
	gameSvc, gameRepo := newTestGameService()
	h := NewGameHandler(gameSvc, NewHub())

	gameRepo.games["game-1"] = &model.Game{ID: "game-1", CreatorID: "user-1", Status: "waiting"}

	req := reqWithUserID(http.MethodPost, "/games/game-1/fill", `{"agent_kind":"random"}`, "user-1")
	req.SetPathValue("id", "game-1")
	rec := httptest.NewRecorder()
	h.FillWithAgents(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(gameRepo.players["game-1"]) != 6 {
		t.Errorf("expected 6 seated agents, got %d", len(gameRepo.players["game-1"]))
	}
}

func TestFillWithAgentsNotCreator(t *testing.T) {
	gameSvc, gameRepo := newTestGameService()
	h := NewGameHandler(gameSvc, NewHub())

	gameRepo.games["game-1"] = &model.Game{ID: "game-1", CreatorID: "user-1", Status: "waiting"}

	req := reqWithUserID(http.MethodPost, "/games/game-1/fill", `{}`, "user-2")
	req.SetPathValue("id", "game-1")
	rec := httptest.NewRecorder()
	h.FillWithAgents(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestUpdatePlayerFactionForbidden(t *testing.T) {
	gameSvc, gameRepo := newTestGameService()
	h := NewGameHandler(gameSvc, NewHub())

	gameRepo.games["game-1"] = &model.Game{ID: "game-1", CreatorID: "user-1", Status: "waiting"}
	gameRepo.players["game-1"] = []model.GamePlayer{{GameID: "game-1", UserID: "user-2", Faction: "harkonnen"}}

	req := reqWithUserID(http.MethodPatch, "/games/game-1/players/user-2/faction", `{"faction":"atreides"}`, "user-3")
	req.SetPathValue("id", "game-1")
	req.SetPathValue("userId", "user-2")
	rec := httptest.NewRecorder()
	h.UpdatePlayerFaction(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

// --- Response Handler Tests ---

func TestGetPendingRequestEmpty(t *testing.T) {
	gameRepo := newMockGameRepo()
	phaseRepo := newMockPhaseRepo()
	cache := newMockCache()
	phaseSvc := service.NewPhaseService(gameRepo, phaseRepo, cache, nil)
	h := NewResponseHandler(gameRepo, phaseSvc)

	req := reqWithUserID(http.MethodGet, "/games/game-1/phases/current/requests/atreides", "", "user-1")
	req.SetPathValue("id", "game-1")
	req.SetPathValue("faction", "atreides")
	rec := httptest.NewRecorder()
	h.GetPendingRequest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := strings.TrimSpace(rec.Body.String())
	if body != "{}" {
		t.Errorf("expected {}, got %s", body)
	}
}

func TestSubmitResponseNotSeated(t *testing.T) {
	gameRepo := newMockGameRepo()
	phaseRepo := newMockPhaseRepo()
	cache := newMockCache()
	phaseSvc := service.NewPhaseService(gameRepo, phaseRepo, cache, nil)
	h := NewResponseHandler(gameRepo, phaseSvc)

	gameRepo.games["game-1"] = &model.Game{ID: "game-1", Status: "active"}
	gameRepo.players["game-1"] = []model.GamePlayer{{GameID: "game-1", UserID: "user-1", Faction: "harkonnen"}}

	req := reqWithUserID(http.MethodPost, "/games/game-1/phases/current/requests/atreides/responses", `{"kind":"storm_dial"}`, "user-1")
	req.SetPathValue("id", "game-1")
	req.SetPathValue("faction", "atreides")
	rec := httptest.NewRecorder()
	h.SubmitResponse(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitResponseNoPendingRequest(t *testing.T) {
	gameRepo := newMockGameRepo()
	phaseRepo := newMockPhaseRepo()
	cache := newMockCache()
	phaseSvc := service.NewPhaseService(gameRepo, phaseRepo, cache, nil)
	h := NewResponseHandler(gameRepo, phaseSvc)

	gameRepo.games["game-1"] = &model.Game{ID: "game-1", Status: "active"}
	gameRepo.players["game-1"] = []model.GamePlayer{{GameID: "game-1", UserID: "user-1", Faction: "atreides"}}

	req := reqWithUserID(http.MethodPost, "/games/game-1/phases/current/requests/atreides/responses", `{"kind":"storm_dial","value":3}`, "user-1")
	req.SetPathValue("id", "game-1")
	req.SetPathValue("faction", "atreides")
	rec := httptest.NewRecorder()
	h.SubmitResponse(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

// --- Message Handler Tests ---

func TestSendAndListMessages(t *testing.T) {
	msgRepo := newMockMessageRepo()
	phaseRepo := newMockPhaseRepo()
	h := NewMessageHandler(msgRepo, phaseRepo, NewHub())

	req := reqWithUserID(http.MethodPost, "/games/game-1/messages", `{"content":"Hello everyone!"}`, "user-1")
	req.SetPathValue("id", "game-1")
	rec := httptest.NewRecorder()
	h.SendMessage(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	req = reqWithUserID(http.MethodGet, "/games/game-1/messages", "", "user-1")
	req.SetPathValue("id", "game-1")
	rec = httptest.NewRecorder()
	h.ListMessages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var messages []model.Message
	json.Unmarshal(rec.Body.Bytes(), &messages)
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Content != "Hello everyone!" {
		t.Errorf("expected 'Hello everyone!', got %s", messages[0].Content)
	}
}

func TestSendMessageEmptyContent(t *testing.T) {
	msgRepo := newMockMessageRepo()
	phaseRepo := newMockPhaseRepo()
	h := NewMessageHandler(msgRepo, phaseRepo, NewHub())

	req := reqWithUserID(http.MethodPost, "/games/game-1/messages", `{"content":""}`, "user-1")
	req.SetPathValue("id", "game-1")
	rec := httptest.NewRecorder()
	h.SendMessage(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestListMessagesEmpty(t *testing.T) {
	msgRepo := newMockMessageRepo()
	phaseRepo := newMockPhaseRepo()
	h := NewMessageHandler(msgRepo, phaseRepo, NewHub())

	req := reqWithUserID(http.MethodGet, "/games/game-1/messages", "", "user-1")
	req.SetPathValue("id", "game-1")
	rec := httptest.NewRecorder()
	h.ListMessages(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := strings.TrimSpace(rec.Body.String())
	if body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

// --- Phase Handler Tests ---

func TestListPhasesEmpty(t *testing.T) {
	phaseRepo := newMockPhaseRepo()
	h := NewPhaseHandler(phaseRepo)

	req := reqWithUserID(http.MethodGet, "/games/game-1/phases", "", "user-1")
	req.SetPathValue("id", "game-1")
	rec := httptest.NewRecorder()
	h.ListPhases(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := strings.TrimSpace(rec.Body.String())
	if body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

func TestCurrentPhaseNotFound(t *testing.T) {
	phaseRepo := newMockPhaseRepo()
	h := NewPhaseHandler(phaseRepo)

	req := reqWithUserID(http.MethodGet, "/games/game-1/phases/current", "", "user-1")
	req.SetPathValue("id", "game-1")
	rec := httptest.NewRecorder()
	h.CurrentPhase(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// --- Auth Handler Tests ---

func TestRefreshTokenValid(t *testing.T) {
	jwtMgr := auth.NewJWTManager("test-secret")
	repo := newMockUserRepo()
	h := NewAuthHandler(nil, jwtMgr, repo)

	refresh, _ := jwtMgr.GenerateRefreshToken("user-1")
	body := fmt.Sprintf(`{"refresh_token":"%s"}`, refresh)
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var tokens auth.TokenPair
	json.Unmarshal(rec.Body.Bytes(), &tokens)
	if tokens.AccessToken == "" {
		t.Error("expected non-empty access token")
	}
}

func TestRefreshTokenInvalid(t *testing.T) {
	jwtMgr := auth.NewJWTManager("test-secret")
	repo := newMockUserRepo()
	h := NewAuthHandler(nil, jwtMgr, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{"refresh_token":"invalid"}`))
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRefreshTokenBadBody(t *testing.T) {
	jwtMgr := auth.NewJWTManager("test-secret")
	repo := newMockUserRepo()
	h := NewAuthHandler(nil, jwtMgr, repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
