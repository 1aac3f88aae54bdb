//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/dunebench/engine/internal/model"
	"github.com/dunebench/engine/internal/testutil"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	m.Run()
}

func setup(t *testing.T) {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
	}
	testutil.CleanupDB(t, testDB)
}

// createTestUser is a helper that inserts a user and returns it.
func createTestUser(t *testing.T, repo *UserRepo, suffix string) *model.User {
	t.Helper()
	u, err := repo.Upsert(context.Background(), "google", "provider-"+suffix, "User "+suffix, "https://avatar/"+suffix)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return u
}

// --- UserRepo Tests ---

func TestUserUpsertCreates(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	u, err := repo.Upsert(context.Background(), "google", "goog-123", "Alice", "https://avatar/alice")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if u.Provider != "google" || u.ProviderID != "goog-123" {
		t.Fatalf("unexpected provider data: %s / %s", u.Provider, u.ProviderID)
	}
	if u.DisplayName != "Alice" {
		t.Fatalf("expected display name Alice, got %s", u.DisplayName)
	}
	if u.AvatarURL != "https://avatar/alice" {
		t.Fatalf("expected avatar URL, got %s", u.AvatarURL)
	}
}

func TestUserUpsertUpdates(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	u1, err := repo.Upsert(context.Background(), "google", "goog-456", "Bob", "https://old")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	u2, err := repo.Upsert(context.Background(), "google", "goog-456", "Bobby", "https://new")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if u1.ID != u2.ID {
		t.Fatalf("upsert should return same ID: %s vs %s", u1.ID, u2.ID)
	}
	if u2.DisplayName != "Bobby" {
		t.Fatalf("expected updated name Bobby, got %s", u2.DisplayName)
	}
	if u2.AvatarURL != "https://new" {
		t.Fatalf("expected updated avatar, got %s", u2.AvatarURL)
	}
}

func TestUserFindByID(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	created, _ := repo.Upsert(context.Background(), "google", "goog-find", "FindMe", "")
	found, err := repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatal("expected to find user by ID")
	}

	notFound, err := repo.FindByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if notFound != nil {
		t.Fatal("expected nil for missing user")
	}
}

func TestUserFindByProviderID(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	repo.Upsert(context.Background(), "apple", "apple-123", "Charlie", "")

	found, err := repo.FindByProviderID(context.Background(), "apple", "apple-123")
	if err != nil {
		t.Fatalf("find by provider: %v", err)
	}
	if found == nil || found.DisplayName != "Charlie" {
		t.Fatal("expected to find user by provider")
	}

	notFound, err := repo.FindByProviderID(context.Background(), "apple", "no-such-id")
	if err != nil {
		t.Fatalf("find missing provider: %v", err)
	}
	if notFound != nil {
		t.Fatal("expected nil for missing provider ID")
	}
}

func TestUserUpdateDisplayName(t *testing.T) {
	setup(t)
	repo := NewUserRepo(testDB)

	u, _ := repo.Upsert(context.Background(), "google", "goog-upd", "OldName", "")
	if err := repo.UpdateDisplayName(context.Background(), u.ID, "NewName"); err != nil {
		t.Fatalf("update display name: %v", err)
	}

	found, _ := repo.FindByID(context.Background(), u.ID)
	if found.DisplayName != "NewName" {
		t.Fatalf("expected NewName, got %s", found.DisplayName)
	}
}

// --- GameRepo Tests ---

func TestGameCreate(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "creator")

	g, err := gameRepo.Create(context.Background(), "Test Game", creator.ID, "2 minutes", `{}`)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if g.ID == "" {
		t.Fatal("expected non-empty game ID")
	}
	if g.Name != "Test Game" {
		t.Fatalf("expected game name 'Test Game', got '%s'", g.Name)
	}
	if g.Status != "waiting" {
		t.Fatalf("expected waiting status, got %s", g.Status)
	}
}

func TestGameFindByIDWithPlayers(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "owner")
	g, _ := gameRepo.Create(context.Background(), "With Players", creator.ID, "2 minutes", `{}`)
	gameRepo.JoinGame(context.Background(), g.ID, creator.ID, "atreides")

	player2 := createTestUser(t, userRepo, "p2")
	gameRepo.JoinGame(context.Background(), g.ID, player2.ID, "harkonnen")

	found, err := gameRepo.FindByID(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find game")
	}
	if len(found.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(found.Players))
	}
}

func TestGameListOpen(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "lister")
	gameRepo.Create(context.Background(), "Open1", creator.ID, "2 minutes", `{}`)
	gameRepo.Create(context.Background(), "Open2", creator.ID, "2 minutes", `{}`)

	games, err := gameRepo.ListOpen(context.Background())
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 open games, got %d", len(games))
	}
}

func TestGameListByUser(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	u1 := createTestUser(t, userRepo, "u1")
	u2 := createTestUser(t, userRepo, "u2")

	g1, _ := gameRepo.Create(context.Background(), "G1", u1.ID, "2 minutes", `{}`)
	gameRepo.JoinGame(context.Background(), g1.ID, u1.ID, "atreides")

	g2, _ := gameRepo.Create(context.Background(), "G2", u2.ID, "2 minutes", `{}`)
	gameRepo.JoinGame(context.Background(), g2.ID, u2.ID, "harkonnen")
	gameRepo.JoinGame(context.Background(), g2.ID, u1.ID, "fremen")

	games, err := gameRepo.ListByUser(context.Background(), u1.ID)
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games for u1, got %d", len(games))
	}

	u2Games, _ := gameRepo.ListByUser(context.Background(), u2.ID)
	if len(u2Games) != 1 {
		t.Fatalf("expected 1 game for u2, got %d", len(u2Games))
	}
}

func TestGameJoinIdempotent(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "joiner")
	g, _ := gameRepo.Create(context.Background(), "Join Test", creator.ID, "2 minutes", `{}`)

	if err := gameRepo.JoinGame(context.Background(), g.ID, creator.ID, "atreides"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := gameRepo.JoinGame(context.Background(), g.ID, creator.ID, "atreides"); err != nil {
		t.Fatalf("second join should not error: %v", err)
	}

	count, _ := gameRepo.PlayerCount(context.Background(), g.ID)
	if count != 1 {
		t.Fatalf("expected 1 player after duplicate join, got %d", count)
	}
}

func TestGamePlayerCount(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "counter")
	g, _ := gameRepo.Create(context.Background(), "Count Test", creator.ID, "2 minutes", `{}`)
	gameRepo.JoinGame(context.Background(), g.ID, creator.ID, "atreides")

	factions := []string{"harkonnen", "fremen", "guild"}
	for i, f := range factions {
		p := createTestUser(t, userRepo, "cp"+string(rune('a'+i)))
		gameRepo.JoinGame(context.Background(), g.ID, p.ID, f)
	}

	count, err := gameRepo.PlayerCount(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("player count: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 players, got %d", count)
	}
}

func TestGameJoinAsAgentAndReplace(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "seat-c")
	g, _ := gameRepo.Create(context.Background(), "Agent Seat Test", creator.ID, "2 minutes", `{}`)
	gameRepo.JoinGame(context.Background(), g.ID, creator.ID, "atreides")

	if err := gameRepo.JoinGameAsAgent(context.Background(), g.ID, "agent-1", "harkonnen", "random"); err != nil {
		t.Fatalf("join as agent: %v", err)
	}

	human := createTestUser(t, userRepo, "replacement")
	if err := gameRepo.ReplaceAgent(context.Background(), g.ID, human.ID); err != nil {
		t.Fatalf("replace agent: %v", err)
	}

	found, _ := gameRepo.FindByID(context.Background(), g.ID)
	for _, p := range found.Players {
		if p.UserID == human.ID && p.Faction != "harkonnen" {
			t.Fatalf("expected replacement to inherit harkonnen seat, got %s", p.Faction)
		}
		if p.IsAgent && p.UserID == human.ID {
			t.Fatal("replacement player should not be marked as an agent")
		}
	}
}

func TestGameSetFinished(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)

	creator := createTestUser(t, userRepo, "finisher")
	g, _ := gameRepo.Create(context.Background(), "Finish Test", creator.ID, "2 minutes", `{}`)

	if err := gameRepo.SetFinished(context.Background(), g.ID, "fremen"); err != nil {
		t.Fatalf("set finished: %v", err)
	}

	found, _ := gameRepo.FindByID(context.Background(), g.ID)
	if found.Status != "finished" {
		t.Fatalf("expected finished, got %s", found.Status)
	}
	if found.Winner != "fremen" {
		t.Fatalf("expected winner fremen, got %s", found.Winner)
	}
	if found.FinishedAt == nil {
		t.Fatal("expected finished_at to be set")
	}
}

// --- PhaseRepo Tests ---

func TestPhaseCreateAndCurrent(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	phaseRepo := NewPhaseRepo(testDB)

	creator := createTestUser(t, userRepo, "phase-c")
	g, _ := gameRepo.Create(context.Background(), "Phase Test", creator.ID, "2 minutes", `{}`)

	stateBefore := json.RawMessage(`{"turn":1,"phase":"storm","factions":{}}`)
	deadline := time.Now().Add(2 * time.Minute)

	phase, err := phaseRepo.CreatePhase(context.Background(), g.ID, 1, "storm", stateBefore, deadline)
	if err != nil {
		t.Fatalf("create phase: %v", err)
	}
	if phase.ID == "" {
		t.Fatal("expected non-empty phase ID")
	}
	if phase.Turn != 1 || phase.PhaseName != "storm" {
		t.Fatalf("unexpected phase: %d %s", phase.Turn, phase.PhaseName)
	}

	var stateData map[string]any
	if err := json.Unmarshal(phase.StateBefore, &stateData); err != nil {
		t.Fatalf("unmarshal state_before: %v", err)
	}
	if stateData["turn"].(float64) != 1 {
		t.Fatalf("JSONB round-trip failed: %v", stateData)
	}

	current, err := phaseRepo.CurrentPhase(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("current phase: %v", err)
	}
	if current == nil || current.ID != phase.ID {
		t.Fatal("current phase should return the unresolved phase")
	}
}

func TestPhaseCurrentReturnsOnlyUnresolved(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	phaseRepo := NewPhaseRepo(testDB)

	creator := createTestUser(t, userRepo, "unres-c")
	g, _ := gameRepo.Create(context.Background(), "Unresolved Test", creator.ID, "2 minutes", `{}`)

	state := json.RawMessage(`{"turn":1}`)
	deadline := time.Now().Add(2 * time.Minute)

	p1, _ := phaseRepo.CreatePhase(context.Background(), g.ID, 1, "storm", state, deadline)
	phaseRepo.ResolvePhase(context.Background(), p1.ID, json.RawMessage(`{"turn":1,"resolved":true}`))

	p2, _ := phaseRepo.CreatePhase(context.Background(), g.ID, 1, "spice_blow", state, deadline)

	current, _ := phaseRepo.CurrentPhase(context.Background(), g.ID)
	if current == nil || current.ID != p2.ID {
		t.Fatalf("expected current phase to be p2, got %v", current)
	}
}

func TestPhaseListPhases(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	phaseRepo := NewPhaseRepo(testDB)

	creator := createTestUser(t, userRepo, "list-c")
	g, _ := gameRepo.Create(context.Background(), "List Phases", creator.ID, "2 minutes", `{}`)

	state := json.RawMessage(`{}`)
	deadline := time.Now().Add(2 * time.Minute)

	phaseRepo.CreatePhase(context.Background(), g.ID, 1, "storm", state, deadline)
	phaseRepo.CreatePhase(context.Background(), g.ID, 1, "spice_blow", state, deadline)
	phaseRepo.CreatePhase(context.Background(), g.ID, 1, "bidding", state, deadline)

	phases, err := phaseRepo.ListPhases(context.Background(), g.ID)
	if err != nil {
		t.Fatalf("list phases: %v", err)
	}
	if len(phases) != 3 {
		t.Fatalf("expected 3 phases, got %d", len(phases))
	}
	if phases[0].PhaseName != "storm" {
		t.Fatalf("expected first phase storm, got %s", phases[0].PhaseName)
	}
}

func TestPhaseResolve(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	phaseRepo := NewPhaseRepo(testDB)

	creator := createTestUser(t, userRepo, "resolve-c")
	g, _ := gameRepo.Create(context.Background(), "Resolve Test", creator.ID, "2 minutes", `{}`)

	state := json.RawMessage(`{"turn":1}`)
	deadline := time.Now().Add(2 * time.Minute)
	phase, _ := phaseRepo.CreatePhase(context.Background(), g.ID, 1, "storm", state, deadline)

	stateAfter := json.RawMessage(`{"turn":1,"resolved":true,"stormSector":5}`)
	if err := phaseRepo.ResolvePhase(context.Background(), phase.ID, stateAfter); err != nil {
		t.Fatalf("resolve phase: %v", err)
	}

	phases, _ := phaseRepo.ListPhases(context.Background(), g.ID)
	if len(phases) != 1 {
		t.Fatalf("expected 1 phase, got %d", len(phases))
	}
	if phases[0].ResolvedAt == nil {
		t.Fatal("expected resolved_at to be set")
	}
	if phases[0].StateAfter == nil {
		t.Fatal("expected state_after to be set")
	}

	var afterData map[string]any
	json.Unmarshal(phases[0].StateAfter, &afterData)
	if afterData["resolved"] != true {
		t.Fatal("state_after JSONB round-trip failed")
	}
}

func TestPhaseSaveAndQueryResponses(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	phaseRepo := NewPhaseRepo(testDB)

	creator := createTestUser(t, userRepo, "responses-c")
	g, _ := gameRepo.Create(context.Background(), "Responses Test", creator.ID, "2 minutes", `{}`)

	state := json.RawMessage(`{}`)
	deadline := time.Now().Add(2 * time.Minute)
	phase, _ := phaseRepo.CreatePhase(context.Background(), g.ID, 1, "storm", state, deadline)

	responses := []model.AgentResponseRecord{
		{PhaseID: phase.ID, Faction: "fremen", Kind: "storm_dial", Response: `{"Int":3}`},
		{PhaseID: phase.ID, Faction: "atreides", Kind: "storm_dial", Response: `{"Int":4}`},
	}

	if err := phaseRepo.SaveResponses(context.Background(), responses); err != nil {
		t.Fatalf("save responses: %v", err)
	}

	fetched, err := phaseRepo.ResponsesByPhase(context.Background(), phase.ID)
	if err != nil {
		t.Fatalf("responses by phase: %v", err)
	}
	if len(fetched) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(fetched))
	}
}

// --- MessageRepo Tests ---

func TestMessageCreatePublic(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	msgRepo := NewMessageRepo(testDB)

	sender := createTestUser(t, userRepo, "msg-sender")
	g, _ := gameRepo.Create(context.Background(), "Msg Test", sender.ID, "2 minutes", `{}`)
	gameRepo.JoinGame(context.Background(), g.ID, sender.ID, "atreides")

	msg, err := msgRepo.Create(context.Background(), g.ID, sender.ID, "", "chat", "Hello everyone!", "", "")
	if err != nil {
		t.Fatalf("create public message: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("expected non-empty message ID")
	}
	if msg.RecipientID != "" {
		t.Fatalf("expected empty recipient for public, got %s", msg.RecipientID)
	}
	if msg.Content != "Hello everyone!" {
		t.Fatalf("expected content 'Hello everyone!', got '%s'", msg.Content)
	}
}

func TestMessageCreatePrivateDeal(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	msgRepo := NewMessageRepo(testDB)

	sender := createTestUser(t, userRepo, "priv-sender")
	recipient := createTestUser(t, userRepo, "priv-recip")
	g, _ := gameRepo.Create(context.Background(), "Priv Msg", sender.ID, "2 minutes", `{}`)
	gameRepo.JoinGame(context.Background(), g.ID, sender.ID, "atreides")
	gameRepo.JoinGame(context.Background(), g.ID, recipient.ID, "fremen")

	msg, err := msgRepo.Create(context.Background(), g.ID, sender.ID, recipient.ID, "deal", "Spice for safe passage", `{"status":"proposed"}`, "")
	if err != nil {
		t.Fatalf("create private deal message: %v", err)
	}
	if msg.RecipientID != recipient.ID {
		t.Fatalf("expected recipient %s, got %s", recipient.ID, msg.RecipientID)
	}
	if msg.Kind != "deal" {
		t.Fatalf("expected kind deal, got %s", msg.Kind)
	}
	if msg.Data == "" {
		t.Fatal("expected deal payload in data")
	}
}

func TestMessageListByGameVisibility(t *testing.T) {
	setup(t)
	userRepo := NewUserRepo(testDB)
	gameRepo := NewGameRepo(testDB)
	msgRepo := NewMessageRepo(testDB)

	alice := createTestUser(t, userRepo, "vis-alice")
	bob := createTestUser(t, userRepo, "vis-bob")
	charlie := createTestUser(t, userRepo, "vis-charlie")
	g, _ := gameRepo.Create(context.Background(), "Vis Test", alice.ID, "2 minutes", `{}`)
	gameRepo.JoinGame(context.Background(), g.ID, alice.ID, "atreides")
	gameRepo.JoinGame(context.Background(), g.ID, bob.ID, "harkonnen")
	gameRepo.JoinGame(context.Background(), g.ID, charlie.ID, "fremen")

	msgRepo.Create(context.Background(), g.ID, alice.ID, "", "chat", "Public hello", "", "")
	msgRepo.Create(context.Background(), g.ID, alice.ID, bob.ID, "chat", "Secret to Bob", "", "")
	msgRepo.Create(context.Background(), g.ID, bob.ID, charlie.ID, "chat", "Secret to Charlie", "", "")

	aliceMsgs, err := msgRepo.ListByGame(context.Background(), g.ID, alice.ID)
	if err != nil {
		t.Fatalf("list alice: %v", err)
	}
	if len(aliceMsgs) != 2 {
		t.Fatalf("alice expected 2 messages, got %d", len(aliceMsgs))
	}

	bobMsgs, _ := msgRepo.ListByGame(context.Background(), g.ID, bob.ID)
	if len(bobMsgs) != 3 {
		t.Fatalf("bob expected 3 messages, got %d", len(bobMsgs))
	}

	charlieMsgs, _ := msgRepo.ListByGame(context.Background(), g.ID, charlie.ID)
	if len(charlieMsgs) != 2 {
		t.Fatalf("charlie expected 2 messages, got %d", len(charlieMsgs))
	}
}
