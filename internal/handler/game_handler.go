package handler

import (
	"errors"
	"net/http"

	"github.com/dunebench/engine/internal/auth"
	"github.com/dunebench/engine/internal/service"
	"github.com/dunebench/engine/pkg/dune"
)

// GameHandler handles game CRUD and seating endpoints.
type GameHandler struct {
	gameSvc *service.GameService
	wsHub   *Hub
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(gameSvc *service.GameService, wsHub *Hub) *GameHandler {
	return &GameHandler{gameSvc: gameSvc, wsHub: wsHub}
}

// CreateGame handles POST /api/v1/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	var req struct {
		Name         string        `json:"name" validate:"required"`
		Faction      string        `json:"faction" validate:"required"`
		PhaseTimeout string        `json:"phase_timeout,omitempty"`
		Variants     dune.Variants `json:"variants,omitempty"`
	}
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	game, err := h.gameSvc.CreateGame(r.Context(), req.Name, userID, req.Faction, req.PhaseTimeout, req.Variants)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidFaction) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, game)
}

// ListGames handles GET /api/v1/games
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	filter := r.URL.Query().Get("filter")
	search := r.URL.Query().Get("search")
	games, err := h.gameSvc.ListGames(r.Context(), userID, filter, search)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if games == nil {
		writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// GetGame handles GET /api/v1/games/{id}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	game, err := h.gameSvc.GetGame(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "game not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// JoinGame handles POST /api/v1/games/{id}/join
func (h *GameHandler) JoinGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		Faction string `json:"faction" validate:"required"`
	}
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.JoinGame(r.Context(), gameID, userID, req.Faction); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			status = http.StatusNotFound
		case errors.Is(err, service.ErrGameNotWaiting), errors.Is(err, service.ErrInvalidFaction), errors.Is(err, service.ErrAlreadyJoined):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrFactionTaken):
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

// FillWithAgents handles POST /api/v1/games/{id}/fill
func (h *GameHandler) FillWithAgents(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		AgentKind string `json:"agent_kind"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AgentKind == "" {
		req.AgentKind = "hold"
	}

	if err := h.gameSvc.FillWithAgents(r.Context(), gameID, userID, req.AgentKind); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			status = http.StatusNotFound
		case errors.Is(err, service.ErrGameNotWaiting), errors.Is(err, service.ErrInvalidAgentKind):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrNotCreator):
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "filled"})
}

// StartGame handles POST /api/v1/games/{id}/start
func (h *GameHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	game, err := h.gameSvc.StartGame(r.Context(), gameID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			status = http.StatusNotFound
		case errors.Is(err, service.ErrNotEnough), errors.Is(err, service.ErrGameNotWaiting):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrNotCreator):
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}

	h.wsHub.BroadcastToGame(gameID, WSEvent{Type: EventGameStarted, GameID: gameID, Data: game})
	writeJSON(w, http.StatusOK, game)
}

// StopGame handles POST /api/v1/games/{id}/stop
func (h *GameHandler) StopGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	game, err := h.gameSvc.StopGame(r.Context(), gameID, userID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			status = http.StatusNotFound
		case errors.Is(err, service.ErrGameNotActive):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrNotCreator):
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// DeleteGame handles DELETE /api/v1/games/{id}
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	userID := auth.UserIDFromContext(r.Context())

	if err := h.gameSvc.DeleteGame(r.Context(), gameID, userID); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			status = http.StatusNotFound
		case errors.Is(err, service.ErrGameNotWaiting):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrNotCreator):
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UpdateAgentKind handles PATCH /api/v1/games/{id}/players/{userId}/agent-kind
func (h *GameHandler) UpdateAgentKind(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	agentUserID := r.PathValue("userId")
	userID := auth.UserIDFromContext(r.Context())

	var req struct {
		AgentKind string `json:"agent_kind"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.UpdateAgentKind(r.Context(), gameID, userID, agentUserID, req.AgentKind); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			status = http.StatusNotFound
		case errors.Is(err, service.ErrGameNotWaiting), errors.Is(err, service.ErrInvalidAgentKind):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrNotCreator):
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// UpdatePlayerFaction handles PATCH /api/v1/games/{id}/players/{userId}/faction
func (h *GameHandler) UpdatePlayerFaction(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	targetUserID := r.PathValue("userId")
	requestingUserID := auth.UserIDFromContext(r.Context())

	var req struct {
		Faction string `json:"faction"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gameSvc.UpdatePlayerFaction(r.Context(), gameID, targetUserID, requestingUserID, req.Faction); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			status = http.StatusNotFound
		case errors.Is(err, service.ErrGameNotWaiting), errors.Is(err, service.ErrInvalidFaction):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrFactionTaken):
			status = http.StatusConflict
		case errors.Is(err, service.ErrNotCreator), errors.Is(err, service.ErrCannotSetFaction), errors.Is(err, service.ErrNotInGame):
			status = http.StatusForbidden
		}
		writeError(w, status, err.Error())
		return
	}

	h.wsHub.BroadcastToGame(gameID, WSEvent{
		Type:   EventFactionChanged,
		GameID: gameID,
		Data:   map[string]string{"user_id": targetUserID, "faction": req.Faction},
	})
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
