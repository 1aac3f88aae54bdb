package handler

import (
	"errors"
	"net/http"

	"github.com/dunebench/engine/internal/auth"
	"github.com/dunebench/engine/internal/repository"
	"github.com/dunebench/engine/internal/service"
	"github.com/dunebench/engine/pkg/dune"
)

// ResponseHandler handles the pending-request / submit-response endpoints
// that every faction's client (human or scripted agent) polls against
// while its turn loop is blocked waiting on an answer.
type ResponseHandler struct {
	gameRepo repository.GameRepository
	phaseSvc *service.PhaseService
}

// NewResponseHandler creates a ResponseHandler.
func NewResponseHandler(gameRepo repository.GameRepository, phaseSvc *service.PhaseService) *ResponseHandler {
	return &ResponseHandler{gameRepo: gameRepo, phaseSvc: phaseSvc}
}

// GetPendingRequest handles GET /api/v1/games/{id}/phases/current/requests/{faction}
func (h *ResponseHandler) GetPendingRequest(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	faction := r.PathValue("faction")

	req, err := h.phaseSvc.GetPendingRequest(r.Context(), gameID, faction)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if req == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(req)
}

// SubmitResponse handles POST /api/v1/games/{id}/phases/current/requests/{faction}/responses
func (h *ResponseHandler) SubmitResponse(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	faction := r.PathValue("faction")
	userID := auth.UserIDFromContext(r.Context())

	game, err := h.gameRepo.FindByID(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if game == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	seated := false
	for _, p := range game.Players {
		if p.UserID == userID && p.Faction == faction {
			seated = true
			break
		}
	}
	if !seated {
		writeError(w, http.StatusForbidden, "you do not hold this faction")
		return
	}

	var resp dune.AgentResponse
	if err := decodeJSON(r, &resp); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp.Faction = dune.Faction(faction)

	if err := h.phaseSvc.SubmitResponse(r.Context(), gameID, resp); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrNoPendingRequest) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}
