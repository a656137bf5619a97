package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nikhil/auction-arena/internal/api/middleware"
	"github.com/nikhil/auction-arena/internal/service"
)

type SetupHandler struct {
	setupService *service.SetupService
}

func NewSetupHandler(setupService *service.SetupService) *SetupHandler {
	return &SetupHandler{setupService: setupService}
}

type SaveSetupRequest struct {
	Step    int                  `json:"step"`
	Payload service.SetupPayload `json:"payload"`
}

type SetupResponse struct {
	Step    int                  `json:"step"`
	Payload service.SetupPayload `json:"payload"`
}

func (h *SetupHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SaveSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	draft, err := h.setupService.Save(r.Context(), userID, req.Step, req.Payload)
	if err != nil {
		writeAuctionError(w, err)
		return
	}

	var payload service.SetupPayload
	if err := json.Unmarshal(draft.Payload, &payload); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, SetupResponse{Step: draft.Step, Payload: payload})
}

func (h *SetupHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	draft, err := h.setupService.Get(r.Context(), userID)
	if err != nil {
		writeAuctionError(w, err)
		return
	}
	if draft == nil {
		http.Error(w, "No setup in progress", http.StatusNotFound)
		return
	}

	var payload service.SetupPayload
	if err := json.Unmarshal(draft.Payload, &payload); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, SetupResponse{Step: draft.Step, Payload: payload})
}

func (h *SetupHandler) Discard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.setupService.Discard(r.Context(), userID); err != nil {
		writeAuctionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SetupHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	a, err := h.setupService.Finalize(r.Context(), userID)
	if err != nil {
		writeAuctionError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toAuctionResponse(a))
}
