package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhil/auction-arena/internal/api/middleware"
	"github.com/nikhil/auction-arena/internal/domain"
	"github.com/nikhil/auction-arena/internal/service"
)

type RosterHandler struct {
	rosterService *service.RosterService
}

func NewRosterHandler(rosterService *service.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rosterService}
}

type AddTeamRequest struct {
	CaptainID string `json:"captainId"`
	TeamName  string `json:"teamName"`
}

type TeamResponse struct {
	ID        string `json:"id"`
	AuctionID string `json:"auctionId"`
	CaptainID string `json:"captainId"`
	TeamName  string `json:"teamName"`
	Purse     int64  `json:"purse"`
	Spent     int64  `json:"spent"`
	Remaining int64  `json:"remaining"`
}

type AddPlayerRequest struct {
	DisplayName string `json:"displayName"`
	BasePrice   *int64 `json:"basePrice,omitempty"`
}

type PlayerResponse struct {
	ID          string  `json:"id"`
	AuctionID   string  `json:"auctionId"`
	DisplayName string  `json:"displayName"`
	BasePrice   *int64  `json:"basePrice,omitempty"`
	Status      string  `json:"status"`
	SoldToTeam  *string `json:"soldToTeam,omitempty"`
	SoldAmount  *int64  `json:"soldAmount,omitempty"`
}

func toTeamResponse(t *domain.Team) TeamResponse {
	return TeamResponse{
		ID:        t.ID.String(),
		AuctionID: t.AuctionID.String(),
		CaptainID: t.CaptainID.String(),
		TeamName:  t.TeamName,
		Purse:     t.Purse,
		Spent:     t.Spent,
		Remaining: t.RemainingPurse(),
	}
}

func toPlayerResponse(p *domain.Player) PlayerResponse {
	resp := PlayerResponse{
		ID:          p.ID.String(),
		AuctionID:   p.AuctionID.String(),
		DisplayName: p.DisplayName,
		BasePrice:   p.BasePrice,
		Status:      string(p.Status),
		SoldAmount:  p.SoldAmount,
	}
	if p.SoldToTeam != nil {
		id := p.SoldToTeam.String()
		resp.SoldToTeam = &id
	}
	return resp
}

func (h *RosterHandler) AddTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	auctionID, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	var req AddTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	captainID, err := uuid.Parse(req.CaptainID)
	if err != nil {
		http.Error(w, "Invalid captain ID", http.StatusBadRequest)
		return
	}

	team, err := h.rosterService.AddTeam(r.Context(), service.AddTeamInput{
		AuctionID: auctionID,
		HostID:    userID,
		CaptainID: captainID,
		TeamName:  req.TeamName,
	})
	if err != nil {
		writeAuctionError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toTeamResponse(team))
}

func (h *RosterHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	teams, err := h.rosterService.ListTeams(r.Context(), auctionID)
	if err != nil {
		writeAuctionError(w, err)
		return
	}

	resp := make([]TeamResponse, 0, len(teams))
	for _, t := range teams {
		resp = append(resp, toTeamResponse(t))
	}
	writeJSON(w, resp)
}

func (h *RosterHandler) RemoveTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	auctionID, ok := auctionIDParam(w, r)
	if !ok {
		return
	}
	teamID, err := uuid.Parse(chi.URLParam(r, "teamId"))
	if err != nil {
		http.Error(w, "Invalid team ID", http.StatusBadRequest)
		return
	}

	if err := h.rosterService.RemoveTeam(r.Context(), auctionID, userID, teamID); err != nil {
		writeAuctionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RosterHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	auctionID, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	var req AddPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	player, err := h.rosterService.AddPlayer(r.Context(), service.AddPlayerInput{
		AuctionID:   auctionID,
		HostID:      userID,
		DisplayName: req.DisplayName,
		BasePrice:   req.BasePrice,
	})
	if err != nil {
		writeAuctionError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toPlayerResponse(player))
}

func (h *RosterHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	auctionID, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	players, err := h.rosterService.ListPlayers(r.Context(), auctionID)
	if err != nil {
		writeAuctionError(w, err)
		return
	}

	resp := make([]PlayerResponse, 0, len(players))
	for _, p := range players {
		resp = append(resp, toPlayerResponse(p))
	}
	writeJSON(w, resp)
}

func (h *RosterHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	auctionID, ok := auctionIDParam(w, r)
	if !ok {
		return
	}
	playerID, err := uuid.Parse(chi.URLParam(r, "playerId"))
	if err != nil {
		http.Error(w, "Invalid player ID", http.StatusBadRequest)
		return
	}

	if err := h.rosterService.RemovePlayer(r.Context(), auctionID, userID, playerID); err != nil {
		writeAuctionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
