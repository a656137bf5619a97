package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhil/auction-arena/internal/api/middleware"
	"github.com/nikhil/auction-arena/internal/auction"
	"github.com/nikhil/auction-arena/internal/domain"
	"github.com/nikhil/auction-arena/internal/service"
)

type AuctionHandler struct {
	auctionService *service.AuctionService
}

func NewAuctionHandler(auctionService *service.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctionService: auctionService}
}

type CreateAuctionRequest struct {
	Name                string                  `json:"name"`
	MaxTokensPerCaptain int64                   `json:"maxTokensPerCaptain"`
	MinBidAmount        int64                   `json:"minBidAmount"`
	MinIncrement        int64                   `json:"minIncrement"`
	UseFixedIncrements  bool                    `json:"useFixedIncrements"`
	IncrementRanges     *domain.IncrementRanges `json:"incrementRanges,omitempty"`
	UseBasePrice        bool                    `json:"useBasePrice"`
	TimerSeconds        int                     `json:"timerSeconds"`
	PlayerOrderType     string                  `json:"playerOrderType"`
}

type AuctionResponse struct {
	ID                  string `json:"id"`
	HostID              string `json:"hostId"`
	Name                string `json:"name"`
	Status              string `json:"status"`
	TimerSeconds        int    `json:"timerSeconds"`
	MaxTokensPerCaptain int64  `json:"maxTokensPerCaptain"`
	MinBidAmount        int64  `json:"minBidAmount"`
	PlayerOrderType     string `json:"playerOrderType"`
}

type PlaceBidRequest struct {
	Amount int64 `json:"amount"`
}

func toAuctionResponse(a *domain.Auction) AuctionResponse {
	return AuctionResponse{
		ID:                  a.ID.String(),
		HostID:              a.HostID.String(),
		Name:                a.Name,
		Status:              string(a.Status),
		TimerSeconds:        a.TimerSeconds,
		MaxTokensPerCaptain: a.MaxTokensPerCaptain,
		MinBidAmount:        a.MinBidAmount,
		PlayerOrderType:     string(a.PlayerOrderType),
	}
}

// writeAuctionError maps service and engine errors onto HTTP statuses.
// Command rejections (stale bids, insufficient funds, wrong phase) are
// client errors; only persistence failures surface as 500s.
func writeAuctionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound):
		http.Error(w, "Auction not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrNotHost), errors.Is(err, domain.ErrNotCaptain):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrStaleBid),
		errors.Is(err, domain.ErrPlayerSold),
		errors.Is(err, domain.ErrAuctionStarted),
		errors.Is(err, domain.ErrAuctionClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrNoBidder),
		errors.Is(err, domain.ErrNoBidToUndo),
		errors.Is(err, domain.ErrNoHistory),
		errors.Is(err, domain.ErrNotReady),
		errors.Is(err, domain.ErrAuctionNotActive),
		errors.Is(err, domain.ErrAuctionNotPaused):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func auctionIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid auction ID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *AuctionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateAuctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	a, err := h.auctionService.CreateAuction(r.Context(), service.CreateAuctionInput{
		HostID:              userID,
		Name:                req.Name,
		MaxTokensPerCaptain: req.MaxTokensPerCaptain,
		MinBidAmount:        req.MinBidAmount,
		MinIncrement:        req.MinIncrement,
		UseFixedIncrements:  req.UseFixedIncrements,
		IncrementRanges:     req.IncrementRanges,
		UseBasePrice:        req.UseBasePrice,
		TimerSeconds:        req.TimerSeconds,
		PlayerOrderType:     domain.PlayerOrderType(req.PlayerOrderType),
	})
	if err != nil {
		writeAuctionError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, toAuctionResponse(a))
}

func (h *AuctionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	a, err := h.auctionService.GetAuction(r.Context(), id)
	if err != nil {
		writeAuctionError(w, err)
		return
	}
	writeJSON(w, toAuctionResponse(a))
}

func (h *AuctionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	auctions, err := h.auctionService.ListByHost(r.Context(), userID, 50, 0)
	if err != nil {
		writeAuctionError(w, err)
		return
	}

	resp := make([]AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		resp = append(resp, toAuctionResponse(a))
	}
	writeJSON(w, resp)
}

func (h *AuctionHandler) GetState(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	state, err := h.auctionService.GetState(r.Context(), id)
	if err != nil {
		writeAuctionError(w, err)
		return
	}
	writeJSON(w, state)
}

// command wraps the common shape of host-issued auction commands: parse
// the auction ID, resolve the caller, invoke, and return the new state.
func (h *AuctionHandler) command(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, auctionID, userID uuid.UUID) (*auction.StateSnapshot, error),
) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	state, err := fn(r.Context(), id, userID)
	if err != nil {
		writeAuctionError(w, err)
		return
	}
	writeJSON(w, state)
}

func (h *AuctionHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, auctionID, userID uuid.UUID) (*auction.StateSnapshot, error) {
		return h.auctionService.StartAuction(ctx, auctionID, userID)
	})
}

func (h *AuctionHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, ok := auctionIDParam(w, r)
	if !ok {
		return
	}

	var req PlaceBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	state, err := h.auctionService.PlaceBid(r.Context(), id, userID, req.Amount)
	if err != nil {
		writeAuctionError(w, err)
		return
	}
	writeJSON(w, state)
}

func (h *AuctionHandler) Sold(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, auctionID, userID uuid.UUID) (*auction.StateSnapshot, error) {
		return h.auctionService.MarkSold(ctx, auctionID, userID)
	})
}

func (h *AuctionHandler) NextPlayer(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, auctionID, userID uuid.UUID) (*auction.StateSnapshot, error) {
		return h.auctionService.AdvancePlayer(ctx, auctionID, userID)
	})
}

func (h *AuctionHandler) PreviousPlayer(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, auctionID, userID uuid.UUID) (*auction.StateSnapshot, error) {
		return h.auctionService.RetreatPlayer(ctx, auctionID, userID)
	})
}

func (h *AuctionHandler) UndoBid(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, auctionID, userID uuid.UUID) (*auction.StateSnapshot, error) {
		return h.auctionService.UndoLastBid(ctx, auctionID, userID)
	})
}

func (h *AuctionHandler) Pause(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, auctionID, userID uuid.UUID) (*auction.StateSnapshot, error) {
		return h.auctionService.PauseTimer(ctx, auctionID, userID)
	})
}

func (h *AuctionHandler) Resume(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, auctionID, userID uuid.UUID) (*auction.StateSnapshot, error) {
		return h.auctionService.ResumeTimer(ctx, auctionID, userID)
	})
}

func (h *AuctionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, auctionID, userID uuid.UUID) (*auction.StateSnapshot, error) {
		return h.auctionService.ResetAuction(ctx, auctionID, userID)
	})
}

func (h *AuctionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, auctionID, userID uuid.UUID) (*auction.StateSnapshot, error) {
		return h.auctionService.CancelAuction(ctx, auctionID, userID)
	})
}

func (h *AuctionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, func(ctx context.Context, auctionID, userID uuid.UUID) (*auction.StateSnapshot, error) {
		return h.auctionService.CompleteAuction(ctx, auctionID, userID)
	})
}
