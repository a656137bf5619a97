package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhil/auction-arena/internal/api/handlers"
	"github.com/nikhil/auction-arena/internal/api/middleware"
	"github.com/nikhil/auction-arena/internal/service"
	"github.com/nikhil/auction-arena/internal/websocket"
)

func NewRouter(services *service.Services, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	auctionHandler := handlers.NewAuctionHandler(services.Auction)
	rosterHandler := handlers.NewRosterHandler(services.Roster)
	setupHandler := handlers.NewSetupHandler(services.Setup)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(services.Auth))
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			// Setup wizard routes
			r.Route("/setup", func(r chi.Router) {
				r.Get("/", setupHandler.Get)
				r.Put("/", setupHandler.Save)
				r.Delete("/", setupHandler.Discard)
				r.Post("/finalize", setupHandler.Finalize)
			})

			// Auction routes
			r.Route("/auctions", func(r chi.Router) {
				r.Post("/", auctionHandler.Create)
				r.Get("/", auctionHandler.ListMine)
				r.Get("/{id}", auctionHandler.Get)
				r.Get("/{id}/state", auctionHandler.GetState)

				// Roster management (draft stage only)
				r.Route("/{id}/teams", func(r chi.Router) {
					r.Post("/", rosterHandler.AddTeam)
					r.Get("/", rosterHandler.ListTeams)
					r.Delete("/{teamId}", rosterHandler.RemoveTeam)
				})
				r.Route("/{id}/players", func(r chi.Router) {
					r.Post("/", rosterHandler.AddPlayer)
					r.Get("/", rosterHandler.ListPlayers)
					r.Delete("/{playerId}", rosterHandler.RemovePlayer)
				})

				// Live auction commands
				r.Post("/{id}/start", auctionHandler.Start)
				r.Post("/{id}/bids", auctionHandler.PlaceBid)
				r.Post("/{id}/sold", auctionHandler.Sold)
				r.Post("/{id}/next-player", auctionHandler.NextPlayer)
				r.Post("/{id}/previous-player", auctionHandler.PreviousPlayer)
				r.Post("/{id}/undo-bid", auctionHandler.UndoBid)
				r.Post("/{id}/pause", auctionHandler.Pause)
				r.Post("/{id}/resume", auctionHandler.Resume)
				r.Post("/{id}/reset", auctionHandler.Reset)
				r.Post("/{id}/cancel", auctionHandler.Cancel)
				r.Post("/{id}/complete", auctionHandler.Complete)
			})
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
