/**
 * @description
 * This file sets up the HTTP router for the revenue-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies any
 * necessary middleware, such as for authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for the dashboard origin.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RevenueRoutes creates and returns a new router for the revenue service.
func RevenueRoutes(h *RevenueHandlers, auth AuthConfig, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// The OAuth flow is driven by browser redirects, so it cannot carry a
	// bearer token. The user identity travels in the state parameter instead.
	r.Get("/social/instagram/authorize", h.InstagramAuthorizeHandler)
	r.Get("/social/instagram/callback", h.InstagramCallbackHandler)

	// Group routes that require authentication.
	r.Group(func(r chi.Router) {
		// Apply JWT authentication middleware for production
		r.Use(SessionAuthMiddleware(auth))

		r.Get("/transactions", h.ListTransactionsHandler)
		r.Post("/transactions", h.CreateTransactionHandler)
		r.Put("/transactions/{id}", h.UpdateTransactionHandler)
		r.Delete("/transactions/{id}", h.DeleteTransactionHandler)

		r.Get("/deals", h.ListBrandDealsHandler)
		r.Post("/deals", h.CreateBrandDealHandler)
		r.Put("/deals/{id}", h.UpdateBrandDealHandler)
		r.Delete("/deals/{id}", h.DeleteBrandDealHandler)

		r.Get("/socials", h.ListSocialAccountsHandler)
		r.Post("/socials", h.AddSocialAccountHandler)
		r.Delete("/socials/{id}", h.DeleteSocialAccountHandler)
		r.Post("/socials/sync", h.SyncSocialAccountsHandler)

		r.Get("/profile", h.GetProfileHandler)
		r.Put("/profile", h.UpdateProfileHandler)
		r.Get("/currencies", h.GetCurrenciesHandler)

		r.Get("/analytics", h.GetAnalyticsHandler)
	})

	return r
}
