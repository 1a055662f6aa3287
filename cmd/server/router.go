package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avelkov/cardvault/internal/api"
	apiMiddleware "github.com/avelkov/cardvault/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordHasher,
		app.passwordVerifier,
		app.logger,
	)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	cardHandler := api.NewCardHandler(app.cardService, app.transferService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api/v1", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Route("/public", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/users", func(r chi.Router) {
				r.Get("/{userId}", userHandler.GetUser)
				r.Put("/{userId}", userHandler.UpdateUser)

				r.Group(func(r chi.Router) {
					r.Use(apiMiddleware.RequireAdmin)
					r.Get("/", userHandler.ListUsers)
					r.Post("/", userHandler.CreateUser)
					r.Patch("/{userId}/deactivate", userHandler.DeactivateUser)
					r.Patch("/{userId}/activate", userHandler.ActivateUser)
					r.Delete("/{userId}", userHandler.DeleteUser)
				})
			})

			r.Route("/cards", func(r chi.Router) {
				r.Get("/user/me", cardHandler.ListOwnCards)
				r.Get("/user/{userId}", cardHandler.ListUserCards)
				r.Patch("/transfer", cardHandler.Transfer)
				r.Get("/{cardId}", cardHandler.GetCard)
				r.Get("/{cardId}/balance", cardHandler.GetCardBalance)
				r.Patch("/{cardId}/block", cardHandler.BlockCard)

				r.Group(func(r chi.Router) {
					r.Use(apiMiddleware.RequireAdmin)
					r.Get("/all", cardHandler.ListAllCards)
					r.Post("/", cardHandler.CreateCard)
					r.Put("/{cardId}", cardHandler.UpdateCard)
					r.Patch("/{cardId}/unlock", cardHandler.UnlockCard)
					r.Delete("/{cardId}", cardHandler.DeleteCard)
				})
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
