package router

import (
	"net/http"

	"github.com/Yzairi/CDA/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupUserRoutes mounts registration, login and identity administration.
func SetupUserRoutes(r chi.Router, h *handler.UserHandler, auth, limit func(http.Handler) http.Handler) {
	r.Group(func(public chi.Router) {
		public.Use(limit)
		public.Post("/api/users/register", h.Register)
		public.Post("/api/users/login", h.Login)
	})

	r.Group(func(authRouter chi.Router) {
		authRouter.Use(auth)
		authRouter.Get("/api/users/me", h.Me)

		// Role checks happen in the usecase.
		authRouter.Get("/api/users", h.List)
		authRouter.Get("/api/users/{id}", h.Get)
		authRouter.Put("/api/users/{id}", h.Update)
		authRouter.Delete("/api/users/{id}", h.Delete)
	})
}
