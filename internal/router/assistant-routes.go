package router

import (
	"net/http"

	"github.com/Yzairi/CDA/internal/handler"
	"github.com/go-chi/chi/v5"
)

func SetupAssistantRoutes(r chi.Router, h *handler.AssistantHandler, auth, limit func(http.Handler) http.Handler) {
	r.Group(func(authRouter chi.Router) {
		authRouter.Use(auth)
		authRouter.Use(limit)
		authRouter.Post("/api/ia/estimate", h.Estimate)
		authRouter.Post("/api/ia/enhance-description", h.EnhanceDescription)
	})
}
