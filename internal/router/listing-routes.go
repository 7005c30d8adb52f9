package router

import (
	"net/http"

	"github.com/Yzairi/CDA/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupListingRoutes mounts /api/properties. Reads are public, every mutation needs a bearer token.
func SetupListingRoutes(r chi.Router, listings *handler.ListingHandler, images *handler.ImageHandler, auth func(http.Handler) http.Handler) {
	r.Route("/api/properties", func(r chi.Router) {
		r.Get("/", listings.List)
		r.Get("/{id}", listings.Get)

		r.Group(func(authRouter chi.Router) {
			authRouter.Use(auth)
			authRouter.Post("/", listings.Create)
			authRouter.Put("/{id}", listings.Update)
			authRouter.Delete("/{id}", listings.Delete)

			authRouter.Post("/{id}/publish", listings.Publish)
			authRouter.Post("/{id}/archive", listings.Archive)
			authRouter.Post("/{id}/draft", listings.RevertToDraft)

			authRouter.Post("/{id}/images", images.Upload)
			authRouter.Put("/{id}/images/order", images.Reorder)
			authRouter.Delete("/{id}/images/{imageId}", images.Delete)
		})
	})
}

// SetupStatsRoutes mounts the administrator reports.
func SetupStatsRoutes(r chi.Router, h *handler.StatsHandler, auth func(http.Handler) http.Handler) {
	r.Group(func(authRouter chi.Router) {
		authRouter.Use(auth)
		authRouter.Get("/api/stats/summary", h.Summary)
		authRouter.Get("/api/stats/timeline", h.Timeline)
	})
}
