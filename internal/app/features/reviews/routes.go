// internal/app/features/reviews/routes.go
package reviews

import (
	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeQueue)
	r.Post("/publish-by-score", h.HandlePublishByScore)
	r.Get("/{id}", h.ServeReviewForm)
	r.Post("/{id}", h.HandleReview)
	r.Post("/{id}/publish", h.HandlePublish)

	return r
}
