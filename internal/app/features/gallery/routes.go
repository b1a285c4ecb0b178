// internal/app/features/gallery/routes.go
package gallery

import "github.com/go-chi/chi/v5"

// Routes are public: the gallery is the course's shop window.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServePage)
	r.Get("/feed.json", h.ServeFeed)

	return r
}
