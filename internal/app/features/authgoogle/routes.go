// internal/app/features/authgoogle/routes.go
package authgoogle

import "github.com/go-chi/chi/v5"

// Routes returns the router for the Google OAuth endpoints. These are
// public routes.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/start", h.ServeStart)
	r.Get("/callback", h.ServeCallback)
	return r
}
