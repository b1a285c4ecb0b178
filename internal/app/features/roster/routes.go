// internal/app/features/roster/routes.go
package roster

import (
	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeRosterPage)
	r.Post("/preview", h.HandlePreview)
	r.Post("/import", h.HandleImport)

	return r
}
