// internal/app/features/themes/routes.go
package themes

import (
	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// The catalog itself is readable without signing in.
	r.Get("/", h.ServeThemesList)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/reserve", h.HandleReserve)
		pr.Post("/release", h.HandleRelease)

		pr.Get("/import", h.ServeImportForm)
		pr.Post("/import", h.HandleImport)
	})

	return r
}
