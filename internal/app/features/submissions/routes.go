// internal/app/features/submissions/routes.go
package submissions

import (
	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Downloads check publication state themselves so the gallery can
	// link here without a session.
	r.Get("/{id}/file/{kind}", h.ServeFile)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/new", h.ServeSubmitForm)
		pr.Post("/", h.HandleSubmit)
		pr.Get("/history", h.ServeHistory)
	})

	return r
}
