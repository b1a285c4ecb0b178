// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServePolicyForm)
	r.Post("/", h.HandleSavePolicy)

	return r
}
