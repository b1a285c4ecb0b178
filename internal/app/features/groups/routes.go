// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeGroupsList)
		pr.Get("/mine", h.ServeMyGroup)

		pr.Get("/new", h.ServeNewGroup)
		pr.Post("/", h.HandleCreateGroup)

		pr.Get("/{id}/view", h.ServeGroupView)
		pr.Post("/{id}/members/add", h.HandleAddMember)
		pr.Post("/{id}/members/remove", h.HandleRemoveMember)
	})

	return r
}
