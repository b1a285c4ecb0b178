// internal/app/features/groups/mygroup.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	groupstore "github.com/dalemusser/temahub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/temahub/internal/app/store/memberships"
	studentstore "github.com/dalemusser/temahub/internal/app/store/students"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

type myGroupData struct {
	viewdata.BaseVM
	HasGroup bool
}

// ServeMyGroup handles GET /groups/mine: redirects a student to their
// group's page, or explains they have none yet.
func (h *Handler) ServeMyGroup(w http.ResponseWriter, r *http.Request) {
	ra := authz.StudentRA(r)
	if ra == "" {
		uierrors.RenderForbidden(w, r, "Only student accounts have a group of their own.", "/groups")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	st, err := studentstore.New(h.DB).GetByRA(ctx, ra)
	if errors.Is(err, studentstore.ErrNotFound) {
		uierrors.RenderForbidden(w, r, "Your account is not linked to the course roster.", "/groups")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "student load failed", err, "A database error occurred.", "/groups")
		return
	}

	code, err := membershipstore.New(h.DB).ActiveGroupForStudent(ctx, st.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "membership lookup failed", err, "A database error occurred.", "/groups")
		return
	}
	if code == "" {
		templates.Render(w, r, "my_group", myGroupData{
			BaseVM: viewdata.NewBaseVM(r, h.DB, "My Group", "/groups"),
		})
		return
	}

	g, err := groupstore.New(h.DB).GetByCode(ctx, code)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "group load failed", err, "A database error occurred.", "/groups")
		return
	}

	http.Redirect(w, r, "/groups/"+g.ID.Hex()+"/view", http.StatusSeeOther)
}
