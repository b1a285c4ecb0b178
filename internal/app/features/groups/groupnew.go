// internal/app/features/groups/groupnew.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	groupstore "github.com/dalemusser/temahub/internal/app/store/groups"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/formutil"
	"github.com/dalemusser/temahub/internal/app/system/inputval"
	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type createGroupInput struct {
	Section string `validate:"required,section" label:"Section"`
}

type newGroupData struct {
	formutil.Base
	Section string
}

// ServeNewGroup renders the Add Group page.
func (h *Handler) ServeNewGroup(w http.ResponseWriter, r *http.Request) {
	if !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "You do not have access to create groups.", httpnav.ResolveBackURL(r, "/groups"))
		return
	}

	var data newGroupData
	formutil.SetBase(&data.Base, r, h.DB, "Add Group", "/groups")
	data.Section = normalize.Section(r.URL.Query().Get("section"))
	templates.Render(w, r, "group_new", data)
}

// HandleCreateGroup processes the Add Group form. The code is allocated
// server-side from the section sequence.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	_, uname, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "You do not have access to create groups.", httpnav.ResolveBackURL(r, "/groups"))
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/groups")
		return
	}
	section := normalize.Section(r.FormValue("section"))

	reRender := func(msg string) {
		var data newGroupData
		formutil.SetBase(&data.Base, r, h.DB, "Add Group", "/groups")
		data.Section = section
		data.SetError(msg)
		templates.Render(w, r, "group_new", data)
	}

	input := createGroupInput{Section: section}
	if result := inputval.Validate(input); result.HasErrors() {
		reRender(result.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := groupstore.New(h.DB).CreateWithNextCode(ctx, section, uname, &uid)
	if errors.Is(err, groupstore.ErrDuplicateGroupCode) {
		reRender("Could not allocate a group code, please try again.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "group create failed", err, "A database error occurred.", "/groups")
		return
	}

	h.Log.Info("group created",
		zap.String("code", g.Code),
		zap.String("section", g.Section),
		zap.String("created_by", uname))

	http.Redirect(w, r, "/groups/"+g.ID.Hex()+"/view", http.StatusSeeOther)
}
