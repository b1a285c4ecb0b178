// internal/app/features/groups/members.go
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
	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleAddMember handles POST /groups/{id}/members/add. The student is
// identified by RA and must belong to the group's section.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	if !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "You do not have access to manage members.", httpnav.ResolveBackURL(r, "/groups"))
		return
	}

	gid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That group does not exist.", httpnav.ResolveBackURL(r, "/groups"))
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/groups")
		return
	}
	ra := normalize.RA(r.FormValue("ra"))
	backURL := "/groups/" + gid.Hex() + "/view"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := groupstore.New(h.DB).GetByID(ctx, gid)
	if errors.Is(err, groupstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "That group does not exist.", httpnav.ResolveBackURL(r, "/groups"))
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "group load failed", err, "A database error occurred.", "/groups")
		return
	}

	st, err := studentstore.New(h.DB).GetByRA(ctx, ra)
	if errors.Is(err, studentstore.ErrNotFound) {
		h.ErrLog.LogBadRequest(w, r, "unknown student RA", err, "No student with RA "+ra+" is on the roster.", backURL)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "student load failed", err, "A database error occurred.", backURL)
		return
	}

	pol, err := h.Policy.Get(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "policy load failed", err, "A database error occurred.", backURL)
		return
	}

	err = membershipstore.New(h.DB).Add(ctx, g.ID, st.ID, pol.EnforceSingleMembership)
	switch {
	case errors.Is(err, membershipstore.ErrAlreadyInOtherGroup):
		h.ErrLog.LogBadRequest(w, r, "student already in another group", err,
			st.FullName+" already belongs to another group.", backURL)
		return
	case errors.Is(err, membershipstore.ErrSectionMismatch):
		h.ErrLog.LogBadRequest(w, r, "section mismatch", err,
			st.FullName+" is enrolled in section "+st.Section+", not "+g.Section+".", backURL)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "membership add failed", err, "A database error occurred.", backURL)
		return
	}

	h.Log.Info("member added",
		zap.String("group", g.Code),
		zap.String("ra", st.RA))
	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

// HandleRemoveMember handles POST /groups/{id}/members/remove.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	if !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "You do not have access to manage members.", httpnav.ResolveBackURL(r, "/groups"))
		return
	}

	gid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That group does not exist.", httpnav.ResolveBackURL(r, "/groups"))
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/groups")
		return
	}
	backURL := "/groups/" + gid.Hex() + "/view"

	sid, err := primitive.ObjectIDFromHex(r.FormValue("student_id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad student id", err, "Invalid student.", backURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := membershipstore.New(h.DB).Remove(ctx, gid, sid); err != nil {
		h.ErrLog.LogServerError(w, r, "membership remove failed", err, "A database error occurred.", backURL)
		return
	}

	h.Log.Info("member removed",
		zap.String("group_id", gid.Hex()),
		zap.String("student_id", sid.Hex()))
	http.Redirect(w, r, backURL, http.StatusSeeOther)
}
