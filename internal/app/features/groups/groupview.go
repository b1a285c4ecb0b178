// internal/app/features/groups/groupview.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	groupstore "github.com/dalemusser/temahub/internal/app/store/groups"
	membershipstore "github.com/dalemusser/temahub/internal/app/store/memberships"
	studentstore "github.com/dalemusser/temahub/internal/app/store/students"
	submissionstore "github.com/dalemusser/temahub/internal/app/store/submissions"
	themestore "github.com/dalemusser/temahub/internal/app/store/themes"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/app/system/viewdata"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memberRow struct {
	StudentID string
	RA        string
	FullName  string
}

type groupViewData struct {
	viewdata.BaseVM
	Group      models.Group
	Members    []memberRow
	Theme      *models.Theme
	Submission *models.Submission
	CanEdit    bool
}

// ServeGroupView handles GET /groups/{id}/view.
func (h *Handler) ServeGroupView(w http.ResponseWriter, r *http.Request) {
	gid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That group does not exist.", httpnav.ResolveBackURL(r, "/groups"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
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

	members, err := h.loadMembers(ctx, gid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "member load failed", err, "A database error occurred.", "/groups")
		return
	}

	theme, err := themestore.New(h.DB).ReservedByGroup(ctx, g.Code)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "reserved theme load failed", err, "A database error occurred.", "/groups")
		return
	}

	sub, err := submissionstore.New(h.DB).Current(ctx, g.Code)
	if err != nil && !errors.Is(err, submissionstore.ErrNotFound) {
		h.Log.Warn("current submission load failed", zap.String("group", g.Code), zap.Error(err))
	}

	data := groupViewData{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "Group "+g.Code, "/groups"),
		Group:      g,
		Members:    members,
		Theme:      theme,
		Submission: sub,
		CanEdit:    authz.IsStaff(r),
	}
	templates.Render(w, r, "group_view", data)
}

// loadMembers resolves membership rows to student names. Group sizes are
// single digits, so per-member lookups are fine here.
func (h *Handler) loadMembers(ctx context.Context, groupID primitive.ObjectID) ([]memberRow, error) {
	mships, err := membershipstore.New(h.DB).ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	students := studentstore.New(h.DB)
	rows := make([]memberRow, 0, len(mships))
	for _, m := range mships {
		st, err := students.GetByID(ctx, m.StudentID)
		if errors.Is(err, studentstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, memberRow{
			StudentID: st.ID.Hex(),
			RA:        st.RA,
			FullName:  st.FullName,
		})
	}
	return rows, nil
}
