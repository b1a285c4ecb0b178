// internal/app/features/submissions/history.go
package submissions

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	submissionstore "github.com/dalemusser/temahub/internal/app/store/submissions"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/app/system/viewdata"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

type historyData struct {
	viewdata.BaseVM
	GroupCode   string
	Submissions []models.Submission
	IsStaff     bool
}

// ServeHistory handles GET /submissions/history. Students see their own
// group's ledger; staff pick a group with ?group=<code>.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var groupCode string
	if authz.IsStaff(r) {
		groupCode = normalize.GroupCode(query.Get(r, "group"))
	} else {
		code, err := h.viewerGroup(ctx, r)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "group resolution failed", err, "A database error occurred.", "/")
			return
		}
		if code == "" {
			uierrors.RenderForbidden(w, r, "You need a group to have a submission history.", "/groups/mine")
			return
		}
		groupCode = code
	}

	data := historyData{
		BaseVM:    viewdata.NewBaseVM(r, h.DB, "Submission History", "/"),
		GroupCode: groupCode,
		IsStaff:   authz.IsStaff(r),
	}

	if groupCode != "" {
		subs, err := submissionstore.New(h.DB).ListByGroup(ctx, groupCode)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "submission history failed", err, "A database error occurred.", "/")
			return
		}
		data.Submissions = subs
	}

	templates.Render(w, r, "submission_history", data)
}
