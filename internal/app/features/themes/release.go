// internal/app/features/themes/release.go
package themes

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/app/system/reservation"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"go.uber.org/zap"
)

// HandleRelease handles POST /themes/release. A member of the holding
// group releases their own reservation; staff can release any theme.
func (h *Handler) HandleRelease(w http.ResponseWriter, r *http.Request) {
	_, uname, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/themes")
		return
	}

	title := normalize.Name(r.FormValue("title"))
	backURL := httpnav.ResolveBackURL(r, "/themes")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		th  *models.Theme
		err error
	)
	if authz.IsStaff(r) {
		th, err = h.Engine.ForceRelease(ctx, title, uname)
	} else {
		groupCode, gerr := h.viewerGroup(ctx, r)
		if gerr != nil {
			h.ErrLog.LogServerError(w, r, "group resolution failed", gerr, "A database error occurred.", backURL)
			return
		}
		if groupCode == "" {
			uierrors.RenderForbidden(w, r, "Only the reserving group can release its theme.", backURL)
			return
		}
		th, err = h.Engine.Release(ctx, title, groupCode, uname)
	}

	switch {
	case errors.Is(err, reservation.ErrThemeNotFound):
		h.ErrLog.LogBadRequest(w, r, "release unknown theme", err, "That theme is not in the catalog.", backURL)
		return
	case errors.Is(err, reservation.ErrThemeNotReserved):
		h.ErrLog.LogBadRequest(w, r, "release without reservation", err,
			"That theme is not reserved by your group.", backURL)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "release failed", err, "A database error occurred.", backURL)
		return
	}

	h.Log.Info("theme released",
		zap.String("title", th.Title),
		zap.String("actor", uname))
	http.Redirect(w, r, backURL, http.StatusSeeOther)
}
