// internal/app/features/themes/reserve.go
package themes

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	groupstore "github.com/dalemusser/temahub/internal/app/store/groups"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/app/system/reservation"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"go.uber.org/zap"
)

// HandleReserve handles POST /themes/reserve. Students reserve for their
// own group; staff may reserve on behalf of any group via the group field.
func (h *Handler) HandleReserve(w http.ResponseWriter, r *http.Request) {
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

	groupCode, err := h.actorGroup(ctx, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "group resolution failed", err, "A database error occurred.", backURL)
		return
	}
	if groupCode == "" {
		h.ErrLog.LogBadRequest(w, r, "no group for reserve", nil, "You need a group before reserving a theme.", backURL)
		return
	}

	th, err := h.Engine.Reserve(ctx, title, groupCode)

	var insufficient *reservation.InsufficientMembersError
	switch {
	case errors.As(err, &insufficient):
		h.ErrLog.LogBadRequest(w, r, "reserve below minimum members", err,
			fmt.Sprintf("Your group has %d members; at least %d are required to reserve right now.",
				insufficient.Have, insufficient.Required), backURL)
		return
	case errors.Is(err, reservation.ErrThemeNotFound):
		h.ErrLog.LogBadRequest(w, r, "reserve unknown theme", err, "That theme is not in the catalog.", backURL)
		return
	case errors.Is(err, reservation.ErrThemeAlreadyReserved):
		h.ErrLog.LogBadRequest(w, r, "reserve lost race", err, "Another group took that theme first.", backURL)
		return
	case errors.Is(err, reservation.ErrGroupHasTheme):
		h.ErrLog.LogBadRequest(w, r, "group already holds a theme", err, "Your group already holds a theme. Release it first.", backURL)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "reserve failed", err, "A database error occurred.", backURL)
		return
	}

	h.Log.Info("theme reserved",
		zap.String("title", th.Title),
		zap.String("group", groupCode),
		zap.String("actor", uname))
	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

// actorGroup decides which group an action applies to: staff may name one
// in the form, students always act for their own group.
func (h *Handler) actorGroup(ctx context.Context, r *http.Request) (string, error) {
	if authz.IsStaff(r) {
		code := normalize.GroupCode(r.FormValue("group"))
		if code == "" {
			return "", nil
		}
		if _, err := groupstore.New(h.DB).GetByCode(ctx, code); err != nil {
			if errors.Is(err, groupstore.ErrNotFound) {
				return "", nil
			}
			return "", err
		}
		return code, nil
	}
	return h.viewerGroup(ctx, r)
}
