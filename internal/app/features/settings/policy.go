// internal/app/features/settings/policy.go
package settings

import (
	"context"
	"net/http"
	"strconv"
	"time"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/formutil"
	"github.com/dalemusser/temahub/internal/app/system/limits"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// cutoffLayout is the format of the datetime-local form input. Values
// are taken as UTC.
const cutoffLayout = "2006-01-02T15:04"

type policyFormData struct {
	formutil.Base
	Policy models.CoursePolicy
	Cutoff string
	Saved  bool
}

// ServePolicyForm handles GET /settings: the current course policy.
func (h *Handler) ServePolicyForm(w http.ResponseWriter, r *http.Request) {
	if !authz.IsAdmin(r) {
		uierrors.RenderForbidden(w, r, "Only admins change course policy.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pol, err := h.Policy.Get(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "policy load failed", err, "A database error occurred.", "/")
		return
	}

	data := policyFormData{
		Policy: pol,
		Cutoff: pol.ReserveCutoff.UTC().Format(cutoffLayout),
		Saved:  r.URL.Query().Get("saved") == "1",
	}
	formutil.SetBase(&data.Base, r, h.DB, "Course Policy", "/")
	templates.Render(w, r, "policy_form", data)
}

// HandleSavePolicy handles POST /settings. The saved document is read on
// every reserve and publish, so changes apply to the next request.
func (h *Handler) HandleSavePolicy(w http.ResponseWriter, r *http.Request) {
	_, uname, _, ok := authz.UserCtx(r)
	if !ok || !authz.IsAdmin(r) {
		uierrors.RenderForbidden(w, r, "Only admins change course policy.", "/")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxSettingsFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/settings")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pol, err := h.Policy.Get(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "policy load failed", err, "A database error occurred.", "/settings")
		return
	}

	data := policyFormData{
		Policy: pol,
		Cutoff: r.FormValue("reserve_cutoff"),
	}
	formutil.SetBase(&data.Base, r, h.DB, "Course Policy", "/")

	reRender := func(msg string) {
		data.SetError(msg)
		w.WriteHeader(http.StatusUnprocessableEntity)
		templates.Render(w, r, "policy_form", data)
	}

	cutoff, err := time.ParseInLocation(cutoffLayout, r.FormValue("reserve_cutoff"), time.UTC)
	if err != nil {
		reRender("The cutoff must be a valid date and time.")
		return
	}
	before, err := strconv.Atoi(r.FormValue("min_members_before"))
	if err != nil || before < 1 {
		reRender("Minimum members before the cutoff must be a whole number of at least 1.")
		return
	}
	after, err := strconv.Atoi(r.FormValue("min_members_after"))
	if err != nil || after < 1 {
		reRender("Minimum members after the cutoff must be a whole number of at least 1.")
		return
	}
	minScore, err := strconv.ParseFloat(r.FormValue("publish_min_score"), 64)
	if err != nil || minScore < 0 || minScore > 10 {
		reRender("The publication score threshold must be between 0 and 10.")
		return
	}

	pol.ReserveCutoff = cutoff
	pol.MinMembersBefore = before
	pol.MinMembersAfter = after
	pol.PublishMinScore = minScore
	pol.EnforceSingleMembership = r.FormValue("enforce_single_membership") != ""

	if err := h.Policy.Save(ctx, pol, uname); err != nil {
		h.ErrLog.LogServerError(w, r, "policy save failed", err, "A database error occurred.", "/settings")
		return
	}

	h.Log.Info("course policy saved",
		zap.Time("reserve_cutoff", cutoff),
		zap.Int("min_members_before", before),
		zap.Int("min_members_after", after),
		zap.Float64("publish_min_score", minScore),
		zap.String("updated_by", uname))
	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}
