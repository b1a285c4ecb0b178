// internal/app/features/reviews/publish.go
package reviews

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	reviewstore "github.com/dalemusser/temahub/internal/app/store/reviews"
	submissionstore "github.com/dalemusser/temahub/internal/app/store/submissions"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandlePublish handles POST /reviews/{id}/publish, the manual path to
// the gallery. Publication is one way and requires the group's consent.
func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	_, uname, _, ok := authz.UserCtx(r)
	if !ok || !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "Only instructors and admins publish submissions.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub, ok := h.loadSubmission(ctx, w, r)
	if !ok {
		return
	}
	if !sub.Consent {
		h.ErrLog.LogBadRequest(w, r, "publish without consent", nil,
			"The group did not consent to publication.", "/reviews")
		return
	}

	if err := submissionstore.New(h.DB).Publish(ctx, sub.ID, uname); err != nil {
		h.ErrLog.LogServerError(w, r, "publish failed", err, "A database error occurred.", "/reviews")
		return
	}

	h.Log.Info("submission published",
		zap.String("group", sub.GroupCode),
		zap.String("published_by", uname))
	http.Redirect(w, r, "/reviews", http.StatusSeeOther)
}

// HandlePublishByScore handles POST /reviews/publish-by-score: every
// current, consented, reviewed submission whose mean score meets the
// policy threshold gets published in one sweep. Already published rows
// are left untouched.
func (h *Handler) HandlePublishByScore(w http.ResponseWriter, r *http.Request) {
	_, uname, _, ok := authz.UserCtx(r)
	if !ok || !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "Only instructors and admins publish submissions.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	pol, err := h.Policy.Get(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "policy load failed", err, "A database error occurred.", "/reviews")
		return
	}

	subStore := submissionstore.New(h.DB)
	subs, err := subStore.ListCurrent(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "current submissions failed", err, "A database error occurred.", "/reviews")
		return
	}
	sums, err := reviewstore.New(h.DB).SummarizeAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "review summaries failed", err, "A database error occurred.", "/reviews")
		return
	}

	published := 0
	for _, sub := range subs {
		if sub.Published || !sub.Consent {
			continue
		}
		sum, reviewed := sums[sub.ID]
		if !reviewed || sum.ReviewCount == 0 || sum.MeanScore < pol.PublishMinScore {
			continue
		}
		if err := subStore.Publish(ctx, sub.ID, uname); err != nil {
			h.ErrLog.LogServerError(w, r, "threshold publish failed", err, "A database error occurred.", "/reviews")
			return
		}
		published++
	}

	h.Log.Info("threshold publication complete",
		zap.Float64("min_score", pol.PublishMinScore),
		zap.Int("published", published),
		zap.String("published_by", uname))
	http.Redirect(w, r, "/reviews", http.StatusSeeOther)
}
