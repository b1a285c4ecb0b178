// internal/app/features/reviews/queue.go
package reviews

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	reviewstore "github.com/dalemusser/temahub/internal/app/store/reviews"
	submissionstore "github.com/dalemusser/temahub/internal/app/store/submissions"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/app/system/viewdata"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// queueRow pairs each group's current submission with its review
// aggregate.
type queueRow struct {
	Submission models.Submission
	Summary    reviewstore.Summary
}

type queueData struct {
	viewdata.BaseVM
	Rows     []queueRow
	MinScore float64
	AnyUnpub bool
}

// ServeQueue handles GET /reviews. Staff see one row per group, the
// newest submission, with mean score, like count, and publication state.
func (h *Handler) ServeQueue(w http.ResponseWriter, r *http.Request) {
	if !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "Only instructors and admins review submissions.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	subs, err := submissionstore.New(h.DB).ListCurrent(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "review queue failed", err, "A database error occurred.", "/")
		return
	}
	sums, err := reviewstore.New(h.DB).SummarizeAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "review summaries failed", err, "A database error occurred.", "/")
		return
	}
	pol, err := h.Policy.Get(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "policy load failed", err, "A database error occurred.", "/")
		return
	}

	data := queueData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Review Queue", "/"),
		MinScore: pol.PublishMinScore,
	}
	for _, sub := range subs {
		data.Rows = append(data.Rows, queueRow{
			Submission: sub,
			Summary:    sums[sub.ID],
		})
		if !sub.Published {
			data.AnyUnpub = true
		}
	}

	templates.Render(w, r, "review_queue", data)
}
