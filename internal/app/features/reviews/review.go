// internal/app/features/reviews/review.go
package reviews

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	reviewstore "github.com/dalemusser/temahub/internal/app/store/reviews"
	submissionstore "github.com/dalemusser/temahub/internal/app/store/submissions"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/formutil"
	"github.com/dalemusser/temahub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/temahub/internal/app/system/limits"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type reviewFormData struct {
	formutil.Base
	Submission models.Submission
	Summary    reviewstore.Summary
	Mine       *models.Review
	Others     []models.Review
}

// loadSubmission resolves the {id} URL parameter for the review pages.
func (h *Handler) loadSubmission(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.Submission, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Submission not found.", "/reviews")
		return nil, false
	}
	sub, err := submissionstore.New(h.DB).GetByID(ctx, id)
	if errors.Is(err, submissionstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "Submission not found.", "/reviews")
		return nil, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "submission lookup failed", err, "A database error occurred.", "/reviews")
		return nil, false
	}
	return sub, true
}

// ServeReviewForm handles GET /reviews/{id}: the reviewer's own review
// prefilled for editing, plus everyone else's reviews and the aggregate.
func (h *Handler) ServeReviewForm(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok || !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "Only instructors and admins review submissions.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sub, ok := h.loadSubmission(ctx, w, r)
	if !ok {
		return
	}

	store := reviewstore.New(h.DB)
	mine, err := store.ByReviewer(ctx, sub.ID, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "review lookup failed", err, "A database error occurred.", "/reviews")
		return
	}
	others, err := store.ListBySubmission(ctx, sub.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "review list failed", err, "A database error occurred.", "/reviews")
		return
	}
	summary, err := store.Summarize(ctx, sub.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "review summary failed", err, "A database error occurred.", "/reviews")
		return
	}

	data := reviewFormData{
		Submission: *sub,
		Summary:    summary,
		Mine:       mine,
		Others:     others,
	}
	formutil.SetBase(&data.Base, r, h.DB, "Review Submission", "/reviews")
	templates.Render(w, r, "review_form", data)
}

// HandleReview handles POST /reviews/{id}. A reviewer's second save of
// the same submission replaces the first one.
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	_, uname, uid, ok := authz.UserCtx(r)
	if !ok || !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "Only instructors and admins review submissions.", "/")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxReviewFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/reviews")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sub, ok := h.loadSubmission(ctx, w, r)
	if !ok {
		return
	}

	score, err := strconv.Atoi(r.FormValue("score"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "non-numeric score", err, "The score must be a whole number from 0 to 10.", "/reviews")
		return
	}

	rev := &models.Review{
		SubmissionID: sub.ID,
		ReviewerID:   uid,
		ReviewerName: uname,
		Score:        score,
		Liked:        r.FormValue("liked") != "",
		Comment:      htmlsanitize.Sanitize(r.FormValue("comment")),
	}
	if err := reviewstore.New(h.DB).Upsert(ctx, rev); err != nil {
		if errors.Is(err, reviewstore.ErrScoreOutOfRange) {
			h.ErrLog.LogBadRequest(w, r, "score out of range", err, "The score must be a whole number from 0 to 10.", "/reviews")
			return
		}
		h.ErrLog.LogServerError(w, r, "review upsert failed", err, "A database error occurred.", "/reviews")
		return
	}

	h.Log.Info("review saved",
		zap.String("group", sub.GroupCode),
		zap.String("reviewer", uname),
		zap.Int("score", score))
	http.Redirect(w, r, "/reviews/"+sub.ID.Hex(), http.StatusSeeOther)
}
