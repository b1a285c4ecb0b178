// internal/app/features/submissions/download.go
package submissions

import (
	"context"
	"errors"
	"net/http"
	"path"
	"time"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	submissionstore "github.com/dalemusser/temahub/internal/app/store/submissions"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeFile handles GET /submissions/{id}/file/{kind} where kind is
// report, slides, or bundle. Published submissions are downloadable by
// anyone (the gallery links here); unpublished ones only by staff and
// the submitting group's members.
func (h *Handler) ServeFile(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Submission not found.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sub, err := submissionstore.New(h.DB).GetByID(ctx, id)
	if errors.Is(err, submissionstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "Submission not found.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "submission lookup failed", err, "A database error occurred.", "/")
		return
	}

	var filePath string
	switch chi.URLParam(r, "kind") {
	case "report":
		filePath = sub.ReportPath
	case "slides":
		filePath = sub.SlidesPath
	case "bundle":
		filePath = sub.BundlePath
	}
	if filePath == "" {
		uierrors.RenderNotFound(w, r, "No such file on this submission.", "/")
		return
	}

	if !sub.Published && !h.canViewGroup(ctx, r, sub.GroupCode) {
		uierrors.RenderForbidden(w, r, "This file is not published.", "/")
		return
	}

	disposition := "attachment; filename=\"" + path.Base(filePath) + "\""

	// Files can be replaced across resubmissions, so downloads are never
	// cached.
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")

	if local, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := local.GetFullPath(filePath)
		if err != nil {
			h.Log.Error("file path resolution failed",
				zap.Error(err), zap.String("path", filePath))
			h.ErrLog.LogServerError(w, r, "file path resolution failed", err, "Failed to locate file.", "/")
			return
		}
		w.Header().Set("Content-Disposition", disposition)
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, filePath, &storage.PresignOptions{
		Expires:            15 * time.Minute,
		ContentDisposition: disposition,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "signed URL generation failed", err, "Failed to generate download link.", "/")
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}

// canViewGroup reports whether the viewer is staff or a member of the
// named group.
func (h *Handler) canViewGroup(ctx context.Context, r *http.Request, groupCode string) bool {
	if authz.IsStaff(r) {
		return true
	}
	code, err := h.viewerGroup(ctx, r)
	return err == nil && code != "" && code == groupCode
}
