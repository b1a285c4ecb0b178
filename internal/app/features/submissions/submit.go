// internal/app/features/submissions/submit.go
package submissions

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	membershipstore "github.com/dalemusser/temahub/internal/app/store/memberships"
	studentstore "github.com/dalemusser/temahub/internal/app/store/students"
	submissionstore "github.com/dalemusser/temahub/internal/app/store/submissions"
	themestore "github.com/dalemusser/temahub/internal/app/store/themes"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/formutil"
	"github.com/dalemusser/temahub/internal/app/system/inputval"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Uploads larger than this are rejected at parse time.
const maxUploadSize = 50 << 20

type submitFormData struct {
	formutil.Base
	GroupCode  string
	ThemeTitle string
	VideoLink  string
}

// ServeSubmitForm handles GET /submissions/new. The form only opens for
// students whose group currently holds a reserved theme.
func (h *Handler) ServeSubmitForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	groupCode, err := h.viewerGroup(ctx, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "group resolution failed", err, "A database error occurred.", "/")
		return
	}
	if groupCode == "" {
		uierrors.RenderForbidden(w, r, "You need a group before submitting work.", "/groups/mine")
		return
	}

	th, err := themestore.New(h.DB).ReservedByGroup(ctx, groupCode)
	if errors.Is(err, themestore.ErrNotFound) {
		uierrors.RenderForbidden(w, r, "Your group has no reserved theme. Reserve one before submitting.", "/themes")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "reserved theme lookup failed", err, "A database error occurred.", "/")
		return
	}

	data := submitFormData{
		GroupCode:  groupCode,
		ThemeTitle: th.Title,
	}
	formutil.SetBase(&data.Base, r, h.DB, "Submit Work", "/submissions/history")
	templates.Render(w, r, "submission_new", data)
}

// HandleSubmit handles POST /submissions. Submitting requires an active
// reservation and consent to publication; each accepted submission is a
// new ledger row, never an edit of an earlier one.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	_, uname, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "The upload could not be read. Files may be too large.", "/submissions/new")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	groupCode, err := h.viewerGroup(ctx, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "group resolution failed", err, "A database error occurred.", "/")
		return
	}
	if groupCode == "" {
		uierrors.RenderForbidden(w, r, "You need a group before submitting work.", "/groups/mine")
		return
	}

	th, err := themestore.New(h.DB).ReservedByGroup(ctx, groupCode)
	if errors.Is(err, themestore.ErrNotFound) {
		h.ErrLog.LogBadRequest(w, r, "submit without reserved theme", err,
			"Your group has no reserved theme. Reserve one before submitting.", "/themes")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "reserved theme lookup failed", err, "A database error occurred.", "/")
		return
	}

	videoLink := strings.TrimSpace(r.FormValue("video_link"))

	data := submitFormData{
		GroupCode:  groupCode,
		ThemeTitle: th.Title,
		VideoLink:  videoLink,
	}
	formutil.SetBase(&data.Base, r, h.DB, "Submit Work", "/submissions/history")

	reRender := func(msg string) {
		data.SetError(msg)
		w.WriteHeader(http.StatusUnprocessableEntity)
		templates.Render(w, r, "submission_new", data)
	}

	if r.FormValue("consent") == "" {
		reRender("Consent to publication is required before submitting.")
		return
	}
	if videoLink != "" && !inputval.IsValidHTTPURL(videoLink) {
		reRender("The video link must be a valid http or https URL.")
		return
	}

	type artifact struct {
		field string
		dest  *string
	}
	sub := &models.Submission{
		GroupCode:     groupCode,
		ThemeTitle:    th.Title,
		VideoLink:     videoLink,
		Consent:       true,
		SubmittedBy:   uname,
		SubmittedByID: &uid,
	}
	artifacts := []artifact{
		{"report", &sub.ReportPath},
		{"slides", &sub.SlidesPath},
		{"bundle", &sub.BundlePath},
	}

	type stored struct {
		path string
		data []byte
	}
	var uploaded []stored
	cleanup := func() {
		for _, u := range uploaded {
			if derr := h.Storage.Delete(ctx, u.path); derr != nil {
				h.Log.Warn("orphaned upload cleanup failed",
					zap.String("path", u.path), zap.Error(derr))
			}
		}
	}

	anyFile := false
	for _, a := range artifacts {
		content, filename, contentType, err := readUpload(r, a.field)
		if err != nil {
			cleanup()
			h.ErrLog.LogBadRequest(w, r, "read upload failed", err, "The uploaded file could not be read.", "/submissions/new")
			return
		}
		if content == nil {
			continue
		}
		path, err := storeArtifact(ctx, h.Storage, groupCode, filename, content, contentType)
		if err != nil {
			cleanup()
			h.ErrLog.LogServerError(w, r, "artifact store failed", err, "Storing the uploaded file failed.", "/submissions/new")
			return
		}
		*a.dest = path
		uploaded = append(uploaded, stored{path: path, data: content})
		anyFile = true
	}

	if !anyFile && videoLink == "" {
		reRender("Attach at least one file or provide a video link.")
		return
	}

	if err := submissionstore.New(h.DB).Insert(ctx, sub); err != nil {
		cleanup()
		h.ErrLog.LogServerError(w, r, "submission insert failed", err, "A database error occurred.", "/submissions/new")
		return
	}

	for _, u := range uploaded {
		h.Mirror.Enqueue(u.path, u.data)
	}

	h.Log.Info("submission recorded",
		zap.String("group", groupCode),
		zap.String("theme", th.Title),
		zap.String("submitted_by", uname),
		zap.Int("files", len(uploaded)))
	http.Redirect(w, r, "/submissions/history", http.StatusSeeOther)
}

// readUpload returns the named file's bytes, or nil content when the
// field was left empty.
func readUpload(r *http.Request, field string) (content []byte, filename, contentType string, err error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", "", nil
	}
	if err != nil {
		return nil, "", "", err
	}
	defer file.Close()

	content, err = io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		return nil, "", "", err
	}
	return content, header.Filename, header.Header.Get("Content-Type"), nil
}

// viewerGroup resolves the signed-in student's group code, or "" when the
// viewer is not a student or has no group.
func (h *Handler) viewerGroup(ctx context.Context, r *http.Request) (string, error) {
	ra := authz.StudentRA(r)
	if ra == "" {
		return "", nil
	}

	st, err := studentstore.New(h.DB).GetByRA(ctx, ra)
	if errors.Is(err, studentstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return membershipstore.New(h.DB).ActiveGroupForStudent(ctx, st.ID)
}
