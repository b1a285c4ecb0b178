// internal/app/features/roster/import.go
package roster

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	studentstore "github.com/dalemusser/temahub/internal/app/store/students"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/formutil"
	"github.com/dalemusser/temahub/internal/app/system/inputval"
	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/app/system/rosterimport"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type previewData struct {
	formutil.Base
	Rows     []rosterimport.Row
	Problems []string
	Section  string
}

// HandlePreview handles POST /roster/preview: parse the uploaded file
// and show what an import would do. Nothing is written yet; the preview
// form carries the parsed rows into the confirm step.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	if !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "Only instructors and admins manage the roster.", "/")
		return
	}
	if err := r.ParseMultipartForm(rosterimport.MaxUploadSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "The upload could not be read.", "/roster")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "missing roster file", err, "Choose a roster file to upload.", "/roster")
		return
	}
	defer file.Close()

	fallback := normalize.Section(r.FormValue("section"))

	var result *rosterimport.Result
	if strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		result, err = rosterimport.ParseCSV(file, fallback)
	} else {
		result, err = rosterimport.ParseText(file, fallback)
	}
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "roster parse failed", err, "The roster file could not be parsed.", "/roster")
		return
	}
	if len(result.Rows) == 0 && !result.HasProblems() {
		h.ErrLog.LogBadRequest(w, r, "empty roster file", nil, "No roster rows were found in the file.", "/roster")
		return
	}

	data := previewData{
		Rows:     result.Rows,
		Problems: result.Problems,
		Section:  result.Section,
	}
	formutil.SetBase(&data.Base, r, h.DB, "Roster Preview", "/roster")
	templates.Render(w, r, "roster_preview", data)
}

// HandleImport handles POST /roster/import, the confirm step. The rows
// come back as parallel form arrays from the preview page.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "Only instructors and admins manage the roster.", "/")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/roster")
		return
	}

	ras := r.Form["ra"]
	names := r.Form["name"]
	emails := r.Form["email"]
	sections := r.Form["section"]
	if len(ras) == 0 || len(ras) != len(names) || len(ras) != len(emails) || len(ras) != len(sections) {
		h.ErrLog.LogBadRequest(w, r, "malformed roster confirm", nil, "The preview data was incomplete. Upload the file again.", "/roster")
		return
	}
	if len(ras) > rosterimport.MaxRows {
		h.ErrLog.LogBadRequest(w, r, "roster confirm too large", nil, "Too many rows in one import.", "/roster")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	store := studentstore.New(h.DB)
	added, updated := 0, 0
	for i := range ras {
		ra := normalize.RA(ras[i])
		name := normalize.Name(names[i])
		section := normalize.Section(sections[i])
		if !inputval.IsValidRA(ra) || name == "" {
			continue
		}
		created, err := store.UpsertByRA(ctx, ra, name, normalize.Email(emails[i]), section)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "roster upsert failed", err, "A database error occurred mid-import.", "/roster")
			return
		}
		if created {
			added++
		} else {
			updated++
		}
	}

	h.Log.Info("roster imported",
		zap.Int("added", added),
		zap.Int("updated", updated),
		zap.Int("rows", len(ras)))
	http.Redirect(w, r, fmt.Sprintf("/roster?added=%d&updated=%d", added, updated), http.StatusSeeOther)
}
