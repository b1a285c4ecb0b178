// internal/app/features/themes/import.go
package themes

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	themestore "github.com/dalemusser/temahub/internal/app/store/themes"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/formutil"
	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const maxImportUpload = 1 << 20 // catalog files are small text

type importData struct {
	formutil.Base
	Category string
	Result   *themestore.ImportResult
}

// ServeImportForm renders the catalog import page.
func (h *Handler) ServeImportForm(w http.ResponseWriter, r *http.Request) {
	if !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "You do not have access to import themes.", httpnav.ResolveBackURL(r, "/themes"))
		return
	}

	var data importData
	formutil.SetBase(&data.Base, r, h.DB, "Import Themes", "/themes")
	templates.Render(w, r, "theme_import", data)
}

// HandleImport handles POST /themes/import: one theme title per line,
// pasted into the textarea or uploaded as a text file. Import merges by
// title, so re-importing the same list is harmless.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "You do not have access to import themes.", httpnav.ResolveBackURL(r, "/themes"))
		return
	}

	if err := r.ParseMultipartForm(maxImportUpload); err != nil && err != http.ErrNotMultipart {
		h.ErrLog.LogBadRequest(w, r, "parse import form failed", err, "Invalid form data.", "/themes/import")
		return
	}

	category := normalize.Name(r.FormValue("category"))
	titles, err := h.collectTitles(r)
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "read import upload failed", err, "Could not read the uploaded file.", "/themes/import")
		return
	}

	reRender := func(msg string) {
		var data importData
		formutil.SetBase(&data.Base, r, h.DB, "Import Themes", "/themes")
		data.Category = category
		data.SetError(msg)
		templates.Render(w, r, "theme_import", data)
	}

	if len(titles) == 0 {
		reRender("Paste theme titles or upload a file with one title per line.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	result, err := themestore.New(h.DB).Import(ctx, titles, category)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "theme import failed", err, "A database error occurred.", "/themes/import")
		return
	}

	h.Log.Info("themes imported",
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped),
		zap.String("category", category))

	var data importData
	formutil.SetBase(&data.Base, r, h.DB, "Import Themes", "/themes")
	data.Category = category
	data.Result = &result
	templates.Render(w, r, "theme_import", data)
}

// collectTitles merges the textarea lines with an optional uploaded file.
func (h *Handler) collectTitles(r *http.Request) ([]string, error) {
	var titles []string

	for _, line := range strings.Split(r.FormValue("titles"), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			titles = append(titles, t)
		}
	}

	file, _, err := r.FormFile("file")
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return titles, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sc := bufio.NewScanner(io.LimitReader(file, maxImportUpload))
	for sc.Scan() {
		if t := strings.TrimSpace(sc.Text()); t != "" {
			titles = append(titles, t)
		}
	}
	return titles, sc.Err()
}
