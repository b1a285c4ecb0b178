// internal/app/features/roster/rosterpage.go
package roster

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	studentstore "github.com/dalemusser/temahub/internal/app/store/students"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/app/system/viewdata"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
)

type sectionCount struct {
	Section string
	Count   int64
}

type rosterPageData struct {
	viewdata.BaseVM
	Sections []sectionCount
	Section  string
	Students []models.Student
	Added    int
	Updated  int
}

// ServeRosterPage handles GET /roster: active students by section, the
// upload form, and the result flash after an import.
func (h *Handler) ServeRosterPage(w http.ResponseWriter, r *http.Request) {
	if !authz.IsStaff(r) {
		uierrors.RenderForbidden(w, r, "Only instructors and admins manage the roster.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := studentstore.New(h.DB)
	counts, err := store.CountBySection(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "section counts failed", err, "A database error occurred.", "/")
		return
	}

	data := rosterPageData{
		BaseVM:  viewdata.NewBaseVM(r, h.DB, "Roster", "/"),
		Section: normalize.Section(query.Get(r, "section")),
	}
	for section, n := range counts {
		data.Sections = append(data.Sections, sectionCount{Section: section, Count: n})
	}
	sort.Slice(data.Sections, func(i, j int) bool {
		return data.Sections[i].Section < data.Sections[j].Section
	})

	if data.Section != "" {
		students, err := store.ListBySection(ctx, data.Section)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "student list failed", err, "A database error occurred.", "/")
			return
		}
		data.Students = students
	}

	data.Added, _ = strconv.Atoi(query.Get(r, "added"))
	data.Updated, _ = strconv.Atoi(query.Get(r, "updated"))

	templates.Render(w, r, "roster", data)
}
