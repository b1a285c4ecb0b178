// internal/app/features/groups/list.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/temahub/internal/app/store/queries/groupboard"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

type groupListData struct {
	viewdata.BaseVM
	Section  string // "" means all sections
	Groups   []groupboard.Item
	CanEdit  bool
	Sections []string
}

// ServeGroupsList handles GET /groups. Staff see every section and can
// filter; students see only their own section.
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	section := normalize.Section(r.URL.Query().Get("section"))
	if authz.IsStudent(r) {
		section = authz.UserSection(r)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	items, err := groupboard.List(ctx, h.DB, section)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "group board query failed", err, "A database error occurred.", "/")
		return
	}

	data := groupListData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Groups", "/"),
		Section:  section,
		Groups:   items,
		CanEdit:  authz.IsStaff(r),
		Sections: sectionsOf(items),
	}
	templates.Render(w, r, "group_list", data)
}

// sectionsOf collects the distinct sections present, in board order.
func sectionsOf(items []groupboard.Item) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		if !seen[it.Section] {
			seen[it.Section] = true
			out = append(out, it.Section)
		}
	}
	return out
}
