// internal/app/features/themes/list.go
package themes

import (
	"context"
	"errors"
	"net/http"

	membershipstore "github.com/dalemusser/temahub/internal/app/store/memberships"
	studentstore "github.com/dalemusser/temahub/internal/app/store/students"
	themestore "github.com/dalemusser/temahub/internal/app/store/themes"
	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/app/system/viewdata"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

type themeListData struct {
	viewdata.BaseVM
	Themes     []models.Theme
	FreeOnly   bool
	MyGroup    string // the viewer's group code, "" when none
	GroupTheme string // the theme that group already holds, "" when none
	IsStaff    bool
}

// ServeThemesList handles GET /themes. ?free=1 narrows to unreserved
// themes. Students who belong to a group get reserve/release controls.
func (h *Handler) ServeThemesList(w http.ResponseWriter, r *http.Request) {
	freeOnly := r.URL.Query().Get("free") == "1"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	store := themestore.New(h.DB)
	var (
		list []models.Theme
		err  error
	)
	if freeOnly {
		list, err = store.ListFree(ctx)
	} else {
		list, err = store.ListAll(ctx)
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "theme list failed", err, "A database error occurred.", "/")
		return
	}

	data := themeListData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Themes", "/"),
		Themes:   list,
		FreeOnly: freeOnly,
		IsStaff:  authz.IsStaff(r),
	}

	if code, err := h.viewerGroup(ctx, r); err == nil && code != "" {
		data.MyGroup = code
		if held, err := store.ReservedByGroup(ctx, code); err == nil && held != nil {
			data.GroupTheme = held.Title
		}
	}

	templates.Render(w, r, "theme_list", data)
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
