// Package formutil provides helpers for form pages that re-render with
// validation errors.
//
// Form data structs embed Base, which carries the shared page chrome
// plus an Error slot:
//
//	type newGroupData struct {
//		formutil.Base
//		Section string
//	}
//
//	var data newGroupData
//	formutil.SetBase(&data.Base, r, h.DB, "Add Group", "/groups")
//	data.SetError("Section is required.")
//	templates.Render(w, r, "group_new", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/temahub/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/mongo"
)

// Base is the common field set for form pages.
type Base struct {
	viewdata.BaseVM
	Error template.HTML
}

// SetBase populates the shared page fields from the request context.
func SetBase(b *Base, r *http.Request, db *mongo.Database, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, db, title, backDefault)
}

// SetError records a message to show above the form.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(msg)
}
