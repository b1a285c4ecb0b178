// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/temahub/internal/app/system/authz"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/mongo"
)

const defaultSiteName = "TemaHub"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string
	UserName   string
	StudentRA  string
	Section    string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	CSRFToken string
}

// NewBaseVM creates a fully populated BaseVM for a page. db is accepted
// for symmetry with handlers that carry one; the base view model does not
// read it today.
func NewBaseVM(r *http.Request, db *mongo.Database, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	return BaseVM{
		SiteName:    defaultSiteName,
		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		StudentRA:   authz.StudentRA(r),
		Section:     authz.UserSection(r),
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.Token(r),
	}
}
