// internal/app/features/errors/render.go
package errors

import (
	"net/http"

	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	Title      string
	IsLoggedIn bool
	Role       string
	UserName   string
	Message    string
	BackURL    string
}

func userCtx(r *http.Request) (role, name string, signedIn bool) {
	u, signed := auth.CurrentUser(r)
	if signed && u != nil {
		return u.Role, u.Name, true
	}
	return "", "", false
}

// RenderUnauthorized shows a "sign in required" page.
// If backURL is empty, it will default to /login.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	role, name, signed := userCtx(r)
	if backURL == "" {
		backURL = "/login"
	}

	w.WriteHeader(http.StatusUnauthorized)
	templates.Render(w, r, "error_page", pageData{
		Title:      "Sign in required",
		IsLoggedIn: signed,
		Role:       role,
		UserName:   name,
		Message:    "Please sign in to continue.",
		BackURL:    backURL,
	})
}

// RenderForbidden shows an access error page with a message.
// If backURL is empty, it resolves a safe back URL with a default fallback.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	role, name, signed := userCtx(r)
	if backURL == "" {
		backURL = httpnav.ResolveBackURL(r, "/")
	}

	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_page", pageData{
		Title:      "Access denied",
		IsLoggedIn: signed,
		Role:       role,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	})
}

// RenderNotFound shows a "not found" page.
func RenderNotFound(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	role, name, signed := userCtx(r)
	if backURL == "" {
		backURL = "/"
	}
	if msg == "" {
		msg = "The page you are looking for does not exist."
	}

	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_page", pageData{
		Title:      "Not found",
		IsLoggedIn: signed,
		Role:       role,
		UserName:   name,
		Message:    msg,
		BackURL:    backURL,
	})
}
