// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/temahub/internal/app/features/errors"
	userstore "github.com/dalemusser/temahub/internal/app/store/users"
	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/dalemusser/temahub/internal/app/system/normalize"
	"github.com/dalemusser/temahub/internal/app/system/ratelimit"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB            *mongo.Database
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	GoogleEnabled bool
	Limiter       *ratelimit.LoginLimiter
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger, googleEnabled bool) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		SessionMgr:    sm,
		ErrLog:        errLog,
		GoogleEnabled: googleEnabled,
		Limiter:       ratelimit.NewLoginLimiter(),
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	LoginID       string
	ReturnURL     string
	GoogleEnabled bool
}

// oauthErrorMessages maps the ?error= codes the Google callback
// redirects with to what the sign-in page shows.
var oauthErrorMessages = map[string]string{
	"google_not_configured": "Google sign-in is not available.",
	"google_denied":         "Google sign-in was cancelled.",
	"invalid_state":         "The sign-in attempt expired. Try again.",
	"invalid_code":          "Google sign-in failed. Try again.",
	"token_exchange":        "Google sign-in failed. Try again.",
	"user_info":             "Google sign-in failed. Try again.",
	"no_account":            "No account here matches that Google address.",
	"account_disabled":      "That account has been disabled.",
	"internal":              "Something went wrong. Try again.",
}

// ServeLoginForm handles GET /login.
func (h *Handler) ServeLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, signed := auth.CurrentUser(r); signed {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, h.DB, "Sign in", "/"),
		Error:         oauthErrorMessages[r.URL.Query().Get("error")],
		ReturnURL:     urlutil.SafeReturn(r.URL.Query().Get("return"), "", "/"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

// HandleLogin handles POST /login with a login id and password.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	loginID := normalize.Email(r.FormValue("login_id"))
	password := r.FormValue("password")
	returnURL := urlutil.SafeReturn(r.FormValue("return"), "", "/")

	rerender := func(msg string) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		templates.Render(w, r, "login", loginFormData{
			BaseVM:        viewdata.NewBaseVM(r, h.DB, "Sign in", "/"),
			Error:         msg,
			LoginID:       loginID,
			ReturnURL:     returnURL,
			GoogleEnabled: h.GoogleEnabled,
		})
	}

	if loginID == "" || password == "" {
		rerender("Enter your login and password.")
		return
	}

	if allowed, msg := h.Limiter.Check(r, loginID); !allowed {
		h.Log.Warn("login rate limited",
			zap.String("login_id", loginID),
			zap.String("ip", ratelimit.ClientIP(r)))
		w.WriteHeader(http.StatusTooManyRequests)
		templates.Render(w, r, "login", loginFormData{
			BaseVM:        viewdata.NewBaseVM(r, h.DB, "Sign in", "/"),
			Error:         msg,
			LoginID:       loginID,
			ReturnURL:     returnURL,
			GoogleEnabled: h.GoogleEnabled,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := userstore.New(h.DB).Authenticate(ctx, loginID, password)
	if errors.Is(err, userstore.ErrBadCredentials) {
		h.Log.Info("login rejected", zap.String("login_id", loginID))
		rerender("Invalid login or password.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "login lookup failed", err, "A database error occurred.", "/login")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "session write failed", err, "Could not start your session.", "/login")
		return
	}

	h.Limiter.ResetEmail(loginID)
	h.Log.Info("login ok",
		zap.String("login_id", user.LoginID),
		zap.String("role", user.Role))
	http.Redirect(w, r, returnURL, http.StatusSeeOther)
}
