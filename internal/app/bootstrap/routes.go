// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/dalemusser/temahub/internal/app/features/authgoogle"
	errorsfeature "github.com/dalemusser/temahub/internal/app/features/errors"
	galleryfeature "github.com/dalemusser/temahub/internal/app/features/gallery"
	groupsfeature "github.com/dalemusser/temahub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/temahub/internal/app/features/health"
	homefeature "github.com/dalemusser/temahub/internal/app/features/home"
	loginfeature "github.com/dalemusser/temahub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/temahub/internal/app/features/logout"
	reviewsfeature "github.com/dalemusser/temahub/internal/app/features/reviews"
	rosterfeature "github.com/dalemusser/temahub/internal/app/features/roster"
	settingsfeature "github.com/dalemusser/temahub/internal/app/features/settings"
	_ "github.com/dalemusser/temahub/internal/app/features/shared/views"
	submissionsfeature "github.com/dalemusser/temahub/internal/app/features/submissions"
	themesfeature "github.com/dalemusser/temahub/internal/app/features/themes"
	membershipstore "github.com/dalemusser/temahub/internal/app/store/memberships"
	oauthstatestore "github.com/dalemusser/temahub/internal/app/store/oauthstate"
	policystore "github.com/dalemusser/temahub/internal/app/store/policy"
	themestore "github.com/dalemusser/temahub/internal/app/store/themes"
	userstore "github.com/dalemusser/temahub/internal/app/store/users"
	"github.com/dalemusser/temahub/internal/app/system/auth"
	"github.com/dalemusser/temahub/internal/app/system/reservation"
	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// TemaHub initializes the template engine, applies session and CSRF
// middleware, builds the reservation engine, and mounts feature routers
// for all application areas: home, login, groups, themes, submissions,
// reviews, gallery, roster, and settings.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. This ensures role changes, disabled accounts, and
	// profile updates take effect immediately.
	sessionMgr.SetUserFetcher(&userstore.Fetcher{Store: userstore.New(db), Log: logger})

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	// Policy store seeded from config; admin saves override the seed.
	policy := policystore.New(db, models.CoursePolicy{
		ReserveCutoff:           appCfg.ReserveCutoff,
		MinMembersBefore:        appCfg.MinMembersBefore,
		MinMembersAfter:         appCfg.MinMembersAfter,
		PublishMinScore:         appCfg.PublishMinScore,
		EnforceSingleMembership: appCfg.EnforceSingleMembership,
	})

	// The reservation engine enforces the membership minimum and drives
	// the atomic reserve/release operations.
	engine := reservation.New(themestore.New(db), membershipstore.New(db), policy, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for all form posts. Templates emit the token via
	// the shared view data.
	r.Use(csrf.Protect([]byte(appCfg.SessionKey), csrf.Secure(secure), csrf.Path("/")))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(db, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	galleryHandler := galleryfeature.NewHandler(db, errLog, logger)
	r.Mount("/gallery", galleryfeature.Routes(galleryHandler))

	// Authentication
	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""
	loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, logger, googleEnabled)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	googleHandler := authgooglefeature.NewHandler(db, sessionMgr, errLog, oauthstatestore.New(db),
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Group registry
	groupsHandler := groupsfeature.NewHandler(db, errLog, policy, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	// Theme catalog and reservation
	themesHandler := themesfeature.NewHandler(db, engine, errLog, logger)
	r.Mount("/themes", themesfeature.Routes(themesHandler, sessionMgr))

	// Submission ledger
	submissionsHandler := submissionsfeature.NewHandler(db, deps.Storage, deps.Mirror, errLog, logger)
	r.Mount("/submissions", submissionsfeature.Routes(submissionsHandler, sessionMgr))

	// Review queue and publication
	reviewsHandler := reviewsfeature.NewHandler(db, policy, errLog, logger)
	r.Mount("/reviews", reviewsfeature.Routes(reviewsHandler, sessionMgr))

	// Roster import
	rosterHandler := rosterfeature.NewHandler(db, errLog, logger)
	r.Mount("/roster", rosterfeature.Routes(rosterHandler, sessionMgr))

	// Course policy settings
	settingsHandler := settingsfeature.NewHandler(db, policy, errLog, logger)
	r.Mount("/settings", settingsfeature.Routes(settingsHandler, sessionMgr))

	return r, nil
}
