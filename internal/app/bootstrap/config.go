// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dalemusser/temahub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for TemaHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: TEMAHUB_MONGO_URI, TEMAHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "temahub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "temahub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Submission artifact storage
	{Name: "storage_local_path", Default: "./uploads/submissions", Desc: "Local storage path for submission artifacts"},
	{Name: "storage_local_url", Default: "/files/submissions", Desc: "URL prefix for serving stored artifacts"},

	// Mirror endpoint for published artifacts
	{Name: "mirror_base_url", Default: "", Desc: "Base URL of the artifact mirror (blank disables mirroring)"},

	// Base URL for OAuth redirect URIs
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL of this deployment"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Course policy seed values. A saved course_policy document overrides
	// these; they only matter until an admin saves the settings form once.
	{Name: "reserve_cutoff", Default: "", Desc: "Reservation cutoff instant, RFC 3339 (blank means the relaxed minimum always applies)"},
	{Name: "min_members_before", Default: models.DefaultMinMembersBefore, Desc: "Minimum group size to reserve, up to and including the cutoff"},
	{Name: "min_members_after", Default: models.DefaultMinMembersAfter, Desc: "Minimum group size to reserve after the cutoff"},
	{Name: "publish_min_score", Default: "7.0", Desc: "Mean score threshold for publish-by-score"},
	{Name: "enforce_single_membership", Default: false, Desc: "Reject adding a student who already belongs to another group"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, TEMAHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TEMAHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		// Artifact storage
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// Mirror
		MirrorBaseURL: appValues.String("mirror_base_url"),

		// Base URL
		BaseURL: appValues.String("base_url"),

		// Google OAuth
		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		// Course policy seed
		MinMembersBefore:        appValues.Int("min_members_before"),
		MinMembersAfter:         appValues.Int("min_members_after"),
		EnforceSingleMembership: appValues.Bool("enforce_single_membership"),
	}

	// The cutoff and the score threshold arrive as strings: the cutoff
	// because an unset instant has no useful numeric default, the score
	// because app config values carry no float accessor.
	if raw := appValues.String("reserve_cutoff"); raw != "" {
		cutoff, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, AppConfig{}, fmt.Errorf("invalid reserve_cutoff %q: %w", raw, err)
		}
		appCfg.ReserveCutoff = cutoff
	}
	if raw := appValues.String("publish_min_score"); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, AppConfig{}, fmt.Errorf("invalid publish_min_score %q: %w", raw, err)
		}
		appCfg.PublishMinScore = score
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// TemaHub validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and rejects policy seed
// values the settings form would also reject.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.MinMembersBefore < 1 || appCfg.MinMembersAfter < 1 {
		return fmt.Errorf("membership minimums must be at least 1 (before=%d, after=%d)",
			appCfg.MinMembersBefore, appCfg.MinMembersAfter)
	}
	if appCfg.PublishMinScore < 0 || appCfg.PublishMinScore > 10 {
		return fmt.Errorf("publish_min_score must be between 0 and 10, got %g", appCfg.PublishMinScore)
	}

	if appCfg.GoogleClientID == "" && appCfg.GoogleClientSecret != "" {
		return fmt.Errorf("google_client_secret is set but google_client_id is blank")
	}

	return nil
}
