// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging, CORS, and request limits. AppConfig is where
// everything specific to TemaHub lives: the MongoDB connection, session
// cookies, submission storage, the mirror endpoint, Google OAuth, and
// the seed values for the course policy.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: temahub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Submission artifact storage (local disk)
	StorageLocalPath string // Local storage path (e.g., "./uploads/submissions")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files/submissions")

	// Mirror endpoint for published artifacts (blank disables mirroring)
	MirrorBaseURL string

	// Base URL of this deployment, used for OAuth redirect URIs
	BaseURL string // e.g., "https://temahub.example.edu" or "http://localhost:3000"

	// Google OAuth configuration (blank disables Google sign-in)
	GoogleClientID     string
	GoogleClientSecret string

	// Course policy seed values. These are the defaults handed to the
	// policy store; a saved course_policy document overrides them.
	ReserveCutoff           time.Time // zero means the relaxed minimum applies from the start
	MinMembersBefore        int
	MinMembersAfter         int
	PublishMinScore         float64
	EnforceSingleMembership bool
}
