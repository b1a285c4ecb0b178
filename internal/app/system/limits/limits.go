// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxSettingsFormSize is the maximum size for the policy settings form.
	MaxSettingsFormSize = 1 << 20 // 1 MB

	// MaxReviewFormSize is the maximum size for review form submissions.
	// Comments are sanitized after parsing; the limit bounds the raw body.
	MaxReviewFormSize = 1 << 20 // 1 MB
)
