// internal/app/system/status/status.go
package status

// Canonical account status values stored on users.
const (
	Active   = "active"
	Disabled = "disabled"
)
