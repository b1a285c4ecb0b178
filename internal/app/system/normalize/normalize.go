// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name but preserves its case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// RA uppercases and trims a registration number ("ra12345678" → "RA12345678").
func RA(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Section uppercases and trims a section code ("ma6" → "MA6").
func Section(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// GroupCode uppercases and trims a group code ("ma6g1" → "MA6G1").
func GroupCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status string.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AuthMethod lowercases and trims an auth method string.
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query parameter value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
