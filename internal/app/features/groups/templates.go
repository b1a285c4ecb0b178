// internal/app/features/groups/templates.go
package groups

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "groups",
		FS:       templateFS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
