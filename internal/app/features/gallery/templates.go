// internal/app/features/gallery/templates.go
package gallery

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "gallery",
		FS:       templateFS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
