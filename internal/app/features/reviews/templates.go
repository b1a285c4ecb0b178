// internal/app/features/reviews/templates.go
package reviews

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "reviews",
		FS:       templateFS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
