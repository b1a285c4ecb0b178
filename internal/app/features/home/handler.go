package home

import (
	"context"
	"net/http"

	themestore "github.com/dalemusser/temahub/internal/app/store/themes"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	DB  *mongo.Database
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger}
}

type homeData struct {
	viewdata.BaseVM
	FreeThemes     int64
	ReservedThemes int64
}

// ServeRoot handles GET /, the landing page with the catalog headline
// numbers. Count failures degrade to zeros rather than an error page.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := homeData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Welcome", "/"),
	}

	free, reserved, err := themestore.New(h.DB).Counts(ctx)
	if err != nil {
		h.Log.Warn("home: theme counts failed", zap.Error(err))
	} else {
		data.FreeThemes = free
		data.ReservedThemes = reserved
	}

	templates.Render(w, r, "home", data)
}
