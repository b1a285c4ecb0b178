// internal/app/features/gallery/gallery.go
package gallery

import (
	"context"
	"encoding/json"
	"net/http"

	galleryquery "github.com/dalemusser/temahub/internal/app/store/queries/gallery"
	"github.com/dalemusser/temahub/internal/app/system/timeouts"
	"github.com/dalemusser/temahub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type galleryData struct {
	viewdata.BaseVM
	Entries []galleryquery.Entry
}

// ServePage handles GET /gallery, the public showcase of published
// projects.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := galleryquery.ListPublished(ctx, h.DB)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "gallery query failed", err, "A database error occurred.", "/")
		return
	}

	data := galleryData{
		BaseVM:  viewdata.NewBaseVM(r, h.DB, "Project Gallery", "/"),
		Entries: entries,
	}
	templates.Render(w, r, "gallery", data)
}

// feedPayload is the shape of /gallery/feed.json.
type feedPayload struct {
	Count   int                  `json:"count"`
	Entries []galleryquery.Entry `json:"entries"`
}

// ServeFeed handles GET /gallery/feed.json, the machine-readable version
// of the gallery for external consumers.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	entries, err := galleryquery.ListPublished(ctx, h.DB)
	if err != nil {
		h.Log.Error("gallery feed query failed", zap.Error(err))
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []galleryquery.Entry{}
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=60")
	if err := json.NewEncoder(w).Encode(feedPayload{
		Count:   len(entries),
		Entries: entries,
	}); err != nil {
		h.Log.Error("gallery feed encode failed", zap.Error(err))
	}
}
