package api

import (
	"net/http"

	"github.com/erazemk/zbirka/internal/archive"
)

// NewRouter creates the API router with all endpoints registered. Every
// /api route requires a bearer token signed with secret; /metrics is open.
func NewRouter(a *archive.Archive, secret string) http.Handler {
	mux := http.NewServeMux()

	seriesHandler := &SeriesHandler{Archive: a}
	itemsHandler := &ItemsHandler{Archive: a}
	settingsHandler := &SettingsHandler{Archive: a}
	backupHandler := &BackupHandler{Archive: a}

	authMW := AuthMiddleware(secret)
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, authMW(fn))
	}

	// Series.
	handle("GET /api/series", seriesHandler.List)
	handle("POST /api/series", seriesHandler.Create)
	handle("GET /api/series/{id}", seriesHandler.Get)
	handle("DELETE /api/series/{id}", seriesHandler.Delete)
	handle("PUT /api/series/{id}/favorite", seriesHandler.ToggleFavorite)
	handle("POST /api/series/{id}/move", seriesHandler.Move)
	handle("PUT /api/series/{id}/cover", seriesHandler.UploadCover)
	handle("GET /api/series/{id}/cover", seriesHandler.GetCover)
	handle("GET /api/missing", seriesHandler.Missing)

	// Items.
	handle("POST /api/series/{id}/items", itemsHandler.Create)
	handle("DELETE /api/series/{id}/items", itemsHandler.DeleteAll)
	handle("PUT /api/series/{id}/items/{idx}", itemsHandler.Update)
	handle("DELETE /api/series/{id}/items/{idx}", itemsHandler.Delete)
	handle("POST /api/series/{id}/items/{idx}/duplicate", itemsHandler.Duplicate)
	handle("PUT /api/series/{id}/items/{idx}/quantity", itemsHandler.SetQuantity)
	handle("POST /api/series/{id}/items/{idx}/adjust", itemsHandler.Adjust)
	handle("POST /api/series/{id}/items/{idx}/infinite", itemsHandler.ToggleInfinite)
	handle("PUT /api/series/{id}/items/{idx}/targets", itemsHandler.SetTargets)
	handle("PUT /api/series/{id}/items/{idx}/excluded", itemsHandler.SetExcluded)
	handle("POST /api/series/{id}/items/{idx}/increment", itemsHandler.IncrementAll)
	handle("POST /api/series/{id}/items/{idx}/reset", itemsHandler.Reset)
	handle("GET /api/series/{id}/items/{idx}/trade", itemsHandler.Trade)
	handle("GET /api/series/{id}/items/{idx}/summary", itemsHandler.Summary)

	// Settings and drafts.
	handle("GET /api/settings", settingsHandler.Get)
	handle("PUT /api/settings", settingsHandler.Update)
	handle("PUT /api/settings/sort", settingsHandler.SetSort)
	handle("GET /api/drafts", settingsHandler.Draft)

	// Backups.
	handle("GET /api/export", backupHandler.Export)
	handle("POST /api/import", backupHandler.Import)

	mux.Handle("GET /metrics", MetricsHandler(a))

	return mux
}
