package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/erazemk/zbirka/internal/archive"
)

// maxSnapshotBytes bounds an uploaded backup document.
const maxSnapshotBytes = 32 << 20

// BackupHandler handles snapshot export and import.
type BackupHandler struct {
	Archive *archive.Archive
}

// Export handles GET /api/export.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Archive.Export()
	if err != nil {
		commandError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="backup.json"`)
	w.Write(doc)
}

// Import handles POST /api/import. The body is a backup document; the
// archive is replaced only when the whole document is valid.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSnapshotBytes)
	doc, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, http.StatusRequestEntityTooLarge, "backup too large")
		return
	}

	if err := h.Archive.Import(r.Context(), doc); err != nil {
		commandError(w, r, err)
		return
	}

	snap := h.Archive.Snapshot()
	slog.Info("backup imported", "series", len(snap.Series), "rosters", len(snap.Rosters))
	jsonResponse(w, http.StatusOK, map[string]int{"series": len(snap.Series)})
}
