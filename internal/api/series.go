package api

import (
	"io"
	"net/http"

	"github.com/erazemk/zbirka/internal/archive"
	"github.com/erazemk/zbirka/internal/engine"
	"github.com/erazemk/zbirka/internal/imaging"
)

// SeriesHandler handles series endpoints.
type SeriesHandler struct {
	Archive *archive.Archive
}

type createSeriesRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Date         string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Tags         string `json:"tags" validate:"max=500"`
	UseTemplates bool   `json:"use_templates"`
}

type moveSeriesRequest struct {
	Before string `json:"before" validate:"required"`
}

// List handles GET /api/series.
func (h *SeriesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jsonResponse(w, http.StatusOK, h.Archive.List(engine.Filter{
		Term: q.Get("q"),
		From: q.Get("from"),
		To:   q.Get("to"),
	}))
}

// Create handles POST /api/series.
func (h *SeriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSeriesRequest
	if !decodeValid(w, r, &req) {
		return
	}

	s, err := h.Archive.CreateSeries(r.Context(), archive.NewSeries{
		Title:        req.Title,
		Date:         req.Date,
		Tags:         req.Tags,
		UseTemplates: req.UseTemplates,
	})
	if err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, s)
}

// Get handles GET /api/series/{id}.
func (h *SeriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Archive.Series(r.PathValue("id"))
	if err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"series":   s,
		"complete": engine.SeriesComplete(s),
	})
}

// Delete handles DELETE /api/series/{id}.
func (h *SeriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Archive.DeleteSeries(r.Context(), r.PathValue("id")); err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "series deleted"})
}

// ToggleFavorite handles PUT /api/series/{id}/favorite.
func (h *SeriesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	fav, err := h.Archive.ToggleFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"favorite": fav})
}

// Move handles POST /api/series/{id}/move.
func (h *SeriesHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req moveSeriesRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.Archive.MoveSeries(r.Context(), r.PathValue("id"), req.Before); err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, h.Archive.Snapshot().Order)
}

// UploadCover handles PUT /api/series/{id}/cover.
func (h *SeriesHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read image")
		return
	}

	cover, err := h.Archive.SetCover(r.Context(), r.PathValue("id"), data)
	if err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"width": cover.Width, "height": cover.Height})
}

// GetCover handles GET /api/series/{id}/cover.
func (h *SeriesHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	data, err := h.Archive.Cover(r.Context(), r.PathValue("id"))
	if err != nil {
		commandError(w, r, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no cover")
		return
	}

	w.Header().Set("Content-Type", imaging.CoverMIME)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// Missing handles GET /api/missing. With ?character= it returns only the
// entries of that character.
func (h *SeriesHandler) Missing(w http.ResponseWriter, r *http.Request) {
	report := h.Archive.MissingReport()
	if c := r.URL.Query().Get("character"); c != "" {
		entries := report.For(c)
		if entries == nil {
			entries = []engine.MissingEntry{}
		}
		jsonResponse(w, http.StatusOK, entries)
		return
	}
	jsonResponse(w, http.StatusOK, report)
}
