package api

import (
	"net/http"

	"github.com/erazemk/zbirka/internal/archive"
	"github.com/erazemk/zbirka/internal/model"
)

// ItemsHandler handles item endpoints of a series.
type ItemsHandler struct {
	Archive *archive.Archive
}

type itemRequest struct {
	Name    string                 `json:"type" validate:"required,max=100"`
	Roster  string                 `json:"charSetName" validate:"max=100"`
	Targets []string               `json:"targets" validate:"dive,required"`
	Stocks  map[string]model.Stock `json:"stocks" validate:"dive,keys,required,endkeys"`
	Status  model.Status           `json:"status"`
}

type quantityRequest struct {
	Character string `json:"character" validate:"required"`
	Field     string `json:"field" validate:"oneof=own trade"`
	Value     int    `json:"value"`
}

type adjustRequest struct {
	Character string `json:"character" validate:"required"`
	Field     string `json:"field" validate:"oneof=own trade"`
	Delta     int    `json:"delta" validate:"ne=0"`
}

type characterRequest struct {
	Character string `json:"character" validate:"required"`
}

type targetsRequest struct {
	Targets []string `json:"targets" validate:"dive,required"`
}

type excludedRequest struct {
	Excluded bool `json:"excluded"`
}

type transitionResponse struct {
	archive.Transition
	Changed bool `json:"changed"`
}

func (req itemRequest) draft() model.Item {
	it := model.NewItem(req.Name, req.Roster, req.Targets)
	for c, s := range req.Stocks {
		it.SetStock(c, s)
	}
	it.Status = req.Status
	return it
}

// Create handles POST /api/series/{id}/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeValid(w, r, &req) {
		return
	}
	h.save(w, r, -1, req)
}

// Update handles PUT /api/series/{id}/items/{idx}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	idx, ok := itemIndex(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item index")
		return
	}
	var req itemRequest
	if !decodeValid(w, r, &req) {
		return
	}
	h.save(w, r, idx, req)
}

func (h *ItemsHandler) save(w http.ResponseWriter, r *http.Request, idx int, req itemRequest) {
	seriesID := r.PathValue("id")
	stored, err := h.Archive.SaveItem(r.Context(), seriesID, idx, req.draft())
	if err != nil {
		commandError(w, r, err)
		return
	}
	status := http.StatusOK
	if idx == -1 {
		status = http.StatusCreated
	}
	h.respondItem(w, r, seriesID, stored, status)
}

// Delete handles DELETE /api/series/{id}/items/{idx}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	idx, ok := itemIndex(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item index")
		return
	}
	if err := h.Archive.DeleteItem(r.Context(), r.PathValue("id"), idx); err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// DeleteAll handles DELETE /api/series/{id}/items.
func (h *ItemsHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Archive.DeleteAllItems(r.Context(), r.PathValue("id")); err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "items deleted"})
}

// Duplicate handles POST /api/series/{id}/items/{idx}/duplicate.
func (h *ItemsHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	idx, ok := itemIndex(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item index")
		return
	}
	seriesID := r.PathValue("id")
	dup, err := h.Archive.DuplicateItem(r.Context(), seriesID, idx)
	if err != nil {
		commandError(w, r, err)
		return
	}
	h.respondItem(w, r, seriesID, dup, http.StatusCreated)
}

// SetQuantity handles PUT /api/series/{id}/items/{idx}/quantity.
func (h *ItemsHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	h.transition(w, r, &req, func(seriesID string, idx int) (archive.Transition, error) {
		return h.Archive.SetQuantity(r.Context(), seriesID, idx, req.Character, req.Field, req.Value)
	})
}

// Adjust handles POST /api/series/{id}/items/{idx}/adjust.
func (h *ItemsHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	h.transition(w, r, &req, func(seriesID string, idx int) (archive.Transition, error) {
		return h.Archive.AdjustQuantity(r.Context(), seriesID, idx, req.Character, req.Field, req.Delta)
	})
}

// ToggleInfinite handles POST /api/series/{id}/items/{idx}/infinite.
func (h *ItemsHandler) ToggleInfinite(w http.ResponseWriter, r *http.Request) {
	var req characterRequest
	h.transition(w, r, &req, func(seriesID string, idx int) (archive.Transition, error) {
		return h.Archive.ToggleInfinite(r.Context(), seriesID, idx, req.Character)
	})
}

// SetTargets handles PUT /api/series/{id}/items/{idx}/targets.
func (h *ItemsHandler) SetTargets(w http.ResponseWriter, r *http.Request) {
	var req targetsRequest
	h.transition(w, r, &req, func(seriesID string, idx int) (archive.Transition, error) {
		return h.Archive.SetTargets(r.Context(), seriesID, idx, req.Targets)
	})
}

// SetExcluded handles PUT /api/series/{id}/items/{idx}/excluded.
func (h *ItemsHandler) SetExcluded(w http.ResponseWriter, r *http.Request) {
	var req excludedRequest
	h.transition(w, r, &req, func(seriesID string, idx int) (archive.Transition, error) {
		return h.Archive.SetExcluded(r.Context(), seriesID, idx, req.Excluded)
	})
}

// IncrementAll handles POST /api/series/{id}/items/{idx}/increment.
func (h *ItemsHandler) IncrementAll(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, nil, func(seriesID string, idx int) (archive.Transition, error) {
		return h.Archive.IncrementAllOwned(r.Context(), seriesID, idx)
	})
}

// Reset handles POST /api/series/{id}/items/{idx}/reset.
func (h *ItemsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, nil, func(seriesID string, idx int) (archive.Transition, error) {
		return h.Archive.ResetCounts(r.Context(), seriesID, idx)
	})
}

// transition runs a stock command. A nil req means the command takes no
// body.
func (h *ItemsHandler) transition(w http.ResponseWriter, r *http.Request, req any, run func(seriesID string, idx int) (archive.Transition, error)) {
	idx, ok := itemIndex(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item index")
		return
	}
	if req != nil && !decodeValid(w, r, req) {
		return
	}

	t, err := run(r.PathValue("id"), idx)
	if err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, transitionResponse{Transition: t, Changed: t.Changed()})
}

// Trade handles GET /api/series/{id}/items/{idx}/trade.
func (h *ItemsHandler) Trade(w http.ResponseWriter, r *http.Request) {
	idx, ok := itemIndex(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item index")
		return
	}
	text, err := h.Archive.TradeText(r.PathValue("id"), idx)
	if err != nil {
		commandError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

// Summary handles GET /api/series/{id}/items/{idx}/summary.
func (h *ItemsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	idx, ok := itemIndex(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item index")
		return
	}
	sum, err := h.Archive.Summary(r.PathValue("id"), idx)
	if err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, sum)
}

func (h *ItemsHandler) respondItem(w http.ResponseWriter, r *http.Request, seriesID string, idx, status int) {
	it, err := h.Archive.Item(seriesID, idx)
	if err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, status, map[string]any{"index": idx, "item": it})
}
