package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/zbirka/internal/archive"
	"github.com/erazemk/zbirka/internal/model"
)

// SettingsHandler handles global settings and item drafts.
type SettingsHandler struct {
	Archive *archive.Archive
}

// settingsRequest carries settings either as structured values or in the
// line-based text forms. A text form wins over its structured counterpart.
type settingsRequest struct {
	Rosters       model.Rosters     `json:"rosters"`
	Templates     []string          `json:"templates" validate:"dive,max=100"`
	Presets       []model.Preset    `json:"presets"`
	Trade         model.TradeConfig `json:"trade"`
	RostersText   *string           `json:"rosters_text"`
	TemplatesText *string           `json:"templates_text"`
	PresetsText   *string           `json:"presets_text"`
}

type settingsResponse struct {
	archive.Settings
	RostersText   string `json:"rosters_text"`
	TemplatesText string `json:"templates_text"`
	PresetsText   string `json:"presets_text"`
}

type sortRequest struct {
	Mode string `json:"mode" validate:"required,oneof=new date custom"`
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, h.response())
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	req := settingsRequest{Trade: model.DefaultTradeConfig()}
	if !decodeValid(w, r, &req) {
		return
	}

	s := archive.Settings{
		Rosters:   req.Rosters,
		Templates: req.Templates,
		Presets:   req.Presets,
		Trade:     req.Trade,
	}
	if req.RostersText != nil {
		s.Rosters = archive.ParseRosters(*req.RostersText)
	}
	if req.TemplatesText != nil {
		s.Templates = archive.ParseTemplates(*req.TemplatesText)
	}
	if req.PresetsText != nil {
		s.Presets = archive.ParsePresets(*req.PresetsText)
	}

	if err := h.Archive.UpdateSettings(r.Context(), s); err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, h.response())
}

// SetSort handles PUT /api/settings/sort.
func (h *SettingsHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	var req sortRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.Archive.SetSortMode(r.Context(), model.SortMode(req.Mode)); err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"sort": req.Mode})
}

// Draft handles GET /api/drafts. ?preset=N starts from a preset, ?history
// from the last saved item, and no parameter gives an empty item.
func (h *SettingsHandler) Draft(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		draft model.Item
		err   error
	)
	switch {
	case q.Has("preset"):
		i, convErr := strconv.Atoi(q.Get("preset"))
		if convErr != nil {
			jsonError(w, http.StatusBadRequest, "invalid preset index")
			return
		}
		draft, err = h.Archive.DraftFromPreset(i)
	case q.Has("history"):
		draft, err = h.Archive.DraftFromHistory()
	default:
		draft = h.Archive.NewDraft()
	}
	if err != nil {
		commandError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, draft)
}

func (h *SettingsHandler) response() settingsResponse {
	s := h.Archive.Settings()
	return settingsResponse{
		Settings:      s,
		RostersText:   archive.FormatRosters(s.Rosters),
		TemplatesText: archive.FormatTemplates(s.Templates),
		PresetsText:   archive.FormatPresets(s.Presets),
	}
}
