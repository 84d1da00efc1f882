package archive

import (
	"context"
	"slices"
	"strings"

	"github.com/erazemk/zbirka/internal/engine"
	"github.com/erazemk/zbirka/internal/model"
)

// Settings are the user-editable global options.
type Settings struct {
	Rosters   model.Rosters     `json:"rosters"`
	Templates []string          `json:"templates"`
	Presets   []model.Preset    `json:"presets"`
	Trade     model.TradeConfig `json:"trade"`
	Sort      model.SortMode    `json:"sort"`
}

// Settings returns a copy of the current settings.
func (a *Archive) Settings() Settings {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.state.Clone()
	return Settings{
		Rosters:   c.Rosters,
		Templates: c.Templates,
		Presets:   c.Presets,
		Trade:     c.Trade,
		Sort:      c.Sort,
	}
}

// UpdateSettings replaces rosters, templates, presets and trade text. An
// empty roster set falls back to the default roster. Item statuses are
// derived again since roster contents may have changed.
func (a *Archive) UpdateSettings(ctx context.Context, s Settings) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	rosters := s.Rosters.Clone()
	if len(rosters) == 0 {
		rosters = model.DefaultRosters()
	}
	templates := make([]string, 0, len(s.Templates))
	for _, t := range s.Templates {
		if t = strings.TrimSpace(t); t != "" {
			templates = append(templates, t)
		}
	}
	presets := make([]model.Preset, 0, len(s.Presets))
	for _, p := range s.Presets {
		p.Targets = slices.Clone(p.Targets)
		presets = append(presets, p)
	}

	a.state.Rosters = rosters
	a.state.Templates = templates
	a.state.Presets = presets
	a.state.Trade = s.Trade

	for _, series := range a.state.Series {
		for i := range series.Items {
			it := &series.Items[i]
			it.Status = engine.DeriveStatus(it, a.roster(it))
		}
	}

	return a.save(ctx)
}

// SetSortMode changes how the series list is ordered.
func (a *Archive) SetSortMode(ctx context.Context, mode model.SortMode) error {
	if !mode.Valid() {
		return ErrInvalidSortMode
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.state.Sort = mode
	return a.save(ctx)
}

// ParseRosters reads rosters written one per line as "name:A,B,C". Lines
// without a colon or a name are skipped; a repeated name replaces the
// earlier roster in place.
func ParseRosters(text string) model.Rosters {
	var rosters model.Rosters
	for _, line := range strings.Split(text, "\n") {
		name, list, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		list, _, _ = strings.Cut(list, ":")
		r := model.Roster{Name: name, Characters: splitTrim(list, ",")}
		if i := slices.IndexFunc(rosters, func(x model.Roster) bool { return x.Name == name }); i >= 0 {
			rosters[i] = r
			continue
		}
		rosters = append(rosters, r)
	}
	return rosters
}

// FormatRosters is the inverse of ParseRosters.
func FormatRosters(rs model.Rosters) string {
	lines := make([]string, 0, len(rs))
	for _, r := range rs {
		lines = append(lines, r.Name+":"+strings.Join(r.Characters, ","))
	}
	return strings.Join(lines, "\n")
}

// ParseTemplates reads one template name per line.
func ParseTemplates(text string) []string {
	return splitTrim(text, "\n")
}

// FormatTemplates is the inverse of ParseTemplates.
func FormatTemplates(templates []string) string {
	return strings.Join(templates, "\n")
}

// ParsePresets reads presets written one per line as "name,roster,A|B|C".
// Lines with fewer than three fields are skipped.
func ParsePresets(text string) []model.Preset {
	presets := []model.Preset{}
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Split(line, ",")
		if len(fields) < 3 {
			continue
		}
		presets = append(presets, model.Preset{
			Name:    strings.TrimSpace(fields[0]),
			Roster:  strings.TrimSpace(fields[1]),
			Targets: splitTrim(fields[2], "|"),
		})
	}
	return presets
}

// FormatPresets is the inverse of ParsePresets.
func FormatPresets(presets []model.Preset) string {
	lines := make([]string, 0, len(presets))
	for _, p := range presets {
		lines = append(lines, p.Name+","+p.Roster+","+strings.Join(p.Targets, "|"))
	}
	return strings.Join(lines, "\n")
}

func splitTrim(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
