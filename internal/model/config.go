package model

import (
	"encoding/json"
	"slices"
)

// TradeConfig is the global text wrapped around every trade offer.
type TradeConfig struct {
	Prefix       string `json:"prefix"`
	Suffix       string `json:"suffix"`
	ShowInfinite bool   `json:"showInf"`
}

// DefaultTradeConfig returns the configuration used when none is stored.
func DefaultTradeConfig() TradeConfig {
	return TradeConfig{ShowInfinite: true}
}

// UnmarshalJSON treats an absent showInf as true.
func (c *TradeConfig) UnmarshalJSON(data []byte) error {
	type plain TradeConfig
	v := plain(DefaultTradeConfig())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = TradeConfig(v)
	return nil
}

// Preset is a named item starting point.
type Preset struct {
	Name    string   `json:"name"`
	Roster  string   `json:"charSet"`
	Targets []string `json:"targets"`
}

// LastItem remembers the most recently saved item so the next one can start
// from it.
type LastItem struct {
	Name    string   `json:"type"`
	Roster  string   `json:"charSetName"`
	Targets []string `json:"targets"`
}

// SortMode selects how the series list is ordered.
type SortMode string

// Sort modes.
const (
	SortNew    SortMode = "new"
	SortDate   SortMode = "date"
	SortCustom SortMode = "custom"
)

// Valid reports whether m is a known mode.
func (m SortMode) Valid() bool {
	return m == SortNew || m == SortDate || m == SortCustom
}

// Archive is the whole application state.
type Archive struct {
	Series    map[string]*Series
	Order     []string
	Rosters   Rosters
	Templates []string
	Presets   []Preset
	Trade     TradeConfig
	Sort      SortMode
	LastItem  *LastItem
}

// NewArchive returns an empty archive with built-in defaults.
func NewArchive() *Archive {
	return &Archive{
		Series:    map[string]*Series{},
		Order:     []string{},
		Rosters:   DefaultRosters(),
		Templates: slices.Clone(DefaultTemplates),
		Presets:   []Preset{},
		Trade:     DefaultTradeConfig(),
		Sort:      SortNew,
	}
}

// Ordered returns the series in stored order, skipping dangling ids.
func (a *Archive) Ordered() []*Series {
	out := make([]*Series, 0, len(a.Order))
	for _, id := range a.Order {
		if s, ok := a.Series[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Clone returns a deep copy.
func (a *Archive) Clone() *Archive {
	out := &Archive{
		Series:    make(map[string]*Series, len(a.Series)),
		Order:     slices.Clone(a.Order),
		Rosters:   a.Rosters.Clone(),
		Templates: slices.Clone(a.Templates),
		Presets:   make([]Preset, len(a.Presets)),
		Trade:     a.Trade,
		Sort:      a.Sort,
	}
	for id, s := range a.Series {
		out.Series[id] = s.Clone()
	}
	for i, p := range a.Presets {
		p.Targets = slices.Clone(p.Targets)
		out.Presets[i] = p
	}
	if a.LastItem != nil {
		li := *a.LastItem
		li.Targets = slices.Clone(li.Targets)
		out.LastItem = &li
	}
	return out
}
