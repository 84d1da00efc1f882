package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erazemk/zbirka/internal/model"
)

// stateSlots are the slots that make up the archive, in document order.
var stateSlots = []string{
	SlotSeries,
	SlotOrder,
	SlotRosters,
	SlotTemplates,
	SlotSort,
	SlotTrade,
	SlotPresets,
	SlotLastItem,
}

// Load reads the archive from its slots. Absent slots take their defaults.
func Load(ctx context.Context, slots Slots) (*model.Archive, error) {
	raw := make(map[string][]byte, len(stateSlots))
	for _, key := range stateSlots {
		value, err := slots.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("loading archive: %w", err)
		}
		if value != nil {
			raw[key] = value
		}
	}
	return decodeState(raw)
}

// Save writes every archive slot in one atomic write.
func Save(ctx context.Context, slots Slots, a *model.Archive) error {
	values, err := encodeState(a)
	if err != nil {
		return err
	}
	if err := slots.SetAll(ctx, values); err != nil {
		return fmt.Errorf("saving archive: %w", err)
	}
	return nil
}

// decodeState builds an archive from raw slot values. Missing or null slots
// take defaults; a value of the wrong shape is an error.
func decodeState(raw map[string][]byte) (*model.Archive, error) {
	a := model.NewArchive()

	var series map[string]*model.Series
	if err := decodeSlot(raw, SlotSeries, &series); err != nil {
		return nil, err
	}
	if series != nil {
		for id, s := range series {
			if s == nil {
				delete(series, id)
				continue
			}
			s.ID = id
		}
		a.Series = series
	}

	if err := decodeSlot(raw, SlotOrder, &a.Order); err != nil {
		return nil, err
	}
	if a.Order == nil {
		a.Order = []string{}
	}

	var rosters model.Rosters
	if err := decodeSlot(raw, SlotRosters, &rosters); err != nil {
		return nil, err
	}
	if rosters != nil {
		a.Rosters = rosters
	}

	var templates []string
	if err := decodeSlot(raw, SlotTemplates, &templates); err != nil {
		return nil, err
	}
	if templates != nil {
		a.Templates = templates
	}

	var presets []model.Preset
	if err := decodeSlot(raw, SlotPresets, &presets); err != nil {
		return nil, err
	}
	if presets != nil {
		a.Presets = presets
	}

	var trade *model.TradeConfig
	if err := decodeSlot(raw, SlotTrade, &trade); err != nil {
		return nil, err
	}
	if trade != nil {
		a.Trade = *trade
	}

	var sort model.SortMode
	if err := decodeSlot(raw, SlotSort, &sort); err != nil {
		return nil, err
	}
	if sort.Valid() {
		a.Sort = sort
	}

	if err := decodeSlot(raw, SlotLastItem, &a.LastItem); err != nil {
		return nil, err
	}

	return a, nil
}

func decodeSlot(raw map[string][]byte, key string, target any) error {
	value, ok := raw[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(value, target); err != nil {
		return fmt.Errorf("decoding slot %s: %w", key, err)
	}
	return nil
}

// encodeState renders every archive slot as JSON.
func encodeState(a *model.Archive) (map[string][]byte, error) {
	series := a.Series
	if series == nil {
		series = map[string]*model.Series{}
	}
	values := map[string]any{
		SlotSeries:    series,
		SlotOrder:     nonNil(a.Order),
		SlotRosters:   a.Rosters,
		SlotTemplates: nonNil(a.Templates),
		SlotSort:      a.Sort,
		SlotTrade:     a.Trade,
		SlotPresets:   nonNil(a.Presets),
		SlotLastItem:  a.LastItem,
	}

	out := make(map[string][]byte, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding slot %s: %w", key, err)
		}
		out[key] = data
	}
	return out, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
