package archive

import (
	"context"

	"github.com/erazemk/zbirka/internal/engine"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// Snapshot returns a deep copy of the whole state.
func (a *Archive) Snapshot() *model.Archive {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Clone()
}

// Series returns a copy of one series.
func (a *Archive) Series(id string) (*model.Series, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.series(id)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// Item returns a copy of one item.
func (a *Archive) Item(seriesID string, idx int) (model.Item, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, it, err := a.item(seriesID, idx)
	if err != nil {
		return model.Item{}, err
	}
	return it.Clone(), nil
}

// List returns the series list rows matching f.
func (a *Archive) List(f engine.Filter) []engine.SeriesView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return engine.ListSeries(a.state, f)
}

// MissingReport builds the cross-series missing report.
func (a *Archive) MissingReport() engine.MissingReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return engine.BuildMissingReport(a.state)
}

// TradeText composes the trade offer for one item.
func (a *Archive) TradeText(seriesID string, idx int) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, it, err := a.item(seriesID, idx)
	if err != nil {
		return "", err
	}
	return engine.ComposeTradeText(it, a.roster(it), a.state.Trade, s.Title), nil
}

// Summary describes the stock of one item.
func (a *Archive) Summary(seriesID string, idx int) (engine.ItemSummary, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, it, err := a.item(seriesID, idx)
	if err != nil {
		return engine.ItemSummary{}, err
	}
	return engine.Summarize(it, a.roster(it)), nil
}

// StatusCounts counts items per status across all series.
func (a *Archive) StatusCounts() map[model.Status]int {
	a.mu.Lock()
	defer a.mu.Unlock()

	counts := map[model.Status]int{
		model.StatusIncomplete: 0,
		model.StatusComplete:   0,
		model.StatusExcluded:   0,
	}
	for _, s := range a.state.Series {
		for _, it := range s.Items {
			counts[it.Status]++
		}
	}
	return counts
}

// NewDraft returns an empty item on the default roster.
func (a *Archive) NewDraft() model.Item {
	return model.NewItem("", model.DefaultRosterName, nil)
}

// DraftFromPreset returns an unsaved item filled from a preset.
func (a *Archive) DraftFromPreset(i int) (model.Item, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if i < 0 || i >= len(a.state.Presets) {
		return model.Item{}, ErrPresetNotFound
	}
	p := a.state.Presets[i]
	return model.NewItem(p.Name, p.Roster, p.Targets), nil
}

// DraftFromHistory returns an unsaved item filled from the last saved item.
func (a *Archive) DraftFromHistory() (model.Item, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	li := a.state.LastItem
	if li == nil {
		return model.Item{}, ErrNoHistory
	}
	return model.NewItem(li.Name, li.Roster, li.Targets), nil
}

// Export renders the state as a backup document.
func (a *Archive) Export() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return store.Export(a.state)
}

// Import replaces the state with a backup document. Nothing changes when the
// document is rejected.
func (a *Archive) Import(ctx context.Context, doc []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, err := store.Import(ctx, a.slots, doc)
	if err != nil {
		return err
	}
	a.state = state
	return nil
}
