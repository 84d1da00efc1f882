package archive

import (
	"context"
	"slices"
	"strings"

	"github.com/erazemk/zbirka/internal/engine"
	"github.com/erazemk/zbirka/internal/model"
)

// Transition is the status of an item before and after a command.
type Transition struct {
	From model.Status `json:"from"`
	To   model.Status `json:"to"`
}

// Changed reports whether the command moved the item to another status.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// SaveItem stores an edited item. An index of -1 appends it; any other index
// replaces the item there. The saved item is remembered for DraftFromHistory.
// It returns the index of the stored item.
func (a *Archive) SaveItem(ctx context.Context, seriesID string, idx int, draft model.Item) (int, error) {
	name := strings.TrimSpace(draft.Name)
	if name == "" {
		return 0, ErrEmptyName
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.series(seriesID)
	if err != nil {
		return 0, err
	}
	if idx != -1 && (idx < 0 || idx >= len(s.Items)) {
		return 0, ErrItemNotFound
	}

	it := draft.Clone()
	it.Name = name
	if it.Roster == "" {
		it.Roster = model.DefaultRosterName
	}
	roster := a.roster(&it)
	targets, err := checkTargets(it.Targets, roster)
	if err != nil {
		return 0, err
	}
	it.Targets = targets
	for c, st := range it.Stocks {
		it.Stocks[c] = st.Normalize()
	}
	it.Status = engine.DeriveStatus(&it, roster)

	if idx == -1 {
		s.Items = append(s.Items, it)
		idx = len(s.Items) - 1
	} else {
		s.Items[idx] = it
	}
	a.state.LastItem = &model.LastItem{
		Name:    it.Name,
		Roster:  it.Roster,
		Targets: slices.Clone(it.Targets),
	}

	if err := a.save(ctx); err != nil {
		return 0, err
	}
	return idx, nil
}

// DeleteItem removes one item from a series.
func (a *Archive) DeleteItem(ctx context.Context, seriesID string, idx int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, _, err := a.item(seriesID, idx)
	if err != nil {
		return err
	}
	s.Items = slices.Delete(s.Items, idx, idx+1)
	return a.save(ctx)
}

// DeleteAllItems empties a series.
func (a *Archive) DeleteAllItems(ctx context.Context, seriesID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.series(seriesID)
	if err != nil {
		return err
	}
	s.Items = []model.Item{}
	return a.save(ctx)
}

// DuplicateItem appends a copy of an item with the same name, roster and
// targets but no stock. It returns the index of the copy.
func (a *Archive) DuplicateItem(ctx context.Context, seriesID string, idx int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, base, err := a.item(seriesID, idx)
	if err != nil {
		return 0, err
	}
	roster := base.Roster
	if roster == "" {
		roster = model.DefaultRosterName
	}
	it := model.NewItem(base.Name, roster, base.Targets)
	s.Items = append(s.Items, it)

	if err := a.save(ctx); err != nil {
		return 0, err
	}
	return len(s.Items) - 1, nil
}

// SetQuantity sets one stock field of a character. Negative values are
// stored as zero.
func (a *Archive) SetQuantity(ctx context.Context, seriesID string, idx int, character, field string, n int) (Transition, error) {
	return a.mutateStock(ctx, seriesID, idx, character, func(st model.Stock) (model.Stock, error) {
		next, ok := st.With(field, n)
		if !ok {
			return st, ErrInvalidField
		}
		return next, nil
	})
}

// AdjustQuantity adds delta to one stock field of a character, never going
// below zero.
func (a *Archive) AdjustQuantity(ctx context.Context, seriesID string, idx int, character, field string, delta int) (Transition, error) {
	return a.mutateStock(ctx, seriesID, idx, character, func(st model.Stock) (model.Stock, error) {
		cur, ok := st.Get(field)
		if !ok {
			return st, ErrInvalidField
		}
		next, _ := st.With(field, cur+delta)
		return next, nil
	})
}

// ToggleInfinite flips the infinite flag of a character.
func (a *Archive) ToggleInfinite(ctx context.Context, seriesID string, idx int, character string) (Transition, error) {
	return a.mutateStock(ctx, seriesID, idx, character, func(st model.Stock) (model.Stock, error) {
		st.Infinite = !st.Infinite
		return st, nil
	})
}

func (a *Archive) mutateStock(ctx context.Context, seriesID string, idx int, character string, fn func(model.Stock) (model.Stock, error)) (Transition, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, it, err := a.item(seriesID, idx)
	if err != nil {
		return Transition{}, err
	}
	roster := a.roster(it)
	if !slices.Contains(roster, character) {
		return Transition{}, ErrUnknownCharacter
	}
	next, err := fn(engine.StockOf(it, character))
	if err != nil {
		return Transition{}, err
	}
	it.SetStock(character, next)

	return a.rederive(ctx, it, roster)
}

// SetTargets replaces the explicit targets of an item. An empty list makes
// the whole roster the target.
func (a *Archive) SetTargets(ctx context.Context, seriesID string, idx int, targets []string) (Transition, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, it, err := a.item(seriesID, idx)
	if err != nil {
		return Transition{}, err
	}
	roster := a.roster(it)
	checked, err := checkTargets(targets, roster)
	if err != nil {
		return Transition{}, err
	}
	it.Targets = checked

	return a.rederive(ctx, it, roster)
}

// SetExcluded turns the excluded override on or off. Turning it off derives
// the status from stock again.
func (a *Archive) SetExcluded(ctx context.Context, seriesID string, idx int, excluded bool) (Transition, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, it, err := a.item(seriesID, idx)
	if err != nil {
		return Transition{}, err
	}
	from := it.Status
	if excluded {
		it.Status = model.StatusExcluded
	} else if it.Status.Overridden() {
		it.Status = model.StatusIncomplete
	}

	t, err := a.rederive(ctx, it, a.roster(it))
	t.From = from
	return t, err
}

// IncrementAllOwned adds one owned unit for every roster character.
func (a *Archive) IncrementAllOwned(ctx context.Context, seriesID string, idx int) (Transition, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, it, err := a.item(seriesID, idx)
	if err != nil {
		return Transition{}, err
	}
	roster := a.roster(it)
	for _, c := range roster {
		st := engine.StockOf(it, c)
		st.Owned++
		it.SetStock(c, st)
	}

	return a.rederive(ctx, it, roster)
}

// ResetCounts clears the counts and infinite flags of every recorded
// character.
func (a *Archive) ResetCounts(ctx context.Context, seriesID string, idx int) (Transition, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, it, err := a.item(seriesID, idx)
	if err != nil {
		return Transition{}, err
	}
	for c := range it.Stocks {
		it.Stocks[c] = model.Stock{}
	}

	return a.rederive(ctx, it, a.roster(it))
}

// rederive recomputes the item status after a mutation and persists the
// state.
func (a *Archive) rederive(ctx context.Context, it *model.Item, roster []string) (Transition, error) {
	t := Transition{From: it.Status}
	it.Status = engine.DeriveStatus(it, roster)
	t.To = it.Status
	if err := a.save(ctx); err != nil {
		return t, err
	}
	return t, nil
}

// checkTargets drops duplicates and rejects characters outside the roster.
func checkTargets(targets, roster []string) ([]string, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(targets))
	for _, c := range targets {
		if !slices.Contains(roster, c) {
			return nil, ErrUnknownCharacter
		}
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out, nil
}
