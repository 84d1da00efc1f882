package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zbirka/internal/db"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// flakySlots fails every write while fail is set.
type flakySlots struct {
	store.Slots
	fail bool
}

var errDiskFull = errors.New("disk full")

func (f *flakySlots) SetAll(ctx context.Context, values map[string][]byte) error {
	if f.fail {
		return errDiskFull
	}
	return f.Slots.SetAll(ctx, values)
}

func newTestArchive(t *testing.T) (*Archive, store.Slots) {
	t.Helper()
	slots := &store.SQLiteSlots{DB: db.NewTestDB(t)}
	a := New(slots, nil)
	n := 0
	a.newID = func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
	err := a.UpdateSettings(context.Background(), Settings{
		Rosters: model.Rosters{
			{Name: "main", Characters: []string{"A", "B", "C"}},
			{Name: "pair", Characters: []string{"A", "B"}},
		},
		Templates: []string{"Badge", "Stand"},
		Trade:     model.DefaultTradeConfig(),
	})
	require.NoError(t, err)
	return a, slots
}

func addItem(t *testing.T, a *Archive, seriesID, roster string, targets []string) int {
	t.Helper()
	idx, err := a.SaveItem(context.Background(), seriesID, -1, model.NewItem("Badge", roster, targets))
	require.NoError(t, err)
	return idx
}

func TestCreateSeries(t *testing.T) {
	ctx := context.Background()
	a, slots := newTestArchive(t)

	first, err := a.CreateSeries(ctx, NewSeries{Title: " Show ", Date: "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, "Show", first.Title)
	assert.Empty(t, first.Items)

	second, err := a.CreateSeries(ctx, NewSeries{Title: "Tour", UseTemplates: true})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "Badge", second.Items[0].Name)
	assert.Equal(t, model.DefaultRosterName, second.Items[0].Roster)
	assert.Equal(t, model.DefaultCharacters, second.Items[0].Targets)
	assert.Equal(t, model.StatusIncomplete, second.Items[0].Status)

	assert.Equal(t, []string{second.ID, first.ID}, a.Snapshot().Order, "new series go first")

	reopened, err := Open(ctx, slots)
	require.NoError(t, err)
	assert.Equal(t, a.Snapshot(), reopened.Snapshot())
}

func TestCreateSeriesValidation(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)

	_, err := a.CreateSeries(ctx, NewSeries{Title: "  "})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = a.CreateSeries(ctx, NewSeries{Title: "Show", Date: "05/01/2024"})
	assert.ErrorIs(t, err, ErrInvalidDate)

	assert.Empty(t, a.Snapshot().Series)
}

func TestDeleteSeries(t *testing.T) {
	ctx := context.Background()
	a, slots := newTestArchive(t)

	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)
	require.NoError(t, store.SaveCover(ctx, slots, s.ID, []byte{1}))

	require.NoError(t, a.DeleteSeries(ctx, s.ID))
	assert.Empty(t, a.Snapshot().Series)
	assert.Empty(t, a.Snapshot().Order)

	cover, err := store.Cover(ctx, slots, s.ID)
	require.NoError(t, err)
	assert.Nil(t, cover)

	assert.ErrorIs(t, a.DeleteSeries(ctx, s.ID), ErrSeriesNotFound)
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)

	fav, err := a.ToggleFavorite(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	fav, err = a.ToggleFavorite(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestMoveSeries(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	for _, title := range []string{"one", "two", "three", "four"} {
		_, err := a.CreateSeries(ctx, NewSeries{Title: title})
		require.NoError(t, err)
	}
	require.Equal(t, []string{"s4", "s3", "s2", "s1"}, a.Snapshot().Order)

	require.NoError(t, a.MoveSeries(ctx, "s4", "s2"))
	assert.Equal(t, []string{"s3", "s2", "s4", "s1"}, a.Snapshot().Order)

	require.NoError(t, a.MoveSeries(ctx, "s1", "s3"))
	assert.Equal(t, []string{"s1", "s3", "s2", "s4"}, a.Snapshot().Order)

	assert.ErrorIs(t, a.MoveSeries(ctx, "s1", "missing"), ErrSeriesNotFound)
}

func TestSaveItem(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)

	draft := model.NewItem("Badge", "main", nil)
	draft.SetStock("A", model.Stock{Owned: 1})
	draft.SetStock("B", model.Stock{Tradeable: 1})
	draft.SetStock("C", model.Stock{Owned: -3, Tradeable: 1})

	idx, err := a.SaveItem(ctx, s.ID, -1, draft)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	it, err := a.Item(s.ID, idx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, it.Status)
	assert.Equal(t, model.Stock{Tradeable: 1}, it.Stocks["C"], "negative counts are stored as zero")

	draft.Name = "Stand"
	draft.Targets = []string{"A"}
	idx, err = a.SaveItem(ctx, s.ID, 0, draft)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	got, err := a.Series(s.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Stand", got.Items[0].Name)

	history, err := a.DraftFromHistory()
	require.NoError(t, err)
	assert.Equal(t, "Stand", history.Name)
	assert.Equal(t, "main", history.Roster)
	assert.Equal(t, []string{"A"}, history.Targets)
	assert.Empty(t, history.Stocks)
}

func TestSaveItemValidation(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)

	_, err = a.SaveItem(ctx, s.ID, -1, model.NewItem(" ", "main", nil))
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = a.SaveItem(ctx, s.ID, 3, model.NewItem("Badge", "main", nil))
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = a.SaveItem(ctx, "missing", -1, model.NewItem("Badge", "main", nil))
	assert.ErrorIs(t, err, ErrSeriesNotFound)

	_, err = a.SaveItem(ctx, s.ID, -1, model.NewItem("Badge", "main", []string{"Z"}))
	assert.ErrorIs(t, err, ErrUnknownCharacter)

	_, err = a.DraftFromHistory()
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestAdjustQuantityTransitions(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)
	idx := addItem(t, a, s.ID, "pair", nil)

	tr, err := a.AdjustQuantity(ctx, s.ID, idx, "A", model.FieldOwned, 1)
	require.NoError(t, err)
	assert.False(t, tr.Changed())

	tr, err = a.AdjustQuantity(ctx, s.ID, idx, "B", model.FieldTradeable, 1)
	require.NoError(t, err)
	assert.Equal(t, Transition{From: model.StatusIncomplete, To: model.StatusComplete}, tr)

	tr, err = a.AdjustQuantity(ctx, s.ID, idx, "B", model.FieldTradeable, -5)
	require.NoError(t, err)
	assert.Equal(t, Transition{From: model.StatusComplete, To: model.StatusIncomplete}, tr)

	it, err := a.Item(s.ID, idx)
	require.NoError(t, err)
	assert.Equal(t, 0, it.Stocks["B"].Tradeable, "counts never go below zero")
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)
	idx := addItem(t, a, s.ID, "pair", nil)

	_, err = a.SetQuantity(ctx, s.ID, idx, "A", model.FieldOwned, -4)
	require.NoError(t, err)
	it, _ := a.Item(s.ID, idx)
	assert.Equal(t, 0, it.Stocks["A"].Owned)

	_, err = a.SetQuantity(ctx, s.ID, idx, "A", model.FieldTradeable, 3)
	require.NoError(t, err)
	it, _ = a.Item(s.ID, idx)
	assert.Equal(t, 3, it.Stocks["A"].Tradeable)

	_, err = a.SetQuantity(ctx, s.ID, idx, "A", "gift", 1)
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = a.SetQuantity(ctx, s.ID, idx, "C", model.FieldOwned, 1)
	assert.ErrorIs(t, err, ErrUnknownCharacter)

	_, err = a.SetQuantity(ctx, s.ID, 9, "A", model.FieldOwned, 1)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestToggleInfiniteKeepsItemOutstanding(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)
	idx := addItem(t, a, s.ID, "main", nil)

	for _, c := range []string{"A", "B", "C"} {
		_, err := a.AdjustQuantity(ctx, s.ID, idx, c, model.FieldOwned, 1)
		require.NoError(t, err)
	}

	tr, err := a.ToggleInfinite(ctx, s.ID, idx, "C")
	require.NoError(t, err)
	assert.Equal(t, Transition{From: model.StatusComplete, To: model.StatusIncomplete}, tr)

	entries := a.MissingReport().For("C")
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Infinite)

	tr, err = a.ToggleInfinite(ctx, s.ID, idx, "C")
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, tr.To)
}

func TestSetExcludedIsSticky(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)
	idx := addItem(t, a, s.ID, "pair", nil)

	tr, err := a.SetExcluded(ctx, s.ID, idx, true)
	require.NoError(t, err)
	assert.Equal(t, Transition{From: model.StatusIncomplete, To: model.StatusExcluded}, tr)

	for _, c := range []string{"A", "B"} {
		tr, err = a.AdjustQuantity(ctx, s.ID, idx, c, model.FieldOwned, 1)
		require.NoError(t, err)
		assert.Equal(t, model.StatusExcluded, tr.To)
	}
	assert.Empty(t, a.MissingReport())

	tr, err = a.SetExcluded(ctx, s.ID, idx, false)
	require.NoError(t, err)
	assert.Equal(t, Transition{From: model.StatusExcluded, To: model.StatusComplete}, tr)
}

func TestSetTargets(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)
	idx := addItem(t, a, s.ID, "main", nil)

	_, err = a.AdjustQuantity(ctx, s.ID, idx, "A", model.FieldOwned, 2)
	require.NoError(t, err)

	tr, err := a.SetTargets(ctx, s.ID, idx, []string{"A", "A"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusComplete, tr.To)
	it, _ := a.Item(s.ID, idx)
	assert.Equal(t, []string{"A"}, it.Targets)

	tr, err = a.SetTargets(ctx, s.ID, idx, nil)
	require.NoError(t, err)
	assert.Equal(t, model.StatusIncomplete, tr.To, "no targets means the whole roster")

	_, err = a.SetTargets(ctx, s.ID, idx, []string{"X"})
	assert.ErrorIs(t, err, ErrUnknownCharacter)
}

func TestIncrementAndReset(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)
	idx := addItem(t, a, s.ID, "main", nil)

	_, err = a.ToggleInfinite(ctx, s.ID, idx, "B")
	require.NoError(t, err)

	tr, err := a.IncrementAllOwned(ctx, s.ID, idx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusIncomplete, tr.To, "B is still infinite")

	it, _ := a.Item(s.ID, idx)
	for _, c := range []string{"A", "B", "C"} {
		assert.Equal(t, 1, it.Stocks[c].Owned, c)
	}

	tr, err = a.ResetCounts(ctx, s.ID, idx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusIncomplete, tr.To)

	it, _ = a.Item(s.ID, idx)
	for c, st := range it.Stocks {
		assert.Equal(t, model.Stock{}, st, c)
	}
}

func TestDuplicateAndDeleteItems(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)
	idx := addItem(t, a, s.ID, "main", []string{"B", "A"})
	_, err = a.AdjustQuantity(ctx, s.ID, idx, "A", model.FieldOwned, 1)
	require.NoError(t, err)

	dup, err := a.DuplicateItem(ctx, s.ID, idx)
	require.NoError(t, err)
	assert.Equal(t, 1, dup)

	it, _ := a.Item(s.ID, dup)
	assert.Equal(t, "Badge", it.Name)
	assert.Equal(t, []string{"B", "A"}, it.Targets)
	assert.Empty(t, it.Stocks)
	assert.Equal(t, model.StatusIncomplete, it.Status)

	require.NoError(t, a.DeleteItem(ctx, s.ID, 0))
	got, _ := a.Series(s.ID)
	require.Len(t, got.Items, 1)
	assert.Empty(t, got.Items[0].Stocks, "the duplicate remains")

	require.NoError(t, a.DeleteAllItems(ctx, s.ID))
	got, _ = a.Series(s.ID)
	assert.Empty(t, got.Items)

	assert.ErrorIs(t, a.DeleteItem(ctx, s.ID, 0), ErrItemNotFound)
}

func TestTradeTextAndSummary(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)

	settings := a.Settings()
	settings.Trade = model.TradeConfig{Prefix: "Hi", Suffix: "Bye", ShowInfinite: true}
	require.NoError(t, a.UpdateSettings(ctx, settings))

	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)
	idx := addItem(t, a, s.ID, "pair", nil)
	_, err = a.SetQuantity(ctx, s.ID, idx, "A", model.FieldTradeable, 2)
	require.NoError(t, err)

	text, err := a.TradeText(s.ID, idx)
	require.NoError(t, err)
	assert.Equal(t, "Hi\nShow Badge\n譲：A2\n求：B\nBye", text)

	summary, err := a.Summary(s.ID, idx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalTradeable)

	_, err = a.TradeText(s.ID, 5)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestUpdateSettingsDefaultsAndRederives(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)
	idx := addItem(t, a, s.ID, "pair", nil)
	_, err = a.AdjustQuantity(ctx, s.ID, idx, "A", model.FieldOwned, 1)
	require.NoError(t, err)

	settings := a.Settings()
	settings.Rosters = model.Rosters{{Name: "pair", Characters: []string{"A"}}}
	require.NoError(t, a.UpdateSettings(ctx, settings))

	it, _ := a.Item(s.ID, idx)
	assert.Equal(t, model.StatusComplete, it.Status)

	require.NoError(t, a.UpdateSettings(ctx, Settings{Templates: []string{" ", "Card "}}))
	got := a.Settings()
	assert.Equal(t, model.DefaultRosters(), got.Rosters)
	assert.Equal(t, []string{"Card"}, got.Templates)
	assert.Empty(t, got.Presets)
}

func TestSetSortMode(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)

	require.NoError(t, a.SetSortMode(ctx, model.SortDate))
	assert.Equal(t, model.SortDate, a.Settings().Sort)
	assert.ErrorIs(t, a.SetSortMode(ctx, "random"), ErrInvalidSortMode)
}

func TestDraftFromPreset(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)

	settings := a.Settings()
	settings.Presets = ParsePresets("Pair set,pair,A|B")
	require.NoError(t, a.UpdateSettings(ctx, settings))

	draft, err := a.DraftFromPreset(0)
	require.NoError(t, err)
	assert.Equal(t, "Pair set", draft.Name)
	assert.Equal(t, "pair", draft.Roster)
	assert.Equal(t, []string{"A", "B"}, draft.Targets)

	_, err = a.DraftFromPreset(1)
	assert.ErrorIs(t, err, ErrPresetNotFound)
}

func TestFailedSaveKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	a, slots := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)

	flaky := &flakySlots{Slots: slots, fail: true}
	a.slots = flaky

	_, err = a.ToggleFavorite(ctx, s.ID)
	require.ErrorIs(t, err, errDiskFull)

	got, err := a.Series(s.ID)
	require.NoError(t, err)
	assert.True(t, got.Favorite, "in-memory state reflects the command")

	stored, err := store.Load(ctx, slots)
	require.NoError(t, err)
	assert.False(t, stored.Series[s.ID].Favorite)

	flaky.fail = false
	_, err = a.ToggleFavorite(ctx, s.ID)
	require.NoError(t, err)
	stored, err = store.Load(ctx, slots)
	require.NoError(t, err)
	assert.False(t, stored.Series[s.ID].Favorite)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show", UseTemplates: true})
	require.NoError(t, err)
	_, err = a.AdjustQuantity(ctx, s.ID, 0, model.DefaultCharacters[0], model.FieldOwned, 1)
	require.NoError(t, err)

	doc, err := a.Export()
	require.NoError(t, err)

	b, _ := newTestArchive(t)
	require.NoError(t, b.Import(ctx, doc))
	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.Equal(t, a.MissingReport(), b.MissingReport())

	before := b.Snapshot()
	err = b.Import(ctx, []byte("{broken"))
	assert.ErrorIs(t, err, store.ErrInvalidSnapshot)
	assert.Equal(t, before, b.Snapshot())
}

func TestCover(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestArchive(t)
	s, err := a.CreateSeries(ctx, NewSeries{Title: "Show"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 30))))

	cover, err := a.SetCover(ctx, s.ID, buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 40, cover.Width)

	data, err := a.Cover(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, cover.Data, data)

	_, err = a.SetCover(ctx, s.ID, []byte("plain text"))
	assert.ErrorIs(t, err, imaging.ErrUnsupportedFormat)

	_, err = a.Cover(ctx, "missing")
	assert.ErrorIs(t, err, ErrSeriesNotFound)
}

func TestSettingsText(t *testing.T) {
	rosters := ParseRosters("main: A, B ,C\n\nbad line\n:nameless\npair:A,B\nmain:X")
	assert.Equal(t, model.Rosters{
		{Name: "main", Characters: []string{"X"}},
		{Name: "pair", Characters: []string{"A", "B"}},
	}, rosters)
	assert.Equal(t, "main:X\npair:A,B", FormatRosters(rosters))

	presets := ParsePresets("Set,main,A| B\nshort,line\n")
	assert.Equal(t, []model.Preset{{Name: "Set", Roster: "main", Targets: []string{"A", "B"}}}, presets)
	assert.Equal(t, "Set,main,A|B", FormatPresets(presets))

	templates := ParseTemplates(" Badge\n\nStand ")
	assert.Equal(t, []string{"Badge", "Stand"}, templates)
	assert.Equal(t, "Badge\nStand", FormatTemplates(templates))
}
