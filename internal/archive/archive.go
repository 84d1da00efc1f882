// Package archive owns the application state. Every command validates its
// input, mutates the in-memory tree, re-derives the affected statuses and
// persists the whole state with a single store write.
package archive

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

var (
	ErrSeriesNotFound   = errors.New("series not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrPresetNotFound   = errors.New("preset not found")
	ErrNoHistory        = errors.New("no previously saved item")
	ErrInvalidField     = errors.New("invalid stock field")
	ErrUnknownCharacter = errors.New("character not in roster")
	ErrEmptyTitle       = errors.New("title is required")
	ErrEmptyName        = errors.New("item name is required")
	ErrInvalidDate      = errors.New("date must be YYYY-MM-DD")
	ErrInvalidSortMode  = errors.New("invalid sort mode")
)

// Archive is the single owner of the state tree. It is safe for concurrent
// use; commands are applied one at a time.
type Archive struct {
	mu    sync.Mutex
	slots store.Slots
	state *model.Archive
	newID func() string
}

// New wraps an already loaded state.
func New(slots store.Slots, state *model.Archive) *Archive {
	if state == nil {
		state = model.NewArchive()
	}
	return &Archive{
		slots: slots,
		state: state,
		newID: uuid.NewString,
	}
}

// Open loads the state from slots.
func Open(ctx context.Context, slots store.Slots) (*Archive, error) {
	state, err := store.Load(ctx, slots)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return New(slots, state), nil
}

// save persists the whole state. The in-memory state is left as is when the
// write fails.
func (a *Archive) save(ctx context.Context) error {
	return store.Save(ctx, a.slots, a.state)
}

func (a *Archive) series(id string) (*model.Series, error) {
	s, ok := a.state.Series[id]
	if !ok {
		return nil, ErrSeriesNotFound
	}
	return s, nil
}

func (a *Archive) item(seriesID string, idx int) (*model.Series, *model.Item, error) {
	s, err := a.series(seriesID)
	if err != nil {
		return nil, nil, err
	}
	if idx < 0 || idx >= len(s.Items) {
		return nil, nil, ErrItemNotFound
	}
	return s, &s.Items[idx], nil
}

func (a *Archive) roster(it *model.Item) []string {
	return a.state.Rosters.Lookup(it.Roster)
}
