package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/erazemk/zbirka/internal/engine"
	"github.com/erazemk/zbirka/internal/imaging"
	"github.com/erazemk/zbirka/internal/model"
	"github.com/erazemk/zbirka/internal/store"
)

// NewSeries holds the fields of a series being created.
type NewSeries struct {
	Title        string
	Date         string
	Tags         string
	UseTemplates bool
}

// CreateSeries adds a series at the front of the order. With UseTemplates it
// starts with one item per template, targeting the whole default roster.
func (a *Archive) CreateSeries(ctx context.Context, ns NewSeries) (*model.Series, error) {
	title := strings.TrimSpace(ns.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if err := validateDate(ns.Date); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s := &model.Series{
		ID:    a.newID(),
		Title: title,
		Date:  ns.Date,
		Tags:  ns.Tags,
		Items: []model.Item{},
	}
	if ns.UseTemplates {
		roster := a.state.Rosters.Lookup(model.DefaultRosterName)
		for _, name := range a.state.Templates {
			it := model.NewItem(name, model.DefaultRosterName, roster)
			it.Status = engine.DeriveStatus(&it, roster)
			s.Items = append(s.Items, it)
		}
	}

	a.state.Series[s.ID] = s
	a.state.Order = slices.Insert(a.state.Order, 0, s.ID)

	if err := a.save(ctx); err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// DeleteSeries removes a series, its items and its cover.
func (a *Archive) DeleteSeries(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.series(id); err != nil {
		return err
	}
	delete(a.state.Series, id)
	a.state.Order = slices.DeleteFunc(a.state.Order, func(oid string) bool { return oid == id })

	if err := a.save(ctx); err != nil {
		return err
	}
	if err := store.DeleteCover(ctx, a.slots, id); err != nil {
		slog.Warn("series deleted but cover remains", "series", id, "error", err)
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (a *Archive) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.series(id)
	if err != nil {
		return false, err
	}
	s.Favorite = !s.Favorite

	if err := a.save(ctx); err != nil {
		return false, err
	}
	return s.Favorite, nil
}

// MoveSeries moves src to the position dst held before the move.
func (a *Archive) MoveSeries(ctx context.Context, src, dst string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if src == dst {
		return nil
	}
	srcIdx := slices.Index(a.state.Order, src)
	dstIdx := slices.Index(a.state.Order, dst)
	if srcIdx < 0 || dstIdx < 0 {
		return ErrSeriesNotFound
	}

	order := slices.Delete(slices.Clone(a.state.Order), srcIdx, srcIdx+1)
	a.state.Order = slices.Insert(order, min(dstIdx, len(order)), src)

	return a.save(ctx)
}

// SetCover processes and stores a cover image for a series.
func (a *Archive) SetCover(ctx context.Context, id string, data []byte) (*imaging.Cover, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.series(id); err != nil {
		return nil, err
	}
	cover, err := imaging.ProcessCover(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("processing cover: %w", err)
	}
	if err := store.SaveCover(ctx, a.slots, id, cover.Data); err != nil {
		return nil, err
	}
	return cover, nil
}

// Cover returns the stored cover of a series, or nil if it has none.
func (a *Archive) Cover(ctx context.Context, id string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.series(id); err != nil {
		return nil, err
	}
	return store.Cover(ctx, a.slots, id)
}

func validateDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
