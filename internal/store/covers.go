package store

import (
	"context"
	"fmt"
)

// Cover returns the stored cover image of a series, or nil if it has none.
func Cover(ctx context.Context, slots Slots, seriesID string) ([]byte, error) {
	data, err := slots.Get(ctx, CoverSlot(seriesID))
	if err != nil {
		return nil, fmt.Errorf("loading cover: %w", err)
	}
	return data, nil
}

// SaveCover stores an already processed cover image.
func SaveCover(ctx context.Context, slots Slots, seriesID string, data []byte) error {
	if err := slots.Set(ctx, CoverSlot(seriesID), data); err != nil {
		return fmt.Errorf("saving cover: %w", err)
	}
	return nil
}

// DeleteCover removes the cover of a series.
func DeleteCover(ctx context.Context, slots Slots, seriesID string) error {
	if err := slots.Delete(ctx, CoverSlot(seriesID)); err != nil {
		return fmt.Errorf("deleting cover: %w", err)
	}
	return nil
}
