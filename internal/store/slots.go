package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Slot names. They match the keys of backup documents.
const (
	SlotSeries    = "gap_db"
	SlotOrder     = "gap_order"
	SlotRosters   = "gap_char_sets"
	SlotTemplates = "gap_temps"
	SlotPresets   = "gap_presets"
	SlotTrade     = "gap_trade_config"
	SlotSort      = "gap_sort_mode"
	SlotLastItem  = "gap_last_item"
	SlotSecret    = "zbirka_secret"

	coverPrefix = "cover:"
)

// CoverSlot returns the slot holding a series cover image.
func CoverSlot(seriesID string) string {
	return coverPrefix + seriesID
}

// Slots is a key-value store of named slots. Get returns nil, nil for an
// absent slot. SetAll writes every value or none.
type Slots interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetAll(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
}

// SQLiteSlots stores slots in the SQLite slots table.
type SQLiteSlots struct {
	DB *sql.DB
}

// Get returns a slot value.
func (s *SQLiteSlots) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.DB.QueryRowContext(ctx,
		`SELECT value FROM slots WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting slot %s: %w", key, err)
	}
	return value, nil
}

// Set writes a slot value.
func (s *SQLiteSlots) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.DB.ExecContext(ctx, upsertSlot, key, value); err != nil {
		return fmt.Errorf("setting slot %s: %w", key, err)
	}
	return nil
}

// SetAll writes all values in one transaction.
func (s *SQLiteSlots) SetAll(ctx context.Context, values map[string][]byte) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range values {
		if _, err := tx.ExecContext(ctx, upsertSlot, key, value); err != nil {
			return fmt.Errorf("setting slot %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing slots: %w", err)
	}
	return nil
}

// Delete removes a slot. Deleting an absent slot is not an error.
func (s *SQLiteSlots) Delete(ctx context.Context, key string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting slot %s: %w", key, err)
	}
	return nil
}

const upsertSlot = `INSERT INTO slots (key, value) VALUES (?, ?)
	ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

// BadgerSlots stores slots as Badger keys.
type BadgerSlots struct {
	DB *badger.DB
}

// Get returns a slot value.
func (s *BadgerSlots) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting slot %s: %w", key, err)
	}
	return value, nil
}

// Set writes a slot value.
func (s *BadgerSlots) Set(_ context.Context, key string, value []byte) error {
	err := s.DB.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("setting slot %s: %w", key, err)
	}
	return nil
}

// SetAll writes all values in one transaction.
func (s *BadgerSlots) SetAll(_ context.Context, values map[string][]byte) error {
	err := s.DB.Update(func(txn *badger.Txn) error {
		for key, value := range values {
			if err := txn.Set([]byte(key), value); err != nil {
				return fmt.Errorf("setting slot %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("committing slots: %w", err)
	}
	return nil
}

// Delete removes a slot.
func (s *BadgerSlots) Delete(_ context.Context, key string) error {
	err := s.DB.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting slot %s: %w", key, err)
	}
	return nil
}
