package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erazemk/zbirka/internal/archive"
	"github.com/erazemk/zbirka/internal/config"
	"github.com/erazemk/zbirka/internal/db"
	"github.com/erazemk/zbirka/internal/store"
)

// openSlots opens the configured storage backend. The returned function
// closes it.
func openSlots(cfg config.Config) (store.Slots, func(), error) {
	switch cfg.Backend {
	case config.BackendBadger:
		bdb, err := db.OpenBadger(db.BadgerConfig{
			Dir:        cfg.BadgerDir,
			SyncWrites: true,
			Logger:     slog.Default().With("component", "badger"),
		})
		if err != nil {
			return nil, nil, err
		}
		return &store.BadgerSlots{DB: bdb}, func() { bdb.Close() }, nil

	default:
		database, err := db.Open(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		// Migrations are idempotent.
		if err := db.Migrate(database); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("migrating database: %w", err)
		}
		return &store.SQLiteSlots{DB: database}, func() { database.Close() }, nil
	}
}

// openArchive opens the backend and loads the archive from it.
func openArchive(ctx context.Context, cfg config.Config) (*archive.Archive, store.Slots, func(), error) {
	slots, closeFn, err := openSlots(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	a, err := archive.Open(ctx, slots)
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return a, slots, closeFn, nil
}
