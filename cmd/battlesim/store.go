package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/battlecore/internal/config"
	"github.com/udisondev/battlecore/internal/db"
	"github.com/udisondev/battlecore/internal/db/sqlite"
	"github.com/udisondev/battlecore/internal/game/combat"
	"github.com/udisondev/battlecore/internal/model"
)

// battleStore persists familiarity and battle summaries.
type battleStore interface {
	combat.FamiliarityStore
	RecordBattle(ctx context.Context, s model.BattleSummary) error
}

type pgStore struct {
	*db.FamiliarityRepository
	*db.BattleRepository
}

// openStore opens the configured storage. The "none" driver returns a nil
// store and a no-op close.
func openStore(ctx context.Context, cfg config.Storage) (battleStore, func(), error) {
	switch cfg.Driver {
	case config.DriverNone:
		return nil, func() {}, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("sqlite storage opened", "path", cfg.SQLitePath)
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Error("closing sqlite storage", "err", err)
			}
		}, nil

	case config.DriverPostgres:
		dsn := cfg.Database.DSN()
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		database, err := db.New(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("database connected")
		return pgStore{
			FamiliarityRepository: database.Familiarity(),
			BattleRepository:      database.Battles(),
		}, database.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
