// Package sqlite provides a SQLite-backed familiarity store for local runs.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/udisondev/battlecore/internal/db/migrations"
	"github.com/udisondev/battlecore/internal/model"
)

// Store persists familiarity and battle summaries in SQLite. It
// implements combat.FamiliarityStore.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite store and applies the embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &Store{sqlDB: sqlDB}, nil
}

func migrate(ctx context.Context, sqlDB *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadFamiliarity loads the persistent familiarity of a combatant.
func (s *Store) LoadFamiliarity(ctx context.Context, combatantID string) (map[model.Impression]float64, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT impression, value FROM combatant_familiarity WHERE combatant_id = ?`,
		combatantID,
	)
	if err != nil {
		return nil, fmt.Errorf("query familiarity for %s: %w", combatantID, err)
	}
	defer rows.Close()

	result := make(map[model.Impression]float64)
	for rows.Next() {
		var (
			imp   string
			value float64
		)
		if err := rows.Scan(&imp, &value); err != nil {
			return nil, fmt.Errorf("scan familiarity row: %w", err)
		}
		result[model.Impression(imp)] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate familiarity rows: %w", err)
	}
	return result, nil
}

// SaveFamiliarity replaces the persistent familiarity of a combatant.
// Non-positive values are not stored.
func (s *Store) SaveFamiliarity(ctx context.Context, combatantID string, values map[model.Impression]float64) (err error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin familiarity tx for %s: %w", combatantID, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM combatant_familiarity WHERE combatant_id = ?`, combatantID); err != nil {
		return fmt.Errorf("delete familiarity for %s: %w", combatantID, err)
	}
	for imp, v := range values {
		if v <= 0 {
			continue
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO combatant_familiarity (combatant_id, impression, value) VALUES (?, ?, ?)`,
			combatantID, string(imp), v,
		); err != nil {
			return fmt.Errorf("insert familiarity %s/%s: %w", combatantID, imp, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit familiarity for %s: %w", combatantID, err)
	}
	return nil
}

// RecordBattle inserts or replaces a battle summary.
func (s *Store) RecordBattle(ctx context.Context, b model.BattleSummary) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO battles (id, seed, rounds, winner_id, reactions, broken)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   seed = excluded.seed,
		   rounds = excluded.rounds,
		   winner_id = excluded.winner_id,
		   reactions = excluded.reactions,
		   broken = excluded.broken`,
		b.ID, int64(b.Seed), b.Rounds, b.WinnerID, b.Reactions, b.Broken,
	)
	if err != nil {
		return fmt.Errorf("record battle %s: %w", b.ID, err)
	}
	return nil
}

// Battle loads a battle summary by ID. Returns nil, nil if it does not exist.
func (s *Store) Battle(ctx context.Context, id string) (*model.BattleSummary, error) {
	var (
		b    model.BattleSummary
		seed int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, seed, rounds, winner_id, reactions, broken FROM battles WHERE id = ?`, id,
	).Scan(&b.ID, &seed, &b.Rounds, &b.WinnerID, &b.Reactions, &b.Broken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query battle %s: %w", id, err)
	}
	b.Seed = uint64(seed)
	return &b, nil
}
