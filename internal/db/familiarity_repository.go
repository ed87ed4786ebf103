package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/battlecore/internal/model"
)

// FamiliarityRepository persists the familiarity a combatant carries
// between battles. It implements combat.FamiliarityStore.
type FamiliarityRepository struct {
	db *pgxpool.Pool
}

// NewFamiliarityRepository creates a new FamiliarityRepository.
func NewFamiliarityRepository(db *pgxpool.Pool) *FamiliarityRepository {
	return &FamiliarityRepository{db: db}
}

// LoadFamiliarity loads the persistent familiarity of a combatant.
// A combatant without rows gets an empty map.
func (r *FamiliarityRepository) LoadFamiliarity(ctx context.Context, combatantID string) (map[model.Impression]float64, error) {
	query := `
		SELECT impression, value
		FROM combatant_familiarity
		WHERE combatant_id = $1
	`

	rows, err := r.db.Query(ctx, query, combatantID)
	if err != nil {
		return nil, fmt.Errorf("querying familiarity for %s: %w", combatantID, err)
	}
	defer rows.Close()

	result := make(map[model.Impression]float64)
	for rows.Next() {
		var (
			imp   string
			value float64
		)
		if err := rows.Scan(&imp, &value); err != nil {
			return nil, fmt.Errorf("scanning familiarity row: %w", err)
		}
		result[model.Impression(imp)] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating familiarity rows: %w", err)
	}

	return result, nil
}

// SaveFamiliarity replaces the persistent familiarity of a combatant in a
// single transaction. Non-positive values are not stored.
func (r *FamiliarityRepository) SaveFamiliarity(ctx context.Context, combatantID string, values map[model.Impression]float64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for %s: %w", combatantID, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.Error("rollback failed", "combatant", combatantID, "error", err)
		}
	}()

	if err := r.SaveTx(ctx, tx, combatantID, values); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit familiarity for %s: %w", combatantID, err)
	}
	return nil
}

// SaveTx saves familiarity within a transaction (full replace).
func (r *FamiliarityRepository) SaveTx(ctx context.Context, tx pgx.Tx, combatantID string, values map[model.Impression]float64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM combatant_familiarity WHERE combatant_id = $1`, combatantID); err != nil {
		return fmt.Errorf("deleting old familiarity for %s: %w", combatantID, err)
	}

	rows := make([][]any, 0, len(values))
	for imp, v := range values {
		if v > 0 {
			rows = append(rows, []any{combatantID, string(imp), v})
		}
	}
	if len(rows) == 0 {
		return nil
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"combatant_familiarity"},
		[]string{"combatant_id", "impression", "value"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting familiarity for %s: %w", combatantID, err)
	}
	return nil
}
