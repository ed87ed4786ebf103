package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/battlecore/internal/model"
)

// BattleRepository stores battle summaries.
type BattleRepository struct {
	db *pgxpool.Pool
}

// NewBattleRepository creates a new BattleRepository.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

// RecordBattle inserts or replaces a battle summary.
func (r *BattleRepository) RecordBattle(ctx context.Context, s model.BattleSummary) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO battles (id, seed, rounds, winner_id, reactions, broken)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		   seed = EXCLUDED.seed,
		   rounds = EXCLUDED.rounds,
		   winner_id = EXCLUDED.winner_id,
		   reactions = EXCLUDED.reactions,
		   broken = EXCLUDED.broken`,
		s.ID, int64(s.Seed), s.Rounds, s.WinnerID, s.Reactions, s.Broken,
	)
	if err != nil {
		return fmt.Errorf("recording battle %s: %w", s.ID, err)
	}
	return nil
}

// Battle loads a battle summary by ID.
// Returns nil, nil if the battle does not exist.
func (r *BattleRepository) Battle(ctx context.Context, id string) (*model.BattleSummary, error) {
	var (
		s    model.BattleSummary
		seed int64
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, seed, rounds, winner_id, reactions, broken
		 FROM battles WHERE id = $1`, id,
	).Scan(&s.ID, &seed, &s.Rounds, &s.WinnerID, &s.Reactions, &s.Broken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying battle %s: %w", id, err)
	}
	s.Seed = uint64(seed)
	return &s, nil
}
