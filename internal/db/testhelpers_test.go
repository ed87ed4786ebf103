package db

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// setupTestDB подключается к PostgreSQL из BATTLE_TEST_PG_DSN и применяет миграции.
// Без переменной окружения тест пропускается.
func setupTestDB(tb testing.TB) *pgxpool.Pool {
	tb.Helper()

	dsn := os.Getenv("BATTLE_TEST_PG_DSN")
	if dsn == "" {
		tb.Skip("BATTLE_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	require.NoError(tb, RunMigrations(ctx, dsn))

	database, err := New(ctx, dsn)
	require.NoError(tb, err)
	tb.Cleanup(database.Close)

	// Очищаем таблицы для изоляции между тестами
	for _, query := range []string{
		"TRUNCATE combatant_familiarity",
		"TRUNCATE battles",
	} {
		if _, err := database.Pool().Exec(ctx, query); err != nil {
			tb.Logf("cleanup warning: %v", err) // non-fatal
		}
	}
	return database.Pool()
}
