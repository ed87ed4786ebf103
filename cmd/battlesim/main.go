package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/battlecore/internal/config"
	"github.com/udisondev/battlecore/internal/data"
	"github.com/udisondev/battlecore/internal/game/combat"
	"github.com/udisondev/battlecore/internal/rng"
)

const BattleConfigPath = "config/battle.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := BattleConfigPath
	if p := os.Getenv("BATTLE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadBattle(cfgPath)
	if err != nil {
		return fmt.Errorf("loading battle config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("battlesim starting",
		"log_level", cfg.LogLevel,
		"seed", cfg.Seed,
		"rounds", cfg.Rounds,
		"storage", cfg.Storage.Driver)

	reg, err := data.Load()
	if err != nil {
		return fmt.Errorf("loading tables: %w", err)
	}
	roster, err := data.LoadRoster()
	if err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer closeStore()

	squads := make(map[string]data.Squad)
	var squadIDs []string
	for _, sq := range roster.Squads() {
		squads[sq.ID] = sq
		squadIDs = append(squadIDs, sq.ID)
	}
	pairs := pairings(squadIDs)
	results := make([]*battleResult, len(pairs))
	root := rng.New(cfg.Seed)
	rules := combatRules(cfg.Rules)

	// Battles are independent: fresh combatants and a derived RNG stream each.
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range pairs {
		g.Go(func() error {
			a, err := newSquad(roster, reg, squads[p[0]])
			if err != nil {
				return err
			}
			b, err := newSquad(roster, reg, squads[p[1]])
			if err != nil {
				return err
			}
			if err := combat.BeginBattle(gctx, store, append(a.combatants(), b.combatants()...)...); err != nil {
				return err
			}

			id := fmt.Sprintf("%d/%s-vs-%s", cfg.Seed, a.id, b.id)
			src := root.Derive(id)
			mgr := combat.NewManager(reg, reg, reg, rules, src)
			res, err := runBattle(gctx, mgr, src, a, b, cfg.Rounds)
			if err != nil {
				return fmt.Errorf("battle %s: %w", id, err)
			}
			res.summary.ID = id
			res.summary.Seed = cfg.Seed
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Persist sequentially: a combatant fighting several battles keeps the
	// familiarity of its last one.
	for _, res := range results {
		mgr := combat.NewManager(reg, reg, reg, rules, root)
		if err := mgr.EndBattle(ctx, store, append(res.a.combatants(), res.b.combatants()...)...); err != nil {
			return fmt.Errorf("ending battle %s: %w", res.summary.ID, err)
		}
		if store != nil {
			if err := store.RecordBattle(ctx, res.summary); err != nil {
				return fmt.Errorf("recording battle %s: %w", res.summary.ID, err)
			}
		}
		slog.Info("battle finished",
			"battle", res.summary.ID,
			"winner", res.summary.WinnerID,
			"rounds", res.summary.Rounds,
			"reactions", res.summary.Reactions,
			"interrupts", res.stats.interrupts,
			"counters", res.stats.counters,
			"broken", res.summary.Broken)
	}
	return nil
}

// pairings returns every unordered pair of ids in order.
func pairings(ids []string) [][2]string {
	var out [][2]string
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			out = append(out, [2]string{ids[i], ids[j]})
		}
	}
	return out
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
