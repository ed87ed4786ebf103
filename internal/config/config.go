package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Battle holds all configuration for a battle run.
type Battle struct {
	LogLevel string `yaml:"log_level" env:"BATTLE_LOG_LEVEL"`

	// Seed drives the battle RNG; the same seed replays the same battle.
	Seed   uint64 `yaml:"seed" env:"BATTLE_SEED"`
	Rounds int    `yaml:"rounds" env:"BATTLE_ROUNDS"`

	Storage Storage `yaml:"storage"`
	Rules   Rules   `yaml:"rules"`
}

// Storage selects where familiarity is persisted between battles.
type Storage struct {
	Driver     string         `yaml:"driver" env:"BATTLE_STORAGE_DRIVER"`
	SQLitePath string         `yaml:"sqlite_path" env:"BATTLE_SQLITE_PATH"`
	Database   DatabaseConfig `yaml:"database"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"BATTLE_DB_HOST"`
	Port     int    `yaml:"port" env:"BATTLE_DB_PORT"`
	User     string `yaml:"user" env:"BATTLE_DB_USER"`
	Password string `yaml:"password" env:"BATTLE_DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"BATTLE_DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"BATTLE_DB_SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Rules holds the tunable battle constants.
type Rules struct {
	OverkillBrokenRate  float64 `yaml:"overkill_broken_rate" env:"BATTLE_OVERKILL_BROKEN_RATE"`
	AdaptationCarryRate float64 `yaml:"adaptation_carry_rate" env:"BATTLE_ADAPTATION_CARRY_RATE"`
	BaseAdaptValue      float64 `yaml:"base_adapt_value" env:"BATTLE_BASE_ADAPT_VALUE"`
	GrazeMultiplier     float64 `yaml:"graze_multiplier"`
	CriticalMultiplier  float64 `yaml:"critical_multiplier"`
	TLOACap             float64 `yaml:"tloa_cap"`
	// DisturbedPassive is handed to the attacker's squad on a disturbed
	// attack; empty disables it.
	DisturbedPassive string `yaml:"disturbed_passive" env:"BATTLE_DISTURBED_PASSIVE"`
}

// DefaultRules returns the standard battle constants.
func DefaultRules() Rules {
	return Rules{
		OverkillBrokenRate:  0.5,
		AdaptationCarryRate: 0.5,
		BaseAdaptValue:      0.04,
		GrazeMultiplier:     0.5,
		CriticalMultiplier:  1.5,
		TLOACap:             0.4,
		DisturbedPassive:    "shaken",
	}
}

// DefaultBattle returns Battle config with sensible defaults.
func DefaultBattle() Battle {
	return Battle{
		LogLevel: "info",
		Seed:     1,
		Rounds:   20,
		Storage: Storage{
			Driver:     DriverNone,
			SQLitePath: "battlecore.db",
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "battlecore",
				Password: "battlecore",
				DBName:   "battlecore",
				SSLMode:  "disable",
			},
		},
		Rules: DefaultRules(),
	}
}

// LoadBattle loads battle config from a YAML file and applies environment
// overrides. If the file doesn't exist, defaults are used.
func LoadBattle(path string) (Battle, error) {
	cfg := DefaultBattle()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseEnv loads configuration overrides from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks ranges and enumerations.
func (b Battle) Validate() error {
	switch b.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", b.LogLevel)
	}
	if b.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", b.Rounds)
	}

	switch b.Storage.Driver {
	case DriverNone, DriverPostgres:
	case DriverSQLite:
		if b.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite storage requires sqlite_path")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", b.Storage.Driver)
	}

	r := b.Rules
	for name, v := range map[string]float64{
		"overkill_broken_rate":  r.OverkillBrokenRate,
		"adaptation_carry_rate": r.AdaptationCarryRate,
		"base_adapt_value":      r.BaseAdaptValue,
		"tloa_cap":              r.TLOACap,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("rule %s out of [0, 1]: %v", name, v)
		}
	}
	if r.GrazeMultiplier < 0 || r.CriticalMultiplier < 0 {
		return fmt.Errorf("hit tier multipliers must be non-negative")
	}
	return nil
}
