// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/xtding233/casino-core/internal/engine"
	"github.com/xtding233/casino-core/internal/round"
)

// Config holds everything casinoctl needs before it can build an engine.
type Config struct {
	// StorePath is the bbolt file. Empty keeps state in memory.
	StorePath string `env:"CASINO_STORE_PATH"`
	// Oracle is the default random-value authority for new pools.
	Oracle string `env:"CASINO_ORACLE" envDefault:"oracle"`
	// ConfigDir holds the games/ YAML tree.
	ConfigDir string `env:"CASINO_CONFIG_DIR" envDefault:"config"`
	// EventsPath receives JSONL events. Empty writes to stdout.
	EventsPath string `env:"CASINO_EVENTS_PATH"`
	LogLevel   string `env:"CASINO_LOG_LEVEL" envDefault:"info"`

	BettingWindow  time.Duration `env:"CASINO_BETTING_WINDOW" envDefault:"10s"`
	CrashEdgeBps   uint16        `env:"CASINO_CRASH_EDGE_BPS" envDefault:"300"`
	CashoutBaseBps uint32        `env:"CASINO_CASHOUT_BASE_BPS" envDefault:"10000"`
	CashoutStepBps uint32        `env:"CASINO_CASHOUT_STEP_BPS" envDefault:"100"`
	CashoutCapBps  uint32        `env:"CASINO_CASHOUT_CAP_BPS" envDefault:"0"`
}

// Load reads the given dotenv files, skipping ones that do not exist, and
// then parses the environment. Variables already set take precedence over
// the files.
func Load(dotenv ...string) (Config, error) {
	for _, path := range dotenv {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Oracle == "" {
		return Config{}, fmt.Errorf("CASINO_ORACLE must not be empty")
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Policies converts the round settings into engine policies.
func (c Config) Policies() engine.Policies {
	return engine.Policies{
		BettingWindow:     c.BettingWindow,
		CrashHouseEdgeBps: c.CrashEdgeBps,
		Cashout: round.ElapsedMultiplier{
			BaseBps: c.CashoutBaseBps,
			StepBps: c.CashoutStepBps,
			CapBps:  c.CashoutCapBps,
		},
	}
}

// Logger builds a logrus logger at the configured level.
func (c Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetOutput(os.Stderr)
	return l, nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
