package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xtding233/casino-core/internal/outcome"
	"github.com/xtding233/casino-core/internal/round"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Oracle != "oracle" || cfg.StorePath != "" || cfg.BettingWindow != 10*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	p := cfg.Policies()
	if p.CrashHouseEdgeBps != outcome.DefaultCrashEdgeBps {
		t.Fatalf("expected default crash edge, got %d", p.CrashHouseEdgeBps)
	}
	if p.Cashout != (round.ElapsedMultiplier{BaseBps: 10000, StepBps: 100}) {
		t.Fatalf("unexpected cash-out policy %+v", p.Cashout)
	}
}

func TestLoadEnvOverridesDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	body := "CASINO_STORE_PATH=/var/lib/casino.db\nCASINO_CRASH_EDGE_BPS=0\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CASINO_STORE_PATH", "/tmp/override.db")
	t.Setenv("CASINO_BETTING_WINDOW", "30s")

	cfg, err := Load(path)
	// godotenv does not unset what it loaded.
	t.Cleanup(func() { os.Unsetenv("CASINO_CRASH_EDGE_BPS") })
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorePath != "/tmp/override.db" {
		t.Fatalf("expected environment to win, got %q", cfg.StorePath)
	}
	if cfg.CrashEdgeBps != 0 || cfg.BettingWindow != 30*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("CASINO_CRASH_EDGE_BPS", "lots")
	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestLogger(t *testing.T) {
	cfg := Config{LogLevel: "debug"}
	l, err := cfg.Logger()
	if err != nil {
		t.Fatal(err)
	}
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", l.GetLevel())
	}
	if _, err := (Config{LogLevel: "loud"}).Logger(); err == nil {
		t.Fatal("expected unknown level to fail")
	}
}
