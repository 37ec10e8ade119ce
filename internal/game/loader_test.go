package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/pool"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func layeredDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	p := Paths{BaseDir: dir}
	writeFile(t, p.DefaultPath(), `
version: "1"
pool:
  min_bet: 1000000
  max_bet: 1000000000
  house_edge_bps: 300
`)
	writeFile(t, p.GamePath(pool.Coinflip), `
pool:
  house_edge_bps: 200
  platform_fee: 5000
`)
	writeFile(t, p.PoolPath(pool.Coinflip, "flip-high"), `
version: "2"
pool:
  min_bet: 50000000
  cooldown_seconds: 30
`)
	return dir
}

func TestLoaderMergesLayersInOrder(t *testing.T) {
	l := NewLoader(layeredDir(t))
	raw, cfg, err := l.Resolve(pool.Coinflip, "flip-high", Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	want := pool.Config{MinBet: 50_000_000, MaxBet: 1_000_000_000, HouseEdgeBps: 200, PlatformFee: 5000, CooldownSeconds: 30}
	if cfg != want {
		t.Fatalf("Resolve = %+v, want %+v", cfg, want)
	}
	if raw.Version != "2" {
		t.Fatalf("expected pool layer version to win, got %q", raw.Version)
	}
}

func TestLoaderVariantWithoutPoolFile(t *testing.T) {
	l := NewLoader(layeredDir(t))
	_, cfg, err := l.Resolve(pool.Crash, "room", Overrides{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HouseEdgeBps != 300 || cfg.MinBet != 1_000_000 || cfg.PlatformFee != 0 {
		t.Fatalf("expected defaults only, got %+v", cfg)
	}
}

func TestOverridesApplyLast(t *testing.T) {
	l := NewLoader(layeredDir(t))
	edge := uint16(0)
	_, cfg, err := l.Resolve(pool.Coinflip, "flip-high", Overrides{HouseEdgeBps: &edge})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HouseEdgeBps != 0 || cfg.MinBet != 50_000_000 {
		t.Fatalf("expected explicit zero edge override, got %+v", cfg)
	}
}

func TestLoaderCacheAndInvalidate(t *testing.T) {
	dir := layeredDir(t)
	l := NewLoader(dir)
	if _, _, err := l.Resolve(pool.Coinflip, "", Overrides{}); err != nil {
		t.Fatal(err)
	}
	writeFile(t, Paths{BaseDir: dir}.GamePath(pool.Coinflip), "pool:\n  house_edge_bps: 900\n")

	_, cfg, _ := l.Resolve(pool.Coinflip, "", Overrides{})
	if cfg.HouseEdgeBps != 200 {
		t.Fatalf("expected cached edge 200, got %d", cfg.HouseEdgeBps)
	}
	l.Invalidate()
	_, cfg, _ = l.Resolve(pool.Coinflip, "", Overrides{})
	if cfg.HouseEdgeBps != 900 {
		t.Fatalf("expected reloaded edge 900, got %d", cfg.HouseEdgeBps)
	}
}

func TestLoaderRejectsBadLayers(t *testing.T) {
	dir := layeredDir(t)
	p := Paths{BaseDir: dir}
	writeFile(t, p.PoolPath(pool.Coinflip, "broken"), "pool:\n  house_edge_bps: 10000\n")
	writeFile(t, p.PoolPath(pool.Coinflip, "inverted"), "pool:\n  min_bet: 2000000000\n")

	l := NewLoader(dir)
	if _, _, err := l.Resolve(pool.Coinflip, "broken", Overrides{}); apperr.CodeOf(err) != apperr.CodeInvalidConfig {
		t.Fatalf("expected invalid edge to be rejected, got %v", err)
	}
	if _, _, err := l.Resolve(pool.Coinflip, "inverted", Overrides{}); apperr.CodeOf(err) != apperr.CodeInvalidConfig {
		t.Fatalf("expected min above max to be rejected, got %v", err)
	}
	if _, _, err := l.Resolve("roulette", "", Overrides{}); apperr.CodeOf(err) != apperr.CodeInvalidConfig {
		t.Fatalf("expected unknown variant to be rejected, got %v", err)
	}
}

func TestNormalizeRequiresBetBounds(t *testing.T) {
	if _, err := Normalize(RawConfig{}); apperr.CodeOf(err) != apperr.CodeInvalidConfig {
		t.Fatalf("expected missing bounds to be rejected, got %v", err)
	}
	l := NewLoader(t.TempDir())
	if _, _, err := l.Resolve(pool.Jackpot, "", Overrides{}); apperr.CodeOf(err) != apperr.CodeInvalidConfig {
		t.Fatalf("expected empty config dir to fail normalization, got %v", err)
	}
}
