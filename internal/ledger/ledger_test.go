package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/gacha"
	"github.com/xtding233/casino-core/internal/outcome"
	"github.com/xtding233/casino-core/internal/pool"
)

var (
	placedAt   = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resolvedAt = placedAt.Add(5 * time.Second)
)

func flipPool(t *testing.T) *pool.GamePool {
	t.Helper()
	p, err := pool.New("flip", pool.Coinflip, "admin", "oracle",
		pool.Config{MinBet: 1_000_000, MaxBet: 1_000_000_000, HouseEdgeBps: 200, PlatformFee: 5000}, placedAt)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// headsSeed has an even first byte and is not the zero sentinel.
func headsSeed() outcome.Seed {
	var s outcome.Seed
	s[31] = 1
	return s
}

func tailsSeed() outcome.Seed {
	var s outcome.Seed
	s[0] = 1
	return s
}

func TestPlaceStartsPending(t *testing.T) {
	w := Place("w1", flipPool(t), "alice", 10_000_000, uint8(outcome.Heads), 19_600_000, placedAt)
	if !w.IsPending() || !w.Seed.IsZero() || w.Payout != 0 {
		t.Fatalf("unexpected new wager %+v", w)
	}
	if w.Fee != 5000 || w.Variant != pool.Coinflip {
		t.Fatalf("expected fee and variant copied from pool, got %+v", w)
	}
}

func TestResolveCoinflipWin(t *testing.T) {
	w := Place("w1", flipPool(t), "alice", 10_000_000, uint8(outcome.Heads), 0, placedAt)
	amount, err := w.ResolveCoinflip(headsSeed(), 200, resolvedAt)
	if err != nil {
		t.Fatal(err)
	}
	if amount != 19_600_000 || w.Payout != 19_600_000 || w.Outcome != Won {
		t.Fatalf("expected win of 19600000, got amount=%d wager=%+v", amount, w)
	}
	if w.Seed != headsSeed() || !w.ResolvedAt.Equal(resolvedAt) {
		t.Fatalf("seed/time not recorded: %+v", w)
	}
}

func TestResolveCoinflipLoss(t *testing.T) {
	w := Place("w1", flipPool(t), "alice", 10_000_000, uint8(outcome.Heads), 0, placedAt)
	amount, err := w.ResolveCoinflip(tailsSeed(), 200, resolvedAt)
	if err != nil {
		t.Fatal(err)
	}
	if amount != 0 || w.Payout != 0 || w.Outcome != Lost {
		t.Fatalf("expected loss, got amount=%d wager=%+v", amount, w)
	}
}

func TestResolveTwiceIsRejectedAndLeavesState(t *testing.T) {
	w := Place("w1", flipPool(t), "alice", 10_000_000, uint8(outcome.Tails), 0, placedAt)
	if _, err := w.ResolveCoinflip(tailsSeed(), 200, resolvedAt); err != nil {
		t.Fatal(err)
	}
	before := *w

	_, err := w.ResolveCoinflip(headsSeed(), 200, resolvedAt.Add(time.Minute))
	if !errors.Is(err, apperr.ErrAlreadyResolved) {
		t.Fatalf("expected already resolved, got %v", err)
	}
	if *w != before {
		t.Fatalf("wager mutated by rejected resolution: %+v vs %+v", *w, before)
	}
}

func TestResolveRejectsZeroSeed(t *testing.T) {
	w := Place("w1", flipPool(t), "alice", 10_000_000, 0, 0, placedAt)
	if _, err := w.ResolveCoinflip(outcome.Seed{}, 200, resolvedAt); !errors.Is(err, apperr.ErrInvalidSeed) {
		t.Fatalf("expected invalid seed, got %v", err)
	}
	if !w.IsPending() {
		t.Fatalf("wager left pending state on rejected seed")
	}
}

func TestGachaPullResolve(t *testing.T) {
	const stake = 1_000_000
	w := Place("w2", flipPool(t), "bob", 10*stake, 10, 0, placedAt)
	g, err := NewGachaPull("g1", w, 10, stake)
	if err != nil {
		t.Fatal(err)
	}

	var seed outcome.Seed
	for i := range seed {
		seed[i] = 200
	}
	amount, err := g.Resolve(w, seed, resolvedAt)
	if err != nil {
		t.Fatal(err)
	}
	if want := uint64(10 * stake * 2); amount != want || g.TotalPayout != want || w.Payout != want {
		t.Fatalf("expected payout %d, got amount=%d pull=%d wager=%d", want, amount, g.TotalPayout, w.Payout)
	}
	if len(g.Tiers) != g.PullCount || !g.Resolved || w.Outcome != Won {
		t.Fatalf("unexpected resolved state pull=%+v wager=%+v", g, w)
	}
	for i, tier := range g.Tiers {
		if tier != gacha.Rare {
			t.Fatalf("pull %d: expected rare, got %v", i, tier)
		}
	}

	if _, err := g.Resolve(w, seed, resolvedAt); !errors.Is(err, apperr.ErrAlreadyResolved) {
		t.Fatalf("expected already resolved, got %v", err)
	}
}

func TestNewGachaPullValidatesCount(t *testing.T) {
	w := Place("w3", flipPool(t), "bob", 1, 0, 0, placedAt)
	if _, err := NewGachaPull("g", w, 11, 1); !errors.Is(err, apperr.ErrInvalidPullCount) {
		t.Fatalf("expected invalid pull count, got %v", err)
	}
}

func TestCooldown(t *testing.T) {
	var c Cooldown
	if err := c.Check(time.Minute, placedAt); err != nil {
		t.Fatalf("first play must pass, got %v", err)
	}
	c.LastPlayAt = placedAt
	if err := c.Check(time.Minute, placedAt.Add(59*time.Second)); !errors.Is(err, apperr.ErrCooldownActive) {
		t.Fatalf("expected cooldown, got %v", err)
	}
	if err := c.Check(time.Minute, placedAt.Add(time.Minute)); err != nil {
		t.Fatalf("expected cooldown to elapse, got %v", err)
	}
	if err := c.Check(0, placedAt); err != nil {
		t.Fatalf("zero window disables cooldown, got %v", err)
	}
}
