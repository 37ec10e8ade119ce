package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/event"
	"github.com/xtding233/casino-core/internal/outcome"
	"github.com/xtding233/casino-core/internal/pool"
	"github.com/xtding233/casino-core/internal/round"
	"github.com/xtding233/casino-core/internal/store"
	boltstore "github.com/xtding233/casino-core/internal/store/bbolt"
	"github.com/xtding233/casino-core/internal/token"
)

var crashConfig = pool.Config{MinBet: 1_000_000, MaxBet: 1_000_000_000}

var jackpotConfig = pool.Config{MinBet: 100, MaxBet: 1_000_000, HouseEdgeBps: 500}

// jackpotSeed has the little-endian word 1003, which picks ticket 3 of 10.
func jackpotSeed() outcome.Seed {
	var s outcome.Seed
	s[0], s[1] = 0xEB, 0x03
	return s
}

func TestStartRoundGuards(t *testing.T) {
	h := newHarness(t, store.NewMemory())
	h.setup("flip", pool.Coinflip, crashConfig, 0)
	h.must("admin", InitializeGame{Pool: "room", Variant: pool.Crash, Config: crashConfig})

	h.reject("admin", StartRound{Pool: "flip"}, apperr.CodeWrongVariant)
	h.reject("mallory", StartRound{Pool: "room"}, apperr.CodeUnauthorized)
	h.reject("alice", JoinCrash{Pool: "room", Amount: 1_000_000}, apperr.CodeNotFound)

	res := h.must("admin", StartRound{Pool: "room"})
	if res.Ref != "1" || res.Events[0].Type != event.RoundStarted || res.Events[0].Uint("round") != 1 {
		t.Fatalf("unexpected start %+v", res)
	}
	r, err := h.e.Round(h.ctx, "room", 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Phase != round.Betting || !r.BettingEndsAt.Equal(epoch.Add(round.DefaultBettingWindow)) {
		t.Fatalf("unexpected round %+v", r)
	}
	if res := h.must("admin", StartRound{Pool: "room"}); res.Ref != "2" {
		t.Fatalf("expected round 2, got %q", res.Ref)
	}
	if got := h.pool("room").CurrentRound; got != 2 {
		t.Fatalf("expected current round 2, got %d", got)
	}
}

func TestCrashRoundLifecycle(t *testing.T) {
	h := newHarness(t, store.NewMemory())
	h.setup("room", pool.Crash, crashConfig, 1_000_000_000)
	h.player("alice")
	h.player("bob")
	h.player("carol")

	h.must("admin", StartRound{Pool: "room"})
	h.must("alice", JoinCrash{Pool: "room", Amount: 10_000_000})
	h.must("bob", JoinCrash{Pool: "room", Amount: 20_000_000})
	h.must("alice", JoinCrash{Pool: "room", Amount: 5_000_000})
	h.reject("carol", JoinCrash{Pool: "room", Amount: 999_999}, apperr.CodeBetTooSmall)

	r, err := h.e.Round(h.ctx, "room", 1)
	if err != nil {
		t.Fatal(err)
	}
	if r.PoolSize != 35_000_000 || r.ParticipantCount != 2 {
		t.Fatalf("expected pool size 35000000 over 2 players, got %+v", r)
	}
	h.reject("alice", Cashout{Pool: "room"}, apperr.CodeRoundNotBetting)

	h.reject("alice", ActivateRound{Pool: "room"}, apperr.CodeUnauthorized)
	if res := h.must("admin", ActivateRound{Pool: "room"}); res.Events[0].Type != event.RoundActivated {
		t.Fatalf("unexpected activation %+v", res)
	}
	h.reject("carol", JoinCrash{Pool: "room", Amount: 1_000_000}, apperr.CodeRoundNotBetting)

	h.advance(25 * time.Second)
	res := h.must("alice", Cashout{Pool: "room"})
	if res.Payout != 18_750_000 {
		t.Fatalf("expected cash-out 18750000 at 1.25x, got %d", res.Payout)
	}
	ev := res.Events[0]
	if ev.Type != event.CashedOut || ev.Text("multiplier") != "1.25x" || ev.Uint("multiplier_bps") != 12500 {
		t.Fatalf("unexpected cash-out event %+v", ev)
	}
	h.reject("alice", Cashout{Pool: "room"}, apperr.CodeAlreadyCashedOut)
	h.reject("carol", Cashout{Pool: "room"}, apperr.CodeNotInRound)

	seed := fillSeed(7)
	h.reject("bob", ResolveRound{Pool: "room", Seed: seed}, apperr.CodeUnauthorized)
	h.reject("oracle", ResolveRound{Pool: "room"}, apperr.CodeInvalidSeed)
	res = h.must("oracle", ResolveRound{Pool: "room", Seed: seed})
	want := outcome.CrashPoint(seed, outcome.DefaultCrashEdgeBps)
	ended := res.Events[0]
	if ended.Type != event.RoundEnded || ended.Uint("crash_point_bps") != uint64(want) {
		t.Fatalf("unexpected end event %+v", ended)
	}
	h.reject("oracle", ResolveRound{Pool: "room", Seed: seed}, apperr.CodeRoundEnded)
	h.reject("bob", Cashout{Pool: "room"}, apperr.CodeRoundNotBetting)

	r, _ = h.e.Round(h.ctx, "room", 1)
	if r.Phase != round.Ended || r.CrashPointBps != want || r.Seed != seed {
		t.Fatalf("unexpected ended round %+v", r)
	}
	bob, err := h.e.Participant(h.ctx, "room", 1, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if bob.CashedOut || bob.Payout != 0 {
		t.Fatalf("expected bob to lose the stake, got %+v", bob)
	}
	if got := h.pool("room").EscrowBalance; got != 1_000_000_000+35_000_000-18_750_000 {
		t.Fatalf("unexpected escrow %d", got)
	}
	if got := h.balance(token.Chip, "alice"); got != 1_000_000_000-15_000_000+18_750_000 {
		t.Fatalf("unexpected alice chips %d", got)
	}
}

func TestCrashCashoutNeedsEscrow(t *testing.T) {
	h := newHarness(t, store.NewMemory())
	h.setup("room", pool.Crash, crashConfig, 0)
	h.player("alice")

	h.must("admin", StartRound{Pool: "room"})
	h.must("alice", JoinCrash{Pool: "room", Amount: 10_000_000})
	h.must("admin", ActivateRound{Pool: "room"})
	h.advance(50 * time.Second)
	// 1.5x needs more than the stake alone can cover.
	h.reject("alice", Cashout{Pool: "room"}, apperr.CodeInsufficientEscrow)

	part, err := h.e.Participant(h.ctx, "room", 0, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if part.CashedOut {
		t.Fatalf("expected rejected cash-out to roll back, got %+v", part)
	}
}

func TestJackpotRoundPaysWinner(t *testing.T) {
	h := newHarness(t, store.NewMemory())
	h.setup("pot", pool.Jackpot, jackpotConfig, 0)
	h.player("alice")
	h.player("bob")

	h.must("admin", StartRound{Pool: "pot"})
	h.reject("alice", EnterJackpot{Pool: "pot", Tickets: 0}, apperr.CodeBetTooSmall)
	h.must("alice", EnterJackpot{Pool: "pot", Tickets: 3})
	h.must("bob", EnterJackpot{Pool: "pot", Tickets: 7})
	h.reject("admin", ActivateRound{Pool: "pot"}, apperr.CodeWrongVariant)

	if p := h.pool("pot"); p.ReservedEscrow != 1000 || p.EscrowBalance != 1000 {
		t.Fatalf("expected the pot reserved in escrow, got %+v", p)
	}

	res := h.must("oracle", ResolveRound{Pool: "pot", Seed: jackpotSeed()})
	if res.Payout != 950 {
		t.Fatalf("expected payout 950, got %d", res.Payout)
	}
	won := res.Events[len(res.Events)-1]
	if won.Type != event.JackpotWon || won.Text("winner") != "bob" || won.Uint("ticket") != 3 || won.Uint("pool_size") != 1000 {
		t.Fatalf("unexpected jackpot event %+v", won)
	}

	r, _ := h.e.Round(h.ctx, "pot", 0)
	if r.Winner != "bob" || r.WinnerPayout != 950 || r.Result[0] != 1 || r.Phase != round.Ended {
		t.Fatalf("unexpected round %+v", r)
	}
	if p := h.pool("pot"); p.ReservedEscrow != 0 || p.EscrowBalance != 50 {
		t.Fatalf("expected house cut left in escrow, got %+v", p)
	}
	if got := h.balance(token.Chip, "bob"); got != 1_000_000_000-700+950 {
		t.Fatalf("unexpected bob chips %d", got)
	}
	bob, _ := h.e.Participant(h.ctx, "pot", 0, "bob")
	if bob.Payout != 950 || bob.Tickets != 7 {
		t.Fatalf("unexpected participant %+v", bob)
	}
	h.reject("oracle", ResolveRound{Pool: "pot", Seed: jackpotSeed()}, apperr.CodeRoundEnded)
	h.reject("alice", EnterJackpot{Pool: "pot", Tickets: 1}, apperr.CodeRoundNotBetting)
}

func TestEmptyJackpotHasNoWinner(t *testing.T) {
	h := newHarness(t, store.NewMemory())
	h.setup("pot", pool.Jackpot, jackpotConfig, 0)
	h.must("admin", StartRound{Pool: "pot"})

	res := h.must("oracle", ResolveRound{Pool: "pot", Seed: jackpotSeed()})
	if res.Payout != 0 || len(res.Events) != 1 || res.Events[0].Text("result") != "no winner" {
		t.Fatalf("unexpected empty resolution %+v", res)
	}
}

func TestJackpotOnBoltStore(t *testing.T) {
	st, err := boltstore.Open(filepath.Join(t.TempDir(), "casino.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	h := newHarness(t, st)
	h.setup("pot", pool.Jackpot, jackpotConfig, 0)
	h.player("alice")
	h.player("bob")
	h.must("admin", StartRound{Pool: "pot"})
	h.must("alice", EnterJackpot{Pool: "pot", Tickets: 3})
	h.must("bob", EnterJackpot{Pool: "pot", Tickets: 7})
	h.must("oracle", ResolveRound{Pool: "pot", Seed: jackpotSeed()})

	if got := h.balance(token.Chip, "bob"); got != 1_000_000_000-700+950 {
		t.Fatalf("unexpected bob chips %d", got)
	}
	if got := len(h.rec.OfType(event.WagerPlaced)); got != 2 {
		t.Fatalf("expected 2 placements, got %d", got)
	}
}

func TestCashoutFromEarlierActiveRound(t *testing.T) {
	h := newHarness(t, store.NewMemory())
	h.setup("room", pool.Crash, crashConfig, 1_000_000_000)
	h.player("alice")

	h.must("admin", StartRound{Pool: "room"})
	h.must("alice", JoinCrash{Pool: "room", Amount: 10_000_000})
	h.must("admin", ActivateRound{Pool: "room"})
	h.must("admin", StartRound{Pool: "room"})
	h.advance(10 * time.Second)

	h.reject("alice", Cashout{Pool: "room"}, apperr.CodeNotInRound)
	res := h.must("alice", Cashout{Pool: "room", Round: 1})
	if res.Ref != "1" || res.Payout != 11_000_000 {
		t.Fatalf("expected 11000000 from round 1 at 1.1x, got %+v", res)
	}
	part, err := h.e.Participant(h.ctx, "room", 1, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if !part.CashedOut || part.CashoutMultiplierBps != 11000 {
		t.Fatalf("unexpected participant %+v", part)
	}
	h.reject("alice", Cashout{Pool: "room", Round: 1}, apperr.CodeAlreadyCashedOut)
	h.reject("alice", Cashout{Pool: "room", Round: 9}, apperr.CodeNotFound)
}
