package payout

import (
	"errors"
	"math"
	"testing"

	"github.com/xtding233/casino-core/internal/apperr"
)

func TestEvenMoneyWithTwoPercentEdge(t *testing.T) {
	if got := WinMultiplierBps(200); got != 19600 {
		t.Fatalf("expected multiplier 19600, got %d", got)
	}
	got, err := EvenMoney(10_000_000, 200)
	if err != nil {
		t.Fatalf("even money: %v", err)
	}
	if got != 19_600_000 {
		t.Fatalf("expected payout 19600000, got %d", got)
	}
}

func TestJackpotTakesHouseCut(t *testing.T) {
	got, err := Jackpot(1_000_000, 500)
	if err != nil {
		t.Fatalf("jackpot: %v", err)
	}
	if got != 950_000 {
		t.Fatalf("expected 950000, got %d", got)
	}
	got, err = Jackpot(0, 500)
	if err != nil || got != 0 {
		t.Fatalf("expected zero payout for empty pool, got %d err=%v", got, err)
	}
}

func TestMulDivHandlesLargeProducts(t *testing.T) {
	// the product overflows 64 bits but the quotient fits
	got, err := MulDiv(math.MaxUint64, 5000, BPS)
	if err != nil {
		t.Fatalf("muldiv: %v", err)
	}
	if got != math.MaxUint64/2 {
		t.Fatalf("expected %d, got %d", uint64(math.MaxUint64/2), got)
	}
	if _, err := ApplyBps(math.MaxUint64, 20000); !errors.Is(err, apperr.ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	if _, err := MulDiv(1, 1, 0); !errors.Is(err, apperr.ErrOverflow) {
		t.Fatalf("expected overflow on zero divisor, got %v", err)
	}
}

func TestCheckedAddSubMul(t *testing.T) {
	if _, err := Add(math.MaxUint64, 1); !errors.Is(err, apperr.ErrOverflow) {
		t.Fatalf("expected add overflow, got %v", err)
	}
	if _, err := Sub(1, 2); !errors.Is(err, apperr.ErrOverflow) {
		t.Fatalf("expected sub underflow, got %v", err)
	}
	if _, err := Mul(math.MaxUint64, 2); !errors.Is(err, apperr.ErrOverflow) {
		t.Fatalf("expected mul overflow, got %v", err)
	}
	if v, err := Mul(3, 4); err != nil || v != 12 {
		t.Fatalf("expected 12, got %d err=%v", v, err)
	}
}

func TestFormatMultiplier(t *testing.T) {
	tests := map[uint64]string{
		19600:   "1.96x",
		10000:   "1x",
		10100:   "1.01x",
		1000000: "100x",
	}
	for bps, want := range tests {
		if got := FormatMultiplier(bps); got != want {
			t.Fatalf("FormatMultiplier(%d) = %q, want %q", bps, got, want)
		}
	}
}
