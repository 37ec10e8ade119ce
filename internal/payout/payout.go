// Package payout implements the basis-point fixed-point math shared by every
// game. All products of two uint64 values are formed in 128 bits before the
// division, so a result is either exact (truncated) or ErrOverflow.
package payout

import (
	"math/bits"

	"github.com/shopspring/decimal"

	"github.com/xtding233/casino-core/internal/apperr"
)

// BPS is 100% in basis points.
const BPS = 10000

// WinMultiplierBps is the even-money multiplier after house edge:
// 20000 - 2*edge. A 2% edge yields 19600 (1.96x).
func WinMultiplierBps(houseEdgeBps uint16) uint64 {
	return 2*BPS - 2*uint64(houseEdgeBps)
}

// MulDiv returns a*b/d without intermediate overflow.
func MulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, apperr.ErrOverflow.With("op", "div")
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, apperr.ErrOverflow.With("op", "mul")
	}
	q, _ := bits.Div64(hi, lo, d)
	return q, nil
}

// ApplyBps returns amount * bps / 10000.
func ApplyBps(amount, bps uint64) (uint64, error) {
	return MulDiv(amount, bps, BPS)
}

// EvenMoney is the coinflip/crash win payout for a stake.
func EvenMoney(stake uint64, houseEdgeBps uint16) (uint64, error) {
	return ApplyBps(stake, WinMultiplierBps(houseEdgeBps))
}

// Jackpot is the winner's share of a pool: pool - pool*edge/10000.
func Jackpot(poolSize uint64, houseEdgeBps uint16) (uint64, error) {
	cut, err := ApplyBps(poolSize, uint64(houseEdgeBps))
	if err != nil {
		return 0, err
	}
	return poolSize - cut, nil
}

// Add is overflow-checked addition.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, apperr.ErrOverflow.With("op", "add")
	}
	return sum, nil
}

// Sub is underflow-checked subtraction.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, apperr.ErrOverflow.With("op", "sub")
	}
	return diff, nil
}

// Mul is overflow-checked multiplication.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, apperr.ErrOverflow.With("op", "mul")
	}
	return lo, nil
}

// FormatMultiplier renders a basis-point multiplier as "1.96x".
func FormatMultiplier(bps uint64) string {
	return decimal.New(int64(bps), -4).String() + "x"
}
