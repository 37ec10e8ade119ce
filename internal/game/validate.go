package game

import (
	"fmt"
	"strings"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/payout"
	"github.com/xtding233/casino-core/internal/pool"
)

// ValidateRaw checks the fields that are present. Missing fields are only an
// error once the layers are normalized.
func ValidateRaw(cfg RawConfig) error {
	var errs []string
	p := cfg.Pool

	if p.MinBet != nil && *p.MinBet == 0 {
		errs = append(errs, "pool.min_bet must be >= 1")
	}
	if p.MinBet != nil && p.MaxBet != nil && *p.MinBet > *p.MaxBet {
		errs = append(errs, "pool.min_bet must not exceed pool.max_bet")
	}
	if p.HouseEdgeBps != nil && uint64(*p.HouseEdgeBps) >= payout.BPS {
		errs = append(errs, fmt.Sprintf("pool.house_edge_bps must be < %d", payout.BPS))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", apperr.ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// Normalize turns a merged RawConfig into a pool.Config. Bet bounds are
// required; edge, fee and cooldown default to zero.
func Normalize(cfg RawConfig) (pool.Config, error) {
	if err := ValidateRaw(cfg); err != nil {
		return pool.Config{}, err
	}
	var missing []string
	if cfg.Pool.MinBet == nil {
		missing = append(missing, "pool.min_bet")
	}
	if cfg.Pool.MaxBet == nil {
		missing = append(missing, "pool.max_bet")
	}
	if len(missing) > 0 {
		return pool.Config{}, fmt.Errorf("%w: missing %s", apperr.ErrInvalidConfig, strings.Join(missing, ", "))
	}

	out := pool.Config{MinBet: *cfg.Pool.MinBet, MaxBet: *cfg.Pool.MaxBet}
	if cfg.Pool.HouseEdgeBps != nil {
		out.HouseEdgeBps = *cfg.Pool.HouseEdgeBps
	}
	if cfg.Pool.PlatformFee != nil {
		out.PlatformFee = *cfg.Pool.PlatformFee
	}
	if cfg.Pool.CooldownSeconds != nil {
		out.CooldownSeconds = *cfg.Pool.CooldownSeconds
	}
	if err := out.Validate(); err != nil {
		return pool.Config{}, err
	}
	return out, nil
}
