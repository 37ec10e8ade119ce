// Package pool holds the per-game configuration and escrow accounting shared
// by every variant.
package pool

import (
	"fmt"
	"strings"
	"time"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/payout"
)

// MaxSlugLen bounds a pool identifier.
const MaxSlugLen = 32

// Variant tags which game a pool runs.
type Variant string

const (
	Coinflip Variant = "coinflip"
	Crash    Variant = "crash"
	Jackpot  Variant = "jackpot"
	Gacha    Variant = "gacha"
)

// ParseVariant accepts one of the four variant names.
func ParseVariant(v string) (Variant, error) {
	switch Variant(v) {
	case Coinflip, Crash, Jackpot, Gacha:
		return Variant(v), nil
	default:
		return "", apperr.ErrInvalidConfig.With("variant", v)
	}
}

// IsRound reports whether the variant is played in multiplayer rounds.
func (v Variant) IsRound() bool { return v == Crash || v == Jackpot }

// Config is the admin-set economics of a pool.
type Config struct {
	MinBet          uint64 `json:"min_bet" yaml:"min_bet"`
	MaxBet          uint64 `json:"max_bet" yaml:"max_bet"`
	HouseEdgeBps    uint16 `json:"house_edge_bps" yaml:"house_edge_bps"`
	PlatformFee     uint64 `json:"platform_fee" yaml:"platform_fee"`
	CooldownSeconds uint32 `json:"cooldown_seconds" yaml:"cooldown_seconds"`
}

// Validate checks 0 < min_bet <= max_bet and house_edge_bps < 10000.
func (c Config) Validate() error {
	switch {
	case c.MinBet == 0:
		return apperr.ErrInvalidConfig.With("field", "min_bet")
	case c.MinBet > c.MaxBet:
		return apperr.ErrInvalidConfig.With("field", "max_bet")
	case c.HouseEdgeBps >= payout.BPS:
		return apperr.ErrInvalidConfig.With("field", "house_edge_bps")
	}
	return nil
}

// CheckAmount enforces the bet bounds.
func (c Config) CheckAmount(amount uint64) error {
	if amount < c.MinBet {
		return apperr.ErrBetTooSmall
	}
	if amount > c.MaxBet {
		return apperr.ErrBetTooLarge
	}
	return nil
}

// Cooldown returns the configured cooldown as a duration.
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// GamePool is one game instance. EscrowBalance mirrors the escrow account;
// ReservedEscrow is the payout still owed to admitted, unresolved wagers.
type GamePool struct {
	Slug           string    `json:"slug"`
	Variant        Variant   `json:"variant"`
	Authority      string    `json:"authority"`
	Oracle         string    `json:"oracle"`
	Config         Config    `json:"config"`
	EscrowBalance  uint64    `json:"escrow_balance"`
	ReservedEscrow uint64    `json:"reserved_escrow"`
	TotalVolume    uint64    `json:"total_volume"`
	TotalFees      uint64    `json:"total_fees"`
	Active         bool      `json:"active"`
	CurrentRound   uint64    `json:"current_round"`
	CreatedAt      time.Time `json:"created_at"`
}

// New builds an active pool with zeroed counters.
func New(slug string, variant Variant, authority, oracle string, cfg Config, now time.Time) (*GamePool, error) {
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	if _, err := ParseVariant(string(variant)); err != nil {
		return nil, err
	}
	if authority == "" || oracle == "" {
		return nil, apperr.ErrInvalidRequest.With("field", "authority")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &GamePool{
		Slug:      slug,
		Variant:   variant,
		Authority: authority,
		Oracle:    oracle,
		Config:    cfg,
		Active:    true,
		CreatedAt: now,
	}, nil
}

// ValidateSlug requires 1..32 bytes with no path separator.
func ValidateSlug(slug string) error {
	if len(slug) == 0 || len(slug) > MaxSlugLen {
		return apperr.ErrInvalidRequest.With("slug", slug)
	}
	for i := 0; i < len(slug); i++ {
		if slug[i] == '/' {
			return apperr.ErrInvalidRequest.With("slug", slug)
		}
	}
	return nil
}

const (
	escrowPrefix = "escrow:"
	feePrefix    = "fees:"
)

// EscrowAccount is the token account that backs payouts.
func EscrowAccount(slug string) string { return escrowPrefix + slug }

// FeeAccount collects platform fees in the native asset.
func FeeAccount(slug string) string { return feePrefix + slug }

// IsSystemAccount reports whether name lies in the namespace reserved for
// pool escrow and fee accounts. Such names can never act as callers.
func IsSystemAccount(name string) bool {
	return strings.HasPrefix(name, escrowPrefix) || strings.HasPrefix(name, feePrefix)
}

// Playable fails unless the pool is active and runs the given variant.
func (p *GamePool) Playable(v Variant) error {
	if !p.Active {
		return apperr.ErrGameNotActive.With("pool", p.Slug)
	}
	if p.Variant != v {
		return apperr.ErrGameNotActive.
			With("pool", p.Slug).
			With("variant", string(p.Variant))
	}
	return nil
}

// Available is escrow not yet promised to a pending wager.
func (p *GamePool) Available() uint64 {
	if p.ReservedEscrow >= p.EscrowBalance {
		return 0
	}
	return p.EscrowBalance - p.ReservedEscrow
}

// PotentialPayout is the even-money payout a stake could win:
// amount * (20000 - 2*edge) / 10000.
func (p *GamePool) PotentialPayout(amount uint64) (uint64, error) {
	return payout.EvenMoney(amount, p.Config.HouseEdgeBps)
}

// Exposure computes the worst-case payout of an admitted amount.
type Exposure func(amount uint64) (uint64, error)

// Admit runs the admission checks for a wager of amount against variant v:
// active/variant, bet bounds, then solvency of unreserved escrow against the
// worst-case payout. It returns that payout and mutates nothing.
func (p *GamePool) Admit(v Variant, amount uint64, exposure Exposure) (uint64, error) {
	if err := p.Playable(v); err != nil {
		return 0, err
	}
	if err := p.Config.CheckAmount(amount); err != nil {
		return 0, err
	}
	worst, err := exposure(amount)
	if err != nil {
		return 0, err
	}
	if p.Available() < worst {
		return 0, apperr.ErrInsufficientEscrow.
			With("available", fmt.Sprint(p.Available())).
			With("required", fmt.Sprint(worst))
	}
	return worst, nil
}

// NoExposure is used by entries that are paid from their own stakes.
func NoExposure(uint64) (uint64, error) { return 0, nil }

// Reserve earmarks escrow for an admitted wager.
func (p *GamePool) Reserve(amount uint64) error {
	next, err := payout.Add(p.ReservedEscrow, amount)
	if err != nil {
		return err
	}
	p.ReservedEscrow = next
	return nil
}

// Release returns a reservation once its wager is settled.
func (p *GamePool) Release(amount uint64) {
	if amount > p.ReservedEscrow {
		p.ReservedEscrow = 0
		return
	}
	p.ReservedEscrow -= amount
}

// Credit mirrors tokens arriving in escrow.
func (p *GamePool) Credit(amount uint64) error {
	next, err := payout.Add(p.EscrowBalance, amount)
	if err != nil {
		return err
	}
	p.EscrowBalance = next
	return nil
}

// Debit mirrors tokens leaving escrow.
func (p *GamePool) Debit(amount uint64) error {
	next, err := payout.Sub(p.EscrowBalance, amount)
	if err != nil {
		return apperr.ErrInsufficientEscrow.With("pool", p.Slug)
	}
	p.EscrowBalance = next
	return nil
}

// RecordVolume adds a play to the cumulative counters, failing on overflow
// without touching either counter.
func (p *GamePool) RecordVolume(amount, fee uint64) error {
	vol, err := payout.Add(p.TotalVolume, amount)
	if err != nil {
		return err
	}
	fees, err := payout.Add(p.TotalFees, fee)
	if err != nil {
		return err
	}
	p.TotalVolume, p.TotalFees = vol, fees
	return nil
}

// NextRound advances the round counter.
func (p *GamePool) NextRound() (uint64, error) {
	n, err := payout.Add(p.CurrentRound, 1)
	if err != nil {
		return 0, err
	}
	p.CurrentRound = n
	return n, nil
}
