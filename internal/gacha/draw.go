package gacha

import (
	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/outcome"
	"github.com/xtding233/casino-core/internal/payout"
)

const (
	// MaxPulls is the largest batch a single request may buy.
	MaxPulls = 10
	// PityThreshold is the batch position (1-based) that carries the guarantee.
	PityThreshold = 10
)

// ValidatePullCount checks 1 <= n <= MaxPulls.
func ValidatePullCount(n int) error {
	if n < 1 || n > MaxPulls {
		return apperr.ErrInvalidPullCount
	}
	return nil
}

// Draw resolves a batch of n pulls from one seed. Pull i reads seed[i%32];
// the 10th pull is raised to at least Rare when pulls 1-9 were all Common.
func Draw(seed outcome.Seed, n int) ([]Tier, error) {
	if err := ValidatePullCount(n); err != nil {
		return nil, err
	}
	pity := NewPitySystem(PityThreshold, Rare)
	tiers := make([]Tier, n)
	for i := 0; i < n; i++ {
		tiers[i] = pity.Apply(TierFromByte(seed[i%outcome.SeedSize]))
	}
	return tiers, nil
}

// PullPayout is stakePerPull * tier multiplier / 10000.
func PullPayout(stakePerPull uint64, t Tier) (uint64, error) {
	return payout.ApplyBps(stakePerPull, t.MultiplierBps())
}

// BatchPayout sums the per-pull payouts.
func BatchPayout(stakePerPull uint64, tiers []Tier) (uint64, error) {
	var total uint64
	for _, t := range tiers {
		p, err := PullPayout(stakePerPull, t)
		if err != nil {
			return 0, err
		}
		if total, err = payout.Add(total, p); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Cost is stakePerPull * n.
func Cost(stakePerPull uint64, n int) (uint64, error) {
	return payout.Mul(stakePerPull, uint64(n))
}

// MaxExposure is the worst-case payout of a batch: every pull Legendary.
func MaxExposure(stakePerPull uint64, n int) (uint64, error) {
	cost, err := Cost(stakePerPull, n)
	if err != nil {
		return 0, err
	}
	return payout.ApplyBps(cost, MaxMultiplierBps)
}
