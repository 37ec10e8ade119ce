package ledger

import (
	"time"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/gacha"
	"github.com/xtding233/casino-core/internal/outcome"
)

// GachaPullResult is one batch of up to ten pulls, linked to the Wager that
// paid for it.
type GachaPullResult struct {
	ID           string       `json:"id"`
	WagerID      string       `json:"wager_id"`
	Player       string       `json:"player"`
	Pool         string       `json:"pool"`
	PullCount    int          `json:"pull_count"`
	StakePerPull uint64       `json:"stake_per_pull"`
	Tiers        []gacha.Tier `json:"tiers"`
	TotalPayout  uint64       `json:"total_payout"`
	Seed         outcome.Seed `json:"seed"`
	Resolved     bool         `json:"resolved"`
	PulledAt     time.Time    `json:"pulled_at"`
	ResolvedAt   time.Time    `json:"resolved_at"`
}

// NewGachaPull records an unresolved batch. The batch cost is the linked
// wager's amount.
func NewGachaPull(id string, w *Wager, pulls int, stakePerPull uint64) (*GachaPullResult, error) {
	if err := gacha.ValidatePullCount(pulls); err != nil {
		return nil, err
	}
	return &GachaPullResult{
		ID:           id,
		WagerID:      w.ID,
		Player:       w.Player,
		Pool:         w.Pool,
		PullCount:    pulls,
		StakePerPull: stakePerPull,
		PulledAt:     w.PlacedAt,
	}, nil
}

// Resolve draws the tiers for both the batch and its wager and returns the
// payout to transfer. Either both records flip or neither does.
func (g *GachaPullResult) Resolve(w *Wager, seed outcome.Seed, now time.Time) (uint64, error) {
	if g.Resolved {
		return 0, apperr.ErrAlreadyResolved.With("pull", g.ID)
	}
	if err := w.checkResolvable(seed); err != nil {
		return 0, err
	}
	tiers, err := gacha.Draw(seed, g.PullCount)
	if err != nil {
		return 0, err
	}
	total, err := gacha.BatchPayout(g.StakePerPull, tiers)
	if err != nil {
		return 0, err
	}

	g.Tiers = tiers
	g.TotalPayout = total
	g.Seed = seed
	g.Resolved = true
	g.ResolvedAt = now
	w.settle(seed, total, now)
	return total, nil
}
