// Package sim estimates return-to-player for each game by replaying the
// seed-to-outcome functions over many random seeds.
package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/xtding233/casino-core/internal/gacha"
	"github.com/xtding233/casino-core/internal/outcome"
	"github.com/xtding233/casino-core/internal/payout"
)

// Game selects which outcome function a trial exercises.
type Game string

const (
	GameCoinflip Game = "coinflip"
	GameCrash    Game = "crash"
	GameGacha    Game = "gacha"
)

// SimParams describes the mechanics for one simulation run.
type SimParams struct {
	Game Game

	// Pool-level house edge used by coinflip payouts.
	HouseEdgeBps uint16

	// Edge folded into the crash distribution.
	CrashEdgeBps uint16
	// Cash-out target for crash trials; a trial wins when the crash point
	// reaches it. Defaults to 2.00x.
	TargetBps uint32

	// Pulls per gacha batch (1-10).
	Pulls int
}

// Stats summarizes simulation results. Samples are payout multipliers in
// basis points of the stake.
type Stats struct {
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// RTP is Mean expressed as a fraction of the stake.
	RTP float64
	// Optional: raw samples if caller needs histograms/exports
	Samples []int `json:"-"`
}

// calcStats summarizes bps samples. Percentiles use the nearest-rank rule so
// every reported value is a multiplier some trial actually produced.
func calcStats(xs []int) Stats {
	n := len(xs)
	if n == 0 {
		return Stats{}
	}
	sorted := append([]int(nil), xs...)
	sort.Ints(sorted)

	var sum int64
	for _, v := range sorted {
		sum += int64(v)
	}
	mean := float64(sum) / float64(n)

	var sq float64
	for _, v := range sorted {
		d := float64(v) - mean
		sq += d * d
	}
	variance := sq / float64(n)

	rank := func(pct int) float64 {
		i := (pct*n + 99) / 100
		if i < 1 {
			i = 1
		}
		return float64(sorted[i-1])
	}

	return Stats{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     rank(50),
		P90:     rank(90),
		P99:     rank(99),
		RTP:     float64(sum) / float64(int64(n)*payout.BPS),
		Samples: xs,
	}
}

// simulateOne returns the payout multiplier (bps of stake) for one seed.
func simulateOne(p SimParams, seed outcome.Seed) (int, error) {
	switch p.Game {
	case GameCoinflip:
		if outcome.Coin(seed) == outcome.Heads {
			return int(payout.WinMultiplierBps(p.HouseEdgeBps)), nil
		}
		return 0, nil

	case GameCrash:
		target := p.TargetBps
		if target == 0 {
			target = 20000
		}
		if outcome.CrashPoint(seed, p.CrashEdgeBps) >= target {
			return int(target), nil
		}
		return 0, nil

	case GameGacha:
		pulls := p.Pulls
		if pulls == 0 {
			pulls = gacha.MaxPulls
		}
		tiers, err := gacha.Draw(seed, pulls)
		if err != nil {
			return 0, err
		}
		// unit stake of 10000 per pull yields bps directly
		total, err := gacha.BatchPayout(payout.BPS, tiers)
		if err != nil {
			return 0, err
		}
		return int(total / uint64(pulls)), nil
	}
	return 0, fmt.Errorf("unknown game %q", p.Game)
}

// RunMonteCarlo draws one seed per trial from rng and returns summary stats.
func RunMonteCarlo(p SimParams, trials int, rng RandomSource) (Stats, error) {
	if trials <= 0 {
		return Stats{}, nil
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	samples := make([]int, trials)
	for i := 0; i < trials; i++ {
		v, err := simulateOne(p, NewSeed(rng))
		if err != nil {
			return Stats{}, err
		}
		samples[i] = v
	}
	return calcStats(samples), nil
}
