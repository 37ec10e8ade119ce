// Package ledger records individual wagers and gacha pull batches and guards
// their single Pending to Won/Lost transition.
package ledger

import (
	"time"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/outcome"
	"github.com/xtding233/casino-core/internal/payout"
	"github.com/xtding233/casino-core/internal/pool"
)

// Outcome is the state of a wager.
type Outcome string

const (
	Pending Outcome = "pending"
	Won     Outcome = "won"
	Lost    Outcome = "lost"
)

// Wager is one instant-resolution play: a coinflip or a gacha batch.
// Reserved is the escrow held back for it until resolution.
type Wager struct {
	ID         string       `json:"id"`
	Player     string       `json:"player"`
	Pool       string       `json:"pool"`
	Variant    pool.Variant `json:"variant"`
	Amount     uint64       `json:"amount"`
	Fee        uint64       `json:"fee"`
	Choice     uint8        `json:"choice"`
	Outcome    Outcome      `json:"outcome"`
	Payout     uint64       `json:"payout"`
	Reserved   uint64       `json:"reserved"`
	Seed       outcome.Seed `json:"seed"`
	PlacedAt   time.Time    `json:"placed_at"`
	ResolvedAt time.Time    `json:"resolved_at"`
}

// Place creates a pending wager with a zero seed.
func Place(id string, p *pool.GamePool, player string, amount uint64, choice uint8, reserved uint64, now time.Time) *Wager {
	return &Wager{
		ID:       id,
		Player:   player,
		Pool:     p.Slug,
		Variant:  p.Variant,
		Amount:   amount,
		Fee:      p.Config.PlatformFee,
		Choice:   choice,
		Outcome:  Pending,
		Reserved: reserved,
		PlacedAt: now,
	}
}

// IsPending reports whether the wager still awaits a seed.
func (w *Wager) IsPending() bool { return w.Outcome == Pending }

// checkResolvable guards the single transition.
func (w *Wager) checkResolvable(seed outcome.Seed) error {
	if !w.IsPending() {
		return apperr.ErrAlreadyResolved.With("wager", w.ID)
	}
	if seed.IsZero() {
		return apperr.ErrInvalidSeed
	}
	return nil
}

// settle records the outcome. Won iff amount > 0.
func (w *Wager) settle(seed outcome.Seed, amount uint64, now time.Time) {
	w.Outcome = Lost
	if amount > 0 {
		w.Outcome = Won
	}
	w.Payout = amount
	w.Seed = seed
	w.ResolvedAt = now
}

// ResolveCoinflip derives the side from seed and pays even money on a match.
// It returns the payout the caller must transfer out of escrow.
func (w *Wager) ResolveCoinflip(seed outcome.Seed, houseEdgeBps uint16, now time.Time) (uint64, error) {
	if err := w.checkResolvable(seed); err != nil {
		return 0, err
	}
	var amount uint64
	if outcome.Coin(seed) == outcome.Side(w.Choice) {
		win, err := payout.EvenMoney(w.Amount, houseEdgeBps)
		if err != nil {
			return 0, err
		}
		amount = win
	}
	w.settle(seed, amount, now)
	return amount, nil
}
