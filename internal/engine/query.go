package engine

import (
	"context"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/ledger"
	"github.com/xtding233/casino-core/internal/pool"
	"github.com/xtding233/casino-core/internal/round"
	"github.com/xtding233/casino-core/internal/store"
	"github.com/xtding233/casino-core/internal/token"
)

// Pool reads a pool record.
func (e *Engine) Pool(ctx context.Context, slug string) (*pool.GamePool, error) {
	var p *pool.GamePool
	err := e.store.View(ctx, func(tx store.Tx) error {
		var err error
		p, err = loadPool(tx, slug)
		return err
	})
	return p, err
}

// Wager reads a wager by id.
func (e *Engine) Wager(ctx context.Context, id string) (*ledger.Wager, error) {
	var w *ledger.Wager
	err := e.store.View(ctx, func(tx store.Tx) error {
		var err error
		w, err = loadWager(tx, id)
		return err
	})
	return w, err
}

// GachaPull reads a pull batch by id.
func (e *Engine) GachaPull(ctx context.Context, id string) (*ledger.GachaPullResult, error) {
	var g *ledger.GachaPullResult
	err := e.store.View(ctx, func(tx store.Tx) error {
		var err error
		g, err = loadPull(tx, id)
		return err
	})
	return g, err
}

// Round reads round n of a pool; n == 0 reads the current round.
func (e *Engine) Round(ctx context.Context, slug string, n uint64) (*round.Round, error) {
	var r *round.Round
	err := e.store.View(ctx, func(tx store.Tx) error {
		p, err := loadPool(tx, slug)
		if err != nil {
			return err
		}
		r, err = loadRound(tx, p, n)
		return err
	})
	return r, err
}

// Participant reads a player's entry in round n of a pool.
func (e *Engine) Participant(ctx context.Context, slug string, n uint64, player string) (*round.Participant, error) {
	var part *round.Participant
	err := e.store.View(ctx, func(tx store.Tx) error {
		p, err := loadPool(tx, slug)
		if err != nil {
			return err
		}
		r, err := loadRound(tx, p, n)
		if err != nil {
			return err
		}
		part, err = loadParticipant(tx, r, player)
		if err != nil {
			return err
		}
		if part == nil {
			return apperr.ErrNotInRound.With("player", player)
		}
		return nil
	})
	return part, err
}

// Balance reads an account balance.
func (e *Engine) Balance(ctx context.Context, asset token.Asset, account string) (uint64, error) {
	var n uint64
	err := e.store.View(ctx, func(tx store.Tx) error {
		var err error
		n, err = token.Balance(tx, asset, account)
		return err
	})
	return n, err
}

// Mint deposits tokens into an account outside of any command. It stands in
// for the external token program that funds players and authorities.
func (e *Engine) Mint(ctx context.Context, asset token.Asset, account string, amount uint64) error {
	if account == "" || pool.IsSystemAccount(account) {
		return apperr.ErrInvalidRequest.With("account", account)
	}
	err := e.store.Update(ctx, func(tx store.Tx) error {
		return token.Mint(tx, asset, account, amount)
	})
	if err != nil {
		return err
	}
	e.log.WithField("asset", string(asset)).WithField("account", account).
		WithField("amount", amount).Debug("minted")
	return nil
}
