package engine

import (
	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/event"
	"github.com/xtding233/casino-core/internal/gacha"
	"github.com/xtding233/casino-core/internal/ledger"
	"github.com/xtding233/casino-core/internal/outcome"
	"github.com/xtding233/casino-core/internal/payout"
	"github.com/xtding233/casino-core/internal/pool"
	"github.com/xtding233/casino-core/internal/store"
	"github.com/xtding233/casino-core/internal/token"
)

func (e *Engine) registerWagerCommands() {
	e.commands.register(handle(KindPlayCoinflip, func() Command { return &PlayCoinflip{} }, e.playCoinflip))
	e.commands.register(handle(KindResolveCoinflip, func() Command { return &ResolveCoinflip{} }, e.resolveCoinflip))
	e.commands.register(handle(KindPullGacha, func() Command { return &PullGacha{} }, e.pullGacha))
	e.commands.register(handle(KindResolveGacha, func() Command { return &ResolveGacha{} }, e.resolveGacha))
}

// collectStake takes the platform fee and the stake from the player and
// updates the pool mirror, reservation and counters.
func collectStake(t *txn, p *pool.GamePool, amount, reserve uint64) error {
	fee := p.Config.PlatformFee
	if err := token.Transfer(t.tx, token.Native, t.actor, pool.FeeAccount(p.Slug), fee); err != nil {
		return err
	}
	if err := token.Transfer(t.tx, token.Chip, t.actor, pool.EscrowAccount(p.Slug), amount); err != nil {
		return err
	}
	if err := p.Credit(amount); err != nil {
		return err
	}
	if err := p.Reserve(reserve); err != nil {
		return err
	}
	return p.RecordVolume(amount, fee)
}

// payOut transfers a settled payout from escrow to player.
func payOut(t *txn, p *pool.GamePool, player string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := p.Debit(amount); err != nil {
		return err
	}
	return token.Transfer(t.tx, token.Chip, pool.EscrowAccount(p.Slug), player, amount)
}

func (e *Engine) playCoinflip(t *txn, c PlayCoinflip) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	if c.Choice > outcome.Tails {
		return apperr.ErrInvalidRequest.With("field", "choice")
	}
	reserve, err := p.Admit(pool.Coinflip, c.Amount, p.PotentialPayout)
	if err != nil {
		return err
	}
	if err := checkCooldown(t, p); err != nil {
		return err
	}
	slot, err := loadSlot(t.tx, p.Slug, t.actor)
	if err != nil {
		return err
	}
	if slot != nil {
		prev, err := loadWager(t.tx, slot.WagerID)
		if err != nil {
			return err
		}
		if prev.IsPending() {
			return apperr.ErrWagerPending.With("wager", prev.ID)
		}
	}

	if err := collectStake(t, p, c.Amount, reserve); err != nil {
		return err
	}
	w := ledger.Place(e.newID(), p, t.actor, c.Amount, uint8(c.Choice), reserve, t.now)
	if err := saveWager(t.tx, w); err != nil {
		return err
	}
	if err := store.PutJSON(t.tx, store.SlotKey(p.Slug, t.actor), ledger.Slot{WagerID: w.ID}); err != nil {
		return err
	}
	if err := touchCooldown(t, p); err != nil {
		return err
	}
	if err := savePool(t.tx, p); err != nil {
		return err
	}

	t.result.Ref = w.ID
	t.publish(t.emit(event.WagerPlaced, p.Slug).
		With("wager", w.ID).
		With("player", w.Player).
		With("amount", w.Amount).
		With("fee", w.Fee).
		With("choice", c.Choice))
	return nil
}

func (e *Engine) resolveCoinflip(t *txn, c ResolveCoinflip) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	if err := requireOracle(p, t.actor); err != nil {
		return err
	}
	if err := requireVariant(p, pool.Coinflip); err != nil {
		return err
	}
	slot, err := loadSlot(t.tx, p.Slug, c.Player)
	if err != nil {
		return err
	}
	if slot == nil {
		return store.NotFound(store.SlotKey(p.Slug, c.Player))
	}
	w, err := loadWager(t.tx, slot.WagerID)
	if err != nil {
		return err
	}
	amount, err := w.ResolveCoinflip(c.Seed, p.Config.HouseEdgeBps, t.now)
	if err != nil {
		return err
	}
	p.Release(w.Reserved)
	if err := payOut(t, p, w.Player, amount); err != nil {
		return err
	}
	if err := saveWager(t.tx, w); err != nil {
		return err
	}
	if err := savePool(t.tx, p); err != nil {
		return err
	}

	t.result.Ref = w.ID
	t.result.Payout = amount
	t.publish(wagerResolved(t, p, w).With("side", outcome.Coin(c.Seed)))
	return nil
}

func wagerResolved(t *txn, p *pool.GamePool, w *ledger.Wager) event.Event {
	return t.emit(event.WagerResolved, p.Slug).
		With("wager", w.ID).
		With("player", w.Player).
		With("outcome", string(w.Outcome)).
		With("payout", w.Payout).
		With("seed", w.Seed)
}

// gachaExposure is the worst case of a batch: every pull Legendary.
func gachaExposure(cost uint64) (uint64, error) {
	return payout.ApplyBps(cost, gacha.MaxMultiplierBps)
}

func (e *Engine) pullGacha(t *txn, c PullGacha) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	if err := gacha.ValidatePullCount(c.Pulls); err != nil {
		return err
	}
	stake := p.Config.MinBet
	cost, err := gacha.Cost(stake, c.Pulls)
	if err != nil {
		return err
	}
	reserve, err := p.Admit(pool.Gacha, cost, gachaExposure)
	if err != nil {
		return err
	}
	if err := checkCooldown(t, p); err != nil {
		return err
	}

	if err := collectStake(t, p, cost, reserve); err != nil {
		return err
	}
	w := ledger.Place(e.newID(), p, t.actor, cost, uint8(c.Pulls), reserve, t.now)
	pull, err := ledger.NewGachaPull(e.newID(), w, c.Pulls, stake)
	if err != nil {
		return err
	}
	if err := saveWager(t.tx, w); err != nil {
		return err
	}
	if err := store.PutJSON(t.tx, store.GachaKey(pull.ID), pull); err != nil {
		return err
	}
	if err := touchCooldown(t, p); err != nil {
		return err
	}
	if err := savePool(t.tx, p); err != nil {
		return err
	}

	t.result.Ref = pull.ID
	t.publish(t.emit(event.WagerPlaced, p.Slug).
		With("wager", w.ID).
		With("pull", pull.ID).
		With("player", w.Player).
		With("amount", w.Amount).
		With("fee", w.Fee).
		With("pulls", c.Pulls))
	return nil
}

func (e *Engine) resolveGacha(t *txn, c ResolveGacha) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	if err := requireOracle(p, t.actor); err != nil {
		return err
	}
	if err := requireVariant(p, pool.Gacha); err != nil {
		return err
	}
	pull, err := loadPull(t.tx, c.PullID)
	if err != nil {
		return err
	}
	if pull.Pool != p.Slug {
		return store.NotFound(store.GachaKey(c.PullID))
	}
	w, err := loadWager(t.tx, pull.WagerID)
	if err != nil {
		return err
	}
	amount, err := pull.Resolve(w, c.Seed, t.now)
	if err != nil {
		return err
	}
	p.Release(w.Reserved)
	if err := payOut(t, p, w.Player, amount); err != nil {
		return err
	}
	if err := store.PutJSON(t.tx, store.GachaKey(pull.ID), pull); err != nil {
		return err
	}
	if err := saveWager(t.tx, w); err != nil {
		return err
	}
	if err := savePool(t.tx, p); err != nil {
		return err
	}

	t.result.Ref = pull.ID
	t.result.Payout = amount
	for i, tier := range pull.Tiers {
		each, err := gacha.PullPayout(pull.StakePerPull, tier)
		if err != nil {
			return err
		}
		t.publish(t.emit(event.GachaPull, p.Slug).
			With("pull", pull.ID).
			With("player", pull.Player).
			With("index", i).
			With("tier", tier).
			With("multiplier", payout.FormatMultiplier(tier.MultiplierBps())).
			With("payout", each))
	}
	t.publish(wagerResolved(t, p, w).With("pull", pull.ID))
	return nil
}
