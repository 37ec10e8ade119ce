package engine

import (
	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/event"
	"github.com/xtding233/casino-core/internal/pool"
	"github.com/xtding233/casino-core/internal/store"
	"github.com/xtding233/casino-core/internal/token"
)

func (e *Engine) registerPoolCommands() {
	e.commands.register(handle(KindInitializeGame, func() Command { return &InitializeGame{} }, e.initializeGame))
	e.commands.register(handle(KindFundPool, func() Command { return &FundPool{} }, e.fundPool))
	e.commands.register(handle(KindWithdraw, func() Command { return &Withdraw{} }, e.withdraw))
	e.commands.register(handle(KindSetActive, func() Command { return &SetActive{} }, e.setActive))
}

func (e *Engine) initializeGame(t *txn, c InitializeGame) error {
	if err := pool.ValidateSlug(c.Pool); err != nil {
		return err
	}
	exists, err := store.Exists(t.tx, store.PoolKey(c.Pool))
	if err != nil {
		return err
	}
	if exists {
		return apperr.ErrPoolExists.With("pool", c.Pool)
	}
	oracle := c.Oracle
	if oracle == "" {
		oracle = e.oracle
	}
	p, err := pool.New(c.Pool, c.Variant, t.actor, oracle, c.Config, t.now)
	if err != nil {
		return err
	}
	if err := savePool(t.tx, p); err != nil {
		return err
	}

	t.result.Ref = p.Slug
	t.publish(t.emit(event.GameInitialized, p.Slug).
		With("variant", string(p.Variant)).
		With("authority", p.Authority).
		With("oracle", p.Oracle).
		With("min_bet", p.Config.MinBet).
		With("max_bet", p.Config.MaxBet).
		With("house_edge_bps", p.Config.HouseEdgeBps).
		With("platform_fee", p.Config.PlatformFee).
		With("cooldown_seconds", p.Config.CooldownSeconds))
	return nil
}

func (e *Engine) fundPool(t *txn, c FundPool) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	if err := requireAuthority(p, t.actor); err != nil {
		return err
	}
	if c.Amount == 0 {
		return apperr.ErrInvalidRequest.With("field", "amount")
	}
	if err := p.Credit(c.Amount); err != nil {
		return err
	}
	if err := token.Transfer(t.tx, token.Chip, t.actor, pool.EscrowAccount(p.Slug), c.Amount); err != nil {
		return err
	}
	if err := savePool(t.tx, p); err != nil {
		return err
	}

	t.publish(t.emit(event.PoolFunded, p.Slug).
		With("amount", c.Amount).
		With("escrow_balance", p.EscrowBalance))
	return nil
}

// withdraw enforces no floor of its own: the transfer fails only when the
// escrow account cannot cover the amount, reserved payouts included.
func (e *Engine) withdraw(t *txn, c Withdraw) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	if err := requireAuthority(p, t.actor); err != nil {
		return err
	}
	if c.Amount == 0 {
		return apperr.ErrInvalidRequest.With("field", "amount")
	}
	if err := token.Transfer(t.tx, token.Chip, pool.EscrowAccount(p.Slug), t.actor, c.Amount); err != nil {
		return err
	}
	if err := p.Debit(c.Amount); err != nil {
		return err
	}
	if err := savePool(t.tx, p); err != nil {
		return err
	}

	t.publish(t.emit(event.FeesWithdrawn, p.Slug).
		With("amount", c.Amount).
		With("escrow_balance", p.EscrowBalance).
		With("reserved_escrow", p.ReservedEscrow))
	return nil
}

func (e *Engine) setActive(t *txn, c SetActive) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	if err := requireAuthority(p, t.actor); err != nil {
		return err
	}
	p.Active = c.Active
	if err := savePool(t.tx, p); err != nil {
		return err
	}

	t.publish(t.emit(event.PoolStatusChanged, p.Slug).With("active", p.Active))
	return nil
}
