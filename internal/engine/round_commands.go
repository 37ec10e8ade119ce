package engine

import (
	"strconv"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/event"
	"github.com/xtding233/casino-core/internal/payout"
	"github.com/xtding233/casino-core/internal/pool"
	"github.com/xtding233/casino-core/internal/round"
)

func (e *Engine) registerRoundCommands() {
	e.commands.register(handle(KindStartRound, func() Command { return &StartRound{} }, e.startRound))
	e.commands.register(handle(KindJoinCrash, func() Command { return &JoinCrash{} }, e.joinCrash))
	e.commands.register(handle(KindEnterJackpot, func() Command { return &EnterJackpot{} }, e.enterJackpot))
	e.commands.register(handle(KindActivateRound, func() Command { return &ActivateRound{} }, e.activateRound))
	e.commands.register(handle(KindCashout, func() Command { return &Cashout{} }, e.cashout))
	e.commands.register(handle(KindResolveRound, func() Command { return &ResolveRound{} }, e.resolveRound))
}

func (e *Engine) startRound(t *txn, c StartRound) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	if err := requireAuthority(p, t.actor); err != nil {
		return err
	}
	r, err := round.Start(p, e.policies.BettingWindow, t.now)
	if err != nil {
		return err
	}
	if err := saveRound(t.tx, r); err != nil {
		return err
	}
	if err := savePool(t.tx, p); err != nil {
		return err
	}

	t.result.Ref = strconv.FormatUint(r.Number, 10)
	t.publish(t.emit(event.RoundStarted, p.Slug).
		With("round", r.Number).
		With("betting_ends_at", r.BettingEndsAt))
	return nil
}

// joinRound is shared by crash and jackpot entries once the amount is known.
func (e *Engine) joinRound(t *txn, p *pool.GamePool, amount, tickets, reserve uint64) error {
	if err := checkCooldown(t, p); err != nil {
		return err
	}
	r, err := loadRound(t.tx, p, 0)
	if err != nil {
		return err
	}
	existing, err := loadParticipant(t.tx, r, t.actor)
	if err != nil {
		return err
	}
	part, err := r.Join(existing, t.actor, amount, tickets, t.now)
	if err != nil {
		return err
	}
	if err := collectStake(t, p, amount, reserve); err != nil {
		return err
	}
	if err := saveParticipant(t.tx, part); err != nil {
		return err
	}
	if err := saveRound(t.tx, r); err != nil {
		return err
	}
	if err := touchCooldown(t, p); err != nil {
		return err
	}
	if err := savePool(t.tx, p); err != nil {
		return err
	}

	t.result.Ref = strconv.FormatUint(r.Number, 10)
	ev := t.emit(event.WagerPlaced, p.Slug).
		With("round", r.Number).
		With("player", t.actor).
		With("amount", amount).
		With("fee", p.Config.PlatformFee).
		With("pool_size", r.PoolSize)
	if tickets > 0 {
		ev = ev.With("tickets", tickets)
	}
	t.publish(ev)
	return nil
}

func (e *Engine) joinCrash(t *txn, c JoinCrash) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	// Crash cash-outs are checked against escrow when they happen.
	if _, err := p.Admit(pool.Crash, c.Amount, pool.NoExposure); err != nil {
		return err
	}
	return e.joinRound(t, p, c.Amount, 0, 0)
}

func (e *Engine) enterJackpot(t *txn, c EnterJackpot) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	if err := p.Playable(pool.Jackpot); err != nil {
		return err
	}
	amount, err := round.TicketsFor(c.Tickets, p.Config.MinBet)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeOverflow {
			return apperr.ErrBetTooLarge
		}
		return err
	}
	if _, err := p.Admit(pool.Jackpot, amount, pool.NoExposure); err != nil {
		return err
	}
	// The pot is owed to the eventual winner.
	return e.joinRound(t, p, amount, c.Tickets, amount)
}

func (e *Engine) activateRound(t *txn, c ActivateRound) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	if err := requireAuthority(p, t.actor); err != nil {
		return err
	}
	if err := requireVariant(p, pool.Crash); err != nil {
		return err
	}
	r, err := loadRound(t.tx, p, 0)
	if err != nil {
		return err
	}
	if err := r.Activate(t.now); err != nil {
		return err
	}
	if err := saveRound(t.tx, r); err != nil {
		return err
	}

	t.result.Ref = strconv.FormatUint(r.Number, 10)
	t.publish(t.emit(event.RoundActivated, p.Slug).
		With("round", r.Number).
		With("pool_size", r.PoolSize).
		With("participants", r.ParticipantCount))
	return nil
}

func (e *Engine) cashout(t *txn, c Cashout) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	if err := requireVariant(p, pool.Crash); err != nil {
		return err
	}
	r, err := loadRound(t.tx, p, c.Round)
	if err != nil {
		return err
	}
	part, err := loadParticipant(t.tx, r, t.actor)
	if err != nil {
		return err
	}
	if part == nil {
		return apperr.ErrNotInRound.With("player", t.actor)
	}
	amount, err := r.Cashout(part, e.policies.Cashout, t.now)
	if err != nil {
		return err
	}
	if p.Available() < amount {
		return apperr.ErrInsufficientEscrow.With("pool", p.Slug)
	}
	if err := payOut(t, p, t.actor, amount); err != nil {
		return err
	}
	if err := saveParticipant(t.tx, part); err != nil {
		return err
	}
	if err := savePool(t.tx, p); err != nil {
		return err
	}

	t.result.Ref = strconv.FormatUint(r.Number, 10)
	t.result.Payout = amount
	t.publish(t.emit(event.CashedOut, p.Slug).
		With("round", r.Number).
		With("player", t.actor).
		With("multiplier_bps", part.CashoutMultiplierBps).
		With("multiplier", payout.FormatMultiplier(uint64(part.CashoutMultiplierBps))).
		With("payout", amount))
	return nil
}

func (e *Engine) resolveRound(t *txn, c ResolveRound) error {
	p, err := loadPool(t.tx, c.Pool)
	if err != nil {
		return err
	}
	if err := requireOracle(p, t.actor); err != nil {
		return err
	}
	r, err := loadRound(t.tx, p, c.Round)
	if err != nil {
		return err
	}
	t.result.Ref = strconv.FormatUint(r.Number, 10)

	switch p.Variant {
	case pool.Crash:
		return e.resolveCrash(t, p, r, c)
	case pool.Jackpot:
		return e.resolveJackpot(t, p, r, c)
	default:
		return apperr.ErrWrongVariant.With("variant", string(p.Variant))
	}
}

func (e *Engine) resolveCrash(t *txn, p *pool.GamePool, r *round.Round, c ResolveRound) error {
	point, err := r.ResolveCrash(c.Seed, e.policies.CrashHouseEdgeBps, t.now)
	if err != nil {
		return err
	}
	if err := saveRound(t.tx, r); err != nil {
		return err
	}

	t.publish(t.emit(event.RoundEnded, p.Slug).
		With("round", r.Number).
		With("result", payout.FormatMultiplier(uint64(point))).
		With("crash_point_bps", point).
		With("pool_size", r.PoolSize).
		With("seed", r.Seed))
	return nil
}

func (e *Engine) resolveJackpot(t *txn, p *pool.GamePool, r *round.Round, c ResolveRound) error {
	parts := make([]*round.Participant, 0, len(r.Entrants))
	for _, player := range r.Entrants {
		part, err := loadParticipant(t.tx, r, player)
		if err != nil {
			return err
		}
		if part == nil {
			return apperr.ErrNotInRound.With("player", player)
		}
		parts = append(parts, part)
	}

	res, err := r.ResolveJackpot(c.Seed, parts, p.Config.HouseEdgeBps, t.now)
	if err != nil {
		return err
	}
	p.Release(r.PoolSize)
	result := "no winner"
	if res.Winner != nil {
		result = res.Winner.Player
		if err := payOut(t, p, res.Winner.Player, res.Payout); err != nil {
			return err
		}
		if err := saveParticipant(t.tx, res.Winner); err != nil {
			return err
		}
	}
	if err := saveRound(t.tx, r); err != nil {
		return err
	}
	if err := savePool(t.tx, p); err != nil {
		return err
	}

	t.result.Payout = res.Payout
	t.publish(t.emit(event.RoundEnded, p.Slug).
		With("round", r.Number).
		With("result", result).
		With("pool_size", r.PoolSize).
		With("seed", r.Seed))
	if res.Winner != nil {
		t.publish(t.emit(event.JackpotWon, p.Slug).
			With("round", r.Number).
			With("winner", res.Winner.Player).
			With("ticket", res.TicketIndex).
			With("tickets", res.TotalTickets).
			With("pool_size", r.PoolSize).
			With("payout", res.Payout))
	}
	return nil
}
