package engine

import (
	"errors"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/ledger"
	"github.com/xtding233/casino-core/internal/pool"
	"github.com/xtding233/casino-core/internal/round"
	"github.com/xtding233/casino-core/internal/store"
)

func loadPool(tx store.Tx, slug string) (*pool.GamePool, error) {
	if err := pool.ValidateSlug(slug); err != nil {
		return nil, err
	}
	var p pool.GamePool
	if err := store.GetJSON(tx, store.PoolKey(slug), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func savePool(tx store.Tx, p *pool.GamePool) error {
	return store.PutJSON(tx, store.PoolKey(p.Slug), p)
}

func loadWager(tx store.Tx, id string) (*ledger.Wager, error) {
	var w ledger.Wager
	if err := store.GetJSON(tx, store.WagerKey(id), &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func saveWager(tx store.Tx, w *ledger.Wager) error {
	return store.PutJSON(tx, store.WagerKey(w.ID), w)
}

// loadSlot returns nil when the player has never played the pool.
func loadSlot(tx store.Tx, slug, player string) (*ledger.Slot, error) {
	var s ledger.Slot
	err := store.GetJSON(tx, store.SlotKey(slug, player), &s)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func loadPull(tx store.Tx, id string) (*ledger.GachaPullResult, error) {
	var g ledger.GachaPullResult
	if err := store.GetJSON(tx, store.GachaKey(id), &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func loadCooldown(tx store.Tx, slug, player string) (ledger.Cooldown, error) {
	var c ledger.Cooldown
	err := store.GetJSON(tx, store.CooldownKey(slug, player), &c)
	if errors.Is(err, store.ErrNotFound) {
		return ledger.Cooldown{}, nil
	}
	return c, err
}

func saveCooldown(tx store.Tx, slug, player string, c ledger.Cooldown) error {
	return store.PutJSON(tx, store.CooldownKey(slug, player), c)
}

// checkCooldown fails when the player is still inside the pool's window.
func checkCooldown(t *txn, p *pool.GamePool) error {
	c, err := loadCooldown(t.tx, p.Slug, t.actor)
	if err != nil {
		return err
	}
	return c.Check(p.Config.Cooldown(), t.now)
}

func touchCooldown(t *txn, p *pool.GamePool) error {
	if p.Config.CooldownSeconds == 0 {
		return nil
	}
	return saveCooldown(t.tx, p.Slug, t.actor, ledger.Cooldown{LastPlayAt: t.now})
}

func loadRound(tx store.Tx, p *pool.GamePool, n uint64) (*round.Round, error) {
	if n == 0 {
		n = p.CurrentRound
	}
	if n == 0 {
		return nil, apperr.ErrNotFound.With("round", "none started")
	}
	var r round.Round
	if err := store.GetJSON(tx, store.RoundKey(p.Slug, n), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func saveRound(tx store.Tx, r *round.Round) error {
	return store.PutJSON(tx, store.RoundKey(r.Pool, r.Number), r)
}

// loadParticipant returns nil when the player has not joined the round.
func loadParticipant(tx store.Tx, r *round.Round, player string) (*round.Participant, error) {
	var p round.Participant
	err := store.GetJSON(tx, store.ParticipantKey(r.Pool, r.Number, player), &p)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func saveParticipant(tx store.Tx, p *round.Participant) error {
	return store.PutJSON(tx, store.ParticipantKey(p.Pool, p.Round, p.Player), p)
}

// requireAuthority fails unless actor is the pool's bound authority.
func requireAuthority(p *pool.GamePool, actor string) error {
	if actor != p.Authority {
		return apperr.ErrUnauthorized.With("required", "authority")
	}
	return nil
}

// requireOracle fails unless actor is the pool's random-value authority.
func requireOracle(p *pool.GamePool, actor string) error {
	if actor != p.Oracle {
		return apperr.ErrUnauthorized.With("required", "oracle")
	}
	return nil
}

func requireVariant(p *pool.GamePool, v pool.Variant) error {
	if p.Variant != v {
		return apperr.ErrWrongVariant.With("variant", string(p.Variant))
	}
	return nil
}
