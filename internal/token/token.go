// Package token is the transfer primitive: per-asset account balances kept in
// the same store transaction as the game records, so a failed command never
// leaves funds half-moved.
package token

import (
	"errors"
	"strconv"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/payout"
	"github.com/xtding233/casino-core/internal/store"
)

// Asset names a balance ledger.
type Asset string

const (
	// Chip is the wagering token held in escrow.
	Chip Asset = "chip"
	// Native pays platform fees.
	Native Asset = "native"
)

// Balance returns the account's balance, zero when it has never been funded.
func Balance(tx store.Tx, asset Asset, account string) (uint64, error) {
	raw, err := tx.Get(store.BalanceKey(string(asset), account))
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(string(raw), 10, 64)
}

func setBalance(tx store.Tx, asset Asset, account string, amount uint64) error {
	return tx.Put(store.BalanceKey(string(asset), account), []byte(strconv.FormatUint(amount, 10)))
}

// Mint credits new units to an account. It is how balances enter the system.
func Mint(tx store.Tx, asset Asset, account string, amount uint64) error {
	bal, err := Balance(tx, asset, account)
	if err != nil {
		return err
	}
	next, err := payout.Add(bal, amount)
	if err != nil {
		return err
	}
	return setBalance(tx, asset, account, next)
}

// Transfer moves amount from one account to another. It fails with
// ErrInsufficientFunds, without writing, when from cannot cover amount.
func Transfer(tx store.Tx, asset Asset, from, to string, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	src, err := Balance(tx, asset, from)
	if err != nil {
		return err
	}
	if src < amount {
		return apperr.ErrInsufficientFunds.
			With("account", from).
			With("asset", string(asset))
	}
	dst, err := Balance(tx, asset, to)
	if err != nil {
		return err
	}
	next, err := payout.Add(dst, amount)
	if err != nil {
		return err
	}
	if err := setBalance(tx, asset, from, src-amount); err != nil {
		return err
	}
	return setBalance(tx, asset, to, next)
}
