package store

import "fmt"

// Composite keys, one family per record type.

func PoolKey(slug string) string { return "pool/" + slug }

func WagerKey(id string) string { return "wager/" + id }

// SlotKey points at the latest coinflip wager id for a player in a pool.
func SlotKey(slug, player string) string { return "slot/" + slug + "/" + player }

func RoundKey(slug string, n uint64) string { return fmt.Sprintf("round/%s/%010d", slug, n) }

func ParticipantKey(slug string, n uint64, player string) string {
	return fmt.Sprintf("participant/%s/%010d/%s", slug, n, player)
}

func GachaKey(id string) string { return "gacha/" + id }

func CooldownKey(slug, player string) string { return "cooldown/" + slug + "/" + player }

func BalanceKey(asset, account string) string { return "balance/" + asset + "/" + account }
