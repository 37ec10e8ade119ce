package ledger

import (
	"time"

	"github.com/xtding233/casino-core/internal/apperr"
)

// Slot points at the most recent coinflip wager of a player in a pool. A
// player holds at most one pending wager per slot.
type Slot struct {
	WagerID string `json:"wager_id"`
}

// Cooldown remembers when a player last played a pool.
type Cooldown struct {
	LastPlayAt time.Time `json:"last_play_at"`
}

// Check fails with ErrCooldownActive while now is inside the window.
func (c Cooldown) Check(window time.Duration, now time.Time) error {
	if window <= 0 || c.LastPlayAt.IsZero() {
		return nil
	}
	if ready := c.LastPlayAt.Add(window); now.Before(ready) {
		return apperr.ErrCooldownActive.With("ready_at", ready.UTC().Format(time.RFC3339))
	}
	return nil
}
