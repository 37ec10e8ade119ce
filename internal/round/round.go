// Package round runs the phase machine of the multiplayer games.
//
// Crash rounds move Betting -> Active -> Ended, jackpot rounds Betting ->
// Ended. Phases only move forward, and only through the calls below.
package round

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/outcome"
	"github.com/xtding233/casino-core/internal/payout"
	"github.com/xtding233/casino-core/internal/pool"
)

// DefaultBettingWindow is how long a new round advertises for entries.
const DefaultBettingWindow = 10 * time.Second

// Phase is a round state.
type Phase string

const (
	Betting Phase = "betting"
	Active  Phase = "active"
	Ended   Phase = "ended"
)

// Payload is the opaque 32-byte result stored on an ended round.
type Payload [32]byte

func (p Payload) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(p[:])), nil
}

func (p *Payload) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if len(b) != len(p) {
		return fmt.Errorf("payload must be %d bytes, got %d", len(p), len(b))
	}
	copy(p[:], b)
	return nil
}

// Round is one betting round of a crash or jackpot pool.
type Round struct {
	Pool             string       `json:"pool"`
	Number           uint64       `json:"number"`
	Variant          pool.Variant `json:"variant"`
	Phase            Phase        `json:"phase"`
	PoolSize         uint64       `json:"pool_size"`
	ParticipantCount uint32       `json:"participant_count"`
	// Entrants lists players in first-join order; jackpot ticket ranges
	// follow it.
	Entrants []string     `json:"entrants"`
	Seed     outcome.Seed `json:"seed"`
	Result   Payload      `json:"result"`

	CrashPointBps uint32 `json:"crash_point_bps,omitempty"`
	Winner        string `json:"winner,omitempty"`
	WinnerPayout  uint64 `json:"winner_payout,omitempty"`

	StartedAt     time.Time `json:"started_at"`
	BettingEndsAt time.Time `json:"betting_ends_at"`
	ActivatedAt   time.Time `json:"activated_at"`
	EndedAt       time.Time `json:"ended_at"`
}

// Participant is one player's stake in a round.
type Participant struct {
	Player               string    `json:"player"`
	Pool                 string    `json:"pool"`
	Round                uint64    `json:"round"`
	Amount               uint64    `json:"amount"`
	Tickets              uint64    `json:"tickets,omitempty"`
	CashedOut            bool      `json:"cashed_out"`
	CashoutMultiplierBps uint32    `json:"cashout_multiplier_bps"`
	Payout               uint64    `json:"payout"`
	JoinedAt             time.Time `json:"joined_at"`
	CashedOutAt          time.Time `json:"cashed_out_at"`
}

// Start advances the pool's round counter and opens a Betting round.
func Start(p *pool.GamePool, window time.Duration, now time.Time) (*Round, error) {
	if !p.Variant.IsRound() {
		return nil, apperr.ErrWrongVariant.With("variant", string(p.Variant))
	}
	if !p.Active {
		return nil, apperr.ErrGameNotActive.With("pool", p.Slug)
	}
	n, err := p.NextRound()
	if err != nil {
		return nil, err
	}
	return &Round{
		Pool:          p.Slug,
		Number:        n,
		Variant:       p.Variant,
		Phase:         Betting,
		StartedAt:     now,
		BettingEndsAt: now.Add(window),
	}, nil
}

// Join adds amount (and tickets, for jackpot) to the player's stake. Pass a
// nil existing participant for a first entry. Nothing is mutated on error.
func (r *Round) Join(existing *Participant, player string, amount, tickets uint64, now time.Time) (*Participant, error) {
	if r.Phase != Betting {
		return nil, apperr.ErrRoundNotBetting.With("phase", string(r.Phase))
	}
	size, err := payout.Add(r.PoolSize, amount)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		count, err := payout.Add(uint64(r.ParticipantCount), 1)
		if err != nil || count > uint64(^uint32(0)) {
			return nil, apperr.ErrOverflow.With("field", "participant_count")
		}
		r.PoolSize = size
		r.ParticipantCount = uint32(count)
		r.Entrants = append(r.Entrants, player)
		return &Participant{
			Player:   player,
			Pool:     r.Pool,
			Round:    r.Number,
			Amount:   amount,
			Tickets:  tickets,
			JoinedAt: now,
		}, nil
	}

	stake, err := payout.Add(existing.Amount, amount)
	if err != nil {
		return nil, err
	}
	held, err := payout.Add(existing.Tickets, tickets)
	if err != nil {
		return nil, err
	}
	r.PoolSize = size
	existing.Amount = stake
	existing.Tickets = held
	return existing, nil
}

// Activate closes betting on a crash round and opens cash-outs.
func (r *Round) Activate(now time.Time) error {
	if r.Variant != pool.Crash {
		return apperr.ErrWrongVariant.With("variant", string(r.Variant))
	}
	if r.Phase != Betting {
		return apperr.ErrRoundNotBetting.With("phase", string(r.Phase))
	}
	r.Phase = Active
	r.ActivatedAt = now
	return nil
}

// Cashout locks in the participant's multiplier and returns the payout.
func (r *Round) Cashout(part *Participant, policy CashoutMultiplier, now time.Time) (uint64, error) {
	if r.Phase != Active {
		return 0, apperr.ErrRoundNotBetting.With("phase", string(r.Phase))
	}
	if part.CashedOut {
		return 0, apperr.ErrAlreadyCashedOut.With("player", part.Player)
	}
	mult, err := policy.MultiplierBps(r, now)
	if err != nil {
		return 0, err
	}
	amount, err := payout.ApplyBps(part.Amount, uint64(mult))
	if err != nil {
		return 0, err
	}
	part.CashedOut = true
	part.CashoutMultiplierBps = mult
	part.Payout = amount
	part.CashedOutAt = now
	return amount, nil
}

func (r *Round) checkSeed(seed outcome.Seed) error {
	if seed.IsZero() {
		return apperr.ErrInvalidSeed
	}
	return nil
}

func (r *Round) end(seed outcome.Seed, now time.Time) {
	r.Seed = seed
	r.Phase = Ended
	r.EndedAt = now
}

// ResolveCrash derives the crash point from seed and ends the round. It is
// legal from Betting or Active. The point is stored little-endian in the
// first four result bytes.
func (r *Round) ResolveCrash(seed outcome.Seed, crashEdgeBps uint16, now time.Time) (uint32, error) {
	if r.Variant != pool.Crash {
		return 0, apperr.ErrWrongVariant.With("variant", string(r.Variant))
	}
	if r.Phase == Ended {
		return 0, apperr.ErrRoundEnded
	}
	if err := r.checkSeed(seed); err != nil {
		return 0, err
	}
	point := outcome.CrashPoint(seed, crashEdgeBps)
	r.CrashPointBps = point
	r.Result = Payload{}
	putUint32(r.Result[:4], point)
	r.end(seed, now)
	return point, nil
}
