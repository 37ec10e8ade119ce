package round

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/outcome"
	"github.com/xtding233/casino-core/internal/payout"
	"github.com/xtding233/casino-core/internal/pool"
)

// JackpotResult is the settled draw of a jackpot round.
type JackpotResult struct {
	// Winner is nil when the round sold no tickets.
	Winner       *Participant
	TicketIndex  uint32
	TotalTickets uint64
	Payout       uint64
}

// TicketsFor converts a ticket count into its token cost.
func TicketsFor(tickets, minBet uint64) (uint64, error) {
	if tickets == 0 {
		return 0, apperr.ErrBetTooSmall
	}
	return payout.Mul(tickets, minBet)
}

// WinnerAt maps a ticket index onto the participant holding it. Ranges are
// laid out in the order of parts, which must follow Round.Entrants.
func WinnerAt(parts []*Participant, index uint64) *Participant {
	var upper uint64
	for _, p := range parts {
		upper += p.Tickets
		if index < upper {
			return p
		}
	}
	return nil
}

// ResolveJackpot draws a winning ticket and ends the round. parts must be the
// round's participants in Entrants order. The winner's index in parts is
// stored little-endian in the first four result bytes.
func (r *Round) ResolveJackpot(seed outcome.Seed, parts []*Participant, houseEdgeBps uint16, now time.Time) (JackpotResult, error) {
	if r.Variant != pool.Jackpot {
		return JackpotResult{}, apperr.ErrWrongVariant.With("variant", string(r.Variant))
	}
	if r.Phase != Betting {
		return JackpotResult{}, apperr.ErrRoundEnded
	}
	if err := r.checkSeed(seed); err != nil {
		return JackpotResult{}, err
	}

	var total uint64
	for _, p := range parts {
		next, err := payout.Add(total, p.Tickets)
		if err != nil {
			return JackpotResult{}, err
		}
		total = next
	}
	if total > math.MaxUint32 {
		return JackpotResult{}, apperr.ErrOverflow.With("field", "tickets")
	}

	res := JackpotResult{TotalTickets: total}
	if total > 0 {
		amount, err := payout.Jackpot(r.PoolSize, houseEdgeBps)
		if err != nil {
			return JackpotResult{}, err
		}
		res.TicketIndex = outcome.JackpotIndex(seed, uint32(total))
		res.Winner = WinnerAt(parts, uint64(res.TicketIndex))
		res.Payout = amount
	}

	r.Result = Payload{}
	if res.Winner != nil {
		for i, p := range parts {
			if p == res.Winner {
				putUint32(r.Result[:4], uint32(i))
				break
			}
		}
		r.Winner = res.Winner.Player
		r.WinnerPayout = res.Payout
		res.Winner.Payout = res.Payout
	}
	r.end(seed, now)
	return res, nil
}

func putUint32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}
