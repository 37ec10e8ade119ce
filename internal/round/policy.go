package round

import "time"

// CashoutMultiplier supplies the live crash multiplier at cash-out time.
// A production deployment should back this with a committed source the
// players cannot compute ahead of time.
type CashoutMultiplier interface {
	MultiplierBps(r *Round, now time.Time) (uint32, error)
}

// ElapsedMultiplier grows linearly with whole seconds since the round
// started: Base + elapsed*Step. A zero Cap leaves it unbounded apart from
// saturating at the largest uint32.
type ElapsedMultiplier struct {
	BaseBps uint32
	StepBps uint32
	CapBps  uint32
}

// DefaultCashout is 1.00x plus 0.01x per second with no cap.
func DefaultCashout() ElapsedMultiplier {
	return ElapsedMultiplier{BaseBps: 10000, StepBps: 100}
}

func (m ElapsedMultiplier) MultiplierBps(r *Round, now time.Time) (uint32, error) {
	elapsed := now.Unix() - r.StartedAt.Unix()
	if elapsed < 0 {
		elapsed = 0
	}
	limit := uint64(^uint32(0))
	if m.CapBps > 0 {
		limit = uint64(m.CapBps)
	}
	if m.StepBps > 0 && uint64(elapsed) > limit/uint64(m.StepBps) {
		return uint32(limit), nil
	}
	mult := uint64(m.BaseBps) + uint64(elapsed)*uint64(m.StepBps)
	if mult > limit {
		mult = limit
	}
	return uint32(mult), nil
}

// FixedMultiplier always returns the same multiplier. Useful when an external
// feed has already decided the value for a cash-out.
type FixedMultiplier uint32

func (f FixedMultiplier) MultiplierBps(*Round, time.Time) (uint32, error) {
	return uint32(f), nil
}
