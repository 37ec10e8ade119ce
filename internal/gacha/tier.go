package gacha

import "fmt"

// Tier is a prize rarity.
type Tier uint8

const (
	Common Tier = iota
	Rare
	Epic
	Legendary
)

func (t Tier) String() string {
	switch t {
	case Common:
		return "common"
	case Rare:
		return "rare"
	case Epic:
		return "epic"
	case Legendary:
		return "legendary"
	default:
		return fmt.Sprintf("tier(%d)", uint8(t))
	}
}

// MultiplierBps is the stake multiplier paid for one pull of this tier.
func (t Tier) MultiplierBps() uint64 {
	switch t {
	case Common:
		return 5000
	case Rare:
		return 20000
	case Epic:
		return 50000
	case Legendary:
		return 100000
	default:
		return 0
	}
}

// AtLeast reports whether t is as rare as other or rarer.
func (t Tier) AtLeast(other Tier) bool {
	return t >= other
}

// TierFromByte maps one random byte through the cumulative table:
//
//	0-189   common    (190/256)
//	190-240 rare      (51/256)
//	241-252 epic      (12/256)
//	253-255 legendary (3/256)
func TierFromByte(b byte) Tier {
	switch {
	case b <= 189:
		return Common
	case b <= 240:
		return Rare
	case b <= 252:
		return Epic
	default:
		return Legendary
	}
}

// MaxMultiplierBps is the best possible per-pull multiplier.
const MaxMultiplierBps = 100000

// ParseTier is the inverse of Tier.String.
func ParseTier(s string) (Tier, error) {
	for t := Common; t <= Legendary; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q", s)
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
