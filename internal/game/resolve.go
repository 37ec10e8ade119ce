// resolve.go
package game

import "github.com/xtding233/casino-core/internal/pool"

// Overrides are applied on top of the pool layer, e.g. from command-line
// flags. Nil fields leave the file value alone.
type Overrides struct {
	MinBet          *uint64
	MaxBet          *uint64
	HouseEdgeBps    *uint16
	PlatformFee     *uint64
	CooldownSeconds *uint32
}

func (o Overrides) layer() RawConfig {
	return RawConfig{Pool: PoolSection{
		MinBet:          o.MinBet,
		MaxBet:          o.MaxBet,
		HouseEdgeBps:    o.HouseEdgeBps,
		PlatformFee:     o.PlatformFee,
		CooldownSeconds: o.CooldownSeconds,
	}}
}

type Resolver interface {
	// Returns merged RawConfig and the validated pool.Config
	Resolve(v pool.Variant, slug string, o Overrides) (RawConfig, pool.Config, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → variant → pool → overrides into a pool.Config.
func (l *Loader) Resolve(v pool.Variant, slug string, o Overrides) (RawConfig, pool.Config, error) {
	merged, err := l.LoadMerged(v, slug)
	if err != nil {
		return RawConfig{}, pool.Config{}, err
	}
	merged = mergeRaw(merged, o.layer())
	cfg, err := Normalize(merged)
	if err != nil {
		return RawConfig{}, pool.Config{}, err
	}
	return merged, cfg, nil
}
