// types.go
package game

// RawConfig is one YAML layer. Every field is optional so a pool file only
// needs to carry what it changes.
type RawConfig struct {
	Version string      `yaml:"version"`
	Pool    PoolSection `yaml:"pool"`
	Notes   string      `yaml:"notes,omitempty"`
}

// PoolSection mirrors pool.Config with pointer fields so an unset value can
// be told apart from an explicit zero.
type PoolSection struct {
	MinBet          *uint64 `yaml:"min_bet"`
	MaxBet          *uint64 `yaml:"max_bet"`
	HouseEdgeBps    *uint16 `yaml:"house_edge_bps"`
	PlatformFee     *uint64 `yaml:"platform_fee"`
	CooldownSeconds *uint32 `yaml:"cooldown_seconds"`
}
