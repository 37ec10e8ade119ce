// Package outcome maps a 32-byte random seed to game results.
//
// Every function is pure: the same seed always yields the same result, so any
// resolution can be replayed from the stored seed for audit.
package outcome

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// SeedSize is the length of a random seed in bytes.
const SeedSize = 32

// Seed is the value delivered by the random-value authority. The zero value
// marks a record that has not been resolved yet.
type Seed [SeedSize]byte

// IsZero reports whether s is the unresolved sentinel.
func (s Seed) IsZero() bool {
	return s == Seed{}
}

func (s Seed) String() string {
	return hex.EncodeToString(s[:])
}

// ParseSeed decodes a 64-character hex string.
func ParseSeed(h string) (Seed, error) {
	var s Seed
	b, err := hex.DecodeString(h)
	if err != nil {
		return s, fmt.Errorf("decode seed: %w", err)
	}
	if len(b) != SeedSize {
		return s, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(b))
	}
	copy(s[:], b)
	return s, nil
}

// MarshalText encodes the seed as hex.
func (s Seed) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a hex seed.
func (s *Seed) UnmarshalText(text []byte) error {
	parsed, err := ParseSeed(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// word returns the first four bytes as a little-endian uint32.
func (s Seed) word() uint32 {
	return binary.LittleEndian.Uint32(s[:4])
}

// Side is a coin face.
type Side uint8

const (
	Heads Side = 0
	Tails Side = 1
)

func (s Side) String() string {
	switch s {
	case Heads:
		return "heads"
	case Tails:
		return "tails"
	default:
		return "unknown"
	}
}

// ParseSide accepts "heads" or "tails".
func ParseSide(v string) (Side, error) {
	switch v {
	case "heads", "Heads", "0":
		return Heads, nil
	case "tails", "Tails", "1":
		return Tails, nil
	default:
		return 0, fmt.Errorf("unknown coin side %q", v)
	}
}

func (s Side) MarshalText() ([]byte, error) {
	if s > Tails {
		return nil, fmt.Errorf("unknown coin side %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(text []byte) error {
	parsed, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Coin uses the parity of the first byte. Only one bit of the seed is consumed.
func Coin(s Seed) Side {
	if s[0]%2 == 0 {
		return Heads
	}
	return Tails
}

// JackpotIndex returns the winning ticket index in [0, totalTickets).
// totalTickets must be positive.
func JackpotIndex(s Seed, totalTickets uint32) uint32 {
	return s.word() % totalTickets
}
