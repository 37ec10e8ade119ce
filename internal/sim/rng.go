package sim

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"

	"github.com/xtding233/casino-core/internal/outcome"
)

// RandomSource produces 64 random bits at a time.
type RandomSource interface {
	Uint64() uint64
}

// crypto random : default generation method
type cryptoRNG struct{}

func (cryptoRNG) Uint64() uint64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// back to math/rand/v2
		return rand.Uint64()
	}
	return binary.LittleEndian.Uint64(buf[:])
}

func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG (e.g. Monte Carlo)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Uint64() uint64 { return s.r.Uint64() }

// NewSeed fills a seed from rng. It never returns the all-zero sentinel.
func NewSeed(rng RandomSource) outcome.Seed {
	if rng == nil {
		rng = DefaultRNG()
	}
	for {
		var s outcome.Seed
		for i := 0; i < outcome.SeedSize; i += 8 {
			binary.LittleEndian.PutUint64(s[i:i+8], rng.Uint64())
		}
		if !s.IsZero() {
			return s
		}
	}
}
