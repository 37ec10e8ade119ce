package outcome

import "math"

const (
	// CrashFloorBps is returned for an adjusted draw of exactly zero, before clamping.
	CrashFloorBps = 100
	// CrashMinBps is 1.00x.
	CrashMinBps = 10000
	// CrashMaxBps is 100.00x.
	CrashMaxBps = 1000000
	// DefaultCrashEdgeBps is the edge folded into the crash distribution.
	// It is independent of a pool's house_edge_bps.
	DefaultCrashEdgeBps = 300
)

// CrashPoint derives the crash multiplier in basis points, always within
// [CrashMinBps, CrashMaxBps].
//
// The first four seed bytes (little endian) are normalized to [0,1], scaled
// by (1 - edge), and mapped through 0.99 / (1 - adjusted). The resulting
// distribution has an exponential tail biased toward the house.
func CrashPoint(s Seed, edgeBps uint16) uint32 {
	normalized := float64(s.word()) / float64(math.MaxUint32)
	edge := float64(edgeBps) / 10000
	adjusted := normalized * (1 - edge)

	if adjusted == 0 {
		return clampCrash(CrashFloorBps)
	}
	if adjusted >= 1 {
		return CrashMaxBps
	}
	crash := 0.99 / (1 - adjusted) * 10000
	if crash >= CrashMaxBps {
		return CrashMaxBps
	}
	return clampCrash(uint32(crash))
}

func clampCrash(bps uint32) uint32 {
	if bps < CrashMinBps {
		return CrashMinBps
	}
	if bps > CrashMaxBps {
		return CrashMaxBps
	}
	return bps
}
