package gacha

// PitySystem handles a "hard pity": once Threshold-1 pulls in a row missed
// the Floor tier, the next pull is raised to at least Floor.
type PitySystem struct {
	Threshold int  // pulls per guarantee window, e.g. 10
	Floor     Tier // minimum tier guaranteed at the threshold
	Count     int  // pulls since the last Floor-or-better result
}

// NewPitySystem creates a hard pity tracker.
func NewPitySystem(threshold int, floor Tier) *PitySystem {
	return &PitySystem{Threshold: threshold, Floor: floor}
}

// Apply adjusts one raw tier.
// - If this pull reaches the threshold without a prior hit, it is raised to Floor.
// - A Floor-or-better result resets Count; otherwise Count increments.
func (ps *PitySystem) Apply(raw Tier) Tier {
	got := raw
	if ps.Threshold > 0 && ps.Count+1 >= ps.Threshold && !raw.AtLeast(ps.Floor) {
		got = ps.Floor
	}
	if got.AtLeast(ps.Floor) {
		ps.Count = 0
	} else {
		ps.Count++
	}
	return got
}
