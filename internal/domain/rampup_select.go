package domain

import "sort"

// MinDraw and MaxDraw bound the draw used to select among rampup entries.
const (
	MinDraw = 1
	MaxDraw = 100
)

// SelectWeighted picks the entry whose percentage range contains draw.
//
// Entries are ordered by ascending percentage; entries with equal
// percentages keep their input order. Walking that order with a running
// total prev, each entry owns the range [prev+1, prev+percentage], so a
// zero-percentage entry owns nothing and is never selected. When the
// percentages sum to 100 every draw in [MinDraw, MaxDraw] lands in exactly
// one range. The second result is false when no range contains draw, which
// only happens for a plan that breaks that invariant.
//
// The input slice is not modified.
func SelectWeighted(entries []RampupEntry, draw int) (RampupEntry, bool) {
	sorted := make([]RampupEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Percentage < sorted[j].Percentage
	})

	prev := 0
	for _, e := range sorted {
		if e.Percentage > 0 && draw >= prev+1 && draw <= prev+e.Percentage {
			return e, true
		}
		prev += e.Percentage
	}
	return RampupEntry{}, false
}
