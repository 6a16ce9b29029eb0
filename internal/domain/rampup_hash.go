package domain

import (
	"math"

	"github.com/spaolacci/murmur3"
)

// DrawForKey derives a stable draw in [MinDraw, MaxDraw] from key, so
// repeated resolutions for the same key (typically a flow's
// "<project>.<flow>" name) land in the same rampup bucket. The hash is
// MurmurHash3 x86_32 with seed 0, which keeps buckets stable with the
// dispatcher that introduced flow-keyed rampup.
func DrawForKey(key []byte) int {
	return drawFromHash(int32(murmur3.Sum32(key)))
}

// drawFromHash maps a signed 32-bit hash onto [MinDraw, MaxDraw]. The
// absolute value of math.MinInt32 does not fit in an int32, so that value
// maps to 0 before the reduction.
func drawFromHash(h int32) int {
	var abs int32
	switch {
	case h == math.MinInt32:
		abs = 0
	case h < 0:
		abs = -h
	default:
		abs = h
	}
	return int(abs%MaxDraw) + MinDraw
}
