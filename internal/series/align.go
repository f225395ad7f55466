// Package series holds the benchmark alignment and derivation math. All
// functions are pure; a nil element marks a position with no usable value.
package series

import "time"

// Staleness is the maximum distance between a target timestamp and its
// nearest benchmark sample. Beyond it the aligned position stays nil, so a
// market-holiday gap in one calendar never borrows a day-old price from the
// other.
const Staleness = time.Hour

// Align maps benchmark samples onto the target timeline. For every target
// timestamp the benchmark sample with the smallest absolute time distance is
// chosen (earlier benchmark index wins an exact tie); a sample may serve
// several target positions. The result has exactly one entry per target
// timestamp, except when either input is empty, in which case it is empty.
func Align(target []time.Time, benchTimes []time.Time, benchClose []float64) []*float64 {
	if len(target) == 0 || len(benchTimes) == 0 || len(benchClose) == 0 {
		return []*float64{}
	}

	n := len(benchTimes)
	if len(benchClose) < n {
		n = len(benchClose)
	}

	out := make([]*float64, len(target))
	for i, t := range target {
		best := 0
		bestDiff := absDuration(t.Sub(benchTimes[0]))
		for j := 1; j < n; j++ {
			if d := absDuration(t.Sub(benchTimes[j])); d < bestDiff {
				best, bestDiff = j, d
			}
		}
		if bestDiff <= Staleness {
			v := benchClose[best]
			out[i] = &v
		}
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
