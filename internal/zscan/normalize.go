package zscan

import (
	"math"
	"sort"
)

// Pair zips distances and voltages index by index into an ordered SampleSet.
// When the rows differ in length the unmatched tail of the longer one is
// dropped.
func Pair(distances, voltages []float64) SampleSet {
	n := min(len(distances), len(voltages))
	samples := make([]Sample, n)
	for i := 0; i < n; i++ {
		samples[i] = Sample{Distance: distances[i], Voltage: voltages[i]}
	}
	return sortByDistance(samples)
}

// Normalize returns a SampleSet holding a copy of samples, stably sorted by
// distance. Samples with a NaN or infinite coordinate are dropped.
func Normalize(samples []Sample) SampleSet {
	cp := make([]Sample, len(samples))
	copy(cp, samples)
	return sortByDistance(cp)
}

// sortByDistance filters non-finite samples in place and sorts the rest.
// Ties keep their acquisition order.
func sortByDistance(samples []Sample) SampleSet {
	kept := samples[:0]
	for _, s := range samples {
		if !finite(s.Distance) || !finite(s.Voltage) {
			continue
		}
		kept = append(kept, s)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Distance < kept[j].Distance
	})
	return SampleSet(kept)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
