package analysis

import "math"

// ArrivalTime is the first time at which series departs from its initial
// value by more than tol.
func ArrivalTime(times, series []float64, tol float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	rest := series[0]
	for i, v := range series {
		if math.Abs(v-rest) > tol {
			return times[i], true
		}
	}
	return 0, false
}

// UpwardCrossings returns the linearly interpolated times at which series
// rises through threshold.
func UpwardCrossings(times, series []float64, threshold float64) []float64 {
	var out []float64
	for i := 1; i < len(series); i++ {
		prev, curr := series[i-1], series[i]
		if prev < threshold && curr >= threshold {
			frac := (threshold - prev) / (curr - prev)
			if math.IsNaN(frac) || math.IsInf(frac, 0) {
				frac = 0.5
			}
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// MeanPeriod averages the spacing of successive crossings.
func MeanPeriod(crossings []float64) (float64, bool) {
	if len(crossings) < 2 {
		return 0, false
	}
	return (crossings[len(crossings)-1] - crossings[0]) / float64(len(crossings)-1), true
}
