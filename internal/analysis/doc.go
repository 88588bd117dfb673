// Package analysis post-processes recorded runs.
//
//   - [Spectrum] and [DominantFrequency]: windowed power spectrum of a
//     coordinate series
//   - [ArrivalTime]: first moment a series leaves its resting value, used
//     to read off how long a disturbance took to reach a particle
//   - [UpwardCrossings]: interpolated threshold crossings, whose spacing
//     gives an oscillation period
//   - [Project] and [PathToASCII]: a particle's path in one coordinate plane
//
// A receiver driven by radiation starts moving roughly distance/c after
// the source does:
//
//	ys, _ := traj.Series("receiver", 1)
//	t, ok := analysis.ArrivalTime(traj.Times, ys, 1e-4)
package analysis
