package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/emsim/internal/dynamo"
)

func sine(n int, rate, freq, offset float64) ([]float64, []float64) {
	times := make([]float64, n)
	vals := make([]float64, n)
	for i := range vals {
		times[i] = float64(i) / rate
		vals[i] = offset + math.Sin(2*math.Pi*freq*times[i])
	}
	return times, vals
}

func TestDominantFrequency(t *testing.T) {
	_, vals := sine(256, 64, 2, 3)
	assert.InDelta(t, 2.0, DominantFrequency(vals, 64), 1e-9)
}

func TestSpectrumBins(t *testing.T) {
	_, vals := sine(128, 32, 4, 0)
	s := NewSpectrum(vals, 32)
	require.Len(t, s.Freqs, 65)
	assert.Equal(t, 16.0, s.Freqs[64])

	f, p := s.Peak()
	assert.InDelta(t, 4.0, f, 1e-9)
	assert.Greater(t, p, 10*s.Power[20])
}

func TestSpectrumDegenerate(t *testing.T) {
	assert.Empty(t, NewSpectrum([]float64{1}, 30).Power)
	assert.Empty(t, NewSpectrum([]float64{1, 2}, 0).Power)
	assert.Zero(t, DominantFrequency(make([]float64, 16), 30))
}

func TestArrivalTime(t *testing.T) {
	times := []float64{0, 1, 2, 3, 4}
	series := []float64{5, 5, 5.00001, 5.2, 5.5}

	at, ok := ArrivalTime(times, series, 1e-3)
	require.True(t, ok)
	assert.Equal(t, 3.0, at)

	_, ok = ArrivalTime(times, series, 1)
	assert.False(t, ok)
}

func TestCrossingsAndPeriod(t *testing.T) {
	times, vals := sine(300, 30, 0.5, 0)
	crossings := UpwardCrossings(times, vals, 0.5)
	require.GreaterOrEqual(t, len(crossings), 4)

	period, ok := MeanPeriod(crossings)
	require.True(t, ok)
	assert.InDelta(t, 2.0, period, 1e-2)

	_, ok = MeanPeriod(crossings[:1])
	assert.False(t, ok)
}

func TestPathToASCII(t *testing.T) {
	centers := []dynamo.Vec3{dynamo.V(-1, -1, 0), dynamo.V(0, 0, 0), dynamo.V(1, 1, 0)}
	path := Project(centers, 0, 1)
	require.NotNil(t, path)
	assert.Equal(t, Point2D{X: 1, Y: 1}, path.Points[2])

	out := PathToASCII(path, 20, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 10)
	assert.Equal(t, 3, strings.Count(out, "•"))

	assert.Nil(t, Project(centers, 0, 3))
	assert.Empty(t, PathToASCII(nil, 20, 10))
}
