package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

type Spectrum struct {
	Freqs []float64
	Power []float64
}

// NewSpectrum returns the one-sided magnitude spectrum of data sampled at
// rate Hz. The mean is removed and a Hann window applied first.
func NewSpectrum(data []float64, rate float64) Spectrum {
	n := len(data)
	if n < 2 || rate <= 0 {
		return Spectrum{}
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	buf := make([]float64, n)
	for i, v := range data {
		buf[i] = v - mean
	}
	window.Apply(buf, window.Hann)

	out := fft.FFTReal(buf)
	half := n/2 + 1
	s := Spectrum{Freqs: make([]float64, half), Power: make([]float64, half)}
	for k := 0; k < half; k++ {
		s.Freqs[k] = float64(k) * rate / float64(n)
		s.Power[k] = cmplx.Abs(out[k])
	}
	return s
}

// Peak is the non-DC bin with the largest magnitude.
func (s Spectrum) Peak() (freq, power float64) {
	for k := 1; k < len(s.Power); k++ {
		if s.Power[k] > power {
			freq, power = s.Freqs[k], s.Power[k]
		}
	}
	return freq, power
}

func DominantFrequency(data []float64, rate float64) float64 {
	f, _ := NewSpectrum(data, rate).Peak()
	return f
}
