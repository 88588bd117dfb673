package forces_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/forces"
)

// fixedSource is a source whose past is a single frozen instant.
type fixedSource struct {
	center    dynamo.Vec3
	charge    float64
	radius    float64
	history   bool
	past      dynamo.Vec3
	acc       dynamo.Vec3
	delays    []float64
	accDelays []float64
}

func (s *fixedSource) Center() dynamo.Vec3 { return s.center }
func (s *fixedSource) Charge() float64     { return s.charge }
func (s *fixedSource) Radius() float64     { return s.radius }
func (s *fixedSource) TracksHistory() bool { return s.history }

func (s *fixedSource) PastPositions(delays []float64) ([]dynamo.Vec3, error) {
	if !s.history {
		return nil, dynamo.ErrHistoryDisabled
	}
	s.delays = append([]float64(nil), delays...)
	out := make([]dynamo.Vec3, len(delays))
	for i := range out {
		out[i] = s.past
	}
	return out, nil
}

func (s *fixedSource) PastAccelerations(delays []float64) ([]dynamo.Vec3, error) {
	if !s.history {
		return nil, dynamo.ErrHistoryDisabled
	}
	s.accDelays = append([]float64(nil), delays...)
	out := make([]dynamo.Vec3, len(delays))
	for i := range out {
		out[i] = s.acc
	}
	return out, nil
}

var _ = Describe("Coulomb", func() {
	var (
		src    *fixedSource
		params forces.Params
	)

	BeforeEach(func() {
		src = &fixedSource{charge: 2, radius: 0.5}
		params = forces.DefaultParams()
	})

	It("follows the inverse-square law outside the radius", func() {
		f, err := forces.Coulomb([]dynamo.Vec3{dynamo.V(2, 0, 0), dynamo.V(0, 4, 0)}, src, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(f[0].X).To(BeNumerically("~", 2.0/4, 1e-12))
		Expect(f[1].Y).To(BeNumerically("~", 2.0/16, 1e-12))
	})

	It("quarters when the distance doubles", func() {
		f, err := forces.Coulomb([]dynamo.Vec3{dynamo.V(1, 0, 0), dynamo.V(2, 0, 0)}, src, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(f[1].Norm() / f[0].Norm()).To(BeNumerically("~", 0.25, 1e-12))
	})

	It("suppresses the singularity inside the radius", func() {
		r := src.radius
		prev := math.Inf(1)
		for _, d := range []float64{0.4, 0.2, 0.1, 0.01, 1e-6} {
			f, err := forces.Coulomb([]dynamo.Vec3{dynamo.V(d, 0, 0)}, src, params)
			Expect(err).NotTo(HaveOccurred())
			mag := f[0].Norm()
			Expect(mag).To(BeNumerically("<", src.charge/(d*d)))
			Expect(mag).To(BeNumerically("<=", src.charge/(r*r)))
			Expect(mag).To(BeNumerically("<", prev))
			prev = mag
		}
	})

	It("is exactly zero on top of the source", func() {
		f, err := forces.Coulomb([]dynamo.Vec3{dynamo.Zero}, src, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(f[0]).To(Equal(dynamo.Zero))
	})

	It("uses an explicit radius over the source radius", func() {
		params.Radius = 2
		f, err := forces.Coulomb([]dynamo.Vec3{dynamo.V(1, 0, 0)}, src, params)
		Expect(err).NotTo(HaveOccurred())
		// adjusted distance r²/d = 4
		Expect(f[0].X).To(BeNumerically("~", 2.0/16, 1e-12))
	})

	It("returns an empty batch for no points", func() {
		f, err := forces.Coulomb(nil, src, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeEmpty())
	})

	It("rejects a negative radius", func() {
		params.Radius = -1
		_, err := forces.Coulomb([]dynamo.Vec3{dynamo.V(1, 0, 0)}, src, params)
		Expect(err).To(MatchError(dynamo.ErrNegativeRadius))
	})

	It("looks the source up at the delay implied by its present distance", func() {
		src.history = true
		src.center = dynamo.V(1, 0, 0)
		src.past = dynamo.Zero

		f, err := forces.Coulomb([]dynamo.Vec3{dynamo.V(5, 0, 0)}, src, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(src.delays).To(Equal([]float64{4 / params.C}))
		Expect(f[0].X).To(BeNumerically("~", 2.0/25, 1e-12))
	})
})

var _ = Describe("Lorentz", func() {
	var (
		src    *fixedSource
		params forces.Params
	)

	BeforeEach(func() {
		src = &fixedSource{charge: 1, radius: 0.1, history: true, acc: dynamo.V(0, 3, 0)}
		params = forces.DefaultParams()
	})

	It("fails loudly without history", func() {
		src.history = false
		_, err := forces.Lorentz([]dynamo.Vec3{dynamo.V(1, 0, 0)}, src, params)
		Expect(err).To(MatchError(dynamo.ErrHistoryDisabled))
	})

	It("keeps only the acceleration transverse to the line of sight", func() {
		src.acc = dynamo.V(5, 3, 0)
		f, err := forces.Lorentz([]dynamo.Vec3{dynamo.V(2, 0, 0)}, src, params)
		Expect(err).NotTo(HaveOccurred())

		k := 4 * math.Pi * params.Epsilon0 * params.C * params.C
		Expect(f[0].X).To(BeNumerically("~", 0, 1e-12))
		Expect(f[0].Y).To(BeNumerically("~", -3/(k*2), 1e-12))
		Expect(f[0].Z).To(BeNumerically("~", 0, 1e-12))
	})

	It("vanishes for acceleration along the line of sight", func() {
		src.acc = dynamo.V(7, 0, 0)
		f, err := forces.Lorentz([]dynamo.Vec3{dynamo.V(3, 0, 0)}, src, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(f[0].Norm()).To(BeNumerically("~", 0, 1e-12))
	})

	It("doubles when the adjusted distance halves", func() {
		f, err := forces.Lorentz([]dynamo.Vec3{dynamo.V(4, 0, 0), dynamo.V(2, 0, 0)}, src, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(f[1].Norm() / f[0].Norm()).To(BeNumerically("~", 2, 1e-12))
	})

	It("reads acceleration at the true distance from the retarded position", func() {
		src.radius = 0.5
		src.past = dynamo.V(0.05, 0, 0)
		point := dynamo.V(0.2, 0, 0)

		_, err := forces.Lorentz([]dynamo.Vec3{point}, src, params)
		Expect(err).NotTo(HaveOccurred())

		Expect(src.delays).To(HaveLen(1))
		Expect(src.delays[0]).To(BeNumerically("~", 0.2/params.C, 1e-12))

		g, err := forces.Locate([]dynamo.Vec3{point}, src, src.radius, params.C)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Distance[0]).To(BeNumerically("~", 0.15, 1e-12))
		Expect(g.Adjusted[0]).NotTo(BeNumerically("~", g.Distance[0], 1e-6))

		Expect(src.accDelays).To(HaveLen(1))
		Expect(src.accDelays[0]).To(BeNumerically("~", g.Distance[0]/params.C, 1e-12))
	})

	It("is zero on top of the source", func() {
		f, err := forces.Lorentz([]dynamo.Vec3{dynamo.Zero}, src, params)
		Expect(err).NotTo(HaveOccurred())
		Expect(f[0]).To(Equal(dynamo.Zero))
	})

	It("rejects a non-positive propagation speed", func() {
		params.C = 0
		_, err := forces.Lorentz([]dynamo.Vec3{dynamo.V(1, 0, 0)}, src, params)
		Expect(err).To(MatchError(dynamo.ErrInvalidSpeed))
	})
})

var _ = Describe("point forces", func() {
	It("pulls a spring toward its center", func() {
		f := forces.Spring(2, dynamo.V(1, 1, 0))
		Expect(f(dynamo.V(0, 1, 0))).To(Equal(dynamo.V(2, 0, 0)))
	})

	It("applies a uniform force everywhere", func() {
		f := forces.Uniform(dynamo.V(0, -9.8, 0))
		Expect(f(dynamo.V(100, 3, 2))).To(Equal(dynamo.V(0, -9.8, 0)))
	})
})
