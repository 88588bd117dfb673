package field_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/field"
	"github.com/san-kum/emsim/internal/forces"
	"github.com/san-kum/emsim/internal/particle"
)

func newParticle(at dynamo.Vec3, opts ...particle.Option) *particle.Particle {
	p, err := particle.New(at, opts...)
	Expect(err).NotTo(HaveOccurred())
	return p
}

func probe() []dynamo.Vec3 {
	return []dynamo.Vec3{
		dynamo.V(3, 0, 0), dynamo.V(0, 2, 1), dynamo.V(-1.5, -1, 0.5), dynamo.V(0.05, 0, 0),
	}
}

var _ = Describe("Field", func() {
	var a, b *particle.Particle

	BeforeEach(func() {
		a = newParticle(dynamo.V(-1, 0, 0), particle.WithCharge(1))
		b = newParticle(dynamo.V(1, 0, 0), particle.WithCharge(-2), particle.WithVelocity(dynamo.V(0, 1, 0)))
		b.AddSpringForce(4, dynamo.V(1, 0, 0))
		for i := 0; i < 20; i++ {
			_, err := b.Update(1.0 / 30)
			Expect(err).NotTo(HaveOccurred())
		}
	})

	DescribeTable("superposes sources linearly",
		func(kind field.Kind) {
			params := forces.DefaultParams()
			both, err := field.New(kind, params, a, b)
			Expect(err).NotTo(HaveOccurred())
			onlyA, err := field.New(kind, params, a)
			Expect(err).NotTo(HaveOccurred())
			onlyB, err := field.New(kind, params, b)
			Expect(err).NotTo(HaveOccurred())

			pts := probe()
			sum, err := both.At(pts)
			Expect(err).NotTo(HaveOccurred())
			fa, err := onlyA.At(pts)
			Expect(err).NotTo(HaveOccurred())
			fb, err := onlyB.At(pts)
			Expect(err).NotTo(HaveOccurred())

			for i := range pts {
				want := fa[i].Add(fb[i])
				Expect(sum[i].X).To(BeNumerically("~", want.X, 1e-12))
				Expect(sum[i].Y).To(BeNumerically("~", want.Y, 1e-12))
				Expect(sum[i].Z).To(BeNumerically("~", want.Z, 1e-12))
			}
		},
		Entry("coulomb", field.KindCoulomb),
		Entry("lorentz", field.KindLorentz),
	)

	It("returns zeros without sources", func() {
		f, err := field.Coulomb(forces.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		out, err := f.At(probe())
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(4))
		for _, v := range out {
			Expect(v).To(Equal(dynamo.Zero))
		}
	})

	It("returns an empty batch for no points", func() {
		f, err := field.Coulomb(forces.DefaultParams(), a, b)
		Expect(err).NotTo(HaveOccurred())
		out, err := f.At(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(BeEmpty())
	})

	It("reads live source state on every query", func() {
		f, err := field.Coulomb(forces.DefaultParams(), newParticle(dynamo.Zero, particle.WithHistory(false)))
		Expect(err).NotTo(HaveOccurred())
		before, err := f.At([]dynamo.Vec3{dynamo.V(2, 0, 0)})
		Expect(err).NotTo(HaveOccurred())

		f.Sources()[0].(*particle.Particle).MoveTo(dynamo.V(1, 0, 0))
		after, err := f.At([]dynamo.Vec3{dynamo.V(2, 0, 0)})
		Expect(err).NotTo(HaveOccurred())
		Expect(after[0].X).To(BeNumerically("~", 4*before[0].X, 1e-12))
	})

	It("gives the same answer for large batches", func() {
		f, err := field.Lorentz(forces.DefaultParams(), a, b)
		Expect(err).NotTo(HaveOccurred())

		grid := field.Grid{Min: dynamo.V(-4, -4, 0), Max: dynamo.V(4, 4, 0), Step: 0.25}
		pts, vals, err := f.Sample(grid)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(pts)).To(BeNumerically(">", 512))

		for i := 0; i < len(pts); i += 97 {
			single, err := f.At(pts[i : i+1])
			Expect(err).NotTo(HaveOccurred())
			Expect(vals[i]).To(Equal(single[0]))
		}
	})

	DescribeTable("propagates source errors without a partial result",
		func(pts func() []dynamo.Vec3) {
			f, err := field.Lorentz(forces.DefaultParams(), a, newParticle(dynamo.Zero, particle.WithHistory(false)))
			Expect(err).NotTo(HaveOccurred())
			vals, err := f.At(pts())
			Expect(err).To(MatchError(dynamo.ErrHistoryDisabled))
			Expect(vals).To(BeNil())
		},
		Entry("small batch", probe),
		Entry("large batch", func() []dynamo.Vec3 {
			pts, err := field.Grid{Min: dynamo.V(-4, -4, 0), Max: dynamo.V(4, 4, 0), Step: 0.25}.Points()
			Expect(err).NotTo(HaveOccurred())
			return pts
		}),
	)

	It("rejects unknown kinds and bad params", func() {
		_, err := field.New("gravity", forces.DefaultParams())
		Expect(err).To(MatchError(dynamo.ErrUnknownField))

		params := forces.DefaultParams()
		params.Radius = -1
		_, err = field.New(field.KindCoulomb, params)
		Expect(err).To(MatchError(dynamo.ErrNegativeRadius))
	})

	It("drives a particle through its field force", func() {
		f, err := field.Coulomb(forces.DefaultParams(), newParticle(dynamo.Zero, particle.WithCharge(1), particle.WithHistory(false)))
		Expect(err).NotTo(HaveOccurred())

		test := newParticle(dynamo.V(2, 0, 0), particle.WithCharge(1))
		test.AddFieldForce(f)
		_, err = test.Update(0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(test.Velocity().X).To(BeNumerically(">", 0))
	})
})

var _ = Describe("Grid", func() {
	It("enumerates an inclusive lattice", func() {
		pts, err := field.Grid{Min: dynamo.V(0, 0, 0), Max: dynamo.V(1, 1, 0), Step: 0.5}.Points()
		Expect(err).NotTo(HaveOccurred())
		Expect(pts).To(HaveLen(9))
		Expect(pts[0]).To(Equal(dynamo.V(0, 0, 0)))
		Expect(pts[8]).To(Equal(dynamo.V(1, 1, 0)))
	})

	It("rejects degenerate grids", func() {
		_, err := field.Grid{Step: 0}.Points()
		Expect(err).To(MatchError(dynamo.ErrInvalidGrid))
		_, err = field.Grid{Min: dynamo.V(1, 0, 0), Step: 0.1}.Points()
		Expect(err).To(MatchError(dynamo.ErrInvalidGrid))
	})
})
