package thermal_test

import (
	"context"
	"math"
	"math/cmplx"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/dynamics"
	"github.com/san-kum/isfsim/internal/hamiltonian"
	"github.com/san-kum/isfsim/internal/lattice"
	"github.com/san-kum/isfsim/internal/linalg"
	"github.com/san-kum/isfsim/internal/thermal"
)

var _ = Describe("Boltzmann states", func() {
	var h *hamiltonian.Diagonal

	BeforeEach(func() {
		cfg, err := lattice.NewConfig(3, 3, 2)
		Expect(err).NotTo(HaveOccurred())
		h, err = hamiltonian.Compile(lattice.HydrogenNickel, cfg)
		Expect(err).NotTo(HaveOccurred())
	})

	It("normalizes the populations", func() {
		p, err := thermal.BoltzmannWeights(h, 300)
		Expect(err).NotTo(HaveOccurred())
		sum := 0.0
		for i, w := range p {
			sum += w
			Expect(w).To(BeNumerically(">", 0))
			if i > 0 && h.Energies[i] > h.Energies[0] {
				Expect(w).To(BeNumerically("<", p[0]*(1+1e-12)))
			}
		}
		Expect(sum).To(BeNumerically("~", 1, 1e-12))
	})

	It("puts the whole population in the ground state at very low temperature", func() {
		p, err := thermal.BoltzmannWeights(h, 1e-6)
		Expect(err).NotTo(HaveOccurred())
		Expect(p[0]).To(BeNumerically("~", 1, 1e-12))
	})

	It("builds a deterministic state with a shared phase", func() {
		v, err := thermal.BoltzmannState(h, 300, 0.7)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Basis).To(BeIdenticalTo(h.Basis))
		Expect(v.Norm()).To(BeNumerically("~", 1, 1e-12))
		for _, c := range v.Data {
			Expect(cmplx.Phase(c)).To(BeNumerically("~", 0.7, 1e-12))
		}
	})

	It("draws reproducible random phases with the same magnitudes", func() {
		a, err := thermal.RandomBoltzmannState(h, 300, rand.New(rand.NewSource(7)))
		Expect(err).NotTo(HaveOccurred())
		b, err := thermal.RandomBoltzmannState(h, 300, rand.New(rand.NewSource(7)))
		Expect(err).NotTo(HaveOccurred())
		ref, err := thermal.BoltzmannState(h, 300, 0)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Data).To(Equal(b.Data))
		Expect(a.Norm()).To(BeNumerically("~", 1, 1e-12))
		for i := range a.Data {
			Expect(cmplx.Abs(a.Data[i])).To(BeNumerically("~", real(ref.Data[i]), 1e-12))
		}
	})

	DescribeTable("rejects invalid temperatures",
		func(temperature float64) {
			_, err := thermal.BoltzmannState(h, temperature, 0)
			Expect(err).To(MatchError(lattice.ErrInvalidConfig))
			_, err = thermal.RandomBoltzmannState(h, temperature, rand.New(rand.NewSource(1)))
			Expect(err).To(MatchError(lattice.ErrInvalidConfig))
		},
		Entry("zero", 0.0),
		Entry("negative", -10.0),
		Entry("NaN", math.NaN()),
		Entry("infinite", math.Inf(1)),
	)
})

var _ = Describe("Averager", func() {
	var (
		cfg   lattice.Config
		h     *hamiltonian.Diagonal
		op    basis.Operator
		times []float64
	)

	BeforeEach(func() {
		var err error
		cfg, err = lattice.NewConfig(3, 3, 2)
		Expect(err).NotTo(HaveOccurred())
		h, err = hamiltonian.Compile(lattice.HydrogenNickel, cfg)
		Expect(err).NotTo(HaveOccurred())
		op = basis.PeriodicXOperator(h.Basis, 1)
		times = dynamics.EvenlySpacedTimes(5, 0, 1e-12)
	})

	It("matches a single sample when n is one", func() {
		avg := thermal.NewAverager(rand.New(rand.NewSource(42)))
		mean, err := avg.AverageISF(context.Background(), h, op, times, 300, 1)
		Expect(err).NotTo(HaveOccurred())

		single, err := thermal.SampleISF(h, op, times, 300, rand.New(rand.NewSource(42)))
		Expect(err).NotTo(HaveOccurred())
		Expect(mean).To(Equal(single))
	})

	It("does not depend on the worker count", func() {
		one, err := thermal.NewAverager(rand.New(rand.NewSource(3)), thermal.WithWorkers(1)).
			AverageISF(context.Background(), h, op, times, 300, 16)
		Expect(err).NotTo(HaveOccurred())
		many, err := thermal.NewAverager(rand.New(rand.NewSource(3)), thermal.WithWorkers(8)).
			AverageISF(context.Background(), h, op, times, 300, 16)
		Expect(err).NotTo(HaveOccurred())
		Expect(many).To(Equal(one))
	})

	It("converges towards the exact thermal ISF", func() {
		exact, err := thermal.ExactBoltzmannISF(h, op, times, 300)
		Expect(err).NotTo(HaveOccurred())

		mean, err := thermal.NewAverager(rand.New(rand.NewSource(11))).
			AverageISF(context.Background(), h, op, times, 300, 2000)
		Expect(err).NotTo(HaveOccurred())
		for i := range times {
			Expect(cmplx.Abs(mean[i]-exact[i])).To(BeNumerically("<", 0.1), "t=%g", times[i])
		}
	})

	It("uses the supplied compiler", func() {
		calls := 0
		compiler := func(s lattice.PeriodicSystem, c lattice.Config) (*hamiltonian.Diagonal, error) {
			calls++
			return hamiltonian.Compile(s, c)
		}
		avg := thermal.NewAverager(rand.New(rand.NewSource(1)), thermal.WithCompiler(compiler))
		_, err := avg.AverageBoltzmannISF(context.Background(), lattice.HydrogenNickel, cfg, times, 1, 300, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(calls).To(Equal(1))
	})

	It("rejects a non-positive sample count", func() {
		_, err := thermal.NewAverager(rand.New(rand.NewSource(1))).
			AverageISF(context.Background(), h, op, times, 300, 0)
		Expect(err).To(MatchError(lattice.ErrInvalidConfig))
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := thermal.NewAverager(rand.New(rand.NewSource(1))).
			AverageISF(ctx, h, op, times, 300, 4)
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("Exact thermal ISF", func() {
	It("is real and bounded at time zero and never exceeds it", func() {
		cfg, err := lattice.NewConfig(3, 5, 2)
		Expect(err).NotTo(HaveOccurred())
		h, err := hamiltonian.Compile(lattice.HydrogenNickel, cfg)
		Expect(err).NotTo(HaveOccurred())
		op := basis.PeriodicXOperator(h.Basis, 1)

		isf, err := thermal.ExactBoltzmannISF(h, op, dynamics.EvenlySpacedTimes(8, 0, 2e-12), 300)
		Expect(err).NotTo(HaveOccurred())
		Expect(imag(isf[0])).To(BeNumerically("~", 0, 1e-12))
		Expect(real(isf[0])).To(BeNumerically("<=", 1+1e-12))
		for _, v := range isf[1:] {
			Expect(cmplx.Abs(v)).To(BeNumerically("<=", real(isf[0])+1e-12))
		}
	})

	It("reports non-finite times as a numerical failure", func() {
		cfg, err := lattice.NewConfig(2, 3, 1)
		Expect(err).NotTo(HaveOccurred())
		h, err := hamiltonian.Compile(lattice.HydrogenNickel, cfg)
		Expect(err).NotTo(HaveOccurred())
		op := basis.PeriodicXOperator(h.Basis, 1)

		for _, bad := range []float64{math.NaN(), math.Inf(1)} {
			_, err = thermal.ExactBoltzmannISF(h, op, []float64{0, bad}, 300)
			Expect(err).To(MatchError(linalg.ErrNumericalFailure))
		}
	})

	It("rejects an operator in another basis", func() {
		cfg, err := lattice.NewConfig(2, 3, 1)
		Expect(err).NotTo(HaveOccurred())
		h, err := hamiltonian.Compile(lattice.HydrogenNickel, cfg)
		Expect(err).NotTo(HaveOccurred())
		op := basis.PeriodicXOperator(h.Basis.FundamentalMomentum(), 1)

		_, err = thermal.ExactBoltzmannISF(h, op, []float64{0}, 300)
		Expect(err).To(MatchError(basis.ErrBasisMismatch))
	})
})

var _ = Describe("Hydrogen on nickel", func() {
	It("decoheres from close to one", func() {
		cfg, err := lattice.NewConfig(3, 3, 2)
		Expect(err).NotTo(HaveOccurred())
		times := dynamics.EvenlySpacedTimes(5, 0, 1e-12)

		isf, err := thermal.NewAverager(rand.New(rand.NewSource(2024))).
			AverageBoltzmannISF(context.Background(), lattice.HydrogenNickel, cfg, times, 1, 300, 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(isf).To(HaveLen(5))

		Expect(imag(isf[0])).To(BeNumerically("~", 0, 1e-12))
		Expect(cmplx.Abs(isf[0])).To(BeNumerically("<=", 1+1e-12))
		Expect(cmplx.Abs(isf[0])).To(BeNumerically(">", 0.95))
		for _, v := range isf {
			Expect(cmplx.Abs(v)).To(BeNumerically("<=", 1+1e-12))
		}
		for k := 0; k < 3; k++ {
			Expect(cmplx.Abs(isf[k+1])).To(BeNumerically("<=", cmplx.Abs(isf[k])), "sample %d", k+1)
		}
	})
})
