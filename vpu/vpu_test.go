package vpu_test

import (
	"github.com/pkg/errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/systolic/array"
	"github.com/sarchlab/systolic/fixed"
	"github.com/sarchlab/systolic/util/valgen"
	"github.com/sarchlab/systolic/verify"
	"github.com/sarchlab/systolic/vpu"
)

var w8 = fixed.Width(8)

func example() ([]fixed.Value, [][]fixed.Value) {
	return w8.Values(9, 3), w8.Matrix([][]uint64{{3, 4}, {5, 6}})
}

func clockN(g array.Grid, n int) {
	for i := 0; i < n; i++ {
		g.Clock()
	}
}

var _ = Describe("Vpu", func() {
	var (
		v       *vpu.Vpu
		acts    []fixed.Value
		weights [][]fixed.Value
	)

	BeforeEach(func() {
		var err error
		acts, weights = example()
		v, err = vpu.NewVpu(acts, weights)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should start idle", func() {
		Expect(v.Size()).To(Equal(2))
		Expect(v.Width()).To(Equal(w8))
		Expect(v.Dataflow()).To(Equal(array.OutputStationary))
		Expect(v.Counter()).To(Equal(uint64(0)))
		Expect(v.Done()).To(BeFalse())
		Expect(v.Result()).To(Equal(w8.Values(0, 0)))
		Expect(v.Weight(0, 1)).To(Equal(w8.Of(4)))
	})

	It("should fire the top-left cell first", func() {
		v.Clock()

		Expect(v.Snapshot().ActiveCells()).To(Equal([][2]int{{0, 0}}))
		Expect(v.DownLatch(0, 0)).To(Equal(w8.Of(9)))
		Expect(v.RightLatch(0, 0)).To(Equal(w8.Of(27)))
	})

	It("should trickle the result out of the last column", func() {
		clockN(v, 2)

		Expect(v.Snapshot().ActiveCells()).
			To(Equal([][2]int{{0, 1}, {1, 0}}))
		Expect(v.RightLatch(0, 1)).To(Equal(w8.Of(39)))
		Expect(v.RightLatch(1, 1)).To(Equal(w8.Zero()))
		Expect(v.Done()).To(BeFalse())

		v.Clock()

		Expect(v.Done()).To(BeTrue())
		Expect(v.Counter()).To(Equal(uint64(3)))
		Expect(v.Result()).To(Equal(w8.Values(39, 63)))
	})

	It("should enable exactly one diagonal per cycle", func() {
		for cycle := 0; cycle < 3; cycle++ {
			v.Clock()

			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					Expect(v.Enabled(i, j)).To(Equal(i+j == cycle))
				}
			}
		}
	})

	It("should keep the stationary weights", func() {
		clockN(v, 3)

		Expect(v.MacValues()).To(Equal(weights))
	})

	It("should hold the result when clocked past completion", func() {
		clockN(v, 3)
		done := v.Snapshot()

		clockN(v, 5)

		Expect(v.Result()).To(Equal(w8.Values(39, 63)))
		Expect(v.Snapshot().ActiveCells()).To(BeEmpty())
		Expect(v.Snapshot().Right).To(Equal(done.Right))
		Expect(v.Snapshot().Down).To(Equal(done.Down))
	})

	It("should replay identically after reset", func() {
		first := make([]array.Snapshot, 0)
		for !v.Done() {
			v.Clock()
			first = append(first, v.Snapshot())
		}

		v.Reset()
		Expect(v.Counter()).To(Equal(uint64(0)))
		Expect(v.Result()).To(Equal(w8.Values(0, 0)))
		Expect(v.MacValues()).To(Equal(w8.Matrix([][]uint64{{0, 0}, {0, 0}})))

		for _, want := range first {
			v.Clock()
			Expect(v.Snapshot()).To(Equal(want))
		}
	})

	It("should not be affected by later changes to the inputs", func() {
		acts[0] = w8.Of(100)
		weights[0][0] = w8.Of(100)

		clockN(v, 3)

		Expect(v.Result()).To(Equal(w8.Values(39, 63)))
	})

	It("should wrap like a hardware register", func() {
		w, err := vpu.NewVpu(
			w8.Values(20, 1),
			w8.Matrix([][]uint64{{20, 200}, {1, 1}}))
		Expect(err).NotTo(HaveOccurred())

		clockN(w, 3)

		// 20*20 + 200 = 600 = 88 mod 256
		Expect(w.Result()).To(Equal(w8.Values(88, 21)))
	})

	It("should match the reference product on random inputs", func() {
		for n := 1; n <= 8; n++ {
			gen := valgen.MakeRandomGen(int64(100+n), w8, 0)
			a := valgen.Vector(gen, n)
			m := valgen.Matrix(gen, n)

			g, err := vpu.NewVpu(a, m)
			Expect(err).NotTo(HaveOccurred())

			clockN(g, 2*n-1)

			Expect(g.Done()).To(BeTrue())
			Expect(g.Result()).To(Equal(verify.MatVec(m, a)))
		}
	})
})

var _ = Describe("Shape checks", func() {
	constructors := map[string]func([]fixed.Value, [][]fixed.Value) error{
		"Vpu": func(a []fixed.Value, m [][]fixed.Value) error {
			_, err := vpu.NewVpu(a, m)
			return err
		},
		"Hsa": func(a []fixed.Value, m [][]fixed.Value) error {
			_, err := vpu.NewHsa(a, m)
			return err
		},
	}

	for name, build := range constructors {
		build := build

		It(name+" should reject an empty vector", func() {
			err := build(nil, nil)
			Expect(errors.Is(err, vpu.ErrShape)).To(BeTrue())
		})

		It(name+" should reject a row count mismatch", func() {
			err := build(w8.Values(1, 2), w8.Matrix([][]uint64{{1, 2}}))
			Expect(errors.Is(err, vpu.ErrShape)).To(BeTrue())
		})

		It(name+" should reject a ragged matrix", func() {
			err := build(w8.Values(1, 2),
				w8.Matrix([][]uint64{{1, 2}, {3}}))
			Expect(errors.Is(err, vpu.ErrShape)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("weight row 1"))
		})

		It(name+" should reject mixed widths", func() {
			m := w8.Matrix([][]uint64{{1, 2}, {3, 4}})
			m[1][1] = fixed.Width(16).Of(4)

			err := build(w8.Values(1, 2), m)
			Expect(errors.Is(err, vpu.ErrShape)).To(BeTrue())
		})

		It(name+" should reject zero values without a width", func() {
			err := build([]fixed.Value{{}}, [][]fixed.Value{{{}}})
			Expect(errors.Is(err, vpu.ErrShape)).To(BeTrue())
		})
	}
})
