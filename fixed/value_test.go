package fixed_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/systolic/fixed"
)

var _ = Describe("Value", func() {
	w8 := fixed.Width(8)

	It("should truncate on construction", func() {
		Expect(w8.Of(300).Uint64()).To(Equal(uint64(44)))
		Expect(w8.Of(255).Uint64()).To(Equal(uint64(255)))
	})

	It("should wrap on addition", func() {
		sum := w8.Of(200).Add(w8.Of(100))
		Expect(sum.Uint64()).To(Equal(uint64(44)))
		Expect(sum.Width()).To(Equal(w8))
	})

	It("should wrap on multiplication", func() {
		Expect(w8.Of(20).Mul(w8.Of(20)).Uint64()).To(Equal(uint64(144)))
	})

	It("should multiply then accumulate", func() {
		Expect(w8.Of(9).MulAdd(w8.Of(3), w8.Of(12))).To(Equal(w8.Of(39)))
		Expect(w8.Of(16).MulAdd(w8.Of(16), w8.Of(1))).To(Equal(w8.Of(1)))
	})

	It("should treat zero as the additive identity", func() {
		v := w8.Of(77)
		Expect(v.Add(w8.Zero())).To(Equal(v))
		Expect(w8.Zero().IsZero()).To(BeTrue())
		Expect(v.Mul(w8.Zero()).IsZero()).To(BeTrue())
	})

	It("should support the full 64-bit width", func() {
		w64 := fixed.MaxWidth
		Expect(w64.Mask()).To(Equal(uint64(math.MaxUint64)))

		v := w64.Of(math.MaxUint64).Add(w64.Of(2))
		Expect(v.Uint64()).To(Equal(uint64(1)))
	})

	It("should handle narrow widths", func() {
		w1 := fixed.Width(1)
		Expect(w1.Of(1).Add(w1.Of(1)).IsZero()).To(BeTrue())
		Expect(fixed.Width(3).Of(5).Mul(fixed.Width(3).Of(3)).Uint64()).
			To(Equal(uint64(7)))
	})

	It("should format as decimal", func() {
		Expect(w8.Of(200).String()).To(Equal("200"))
		Expect(w8.Zero().String()).To(Equal("0"))
	})

	It("should build vectors and matrices", func() {
		Expect(w8.Values(1, 256, 257)).
			To(Equal([]fixed.Value{w8.Of(1), w8.Zero(), w8.Of(1)}))

		m := w8.Matrix([][]uint64{{3, 4}, {5, 6}})
		Expect(m).To(HaveLen(2))
		Expect(m[1][0]).To(Equal(w8.Of(5)))
	})

	It("should reject invalid widths", func() {
		Expect(fixed.Width(0).Valid()).To(BeFalse())
		Expect(fixed.Width(65).Valid()).To(BeFalse())
		Expect(func() { fixed.Width(0).Of(1) }).To(Panic())
	})

	It("should panic when widths are mixed", func() {
		Expect(func() {
			w8.Of(1).Add(fixed.Width(16).Of(1))
		}).To(Panic())
	})
})
