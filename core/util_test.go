package core_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/systolic/core"
	"github.com/sarchlab/systolic/fixed"
	"github.com/sarchlab/systolic/vpu"
)

var _ = Describe("RenderSnapshot", func() {
	w8 := fixed.Width(8)
	acts := w8.Values(9, 3)
	weights := w8.Matrix([][]uint64{{3, 4}, {5, 6}})

	It("should render a broadcast grid", func() {
		h, err := vpu.NewHsa(acts, weights)
		Expect(err).NotTo(HaveOccurred())
		h.Clock()

		out := core.RenderSnapshot(h.Snapshot())

		Expect(out).To(ContainSubstring("Broadcast @ cycle 1"))
		Expect(out).To(ContainSubstring("W=3"))
		Expect(out).To(ContainSubstring("W=5"))
		Expect(out).To(ContainSubstring("Disabled"))
		Expect(out).To(ContainSubstring("27"))
		Expect(out).To(ContainSubstring("9 →"))
	})

	It("should render an output-stationary grid", func() {
		v, err := vpu.NewVpu(acts, weights)
		Expect(err).NotTo(HaveOccurred())
		v.Clock()

		buf := new(bytes.Buffer)
		core.PrintState(buf, v.Snapshot())

		Expect(buf.String()).To(ContainSubstring("OutputStationary @ cycle 1"))
		Expect(buf.String()).To(ContainSubstring("W=3"))
		Expect(buf.String()).To(ContainSubstring("↓9 →27"))
	})

	It("should keep the heading on one line for a single cell", func() {
		v, err := vpu.NewVpu(w8.Values(2), w8.Matrix([][]uint64{{7}}))
		Expect(err).NotTo(HaveOccurred())
		v.Clock()

		out := core.RenderSnapshot(v.Snapshot())

		Expect(strings.SplitN(out, "\n", 2)[0]).
			To(Equal("OutputStationary @ cycle 1"))
		Expect(out).To(ContainSubstring("↓2 →14"))
	})
})
