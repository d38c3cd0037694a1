package verify

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/systolic/array"
	"github.com/sarchlab/systolic/fixed"
)

// Report is the outcome of verifying one multiplication.
type Report struct {
	Dataflow array.Dataflow
	Size     int
	Cycles   uint64
	Got      []fixed.Value
	Want     []fixed.Value
	Issues   []Issue
}

// OK reports whether no issue was found.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

// NewReport builds a report from a grid that has already run, combining the
// issues of the checker that watched it with a comparison against MatVec.
func NewReport(
	grid array.Grid,
	checker *WavefrontChecker,
	acts []fixed.Value,
	weights [][]fixed.Value,
) *Report {
	r := &Report{
		Dataflow: grid.Dataflow(),
		Size:     grid.Size(),
		Cycles:   grid.Counter(),
		Got:      grid.Result(),
		Want:     MatVec(weights, acts),
	}

	if checker != nil {
		r.Issues = append(r.Issues, checker.Issues()...)
	}

	if !grid.Done() {
		r.Issues = append(r.Issues, Issue{
			Type:  IssueResult,
			Cycle: grid.Counter(),
			Row:   -1,
			Col:   -1,
			Message: fmt.Sprintf("grid stopped after %d of %d cycles",
				grid.Counter(), grid.Dataflow().Cycles(grid.Size())),
		})
	}

	r.Issues = append(r.Issues, Compare(r.Got, r.Want)...)

	return r
}

// GenerateReport resets the grid, clocks it to completion while checking
// every cycle, and compares the result against MatVec. The grid must have
// been built from acts and weights.
func GenerateReport(
	grid array.Grid,
	acts []fixed.Value,
	weights [][]fixed.Value,
) *Report {
	grid.Reset()

	checker := NewWavefrontChecker()
	checker.Observe(grid.Snapshot())

	limit := grid.Dataflow().Cycles(grid.Size())
	for !grid.Done() && grid.Counter() < limit {
		grid.Clock()
		checker.Observe(grid.Snapshot())
	}

	return NewReport(grid, checker, acts, weights)
}

// WriteReport writes a formatted report to a writer.
func (r *Report) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "%s %dx%d VERIFICATION REPORT\n",
		strings.ToUpper(r.Dataflow.Name()), r.Size, r.Size)
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Cycles: %d\n\n", r.Cycles)

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Row", "Got", "Want", "Match"})
	for i := range r.Want {
		got := "-"
		match := "✗"
		if i < len(r.Got) {
			got = r.Got[i].String()
			if r.Got[i] == r.Want[i] {
				match = "✓"
			}
		}

		t.AppendRow(table.Row{i, got, r.Want[i].String(), match})
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w)

	if r.OK() {
		fmt.Fprintln(w, "✅ PASSED")
		return
	}

	fmt.Fprintf(w, "❌ FAILED - %d issues\n", len(r.Issues))
	for _, issue := range r.Issues {
		fmt.Fprintf(w, "  %s\n", issue)
	}
}
