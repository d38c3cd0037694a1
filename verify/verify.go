// Package verify checks systolic grids against a plain fixed-width
// matrix-vector product and against the timing rules of their dataflow.
//
// Two complementary checks are provided:
//
//  1. WavefrontChecker is an akita hook that inspects the snapshot emitted
//     after every cycle. It reports cells that fire outside their wavefront,
//     more than one active diagonal or row, PE weights that change
//     mid-computation, and disabled cells whose latches change.
//  2. Compare checks the final output against MatVec.
//
// GenerateReport runs both on a grid without an engine.
package verify

import (
	"fmt"

	"github.com/sarchlab/systolic/fixed"
)

// IssueType classifies an issue.
type IssueType string

const (
	IssueWavefront IssueType = "WAVEFRONT"
	IssueWeight    IssueType = "WEIGHT"
	IssueLatch     IssueType = "LATCH"
	IssueResult    IssueType = "RESULT"
)

// Issue is a single problem found by a check. Col is -1 when the issue is
// not tied to one column.
type Issue struct {
	Type    IssueType
	Cycle   uint64
	Row     int
	Col     int
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] cycle %d (%d, %d): %s",
		i.Type, i.Cycle, i.Row, i.Col, i.Message)
}

// MatVec returns out[i] = sum_j weights[i][j] * acts[j] in the width of the
// inputs.
func MatVec(weights [][]fixed.Value, acts []fixed.Value) []fixed.Value {
	if len(acts) == 0 {
		return nil
	}

	width := acts[0].Width()
	out := make([]fixed.Value, len(weights))

	for i, row := range weights {
		if len(row) != len(acts) {
			panic("matrix and vector sizes differ")
		}

		sum := width.Zero()
		for j, w := range row {
			sum = w.MulAdd(acts[j], sum)
		}

		out[i] = sum
	}

	return out
}

// Compare reports every component where got differs from want.
func Compare(got, want []fixed.Value) []Issue {
	issues := make([]Issue, 0)

	if len(got) != len(want) {
		return append(issues, Issue{
			Type: IssueResult,
			Row:  -1,
			Col:  -1,
			Message: fmt.Sprintf("got %d components, want %d",
				len(got), len(want)),
		})
	}

	for i := range want {
		if got[i] != want[i] {
			issues = append(issues, Issue{
				Type:    IssueResult,
				Row:     i,
				Col:     -1,
				Message: fmt.Sprintf("got %s, want %s", got[i], want[i]),
			})
		}
	}

	return issues
}
