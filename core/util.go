package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/sarchlab/systolic/array"
)

const (
	LevelTrace slog.Level = slog.LevelInfo + 1
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// RenderSnapshot draws the grid as a table below a "<dataflow> @ cycle <n>"
// heading. Each cell shows its weight, or "Disabled" when it did not fire in
// the last cycle, above its latches.
// Broadcast grids get an extra column with the activation sent to each row
// and a header row with the partial sum entering each column.
func RenderSnapshot(s array.Snapshot) string {
	t := table.NewWriter()
	t.Style().Options.SeparateRows = true

	n := s.Size()
	broadcast := s.Dataflow == array.Broadcast

	header := table.Row{}
	if broadcast {
		header = append(header, "a")
	}
	for j := 0; j < n; j++ {
		header = append(header, fmt.Sprintf("col %d", j))
	}
	t.AppendHeader(header)

	if broadcast {
		top := table.Row{"top"}
		for j := 0; j < n; j++ {
			top = append(top, s.Top[j].String()+"↓")
		}
		t.AppendRow(top)
	}

	for i := 0; i < n; i++ {
		row := table.Row{}
		if broadcast {
			row = append(row, s.Broadcast[i].String()+" →")
		}

		for j := 0; j < n; j++ {
			row = append(row, renderCell(s, i, j))
		}

		t.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, 0, len(header))
	for k := range header {
		configs = append(configs, table.ColumnConfig{
			Number: k + 1,
			Align:  text.AlignCenter,
		})
	}
	t.SetColumnConfigs(configs)

	return fmt.Sprintf("%s @ cycle %d\n%s",
		s.Dataflow.Name(), s.Counter, t.Render())
}

func renderCell(s array.Snapshot, i, j int) string {
	status := "Disabled"
	if s.Enabled[i][j] {
		status = "W=" + s.Weights[i][j].String()
	}

	if s.Dataflow == array.Broadcast {
		return fmt.Sprintf("%s\n%s", status, s.Down[i][j])
	}

	return fmt.Sprintf("%s\n↓%s →%s", status, s.Down[i][j], s.Right[i][j])
}

// PrintState writes the rendered snapshot followed by a blank line.
func PrintState(w io.Writer, s array.Snapshot) {
	fmt.Fprintln(w, RenderSnapshot(s))
	fmt.Fprintln(w)
}

func LogState(name string, s array.Snapshot) {
	slog.Debug("StateCheckpoint",
		"Core", name,
		"Counter", s.Counter,
		"Enabled", s.Enabled,
		"Down", s.Down,
		"Right", s.Right,
		"Broadcast", s.Broadcast,
	)
}
