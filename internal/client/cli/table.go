package cli

import (
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)

	h := make([]any, len(header))
	for i, v := range header {
		h[i] = v
	}
	table.Header(h...)

	for _, r := range rows {
		cells := make([]any, len(r))
		for i, v := range r {
			cells[i] = v
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}
	return table.Render()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func (a *App) table(header []string, rows [][]string) error {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	return renderTable(a.out, header, rows)
}
