package trace

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// WriteTable renders a per-chunk verdict table for an outcome: index, unit
// header, module line, verdict, and the deciding rule. Chunk bodies are
// omitted; use the filter report for full text.
func WriteTable(w io.Writer, o *Outcome) error {
	table := tablewriter.NewTable(w)
	table.Header([]string{"#", "UNIT", "MODULE", "VERDICT", "RULE"})

	for i, c := range o.Chunks {
		keep, reason := o.Rules.Verdict(c)

		verdict := "drop"
		if keep {
			verdict = "keep"
		}

		_ = table.Append([]string{
			strconv.Itoa(i),
			c.Header(),
			c.Module(),
			verdict,
			reason,
		})
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering chunk table: %w", err)
	}

	_, _ = fmt.Fprintf(w, "chunks: %d found, %d kept, %d dropped\n",
		len(o.Chunks), len(o.Filter.Kept), len(o.Filter.Dropped))

	return nil
}
