package trace

import (
	"fmt"
	"io"
	"strings"
)

// WriteReport emits the filter report for an outcome, in order: total input
// line count, start-marker line number, total chunk count, each kept chunk
// (index label, full text, blank separator), kept-chunk count, end-marker
// line number, and finally the tail reproduced with its original line
// terminators intact. Line numbers are 1-based for operator visibility.
func WriteReport(w io.Writer, o *Outcome) error {
	if _, err := fmt.Fprintf(w, "total lines: %d\n", o.Dump.Len()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	_, _ = fmt.Fprintf(w, "start marker: line %d\n", o.Start+1)
	_, _ = fmt.Fprintf(w, "chunks found: %d\n", len(o.Chunks))

	for i, c := range o.Filter.Kept {
		_, _ = fmt.Fprintf(w, "[%d]\n", i)
		_, _ = fmt.Fprint(w, c.Text())
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "chunks kept: %d\n", len(o.Filter.Kept))
	_, _ = fmt.Fprintf(w, "end marker: line %d\n", o.End+1)

	// The tail carries its own terminators; nothing is added or removed.
	if _, err := fmt.Fprint(w, o.Dump.Tail(o.End)); err != nil {
		return fmt.Errorf("writing report tail: %w", err)
	}

	return nil
}

// ReportString renders the report to a string.
func ReportString(o *Outcome) string {
	var b strings.Builder

	_ = WriteReport(&b, o)

	return b.String()
}
