// Package trace locates, segments, and filters Go crash dumps.
//
// A dump is processed in three stages: locate the start of the fatal-signal
// region (the first "PC=" line), segment the goroutine traces that follow
// into chunks, and cut the region off at the first register-dump line.
// Chunks are then kept or dropped by an ordered prefix rule set over their
// module-identifier line, and everything from the register dump onward is
// passed through byte-for-byte.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Dump holds a fully materialized crash dump as an ordered sequence of
// lines. Each line retains its original terminator so that output can be
// reproduced byte-for-byte.
type Dump struct {
	lines []string
}

// Read consumes r completely and returns the dump. The entire input is
// materialized before any processing begins; dumps are small enough that
// streaming buys nothing.
func Read(r io.Reader) (*Dump, error) {
	br := bufio.NewReader(r)

	var lines []string

	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading dump: %w", err)
		}
	}

	return &Dump{lines: lines}, nil
}

// NewDump builds a dump from pre-split lines. Lines are expected to carry
// their terminators; intended for tests and synthetic re-wrapping.
func NewDump(lines []string) *Dump {
	return &Dump{lines: lines}
}

// Len returns the total number of input lines.
func (d *Dump) Len() int {
	return len(d.lines)
}

// Lines returns the underlying lines, terminators included.
func (d *Dump) Lines() []string {
	return d.lines
}

// Line returns the line at index i with its terminator stripped.
func (d *Dump) Line(i int) string {
	return trimTerminator(d.lines[i])
}

// Tail concatenates all lines from index from through the end of the dump,
// terminators preserved exactly.
func (d *Dump) Tail(from int) string {
	if from < 0 || from >= len(d.lines) {
		return ""
	}

	var b strings.Builder
	for _, line := range d.lines[from:] {
		b.WriteString(line)
	}

	return b.String()
}

// trimTerminator strips a trailing LF or CRLF from a line.
func trimTerminator(line string) string {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	return line
}
