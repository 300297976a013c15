package trace

import (
	"errors"
	"strings"
)

// Sentinel errors for malformed dumps. Both are fatal: without a start
// marker there is no region to chunk, and without an end marker the tail
// boundary would be undefined.
var (
	ErrNoStartMarker = errors.New("no start marker (PC=) found in dump")
	ErrNoEndMarker   = errors.New("no end marker (register dump) found after start marker")
)

// Chunk is one execution unit's trace: a contiguous run of body lines headed
// by a chunk-header line. The second line names the code module that
// produced the topmost frame and drives the filter verdict.
type Chunk struct {
	// Start is the index of the header line in the originating dump.
	Start int

	lines []string
}

// Header returns the first line of the chunk, terminator stripped.
func (c *Chunk) Header() string {
	if len(c.lines) == 0 {
		return ""
	}

	return trimTerminator(c.lines[0])
}

// Module returns the module-identifier line (the chunk's second line) with
// surrounding whitespace removed, or "" for chunks with fewer than 2 lines.
func (c *Chunk) Module() string {
	if len(c.lines) < 2 {
		return ""
	}

	return strings.TrimSpace(c.lines[1])
}

// Text returns the chunk's full text with internal newlines preserved.
func (c *Chunk) Text() string {
	var b strings.Builder
	for _, line := range c.lines {
		b.WriteString(line)
	}

	return b.String()
}

// LineCount returns the number of lines in the chunk.
func (c *Chunk) LineCount() int {
	return len(c.lines)
}

// LocateStart scans the dump from the top and returns the index of the
// first start-marker line. Returns ErrNoStartMarker if the dump has none.
func LocateStart(d *Dump) (int, error) {
	for i, line := range d.lines {
		if IsStartMarker(line) {
			return i, nil
		}
	}

	return 0, ErrNoStartMarker
}

// ChunkBody segments the body (all lines strictly after the start marker at
// index start) into chunks and returns them together with the index of the
// end-marker line. A trailing chunk that runs off the end of the input
// without a boundary line is dropped. Returns ErrNoEndMarker if the body
// never reaches a register-dump line.
func ChunkBody(d *Dump, start int) ([]*Chunk, int, error) {
	var chunks []*Chunk

	i := start + 1
	for i < len(d.lines) {
		line := d.lines[i]

		if IsEndMarker(line) {
			return chunks, i, nil
		}

		if !IsChunkHeader(line) {
			// Body lines before the first chunk header (e.g. signal
			// detail lines) carry no frame information.
			i++
			continue
		}

		chunk, next, boundary := extractChunk(d, i)
		if !boundary {
			// Ran off the end of the input: the partial chunk is
			// dropped and the end marker was never seen.
			return nil, 0, ErrNoEndMarker
		}

		chunks = append(chunks, chunk)
		i = next
	}

	return nil, 0, ErrNoEndMarker
}

// extractChunk accumulates lines from the header at index head up to (not
// including) the next chunk header or end marker. It returns the chunk, the
// index at which the outer walk must resume, and whether a boundary line was
// actually found before the input ran out.
func extractChunk(d *Dump, head int) (*Chunk, int, bool) {
	for j := head + 1; j < len(d.lines); j++ {
		line := d.lines[j]
		if IsChunkHeader(line) || IsEndMarker(line) {
			return &Chunk{Start: head, lines: d.lines[head:j]}, j, true
		}
	}

	return nil, len(d.lines), false
}
