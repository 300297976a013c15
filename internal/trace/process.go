package trace

import "strings"

// Outcome is the fully processed form of one dump: the located region, the
// segmented chunks, and the filter result. It is built once per invocation
// and never mutated afterwards.
type Outcome struct {
	// Dump is the input the outcome was built from.
	Dump *Dump
	// Start is the index of the start-marker line.
	Start int
	// End is the index of the end-marker line.
	End int
	// Chunks are all chunks found in the body, in order.
	Chunks []*Chunk
	// Rules is the rule set the chunks were filtered with.
	Rules *RuleSet
	// Filter is the kept/dropped split of Chunks.
	Filter *Result
}

// Process runs the whole pipeline on a dump: locate the start marker, chunk
// the body up to the end marker, and apply the rule set. Both missing-marker
// conditions surface as errors rather than undefined indices.
func Process(d *Dump, rules *RuleSet) (*Outcome, error) {
	start, err := LocateStart(d)
	if err != nil {
		return nil, err
	}

	chunks, end, err := ChunkBody(d, start)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Dump:   d,
		Start:  start,
		End:    end,
		Chunks: chunks,
		Rules:  rules,
		Filter: rules.Apply(chunks),
	}, nil
}

// FilteredText reconstructs the dump with dropped chunks removed: the head
// through the start marker, the kept chunks, then the tail. Used by the diff
// view to show exactly what the filter discarded.
func (o *Outcome) FilteredText() string {
	var b strings.Builder

	for _, line := range o.Dump.Lines()[:o.Start+1] {
		b.WriteString(line)
	}

	for _, c := range o.Filter.Kept {
		b.WriteString(c.Text())
	}

	b.WriteString(o.Dump.Tail(o.End))

	return b.String()
}

// RawText returns the dump exactly as read.
func (o *Outcome) RawText() string {
	var b strings.Builder
	for _, line := range o.Dump.Lines() {
		b.WriteString(line)
	}

	return b.String()
}
