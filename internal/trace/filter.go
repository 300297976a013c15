package trace

// DroppedChunk records a chunk removed by the rule set.
type DroppedChunk struct {
	// Chunk is the dropped chunk.
	Chunk *Chunk
	// Reason names the deciding rule, for operator-facing summaries.
	Reason string
}

// Result holds the outcome of applying a rule set to a chunk sequence.
type Result struct {
	// Kept are the chunks that passed, in original order.
	Kept []*Chunk
	// Dropped are the chunks removed, in original order.
	Dropped []DroppedChunk
}

// Apply evaluates every chunk against the rule set. The predicate is pure:
// chunk order is preserved and no shared state is touched.
func (rs *RuleSet) Apply(chunks []*Chunk) *Result {
	r := &Result{}

	for _, c := range chunks {
		keep, reason := rs.Verdict(c)
		if keep {
			r.Kept = append(r.Kept, c)
		} else {
			r.Dropped = append(r.Dropped, DroppedChunk{Chunk: c, Reason: reason})
		}
	}

	return r
}
