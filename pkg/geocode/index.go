package geocode

// Index is the in-memory full-text address index: entries plus a token ->
// entry-indices postings map supporting prefix and substring lookups.
// Built once over Extract's output and read-only thereafter.
type Index struct {
	entries  []Entry
	postings map[string][]int // token -> entry indices
}

// NewIndex builds the postings map over entries.
func NewIndex(entries []Entry) *Index {
	idx := &Index{
		entries:  entries,
		postings: make(map[string][]int),
	}
	for i, e := range entries {
		for _, tok := range e.tokens {
			idx.postings[tok] = append(idx.postings[tok], i)
		}
	}
	return idx
}

// Len returns the number of indexed entries.
func (idx *Index) Len() int { return len(idx.entries) }
