package pedigree

// Index is an immutable lookup from bird ID to record, built from one snapshot
// of the flock. The resolvers are methods on Index so a tree is always
// resolved against a single consistent snapshot.
type Index struct {
	birds map[string]*Bird
}

// NewIndex builds an index over birds. Records without an ID are skipped.
// When an ID repeats, the first record wins.
//
// The records are copied; later changes to the slice do not affect the index.
func NewIndex(birds []Bird) *Index {
	idx := &Index{birds: make(map[string]*Bird, len(birds))}

	for i := range birds {
		b := birds[i]
		if b.ID == "" {
			continue
		}

		if _, exists := idx.birds[b.ID]; exists {
			continue
		}

		idx.birds[b.ID] = &b
	}

	return idx
}

// Lookup returns the record for id.
func (idx *Index) Lookup(id string) (*Bird, bool) {
	if id == "" {
		return nil, false
	}

	b, ok := idx.birds[id]

	return b, ok
}

// Len returns the number of indexed birds.
func (idx *Index) Len() int {
	return len(idx.birds)
}
