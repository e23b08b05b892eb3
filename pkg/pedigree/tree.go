package pedigree

// Tree is a resolved pedigree ready for rendering.
type Tree struct {
	Subject     Bird
	Generations int

	// Ancestors has an entry for every path up to Generations, including
	// unresolved slots, so renderers can keep the grid shape.
	Ancestors map[Path]Ancestor
}

// Slot pairs a path with what it resolved to.
type Slot struct {
	Path     Path
	Ancestor Ancestor
}

// Project resolves subject's tree. generations <= 0 uses [Index.MaxDepth];
// larger values are clamped to [MaxGenerations].
func (idx *Index) Project(subject *Bird, generations int) Tree {
	if generations <= 0 {
		generations = idx.MaxDepth(subject)
	}

	generations = min(generations, MaxGenerations)

	return Tree{
		Subject:     *subject,
		Generations: generations,
		Ancestors:   idx.ResolveAll(subject, PathsUpTo(generations)),
	}
}

// Generation returns the slots of generation gen in canonical order.
func (t Tree) Generation(gen int) []Slot {
	if gen < 1 || gen > t.Generations {
		return nil
	}

	paths := PathsAt(gen)
	slots := make([]Slot, len(paths))

	for i, p := range paths {
		slots[i] = Slot{Path: p, Ancestor: t.Ancestors[p]}
	}

	return slots
}

// Resolved counts the slots that have data.
func (t Tree) Resolved() int {
	n := 0

	for _, a := range t.Ancestors {
		if a.Resolved() {
			n++
		}
	}

	return n
}
