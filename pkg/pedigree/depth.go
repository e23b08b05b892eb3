package pedigree

// MaxDepth returns the deepest generation reachable from subject through slots
// that have data, 0 if neither parent resolves. Once either parent resolves,
// both parent branches are searched; below generation 1 a branch is only
// followed while each slot along it resolves, and never past [MaxGenerations].
//
// Adding data never lowers the result.
func (idx *Index) MaxDepth(subject *Bird) int {
	roots := []Path{Father.Path(), Mother.Path()}

	if !idx.resolve(subject, roots[0]).Resolved() && !idx.resolve(subject, roots[1]).Resolved() {
		return 0
	}

	depth := 0
	for _, root := range roots {
		depth = max(depth, idx.branchDepth(subject, root, 1))
	}

	return depth
}

func (idx *Index) branchDepth(subject *Bird, p Path, depth int) int {
	if depth >= MaxGenerations {
		return depth
	}

	deepest := depth

	for _, step := range []Step{Father, Mother} {
		child := p.Child(step)
		if !idx.resolve(subject, child).Resolved() {
			continue
		}

		deepest = max(deepest, idx.branchDepth(subject, child, depth+1))
	}

	return deepest
}
