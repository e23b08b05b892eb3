package pedigree

// ResolveID follows parent references from subject along p and returns the ID
// of the bird in that slot. It only reads FatherID/MotherID; manual ancestors
// are never consulted. The returned ID may name a bird missing from the index.
//
// It panics if p is not a valid path.
func (idx *Index) ResolveID(subject *Bird, p Path) (string, bool) {
	mustBeResolvable(p)

	return idx.resolveID(subject, p)
}

func (idx *Index) resolveID(subject *Bird, p Path) (string, bool) {
	parentPath, ok := p.Parent()
	if !ok {
		id := subject.parentID(p.Last())

		return id, id != ""
	}

	parentID, ok := idx.resolveID(subject, parentPath)
	if !ok {
		return "", false
	}

	parent, ok := idx.Lookup(parentID)
	if !ok {
		return "", false
	}

	id := parent.parentID(p.Last())

	return id, id != ""
}

// systemBird returns the indexed record in slot p, if there is one.
func (idx *Index) systemBird(subject *Bird, p Path) (*Bird, bool) {
	id, ok := idx.resolveID(subject, p)
	if !ok {
		return nil, false
	}

	return idx.Lookup(id)
}

// Resolve returns the displayable ancestor in slot p. Tiers are tried in order:
//
//  1. the real record reached by following parent IDs,
//  2. subject's own manual entry for p,
//  3. the manual entry for the last step stored on the real record one
//     generation closer (a name recorded on the father's file as "m" shows
//     up as "fm" for all of the father's children).
//
// If no tier has data, the zero Ancestor is returned.
//
// It panics if p is not a valid path.
func (idx *Index) Resolve(subject *Bird, p Path) Ancestor {
	mustBeResolvable(p)

	return idx.resolve(subject, p)
}

func (idx *Index) resolve(subject *Bird, p Path) Ancestor {
	if b, ok := idx.systemBird(subject, p); ok {
		return Ancestor{
			ID:         b.ID,
			Name:       b.Name,
			Ring:       b.Ring,
			Sex:        b.Sex,
			Provenance: System,
			Tier:       TierSystem,
		}
	}

	if name, ok := subject.manual(p); ok {
		return Ancestor{Name: name, Provenance: Manual, Tier: TierManualExact}
	}

	parentPath, ok := p.Parent()
	if !ok {
		return Ancestor{}
	}

	nearest, ok := idx.systemBird(subject, parentPath)
	if !ok {
		return Ancestor{}
	}

	if name, ok := nearest.manual(p.Last().Path()); ok {
		return Ancestor{Name: name, Provenance: Manual, Tier: TierManualInherited}
	}

	return Ancestor{}
}

// ResolveAll resolves every path in paths. Unresolved slots are present with
// the zero Ancestor.
func (idx *Index) ResolveAll(subject *Bird, paths []Path) map[Path]Ancestor {
	out := make(map[Path]Ancestor, len(paths))
	for _, p := range paths {
		out[p] = idx.Resolve(subject, p)
	}

	return out
}
