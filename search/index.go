package search

import "slices"

// Index of the declarations, keyed by the base of their types.
type Index struct {
	all     []*Term
	generic []*Term
	byType  map[*Term][]*Term
}

func NewIndex(decls []*Term) *Index {
	idx := &Index{
		byType: make(map[*Term][]*Term),
	}
	for _, thm := range decls {
		idx.Insert(thm)
	}
	return idx
}

// Insert the declaration to the index. A declaration whose type base is
// one of its own parameters can produce a term of any type, so it is
// stored in the generic bucket.
func (idx *Index) Insert(thm *Term) {
	idx.all = append(idx.all, thm)

	key := thm.Type().Base()
	if slices.Contains(thm.ParameterTerms(), key) {
		idx.generic = append(idx.generic, thm)
		return
	}
	idx.byType[key] = append(idx.byType[key], thm)
}

// Candidates returns the declarations that could produce a term of the
// goal's type, in the order they were inserted. If the type is unknown
// to the index, all the declarations are candidates.
func (idx *Index) Candidates(goal *Term) []*Term {
	thms, ok := idx.byType[goal.Type().Base()]
	if !ok {
		return idx.all
	}
	return slices.Concat(thms, idx.generic)
}

func (idx *Index) Len() int {
	return len(idx.all)
}
