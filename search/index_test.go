package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/twolodzko/canard/calculus"
)

func declare(name string, typ *Term, params ...calculus.Parameter) *Term {
	t := calculus.Declare(typ, params)
	t.Bind(name, "")
	return t
}

func explicit(t *Term) calculus.Parameter {
	return calculus.Parameter{Term: t, Explicit: true}
}

func implicit(t *Term) calculus.Parameter {
	return calculus.Parameter{Term: t, Explicit: false}
}

func names(terms []*Term) []string {
	var out []string
	for _, t := range terms {
		out = append(out, t.String())
	}
	return out
}

func TestIndexCandidates(t *testing.T) {
	U := calculus.NewUniverse()
	U.Bind("Type", "")
	A := declare("A", U)
	B := declare("B", U)
	a1 := declare("a1", A)
	b := declare("b", B)
	a2 := declare("a2", A)
	T := declare("T", U)
	v := declare("v", T)
	id := declare("id", T, implicit(T), explicit(v))

	idx := NewIndex([]*Term{A, B, a1, b, a2, id})

	var testCases = []struct {
		goal     *Term
		expected []string
	}{
		{declare("x", A), []string{"a1", "a2", "id"}},
		{declare("y", B), []string{"b", "id"}},
		{declare("X", U), []string{"A", "B", "id"}},
		// unknown type
		{declare("z", a1), []string{"A", "B", "a1", "b", "a2", "id"}},
	}

	for _, tt := range testCases {
		result := names(idx.Candidates(tt.goal))
		if !cmp.Equal(result, tt.expected) {
			t.Errorf("for %s expected %v, got %v", tt.goal.FullString(), tt.expected, result)
		}
	}

	if idx.Len() != 6 {
		t.Errorf("expected 6 declarations, got %d", idx.Len())
	}
}

func TestIndexInsert(t *testing.T) {
	U := calculus.NewUniverse()
	A := declare("A", U)
	idx := NewIndex(nil)

	if result := idx.Candidates(declare("x", A)); len(result) != 0 {
		t.Errorf("expected no candidates, got %v", result)
	}

	a := declare("a", A)
	idx.Insert(a)

	expected := []string{"a"}
	if result := names(idx.Candidates(declare("x", A))); !cmp.Equal(result, expected) {
		t.Errorf("expected %v, got %v", expected, result)
	}
}
