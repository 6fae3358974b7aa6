package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/twolodzko/canard/calculus"
)

func TestInjectsInto(t *testing.T) {
	w := newWorld()
	x := declare("x", w.A)
	y := declare("y", w.A)
	z := declare("z", w.B)

	var testCases = []struct {
		lhs, rhs []*Term
		expected bool
	}{
		{[]*Term{x}, []*Term{y, z}, true},
		{[]*Term{x}, []*Term{x}, true},
		{[]*Term{y, z}, []*Term{x}, false},
		{[]*Term{x}, []*Term{z}, false},
		{[]*Term{x, y}, []*Term{y, z}, false},
		{[]*Term{x, z}, []*Term{z, y}, true},
		{nil, []*Term{z}, true},
	}

	for i, tt := range testCases {
		lhs, rhs := NewQuery(tt.lhs), NewQuery(tt.rhs)
		if result := lhs.InjectsInto(rhs); result != tt.expected {
			t.Errorf("test case %d: expected %v, got %v", i+1, tt.expected, result)
		}
	}
}

func TestFingerprint(t *testing.T) {
	w := newWorld()
	x1 := declare("x", w.A)
	z1 := declare("z", w.B)
	x2 := declare("x", w.A)
	z2 := declare("z", w.B)

	if NewQuery([]*Term{x1, z1}).Fingerprint() != NewQuery([]*Term{z2, x2}).Fingerprint() {
		t.Errorf("expected the fingerprint not to depend on the order")
	}
	if NewQuery([]*Term{x1, z1}).Fingerprint() == NewQuery([]*Term{x1, x2}).Fingerprint() {
		t.Errorf("expected different fingerprints")
	}
}

func TestAbstraction(t *testing.T) {
	w := newWorld()
	x := declare("x", w.A)
	g := declare("g", w.B, explicit(x))

	if NewQuery([]*Term{x}).Abstraction() != nil {
		t.Errorf("expected nothing to abstract")
	}

	q := NewQuery([]*Term{g})
	sub := q.Abstraction()
	if sub == nil {
		t.Fatal("expected an abstraction")
	}
	if sub.Parent() != q {
		t.Errorf("expected the parent to be the starting query")
	}
	if len(sub.Locals()) != 1 || sub.Locals()[0] != x {
		t.Errorf("expected the parameter to become a local, got %v", names(sub.Locals()))
	}
	h := sub.Last()
	if len(h.Parameters()) != 0 || h.Type() != w.B {
		t.Errorf("unexpected goal %s", h.FullString())
	}
	if !sub.allowed[h].Contains(x) {
		t.Errorf("expected the new goal to be allowed to use the local")
	}
	if sub.Depth() != q.Depth() {
		t.Errorf("expected abstraction not to change the depth")
	}
}

func TestReduceDepth(t *testing.T) {
	w := newWorld()
	z := declare("z", w.A)
	k := declare("k", w.B, explicit(z))
	u := declare("u", w.A)
	y := declare("y", w.B)

	q := NewQuery([]*Term{u, y})
	sub := q.Reduce(k)
	if sub == nil {
		t.Fatal("expected the reduction to succeed")
	}
	if len(sub.Indeterminates()) != 2 {
		t.Fatalf("expected two goals, got %v", sub)
	}
	if sub.Indeterminates()[0] != u {
		t.Errorf("expected %s to be kept", u)
	}
	if sub.depths[0] != 0 || sub.depths[1] != 1 {
		t.Errorf("unexpected depths %v", sub.depths)
	}
	if sub.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", sub.Depth())
	}

	if q.Reduce(declare("b", w.A)) != nil {
		t.Errorf("expected a term of a wrong type to be rejected")
	}
}

func TestFinalSolutionsUnsolved(t *testing.T) {
	w := newWorld()
	if NewQuery([]*Term{declare("x", w.A)}).FinalSolutions() != nil {
		t.Errorf("expected no solutions for an unsolved query")
	}
}

func TestReduceRejectsDisallowedLocal(t *testing.T) {
	w := newWorld()
	x := declare("x", w.A)
	g := declare("g", w.A, explicit(x))
	u := declare("u", w.A)

	sub := NewQuery([]*Term{u, g}).Abstraction()
	// the abstracted goal can use x
	if sub.Reduce(x) == nil {
		t.Errorf("expected x to solve %s", sub.Last())
	}

	// after that, u cannot
	next := sub.Reduce(x)
	if next == nil || next.Last() != u {
		t.Fatalf("expected %s to remain, got %v", u, next)
	}
	if next.Reduce(next.Locals()[0]) != nil {
		t.Errorf("expected the local to be rejected for %s", u)
	}
}

func TestReduceCircularDependency(t *testing.T) {
	w := newWorld()
	s1 := declare("s", w.U)
	s2 := declare("t", w.U)
	R := declare("R", w.U, explicit(s1), explicit(s2))
	u := declare("u", w.U)
	F := declare("F", w.U, explicit(u))
	v := declare("v", w.U)
	H := declare("H", w.U, explicit(v))

	// matching sets Y := F p and p := H Y
	Y := declare("Y", w.U)
	HY := calculus.MustSpecialize(H, []*Term{Y}, nil)
	h := declare("h", calculus.MustSpecialize(R, []*Term{Y, HY}, nil))
	p := declare("p", w.U)
	Fp := calculus.MustSpecialize(F, []*Term{p}, nil)
	k := declare("k", calculus.MustSpecialize(R, []*Term{Fp, p}, nil), implicit(p))

	if sub := NewQuery([]*Term{Y, h}).Reduce(k); sub != nil {
		t.Errorf("expected the reduction to fail, got %v", sub)
	}
}

func TestFinalSolutions(t *testing.T) {
	w := newWorld()
	b := declare("b", w.B)

	var testCases = []struct {
		// the type of the goal f (x : X)
		typ      func(X *Term) *Term
		thm      func(q *Query) *Term
		expected []string
	}{
		{
			func(X *Term) *Term { return X },
			func(q *Query) *Term { return q.Locals()[0] },
			[]string{"A", "λ (x : A) := x"},
		},
		{
			func(*Term) *Term { return w.B },
			func(*Query) *Term { return b },
			[]string{"A", "λ (x : A) := b"},
		},
	}

	for i, tt := range testCases {
		X := declare("X", w.U)
		x := declare("x", X)
		f := declare("f", tt.typ(X), explicit(x))

		q := NewQuery([]*Term{X, f}).Abstraction()
		q = q.Reduce(tt.thm(q))
		if q == nil || len(q.Indeterminates()) != 1 || q.Last() != X {
			t.Fatalf("test case %d: expected only X to remain, got %v", i+1, q)
		}
		q = q.Reduce(w.A)
		if q == nil || !q.Solved() {
			t.Fatalf("test case %d: expected a solved query, got %v", i+1, q)
		}

		result := q.FinalSolutions()
		if !cmp.Equal(names(result), tt.expected) {
			t.Errorf("test case %d: expected %v, got %v", i+1, tt.expected, names(result))
		}
		param := result[1].ParameterTerms()[0]
		if param.Type() != w.A {
			t.Errorf("test case %d: expected the parameter to be of type A, got %s", i+1, param.FullString())
		}
		if i == 0 && result[1].Base() != param {
			t.Errorf("test case %d: expected the body to be the parameter, got %s", i+1, result[1])
		}
	}
}
