package session

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/twolodzko/canard/calculus"
)

func TestBuiltins(t *testing.T) {
	s := New()

	if s.Type.Type() != s.Type {
		t.Errorf("expected Type : Type")
	}
	if s.Prop.Type() != s.Type {
		t.Errorf("expected Prop : Type")
	}
	if got := s.Prop.FullString(); got != "Prop : Type" {
		t.Errorf("unexpected full form: %q", got)
	}
	if typ, ok := s.Global().Lookup("Type"); !ok || typ != s.Type {
		t.Errorf("expected Type to be bound in the global namespace")
	}
}

func TestNamespacePaths(t *testing.T) {
	s := New()
	foo := s.Global().Child("foo")
	bar := foo.Child("bar")

	if foo.Child("bar") != bar {
		t.Errorf("expected the existing namespace to be reused")
	}
	if bar.Path() != "foo.bar" {
		t.Errorf("expected path foo.bar, got %q", bar.Path())
	}
	if ns, ok := s.Global().Namespace("foo.bar"); !ok || ns != bar {
		t.Errorf("failed to find foo.bar")
	}
	if _, ok := s.Global().Namespace("foo.baz"); ok {
		t.Errorf("expected foo.baz not to exist")
	}

	a := calculus.Declare(s.Type, nil)
	if err := bar.Bind("A", a); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if a.String() != "foo.bar.A" {
		t.Errorf("expected the label to include the path, got %q", a.String())
	}
	if found, ok := s.Global().Lookup("foo.bar.A"); !ok || found != a {
		t.Errorf("failed to lookup foo.bar.A")
	}
	if found, ok := foo.Lookup("bar.A"); !ok || found != a {
		t.Errorf("failed to lookup bar.A")
	}
}

func TestBindDuplicate(t *testing.T) {
	s := New()
	if err := s.Global().Bind("A", calculus.Declare(s.Type, nil)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	err := s.Global().Bind("A", calculus.Declare(s.Type, nil))
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Errorf("expected DuplicateNameError, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	s := New()
	global := s.Global()
	foo := global.Child("foo")
	bar := global.Child("bar")
	inner := foo.Child("inner")

	x1 := calculus.Declare(s.Type, nil)
	x2 := calculus.Declare(s.Type, nil)
	y := calculus.Declare(s.Type, nil)
	z := calculus.Declare(s.Type, nil)
	for _, b := range []struct {
		ns   *Namespace
		name string
		t    *Term
	}{
		{foo, "x", x1},
		{bar, "x", x2},
		{bar, "y", y},
		{global, "z", z},
	} {
		if err := b.ns.Bind(b.name, b.t); err != nil {
			t.Fatal(err)
		}
	}

	var testCases = []struct {
		current  *Namespace
		open     []*Namespace
		path     string
		expected *Term
		err      error
	}{
		{inner, nil, "z", z, nil},
		{inner, nil, "x", x1, nil},
		{global, []*Namespace{bar}, "y", y, nil},
		{global, []*Namespace{foo}, "x", x1, nil},
		{global, []*Namespace{foo, bar}, "x", nil, &AmbiguousIdentifierError{"x"}},
		{global, nil, "y", nil, &UnknownIdentifierError{"y"}},
		{global, nil, "bar.y", y, nil},
	}

	for _, tt := range testCases {
		result, err := s.Resolve(tt.current, tt.open, tt.path)
		if !cmp.Equal(err, tt.err) {
			t.Errorf("for %s expected error %v, got %v", tt.path, tt.err, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("for %s expected %v, got %v", tt.path, tt.expected, result)
		}
	}
}

func TestSearchSpace(t *testing.T) {
	s := New()
	global := s.Global()
	foo := global.Child("foo")
	bar := global.Child("bar")
	inner := foo.Child("inner")

	result := s.SearchSpace(inner, []*Namespace{bar, foo})
	expected := []string{"foo.inner", "foo", "", "bar"}

	var paths []string
	for _, ns := range result {
		paths = append(paths, ns.Path())
	}
	if !cmp.Equal(paths, expected) {
		t.Errorf("expected %v, got %v", expected, paths)
	}

	if decls := Declarations([]*Namespace{global}); len(decls) != 0 {
		t.Errorf("the built-ins are not declarations, got %v", decls)
	}

	a := calculus.Declare(s.Type, nil)
	b := calculus.Declare(s.Type, nil)
	if err := bar.Bind("b", b); err != nil {
		t.Fatal(err)
	}
	if err := global.Bind("a", a); err != nil {
		t.Fatal(err)
	}
	decls := Declarations([]*Namespace{global, bar})
	if len(decls) != 2 || decls[0] != a || decls[1] != b {
		t.Errorf("expected [a bar.b], got %v", decls)
	}
}
