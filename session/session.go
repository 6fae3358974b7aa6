package session

import (
	"slices"

	"github.com/twolodzko/canard/calculus"
)

type Term = calculus.Term

// Session holds the global namespace and the built-in sorts.
type Session struct {
	Type, Prop *Term
	global     *Namespace
}

func New() *Session {
	typ := calculus.NewUniverse()
	prop := calculus.Declare(typ, nil)

	// the built-ins can be referred to, but are not declarations
	// the search could use
	global := newNamespace(nil, "")
	global.define("Type", typ)
	global.define("Prop", prop)

	return &Session{
		Type:   typ,
		Prop:   prop,
		global: global,
	}
}

func (s *Session) Global() *Namespace {
	return s.global
}

// Resolve the path of a term. The current namespace and its ancestors are
// searched first, then the open namespaces, where the name has to be unique.
func (s *Session) Resolve(current *Namespace, open []*Namespace, path string) (*Term, error) {
	for ns := current; ns != nil; ns = ns.parent {
		if t, ok := ns.Lookup(path); ok {
			return t, nil
		}
	}

	var candidates []*Term
	for _, ns := range open {
		if t, ok := ns.Lookup(path); ok && !slices.Contains(candidates, t) {
			candidates = append(candidates, t)
		}
	}
	switch len(candidates) {
	case 0:
		return nil, &UnknownIdentifierError{path}
	case 1:
		return candidates[0], nil
	default:
		return nil, &AmbiguousIdentifierError{path}
	}
}

// SearchSpace lists the namespaces visible from the current one: itself,
// its ancestors, and then the open namespaces in the order they were opened.
func (s *Session) SearchSpace(current *Namespace, open []*Namespace) []*Namespace {
	var space []*Namespace
	for ns := current; ns != nil; ns = ns.parent {
		space = append(space, ns)
	}
	for _, ns := range open {
		if !slices.Contains(space, ns) {
			space = append(space, ns)
		}
	}
	return space
}

// Declarations of all the namespaces, in order.
func Declarations(spaces []*Namespace) []*Term {
	var decls []*Term
	for _, ns := range spaces {
		decls = append(decls, ns.Declarations()...)
	}
	return decls
}
