package eval

import (
	set "github.com/hashicorp/go-set/v3"
	"github.com/twolodzko/canard/calculus"
	"github.com/twolodzko/canard/session"
)

type Term = calculus.Term

// Local scope of the parameters, it keeps track of which of
// them were referred to.
type scope struct {
	parent *scope
	names  map[string]*Term
	used   *set.Set[*Term]
}

func newScope(parent *scope) *scope {
	return &scope{
		parent: parent,
		names:  make(map[string]*Term),
		used:   set.New[*Term](0),
	}
}

func (s *scope) bind(name string, t *Term) error {
	if _, ok := s.names[name]; ok {
		return &session.DuplicateNameError{Name: name}
	}
	s.names[name] = t
	return nil
}

func (s *scope) lookup(name string) (*Term, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if t, ok := sc.names[name]; ok {
			sc.used.Insert(t)
			return t, true
		}
	}
	return nil, false
}
