package calculus

import (
	"slices"
	"sync/atomic"
)

var lastID atomic.Uint64

// Term is a node of the calculus: either a base term (a constant, a parameter
// or an indeterminate) or an application of a base term to arguments.
// Terms are shared by reference and never change after construction, except
// for the display label attached by Bind.
type Term struct {
	id     uint64
	typ    *Term
	params []Parameter
	base   *Term
	args   []*Term

	label     string
	namespace string
}

type Parameter struct {
	Term     *Term
	Explicit bool
}

// NewUniverse creates the sort of all types, whose type is itself.
func NewUniverse() *Term {
	return newTerm(nil, nil, nil, nil)
}

// Declare creates a new base term of the given type, generic over params.
func Declare(typ *Term, params []Parameter) *Term {
	if typ == nil {
		panic("declared term needs a type")
	}
	return newTerm(typ, params, nil, nil)
}

func newApplication(base *Term, args []*Term, typ *Term, params []Parameter) *Term {
	if !base.IsBase() {
		panic("base of an application has to be a base term")
	}
	if len(args) != len(base.ExplicitParameters()) {
		panic("number of arguments does not match the explicit parameters of the base")
	}
	return newTerm(typ, params, base, args)
}

func newTerm(typ *Term, params []Parameter, base *Term, args []*Term) *Term {
	return &Term{
		id:     lastID.Add(1),
		typ:    typ,
		params: params,
		base:   base,
		args:   args,
	}
}

func (t *Term) ID() uint64 {
	return t.id
}

func (t *Term) Type() *Term {
	if t.typ == nil {
		return t
	}
	return t.typ
}

func (t *Term) Base() *Term {
	if t.base == nil {
		return t
	}
	return t.base
}

func (t *Term) IsBase() bool {
	return t.base == nil
}

func (t *Term) Parameters() []Parameter {
	return t.params
}

// ParameterTerms returns the terms of all the parameters, in order.
func (t *Term) ParameterTerms() []*Term {
	terms := make([]*Term, len(t.params))
	for i, p := range t.params {
		terms[i] = p.Term
	}
	return terms
}

func (t *Term) ExplicitParameters() []*Term {
	var terms []*Term
	for _, p := range t.params {
		if p.Explicit {
			terms = append(terms, p.Term)
		}
	}
	return terms
}

// Arguments of an application are the terms supplied to its base. A base
// term is the application of itself to its own explicit parameters.
func (t *Term) Arguments() []*Term {
	if t.IsBase() {
		return t.ExplicitParameters()
	}
	return t.args
}

func (t *Term) Label() string {
	return t.label
}

func (t *Term) Namespace() string {
	return t.namespace
}

// Bind attaches the display label and namespace path. Only the first
// binding is kept, later calls report false.
func (t *Term) Bind(label, namespace string) bool {
	if t.label != "" {
		return false
	}
	t.label = label
	t.namespace = namespace
	return true
}

// DependsOn checks if the term is one of the terms in the list,
// or is built from one of them.
func (t *Term) DependsOn(list []*Term) bool {
	if len(list) == 0 {
		return false
	}
	if t.IsBase() {
		return slices.Contains(list, t)
	}
	if slices.Contains(list, t.base) {
		return true
	}
	for _, arg := range t.args {
		if arg.DependsOn(list) {
			return true
		}
	}
	return false
}

// SignatureDependsOn checks if the type of the term, or the signature
// of any of its parameters, depends on the list.
func (t *Term) SignatureDependsOn(list []*Term) bool {
	if len(list) == 0 {
		return false
	}
	if t.Type().DependsOn(list) {
		return true
	}
	for _, p := range t.params {
		if p.Term.SignatureDependsOn(list) {
			return true
		}
	}
	return false
}
