package calculus

import (
	"fmt"
	"slices"
	"strings"

	set "github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
)

// Matcher unifies terms, solving for its indeterminates. Indeterminates may
// occur on either side of a match. A Matcher can be nested in a parent
// Matcher, in which case it also solves for the indeterminates of the parent.
type Matcher struct {
	parent         *Matcher
	indeterminates []*Term
	solutions      map[*Term]*Term
	scope          *scope
}

// The local variables and, per indeterminate, the locals its solution may use.
type scope struct {
	locals  []*Term
	allowed map[*Term]*set.Set[*Term]
}

func NewMatcher(indeterminates []*Term) *Matcher {
	return &Matcher{
		indeterminates: indeterminates,
		solutions:      make(map[*Term]*Term),
	}
}

// Sub creates a Matcher nested in m.
func (m *Matcher) Sub(indeterminates []*Term) *Matcher {
	sub := NewMatcher(indeterminates)
	sub.parent = m
	return sub
}

// Restrict the solutions of the keys of allowed, so that they do not depend
// on the locals outside of their allowed sets. Terms that are not keys of
// allowed are unrestricted.
func (m *Matcher) Restrict(locals []*Term, allowed map[*Term]*set.Set[*Term]) {
	m.scope = &scope{locals, allowed}
}

// Permitted checks if t does not depend on any of the locals outside of allowed.
// A nil allowed set allows none of the locals.
func Permitted(locals []*Term, allowed *set.Set[*Term], t *Term) bool {
	disallowed := lo.Filter(locals, func(l *Term, _ int) bool {
		return allowed == nil || !allowed.Contains(l)
	})
	return !t.DependsOn(disallowed)
}

func (m *Matcher) permits(x, y *Term) bool {
	for mm := m; mm != nil; mm = mm.parent {
		if mm.scope == nil {
			continue
		}
		allowed, ok := mm.scope.allowed[x]
		if !ok {
			return true
		}
		return Permitted(mm.scope.locals, allowed, y)
	}
	return true
}

// Find the Matcher in the chain that owns the indeterminate.
func (m *Matcher) owner(x *Term) *Matcher {
	for mm := m; mm != nil; mm = mm.parent {
		if slices.Contains(mm.indeterminates, x) {
			return mm
		}
	}
	return nil
}

func (m *Matcher) isIndeterminate(x *Term) bool {
	return m.owner(x) != nil
}

// Solution returns the term x is solved to, following the chains of
// solutions, or nil when x has no solution.
func (m *Matcher) Solution(x *Term) *Term {
	y := m.lookup(x)
	if y == nil {
		return nil
	}
	if z := m.Solution(y); z != nil {
		return z
	}
	return y
}

func (m *Matcher) lookup(x *Term) *Term {
	for mm := m; mm != nil; mm = mm.parent {
		if y, ok := mm.solutions[x]; ok {
			return y
		}
	}
	return nil
}

// Collect all the solved indeterminates in the chain.
func (m *Matcher) solved() []*Term {
	var keys []*Term
	for mm := m; mm != nil; mm = mm.parent {
		for k := range mm.solutions {
			keys = append(keys, k)
		}
	}
	return keys
}

// Record the solution x -> y for the indeterminate x.
func (m *Matcher) put(x, y *Term) bool {
	if x == y {
		return true
	}

	// x -> y -> z, store x -> z
	if z := m.Solution(y); z != nil {
		return m.put(x, z)
	}

	owner := m.owner(x)
	if owner == nil {
		panic(fmt.Sprintf("%s is not an indeterminate", x))
	}

	if k, ok := owner.solutions[x]; ok {
		if Equal(k, y) {
			return true
		}
		// x -> k already, so y could be solved to k instead,
		// or k could be solved to y
		if m.isIndeterminate(y) {
			return m.put(y, k)
		}
		if m.isIndeterminate(k) {
			return m.put(k, y)
		}
		return m.Matches(k, y)
	}

	if !m.permits(x, y) {
		return false
	}
	owner.solutions[x] = y
	return true
}

// Matches checks if g can be substituted for f, solving for the
// indeterminates of the Matcher along the way.
func (m *Matcher) Matches(f, g *Term) bool {
	if f == g {
		return true
	}

	fParams, gParams := f.Parameters(), g.Parameters()
	if len(fParams) != len(gParams) {
		return false
	}

	// parameters are matched before the types, so that the types
	// can refer to them
	use := m
	if len(fParams) > 0 {
		use = m.Sub(f.ParameterTerms())
	}
	for i := range fParams {
		if fParams[i].Explicit != gParams[i].Explicit {
			return false
		}
		if !use.Matches(fParams[i].Term, gParams[i].Term) {
			return false
		}
	}

	if !use.Matches(f.Type(), g.Type()) {
		return false
	}

	// when both are indeterminates of the same Matcher, solve
	// the one that comes first
	for mm := m; mm != nil; mm = mm.parent {
		i := slices.Index(mm.indeterminates, f)
		j := slices.Index(mm.indeterminates, g)
		switch {
		case i >= 0 && (j < 0 || i < j):
			return m.put(f, g)
		case j >= 0:
			return m.put(g, f)
		}
	}

	fBase, gBase := f.Base(), g.Base()
	if fBase == gBase || ((m.isIndeterminate(fBase) || m.isIndeterminate(gBase)) && m.Matches(fBase, gBase)) {
		fArgs, gArgs := f.Arguments(), g.Arguments()
		if len(fArgs) != len(gArgs) {
			return false
		}
		for i := range fArgs {
			if !use.Matches(fArgs[i], gArgs[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// MustMatch is like Matches, but panics when the terms do not match.
func (m *Matcher) MustMatch(f, g *Term) {
	if !m.Matches(f, g) {
		panic(fmt.Sprintf("matching %s to %s failed in %s", f.FullString(), g.FullString(), m))
	}
}

// Convert rebuilds t with the solved indeterminates substituted. The parts
// of t that do not change are shared, not copied.
func (m *Matcher) Convert(t *Term) *Term {
	if s := m.Solution(t); s != nil {
		return s
	}
	if t.IsBase() {
		return t
	}

	changed := false
	params, sub := t.params, m
	if parametersDependOn(t.params, m.solved()) {
		params, sub = m.cloneParameters(t.params)
		changed = true
	}

	args := make([]*Term, len(t.args))
	for i, arg := range t.args {
		args[i] = sub.Convert(arg)
		if args[i] != arg && !Equal(args[i], arg) {
			changed = true
		}
	}

	base := t.base
	if s := sub.Solution(base); s != nil && s != base {
		base = s
		changed = true
	}

	if !changed {
		return t
	}
	return MustSpecialize(base, args, params)
}

func (m *Matcher) ConvertAll(ts []*Term) []*Term {
	return lo.Map(ts, func(t *Term, _ int) *Term {
		return m.Convert(t)
	})
}

func parametersDependOn(params []Parameter, list []*Term) bool {
	return lo.SomeBy(params, func(p Parameter) bool {
		return p.Term.SignatureDependsOn(list)
	})
}

// Clone creates a fresh copy of t, with its parameters and type converted
// by the Matcher.
func (m *Matcher) Clone(t *Term) *Term {
	params, sub := m.cloneParameters(t.params)
	if !t.IsBase() {
		return MustSpecialize(sub.Convert(t.base), sub.ConvertAll(t.args), params)
	}
	c := Declare(sub.Convert(t.Type()), params)
	c.label = t.label
	c.namespace = t.namespace
	return c
}

// CheapClone clones t only if its signature depends on any indeterminate
// in the chain, otherwise it returns t itself.
func (m *Matcher) CheapClone(t *Term) *Term {
	for mm := m; mm != nil; mm = mm.parent {
		if t.SignatureDependsOn(mm.indeterminates) {
			return m.Clone(t)
		}
	}
	return t
}

// Clone the parameters, the returned Matcher maps the original
// parameters to their clones.
func (m *Matcher) cloneParameters(params []Parameter) ([]Parameter, *Matcher) {
	if len(params) == 0 {
		return nil, m
	}
	terms := make([]*Term, len(params))
	for i, p := range params {
		terms[i] = p.Term
	}
	sub := m.Sub(terms)
	cloned := make([]Parameter, len(params))
	for i, p := range params {
		c := sub.Clone(p.Term)
		sub.MustMatch(p.Term, c)
		cloned[i] = Parameter{c, p.Explicit}
	}
	return cloned, sub
}

func (m *Matcher) String() string {
	solutions := lo.FilterMap(m.indeterminates, func(x *Term, _ int) (string, bool) {
		y, ok := m.solutions[x]
		if !ok {
			return "", false
		}
		return fmt.Sprintf("%s -> %s", x, y), true
	})
	return fmt.Sprintf("{[%s] %s}", stringify(m.indeterminates, ", "), strings.Join(solutions, ", "))
}
