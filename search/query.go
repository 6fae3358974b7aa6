package search

import (
	"encoding/binary"
	"fmt"
	"maps"
	"slices"
	"strings"

	set "github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
	"github.com/spaolacci/murmur3"
	"github.com/twolodzko/canard/calculus"
)

type Term = calculus.Term

// Solution of an indeterminate of the parent query, expressed
// in terms of the child query.
type binding struct {
	from, to *Term
}

// Query is a single search state: the goals still to be solved (the
// indeterminates), the local variables introduced by abstractions, and
// for each indeterminate the locals its solution may depend on. Queries
// are never changed, every transition creates a child Query.
type Query struct {
	parent         *Query
	indeterminates []*Term
	solutions      []binding
	depths         []int
	locals         []*Term
	allowed        map[*Term]*set.Set[*Term]
}

// NewQuery creates the root query, searching for terms of the goals.
func NewQuery(goals []*Term) *Query {
	return &Query{
		indeterminates: goals,
		depths:         make([]int, len(goals)),
		allowed:        make(map[*Term]*set.Set[*Term]),
	}
}

func (q *Query) Parent() *Query {
	return q.parent
}

func (q *Query) Indeterminates() []*Term {
	return q.indeterminates
}

func (q *Query) Locals() []*Term {
	return q.locals
}

// Last returns the goal to be solved next.
func (q *Query) Last() *Term {
	return q.indeterminates[len(q.indeterminates)-1]
}

func (q *Query) Solved() bool {
	return len(q.indeterminates) == 0
}

// Depth is the highest depth of the indeterminates.
func (q *Query) Depth() int {
	if len(q.depths) == 0 {
		return 0
	}
	return lo.Max(q.depths)
}

// Abstraction introduces the parameters of the last goal as local variables
// and replaces the goal with a parameter-free one, that is allowed to depend
// on them. It returns nil if the last goal has no parameters.
func (q *Query) Abstraction() *Query {
	h := q.Last()
	if len(h.Parameters()) == 0 {
		return nil
	}

	hNew := calculus.Declare(h.Type(), nil)
	if h.Label() != "" {
		hNew.Bind(h.Label(), h.Namespace())
	}

	n := len(q.indeterminates)
	sub := &Query{
		parent:         q,
		indeterminates: append(slices.Clone(q.indeterminates[:n-1]), hNew),
		solutions:      []binding{{h, hNew}},
		// abstraction is not charged for
		depths:  q.depths,
		locals:  append(slices.Clone(q.locals), h.ParameterTerms()...),
		allowed: maps.Clone(q.allowed),
	}

	hAllowed := set.New[*Term](len(h.Parameters()))
	if old := q.allowed[h]; old != nil {
		hAllowed = old.Copy()
	}
	hAllowed.InsertSlice(h.ParameterTerms())
	delete(sub.allowed, h)
	sub.allowed[hNew] = hAllowed

	return sub
}

// Reduce tries to solve the last goal with thm. The parameters of thm that
// are not determined by matching the types become new goals. It returns nil
// when thm cannot be used.
func (q *Query) Reduce(thm *Term) *Query {
	h := q.Last()
	if len(h.Parameters()) > 0 {
		panic(fmt.Sprintf("goal %s needs to be abstracted first", h.FullString()))
	}

	hAllowed := q.allowed[h]
	if slices.Contains(q.locals, thm) && (hAllowed == nil || !hAllowed.Contains(thm)) {
		return nil
	}

	thmParams := thm.ParameterTerms()
	matcher := calculus.NewMatcher(slices.Concat(q.indeterminates, thmParams))
	if len(q.locals) > 0 {
		scope := make(map[*Term]*set.Set[*Term], len(q.indeterminates)+len(thmParams))
		for _, f := range q.indeterminates {
			scope[f] = q.allowed[f]
		}
		// the arguments of thm are used to build the solution of h
		for _, p := range thmParams {
			scope[p] = hAllowed
		}
		matcher.Restrict(q.locals, scope)
	}

	// h and thm itself might not match, when thm needs arguments
	if !matcher.Matches(h.Type(), thm.Type()) {
		return nil
	}

	r := &reduction{
		query:     q,
		h:         h,
		hAllowed:  hAllowed,
		hDepth:    q.depths[len(q.depths)-1],
		thmParams: thmParams,
		matcher:   matcher,
		arguments: make(map[*Term]*Term, len(thmParams)),
		sub: &Query{
			parent:  q,
			allowed: make(map[*Term]*set.Set[*Term]),
		},
	}
	r.unmapped = slices.Concat(q.indeterminates[:len(q.indeterminates)-1], thmParams, q.locals)
	r.toSub = calculus.NewMatcher(slices.Clone(r.unmapped))

	if !r.mapAll() {
		return nil
	}

	// the allowed sets still refer to the locals of q
	for f, allowed := range r.sub.allowed {
		r.sub.allowed[f] = convertSet(r.toSub, allowed)
	}

	// thm itself could have been cloned, when it is a local
	args := lo.Map(thm.ExplicitParameters(), func(p *Term, _ int) *Term {
		return r.arguments[p]
	})
	solution := calculus.MustSpecialize(r.toSub.Convert(thm), args, nil)
	r.sub.solutions = append(r.sub.solutions, binding{h, solution})

	return r.sub
}

type outcome int

const (
	postponed outcome = iota
	mapped
	rejected
)

// The state of a single reduction: maps everything of the parent query,
// other than the goal being solved, to the child query.
type reduction struct {
	query     *Query
	h         *Term
	hAllowed  *set.Set[*Term]
	hDepth    int
	thmParams []*Term
	matcher   *calculus.Matcher
	toSub     *calculus.Matcher
	unmapped  []*Term
	arguments map[*Term]*Term
	sub       *Query
}

// Map the terms in the order of their dependencies, until nothing changes.
func (r *reduction) mapAll() bool {
	for changed := true; changed && len(r.unmapped) > 0; {
		changed = false
		for i, f := range r.unmapped {
			switch r.step(f) {
			case postponed:
				continue
			case rejected:
				return false
			}
			r.unmapped = slices.Delete(r.unmapped, i, i+1)
			changed = true
			break
		}
	}
	// some circular dependency remained
	return len(r.unmapped) == 0
}

func (r *reduction) step(f *Term) outcome {
	q := r.query
	switch {
	case slices.Contains(q.indeterminates, f):
		var result *Term
		if s := r.matcher.Solution(f); s != nil {
			if s.DependsOn(r.unmapped) {
				return postponed
			}
			if !calculus.Permitted(q.locals, q.allowed[f], s) {
				return rejected
			}
			result = r.toSub.Convert(s)
		} else {
			if f.SignatureDependsOn(r.unmapped) {
				return postponed
			}
			result = r.toSub.CheapClone(f)
			r.sub.indeterminates = append(r.sub.indeterminates, result)
			r.sub.depths = append(r.sub.depths, q.depths[slices.Index(q.indeterminates, f)])
			if allowed, ok := q.allowed[f]; ok {
				r.sub.allowed[result] = allowed
			}
		}
		if result != f {
			r.sub.solutions = append(r.sub.solutions, binding{f, result})
		}
		r.toSub.MustMatch(f, result)

	case slices.Contains(r.thmParams, f):
		var result *Term
		if s := r.matcher.Solution(f); s != nil {
			if s.DependsOn(r.unmapped) {
				return postponed
			}
			if !calculus.Permitted(q.locals, r.hAllowed, s) {
				return rejected
			}
			result = r.toSub.Convert(s)
		} else {
			if f.SignatureDependsOn(r.unmapped) {
				return postponed
			}
			// always a fresh copy, thm can be used more than once
			result = r.toSub.Clone(f)
			r.sub.indeterminates = append(r.sub.indeterminates, result)
			r.sub.depths = append(r.sub.depths, r.hDepth+1)
			if r.hAllowed != nil && r.hAllowed.Size() > 0 {
				r.sub.allowed[result] = r.hAllowed
			}
		}
		r.arguments[f] = result
		r.toSub.MustMatch(f, result)

	case slices.Contains(q.locals, f):
		if f.SignatureDependsOn(r.unmapped) {
			return postponed
		}
		// nothing else can depend on a local that depends on h
		if f.SignatureDependsOn([]*Term{r.h}) {
			return mapped
		}
		result := r.toSub.CheapClone(f)
		r.sub.locals = append(r.sub.locals, result)
		if result != f {
			r.sub.solutions = append(r.sub.solutions, binding{f, result})
		}
		r.toSub.MustMatch(f, result)

	default:
		panic(fmt.Sprintf("%s is neither an indeterminate, a parameter nor a local", f.FullString()))
	}
	return mapped
}

func convertSet(m *calculus.Matcher, s *set.Set[*Term]) *set.Set[*Term] {
	if s == nil {
		return nil
	}
	return set.From(m.ConvertAll(s.Slice()))
}

// FinalSolutions expresses the solutions of the goals of the root query,
// by walking up the chain of queries. It returns nil if q is not solved.
func (q *Query) FinalSolutions() []*Term {
	if !q.Solved() {
		return nil
	}

	// every query that has a parent, from the bottom up
	var chain []*Query
	for r := q; r.parent != nil; r = r.parent {
		chain = append(chain, r)
	}
	if len(chain) == 0 {
		return []*Term{}
	}

	// at each step the matcher maps the terms of the
	// current query to the final solution
	var matcher *calculus.Matcher
	for _, r := range chain {
		keys := lo.Map(r.solutions, func(b binding, _ int) *Term {
			return b.from
		})
		next := calculus.NewMatcher(keys)
		if matcher != nil {
			next = matcher.Sub(keys)
		}

		conv := matcher
		if matcher != nil {
			conv = cloneLocals(matcher, r)
		}

		h := r.parent.Last()
		for _, b := range r.solutions {
			g := b.to
			if conv != nil {
				g = conv.Convert(g)
			}
			if b.from == h && len(h.Parameters()) > 0 {
				params := lo.Map(h.Parameters(), func(p calculus.Parameter, _ int) calculus.Parameter {
					if conv != nil {
						return calculus.Parameter{Term: conv.Convert(p.Term), Explicit: p.Explicit}
					}
					return p
				})
				g = calculus.MustSpecialize(g, nil, params)
			}
			next.MustMatch(b.from, g)
		}
		matcher = next
	}

	root := chain[len(chain)-1].parent
	return matcher.ConvertAll(root.indeterminates)
}

// The locals of r that the later queries dropped were never converted, but
// their types may mention the goals solved later on. Such locals are cloned,
// and the returned Matcher maps them to their clones.
func cloneLocals(matcher *calculus.Matcher, r *Query) *calculus.Matcher {
	var stale, clones []*Term
	for _, b := range r.solutions {
		if !slices.Contains(r.parent.locals, b.from) || matcher.Solution(b.to) != nil {
			continue
		}
		if c := matcher.CheapClone(b.to); c != b.to {
			stale = append(stale, b.to)
			clones = append(clones, c)
		}
	}
	if len(stale) == 0 {
		return matcher
	}
	sub := matcher.Sub(stale)
	for i := range stale {
		sub.MustMatch(stale[i], clones[i])
	}
	return sub
}

// InjectsInto checks if every indeterminate of q can be matched with
// a distinct indeterminate of other, so that anything that solves other
// also solves q.
func (q *Query) InjectsInto(other *Query) bool {
	if len(q.indeterminates) > len(other.indeterminates) {
		return false
	}
	return injects(nil, q.indeterminates, other.indeterminates)
}

func injects(matcher *calculus.Matcher, unmapped, allowed []*Term) bool {
	n := len(unmapped)
	if n == 0 {
		return true
	}

	// starting from the back
	f := unmapped[n-1]
	if i := slices.Index(allowed, f); i >= 0 {
		return injects(matcher, unmapped[:n-1], slices.Delete(slices.Clone(allowed), i, i+1))
	}

CANDIDATES:
	for j := len(allowed) - 1; j >= 0; j-- {
		sub := calculus.NewMatcher(unmapped)
		if matcher != nil {
			sub = matcher.Sub(unmapped)
		}
		if !sub.Matches(f, allowed[j]) {
			continue
		}

		var nextUnmapped []*Term
		nextAllowed := slices.Clone(allowed)
		for _, h := range unmapped {
			k := sub.Solution(h)
			if k == nil {
				// the candidate was mapped to f instead
				if h == f {
					continue CANDIDATES
				}
				nextUnmapped = append(nextUnmapped, h)
				continue
			}
			i := slices.Index(nextAllowed, k)
			if i < 0 {
				continue CANDIDATES
			}
			nextAllowed = slices.Delete(nextAllowed, i, i+1)
		}

		if injects(sub, nextUnmapped, nextAllowed) {
			return true
		}
	}
	return false
}

// Fingerprint is a hash of the types of the indeterminates, that does
// not depend on their order. Queries with different fingerprints
// cannot be equivalent.
func (q *Query) Fingerprint() uint64 {
	sum := uint64(len(q.indeterminates))
	var buf [8]byte
	for _, f := range q.indeterminates {
		binary.LittleEndian.PutUint64(buf[:], f.Type().Base().ID())
		sum += murmur3.Sum64(buf[:])
	}
	return sum
}

func (q *Query) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Query@%d {", q.Depth())
	for _, f := range q.locals {
		fmt.Fprintf(&sb, " (%s)", f.FullString())
	}
	sb.WriteString(" }")
	for _, f := range q.indeterminates {
		fmt.Fprintf(&sb, " (%s)", f.FullString())
	}
	return sb.String()
}
