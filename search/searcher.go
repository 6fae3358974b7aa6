package search

import (
	"log"
	"slices"

	"github.com/samber/lo"
)

const DefaultDepth = 5

// Searcher looks for terms of the given types, exploring the queries
// breadth-first. It remembers where it stopped, so that the search
// can be resumed to find more solutions.
type Searcher struct {
	index    *Index
	maxDepth int
	logger   *log.Logger
	dedup    bool
	excluded []*Term

	frontier   []*Query
	current    *Query
	candidates []*Term
	pos        int
}

type Option func(*Searcher)

// WithLogger traces the examined and the reduced queries.
func WithLogger(logger *log.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// WithDeduplication skips the queries that are equivalent to
// a query already waiting in the frontier.
func WithDeduplication() Option {
	return func(s *Searcher) {
		s.dedup = true
	}
}

// WithExcluded removes the declarations from the candidates.
func WithExcluded(thms ...*Term) Option {
	return func(s *Searcher) {
		s.excluded = append(s.excluded, thms...)
	}
}

// New creates a Searcher using the declarations as candidates. Queries
// at maxDepth or deeper are not explored.
func New(decls []*Term, maxDepth int, opts ...Option) *Searcher {
	s := &Searcher{maxDepth: maxDepth}
	for _, opt := range opts {
		opt(s)
	}
	s.index = NewIndex(lo.Without(decls, s.excluded...))
	return s
}

// Search starts a new search and returns the solutions of the first
// query that got solved, one per goal of q.
func (s *Searcher) Search(q *Query) ([]*Term, bool) {
	s.frontier = []*Query{q}
	s.current = nil
	s.candidates = nil
	s.pos = 0
	s.logf("searching %v among %d declarations", q, s.index.Len())
	return s.Next()
}

// Next resumes the search to find another solution.
func (s *Searcher) Next() ([]*Term, bool) {
	for {
		if s.current != nil {
			for s.pos < len(s.candidates) {
				thm := s.candidates[s.pos]
				s.pos++
				if solutions, ok := s.try(s.current, thm); ok {
					return solutions, true
				}
			}
			s.current = nil
		}

		if len(s.frontier) == 0 {
			return nil, false
		}
		q := s.frontier[0]
		s.frontier = s.frontier[1:]

		if q.Solved() {
			return q.FinalSolutions(), true
		}

		if sub := q.Abstraction(); sub != nil {
			q = sub
		}
		s.logf("examining %v", q)

		if s.dominated(q) {
			s.logf("skipping %v", q)
			continue
		}
		s.prune(q)

		s.current = q
		s.candidates = slices.Concat(q.Locals(), s.index.Candidates(q.Last()))
		s.pos = 0
	}
}

func (s *Searcher) try(q *Query, thm *Term) ([]*Term, bool) {
	sub := q.Reduce(thm)
	if sub == nil {
		return nil, false
	}
	s.logf("reduced with %v to %v", thm, sub)

	if sub.Solved() {
		return sub.FinalSolutions(), true
	}
	if sub.Depth() >= s.maxDepth {
		return nil, false
	}
	if s.dedup && s.duplicate(sub) {
		s.logf("duplicate %v", sub)
		return nil, false
	}
	s.frontier = append(s.frontier, sub)
	return nil, false
}

// The query is redundant if any of its ancestors injects into it.
func (s *Searcher) dominated(q *Query) bool {
	for r := q.Parent(); r != nil; r = r.Parent() {
		if r.InjectsInto(q) {
			return true
		}
	}
	return false
}

// If q injects into an ancestor, any solution of q solves the ancestor,
// so the other branches of the ancestor can be dropped.
func (s *Searcher) prune(q *Query) {
	for r := q.Parent(); r != nil; r = r.Parent() {
		if !q.InjectsInto(r) {
			continue
		}
		s.frontier = slices.DeleteFunc(s.frontier, func(p *Query) bool {
			return descends(p, r)
		})
	}
}

func descends(q, ancestor *Query) bool {
	for r := q.Parent(); r != nil; r = r.Parent() {
		if r == ancestor {
			return true
		}
	}
	return false
}

func (s *Searcher) duplicate(q *Query) bool {
	fingerprint := q.Fingerprint()
	for _, r := range s.frontier {
		if r.Fingerprint() == fingerprint && q.InjectsInto(r) && r.InjectsInto(q) {
			return true
		}
	}
	return false
}

func (s *Searcher) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
