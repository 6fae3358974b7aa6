package eval

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	set "github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
	"github.com/twolodzko/canard/calculus"
	"github.com/twolodzko/canard/message"
	"github.com/twolodzko/canard/parser"
	"github.com/twolodzko/canard/search"
	"github.com/twolodzko/canard/session"
)

// Maximal number of solutions a single search can ask for.
const MaxResults = 10

// Evaluator executes the statements against the session.
type Evaluator struct {
	session  *session.Session
	current  *session.Namespace
	open     []*session.Namespace
	depth    int
	search   []search.Option
	dir      string
	imported *set.Set[string]
}

type Option func(*Evaluator)

func WithDepth(depth int) Option {
	return func(e *Evaluator) {
		e.depth = depth
	}
}

func WithSearchOptions(opts ...search.Option) Option {
	return func(e *Evaluator) {
		e.search = append(e.search, opts...)
	}
}

// WithDirectory sets the directory the imports are resolved against.
func WithDirectory(dir string) Option {
	return func(e *Evaluator) {
		e.dir = dir
	}
}

func New(s *session.Session, opts ...Option) *Evaluator {
	e := &Evaluator{
		session:  s,
		current:  s.Global(),
		depth:    search.DefaultDepth,
		imported: set.New[string](0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Current is the namespace the declarations are bound in.
func (e *Evaluator) Current() *session.Namespace {
	return e.current
}

// Evaluate the statement and pass its results to out.
func (e *Evaluator) Eval(stmt any, out func(message.Message)) error {
	switch stmt := stmt.(type) {
	case parser.Let:
		terms, err := e.group(nil, stmt.Group)
		if err != nil {
			return err
		}
		for i, name := range stmt.Names {
			if err := e.current.Bind(name, terms[i]); err != nil {
				return err
			}
		}
	case parser.Def:
		t, err := e.define(stmt)
		if err != nil {
			return err
		}
		return e.current.Bind(stmt.Name, t)
	case parser.Structure:
		typ, mk, err := e.structure(stmt)
		if err != nil {
			return err
		}
		if err := e.current.Bind(stmt.Name, typ); err != nil {
			return err
		}
		return e.current.Child(stmt.Name).Bind("mk", mk)
	case parser.Check:
		t, err := e.expr(nil, stmt.Expr)
		if err != nil {
			return err
		}
		out(message.Check(t.FullString()))
	case parser.Search:
		solutions, err := e.find(stmt)
		if err != nil {
			return err
		}
		out(message.Solutions(solutions))
	case parser.Prove:
		t, err := e.expr(nil, stmt.Expr)
		if err != nil {
			return err
		}
		if !t.IsBase() {
			return NotADeclarationError{t.String()}
		}
		out(message.Solutions(e.solve([]*Term{t}, 1, search.WithExcluded(t))))
	case parser.NamespaceBegin:
		e.current = e.current.Child(stmt.Name)
	case parser.NamespaceEnd:
		if e.current.Parent() == nil || e.current.Name() != stmt.Name {
			return NamespaceEndError{stmt.Name, e.current.Path()}
		}
		e.current = e.current.Parent()
	case parser.Open:
		ns, err := e.namespace(stmt.Path)
		if err != nil {
			return err
		}
		if !slices.Contains(e.open, ns) {
			e.open = append(e.open, ns)
		}
	case parser.Close:
		ns, err := e.namespace(stmt.Path)
		if err != nil {
			return err
		}
		e.open = slices.DeleteFunc(e.open, func(o *session.Namespace) bool {
			return o == ns
		})
	case parser.Import:
		path, err := parser.ResolvePath(stmt.Path, e.dir)
		if err != nil {
			return ImportError{stmt.Path, err}
		}
		if err := e.EvalFile(path, out); err != nil {
			return ImportError{stmt.Path, err}
		}
	case parser.Inspect:
		ns, err := e.namespace(stmt.Path)
		if err != nil {
			return err
		}
		out(message.List(lo.Map(ns.Declarations(), func(t *Term, _ int) string {
			return t.String()
		})))
	case parser.Exit:
		return ErrExit
	default:
		return fmt.Errorf("invalid statement type: %T", stmt)
	}
	return nil
}

// EvalFile evaluates all the statements from the file, stopping at the
// first error. A file is evaluated only once, further calls are no-ops.
func (e *Evaluator) EvalFile(path string, out func(message.Message)) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if !e.imported.Insert(path) {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open '%s': %w", path, err)
	}
	defer file.Close()

	dir := e.dir
	e.dir = filepath.Dir(path)
	defer func() { e.dir = dir }()

	return e.EvalAll(file, out)
}

// EvalAll evaluates all the statements read from in.
func (e *Evaluator) EvalAll(in io.Reader, out func(message.Message)) error {
	parser := parser.NewParser(in)
	for {
		stmt, err := parser.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := e.Eval(stmt, out); err != nil {
			return err
		}
	}
}

func (e *Evaluator) namespace(path string) (*session.Namespace, error) {
	ns, ok := e.session.Global().Namespace(path)
	if !ok {
		return nil, &session.UnknownNamespaceError{Path: path}
	}
	return ns, nil
}

func (e *Evaluator) resolve(sc *scope, path string) (*Term, error) {
	if !strings.Contains(path, ".") {
		if t, ok := sc.lookup(path); ok {
			return t, nil
		}
	}
	return e.session.Resolve(e.current, e.open, path)
}

// Declare the terms named by the group, they are not bound to any names yet.
func (e *Evaluator) group(sc *scope, g parser.Group) ([]*Term, error) {
	use := sc
	params, err := e.params(newScope(sc), g.Params, &use)
	if err != nil {
		return nil, err
	}

	typ, err := e.expr(use, g.Type)
	if err != nil {
		return nil, err
	}
	if k := typ.Type(); k != e.session.Type && k != e.session.Prop {
		return nil, NotATypeError{typ.String()}
	}
	if len(typ.Parameters()) > 0 {
		return nil, MissingArgumentsError{typ.String()}
	}

	return lo.Map(g.Names, func(string, int) *Term {
		return calculus.Declare(typ, params)
	}), nil
}

// Declare the parameters in sc. When there are any, use is set to sc.
func (e *Evaluator) params(sc *scope, groups []parser.Group, use **scope) ([]calculus.Parameter, error) {
	var params []calculus.Parameter
	for _, g := range groups {
		terms, err := e.group(sc, g)
		if err != nil {
			return nil, err
		}
		for i, name := range g.Names {
			if err := sc.bind(name, terms[i]); err != nil {
				return nil, err
			}
			terms[i].Bind(name, "")
			params = append(params, calculus.Parameter{Term: terms[i], Explicit: g.Explicit})
		}
	}

	// implicit parameters can only be inferred from the later ones
	for _, p := range params {
		if !p.Explicit && !sc.used.Contains(p.Term) {
			return nil, UnusedParameterError{p.Term.String()}
		}
	}

	if len(params) > 0 {
		*use = sc
	}
	return params, nil
}

func (e *Evaluator) define(def parser.Def) (*Term, error) {
	var sc *scope
	params, err := e.params(newScope(nil), def.Params, &sc)
	if err != nil {
		return nil, err
	}

	terms, err := e.terms(sc, def.Body)
	if err != nil {
		return nil, err
	}
	if len(terms) > 1 {
		return calculus.Specialize(terms[0], terms[1:], params)
	}

	t := terms[0]
	switch {
	case len(params) == 0:
		return t, nil
	case t.IsBase() || len(t.Parameters()) > 0:
		return calculus.Specialize(t, t.ExplicitParameters(), params)
	default:
		return calculus.Specialize(t.Base(), t.Arguments(), params)
	}
}

// The type of the structure takes the parameters, its constructor takes
// the parameters followed by the fields.
func (e *Evaluator) structure(stmt parser.Structure) (*Term, *Term, error) {
	var sc *scope
	params, err := e.params(newScope(nil), stmt.Params, &sc)
	if err != nil {
		return nil, nil, err
	}
	var use *scope
	fields, err := e.params(newScope(sc), stmt.Fields, &use)
	if err != nil {
		return nil, nil, err
	}

	typ := calculus.Declare(e.session.Type, params)
	instance, err := calculus.Specialize(typ, typ.ExplicitParameters(), nil)
	if err != nil {
		return nil, nil, err
	}
	mk := calculus.Declare(instance, slices.Concat(params, fields))
	return typ, mk, nil
}

func (e *Evaluator) expr(sc *scope, expr parser.Expr) (*Term, error) {
	terms, err := e.terms(sc, expr)
	if err != nil {
		return nil, err
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return calculus.Specialize(terms[0], terms[1:], nil)
}

func (e *Evaluator) terms(sc *scope, expr parser.Expr) ([]*Term, error) {
	if len(expr) == 0 {
		return nil, errors.New("expected expression but not found")
	}
	terms := make([]*Term, len(expr))
	for i, el := range expr {
		var err error
		switch el := el.(type) {
		case parser.Name:
			terms[i], err = e.resolve(sc, string(el))
		case parser.Expr:
			terms[i], err = e.expr(sc, el)
		default:
			panic(fmt.Sprintf("invalid expression element: %T", el))
		}
		if err != nil {
			return nil, err
		}
	}
	return terms, nil
}

// Search for the solutions of the goals.
func (e *Evaluator) find(stmt parser.Search) ([]message.Solution, error) {
	sc := newScope(nil)
	var goals []*Term
	for _, g := range stmt.Goals {
		terms, err := e.group(sc, g)
		if err != nil {
			return nil, err
		}
		for i, name := range g.Names {
			if err := sc.bind(name, terms[i]); err != nil {
				return nil, err
			}
			terms[i].Bind(name, "")
		}
		goals = append(goals, terms...)
	}
	return e.solve(goals, stmt.Count), nil
}

// Find up to count solutions, the duplicated solutions are skipped.
func (e *Evaluator) solve(goals []*Term, count int, opts ...search.Option) []message.Solution {
	space := e.session.SearchSpace(e.current, e.open)
	searcher := search.New(session.Declarations(space), e.depth, slices.Concat(e.search, opts)...)

	var found [][]*Term
	count = min(count, MaxResults)
	solution, ok := searcher.Search(search.NewQuery(goals))
	for ok {
		if !slices.ContainsFunc(found, func(other []*Term) bool {
			return equalAll(solution, other)
		}) {
			found = append(found, solution)
		}
		if len(found) >= count {
			break
		}
		solution, ok = searcher.Next()
	}

	return lo.Map(found, func(solution []*Term, _ int) message.Solution {
		return lo.Map(goals, func(goal *Term, i int) message.Binding {
			return message.Binding{
				Goal:  goal.String(),
				Short: solution[i].String(),
				Full:  solution[i].FullString(),
			}
		})
	})
}

func equalAll(a, b []*Term) bool {
	return slices.EqualFunc(a, b, calculus.Equal)
}
