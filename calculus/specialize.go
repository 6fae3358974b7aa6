package calculus

import (
	"fmt"
	"strings"
)

// Specialize substitutes the arguments for the explicit parameters of the term.
// The implicit parameters are inferred by matching the parameters against the
// arguments. The resulting term is generic over params.
//
// Applications never nest: specializing an application specializes its base
// with the arguments rewritten under the new substitution.
func Specialize(t *Term, args []*Term, params []Parameter) (*Term, error) {
	explicit := t.ExplicitParameters()
	if len(args) != len(explicit) {
		return nil, &SpecializationError{
			Term:     t,
			Expected: len(explicit),
			Received: len(args),
		}
	}

	if len(args) == 0 && len(params) == 0 {
		return t, nil
	}

	matcher := NewMatcher(t.ParameterTerms())
	for i, arg := range args {
		if !matcher.Matches(explicit[i], arg) {
			return nil, &SpecializationError{
				Term:        t,
				Parameter:   explicit[i],
				Argument:    arg,
				Assignments: assignments(explicit[:i], args[:i]),
			}
		}
	}

	if !t.IsBase() {
		baseArgs := matcher.ConvertAll(t.Arguments())
		return Specialize(matcher.Convert(t.Base()), baseArgs, params)
	}

	typ := matcher.Convert(t.Type())
	return newApplication(t, args, typ, params), nil
}

// MustSpecialize is like Specialize, but panics on error. It is meant to be used
// where the arguments are known to fit.
func MustSpecialize(t *Term, args []*Term, params []Parameter) *Term {
	s, err := Specialize(t, args, params)
	if err != nil {
		panic(fmt.Sprintf("invalid specialization of %s: %s", t.FullString(), err))
	}
	return s
}

type Assignment struct {
	Parameter, Argument *Term
}

func assignments(params, args []*Term) []Assignment {
	var out []Assignment
	for i := range params {
		out = append(out, Assignment{params[i], args[i]})
	}
	return out
}

// SpecializationError reports that the arguments do not fit the parameters.
type SpecializationError struct {
	Term        *Term
	Parameter   *Term
	Argument    *Term
	Assignments []Assignment
	Expected    int
	Received    int
}

func (e *SpecializationError) Error() string {
	if e.Parameter == nil {
		return fmt.Sprintf("%s expected %d arguments but received %d", e.Term, e.Expected, e.Received)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "argument '%s' does not match '%s'", e.Argument, e.Parameter.FullString())
	for i, a := range e.Assignments {
		if i == 0 {
			sb.WriteString(" where ")
		} else {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s = %s", a.Parameter, a.Argument)
	}
	return sb.String()
}
