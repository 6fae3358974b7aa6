package calculus

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// String is the short form: the label, if bound, otherwise the application
// written out.
func (t *Term) String() string {
	if t.label != "" {
		if t.namespace == "" {
			return t.label
		}
		return t.namespace + "." + t.label
	}
	if t.IsBase() {
		return fmt.Sprintf("_%d", t.id)
	}
	if len(t.params) == 0 {
		return t.body()
	}
	return fmt.Sprintf("λ %s := %s", stringify(t.params, " "), t.body())
}

// FullString is the long form, showing the parameters and the type.
func (t *Term) FullString() string {
	var sb strings.Builder
	sb.WriteString(t.String())
	if t.IsBase() || t.label != "" {
		for _, p := range t.params {
			sb.WriteString(" ")
			sb.WriteString(p.String())
		}
	}
	if t.typ != nil {
		sb.WriteString(" : ")
		sb.WriteString(t.typ.String())
	}
	if !t.IsBase() && t.label != "" {
		sb.WriteString(" := ")
		sb.WriteString(t.body())
	}
	return sb.String()
}

// Render the base applied to the arguments.
func (t *Term) body() string {
	var sb strings.Builder
	sb.WriteString(t.base.String())
	for _, arg := range t.args {
		s := arg.String()
		if strings.Contains(s, " ") {
			s = "(" + s + ")"
		}
		sb.WriteString(" ")
		sb.WriteString(s)
	}
	return sb.String()
}

func (p Parameter) String() string {
	if p.Explicit {
		return "(" + p.Term.FullString() + ")"
	}
	return "{" + p.Term.FullString() + "}"
}

func stringify[T fmt.Stringer](vals []T, sep string) string {
	return strings.Join(lo.Map(vals, func(v T, _ int) string {
		return v.String()
	}), sep)
}
