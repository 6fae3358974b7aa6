package message

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type Status string

const (
	Success Status = "success"
	Fail    Status = "fail"
	Error   Status = "error"
)

type Kind int

const (
	Checked Kind = iota
	Found
	NotFound
	Listing
	Failure
)

// Message is a result of evaluating a statement.
type Message struct {
	Status Status `json:"status"`
	Kind   Kind   `json:"-"`
	Data   any    `json:"data"`
}

// Binding of a search goal to its solution, in the short and in the full form.
type Binding struct {
	Goal, Short, Full string
}

// Solution binds every goal of a search.
type Solution []Binding

func (s Solution) String() string {
	return strings.Join(lo.Map(s, func(b Binding, _ int) string {
		return b.Goal + " = " + b.Short
	}), ", ")
}

func (s Solution) MarshalJSON() ([]byte, error) {
	return json.Marshal(lo.SliceToMap(s, func(b Binding) (string, string) {
		return b.Goal, b.Full
	}))
}

func Check(term string) Message {
	return Message{Success, Checked, term}
}

// Solutions of a search. A search without any solution is a failure,
// but not an error.
func Solutions(solutions []Solution) Message {
	if len(solutions) == 0 {
		return Message{Fail, NotFound, []Solution{}}
	}
	return Message{Success, Found, solutions}
}

func List(lines []string) Message {
	if lines == nil {
		lines = []string{}
	}
	return Message{Success, Listing, lines}
}

func FromError(err error) Message {
	return Message{Error, Failure, err.Error()}
}

// Plain renders the message for a human reader.
func (m Message) Plain() string {
	switch m.Kind {
	case Checked:
		return fmt.Sprintf("🦆 %v", m.Data)
	case Found:
		solutions, _ := m.Data.([]Solution)
		return strings.Join(lo.Map(solutions, func(s Solution, _ int) string {
			return "🔎 " + s.String()
		}), "\n")
	case NotFound:
		return "🥺 no solutions found"
	case Listing:
		lines, _ := m.Data.([]string)
		return strings.Join(lines, "\n")
	case Failure:
		return fmt.Sprintf("⚠️ %v", m.Data)
	default:
		panic(fmt.Sprintf("unknown message kind: %d", m.Kind))
	}
}

// JSON renders the message as a single line {"status": ..., "data": ...}.
func (m Message) JSON() string {
	out, err := json.Marshal(m)
	if err != nil {
		out, _ = json.Marshal(FromError(err))
	}
	return string(out)
}

func (m Message) String() string {
	return m.Plain()
}
