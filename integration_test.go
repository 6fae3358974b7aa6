package main_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/twolodzko/canard/calculus"
	"github.com/twolodzko/canard/eval"
	"github.com/twolodzko/canard/message"
	"github.com/twolodzko/canard/session"
)

func evalString(e *eval.Evaluator, code string, json bool) ([]string, error) {
	var result []string
	err := e.EvalAll(strings.NewReader(code), func(m message.Message) {
		if json {
			result = append(result, m.JSON())
		} else {
			result = append(result, m.Plain())
		}
	})
	return result, err
}

func TestIntegration(t *testing.T) {
	var testCases = []struct {
		input    string
		expected []string
	}{
		{
			`
			let A : Type
			check A
			`,
			[]string{"🦆 A : Type"},
		},
		{
			`
			let A : Type
			let a : A
			let f {X : Type} (x : X) : X
			check f a
			let g (X : Type) (x : X) : X
			check g A a
			`,
			[]string{"🦆 f a : A", "🦆 g A a : A"},
		},
		{
			`
			let A : Type
			let a : A
			def id {T : Type} (x : T) := x
			def idA (x : A) := id x
			check idA
			check id a
			check idA a
			`,
			[]string{
				"🦆 idA (x : A) : A := x",
				"🦆 a : A",
				"🦆 a : A",
			},
		},
		{
			`
			let A : Type
			search (x : A)
			`,
			[]string{"🥺 no solutions found"},
		},
		{
			`
			let A : Type
			let a : A
			search (x : A)
			`,
			[]string{"🔎 x = a"},
		},
		{
			// modus ponens and a lambda
			`
			let P Q R : Prop
			let p : P
			let pq (_ : P) : Q
			let qr (_ : Q) : R
			search (r : R)
			search (pr (_ : P) : R)
			`,
			[]string{"🔎 r = qr (pq p)", "🔎 pr = λ (_ : P) := qr (pq _)"},
		},
		{
			// terminates on the cycles
			`
			let A B : Type
			let ab (_ : A) : B
			let ba (_ : B) : A
			search (x : A)
			`,
			[]string{"🥺 no solutions found"},
		},
		{
			// the type of the local is fixed by a goal solved later
			`
			let A B : Type
			let b : B
			let g (a : A) : B
			search (X : Type) (f (x : X) : B) 3
			`,
			[]string{
				"🔎 X = B, f = λ (x : B) := x\n" +
					"🔎 X = A, f = λ (x : A) := b\n" +
					"🔎 X = B, f = λ (x : B) := b",
			},
		},
		{
			`
			namespace logic
			let P : Prop
			let p : P
			end logic
			open logic
			search (x : P) 3
			inspect logic
			`,
			[]string{"🔎 x = logic.p", "logic.P\nlogic.p"},
		},
	}

	for _, tt := range testCases {
		e := eval.New(session.New())
		result, err := evalString(e, tt.input, false)
		if err != nil {
			t.Errorf("for:\n%v\nunexpected error: %s", tt.input, err)
			continue
		}
		if !cmp.Equal(result, tt.expected) {
			t.Errorf("for:\n%v\nexpected: %v, got: %v", tt.input, tt.expected, result)
		}
	}
}

func TestIntegrationErrors(t *testing.T) {
	var testCases = []struct {
		input, expected string
	}{
		{"let f {X Y : Type} (x : X) : Y", "implicit parameter 'Y' unused"},
		{"let A : Type ; let a : A ; let b : a", "expected a Type or Prop, got 'a'"},
		{"let A : Type ; let A : Type", "name A already used in this context"},
		{"check A", "unknown identifier 'A'"},
		{"let A : Type ; let", "unexpected EOF"},
		{"let A : Type ; let f (x : A) : A ; check f A", "argument 'A' does not match 'x : A'"},
	}

	for _, tt := range testCases {
		e := eval.New(session.New())
		_, err := evalString(e, tt.input, false)
		if err == nil {
			t.Errorf("expected an error for '%s'", tt.input)
			continue
		}
		if err.Error() != tt.expected {
			t.Errorf("for '%s' expected error '%s', got '%s'", tt.input, tt.expected, err)
		}
	}
}

func TestLabelsDoNotAffectEquality(t *testing.T) {
	s := session.New()
	e := eval.New(s)
	_, err := evalString(e, `
		let A : Type
		let a : A
		let f {X : Type} (x : X) : X
		def h := f a
	`, false)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	f, _ := s.Global().Lookup("f")
	a, _ := s.Global().Lookup("a")
	h, _ := s.Global().Lookup("h")
	fa := calculus.MustSpecialize(f, []*calculus.Term{a}, nil)

	if !calculus.Equal(h, fa) || !calculus.Equal(fa, h) {
		t.Errorf("expected %s and %s to be equal", h.FullString(), fa.FullString())
	}
	if h.String() == fa.String() {
		t.Errorf("expected different renderings, got %s for both", h)
	}
}

func TestJSONOutput(t *testing.T) {
	e := eval.New(session.New())
	result, err := evalString(e, `
		let A : Type
		let a : A
		check a
		search (x : A) (y : A)
		let B : Type
		search (x : B)
	`, true)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	expected := []string{
		`{"status":"success","data":"a : A"}`,
		`{"status":"success","data":[{"x":"a : A","y":"a : A"}]}`,
		`{"status":"fail","data":[]}`,
	}
	if !cmp.Equal(result, expected) {
		t.Errorf("expected: %v, got: %v", expected, result)
	}
}

func TestEvalFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.canard")
	code := `
		# a comment
		let A : Type
		let a : A
		search (x : A)
		exit
		check nope
	`
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}

	e := eval.New(session.New())
	var result []string
	err := e.EvalFile(path, func(m message.Message) {
		result = append(result, m.Plain())
	})
	if err != eval.ErrExit {
		t.Errorf("expected exit, got %v", err)
	}
	if !cmp.Equal(result, []string{"🔎 x = a"}) {
		t.Errorf("unexpected result: %v", result)
	}
}
