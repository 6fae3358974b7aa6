package parser

// Name is a dot-separated path of a term, e.g. foo.bar.
type Name string

// Expr is a sequence of terms, each of them a Name or a parenthesized
// Expr. The first term is applied to the rest of them.
type Expr []any

// Group declares one or more names, sharing the same parameters and type:
//
//	NAMES PARAMS : TYPE
type Group struct {
	Names    []string
	Params   []Group
	Type     Expr
	Explicit bool
}

// Declare constants.
//
//	let f {X : Type} (x : X) : X
type Let struct {
	Group
}

// Define a term as an expression over its parameters.
//
//	def id {X : Type} (x : X) := x
type Def struct {
	Name   string
	Params []Group
	Body   Expr
}

// Declare a type together with its constructor NAME.mk, which takes
// the parameters of the type followed by the fields.
//
//	structure Pair (X Y : Type) := { fst : X, snd : Y }
type Structure struct {
	Name   string
	Params []Group
	Fields []Group
}

// Check the expression and print it with its type.
//
//	check f a
type Check struct {
	Expr Expr
}

// Search for terms of the given types.
//
//	search (x : A) (y : B) 3
type Search struct {
	Goals []Group
	Count int
}

// Prove searches for a term of the type of the declaration, without
// using the declaration itself.
//
//	prove thm
type Prove struct {
	Expr Expr
}

type NamespaceBegin struct {
	Name string
}

type NamespaceEnd struct {
	Name string
}

// Open the namespace, so its names can be used without the path.
type Open struct {
	Path string
}

type Close struct {
	Path string
}

// Import evaluates the file, unless it was already imported.
type Import struct {
	Path string
}

// Inspect lists the declarations of the namespace.
type Inspect struct {
	Path string
}

type Exit struct{}
