package session

import "strings"

// Namespace is a named scope of declarations, namespaces form a tree
// rooted at the global namespace.
type Namespace struct {
	name     string
	parent   *Namespace
	children map[string]*Namespace
	names    map[string]*Term
	order    []*Term
}

func newNamespace(parent *Namespace, name string) *Namespace {
	return &Namespace{
		name:     name,
		parent:   parent,
		children: make(map[string]*Namespace),
		names:    make(map[string]*Term),
	}
}

func (ns *Namespace) Name() string {
	return ns.name
}

func (ns *Namespace) Parent() *Namespace {
	return ns.parent
}

// Path is the dot-separated path from the global namespace,
// the global namespace itself has an empty path.
func (ns *Namespace) Path() string {
	if ns.parent == nil {
		return ""
	}
	if prefix := ns.parent.Path(); prefix != "" {
		return prefix + "." + ns.name
	}
	return ns.name
}

// Child returns the sub-namespace with the name, creating it if needed.
func (ns *Namespace) Child(name string) *Namespace {
	if child, ok := ns.children[name]; ok {
		return child
	}
	child := newNamespace(ns, name)
	ns.children[name] = child
	return child
}

// Namespace finds the sub-namespace by its dot-separated path.
func (ns *Namespace) Namespace(path string) (*Namespace, bool) {
	if path == "" {
		return ns, true
	}
	head, rest, _ := strings.Cut(path, ".")
	child, ok := ns.children[head]
	if !ok {
		return nil, false
	}
	return child.Namespace(rest)
}

// Lookup the term by its dot-separated path, relative to the namespace.
func (ns *Namespace) Lookup(path string) (*Term, bool) {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		t, ok := ns.names[path]
		return t, ok
	}
	space, ok := ns.Namespace(path[:i])
	if !ok {
		return nil, false
	}
	t, ok := space.names[path[i+1:]]
	return t, ok
}

// Bind the name to the term. The term gets labeled with the name,
// unless it was already labeled before.
func (ns *Namespace) Bind(name string, t *Term) error {
	if _, ok := ns.names[name]; ok {
		return &DuplicateNameError{name}
	}
	ns.define(name, t)
	ns.order = append(ns.order, t)
	return nil
}

func (ns *Namespace) define(name string, t *Term) {
	t.Bind(name, ns.Path())
	ns.names[name] = t
}

// Declarations in the order they were bound.
func (ns *Namespace) Declarations() []*Term {
	return ns.order
}

func (ns *Namespace) String() string {
	return ns.Path()
}
