package session

import "fmt"

type UnknownIdentifierError struct {
	Path string
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("unknown identifier '%s'", e.Path)
}

type AmbiguousIdentifierError struct {
	Path string
}

func (e *AmbiguousIdentifierError) Error() string {
	return fmt.Sprintf("ambiguous identifier '%s'", e.Path)
}

type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("name %s already used in this context", e.Name)
}

type UnknownNamespaceError struct {
	Path string
}

func (e *UnknownNamespaceError) Error() string {
	return fmt.Sprintf("unknown namespace '%s'", e.Path)
}
