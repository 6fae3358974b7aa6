package eval

import (
	"errors"
	"fmt"
)

// ErrExit is returned when the exit statement was evaluated.
var ErrExit = errors.New("exit")

type NotATypeError struct {
	Term string
}

func (e NotATypeError) Error() string {
	return fmt.Sprintf("expected a Type or Prop, got '%s'", e.Term)
}

type MissingArgumentsError struct {
	Term string
}

func (e MissingArgumentsError) Error() string {
	return fmt.Sprintf("forgot arguments of '%s'", e.Term)
}

type NotADeclarationError struct {
	Term string
}

func (e NotADeclarationError) Error() string {
	return fmt.Sprintf("prove expects a declaration, got '%s'", e.Term)
}

type UnusedParameterError struct {
	Name string
}

func (e UnusedParameterError) Error() string {
	return fmt.Sprintf("implicit parameter '%s' unused", e.Name)
}

type NamespaceEndError struct {
	Name, Current string
}

func (e NamespaceEndError) Error() string {
	if e.Current == "" {
		return fmt.Sprintf("cannot end namespace '%s' outside of any namespace", e.Name)
	}
	return fmt.Sprintf("cannot end namespace '%s' inside of '%s'", e.Name, e.Current)
}

type ImportError struct {
	Path string
	Err  error
}

func (e ImportError) Error() string {
	return fmt.Sprintf("error in importing '%s': %s", e.Path, e.Err)
}

func (e ImportError) Unwrap() error {
	return e.Err
}
