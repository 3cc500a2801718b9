// Package cell holds a single value of a type chosen at install time and
// hands it back only to callers asking for that same type.
package cell

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var ErrNotInstalled = errors.New("state is not initialized")

// TypeMismatchError is raised when a value is requested with a type other
// than the one it was installed with. It means a binding was wired
// against the wrong store.
type TypeMismatchError struct {
	Want reflect.Type
	Got  reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("state type mismatch: requested %v, but %v is installed", e.Want, e.Got)
}

// Cell is not synchronized. Callers are expected to guard it.
type Cell struct {
	// Always a pointer to the installed value, so access is in place.
	box any
	typ reflect.Type
}

// Install replaces the content of the cell, whatever its former type was.
func Install[V any](c *Cell, v V) {
	c.box = &v
	c.typ = reflect.TypeOf((*V)(nil)).Elem()
}

// Lookup returns the installed value as V.
func Lookup[V any](c *Cell) (*V, error) {
	if c.box == nil {
		return nil, errors.WithStack(ErrNotInstalled)
	}

	v, ok := c.box.(*V)
	if !ok {
		return nil, errors.WithStack(&TypeMismatchError{
			Want: reflect.TypeOf((*V)(nil)).Elem(),
			Got:  c.typ,
		})
	}

	return v, nil
}

// Get is like Lookup, but panics on failure. Both failures are defects
// of the calling code, not conditions to recover from.
func Get[V any](c *Cell) *V {
	v, err := Lookup[V](c)
	if err != nil {
		panic(err)
	}
	return v
}

func Installed(c *Cell) bool {
	return c.box != nil
}

// TypeOf returns the type of the installed value, or nil.
func TypeOf(c *Cell) reflect.Type {
	return c.typ
}
