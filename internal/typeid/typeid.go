// Package typeid derives a stable, process-unique identifier from a Go
// type. It backs the "runtime-typed boxes" payload strategy described in
// the design notes: every node's identity is tied to the type of the value
// its producer returns, so two node descriptors registered for the same
// output type collide on the same ID and are deduplicated during graph
// construction.
package typeid

import "reflect"

// ID identifies a node by the Go type of its output. It is comparable and
// safe to use as a map key.
type ID struct{ rt reflect.Type }

// Of returns the ID for output type T.
//
// The (*T)(nil) trick works for any T, including interface types, where
// reflect.TypeOf(zeroValue) would otherwise report the dynamic type of nil
// (or no type at all).
func Of[T any]() ID {
	return ID{rt: reflect.TypeOf((*T)(nil)).Elem()}
}

// String renders the identifier as the underlying type's name, useful for
// diagnostics and error messages.
func (id ID) String() string {
	if id.rt == nil {
		return "<invalid>"
	}
	return id.rt.String()
}

// Less provides a deterministic order over IDs, by type name, so a graph
// can sort its nodes once at build time.
func (id ID) Less(other ID) bool { return id.String() < other.String() }

// IsValid reports whether id was produced by Of (as opposed to a zero ID).
func (id ID) IsValid() bool { return id.rt != nil }
