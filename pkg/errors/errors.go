// Package errors provides structured error handling for the arbor library.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindParse indicates a malformed compact descriptor string.
	KindParse
	// KindType indicates a parameter or container key of the wrong shape.
	KindType
	// KindStructural indicates an inconsistent tree operation, such as a
	// naming collision or an unmount with no matching mount.
	KindStructural
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindType:
		return "type"
	case KindStructural:
		return "structural"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ParseError reports a compact descriptor string that does not match the
// descriptor grammar.
type ParseError struct {
	// Input is the full string handed to the parser.
	Input string
	// Text is the offending segment that failed to match.
	Text string
}

func (e *ParseError) Error() string {
	if e.Text != "" && e.Text != e.Input {
		return fmt.Sprintf("cannot parse descriptor %q: unrecognized text %q", e.Input, e.Text)
	}
	return fmt.Sprintf("cannot parse descriptor %q", e.Input)
}

// Kind returns KindParse.
func (e *ParseError) Kind() ErrorKind { return KindParse }

// TypeError reports a construction parameter whose runtime shape cannot be
// classified, or a container key given a non-object value.
type TypeError struct {
	// Op is the operation that failed (e.g., "descriptor.Reduce").
	Op string
	// Key is the object key being classified, if any.
	Key string
	// Value is the offending value, attached for diagnostics.
	Value any
}

func (e *TypeError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: key %q has unsupported value of type %T (%v)", e.Op, e.Key, e.Value, e.Value)
	}
	return fmt.Sprintf("%s: unrecognized parameter of type %T (%v)", e.Op, e.Value, e.Value)
}

// Kind returns KindType.
func (e *TypeError) Kind() ErrorKind { return KindType }

// StructuralError reports an inconsistent mutation of the dual hierarchy.
type StructuralError struct {
	// Op is the operation that failed (e.g., "tree.Mount").
	Op string
	// Name is the child name involved, if any.
	Name string
	// Detail describes the inconsistency.
	Detail string
}

func (e *StructuralError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (name %q)", e.Op, e.Detail, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

// Kind returns KindStructural.
func (e *StructuralError) Kind() ErrorKind { return KindStructural }

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "tree.destroy.disposer").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Kind returns KindPanic.
func (e *PanicError) Kind() ErrorKind { return KindPanic }

// KindOf returns the kind of an error produced by this package, or
// KindUnknown for any other error.
func KindOf(err error) ErrorKind {
	if k, ok := err.(interface{ Kind() ErrorKind }); ok {
		return k.Kind()
	}
	return KindUnknown
}
