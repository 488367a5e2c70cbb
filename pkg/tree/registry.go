package tree

import (
	"github.com/go-arbor/arbor/pkg/descriptor"
	"github.com/go-arbor/arbor/pkg/errors"
)

// Process-scoped state: the native-to-logical side table, the document
// roots, the bound host and the fallback constructor. All of it is
// initialized at first use and torn down by Reset; the model is
// single-threaded (see package comment), so no locking is involved.
var (
	links       map[NativeNode]*Node
	roots       map[NativeNode]bool
	boundHost   *Host
	defaultCtor descriptor.Constructor
)

// BindHost installs the native tree implementation used by MakeNode, Mount
// and Construct.
func BindHost(h Host) {
	boundHost = &h
}

// currentHost returns the bound host or a structural error.
func currentHost(op string) (*Host, error) {
	if boundHost == nil || boundHost.CreateElement == nil {
		return nil, &errors.StructuralError{Op: op, Detail: "no host bound (call tree.BindHost first)"}
	}
	return boundHost, nil
}

// SetDefaultConstructor installs the process-wide fallback constructor used
// by Construct when a descriptor carries no override and no inherited
// default applies. Pass nil to restore the built-in generic constructor.
func SetDefaultConstructor(c descriptor.Constructor) {
	defaultCtor = c
}

// MarkRoot declares a native node to be a document root for connectivity
// tracking: nodes are Connected when their native ancestor chain reaches a
// marked root or a root-flagged logical node.
func MarkRoot(native NativeNode) {
	if roots == nil {
		roots = make(map[NativeNode]bool)
	}
	roots[native] = true
}

// UnmarkRoot removes a document root declaration.
func UnmarkRoot(native NativeNode) {
	delete(roots, native)
}

// Reset tears down all process-scoped state: side table, roots, host
// binding and default constructor. Intended as a test teardown hook.
func Reset() {
	links = nil
	roots = nil
	boundHost = nil
	defaultCtor = nil
}

// linkTable returns the side table, initializing it at first use.
func linkTable() map[NativeNode]*Node {
	if links == nil {
		links = make(map[NativeNode]*Node)
	}
	return links
}

// LogicalOf returns the logical node associated with a native node, or nil.
// The side table grants lookup only, never ownership: entries are written
// once at creation and removed on destroy.
func LogicalOf(native NativeNode) *Node {
	if native == nil || links == nil {
		return nil
	}
	return links[native]
}

// link records the backward association native -> logical. A native node
// may have at most one logical wrapper over its whole lifetime.
func link(native NativeNode, logical *Node) error {
	t := linkTable()
	if prev, ok := t[native]; ok && prev != logical {
		return &errors.StructuralError{Op: "tree.MakeNode", Detail: "native node already has a logical wrapper"}
	}
	t[native] = logical
	return nil
}

// unlink removes the backward association on destroy.
func unlink(native NativeNode) {
	if native != nil && links != nil {
		delete(links, native)
	}
}
