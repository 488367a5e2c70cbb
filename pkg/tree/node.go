// Package tree implements the component tree manager: it materializes
// descriptors into native presentation nodes, maintains the sparse logical
// tree that names selected descendants, and drives the mount/unmount and
// connectivity event protocol across subtrees.
//
// The package assumes a single logical thread of control; every operation
// runs to completion before returning and no internal locking is performed.
package tree

import (
	"github.com/go-arbor/arbor/pkg/compose"
	"github.com/go-arbor/arbor/pkg/descriptor"
	"github.com/go-arbor/arbor/pkg/errors"
)

// Lifecycle and connectivity event names. Mount/unmount track the direct
// logical link; the connect/disconnect pairs track reachability from the
// document root, which may lag mounting for subtrees built off-tree.
const (
	EventPreMount       = "preMount"
	EventMount          = "mount"
	EventUnmount        = "unmount"
	EventWillConnect    = "willConnect"
	EventDidConnect     = "didConnect"
	EventWillDisconnect = "willDisconnect"
	EventDidDisconnect  = "didDisconnect"
	EventDestroy        = "destroy"
)

// childEntry is one mounted child of a logical node: always a native node,
// optionally its logical wrapper.
type childEntry struct {
	name   string // resolved name, "" for unnamed children
	node   *Node
	native NativeNode
}

// value returns the wrapper when present, the bare native node otherwise.
func (e *childEntry) value() any {
	if e.node != nil {
		return e.node
	}
	return e.native
}

// Node is the logical wrapper optionally coupled 1:1 with a native node.
// It exists from creation to destruction; mounting and unmounting only
// change its links.
type Node struct {
	// El is the strong forward reference to the native node. It is set by
	// MakeNode and cleared exactly once by the destroy path.
	El NativeNode

	// Name is the child name relative to the nearest logical parent.
	Name string

	parent *Node

	named          map[string]*childEntry
	mountedNames   []string // insertion-ordered keys of named, incl. indexed entries
	mountedUnnamed []*childEntry
	arrayNext      map[string]int

	handlers  map[string][]compose.Fn
	disposers []any

	defaultChildCtor descriptor.Constructor

	root      bool
	trace     bool
	connected bool
	destroyed bool
}

// NewNode returns an unattached logical node with empty mounted lists.
func NewNode() *Node {
	return &Node{
		named:     make(map[string]*childEntry),
		arrayNext: make(map[string]int),
	}
}

// ContentValue marks *Node as child content for the reduction engine.
func (n *Node) ContentValue() {}

// Parent returns the logical parent; nil iff the node is not mounted.
func (n *Node) Parent() *Node { return n.parent }

// Mounted reports whether the node has a direct logical parent link.
func (n *Node) Mounted() bool { return n.parent != nil }

// Connected reports whether the node is currently reachable from the
// document root.
func (n *Node) Connected() bool { return n.connected }

// Destroyed reports whether the destroy path has processed this node.
func (n *Node) Destroyed() bool { return n.destroyed }

// Root reports whether this node is a naming and connectivity boundary.
func (n *Node) Root() bool { return n.root }

// Named returns the child mounted under the exact name, which may be an
// indexed array entry such as "items[0]". The result is the logical wrapper
// when one exists, the bare native node otherwise.
func (n *Node) Named(name string) (any, bool) {
	e, ok := n.named[name]
	if !ok {
		return nil, false
	}
	return e.value(), true
}

// Child returns the logical wrapper mounted under name, or nil.
func (n *Node) Child(name string) *Node {
	if e, ok := n.named[name]; ok {
		return e.node
	}
	return nil
}

// NamedAll returns the members of the array-valued slot base, in mount
// order.
func (n *Node) NamedAll(base string) []any {
	var out []any
	prefix := base + "["
	for _, name := range n.mountedNames {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			out = append(out, n.named[name].value())
		}
	}
	return out
}

// MountedNames returns the ordered list of named-child slots.
func (n *Node) MountedNames() []string {
	out := make([]string, len(n.mountedNames))
	copy(out, n.mountedNames)
	return out
}

// Unnamed returns the unnamed mounted children in mount order.
func (n *Node) Unnamed() []any {
	out := make([]any, len(n.mountedUnnamed))
	for i, e := range n.mountedUnnamed {
		out[i] = e.value()
	}
	return out
}

// On registers a lifecycle handler. Handlers registered under the same event
// run in registration order.
func (n *Node) On(event string, fn compose.Fn) {
	if fn == nil {
		return
	}
	if n.handlers == nil {
		n.handlers = make(map[string][]compose.Fn)
	}
	n.handlers[event] = append(n.handlers[event], fn)
}

// fire invokes the handlers for event with the node as first argument.
func (n *Node) fire(event string, args ...any) {
	if n.trace {
		errors.Tracef("tree."+event, "node %q", n.Name)
	}
	list := n.handlers[event]
	if len(list) == 0 {
		return
	}
	full := append([]any{n}, args...)
	for _, fn := range list {
		fn(full...)
	}
}

// AddDisposer registers a cleanup collaborator: anything with a Dispose or
// Destroy method, or a plain callable. Each runs exactly once on destroy.
func (n *Node) AddDisposer(d any) {
	if d == nil {
		return
	}
	n.disposers = append(n.disposers, d)
}

// addEntry links a resolved child entry into the mounted lists.
func (n *Node) addEntry(e *childEntry) {
	if e.name == "" {
		n.mountedUnnamed = append(n.mountedUnnamed, e)
		return
	}
	n.named[e.name] = e
	n.mountedNames = append(n.mountedNames, e.name)
}

// removeEntry is the inverse of addEntry.
func (n *Node) removeEntry(e *childEntry) {
	if e.name != "" {
		delete(n.named, e.name)
		for i, name := range n.mountedNames {
			if name == e.name {
				n.mountedNames = append(n.mountedNames[:i], n.mountedNames[i+1:]...)
				break
			}
		}
		return
	}
	for i, cur := range n.mountedUnnamed {
		if cur == e {
			n.mountedUnnamed = append(n.mountedUnnamed[:i], n.mountedUnnamed[i+1:]...)
			return
		}
	}
}

// entries returns all mounted children, named first in name order, then
// unnamed, matching mount order within each list.
func (n *Node) entries() []*childEntry {
	out := make([]*childEntry, 0, len(n.mountedNames)+len(n.mountedUnnamed))
	for _, name := range n.mountedNames {
		out = append(out, n.named[name])
	}
	out = append(out, n.mountedUnnamed...)
	return out
}

// findEntry locates a mounted child by name, wrapper or native node.
func (n *Node) findEntry(ref any) *childEntry {
	switch v := ref.(type) {
	case string:
		return n.named[v]
	case *Node:
		for _, e := range n.entries() {
			if e.node == v {
				return e
			}
		}
	case NativeNode:
		for _, e := range n.entries() {
			if e.native == v {
				return e
			}
		}
	}
	return nil
}

// visit walks the logical subtree rooted at n in depth-first pre-order.
func (n *Node) visit(fn func(*Node)) {
	fn(n)
	for _, e := range n.entries() {
		if e.node != nil {
			e.node.visit(fn)
		}
	}
}
