package tree

import (
	"fmt"

	"github.com/go-arbor/arbor/pkg/compose"
	"github.com/go-arbor/arbor/pkg/errors"
)

// DestroyChild unmounts the referenced child, then recursively destroys it:
// every descendant is unmounted and destroyed exactly once, disposal
// collaborators run, the side-table entries are removed and the wrappers'
// native references cleared.
func DestroyChild(parent *Node, ref any) error {
	const op = "tree.DestroyChild"
	if parent == nil {
		return &errors.StructuralError{Op: op, Detail: "nil parent"}
	}
	entry := parent.findEntry(ref)
	if entry == nil {
		return &errors.StructuralError{Op: op, Detail: "no matching mounted child", Name: nameOf(ref)}
	}
	if _, err := unmountEntry(parent, entry, op); err != nil {
		return err
	}
	return destroyEntry(entry)
}

// DestroyChildren destroys every mounted child of parent, named and unnamed,
// leaving both lists empty.
func DestroyChildren(parent *Node) error {
	const op = "tree.DestroyChildren"
	if parent == nil {
		return &errors.StructuralError{Op: op, Detail: "nil parent"}
	}
	for _, e := range parent.entries() {
		if _, err := unmountEntry(parent, e, op); err != nil {
			return err
		}
		if err := destroyEntry(e); err != nil {
			return err
		}
	}
	return nil
}

// Destroy tears down an unmounted node and its subtree. A mounted node is
// unmounted from its parent first. Double destroy is a guarded no-op.
func Destroy(n *Node) error {
	if n == nil || n.destroyed {
		return nil
	}
	if n.parent != nil {
		if _, err := Unmount(n.parent, n); err != nil {
			return err
		}
	}
	return destroyNode(n)
}

func destroyEntry(e *childEntry) error {
	if e.node != nil {
		return destroyNode(e.node)
	}
	// A bare native child has no logical state to tear down; the native
	// tree was already detached by the unmount.
	return nil
}

func destroyNode(n *Node) error {
	if n.destroyed {
		return nil
	}
	n.destroyed = true
	if n.trace {
		errors.Tracef("tree.Destroy", "node %q", n.Name)
	}

	for _, e := range n.entries() {
		if _, err := unmountEntry(n, e, "tree.Destroy"); err != nil {
			return err
		}
		if err := destroyEntry(e); err != nil {
			return err
		}
	}
	// Continuing past a repopulated child list would leak or double-free
	// nodes, so treat it as a programming error.
	if len(n.mountedNames) != 0 || len(n.mountedUnnamed) != 0 {
		panic(fmt.Sprintf("tree.Destroy: node %q has children after recursive destroy", n.Name))
	}

	n.fire(EventDestroy)
	runDisposers(n)
	unlink(n.El)
	n.El = nil
	return nil
}

// runDisposers invokes each registered disposal collaborator exactly once.
func runDisposers(n *Node) {
	ds := n.disposers
	n.disposers = nil
	for _, d := range ds {
		invokeDisposer(n, d)
	}
}

func invokeDisposer(n *Node, d any) {
	defer errors.Recover("tree.Destroy.disposer")
	switch v := d.(type) {
	case interface{ Dispose() }:
		v.Dispose()
	case interface{ Destroy() }:
		v.Destroy()
	case func():
		v()
	case compose.Fn:
		v(n)
	case func(args ...any) any:
		v(n)
	}
}
