package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-arbor/arbor/pkg/descriptor"
	"github.com/go-arbor/arbor/pkg/errors"
)

// Params marks a slice of construction parameters: mounted as content, it is
// reduced and constructed rather than treated as a list of children.
type Params []any

// Mount normalizes content into a child, appends its native node under the
// parent's native node, links it into the logical tree and fires the
// lifecycle protocol (preMount, connectivity pre/post when the insertion
// makes the child root-reachable, then mount).
//
// Content may be a string (literal text or markup, per the host policy), a
// NativeNode, a *Node, a reduced *descriptor.Descriptor, Params, or a []any
// of any of these. Mounting a []any is best-effort: a failing element leaves
// the earlier ones mounted and the returned error names the failing index.
//
// The returned value is the mounted child's wrapper when one exists, the
// bare native node otherwise, or the slice of results for a []any.
func Mount(parent *Node, name string, content any) (any, error) {
	return mountWith(parent, name, content, nil, nil)
}

// MountBefore mounts content with the native insertion point placed before
// ref instead of at the end of the parent.
func MountBefore(parent *Node, name string, content any, ref NativeNode) (any, error) {
	return mountWith(parent, name, content, ref, nil)
}

// MountInto mounts content under an explicit alternate native ancestor while
// the logical link still attaches to parent. The container must already sit
// inside the parent's subtree for connectivity to track correctly.
func MountInto(parent *Node, name string, content any, container NativeNode) (any, error) {
	return mountWith(parent, name, content, nil, container)
}

func mountWith(parent *Node, name string, content any, before, container NativeNode) (any, error) {
	if list, ok := content.([]any); ok {
		// Multiple children under one name become an array-valued slot.
		if name != "" && !strings.HasSuffix(name, "]") {
			name += "[]"
		}
		results := make([]any, 0, len(list))
		for i, el := range list {
			v, err := mountOne(parent, name, el, before, container)
			if err != nil {
				return results, fmt.Errorf("mount element %d: %w", i, err)
			}
			results = append(results, v)
		}
		return results, nil
	}
	return mountOne(parent, name, content, before, container)
}

func mountOne(parent *Node, name string, content any, before, container NativeNode) (any, error) {
	const op = "tree.Mount"
	if parent == nil {
		return nil, &errors.StructuralError{Op: op, Detail: "nil parent"}
	}
	if parent.destroyed {
		return nil, &errors.StructuralError{Op: op, Detail: "parent already destroyed"}
	}
	target := container
	if target == nil {
		target = parent.El
	}
	if target == nil {
		return nil, &errors.StructuralError{Op: op, Detail: "parent has no native node"}
	}

	native, wrapper, err := materialize(parent, content)
	if err != nil {
		return nil, err
	}

	// Name precedence: explicit argument, then the child's declared name.
	resolved := name
	if resolved == "" && wrapper != nil {
		resolved = wrapper.Name
	}
	slot, err := resolveSlot(parent, resolved, op, wrapper)
	if err != nil {
		return nil, err
	}

	// Remount semantics: a child mounted elsewhere moves.
	if wrapper != nil && wrapper.parent != nil {
		if _, err := Unmount(wrapper.parent, wrapper); err != nil {
			return nil, err
		}
	}

	entry := &childEntry{name: slot, node: wrapper, native: native}

	if wrapper != nil {
		wrapper.fire(EventPreMount)
	}

	var targets []*Node
	if wrapper != nil && isReachable(target) {
		targets = connectivityTargets(wrapper, true)
		for _, t := range targets {
			t.fire(EventWillConnect)
		}
	}

	if before != nil {
		target.InsertBefore(native, before)
	} else {
		target.AppendChild(native)
	}

	parent.addEntry(entry)
	if wrapper != nil {
		wrapper.parent = parent
		if slot != "" {
			wrapper.Name = slot
		}
		for _, t := range targets {
			t.connected = true
			t.fire(EventDidConnect)
		}
		wrapper.fire(EventMount)
	}
	if parent.trace {
		errors.Tracef(op, "child %q under %q", slot, parent.Name)
	}
	return entry.value(), nil
}

// materialize normalizes one content value into (native, optional wrapper).
// Normalization is idempotent: already-materialized nodes pass through and
// their wrapper, if any, is recovered from the side table.
func materialize(parent *Node, content any) (NativeNode, *Node, error) {
	const op = "tree.Mount"
	switch v := content.(type) {
	case string:
		h, err := currentHost(op)
		if err != nil {
			return nil, nil, err
		}
		if h.IsMarkup != nil && h.IsMarkup(v) {
			if h.ParseMarkup == nil {
				return nil, nil, &errors.StructuralError{Op: op, Detail: "host classifies string as markup but cannot parse it"}
			}
			native, err := h.ParseMarkup(v)
			if err != nil {
				return nil, nil, err
			}
			return native, LogicalOf(native), nil
		}
		if h.CreateText == nil {
			return nil, nil, &errors.StructuralError{Op: op, Detail: "host cannot create text nodes"}
		}
		return h.CreateText(v), nil, nil

	case *Node:
		if v.destroyed {
			return nil, nil, &errors.StructuralError{Op: op, Detail: "child already destroyed"}
		}
		if v.El == nil {
			return nil, nil, &errors.StructuralError{Op: op, Detail: "child wrapper has no native node"}
		}
		return v.El, v, nil

	case NativeNode:
		return v, LogicalOf(v), nil

	case *descriptor.Descriptor:
		return materializeConstructed(parent, v)

	case Params:
		d, err := descriptor.Reduce(v...)
		if err != nil {
			return nil, nil, err
		}
		return materializeConstructed(parent, d)

	case []any:
		// A nested array inside content is a construction-parameter list.
		d, err := descriptor.Reduce(v...)
		if err != nil {
			return nil, nil, err
		}
		return materializeConstructed(parent, d)
	}
	return nil, nil, &errors.TypeError{Op: op, Value: content}
}

func materializeConstructed(parent *Node, d *descriptor.Descriptor) (NativeNode, *Node, error) {
	var inherited descriptor.Constructor
	if parent != nil {
		inherited = parent.defaultChildCtor
	}
	built, err := construct(d, inherited)
	if err != nil {
		return nil, nil, err
	}
	switch b := built.(type) {
	case *Node:
		if b.El == nil {
			return nil, nil, &errors.StructuralError{Op: "tree.Construct", Detail: "constructor returned a wrapper without a native node"}
		}
		return b.El, b, nil
	case NativeNode:
		return b, LogicalOf(b), nil
	}
	return nil, nil, &errors.TypeError{Op: "tree.Construct", Value: built}
}

// resolveSlot applies the naming rule: plain names must be unused, an array
// marker (base[] or base[idx]) stores the child in an array-valued slot with
// auto-incrementing indices, and reuse of an occupied index or plain name is
// a structural error. A slot held by the incoming child itself counts as
// free, so remounting under the same name is a move, not a collision.
func resolveSlot(parent *Node, name, op string, incoming *Node) (string, error) {
	if name == "" {
		return "", nil
	}
	heldByIncoming := func(e *childEntry) bool {
		return incoming != nil && e.node == incoming
	}
	base, idx, isArray, explicit, ok := splitArrayName(name)
	if !ok {
		return "", &errors.StructuralError{Op: op, Name: name, Detail: "malformed child name"}
	}
	if !isArray {
		if e, used := parent.named[name]; used && !heldByIncoming(e) {
			return "", &errors.StructuralError{Op: op, Name: name, Detail: "name already names a different child"}
		}
		if parent.hasArraySlot(name) {
			return "", &errors.StructuralError{Op: op, Name: name, Detail: "name is already an array-valued slot"}
		}
		return name, nil
	}
	if _, used := parent.named[base]; used {
		return "", &errors.StructuralError{Op: op, Name: base, Detail: "name already names a non-array child"}
	}
	if explicit {
		full := base + "[" + strconv.Itoa(idx) + "]"
		if e, used := parent.named[full]; used && !heldByIncoming(e) {
			return "", &errors.StructuralError{Op: op, Name: full, Detail: "array index already occupied"}
		}
		if idx >= parent.arrayNext[base] {
			parent.arrayNext[base] = idx + 1
		}
		return full, nil
	}
	i := parent.arrayNext[base]
	for {
		full := base + "[" + strconv.Itoa(i) + "]"
		if _, used := parent.named[full]; !used {
			parent.arrayNext[base] = i + 1
			return full, nil
		}
		i++
	}
}

// hasArraySlot reports whether any indexed entry exists for base.
func (n *Node) hasArraySlot(base string) bool {
	prefix := base + "["
	for _, name := range n.mountedNames {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// splitArrayName splits "base", "base[]" and "base[idx]" forms.
func splitArrayName(name string) (base string, idx int, isArray, explicit, ok bool) {
	i := strings.IndexByte(name, '[')
	if i < 0 {
		return name, 0, false, false, true
	}
	if i == 0 || !strings.HasSuffix(name, "]") {
		return "", 0, false, false, false
	}
	base = name[:i]
	body := name[i+1 : len(name)-1]
	if body == "" {
		return base, 0, true, false, true
	}
	n, err := strconv.Atoi(body)
	if err != nil || n < 0 {
		return "", 0, false, false, false
	}
	return base, n, true, true, true
}

// Unmount removes the physical and logical links of a mounted child without
// destroying it. The child may be given by name, wrapper or native node.
// Unmounting a child with no matching mount is a structural error.
func Unmount(parent *Node, ref any) (any, error) {
	const op = "tree.Unmount"
	if parent == nil {
		return nil, &errors.StructuralError{Op: op, Detail: "nil parent"}
	}
	entry := parent.findEntry(ref)
	if entry == nil {
		return nil, &errors.StructuralError{Op: op, Detail: "no matching mounted child", Name: nameOf(ref)}
	}
	return unmountEntry(parent, entry, op)
}

func unmountEntry(parent *Node, e *childEntry, op string) (any, error) {
	wrapper := e.node

	var targets []*Node
	if wrapper != nil && wrapper.connected {
		targets = connectivityTargets(wrapper, false)
		for _, t := range targets {
			t.fire(EventWillDisconnect)
		}
	}

	if e.native != nil {
		if p := e.native.Parent(); p != nil {
			p.RemoveChild(e.native)
		}
	}

	for _, t := range targets {
		t.connected = false
		t.fire(EventDidDisconnect)
	}

	parent.removeEntry(e)
	if wrapper != nil {
		wrapper.parent = nil
		wrapper.fire(EventUnmount)
	}
	if parent.trace {
		errors.Tracef(op, "child %q from %q", e.name, parent.Name)
	}
	return e.value(), nil
}

// Replace unmounts the anchor child and mounts content in its place, under
// the anchor's slot name and physical position. The anchor must be a mounted
// descendant of parent.
func Replace(parent *Node, old any, content any) (any, error) {
	const op = "tree.Replace"
	if parent == nil {
		return nil, &errors.StructuralError{Op: op, Detail: "nil parent"}
	}
	entry := parent.findEntry(old)
	if entry == nil {
		return nil, &errors.StructuralError{Op: op, Detail: "anchor is not a mounted descendant", Name: nameOf(old)}
	}
	name := entry.name
	var ref NativeNode
	var container NativeNode
	if entry.native != nil {
		ref = entry.native.NextSibling()
		container = entry.native.Parent()
	}
	if _, err := unmountEntry(parent, entry, op); err != nil {
		return nil, err
	}
	return mountOne(parent, name, content, ref, container)
}

func nameOf(ref any) string {
	if s, ok := ref.(string); ok {
		return s
	}
	if n, ok := ref.(*Node); ok {
		return n.Name
	}
	return ""
}
