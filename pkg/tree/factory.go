package tree

import (
	"sort"

	"github.com/go-arbor/arbor/pkg/compose"
	"github.com/go-arbor/arbor/pkg/descriptor"
)

// MakeNode materializes a descriptor into a new native node: tag, id, class,
// icon, props, styles and composite event handlers. If wrapper is non-nil it
// is linked bidirectionally to the native node and its mounted lists are
// initialized empty; the descriptor's non-event callbacks become lifecycle
// handlers on the wrapper.
//
// Content is not flattened here; that happens at mount time.
func MakeNode(d *descriptor.Descriptor, wrapper *Node) (NativeNode, error) {
	h, err := currentHost("tree.MakeNode")
	if err != nil {
		return nil, err
	}

	native := h.CreateElement(d.TagName)
	if d.IDName != "" {
		native.SetAttribute("id", d.IDName)
	}
	if d.ClassName != "" {
		native.SetAttribute("class", d.ClassName)
	}
	if d.Icon != "" {
		native.SetAttribute("icon", d.Icon)
	}
	for _, k := range sortedKeys(d.Props) {
		switch fn := d.Props[k].(type) {
		case compose.Fn:
			native.SetHandler(k, fn)
		case func(args ...any) any:
			native.SetHandler(k, fn)
		default:
			native.SetAttribute(k, d.Props[k])
		}
	}
	for _, k := range sortedKeys(d.Styles) {
		native.SetStyle(k, d.Styles[k])
	}
	if d.Label != "" && h.CreateText != nil {
		native.AppendChild(h.CreateText(d.Label))
	}

	if wrapper != nil {
		if wrapper.named == nil {
			wrapper.named = make(map[string]*childEntry)
		}
		if wrapper.arrayNext == nil {
			wrapper.arrayNext = make(map[string]int)
		}
		wrapper.El = native
		wrapper.Name = d.Name
		wrapper.root = d.Root
		wrapper.trace = d.Trace
		wrapper.defaultChildCtor = d.DefaultChildCtor
		if err := link(native, wrapper); err != nil {
			return nil, err
		}
		for _, name := range sortedKeys(d.Callbacks) {
			for _, fn := range d.Callbacks[name] {
				wrapper.On(name, fn)
			}
		}
	}
	return native, nil
}

// Construct reduces params to a descriptor and instantiates it, picking the
// constructor in priority order: explicit override in the descriptor, the
// descriptor's own inherited default, then the process-wide fallback.
func Construct(params ...any) (any, error) {
	d, err := descriptor.Reduce(params...)
	if err != nil {
		return nil, err
	}
	return construct(d, nil)
}

// construct applies the constructor priority chain. inherited is the
// default-child constructor of the mounting context, if any.
func construct(d *descriptor.Descriptor, inherited descriptor.Constructor) (any, error) {
	ctor := d.Ctor
	if ctor == nil {
		ctor = d.DefaultCtor
	}
	if ctor == nil {
		ctor = inherited
	}
	if ctor == nil {
		ctor = defaultCtor
	}
	if ctor == nil {
		ctor = Generic
	}
	return ctor(d)
}

// Generic is the built-in fallback constructor: it wraps the descriptor in a
// plain logical node and mounts the descriptor's content under it.
func Generic(d *descriptor.Descriptor) (any, error) {
	n := NewNode()
	if _, err := MakeNode(d, n); err != nil {
		return nil, err
	}
	for _, c := range d.Content {
		if _, err := Mount(n, "", c); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
