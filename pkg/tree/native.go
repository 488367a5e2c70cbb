package tree

import (
	"github.com/go-arbor/arbor/pkg/compose"
	"github.com/go-arbor/arbor/pkg/descriptor"
)

// NativeNode is the physical presentation node. The tree manager never
// creates these itself: a Host supplies creation and the implementation
// supplies structure. Implementations must be identity-comparable (pointer
// shaped) so they can key the native-to-logical side table.
//
// Native insertion APIs do not report root reachability; the host signals
// that separately through FireConnectivity.
type NativeNode interface {
	descriptor.ContentValue

	TagName() string
	Parent() NativeNode
	NextSibling() NativeNode

	AppendChild(child NativeNode)
	InsertBefore(child, ref NativeNode)
	RemoveChild(child NativeNode)

	SetAttribute(name string, value any)
	SetStyle(name string, value any)
	SetHandler(name string, fn compose.Fn)
}

// Host binds the tree manager to a concrete native tree implementation and
// carries the injected markup-vs-text policy for bare string children.
type Host struct {
	// CreateElement returns a new native node for the given tag. An empty
	// tag requests the host's default element.
	CreateElement func(tag string) NativeNode
	// CreateText returns a native node holding literal text.
	CreateText func(text string) NativeNode
	// IsMarkup decides whether a bare string child is structured markup
	// rather than literal text. Nil means never.
	IsMarkup func(s string) bool
	// ParseMarkup parses a markup string into a native node. Required
	// when IsMarkup can return true.
	ParseMarkup func(s string) (NativeNode, error)
}
