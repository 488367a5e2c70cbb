// Package memdom provides an in-memory implementation of tree.NativeNode.
// It backs the package tests and the inspection CLI, and doubles as the
// reference implementation of the host binding: element/text creation plus
// a minimal markup-vs-text policy for bare string children.
package memdom

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-arbor/arbor/pkg/compose"
	"github.com/go-arbor/arbor/pkg/errors"
	"github.com/go-arbor/arbor/pkg/tree"
)

// DefaultTag is used when an element is created with an empty tag.
const DefaultTag = "div"

// Element is an in-memory native presentation node.
type Element struct {
	tag      string
	text     string
	isText   bool
	parent   *Element
	children []*Element
	attrs    map[string]any
	styles   map[string]any
	handlers map[string]compose.Fn
}

// NewElement returns a detached element node.
func NewElement(tag string) *Element {
	if tag == "" {
		tag = DefaultTag
	}
	return &Element{
		tag:      tag,
		attrs:    make(map[string]any),
		styles:   make(map[string]any),
		handlers: make(map[string]compose.Fn),
	}
}

// NewText returns a detached text node.
func NewText(text string) *Element {
	e := NewElement("#text")
	e.isText = true
	e.text = text
	return e
}

// ContentValue marks *Element as child content for the reduction engine.
func (e *Element) ContentValue() {}

func (e *Element) TagName() string { return e.tag }

// IsText reports whether this is a text node.
func (e *Element) IsText() bool { return e.isText }

// Text returns the literal text of a text node.
func (e *Element) Text() string { return e.text }

func (e *Element) Parent() tree.NativeNode {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *Element) NextSibling() tree.NativeNode {
	if e.parent == nil {
		return nil
	}
	sibs := e.parent.children
	for i, c := range sibs {
		if c == e && i+1 < len(sibs) {
			return sibs[i+1]
		}
	}
	return nil
}

// Children returns the child list in document order.
func (e *Element) Children() []*Element {
	out := make([]*Element, len(e.children))
	copy(out, e.children)
	return out
}

func (e *Element) AppendChild(child tree.NativeNode) {
	c := mustElement(child)
	c.detach()
	c.parent = e
	e.children = append(e.children, c)
}

func (e *Element) InsertBefore(child, ref tree.NativeNode) {
	c := mustElement(child)
	c.detach()
	c.parent = e
	if ref != nil {
		r := mustElement(ref)
		for i, cur := range e.children {
			if cur == r {
				e.children = append(e.children[:i+1], e.children[i:]...)
				e.children[i] = c
				return
			}
		}
	}
	e.children = append(e.children, c)
}

func (e *Element) RemoveChild(child tree.NativeNode) {
	c := mustElement(child)
	for i, cur := range e.children {
		if cur == c {
			e.children = append(e.children[:i], e.children[i+1:]...)
			c.parent = nil
			return
		}
	}
}

func (e *Element) detach() {
	if e.parent != nil {
		e.parent.RemoveChild(e)
	}
}

func (e *Element) SetAttribute(name string, value any) { e.attrs[name] = value }

// Attribute returns a previously set attribute.
func (e *Element) Attribute(name string) (any, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *Element) SetStyle(name string, value any) { e.styles[name] = value }

// Style returns a previously set style.
func (e *Element) Style(name string) (any, bool) {
	v, ok := e.styles[name]
	return v, ok
}

func (e *Element) SetHandler(name string, fn compose.Fn) {
	if fn == nil {
		delete(e.handlers, name)
		return
	}
	e.handlers[name] = fn
}

// Invoke dispatches a named event handler, returning its result. A missing
// handler returns nil.
func (e *Element) Invoke(name string, args ...any) any {
	if fn, ok := e.handlers[name]; ok {
		return fn(args...)
	}
	return nil
}

// Render serializes the subtree for debugging and golden assertions.
// Attributes and styles print sorted for determinism.
func (e *Element) Render() string {
	var sb strings.Builder
	e.render(&sb)
	return sb.String()
}

func (e *Element) render(sb *strings.Builder) {
	if e.isText {
		sb.WriteString(e.text)
		return
	}
	sb.WriteString("<")
	sb.WriteString(e.tag)
	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, " %s=%q", k, fmt.Sprint(e.attrs[k]))
	}
	if len(e.styles) > 0 {
		keys = keys[:0]
		for k := range e.styles {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var pairs []string
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s:%v", k, e.styles[k]))
		}
		fmt.Fprintf(sb, " style=%q", strings.Join(pairs, ";"))
	}
	if len(e.children) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteString(">")
	for _, c := range e.children {
		c.render(sb)
	}
	sb.WriteString("</")
	sb.WriteString(e.tag)
	sb.WriteString(">")
}

func mustElement(n tree.NativeNode) *Element {
	e, ok := n.(*Element)
	if !ok {
		panic(fmt.Sprintf("memdom: foreign native node %T in memdom tree", n))
	}
	return e
}

var markupRe = regexp.MustCompile(`^\s*<([A-Za-z][\w-]*)\s*(?:/>|>(.*)</([A-Za-z][\w-]*)>)\s*$`)

// IsMarkup classifies a bare string child as structured markup when it looks
// like a single tagged element.
func IsMarkup(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "<")
}

// ParseMarkup parses single-element markup: <tag/> or <tag>text</tag>.
func ParseMarkup(s string) (tree.NativeNode, error) {
	m := markupRe.FindStringSubmatch(s)
	if m == nil {
		return nil, &errors.ParseError{Input: s, Text: strings.TrimSpace(s)}
	}
	if m[3] != "" && m[3] != m[1] {
		return nil, &errors.ParseError{Input: s, Text: "</" + m[3] + ">"}
	}
	e := NewElement(m[1])
	if m[2] != "" {
		e.AppendChild(NewText(m[2]))
	}
	return e, nil
}

// Host returns a tree.Host backed by this package.
func Host() tree.Host {
	return tree.Host{
		CreateElement: func(tag string) tree.NativeNode { return NewElement(tag) },
		CreateText:    func(text string) tree.NativeNode { return NewText(text) },
		IsMarkup:      IsMarkup,
		ParseMarkup:   ParseMarkup,
	}
}
