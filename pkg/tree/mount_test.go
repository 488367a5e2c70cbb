package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arbor/arbor/pkg/descriptor"
	"github.com/go-arbor/arbor/pkg/errors"
	"github.com/go-arbor/arbor/pkg/memdom"
	"github.com/go-arbor/arbor/pkg/tree"
)

// newRoot binds the in-memory host and constructs a rooted body node.
func newRoot(t *testing.T) *tree.Node {
	t.Helper()
	tree.Reset()
	t.Cleanup(tree.Reset)
	tree.BindHost(memdom.Host())

	built, err := tree.Construct(map[string]any{"tagName": "body", "root": true})
	require.NoError(t, err)
	root, ok := built.(*tree.Node)
	require.True(t, ok)
	return root
}

func native(t *testing.T, n *tree.Node) *memdom.Element {
	t.Helper()
	e, ok := n.El.(*memdom.Element)
	require.True(t, ok)
	return e
}

func TestMount_TextChild(t *testing.T) {
	root := newRoot(t)

	got, err := tree.Mount(root, "", "hello")
	require.NoError(t, err)

	text, ok := got.(*memdom.Element)
	require.True(t, ok)
	assert.True(t, text.IsText())
	assert.Equal(t, "hello", text.Text())
	assert.Len(t, root.Unnamed(), 1)
	assert.Empty(t, root.MountedNames())
}

func TestMount_MarkupChild(t *testing.T) {
	root := newRoot(t)

	got, err := tree.Mount(root, "", "<span>hi</span>")
	require.NoError(t, err)
	el := got.(*memdom.Element)
	assert.Equal(t, "span", el.TagName())
	assert.Equal(t, "<body><span>hi</span></body>", native(t, root).Render())
}

func TestMount_ConstructionParams(t *testing.T) {
	root := newRoot(t)

	got, err := tree.Mount(root, "save", tree.Params{"$button.primary", map[string]any{"value": "Go"}})
	require.NoError(t, err)

	child, ok := got.(*tree.Node)
	require.True(t, ok)
	assert.Equal(t, "save", child.Name)
	assert.Same(t, root, child.Parent())
	assert.True(t, child.Mounted())

	el := native(t, child)
	assert.Equal(t, "button", el.TagName())
	cls, _ := el.Attribute("class")
	assert.Equal(t, "primary", cls)
	val, _ := el.Attribute("value")
	assert.Equal(t, "Go", val)
}

func TestMount_NamePrecedence(t *testing.T) {
	root := newRoot(t)

	// Explicit argument wins over the declared name.
	got, err := tree.Mount(root, "explicit", tree.Params{"declared:$div"})
	require.NoError(t, err)
	assert.Equal(t, "explicit", got.(*tree.Node).Name)
	assert.NotNil(t, root.Child("explicit"))
	assert.Nil(t, root.Child("declared"))

	// Declared name used when no argument given.
	got, err = tree.Mount(root, "", tree.Params{"declared:$div"})
	require.NoError(t, err)
	assert.Equal(t, "declared", got.(*tree.Node).Name)
	assert.NotNil(t, root.Child("declared"))
}

func TestMount_PlainNameCollision(t *testing.T) {
	root := newRoot(t)

	_, err := tree.Mount(root, "title", tree.Params{"$h1"})
	require.NoError(t, err)

	_, err = tree.Mount(root, "title", tree.Params{"$h2"})
	require.Error(t, err)
	assert.Equal(t, errors.KindStructural, errors.KindOf(err))
}

func TestMount_ArraySlots(t *testing.T) {
	root := newRoot(t)

	got, err := tree.Mount(root, "items", []any{
		tree.Params{"$li one"},
		tree.Params{"$li two"},
	})
	require.NoError(t, err)
	require.Len(t, got.([]any), 2)

	assert.Len(t, root.NamedAll("items"), 2)
	assert.Equal(t, []string{"items[0]", "items[1]"}, root.MountedNames())

	// Auto-increment continues past existing entries.
	_, err = tree.Mount(root, "items[]", tree.Params{"$li three"})
	require.NoError(t, err)
	assert.Len(t, root.NamedAll("items"), 3)
	assert.Equal(t, "items[2]", root.MountedNames()[2])
}

func TestMount_ExplicitIndexCollision(t *testing.T) {
	root := newRoot(t)

	_, err := tree.Mount(root, "items[3]", tree.Params{"$li"})
	require.NoError(t, err)

	_, err = tree.Mount(root, "items[3]", tree.Params{"$li"})
	require.Error(t, err)
	assert.Equal(t, errors.KindStructural, errors.KindOf(err))

	// Auto index resumes after the highest explicit one.
	got, err := tree.Mount(root, "items[]", tree.Params{"$li"})
	require.NoError(t, err)
	assert.Equal(t, "items[4]", got.(*tree.Node).Name)
}

func TestMount_PlainVsArrayConflict(t *testing.T) {
	root := newRoot(t)

	_, err := tree.Mount(root, "tab", tree.Params{"$div"})
	require.NoError(t, err)
	_, err = tree.Mount(root, "tab[]", tree.Params{"$div"})
	require.Error(t, err)

	_, err = tree.Mount(root, "pane[]", tree.Params{"$div"})
	require.NoError(t, err)
	_, err = tree.Mount(root, "pane", tree.Params{"$div"})
	require.Error(t, err)
}

func TestMount_ArrayMountIsBestEffort(t *testing.T) {
	root := newRoot(t)

	got, err := tree.Mount(root, "rows", []any{
		tree.Params{"$tr"},
		42, // unclassifiable
		tree.Params{"$tr"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element 1")

	// The earlier sibling stays mounted.
	assert.Len(t, got, 1)
	assert.Len(t, root.NamedAll("rows"), 1)
}

func TestMountBefore_Position(t *testing.T) {
	root := newRoot(t)

	_, err := tree.Mount(root, "", tree.Params{"$a"})
	require.NoError(t, err)
	last, err := tree.Mount(root, "", tree.Params{"$c"})
	require.NoError(t, err)

	_, err = tree.MountBefore(root, "", tree.Params{"$b"}, last.(*tree.Node).El)
	require.NoError(t, err)
	assert.Equal(t, "<body><a/><b/><c/></body>", native(t, root).Render())
}

func TestMountInto_AlternateNativeAncestor(t *testing.T) {
	root := newRoot(t)

	inner, err := tree.Mount(root, "inner", tree.Params{"$section"})
	require.NoError(t, err)

	// Logical link on root, physical placement inside the section.
	child, err := tree.MountInto(root, "deep", tree.Params{"$em"}, inner.(*tree.Node).El)
	require.NoError(t, err)

	assert.Same(t, root, child.(*tree.Node).Parent())
	assert.NotNil(t, root.Child("deep"))
	assert.Equal(t, "<body><section><em/></section></body>", native(t, root).Render())
}

func TestMount_RemountMovesChild(t *testing.T) {
	root := newRoot(t)

	a, err := tree.Mount(root, "a", tree.Params{"$div"})
	require.NoError(t, err)
	b, err := tree.Mount(root, "b", tree.Params{"$div"})
	require.NoError(t, err)

	// Mounting a's child under b moves it.
	child, err := tree.Mount(a.(*tree.Node), "x", tree.Params{"$span"})
	require.NoError(t, err)
	_, err = tree.Mount(b.(*tree.Node), "x", child.(*tree.Node))
	require.NoError(t, err)

	assert.Nil(t, a.(*tree.Node).Child("x"))
	assert.Same(t, child.(*tree.Node), b.(*tree.Node).Child("x"))
}

func TestMount_RemountUnderOwnNameMoves(t *testing.T) {
	root := newRoot(t)

	got, err := tree.Mount(root, "panel", tree.Params{"$div"})
	require.NoError(t, err)
	child := got.(*tree.Node)
	_, err = tree.Mount(root, "footer", tree.Params{"$div"})
	require.NoError(t, err)

	// Remounting the child under its own occupied name is a move to the
	// end, not a collision with itself.
	back, err := tree.Mount(root, "panel", child)
	require.NoError(t, err)
	assert.Same(t, child, back)
	assert.Same(t, root, child.Parent())
	assert.Same(t, child, root.Child("panel"))
	assert.Equal(t, []string{"footer", "panel"}, root.MountedNames())
	assert.Equal(t, "<body><div/><div/></body>", native(t, root).Render())

	// A different child under that name still collides.
	_, err = tree.Mount(root, "panel", tree.Params{"$div"})
	require.Error(t, err)
	assert.Equal(t, errors.KindStructural, errors.KindOf(err))
}

func TestMount_RemountUnderOwnArrayIndexMoves(t *testing.T) {
	root := newRoot(t)

	got, err := tree.Mount(root, "items[0]", tree.Params{"$li"})
	require.NoError(t, err)
	child := got.(*tree.Node)

	back, err := tree.Mount(root, "items[0]", child)
	require.NoError(t, err)
	assert.Same(t, child, back)
	assert.Equal(t, []string{"items[0]"}, root.MountedNames())

	_, err = tree.Mount(root, "items[0]", tree.Params{"$li"})
	require.Error(t, err)
}

func TestUnmount_RemovesBothLinks(t *testing.T) {
	root := newRoot(t)

	got, err := tree.Mount(root, "panel", tree.Params{"$div"})
	require.NoError(t, err)
	child := got.(*tree.Node)

	back, err := tree.Unmount(root, "panel")
	require.NoError(t, err)
	assert.Same(t, child, back)
	assert.Nil(t, child.Parent())
	assert.False(t, child.Mounted())
	assert.Nil(t, root.Child("panel"))
	assert.Equal(t, "<body/>", native(t, root).Render())

	// The wrapper still exists and can be mounted again.
	_, err = tree.Mount(root, "", child)
	require.NoError(t, err)
	assert.NotNil(t, root.Child("panel"))
}

func TestUnmount_NoMatchingChild(t *testing.T) {
	root := newRoot(t)

	_, err := tree.Unmount(root, "ghost")
	require.Error(t, err)
	assert.Equal(t, errors.KindStructural, errors.KindOf(err))
}

func TestReplace_KeepsSlotAndPosition(t *testing.T) {
	root := newRoot(t)

	_, err := tree.Mount(root, "", tree.Params{"$a"})
	require.NoError(t, err)
	old, err := tree.Mount(root, "mid", tree.Params{"$b"})
	require.NoError(t, err)
	_, err = tree.Mount(root, "", tree.Params{"$c"})
	require.NoError(t, err)

	repl, err := tree.Replace(root, old.(*tree.Node), tree.Params{"$strong"})
	require.NoError(t, err)

	assert.Equal(t, "mid", repl.(*tree.Node).Name)
	assert.Same(t, repl.(*tree.Node), root.Child("mid"))
	assert.Equal(t, "<body><a/><strong/><c/></body>", native(t, root).Render())
	assert.False(t, old.(*tree.Node).Mounted())
}

func TestReplace_AnchorNotADescendant(t *testing.T) {
	root := newRoot(t)
	stranger := tree.NewNode()

	_, err := tree.Replace(root, stranger, tree.Params{"$div"})
	require.Error(t, err)
	assert.Equal(t, errors.KindStructural, errors.KindOf(err))
}

func TestMount_NoHostBound(t *testing.T) {
	tree.Reset()
	t.Cleanup(tree.Reset)

	_, err := tree.Construct(map[string]any{"tagName": "div"})
	require.Error(t, err)
	assert.Equal(t, errors.KindStructural, errors.KindOf(err))
}

func TestConstruct_ConstructorPriority(t *testing.T) {
	newRoot(t)

	var calls []string
	mk := func(label string) descriptor.Constructor {
		return func(d *descriptor.Descriptor) (any, error) {
			calls = append(calls, label)
			return tree.Generic(d)
		}
	}

	// Explicit override beats the process-wide default.
	tree.SetDefaultConstructor(mk("process"))
	_, err := tree.Construct("$div", map[string]any{"ctor": mk("override")})
	require.NoError(t, err)
	assert.Equal(t, []string{"override"}, calls)

	// Descriptor default beats the process-wide default.
	calls = nil
	_, err = tree.Construct("$div", map[string]any{"defaultCtor": mk("default")})
	require.NoError(t, err)
	assert.Equal(t, []string{"default"}, calls)

	// Process-wide default is the fallback.
	calls = nil
	_, err = tree.Construct("$div")
	require.NoError(t, err)
	assert.Equal(t, []string{"process"}, calls)
}

func TestConstruct_InheritedDefaultChildCtor(t *testing.T) {
	newRoot(t)

	var labels []string
	childCtor := descriptor.Constructor(func(d *descriptor.Descriptor) (any, error) {
		labels = append(labels, d.TagName)
		return tree.Generic(d)
	})

	parent, err := tree.Construct("$ul", map[string]any{"defaultChildCtor": childCtor})
	require.NoError(t, err)

	_, err = tree.Mount(parent.(*tree.Node), "", tree.Params{"$li"})
	require.NoError(t, err)
	assert.Equal(t, []string{"li"}, labels)
}
