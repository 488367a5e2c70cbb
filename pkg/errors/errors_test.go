package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureHandler struct {
	panics []*PanicError
	traces []string
}

func (h *captureHandler) HandlePanic(err *PanicError) { h.panics = append(h.panics, err) }
func (h *captureHandler) HandleTrace(op, msg string)  { h.traces = append(h.traces, op+": "+msg) }

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindParse, KindOf(&ParseError{Input: "$"}))
	assert.Equal(t, KindType, KindOf(&TypeError{Op: "descriptor.Reduce", Value: 42}))
	assert.Equal(t, KindStructural, KindOf(&StructuralError{Op: "tree.Mount", Detail: "nope"}))
	assert.Equal(t, KindUnknown, KindOf(assert.AnError))
}

func TestParseError_MessageNamesOffendingText(t *testing.T) {
	err := &ParseError{Input: "a:$div ???", Text: "???"}
	assert.Contains(t, err.Error(), `"???"`)
	assert.Contains(t, err.Error(), `"a:$div ???"`)
}

func TestRecover_ReportsToHandler(t *testing.T) {
	h := &captureHandler{}
	SetHandler(h)
	defer SetHandler(nil)

	func() {
		defer Recover("test.op")
		panic("boom")
	}()

	require.Len(t, h.panics, 1)
	assert.Equal(t, "test.op", h.panics[0].Op)
	assert.Equal(t, "boom", h.panics[0].Value)
	assert.NotEmpty(t, h.panics[0].StackTrace)
	assert.False(t, h.panics[0].Timestamp.IsZero())
}

func TestTracef_RoutesThroughHandler(t *testing.T) {
	h := &captureHandler{}
	SetHandler(h)
	defer SetHandler(nil)

	Tracef("tree.Mount", "child %q under %q", "item", "list")

	require.Len(t, h.traces, 1)
	assert.Contains(t, h.traces[0], `child "item" under "list"`)
}
