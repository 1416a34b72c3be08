package vm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackTraceWalksFramesInnermostFirst(t *testing.T) {
	src := `fun a() { b(); }
fun b() { c(); }
fun c() { print missing; }
a();`

	errOut := expectRuntimeError(t, src, "Undefined variable 'missing'.")

	expected := []string{
		"[line 3] in c()",
		"[line 2] in b()",
		"[line 1] in a()",
		"[line 4] in script",
	}
	pos := -1
	for _, line := range expected {
		idx := strings.Index(errOut, line)
		require.NotEqual(t, -1, idx, "missing trace line %q in %q", line, errOut)
		assert.Greater(t, idx, pos, "trace line %q out of order", line)
		pos = idx
	}
}

func TestStackTraceForScriptOnlyError(t *testing.T) {
	errOut := expectRuntimeError(t, "\n\nprint missing;", "Undefined variable 'missing'.")
	assert.Contains(t, errOut, "[line 3] in script")
	assert.NotContains(t, errOut, "()")
}

func TestRuntimeErrorFormatting(t *testing.T) {
	err := &RuntimeError{
		Message: "Operand must be a number.",
		Trace: []TraceFrame{
			{Line: 5, Function: "inner"},
			{Line: 9},
		},
	}
	assert.Equal(t,
		"Operand must be a number.\n[line 5] in inner()\n[line 9] in script",
		err.Error())
}

func TestNativeErrorCarriesTrace(t *testing.T) {
	errOut := expectRuntimeError(t, "fun f() { return sqrt(\"x\"); } f();", "sqrt() expects a number.")
	assert.Contains(t, errOut, "in f()")
	assert.Contains(t, errOut, "in script")
}
