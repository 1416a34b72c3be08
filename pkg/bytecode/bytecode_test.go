package bytecode

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWriteKeepsLinesParallel(t *testing.T) {
	c := NewChunk()
	c.Write(byte(OpConstant), 1)
	c.Write(0, 1)
	c.Write(byte(OpReturn), 2)

	require.Equal(t, len(c.Code), len(c.Lines))
	assert.Equal(t, []int{1, 1, 2}, c.Lines)
}

func TestChunkAddConstant(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 10; i++ {
		idx := c.AddConstant(NumberValue(float64(i)))
		require.Equal(t, i, idx)
	}
	require.Len(t, c.Constants, 10)
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "CONSTANT", OpConstant.String())
	assert.Equal(t, "JUMP_IF_FALSE", OpJumpIfFalse.String())
	assert.Equal(t, "STRUCT_ARG", OpStructArg.String())
	assert.Equal(t, "RETURN", OpReturn.String())
	assert.Equal(t, "UNKNOWN", Opcode(255).String())
}

func TestDisassembleSimpleChunk(t *testing.T) {
	c := NewChunk()
	idx := c.AddConstant(NumberValue(7))
	c.Write(byte(OpConstant), 1)
	c.Write(byte(idx), 1)
	c.Write(byte(OpPrint), 1)
	c.Write(byte(OpNil), 1)
	c.Write(byte(OpReturn), 1)

	var buf bytes.Buffer
	Disassemble(&buf, c, "test")

	out := buf.String()
	assert.Contains(t, out, "== test ==")
	assert.Contains(t, out, "CONSTANT")
	assert.Contains(t, out, "'7'")
	assert.Contains(t, out, "PRINT")
	assert.Contains(t, out, "RETURN")
}

func TestDisassembleJumpTargets(t *testing.T) {
	c := NewChunk()
	// JUMP over one byte of padding
	c.Write(byte(OpJump), 1)
	c.Write(0, 1)
	c.Write(1, 1)
	c.Write(byte(OpNil), 1)
	c.Write(byte(OpReturn), 1)

	var buf bytes.Buffer
	offset := DisassembleInstruction(&buf, c, 0)

	require.Equal(t, 3, offset)
	assert.Contains(t, buf.String(), "-> 4")
}
