package bytecode

import (
	"fmt"
	"io"
)

// Disassemble writes a human-readable listing of the chunk to w.
//
// This is a debugging aid: it shows each instruction with its byte
// offset, source line, opcode name, and decoded operands. Jump
// instructions show their resolved target offset.
func Disassemble(w io.Writer, c *Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = DisassembleInstruction(w, c, offset)
	}
}

// DisassembleInstruction writes one instruction and returns the offset
// of the next one.
func DisassembleInstruction(w io.Writer, c *Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprintf(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := Opcode(c.Code[offset])
	switch op {
	case OpConstant, OpDefineGlobal, OpSetGlobal, OpGetGlobal,
		OpStruct, OpStructArg, OpSetProperty, OpGetProperty:
		return constantInstruction(w, c, op, offset)
	case OpGetLocal, OpSetLocal, OpCall, OpArray, OpMap:
		return byteInstruction(w, c, op, offset)
	case OpJump, OpJumpIfFalse:
		return jumpInstruction(w, c, op, 1, offset)
	case OpLoop:
		return jumpInstruction(w, c, op, -1, offset)
	default:
		return simpleInstruction(w, op, offset)
	}
}

func simpleInstruction(w io.Writer, op Opcode, offset int) int {
	fmt.Fprintf(w, "%s\n", op)
	return offset + 1
}

func constantInstruction(w io.Writer, c *Chunk, op Opcode, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, c.Constants[idx])
	return offset + 2
}

func byteInstruction(w io.Writer, c *Chunk, op Opcode, offset int) int {
	fmt.Fprintf(w, "%-16s %4d\n", op, c.Code[offset+1])
	return offset + 2
}

func jumpInstruction(w io.Writer, c *Chunk, op Opcode, sign int, offset int) int {
	jump := int(c.Code[offset+1])<<8 | int(c.Code[offset+2])
	fmt.Fprintf(w, "%-16s %4d -> %d\n", op, offset, offset+3+sign*jump)
	return offset + 3
}
