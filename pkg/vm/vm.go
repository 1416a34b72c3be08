// Package vm implements the bytecode virtual machine for golox.
//
// The VM is a stack-based interpreter that executes compiled function
// objects. It is the final stage in the execution pipeline:
//
//	Source Code -> Lexer -> Compiler -> Function (Chunk) -> VM -> Execution
//
// Virtual Machine Architecture:
//
// The VM uses a stack-based architecture with the following components:
//
//  1. Operand Stack: holds intermediate values during computation; every
//     call's locals live in a window of this stack
//  2. Call Frames: one per active call, each holding the running
//     function, its instruction pointer, and its frame base — the stack
//     slot where the call's locals begin (slot 0 is the callee itself)
//  3. Globals: a name-keyed table shared by the whole program
//  4. Intern Table: canonical string objects, shared with the compiler
//
// Execution Model:
//
// The VM decodes one opcode byte at a time in a tight loop and
// dispatches on it. A pointer to the current frame is cached across
// iterations and refreshed whenever the frame stack grows (CALL) or
// shrinks (RETURN).
//
// Example Execution:
//
//	Source: print 1 + 2;   (slot 0 holds the script function)
//
//	  IP=0: CONSTANT 0   -> stack=[<script>,1]
//	  IP=2: CONSTANT 1   -> stack=[<script>,1,2]
//	  IP=4: ADD          -> stack=[<script>,3]
//	  IP=5: PRINT        -> writes "3\n", stack=[<script>]
//
// Error Handling:
//
// A runtime error prints its message and a stack trace across the
// active call frames, resets the operand and frame stacks, and aborts
// the current Interpret call. The VM itself remains usable, which is
// what keeps the REPL alive after an error.
package vm

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kristofer/golox/pkg/bytecode"
	"github.com/kristofer/golox/pkg/compiler"
)

const (
	// FramesMax bounds the call-frame stack; exceeding it is the
	// "Stack overflow." runtime error.
	FramesMax = 90

	// StackMax is the size of the operand stack in value slots.
	StackMax = 16384
)

// InterpretResult is the outcome of one Interpret call.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// CallFrame is the per-call record: the executing function, the
// instruction pointer into its chunk, and the frame base index into the
// shared operand stack.
type CallFrame struct {
	function *bytecode.Function
	ip       int
	base     int
}

// VM represents the virtual machine that executes compiled functions.
//
// The VM is reusable: Interpret may be called repeatedly on the same VM
// and globals persist across calls, which is what the REPL relies on.
type VM struct {
	stack      []bytecode.Value
	sp         int // stack pointer: index of the next free slot
	frames     []CallFrame
	frameCount int

	globals map[string]bytecode.Value
	pool    *bytecode.StringPool

	out   io.Writer
	errw  io.Writer
	start time.Time
}

// New creates a virtual machine with the standard natives registered.
func New(opts ...Option) *VM {
	vm := &VM{
		stack:   make([]bytecode.Value, StackMax),
		frames:  make([]CallFrame, FramesMax),
		globals: make(map[string]bytecode.Value),
		pool:    bytecode.NewStringPool(),
		out:     os.Stdout,
		errw:    os.Stderr,
		start:   time.Now(),
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.registerNatives()
	return vm
}

// Interpret compiles and runs one source string.
//
// Compile errors have already been reported to the error writer when
// this returns InterpretCompileError; the VM is never started. Runtime
// errors likewise report themselves before InterpretRuntimeError comes
// back, and leave the VM with empty stacks, ready for the next call.
func (vm *VM) Interpret(source string) InterpretResult {
	c := compiler.New(vm.pool, compiler.WithErrorOutput(vm.errw))
	fn, err := c.Compile(source)
	if err != nil {
		return InterpretCompileError
	}

	vm.push(bytecode.ObjValue(fn))
	vm.callFunction(fn, 0)

	return vm.run()
}

// run is the dispatch loop. frame caches the current call frame and is
// refreshed on every CALL and RETURN.
func (vm *VM) run() InterpretResult {
	frame := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := frame.function.Chunk.Code[frame.ip]
		frame.ip++
		return b
	}
	readShort := func() int {
		hi := frame.function.Chunk.Code[frame.ip]
		lo := frame.function.Chunk.Code[frame.ip+1]
		frame.ip += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() bytecode.Value {
		return frame.function.Chunk.Constants[readByte()]
	}
	readString := func() *bytecode.String {
		return readConstant().AsString()
	}

	for {
		switch bytecode.Opcode(readByte()) {
		case bytecode.OpConstant:
			vm.push(readConstant())

		case bytecode.OpNil:
			vm.push(bytecode.NilValue())

		case bytecode.OpTrue:
			vm.push(bytecode.BoolValue(true))

		case bytecode.OpFalse:
			vm.push(bytecode.BoolValue(false))

		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetLocal:
			slot := int(readByte())
			vm.push(vm.stack[frame.base+slot])

		case bytecode.OpSetLocal:
			slot := int(readByte())
			vm.stack[frame.base+slot] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := readString()
			value, ok := vm.globals[name.Chars]
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(value)

		case bytecode.OpDefineGlobal:
			name := readString()
			vm.globals[name.Chars] = vm.peek(0)
			vm.pop()

		case bytecode.OpSetGlobal:
			name := readString()
			if _, ok := vm.globals[name.Chars]; !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.globals[name.Chars] = vm.peek(0)

		case bytecode.OpGetProperty:
			name := readString()
			instance, ok := vm.peek(0).AsObj().(*bytecode.Instance)
			if !ok {
				return vm.runtimeError("Only instances have properties.")
			}
			idx := instance.Struct.FieldIndex(name)
			if idx == -1 {
				return vm.runtimeError("Undefined property '%s'.", name.Chars)
			}
			vm.pop()
			vm.push(instance.Fields[idx])

		case bytecode.OpSetProperty:
			name := readString()
			instance, ok := vm.peek(1).AsObj().(*bytecode.Instance)
			if !ok {
				return vm.runtimeError("Only instances have fields.")
			}
			idx := instance.Struct.FieldIndex(name)
			if idx == -1 {
				return vm.runtimeError("Undefined property '%s'.", name.Chars)
			}
			value := vm.pop()
			vm.pop() // the instance
			instance.Fields[idx] = value
			vm.push(value)

		case bytecode.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(bytecode.BoolValue(a.Equals(b)))

		case bytecode.OpGreater:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(bytecode.BoolValue(a > b))

		case bytecode.OpLess:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(bytecode.BoolValue(a < b))

		case bytecode.OpAdd:
			switch {
			case vm.peek(0).IsNumber() && vm.peek(1).IsNumber():
				b := vm.pop().AsNumber()
				a := vm.pop().AsNumber()
				vm.push(bytecode.NumberValue(a + b))
			case vm.peek(0).IsString() && vm.peek(1).IsString():
				b := vm.pop().AsString()
				a := vm.pop().AsString()
				vm.push(bytecode.ObjValue(vm.pool.Intern(a.Chars + b.Chars)))
			default:
				return vm.runtimeError("Operands must be two numbers or two strings.")
			}

		case bytecode.OpSubtract:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(bytecode.NumberValue(a - b))

		case bytecode.OpMultiply:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(bytecode.NumberValue(a * b))

		case bytecode.OpDivide:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			vm.push(bytecode.NumberValue(a / b))

		case bytecode.OpNot:
			vm.push(bytecode.BoolValue(vm.pop().IsFalsey()))

		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(bytecode.NumberValue(-vm.pop().AsNumber()))

		case bytecode.OpPrint:
			fmt.Fprintln(vm.out, vm.pop().String())

		case bytecode.OpJump:
			offset := readShort()
			frame.ip += offset

		case bytecode.OpJumpIfFalse:
			offset := readShort()
			if vm.peek(0).IsFalsey() {
				frame.ip += offset
			}

		case bytecode.OpLoop:
			offset := readShort()
			frame.ip -= offset

		case bytecode.OpCall:
			argCount := int(readByte())
			if result, ok := vm.callValue(vm.peek(argCount), argCount); !ok {
				return result
			}
			frame = &vm.frames[vm.frameCount-1]

		case bytecode.OpArray:
			count := int(readByte())
			elements := make([]bytecode.Value, count)
			for i := count - 1; i >= 0; i-- {
				elements[i] = vm.pop()
			}
			vm.push(bytecode.ObjValue(&bytecode.Array{Elements: elements}))

		case bytecode.OpMap:
			count := int(readByte())
			m := bytecode.NewMap()
			for i := 0; i < count/2; i++ {
				value := vm.pop()
				key := vm.pop()
				if !key.IsString() {
					return vm.runtimeError("Map key must be a string.")
				}
				m.Entries[key.AsString()] = value
			}
			vm.push(bytecode.ObjValue(m))

		case bytecode.OpIndex:
			key := vm.pop()
			container := vm.pop()
			if result, ok := vm.indexValue(container, key); ok {
				vm.push(result)
			} else {
				return InterpretRuntimeError
			}

		case bytecode.OpStruct:
			name := readString()
			st := &bytecode.Struct{Name: name}
			vm.globals[name.Chars] = bytecode.ObjValue(st)
			vm.push(bytecode.ObjValue(st))

		case bytecode.OpStructArg:
			name := readString()
			st := vm.peek(0).AsObj().(*bytecode.Struct)
			st.Fields = append(st.Fields, name)

		case bytecode.OpReturn:
			result := vm.pop()
			returning := frame
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop() // the script function in slot 0
				return InterpretOK
			}
			vm.sp = returning.base
			vm.push(result)
			frame = &vm.frames[vm.frameCount-1]
		}
	}
}

// callValue dispatches CALL on the callee type. On failure the runtime
// error has already been reported and the InterpretResult to return is
// the first value.
func (vm *VM) callValue(callee bytecode.Value, argCount int) (InterpretResult, bool) {
	if callee.IsObj() {
		switch obj := callee.AsObj().(type) {
		case *bytecode.Function:
			return vm.callFunction(obj, argCount)

		case *bytecode.Native:
			args := vm.stack[vm.sp-argCount : vm.sp]
			result, err := obj.Fn(args)
			if err != nil {
				return vm.runtimeError("%s", err.Error()), false
			}
			vm.sp -= argCount + 1
			vm.push(result)
			return InterpretOK, true

		case *bytecode.Struct:
			if argCount != len(obj.Fields) {
				return vm.runtimeError("Expected %d arguments but got %d.", len(obj.Fields), argCount), false
			}
			// arguments were pushed left to right, so popping fills
			// the field slots back to front
			fields := make([]bytecode.Value, argCount)
			for i := argCount - 1; i >= 0; i-- {
				fields[i] = vm.pop()
			}
			vm.pop() // the struct itself
			vm.push(bytecode.ObjValue(&bytecode.Instance{Struct: obj, Fields: fields}))
			return InterpretOK, true
		}
	}
	return vm.runtimeError("Can only call functions and classes."), false
}

// callFunction pushes a fresh call frame for fn. The frame base points
// at the callee, so slot 0 is fn itself and slots 1..argCount are the
// arguments already sitting on the stack.
func (vm *VM) callFunction(fn *bytecode.Function, argCount int) (InterpretResult, bool) {
	if argCount != fn.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", fn.Arity, argCount), false
	}
	if vm.frameCount == FramesMax {
		return vm.runtimeError("Stack overflow."), false
	}

	vm.frames[vm.frameCount] = CallFrame{
		function: fn,
		ip:       0,
		base:     vm.sp - argCount - 1,
	}
	vm.frameCount++
	return InterpretOK, true
}

// indexValue implements INDEX for maps, arrays, and strings.
func (vm *VM) indexValue(container, key bytecode.Value) (bytecode.Value, bool) {
	if !container.IsObj() {
		vm.runtimeError("Only arrays, maps, and strings can be indexed.")
		return bytecode.Value{}, false
	}

	switch obj := container.AsObj().(type) {
	case *bytecode.Map:
		if !key.IsString() {
			vm.runtimeError("Map key must be a string.")
			return bytecode.Value{}, false
		}
		value, ok := obj.Entries[key.AsString()]
		if !ok {
			vm.runtimeError("Undefined key '%s'.", key.AsString().Chars)
			return bytecode.Value{}, false
		}
		return value, true

	case *bytecode.Array:
		if !key.IsNumber() {
			vm.runtimeError("Array index must be a number.")
			return bytecode.Value{}, false
		}
		idx := int(key.AsNumber())
		if idx < 0 || idx >= len(obj.Elements) {
			vm.runtimeError("Array index out of range.")
			return bytecode.Value{}, false
		}
		return obj.Elements[idx], true

	case *bytecode.String:
		if !key.IsNumber() {
			vm.runtimeError("String index must be a number.")
			return bytecode.Value{}, false
		}
		idx := int(key.AsNumber())
		if idx < 0 || idx >= len(obj.Chars) {
			vm.runtimeError("String index out of range.")
			return bytecode.Value{}, false
		}
		return bytecode.ObjValue(vm.pool.Intern(obj.Chars[idx : idx+1])), true

	default:
		vm.runtimeError("Only arrays, maps, and strings can be indexed.")
		return bytecode.Value{}, false
	}
}

// --- stack primitives ---

func (vm *VM) push(v bytecode.Value) {
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() bytecode.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) bytecode.Value {
	return vm.stack[vm.sp-1-distance]
}

// resetStack empties the operand and frame stacks after a runtime error
// so the VM can be reused.
func (vm *VM) resetStack() {
	vm.sp = 0
	vm.frameCount = 0
}

// runtimeError reports a runtime error with a stack trace walking the
// active call frames from the innermost outward, then resets the VM.
// It always returns InterpretRuntimeError so dispatch arms can return
// its result directly.
func (vm *VM) runtimeError(format string, args ...interface{}) InterpretResult {
	rerr := &RuntimeError{Message: fmt.Sprintf(format, args...)}

	for i := vm.frameCount - 1; i >= 0; i-- {
		frame := vm.frames[i]
		fn := frame.function
		trace := TraceFrame{Line: fn.Chunk.Lines[frame.ip-1]}
		if fn.Name != nil {
			trace.Function = fn.Name.Chars
		}
		rerr.Trace = append(rerr.Trace, trace)
	}

	fmt.Fprintln(vm.errw, rerr.Error())
	vm.resetStack()
	return InterpretRuntimeError
}

// DefineNative registers a host function under the given global name.
func (vm *VM) DefineNative(name string, fn bytecode.NativeFn) {
	vm.globals[name] = bytecode.ObjValue(&bytecode.Native{Name: name, Fn: fn})
}

// GetGlobal returns the value of a global, primarily for tests and
// embedding hosts. The second result reports whether it was defined.
func (vm *VM) GetGlobal(name string) (bytecode.Value, bool) {
	v, ok := vm.globals[name]
	return v, ok
}
