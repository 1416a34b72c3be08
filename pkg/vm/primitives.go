// Package vm - host-provided native functions.
//
// Natives are ordinary globals holding Native objects. They run
// synchronously on the VM's thread and are expected to be quick; an
// error returned by a native surfaces as a normal runtime error in the
// calling script.
package vm

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/kristofer/golox/pkg/bytecode"
)

// registerNatives installs the standard native set at VM startup.
func (vm *VM) registerNatives() {
	vm.DefineNative("clock", vm.nativeClock)
	vm.DefineNative("len", vm.nativeLen)
	vm.DefineNative("str", vm.nativeStr)
	vm.DefineNative("sqrt", vm.nativeSqrt)
	vm.DefineNative("readfile", vm.nativeReadFile)
}

// nativeClock returns seconds elapsed since the VM started.
func (vm *VM) nativeClock(args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 0 {
		return bytecode.Value{}, fmt.Errorf("Expected 0 arguments but got %d.", len(args))
	}
	return bytecode.NumberValue(time.Since(vm.start).Seconds()), nil
}

// nativeLen returns the length of a string, array, or map.
func (vm *VM) nativeLen(args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 1 {
		return bytecode.Value{}, fmt.Errorf("Expected 1 arguments but got %d.", len(args))
	}
	if args[0].IsObj() {
		switch obj := args[0].AsObj().(type) {
		case *bytecode.String:
			return bytecode.NumberValue(float64(len(obj.Chars))), nil
		case *bytecode.Array:
			return bytecode.NumberValue(float64(len(obj.Elements))), nil
		case *bytecode.Map:
			return bytecode.NumberValue(float64(len(obj.Entries))), nil
		}
	}
	return bytecode.Value{}, fmt.Errorf("len() expects a string, array, or map.")
}

// nativeStr formats any value the way PRINT would and returns it as a
// string.
func (vm *VM) nativeStr(args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 1 {
		return bytecode.Value{}, fmt.Errorf("Expected 1 arguments but got %d.", len(args))
	}
	return bytecode.ObjValue(vm.pool.Intern(args[0].String())), nil
}

// nativeSqrt returns the square root of a number.
func (vm *VM) nativeSqrt(args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 1 {
		return bytecode.Value{}, fmt.Errorf("Expected 1 arguments but got %d.", len(args))
	}
	if !args[0].IsNumber() {
		return bytecode.Value{}, fmt.Errorf("sqrt() expects a number.")
	}
	return bytecode.NumberValue(math.Sqrt(args[0].AsNumber())), nil
}

// nativeReadFile reads a whole file as a UTF-8 string.
func (vm *VM) nativeReadFile(args []bytecode.Value) (bytecode.Value, error) {
	if len(args) != 1 {
		return bytecode.Value{}, fmt.Errorf("Expected 1 arguments but got %d.", len(args))
	}
	if !args[0].IsString() {
		return bytecode.Value{}, fmt.Errorf("readfile() expects a path string.")
	}
	data, err := os.ReadFile(args[0].AsString().Chars)
	if err != nil {
		return bytecode.Value{}, fmt.Errorf("Could not read file '%s'.", args[0].AsString().Chars)
	}
	return bytecode.ObjValue(vm.pool.Intern(string(data))), nil
}
