package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/kristofer/golox/pkg/vm"
)

func main() {
	switch len(os.Args) {
	case 1:
		runREPL()
	case 2:
		runFile(os.Args[1])
	default:
		fmt.Fprintln(os.Stderr, "Usage: golox [path]")
		os.Exit(64)
	}
}

// runFile reads a source file and interprets it, mapping the outcome to
// the interpreter's exit codes: 65 for compile errors, 70 for runtime
// errors.
func runFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read file %q: %v\n", path, err)
		os.Exit(74)
	}

	v := vm.New()
	switch v.Interpret(string(data)) {
	case vm.InterpretCompileError:
		os.Exit(65)
	case vm.InterpretRuntimeError:
		os.Exit(70)
	}
}

// runREPL starts an interactive Read-Eval-Print Loop.
//
// The REPL keeps one persistent VM, so globals defined in one line
// remain available in the next. Interpreter errors are printed but
// never exit the loop; the line "q" does.
func runREPL() {
	v := vm.New()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "q" {
			fmt.Println()
			break
		}
		v.Interpret(line)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
}
