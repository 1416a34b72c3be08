package vm

import "io"

// Option customizes a VM at construction time.
type Option func(vm *VM)

// WithOutput redirects PRINT output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) { vm.out = w }
}

// WithErrorOutput redirects compile and runtime diagnostics, which
// default to stderr.
func WithErrorOutput(w io.Writer) Option {
	return func(vm *VM) { vm.errw = w }
}
