package bytecode

import (
	"fmt"
	"sort"
	"strings"
)

// Obj is the interface implemented by every heap object variant.
// Objects have identity; two Values referencing the same Obj are equal.
type Obj interface {
	// String formats the object the way PRINT writes it.
	String() string
}

// String is an immutable UTF-8 string object.
//
// Strings are interned through a StringPool: two equal strings share one
// *String, so string equality reduces to pointer identity at runtime.
type String struct {
	Chars string
}

func (s *String) String() string {
	return s.Chars
}

// Function is a compiled function: its arity, its chunk of bytecode, and
// an optional name. The top-level script is a Function with no name.
// Functions are immutable after compilation.
type Function struct {
	Arity int
	Chunk *Chunk
	Name  *String
}

func (f *Function) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// NativeFn is the signature of a host-provided function. It receives the
// evaluated arguments and returns a result value. A returned error
// becomes a runtime error in the calling script.
type NativeFn func(args []Value) (Value, error)

// Native wraps a host callable registered as a global at VM startup.
type Native struct {
	Name string
	Fn   NativeFn
}

func (n *Native) String() string {
	return "<native fn>"
}

// Struct is a declared record type: a name and its field names in
// declaration order. Calling a struct like a function constructs an
// instance.
type Struct struct {
	Name   *String
	Fields []*String
}

func (s *Struct) String() string {
	return s.Name.Chars
}

// FieldIndex returns the position of the named field, or -1 if the
// struct has no such field.
func (s *Struct) FieldIndex(name *String) int {
	for i, f := range s.Fields {
		if f.Chars == name.Chars {
			return i
		}
	}
	return -1
}

// Instance is a runtime value of a struct type. Field values are stored
// positionally, in the struct's declaration order. Field slots are
// mutable.
type Instance struct {
	Struct *Struct
	Fields []Value
}

func (i *Instance) String() string {
	return fmt.Sprintf("%s instance", i.Struct.Name.Chars)
}

// Array is an ordered, 0-indexed sequence of values.
type Array struct {
	Elements []Value
}

func (a *Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range a.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Map is a mapping from string keys to values. Keys are interned
// strings, so lookup is pointer-keyed. Iteration order is not preserved;
// formatting sorts keys so output is stable.
type Map struct {
	Entries map[*String]Value
}

// NewMap creates an empty map object.
func NewMap() *Map {
	return &Map{Entries: make(map[*String]Value)}
}

func (m *Map) String() string {
	keys := make([]*String, 0, len(m.Entries))
	for k := range m.Entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Chars < keys[j].Chars })

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.Chars)
		b.WriteString(" -> ")
		b.WriteString(m.Entries[k].String())
	}
	b.WriteByte('}')
	return b.String()
}

// StringPool interns strings so that equal contents share one *String.
// The compiler interns every string constant it emits and the VM interns
// every string it builds at runtime, which makes string equality a
// pointer comparison and lets maps key on *String directly.
type StringPool struct {
	strings map[string]*String
}

// NewStringPool creates an empty intern table.
func NewStringPool() *StringPool {
	return &StringPool{strings: make(map[string]*String)}
}

// Intern returns the canonical *String for the given contents, creating
// it on first use.
func (p *StringPool) Intern(chars string) *String {
	if s, ok := p.strings[chars]; ok {
		return s
	}
	s := &String{Chars: chars}
	p.strings[chars] = s
	return s
}
