package bytecode

import "strconv"

// ValueType tags the variant held by a Value.
type ValueType int

const (
	ValNil ValueType = iota
	ValBool
	ValNumber
	ValObj
)

// Value is the tagged runtime value: nil, a boolean, an IEEE-754 number,
// or a reference to a heap object.
//
// Values are small and copied freely; only the Obj variant carries a
// reference. Identity therefore only exists for objects.
type Value struct {
	Type    ValueType
	boolean bool
	number  float64
	obj     Obj
}

// NilValue returns the nil value.
func NilValue() Value {
	return Value{Type: ValNil}
}

// BoolValue wraps a boolean.
func BoolValue(b bool) Value {
	return Value{Type: ValBool, boolean: b}
}

// NumberValue wraps a number.
func NumberValue(n float64) Value {
	return Value{Type: ValNumber, number: n}
}

// ObjValue wraps a heap object reference.
func ObjValue(o Obj) Value {
	return Value{Type: ValObj, obj: o}
}

// IsNil reports whether the value is nil.
func (v Value) IsNil() bool { return v.Type == ValNil }

// IsBool reports whether the value is a boolean.
func (v Value) IsBool() bool { return v.Type == ValBool }

// IsNumber reports whether the value is a number.
func (v Value) IsNumber() bool { return v.Type == ValNumber }

// IsObj reports whether the value references a heap object.
func (v Value) IsObj() bool { return v.Type == ValObj }

// IsString reports whether the value references a string object.
func (v Value) IsString() bool {
	_, ok := v.obj.(*String)
	return v.Type == ValObj && ok
}

// AsBool returns the boolean payload. Only valid when IsBool.
func (v Value) AsBool() bool { return v.boolean }

// AsNumber returns the numeric payload. Only valid when IsNumber.
func (v Value) AsNumber() float64 { return v.number }

// AsObj returns the object payload. Only valid when IsObj.
func (v Value) AsObj() Obj { return v.obj }

// AsString returns the string object payload, or nil if the value is
// not a string.
func (v Value) AsString() *String {
	s, _ := v.obj.(*String)
	return s
}

// IsFalsey reports truthiness: nil and false are falsey, every other
// value (including 0 and empty strings) is truthy.
func (v Value) IsFalsey() bool {
	return v.Type == ValNil || (v.Type == ValBool && !v.boolean)
}

// Equals implements value equality.
//
// Values of different variants are never equal. Numbers compare by
// IEEE-754 == (so NaN != NaN). Objects compare by identity, except
// strings, which compare by contents; after interning the two notions
// coincide.
func (v Value) Equals(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValNil:
		return true
	case ValBool:
		return v.boolean == other.boolean
	case ValNumber:
		return v.number == other.number
	case ValObj:
		if a, ok := v.obj.(*String); ok {
			if b, ok := other.obj.(*String); ok {
				return a.Chars == b.Chars
			}
			return false
		}
		return v.obj == other.obj
	}
	return false
}

// String formats the value the way PRINT writes it.
func (v Value) String() string {
	switch v.Type {
	case ValNil:
		return "nil"
	case ValBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case ValNumber:
		return strconv.FormatFloat(v.number, 'g', -1, 64)
	case ValObj:
		return v.obj.String()
	}
	return "unknown"
}
