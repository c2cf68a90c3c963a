// Package variant implements the runtime value model: the tagged union
// of scalar kinds, arrays, and user-defined records that every other
// pipeline stage (linter, instruction generator, interpreter) builds on.
//
// Grounded on the teacher's vm.Value = interface{} pattern
// (sentra internal/vm/value.go), generalized from an untyped interface
// to a closed set of concrete types distinguished by a Kind() method,
// the way cue-lang/cue's internal/core/adt values or a small Value
// sum type would be expressed in idiomatic Go.
package variant

import "fmt"

// Kind is the closed set of type qualifiers from spec.md §3. Ordered so
// that widening comparisons (Integer < Long < Single < Double) can use
// plain integer comparison.
type Kind int

const (
	KindInteger Kind = iota
	KindLong
	KindSingle
	KindDouble
	KindString
	KindArray
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "INTEGER"
	case KindLong:
		return "LONG"
	case KindSingle:
		return "SINGLE"
	case KindDouble:
		return "DOUBLE"
	case KindString:
		return "STRING"
	case KindArray:
		return "ARRAY"
	case KindRecord:
		return "RECORD"
	default:
		return "?"
	}
}

// Suffix is the compact type-qualifier character, or 0 for extended-only
// kinds (arrays and records have no compact suffix).
func (k Kind) Suffix() byte {
	switch k {
	case KindInteger:
		return '%'
	case KindLong:
		return '&'
	case KindSingle:
		return '!'
	case KindDouble:
		return '#'
	case KindString:
		return '$'
	default:
		return 0
	}
}

// KindForSuffix maps a compact qualifier character to its Kind. ok is
// false for characters that aren't qualifiers.
func KindForSuffix(c byte) (Kind, bool) {
	switch c {
	case '%':
		return KindInteger, true
	case '&':
		return KindLong, true
	case '!':
		return KindSingle, true
	case '#':
		return KindDouble, true
	case '$':
		return KindString, true
	}
	return 0, false
}

// Value is the runtime tagged-union type (QBasic's Variant).
type Value interface {
	Kind() Kind
	String() string
}

type Integer int16

func (Integer) Kind() Kind        { return KindInteger }
func (v Integer) String() string  { return fmt.Sprintf("%d", int16(v)) }

type Long int32

func (Long) Kind() Kind       { return KindLong }
func (v Long) String() string { return fmt.Sprintf("%d", int32(v)) }

type Single float32

func (Single) Kind() Kind       { return KindSingle }
func (v Single) String() string { return formatFloat(float64(v), 32) }

type Double float64

func (Double) Kind() Kind       { return KindDouble }
func (v Double) String() string { return formatFloat(float64(v), 64) }

// Str is a QBasic string value. Fixed marks a fixed-length string
// (declared with STRING * n); Len is its declared byte length in that
// case. The interpreter's variable and record-field stores keep a
// fixed-length slot fixed by passing the assigned string through
// NewFixedString, which truncates or pads it.
type Str struct {
	S     string
	Fixed bool
	Len   int
}

func (Str) Kind() Kind      { return KindString }
func (v Str) String() string { return v.S }

// NewString builds a dynamic-length string value.
func NewString(s string) Str { return Str{S: s} }

// NewFixedString builds a fixed-length string value, truncating or
// space-padding s to the declared length, and cutting at an embedded
// NUL (spec.md §3: "embedded NUL terminates the logical content").
func NewFixedString(s string, length int) Str {
	if idx := indexByte(s, 0); idx >= 0 {
		s = s[:idx]
	}
	if len(s) > length {
		s = s[:length]
	} else if len(s) < length {
		s = s + spaces(length-len(s))
	}
	return Str{S: s, Fixed: true, Len: length}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// Zero returns the default value for a scalar kind (spec.md §4.E:
// "If a function never assigns its name, the value is the type's
// default (0 or empty)").
func Zero(k Kind) Value {
	switch k {
	case KindInteger:
		return Integer(0)
	case KindLong:
		return Long(0)
	case KindSingle:
		return Single(0)
	case KindDouble:
		return Double(0)
	case KindString:
		return NewString("")
	default:
		return nil
	}
}

func formatFloat(f float64, bits int) string {
	// QBasic prints floats without a trailing ".0" when they are whole
	// and without unnecessary precision; %g is the idiomatic Go analogue.
	if bits == 32 {
		return trimFloat(fmt.Sprintf("%g", float32(f)))
	}
	return trimFloat(fmt.Sprintf("%g", f))
}

func trimFloat(s string) string { return s }
