package variant

import (
	"fmt"
	"strings"
)

// FieldType describes one field of a user-defined TYPE: a built-in
// kind, a fixed-length string (Kind==KindString && FixedLen>0), or a
// reference to another declared record type (Kind==KindRecord).
type FieldType struct {
	Name     string
	Kind     Kind
	FixedLen int    // > 0 for STRING * n fields
	TypeName string // set when Kind == KindRecord
}

// RecordType is the ordered field list collected by the pre-linter for
// one TYPE...END TYPE declaration. No cycles are permitted among
// record types (spec.md §3).
type RecordType struct {
	Name   string
	Fields []FieldType
}

func (rt *RecordType) FieldByName(name string) (FieldType, bool) {
	for _, f := range rt.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return FieldType{}, false
}

// ByteSize is the sum of the field byte sizes (spec.md §4.A).
func (rt *RecordType) ByteSize(resolve func(typeName string) *RecordType) int {
	total := 0
	for _, f := range rt.Fields {
		switch {
		case f.Kind == KindString && f.FixedLen > 0:
			total += f.FixedLen
		case f.Kind == KindRecord:
			if sub := resolve(f.TypeName); sub != nil {
				total += sub.ByteSize(resolve)
			}
		default:
			total += ScalarByteSize(f.Kind)
		}
	}
	return total
}

// Record is a runtime UserDefined value: an ordered map of field name
// to Variant, backed by its RecordType for field order and layout.
type Record struct {
	Type   *RecordType
	Values map[string]Value
}

func (*Record) Kind() Kind { return KindRecord }

func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteString(r.Type.Name)
	sb.WriteByte('{')
	for i, f := range r.Type.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%v", f.Name, r.Values[strings.ToUpper(f.Name)])
	}
	sb.WriteByte('}')
	return sb.String()
}

// Get/Set use case-insensitive field names, consistent with BASIC's
// case-insensitive identifiers.
func (r *Record) Get(field string) (Value, bool) {
	v, ok := r.Values[strings.ToUpper(field)]
	return v, ok
}

func (r *Record) Set(field string, v Value) {
	r.Values[strings.ToUpper(field)] = v
}

// NewZeroRecord builds a record populated with the zero value (or a
// nested zero record) for every field, per resolveType for nested
// record fields.
func NewZeroRecord(rt *RecordType, resolveType func(name string) *RecordType) *Record {
	r := &Record{Type: rt, Values: make(map[string]Value, len(rt.Fields))}
	for _, f := range rt.Fields {
		switch {
		case f.Kind == KindString && f.FixedLen > 0:
			r.Values[strings.ToUpper(f.Name)] = NewFixedString("", f.FixedLen)
		case f.Kind == KindRecord:
			sub := resolveType(f.TypeName)
			r.Values[strings.ToUpper(f.Name)] = NewZeroRecord(sub, resolveType)
		default:
			r.Values[strings.ToUpper(f.Name)] = Zero(f.Kind)
		}
	}
	return r
}

// ScalarByteSize implements the non-array, non-record leg of spec.md
// §4.A's byte_size table.
func ScalarByteSize(k Kind) int {
	switch k {
	case KindInteger:
		return 2
	case KindLong, KindSingle:
		return 4
	case KindDouble:
		return 8
	default:
		return 0
	}
}
