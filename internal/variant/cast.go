package variant

import (
	"math"

	"golang.org/x/exp/constraints"
)

// ErrCode is the small error-code family raised by this package, folded
// by the linter into LintError and by the interpreter into
// RuntimeError — mirroring original_source/rusty_variant's VariantError
// and rusty_linter/src/error.rs's `impl From<VariantError> for
// LintError`.
type ErrCode int

const (
	ErrTypeMismatch ErrCode = iota
	ErrOverflow
	ErrDivisionByZero
)

func (e ErrCode) Error() string {
	switch e {
	case ErrTypeMismatch:
		return "type mismatch"
	case ErrOverflow:
		return "overflow"
	case ErrDivisionByZero:
		return "division by zero"
	}
	return "variant error"
}

// inRange reports whether v (any signed integer kind) falls within
// [lo, hi] using a 64-bit comparison, the one spot where a generic
// helper over constraints.Integer pays for itself: the same range
// check backs both the Integer<->Long cast and the post-arithmetic
// FIT law below.
func inRange[T constraints.Integer](v T, lo, hi int64) bool {
	i := int64(v)
	return i >= lo && i <= hi
}

const (
	minInteger = math.MinInt16
	maxInteger = math.MaxInt16
	minLong    = math.MinInt32
	maxLong    = math.MaxInt32
)

// Widen returns the wider of two numeric kinds per the total order
// Integer < Long < Single < Double (spec.md §4.A).
func Widen(a, b Kind) Kind {
	if a > b {
		return a
	}
	return b
}

// FitInt64 is the integer leg of the FIT law: classify i into the
// smallest kind — Integer, then Long, then Double — that represents it
// exactly. Grounded on original_source/src/variant/fit.rs's
// `FitToType for i64`.
func FitInt64(i int64) Value {
	if inRange(i, minInteger, maxInteger) {
		return Integer(i)
	}
	if inRange(i, minLong, maxLong) {
		return Long(i)
	}
	return Double(float64(i))
}

// fitEpsilon is the original implementation's tolerance for treating a
// floating point result as "integral"; followed verbatim per the
// ambiguous-in-spec / defer-to-original_source rule (Design Notes,
// Open Questions).
const fitEpsilon = 0.0001

// FitFloat32 is the Single leg of the FIT law: a Single with a non-zero
// fractional part keeps its kind; otherwise it collapses to the
// smallest exact integer kind. Grounded on fit.rs's `FitToType for f32`.
func FitFloat32(f float32) Value {
	r := float32(math.Round(float64(f)))
	if math.Abs(float64(f-r)) > fitEpsilon {
		return Single(f)
	}
	return FitInt64(int64(r))
}

// FitFloat64 is the Double leg of the FIT law (fit.rs's f64 impl).
func FitFloat64(f float64) Value {
	r := math.Round(f)
	if math.Abs(f-r) > fitEpsilon {
		return Double(f)
	}
	return FitInt64(int64(r))
}

// fitDown re-normalizes an arithmetic result to the smallest kind that
// represents it exactly: a Single/Double result re-applies the FIT law
// (so a whole-valued float becomes Integer or Long); an Integer/Long
// result is already minimal.
func fitDown(v Value) Value {
	switch t := v.(type) {
	case Single:
		return FitFloat32(float32(t))
	case Double:
		return FitFloat64(float64(t))
	default:
		return v
	}
}

func asFloat64(v Value) float64 {
	switch t := v.(type) {
	case Integer:
		return float64(t)
	case Long:
		return float64(t)
	case Single:
		return float64(t)
	case Double:
		return float64(t)
	}
	return 0
}

func asInt64(v Value) int64 {
	switch t := v.(type) {
	case Integer:
		return int64(t)
	case Long:
		return int64(t)
	case Single:
		return int64(math.RoundToEven(float64(t)))
	case Double:
		return int64(math.RoundToEven(float64(t)))
	}
	return 0
}

// Cast implements spec.md §4.A's explicit casting-rules table: used for
// assignment coercion and by-value argument binding. Returns
// ErrTypeMismatch for string<->numeric and any array/record conversion,
// ErrOverflow when a numeric value doesn't fit the narrower target kind.
func Cast(v Value, target Kind) (Value, error) {
	if v.Kind() == target {
		return v, nil
	}
	switch target {
	case KindInteger, KindLong:
		switch v.Kind() {
		case KindInteger, KindLong:
			i := asInt64(v)
			return castIntToRange(i, target)
		case KindSingle, KindDouble:
			// float -> integer/long: round-half-to-even then range-check.
			i := asInt64(v)
			return castIntToRange(i, target)
		default:
			return nil, ErrTypeMismatch
		}
	case KindSingle, KindDouble:
		switch v.Kind() {
		case KindInteger, KindLong, KindSingle, KindDouble:
			f := asFloat64(v)
			if target == KindSingle {
				return Single(f), nil
			}
			return Double(f), nil
		default:
			return nil, ErrTypeMismatch
		}
	case KindString:
		if v.Kind() == KindString {
			return v, nil
		}
		return nil, ErrTypeMismatch
	default:
		return nil, ErrTypeMismatch
	}
}

func castIntToRange(i int64, target Kind) (Value, error) {
	switch target {
	case KindInteger:
		if !inRange(i, minInteger, maxInteger) {
			return nil, ErrOverflow
		}
		return Integer(i), nil
	case KindLong:
		if !inRange(i, minLong, maxLong) {
			return nil, ErrOverflow
		}
		return Long(i), nil
	}
	return nil, ErrTypeMismatch
}

// CanCast reports whether Cast(v, target) would succeed, without
// constructing the result — used by the linter's type checks, which
// need a yes/no answer at lint time (the value itself may not be a
// compile-time constant).
func CanCast(from, target Kind) bool {
	numeric := func(k Kind) bool {
		return k == KindInteger || k == KindLong || k == KindSingle || k == KindDouble
	}
	if from == target {
		return true
	}
	if numeric(from) && numeric(target) {
		return true
	}
	return false
}

// Add, Sub, Mul implement the promote-compute-fit arithmetic contract:
// promote both operands to Widen(a.Kind(), b.Kind()), compute, then fit
// the result back down to the smallest exact kind.
func Add(a, b Value) (Value, error) { return arith(a, b, func(x, y float64) float64 { return x + y }) }
func Sub(a, b Value) (Value, error) { return arith(a, b, func(x, y float64) float64 { return x - y }) }
func Mul(a, b Value) (Value, error) { return arith(a, b, func(x, y float64) float64 { return x * y }) }

func arith(a, b Value, op func(x, y float64) float64) (Value, error) {
	if err := requireNumeric(a, b); err != nil {
		return nil, err
	}
	result := op(asFloat64(a), asFloat64(b))
	wide := Widen(a.Kind(), b.Kind())
	switch {
	case wide == KindSingle || wide == KindDouble:
		if wide == KindSingle {
			return fitDown(Single(result)), nil
		}
		return fitDown(Double(result)), nil
	default:
		return fitDown(FitInt64(int64(result))), nil
	}
}

// Div implements "/" — division always yields a floating type.
func Div(a, b Value) (Value, error) {
	if err := requireNumeric(a, b); err != nil {
		return nil, err
	}
	if asFloat64(b) == 0 {
		return nil, ErrDivisionByZero
	}
	result := asFloat64(a) / asFloat64(b)
	wide := Widen(a.Kind(), b.Kind())
	if wide == KindInteger || wide == KindLong {
		wide = KindSingle
	}
	if wide == KindSingle {
		return Single(result), nil
	}
	return Double(result), nil
}

// IDiv implements "\" — integer division, truncating toward zero.
func IDiv(a, b Value) (Value, error) {
	if err := requireNumeric(a, b); err != nil {
		return nil, err
	}
	bi := asInt64(b)
	if bi == 0 {
		return nil, ErrDivisionByZero
	}
	ai := asInt64(a)
	return fitDown(FitInt64(ai / bi)), nil
}

// Mod implements MOD — result follows the sign of the dividend.
func Mod(a, b Value) (Value, error) {
	if err := requireNumeric(a, b); err != nil {
		return nil, err
	}
	bi := asInt64(b)
	if bi == 0 {
		return nil, ErrDivisionByZero
	}
	ai := asInt64(a)
	r := ai % bi
	return fitDown(FitInt64(r)), nil
}

// And, Or, Xor, Eqv, Imp implement QBasic's bitwise logical operators:
// operands are truncated to Long, combined bitwise, then fit back down
// via the FIT law. Booleans are just Integer(-1)/Integer(0), so using
// these on comparison results ("a < b AND c > d") is the common case.
func And(a, b Value) (Value, error) { return bitwise(a, b, func(x, y int64) int64 { return x & y }) }
func Or(a, b Value) (Value, error)  { return bitwise(a, b, func(x, y int64) int64 { return x | y }) }
func Xor(a, b Value) (Value, error) { return bitwise(a, b, func(x, y int64) int64 { return x ^ y }) }
func Eqv(a, b Value) (Value, error) {
	return bitwise(a, b, func(x, y int64) int64 { return ^(x ^ y) })
}
func Imp(a, b Value) (Value, error) {
	return bitwise(a, b, func(x, y int64) int64 { return ^x | y })
}

func bitwise(a, b Value, op func(x, y int64) int64) (Value, error) {
	if err := requireNumeric(a, b); err != nil {
		return nil, err
	}
	return fitDown(FitInt64(op(asInt64(a), asInt64(b)))), nil
}

// Neg implements unary minus.
func Neg(a Value) (Value, error) {
	switch t := a.(type) {
	case Integer:
		return fitDown(FitInt64(-int64(t))), nil
	case Long:
		return fitDown(FitInt64(-int64(t))), nil
	case Single:
		return Single(-t), nil
	case Double:
		return Double(-t), nil
	}
	return nil, ErrTypeMismatch
}

// Compare implements the six relational operators, returning -1 (true)
// or 0 (false) as an Integer per spec.md §4.A.
func Compare(op string, a, b Value) (Value, error) {
	var lt, eq bool
	if a.Kind() == KindString && b.Kind() == KindString {
		as, bs := a.(Str).S, b.(Str).S
		lt, eq = as < bs, as == bs
	} else {
		if err := requireNumeric(a, b); err != nil {
			return nil, err
		}
		af, bf := asFloat64(a), asFloat64(b)
		lt, eq = af < bf, af == bf
	}
	var result bool
	switch op {
	case "<":
		result = lt
	case "<=":
		result = lt || eq
	case ">":
		result = !lt && !eq
	case ">=":
		result = !lt || eq
	case "=":
		result = eq
	case "<>":
		result = !eq
	}
	if result {
		return Integer(-1), nil
	}
	return Integer(0), nil
}

func requireNumeric(a, b Value) error {
	numeric := func(v Value) bool {
		switch v.Kind() {
		case KindInteger, KindLong, KindSingle, KindDouble:
			return true
		}
		return false
	}
	if !numeric(a) || !numeric(b) {
		return ErrTypeMismatch
	}
	return nil
}
