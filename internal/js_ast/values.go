package js_ast

import (
	"math"
	"strconv"
	"strings"
)

type LiteralKind uint8

const (
	// The zero value means nothing is known about the value
	LiteralUnknown LiteralKind = iota
	LiteralUndefined
	LiteralNull
	LiteralBool
	LiteralNumber
	LiteralString
)

// A statically known primitive value. Objects, functions, symbols and big
// integers are never represented here.
type LiteralValue struct {
	String string
	Number float64
	Kind   LiteralKind
	Bool   bool
}

var UnknownValue = LiteralValue{}
var UndefinedValue = LiteralValue{Kind: LiteralUndefined}
var NullValue = LiteralValue{Kind: LiteralNull}

func BoolValue(value bool) LiteralValue {
	return LiteralValue{Kind: LiteralBool, Bool: value}
}

func NumberValue(value float64) LiteralValue {
	return LiteralValue{Kind: LiteralNumber, Number: value}
}

func StringValue(value string) LiteralValue {
	return LiteralValue{Kind: LiteralString, String: value}
}

func (v LiteralValue) IsUnknown() bool {
	return v.Kind == LiteralUnknown
}

func (v LiteralValue) IsNullOrUndefined() bool {
	return v.Kind == LiteralNull || v.Kind == LiteralUndefined
}

// Returns the result of "Boolean(v)". The second result is false if nothing
// is known about the value.
func (v LiteralValue) Truthy() (bool, bool) {
	switch v.Kind {
	case LiteralUndefined, LiteralNull:
		return false, true
	case LiteralBool:
		return v.Bool, true
	case LiteralNumber:
		return v.Number != 0 && !math.IsNaN(v.Number), true
	case LiteralString:
		return v.String != "", true
	}
	return false, false
}

func (v LiteralValue) Typeof() (string, bool) {
	switch v.Kind {
	case LiteralUndefined:
		return "undefined", true
	case LiteralNull:
		return "object", true
	case LiteralBool:
		return "boolean", true
	case LiteralNumber:
		return "number", true
	case LiteralString:
		return "string", true
	}
	return "", false
}

func (v LiteralValue) ToNumber() (float64, bool) {
	switch v.Kind {
	case LiteralUndefined:
		return math.NaN(), true
	case LiteralNull:
		return 0, true
	case LiteralBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case LiteralNumber:
		return v.Number, true
	case LiteralString:
		return stringToNumber(v.String), true
	}
	return 0, false
}

func (v LiteralValue) ToString() (string, bool) {
	switch v.Kind {
	case LiteralUndefined:
		return "undefined", true
	case LiteralNull:
		return "null", true
	case LiteralBool:
		if v.Bool {
			return "true", true
		}
		return "false", true
	case LiteralNumber:
		return NumberToString(v.Number), true
	case LiteralString:
		return v.String, true
	}
	return "", false
}

// This is used as a property key. Only primitives that have a stable string
// form can be used.
func (v LiteralValue) ToPropertyKey() (PathKey, bool) {
	if text, ok := v.ToString(); ok {
		return Key(text), true
	}
	return UnknownKey, false
}

// Matches "Number.prototype.toString()" with no radix
func NumberToString(value float64) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	case value == 0:
		return "0"
	}

	abs := math.Abs(value)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	// Go writes "1e-07" and "1e+21" where JavaScript writes "1e-7" and "1e+21"
	text := strconv.FormatFloat(value, 'e', -1, 64)
	if e := strings.IndexByte(text, 'e'); e != -1 {
		mantissa, exponent := text[:e], text[e+1:]
		sign := exponent[:1]
		digits := strings.TrimLeft(exponent[1:], "0")
		if digits == "" {
			digits = "0"
		}
		text = mantissa + "e" + sign + digits
	}
	return text
}

func stringToNumber(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if len(text) > 2 && text[0] == '0' {
		base := 0
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if n, err := strconv.ParseUint(text[2:], base, 64); err == nil && !strings.Contains(text, "_") {
				return float64(n)
			}
			return math.NaN()
		}
	}
	switch text {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	for _, c := range text {
		if !(c >= '0' && c <= '9') && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			return math.NaN()
		}
	}
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return n
	}
	return math.NaN()
}

func ToInt32(f float64) int32 {
	// The easy way
	i := int32(f)
	if float64(i) == f {
		return i
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	// The hard way
	i = int32(uint32(math.Mod(math.Abs(math.Trunc(f)), 4294967296)))
	if math.Signbit(f) {
		return -i
	}
	return i
}

func ToUint32(f float64) uint32 {
	return uint32(ToInt32(f))
}

func StrictEquals(a LiteralValue, b LiteralValue) (bool, bool) {
	if a.IsUnknown() || b.IsUnknown() {
		return false, false
	}
	if a.Kind != b.Kind {
		return false, true
	}
	switch a.Kind {
	case LiteralBool:
		return a.Bool == b.Bool, true
	case LiteralNumber:
		return a.Number == b.Number, true
	case LiteralString:
		return a.String == b.String, true
	}
	return true, true
}

func LooseEquals(a LiteralValue, b LiteralValue) (bool, bool) {
	if a.IsUnknown() || b.IsUnknown() {
		return false, false
	}
	if a.IsNullOrUndefined() || b.IsNullOrUndefined() {
		return a.IsNullOrUndefined() && b.IsNullOrUndefined(), true
	}
	if a.Kind == b.Kind {
		return StrictEquals(a, b)
	}
	x, _ := a.ToNumber()
	y, _ := b.ToNumber()
	return x == y, true
}

func FoldUnary(op OpCode, value LiteralValue) LiteralValue {
	if value.IsUnknown() {
		return UnknownValue
	}
	switch op {
	case UnOpNot:
		truthy, _ := value.Truthy()
		return BoolValue(!truthy)
	case UnOpPos:
		n, _ := value.ToNumber()
		return NumberValue(n)
	case UnOpNeg:
		n, _ := value.ToNumber()
		return NumberValue(-n)
	case UnOpCpl:
		n, _ := value.ToNumber()
		return NumberValue(float64(^ToInt32(n)))
	case UnOpTypeof:
		text, _ := value.Typeof()
		return StringValue(text)
	case UnOpVoid:
		return UndefinedValue
	}
	return UnknownValue
}

func compare(op OpCode, a LiteralValue, b LiteralValue) LiteralValue {
	if a.Kind == LiteralString && b.Kind == LiteralString {
		switch op {
		case BinOpLt:
			return BoolValue(a.String < b.String)
		case BinOpLe:
			return BoolValue(a.String <= b.String)
		case BinOpGt:
			return BoolValue(a.String > b.String)
		default:
			return BoolValue(a.String >= b.String)
		}
	}
	x, _ := a.ToNumber()
	y, _ := b.ToNumber()
	switch op {
	case BinOpLt:
		return BoolValue(x < y)
	case BinOpLe:
		return BoolValue(x <= y)
	case BinOpGt:
		return BoolValue(x > y)
	default:
		return BoolValue(x >= y)
	}
}

func FoldBinary(op OpCode, a LiteralValue, b LiteralValue) LiteralValue {
	if a.IsUnknown() || b.IsUnknown() {
		return UnknownValue
	}

	switch op {
	case BinOpAdd:
		if a.Kind == LiteralString || b.Kind == LiteralString {
			x, _ := a.ToString()
			y, _ := b.ToString()
			return StringValue(x + y)
		}
	case BinOpLooseEq:
		equal, _ := LooseEquals(a, b)
		return BoolValue(equal)
	case BinOpLooseNe:
		equal, _ := LooseEquals(a, b)
		return BoolValue(!equal)
	case BinOpStrictEq:
		equal, _ := StrictEquals(a, b)
		return BoolValue(equal)
	case BinOpStrictNe:
		equal, _ := StrictEquals(a, b)
		return BoolValue(!equal)
	case BinOpLt, BinOpLe, BinOpGt, BinOpGe:
		return compare(op, a, b)
	case BinOpIn, BinOpInstanceof:
		return UnknownValue
	}

	x, _ := a.ToNumber()
	y, _ := b.ToNumber()
	switch op {
	case BinOpAdd:
		return NumberValue(x + y)
	case BinOpSub:
		return NumberValue(x - y)
	case BinOpMul:
		return NumberValue(x * y)
	case BinOpDiv:
		return NumberValue(x / y)
	case BinOpRem:
		return NumberValue(math.Mod(x, y))
	case BinOpPow:
		return NumberValue(math.Pow(x, y))
	case BinOpShl:
		return NumberValue(float64(ToInt32(x) << (ToUint32(y) & 31)))
	case BinOpShr:
		return NumberValue(float64(ToInt32(x) >> (ToUint32(y) & 31)))
	case BinOpUShr:
		return NumberValue(float64(ToUint32(x) >> (ToUint32(y) & 31)))
	case BinOpBitwiseAnd:
		return NumberValue(float64(ToInt32(x) & ToInt32(y)))
	case BinOpBitwiseOr:
		return NumberValue(float64(ToInt32(x) | ToInt32(y)))
	case BinOpBitwiseXor:
		return NumberValue(float64(ToInt32(x) ^ ToInt32(y)))
	}
	return UnknownValue
}
