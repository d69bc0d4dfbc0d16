package config

import "strings"

type GlobalFlags uint8

const (
	// Calling this member (with or without "new") has no side effects and does
	// not mutate its arguments
	CallIsPure GlobalFlags = 1 << iota

	// Only "new" calls are pure. A plain call may throw.
	NewIsOnlyPure
)

type knownGlobal struct {
	parts []string
	flags GlobalFlags
}

var knownGlobals = []knownGlobal{
	// These global identifiers should exist in all JavaScript environments.
	// Calling most of them as a function or a constructor is also pure.
	{[]string{"Array"}, CallIsPure},
	{[]string{"Boolean"}, CallIsPure},
	{[]string{"Function"}, 0},
	{[]string{"Math"}, 0},
	{[]string{"Number"}, CallIsPure},
	{[]string{"Object"}, CallIsPure},
	{[]string{"RegExp"}, CallIsPure},
	{[]string{"String"}, CallIsPure},
	{[]string{"Symbol"}, CallIsPure},
	{[]string{"Date"}, CallIsPure},
	{[]string{"Error"}, CallIsPure},
	{[]string{"EvalError"}, CallIsPure},
	{[]string{"RangeError"}, CallIsPure},
	{[]string{"ReferenceError"}, CallIsPure},
	{[]string{"SyntaxError"}, CallIsPure},
	{[]string{"TypeError"}, CallIsPure},
	{[]string{"URIError"}, CallIsPure},
	{[]string{"Map"}, CallIsPure | NewIsOnlyPure},
	{[]string{"Set"}, CallIsPure | NewIsOnlyPure},
	{[]string{"WeakMap"}, CallIsPure | NewIsOnlyPure},
	{[]string{"WeakSet"}, CallIsPure | NewIsOnlyPure},
	{[]string{"Promise"}, 0},
	{[]string{"JSON"}, 0},
	{[]string{"Reflect"}, 0},
	{[]string{"Proxy"}, 0},
	{[]string{"console"}, 0},
	{[]string{"globalThis"}, 0},
	{[]string{"isFinite"}, CallIsPure},
	{[]string{"isNaN"}, CallIsPure},
	{[]string{"parseFloat"}, CallIsPure},
	{[]string{"parseInt"}, CallIsPure},
	{[]string{"decodeURI"}, CallIsPure},
	{[]string{"decodeURIComponent"}, CallIsPure},
	{[]string{"encodeURI"}, CallIsPure},
	{[]string{"encodeURIComponent"}, CallIsPure},
	{[]string{"escape"}, CallIsPure},
	{[]string{"unescape"}, CallIsPure},

	// Object: Static methods
	// https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Global_Objects/Object#Static_methods
	{[]string{"Object", "assign"}, 0},
	{[]string{"Object", "create"}, CallIsPure},
	{[]string{"Object", "defineProperties"}, 0},
	{[]string{"Object", "defineProperty"}, 0},
	{[]string{"Object", "entries"}, CallIsPure},
	{[]string{"Object", "freeze"}, 0},
	{[]string{"Object", "fromEntries"}, CallIsPure},
	{[]string{"Object", "getOwnPropertyDescriptor"}, CallIsPure},
	{[]string{"Object", "getOwnPropertyDescriptors"}, CallIsPure},
	{[]string{"Object", "getOwnPropertyNames"}, CallIsPure},
	{[]string{"Object", "getOwnPropertySymbols"}, CallIsPure},
	{[]string{"Object", "getPrototypeOf"}, CallIsPure},
	{[]string{"Object", "is"}, CallIsPure},
	{[]string{"Object", "isExtensible"}, CallIsPure},
	{[]string{"Object", "isFrozen"}, CallIsPure},
	{[]string{"Object", "isSealed"}, CallIsPure},
	{[]string{"Object", "keys"}, CallIsPure},
	{[]string{"Object", "preventExtensions"}, 0},
	{[]string{"Object", "seal"}, 0},
	{[]string{"Object", "setPrototypeOf"}, 0},
	{[]string{"Object", "values"}, CallIsPure},

	// Object: Instance methods
	// https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Global_Objects/Object#Instance_methods
	{[]string{"Object", "prototype"}, 0},
	{[]string{"Object", "prototype", "hasOwnProperty"}, CallIsPure},
	{[]string{"Object", "prototype", "isPrototypeOf"}, CallIsPure},
	{[]string{"Object", "prototype", "propertyIsEnumerable"}, CallIsPure},
	{[]string{"Object", "prototype", "toLocaleString"}, CallIsPure},
	{[]string{"Object", "prototype", "toString"}, CallIsPure},
	{[]string{"Object", "prototype", "valueOf"}, CallIsPure},

	// Array, Number, String: Static members
	{[]string{"Array", "from"}, CallIsPure},
	{[]string{"Array", "isArray"}, CallIsPure},
	{[]string{"Array", "of"}, CallIsPure},
	{[]string{"Array", "prototype"}, 0},
	{[]string{"Number", "EPSILON"}, 0},
	{[]string{"Number", "MAX_SAFE_INTEGER"}, 0},
	{[]string{"Number", "MAX_VALUE"}, 0},
	{[]string{"Number", "MIN_SAFE_INTEGER"}, 0},
	{[]string{"Number", "MIN_VALUE"}, 0},
	{[]string{"Number", "NEGATIVE_INFINITY"}, 0},
	{[]string{"Number", "NaN"}, 0},
	{[]string{"Number", "POSITIVE_INFINITY"}, 0},
	{[]string{"Number", "isFinite"}, CallIsPure},
	{[]string{"Number", "isInteger"}, CallIsPure},
	{[]string{"Number", "isNaN"}, CallIsPure},
	{[]string{"Number", "isSafeInteger"}, CallIsPure},
	{[]string{"Number", "parseFloat"}, CallIsPure},
	{[]string{"Number", "parseInt"}, CallIsPure},
	{[]string{"String", "fromCharCode"}, CallIsPure},
	{[]string{"String", "fromCodePoint"}, CallIsPure},
	{[]string{"String", "raw"}, CallIsPure},
	{[]string{"Symbol", "asyncIterator"}, 0},
	{[]string{"Symbol", "for"}, CallIsPure},
	{[]string{"Symbol", "hasInstance"}, 0},
	{[]string{"Symbol", "iterator"}, 0},
	{[]string{"Symbol", "toPrimitive"}, 0},
	{[]string{"Symbol", "toStringTag"}, 0},
	{[]string{"JSON", "parse"}, 0},
	{[]string{"JSON", "stringify"}, 0},
	{[]string{"Promise", "all"}, 0},
	{[]string{"Promise", "reject"}, 0},
	{[]string{"Promise", "resolve"}, 0},
	{[]string{"Reflect", "has"}, CallIsPure},
	{[]string{"Reflect", "ownKeys"}, CallIsPure},
	{[]string{"console", "log"}, 0},
	{[]string{"console", "warn"}, 0},
	{[]string{"console", "error"}, 0},

	// Math: Static properties
	// https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Global_Objects/Math#Static_properties
	{[]string{"Math", "E"}, 0},
	{[]string{"Math", "LN10"}, 0},
	{[]string{"Math", "LN2"}, 0},
	{[]string{"Math", "LOG10E"}, 0},
	{[]string{"Math", "LOG2E"}, 0},
	{[]string{"Math", "PI"}, 0},
	{[]string{"Math", "SQRT1_2"}, 0},
	{[]string{"Math", "SQRT2"}, 0},
}

// Math: Static methods. These are all pure.
// https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Global_Objects/Math#Static_methods
var mathMethods = []string{
	"abs", "acos", "acosh", "asin", "asinh", "atan", "atan2", "atanh", "cbrt",
	"ceil", "clz32", "cos", "cosh", "exp", "expm1", "floor", "fround", "hypot",
	"imul", "log", "log10", "log1p", "log2", "max", "min", "pow", "random",
	"round", "sign", "sin", "sinh", "sqrt", "tan", "tanh", "trunc",
}

// A lookup table over the known globals. One of these is built per build and
// stored in the build context.
type ProcessedGlobals struct {
	known map[string]GlobalFlags
}

func ProcessGlobals() *ProcessedGlobals {
	globals := &ProcessedGlobals{known: make(map[string]GlobalFlags, len(knownGlobals)+len(mathMethods))}
	for _, global := range knownGlobals {
		globals.known[strings.Join(global.parts, ".")] = global.flags
	}
	for _, name := range mathMethods {
		globals.known["Math."+name] = CallIsPure
	}
	return globals
}

func (globals *ProcessedGlobals) Lookup(parts []string) (GlobalFlags, bool) {
	flags, ok := globals.known[strings.Join(parts, ".")]
	return flags, ok
}

// Reading this global path can neither throw nor run a getter
func (globals *ProcessedGlobals) IsKnown(parts []string) bool {
	_, ok := globals.Lookup(parts)
	return ok
}

func (globals *ProcessedGlobals) IsPureCall(parts []string, withNew bool) bool {
	flags, ok := globals.Lookup(parts)
	if !ok || (flags&CallIsPure) == 0 {
		return false
	}
	return withNew || (flags&NewIsOnlyPure) == 0
}
