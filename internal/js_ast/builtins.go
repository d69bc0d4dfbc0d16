package js_ast

// Known members of the built-in prototypes. Calling a known member is pure
// unless it mutates its receiver (and the receiver is included) or calls one
// of its arguments that has effects when called.

type returnKind uint8

const (
	returnsUnknown returnKind = iota
	returnsArray
	returnsBoolean
	returnsNumber
	returnsString
)

type memberDescription struct {
	callsArgs   []int
	mutatesSelf bool
	returns     returnKind
}

type memberTable map[string]memberDescription

var (
	pureReturnsBoolean = memberDescription{returns: returnsBoolean}
	pureReturnsNumber  = memberDescription{returns: returnsNumber}
	pureReturnsString  = memberDescription{returns: returnsString}
	pureReturnsArray   = memberDescription{returns: returnsArray}
	pureReturnsUnknown = memberDescription{returns: returnsUnknown}

	callsArgReturnsBoolean = memberDescription{callsArgs: []int{0}, returns: returnsBoolean}
	callsArgReturnsNumber  = memberDescription{callsArgs: []int{0}, returns: returnsNumber}
	callsArgReturnsArray   = memberDescription{callsArgs: []int{0}, returns: returnsArray}
	callsArgReturnsUnknown = memberDescription{callsArgs: []int{0}, returns: returnsUnknown}

	mutatesSelfReturnsArray   = memberDescription{mutatesSelf: true, returns: returnsArray}
	mutatesSelfReturnsNumber  = memberDescription{mutatesSelf: true, returns: returnsNumber}
	mutatesSelfReturnsUnknown = memberDescription{mutatesSelf: true, returns: returnsUnknown}
	callsArgMutatesSelfArray  = memberDescription{callsArgs: []int{0}, mutatesSelf: true, returns: returnsArray}
)

func extendMembers(base memberTable, extra memberTable) memberTable {
	result := make(memberTable, len(base)+len(extra))
	for name, member := range base {
		result[name] = member
	}
	for name, member := range extra {
		result[name] = member
	}
	return result
}

var objectMembers = memberTable{
	"hasOwnProperty":       pureReturnsBoolean,
	"isPrototypeOf":        pureReturnsBoolean,
	"propertyIsEnumerable": pureReturnsBoolean,
	"toLocaleString":       pureReturnsString,
	"toString":             pureReturnsString,
	"valueOf":              pureReturnsUnknown,
}

var arrayMembers = extendMembers(objectMembers, memberTable{
	"concat":      pureReturnsArray,
	"copyWithin":  mutatesSelfReturnsArray,
	"every":       callsArgReturnsBoolean,
	"fill":        mutatesSelfReturnsArray,
	"filter":      callsArgReturnsArray,
	"find":        callsArgReturnsUnknown,
	"findIndex":   callsArgReturnsNumber,
	"forEach":     callsArgReturnsUnknown,
	"includes":    pureReturnsBoolean,
	"indexOf":     pureReturnsNumber,
	"join":        pureReturnsString,
	"lastIndexOf": pureReturnsNumber,
	"map":         callsArgReturnsArray,
	"pop":         mutatesSelfReturnsUnknown,
	"push":        mutatesSelfReturnsNumber,
	"reduce":      callsArgReturnsUnknown,
	"reduceRight": callsArgReturnsUnknown,
	"reverse":     mutatesSelfReturnsArray,
	"shift":       mutatesSelfReturnsUnknown,
	"slice":       pureReturnsArray,
	"some":        callsArgReturnsBoolean,
	"sort":        callsArgMutatesSelfArray,
	"splice":      mutatesSelfReturnsArray,
	"unshift":     mutatesSelfReturnsNumber,
})

var booleanMembers = extendMembers(objectMembers, memberTable{
	"valueOf": pureReturnsBoolean,
})

var numberMembers = extendMembers(objectMembers, memberTable{
	"toExponential":  pureReturnsString,
	"toFixed":        pureReturnsString,
	"toLocaleString": pureReturnsString,
	"toPrecision":    pureReturnsString,
	"valueOf":        pureReturnsNumber,
})

var stringMembers = extendMembers(objectMembers, memberTable{
	"charAt":            pureReturnsString,
	"charCodeAt":        pureReturnsNumber,
	"codePointAt":       pureReturnsNumber,
	"concat":            pureReturnsString,
	"endsWith":          pureReturnsBoolean,
	"includes":          pureReturnsBoolean,
	"indexOf":           pureReturnsNumber,
	"lastIndexOf":       pureReturnsNumber,
	"localeCompare":     pureReturnsNumber,
	"match":             pureReturnsBoolean,
	"normalize":         pureReturnsString,
	"padEnd":            pureReturnsString,
	"padStart":          pureReturnsString,
	"repeat":            pureReturnsString,
	"replace":           {callsArgs: []int{1}, returns: returnsString},
	"search":            pureReturnsNumber,
	"slice":             pureReturnsString,
	"split":             pureReturnsArray,
	"startsWith":        pureReturnsBoolean,
	"substr":            pureReturnsString,
	"substring":         pureReturnsString,
	"toLocaleLowerCase": pureReturnsString,
	"toLocaleUpperCase": pureReturnsString,
	"toLowerCase":       pureReturnsString,
	"toUpperCase":       pureReturnsString,
	"trim":              pureReturnsString,
	"trimEnd":           pureReturnsString,
	"trimStart":         pureReturnsString,
	"valueOf":           pureReturnsString,
})

func membersForLiteral(value LiteralValue) memberTable {
	switch value.Kind {
	case LiteralBool:
		return booleanMembers
	case LiteralNumber:
		return numberMembers
	case LiteralString:
		return stringMembers
	}
	return nil
}

var (
	unknownArray   = &unknownTypedValue{members: arrayMembers}
	unknownBoolean = &unknownTypedValue{members: booleanMembers}
	unknownNumber  = &unknownTypedValue{members: numberMembers}
	unknownString  = &unknownTypedValue{members: stringMembers}
)

func memberReturnExpression(members memberTable, key PathKey) Entity {
	if key.Unknown {
		return UnknownExpression
	}
	member, ok := members[key.Name]
	if !ok {
		return UnknownExpression
	}
	switch member.returns {
	case returnsArray:
		return unknownArray
	case returnsBoolean:
		return unknownBoolean
	case returnsNumber:
		return unknownNumber
	case returnsString:
		return unknownString
	}
	return UnknownExpression
}

func isKnownMember(members memberTable, key PathKey) bool {
	if key.Unknown {
		return false
	}
	_, ok := members[key.Name]
	return ok
}

func memberMutatesSelf(members memberTable, key PathKey) bool {
	if key.Unknown {
		return true
	}
	member, ok := members[key.Name]
	return !ok || member.mutatesSelf
}

func memberHasEffectsWhenCalled(members memberTable, key PathKey, parentIncluded bool, call *CallOptions, ctx *InclusionContext) bool {
	if key.Unknown {
		return true
	}
	member, ok := members[key.Name]
	if !ok || (member.mutatesSelf && parentIncluded) {
		return true
	}
	for _, index := range member.callsArgs {
		if index < len(call.Args) && call.Args[index].HasEffectsWhenCalledAtPath(EmptyPath, noArgsCall, ctx) {
			return true
		}
	}
	return false
}
