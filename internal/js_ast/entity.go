package js_ast

// Anything a path query can be asked of: nodes, variables and the synthetic
// stand-ins for values the analysis cannot see.
type Entity interface {
	DeoptimizePath(path Path)
	GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue
	GetReturnExpressionWhenCalledAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) Entity
	HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool
	HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool
	HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool
	IncludeCallArguments(ctx *InclusionContext, args []Node)
	MayModifyThisWhenCalledAtPath(path Path, tracker *PathTracker) bool
}

// Something that cached a literal value or a return expression obtained from
// another entity. It is told when that answer may no longer hold.
type DeoptimizableEntity interface {
	DeoptimizeCache()
}

// A value about which nothing is known
type unknownExpression struct{}

var UnknownExpression Entity = &unknownExpression{}

func (*unknownExpression) DeoptimizePath(Path) {}

func (*unknownExpression) GetLiteralValueAtPath(Path, *PathTracker, DeoptimizableEntity) LiteralValue {
	return UnknownValue
}

func (*unknownExpression) GetReturnExpressionWhenCalledAtPath(Path, *PathTracker, DeoptimizableEntity) Entity {
	return UnknownExpression
}

func (*unknownExpression) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	return len(path) > 0
}

func (*unknownExpression) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	return len(path) > 0
}

func (*unknownExpression) HasEffectsWhenCalledAtPath(Path, *CallOptions, *InclusionContext) bool {
	return true
}

func (*unknownExpression) IncludeCallArguments(ctx *InclusionContext, args []Node) {
	includeAll(ctx, args)
}

func (*unknownExpression) MayModifyThisWhenCalledAtPath(Path, *PathTracker) bool {
	return true
}

// The value "undefined" as the initializer of an uninitialized binding
type undefinedExpression struct{ unknownExpression }

var UndefinedExpression Entity = &undefinedExpression{}

func (*undefinedExpression) GetLiteralValueAtPath(path Path, _ *PathTracker, _ DeoptimizableEntity) LiteralValue {
	if len(path) > 0 {
		return UnknownValue
	}
	return UndefinedValue
}

// A value of a known primitive or object type whose contents are unknown, for
// example the result of "[].join()". Only members of that type are known.
type unknownTypedValue struct {
	unknownExpression
	members memberTable
}

func (v *unknownTypedValue) GetReturnExpressionWhenCalledAtPath(path Path, _ *PathTracker, _ DeoptimizableEntity) Entity {
	if len(path) != 1 {
		return UnknownExpression
	}
	return memberReturnExpression(v.members, path[0])
}

func (v *unknownTypedValue) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 1
}

func (v *unknownTypedValue) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	if len(path) == 1 {
		return memberHasEffectsWhenCalled(v.members, path[0], false, call, ctx)
	}
	return true
}

func (v *unknownTypedValue) MayModifyThisWhenCalledAtPath(path Path, _ *PathTracker) bool {
	return len(path) != 1 || memberMutatesSelf(v.members, path[0])
}

// A fresh object whose properties are unknown, for example "this" inside a
// constructor called with "new"
type unknownObjectExpression struct{ unknownTypedValue }

func newUnknownObject() Entity {
	return &unknownObjectExpression{unknownTypedValue{members: objectMembers}}
}

func (*unknownObjectExpression) HasEffectsWhenAssignedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 1
}

func includeAll(ctx *InclusionContext, nodes []Node) {
	for _, node := range nodes {
		node.Include(ctx, false)
	}
}

// One of several values, for example the result of "a || b" when the taken
// branch is not known. Every query must hold for all of them.
type multiExpression struct {
	expressions []Entity
}

func newMultiExpression(expressions ...Entity) Entity {
	return &multiExpression{expressions: expressions}
}

func (m *multiExpression) DeoptimizePath(path Path) {
	for _, e := range m.expressions {
		e.DeoptimizePath(path)
	}
}

func (m *multiExpression) GetLiteralValueAtPath(Path, *PathTracker, DeoptimizableEntity) LiteralValue {
	return UnknownValue
}

func (m *multiExpression) GetReturnExpressionWhenCalledAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) Entity {
	results := make([]Entity, len(m.expressions))
	for i, e := range m.expressions {
		results[i] = e.GetReturnExpressionWhenCalledAtPath(path, tracker, origin)
	}
	return newMultiExpression(results...)
}

func (m *multiExpression) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	for _, e := range m.expressions {
		if e.HasEffectsWhenAccessedAtPath(path, ctx) {
			return true
		}
	}
	return false
}

func (m *multiExpression) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	for _, e := range m.expressions {
		if e.HasEffectsWhenAssignedAtPath(path, ctx) {
			return true
		}
	}
	return false
}

func (m *multiExpression) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	for _, e := range m.expressions {
		if e.HasEffectsWhenCalledAtPath(path, call, ctx) {
			return true
		}
	}
	return false
}

func (m *multiExpression) IncludeCallArguments(ctx *InclusionContext, args []Node) {
	for _, e := range m.expressions {
		e.IncludeCallArguments(ctx, args)
	}
}

func (m *multiExpression) MayModifyThisWhenCalledAtPath(path Path, tracker *PathTracker) bool {
	for _, e := range m.expressions {
		if e.MayModifyThisWhenCalledAtPath(path, tracker) {
			return true
		}
	}
	return false
}
