package js_ast

type EClass struct {
	NodeBase
	ID           *BIdentifier
	ExtendsOrNil Node
	Properties   []*Property

	IsDeclaration bool

	BodyScope *Scope

	statics *ObjectEntity
}

func (e *EClass) EachChild(fn func(Node)) {
	if e.ID != nil {
		fn(e.ID)
	}
	eachNonNil(fn, e.ExtendsOrNil)
	for _, property := range e.Properties {
		fn(property)
	}
}

// Field initializers and static blocks see the class body scope. Their
// "this" is never known.
func (e *EClass) createScope(parent *Scope) *Scope {
	e.BodyScope = parent.newChild(ScopeClassBody)
	e.BodyScope.Variables["this"] = &ThisVariable{VariableBase{build: parent.build, Name: "this", Module: parent.Module}}
	return e.BodyScope
}

func (e *EClass) scopeForChild(child Node, own *Scope) *Scope {
	if e.ID != nil && child == Node(e.ID) && e.IsDeclaration {
		return e.Scope
	}
	return own
}

func (e *EClass) childInitialised(child Node) {
	if e.ID != nil && child == Node(e.ID) {
		e.ID.declare(DeclClass, e)
	}
}

func (e *EClass) staticSide() *ObjectEntity {
	if e.statics == nil {
		var properties []*Property
		for _, property := range e.Properties {
			if property.Flags.Has(PropertyIsStatic) && property.Kind != PropertyClassStaticBlock {
				properties = append(properties, property)
			}
		}
		e.statics = NewObjectEntity(e, properties, objectMembers)
	}
	return e.statics
}

func (e *EClass) constructor() *EFunction {
	for _, property := range e.Properties {
		if property.Flags.Has(PropertyIsStatic) || !property.Flags.Has(PropertyIsMethod) || property.Flags.Has(PropertyIsComputed) {
			continue
		}
		if key, ok := property.KeyOrNil.(*EString); ok && key.Value == "constructor" {
			fn, _ := property.ValueOrNil.(*EFunction)
			return fn
		}
	}
	return nil
}

func (e *EClass) Bind() {
	e.NodeBase.Bind()
	e.staticSide().getPropertyMap()
}

// Defining a class evaluates its superclass, its computed keys, its static
// fields and its static blocks
func (e *EClass) HasEffects(ctx *InclusionContext) bool {
	if e.ExtendsOrNil != nil && e.ExtendsOrNil.HasEffects(ctx) {
		return true
	}
	for _, property := range e.Properties {
		if property.Flags.Has(PropertyIsComputed) && property.KeyOrNil.HasEffects(ctx) {
			return true
		}
		if property.Kind == PropertyClassStaticBlock || property.Flags.Has(PropertyIsStatic) {
			if property.ValueOrNil != nil && property.ValueOrNil.HasEffects(ctx) {
				return true
			}
		}
	}
	return false
}

func (e *EClass) DeoptimizeCache() {
	e.staticSide().DeoptimizeCache()
}

func (e *EClass) DeoptimizePath(path Path) {
	if len(path) > 0 {
		e.staticSide().DeoptimizePath(path)
	}
}

func (e *EClass) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	if len(path) == 0 {
		return UnknownValue
	}
	return e.staticSide().GetLiteralValueAtPath(path, tracker, origin)
}

func (e *EClass) GetReturnExpressionWhenCalledAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) Entity {
	if len(path) == 0 {
		return UnknownExpression
	}
	return e.staticSide().GetReturnExpressionWhenCalledAtPath(path, tracker, origin)
}

func (e *EClass) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	return len(path) > 0 && e.staticSide().HasEffectsWhenAccessedAtPath(path, ctx)
}

func (e *EClass) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	return len(path) > 0 && e.staticSide().HasEffectsWhenAssignedAtPath(path, ctx)
}

// Calling a class without "new" throws. Constructing one runs the
// constructor, the superclass constructor and the instance fields.
func (e *EClass) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	if len(path) > 0 {
		return e.staticSide().HasEffectsWhenCalledAtPath(path, call, ctx)
	}
	if !call.WithNew {
		return true
	}
	if ctor := e.constructor(); ctor != nil && ctor.HasEffectsWhenCalledAtPath(EmptyPath, call, ctx) {
		return true
	}
	if e.ExtendsOrNil != nil && e.ExtendsOrNil.HasEffectsWhenCalledAtPath(EmptyPath, call, ctx) {
		return true
	}
	for _, property := range e.Properties {
		if property.Flags.Has(PropertyIsStatic) || property.Flags.Has(PropertyIsMethod) || property.Kind != PropertyNormal {
			continue
		}
		if property.ValueOrNil != nil && property.ValueOrNil.HasEffects(ctx) {
			return true
		}
	}
	return false
}

func (e *EClass) MayModifyThisWhenCalledAtPath(path Path, tracker *PathTracker) bool {
	if len(path) == 0 {
		return true
	}
	return e.staticSide().MayModifyThisWhenCalledAtPath(path, tracker)
}
