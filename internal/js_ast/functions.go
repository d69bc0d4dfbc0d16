package js_ast

// Function declarations, function expressions and arrow functions. An arrow
// function has no "this", no "arguments" and no prototype of its own.
type EFunction struct {
	NodeBase
	ID     *BIdentifier
	Params []Node

	// Arrow functions with an expression body have a body with a single
	// return statement and "PreferExpr" set
	Body *SBlock

	IsArrow       bool
	IsAsync       bool
	IsGenerator   bool
	IsDeclaration bool
	HasRest       bool
	PreferExpr    bool

	ParamScope *Scope

	referencesThis         bool
	isPrototypeDeoptimized bool
}

func (e *EFunction) EachChild(fn func(Node)) {
	if e.ID != nil {
		fn(e.ID)
	}
	for _, param := range e.Params {
		fn(param)
	}
	fn(e.Body)
}

func (e *EFunction) preventsChildBlockScope() {}

func (e *EFunction) createScope(parent *Scope) *Scope {
	e.ParamScope, _ = parent.newFunctionScopes(e.IsArrow)
	return e.ParamScope
}

// The name of a declaration belongs to the enclosing scope while the name of
// a function expression is only visible inside the function
func (e *EFunction) scopeForChild(child Node, own *Scope) *Scope {
	switch {
	case e.ID != nil && child == Node(e.ID) && e.IsDeclaration:
		return e.Scope
	case child == Node(e.Body):
		return own.BodyScope
	}
	return own
}

func (e *EFunction) childInitialised(child Node) {
	if e.ID != nil && child == Node(e.ID) {
		e.ID.declare(DeclFunction, e)
	}
}

func (e *EFunction) initialise() {
	params := make([][]*LocalVariable, len(e.Params))
	for i, param := range e.Params {
		params[i] = param.(pattern).declare(DeclParameter, UnknownExpression)
	}
	e.ParamScope.AddParameterVariables(params, e.HasRest)
	e.Body.addImplicitReturnExpressionToScope(e.ParamScope)
}

func (e *EFunction) thisVariable() *ThisVariable {
	this, _ := e.ParamScope.Variables["this"].(*ThisVariable)
	return this
}

func (e *EFunction) DeoptimizePath(path Path) {
	if len(path) != 1 {
		return
	}
	if path[0].Unknown {
		// Losing track of the function means losing track of what it returns
		e.isPrototypeDeoptimized = true
		e.ParamScope.GetReturnExpression().DeoptimizePath(UnknownPath)
	} else if path[0].Name == "prototype" && !e.IsArrow {
		e.isPrototypeDeoptimized = true
	}
}

func (e *EFunction) GetReturnExpressionWhenCalledAtPath(path Path, _ *PathTracker, _ DeoptimizableEntity) Entity {
	if len(path) == 0 {
		return e.ParamScope.GetReturnExpression()
	}
	return UnknownExpression
}

// Creating a function does nothing. Its parameters and body only run when it
// is called.
func (e *EFunction) HasEffects(*InclusionContext) bool { return false }

// Functions have no members besides "prototype" that are worth tracking
func (e *EFunction) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	if len(path) <= 1 {
		return false
	}
	return e.IsArrow || len(path) > 2 || path[0] != Key("prototype") || e.isPrototypeDeoptimized
}

func (e *EFunction) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	return e.HasEffectsWhenAccessedAtPath(path, ctx)
}

func (e *EFunction) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	if len(path) > 0 {
		return true
	}
	for _, param := range e.Params {
		if param.HasEffects(ctx) {
			return true
		}
	}

	var this *ThisVariable
	var thisInit Entity
	var hadThisInit bool
	if !e.IsArrow {
		if this = e.thisVariable(); this != nil {
			if ctx.ReplacedVariableInits == nil {
				ctx.ReplacedVariableInits = make(map[*ThisVariable]Entity)
			}
			thisInit, hadThisInit = ctx.ReplacedVariableInits[this]
			if call.WithNew {
				ctx.ReplacedVariableInits[this] = newUnknownObject()
			} else {
				ctx.ReplacedVariableInits[this] = UnknownExpression
			}
		}
	}

	brokenFlow, ignore := ctx.BrokenFlow, ctx.Ignore
	ctx.Ignore = IgnoredFlow{ReturnAwaitYield: true}
	if e.Body.HasEffects(ctx) {
		return true
	}
	ctx.BrokenFlow, ctx.Ignore = brokenFlow, ignore

	if this != nil {
		if hadThisInit {
			ctx.ReplacedVariableInits[this] = thisInit
		} else {
			delete(ctx.ReplacedVariableInits, this)
		}
	}
	return false
}

// Parameters that are plain names are omitted unless they are used. With
// "arguments" in play every parameter is observable.
func (e *EFunction) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	e.Included = true
	if e.ID != nil {
		e.ID.Include(ctx, false)
	}
	hasArguments := false
	if !e.IsArrow {
		if arguments, ok := e.ParamScope.Variables["arguments"]; ok {
			hasArguments = arguments.Base().Included
		}
	}
	for _, param := range e.Params {
		if _, ok := param.(*BIdentifier); !ok || hasArguments {
			param.Include(ctx, includeChildrenRecursively)
		}
	}
	brokenFlow := ctx.BrokenFlow
	ctx.BrokenFlow = BrokenFlowNone
	e.Body.Include(ctx, includeChildrenRecursively)
	ctx.BrokenFlow = brokenFlow
}

func (e *EFunction) IncludeCallArguments(ctx *InclusionContext, args []Node) {
	e.ParamScope.IncludeCallArguments(ctx, args)
}

func (e *EFunction) MayModifyThisWhenCalledAtPath(path Path, _ *PathTracker) bool {
	if e.IsArrow {
		return false
	}
	return len(path) > 0 || e.referencesThis
}
