package js_ast

import "github.com/evanw/treeshake/internal/ast"

type ScopeKind uint8

const (
	ScopeGlobal ScopeKind = iota
	ScopeModule
	ScopeBlock

	// The parameter scope of a non-arrow function. It binds "this" and
	// "arguments" and collects the return values of the function.
	ScopeFunction
	ScopeArrow

	// The scope that "var" declarations in a function body are hoisted to
	ScopeFunctionBody
	ScopeCatch
	ScopeClassBody
)

func (kind ScopeKind) collectsReturns() bool {
	return kind == ScopeFunction || kind == ScopeArrow
}

type Scope struct {
	Parent    *Scope
	Children  []*Scope
	Variables map[string]Variable

	// Names that were resolved by some scope further out. Module scopes only
	// cache globals here since imports are cached by the module.
	accessedOutside map[string]Variable

	build  *BuildContext
	Module ast.Index32
	Kind   ScopeKind

	// Parameter scopes only. Each parameter contributes the variables that
	// its pattern declares.
	Parameters [][]*LocalVariable
	HasRest    bool
	BodyScope  *Scope

	returnExpressions []Entity
	returnExpression  Entity
}

func newGlobalScope(build *BuildContext) *Scope {
	return &Scope{
		Kind:      ScopeGlobal,
		Variables: make(map[string]Variable),
		build:     build,
	}
}

// Creates the root scope of a module. The top-level "this" is undefined.
func NewModuleScope(build *BuildContext, module ast.Index32) *Scope {
	scope := build.GlobalScope.newChild(ScopeModule)
	scope.Module = module
	scope.Variables["this"] = newLocalVariable(build, module, "this", nil, UndefinedExpression, DeclConst)
	return scope
}

func (s *Scope) newChild(kind ScopeKind) *Scope {
	child := &Scope{
		Parent:    s,
		Kind:      kind,
		Variables: make(map[string]Variable),
		build:     s.build,
		Module:    s.Module,
	}
	s.Children = append(s.Children, child)
	return child
}

// Creates the parameter scope and the body scope of a function
func (s *Scope) newFunctionScopes(arrow bool) (*Scope, *Scope) {
	kind := ScopeFunction
	if arrow {
		kind = ScopeArrow
	}
	params := s.newChild(kind)
	if !arrow {
		params.Variables["this"] = &ThisVariable{VariableBase{build: s.build, Name: "this", Module: s.Module}}
		params.Variables["arguments"] = &ArgumentsVariable{VariableBase{build: s.build, Name: "arguments", Module: s.Module}}
	}
	params.BodyScope = params.newChild(ScopeFunctionBody)
	return params, params.BodyScope
}

func (s *Scope) Host() ModuleHost {
	return s.build.Module(s.Module)
}

func (s *Scope) Build() *BuildContext {
	return s.build
}

// Declares "identifier" in this scope and returns its variable. Hoisted
// declarations move out to the nearest function body or module scope.
func (s *Scope) AddDeclaration(identifier Node, name string, init Entity, kind DeclKind) *LocalVariable {
	hoisted := kind.IsHoisted()
	switch s.Kind {
	case ScopeBlock, ScopeClassBody, ScopeFunction, ScopeArrow:
		if hoisted {
			v := s.Parent.AddDeclaration(identifier, name, init, kind)

			// The declaration may not run so the initializer is unreliable
			if s.Kind == ScopeBlock {
				v.markInitializersForDeoptimization()
			}
			return v
		}

	case ScopeCatch:
		if param, ok := s.Variables[name].(localVariableHolder); ok && hoisted {
			// The hoisted variable exists but the initializer writes to the
			// catch parameter
			s.Parent.AddDeclaration(identifier, name, UndefinedExpression, kind)
			param.local().AddDeclaration(identifier, init)
			return param.local()
		}
		if hoisted {
			v := s.Parent.AddDeclaration(identifier, name, init, kind)
			v.markInitializersForDeoptimization()
			return v
		}

	case ScopeFunctionBody:
		if hoisted {
			if param, ok := s.Parent.Variables[name].(*LocalVariable); ok && param.Kind == DeclParameter {
				param.AddDeclaration(identifier, init)
				return param
			}
		}
	}

	if existing, ok := s.Variables[name].(localVariableHolder); ok {
		v := existing.local()
		v.AddDeclaration(identifier, init)
		return v
	}
	v := newLocalVariable(s.build, s.Module, name, identifier, init, kind)
	s.Variables[name] = v
	return v
}

// Parameters are unknown. A body "var" with the same name that was already
// declared shares the parameter variable.
func (s *Scope) AddParameterDeclaration(identifier Node, name string) *LocalVariable {
	if s.BodyScope != nil {
		if existing, ok := s.BodyScope.Variables[name].(*LocalVariable); ok {
			existing.AddDeclaration(identifier, nil)
			s.Variables[name] = existing
			return existing
		}
	}
	v := newLocalVariable(s.build, s.Module, name, identifier, UnknownExpression, DeclParameter)
	s.Variables[name] = v
	return v
}

func (s *Scope) AddParameterVariables(params [][]*LocalVariable, hasRest bool) {
	s.Parameters = params
	s.HasRest = hasRest
}

func (s *Scope) Contains(name string) bool {
	if _, ok := s.Variables[name]; ok {
		return true
	}
	return s.Parent != nil && s.Parent.Contains(name)
}

func (s *Scope) FindVariable(name string) Variable {
	if v, ok := s.Variables[name]; ok {
		return v
	}
	if v, ok := s.accessedOutside[name]; ok {
		return v
	}

	var v Variable
	switch s.Kind {
	case ScopeGlobal:
		global := &GlobalVariable{VariableBase{build: s.build, Name: name, IsReassigned: true}}
		s.Variables[name] = global
		return global

	case ScopeModule:
		if host := s.Host(); host != nil {
			v = host.TraceVariable(name)
		}
		if v != nil {
			return v
		}
		v = s.Parent.FindVariable(name)

	default:
		v = s.Parent.FindVariable(name)
	}

	if s.accessedOutside == nil {
		s.accessedOutside = make(map[string]Variable)
	}
	s.accessedOutside[name] = v
	return v
}

// The nearest scope that collects return values, or nil at the top level
func (s *Scope) returnScope() *Scope {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope.Kind.collectsReturns() {
			return scope
		}
		if scope.Kind == ScopeModule {
			return nil
		}
	}
	return nil
}

func (s *Scope) AddReturnExpression(expr Entity) {
	if scope := s.returnScope(); scope != nil {
		scope.returnExpressions = append(scope.returnExpressions, expr)
	}
}

// A function with one return value returns exactly that. With several
// return values each of them escapes and the result is unknown.
func (s *Scope) GetReturnExpression() Entity {
	if s.returnExpression == nil {
		if len(s.returnExpressions) == 1 {
			s.returnExpression = s.returnExpressions[0]
		} else {
			s.returnExpression = UnknownExpression
			for _, expr := range s.returnExpressions {
				expr.DeoptimizePath(UnknownPath)
			}
		}
	}
	return s.returnExpression
}

// Includes the arguments of a call to the function that owns this parameter
// scope. An argument is needed if its parameter is used or it has effects.
// Once one argument is needed every argument before it is too.
func (s *Scope) IncludeCallArguments(ctx *InclusionContext, args []Node) {
	for _, arg := range args {
		if _, ok := arg.(*ESpread); ok {
			includeAll(ctx, args)
			return
		}
	}

	var restParam []*LocalVariable
	if s.HasRest && len(s.Parameters) > 0 {
		restParam = s.Parameters[len(s.Parameters)-1]
	}
	argIncluded := false
	for i := len(args) - 1; i >= 0; i-- {
		paramVars := restParam
		if i < len(s.Parameters) {
			paramVars = s.Parameters[i]
		}
		for _, v := range paramVars {
			if v.Included {
				argIncluded = true
			}
		}
		arg := args[i]
		if !argIncluded && arg.ShouldBeIncluded(ctx) {
			argIncluded = true
		}
		if argIncluded {
			arg.Include(ctx, false)
		}
	}

	if v, ok := s.Variables["arguments"]; ok && v.Base().Included {
		for _, arg := range args {
			if !arg.Base().Included {
				arg.Include(ctx, false)
			}
		}
	}
}
