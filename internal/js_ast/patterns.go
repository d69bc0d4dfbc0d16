package js_ast

// Binding patterns. Declaring one registers a variable for every name it
// binds and returns those variables.
type pattern interface {
	Node
	declare(kind DeclKind, init Entity) []*LocalVariable
}

// A name that is bound rather than read. Outside of declarations, for example
// in "[a, b] = c", it refers to an existing binding like an identifier does.
type BIdentifier struct {
	EIdentifier
}

func (b *BIdentifier) declare(kind DeclKind, init Entity) []*LocalVariable {
	var v *LocalVariable
	if kind == DeclParameter {
		v = b.Scope.AddParameterDeclaration(b, b.Name)
	} else {
		v = b.Scope.AddDeclaration(b, b.Name, init, kind)
	}
	b.Variable = v
	return []*LocalVariable{v}
}

// Elements are "EMissing" for holes
type BArray struct {
	NodeBase
	Items []Node
}

func (b *BArray) EachChild(fn func(Node)) {
	for _, item := range b.Items {
		fn(item)
	}
}

func (b *BArray) declare(kind DeclKind, _ Entity) (variables []*LocalVariable) {
	for _, item := range b.Items {
		if p, ok := item.(pattern); ok {
			variables = append(variables, p.declare(kind, UnknownExpression)...)
		}
	}
	return
}

func (b *BArray) DeoptimizePath(path Path) {
	if len(path) == 0 {
		for _, item := range b.Items {
			item.DeoptimizePath(path)
		}
	}
}

func (b *BArray) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	if len(path) > 0 {
		return true
	}
	for _, item := range b.Items {
		if item.HasEffectsWhenAssignedAtPath(EmptyPath, ctx) {
			return true
		}
	}
	return false
}

type BObject struct {
	NodeBase
	Properties []*BProperty
}

func (b *BObject) EachChild(fn func(Node)) {
	for _, property := range b.Properties {
		fn(property)
	}
}

func (b *BObject) declare(kind DeclKind, init Entity) (variables []*LocalVariable) {
	for _, property := range b.Properties {
		variables = append(variables, property.declare(kind, init)...)
	}
	return
}

func (b *BObject) DeoptimizePath(path Path) {
	if len(path) == 0 {
		for _, property := range b.Properties {
			property.DeoptimizePath(path)
		}
	}
}

func (b *BObject) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	if len(path) > 0 {
		return true
	}
	for _, property := range b.Properties {
		if property.HasEffectsWhenAssignedAtPath(EmptyPath, ctx) {
			return true
		}
	}
	return false
}

// One entry of an object pattern. The rest entry "...r" has no key.
type BProperty struct {
	NodeBase
	KeyOrNil   Node
	Value      Node
	IsComputed bool
	IsRest     bool

	declarationInit Entity
}

func (b *BProperty) EachChild(fn func(Node)) {
	if b.IsComputed {
		fn(b.KeyOrNil)
	}
	fn(b.Value)
}

func (b *BProperty) declare(kind DeclKind, init Entity) []*LocalVariable {
	b.declarationInit = init
	return b.Value.(pattern).declare(kind, UnknownExpression)
}

// Properties of the destructured value flow into the bound names, which are
// not tracked
func (b *BProperty) Bind() {
	b.NodeBase.Bind()
	if b.declarationInit != nil {
		b.declarationInit.DeoptimizePath(Path{UnknownKey, UnknownKey})
	}
}

func (b *BProperty) DeoptimizePath(path Path) {
	b.Value.DeoptimizePath(path)
}

func (b *BProperty) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	return b.Value.HasEffectsWhenAssignedAtPath(path, ctx)
}

// "a = b" in a pattern
type BDefault struct {
	NodeBase
	Binding Node
	Value   Node
}

func (b *BDefault) EachChild(fn func(Node)) { fn(b.Binding); fn(b.Value) }

func (b *BDefault) declare(kind DeclKind, init Entity) []*LocalVariable {
	return b.Binding.(pattern).declare(kind, init)
}

func (b *BDefault) Bind() {
	b.NodeBase.Bind()
	b.Binding.DeoptimizePath(EmptyPath)
	b.Value.DeoptimizePath(UnknownPath)
}

func (b *BDefault) DeoptimizePath(path Path) {
	if len(path) == 0 {
		b.Binding.DeoptimizePath(path)
	}
}

func (b *BDefault) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	return len(path) > 0 || b.Binding.HasEffectsWhenAssignedAtPath(EmptyPath, ctx)
}

// "...a" in a pattern
type BRest struct {
	NodeBase
	Binding Node
}

func (b *BRest) EachChild(fn func(Node)) { fn(b.Binding) }

func (b *BRest) declare(kind DeclKind, _ Entity) []*LocalVariable {
	return b.Binding.(pattern).declare(kind, UnknownExpression)
}

func (b *BRest) DeoptimizePath(path Path) {
	if len(path) == 0 {
		b.Binding.DeoptimizePath(EmptyPath)
	}
}

func (b *BRest) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	return len(path) > 0 || b.Binding.HasEffectsWhenAssignedAtPath(EmptyPath, ctx)
}

// The names a binding pattern declares, in source order. Default values are
// not visited.
func BindingIdentifiers(binding Node) (ids []*BIdentifier) {
	switch b := binding.(type) {
	case *BIdentifier:
		ids = append(ids, b)
	case *BArray:
		for _, item := range b.Items {
			ids = append(ids, BindingIdentifiers(item)...)
		}
	case *BObject:
		for _, property := range b.Properties {
			ids = append(ids, BindingIdentifiers(property.Value)...)
		}
	case *BDefault:
		ids = BindingIdentifiers(b.Binding)
	case *BRest:
		ids = BindingIdentifiers(b.Binding)
	}
	return
}
