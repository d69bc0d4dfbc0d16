package js_ast

import (
	"fmt"

	"github.com/evanw/treeshake/internal/ast"
	"github.com/evanw/treeshake/internal/logger"
)

////////////////////////////////////////////////////////////////////////////////
// Identifiers

type EIdentifier struct {
	NodeBase
	Name     string
	Variable Variable
}

// Identifiers bind on first use. Deoptimization can reach an identifier in a
// function that was not bound yet.
func (e *EIdentifier) Bind() {
	if e.Variable == nil {
		e.Variable = e.Scope.FindVariable(e.Name)
		e.Variable.AddReference(e)
	}
	if local, ok := e.Variable.(localVariableHolder); ok {
		local.local().consolidateInitializers()
	}
}

func (e *EIdentifier) variable() Variable {
	if e.Variable == nil {
		e.Bind()
	}
	return e.Variable
}

func (e *EIdentifier) DeoptimizePath(path Path) {
	if len(path) == 0 && !e.Scope.Contains(e.Name) {
		e.disallowImportReassignment()
	}
	e.variable().DeoptimizePath(path)
}

func (e *EIdentifier) disallowImportReassignment() {
	var source *logger.Source
	if host := e.host(); host != nil {
		source = host.Source()
	}
	e.build().Log.AddError(source, e.Range, fmt.Sprintf("Cannot assign to import %q", e.Name))
}

func (e *EIdentifier) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	return e.variable().GetLiteralValueAtPath(path, tracker, origin)
}

func (e *EIdentifier) GetReturnExpressionWhenCalledAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) Entity {
	return e.variable().GetReturnExpressionWhenCalledAtPath(path, tracker, origin)
}

// Reading a bound name is pure. Reading an unknown global may throw.
func (e *EIdentifier) HasEffects(ctx *InclusionContext) bool {
	global, ok := e.variable().(*GlobalVariable)
	return ok && e.build().treeShaking().UnknownGlobalSideEffects &&
		global.HasEffectsWhenAccessedAtPath(EmptyPath, ctx)
}

func (e *EIdentifier) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	return e.variable().HasEffectsWhenAccessedAtPath(path, ctx)
}

func (e *EIdentifier) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	return e.variable().HasEffectsWhenAssignedAtPath(path, ctx)
}

func (e *EIdentifier) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	return e.variable().HasEffectsWhenCalledAtPath(path, call, ctx)
}

func (e *EIdentifier) Include(*InclusionContext, bool) {
	if !e.Included {
		e.Included = true
		e.host().IncludeVariableInModule(e.variable())
	}
}

func (e *EIdentifier) IncludeCallArguments(ctx *InclusionContext, args []Node) {
	e.variable().IncludeCallArguments(ctx, args)
}

func (e *EIdentifier) MayModifyThisWhenCalledAtPath(path Path, tracker *PathTracker) bool {
	return e.variable().MayModifyThisWhenCalledAtPath(path, tracker)
}

type EThis struct {
	NodeBase
	Variable Variable
}

func (e *EThis) initialise() {
	for scope := e.Scope; scope != nil; scope = scope.Parent {
		if scope.Kind == ScopeFunction || scope.Kind == ScopeClassBody {
			break
		}
		if scope.Kind == ScopeModule {
			e.host().Warn(logger.MsgID_JS_ThisIsUndefinedInESM, e.Range,
				"Top-level \"this\" will be replaced with undefined since this file is an ECMAScript module")
			break
		}
	}
	for parent := e.Parent; parent != nil; parent = parent.Base().Parent {
		if fn, ok := parent.(*EFunction); ok && !fn.IsArrow {
			fn.referencesThis = true
			break
		}
	}
}

func (e *EThis) Bind() {
	e.variable()
}

func (e *EThis) variable() Variable {
	if e.Variable == nil {
		e.Variable = e.Scope.FindVariable("this")
	}
	return e.Variable
}

func (e *EThis) DeoptimizePath(path Path) {
	e.variable().DeoptimizePath(path)
}

func (e *EThis) HasEffects(*InclusionContext) bool { return false }

func (e *EThis) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	return len(path) > 0 && e.variable().HasEffectsWhenAccessedAtPath(path, ctx)
}

func (e *EThis) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	return e.variable().HasEffectsWhenAssignedAtPath(path, ctx)
}

func (e *EThis) Include(*InclusionContext, bool) {
	if !e.Included {
		e.Included = true
		e.host().IncludeVariableInModule(e.variable())
	}
}

// "super" stands for the superclass of the enclosing class. Only calling it
// as a constructor is analyzed; its members are unknown.
type ESuper struct {
	NodeBase
}

func (e *ESuper) superclass() Entity {
	for parent := e.Parent; parent != nil; parent = parent.Base().Parent {
		if class, ok := parent.(*EClass); ok {
			if class.ExtendsOrNil != nil {
				return class.ExtendsOrNil
			}
			break
		}
	}
	return UnknownExpression
}

func (e *ESuper) HasEffects(*InclusionContext) bool { return false }

func (e *ESuper) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 0
}

func (e *ESuper) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	if len(path) > 0 {
		return true
	}
	return e.superclass().HasEffectsWhenCalledAtPath(EmptyPath, &CallOptions{Args: call.Args, WithNew: true}, ctx)
}

////////////////////////////////////////////////////////////////////////////////
// Literals

type literalNode interface {
	Node
	literalValue() LiteralValue
}

// The shared behavior of primitive literals. Their members are the members
// of the built-in prototype for their type.
type primitive struct {
	NodeBase
}

func (p *primitive) value() LiteralValue {
	return p.self.(literalNode).literalValue()
}

func (p *primitive) members() memberTable {
	if _, ok := p.self.(*ERegExp); ok {
		return objectMembers
	}
	return membersForLiteral(p.value())
}

func (p *primitive) HasEffects(*InclusionContext) bool { return false }

func (p *primitive) GetLiteralValueAtPath(path Path, _ *PathTracker, _ DeoptimizableEntity) LiteralValue {
	if len(path) > 0 {
		return UnknownValue
	}
	return p.value()
}

func (p *primitive) GetReturnExpressionWhenCalledAtPath(path Path, _ *PathTracker, _ DeoptimizableEntity) Entity {
	if len(path) != 1 {
		return UnknownExpression
	}
	return memberReturnExpression(p.members(), path[0])
}

func (p *primitive) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	if p.value().Kind == LiteralNull {
		return len(path) > 0
	}
	return len(path) > 1
}

func (p *primitive) HasEffectsWhenAssignedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 0
}

func (p *primitive) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	if len(path) == 1 {
		return memberHasEffectsWhenCalled(p.members(), path[0], p.Included, call, ctx)
	}
	return true
}

func (p *primitive) MayModifyThisWhenCalledAtPath(path Path, _ *PathTracker) bool {
	return len(path) != 1 || memberMutatesSelf(p.members(), path[0])
}

type EString struct {
	primitive
	Value string
}

func (e *EString) literalValue() LiteralValue { return StringValue(e.Value) }

type ENumber struct {
	primitive
	Value float64
}

func (e *ENumber) literalValue() LiteralValue { return NumberValue(e.Value) }

type EBoolean struct {
	primitive
	Value bool
}

func (e *EBoolean) literalValue() LiteralValue { return BoolValue(e.Value) }

type ENull struct {
	primitive
}

func (e *ENull) literalValue() LiteralValue { return NullValue }

// Big integers are not folded
type EBigInt struct {
	primitive
	Value string
}

func (e *EBigInt) literalValue() LiteralValue { return UnknownValue }

type ERegExp struct {
	primitive
	Value string
}

func (e *ERegExp) literalValue() LiteralValue { return UnknownValue }

// A hole in an array literal such as "[, a]"
type EMissing struct {
	NodeBase
}

func (*EMissing) HasEffects(*InclusionContext) bool { return false }

func (*EMissing) GetLiteralValueAtPath(path Path, _ *PathTracker, _ DeoptimizableEntity) LiteralValue {
	if len(path) > 0 {
		return UnknownValue
	}
	return UndefinedValue
}

type TemplatePart struct {
	Value      Node
	TailCooked string
}

type ETemplate struct {
	NodeBase
	TagOrNil   Node
	HeadCooked string
	Parts      []TemplatePart

	callOptions *CallOptions
}

func (e *ETemplate) EachChild(fn func(Node)) {
	eachNonNil(fn, e.TagOrNil)
	for _, part := range e.Parts {
		fn(part.Value)
	}
}

func (e *ETemplate) initialise() {
	e.callOptions = &CallOptions{}
}

func (e *ETemplate) Bind() {
	e.NodeBase.Bind()
	if e.TagOrNil != nil {
		warnIfCallingNamespace(e.TagOrNil)
	}
}

func (e *ETemplate) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	if len(path) > 0 || e.TagOrNil != nil {
		return UnknownValue
	}
	text := e.HeadCooked
	for _, part := range e.Parts {
		value := part.Value.GetLiteralValueAtPath(EmptyPath, tracker, origin)
		str, ok := value.ToString()
		if !ok {
			return UnknownValue
		}
		text += str + part.TailCooked
	}
	return StringValue(text)
}

func (e *ETemplate) HasEffects(ctx *InclusionContext) bool {
	if e.NodeBase.HasEffects(ctx) {
		return true
	}
	return e.TagOrNil != nil && e.TagOrNil.HasEffectsWhenCalledAtPath(EmptyPath, e.callOptions, ctx)
}

func (e *ETemplate) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	if e.TagOrNil != nil {
		return len(path) > 0
	}
	return len(path) > 1
}

func (e *ETemplate) DeoptimizeCache() {}

////////////////////////////////////////////////////////////////////////////////
// Arrays

type EArray struct {
	NodeBase
	Items []Node
}

func (e *EArray) EachChild(fn func(Node)) {
	for _, item := range e.Items {
		fn(item)
	}
}

// Elements escape into an object whose contents are not tracked
func (e *EArray) Bind() {
	e.NodeBase.Bind()
	for _, item := range e.Items {
		item.DeoptimizePath(UnknownPath)
	}
}

func (e *EArray) GetReturnExpressionWhenCalledAtPath(path Path, _ *PathTracker, _ DeoptimizableEntity) Entity {
	if len(path) != 1 {
		return UnknownExpression
	}
	return memberReturnExpression(arrayMembers, path[0])
}

func (e *EArray) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 1
}

func (e *EArray) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	if len(path) == 1 {
		return memberHasEffectsWhenCalled(arrayMembers, path[0], e.Included, call, ctx)
	}
	return true
}

func (e *EArray) MayModifyThisWhenCalledAtPath(path Path, _ *PathTracker) bool {
	return len(path) != 1 || memberMutatesSelf(arrayMembers, path[0])
}

////////////////////////////////////////////////////////////////////////////////
// Calls

func isNamespace(v Variable) bool {
	switch v := v.(type) {
	case *NamespaceVariable:
		return true
	case *ExternalVariable:
		return v.IsNamespace()
	}
	return false
}

func warnIfCallingNamespace(callee Node) {
	id, ok := callee.(*EIdentifier)
	if !ok {
		return
	}
	if isNamespace(id.variable()) {
		id.host().Warn(logger.MsgID_JS_CallImportNamespace, id.Range, fmt.Sprintf(
			"Calling %q will crash at run-time because it's an import namespace object, not a function", id.Name))
	}
}

type ECall struct {
	NodeBase
	Target Node
	Args   []Node

	// True for calls marked with a "/* @__PURE__ */" comment
	CanBeUnwrappedIfUnused bool

	callOptions      *CallOptions
	returnExpression Entity

	expressionsToBeDeoptimized []DeoptimizableEntity
}

func (e *ECall) EachChild(fn func(Node)) {
	fn(e.Target)
	for _, arg := range e.Args {
		fn(arg)
	}
}

func (e *ECall) initialise() {
	e.callOptions = &CallOptions{Args: e.Args}
}

func (e *ECall) Bind() {
	e.NodeBase.Bind()
	warnIfCallingNamespace(e.Target)
	if id, ok := e.Target.(*EIdentifier); ok && id.Name == "eval" {
		if _, ok := id.variable().(*GlobalVariable); ok {
			e.host().Warn(logger.MsgID_JS_DirectEval, e.Target.Base().Range,
				"Using direct eval with a bundler is not recommended and may cause problems")
		}
	}
	tracker := &e.build().SharedTracker
	e.getReturnExpression(tracker)

	// The receiver of a method call may be modified by the method
	if member, ok := e.Target.(memberNode); ok && member.access().variable == nil &&
		e.Target.MayModifyThisWhenCalledAtPath(EmptyPath, tracker) {
		member.access().Target.DeoptimizePath(UnknownPath)
	}
	for _, arg := range e.Args {
		arg.DeoptimizePath(UnknownPath)
	}
}

func (e *ECall) getReturnExpression(tracker *PathTracker) Entity {
	if e.returnExpression == nil {
		e.returnExpression = UnknownExpression
		e.returnExpression = e.Target.GetReturnExpressionWhenCalledAtPath(EmptyPath, tracker, e)
	}
	return e.returnExpression
}

func (e *ECall) DeoptimizeCache() {
	if e.returnExpression != UnknownExpression {
		e.returnExpression = UnknownExpression
		consumers := e.expressionsToBeDeoptimized
		e.expressionsToBeDeoptimized = nil
		for _, consumer := range consumers {
			consumer.DeoptimizeCache()
		}
	}
}

func (e *ECall) DeoptimizePath(path Path) {
	if len(path) == 0 || e.build().DeoptimizationTracker.TrackEntityAtPathAndGetIfTracked(path, e) {
		return
	}
	returnExpression := e.getReturnExpression(&e.build().SharedTracker)
	if returnExpression != UnknownExpression {
		returnExpression.DeoptimizePath(path)
	}
}

func (e *ECall) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	returnExpression := e.getReturnExpression(tracker)
	if returnExpression == UnknownExpression || tracker.IsTracked(path, returnExpression) {
		return UnknownValue
	}
	if origin != nil {
		e.expressionsToBeDeoptimized = append(e.expressionsToBeDeoptimized, origin)
	}
	return WithTrackedEntityAtPath(tracker, path, returnExpression, func() LiteralValue {
		return returnExpression.GetLiteralValueAtPath(path, tracker, origin)
	}, UnknownValue)
}

func (e *ECall) GetReturnExpressionWhenCalledAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) Entity {
	returnExpression := e.getReturnExpression(tracker)
	if returnExpression == UnknownExpression || tracker.IsTracked(path, returnExpression) {
		return UnknownExpression
	}
	if origin != nil {
		e.expressionsToBeDeoptimized = append(e.expressionsToBeDeoptimized, origin)
	}
	return WithTrackedEntityAtPath(tracker, path, returnExpression, func() Entity {
		return returnExpression.GetReturnExpressionWhenCalledAtPath(path, tracker, origin)
	}, UnknownExpression)
}

func (e *ECall) HasEffects(ctx *InclusionContext) bool {
	if hasEffectsAny(ctx, e.Args) {
		return true
	}
	if e.CanBeUnwrappedIfUnused && e.build().treeShaking().Annotations {
		return false
	}
	return e.Target.HasEffects(ctx) || e.Target.HasEffectsWhenCalledAtPath(EmptyPath, e.callOptions, ctx)
}

func (e *ECall) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	if len(path) == 0 || ctx.Accessed.TrackEntityAtPathAndGetIfTracked(path, e) {
		return false
	}
	return e.getReturnExpression(&e.build().SharedTracker).HasEffectsWhenAccessedAtPath(path, ctx)
}

func (e *ECall) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	if len(path) == 0 {
		return true
	}
	if ctx.Assigned.TrackEntityAtPathAndGetIfTracked(path, e) {
		return false
	}
	return e.getReturnExpression(&e.build().SharedTracker).HasEffectsWhenAssignedAtPath(path, ctx)
}

func (e *ECall) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	if ctx.calledTracker(call).TrackEntityAtPathAndGetIfTracked(path, call, e) {
		return false
	}
	return e.getReturnExpression(&e.build().SharedTracker).HasEffectsWhenCalledAtPath(path, call, ctx)
}

func (e *ECall) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	if includeChildrenRecursively {
		e.NodeBase.Include(ctx, true)
	} else {
		e.Included = true
		e.Target.Include(ctx, false)
	}
	e.Target.IncludeCallArguments(ctx, e.Args)
}

func (e *ECall) MayModifyThisWhenCalledAtPath(path Path, tracker *PathTracker) bool {
	returnExpression := e.getReturnExpression(tracker)
	if tracker.IsTracked(path, returnExpression) {
		return false
	}
	return WithTrackedEntityAtPath(tracker, path, returnExpression, func() bool {
		return returnExpression.MayModifyThisWhenCalledAtPath(path, tracker)
	}, false)
}

type ENew struct {
	NodeBase
	Target Node
	Args   []Node

	CanBeUnwrappedIfUnused bool

	callOptions *CallOptions
}

func (e *ENew) EachChild(fn func(Node)) {
	fn(e.Target)
	for _, arg := range e.Args {
		fn(arg)
	}
}

func (e *ENew) initialise() {
	e.callOptions = &CallOptions{Args: e.Args, WithNew: true}
}

func (e *ENew) Bind() {
	e.NodeBase.Bind()
	for _, arg := range e.Args {
		arg.DeoptimizePath(UnknownPath)
	}
}

func (e *ENew) HasEffects(ctx *InclusionContext) bool {
	if hasEffectsAny(ctx, e.Args) {
		return true
	}
	if e.CanBeUnwrappedIfUnused && e.build().treeShaking().Annotations {
		return false
	}
	return e.Target.HasEffects(ctx) || e.Target.HasEffectsWhenCalledAtPath(EmptyPath, e.callOptions, ctx)
}

func (e *ENew) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 1
}

////////////////////////////////////////////////////////////////////////////////
// Member access

type memberNode interface {
	Node
	access() *memberAccess

	// The name of a non-computed property
	staticName() (string, bool)
	propertyOrNil() Node
	resolvePropertyKey() PathKey
}

// The shared state of "a.b" and "a[b]"
type memberAccess struct {
	NodeBase
	Target Node

	// Set if this reads a member of a namespace object that is known
	// statically. The expression then stands for that variable.
	variable Variable

	// Set if this reads a member of a namespace object that does not exist
	replacedWithUndefined bool

	bound               bool
	propertyKey         PathKey
	propertyKeyResolved bool

	wasPathDeoptimizedWhileOptimized bool
	expressionsToBeDeoptimized       []DeoptimizableEntity
}

func (m *memberAccess) access() *memberAccess {
	return m
}

func (m *memberAccess) node() memberNode {
	return m.self.(memberNode)
}

type namespacePathPart struct {
	name string
	r    logger.Range
}

// Returns the chain of names for "a.b.c" if every step is static
func staticMemberPath(node Node) ([]namespacePathPart, bool) {
	switch n := node.(type) {
	case *EIdentifier:
		return []namespacePathPart{{name: n.Name, r: n.Range}}, true
	case memberNode:
		name, ok := n.staticName()
		if !ok {
			return nil, false
		}
		parent, ok := staticMemberPath(n.access().Target)
		if !ok {
			return nil, false
		}
		return append(parent, namespacePathPart{name: name, r: n.Base().Range}), true
	}
	return nil, false
}

func (m *memberAccess) Bind() {
	if m.bound {
		return
	}
	m.bound = true
	if path, ok := staticMemberPath(m.self); ok {
		if base := m.Scope.FindVariable(path[0].name); isNamespace(base) {
			resolved, missing := m.resolveNamespaceVariables(base, path[1:])
			if missing {
				m.replacedWithUndefined = true
			} else if resolved != nil {
				m.variable = resolved
			}
		}
	}
	if m.variable == nil && !m.replacedWithUndefined {
		m.NodeBase.Bind()
	}
	m.getPropertyKey()
}

func (m *memberAccess) resolveNamespaceVariables(base Variable, path []namespacePathPart) (Variable, bool) {
	if len(path) == 0 {
		return base, false
	}
	if !isNamespace(base) {
		return nil, false
	}
	name := path[0].name
	var next Variable
	var exporter string
	switch ns := base.(type) {
	case *ExternalVariable:
		next = ns.External.GetVariableForExportName(name)
		exporter = ns.External.ID()
	case *NamespaceVariable:
		host := m.build().Module(ns.Module)
		next = host.LookupExport(name)
		exporter = host.ID()
	}
	if next == nil {
		m.host().Warn(logger.MsgID_Bundler_ImportIsUndefined, path[0].r, fmt.Sprintf(
			"Import %q will always be undefined because there is no matching export in %q", name, exporter))
		return nil, true
	}
	return m.resolveNamespaceVariables(next, path[1:])
}

func (m *memberAccess) getPropertyKey() PathKey {
	if !m.propertyKeyResolved {
		m.propertyKeyResolved = true
		m.propertyKey = UnknownKey
		m.propertyKey = m.node().resolvePropertyKey()
	}
	return m.propertyKey
}

func (m *memberAccess) DeoptimizeCache() {
	consumers := m.expressionsToBeDeoptimized
	m.expressionsToBeDeoptimized = nil
	m.propertyKey = UnknownKey
	if m.wasPathDeoptimizedWhileOptimized {
		m.Target.DeoptimizePath(UnknownPath)
	}
	for _, consumer := range consumers {
		consumer.DeoptimizeCache()
	}
}

func (m *memberAccess) DeoptimizePath(path Path) {
	m.Bind()
	if m.replacedWithUndefined {
		return
	}
	if len(path) == 0 {
		m.disallowNamespaceReassignment()
	}
	if m.variable != nil {
		m.variable.DeoptimizePath(path)
		return
	}
	key := m.getPropertyKey()
	if key.Unknown {
		m.Target.DeoptimizePath(UnknownPath)
	} else {
		m.wasPathDeoptimizedWhileOptimized = true
		m.Target.DeoptimizePath(path.Prepend(key))
	}
}

func (m *memberAccess) disallowNamespaceReassignment() {
	id, ok := m.Target.(*EIdentifier)
	if !ok || !isNamespace(m.Scope.FindVariable(id.Name)) {
		return
	}
	if m.variable != nil {
		m.host().IncludeVariableInModule(m.variable)
	}
	var source *logger.Source
	if host := m.host(); host != nil {
		source = host.Source()
	}
	m.build().Log.AddError(source, m.Range, fmt.Sprintf("Cannot assign to property on import %q", id.Name))
}

func (m *memberAccess) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	m.Bind()
	if m.replacedWithUndefined {
		return UndefinedExpression.GetLiteralValueAtPath(path, tracker, origin)
	}
	if m.variable != nil {
		return m.variable.GetLiteralValueAtPath(path, tracker, origin)
	}
	if origin != nil {
		m.expressionsToBeDeoptimized = append(m.expressionsToBeDeoptimized, origin)
	}
	return m.Target.GetLiteralValueAtPath(path.Prepend(m.getPropertyKey()), tracker, origin)
}

func (m *memberAccess) GetReturnExpressionWhenCalledAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) Entity {
	m.Bind()
	if m.replacedWithUndefined {
		return UnknownExpression
	}
	if m.variable != nil {
		return m.variable.GetReturnExpressionWhenCalledAtPath(path, tracker, origin)
	}
	if origin != nil {
		m.expressionsToBeDeoptimized = append(m.expressionsToBeDeoptimized, origin)
	}
	return m.Target.GetReturnExpressionWhenCalledAtPath(path.Prepend(m.getPropertyKey()), tracker, origin)
}

func (m *memberAccess) HasEffects(ctx *InclusionContext) bool {
	m.Bind()
	if m.variable != nil || m.replacedWithUndefined {
		return false
	}
	if property := m.node().propertyOrNil(); property != nil && property.HasEffects(ctx) {
		return true
	}
	return m.Target.HasEffects(ctx) || (m.build().treeShaking().PropertyReadSideEffects &&
		m.Target.HasEffectsWhenAccessedAtPath(Path{m.getPropertyKey()}, ctx))
}

func (m *memberAccess) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	if len(path) == 0 {
		return false
	}
	m.Bind()
	if m.replacedWithUndefined {
		return true
	}
	if m.variable != nil {
		return m.variable.HasEffectsWhenAccessedAtPath(path, ctx)
	}
	return m.Target.HasEffectsWhenAccessedAtPath(path.Prepend(m.getPropertyKey()), ctx)
}

func (m *memberAccess) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	m.Bind()
	if m.replacedWithUndefined {
		return true
	}
	if m.variable != nil {
		return m.variable.HasEffectsWhenAssignedAtPath(path, ctx)
	}
	return m.Target.HasEffectsWhenAssignedAtPath(path.Prepend(m.getPropertyKey()), ctx)
}

func (m *memberAccess) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	m.Bind()
	if m.replacedWithUndefined {
		return true
	}
	if m.variable != nil {
		return m.variable.HasEffectsWhenCalledAtPath(path, call, ctx)
	}
	return m.Target.HasEffectsWhenCalledAtPath(path.Prepend(m.getPropertyKey()), call, ctx)
}

func (m *memberAccess) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	if !m.Included {
		m.Included = true
		if m.variable != nil {
			m.host().IncludeVariableInModule(m.variable)
		}
	}
	if m.variable != nil || m.replacedWithUndefined {
		return
	}
	m.Target.Include(ctx, includeChildrenRecursively)
	if property := m.node().propertyOrNil(); property != nil {
		property.Include(ctx, includeChildrenRecursively)
	}
}

func (m *memberAccess) IncludeCallArguments(ctx *InclusionContext, args []Node) {
	if m.variable != nil {
		m.variable.IncludeCallArguments(ctx, args)
	} else {
		includeAll(ctx, args)
	}
}

func (m *memberAccess) MayModifyThisWhenCalledAtPath(path Path, tracker *PathTracker) bool {
	m.Bind()
	if m.replacedWithUndefined {
		return true
	}
	if m.variable != nil {
		return m.variable.MayModifyThisWhenCalledAtPath(path, tracker)
	}
	return m.Target.MayModifyThisWhenCalledAtPath(path.Prepend(m.getPropertyKey()), tracker)
}

// "a.b"
type EDot struct {
	memberAccess
	Name      string
	NameRange logger.Range
}

func (e *EDot) EachChild(fn func(Node)) { fn(e.Target) }

func (e *EDot) staticName() (string, bool)  { return e.Name, true }
func (e *EDot) propertyOrNil() Node         { return nil }
func (e *EDot) resolvePropertyKey() PathKey { return Key(e.Name) }

// "a[b]"
type EIndex struct {
	memberAccess
	Index Node
}

func (e *EIndex) EachChild(fn func(Node)) { fn(e.Target); fn(e.Index) }

func (e *EIndex) staticName() (string, bool) {
	if str, ok := e.Index.(*EString); ok {
		return str.Value, true
	}
	return "", false
}

func (e *EIndex) propertyOrNil() Node { return e.Index }

func (e *EIndex) resolvePropertyKey() PathKey {
	value := e.Index.GetLiteralValueAtPath(EmptyPath, &e.build().SharedTracker, e)
	if key, ok := value.ToPropertyKey(); ok {
		return key
	}
	return UnknownKey
}

// "#name" as in "this.#name" or "#name in obj"
type EPrivateIdentifier struct {
	NodeBase
	Name string
}

func (*EPrivateIdentifier) HasEffects(*InclusionContext) bool { return false }

////////////////////////////////////////////////////////////////////////////////
// Operators

type EAssign struct {
	NodeBase
	Op     OpCode
	Target Node
	Value  Node
}

func (e *EAssign) EachChild(fn func(Node)) { fn(e.Target); fn(e.Value) }

func (e *EAssign) Bind() {
	e.NodeBase.Bind()
	e.Target.DeoptimizePath(EmptyPath)
	e.Value.DeoptimizePath(UnknownPath)
}

func (e *EAssign) HasEffects(ctx *InclusionContext) bool {
	return e.Value.HasEffects(ctx) || e.Target.HasEffects(ctx) ||
		e.Target.HasEffectsWhenAssignedAtPath(EmptyPath, ctx)
}

func (e *EAssign) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	return len(path) > 0 && e.Value.HasEffectsWhenAccessedAtPath(path, ctx)
}

// The target of a plain assignment to an unused variable is dropped
func (e *EAssign) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	e.Included = true
	includeTarget := includeChildrenRecursively || e.Op != BinOpAssign || e.Target.Base().Included
	if !includeTarget {
		effects := NewHasEffectsContext()
		includeTarget = e.Target.HasEffects(effects) || e.Target.HasEffectsWhenAssignedAtPath(EmptyPath, effects)
	}
	if includeTarget {
		e.Target.Include(ctx, includeChildrenRecursively)
	}
	e.Value.Include(ctx, includeChildrenRecursively)
}

type EUpdate struct {
	NodeBase
	Op    OpCode
	Value Node
}

func (e *EUpdate) EachChild(fn func(Node)) { fn(e.Value) }

func (e *EUpdate) Bind() {
	e.NodeBase.Bind()
	e.Value.DeoptimizePath(EmptyPath)
}

func (e *EUpdate) HasEffects(ctx *InclusionContext) bool {
	return e.Value.HasEffects(ctx) || e.Value.HasEffectsWhenAssignedAtPath(EmptyPath, ctx)
}

func (e *EUpdate) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 1
}

type EUnary struct {
	NodeBase
	Op    OpCode
	Value Node
}

func (e *EUnary) EachChild(fn func(Node)) { fn(e.Value) }

func (e *EUnary) Bind() {
	e.NodeBase.Bind()
	if e.Op == UnOpDelete {
		e.Value.DeoptimizePath(EmptyPath)
	}
}

func (e *EUnary) DeoptimizeCache() {}

func (e *EUnary) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	if len(path) > 0 {
		return UnknownValue
	}
	return FoldUnary(e.Op, e.Value.GetLiteralValueAtPath(EmptyPath, tracker, origin))
}

func (e *EUnary) HasEffects(ctx *InclusionContext) bool {
	switch e.Op {
	case UnOpDelete:
		return true
	case UnOpTypeof:
		if _, ok := e.Value.(*EIdentifier); ok {
			return false
		}
	}
	return e.Value.HasEffects(ctx)
}

func (e *EUnary) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	if e.Op == UnOpVoid {
		return len(path) > 0
	}
	return len(path) > 1
}

type EBinary struct {
	NodeBase
	Op    OpCode
	Left  Node
	Right Node
}

func (e *EBinary) EachChild(fn func(Node)) { fn(e.Left); fn(e.Right) }

func (e *EBinary) DeoptimizeCache() {}

func (e *EBinary) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	if len(path) > 0 {
		return UnknownValue
	}
	left := e.Left.GetLiteralValueAtPath(EmptyPath, tracker, origin)
	if left.IsUnknown() {
		return UnknownValue
	}
	return FoldBinary(e.Op, left, e.Right.GetLiteralValueAtPath(EmptyPath, tracker, origin))
}

// A statement "'' + x" exists to call "x.toString()"
func (e *EBinary) HasEffects(ctx *InclusionContext) bool {
	if _, ok := e.Parent.(*SExpr); ok && e.Op == BinOpAdd {
		left := e.Left.GetLiteralValueAtPath(EmptyPath, &e.build().SharedTracker, e)
		if left.Kind == LiteralString && left.String == "" {
			return true
		}
	}
	return e.NodeBase.HasEffects(ctx)
}

func (e *EBinary) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 1
}

// The branch-selecting expressions "a || b", "a && b", "a ?? b" and "a ? b : c"
// share this. Once the taken branch is known the other one is ignored.
type branching struct {
	NodeBase

	usedBranch Node
	analysed   bool

	expressionsToBeDeoptimized []DeoptimizableEntity
}

type branchingNode interface {
	Node
	branches() []Node
	selectBranch() Node
	unusedBranch(used Node) Node
}

func (b *branching) node() branchingNode {
	return b.self.(branchingNode)
}

func (b *branching) getUsedBranch() Node {
	if !b.analysed {
		b.analysed = true
		b.usedBranch = b.node().selectBranch()
	}
	return b.usedBranch
}

func (b *branching) Bind() {
	b.NodeBase.Bind()
	b.getUsedBranch()
}

func (b *branching) DeoptimizeCache() {
	if b.usedBranch != nil {
		unused := b.node().unusedBranch(b.usedBranch)
		b.usedBranch = nil
		unused.DeoptimizePath(UnknownPath)
		consumers := b.expressionsToBeDeoptimized
		b.expressionsToBeDeoptimized = nil
		for _, consumer := range consumers {
			consumer.DeoptimizeCache()
		}
	}
}

func (b *branching) DeoptimizePath(path Path) {
	if len(path) == 0 {
		return
	}
	if used := b.getUsedBranch(); used != nil {
		used.DeoptimizePath(path)
		return
	}
	for _, branch := range b.node().branches() {
		branch.DeoptimizePath(path)
	}
}

func (b *branching) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	used := b.getUsedBranch()
	if used == nil {
		return UnknownValue
	}
	if origin != nil {
		b.expressionsToBeDeoptimized = append(b.expressionsToBeDeoptimized, origin)
	}
	return used.GetLiteralValueAtPath(path, tracker, origin)
}

func (b *branching) GetReturnExpressionWhenCalledAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) Entity {
	used := b.getUsedBranch()
	if used == nil {
		branches := b.node().branches()
		results := make([]Entity, len(branches))
		for i, branch := range branches {
			results[i] = branch.GetReturnExpressionWhenCalledAtPath(path, tracker, origin)
		}
		return newMultiExpression(results...)
	}
	if origin != nil {
		b.expressionsToBeDeoptimized = append(b.expressionsToBeDeoptimized, origin)
	}
	return used.GetReturnExpressionWhenCalledAtPath(path, tracker, origin)
}

func (b *branching) candidates() []Node {
	if used := b.getUsedBranch(); used != nil {
		return []Node{used}
	}
	return b.node().branches()
}

func (b *branching) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	if len(path) == 0 {
		return false
	}
	for _, branch := range b.candidates() {
		if branch.HasEffectsWhenAccessedAtPath(path, ctx) {
			return true
		}
	}
	return false
}

func (b *branching) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	if len(path) == 0 {
		return true
	}
	for _, branch := range b.candidates() {
		if branch.HasEffectsWhenAssignedAtPath(path, ctx) {
			return true
		}
	}
	return false
}

func (b *branching) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	for _, branch := range b.candidates() {
		if branch.HasEffectsWhenCalledAtPath(path, call, ctx) {
			return true
		}
	}
	return false
}

func (b *branching) IncludeCallArguments(ctx *InclusionContext, args []Node) {
	for _, branch := range b.candidates() {
		branch.IncludeCallArguments(ctx, args)
	}
}

func (b *branching) MayModifyThisWhenCalledAtPath(path Path, tracker *PathTracker) bool {
	for _, branch := range b.candidates() {
		if branch.MayModifyThisWhenCalledAtPath(path, tracker) {
			return true
		}
	}
	return false
}

// "a || b", "a && b" and "a ?? b"
type ELogical struct {
	branching
	Op    OpCode
	Left  Node
	Right Node
}

func (e *ELogical) EachChild(fn func(Node)) { fn(e.Left); fn(e.Right) }
func (e *ELogical) branches() []Node        { return []Node{e.Left, e.Right} }

func (e *ELogical) selectBranch() Node {
	left := e.Left.GetLiteralValueAtPath(EmptyPath, &e.build().SharedTracker, e)
	if left.IsUnknown() {
		return nil
	}
	truthy, _ := left.Truthy()
	switch {
	case e.Op == BinOpLogicalOr && truthy,
		e.Op == BinOpLogicalAnd && !truthy,
		e.Op == BinOpNullishCoalescing && !left.IsNullOrUndefined():
		return e.Left
	}
	return e.Right
}

func (e *ELogical) unusedBranch(used Node) Node {
	if used == e.Left {
		return e.Right
	}
	return e.Left
}

func (e *ELogical) HasEffects(ctx *InclusionContext) bool {
	if e.Left.HasEffects(ctx) {
		return true
	}
	if e.getUsedBranch() != e.Left {
		return e.Right.HasEffects(ctx)
	}
	return false
}

func (e *ELogical) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	e.Included = true
	used := e.getUsedBranch()
	if includeChildrenRecursively || used == nil || (used == e.Right && e.Left.ShouldBeIncluded(ctx)) {
		e.Left.Include(ctx, includeChildrenRecursively)
		e.Right.Include(ctx, includeChildrenRecursively)
	} else {
		used.Include(ctx, includeChildrenRecursively)
	}
}

// "a ? b : c"
type EIf struct {
	branching
	Test Node
	Yes  Node
	No   Node
}

func (e *EIf) EachChild(fn func(Node)) { fn(e.Test); fn(e.Yes); fn(e.No) }
func (e *EIf) branches() []Node        { return []Node{e.Yes, e.No} }

func (e *EIf) selectBranch() Node {
	truthy, known := e.Test.GetLiteralValueAtPath(EmptyPath, &e.build().SharedTracker, e).Truthy()
	if !known {
		return nil
	}
	if truthy {
		return e.Yes
	}
	return e.No
}

func (e *EIf) unusedBranch(used Node) Node {
	if used == e.Yes {
		return e.No
	}
	return e.Yes
}

func (e *EIf) HasEffects(ctx *InclusionContext) bool {
	if e.Test.HasEffects(ctx) {
		return true
	}
	if used := e.getUsedBranch(); used != nil {
		return used.HasEffects(ctx)
	}
	return e.Yes.HasEffects(ctx) || e.No.HasEffects(ctx)
}

func (e *EIf) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	e.Included = true
	used := e.getUsedBranch()
	if includeChildrenRecursively || used == nil || e.Test.ShouldBeIncluded(ctx) {
		e.Test.Include(ctx, includeChildrenRecursively)
		e.Yes.Include(ctx, includeChildrenRecursively)
		e.No.Include(ctx, includeChildrenRecursively)
	} else {
		used.Include(ctx, includeChildrenRecursively)
	}
}

// "a, b, c"
type ESequence struct {
	NodeBase
	Exprs []Node
}

func (e *ESequence) EachChild(fn func(Node)) {
	for _, expr := range e.Exprs {
		fn(expr)
	}
}

func (e *ESequence) last() Node {
	return e.Exprs[len(e.Exprs)-1]
}

func (e *ESequence) DeoptimizePath(path Path) {
	if len(path) > 0 {
		e.last().DeoptimizePath(path)
	}
}

func (e *ESequence) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	return e.last().GetLiteralValueAtPath(path, tracker, origin)
}

func (e *ESequence) GetReturnExpressionWhenCalledAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) Entity {
	return e.last().GetReturnExpressionWhenCalledAtPath(path, tracker, origin)
}

func (e *ESequence) HasEffects(ctx *InclusionContext) bool {
	return hasEffectsAny(ctx, e.Exprs)
}

func (e *ESequence) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	return len(path) > 0 && e.last().HasEffectsWhenAccessedAtPath(path, ctx)
}

func (e *ESequence) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	return len(path) == 0 || e.last().HasEffectsWhenAssignedAtPath(path, ctx)
}

func (e *ESequence) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	return e.last().HasEffectsWhenCalledAtPath(path, call, ctx)
}

func (e *ESequence) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	e.Included = true
	for _, expr := range e.Exprs[:len(e.Exprs)-1] {
		if includeChildrenRecursively || expr.ShouldBeIncluded(ctx) {
			expr.Include(ctx, includeChildrenRecursively)
		}
	}
	e.last().Include(ctx, includeChildrenRecursively)
}

func (e *ESequence) MayModifyThisWhenCalledAtPath(path Path, tracker *PathTracker) bool {
	return e.last().MayModifyThisWhenCalledAtPath(path, tracker)
}

// Suspending is only an effect outside of a function body being analyzed as
// a callee
type EAwait struct {
	NodeBase
	Value Node
}

func (e *EAwait) EachChild(fn func(Node)) { fn(e.Value) }

func (e *EAwait) HasEffects(ctx *InclusionContext) bool {
	return !ctx.Ignore.ReturnAwaitYield || e.Value.HasEffects(ctx)
}

type EYield struct {
	NodeBase
	ValueOrNil Node
	IsStar     bool
}

func (e *EYield) EachChild(fn func(Node)) { eachNonNil(fn, e.ValueOrNil) }

func (e *EYield) Bind() {
	e.NodeBase.Bind()
	if e.ValueOrNil != nil {
		e.ValueOrNil.DeoptimizePath(UnknownPath)
	}
}

func (e *EYield) HasEffects(ctx *InclusionContext) bool {
	return !ctx.Ignore.ReturnAwaitYield || (e.ValueOrNil != nil && e.ValueOrNil.HasEffects(ctx))
}

// "...a" in calls and array literals
type ESpread struct {
	NodeBase
	Value Node
}

func (e *ESpread) EachChild(fn func(Node)) { fn(e.Value) }

// Only properties of properties of the spread value can be reassigned. This
// also covers the values returned by its iterator.
func (e *ESpread) Bind() {
	e.NodeBase.Bind()
	e.Value.DeoptimizePath(Path{UnknownKey, UnknownKey})
}

type EImportCall struct {
	NodeBase
	Expr Node

	// Valid if the argument is a string literal
	ImportRecordIndex ast.Index32
}

func (e *EImportCall) EachChild(fn func(Node)) { fn(e.Expr) }

func (*EImportCall) HasEffects(*InclusionContext) bool { return true }

func (e *EImportCall) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	if !e.Included {
		e.Included = true
		e.host().IncludeDynamicImport(e)
	}
	e.Expr.Include(ctx, includeChildrenRecursively)
}

type EImportMeta struct {
	NodeBase
}

func (*EImportMeta) HasEffects(*InclusionContext) bool { return false }

func (*EImportMeta) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 1
}

type ENewTarget struct {
	NodeBase
}

func (*ENewTarget) HasEffects(*InclusionContext) bool { return false }

func (*ENewTarget) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 1
}
