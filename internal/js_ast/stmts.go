package js_ast

import (
	"github.com/evanw/treeshake/internal/ast"
	"github.com/evanw/treeshake/internal/logger"
)

type Program struct {
	NodeBase
	Stmts         []Node
	ImportRecords []ast.ImportRecord

	hasCachedEffect bool
}

func (p *Program) EachChild(fn func(Node)) {
	for _, stmt := range p.Stmts {
		fn(stmt)
	}
}

func (p *Program) HasEffects(ctx *InclusionContext) bool {
	if p.hasCachedEffect {
		return true
	}
	for _, stmt := range p.Stmts {
		if stmt.HasEffects(ctx) {
			p.hasCachedEffect = true
			return true
		}
	}
	return false
}

func (p *Program) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	p.Included = true
	includeStatements(ctx, p.Stmts, includeChildrenRecursively)
}

func includeStatements(ctx *InclusionContext, stmts []Node, includeChildrenRecursively bool) {
	for _, stmt := range stmts {
		if includeChildrenRecursively || stmt.ShouldBeIncluded(ctx) {
			stmt.Include(ctx, includeChildrenRecursively)
		}
	}
}

// Statements after one that breaks the flow are not reached
func statementsHaveEffects(ctx *InclusionContext, stmts []Node) bool {
	for _, stmt := range stmts {
		if stmt.HasEffects(ctx) {
			return true
		}
		if ctx.BrokenFlow != BrokenFlowNone {
			break
		}
	}
	return false
}

// Blocks whose direct block child shares their scope
type blockScopePreventer interface {
	preventsChildBlockScope()
}

type SBlock struct {
	NodeBase
	Stmts []Node
}

func (s *SBlock) EachChild(fn func(Node)) {
	for _, stmt := range s.Stmts {
		fn(stmt)
	}
}

func (s *SBlock) createScope(parent *Scope) *Scope {
	if _, ok := s.Parent.(blockScopePreventer); ok {
		return parent
	}
	return parent.newChild(ScopeBlock)
}

func (s *SBlock) HasEffects(ctx *InclusionContext) bool {
	return statementsHaveEffects(ctx, s.Stmts)
}

func (s *SBlock) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	s.Included = true
	includeStatements(ctx, s.Stmts, includeChildrenRecursively)
}

// Falling off the end of a function body returns undefined
func (s *SBlock) addImplicitReturnExpressionToScope(scope *Scope) {
	if len(s.Stmts) > 0 {
		if _, ok := s.Stmts[len(s.Stmts)-1].(*SReturn); ok {
			return
		}
	}
	scope.AddReturnExpression(UndefinedExpression)
}

type SExpr struct {
	NodeBase
	Value Node
}

func (s *SExpr) EachChild(fn func(Node)) { fn(s.Value) }

type SEmpty struct{ NodeBase }

func (*SEmpty) HasEffects(*InclusionContext) bool { return false }

// Pausing in a debugger is observable
type SDebugger struct{ NodeBase }

func (*SDebugger) HasEffects(*InclusionContext) bool { return true }

////////////////////////////////////////////////////////////////////////////////
// Declarations

type LocalKind uint8

const (
	LocalVar LocalKind = iota
	LocalLet
	LocalConst
)

func (kind LocalKind) declKind() DeclKind {
	switch kind {
	case LocalLet:
		return DeclLet
	case LocalConst:
		return DeclConst
	}
	return DeclVar
}

type SLocal struct {
	NodeBase
	Decls    []*Decl
	Kind     LocalKind
	IsExport bool
}

func (s *SLocal) EachChild(fn func(Node)) {
	for _, decl := range s.Decls {
		fn(decl)
	}
}

func (s *SLocal) initialise() {
	for _, decl := range s.Decls {
		decl.declare(s.Kind.declKind())
	}
}

func (s *SLocal) DeoptimizePath(path Path) {
	for _, decl := range s.Decls {
		decl.DeoptimizePath(path)
	}
}

func (s *SLocal) HasEffectsWhenAssignedAtPath(Path, *InclusionContext) bool {
	return false
}

func (s *SLocal) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	s.Included = true
	for _, decl := range s.Decls {
		if includeChildrenRecursively || decl.ShouldBeIncluded(ctx) {
			decl.Include(ctx, includeChildrenRecursively)
		}
	}
}

type Decl struct {
	NodeBase
	Binding    Node
	ValueOrNil Node
}

func (d *Decl) EachChild(fn func(Node)) {
	eachNonNil(fn, d.Binding, d.ValueOrNil)
}

func (d *Decl) declare(kind DeclKind) {
	var init Entity = UndefinedExpression
	if d.ValueOrNil != nil {
		init = d.ValueOrNil
	}
	d.Binding.(pattern).declare(kind, init)
}

func (d *Decl) DeoptimizePath(path Path) {
	d.Binding.DeoptimizePath(path)
}

func (d *Decl) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	d.Included = true
	if includeChildrenRecursively || d.Binding.ShouldBeIncluded(ctx) {
		d.Binding.Include(ctx, includeChildrenRecursively)
	}
	if d.ValueOrNil != nil {
		d.ValueOrNil.Include(ctx, includeChildrenRecursively)
	}
}

type SFunction struct {
	NodeBase
	Fn       *EFunction
	IsExport bool
}

func (s *SFunction) EachChild(fn func(Node)) { fn(s.Fn) }

func (*SFunction) HasEffects(*InclusionContext) bool { return false }

type SClass struct {
	NodeBase
	Class    *EClass
	IsExport bool
}

func (s *SClass) EachChild(fn func(Node)) { fn(s.Class) }

////////////////////////////////////////////////////////////////////////////////
// Control flow

type SReturn struct {
	NodeBase
	ValueOrNil Node
}

func (s *SReturn) EachChild(fn func(Node)) { eachNonNil(fn, s.ValueOrNil) }

func (s *SReturn) initialise() {
	if s.ValueOrNil != nil {
		s.Scope.AddReturnExpression(s.ValueOrNil)
	} else {
		s.Scope.AddReturnExpression(UndefinedExpression)
	}
}

func (s *SReturn) HasEffects(ctx *InclusionContext) bool {
	if !ctx.Ignore.ReturnAwaitYield || (s.ValueOrNil != nil && s.ValueOrNil.HasEffects(ctx)) {
		return true
	}
	ctx.BrokenFlow = BrokenFlowErrorReturn
	return false
}

func (s *SReturn) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	s.Included = true
	if s.ValueOrNil != nil {
		s.ValueOrNil.Include(ctx, includeChildrenRecursively)
	}
	ctx.BrokenFlow = BrokenFlowErrorReturn
}

type SThrow struct {
	NodeBase
	Value Node
}

func (s *SThrow) EachChild(fn func(Node)) { fn(s.Value) }

func (*SThrow) HasEffects(*InclusionContext) bool { return true }

func (s *SThrow) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	s.Included = true
	s.Value.Include(ctx, includeChildrenRecursively)
	ctx.BrokenFlow = BrokenFlowErrorReturn
}

type SIf struct {
	NodeBase
	Test    Node
	Yes     Node
	NoOrNil Node

	testValue         LiteralValue
	testValueResolved bool
}

func (s *SIf) EachChild(fn func(Node)) { eachNonNil(fn, s.Test, s.Yes, s.NoOrNil) }

func (s *SIf) Bind() {
	s.NodeBase.Bind()
	s.getTestValue()
}

func (s *SIf) DeoptimizeCache() {
	s.testValue = UnknownValue
}

func (s *SIf) getTestValue() LiteralValue {
	if !s.testValueResolved {
		s.testValueResolved = true
		s.testValue = s.Test.GetLiteralValueAtPath(EmptyPath, &s.build().SharedTracker, s)
	}
	return s.testValue
}

func (s *SIf) HasEffects(ctx *InclusionContext) bool {
	if s.Test.HasEffects(ctx) {
		return true
	}
	truthy, known := s.getTestValue().Truthy()
	if !known {
		brokenFlow := ctx.BrokenFlow
		if s.Yes.HasEffects(ctx) {
			return true
		}
		yesBrokenFlow := ctx.BrokenFlow
		ctx.BrokenFlow = brokenFlow
		if s.NoOrNil == nil {
			return false
		}
		if s.NoOrNil.HasEffects(ctx) {
			return true
		}
		ctx.BrokenFlow = minBrokenFlow(ctx.BrokenFlow, yesBrokenFlow)
		return false
	}
	if truthy {
		return s.Yes.HasEffects(ctx)
	}
	return s.NoOrNil != nil && s.NoOrNil.HasEffects(ctx)
}

func (s *SIf) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	s.Included = true
	if includeChildrenRecursively {
		eachNonNil(func(child Node) { child.Include(ctx, true) }, s.Test, s.Yes, s.NoOrNil)
		return
	}
	truthy, known := s.getTestValue().Truthy()
	if !known {
		s.includeUnknownTest(ctx)
		return
	}
	if s.Test.ShouldBeIncluded(ctx) {
		s.Test.Include(ctx, false)
	}
	if truthy && s.Yes.ShouldBeIncluded(ctx) {
		s.Yes.Include(ctx, false)
	}
	if !truthy && s.NoOrNil != nil && s.NoOrNil.ShouldBeIncluded(ctx) {
		s.NoOrNil.Include(ctx, false)
	}
}

func (s *SIf) includeUnknownTest(ctx *InclusionContext) {
	s.Test.Include(ctx, false)
	brokenFlow := ctx.BrokenFlow
	yesBrokenFlow := BrokenFlowNone
	if s.Yes.ShouldBeIncluded(ctx) {
		s.Yes.Include(ctx, false)
		yesBrokenFlow = ctx.BrokenFlow
		ctx.BrokenFlow = brokenFlow
	}
	if s.NoOrNil != nil && s.NoOrNil.ShouldBeIncluded(ctx) {
		s.NoOrNil.Include(ctx, false)
		ctx.BrokenFlow = minBrokenFlow(ctx.BrokenFlow, yesBrokenFlow)
	}
}

// Analyzes a loop body with its own breaks and continues absorbed. The flow
// after the loop is whatever it was before the loop.
func loopBodyHasEffects(ctx *InclusionContext, body Node) bool {
	brokenFlow := ctx.BrokenFlow
	breaks, continues := ctx.Ignore.Breaks, ctx.Ignore.Continues
	ctx.Ignore.Breaks = true
	ctx.Ignore.Continues = true
	if body.HasEffects(ctx) {
		return true
	}
	ctx.Ignore.Breaks = breaks
	ctx.Ignore.Continues = continues
	ctx.BrokenFlow = brokenFlow
	return false
}

func includeLoopBody(ctx *InclusionContext, body Node, includeChildrenRecursively bool) {
	brokenFlow := ctx.BrokenFlow
	body.Include(ctx, includeChildrenRecursively)
	ctx.BrokenFlow = brokenFlow
}

type SWhile struct {
	NodeBase
	Test Node
	Body Node
}

func (s *SWhile) EachChild(fn func(Node)) { fn(s.Test); fn(s.Body) }

func (s *SWhile) HasEffects(ctx *InclusionContext) bool {
	return s.Test.HasEffects(ctx) || loopBodyHasEffects(ctx, s.Body)
}

func (s *SWhile) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	s.Included = true
	s.Test.Include(ctx, includeChildrenRecursively)
	includeLoopBody(ctx, s.Body, includeChildrenRecursively)
}

type SDoWhile struct {
	NodeBase
	Body Node
	Test Node
}

func (s *SDoWhile) EachChild(fn func(Node)) { fn(s.Body); fn(s.Test) }

func (s *SDoWhile) HasEffects(ctx *InclusionContext) bool {
	return s.Test.HasEffects(ctx) || loopBodyHasEffects(ctx, s.Body)
}

func (s *SDoWhile) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	s.Included = true
	includeLoopBody(ctx, s.Body, includeChildrenRecursively)
	s.Test.Include(ctx, includeChildrenRecursively)
}

type SFor struct {
	NodeBase
	InitOrNil   Node
	TestOrNil   Node
	UpdateOrNil Node
	Body        Node
}

func (s *SFor) EachChild(fn func(Node)) {
	eachNonNil(fn, s.InitOrNil, s.TestOrNil, s.UpdateOrNil, s.Body)
}

func (s *SFor) createScope(parent *Scope) *Scope {
	return parent.newChild(ScopeBlock)
}

func (s *SFor) HasEffects(ctx *InclusionContext) bool {
	if hasEffectsAny(ctx, []Node{s.InitOrNil, s.TestOrNil, s.UpdateOrNil}) {
		return true
	}
	return loopBodyHasEffects(ctx, s.Body)
}

func (s *SFor) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	s.Included = true
	eachNonNil(func(child Node) {
		child.Include(ctx, includeChildrenRecursively)
	}, s.InitOrNil, s.TestOrNil)
	brokenFlow := ctx.BrokenFlow
	if s.UpdateOrNil != nil {
		s.UpdateOrNil.Include(ctx, includeChildrenRecursively)
	}
	s.Body.Include(ctx, includeChildrenRecursively)
	ctx.BrokenFlow = brokenFlow
}

// The shared part of "for-in" and "for-of" loops. The left side is written
// to on every iteration with a value that is not known.
type forEachLoop struct {
	NodeBase
	Init  Node
	Value Node
	Body  Node
}

func (s *forEachLoop) EachChild(fn func(Node)) { fn(s.Init); fn(s.Value); fn(s.Body) }

func (s *forEachLoop) createScope(parent *Scope) *Scope {
	return parent.newChild(ScopeBlock)
}

func (s *forEachLoop) Bind() {
	s.Init.Bind()
	s.Init.DeoptimizePath(EmptyPath)
	s.Value.Bind()
	s.Body.Bind()
}

func (s *forEachLoop) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	s.Included = true
	s.Init.Include(ctx, true)
	s.Init.DeoptimizePath(EmptyPath)
	s.Value.Include(ctx, includeChildrenRecursively)
	includeLoopBody(ctx, s.Body, includeChildrenRecursively)
}

type SForIn struct{ forEachLoop }

func (s *SForIn) HasEffects(ctx *InclusionContext) bool {
	if s.Init.HasEffects(ctx) || s.Init.HasEffectsWhenAssignedAtPath(EmptyPath, ctx) || s.Value.HasEffects(ctx) {
		return true
	}
	return loopBodyHasEffects(ctx, s.Body)
}

// Iterating calls into an iterator that can do anything
type SForOf struct {
	forEachLoop
	IsAwait bool
}

func (*SForOf) HasEffects(*InclusionContext) bool { return true }

type SBreak struct {
	NodeBase
	Label string
}

func (s *SBreak) HasEffects(ctx *InclusionContext) bool {
	if s.Label != "" {
		if !ctx.Ignore.hasLabel(s.Label) {
			return true
		}
		ctx.includeLabel(s.Label)
		ctx.BrokenFlow = BrokenFlowErrorReturn
		return false
	}
	if !ctx.Ignore.Breaks {
		return true
	}
	ctx.BrokenFlow = BrokenFlowBreakContinue
	return false
}

func (s *SBreak) Include(ctx *InclusionContext, _ bool) {
	s.Included = true
	includeJump(ctx, s.Label)
}

type SContinue struct {
	NodeBase
	Label string
}

func (s *SContinue) HasEffects(ctx *InclusionContext) bool {
	if s.Label != "" {
		if !ctx.Ignore.hasLabel(s.Label) {
			return true
		}
		ctx.includeLabel(s.Label)
		ctx.BrokenFlow = BrokenFlowErrorReturn
		return false
	}
	if !ctx.Ignore.Continues {
		return true
	}
	ctx.BrokenFlow = BrokenFlowBreakContinue
	return false
}

func (s *SContinue) Include(ctx *InclusionContext, _ bool) {
	s.Included = true
	includeJump(ctx, s.Label)
}

func includeJump(ctx *InclusionContext, label string) {
	if label != "" {
		ctx.includeLabel(label)
		ctx.BrokenFlow = BrokenFlowErrorReturn
	} else {
		ctx.BrokenFlow = BrokenFlowBreakContinue
	}
}

type SLabel struct {
	NodeBase
	Name      string
	NameRange logger.Range
	Stmt      Node
}

func (s *SLabel) EachChild(fn func(Node)) { fn(s.Stmt) }

func (s *SLabel) HasEffects(ctx *InclusionContext) bool {
	brokenFlow := ctx.BrokenFlow
	ctx.Ignore.addLabel(s.Name)
	if s.Stmt.HasEffects(ctx) {
		return true
	}
	ctx.Ignore.removeLabel(s.Name)
	if ctx.IncludedLabels[s.Name] {
		delete(ctx.IncludedLabels, s.Name)
		ctx.BrokenFlow = brokenFlow
	}
	return false
}

func (s *SLabel) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	s.Included = true
	brokenFlow := ctx.BrokenFlow
	s.Stmt.Include(ctx, includeChildrenRecursively)
	if includeChildrenRecursively || ctx.IncludedLabels[s.Name] {
		delete(ctx.IncludedLabels, s.Name)
		ctx.BrokenFlow = brokenFlow
	}
}

// No broken-flow level is this high. It marks "no case seen yet".
const brokenFlowUnset BrokenFlow = 255

type SSwitch struct {
	NodeBase
	Test  Node
	Cases []*Case

	defaultCase int
}

func (s *SSwitch) EachChild(fn func(Node)) {
	fn(s.Test)
	for _, c := range s.Cases {
		fn(c)
	}
}

func (s *SSwitch) createScope(parent *Scope) *Scope {
	return parent.newChild(ScopeBlock)
}

func (s *SSwitch) initialise() {
	s.defaultCase = -1
	for i, c := range s.Cases {
		if c.ValueOrNil == nil {
			s.defaultCase = i
			break
		}
	}
}

func (s *SSwitch) HasEffects(ctx *InclusionContext) bool {
	if s.Test.HasEffects(ctx) {
		return true
	}
	brokenFlow := ctx.BrokenFlow
	breaks := ctx.Ignore.Breaks
	min := brokenFlowUnset
	ctx.Ignore.Breaks = true
	for _, c := range s.Cases {
		if c.HasEffects(ctx) {
			return true
		}
		min = minBrokenFlow(min, ctx.BrokenFlow)
		ctx.BrokenFlow = brokenFlow
	}
	if s.defaultCase != -1 && min != BrokenFlowBreakContinue {
		ctx.BrokenFlow = min
	}
	ctx.Ignore.Breaks = breaks
	return false
}

// Cases are visited last to first because falling through from an included
// case into a later one means the later one is needed too
func (s *SSwitch) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	s.Included = true
	s.Test.Include(ctx, includeChildrenRecursively)
	brokenFlow := ctx.BrokenFlow
	min := brokenFlowUnset
	isCaseIncluded := includeChildrenRecursively || (s.defaultCase != -1 && s.defaultCase < len(s.Cases)-1)
	for i := len(s.Cases) - 1; i >= 0; i-- {
		c := s.Cases[i]
		if c.Included {
			isCaseIncluded = true
		}
		if !isCaseIncluded {
			effects := NewHasEffectsContext()
			effects.Ignore.Breaks = true
			isCaseIncluded = c.HasEffects(effects)
		}
		if isCaseIncluded {
			c.Include(ctx, includeChildrenRecursively)
			min = minBrokenFlow(min, ctx.BrokenFlow)
			ctx.BrokenFlow = brokenFlow
		} else {
			min = brokenFlow
		}
	}
	if isCaseIncluded && s.defaultCase != -1 && min != BrokenFlowBreakContinue {
		ctx.BrokenFlow = min
	}
}

type Case struct {
	NodeBase
	ValueOrNil Node
	Body       []Node
}

func (c *Case) EachChild(fn func(Node)) {
	eachNonNil(fn, c.ValueOrNil)
	for _, stmt := range c.Body {
		fn(stmt)
	}
}

func (c *Case) HasEffects(ctx *InclusionContext) bool {
	if c.ValueOrNil != nil && c.ValueOrNil.HasEffects(ctx) {
		return true
	}
	for _, stmt := range c.Body {
		if ctx.BrokenFlow != BrokenFlowNone {
			break
		}
		if stmt.HasEffects(ctx) {
			return true
		}
	}
	return false
}

func (c *Case) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	c.Included = true
	if c.ValueOrNil != nil {
		c.ValueOrNil.Include(ctx, includeChildrenRecursively)
	}
	includeStatements(ctx, c.Body, includeChildrenRecursively)
}

type STry struct {
	NodeBase
	Block        *SBlock
	CatchOrNil   *Catch
	FinallyOrNil *SBlock

	directlyIncluded bool
}

func (s *STry) EachChild(fn func(Node)) {
	fn(s.Block)
	if s.CatchOrNil != nil {
		fn(s.CatchOrNil)
	}
	if s.FinallyOrNil != nil {
		fn(s.FinallyOrNil)
	}
}

// With try-catch deoptimization, any non-empty try block counts as an
// effect since removing code from it could change which error is caught
func (s *STry) HasEffects(ctx *InclusionContext) bool {
	var blockEffects bool
	if s.build().treeShaking().TryCatchDeoptimization {
		blockEffects = len(s.Block.Stmts) > 0
	} else {
		blockEffects = s.Block.HasEffects(ctx)
	}
	return blockEffects || (s.FinallyOrNil != nil && s.FinallyOrNil.HasEffects(ctx))
}

func (s *STry) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	deoptimize := s.build().treeShaking().TryCatchDeoptimization
	brokenFlow := ctx.BrokenFlow
	if !s.directlyIncluded || !deoptimize {
		s.Included = true
		s.directlyIncluded = true
		s.Block.Include(ctx, deoptimize || includeChildrenRecursively)
		ctx.BrokenFlow = brokenFlow
	}
	if s.CatchOrNil != nil && s.CatchOrNil.ShouldBeIncluded(ctx) {
		s.CatchOrNil.Include(ctx, includeChildrenRecursively)
		ctx.BrokenFlow = brokenFlow
	}
	if s.FinallyOrNil != nil {
		s.FinallyOrNil.Include(ctx, includeChildrenRecursively)
	}
}

type Catch struct {
	NodeBase
	BindingOrNil Node
	Block        *SBlock
}

func (c *Catch) EachChild(fn func(Node)) {
	eachNonNil(fn, c.BindingOrNil)
	fn(c.Block)
}

func (c *Catch) preventsChildBlockScope() {}

func (c *Catch) createScope(parent *Scope) *Scope {
	return parent.newChild(ScopeCatch)
}

// The parameter is declared before the body so that hoisted declarations in
// the body with the same name find it
func (c *Catch) childInitialised(child Node) {
	if child == c.BindingOrNil {
		child.(pattern).declare(DeclCatchParameter, UnknownExpression)
	}
}

////////////////////////////////////////////////////////////////////////////////
// Module syntax

type ClauseItem struct {
	// The name outside the module: the imported or exported name
	Alias      string
	AliasRange logger.Range

	// The name inside the module
	Name      string
	NameRange logger.Range
}

type SImport struct {
	NodeBase
	DefaultName       string
	NamespaceName     string
	Items             []ClauseItem
	ImportRecordIndex uint32
}

func (*SImport) HasEffects(*InclusionContext) bool { return false }

func (s *SImport) Include(*InclusionContext, bool) { s.Included = true }

// "export { a, b as c }"
type SExportClause struct {
	NodeBase
	Items []ClauseItem
}

func (*SExportClause) HasEffects(*InclusionContext) bool { return false }

func (s *SExportClause) Include(*InclusionContext, bool) { s.Included = true }

// "export { a, b as c } from 'path'"
type SExportFrom struct {
	NodeBase
	Items             []ClauseItem
	ImportRecordIndex uint32
}

func (*SExportFrom) HasEffects(*InclusionContext) bool { return false }

func (s *SExportFrom) Include(*InclusionContext, bool) { s.Included = true }

// "export * from 'path'" or "export * as ns from 'path'"
type SExportStar struct {
	NodeBase
	Alias             string
	AliasRange        logger.Range
	ImportRecordIndex uint32
}

func (*SExportStar) HasEffects(*InclusionContext) bool { return false }

func (s *SExportStar) Include(*InclusionContext, bool) { s.Included = true }

type SExportDefault struct {
	NodeBase
	Value    Node
	Variable *ExportDefaultVariable
}

func (s *SExportDefault) EachChild(fn func(Node)) { fn(s.Value) }

func (s *SExportDefault) initialise() {
	v := &ExportDefaultVariable{}
	v.LocalVariable = *newLocalVariable(s.build(), s.Scope.Module, "default", s, s.Value, DeclConst)
	switch value := s.Value.(type) {
	case *SFunction:
		v.Init = value.Fn
		if value.Fn.ID != nil {
			v.HasID = true
			v.OriginalID = &value.Fn.ID.EIdentifier
		}
	case *SClass:
		v.Init = value.Class
		if value.Class.ID != nil {
			v.HasID = true
			v.OriginalID = &value.Class.ID.EIdentifier
		}
	case *EIdentifier:
		v.OriginalID = value
	}
	s.Variable = v
	s.Scope.Variables["default"] = v
}

func (s *SExportDefault) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	s.NodeBase.Include(ctx, includeChildrenRecursively)
	if includeChildrenRecursively {
		s.host().IncludeVariableInModule(s.Variable)
	}
}
