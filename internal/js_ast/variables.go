package js_ast

import (
	"math"

	"github.com/evanw/treeshake/internal/ast"
)

// A binding. Identifiers that refer to the same binding share one variable.
type Variable interface {
	Entity

	Base() *VariableBase
	AddReference(ref Node)

	// Monotonic. Including a variable pulls in whatever declares it.
	Include()
}

type VariableBase struct {
	build      *BuildContext
	Name       string
	References []Node

	// The module that declares this variable. Invalid for globals and for
	// variables of external modules.
	Module ast.Index32

	Included     bool
	IsReassigned bool
}

func (v *VariableBase) Base() *VariableBase {
	return v
}

func (v *VariableBase) AddReference(ref Node) {
	v.References = append(v.References, ref)
}

func (v *VariableBase) Include() {
	v.Included = true
}

func (v *VariableBase) DeoptimizePath(Path) {}

func (v *VariableBase) GetLiteralValueAtPath(Path, *PathTracker, DeoptimizableEntity) LiteralValue {
	return UnknownValue
}

func (v *VariableBase) GetReturnExpressionWhenCalledAtPath(Path, *PathTracker, DeoptimizableEntity) Entity {
	return UnknownExpression
}

func (v *VariableBase) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 0
}

func (v *VariableBase) HasEffectsWhenAssignedAtPath(Path, *InclusionContext) bool {
	return true
}

func (v *VariableBase) HasEffectsWhenCalledAtPath(Path, *CallOptions, *InclusionContext) bool {
	return true
}

func (v *VariableBase) IncludeCallArguments(ctx *InclusionContext, args []Node) {
	includeAll(ctx, args)
}

func (v *VariableBase) MayModifyThisWhenCalledAtPath(Path, *PathTracker) bool {
	return true
}

type DeclKind uint8

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
	DeclFunction
	DeclClass
	DeclParameter
	DeclCatchParameter
	DeclImport
)

func (kind DeclKind) IsHoisted() bool {
	return kind == DeclVar
}

////////////////////////////////////////////////////////////////////////////////
// Local variables

type LocalVariable struct {
	VariableBase

	// The nodes that declare this variable. This is usually one identifier
	// but "var" may be repeated and "export default" declares a variable too.
	Declarations []Node
	Init         Entity
	Kind         DeclKind

	// Set for a "var" that several initializers assign to. All of them are
	// deoptimized when the variable is first bound.
	additionalInitializers []Entity

	// Entities that received a literal or return value through this variable
	expressionsToBeDeoptimized []DeoptimizableEntity
}

func newLocalVariable(build *BuildContext, module ast.Index32, name string, declaration Node, init Entity, kind DeclKind) *LocalVariable {
	v := &LocalVariable{
		VariableBase: VariableBase{build: build, Name: name, Module: module},
		Init:         init,
		Kind:         kind,
	}
	if declaration != nil {
		v.Declarations = append(v.Declarations, declaration)
	}
	return v
}

func (v *LocalVariable) local() *LocalVariable {
	return v
}

func (v *LocalVariable) AddDeclaration(declaration Node, init Entity) {
	v.Declarations = append(v.Declarations, declaration)
	v.markInitializersForDeoptimization()
	if init != nil {
		v.additionalInitializers = append(v.additionalInitializers, init)
	}
}

func (v *LocalVariable) markInitializersForDeoptimization() {
	if v.additionalInitializers == nil {
		v.additionalInitializers = []Entity{v.Init}
		v.Init = UnknownExpression
		v.IsReassigned = true
	}
}

func (v *LocalVariable) consolidateInitializers() {
	if v.additionalInitializers != nil {
		for _, init := range v.additionalInitializers {
			init.DeoptimizePath(UnknownPath)
		}
		v.additionalInitializers = []Entity{}
	}
}

func (v *LocalVariable) DeoptimizePath(path Path) {
	if len(path) > MaxPathDepth || v.IsReassigned ||
		v.build.DeoptimizationTracker.TrackEntityAtPathAndGetIfTracked(path, v) {
		return
	}
	if len(path) == 0 {
		v.IsReassigned = true
		consumers := v.expressionsToBeDeoptimized
		v.expressionsToBeDeoptimized = nil
		for _, consumer := range consumers {
			consumer.DeoptimizeCache()
		}
		v.Init.DeoptimizePath(UnknownPath)
	} else {
		v.Init.DeoptimizePath(path)
	}
}

func (v *LocalVariable) GetLiteralValueAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) LiteralValue {
	if v.IsReassigned || len(path) > MaxPathDepth || tracker.IsTracked(path, v.Init) {
		return UnknownValue
	}
	if origin != nil {
		v.expressionsToBeDeoptimized = append(v.expressionsToBeDeoptimized, origin)
	}
	return WithTrackedEntityAtPath(tracker, path, v.Init, func() LiteralValue {
		return v.Init.GetLiteralValueAtPath(path, tracker, origin)
	}, UnknownValue)
}

func (v *LocalVariable) GetReturnExpressionWhenCalledAtPath(path Path, tracker *PathTracker, origin DeoptimizableEntity) Entity {
	if v.IsReassigned || len(path) > MaxPathDepth || tracker.IsTracked(path, v.Init) {
		return UnknownExpression
	}
	if origin != nil {
		v.expressionsToBeDeoptimized = append(v.expressionsToBeDeoptimized, origin)
	}
	return WithTrackedEntityAtPath(tracker, path, v.Init, func() Entity {
		return v.Init.GetReturnExpressionWhenCalledAtPath(path, tracker, origin)
	}, UnknownExpression)
}

func (v *LocalVariable) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	if len(path) == 0 {
		return false
	}
	if v.IsReassigned || len(path) > MaxPathDepth {
		return true
	}
	if ctx.Accessed.TrackEntityAtPathAndGetIfTracked(path, v) {
		return false
	}
	return v.Init.HasEffectsWhenAccessedAtPath(path, ctx)
}

func (v *LocalVariable) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	if v.Included || len(path) > MaxPathDepth {
		return true
	}
	if len(path) == 0 {
		return false
	}
	if v.IsReassigned {
		return true
	}
	if ctx.Assigned.TrackEntityAtPathAndGetIfTracked(path, v) {
		return false
	}
	return v.Init.HasEffectsWhenAssignedAtPath(path, ctx)
}

func (v *LocalVariable) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	if len(path) > MaxPathDepth || v.IsReassigned {
		return true
	}
	if ctx.calledTracker(call).TrackEntityAtPathAndGetIfTracked(path, call, v) {
		return false
	}
	return v.Init.HasEffectsWhenCalledAtPath(path, call, ctx)
}

func (v *LocalVariable) IncludeCallArguments(ctx *InclusionContext, args []Node) {
	if v.IsReassigned || ctx.IncludedCallArguments[v.Init] {
		includeAll(ctx, args)
		return
	}
	if ctx.IncludedCallArguments == nil {
		ctx.IncludedCallArguments = make(map[Entity]bool)
	}
	ctx.IncludedCallArguments[v.Init] = true
	v.Init.IncludeCallArguments(ctx, args)
	delete(ctx.IncludedCallArguments, v.Init)
}

func (v *LocalVariable) MayModifyThisWhenCalledAtPath(path Path, tracker *PathTracker) bool {
	if v.IsReassigned || len(path) > MaxPathDepth {
		return true
	}
	return WithTrackedEntityAtPath(tracker, path, v.Init, func() bool {
		return v.Init.MayModifyThisWhenCalledAtPath(path, tracker)
	}, true)
}

func (v *LocalVariable) Include() {
	if v.Included {
		return
	}
	v.Included = true
	if host := v.build.Module(v.Module); host != nil && !host.IsExecuted() {
		host.MarkExecuted()
	}
	for _, declaration := range v.Declarations {
		if !declaration.Base().Included {
			declaration.Include(NewInclusionContext(), false)
		}
		includeAncestors(declaration)
	}
}

type localVariableHolder interface {
	local() *LocalVariable
}

////////////////////////////////////////////////////////////////////////////////
// Function helpers

// The "this" binding of a non-arrow function. While the function is analyzed
// as the callee of a specific call, the context supplies its value.
type ThisVariable struct {
	VariableBase
}

func (v *ThisVariable) init(ctx *InclusionContext) Entity {
	if init, ok := ctx.ReplacedVariableInits[v]; ok {
		return init
	}
	return UnknownExpression
}

func (v *ThisVariable) DeoptimizePath(path Path) {
	if len(path) == 0 {
		v.IsReassigned = true
	}
}

func (v *ThisVariable) HasEffectsWhenAccessedAtPath(path Path, ctx *InclusionContext) bool {
	if v.init(ctx).HasEffectsWhenAccessedAtPath(path, ctx) {
		return true
	}
	return len(path) > 0 && (v.IsReassigned || len(path) > MaxPathDepth)
}

func (v *ThisVariable) HasEffectsWhenAssignedAtPath(path Path, ctx *InclusionContext) bool {
	if v.init(ctx).HasEffectsWhenAssignedAtPath(path, ctx) {
		return true
	}
	return v.Included || len(path) > MaxPathDepth || (len(path) > 0 && v.IsReassigned)
}

func (v *ThisVariable) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, ctx *InclusionContext) bool {
	if v.init(ctx).HasEffectsWhenCalledAtPath(path, call, ctx) {
		return true
	}
	return len(path) > MaxPathDepth || v.IsReassigned
}

type ArgumentsVariable struct {
	VariableBase
}

func (v *ArgumentsVariable) DeoptimizePath(path Path) {
	if len(path) == 0 {
		v.IsReassigned = true
	}
}

func (v *ArgumentsVariable) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 1
}

////////////////////////////////////////////////////////////////////////////////
// Globals

type GlobalVariable struct {
	VariableBase
}

func (v *GlobalVariable) parts(path Path) ([]string, bool) {
	parts := make([]string, 0, len(path)+1)
	parts = append(parts, v.Name)
	for _, key := range path {
		if key.Unknown {
			return nil, false
		}
		parts = append(parts, key.Name)
	}
	return parts, true
}

func (v *GlobalVariable) GetLiteralValueAtPath(path Path, _ *PathTracker, _ DeoptimizableEntity) LiteralValue {
	if len(path) > 0 {
		return UnknownValue
	}
	switch v.Name {
	case "undefined":
		return UndefinedValue
	case "NaN":
		return NumberValue(math.NaN())
	case "Infinity":
		return NumberValue(math.Inf(1))
	}
	return UnknownValue
}

// Reading a member of a known global is pure, as is reading a known global
func (v *GlobalVariable) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	parts, ok := v.parts(path)
	if !ok {
		return true
	}
	if len(parts) == 1 {
		switch parts[0] {
		case "undefined", "NaN", "Infinity":
			return false
		}
		return !v.build.Globals.IsKnown(parts)
	}
	return !v.build.Globals.IsKnown(parts[:len(parts)-1])
}

func (v *GlobalVariable) HasEffectsWhenCalledAtPath(path Path, call *CallOptions, _ *InclusionContext) bool {
	parts, ok := v.parts(path)
	return !ok || !v.build.Globals.IsPureCall(parts, call.WithNew)
}

////////////////////////////////////////////////////////////////////////////////
// Cross-module variables

// An import from a module that is not part of the graph
type ExternalVariable struct {
	VariableBase
	External   ExternalHost
	Referenced bool
}

func NewExternalVariable(build *BuildContext, external ExternalHost, name string) *ExternalVariable {
	return &ExternalVariable{
		VariableBase: VariableBase{build: build, Name: name},
		External:     external,
	}
}

func (v *ExternalVariable) IsNamespace() bool {
	return v.Name == "*"
}

func (v *ExternalVariable) AddReference(ref Node) {
	v.Referenced = true
	v.VariableBase.AddReference(ref)
}

func (v *ExternalVariable) Include() {
	if !v.Included {
		v.Included = true
		v.External.MarkUsed(v.Name)
	}
}

// The namespace object of a module, as bound by "import * as ns"
type NamespaceVariable struct {
	VariableBase
	memberVariables map[string]Variable
}

func NewNamespaceVariable(build *BuildContext, module ast.Index32) *NamespaceVariable {
	return &NamespaceVariable{VariableBase: VariableBase{build: build, Name: "*", Module: module}}
}

func (v *NamespaceVariable) MemberVariables() map[string]Variable {
	if v.memberVariables == nil {
		host := v.build.Module(v.Module)
		v.memberVariables = make(map[string]Variable)
		for _, name := range host.ExportNamesForNamespace() {
			if member := host.LookupExport(name); member != nil {
				v.memberVariables[name] = member
			}
		}
	}
	return v.memberVariables
}

// Anything might happen to a namespace member once the namespace escapes
func (v *NamespaceVariable) DeoptimizePath(Path) {
	for _, member := range v.MemberVariables() {
		member.DeoptimizePath(UnknownPath)
	}
}

func (v *NamespaceVariable) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 1
}

func (v *NamespaceVariable) Include() {
	if !v.Included {
		v.Included = true
		v.build.Module(v.Module).IncludeAllExports()
	}
}

// A named export fabricated from a property of another export of the same
// module, usually the default export
type SyntheticNamedExportVariable struct {
	VariableBase
	SyntheticNamespace Variable
}

func NewSyntheticNamedExportVariable(build *BuildContext, module ast.Index32, name string, namespace Variable) *SyntheticNamedExportVariable {
	return &SyntheticNamedExportVariable{
		VariableBase:       VariableBase{build: build, Name: name, Module: module},
		SyntheticNamespace: namespace,
	}
}

// Follows chains of synthetic exports and default exports to the variable
// that actually holds the namespace object
func (v *SyntheticNamedExportVariable) BaseVariable() Variable {
	base := v.SyntheticNamespace
	seen := map[Variable]bool{}
	for !seen[base] {
		seen[base] = true
		switch b := base.(type) {
		case *ExportDefaultVariable:
			original := b.OriginalVariable()
			if original == Variable(b) {
				return base
			}
			base = original
		case *SyntheticNamedExportVariable:
			base = b.SyntheticNamespace
		default:
			return base
		}
	}
	return base
}

func (v *SyntheticNamedExportVariable) Include() {
	if !v.Included {
		v.Included = true
		v.build.Module(v.Module).IncludeVariableInModule(v.SyntheticNamespace)
	}
}

// The variable created by "export default". The declaration is the export
// statement itself so including the variable includes the statement.
type ExportDefaultVariable struct {
	LocalVariable

	// The identifier being exported or the name of the exported function or
	// class, if there is one
	OriginalID *EIdentifier
	HasID      bool
}

func (v *ExportDefaultVariable) OriginalVariable() Variable {
	var current Variable = v
	seen := map[Variable]bool{}
	for {
		seen[current] = true
		def, ok := current.(*ExportDefaultVariable)
		if !ok {
			return current
		}
		next := def.directOriginalVariable()
		if next == nil || seen[next] {
			return current
		}
		current = next
	}
}

func (v *ExportDefaultVariable) directOriginalVariable() Variable {
	if v.OriginalID == nil || v.OriginalID.Variable == nil {
		return nil
	}
	original := v.OriginalID.Variable
	if v.HasID {
		return original
	}
	if original.Base().IsReassigned {
		return nil
	}
	if _, ok := original.(*SyntheticNamedExportVariable); ok {
		return nil
	}
	return original
}

// The placeholder for a missing export when missing exports are shimmed
type ExportShimVariable struct {
	VariableBase
}

func NewExportShimVariable(build *BuildContext, module ast.Index32) *ExportShimVariable {
	return &ExportShimVariable{VariableBase: VariableBase{build: build, Name: "_missingExportShim", Module: module}}
}

func (v *ExportShimVariable) GetLiteralValueAtPath(path Path, _ *PathTracker, _ DeoptimizableEntity) LiteralValue {
	if len(path) == 0 {
		return UndefinedValue
	}
	return UnknownValue
}
