package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/evanw/treeshake/internal/ast"
	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/logger"
)

// One source file of the graph. A module owns its syntax tree and answers
// the questions the tree has about the rest of the graph.
type Module struct {
	graph *Graph

	// The position of this module in "Graph.Files"
	Index uint32

	// The handle nodes and variables of this module use to reach it
	handle ast.Index32

	id     string
	source logger.Source
	AST    *js_ast.Program
	Scope  *js_ast.Scope

	// Resolved static and dynamic dependencies in source order, without
	// duplicates. These are indices into "Graph.Files".
	Dependencies   []uint32
	DynamicImports []uint32

	Imports   map[string]*ImportDescription
	Exports   map[string]*ExportDescription
	Reexports map[string]*ReexportDescription

	importOrder      []string
	exportOrder      []string
	reexportOrder    []string
	exportAllSources []uint32
	exportAllModules []uint32

	ModuleSideEffects     bool
	SyntheticNamedExports string
	IsEntry               bool

	namespace  *js_ast.NamespaceVariable
	exportShim *js_ast.ExportShimVariable

	syntheticNamespace         js_ast.Variable
	syntheticNamespaceResolved bool
	syntheticExports           map[string]*js_ast.SyntheticNamedExportVariable

	// Results of "export *" searches by name
	namespaceReexportsByName map[string]namespaceReexport

	transitiveReexports []string
	allExportNames      []string

	// Variables of other modules that code in this module included
	includedImports     []js_ast.Variable
	includedImportsSeen map[js_ast.Variable]bool

	includedDynamicImporters []uint32
	relevantDependencies     []uint32
}

type namespaceReexport struct {
	variable         js_ast.Variable
	indirectExternal bool
}

// How a name is looked up. The zero value is a plain lookup.
type ExportLookup struct {
	// Set while probing "export *" sources. Probes never shim missing names.
	IsExportAllSearch bool

	// Only consider declared exports and re-exports
	OnlyExplicit bool

	// The modules already searched for each name. Re-export cycles end when
	// a module is searched twice for the same name.
	searched map[string]*roaring.Bitmap
}

func copySearched(searched map[string]*roaring.Bitmap) map[string]*roaring.Bitmap {
	result := make(map[string]*roaring.Bitmap, len(searched))
	for name, modules := range searched {
		result[name] = modules.Clone()
	}
	return result
}

func newModule(g *Graph, index uint32, input InputFile) *Module {
	return &Module{
		graph:                    g,
		Index:                    index,
		id:                       input.Source.PrettyPath,
		source:                   input.Source,
		AST:                      input.AST,
		Imports:                  make(map[string]*ImportDescription),
		Exports:                  make(map[string]*ExportDescription),
		Reexports:                make(map[string]*ReexportDescription),
		ModuleSideEffects:        input.ModuleSideEffects,
		SyntheticNamedExports:    input.SyntheticNamedExports,
		IsEntry:                  input.IsEntry,
		syntheticExports:         make(map[string]*js_ast.SyntheticNamedExportVariable),
		namespaceReexportsByName: make(map[string]namespaceReexport),
		includedImportsSeen:      make(map[js_ast.Variable]bool),
	}
}

func (m *Module) ID() string {
	return m.id
}

func (m *Module) ExecIndex() uint32 {
	return m.graph.Files[m.Index].ExecIndex
}

func (m *Module) Namespace() *js_ast.NamespaceVariable {
	return m.namespace
}

////////////////////////////////////////////////////////////////////////////////
// Export and import resolution

// Names this module declares as exports, in declaration order. Shimmed names
// are added at the end as they are found.
func (m *Module) GetExports() []string {
	return m.exportOrder
}

// Every name this module re-exports, directly or through "export *". Names of
// the form "*<id>" stand for the namespace of an external module. The result
// is computed once. A module revisited during its own computation sees an
// empty list, which ends "export *" cycles.
func (m *Module) GetReexports() []string {
	if m.transitiveReexports != nil {
		return m.transitiveReexports
	}
	m.transitiveReexports = []string{}

	names := []string{}
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, name := range m.reexportOrder {
		add(name)
	}
	for _, source := range m.exportAllModules {
		switch other := m.graph.Files[source].Repr.(type) {
		case *ExternalModule:
			add("*" + other.id)
		case *Module:
			for _, name := range other.GetReexports() {
				if name != "default" {
					add(name)
				}
			}
			for _, name := range other.GetExports() {
				if name != "default" {
					add(name)
				}
			}
		}
	}
	m.transitiveReexports = names
	return names
}

// Own exports, re-exports and names reachable through "export *", minus the
// export that holds the synthetic named exports
func (m *Module) GetAllExportNames() []string {
	if m.allExportNames != nil {
		return m.allExportNames
	}
	m.allExportNames = []string{}

	names := []string{}
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] && name != m.SyntheticNamedExports {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, name := range m.exportOrder {
		add(name)
	}
	for _, name := range m.reexportOrder {
		add(name)
	}
	for _, source := range m.exportAllModules {
		switch other := m.graph.Files[source].Repr.(type) {
		case *ExternalModule:
			add("*" + other.id)
		case *Module:
			for _, name := range other.GetAllExportNames() {
				if name != "default" {
					add(name)
				}
			}
		}
	}
	m.allExportNames = names
	return names
}

// Groups the export names by the variable they resolve to. Only included
// variables and variables of external modules are reported. A default export
// of a plain reference reports the variable it refers to.
func (m *Module) GetExportNamesByVariable() map[js_ast.Variable][]string {
	result := make(map[js_ast.Variable][]string)
	for _, name := range m.GetAllExportNames() {
		variable := m.LookupExport(name)
		if def, ok := variable.(*js_ast.ExportDefaultVariable); ok {
			variable = def.OriginalVariable()
		}
		if variable == nil {
			continue
		}
		if _, ok := variable.(*js_ast.ExternalVariable); !ok && !variable.Base().Included {
			continue
		}
		result[variable] = append(result[variable], name)
	}
	for _, names := range result {
		sort.Strings(names)
	}
	return result
}

// Resolves the variable behind an export name of this module. It returns nil
// if there is no such export. The second result is true if the variable was
// found through an external module.
func (m *Module) GetVariableForExportName(name string, lookup ExportLookup) (js_ast.Variable, bool) {
	if strings.HasPrefix(name, "*") {
		if name == "*" {
			return m.namespace, false
		}

		// "export * from 'external'"
		if index, ok := m.graph.externalsByID[name[1:]]; ok {
			external := m.graph.Files[index].Repr.(*ExternalModule)
			return external.GetVariableForExportName("*"), true
		}
		return nil, false
	}

	// "export { foo } from './other'"
	if reexport, ok := m.Reexports[name]; ok {
		variable, _ := m.graph.getVariableForExportNameRecursive(reexport.Source, reexport.LocalName,
			ExportLookup{searched: lookup.searched})
		if variable == nil {
			m.graph.missingExport(m, reexport.LocalName, reexport.Source, reexport.Range)
			return nil, false
		}
		return variable, false
	}

	if export, ok := m.Exports[name]; ok {
		if export == missingExportShim {
			return m.exportShim, false
		}
		return m.traceVariable(export.LocalName, lookup.searched), false
	}

	if lookup.OnlyExplicit {
		return nil, false
	}

	// "export * from './other'" never provides a default export
	if name != "default" {
		found, ok := m.namespaceReexportsByName[name]
		if !ok {
			found = m.getVariableFromNamespaceReexports(name, lookup.searched)
			m.namespaceReexportsByName[name] = found
		}
		if found.variable != nil {
			return found.variable, found.indirectExternal
		}
	}

	if m.SyntheticNamedExports != "" {
		if variable := m.syntheticExport(name); variable != nil {
			return variable, false
		}
		return nil, false
	}

	if !lookup.IsExportAllSearch && m.graph.options.ShimMissingExports {
		m.shimMissingExport(name)
		return m.exportShim, false
	}
	return nil, false
}

func (m *Module) getVariableFromNamespaceReexports(name string, searched map[string]*roaring.Bitmap) namespaceReexport {
	var synthetic js_ast.Variable
	var internal []js_ast.Variable
	var internalModules []string
	var external js_ast.Variable

	for _, source := range m.exportAllModules {
		if other, ok := m.graph.Files[source].Repr.(*Module); ok && other.SyntheticNamedExports == name {
			continue
		}
		variable, indirectExternal := m.graph.getVariableForExportNameRecursive(source, name,
			ExportLookup{IsExportAllSearch: true, searched: copySearched(searched)})
		if variable == nil {
			continue
		}
		if _, isExternal := m.graph.Files[source].Repr.(*ExternalModule); isExternal || indirectExternal {
			if external == nil {
				external = variable
			}
			continue
		}
		if _, ok := variable.(*js_ast.SyntheticNamedExportVariable); ok {
			if synthetic == nil {
				synthetic = variable
			}
			continue
		}
		duplicate := false
		for _, existing := range internal {
			if existing == variable {
				duplicate = true
				break
			}
		}
		if !duplicate {
			internal = append(internal, variable)
			internalModules = append(internalModules, m.graph.Files[source].Repr.ID())
		}
	}

	if len(internal) > 0 {
		if len(internal) > 1 {
			quoted := make([]string, len(internalModules))
			for i, id := range internalModules {
				quoted[i] = fmt.Sprintf("%q", id)
			}
			m.Warn(logger.MsgID_Bundler_NamespaceConflict, logger.Range{}, fmt.Sprintf(
				"Conflicting namespaces: %q re-exports %q from each of %s (the first one is used)",
				m.id, name, strings.Join(quoted, ", ")))
		}
		return namespaceReexport{variable: internal[0]}
	}
	if external != nil {
		return namespaceReexport{variable: external, indirectExternal: true}
	}
	if synthetic != nil {
		return namespaceReexport{variable: synthetic}
	}
	return namespaceReexport{}
}

// Local declarations first, then import bindings. Returns nil for globals.
func (m *Module) traceVariable(name string, searched map[string]*roaring.Bitmap) js_ast.Variable {
	if variable, ok := m.Scope.Variables[name]; ok {
		return variable
	}
	imported, ok := m.Imports[name]
	if !ok {
		return nil
	}
	if other, ok := m.graph.Files[imported.Source].Repr.(*Module); ok && imported.Name == "*" {
		return other.namespace
	}
	variable, _ := m.graph.getVariableForExportNameRecursive(imported.Source, imported.Name, ExportLookup{searched: searched})
	if variable == nil {
		m.graph.missingExport(m, imported.Name, imported.Source, imported.Range)
	}
	return variable
}

func (m *Module) shimMissingExport(name string) {
	m.Warn(logger.MsgID_Bundler_ShimmedExport, logger.Range{},
		fmt.Sprintf("Missing export %q has been shimmed in module %q", name, m.id))
	m.Exports[name] = missingExportShim
	m.exportOrder = append(m.exportOrder, name)
}

// The variable whose properties provide the synthetic named exports
func (m *Module) getSyntheticNamespace() js_ast.Variable {
	if !m.syntheticNamespaceResolved {
		m.syntheticNamespaceResolved = true
		m.syntheticNamespace, _ = m.GetVariableForExportName(m.SyntheticNamedExports, ExportLookup{OnlyExplicit: true})
		if m.syntheticNamespace == nil {
			m.graph.addLinkError(m, logger.Range{}, &LinkError{
				Code:     SyntheticNamedExportsNeedDefault,
				Name:     m.SyntheticNamedExports,
				Importer: m.id,
				Exporter: m.id,
			}, nil)
		}
	}
	return m.syntheticNamespace
}

func (m *Module) syntheticExport(name string) js_ast.Variable {
	if variable, ok := m.syntheticExports[name]; ok {
		return variable
	}
	namespace := m.getSyntheticNamespace()
	if namespace == nil {
		return nil
	}
	variable := js_ast.NewSyntheticNamedExportVariable(m.graph.build, m.handle, name, namespace)
	m.syntheticExports[name] = variable
	return variable
}

////////////////////////////////////////////////////////////////////////////////
// Inclusion

// Whether anything of this module ends up in the output
func (m *Module) IsIncluded() bool {
	return m.AST.Included || m.namespace.Included || m.exportShim.Included
}

func (m *Module) IsExecuted() bool {
	return m.graph.executed.Contains(m.Index)
}

func (m *Module) MarkExecuted() {
	m.graph.markModuleAndImpureDependenciesAsExecuted(m)
}

// One step of the fixed point for this module
func (m *Module) include() {
	ctx := js_ast.NewInclusionContext()
	if m.AST.ShouldBeIncluded(ctx) {
		m.AST.Include(ctx, false)
	}
}

func (m *Module) includeAllInBundle() {
	m.AST.Include(js_ast.NewInclusionContext(), true)
	m.includeAllExports(false)
}

// Every export may be observed from outside, so each one is deoptimized and
// included. The synthetic namespace itself is only included when the whole
// namespace object is requested.
func (m *Module) includeAllExports(includeNamespaceMembers bool) {
	if !m.IsExecuted() {
		m.graph.markModuleAndImpureDependenciesAsExecuted(m)
		m.graph.needsTreeshakingPass = true
	}
	for _, name := range m.GetExports() {
		if !includeNamespaceMembers && name == m.SyntheticNamedExports {
			continue
		}
		if variable := m.LookupExport(name); variable != nil {
			variable.DeoptimizePath(js_ast.UnknownPath)
			m.includeVariable(variable)
		}
	}
	for _, name := range m.GetReexports() {
		if variable := m.LookupExport(name); variable != nil {
			variable.DeoptimizePath(js_ast.UnknownPath)
			m.includeVariable(variable)
			if external, ok := variable.(*js_ast.ExternalVariable); ok {
				external.External.(*ExternalModule).reexported = true
			}
		}
	}
}

func (m *Module) IncludeAllExports() {
	m.includeAllExports(true)
}

func (m *Module) includeVariable(variable js_ast.Variable) {
	if variable.Base().Included {
		return
	}
	variable.Include()
	m.graph.needsTreeshakingPass = true
	if owner, ok := m.graph.build.Module(variable.Base().Module).(*Module); ok && !owner.IsExecuted() {
		m.graph.markModuleAndImpureDependenciesAsExecuted(owner)
	}
}

func (m *Module) IncludeVariableInModule(variable js_ast.Variable) {
	m.includeVariable(variable)
	isImport := false
	if _, ok := variable.(*js_ast.ExternalVariable); ok {
		isImport = true
	} else if owner := variable.Base().Module; owner.IsValid() && owner != m.handle {
		isImport = true
	}
	if isImport && !m.includedImportsSeen[variable] {
		m.includedImportsSeen[variable] = true
		m.includedImports = append(m.includedImports, variable)
	}
}

func (m *Module) IncludeDynamicImport(node *js_ast.EImportCall) {
	if !node.ImportRecordIndex.IsValid() {
		return
	}
	record := &m.AST.ImportRecords[node.ImportRecordIndex.GetIndex()]
	if !record.SourceIndex.IsValid() {
		return
	}
	if target, ok := m.graph.Files[record.SourceIndex.GetIndex()].Repr.(*Module); ok {
		target.includedDynamicImporters = append(target.includedDynamicImporters, m.Index)
		target.includeAllExports(true)
	}
}

////////////////////////////////////////////////////////////////////////////////
// Services for the syntax tree

func (m *Module) TraceVariable(name string) js_ast.Variable {
	return m.traceVariable(name, nil)
}

func (m *Module) LookupExport(name string) js_ast.Variable {
	variable, _ := m.GetVariableForExportName(name, ExportLookup{})
	return variable
}

func (m *Module) ExportNamesForNamespace() (names []string) {
	for _, list := range [][]string{m.GetExports(), m.GetReexports()} {
		for _, name := range list {
			if !strings.HasPrefix(name, "*") && name != m.SyntheticNamedExports {
				names = append(names, name)
			}
		}
	}
	return
}

func (m *Module) Warn(id logger.MsgID, r logger.Range, text string) {
	m.graph.log.AddID(id, logger.Warning, &m.source, r, text)
}

func (m *Module) Source() *logger.Source {
	return &m.source
}
