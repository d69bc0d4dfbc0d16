package graph

// This is the link phase. It connects the syntax trees of every module in
// the graph, resolves imports through re-export chains and then runs the
// inclusion fixed point that decides what survives tree shaking.

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/evanw/treeshake/internal/ast"
	"github.com/evanw/treeshake/internal/config"
	"github.com/evanw/treeshake/internal/helpers"
	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/logger"
)

// Either a "*Module" or an "*ExternalModule"
type FileRepr interface {
	ID() string
	isFileRepr()
}

func (*Module) isFileRepr()         {}
func (*ExternalModule) isFileRepr() {}

type File struct {
	Repr FileRepr

	// The position of this file in the execution order. Files that are never
	// reached keep the largest possible index.
	ExecIndex uint32
}

type Graph struct {
	// Modules come first, in the order of the input files. External modules
	// are appended as they are discovered.
	Files []File

	Entries []uint32

	// Every import cycle found while sorting, as a list of ids that starts
	// and ends with the same module
	Cycles [][]string

	build   *js_ast.BuildContext
	options *config.ProcessedOptions
	log     logger.Log
	timer   *helpers.Timer

	filesByPath   map[string]uint32
	externalsByID map[string]uint32

	executionOrder []uint32
	executed       *roaring.Bitmap

	needsTreeshakingPass bool

	linkErrors    []*LinkError
	linkErrorKeys map[LinkError]bool
}

// Builds the module graph and binds every identifier. A non-nil error is the
// first link error. All link errors are also in the log.
func Link(build *js_ast.BuildContext, inputs []InputFile) (*Graph, error) {
	g := &Graph{
		build:         build,
		options:       build.Options,
		log:           build.Log,
		timer:         build.Timer,
		filesByPath:   make(map[string]uint32, len(inputs)),
		externalsByID: make(map[string]uint32),
		executed:      roaring.New(),
		linkErrorKeys: make(map[LinkError]bool),
	}

	g.timer.Begin("Create modules")
	modules := make([]*Module, len(inputs))
	for i, input := range inputs {
		m := newModule(g, uint32(i), input)
		m.handle = build.AddModule(m)
		m.Scope = js_ast.NewModuleScope(build, m.handle)
		m.namespace = js_ast.NewNamespaceVariable(build, m.handle)
		m.exportShim = js_ast.NewExportShimVariable(build, m.handle)
		modules[i] = m
		g.Files = append(g.Files, File{Repr: m, ExecIndex: ^uint32(0)})
		g.filesByPath[input.Source.KeyPath.Text] = uint32(i)
		if input.IsEntry {
			g.Entries = append(g.Entries, uint32(i))
		}
	}
	g.timer.End("Create modules")

	g.timer.Begin("Resolve import records")
	for i, m := range modules {
		g.resolveImportRecords(m, inputs[i].ResolvedIDs)
	}
	g.timer.End("Resolve import records")

	g.timer.Begin("Scan module syntax")
	for _, m := range modules {
		m.scanModuleSyntax()
	}
	g.timer.End("Scan module syntax")

	// Every declaration of every module must exist before any identifier is
	// bound, since binding follows imports into other modules
	g.timer.Begin("Initialise")
	for _, m := range modules {
		js_ast.Initialise(m.AST, m.Scope)
	}
	g.timer.End("Initialise")

	g.timer.Begin("Bind")
	for _, m := range modules {
		m.AST.Bind()
	}
	g.timer.End("Bind")

	// Imports from external modules exist even if nothing references them,
	// so that unused ones can be reported
	for _, m := range modules {
		for _, name := range m.importOrder {
			imported := m.Imports[name]
			if external, ok := g.Files[imported.Source].Repr.(*ExternalModule); ok {
				external.GetVariableForExportName(imported.Name)
			}
		}
	}

	g.timer.Begin("Sort modules")
	g.analyseModuleExecution()
	for _, path := range g.Cycles {
		g.log.AddID(logger.MsgID_Bundler_CircularDependency, logger.Warning, nil, logger.Range{},
			"Circular dependency: "+joinCyclePath(path))
	}
	g.timer.End("Sort modules")

	return g, g.firstLinkError()
}

func (g *Graph) resolveImportRecords(m *Module, resolved map[string]ResolvedID) {
	seenStatic := make(map[uint32]bool)
	seenDynamic := make(map[uint32]bool)

	for i := range m.AST.ImportRecords {
		record := &m.AST.ImportRecords[i]
		id, ok := resolved[record.Path]
		if !ok {
			g.log.AddError(&m.source, record.Range, fmt.Sprintf("Could not resolve %q", record.Path))
			continue
		}

		var index uint32
		if id.External {
			index = g.externalModule(id.Path)
			record.ExternalIndex = ast.MakeIndex32(index)
			external := g.Files[index].Repr.(*ExternalModule)
			if len(external.importers) == 0 || external.importers[len(external.importers)-1] != m.Index {
				external.importers = append(external.importers, m.Index)
			}
		} else {
			index, ok = g.filesByPath[id.Path]
			if !ok {
				g.log.AddError(&m.source, record.Range, fmt.Sprintf("Could not resolve %q", record.Path))
				continue
			}
			record.SourceIndex = ast.MakeIndex32(index)
		}

		switch record.Kind {
		case ast.ImportStmt:
			if !seenStatic[index] {
				seenStatic[index] = true
				m.Dependencies = append(m.Dependencies, index)
			}
		case ast.ImportDynamic:
			if !seenDynamic[index] {
				seenDynamic[index] = true
				m.DynamicImports = append(m.DynamicImports, index)
			}
		}
	}
}

// Returns the external module for this id, creating it the first time
func (g *Graph) externalModule(id string) uint32 {
	if index, ok := g.externalsByID[id]; ok {
		return index
	}
	index := uint32(len(g.Files))
	g.Files = append(g.Files, File{Repr: newExternalModule(g, index, id), ExecIndex: ^uint32(0)})
	g.externalsByID[id] = index
	return index
}

////////////////////////////////////////////////////////////////////////////////
// Link errors

func (g *Graph) addLinkError(m *Module, r logger.Range, err *LinkError, notes []logger.MsgData) {
	if g.linkErrorKeys[*err] {
		return
	}
	g.linkErrorKeys[*err] = true
	g.linkErrors = append(g.linkErrors, err)
	g.log.AddErrorWithNotes(&m.source, r, err.Error(), notes)
}

func (g *Graph) missingExport(importer *Module, name string, source uint32, r logger.Range) {
	var notes []logger.MsgData
	if exporter, ok := g.Files[source].Repr.(*Module); ok {
		names := append([]string{}, exporter.GetExports()...)
		for _, reexport := range exporter.GetReexports() {
			if !strings.HasPrefix(reexport, "*") {
				names = append(names, reexport)
			}
		}
		if corrected, ok := helpers.MakeTypoDetector(names).MaybeCorrectTypo(name); ok {
			notes = append(notes, logger.MsgData{Text: fmt.Sprintf("Did you mean to import %q instead?", corrected)})
		}
	}
	g.addLinkError(importer, r, &LinkError{
		Code:     MissingExport,
		Name:     name,
		Importer: importer.id,
		Exporter: g.Files[source].Repr.ID(),
	}, notes)
}

func (g *Graph) firstLinkError() error {
	if len(g.linkErrors) > 0 {
		return g.linkErrors[0]
	}
	return nil
}

func (g *Graph) LinkErrors() []*LinkError {
	return g.linkErrors
}

////////////////////////////////////////////////////////////////////////////////
// Resolution across modules

// Looks up "name" in the file at "source", ending the search with nothing if
// that module was already searched for the same name
func (g *Graph) getVariableForExportNameRecursive(source uint32, name string, lookup ExportLookup) (js_ast.Variable, bool) {
	switch target := g.Files[source].Repr.(type) {
	case *ExternalModule:
		return target.GetVariableForExportName(name), false

	case *Module:
		if lookup.searched == nil {
			lookup.searched = make(map[string]*roaring.Bitmap)
		}
		modules := lookup.searched[name]
		if modules == nil {
			modules = roaring.New()
			lookup.searched[name] = modules
		}
		if !modules.CheckedAdd(source) {
			return nil, false
		}
		return target.GetVariableForExportName(name, lookup)
	}
	return nil, false
}

////////////////////////////////////////////////////////////////////////////////
// Inclusion

// Marks a module and every dependency it runs with it as executed. Modules
// without side effects only run if something they declare is included.
// Only static dependencies are walked. A dynamic import target is marked
// when its import() expression is included.
func (g *Graph) markModuleAndImpureDependenciesAsExecuted(base *Module) {
	if !g.executed.CheckedAdd(base.Index) {
		return
	}
	g.needsTreeshakingPass = true
	queue := []*Module{base}
	for len(queue) > 0 {
		m := queue[0]
		queue = queue[1:]
		for _, index := range m.Dependencies {
			dep, ok := g.Files[index].Repr.(*Module)
			if !ok || !dep.ModuleSideEffects {
				continue
			}
			if g.executed.CheckedAdd(index) {
				queue = append(queue, dep)
			}
		}
	}
}

// Runs inclusion to a fixed point. Each entry point keeps every export. A
// non-nil error is the first link error.
func (g *Graph) IncludeStatements() error {
	g.timer.Begin("Include statements")
	defer g.timer.End("Include statements")

	for _, index := range g.Entries {
		m := g.Files[index].Repr.(*Module)
		g.markModuleAndImpureDependenciesAsExecuted(m)
		if g.options.TreeShaking.Enabled {
			m.includeAllExports(false)
		}
	}

	if g.options.TreeShaking.Enabled {
		for g.TreeshakingPass() {
		}
	} else {
		for _, index := range g.executionOrder {
			if m, ok := g.Files[index].Repr.(*Module); ok {
				m.includeAllInBundle()
			}
		}
	}

	for _, file := range g.Files {
		if external, ok := file.Repr.(*ExternalModule); ok {
			external.warnUnusedImports()
		}
	}

	for _, index := range g.Entries {
		m := g.Files[index].Repr.(*Module)
		if !m.IsIncluded() && len(m.GetAllExportNames()) == 0 {
			g.log.AddID(logger.MsgID_Bundler_EmptyFacade, logger.Warning, &m.source, logger.Range{},
				fmt.Sprintf("Entry module %q is empty", m.id))
		}
	}

	return g.firstLinkError()
}

// Runs one inclusion pass over every executed module in execution order.
// Returns true if the pass included something new.
func (g *Graph) TreeshakingPass() bool {
	g.needsTreeshakingPass = false
	for _, index := range g.executionOrder {
		if m, ok := g.Files[index].Repr.(*Module); ok && g.executed.Contains(index) {
			m.include()
		}
	}
	return g.needsTreeshakingPass
}

// Modules in execution order
func (g *Graph) Modules() (modules []*Module) {
	for _, index := range g.executionOrder {
		if m, ok := g.Files[index].Repr.(*Module); ok {
			modules = append(modules, m)
		}
	}
	return
}

func (g *Graph) ModuleByPath(path string) *Module {
	if index, ok := g.filesByPath[path]; ok {
		return g.Files[index].Repr.(*Module)
	}
	return nil
}

func (g *Graph) Externals() (externals []*ExternalModule) {
	for _, file := range g.Files {
		if external, ok := file.Repr.(*ExternalModule); ok {
			externals = append(externals, external)
		}
	}
	return
}
