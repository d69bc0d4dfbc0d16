package graph

import (
	"strings"
	"testing"

	"github.com/evanw/treeshake/internal/ast"
	"github.com/evanw/treeshake/internal/config"
	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/logger"
	"github.com/evanw/treeshake/internal/test"
)

// Builds the syntax tree of one file by hand. Specifiers are the paths of
// other test files. A specifier that matches no file is external.
type testFile struct {
	path          string
	stmts         []js_ast.Node
	records       []ast.ImportRecord
	isEntry       bool
	noSideEffects bool
	synthetic     string
}

func file(path string) *testFile {
	return &testFile{path: path}
}

func entry(path string) *testFile {
	return &testFile{path: path, isEntry: true}
}

func (f *testFile) record(path string, kind ast.ImportKind) uint32 {
	f.records = append(f.records, ast.ImportRecord{Path: path, Kind: kind})
	return uint32(len(f.records) - 1)
}

func (f *testFile) add(stmts ...js_ast.Node) *testFile {
	f.stmts = append(f.stmts, stmts...)
	return f
}

func (f *testFile) importNamed(path string, names ...string) *testFile {
	items := make([]js_ast.ClauseItem, len(names))
	for i, name := range names {
		items[i] = js_ast.ClauseItem{Alias: name, Name: name}
	}
	return f.add(&js_ast.SImport{Items: items, ImportRecordIndex: f.record(path, ast.ImportStmt)})
}

func (f *testFile) importNamespace(path string, name string) *testFile {
	return f.add(&js_ast.SImport{NamespaceName: name, ImportRecordIndex: f.record(path, ast.ImportStmt)})
}

func (f *testFile) importBare(path string) *testFile {
	return f.add(&js_ast.SImport{ImportRecordIndex: f.record(path, ast.ImportStmt)})
}

func (f *testFile) exportFrom(path string, names ...string) *testFile {
	items := make([]js_ast.ClauseItem, len(names))
	for i, name := range names {
		items[i] = js_ast.ClauseItem{Alias: name, Name: name}
	}
	return f.add(&js_ast.SExportFrom{Items: items, ImportRecordIndex: f.record(path, ast.ImportStmt)})
}

func (f *testFile) exportStar(path string) *testFile {
	return f.add(&js_ast.SExportStar{ImportRecordIndex: f.record(path, ast.ImportStmt)})
}

func (f *testFile) exportConst(name string, value js_ast.Node) *testFile {
	return f.add(&js_ast.SLocal{Kind: js_ast.LocalConst, IsExport: true, Decls: []*js_ast.Decl{
		{Binding: &js_ast.BIdentifier{EIdentifier: js_ast.EIdentifier{Name: name}}, ValueOrNil: value},
	}})
}

func (f *testFile) dynamicImport(path string) *testFile {
	index := f.record(path, ast.ImportDynamic)
	return f.add(&js_ast.SExpr{Value: &js_ast.EImportCall{
		Expr:              &js_ast.EString{Value: path},
		ImportRecordIndex: ast.MakeIndex32(index),
	}})
}

// "sink(name)" is always included since "sink" is an unknown global
func use(names ...string) *js_ast.SExpr {
	args := make([]js_ast.Node, len(names))
	for i, name := range names {
		args[i] = &js_ast.EIdentifier{Name: name}
	}
	return &js_ast.SExpr{Value: &js_ast.ECall{Target: &js_ast.EIdentifier{Name: "sink"}, Args: args}}
}

func num(value float64) *js_ast.ENumber {
	return &js_ast.ENumber{Value: value}
}

type linked struct {
	graph *Graph
	log   logger.Log
	err   error
}

func link(t *testing.T, options *config.Options, files ...*testFile) linked {
	t.Helper()
	if options == nil {
		options = config.DefaultOptions()
	}
	log := logger.NewDeferLog()
	build := js_ast.NewBuildContext(config.ProcessOptions(*options), log, nil)

	paths := make(map[string]bool)
	for _, f := range files {
		paths[f.path] = true
	}
	inputs := make([]InputFile, len(files))
	for i, f := range files {
		resolved := make(map[string]ResolvedID)
		for _, record := range f.records {
			resolved[record.Path] = ResolvedID{Path: record.Path, External: !paths[record.Path]}
		}
		inputs[i] = InputFile{
			Source: logger.Source{
				Index:      uint32(i),
				KeyPath:    logger.Path{Text: f.path},
				PrettyPath: f.path,
			},
			AST:                   &js_ast.Program{Stmts: f.stmts, ImportRecords: f.records},
			ResolvedIDs:           resolved,
			ModuleSideEffects:     !f.noSideEffects,
			SyntheticNamedExports: f.synthetic,
			IsEntry:               f.isEntry,
		}
	}

	g, err := Link(build, inputs)
	if err == nil {
		err = g.IncludeStatements()
	}
	return linked{graph: g, log: log, err: err}
}

func (l linked) module(path string) *Module {
	return l.graph.ModuleByPath(path)
}

func (l linked) messages(id logger.MsgID) (texts []string) {
	for _, msg := range l.log.Done() {
		if msg.ID == id {
			texts = append(texts, msg.Data.Text)
		}
	}
	return
}

func (l linked) errors() (texts []string) {
	for _, msg := range l.log.Done() {
		if msg.Kind == logger.Error {
			texts = append(texts, msg.Data.Text)
		}
	}
	return
}

func includedNames(m *Module) (names []string) {
	for _, stmt := range m.AST.Stmts {
		local, ok := stmt.(*js_ast.SLocal)
		if !ok || !local.Included {
			continue
		}
		for _, decl := range local.Decls {
			if decl.Included {
				for _, id := range js_ast.BindingIdentifiers(decl.Binding) {
					names = append(names, id.Name)
				}
			}
		}
	}
	return
}

func TestCyclePath(t *testing.T) {
	l := link(t, nil,
		entry("a.js").importBare("b.js"),
		file("b.js").importBare("c.js"),
		file("c.js").importBare("a.js"),
	)
	test.AssertEqual(t, l.err, nil)
	test.AssertEqual(t, l.graph.Cycles, [][]string{{"a.js", "b.js", "c.js", "a.js"}})
	test.AssertEqual(t, l.messages(logger.MsgID_Bundler_CircularDependency),
		[]string{"Circular dependency: a.js -> b.js -> c.js -> a.js"})
	test.AssertEqual(t, l.graph.CycleGroups(), [][]string{{"c.js", "b.js", "a.js"}})
}

func TestMutualImportIsACycle(t *testing.T) {
	l := link(t, nil,
		entry("a.js").importBare("b.js"),
		file("b.js").importBare("a.js"),
	)
	test.AssertEqual(t, l.err, nil)
	test.AssertEqual(t, l.graph.Cycles, [][]string{{"a.js", "b.js", "a.js"}})
	test.AssertEqual(t, l.messages(logger.MsgID_Bundler_CircularDependency),
		[]string{"Circular dependency: a.js -> b.js -> a.js"})
	test.AssertEqual(t, l.graph.CycleGroups(), [][]string{{"b.js", "a.js"}})
}

func TestExecutionOrder(t *testing.T) {
	l := link(t, nil,
		entry("main.js").importBare("a.js").importBare("b.js").dynamicImport("lazy.js"),
		file("a.js").importBare("shared.js"),
		file("b.js").importBare("shared.js"),
		file("shared.js"),
		file("lazy.js").dynamicImport("lazier.js"),
		file("lazier.js"),
	)
	test.AssertEqual(t, l.err, nil)

	var order []string
	for _, m := range l.graph.Modules() {
		order = append(order, m.ID())
	}
	test.AssertEqual(t, order, []string{"shared.js", "a.js", "b.js", "main.js", "lazy.js", "lazier.js"})
	test.AssertEqual(t, len(l.graph.Cycles), 0)
}

func TestExportStarChain(t *testing.T) {
	l := link(t, nil,
		entry("a.js").exportFrom("b.js", "x"),
		file("b.js").exportStar("c.js"),
		file("c.js").exportConst("x", num(1)).exportConst("y", num(2)),
	)
	test.AssertEqual(t, l.err, nil)

	c := l.module("c.js")
	x := l.module("a.js").LookupExport("x")
	test.AssertEqual(t, x, c.Scope.Variables["x"])
	test.AssertEqual(t, includedNames(c), []string{"x"})
	test.AssertEqual(t, l.module("b.js").GetReexports(), []string{"x", "y"})
}

func TestMutualExportStarIsNotFound(t *testing.T) {
	l := link(t, nil,
		entry("a.js").importNamed("b.js", "x").add(use("x")),
		file("b.js").exportStar("c.js"),
		file("c.js").exportStar("b.js"),
	)
	test.AssertEqual(t, l.err, error(&LinkError{
		Code:     MissingExport,
		Name:     "x",
		Importer: "a.js",
		Exporter: "b.js",
	}))
	test.AssertEqual(t, l.module("b.js").LookupExport("x"), nil)
}

func TestExplicitReexportCycle(t *testing.T) {
	l := link(t, nil,
		entry("a.js").importNamed("b.js", "x").add(use("x")),
		file("b.js").exportFrom("c.js", "x"),
		file("c.js").exportFrom("b.js", "x"),
	)
	test.AssertEqual(t, l.err != nil, true)
	test.AssertEqual(t, l.err.(*LinkError).Code, MissingExport)
}

func TestMissingExport(t *testing.T) {
	l := link(t, nil,
		entry("a.js").importNamed("b.js", "nope").add(use("nope")),
		file("b.js").exportConst("x", num(1)),
	)
	test.AssertEqual(t, l.errors(), []string{
		`No matching export in "b.js" for import "nope" (imported by "a.js")`,
	})
}

func TestShimMissingExports(t *testing.T) {
	options := config.DefaultOptions()
	options.ShimMissingExports = true
	l := link(t, options,
		entry("a.js").importNamed("b.js", "nope").add(use("nope")),
		file("b.js").exportConst("x", num(1)),
	)
	test.AssertEqual(t, l.err, nil)
	test.AssertEqual(t, l.messages(logger.MsgID_Bundler_ShimmedExport),
		[]string{`Missing export "nope" has been shimmed in module "b.js"`})

	b := l.module("b.js")
	test.AssertEqual(t, b.GetExports(), []string{"x", "nope"})
	test.AssertEqual(t, b.IsIncluded(), true)
}

func TestSyntheticNamedExports(t *testing.T) {
	legacy := file("legacy.js").add(&js_ast.SExportDefault{Value: &js_ast.EObject{}})
	legacy.synthetic = "default"
	l := link(t, nil,
		entry("a.js").importNamed("legacy.js", "foo").add(use("foo")),
		legacy,
	)
	test.AssertEqual(t, l.err, nil)

	foo, ok := l.module("legacy.js").LookupExport("foo").(*js_ast.SyntheticNamedExportVariable)
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, foo.Included, true)
	test.AssertEqual(t, l.module("legacy.js").IsIncluded(), true)
}

func TestSyntheticNamedExportsThroughExportStar(t *testing.T) {
	legacy := file("legacy.js").add(&js_ast.SExportDefault{Value: &js_ast.EObject{}})
	legacy.synthetic = "default"
	l := link(t, nil,
		entry("a.js").importNamed("b.js", "foo", "x").add(use("foo"), use("x")),
		file("b.js").exportStar("legacy.js").exportStar("c.js"),
		file("c.js").exportConst("x", num(2)),
		legacy,
	)
	test.AssertEqual(t, l.err, nil)

	_, ok := l.module("b.js").LookupExport("foo").(*js_ast.SyntheticNamedExportVariable)
	test.AssertEqual(t, ok, true)
	test.AssertEqual(t, l.module("b.js").LookupExport("x"), l.module("c.js").Scope.Variables["x"])
	test.AssertEqual(t, len(l.messages(logger.MsgID_Bundler_NamespaceConflict)), 0)
}

func TestSyntheticNamedExportsNeedDefault(t *testing.T) {
	legacy := file("legacy.js").exportConst("x", num(1))
	legacy.synthetic = "default"
	l := link(t, nil,
		entry("a.js").importNamed("legacy.js", "foo").add(use("foo")),
		legacy,
	)
	test.AssertEqual(t, l.err != nil, true)
	test.AssertEqual(t, l.err.(*LinkError).Code, SyntheticNamedExportsNeedDefault)
}

func TestNamespaceConflict(t *testing.T) {
	l := link(t, nil,
		entry("a.js").importNamed("b.js", "x").add(use("x")),
		file("b.js").exportStar("c.js").exportStar("d.js"),
		file("c.js").exportConst("x", num(1)),
		file("d.js").exportConst("x", num(2)),
	)
	test.AssertEqual(t, l.err, nil)
	test.AssertEqual(t, l.module("b.js").LookupExport("x"), l.module("c.js").Scope.Variables["x"])
	test.AssertEqual(t, len(l.messages(logger.MsgID_Bundler_NamespaceConflict)), 1)
	test.AssertEqual(t, includedNames(l.module("d.js")), []string(nil))
}

func TestSideEffectFreeModuleIsSkipped(t *testing.T) {
	for _, sideEffects := range []bool{true, false} {
		pure := file("pure.js").add(use())
		pure.noSideEffects = !sideEffects
		l := link(t, nil,
			entry("a.js").importBare("pure.js"),
			pure,
		)
		test.AssertEqual(t, l.err, nil)
		test.AssertEqual(t, l.module("pure.js").IsExecuted(), sideEffects)
		test.AssertEqual(t, l.module("pure.js").IsIncluded(), sideEffects)
	}
}

func TestSideEffectFreeModuleRunsWhenUsed(t *testing.T) {
	pure := file("pure.js").exportConst("x", num(1)).add(use())
	pure.noSideEffects = true
	l := link(t, nil,
		entry("a.js").importNamed("pure.js", "x").add(use("x")),
		pure,
	)
	test.AssertEqual(t, l.err, nil)
	test.AssertEqual(t, l.module("pure.js").IsExecuted(), true)
	test.AssertEqual(t, l.module("pure.js").AST.Stmts[1].Base().Included, true)
}

func TestUnusedExportsAreDropped(t *testing.T) {
	l := link(t, nil,
		entry("a.js").importNamed("b.js", "used").add(use("used")),
		file("b.js").exportConst("used", num(1)).exportConst("unused", num(2)),
	)
	test.AssertEqual(t, l.err, nil)
	test.AssertEqual(t, includedNames(l.module("b.js")), []string{"used"})
}

func TestNamespaceImportIncludesEverything(t *testing.T) {
	l := link(t, nil,
		entry("a.js").importNamespace("b.js", "ns").add(use("ns")),
		file("b.js").exportConst("x", num(1)).exportConst("y", num(2)),
	)
	test.AssertEqual(t, l.err, nil)
	test.AssertEqual(t, includedNames(l.module("b.js")), []string{"x", "y"})
	test.AssertEqual(t, l.module("b.js").Namespace().Included, true)
}

func TestDynamicImportIncludesAllExports(t *testing.T) {
	l := link(t, nil,
		entry("a.js").dynamicImport("lazy.js"),
		file("lazy.js").exportConst("x", num(1)).exportConst("y", num(2)),
	)
	test.AssertEqual(t, l.err, nil)
	test.AssertEqual(t, includedNames(l.module("lazy.js")), []string{"x", "y"})
}

func TestUnusedExternalImport(t *testing.T) {
	l := link(t, nil,
		entry("a.js").importNamed("lodash", "map", "filter", "reduce").add(use("map")),
	)
	test.AssertEqual(t, l.err, nil)
	test.AssertEqual(t, l.messages(logger.MsgID_Bundler_UnusedExternalImport), []string{
		`"filter" and "reduce" imported from external module "lodash" but never used in "a.js"`,
	})

	externals := l.graph.Externals()
	test.AssertEqual(t, len(externals), 1)
	test.AssertEqual(t, externals[0].IsUsed(), true)
}

func TestEmptyFacade(t *testing.T) {
	l := link(t, nil,
		entry("empty.js").importBare("b.js"),
		file("b.js").exportConst("x", num(1)),
	)
	test.AssertEqual(t, l.err, nil)
	test.AssertEqual(t, l.messages(logger.MsgID_Bundler_EmptyFacade), []string{`Entry module "empty.js" is empty`})
}

func TestTreeShakingDisabled(t *testing.T) {
	options := config.DefaultOptions()
	options.TreeShaking.Enabled = false
	l := link(t, options,
		entry("a.js").importNamed("b.js", "used").add(use("used")),
		file("b.js").exportConst("used", num(1)).exportConst("unused", num(2)),
	)
	test.AssertEqual(t, l.err, nil)
	test.AssertEqual(t, includedNames(l.module("b.js")), []string{"used", "unused"})
}

func TestInclusionIsMonotonic(t *testing.T) {
	l := link(t, nil,
		entry("a.js").importNamed("b.js", "f").add(use("f")),
		file("b.js").importNamed("c.js", "g").exportConst("f", &js_ast.EIdentifier{Name: "g"}),
		file("c.js").exportConst("g", num(1)).exportConst("h", num(2)),
	)
	test.AssertEqual(t, l.err, nil)

	snapshot := func() (included []bool) {
		for _, m := range l.graph.Modules() {
			js_ast.Walk(m.AST, func(node js_ast.Node) bool {
				included = append(included, node.Base().Included)
				return true
			})
		}
		return
	}
	before := snapshot()
	test.AssertEqual(t, l.graph.TreeshakingPass(), false)
	test.AssertEqual(t, snapshot(), before)
	test.AssertEqual(t, includedNames(l.module("c.js")), []string{"g"})
}

func TestDependenciesToBeIncluded(t *testing.T) {
	pure := file("pure.js").importNamed("effect.js", "unused")
	pure.noSideEffects = true
	l := link(t, nil,
		entry("a.js").importNamed("b.js", "x").importBare("pure.js").importBare("effect.js").add(use("x")),
		file("b.js").exportConst("x", num(1)),
		pure,
		file("effect.js").exportConst("unused", num(1)).add(use()),
	)
	test.AssertEqual(t, l.err, nil)

	var ids []string
	for _, index := range l.module("a.js").GetDependenciesToBeIncluded() {
		ids = append(ids, l.graph.Files[index].Repr.ID())
	}
	test.AssertEqual(t, ids, []string{"b.js", "effect.js"})
}

func TestExportNamesByVariable(t *testing.T) {
	l := link(t, nil,
		entry("a.js").
			exportConst("x", num(1)).
			add(&js_ast.SExportClause{Items: []js_ast.ClauseItem{{Alias: "y", Name: "x"}}}),
	)
	test.AssertEqual(t, l.err, nil)

	a := l.module("a.js")
	byVariable := a.GetExportNamesByVariable()
	test.AssertEqual(t, byVariable[a.Scope.Variables["x"]], []string{"x", "y"})
	test.AssertEqual(t, strings.Join(a.GetAllExportNames(), ","), "x,y")
}
