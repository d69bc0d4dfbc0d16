package js_parser

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanw/treeshake/internal/ast"
	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/logger"
)

func parse(t *testing.T, contents string) *js_ast.Program {
	t.Helper()
	log := logger.NewDeferLog()
	program, ok := Parse(log, logger.Source{PrettyPath: "<stdin>", Contents: contents})
	require.True(t, ok, "messages: %v", log.Done())
	return program
}

func parseErrors(t *testing.T, contents string) []string {
	t.Helper()
	log := logger.NewDeferLog()
	_, ok := Parse(log, logger.Source{PrettyPath: "<stdin>", Contents: contents})
	require.False(t, ok)
	var texts []string
	for _, msg := range log.Done() {
		texts = append(texts, msg.Data.Text)
	}
	return texts
}

func expr(t *testing.T, contents string) js_ast.Node {
	t.Helper()
	program := parse(t, contents)
	require.Len(t, program.Stmts, 1)
	stmt, ok := program.Stmts[0].(*js_ast.SExpr)
	require.True(t, ok, "expected an expression statement, got %T", program.Stmts[0])
	return stmt.Value
}

func TestImportForms(t *testing.T) {
	program := parse(t, `
		import def, { a, b as c, "x-y" as d } from "./one";
		import * as ns from './two';
		import './three';
	`)
	require.Len(t, program.Stmts, 3)
	require.Len(t, program.ImportRecords, 3)

	first := program.Stmts[0].(*js_ast.SImport)
	assert.Equal(t, "def", first.DefaultName)
	assert.Equal(t, []string{"a", "b", "x-y"}, aliases(first.Items))
	assert.Equal(t, []string{"a", "c", "d"}, names(first.Items))
	assert.Equal(t, "./one", program.ImportRecords[first.ImportRecordIndex].Path)
	assert.True(t, program.ImportRecords[0].Flags.Has(ast.ContainsDefaultAlias))

	second := program.Stmts[1].(*js_ast.SImport)
	assert.Equal(t, "ns", second.NamespaceName)
	assert.True(t, program.ImportRecords[1].Flags.Has(ast.ContainsImportStar))
	assert.Equal(t, "./two", program.ImportRecords[1].Path)

	third := program.Stmts[2].(*js_ast.SImport)
	assert.Empty(t, third.Items)
	assert.True(t, program.ImportRecords[2].Flags.Has(ast.WasOriginallyBareImport))

	for _, record := range program.ImportRecords {
		assert.Equal(t, ast.ImportStmt, record.Kind)
	}
}

func aliases(items []js_ast.ClauseItem) (out []string) {
	for _, item := range items {
		out = append(out, item.Alias)
	}
	return
}

func names(items []js_ast.ClauseItem) (out []string) {
	for _, item := range items {
		out = append(out, item.Name)
	}
	return
}

func TestExportForms(t *testing.T) {
	program := parse(t, `
		export const x = 1, y = 2;
		export function f() {}
		export class C {}
		export { x as z, f };
		export { a as b } from "./a";
		export * from "./b";
		export * as ns from "./c";
		export default 123;
	`)
	require.Len(t, program.Stmts, 8)

	local := program.Stmts[0].(*js_ast.SLocal)
	assert.True(t, local.IsExport)
	assert.Equal(t, js_ast.LocalConst, local.Kind)
	assert.Len(t, local.Decls, 2)

	assert.True(t, program.Stmts[1].(*js_ast.SFunction).IsExport)
	assert.True(t, program.Stmts[2].(*js_ast.SClass).IsExport)

	clause := program.Stmts[3].(*js_ast.SExportClause)
	assert.Equal(t, []string{"z", "f"}, aliases(clause.Items))
	assert.Equal(t, []string{"x", "f"}, names(clause.Items))

	from := program.Stmts[4].(*js_ast.SExportFrom)
	assert.Equal(t, []string{"b"}, aliases(from.Items))
	assert.Equal(t, "./a", program.ImportRecords[from.ImportRecordIndex].Path)
	assert.True(t, program.ImportRecords[from.ImportRecordIndex].Flags.Has(ast.IsReExport))

	star := program.Stmts[5].(*js_ast.SExportStar)
	assert.Equal(t, "", star.Alias)
	assert.Equal(t, "./b", program.ImportRecords[star.ImportRecordIndex].Path)

	namedStar := program.Stmts[6].(*js_ast.SExportStar)
	assert.Equal(t, "ns", namedStar.Alias)

	def := program.Stmts[7].(*js_ast.SExportDefault)
	assert.Equal(t, 123.0, def.Value.(*js_ast.ENumber).Value)
}

func TestExportDefaultDeclarations(t *testing.T) {
	program := parse(t, `export default function named() {}`)
	fn := program.Stmts[0].(*js_ast.SExportDefault).Value.(*js_ast.SFunction)
	require.NotNil(t, fn.Fn.ID)
	assert.Equal(t, "named", fn.Fn.ID.Name)

	program = parse(t, `export default class {}`)
	class := program.Stmts[0].(*js_ast.SExportDefault).Value.(*js_ast.SClass)
	assert.Nil(t, class.Class.ID)

	program = parse(t, `export default (function () {})`)
	_, isExpr := program.Stmts[0].(*js_ast.SExportDefault).Value.(*js_ast.EFunction)
	assert.True(t, isExpr)
}

func TestDynamicImport(t *testing.T) {
	program := parse(t, `import("./lazy"); import(name);`)
	require.Len(t, program.ImportRecords, 1)
	assert.Equal(t, ast.ImportDynamic, program.ImportRecords[0].Kind)

	known := program.Stmts[0].(*js_ast.SExpr).Value.(*js_ast.EImportCall)
	assert.True(t, known.ImportRecordIndex.IsValid())
	assert.Equal(t, uint32(0), known.ImportRecordIndex.GetIndex())

	unknown := program.Stmts[1].(*js_ast.SExpr).Value.(*js_ast.EImportCall)
	assert.False(t, unknown.ImportRecordIndex.IsValid())
}

func TestPureAnnotations(t *testing.T) {
	program := parse(t, `
		/* @__PURE__ */ a();
		/*#__PURE__*/ new B();
		/* @__PURE__ */ (c());
		// @__PURE__
		d();
		e();
	`)
	require.Len(t, program.Stmts, 5)
	value := func(i int) js_ast.Node { return program.Stmts[i].(*js_ast.SExpr).Value }
	assert.True(t, value(0).(*js_ast.ECall).CanBeUnwrappedIfUnused)
	assert.True(t, value(1).(*js_ast.ENew).CanBeUnwrappedIfUnused)
	assert.True(t, value(2).(*js_ast.ECall).CanBeUnwrappedIfUnused)
	assert.False(t, value(3).(*js_ast.ECall).CanBeUnwrappedIfUnused, "line comments are not annotations")
	assert.False(t, value(4).(*js_ast.ECall).CanBeUnwrappedIfUnused)
}

func TestLiterals(t *testing.T) {
	assert.Equal(t, "a\nbé\U0001F600", expr(t, `"a\nb\xe9\u{1F600}"`).(*js_ast.EString).Value)
	assert.Equal(t, "\U0001F600", expr(t, `'😀'`).(*js_ast.EString).Value)
	assert.Equal(t, 255.0, expr(t, `0xff`).(*js_ast.ENumber).Value)
	assert.Equal(t, 1000000.0, expr(t, `1_000_000`).(*js_ast.ENumber).Value)
	assert.Equal(t, 511.0, expr(t, `0o777`).(*js_ast.ENumber).Value)
	assert.Equal(t, 0.5, expr(t, `.5`).(*js_ast.ENumber).Value)
	assert.Equal(t, "255", expr(t, `0xffn`).(*js_ast.EBigInt).Value)
	assert.Equal(t, true, expr(t, `true`).(*js_ast.EBoolean).Value)
	assert.Equal(t, "/a+/g", expr(t, `/a+/g`).(*js_ast.ERegExp).Value)
	assert.IsType(t, &js_ast.ENull{}, expr(t, `null`))
	assert.Equal(t, "undefined", expr(t, `undefined`).(*js_ast.EIdentifier).Name)
}

func TestNumericLiteralEdgeCases(t *testing.T) {
	value, _, _ := parseNumericLiteral("0777")
	assert.Equal(t, 511.0, value)
	value, _, _ = parseNumericLiteral("089")
	assert.Equal(t, 89.0, value)
	value, _, _ = parseNumericLiteral("1e400")
	assert.True(t, math.IsInf(value, 1))
	_, digits, isBigInt := parseNumericLiteral("0b101n")
	assert.True(t, isBigInt)
	assert.Equal(t, "5", digits)
}

func TestTemplates(t *testing.T) {
	template := expr(t, "`a${b}c${d}e`").(*js_ast.ETemplate)
	assert.Nil(t, template.TagOrNil)
	assert.Equal(t, "a", template.HeadCooked)
	require.Len(t, template.Parts, 2)
	assert.Equal(t, "c", template.Parts[0].TailCooked)
	assert.Equal(t, "e", template.Parts[1].TailCooked)
	assert.Equal(t, "b", template.Parts[0].Value.(*js_ast.EIdentifier).Name)

	tagged := expr(t, "tag`x\\n`").(*js_ast.ETemplate)
	assert.Equal(t, "tag", tagged.TagOrNil.(*js_ast.EIdentifier).Name)
	assert.Equal(t, "x\n", tagged.HeadCooked)
	assert.Empty(t, tagged.Parts)
}

func TestOperators(t *testing.T) {
	logical := expr(t, `a ?? b`).(*js_ast.ELogical)
	assert.Equal(t, js_ast.BinOpNullishCoalescing, logical.Op)

	binary := expr(t, `a instanceof b`).(*js_ast.EBinary)
	assert.Equal(t, js_ast.BinOpInstanceof, binary.Op)

	assign := expr(t, `a += 1`).(*js_ast.EAssign)
	assert.Equal(t, js_ast.BinOpAddAssign, assign.Op)

	assert.Equal(t, js_ast.UnOpPostInc, expr(t, `a++`).(*js_ast.EUpdate).Op)
	assert.Equal(t, js_ast.UnOpPreDec, expr(t, `--a`).(*js_ast.EUpdate).Op)
	assert.Equal(t, js_ast.UnOpTypeof, expr(t, `typeof a`).(*js_ast.EUnary).Op)

	sequence := expr(t, `(a, b, c)`).(*js_ast.ESequence)
	assert.Len(t, sequence.Exprs, 3)

	ternary := expr(t, `a ? b : c`).(*js_ast.EIf)
	assert.Equal(t, "c", ternary.No.(*js_ast.EIdentifier).Name)
}

func TestMemberAccess(t *testing.T) {
	dot := expr(t, `a.b.c`).(*js_ast.EDot)
	assert.Equal(t, "c", dot.Name)
	assert.Equal(t, "b", dot.Target.(*js_ast.EDot).Name)

	index := expr(t, `a["b"]`).(*js_ast.EIndex)
	assert.Equal(t, "b", index.Index.(*js_ast.EString).Value)

	optional := expr(t, `a?.b`).(*js_ast.EDot)
	assert.Equal(t, "a", optional.Target.(*js_ast.EIdentifier).Name)
}

func TestFunctions(t *testing.T) {
	program := parse(t, `
		async function* f(a, [b, , c], {d, e: g = 1, ...h}, ...rest) {}
		const arrow = x => x;
		const block = async (y = 2) => { return y };
	`)
	fn := program.Stmts[0].(*js_ast.SFunction).Fn
	assert.True(t, fn.IsAsync)
	assert.True(t, fn.IsGenerator)
	assert.True(t, fn.IsDeclaration)
	assert.True(t, fn.HasRest)
	require.Len(t, fn.Params, 4)

	array := fn.Params[1].(*js_ast.BArray)
	require.Len(t, array.Items, 3)
	assert.IsType(t, &js_ast.EMissing{}, array.Items[1])

	object := fn.Params[2].(*js_ast.BObject)
	require.Len(t, object.Properties, 3)
	assert.Equal(t, "d", object.Properties[0].KeyOrNil.(*js_ast.EString).Value)
	assert.IsType(t, &js_ast.BDefault{}, object.Properties[1].Value)
	assert.True(t, object.Properties[2].IsRest)
	assert.IsType(t, &js_ast.BRest{}, fn.Params[3])

	arrow := program.Stmts[1].(*js_ast.SLocal).Decls[0].ValueOrNil.(*js_ast.EFunction)
	assert.True(t, arrow.IsArrow)
	assert.True(t, arrow.PreferExpr)
	require.Len(t, arrow.Body.Stmts, 1)
	assert.IsType(t, &js_ast.SReturn{}, arrow.Body.Stmts[0])

	block := program.Stmts[2].(*js_ast.SLocal).Decls[0].ValueOrNil.(*js_ast.EFunction)
	assert.True(t, block.IsArrow)
	assert.True(t, block.IsAsync)
	assert.False(t, block.PreferExpr)
	assert.IsType(t, &js_ast.BDefault{}, block.Params[0])
}

func TestClasses(t *testing.T) {
	program := parse(t, `
		class A extends B {
			constructor() { super() }
			static x = 1;
			#y;
			get z() { return this.#y }
			static { init() }
			[key]() {}
		}
	`)
	class := program.Stmts[0].(*js_ast.SClass).Class
	assert.True(t, class.IsDeclaration)
	assert.Equal(t, "B", class.ExtendsOrNil.(*js_ast.EIdentifier).Name)
	require.Len(t, class.Properties, 6)

	ctor := class.Properties[0]
	assert.True(t, ctor.Flags.Has(js_ast.PropertyIsMethod))
	assert.Equal(t, "constructor", ctor.KeyOrNil.(*js_ast.EString).Value)

	field := class.Properties[1]
	assert.True(t, field.Flags.Has(js_ast.PropertyIsStatic))
	assert.False(t, field.Flags.Has(js_ast.PropertyIsMethod))

	assert.Equal(t, "y", class.Properties[2].KeyOrNil.(*js_ast.EPrivateIdentifier).Name)
	assert.Equal(t, js_ast.PropertyGet, class.Properties[3].Kind)
	assert.Equal(t, js_ast.PropertyClassStaticBlock, class.Properties[4].Kind)
	assert.True(t, class.Properties[5].Flags.Has(js_ast.PropertyIsComputed))
}

func TestObjects(t *testing.T) {
	object := expr(t, `({a, b: 1, [c]: 2, m() {}, ...d})`).(*js_ast.EObject)
	require.Len(t, object.Properties, 5)
	assert.Equal(t, "a", object.Properties[0].ValueOrNil.(*js_ast.EIdentifier).Name)
	assert.True(t, object.Properties[2].Flags.Has(js_ast.PropertyIsComputed))
	assert.True(t, object.Properties[3].Flags.Has(js_ast.PropertyIsMethod))
	assert.Equal(t, js_ast.PropertySpread, object.Properties[4].Kind)
}

func TestArrayHoles(t *testing.T) {
	array := expr(t, `[, a, , b, ]`).(*js_ast.EArray)
	require.Len(t, array.Items, 4)
	assert.IsType(t, &js_ast.EMissing{}, array.Items[0])
	assert.IsType(t, &js_ast.EMissing{}, array.Items[2])
}

func TestDestructuringAssignment(t *testing.T) {
	assign := expr(t, `[a, b.c] = d`).(*js_ast.EAssign)
	target := assign.Target.(*js_ast.BArray)
	assert.IsType(t, &js_ast.BIdentifier{}, target.Items[0])
	assert.IsType(t, &js_ast.EDot{}, target.Items[1])

	plain := expr(t, `a = 1`).(*js_ast.EAssign)
	assert.IsType(t, &js_ast.EIdentifier{}, plain.Target)
}

func TestStatements(t *testing.T) {
	program := parse(t, `
		if (a) b(); else { c() }
		for (let i = 0; i < 1; i++) {}
		for (const k in o) {}
		for await (x of y) {}
		while (a) break;
		do continue; while (a)
		outer: for (;;) break outer;
		switch (a) { case 1: b(); default: c() }
		try { a() } catch { b() } finally { c() }
		try {} catch (e) {}
		throw a;
		debugger;
		;
	`)
	require.Len(t, program.Stmts, 13)

	branch := program.Stmts[0].(*js_ast.SIf)
	assert.IsType(t, &js_ast.SBlock{}, branch.NoOrNil)

	loop := program.Stmts[1].(*js_ast.SFor)
	assert.Equal(t, js_ast.LocalLet, loop.InitOrNil.(*js_ast.SLocal).Kind)
	assert.IsType(t, &js_ast.EUpdate{}, loop.UpdateOrNil)

	forIn := program.Stmts[2].(*js_ast.SForIn)
	assert.Equal(t, js_ast.LocalConst, forIn.Init.(*js_ast.SLocal).Kind)

	forOf := program.Stmts[3].(*js_ast.SForOf)
	assert.True(t, forOf.IsAwait)
	assert.IsType(t, &js_ast.EIdentifier{}, forOf.Init)

	label := program.Stmts[6].(*js_ast.SLabel)
	assert.Equal(t, "outer", label.Name)
	empty := label.Stmt.(*js_ast.SFor)
	assert.Nil(t, empty.TestOrNil)
	assert.Equal(t, "outer", empty.Body.(*js_ast.SBreak).Label)

	cases := program.Stmts[7].(*js_ast.SSwitch).Cases
	require.Len(t, cases, 2)
	assert.NotNil(t, cases[0].ValueOrNil)
	assert.Nil(t, cases[1].ValueOrNil)
	assert.Len(t, cases[0].Body, 1)

	try := program.Stmts[8].(*js_ast.STry)
	require.NotNil(t, try.CatchOrNil)
	assert.Nil(t, try.CatchOrNil.BindingOrNil)
	assert.NotNil(t, try.FinallyOrNil)

	assert.NotNil(t, program.Stmts[9].(*js_ast.STry).CatchOrNil.BindingOrNil)
	assert.IsType(t, &js_ast.SThrow{}, program.Stmts[10])
	assert.IsType(t, &js_ast.SDebugger{}, program.Stmts[11])
	assert.IsType(t, &js_ast.SEmpty{}, program.Stmts[12])
}

func TestRanges(t *testing.T) {
	contents := `let value = foo(1)`
	program := parse(t, contents)
	decl := program.Stmts[0].(*js_ast.SLocal).Decls[0]
	call := decl.ValueOrNil.(*js_ast.ECall)
	source := logger.Source{Contents: contents}
	assert.Equal(t, "foo(1)", source.TextForRange(call.Range))
}

func TestSyntaxErrors(t *testing.T) {
	assert.NotEmpty(t, parseErrors(t, `let = ;`))
	assert.NotEmpty(t, parseErrors(t, `function (`))
}

func TestTreeCanBeConvertedTwice(t *testing.T) {
	source := logger.Source{PrettyPath: "<stdin>", Contents: `export const a = 1`}
	tree, err := NewParser().ParseTree(context.Background(), source.Contents)
	require.NoError(t, err)
	defer tree.Close()

	first, ok := Convert(logger.NewDeferLog(), source, tree)
	require.True(t, ok)
	second, ok := Convert(logger.NewDeferLog(), source, tree)
	require.True(t, ok)
	assert.NotSame(t, first.Stmts[0], second.Stmts[0])
	assert.Equal(t, len(first.Stmts), len(second.Stmts))
}
