package bundler

import (
	"context"
	"testing"

	"github.com/evanw/treeshake/internal/cache"
	"github.com/evanw/treeshake/internal/config"
	"github.com/evanw/treeshake/internal/fs"
	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/logger"
	"github.com/evanw/treeshake/internal/resolver"
	"github.com/evanw/treeshake/internal/test"
)

func assertLog(t *testing.T, msgs []logger.Msg, expected string) {
	t.Helper()
	text := ""
	for _, msg := range msgs {
		text += msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
	}
	test.AssertEqualWithDiff(t, text, expected)
}

func hasErrors(msgs []logger.Msg) bool {
	for _, msg := range msgs {
		if msg.Kind == logger.Error {
			return true
		}
	}
	return false
}

type bundled struct {
	files              map[string]string
	entryPaths         []string
	options            func(options *config.Options)
	expected           string
	expectedScanLog    string
	expectedCompileLog string
}

type testBuild struct {
	fs      fs.FS
	options *config.ProcessedOptions
	caches  *cache.CacheSet
}

func newTestBuild(args bundled) testBuild {
	options := config.DefaultOptions()
	if args.options != nil {
		args.options(options)
	}
	return testBuild{
		fs:      fs.MockFS(args.files),
		options: config.ProcessOptions(*options),
		caches:  cache.MakeCacheSet(),
	}
}

// Returns the rendered output, or false if a phase failed
func (b testBuild) run(t *testing.T, args bundled) (string, bool) {
	t.Helper()
	log := logger.NewDeferLog()
	res := resolver.NewResolver(b.fs, log, b.options)
	bundle, ok := ScanBundle(context.Background(), log, b.fs, res, b.caches, args.entryPaths, b.options, nil)
	msgs := log.Done()
	assertLog(t, msgs, args.expectedScanLog)

	// Stop now if there were any errors during the scan
	if !ok || hasErrors(msgs) {
		return "", false
	}

	log = logger.NewDeferLog()
	result, ok := bundle.Compile(log, nil)
	msgs = log.Done()
	assertLog(t, msgs, args.expectedCompileLog)
	if !ok || hasErrors(msgs) {
		return "", false
	}
	return result.Output(), true
}

func expectBundled(t *testing.T, args bundled) {
	t.Helper()
	t.Run("", func(t *testing.T) {
		t.Helper()
		if output, ok := newTestBuild(args).run(t, args); ok {
			test.AssertEqualWithDiff(t, output, args.expected)
		}
	})
}

func TestUnusedExportsAreRemoved(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { used } from './lib'\nconsole.log(used)\n",
			"/lib.js":   "export const used = 1\nexport const unused = 2\nexport function alsoUnused() {}\n",
		},
		entryPaths: []string{"/entry.js"},
		expected:   "// lib.js\nconst used = 1\n\n// entry.js\nconsole.log(used)\n",
	})
}

func TestEntryKeepsItsExports(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { helper } from './lib'\nexport const api = helper\nconst internal = 1\n",
			"/lib.js":   "export function helper() {}\nexport function other() {}\n",
		},
		entryPaths: []string{"/entry.js"},
		expected:   "// lib.js\nfunction helper() {}\n\n// entry.js\nconst api = helper\n",
	})
}

func TestUnusedDeclaratorsAreRemoved(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "const a = 1, b = 2, c = 3\nconsole.log(a, c)\n",
		},
		entryPaths: []string{"/entry.js"},
		expected:   "// entry.js\nconst a = 1, c = 3\nconsole.log(a, c)\n",
	})
}

func TestPureAnnotations(t *testing.T) {
	files := map[string]string{
		"/entry.js": "const x = /* @__PURE__ */ make(), y = /* #__PURE__ */ make()\nconst z = make()\n",
	}
	expectBundled(t, bundled{
		files:      files,
		entryPaths: []string{"/entry.js"},
		expected:   "// entry.js\nconst z = make()\n",
	})
	expectBundled(t, bundled{
		files:      files,
		entryPaths: []string{"/entry.js"},
		options: func(options *config.Options) {
			options.TreeShaking.Annotations = false
		},
		expected: "// entry.js\nconst x = /* @__PURE__ */ make(), y = /* #__PURE__ */ make()\nconst z = make()\n",
	})
}

func TestCodeAfterReturnIsRemoved(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": `function f(x) {
  switch (x) {
    case 1:
      return 'one'
    default:
      return 'other'
  }
  unreachable()
}
console.log(f(1))
`,
		},
		entryPaths: []string{"/entry.js"},
		expected: `// entry.js
function f(x) {
  switch (x) {
    case 1:
      return 'one'
    default:
      return 'other'
  }
}
console.log(f(1))
`,
	})
}

func TestKnownTestSkipsCall(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "function f() {\n  if (true) return\n  sideEffect()\n}\nf()\n",
		},
		entryPaths:         []string{"/entry.js"},
		expected:           "",
		expectedCompileLog: "entry.js:1:0: warning: Entry module \"entry.js\" is empty\n",
	})
}

func TestTreeShakingDisabled(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { a } from './lib'\nconsole.log(a)\n",
			"/lib.js":   "export const a = 1\nexport const b = 2\n",
		},
		entryPaths: []string{"/entry.js"},
		options: func(options *config.Options) {
			options.TreeShaking.Enabled = false
		},
		expected: "// lib.js\nconst a = 1\nconst b = 2\n\n// entry.js\nconsole.log(a)\n",
	})
}

func TestPackageJsonSideEffectsFalseKeepNamedImport(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/src/entry.js":                       "import {foo} from 'demo-pkg'\nconsole.log(foo)\n",
			"/node_modules/demo-pkg/index.js":     "export const foo = 123\nconsole.log('hello')\n",
			"/node_modules/demo-pkg/package.json": `{ "sideEffects": false }`,
		},
		entryPaths: []string{"/src/entry.js"},
		expected:   "// node_modules/demo-pkg/index.js\nconst foo = 123\nconsole.log('hello')\n\n// src/entry.js\nconsole.log(foo)\n",
	})
}

func TestPackageJsonSideEffectsFalseRemoveBareImport(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/src/entry.js":                       "import 'demo-pkg'\nconsole.log('unused import')\n",
			"/node_modules/demo-pkg/index.js":     "export const foo = 123\nconsole.log('hello')\n",
			"/node_modules/demo-pkg/package.json": `{ "sideEffects": false }`,
		},
		entryPaths: []string{"/src/entry.js"},
		expected:   "// src/entry.js\nconsole.log('unused import')\n",
	})
}

func TestPackageJsonSideEffectsArray(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/src/entry.js":                       "import 'demo-pkg/side.js'\nimport 'demo-pkg/pure.js'\nconsole.log('entry')\n",
			"/node_modules/demo-pkg/side.js":      "console.log('side')\n",
			"/node_modules/demo-pkg/pure.js":      "console.log('pure')\n",
			"/node_modules/demo-pkg/package.json": `{ "sideEffects": ["./side.js"] }`,
		},
		entryPaths: []string{"/src/entry.js"},
		expected:   "// node_modules/demo-pkg/side.js\nconsole.log('side')\n\n// src/entry.js\nconsole.log('entry')\n",
	})
}

func TestNoSideEffectsOptionWinsOverDefault(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/src/entry.js":                   "import 'demo-pkg'\nimport './local'\nconsole.log('entry')\n",
			"/src/local.js":                   "console.log('local')\n",
			"/node_modules/demo-pkg/index.js": "console.log('hello')\n",
		},
		entryPaths: []string{"/src/entry.js"},
		options: func(options *config.Options) {
			options.TreeShaking.NoSideEffects = []string{"node_modules/**"}
		},
		expected: "// src/local.js\nconsole.log('local')\n\n// src/entry.js\nconsole.log('entry')\n",
	})
}

func TestModuleSideEffectsDefaultFalse(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import './a'\nimport { b } from './b'\nconsole.log(b)\n",
			"/a.js":     "console.log('a')\n",
			"/b.js":     "console.log('b')\nexport const b = 1\n",
		},
		entryPaths: []string{"/entry.js"},
		options: func(options *config.Options) {
			options.TreeShaking.ModuleSideEffects = false
		},
		expected: "// b.js\nconsole.log('b')\nconst b = 1\n\n// entry.js\nconsole.log(b)\n",
	})
}

func TestCircularImport(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/a.js": "import { b } from './b'\nexport const a = 1\nconsole.log(b)\n",
			"/b.js": "import { a } from './a'\nexport const b = 2\nexport function getA() { return a }\n",
		},
		entryPaths:         []string{"/a.js"},
		expected:           "// b.js\nconst b = 2\n\n// a.js\nconst a = 1\nconsole.log(b)\n",
		expectedCompileLog: "warning: Circular dependency: a.js -> b.js -> a.js\n",
	})
}

func TestExportStarCycleTerminates(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { x, y } from './a'\nconsole.log(x, y)\n",
			"/a.js":     "export * from './b'\nexport const x = 1\n",
			"/b.js":     "export * from './a'\nexport const y = 2\n",
		},
		entryPaths:         []string{"/entry.js"},
		expected:           "// b.js\nconst y = 2\n\n// a.js\nconst x = 1\n\n// entry.js\nconsole.log(x, y)\n",
		expectedCompileLog: "warning: Circular dependency: a.js -> b.js -> a.js\n",
	})
}

func TestReexportChain(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { renamed } from './facade'\nconsole.log(renamed)\n",
			"/facade.js": "export { value as renamed } from './impl'\nexport * from './other'\n",
			"/impl.js":   "export const value = 'impl'\nexport const extra = 'extra'\n",
			"/other.js":  "export const unrelated = 1\n",
		},
		entryPaths: []string{"/entry.js"},
		expected:   "// impl.js\nconst value = 'impl'\n\n// entry.js\nconsole.log(renamed)\n",
	})
}

func TestDynamicImportKeepsAllExports(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import('./lazy').then(m => m.run())\n",
			"/lazy.js":  "export function run() {}\nexport const unused = 1\n",
		},
		entryPaths: []string{"/entry.js"},
		expected:   "// entry.js\nimport('./lazy').then(m => m.run())\n\n// lazy.js\nfunction run() {}\nconst unused = 1\n",
	})
}

func TestUnusedExternalImport(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { used, unused } from 'ext'\nconsole.log(used)\n",
		},
		entryPaths: []string{"/entry.js"},
		options: func(options *config.Options) {
			options.External = []string{"ext"}
		},
		expected:           "// entry.js\nconsole.log(used)\n",
		expectedCompileLog: "warning: \"unused\" imported from external module \"ext\" but never used in \"entry.js\"\n",
	})
}

func TestMissingPackageIsExternal(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import 'left-pad'\nconsole.log(1)\n",
		},
		entryPaths:      []string{"/entry.js"},
		expected:        "// entry.js\nconsole.log(1)\n",
		expectedScanLog: "entry.js:1:7: warning: Could not find package \"left-pad\", treating it as external\n",
	})
}

func TestMissingRelativeImport(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import './missing'\nconsole.log(1)\n",
		},
		entryPaths:         []string{"/entry.js"},
		expectedCompileLog: "entry.js:1:7: error: Could not resolve \"./missing\"\n",
	})
}

func TestMissingExport(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { nope } from './lib'\nconsole.log(nope)\n",
			"/lib.js":   "export const yes = 1\n",
		},
		entryPaths:         []string{"/entry.js"},
		expectedCompileLog: "entry.js:1:9: error: No matching export in \"lib.js\" for import \"nope\" (imported by \"entry.js\")\n",
	})
}

func TestMissingExportSuggestsTypo(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/entry.js": "import { rendr } from './lib'\nrendr()\n",
			"/lib.js":   "export function render() {}\n",
		},
		entryPaths: []string{"/entry.js"},
		expectedCompileLog: "entry.js:1:9: error: No matching export in \"lib.js\" for import \"rendr\" (imported by \"entry.js\")\n" +
			"note: Did you mean to import \"render\" instead?\n",
	})
}

func TestMissingEntryPoint(t *testing.T) {
	expectBundled(t, bundled{
		files:           map[string]string{"/entry.js": ""},
		entryPaths:      []string{"/nope.js"},
		expectedScanLog: "error: Could not resolve \"/nope.js\"\n",
	})
}

func TestDuplicateEntryPoint(t *testing.T) {
	expectBundled(t, bundled{
		files:           map[string]string{"/entry.js": "console.log(1)\n"},
		entryPaths:      []string{"/entry.js", "/entry"},
		expectedScanLog: "error: Duplicate entry point \"entry.js\"\n",
	})
}

// Where tree-sitter reports the error depends on how it recovers, so only
// the file is checked
func TestSyntaxError(t *testing.T) {
	args := bundled{
		files: map[string]string{
			"/entry.js": "import './lib'\n",
			"/lib.js":   "let x = ;\n",
		},
		entryPaths: []string{"/entry.js"},
	}
	b := newTestBuild(args)
	log := logger.NewDeferLog()
	res := resolver.NewResolver(b.fs, log, b.options)
	_, ok := ScanBundle(context.Background(), log, b.fs, res, b.caches, args.entryPaths, b.options, nil)
	test.AssertEqual(t, ok, false)

	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 1)
	test.AssertEqual(t, msgs[0].Kind, logger.Error)
	test.AssertEqual(t, msgs[0].Data.Location.File, "lib.js")
}

func TestMultipleEntryPoints(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/a.js":      "import { shared } from './shared'\nexport const a = shared + 1\n",
			"/b.js":      "import { shared } from './shared'\nexport const b = shared + 2\n",
			"/shared.js": "export const shared = 0\nexport const notShared = 1\n",
		},
		entryPaths: []string{"/a.js", "/b.js"},
		expected:   "// shared.js\nconst shared = 0\n\n// a.js\nconst a = shared + 1\n\n// b.js\nconst b = shared + 2\n",
	})
}

// A second build over the same files reuses every parse and produces the
// same output
func TestRebuildUsesParseCache(t *testing.T) {
	args := bundled{
		files: map[string]string{
			"/entry.js": "import { used } from './lib'\nconsole.log(used)\n",
			"/lib.js":   "export const used = 1\nexport const unused = 2\n",
		},
		entryPaths: []string{"/entry.js"},
	}
	b := newTestBuild(args)

	first, ok := b.run(t, args)
	test.AssertEqual(t, ok, true)
	second, ok := b.run(t, args)
	test.AssertEqual(t, ok, true)
	test.AssertEqualWithDiff(t, second, first)

	hits, misses := b.caches.JSCache.Stats()
	test.AssertEqual(t, hits, uint32(2))
	test.AssertEqual(t, misses, uint32(2))
}

// Adding an entry point can only add code to the output of a module
// Every included top-level statement as "id: source text"
func includedStmts(t *testing.T, args bundled) map[string]bool {
	t.Helper()
	b := newTestBuild(args)
	log := logger.NewDeferLog()
	res := resolver.NewResolver(b.fs, log, b.options)
	bundle, ok := ScanBundle(context.Background(), log, b.fs, res, b.caches, args.entryPaths, b.options, nil)
	test.AssertEqual(t, ok, true)
	result, ok := bundle.Compile(log, nil)
	test.AssertEqual(t, ok, true)

	included := make(map[string]bool)
	for _, m := range result.Graph.Modules() {
		contents := m.Source().Contents
		for _, stmt := range m.AST.Stmts {
			switch stmt.(type) {
			case *js_ast.SImport, *js_ast.SExportClause, *js_ast.SExportFrom, *js_ast.SExportStar:
				continue
			}
			if r := stmt.Base().Range; stmt.Base().Included {
				included[m.ID()+": "+contents[r.Loc.Start:r.End()]] = true
			}
		}
	}
	return included
}

func TestInclusionIsMonotonic(t *testing.T) {
	files := map[string]string{
		"/a.js":   "import { x } from './lib'\nconsole.log(x)\n",
		"/b.js":   "import { y } from './lib'\nconsole.log(y)\n",
		"/lib.js": "export const x = 1\nexport const y = 2\nexport const z = 3\n",
	}
	small := includedStmts(t, bundled{files: files, entryPaths: []string{"/a.js"}})
	large := includedStmts(t, bundled{files: files, entryPaths: []string{"/a.js", "/b.js"}})

	test.AssertEqual(t, small, map[string]bool{
		"lib.js: const x = 1":   true,
		"a.js: console.log(x)": true,
	})
	test.AssertEqual(t, large, map[string]bool{
		"lib.js: const x = 1":   true,
		"lib.js: const y = 2":   true,
		"a.js: console.log(x)": true,
		"b.js: console.log(y)": true,
	})
	for stmt := range small {
		test.AssertEqual(t, large[stmt], true)
	}
}

func TestCanceledScan(t *testing.T) {
	args := bundled{
		files:      map[string]string{"/entry.js": "console.log(1)\n"},
		entryPaths: []string{"/entry.js"},
	}
	b := newTestBuild(args)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log := logger.NewDeferLog()
	res := resolver.NewResolver(b.fs, log, b.options)
	_, ok := ScanBundle(ctx, log, b.fs, res, b.caches, args.entryPaths, b.options, nil)
	test.AssertEqual(t, ok, false)
	assertLog(t, log.Done(), "error: Scan was interrupted: context canceled\n")
}
