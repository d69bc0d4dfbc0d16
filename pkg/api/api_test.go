package api

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanw/treeshake/internal/fs"
)

func shakeFiles(t *testing.T, files map[string]string, options ShakeOptions) ShakeResult {
	t.Helper()
	return shakeImpl(options, fs.MockFS(files))
}

func moduleByID(t *testing.T, result ShakeResult, id string) ModuleReport {
	t.Helper()
	for _, m := range result.Modules {
		if m.ID == id {
			return m
		}
	}
	require.FailNow(t, "missing module", id)
	return ModuleReport{}
}

func codes(msgs []Message) (result []string) {
	for _, msg := range msgs {
		result = append(result, msg.Code)
	}
	return
}

func TestShakeReport(t *testing.T) {
	result := shakeFiles(t, map[string]string{
		"/entry.js": "import { used } from './lib'\nimport { ext } from 'ext'\nexport const main = used + ext\n",
		"/lib.js":   "export const used = 1\nexport const unused = 2\n",
	}, ShakeOptions{
		EntryPoints: []string{"/entry.js"},
		External:    []string{"ext"},
	})
	require.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)

	require.Len(t, result.Modules, 2)
	assert.Equal(t, "lib.js", result.Modules[0].ID)
	assert.Equal(t, "entry.js", result.Modules[1].ID)

	lib := moduleByID(t, result, "lib.js")
	assert.False(t, lib.IsEntry)
	assert.True(t, lib.Executed)
	assert.True(t, lib.Included)
	assert.Equal(t, []string{"used", "unused"}, lib.Exports)
	assert.Equal(t, []string{"used"}, lib.IncludedExports)
	assert.Equal(t, 2, lib.Statements)
	assert.Equal(t, 1, lib.IncludedStatements)
	assert.Equal(t, "const used = 1\n", lib.Code)

	entry := moduleByID(t, result, "entry.js")
	assert.True(t, entry.IsEntry)
	assert.Equal(t, []string{"main"}, entry.IncludedExports)
	assert.Equal(t, []string{"lib.js", "ext"}, entry.Dependencies)
	assert.Equal(t, "const main = used + ext\n", entry.Code)

	require.Len(t, result.Externals, 1)
	assert.Equal(t, ExternalReport{
		ID:        "ext",
		Used:      true,
		UsedNames: []string{"ext"},
		Importers: []string{"entry.js"},
	}, result.Externals[0])
}

func TestShakeCycles(t *testing.T) {
	result := shakeFiles(t, map[string]string{
		"/a.js": "import './b'\nconsole.log('a')\n",
		"/b.js": "import './c'\nconsole.log('b')\n",
		"/c.js": "import './a'\nconsole.log('c')\n",
	}, ShakeOptions{EntryPoints: []string{"/a.js"}})
	require.Empty(t, result.Errors)

	assert.Equal(t, [][]string{{"a.js", "b.js", "c.js", "a.js"}}, result.Cycles)
	assert.Equal(t, [][]string{{"c.js", "b.js", "a.js"}}, result.CycleGroups)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "CIRCULAR_DEPENDENCY", result.Warnings[0].Code)
	assert.Equal(t, "Circular dependency: a.js -> b.js -> c.js -> a.js", result.Warnings[0].Text)
	assert.Nil(t, result.Warnings[0].Location)
}

func TestShakeLogOverride(t *testing.T) {
	files := map[string]string{
		"/a.js": "import './b'\nconsole.log('a')\n",
		"/b.js": "import './a'\nconsole.log('b')\n",
	}

	result := shakeFiles(t, files, ShakeOptions{
		EntryPoints: []string{"/a.js"},
		LogOverride: map[string]LogLevel{"circular-dependency": LogLevelSilent},
	})
	assert.Empty(t, result.Warnings)
	assert.Len(t, result.Cycles, 1)

	result = shakeFiles(t, files, ShakeOptions{
		EntryPoints: []string{"/a.js"},
		LogOverride: map[string]LogLevel{"circular-dependency": LogLevelError},
	})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "CIRCULAR_DEPENDENCY", result.Errors[0].Code)
}

func TestShakeErrors(t *testing.T) {
	result := shakeFiles(t, map[string]string{
		"/entry.js": "import { nope } from './lib'\nconsole.log(nope)\n",
		"/lib.js":   "export const yes = 1\n",
	}, ShakeOptions{EntryPoints: []string{"/entry.js"}})

	assert.Empty(t, result.Modules)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, `No matching export in "lib.js" for import "nope" (imported by "entry.js")`, result.Errors[0].Text)
	require.NotNil(t, result.Errors[0].Location)
	assert.Equal(t, Location{
		File:     "entry.js",
		Line:     1,
		Column:   9,
		Length:   4,
		LineText: "import { nope } from './lib'",
	}, *result.Errors[0].Location)
}

func TestShakeShimMissingExports(t *testing.T) {
	result := shakeFiles(t, map[string]string{
		"/entry.js": "import { nope } from './lib'\nconsole.log(nope)\n",
		"/lib.js":   "export const yes = 1\n",
	}, ShakeOptions{
		EntryPoints:        []string{"/entry.js"},
		ShimMissingExports: true,
	})
	require.Empty(t, result.Errors)
	assert.Contains(t, codes(result.Warnings), "SHIMMED_EXPORT")
}

func TestShakeTreeShakingDisabled(t *testing.T) {
	result := shakeFiles(t, map[string]string{
		"/entry.js": "const unused = 1\n",
	}, ShakeOptions{
		EntryPoints: []string{"/entry.js"},
		TreeShaking: TreeShakingFalse,
	})
	require.Empty(t, result.Errors)
	require.Len(t, result.Modules, 1)
	assert.Equal(t, "const unused = 1\n", result.Modules[0].Code)
	assert.Equal(t, 1, result.Modules[0].IncludedStatements)
}

func TestShakeIgnoreAnnotations(t *testing.T) {
	files := map[string]string{
		"/entry.js": "/* @__PURE__ */ sideEffect()\nconsole.log(1)\n",
	}

	result := shakeFiles(t, files, ShakeOptions{EntryPoints: []string{"/entry.js"}})
	require.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Modules[0].IncludedStatements)

	result = shakeFiles(t, files, ShakeOptions{EntryPoints: []string{"/entry.js"}, IgnoreAnnotations: true})
	require.Empty(t, result.Errors)
	assert.Equal(t, 2, result.Modules[0].IncludedStatements)
}

func TestShakeCacheIsPruned(t *testing.T) {
	c := NewCache()
	files := map[string]string{
		"/a.js":      "import './shared'\nconsole.log('a')\n",
		"/b.js":      "import './shared'\nconsole.log('b')\n",
		"/shared.js": "console.log('shared')\n",
	}

	result := shakeFiles(t, files, ShakeOptions{EntryPoints: []string{"/a.js"}, Cache: c})
	require.Empty(t, result.Errors)
	assert.Equal(t, 2, c.Len())

	result = shakeFiles(t, files, ShakeOptions{EntryPoints: []string{"/b.js"}, Cache: c})
	require.Empty(t, result.Errors)
	assert.Equal(t, 2, c.Len())
}

func TestShakeConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "treeshake.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("treeshake:\n  enabled: false\nexternal: [ext]\n"), 0644))

	result := shakeFiles(t, map[string]string{
		"/entry.js": "import 'ext'\nconst unused = 1\n",
	}, ShakeOptions{
		EntryPoints: []string{"/entry.js"},
		ConfigFile:  configPath,
	})
	require.Empty(t, result.Errors)
	assert.Equal(t, "const unused = 1\n", result.Modules[0].Code)
	require.Len(t, result.Externals, 1)
	assert.Equal(t, "ext", result.Externals[0].ID)
	assert.False(t, result.Externals[0].Used)
}

func TestShakeBrokenConfigFile(t *testing.T) {
	result := Shake(ShakeOptions{
		EntryPoints: []string{"entry.js"},
		ConfigFile:  filepath.Join(t.TempDir(), "missing.yaml"),
	})
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Text, "loading config")
}

func TestShakeRealFS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entry.js"), []byte("import { x } from './lib.js'\nconsole.log(x)\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib.js"), []byte("export const x = 1\nexport const y = 2\n"), 0644))

	result := Shake(ShakeOptions{EntryPoints: []string{filepath.Join(dir, "entry.js")}})
	require.Empty(t, result.Errors)
	require.Len(t, result.Modules, 2)
	assert.Equal(t, "const x = 1\n", result.Modules[0].Code)
}
