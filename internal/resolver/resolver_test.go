package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evanw/treeshake/internal/config"
	"github.com/evanw/treeshake/internal/fs"
	"github.com/evanw/treeshake/internal/logger"
)

func newTestResolver(files map[string]string, external ...string) (*Resolver, logger.Log) {
	options := config.DefaultOptions()
	options.External = external
	log := logger.NewDeferLog()
	return NewResolver(fs.MockFS(files), log, config.ProcessOptions(*options)), log
}

func resolve(t *testing.T, r *Resolver, dir string, path string) *ResolveResult {
	t.Helper()
	result, ok := r.Resolve(nil, logger.Range{}, dir, path)
	require.True(t, ok, "could not resolve %q", path)
	return result
}

func TestRelativePaths(t *testing.T) {
	r, _ := newTestResolver(map[string]string{
		"/src/entry.js":        "",
		"/src/util.js":         "",
		"/src/lib/index.mjs":   "",
		"/src/exact.data":      "",
		"/shared/constants.js": "",
	})

	assert.Equal(t, "/src/util.js", resolve(t, r, "/src", "./util").Path)
	assert.Equal(t, "/src/util.js", resolve(t, r, "/src", "./util.js").Path)
	assert.Equal(t, "/src/lib/index.mjs", resolve(t, r, "/src", "./lib").Path)
	assert.Equal(t, "/src/exact.data", resolve(t, r, "/src", "./exact.data").Path)
	assert.Equal(t, "/shared/constants.js", resolve(t, r, "/src/lib", "../../shared/constants").Path)
	assert.Equal(t, "/shared/constants.js", resolve(t, r, "/src", "/shared/constants.js").Path)

	_, ok := r.Resolve(nil, logger.Range{}, "/src", "./missing")
	assert.False(t, ok)
}

func TestNodeModules(t *testing.T) {
	r, _ := newTestResolver(map[string]string{
		"/app/src/entry.js":                         "",
		"/app/node_modules/pkg/package.json":        `{"main": "./lib/main.js", "module": "./esm/index.js"}`,
		"/app/node_modules/pkg/esm/index.js":        "",
		"/app/node_modules/pkg/lib/main.js":         "",
		"/app/node_modules/pkg/extra.js":            "",
		"/app/node_modules/@scope/thing/index.js":   "",
		"/app/node_modules/main-only/package.json":  `{"main": "dist"}`,
		"/app/node_modules/main-only/dist/index.js": "",
	})

	assert.Equal(t, "/app/node_modules/pkg/esm/index.js", resolve(t, r, "/app/src", "pkg").Path)
	assert.Equal(t, "/app/node_modules/pkg/extra.js", resolve(t, r, "/app/src", "pkg/extra").Path)
	assert.Equal(t, "/app/node_modules/@scope/thing/index.js", resolve(t, r, "/app/src", "@scope/thing").Path)
	assert.Equal(t, "/app/node_modules/main-only/dist/index.js", resolve(t, r, "/app/src", "main-only").Path)
}

func TestExternals(t *testing.T) {
	r, log := newTestResolver(map[string]string{
		"/src/entry.js":  "",
		"/src/vendor.js": "",
	}, "react", "src/vendor.js")

	result := resolve(t, r, "/src", "react")
	assert.True(t, result.External)
	assert.Equal(t, "react", result.Path)

	result = resolve(t, r, "/src", "./vendor.js")
	assert.True(t, result.External)
	assert.Equal(t, "src/vendor.js", result.Path)

	result = resolve(t, r, "/src", "not-installed")
	assert.True(t, result.External)
	msgs := log.Done()
	require.Len(t, msgs, 1)
	assert.Equal(t, logger.MsgID_Resolver_UnresolvedImport, msgs[0].ID)
	assert.Equal(t, `Could not find package "not-installed", treating it as external`, msgs[0].Data.Text)
}

func TestPackageSideEffects(t *testing.T) {
	r, log := newTestResolver(map[string]string{
		"/node_modules/pure/package.json":   `{"sideEffects": false}`,
		"/node_modules/pure/index.js":       "",
		"/node_modules/mixed/package.json":  `{"sideEffects": ["./polyfill.js", "*.css.js"]}`,
		"/node_modules/mixed/index.js":      "",
		"/node_modules/mixed/polyfill.js":   "",
		"/node_modules/mixed/a/b.css.js":    "",
		"/node_modules/plain/package.json":  `{}`,
		"/node_modules/plain/index.js":      "",
		"/node_modules/broken/package.json": `{"sideEffects": 1}`,
		"/node_modules/broken/index.js":     "",
		"/entry.js":                         "",
	})

	assert.Equal(t, SideEffectsFalse, resolve(t, r, "/", "pure").SideEffects)
	assert.Equal(t, SideEffectsFalse, resolve(t, r, "/", "mixed").SideEffects)
	assert.Equal(t, SideEffectsTrue, resolve(t, r, "/", "mixed/polyfill").SideEffects)
	assert.Equal(t, SideEffectsTrue, resolve(t, r, "/", "mixed/a/b.css").SideEffects)
	assert.Equal(t, SideEffectsUnknown, resolve(t, r, "/", "plain").SideEffects)
	assert.Equal(t, SideEffectsUnknown, resolve(t, r, "/", "./entry.js").SideEffects)

	assert.Equal(t, SideEffectsUnknown, resolve(t, r, "/", "broken").SideEffects)
	msgs := log.Done()
	require.Len(t, msgs, 1)
	assert.Equal(t, logger.MsgID_Resolver_InvalidPackageJSON, msgs[0].ID)
}

func TestPrettyPath(t *testing.T) {
	r, _ := newTestResolver(map[string]string{})
	assert.Equal(t, "src/a.js", r.PrettyPath("/src/a.js"))
}

func TestIsPackagePath(t *testing.T) {
	assert.True(t, IsPackagePath("react"))
	assert.True(t, IsPackagePath("@scope/pkg/sub"))
	assert.False(t, IsPackagePath("./a"))
	assert.False(t, IsPackagePath("../a"))
	assert.False(t, IsPackagePath("/a"))
	assert.False(t, IsPackagePath(".."))
}
