package helpers_test

import (
	"testing"

	"github.com/evanw/treeshake/internal/helpers"
	"github.com/evanw/treeshake/internal/test"
)

func TestGlobMatches(t *testing.T) {
	check := func(pattern string, text string, expected bool) {
		t.Helper()
		test.AssertEqual(t, helpers.GlobMatches(helpers.ParseGlobPattern(pattern), text), expected)
	}

	check("src/a.js", "src/a.js", true)
	check("src/a.js", "src/a.jsx", false)
	check("src/*.js", "src/a.js", true)
	check("src/*.js", "src/lib/a.js", false)
	check("src/**/*.js", "src/lib/deep/a.js", true)
	check("src/**/*.js", "src/a.js", true)
	check("**/polyfill.js", "vendor/polyfill.js", true)
	check("*", "lodash", true)
	check("*", "lodash/fp", false)
}

func TestGlobPatternToString(t *testing.T) {
	for _, text := range []string{"a", "*.js", "src/**/x.js", "a*b*c"} {
		test.AssertEqual(t, helpers.GlobPatternToString(helpers.ParseGlobPattern(text)), text)
	}
}
