package resolver

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/json"

	"github.com/evanw/treeshake/internal/fs"
	"github.com/evanw/treeshake/internal/helpers"
	"github.com/evanw/treeshake/internal/logger"
)

type packageJSON struct {
	mainFields map[string]string

	// If "sideEffects" is false, every file of the package is side-effect
	// free. If it is an array, only the files matching one of the patterns
	// have side effects. This is a convention from Webpack:
	// https://webpack.js.org/guides/tree-shaking/.
	hasSideEffectsField bool
	sideEffectsPatterns [][]helpers.GlobPart
}

func (r *Resolver) parsePackageJSON(dir string) *packageJSON {
	packageJSONPath := r.fs.Join(dir, "package.json")
	contents, err := r.fs.ReadFile(packageJSONPath)
	if err != nil {
		r.log.AddError(nil, logger.Range{},
			fmt.Sprintf("Cannot read file %q: %s", r.PrettyPath(packageJSONPath), err.Error()))
		return nil
	}
	jsonSource := logger.Source{
		KeyPath:    logger.Path{Text: packageJSONPath},
		PrettyPath: r.PrettyPath(packageJSONPath),
		Contents:   contents,
	}

	data, err := json.Parser().Unmarshal([]byte(contents))
	if err != nil {
		r.log.AddID(logger.MsgID_Resolver_InvalidPackageJSON, logger.Warning, &jsonSource, logger.Range{},
			fmt.Sprintf("Cannot parse %q: %s", jsonSource.PrettyPath, err.Error()))
		return nil
	}

	packageJSON := &packageJSON{mainFields: make(map[string]string)}
	for _, field := range defaultMainFields {
		if main, ok := data[field].(string); ok && main != "" {
			packageJSON.mainFields[field] = main
		}
	}

	if sideEffects, ok := data["sideEffects"]; ok {
		switch value := sideEffects.(type) {
		case bool:
			if !value {
				packageJSON.hasSideEffectsField = true
			}

		case []interface{}:
			packageJSON.hasSideEffectsField = true
			for _, item := range value {
				pattern, ok := item.(string)
				if !ok {
					r.log.AddID(logger.MsgID_Resolver_InvalidPackageJSON, logger.Warning, &jsonSource, logger.Range{},
						"Expected string in array for \"sideEffects\"")
					continue
				}

				// Patterns without a slash match the file name in any directory
				pattern = strings.TrimPrefix(pattern, "./")
				if !strings.Contains(pattern, "/") {
					pattern = "**/" + pattern
				}
				packageJSON.sideEffectsPatterns = append(packageJSON.sideEffectsPatterns, helpers.ParseGlobPattern(pattern))
			}

		default:
			r.log.AddID(logger.MsgID_Resolver_InvalidPackageJSON, logger.Warning, &jsonSource, logger.Range{},
				"The value for \"sideEffects\" must be a boolean or an array")
		}
	}

	return packageJSON
}

func (packageJSON *packageJSON) sideEffectsOf(fs fs.FS, dir string, path string) SideEffects {
	if !packageJSON.hasSideEffectsField {
		return SideEffectsUnknown
	}
	rel, ok := fs.Rel(dir, path)
	if !ok {
		return SideEffectsUnknown
	}
	rel = strings.ReplaceAll(rel, "\\", "/")
	for _, pattern := range packageJSON.sideEffectsPatterns {
		if helpers.GlobMatches(pattern, rel) {
			return SideEffectsTrue
		}
	}
	return SideEffectsFalse
}
