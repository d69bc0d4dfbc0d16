package resolver

import (
	"fmt"
	"strings"
	"sync"

	"github.com/evanw/treeshake/internal/config"
	"github.com/evanw/treeshake/internal/fs"
	"github.com/evanw/treeshake/internal/logger"
)

var defaultExtensionOrder = []string{".js", ".mjs", ".cjs"}

var defaultMainFields = []string{"module", "main"}

type SideEffects uint8

const (
	// The module id and the options decide
	SideEffectsUnknown SideEffects = iota

	// A "sideEffects" field in "package.json" covers this file
	SideEffectsTrue
	SideEffectsFalse
)

type ResolveResult struct {
	// An absolute path. Externals use the specifier for packages and the
	// pretty path for files.
	Path     string
	External bool

	SideEffects SideEffects
}

type Resolver struct {
	fs      fs.FS
	log     logger.Log
	options *config.ProcessedOptions

	// Parsed "package.json" files by directory. Nil means the directory has
	// none or it could not be parsed.
	mutex        sync.Mutex
	packageJSONs map[string]*packageJSON
}

func NewResolver(fs fs.FS, log logger.Log, options *config.ProcessedOptions) *Resolver {
	return &Resolver{
		fs:           fs,
		log:          log,
		options:      options,
		packageJSONs: make(map[string]*packageJSON),
	}
}

// Package paths are loaded from a "node_modules" directory. Non-package paths
// are relative or absolute file paths.
func IsPackagePath(path string) bool {
	return !strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "./") &&
		!strings.HasPrefix(path, "../") && path != "." && path != ".."
}

// Module ids are paths relative to the working directory with forward slashes
func (r *Resolver) PrettyPath(path string) string {
	if rel, ok := r.fs.Rel(r.fs.Cwd(), path); ok && !strings.HasPrefix(rel, "..") {
		path = rel
	}
	return strings.ReplaceAll(path, "\\", "/")
}

func (r *Resolver) ResolveEntryPoint(path string) (*ResolveResult, bool) {
	absPath, ok := r.fs.Abs(path)
	if !ok {
		return nil, false
	}
	return r.loadAsFileOrDirectory(absPath)
}

// Returns false if the specifier could not be found. Package paths that
// cannot be found are treated as external with a warning, since a module
// graph commonly imports runtime packages that are not installed next to it.
func (r *Resolver) Resolve(source *logger.Source, importRange logger.Range, sourceDir string, importPath string) (*ResolveResult, bool) {
	if r.options.IsExternal(importPath) {
		return &ResolveResult{Path: importPath, External: true}, true
	}

	if !IsPackagePath(importPath) {
		absPath := importPath
		if !strings.HasPrefix(importPath, "/") {
			absPath = r.fs.Join(sourceDir, importPath)
		}
		if prettyPath := r.PrettyPath(absPath); r.options.IsExternal(prettyPath) {
			return &ResolveResult{Path: prettyPath, External: true}, true
		}
		return r.loadAsFileOrDirectory(absPath)
	}

	if result, ok := r.loadNodeModules(sourceDir, importPath); ok {
		return result, true
	}
	r.log.AddID(logger.MsgID_Resolver_UnresolvedImport, logger.Warning, source, importRange,
		fmt.Sprintf("Could not find package %q, treating it as external", importPath))
	return &ResolveResult{Path: importPath, External: true}, true
}

func (r *Resolver) loadNodeModules(dir string, importPath string) (*ResolveResult, bool) {
	for {
		// Skip directories that are themselves called "node_modules"
		if r.fs.Base(dir) != "node_modules" {
			dirPath := r.fs.Join(dir, "node_modules", importPath)
			if result, ok := r.loadAsFileOrDirectory(dirPath); ok {
				return result, true
			}
		}

		// Go to the parent directory, stopping at the file system root
		parent := r.fs.Dir(dir)
		if parent == dir {
			return nil, false
		}
		dir = parent
	}
}

func (r *Resolver) loadAsFile(path string) (string, bool) {
	dirPath := r.fs.Dir(path)
	entries, err := r.fs.ReadDirectory(dirPath)
	if err != nil {
		if !fs.IsNotExist(err) {
			r.log.AddError(nil, logger.Range{}, fmt.Sprintf("Cannot read directory %q: %s", r.PrettyPath(dirPath), err.Error()))
		}
		return "", false
	}

	// Try the plain path without any extensions
	base := r.fs.Base(path)
	if entry, ok := entries[base]; ok && entry.Kind == fs.FileEntry {
		return path, true
	}

	// Try the path with extensions
	for _, ext := range defaultExtensionOrder {
		if entry, ok := entries[base+ext]; ok && entry.Kind == fs.FileEntry {
			return path + ext, true
		}
	}
	return "", false
}

// We want to minimize the number of times directory contents are listed. For
// this reason, the directory entries are computed by the caller and then
// passed down to us.
func (r *Resolver) loadAsIndex(path string, entries map[string]fs.Entry) (string, bool) {
	for _, ext := range defaultExtensionOrder {
		base := "index" + ext
		if entry, ok := entries[base]; ok && entry.Kind == fs.FileEntry {
			return r.fs.Join(path, base), true
		}
	}
	return "", false
}

func (r *Resolver) loadAsFileOrDirectory(path string) (*ResolveResult, bool) {
	// Is this a file?
	if absolute, ok := r.loadAsFile(path); ok {
		return r.finishResult(absolute), true
	}

	// Is this a directory?
	entries, err := r.fs.ReadDirectory(path)
	if err != nil {
		return nil, false
	}

	// Try the main fields of "package.json"
	if _, ok := entries["package.json"]; ok {
		if packageJSON := r.packageJSON(path); packageJSON != nil {
			for _, field := range defaultMainFields {
				main, ok := packageJSON.mainFields[field]
				if !ok {
					continue
				}
				mainPath := r.fs.Join(path, main)
				if absolute, ok := r.loadAsFile(mainPath); ok {
					return r.finishResult(absolute), true
				}
				if mainEntries, err := r.fs.ReadDirectory(mainPath); err == nil {
					if absolute, ok := r.loadAsIndex(mainPath, mainEntries); ok {
						return r.finishResult(absolute), true
					}
				}
			}
		}
	}

	// Return the "index.js" file
	if absolute, ok := r.loadAsIndex(path, entries); ok {
		return r.finishResult(absolute), true
	}
	return nil, false
}

// Finds the nearest "package.json" and applies its "sideEffects" field
func (r *Resolver) finishResult(path string) *ResolveResult {
	result := &ResolveResult{Path: path}
	for dir := r.fs.Dir(path); ; {
		if entries, err := r.fs.ReadDirectory(dir); err == nil {
			if _, ok := entries["package.json"]; ok {
				if packageJSON := r.packageJSON(dir); packageJSON != nil {
					result.SideEffects = packageJSON.sideEffectsOf(r.fs, dir, path)
				}
				return result
			}
		}
		parent := r.fs.Dir(dir)
		if parent == dir || r.fs.Base(dir) == "node_modules" {
			return result
		}
		dir = parent
	}
}

func (r *Resolver) packageJSON(dir string) *packageJSON {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if cached, ok := r.packageJSONs[dir]; ok {
		return cached
	}
	packageJSON := r.parsePackageJSON(dir)
	r.packageJSONs[dir] = packageJSON
	return packageJSON
}
