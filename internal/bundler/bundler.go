package bundler

// The scan phase reads and parses every file reachable from the entry points
// and resolves every specifier. Files are parsed in waves: each wave holds the
// files first discovered by the previous one and is parsed in parallel. The
// compile phase hands the results to the module graph, which never touches
// the file system.

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/evanw/treeshake/internal/cache"
	"github.com/evanw/treeshake/internal/config"
	"github.com/evanw/treeshake/internal/fs"
	"github.com/evanw/treeshake/internal/graph"
	"github.com/evanw/treeshake/internal/helpers"
	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/js_parser"
	"github.com/evanw/treeshake/internal/js_printer"
	"github.com/evanw/treeshake/internal/logger"
	"github.com/evanw/treeshake/internal/resolver"
)

type scannedFile struct {
	source      logger.Source
	ast         *js_ast.Program
	resolvedIDs map[string]graph.ResolvedID

	// What the nearest "package.json" says about this file
	sideEffects resolver.SideEffects

	isEntry bool
}

type Bundle struct {
	options *config.ProcessedOptions
	files   []scannedFile
}

type scanTask struct {
	path        string
	sourceIndex uint32
	sideEffects resolver.SideEffects
	isEntry     bool
}

type parseResult struct {
	file scannedFile

	// What each internal specifier resolved to, so that the next wave knows
	// what the files it discovers say about their side effects
	discovered []scanTask

	ok bool
}

type scanner struct {
	log     logger.Log
	fs      fs.FS
	res     *resolver.Resolver
	caches  *cache.CacheSet
	options *config.ProcessedOptions
}

// Tree-sitter parsers are expensive to create and must not be shared
// between goroutines, so each parse borrows one
var parserPool = sync.Pool{
	New: func() interface{} {
		return js_parser.NewParser()
	},
}

func ScanBundle(
	ctx context.Context,
	log logger.Log,
	fs fs.FS,
	res *resolver.Resolver,
	caches *cache.CacheSet,
	entryPaths []string,
	options *config.ProcessedOptions,
	timer *helpers.Timer,
) (Bundle, bool) {
	timer.Begin("Scan phase")
	defer timer.End("Scan phase")

	s := scanner{
		log:     log,
		fs:      fs,
		res:     res,
		caches:  caches,
		options: options,
	}
	visited := make(map[string]bool)
	var wave []scanTask

	for _, entryPath := range entryPaths {
		resolveResult, ok := res.ResolveEntryPoint(entryPath)
		if !ok {
			log.AddError(nil, logger.Range{}, fmt.Sprintf("Could not resolve %q", entryPath))
			continue
		}
		if visited[resolveResult.Path] {
			log.AddError(nil, logger.Range{}, fmt.Sprintf("Duplicate entry point %q", res.PrettyPath(resolveResult.Path)))
			continue
		}
		visited[resolveResult.Path] = true
		wave = append(wave, scanTask{
			path:        resolveResult.Path,
			sourceIndex: uint32(len(wave)),
			sideEffects: resolveResult.SideEffects,
			isEntry:     true,
		})
	}

	bundle := Bundle{options: options}
	sourceIndex := uint32(len(wave))

	for len(wave) > 0 {
		// Results are stored by position so that the order of the files does
		// not depend on which goroutine finishes first
		results := make([]parseResult, len(wave))
		p := pool.New().WithMaxGoroutines(runtime.GOMAXPROCS(0)).WithContext(ctx)
		for i, task := range wave {
			p.Go(func(ctx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				defer func() {
					if r := recover(); r != nil {
						s.log.AddErrorWithNotes(nil, logger.Range{}, fmt.Sprintf("panic: %v (while parsing %q)", r, task.path),
							[]logger.MsgData{{Text: helpers.PrettyPrintedStack()}})
					}
				}()
				results[i] = s.parseFile(ctx, task)
				return nil
			})
		}
		if err := p.Wait(); err != nil {
			log.AddError(nil, logger.Range{}, fmt.Sprintf("Scan was interrupted: %s", err.Error()))
			return Bundle{}, false
		}

		var next []scanTask
		for _, result := range results {
			if !result.ok {
				continue
			}
			bundle.files = append(bundle.files, result.file)
			for _, task := range result.discovered {
				if visited[task.path] {
					continue
				}
				visited[task.path] = true
				task.sourceIndex = sourceIndex
				sourceIndex++
				next = append(next, task)
			}
		}
		wave = next
	}

	if log.HasErrors() {
		return Bundle{}, false
	}
	return bundle, true
}

func (s *scanner) parseFile(ctx context.Context, task scanTask) parseResult {
	source := logger.Source{
		KeyPath:    logger.Path{Text: task.path, Namespace: "file"},
		PrettyPath: s.res.PrettyPath(task.path),
		Index:      task.sourceIndex,
	}

	contents, err := s.fs.ReadFile(task.path)
	if err != nil {
		if fs.IsNotExist(err) {
			s.log.AddError(nil, logger.Range{}, fmt.Sprintf("Could not read from file: %s", source.PrettyPath))
		} else {
			s.log.AddError(nil, logger.Range{}, fmt.Sprintf("Cannot read file %q: %s", source.PrettyPath, err.Error()))
		}
		return parseResult{}
	}
	source.Contents = contents

	parser := parserPool.Get().(*js_parser.Parser)
	program, ok := s.caches.JSCache.Parse(ctx, parser, s.log, source)
	parserPool.Put(parser)
	if !ok {
		return parseResult{}
	}

	result := parseResult{
		file: scannedFile{
			source:      source,
			ast:         program,
			resolvedIDs: make(map[string]graph.ResolvedID),
			sideEffects: task.sideEffects,
			isEntry:     task.isEntry,
		},
		ok: true,
	}

	// Every specifier is resolved once. Specifiers that cannot be resolved are
	// left out and the graph reports them at each import.
	sourceDir := s.fs.Dir(task.path)
	tried := make(map[string]bool)
	for _, record := range program.ImportRecords {
		if tried[record.Path] {
			continue
		}
		tried[record.Path] = true

		resolveResult, ok := s.res.Resolve(&source, record.Range, sourceDir, record.Path)
		if !ok {
			continue
		}
		result.file.resolvedIDs[record.Path] = graph.ResolvedID{
			Path:     resolveResult.Path,
			External: resolveResult.External,
		}
		if !resolveResult.External {
			result.discovered = append(result.discovered, scanTask{
				path:        resolveResult.Path,
				sideEffects: resolveResult.SideEffects,
			})
		}
	}
	return result
}

// Whether the top-level code of a file is assumed to have side effects. An
// explicit "noSideEffects" pattern comes first, then the "sideEffects" field
// of the package the file belongs to, then the default.
func (b *Bundle) moduleSideEffects(file *scannedFile) bool {
	if b.options.MatchesNoSideEffects(file.source.PrettyPath) {
		return false
	}
	switch file.sideEffects {
	case resolver.SideEffectsTrue:
		return true
	case resolver.SideEffectsFalse:
		return false
	}
	return b.options.TreeShaking.ModuleSideEffects
}

type Result struct {
	Graph *graph.Graph
}

// Links the scanned files and runs tree shaking. The syntax trees become part
// of the graph, so a bundle can only be compiled once.
func (b *Bundle) Compile(log logger.Log, timer *helpers.Timer) (*Result, bool) {
	timer.Begin("Compile phase")
	defer timer.End("Compile phase")

	inputs := make([]graph.InputFile, len(b.files))
	for i := range b.files {
		file := &b.files[i]
		inputs[i] = graph.InputFile{
			Source:                file.source,
			AST:                   file.ast,
			ResolvedIDs:           file.resolvedIDs,
			ModuleSideEffects:     b.moduleSideEffects(file),
			SyntheticNamedExports: b.options.SyntheticNamedExports(file.source.PrettyPath),
			IsEntry:               file.isEntry,
		}
	}

	build := js_ast.NewBuildContext(b.options, log, timer)
	g, err := graph.Link(build, inputs)
	if err != nil || log.HasErrors() {
		return nil, false
	}
	if err := g.IncludeStatements(); err != nil || log.HasErrors() {
		return nil, false
	}
	return &Result{Graph: g}, true
}

// The code of one module that survived tree shaking
func (r *Result) Code(m *graph.Module) string {
	return js_printer.Print(m.AST, m.Source())
}

// Every included module in execution order, each under a comment with its id
func (r *Result) Output() string {
	sb := strings.Builder{}
	for _, m := range r.Graph.Modules() {
		if !m.IsIncluded() {
			continue
		}
		code := strings.TrimRight(r.Code(m), " \t\n")
		if code == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "// %s\n%s\n", m.ID(), code)
	}
	return sb.String()
}

// Reports how well the parse cache served this build
func LogCacheStats(log logger.Log, caches *cache.CacheSet) {
	hits, misses := caches.JSCache.Stats()
	log.AddMsg(logger.Msg{
		Kind: logger.Verbose,
		Data: logger.MsgData{Text: fmt.Sprintf("Parse cache: %d hits, %d misses, %d entries", hits, misses, caches.JSCache.Len())},
	})
}
