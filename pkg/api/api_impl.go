package api

import (
	"context"
	"fmt"

	"github.com/evanw/treeshake/internal/bundler"
	"github.com/evanw/treeshake/internal/cache"
	"github.com/evanw/treeshake/internal/config"
	"github.com/evanw/treeshake/internal/fs"
	"github.com/evanw/treeshake/internal/graph"
	"github.com/evanw/treeshake/internal/helpers"
	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/logger"
	"github.com/evanw/treeshake/internal/resolver"
)

// Parsed files shared by several calls to "Shake". Files that one call does
// not read are dropped from the cache when it finishes.
type Cache struct {
	set *cache.CacheSet
}

func NewCache() *Cache {
	return &Cache{set: cache.MakeCacheSet()}
}

// The number of files in the cache
func (c *Cache) Len() int {
	return c.set.JSCache.Len()
}

func validateColor(value StderrColor) logger.UseColor {
	switch value {
	case ColorIfTerminal:
		return logger.ColorIfTerminal
	case ColorNever:
		return logger.ColorNever
	case ColorAlways:
		return logger.ColorAlways
	default:
		panic("Invalid color")
	}
}

func validateLogLevel(value LogLevel) logger.LogLevel {
	switch value {
	case LogLevelVerbose:
		return logger.LevelVerbose
	case LogLevelDebug:
		return logger.LevelDebug
	case LogLevelInfo:
		return logger.LevelInfo
	case LogLevelWarning:
		return logger.LevelWarning
	case LogLevelError:
		return logger.LevelError
	case LogLevelSilent:
		return logger.LevelSilent
	default:
		panic("Invalid log level")
	}
}

func validateOptions(options ShakeOptions) (*config.Options, error) {
	if options.ConfigFile != "" {
		return config.Load(options.ConfigFile)
	}

	result := config.DefaultOptions()
	result.TreeShaking.Enabled = options.TreeShaking != TreeShakingFalse
	result.TreeShaking.Annotations = !options.IgnoreAnnotations
	result.TreeShaking.ModuleSideEffects = !options.NoModuleSideEffects
	result.TreeShaking.NoSideEffects = options.NoSideEffects
	result.TreeShaking.PropertyReadSideEffects = !options.NoPropertyReadSideEffects
	result.TreeShaking.TryCatchDeoptimization = !options.NoTryCatchDeoptimization
	result.TreeShaking.UnknownGlobalSideEffects = !options.NoUnknownGlobalSideEffects
	result.ShimMissingExports = options.ShimMissingExports
	result.SyntheticNamedExports = options.SyntheticNamedExports
	result.External = options.External
	return result, nil
}

func newLog(options ShakeOptions, overrides map[logger.MsgID]logger.LogLevel) logger.Log {
	for name, level := range options.LogOverride {
		logger.StringToMsgIDs(name, validateLogLevel(level), overrides)
	}

	var log logger.Log
	if options.LogLevel == LogLevelSilent {
		log = logger.NewDeferLog()
	} else {
		log = logger.NewStderrLog(logger.OutputOptions{
			IncludeSource: true,
			MessageLimit:  options.LogLimit,
			Color:         validateColor(options.Color),
			LogLevel:      validateLogLevel(options.LogLevel),
		})
	}
	log.Overrides = overrides
	return log
}

func shakeImpl(options ShakeOptions, fileSystem fs.FS) ShakeResult {
	configOptions, err := validateOptions(options)
	if err != nil {
		return ShakeResult{Errors: []Message{{Text: err.Error()}}}
	}
	log := newLog(options, configOptions.LogOverrides())
	processed := config.ProcessOptions(*configOptions)

	if fileSystem == nil {
		fileSystem = fs.RealFS()
	}
	caches := cache.MakeCacheSet()
	if options.Cache != nil {
		caches = options.Cache.set
	}
	var timer *helpers.Timer
	if options.Timing {
		timer = &helpers.Timer{}
	}

	var result ShakeResult
	res := resolver.NewResolver(fileSystem, log, processed)
	if bundle, ok := bundler.ScanBundle(context.Background(), log, fileSystem, res, caches, options.EntryPoints, processed, timer); ok {
		if compiled, ok := bundle.Compile(log, timer); ok {
			result = reportFromGraph(compiled)
		}
	}

	if options.Cache != nil {
		if removed := caches.JSCache.Prune(); removed > 0 {
			log.AddMsg(logger.Msg{
				Kind: logger.Verbose,
				Data: logger.MsgData{Text: fmt.Sprintf("Removed %d unused files from the parse cache", removed)},
			})
		}
	}
	bundler.LogCacheStats(log, caches)
	timer.Log(log)

	msgs := log.Done()
	result.Errors = convertMessagesToPublic(logger.Error, msgs)
	result.Warnings = convertMessagesToPublic(logger.Warning, msgs)
	return result
}

func reportFromGraph(compiled *bundler.Result) ShakeResult {
	g := compiled.Graph
	result := ShakeResult{
		Cycles:      g.Cycles,
		CycleGroups: g.CycleGroups(),
	}

	for _, m := range g.Modules() {
		report := ModuleReport{
			ID:       m.ID(),
			IsEntry:  m.IsEntry,
			Executed: m.IsExecuted(),
			Included: m.IsIncluded(),
			Exports:  append(append([]string{}, m.GetExports()...), m.GetReexports()...),
		}
		for _, name := range report.Exports {
			if variable := m.LookupExport(name); variable != nil && variable.Base().Included {
				report.IncludedExports = append(report.IncludedExports, name)
			}
		}
		for _, index := range m.GetDependenciesToBeIncluded() {
			report.Dependencies = append(report.Dependencies, g.Files[index].Repr.ID())
		}
		for _, stmt := range m.AST.Stmts {
			switch stmt.(type) {
			case *js_ast.SImport, *js_ast.SExportClause, *js_ast.SExportFrom, *js_ast.SExportStar:
				continue
			}
			report.Statements++
			if stmt.Base().Included {
				report.IncludedStatements++
			}
		}
		if report.Included {
			report.Code = compiled.Code(m)
		}
		result.Modules = append(result.Modules, report)
	}

	for _, external := range g.Externals() {
		result.Externals = append(result.Externals, externalReport(external))
	}
	return result
}

func externalReport(external *graph.ExternalModule) ExternalReport {
	return ExternalReport{
		ID:        external.ID(),
		Used:      external.IsUsed(),
		UsedNames: external.UsedNames(),
		Importers: external.Importers(),
	}
}

func convertLocationToPublic(loc *logger.MsgLocation) *Location {
	if loc == nil {
		return nil
	}
	return &Location{
		File:     loc.File,
		Line:     loc.Line,
		Column:   loc.Column,
		Length:   loc.Length,
		LineText: loc.LineText,
	}
}

func convertMessagesToPublic(kind logger.MsgKind, msgs []logger.Msg) []Message {
	var filtered []Message
	for _, msg := range msgs {
		if msg.Kind == kind {
			filtered = append(filtered, Message{
				Code:     logger.MsgIDToCode(msg.ID),
				Text:     msg.Data.Text,
				Location: convertLocationToPublic(msg.Data.Location),
			})
		}
	}
	return filtered
}
