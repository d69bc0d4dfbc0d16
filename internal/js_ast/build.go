package js_ast

import (
	"github.com/evanw/treeshake/internal/ast"
	"github.com/evanw/treeshake/internal/config"
	"github.com/evanw/treeshake/internal/helpers"
	"github.com/evanw/treeshake/internal/logger"
)

// Everything that lives for exactly one build. Nothing in this package keeps
// state outside of a build context, so two builds never observe each other.
type BuildContext struct {
	Options *config.ProcessedOptions
	Globals *config.ProcessedGlobals
	Log     logger.Log
	Timer   *helpers.Timer

	// Shared by the bind step, where no per-traversal context exists
	SharedTracker PathTracker

	// Stops re-entrant deoptimization of call return values across the graph
	DeoptimizationTracker PathTracker

	GlobalScope *Scope

	// Indexed by source index. External modules have no entry here.
	Modules []ModuleHost
}

func NewBuildContext(options *config.ProcessedOptions, log logger.Log, timer *helpers.Timer) *BuildContext {
	build := &BuildContext{
		Options: options,
		Globals: config.ProcessGlobals(),
		Log:     log,
		Timer:   timer,
	}
	build.GlobalScope = newGlobalScope(build)
	return build
}

// Registers a module and returns the handle that scopes and variables of
// that module use to reach it
func (build *BuildContext) AddModule(host ModuleHost) ast.Index32 {
	index := ast.MakeIndex32(uint32(len(build.Modules)))
	build.Modules = append(build.Modules, host)
	return index
}

func (build *BuildContext) Module(index ast.Index32) ModuleHost {
	if !index.IsValid() {
		return nil
	}
	return build.Modules[index.GetIndex()]
}

func (build *BuildContext) treeShaking() *config.TreeShakingOptions {
	return &build.Options.TreeShaking
}
