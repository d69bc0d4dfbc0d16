package js_ast

import "github.com/evanw/treeshake/internal/logger"

// The services a module provides to the nodes and variables it owns. The
// linker implements this. Keeping the dependency in this direction lets the
// syntax tree stay unaware of the module graph.
type ModuleHost interface {
	ID() string
	Source() *logger.Source

	// Resolves a name that is not declared in the module scope. Only import
	// bindings resolve here; nil means the name is a global.
	TraceVariable(name string) Variable

	// Includes "variable" on behalf of code in this module, remembering it as
	// an import if it belongs to some other module
	IncludeVariableInModule(variable Variable)

	IsExecuted() bool
	MarkExecuted()

	// Called when an "import()" expression in this module is included
	IncludeDynamicImport(node *EImportCall)

	// Includes every export of the module, as for an entry point or when
	// its namespace object escapes
	IncludeAllExports()

	// Resolves an export of this module without reporting a missing name.
	// Returns nil if the module has no such export.
	LookupExport(name string) Variable

	// All names the namespace object of this module has
	ExportNamesForNamespace() []string

	Warn(id logger.MsgID, r logger.Range, text string)
}

// The services an external module provides to its variables
type ExternalHost interface {
	ID() string
	MarkUsed(name string)

	// External modules export any name
	GetVariableForExportName(name string) Variable
}
