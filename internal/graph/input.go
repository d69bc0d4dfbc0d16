package graph

// The code in this file represents data that passes from the scan phase to
// the link phase. The scan phase parses every file and resolves every
// specifier. The link phase never touches the file system.

import (
	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/logger"
)

// What a specifier in some file refers to. External modules are identified
// by the specifier or resolved path that was marked as external.
type ResolvedID struct {
	Path     string
	External bool
}

type InputFile struct {
	Source logger.Source

	// The tree is connected to the graph during linking, so a tree must not
	// be shared between two graphs
	AST *js_ast.Program

	// Every literal specifier used by an import, a re-export or an "import()"
	// in this file. A specifier that is missing here is unresolved.
	ResolvedIDs map[string]ResolvedID

	// False means the top-level code of this file is only run if one of its
	// exports is used
	ModuleSideEffects bool

	// The name of the export whose properties provide every export that is
	// not declared explicitly, or "" for no synthetic named exports
	SyntheticNamedExports string

	IsEntry bool
}
