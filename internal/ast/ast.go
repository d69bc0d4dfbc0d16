package ast

// This file contains data structures that are shared between the parser, the
// module graph and the bundler. None of them depend on the JavaScript AST.

import (
	"strings"

	"github.com/evanw/treeshake/internal/logger"
)

type ImportKind uint8

const (
	// An entry point provided by the user
	ImportEntryPoint ImportKind = iota

	// An ES6 import or re-export statement
	ImportStmt

	// An "import()" expression with a string argument
	ImportDynamic
)

func (kind ImportKind) String() string {
	switch kind {
	case ImportStmt:
		return "import-statement"
	case ImportDynamic:
		return "dynamic-import"
	case ImportEntryPoint:
		return "entry-point"
	default:
		panic("Internal error")
	}
}

type ImportRecordFlags uint8

const (
	// If this is true, the import contains syntax like "* as ns"
	ContainsImportStar ImportRecordFlags = 1 << iota

	// If this is true, the import contains an import for the alias "default",
	// either via the "import x from" or "import {default as x} from" syntax.
	ContainsDefaultAlias

	// If true, this was originally written as a bare "import 'file'" statement
	WasOriginallyBareImport

	// If true, this is the source of an "export ... from" statement
	IsReExport
)

func (flags ImportRecordFlags) Has(flag ImportRecordFlags) bool {
	return (flags & flag) != 0
}

type ImportRecord struct {
	Range logger.Range

	// The specifier as written in the source, without quotes
	Path string

	// The resolved module. This is filled in after the whole graph has been
	// discovered and is invalid for external modules.
	SourceIndex Index32

	// Set for imports that resolved to a module outside the graph
	ExternalIndex Index32

	Flags ImportRecordFlags
	Kind  ImportKind
}

// This stores a 32-bit index where the zero value is an invalid index. This is
// a better alternative to storing the index as a pointer since that has the
// same properties but takes up more space and costs an extra pointer traversal.
type Index32 struct {
	flippedBits uint32
}

func MakeIndex32(index uint32) Index32 {
	return Index32{flippedBits: ^index}
}

func (i Index32) IsValid() bool {
	return i.flippedBits != 0
}

func (i Index32) GetIndex() uint32 {
	return ^i.flippedBits
}

// Returns a short name for a module id, used in reports and in the names of
// synthesized variables such as the default export of an anonymous module.
func NameFromModuleID(id string) string {
	if slash := strings.LastIndexAny(strings.TrimRight(id, "/\\"), "/\\"); slash != -1 {
		id = strings.TrimRight(id, "/\\")[slash+1:]
	}
	if dot := strings.IndexByte(id, '.'); dot > 0 {
		id = id[:dot]
	}
	sb := strings.Builder{}
	for _, c := range id {
		if c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (sb.Len() > 0 && c >= '0' && c <= '9') {
			sb.WriteRune(c)
		} else if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "_") {
			sb.WriteByte('_')
		}
	}
	name := strings.TrimSuffix(sb.String(), "_")
	if name == "" {
		return "module"
	}
	return name
}
