package graph

import "fmt"

type LinkErrorCode uint8

const (
	MissingExport LinkErrorCode = iota
	SyntheticNamedExportsNeedDefault
)

func (code LinkErrorCode) String() string {
	switch code {
	case MissingExport:
		return "MISSING_EXPORT"
	case SyntheticNamedExportsNeedDefault:
		return "SYNTHETIC_NAMED_EXPORTS_NEED_DEFAULT"
	default:
		panic("Internal error")
	}
}

// A problem that makes it impossible to link the graph. Linking continues
// with a conservative value after one is found so that the traversal that
// found it can unwind, but the build fails.
type LinkError struct {
	Code LinkErrorCode

	// The export that could not be resolved, or the name of the export that
	// was expected to hold the synthetic named exports
	Name string

	Importer string
	Exporter string
}

func (err *LinkError) Error() string {
	switch err.Code {
	case MissingExport:
		return fmt.Sprintf("No matching export in %q for import %q (imported by %q)", err.Exporter, err.Name, err.Importer)

	case SyntheticNamedExportsNeedDefault:
		what := "a default export"
		if err.Name != "default" {
			what = fmt.Sprintf("an export named %q", err.Name)
		}
		return fmt.Sprintf("Module %q has synthetic named exports and needs %s that does not re-export an unresolved name of the same module",
			err.Exporter, what)

	default:
		panic("Internal error")
	}
}
