package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/logger"
)

// A module that is imported but not part of the graph. Its exports are taken
// on trust and it is assumed to have side effects.
type ExternalModule struct {
	graph *Graph
	Index uint32
	id    string

	declarations     map[string]*js_ast.ExternalVariable
	declarationOrder []string

	// Names some included code uses
	usedNames map[string]bool

	// Set when a re-export of this module is included
	reexported bool

	// The modules that import this one, in the order they were seen
	importers []uint32
}

func newExternalModule(g *Graph, index uint32, id string) *ExternalModule {
	return &ExternalModule{
		graph:        g,
		Index:        index,
		id:           id,
		declarations: make(map[string]*js_ast.ExternalVariable),
		usedNames:    make(map[string]bool),
	}
}

func (e *ExternalModule) ID() string {
	return e.id
}

func (e *ExternalModule) IsUsed() bool {
	return len(e.usedNames) > 0 || e.reexported
}

func (e *ExternalModule) MarkUsed(name string) {
	e.usedNames[name] = true
}

// Sorted
func (e *ExternalModule) UsedNames() []string {
	names := make([]string, 0, len(e.usedNames))
	for name := range e.usedNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *ExternalModule) Importers() (ids []string) {
	for _, index := range e.importers {
		ids = append(ids, e.graph.Files[index].Repr.ID())
	}
	return
}

// Every name exists. Asking twice for the same name gives the same variable.
func (e *ExternalModule) GetVariableForExportName(name string) js_ast.Variable {
	if variable, ok := e.declarations[name]; ok {
		return variable
	}
	variable := js_ast.NewExternalVariable(e.graph.build, e, name)
	e.declarations[name] = variable
	e.declarationOrder = append(e.declarationOrder, name)
	return variable
}

// Names that some module imports from here but that nothing ended up using
func (e *ExternalModule) unusedImports() []string {
	if e.reexported {
		return nil
	}
	var unused []string
	for _, name := range e.declarationOrder {
		variable := e.declarations[name]
		if name == "*" || variable.Included || variable.Referenced {
			continue
		}
		unused = append(unused, name)
	}
	return unused
}

func (e *ExternalModule) warnUnusedImports() {
	unused := e.unusedImports()
	if len(unused) == 0 {
		return
	}

	var importers []string
	for _, index := range e.importers {
		if m, ok := e.graph.Files[index].Repr.(*Module); ok {
			importers = append(importers, fmt.Sprintf("%q", m.id))
		}
	}
	sort.Strings(importers)

	quoted := make([]string, len(unused))
	for i, name := range unused {
		quoted[i] = fmt.Sprintf("%q", name)
	}
	names := quoted[0]
	if len(quoted) > 1 {
		names = strings.Join(quoted[:len(quoted)-1], ", ") + " and " + quoted[len(quoted)-1]
	}
	e.graph.log.AddID(logger.MsgID_Bundler_UnusedExternalImport, logger.Warning, nil, logger.Range{}, fmt.Sprintf(
		"%s imported from external module %q but never used in %s", names, e.id, strings.Join(importers, ", ")))
}
