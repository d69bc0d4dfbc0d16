package graph

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/evanw/treeshake/internal/js_ast"
)

// Whether the included code of this module does anything when it runs
func (m *Module) hasEffects() bool {
	if !m.graph.options.TreeShaking.Enabled {
		return true
	}
	return m.AST.Included && m.AST.HasEffects(js_ast.NewHasEffectsContext())
}

// The file a variable belongs to, if it belongs to one
func (g *Graph) fileOfVariable(variable js_ast.Variable) (uint32, bool) {
	switch v := variable.(type) {
	case *js_ast.SyntheticNamedExportVariable:
		variable = v.BaseVariable()
	case *js_ast.ExportDefaultVariable:
		variable = v.OriginalVariable()
	}
	if variable == nil {
		return 0, false
	}
	if external, ok := variable.(*js_ast.ExternalVariable); ok {
		return external.External.(*ExternalModule).Index, true
	}
	if owner, ok := g.build.Module(variable.Base().Module).(*Module); ok {
		return owner.Index, true
	}
	return 0, false
}

// The dependencies a renderer has to load before this module: those that
// provide a variable this module uses or exposes, and those that have
// side effects of their own, possibly through a module that has none. The
// result is in the order the dependencies are discovered.
func (m *Module) GetDependenciesToBeIncluded() []uint32 {
	if m.relevantDependencies != nil {
		return m.relevantDependencies
	}
	g := m.graph

	necessary := roaring.New()
	variables := append([]js_ast.Variable{}, m.includedImports...)
	if m.IsEntry || len(m.includedDynamicImporters) > 0 || m.namespace.Included {
		for _, list := range [][]string{m.GetReexports(), m.GetExports()} {
			for _, name := range list {
				if variable := m.LookupExport(name); variable != nil && variable.Base().Included {
					variables = append(variables, variable)
				}
			}
		}
	}
	for _, variable := range variables {
		if index, ok := g.fileOfVariable(variable); ok && index != m.Index {
			necessary.Add(index)
		}
	}

	relevant := []uint32{}
	seen := roaring.New()
	add := func(index uint32) {
		if seen.CheckedAdd(index) {
			relevant = append(relevant, index)
		}
	}

	if !g.options.TreeShaking.Enabled {
		for _, dep := range m.Dependencies {
			add(dep)
		}
	} else {
		handled := roaring.New()
		var addSideEffectDependencies func(deps []uint32)
		addSideEffectDependencies = func(deps []uint32) {
			for _, dep := range deps {
				if !handled.CheckedAdd(dep) {
					continue
				}
				if necessary.Contains(dep) {
					add(dep)
					continue
				}
				switch other := g.Files[dep].Repr.(type) {
				case *ExternalModule:
					add(dep)
				case *Module:
					if !other.ModuleSideEffects {
						continue
					}
					if other.hasEffects() {
						add(dep)
						continue
					}
					addSideEffectDependencies(other.Dependencies)
				}
			}
		}
		addSideEffectDependencies(m.Dependencies)
	}

	it := necessary.Iterator()
	for it.HasNext() {
		add(it.Next())
	}
	m.relevantDependencies = relevant
	return relevant
}
