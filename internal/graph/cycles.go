package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Groups of modules that import each other, directly or not. Every group has
// at least two members. Groups and their members are in execution order.
func (g *Graph) CycleGroups() [][]string {
	directed := simple.NewDirectedGraph()
	for i := range g.Files {
		directed.AddNode(simple.Node(i))
	}
	for i, file := range g.Files {
		m, ok := file.Repr.(*Module)
		if !ok {
			continue
		}
		for _, dep := range m.Dependencies {
			if dep != uint32(i) {
				directed.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(dep)})
			}
		}
	}

	var groups [][]uint32
	for _, component := range topo.TarjanSCC(directed) {
		if len(component) < 2 {
			continue
		}
		group := make([]uint32, len(component))
		for i, node := range component {
			group[i] = uint32(node.ID())
		}
		sort.Slice(group, func(i, j int) bool {
			return g.Files[group[i]].ExecIndex < g.Files[group[j]].ExecIndex
		})
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return g.Files[groups[i][0]].ExecIndex < g.Files[groups[j][0]].ExecIndex
	})

	result := make([][]string, len(groups))
	for i, group := range groups {
		for _, index := range group {
			result[i] = append(result[i], g.Files[index].Repr.ID())
		}
	}
	return result
}
