package graph

import (
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

const noParent = ^uint32(0)

// Assigns execution indices with a post-order traversal of the static
// dependencies, starting from the entry points in order. Modules that are
// only reached through "import()" are visited afterwards as their own roots.
// A module joins "analysed" once it has its index, so a dependency that has a
// parent but is not analysed yet is on the current path and closes a cycle.
func (g *Graph) analyseModuleExecution() {
	nextExecIndex := uint32(0)
	analysed := roaring.New()
	parents := make(map[uint32]uint32)
	var dynamicRoots []uint32

	var analyse func(index uint32)
	analyse = func(index uint32) {
		if m, ok := g.Files[index].Repr.(*Module); ok {
			for _, dep := range m.Dependencies {
				if _, ok := parents[dep]; ok {
					if !analysed.Contains(dep) {
						g.Cycles = append(g.Cycles, g.cyclePath(dep, index, parents))
					}
					continue
				}
				parents[dep] = index
				analyse(dep)
			}
			for _, dep := range m.DynamicImports {
				if _, ok := g.Files[dep].Repr.(*Module); ok {
					dynamicRoots = append(dynamicRoots, dep)
				}
			}
		}
		g.Files[index].ExecIndex = nextExecIndex
		nextExecIndex++
		g.executionOrder = append(g.executionOrder, index)
		analysed.Add(index)
	}

	for _, entry := range g.Entries {
		if _, ok := parents[entry]; !ok {
			parents[entry] = noParent
			analyse(entry)
		}
	}

	// Visiting a dynamic root may discover more of them
	for i := 0; i < len(dynamicRoots); i++ {
		if root := dynamicRoots[i]; !analysed.Contains(root) {
			if _, ok := parents[root]; !ok {
				parents[root] = noParent
				analyse(root)
			}
		}
	}
}

// Walks the parent links back from "parent" to "module". The result starts
// and ends with "module" and lists the others in import order.
func (g *Graph) cyclePath(module uint32, parent uint32, parents map[uint32]uint32) []string {
	path := []string{g.Files[module].Repr.ID()}
	for next := parent; next != module && next != noParent; next = parents[next] {
		path = append(path, g.Files[next].Repr.ID())
	}
	path = append(path, path[0])
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func joinCyclePath(path []string) string {
	return strings.Join(path, " -> ")
}
