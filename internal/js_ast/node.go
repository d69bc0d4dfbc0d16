package js_ast

import "github.com/evanw/treeshake/internal/logger"

// Every syntax kind implements this protocol. Most variants only override a
// few methods and inherit the rest from "NodeBase".
type Node interface {
	Entity

	Base() *NodeBase

	// Resolves identifiers to variables and builds analysis caches. Called
	// once for every node after the whole graph has been initialized.
	Bind()

	// Whether executing this node, assuming it is reached, may have an
	// observable effect
	HasEffects(ctx *InclusionContext) bool

	ShouldBeIncluded(ctx *InclusionContext) bool
	Include(ctx *InclusionContext, includeChildrenRecursively bool)

	// Visits the direct children in source order
	EachChild(fn func(Node))
}

type NodeBase struct {
	Parent Node
	Scope  *Scope
	self   Node

	Range logger.Range

	// Monotonic. Once set it is never cleared within a build.
	Included bool
}

func (n *NodeBase) Base() *NodeBase {
	return n
}

func (n *NodeBase) build() *BuildContext {
	return n.Scope.build
}

func (n *NodeBase) host() ModuleHost {
	return n.Scope.Host()
}

func (n *NodeBase) EachChild(func(Node)) {}

func (n *NodeBase) Bind() {
	n.self.EachChild(func(child Node) {
		child.Bind()
	})
}

func (n *NodeBase) HasEffects(ctx *InclusionContext) bool {
	found := false
	n.self.EachChild(func(child Node) {
		if !found && child.HasEffects(ctx) {
			found = true
		}
	})
	return found
}

func (n *NodeBase) ShouldBeIncluded(ctx *InclusionContext) bool {
	return n.Included || (ctx.BrokenFlow == BrokenFlowNone && n.self.HasEffects(NewHasEffectsContext()))
}

func (n *NodeBase) Include(ctx *InclusionContext, includeChildrenRecursively bool) {
	n.Included = true
	n.self.EachChild(func(child Node) {
		child.Include(ctx, includeChildrenRecursively)
	})
}

func (n *NodeBase) DeoptimizePath(Path) {}

func (n *NodeBase) GetLiteralValueAtPath(Path, *PathTracker, DeoptimizableEntity) LiteralValue {
	return UnknownValue
}

func (n *NodeBase) GetReturnExpressionWhenCalledAtPath(Path, *PathTracker, DeoptimizableEntity) Entity {
	return UnknownExpression
}

func (n *NodeBase) HasEffectsWhenAccessedAtPath(path Path, _ *InclusionContext) bool {
	return len(path) > 0
}

func (n *NodeBase) HasEffectsWhenAssignedAtPath(Path, *InclusionContext) bool {
	return true
}

func (n *NodeBase) HasEffectsWhenCalledAtPath(Path, *CallOptions, *InclusionContext) bool {
	return true
}

func (n *NodeBase) IncludeCallArguments(ctx *InclusionContext, args []Node) {
	includeAll(ctx, args)
}

func (n *NodeBase) MayModifyThisWhenCalledAtPath(Path, *PathTracker) bool {
	return true
}

// Marks every ancestor up to the program as included without including
// their other children
func includeAncestors(node Node) {
	for parent := node.Base().Parent; parent != nil; parent = parent.Base().Parent {
		base := parent.Base()
		if base.Included {
			return
		}
		base.Included = true
		if _, ok := parent.(*Program); ok {
			return
		}
	}
}

func hasEffectsAny(ctx *InclusionContext, nodes []Node) bool {
	for _, node := range nodes {
		if node != nil && node.HasEffects(ctx) {
			return true
		}
	}
	return false
}

func eachNonNil(fn func(Node), nodes ...Node) {
	for _, node := range nodes {
		if node != nil {
			fn(node)
		}
	}
}
