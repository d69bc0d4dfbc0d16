package js_ast

// Nodes that open a new scope for their children
type scopeCreator interface {
	createScope(parent *Scope) *Scope
}

// Nodes whose children do not all live in the same scope
type childScoper interface {
	scopeForChild(child Node, own *Scope) *Scope
}

// Runs after every child has been initialised
type initialiser interface {
	initialise()
}

// Runs after one child has been initialised but before its next sibling
type childInitialiser interface {
	childInitialised(child Node)
}

// Connects a freshly built tree: every node learns its parent and its scope,
// scopes are created and declarations are registered. This must run for
// every module before any module is bound.
func Initialise(program *Program, scope *Scope) {
	initialiseNode(program, nil, scope)
}

func initialiseNode(node Node, parent Node, scope *Scope) {
	base := node.Base()
	base.self = node
	base.Parent = parent
	base.Scope = scope

	inner := scope
	if creator, ok := node.(scopeCreator); ok {
		inner = creator.createScope(scope)
	}
	scoper, _ := node.(childScoper)
	hook, _ := node.(childInitialiser)
	node.EachChild(func(child Node) {
		childScope := inner
		if scoper != nil {
			childScope = scoper.scopeForChild(child, inner)
		}
		initialiseNode(child, node, childScope)
		if hook != nil {
			hook.childInitialised(child)
		}
	})

	if init, ok := node.(initialiser); ok {
		init.initialise()
	}
}

// Visits "node" and its descendants in source order. Returning false from
// "fn" skips the children of that node.
func Walk(node Node, fn func(Node) bool) {
	if !fn(node) {
		return
	}
	node.EachChild(func(child Node) {
		Walk(child, fn)
	})
}
