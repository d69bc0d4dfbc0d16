package js_ast

// How control flow leaves the statement that was just analyzed. The levels are
// ordered so that merging two branches takes the minimum.
type BrokenFlow uint8

const (
	BrokenFlowNone BrokenFlow = iota
	BrokenFlowBreakContinue
	BrokenFlowErrorReturn
)

func minBrokenFlow(a BrokenFlow, b BrokenFlow) BrokenFlow {
	if a < b {
		return a
	}
	return b
}

type CallOptions struct {
	Args    []Node
	WithNew bool
}

var noArgsCall = &CallOptions{}

// Flow constructs that do not count as an effect in the current construct
// because an enclosing construct handles them.
type IgnoredFlow struct {
	Labels           map[string]bool
	Breaks           bool
	Continues        bool
	ReturnAwaitYield bool
}

func (ignore IgnoredFlow) hasLabel(name string) bool {
	return ignore.Labels[name]
}

func (ignore *IgnoredFlow) addLabel(name string) {
	if ignore.Labels == nil {
		ignore.Labels = make(map[string]bool)
	}
	ignore.Labels[name] = true
}

func (ignore *IgnoredFlow) removeLabel(name string) {
	delete(ignore.Labels, name)
}

// The transient state of one traversal. Effect queries and inclusion share
// this type. An inclusion traversal only uses the broken-flow level, the
// included labels and the call-argument set.
type InclusionContext struct {
	IncludedLabels        map[string]bool
	IncludedCallArguments map[Entity]bool

	// A function being analyzed as the callee of a call temporarily replaces
	// the initializer of its "this" binding
	ReplacedVariableInits map[*ThisVariable]Entity

	Accessed     PathTracker
	Assigned     PathTracker
	Called       DiscriminatedPathTracker
	Instantiated DiscriminatedPathTracker

	Ignore     IgnoredFlow
	BrokenFlow BrokenFlow
}

func NewInclusionContext() *InclusionContext {
	return &InclusionContext{
		IncludedLabels:        make(map[string]bool),
		IncludedCallArguments: make(map[Entity]bool),
	}
}

func NewHasEffectsContext() *InclusionContext {
	ctx := NewInclusionContext()
	ctx.ReplacedVariableInits = make(map[*ThisVariable]Entity)
	return ctx
}

func (ctx *InclusionContext) includeLabel(name string) {
	if ctx.IncludedLabels == nil {
		ctx.IncludedLabels = make(map[string]bool)
	}
	ctx.IncludedLabels[name] = true
}

func (ctx *InclusionContext) calledTracker(call *CallOptions) *DiscriminatedPathTracker {
	if call.WithNew {
		return &ctx.Instantiated
	}
	return &ctx.Called
}
