package js_parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/evanw/treeshake/internal/ast"
	"github.com/evanw/treeshake/internal/js_ast"
)

func (p *parser) stringValue(node *sitter.Node) string {
	text := p.text(node)
	if len(text) >= 2 {
		text = text[1 : len(text)-1]
	}
	return decodeEscapeSequences(text)
}

func (p *parser) convertExprs(nodes []*sitter.Node) (exprs []js_ast.Node) {
	for _, node := range nodes {
		if expr := p.convertExpr(node); expr != nil {
			exprs = append(exprs, expr)
		}
	}
	return
}

func (p *parser) convertExpr(node *sitter.Node) js_ast.Node {
	if node == nil {
		return newMissing()
	}

	switch node.Type() {
	case "identifier", "undefined":
		return setRange(p, &js_ast.EIdentifier{Name: p.text(node)}, node)

	case "this":
		return setRange(p, &js_ast.EThis{}, node)

	case "super":
		return setRange(p, &js_ast.ESuper{}, node)

	case "true", "false":
		return setRange(p, &js_ast.EBoolean{Value: node.Type() == "true"}, node)

	case "null":
		return setRange(p, &js_ast.ENull{}, node)

	case "number":
		value, digits, isBigInt := parseNumericLiteral(p.text(node))
		if isBigInt {
			return setRange(p, &js_ast.EBigInt{Value: digits}, node)
		}
		return setRange(p, &js_ast.ENumber{Value: value}, node)

	case "string":
		return setRange(p, &js_ast.EString{Value: p.stringValue(node)}, node)

	case "regex":
		return setRange(p, &js_ast.ERegExp{Value: p.text(node)}, node)

	case "template_string":
		return p.convertTemplate(nil, node)

	case "parenthesized_expression":
		children := namedChildren(node)
		if len(children) == 1 {
			return p.convertExpr(children[0])
		}
		return setRange(p, &js_ast.ESequence{Exprs: p.convertExprs(children)}, node)

	case "sequence_expression":
		return setRange(p, &js_ast.ESequence{Exprs: p.flattenSequence(node, nil)}, node)

	case "array":
		return setRange(p, &js_ast.EArray{Items: p.convertElements(node, p.convertExpr)}, node)

	case "object":
		return p.convertObject(node)

	case "function", "function_expression", "generator_function", "arrow_function":
		return p.convertFunction(node)

	case "class":
		return p.convertClass(node)

	case "call_expression":
		return p.convertCall(node)

	case "new_expression":
		e := &js_ast.ENew{
			Target:                 p.convertExpr(node.ChildByFieldName("constructor")),
			CanBeUnwrappedIfUnused: p.isAnnotatedPure(node),
		}
		if args := node.ChildByFieldName("arguments"); args != nil {
			e.Args = p.convertExprs(namedChildren(args))
		}
		return setRange(p, e, node)

	case "member_expression":
		property := node.ChildByFieldName("property")
		// Private names keep their "#" so they never match a public key
		e := &js_ast.EDot{Name: p.text(property), NameRange: p.rangeOf(property)}
		e.Target = p.convertExpr(node.ChildByFieldName("object"))
		return setRange(p, e, node)

	case "subscript_expression":
		e := &js_ast.EIndex{Index: p.convertExpr(node.ChildByFieldName("index"))}
		e.Target = p.convertExpr(node.ChildByFieldName("object"))
		return setRange(p, e, node)

	case "private_property_identifier":
		return setRange(p, &js_ast.EPrivateIdentifier{Name: strings.TrimPrefix(p.text(node), "#")}, node)

	case "assignment_expression":
		return setRange(p, &js_ast.EAssign{
			Op:     js_ast.BinOpAssign,
			Target: p.convertAssignTarget(node.ChildByFieldName("left")),
			Value:  p.convertExpr(node.ChildByFieldName("right")),
		}, node)

	case "augmented_assignment_expression":
		op, ok := js_ast.AssignOpFromText(p.text(node.ChildByFieldName("operator")))
		if !ok {
			p.unsupported(node)
			return newMissing()
		}
		return setRange(p, &js_ast.EAssign{
			Op:     op,
			Target: p.convertAssignTarget(node.ChildByFieldName("left")),
			Value:  p.convertExpr(node.ChildByFieldName("right")),
		}, node)

	case "unary_expression":
		op, ok := js_ast.UnaryOpFromText(p.text(node.ChildByFieldName("operator")))
		if !ok {
			p.unsupported(node)
			return newMissing()
		}
		return setRange(p, &js_ast.EUnary{Op: op, Value: p.convertExpr(node.ChildByFieldName("argument"))}, node)

	case "update_expression":
		operator := node.ChildByFieldName("operator")
		argument := node.ChildByFieldName("argument")
		op, ok := js_ast.UpdateOpFromText(p.text(operator), operator.StartByte() < argument.StartByte())
		if !ok {
			p.unsupported(node)
			return newMissing()
		}
		return setRange(p, &js_ast.EUpdate{Op: op, Value: p.convertAssignTarget(argument)}, node)

	case "binary_expression":
		op, ok := js_ast.BinaryOpFromText(p.text(node.ChildByFieldName("operator")))
		if !ok {
			p.unsupported(node)
			return newMissing()
		}
		left := p.convertExpr(node.ChildByFieldName("left"))
		right := p.convertExpr(node.ChildByFieldName("right"))
		if op.IsLogical() {
			return setRange(p, &js_ast.ELogical{Op: op, Left: left, Right: right}, node)
		}
		return setRange(p, &js_ast.EBinary{Op: op, Left: left, Right: right}, node)

	case "ternary_expression":
		return setRange(p, &js_ast.EIf{
			Test: p.convertExpr(node.ChildByFieldName("condition")),
			Yes:  p.convertExpr(node.ChildByFieldName("consequence")),
			No:   p.convertExpr(node.ChildByFieldName("alternative")),
		}, node)

	case "await_expression":
		children := namedChildren(node)
		return setRange(p, &js_ast.EAwait{Value: p.convertExpr(children[0])}, node)

	case "yield_expression":
		e := &js_ast.EYield{IsStar: hasToken(node, "*")}
		if children := namedChildren(node); len(children) > 0 {
			e.ValueOrNil = p.convertExpr(children[0])
		}
		return setRange(p, e, node)

	case "spread_element":
		children := namedChildren(node)
		return setRange(p, &js_ast.ESpread{Value: p.convertExpr(children[0])}, node)

	case "meta_property":
		if strings.HasPrefix(p.text(node), "new") {
			return setRange(p, &js_ast.ENewTarget{}, node)
		}
		return setRange(p, &js_ast.EImportMeta{}, node)
	}

	p.unsupported(node)
	return newMissing()
}

func newMissing() js_ast.Node {
	return &js_ast.EMissing{}
}

// Older grammars nest sequences through "left" and "right" fields
func (p *parser) flattenSequence(node *sitter.Node, exprs []js_ast.Node) []js_ast.Node {
	for _, child := range namedChildren(node) {
		if child.Type() == "sequence_expression" {
			exprs = p.flattenSequence(child, exprs)
		} else {
			exprs = append(exprs, p.convertExpr(child))
		}
	}
	return exprs
}

// Array literals and array patterns mark holes only with commas
func (p *parser) convertElements(node *sitter.Node, convert func(*sitter.Node) js_ast.Node) (items []js_ast.Node) {
	sawItem := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch {
		case child.Type() == "comment":
		case !child.IsNamed() && child.Type() == ",":
			if !sawItem {
				items = append(items, setRange(p, &js_ast.EMissing{}, child))
			}
			sawItem = false
		case child.IsNamed():
			items = append(items, convert(child))
			sawItem = true
		}
	}
	return
}

func (p *parser) convertTemplate(tag js_ast.Node, node *sitter.Node) *js_ast.ETemplate {
	e := &js_ast.ETemplate{TagOrNil: tag}
	start := node.StartByte() + 1
	first := true
	for _, child := range namedChildren(node) {
		if child.Type() != "template_substitution" {
			continue
		}
		cooked := decodeEscapeSequences(string(p.src[start:child.StartByte()]))
		if first {
			e.HeadCooked = cooked
			first = false
		} else {
			e.Parts[len(e.Parts)-1].TailCooked = cooked
		}
		var value js_ast.Node = newMissing()
		if inner := namedChildren(child); len(inner) > 0 {
			value = p.convertExpr(inner[0])
		}
		e.Parts = append(e.Parts, js_ast.TemplatePart{Value: value})
		start = child.EndByte()
	}
	tail := decodeEscapeSequences(string(p.src[start : node.EndByte()-1]))
	if first {
		e.HeadCooked = tail
	} else {
		e.Parts[len(e.Parts)-1].TailCooked = tail
	}
	return setRange(p, e, node)
}

func (p *parser) convertCall(node *sitter.Node) js_ast.Node {
	function := node.ChildByFieldName("function")
	args := node.ChildByFieldName("arguments")

	if args != nil && args.Type() == "template_string" {
		return p.convertTemplate(p.convertExpr(function), args)
	}

	if function.Type() == "import" {
		e := &js_ast.EImportCall{}
		children := namedChildren(args)
		if len(children) == 0 {
			p.unsupported(node)
			return newMissing()
		}
		arg := children[0]
		e.Expr = p.convertExpr(arg)
		if arg.Type() == "string" {
			e.ImportRecordIndex = ast.MakeIndex32(p.addImportRecord(ast.ImportDynamic, arg, p.stringValue(arg), 0))
		}
		return setRange(p, e, node)
	}

	e := &js_ast.ECall{
		Target:                 p.convertExpr(function),
		CanBeUnwrappedIfUnused: p.isAnnotatedPure(node),
	}
	if args != nil {
		e.Args = p.convertExprs(namedChildren(args))
	}
	return setRange(p, e, node)
}

////////////////////////////////////////////////////////////////////////////////
// Objects and classes

func (p *parser) convertPropertyKey(node *sitter.Node) (js_ast.Node, js_ast.PropertyFlags) {
	switch node.Type() {
	case "property_identifier", "identifier", "shorthand_property_identifier":
		return setRange(p, &js_ast.EString{Value: p.text(node)}, node), 0
	case "string":
		return setRange(p, &js_ast.EString{Value: p.stringValue(node)}, node), 0
	case "number":
		value, digits, isBigInt := parseNumericLiteral(p.text(node))
		if isBigInt {
			return setRange(p, &js_ast.EString{Value: digits}, node), 0
		}
		return setRange(p, &js_ast.ENumber{Value: value}, node), 0
	case "private_property_identifier":
		return setRange(p, &js_ast.EPrivateIdentifier{Name: strings.TrimPrefix(p.text(node), "#")}, node), 0
	case "computed_property_name":
		children := namedChildren(node)
		return p.convertExpr(children[0]), js_ast.PropertyIsComputed
	}
	p.unsupported(node)
	return newMissing(), 0
}

func (p *parser) convertMethod(node *sitter.Node) *js_ast.Property {
	key, flags := p.convertPropertyKey(node.ChildByFieldName("name"))
	property := &js_ast.Property{KeyOrNil: key, Flags: flags | js_ast.PropertyIsMethod}
	if hasToken(node, "static") {
		property.Flags |= js_ast.PropertyIsStatic
	}
	switch {
	case hasToken(node, "get"):
		property.Kind = js_ast.PropertyGet
	case hasToken(node, "set"):
		property.Kind = js_ast.PropertySet
	}
	fn := &js_ast.EFunction{
		IsAsync:     hasToken(node, "async"),
		IsGenerator: hasToken(node, "*"),
	}
	p.convertFunctionParts(fn, node)
	property.ValueOrNil = setRange(p, fn, node)
	return setRange(p, property, node)
}

func (p *parser) convertObject(node *sitter.Node) *js_ast.EObject {
	e := &js_ast.EObject{}
	for _, child := range namedChildren(node) {
		var property *js_ast.Property
		switch child.Type() {
		case "pair":
			key, flags := p.convertPropertyKey(child.ChildByFieldName("key"))
			property = &js_ast.Property{KeyOrNil: key, Flags: flags, ValueOrNil: p.convertExpr(child.ChildByFieldName("value"))}

		case "shorthand_property_identifier":
			key, _ := p.convertPropertyKey(child)
			property = &js_ast.Property{KeyOrNil: key, ValueOrNil: setRange(p, &js_ast.EIdentifier{Name: p.text(child)}, child)}

		case "method_definition":
			property = p.convertMethod(child)

		case "spread_element":
			children := namedChildren(child)
			property = &js_ast.Property{Kind: js_ast.PropertySpread, ValueOrNil: p.convertExpr(children[0])}

		default:
			p.unsupported(child)
			continue
		}
		e.Properties = append(e.Properties, setRange(p, property, child))
	}
	return setRange(p, e, node)
}

func (p *parser) convertClass(node *sitter.Node) *js_ast.EClass {
	e := &js_ast.EClass{}
	if name := node.ChildByFieldName("name"); name != nil {
		e.ID = setRange(p, &js_ast.BIdentifier{EIdentifier: js_ast.EIdentifier{Name: p.text(name)}}, name)
	}
	for _, child := range namedChildren(node) {
		if child.Type() == "class_heritage" {
			if children := namedChildren(child); len(children) > 0 {
				e.ExtendsOrNil = p.convertExpr(children[0])
			}
		}
	}

	for _, member := range namedChildren(node.ChildByFieldName("body")) {
		switch member.Type() {
		case "method_definition":
			e.Properties = append(e.Properties, p.convertMethod(member))

		case "field_definition", "public_field_definition":
			key, flags := p.convertPropertyKey(member.ChildByFieldName("property"))
			property := &js_ast.Property{KeyOrNil: key, Flags: flags}
			if hasToken(member, "static") {
				property.Flags |= js_ast.PropertyIsStatic
			}
			if value := member.ChildByFieldName("value"); value != nil {
				property.ValueOrNil = p.convertExpr(value)
			}
			e.Properties = append(e.Properties, setRange(p, property, member))

		case "class_static_block":
			e.Properties = append(e.Properties, setRange(p, &js_ast.Property{
				Kind:       js_ast.PropertyClassStaticBlock,
				Flags:      js_ast.PropertyIsStatic,
				ValueOrNil: p.convertBlock(member.ChildByFieldName("body")),
			}, member))

		default:
			p.unsupported(member)
		}
	}
	return setRange(p, e, node)
}

////////////////////////////////////////////////////////////////////////////////
// Functions

func (p *parser) convertFunction(node *sitter.Node) *js_ast.EFunction {
	fn := &js_ast.EFunction{
		IsArrow:     node.Type() == "arrow_function",
		IsAsync:     hasToken(node, "async"),
		IsGenerator: hasToken(node, "*"),
	}
	if name := node.ChildByFieldName("name"); name != nil {
		fn.ID = setRange(p, &js_ast.BIdentifier{EIdentifier: js_ast.EIdentifier{Name: p.text(name)}}, name)
	}
	p.convertFunctionParts(fn, node)
	return setRange(p, fn, node)
}

func (p *parser) convertFunctionParts(fn *js_ast.EFunction, node *sitter.Node) {
	if param := node.ChildByFieldName("parameter"); param != nil {
		// The single unparenthesized parameter of an arrow function
		fn.Params = []js_ast.Node{p.convertBinding(param)}
	} else if params := node.ChildByFieldName("parameters"); params != nil {
		for _, param := range namedChildren(params) {
			if param.Type() == "rest_pattern" {
				fn.HasRest = true
			}
			fn.Params = append(fn.Params, p.convertBinding(param))
		}
	}

	body := node.ChildByFieldName("body")
	switch {
	case body == nil:
		fn.Body = &js_ast.SBlock{}
	case body.Type() == "statement_block":
		fn.Body = p.convertBlock(body)
	default:
		fn.PreferExpr = true
		ret := setRange(p, &js_ast.SReturn{ValueOrNil: p.convertExpr(body)}, body)
		fn.Body = setRange(p, &js_ast.SBlock{Stmts: []js_ast.Node{ret}}, body)
	}
}

////////////////////////////////////////////////////////////////////////////////
// Patterns

func (p *parser) convertBinding(node *sitter.Node) js_ast.Node {
	return p.convertPattern(node, false)
}

// Plain identifiers stay identifiers when assigned to. Destructuring uses the
// same nodes as declarations, with member expressions allowed as leaves.
func (p *parser) convertAssignTarget(node *sitter.Node) js_ast.Node {
	switch node.Type() {
	case "object_pattern", "array_pattern", "object", "array":
		return p.convertPattern(node, true)
	case "parenthesized_expression":
		if children := namedChildren(node); len(children) == 1 {
			return p.convertAssignTarget(children[0])
		}
	}
	return p.convertExpr(node)
}

func (p *parser) bindingIdentifier(node *sitter.Node) *js_ast.BIdentifier {
	return setRange(p, &js_ast.BIdentifier{EIdentifier: js_ast.EIdentifier{Name: p.text(node)}}, node)
}

func (p *parser) convertPattern(node *sitter.Node, isAssign bool) js_ast.Node {
	switch node.Type() {
	case "identifier", "shorthand_property_identifier_pattern", "shorthand_property_identifier", "undefined":
		return p.bindingIdentifier(node)

	case "assignment_pattern", "assignment_expression":
		return setRange(p, &js_ast.BDefault{
			Binding: p.convertPattern(node.ChildByFieldName("left"), isAssign),
			Value:   p.convertExpr(node.ChildByFieldName("right")),
		}, node)

	case "rest_pattern", "spread_element":
		children := namedChildren(node)
		return setRange(p, &js_ast.BRest{Binding: p.convertPattern(children[0], isAssign)}, node)

	case "array_pattern", "array":
		return setRange(p, &js_ast.BArray{Items: p.convertElements(node, func(item *sitter.Node) js_ast.Node {
			return p.convertPattern(item, isAssign)
		})}, node)

	case "object_pattern", "object":
		b := &js_ast.BObject{}
		for _, child := range namedChildren(node) {
			property := &js_ast.BProperty{}
			switch child.Type() {
			case "pair_pattern", "pair":
				key, flags := p.convertPropertyKey(child.ChildByFieldName("key"))
				property.KeyOrNil = key
				property.IsComputed = flags.Has(js_ast.PropertyIsComputed)
				property.Value = p.convertPattern(child.ChildByFieldName("value"), isAssign)

			case "shorthand_property_identifier_pattern", "shorthand_property_identifier":
				property.KeyOrNil = setRange(p, &js_ast.EString{Value: p.text(child)}, child)
				property.Value = p.bindingIdentifier(child)

			case "object_assignment_pattern":
				left := child.ChildByFieldName("left")
				property.KeyOrNil = setRange(p, &js_ast.EString{Value: p.text(left)}, left)
				property.Value = setRange(p, &js_ast.BDefault{
					Binding: p.bindingIdentifier(left),
					Value:   p.convertExpr(child.ChildByFieldName("right")),
				}, child)

			case "rest_pattern", "spread_element":
				children := namedChildren(child)
				property.IsRest = true
				property.Value = p.convertPattern(children[0], isAssign)

			default:
				p.unsupported(child)
				continue
			}
			b.Properties = append(b.Properties, setRange(p, property, child))
		}
		return setRange(p, b, node)

	case "member_expression", "subscript_expression":
		if isAssign {
			return p.convertExpr(node)
		}

	case "parenthesized_expression":
		if children := namedChildren(node); isAssign && len(children) == 1 {
			return p.convertPattern(children[0], isAssign)
		}
	}

	p.unsupported(node)
	return newMissing()
}
