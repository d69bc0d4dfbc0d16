package js_parser

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/evanw/treeshake/internal/ast"
	"github.com/evanw/treeshake/internal/js_ast"
)

func (p *parser) convertStmts(node *sitter.Node) (stmts []js_ast.Node) {
	for _, child := range namedChildren(node) {
		if child.Type() == "hash_bang_line" {
			continue
		}
		if stmt := p.convertStmt(child); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return
}

func (p *parser) convertBlock(node *sitter.Node) *js_ast.SBlock {
	return setRange(p, &js_ast.SBlock{Stmts: p.convertStmts(node)}, node)
}

// Statements in positions that take one statement, like the body of a loop
func (p *parser) convertBody(node *sitter.Node) js_ast.Node {
	if node == nil {
		return &js_ast.SEmpty{}
	}
	if stmt := p.convertStmt(node); stmt != nil {
		return stmt
	}
	return setRange(p, &js_ast.SEmpty{}, node)
}

func (p *parser) convertStmt(node *sitter.Node) js_ast.Node {
	switch node.Type() {
	case "expression_statement":
		children := namedChildren(node)
		if len(children) == 0 {
			return setRange(p, &js_ast.SEmpty{}, node)
		}
		return setRange(p, &js_ast.SExpr{Value: p.convertExpr(children[0])}, node)

	case "empty_statement":
		return setRange(p, &js_ast.SEmpty{}, node)

	case "debugger_statement":
		return setRange(p, &js_ast.SDebugger{}, node)

	case "statement_block":
		return p.convertBlock(node)

	case "lexical_declaration", "variable_declaration":
		return p.convertLocal(node)

	case "function_declaration", "generator_function_declaration":
		fn := p.convertFunction(node)
		fn.IsDeclaration = true
		return setRange(p, &js_ast.SFunction{Fn: fn}, node)

	case "class_declaration":
		class := p.convertClass(node)
		class.IsDeclaration = true
		return setRange(p, &js_ast.SClass{Class: class}, node)

	case "return_statement":
		s := &js_ast.SReturn{}
		if children := namedChildren(node); len(children) > 0 {
			s.ValueOrNil = p.convertExpr(children[0])
		}
		return setRange(p, s, node)

	case "throw_statement":
		children := namedChildren(node)
		return setRange(p, &js_ast.SThrow{Value: p.convertExpr(children[0])}, node)

	case "if_statement":
		s := &js_ast.SIf{
			Test: p.convertExpr(node.ChildByFieldName("condition")),
			Yes:  p.convertBody(node.ChildByFieldName("consequence")),
		}
		if alternative := node.ChildByFieldName("alternative"); alternative != nil {
			// The alternative is an "else_clause" around the statement
			if alternative.Type() == "else_clause" {
				if children := namedChildren(alternative); len(children) > 0 {
					alternative = children[0]
				}
			}
			s.NoOrNil = p.convertBody(alternative)
		}
		return setRange(p, s, node)

	case "while_statement":
		return setRange(p, &js_ast.SWhile{
			Test: p.convertExpr(node.ChildByFieldName("condition")),
			Body: p.convertBody(node.ChildByFieldName("body")),
		}, node)

	case "do_statement":
		return setRange(p, &js_ast.SDoWhile{
			Body: p.convertBody(node.ChildByFieldName("body")),
			Test: p.convertExpr(node.ChildByFieldName("condition")),
		}, node)

	case "for_statement":
		return p.convertFor(node)

	case "for_in_statement":
		return p.convertForIn(node)

	case "break_statement":
		s := &js_ast.SBreak{}
		if label := node.ChildByFieldName("label"); label != nil {
			s.Label = p.text(label)
		}
		return setRange(p, s, node)

	case "continue_statement":
		s := &js_ast.SContinue{}
		if label := node.ChildByFieldName("label"); label != nil {
			s.Label = p.text(label)
		}
		return setRange(p, s, node)

	case "labeled_statement":
		label := node.ChildByFieldName("label")
		return setRange(p, &js_ast.SLabel{
			Name:      p.text(label),
			NameRange: p.rangeOf(label),
			Stmt:      p.convertBody(node.ChildByFieldName("body")),
		}, node)

	case "switch_statement":
		return p.convertSwitch(node)

	case "try_statement":
		return p.convertTry(node)

	case "import_statement":
		return p.convertImport(node)

	case "export_statement":
		return p.convertExport(node)
	}

	p.unsupported(node)
	return nil
}

func (p *parser) convertLocal(node *sitter.Node) *js_ast.SLocal {
	s := &js_ast.SLocal{Kind: js_ast.LocalVar}
	if node.Type() == "lexical_declaration" {
		s.Kind = js_ast.LocalLet
		if kind := node.ChildByFieldName("kind"); kind != nil && p.text(kind) == "const" {
			s.Kind = js_ast.LocalConst
		} else if hasToken(node, "const") {
			s.Kind = js_ast.LocalConst
		}
	}
	for _, child := range namedChildren(node) {
		if child.Type() != "variable_declarator" {
			continue
		}
		decl := &js_ast.Decl{Binding: p.convertBinding(child.ChildByFieldName("name"))}
		if value := child.ChildByFieldName("value"); value != nil {
			decl.ValueOrNil = p.convertExpr(value)
		}
		s.Decls = append(s.Decls, setRange(p, decl, child))
	}
	return setRange(p, s, node)
}

// The header parts of a "for" loop are statements in the concrete tree even
// when they are expressions in the language
func (p *parser) forClause(node *sitter.Node) js_ast.Node {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "empty_statement", ";":
		return nil
	case "expression_statement":
		if children := namedChildren(node); len(children) > 0 {
			return p.convertExpr(children[0])
		}
		return nil
	case "lexical_declaration", "variable_declaration":
		return p.convertLocal(node)
	}
	return p.convertExpr(node)
}

func (p *parser) convertFor(node *sitter.Node) *js_ast.SFor {
	return setRange(p, &js_ast.SFor{
		InitOrNil:   p.forClause(node.ChildByFieldName("initializer")),
		TestOrNil:   p.forClause(node.ChildByFieldName("condition")),
		UpdateOrNil: p.forClause(node.ChildByFieldName("increment")),
		Body:        p.convertBody(node.ChildByFieldName("body")),
	}, node)
}

func (p *parser) convertForIn(node *sitter.Node) js_ast.Node {
	left := node.ChildByFieldName("left")

	kind := ""
	if kindNode := node.ChildByFieldName("kind"); kindNode != nil {
		kind = p.text(kindNode)
	} else {
		for _, token := range []string{"var", "let", "const"} {
			if hasToken(node, token) {
				kind = token
			}
		}
	}

	var init js_ast.Node
	if kind != "" {
		local := &js_ast.SLocal{Kind: js_ast.LocalVar}
		switch kind {
		case "let":
			local.Kind = js_ast.LocalLet
		case "const":
			local.Kind = js_ast.LocalConst
		}
		decl := setRange(p, &js_ast.Decl{Binding: p.convertBinding(left)}, left)
		local.Decls = []*js_ast.Decl{decl}
		init = setRange(p, local, left)
	} else {
		init = p.convertAssignTarget(left)
	}

	value := p.convertExpr(node.ChildByFieldName("right"))
	body := p.convertBody(node.ChildByFieldName("body"))

	var isOf bool
	if operator := node.ChildByFieldName("operator"); operator != nil {
		isOf = p.text(operator) == "of"
	} else {
		isOf = hasToken(node, "of")
	}
	if isOf {
		s := &js_ast.SForOf{IsAwait: hasToken(node, "await")}
		s.Init, s.Value, s.Body = init, value, body
		return setRange(p, s, node)
	}
	s := &js_ast.SForIn{}
	s.Init, s.Value, s.Body = init, value, body
	return setRange(p, s, node)
}

func (p *parser) convertSwitch(node *sitter.Node) *js_ast.SSwitch {
	s := &js_ast.SSwitch{Test: p.convertExpr(node.ChildByFieldName("value"))}
	for _, child := range namedChildren(node.ChildByFieldName("body")) {
		c := &js_ast.Case{}
		value := child.ChildByFieldName("value")
		if child.Type() == "switch_case" && value != nil {
			c.ValueOrNil = p.convertExpr(value)
		}
		for _, stmt := range namedChildren(child) {
			if sameNode(stmt, value) {
				continue
			}
			if converted := p.convertStmt(stmt); converted != nil {
				c.Body = append(c.Body, converted)
			}
		}
		s.Cases = append(s.Cases, setRange(p, c, child))
	}
	return setRange(p, s, node)
}

func (p *parser) convertTry(node *sitter.Node) *js_ast.STry {
	s := &js_ast.STry{Block: p.convertBlock(node.ChildByFieldName("body"))}
	if handler := node.ChildByFieldName("handler"); handler != nil {
		c := &js_ast.Catch{Block: p.convertBlock(handler.ChildByFieldName("body"))}
		if param := handler.ChildByFieldName("parameter"); param != nil {
			c.BindingOrNil = p.convertBinding(param)
		}
		s.CatchOrNil = setRange(p, c, handler)
	}
	if finalizer := node.ChildByFieldName("finalizer"); finalizer != nil {
		s.FinallyOrNil = p.convertBlock(finalizer.ChildByFieldName("body"))
	}
	return setRange(p, s, node)
}

////////////////////////////////////////////////////////////////////////////////
// Module syntax

func (p *parser) sourcePath(node *sitter.Node) (string, *sitter.Node) {
	source := node.ChildByFieldName("source")
	if source == nil {
		return "", nil
	}
	return p.stringValue(source), source
}

// Names in import and export clauses can be identifiers or strings
func (p *parser) moduleExportName(node *sitter.Node) string {
	if node.Type() == "string" {
		return p.stringValue(node)
	}
	return p.text(node)
}

func (p *parser) convertImport(node *sitter.Node) js_ast.Node {
	path, source := p.sourcePath(node)
	s := &js_ast.SImport{}
	var flags ast.ImportRecordFlags

	clause := (*sitter.Node)(nil)
	for _, child := range namedChildren(node) {
		if child.Type() == "import_clause" {
			clause = child
		}
	}
	if clause == nil {
		flags |= ast.WasOriginallyBareImport
	} else {
		for _, child := range namedChildren(clause) {
			switch child.Type() {
			case "identifier":
				s.DefaultName = p.text(child)
				flags |= ast.ContainsDefaultAlias

			case "namespace_import":
				for _, name := range namedChildren(child) {
					s.NamespaceName = p.text(name)
				}
				flags |= ast.ContainsImportStar

			case "named_imports":
				for _, specifier := range namedChildren(child) {
					if specifier.Type() != "import_specifier" {
						continue
					}
					name := specifier.ChildByFieldName("name")
					item := js_ast.ClauseItem{
						Alias:      p.moduleExportName(name),
						AliasRange: p.rangeOf(name),
					}
					local := name
					if alias := specifier.ChildByFieldName("alias"); alias != nil {
						local = alias
					}
					item.Name = p.text(local)
					item.NameRange = p.rangeOf(local)
					if item.Alias == "default" {
						flags |= ast.ContainsDefaultAlias
					}
					s.Items = append(s.Items, item)
				}
			}
		}
	}

	s.ImportRecordIndex = p.addImportRecord(ast.ImportStmt, source, path, flags)
	return setRange(p, s, node)
}

func (p *parser) exportClause(node *sitter.Node) (items []js_ast.ClauseItem) {
	for _, specifier := range namedChildren(node) {
		if specifier.Type() != "export_specifier" {
			continue
		}
		name := specifier.ChildByFieldName("name")
		alias := name
		if aliasNode := specifier.ChildByFieldName("alias"); aliasNode != nil {
			alias = aliasNode
		}
		items = append(items, js_ast.ClauseItem{
			Alias:      p.moduleExportName(alias),
			AliasRange: p.rangeOf(alias),
			Name:       p.moduleExportName(name),
			NameRange:  p.rangeOf(name),
		})
	}
	return
}

func (p *parser) convertExport(node *sitter.Node) js_ast.Node {
	path, source := p.sourcePath(node)

	if hasToken(node, "default") {
		value := node.ChildByFieldName("declaration")
		if value == nil {
			value = node.ChildByFieldName("value")
		}
		if value == nil {
			p.unsupported(node)
			return nil
		}
		var converted js_ast.Node
		switch value.Type() {
		case "function_declaration", "generator_function_declaration", "function_expression", "function", "generator_function":
			fn := p.convertFunction(value)
			fn.IsDeclaration = true
			converted = setRange(p, &js_ast.SFunction{Fn: fn}, value)
		case "class_declaration", "class":
			class := p.convertClass(value)
			class.IsDeclaration = true
			converted = setRange(p, &js_ast.SClass{Class: class}, value)
		default:
			converted = p.convertExpr(value)
		}
		return setRange(p, &js_ast.SExportDefault{Value: converted}, node)
	}

	if declaration := node.ChildByFieldName("declaration"); declaration != nil {
		switch stmt := p.convertStmt(declaration).(type) {
		case *js_ast.SLocal:
			stmt.IsExport = true
			return stmt
		case *js_ast.SFunction:
			stmt.IsExport = true
			return stmt
		case *js_ast.SClass:
			stmt.IsExport = true
			return stmt
		}
		p.unsupported(declaration)
		return nil
	}

	for _, child := range namedChildren(node) {
		switch child.Type() {
		case "export_clause":
			items := p.exportClause(child)
			if source == nil {
				return setRange(p, &js_ast.SExportClause{Items: items}, node)
			}
			return setRange(p, &js_ast.SExportFrom{
				Items:             items,
				ImportRecordIndex: p.addImportRecord(ast.ImportStmt, source, path, ast.IsReExport),
			}, node)

		case "namespace_export":
			s := &js_ast.SExportStar{}
			for _, name := range namedChildren(child) {
				s.Alias = p.moduleExportName(name)
				s.AliasRange = p.rangeOf(name)
			}
			s.ImportRecordIndex = p.addImportRecord(ast.ImportStmt, source, path, ast.IsReExport|ast.ContainsImportStar)
			return setRange(p, s, node)
		}
	}

	if hasToken(node, "*") && source != nil {
		s := &js_ast.SExportStar{}
		// Older grammars put the alias of "export * as ns" directly here
		for _, child := range namedChildren(node) {
			if !sameNode(child, source) && (child.Type() == "identifier" || child.Type() == "string") {
				s.Alias = p.moduleExportName(child)
				s.AliasRange = p.rangeOf(child)
			}
		}
		s.ImportRecordIndex = p.addImportRecord(ast.ImportStmt, source, path, ast.IsReExport)
		return setRange(p, s, node)
	}

	p.unsupported(node)
	return nil
}
