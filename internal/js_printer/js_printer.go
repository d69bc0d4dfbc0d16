package js_printer

// This printer renders the code that survived tree shaking. It does not print
// the tree. Instead it copies the original source and cuts out the parts that
// were not included, so the output keeps the formatting and comments of the
// input. Import and export syntax is cut as well since the module graph
// replaces it.

import (
	"sort"
	"strings"

	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/logger"
)

type edit struct {
	start       int32
	end         int32
	replacement string
}

type printer struct {
	source *logger.Source
	edits  []edit
}

func Print(program *js_ast.Program, source *logger.Source) string {
	p := &printer{source: source}
	p.printStmts(program.Stmts, true)

	// Nested edits are never produced inside a removed range, but the ranges
	// of declarators can touch
	sort.SliceStable(p.edits, func(i, j int) bool { return p.edits[i].start < p.edits[j].start })
	sb := strings.Builder{}
	contents := source.Contents
	offset := int32(0)
	for _, e := range p.edits {
		if e.start < offset {
			continue
		}
		sb.WriteString(contents[offset:e.start])
		sb.WriteString(e.replacement)
		offset = e.end
	}
	sb.WriteString(contents[offset:])
	return strings.TrimLeft(sb.String(), "\n")
}

func (p *printer) cut(start int32, end int32, replacement string) {
	p.edits = append(p.edits, edit{start: start, end: end, replacement: replacement})
}

// Removes a whole statement along with its line if nothing else is on it
func (p *printer) removeStmt(r logger.Range) {
	contents := p.source.Contents
	start, end := r.Loc.Start, r.End()

	lineStart := start
	for lineStart > 0 && (contents[lineStart-1] == ' ' || contents[lineStart-1] == '\t') {
		lineStart--
	}
	for end < int32(len(contents)) && (contents[end] == ' ' || contents[end] == '\t') {
		end++
	}
	if lineStart == 0 || contents[lineStart-1] == '\n' {
		if end < int32(len(contents)) && contents[end] == '\r' {
			end++
		}
		if end < int32(len(contents)) && contents[end] == '\n' {
			end++
			start = lineStart
		}
	}
	p.cut(start, end, "")
}

func (p *printer) printStmts(stmts []js_ast.Node, isTopLevel bool) {
	for _, stmt := range stmts {
		r := stmt.Base().Range
		isExport := false
		if isTopLevel {
			switch s := stmt.(type) {
			case *js_ast.SImport, *js_ast.SExportClause, *js_ast.SExportFrom, *js_ast.SExportStar:
				p.removeStmt(r)
				continue
			case *js_ast.SLocal:
				isExport = s.IsExport
			case *js_ast.SFunction:
				isExport = s.IsExport
			case *js_ast.SClass:
				isExport = s.IsExport
			}
		}
		if isExport {
			r = p.withExportKeyword(r)
		}
		if !stmt.Base().Included || !hasIncludedDecl(stmt) {
			p.removeStmt(r)
			continue
		}
		if isExport {
			p.cut(r.Loc.Start, stmt.Base().Range.Loc.Start, "")
		}
		p.printNode(stmt)
	}
}

// An included variable statement may still have no included declarator
func hasIncludedDecl(stmt js_ast.Node) bool {
	if s, ok := stmt.(*js_ast.SLocal); ok {
		for _, decl := range s.Decls {
			if decl.Included {
				return true
			}
		}
		return false
	}
	return true
}

// Exported declarations start after the "export" keyword. The returned range
// starts at the keyword instead.
func (p *printer) withExportKeyword(r logger.Range) logger.Range {
	contents := p.source.Contents
	start := r.Loc.Start
	for start > 0 && strings.IndexByte(" \t\r\n", contents[start-1]) != -1 {
		start--
	}
	if start >= 6 && contents[start-6:start] == "export" {
		return logger.Range{Loc: logger.Loc{Start: start - 6}, Len: r.End() - (start - 6)}
	}
	return r
}

// A statement in a position that requires one, like the body of a loop
func (p *printer) printBody(stmt js_ast.Node) {
	if stmt.Base().Included {
		p.printNode(stmt)
		return
	}
	r := stmt.Base().Range
	p.cut(r.Loc.Start, r.End(), "{}")
}

func (p *printer) printNode(node js_ast.Node) {
	switch n := node.(type) {
	case *js_ast.SBlock:
		p.printStmts(n.Stmts, false)

	case *js_ast.Case:
		if n.ValueOrNil != nil {
			p.printNode(n.ValueOrNil)
		}
		p.printStmts(n.Body, false)

	case *js_ast.SLocal:
		p.printDecls(n)

	case *js_ast.SIf:
		p.printNode(n.Test)
		p.printBody(n.Yes)
		if n.NoOrNil != nil {
			if n.NoOrNil.Base().Included {
				p.printNode(n.NoOrNil)
			} else {
				// Drop the "else" together with its branch
				p.cut(n.Yes.Base().Range.End(), n.NoOrNil.Base().Range.End(), "")
			}
		}

	case *js_ast.SWhile:
		p.printNode(n.Test)
		p.printBody(n.Body)

	case *js_ast.SDoWhile:
		p.printBody(n.Body)
		p.printNode(n.Test)

	case *js_ast.SFor:
		for _, part := range []js_ast.Node{n.InitOrNil, n.TestOrNil, n.UpdateOrNil} {
			if part != nil {
				p.printNode(part)
			}
		}
		p.printBody(n.Body)

	case *js_ast.SForIn:
		p.printNode(n.Value)
		p.printBody(n.Body)

	case *js_ast.SForOf:
		p.printNode(n.Value)
		p.printBody(n.Body)

	case *js_ast.SLabel:
		p.printBody(n.Stmt)

	default:
		node.EachChild(func(child js_ast.Node) {
			if child.Base().Included {
				p.printNode(child)
			}
		})
	}
}

func (p *printer) printDecls(s *js_ast.SLocal) {
	last := -1
	for i, decl := range s.Decls {
		if decl.Included {
			last = i
		}
	}
	if last == -1 {
		p.removeStmt(s.Range)
		return
	}

	for i, decl := range s.Decls {
		switch {
		case decl.Included:
			p.printNode(decl)
		case i < last:
			// Up to the start of the next declarator, which takes the comma
			p.cut(decl.Range.Loc.Start, s.Decls[i+1].Range.Loc.Start, "")
		}
	}
	if last < len(s.Decls)-1 {
		p.cut(s.Decls[last].Range.End(), s.Decls[len(s.Decls)-1].Range.End(), "")
	}
}
