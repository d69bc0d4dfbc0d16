package js_parser

// This parser turns the concrete syntax tree produced by tree-sitter into the
// analysis tree in "js_ast". Tree-sitter does the actual parsing. This file
// only maps node kinds, collects import records and finds the "pure"
// annotations, which tree-sitter keeps as ordinary comments.

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/evanw/treeshake/internal/ast"
	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/logger"
)

// A tree-sitter parser for JavaScript. It must not be used by more than one
// goroutine at a time.
type Parser struct {
	ts *sitter.Parser
}

func NewParser() *Parser {
	ts := sitter.NewParser()
	ts.SetLanguage(javascript.GetLanguage())
	return &Parser{ts: ts}
}

// Parses into a concrete syntax tree. Nothing is reported for syntax errors
// here since they show up as error nodes in the tree.
func (p *Parser) ParseTree(ctx context.Context, contents string) (*sitter.Tree, error) {
	tree, err := p.ts.ParseCtx(ctx, nil, []byte(contents))
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	return tree, nil
}

// Parses and converts in one step
func (p *Parser) Parse(ctx context.Context, log logger.Log, source logger.Source) (*js_ast.Program, bool) {
	tree, err := p.ParseTree(ctx, source.Contents)
	if err != nil {
		log.AddError(&source, logger.Range{}, err.Error())
		return nil, false
	}
	defer tree.Close()
	return Convert(log, source, tree)
}

func Parse(log logger.Log, source logger.Source) (*js_ast.Program, bool) {
	return NewParser().Parse(context.Background(), log, source)
}

type parser struct {
	log    logger.Log
	source logger.Source
	src    []byte

	importRecords []ast.ImportRecord

	// The end offsets of "/* @__PURE__ */" comments
	pureCommentEnds map[uint32]bool

	hadError bool
}

// Builds a fresh analysis tree from a concrete syntax tree. The concrete tree
// is not modified, so it can be converted again for another build.
func Convert(log logger.Log, source logger.Source, tree *sitter.Tree) (*js_ast.Program, bool) {
	p := &parser{
		log:             log,
		source:          source,
		src:             []byte(source.Contents),
		pureCommentEnds: make(map[uint32]bool),
	}
	root := tree.RootNode()
	if root.HasError() {
		p.reportSyntaxErrors(root)
		return nil, false
	}
	p.scanComments(root)

	program := &js_ast.Program{}
	program.Range = p.rangeOf(root)
	program.Stmts = p.convertStmts(root)
	program.ImportRecords = p.importRecords
	if p.hadError {
		return nil, false
	}
	return program, true
}

func (p *parser) scanComments(node *sitter.Node) {
	if node.Type() == "comment" {
		text := p.text(node)
		if strings.HasPrefix(text, "/*") && (strings.Contains(text, "@__PURE__") || strings.Contains(text, "#__PURE__")) {
			p.pureCommentEnds[node.EndByte()] = true
		}
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		p.scanComments(node.Child(i))
	}
}

// A pure annotation applies to the call or "new" expression right after it,
// possibly with parentheses in between
func (p *parser) isAnnotatedPure(node *sitter.Node) bool {
	i := int(node.StartByte())
	for i > 0 {
		switch p.src[i-1] {
		case ' ', '\t', '\n', '\r', '(':
			i--
			continue
		}
		break
	}
	return p.pureCommentEnds[uint32(i)]
}

func (p *parser) reportSyntaxErrors(root *sitter.Node) {
	var first *sitter.Node
	var visit func(node *sitter.Node)
	visit = func(node *sitter.Node) {
		if first != nil || !node.HasError() && !node.IsMissing() {
			return
		}
		if node.IsMissing() || node.Type() == "ERROR" {
			first = node
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			visit(node.Child(i))
		}
	}
	visit(root)
	if first == nil {
		p.log.AddError(&p.source, logger.Range{}, "Syntax error")
		return
	}
	r := p.rangeOf(first)
	if first.IsMissing() {
		p.log.AddError(&p.source, r, fmt.Sprintf("Expected %q", first.Type()))
	} else if r.Len > 0 {
		p.log.AddError(&p.source, r, fmt.Sprintf("Unexpected %q", p.source.TextForRange(r)))
	} else {
		p.log.AddError(&p.source, r, "Unexpected end of file")
	}
}

func (p *parser) unsupported(node *sitter.Node) {
	p.hadError = true
	p.log.AddError(&p.source, p.rangeOf(node), fmt.Sprintf("Unsupported syntax: %s", node.Type()))
}

func (p *parser) rangeOf(node *sitter.Node) logger.Range {
	start := node.StartByte()
	return logger.Range{Loc: logger.Loc{Start: int32(start)}, Len: int32(node.EndByte() - start)}
}

func (p *parser) text(node *sitter.Node) string {
	return string(p.src[node.StartByte():node.EndByte()])
}

func (p *parser) addImportRecord(kind ast.ImportKind, node *sitter.Node, path string, flags ast.ImportRecordFlags) uint32 {
	index := uint32(len(p.importRecords))
	p.importRecords = append(p.importRecords, ast.ImportRecord{
		Kind:  kind,
		Range: p.rangeOf(node),
		Path:  path,
		Flags: flags,
	})
	return index
}

// The named children that carry meaning. Comments can appear anywhere.
func namedChildren(node *sitter.Node) (children []*sitter.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() != "comment" {
			children = append(children, child)
		}
	}
	return
}

func hasToken(node *sitter.Node, token string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); !child.IsNamed() && child.Type() == token {
			return true
		}
	}
	return false
}

func sameNode(a *sitter.Node, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func setRange[T interface{ Base() *js_ast.NodeBase }](p *parser, n T, node *sitter.Node) T {
	n.Base().Range = p.rangeOf(node)
	return n
}
