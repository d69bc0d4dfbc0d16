package graph

// The import and export tables of a module. They are read from the module's
// top-level statements once, before any tree is bound, and never change
// afterwards except for shimmed missing exports.

import (
	"fmt"

	"github.com/evanw/treeshake/internal/js_ast"
	"github.com/evanw/treeshake/internal/logger"
)

// A local name bound by an import statement
type ImportDescription struct {
	// The file that exports the name. This is a module or an external module.
	Source uint32

	// The exported name, which is "*" for "import * as ns"
	Name string

	Range logger.Range
}

// A name exported by a declaration or an export clause of this module
type ExportDescription struct {
	LocalName string
	Range     logger.Range
}

// A name exported by "export { a } from" or "export * as ns from"
type ReexportDescription struct {
	Source uint32

	// The name in the source module, which is "*" for "export * as ns"
	LocalName string

	Range logger.Range
}

// Stands in for an export that was shimmed because it is missing
var missingExportShim = &ExportDescription{LocalName: "_missingExportShim"}

// Returns the file that an import record refers to, if it was resolved
func (m *Module) recordSource(index uint32) (uint32, bool) {
	if index >= uint32(len(m.AST.ImportRecords)) {
		return 0, false
	}
	record := &m.AST.ImportRecords[index]
	if record.SourceIndex.IsValid() {
		return record.SourceIndex.GetIndex(), true
	}
	if record.ExternalIndex.IsValid() {
		return record.ExternalIndex.GetIndex(), true
	}
	return 0, false
}

func (m *Module) scanModuleSyntax() {
	for _, stmt := range m.AST.Stmts {
		switch s := stmt.(type) {
		case *js_ast.SImport:
			source, ok := m.recordSource(s.ImportRecordIndex)
			if !ok {
				continue
			}
			if s.DefaultName != "" {
				m.addImport(s.DefaultName, source, "default", s.Range)
			}
			if s.NamespaceName != "" {
				m.addImport(s.NamespaceName, source, "*", s.Range)
			}
			for _, item := range s.Items {
				m.addImport(item.Name, source, item.Alias, item.AliasRange)
			}

		case *js_ast.SExportFrom:
			source, ok := m.recordSource(s.ImportRecordIndex)
			if !ok {
				continue
			}
			for _, item := range s.Items {
				m.addReexport(item.Alias, source, item.Name, item.AliasRange)
			}

		case *js_ast.SExportStar:
			source, ok := m.recordSource(s.ImportRecordIndex)
			if !ok {
				continue
			}
			if s.Alias != "" {
				m.addReexport(s.Alias, source, "*", s.AliasRange)
			} else {
				m.exportAllSources = append(m.exportAllSources, source)
			}

		case *js_ast.SExportClause:
			for _, item := range s.Items {
				m.addExport(item.Alias, item.Name, item.AliasRange)
			}

		case *js_ast.SExportDefault:
			m.addExport("default", "default", s.Range)

		case *js_ast.SLocal:
			if s.IsExport {
				for _, decl := range s.Decls {
					for _, id := range js_ast.BindingIdentifiers(decl.Binding) {
						m.addExport(id.Name, id.Name, id.Range)
					}
				}
			}

		case *js_ast.SFunction:
			if s.IsExport && s.Fn.ID != nil {
				m.addExport(s.Fn.ID.Name, s.Fn.ID.Name, s.Fn.ID.Range)
			}

		case *js_ast.SClass:
			if s.IsExport && s.Class.ID != nil {
				m.addExport(s.Class.ID.Name, s.Class.ID.Name, s.Class.ID.Range)
			}
		}
	}

	// Every "export *" source is searched once, in source order
	seen := make(map[uint32]bool)
	for _, source := range m.exportAllSources {
		if !seen[source] {
			seen[source] = true
			m.exportAllModules = append(m.exportAllModules, source)
		}
	}
}

func (m *Module) addImport(localName string, source uint32, name string, r logger.Range) {
	if _, ok := m.Imports[localName]; ok {
		m.graph.log.AddError(&m.source, r, fmt.Sprintf("Duplicate import %q", localName))
		return
	}
	m.Imports[localName] = &ImportDescription{Source: source, Name: name, Range: r}
	m.importOrder = append(m.importOrder, localName)
}

func (m *Module) isExportNameTaken(name string, r logger.Range) bool {
	_, isExport := m.Exports[name]
	_, isReexport := m.Reexports[name]
	if isExport || isReexport {
		m.graph.log.AddError(&m.source, r, fmt.Sprintf("Multiple exports with the same name %q", name))
		return true
	}
	return false
}

func (m *Module) addExport(name string, localName string, r logger.Range) {
	if !m.isExportNameTaken(name, r) {
		m.Exports[name] = &ExportDescription{LocalName: localName, Range: r}
		m.exportOrder = append(m.exportOrder, name)
	}
}

func (m *Module) addReexport(name string, source uint32, localName string, r logger.Range) {
	if !m.isExportNameTaken(name, r) {
		m.Reexports[name] = &ReexportDescription{Source: source, LocalName: localName, Range: r}
		m.reexportOrder = append(m.reexportOrder, name)
	}
}
