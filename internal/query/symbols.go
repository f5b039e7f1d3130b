package query

import (
	"strings"

	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// DocumentSymbols implements spec.md §4.5's `documentSymbol` query:
// every declaration in uri, range and selectionRange both the name
// range.
func DocumentSymbols(idx IndexReader, u uri.URI) []DocumentSymbol {
	decls := idx.Declarations(u)
	out := make([]DocumentSymbol, len(decls))
	for i, d := range decls {
		out[i] = DocumentSymbol{
			Name:           d.FunctionName,
			Kind:           SymbolKindFunction,
			Range:          d.Position,
			SelectionRange: d.Position,
		}
	}
	return out
}

// WorkspaceSymbols implements spec.md §4.5's `workspace/symbol` query:
// an empty query returns []; otherwise a case-insensitive substring
// match across every declaration in every URI.
func WorkspaceSymbols(idx IndexReader, query string) []WorkspaceSymbol {
	if query == "" {
		return nil
	}
	needle := strings.ToLower(query)

	declsByUri := idx.AllDeclarations()
	var out []WorkspaceSymbol
	for _, du := range sortedDeclURIs(declsByUri) {
		for _, d := range declsByUri[du] {
			if strings.Contains(strings.ToLower(d.FunctionName), needle) {
				out = append(out, WorkspaceSymbol{Name: d.FunctionName, Location: uri.Location{URI: d.URI, Range: d.Position}})
			}
		}
	}
	return out
}
