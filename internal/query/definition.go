package query

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// Definition implements spec.md §4.5's `definition` query. u, root and
// source describe the document node belongs to; idx supplies the
// workspace-wide declarations for the function case. A variable result
// is always a Location within u, since variable scope never crosses
// files.
func Definition(idx IndexReader, u uri.URI, node *tree_sitter.Node, root *tree_sitter.Node, source []byte) []uri.Location {
	if node == nil {
		return nil
	}

	if treesitter.IsVariableKind(node.Kind()) {
		target := treesitter.NodeText(node, source)
		for _, v := range ScopeVariables(root, source, node) {
			if v.Name == target {
				return []uri.Location{{URI: u, Range: v.Range}}
			}
		}
		return nil
	}

	name := treesitter.NodeText(node, source)
	var locs []uri.Location
	declsByUri := idx.AllDeclarations()
	for _, du := range sortedDeclURIs(declsByUri) {
		for _, decl := range declsByUri[du] {
			if decl.FunctionName == name {
				locs = append(locs, uri.Location{URI: decl.URI, Range: decl.Position})
			}
		}
	}
	return locs
}
