package query

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/perl-language-tools/perl-ls/internal/rpcerr"
	"github.com/perl-language-tools/perl-ls/internal/treesitter"
	"github.com/perl-language-tools/perl-ls/internal/uri"
)

// PrepareRename returns (nodeRange, node.text) for any node; spec.md
// §4.5 leaves filtering of non-renameable nodes to the caller of
// prepareRename, but not to Rename itself, which does reject them.
func PrepareRename(node *tree_sitter.Node, source []byte) (uri.Range, string) {
	return treesitter.NodeRange(node), treesitter.NodeText(node, source)
}

// Rename implements spec.md §4.5's `rename` query: variable renames
// replace every visible occurrence in scope; function renames edit
// every call site and declaration across the workspace.
func Rename(idx IndexReader, u uri.URI, node *tree_sitter.Node, newName string, root *tree_sitter.Node, source []byte) ([]TextEdit, error) {
	if newName == "" {
		return nil, rpcerr.InvalidParams("new name must not be empty")
	}
	if node == nil {
		return nil, rpcerr.InvalidParams("no renameable symbol at this position")
	}

	if treesitter.IsVariableKind(node.Kind()) {
		target := treesitter.NodeText(node, source)
		var edits []TextEdit
		for _, v := range ScopeVariables(root, source, node) {
			if v.Name == target {
				edits = append(edits, TextEdit{URI: u, Range: v.Range, NewText: newName})
			}
		}
		if len(edits) == 0 {
			return nil, rpcerr.InvalidParams("no renameable symbol at this position")
		}
		return edits, nil
	}

	if !isFunctionIdentifier(node) {
		return nil, rpcerr.InvalidParams("node is not renameable")
	}
	name := treesitter.NodeText(node, source)

	var edits []TextEdit
	refsByUri := idx.AllReferences()
	for _, du := range sortedDeclURIs(refsByUri) {
		for _, r := range refsByUri[du][name] {
			edits = append(edits, TextEdit{URI: r.URI, Range: r.Position, NewText: newName})
		}
	}
	declsByUri := idx.AllDeclarations()
	for _, du := range sortedDeclURIs(declsByUri) {
		for _, d := range declsByUri[du] {
			if d.FunctionName == name {
				edits = append(edits, TextEdit{URI: d.URI, Range: d.Position, NewText: newName})
			}
		}
	}
	if len(edits) == 0 {
		return nil, rpcerr.InvalidParams("no renameable symbol at this position")
	}
	return edits, nil
}
